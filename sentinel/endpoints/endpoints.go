// Package endpoints manages a rotating set of remote WebSocket endpoints
// for one chain's RPC loop (spec.md §4.10). Adapted from the teacher's
// WebSocketRPCClient reconnection loop (src/chainadapter/rpc/websocket.go)
// and its maxReconnectInterval/reconnectBackoff fields, generalised from
// a single fixed URL to a rotating list with an explicit active index.
package endpoints

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
)

// Set is an ordered list of endpoint URLs with one active connection at
// a time. rotate() advances the index and re-establishes a connection;
// the endpoint list is mutated only by its own owning task and is
// read-only elsewhere (spec.md §5).
type Set struct {
	mu            sync.Mutex
	urls          []string
	activeIdx     int
	conn          *websocket.Conn
	minBackoff    time.Duration
	maxBackoff    time.Duration
	currentBackoff time.Duration
	dialer        func(url string) (*websocket.Conn, error)
}

func New(urls []string) (*Set, error) {
	if len(urls) == 0 {
		return nil, bridgeerr.Batchingf("no endpoints configured")
	}
	s := &Set{
		urls:       urls,
		minBackoff: 3 * time.Second,
		maxBackoff: 60 * time.Second,
		dialer:     defaultDialer,
	}
	s.currentBackoff = s.minBackoff
	return s, nil
}

func defaultDialer(url string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, bridgeerr.Rpcf(err, "cannot dial endpoint %s", url)
	}
	return conn, nil
}

// ActiveURL returns the currently selected endpoint.
func (s *Set) ActiveURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urls[s.activeIdx]
}

// Connect establishes (or re-establishes) the connection to the active
// endpoint.
func (s *Set) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, err := s.dialer(s.urls[s.activeIdx])
	if err != nil {
		return err
	}
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn = conn
	return nil
}

// GetFirstWSClient returns the currently active connection, connecting
// lazily if none is open yet.
func (s *Set) GetFirstWSClient() (*websocket.Conn, error) {
	s.mu.Lock()
	haveConn := s.conn != nil
	s.mu.Unlock()
	if !haveConn {
		if err := s.Connect(); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn, nil
}

// Rotate advances to the next endpoint in the list (wrapping) and
// re-establishes a connection. Any error is returned but the index has
// already advanced, so the next Rotate call will try yet another
// endpoint rather than retrying the same failing one.
func (s *Set) Rotate() error {
	s.mu.Lock()
	s.activeIdx = (s.activeIdx + 1) % len(s.urls)
	s.mu.Unlock()
	return s.Connect()
}

// BackoffAndRotate sleeps for the current backoff duration, doubling it
// (capped at maxBackoff) for next time, then rotates the endpoint. This
// is the sentinel's fixed backoff-then-rotate policy for "remote RPC
// error -> rotate endpoint, retry; never surface to caller".
func (s *Set) BackoffAndRotate() error {
	s.mu.Lock()
	wait := s.currentBackoff
	next := s.currentBackoff * 2
	if next > s.maxBackoff {
		next = s.maxBackoff
	}
	s.currentBackoff = next
	s.mu.Unlock()

	time.Sleep(wait)
	return s.Rotate()
}

// ResetBackoff restores the backoff to its minimum, called after a
// successful call.
func (s *Set) ResetBackoff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentBackoff = s.minBackoff
}

func (s *Set) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("endpoints[active=%d/%d]", s.activeIdx, len(s.urls))
}
