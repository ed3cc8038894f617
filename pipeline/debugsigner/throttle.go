package debugsigner

import (
	"sync"
	"time"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
)

// Throttle is a sliding-window rate limiter guarding
// ValidateAndIncrement against signature brute-forcing: a caller that
// submits too many invalid debug signatures within the window is
// refused before the (cheap but non-zero) ecrecover work runs.
// Adapted from the teacher's wallet-unlock attempt limiter
// (internal/services/ratelimit), keyed on the caller's identity instead
// of a wallet ID.
type Throttle struct {
	maxAttempts int
	window      time.Duration
	attempts    map[string][]time.Time
	mu          sync.Mutex
}

// NewThrottle builds a throttle allowing maxAttempts failed attempts per
// caller within window.
func NewThrottle(maxAttempts int, window time.Duration) *Throttle {
	return &Throttle{
		maxAttempts: maxAttempts,
		window:      window,
		attempts:    make(map[string][]time.Time),
	}
}

// Allow reports whether caller may attempt validation now, recording the
// attempt if so.
func (t *Throttle) Allow(caller string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	var valid []time.Time
	for _, ts := range t.attempts[caller] {
		if now.Sub(ts) < t.window {
			valid = append(valid, ts)
		}
	}
	if len(valid) >= t.maxAttempts {
		t.attempts[caller] = valid
		return false
	}
	t.attempts[caller] = append(valid, now)
	return true
}

// Reset clears caller's recorded attempts, called after a successful
// validation.
func (t *Throttle) Reset(caller string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, caller)
}

// ValidateAndIncrementThrottled is ValidateAndIncrement guarded by a
// Throttle: callers that exhaust their attempt budget are refused
// without ever touching the signatory list.
func ValidateAndIncrementThrottled(throttle *Throttle, caller string, signatories []*Signatory, signature, debugCommandHash []byte) (int, error) {
	if !throttle.Allow(caller) {
		return -1, bridgeerr.Unauthorizedf("too many invalid debug signature attempts for %s", caller)
	}
	idx, err := ValidateAndIncrement(signatories, signature, debugCommandHash)
	if err == nil {
		throttle.Reset(caller)
	}
	return idx, err
}
