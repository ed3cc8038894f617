// Package noncekeys persists the per-chain account nonce and the sealed
// private key the signer uses, and increments the nonce — the only
// component allowed to do so after a successful submission (spec.md
// §4.7).
package noncekeys

import (
	"encoding/binary"
	"fmt"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
	"github.com/pnetwork-association/ptokens-bridge/db"
)

// Store is the per-chain nonce-and-key store. database is expected to be
// a db/sealed.Store wrapping the real backing store so that Put/Get at
// db.SensitivityMax are transparently encrypted.
type Store struct {
	database db.Database
	chain    string
}

func New(database db.Database, chain string) *Store {
	return &Store{database: database, chain: chain}
}

func (s *Store) nonceKey() []byte {
	return []byte(fmt.Sprintf("noncekeys/%s/nonce", s.chain))
}

func (s *Store) privateKeyKey() []byte {
	return []byte(fmt.Sprintf("noncekeys/%s/privatekey", s.chain))
}

// AccountNonce returns the currently stored nonce, or 0 if uninitialised.
func (s *Store) AccountNonce() (uint64, error) {
	raw, err := s.database.Get(s.nonceKey(), db.SensitivityNone)
	if err != nil {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, bridgeerr.Decodef(nil, "corrupt account nonce for chain %s", s.chain)
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (s *Store) putNonce(n uint64) error {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, n)
	return s.database.Put(s.nonceKey(), raw, db.SensitivityNone)
}

// IncrementNonce advances the stored nonce by delta. The account nonce
// stored for the destination chain is strictly non-decreasing; this is
// the only entry point the pipeline uses for that (spec.md invariant 4).
func (s *Store) IncrementNonce(delta uint64) error {
	current, err := s.AccountNonce()
	if err != nil {
		return err
	}
	return s.putNonce(current + delta)
}

// SetCustomNonce overwrites the nonce via the debug path. Per spec.md
// §4.7, the pipeline must not auto-increment after this call for the
// submission that consumed it; callers report the expected post-
// broadcast value explicitly instead.
func (s *Store) SetCustomNonce(n uint64) error {
	return s.putNonce(n)
}

// PutPrivateKey writes the raw private key bytes at the highest
// sensitivity tier.
func (s *Store) PutPrivateKey(raw []byte) error {
	return s.database.Put(s.privateKeyKey(), raw, db.SensitivityMax)
}

// PrivateKey reads the raw private key bytes, requiring the same
// sensitivity tag it was written with.
func (s *Store) PrivateKey() ([]byte, error) {
	return s.database.Get(s.privateKeyKey(), db.SensitivityMax)
}

// Snapshot reports the nonce without requiring the private key, for the
// getEnclaveState / getCoreState RPC surface.
func (s *Store) Snapshot() (uint64, error) {
	return s.AccountNonce()
}
