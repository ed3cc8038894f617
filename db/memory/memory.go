// Package memory is an in-memory db.Database used by tests and local
// development. It mirrors the shape of the teacher's storage.TransactionStateStore:
// a mutex-guarded map, with idempotent Delete.
package memory

import (
	"fmt"
	"sync"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
	"github.com/pnetwork-association/ptokens-bridge/db"
)

type entry struct {
	value       []byte
	sensitivity db.Sensitivity
}

// Store is a process-local db.Database. Not durable across restarts.
type Store struct {
	mu         sync.Mutex
	data       map[string]entry
	inTxn      bool
	txnBackup  map[string]entry
}

func New() *Store {
	return &Store{data: make(map[string]entry)}
}

func (s *Store) Put(key, value []byte, sensitivity db.Sensitivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[string(key)] = entry{value: cp, sensitivity: sensitivity}
	return nil
}

func (s *Store) Get(key []byte, sensitivity db.Sensitivity) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[string(key)]
	if !ok {
		return nil, bridgeerr.NotInitializedf("key %x not found", key)
	}
	if e.sensitivity != sensitivity {
		return nil, bridgeerr.Unauthorizedf("sensitivity mismatch for key %x: stored as %d, requested as %d", key, e.sensitivity, sensitivity)
	}
	cp := make([]byte, len(e.value))
	copy(cp, e.value)
	return cp, nil
}

func (s *Store) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, string(key))
	return nil
}

func (s *Store) StartTransaction() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inTxn {
		return fmt.Errorf("transaction already open")
	}
	s.inTxn = true
	s.txnBackup = make(map[string]entry, len(s.data))
	for k, v := range s.data {
		s.txnBackup[k] = v
	}
	return nil
}

func (s *Store) EndTransaction() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inTxn = false
	s.txnBackup = nil
	return nil
}

// Rollback discards every write made since the last StartTransaction.
// Exposed for callers (the pipeline) that need to undo on failure rather
// than commit; EndTransaction alone always commits.
func (s *Store) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.txnBackup != nil {
		s.data = s.txnBackup
		s.txnBackup = nil
	}
	s.inTxn = false
	return nil
}
