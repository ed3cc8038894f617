// Package filedb is a db.Database backed by a single JSON file on local
// disk, each record tagged with its sensitivity. Writes are atomic (temp file + fsync + rename) so a
// crash mid-write never leaves a torn file behind.
package filedb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
	"github.com/pnetwork-association/ptokens-bridge/db"
)

type record struct {
	Value       []byte         `json:"value"`
	Sensitivity db.Sensitivity `json:"sensitivity"`
}

// Store persists every key/value pair into a single JSON file under dir.
// It is not meant for high write volume; the bridge core writes at
// pipeline-stage granularity, not per-request.
type Store struct {
	mu       sync.Mutex
	path     string
	records  map[string]record
	inTxn    bool
	snapshot map[string]record
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, bridgeerr.New(bridgeerr.NotInitialized, "cannot create db directory", err)
	}
	s := &Store{path: filepath.Join(dir, "bridge_db.json"), records: make(map[string]record)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return bridgeerr.New(bridgeerr.NotInitialized, "cannot read db file", err)
	}
	raw := make(map[string]record)
	if err := json.Unmarshal(data, &raw); err != nil {
		return bridgeerr.Decodef(err, "corrupt db file %s", s.path)
	}
	s.records = raw
	return nil
}

// persist writes the whole record set atomically: temp file in the same
// directory, fsync, chmod, close, then rename. Same pattern as writing
// any other single-file-of-truth state.
func (s *Store) persist() error {
	data, err := json.Marshal(s.records)
	if err != nil {
		return bridgeerr.Decodef(err, "cannot marshal db records")
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".bridge-db-tmp-*")
	if err != nil {
		return bridgeerr.New(bridgeerr.NotInitialized, "cannot create temp db file", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		return bridgeerr.New(bridgeerr.NotInitialized, "cannot write temp db file", err)
	}
	if err := tmp.Sync(); err != nil {
		return bridgeerr.New(bridgeerr.NotInitialized, "cannot sync temp db file", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		return bridgeerr.New(bridgeerr.NotInitialized, "cannot chmod temp db file", err)
	}
	if err := tmp.Close(); err != nil {
		return bridgeerr.New(bridgeerr.NotInitialized, "cannot close temp db file", err)
	}
	tmp = nil
	if err := os.Rename(tmpPath, s.path); err != nil {
		return bridgeerr.New(bridgeerr.NotInitialized, "cannot rename temp db file", err)
	}
	return nil
}

func (s *Store) Put(key, value []byte, sensitivity db.Sensitivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.records[string(key)] = record{Value: cp, Sensitivity: sensitivity}
	if s.inTxn {
		return nil
	}
	return s.persist()
}

func (s *Store) Get(key []byte, sensitivity db.Sensitivity) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[string(key)]
	if !ok {
		return nil, bridgeerr.NotInitializedf("key %x not found", key)
	}
	if r.Sensitivity != sensitivity {
		return nil, bridgeerr.Unauthorizedf("sensitivity mismatch for key %x", key)
	}
	cp := make([]byte, len(r.Value))
	copy(cp, r.Value)
	return cp, nil
}

func (s *Store) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, string(key))
	if s.inTxn {
		return nil
	}
	return s.persist()
}

func (s *Store) StartTransaction() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inTxn {
		return bridgeerr.NotInStatef("transaction already open")
	}
	s.inTxn = true
	s.snapshot = make(map[string]record, len(s.records))
	for k, v := range s.records {
		s.snapshot[k] = v
	}
	return nil
}

func (s *Store) EndTransaction() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inTxn = false
	s.snapshot = nil
	return s.persist()
}

// Rollback restores the pre-transaction record set without writing it to
// disk (the file on disk was never touched since writes are deferred
// until EndTransaction while a transaction is open).
func (s *Store) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot != nil {
		s.records = s.snapshot
		s.snapshot = nil
	}
	s.inTxn = false
	return nil
}
