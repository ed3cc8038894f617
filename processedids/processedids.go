// Package processedids tracks the at-most-once set of processed peg
// identifiers (spec.md §3.1, §4.5): EOS global_sequence values, or
// (tx_hash, log_index) pairs for EVM. Entries are only ever added, never
// removed, except through an explicit debug command.
package processedids

import (
	"encoding/json"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
	"github.com/pnetwork-association/ptokens-bridge/db"
)

const processedIdsKey = "processed_ids"

// Set is the persisted processed-id set for one chain leg of a bridge.
type Set struct {
	database db.Database
	ids      map[string]bool
}

func Load(database db.Database) (*Set, error) {
	s := &Set{database: database, ids: make(map[string]bool)}
	raw, err := database.Get([]byte(processedIdsKey), db.SensitivityNone)
	if err != nil {
		return s, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, bridgeerr.Decodef(err, "corrupt processed-id set")
	}
	for _, id := range list {
		s.ids[id] = true
	}
	return s, nil
}

func (s *Set) persist() error {
	list := make([]string, 0, len(s.ids))
	for id := range s.ids {
		list = append(list, id)
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return bridgeerr.Decodef(err, "cannot marshal processed-id set")
	}
	return s.database.Put([]byte(processedIdsKey), raw, db.SensitivityNone)
}

// Contains reports whether id has already been processed. The pipeline
// drops a TxInfo silently when this is true (spec.md's failure table).
func (s *Set) Contains(id string) bool {
	return s.ids[id]
}

// Add marks id as processed. Callers must persist this within the same
// DB transaction as the signed tx's nonce increment (spec.md §4.5).
func (s *Set) Add(id string) error {
	if s.ids[id] {
		return nil
	}
	s.ids[id] = true
	return s.persist()
}

// DebugRemove is the only sanctioned way to remove an id from the set,
// reserved for the debug command path.
func (s *Set) DebugRemove(id string) error {
	if !s.ids[id] {
		return nil
	}
	delete(s.ids, id)
	return s.persist()
}

func (s *Set) Size() int { return len(s.ids) }
