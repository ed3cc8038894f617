// Package lightclient maintains the per-chain block store with its
// anchor/canon/tail/latest/linker pointers (spec.md §3.1, §4.2). It is
// parameterised over a Block abstraction so the same pointer arithmetic
// serves Bitcoin, EVM and EOS submission material alike; the chain-
// specific codec packages are responsible for producing a Block and its
// encoded bytes.
package lightclient

import (
	"encoding/json"
	"fmt"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
	"github.com/pnetwork-association/ptokens-bridge/db"
)

// Block is the minimal shape lightclient needs from a chain's decoded
// submission material: its own hash, its parent's hash, and its height.
type Block interface {
	Hash() []byte
	ParentHash() []byte
	Number() uint64
}

// State tags where a stored block sits in the pointer lattice. Reaching
// Canonicalised is the only transition that triggers event extraction
// for that block (spec.md §4.2).
type State int

const (
	Unknown State = iota
	Stored
	Canonicalised
	Tail
	Forgotten
)

type pointerSet struct {
	Anchor string `json:"anchor"`
	Tail   string `json:"tail"`
	Canon  string `json:"canon"`
	Latest string `json:"latest"`
	Linker string `json:"linker"`
}

// Store is the per-chain light client. Raw block bytes and metadata are
// persisted through db, keyed by the block hash in reversed byte order
// (spec.md §6.2, an on-disk compatibility constraint preserved exactly).
type Store struct {
	database   db.Database
	chain      string
	confs      uint64
	canonToTip uint64
}

func New(database db.Database, chain string, confs, canonToTip uint64) *Store {
	return &Store{database: database, chain: chain, confs: confs, canonToTip: canonToTip}
}

func hexKey(b []byte) string { return fmt.Sprintf("%x", b) }

func (s *Store) blockKey(hash []byte) []byte {
	reversed := db.ReverseBytes(hash)
	return []byte(fmt.Sprintf("lightclient/%s/block/%s", s.chain, hexKey(reversed)))
}

func (s *Store) metaKey(hash []byte) []byte {
	return []byte(fmt.Sprintf("lightclient/%s/meta/%s", s.chain, hexKey(db.ReverseBytes(hash))))
}

func (s *Store) pointersKey() []byte {
	return []byte(fmt.Sprintf("lightclient/%s/pointers", s.chain))
}

type blockMeta struct {
	ParentHash string `json:"parentHash"`
	Number     uint64 `json:"number"`
	State      State  `json:"state"`
}

func (s *Store) loadPointers() (*pointerSet, error) {
	raw, err := s.database.Get(s.pointersKey(), db.SensitivityNone)
	if err != nil {
		return &pointerSet{}, nil
	}
	var p pointerSet
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, bridgeerr.Decodef(err, "corrupt pointer set for chain %s", s.chain)
	}
	return &p, nil
}

func (s *Store) savePointers(p *pointerSet) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return bridgeerr.Decodef(err, "cannot marshal pointer set")
	}
	return s.database.Put(s.pointersKey(), raw, db.SensitivityNone)
}

func (s *Store) loadMeta(hash []byte) (*blockMeta, bool) {
	raw, err := s.database.Get(s.metaKey(hash), db.SensitivityNone)
	if err != nil {
		return nil, false
	}
	var m blockMeta
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return &m, true
}

func (s *Store) saveMeta(hash []byte, m *blockMeta) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return bridgeerr.Decodef(err, "cannot marshal block meta")
	}
	return s.database.Put(s.metaKey(hash), raw, db.SensitivityNone)
}

// Submit inserts block (with its already-encoded bytes) into the store
// and recomputes anchor/canon/tail/latest/linker. The submitted block's
// parent_hash must equal some stored block's hash unless the store is
// empty (initialisation).
func (s *Store) Submit(block Block, encoded []byte) error {
	pointers, err := s.loadPointers()
	if err != nil {
		return err
	}

	hash := block.Hash()
	parent := block.ParentHash()

	if pointers.Latest != "" {
		if _, ok := s.loadMeta(parent); !ok {
			return bridgeerr.Validationf(nil, "block %x does not extend any stored block (parent %x unknown)", hash, parent)
		}
	}

	if err := s.database.Put(s.blockKey(hash), encoded, db.SensitivityNone); err != nil {
		return err
	}
	if err := s.saveMeta(hash, &blockMeta{ParentHash: hexKey(parent), Number: block.Number(), State: Stored}); err != nil {
		return err
	}

	latestMeta, haveLatest := s.loadMeta(mustHex(pointers.Latest))
	extendsHead := !haveLatest || pointers.Latest == "" || hexKey(parent) == pointers.Latest
	if extendsHead {
		pointers.Latest = hexKey(hash)
		if !haveLatest {
			pointers.Anchor = hexKey(hash)
		}
	}
	_ = latestMeta

	if pointers.Latest != "" {
		canonHash, err := s.ancestor(mustHex(pointers.Latest), s.confs)
		if err == nil {
			pointers.Canon = hexKey(canonHash)
			if m, ok := s.loadMeta(canonHash); ok {
				m.State = Canonicalised
				s.saveMeta(canonHash, m)
			}
		}
	}

	if pointers.Canon != "" {
		tailHash, err := s.ancestor(mustHex(pointers.Canon), s.canonToTip)
		if err == nil {
			pointers.Tail = hexKey(tailHash)
			if m, ok := s.loadMeta(tailHash); ok {
				m.State = Tail
				s.saveMeta(tailHash, m)
			}
			// linker deterministically bridges anchor to the new tail:
			// it is simply the tail's own hash, since every walk from
			// tail back to anchor passes through stored parent links.
			pointers.Linker = pointers.Tail
		}
	}

	return s.savePointers(pointers)
}

// ancestor walks n parent-hash hops back from startHash.
func (s *Store) ancestor(startHash []byte, n uint64) ([]byte, error) {
	cur := startHash
	for i := uint64(0); i < n; i++ {
		m, ok := s.loadMeta(cur)
		if !ok {
			return nil, bridgeerr.NotInitializedf("ancestor walk ran off known history at depth %d", i)
		}
		if m.ParentHash == "" {
			return cur, nil
		}
		cur = mustHex(m.ParentHash)
	}
	return cur, nil
}

func mustHex(s string) []byte {
	if s == "" {
		return nil
	}
	out := make([]byte, len(s)/2)
	fmt.Sscanf(s, "%x", &out)
	return out
}

// CanonOf returns the raw encoded bytes of the current canon block.
func (s *Store) CanonOf() ([]byte, error) {
	pointers, err := s.loadPointers()
	if err != nil {
		return nil, err
	}
	if pointers.Canon == "" {
		return nil, bridgeerr.NotInitializedf("chain %s has no canon block yet", s.chain)
	}
	return s.database.Get(s.blockKey(mustHex(pointers.Canon)), db.SensitivityNone)
}

// WalkBack returns up to n blocks' raw bytes walking back from latest.
func (s *Store) WalkBack(n int) ([][]byte, error) {
	pointers, err := s.loadPointers()
	if err != nil {
		return nil, err
	}
	if pointers.Latest == "" {
		return nil, bridgeerr.NotInitializedf("chain %s has no latest block yet", s.chain)
	}
	out := make([][]byte, 0, n)
	cur := mustHex(pointers.Latest)
	for i := 0; i < n; i++ {
		raw, err := s.database.Get(s.blockKey(cur), db.SensitivityNone)
		if err != nil {
			break
		}
		out = append(out, raw)
		m, ok := s.loadMeta(cur)
		if !ok || m.ParentHash == "" {
			break
		}
		cur = mustHex(m.ParentHash)
	}
	return out, nil
}

// ResetTo forcibly rewrites the anchor pointer and confs (a debug-path
// operation; the pipeline never calls this in its normal flow).
func (s *Store) ResetTo(anchorHash []byte, confs uint64) error {
	pointers, err := s.loadPointers()
	if err != nil {
		return err
	}
	if _, ok := s.loadMeta(anchorHash); !ok {
		return bridgeerr.NotInStatef("cannot reset to unknown block %x", anchorHash)
	}
	pointers.Anchor = hexKey(anchorHash)
	s.confs = confs
	return s.savePointers(pointers)
}

// RemoveReceipts zeroes out a canonicalised block's receipts via the
// supplied rewrite function, without altering the header. Callers pass a
// function that decodes, strips and re-encodes using the chain-specific
// codec.
func (s *Store) RemoveReceipts(hash []byte, rewrite func(encoded []byte) ([]byte, error)) error {
	raw, err := s.database.Get(s.blockKey(hash), db.SensitivityNone)
	if err != nil {
		return err
	}
	stripped, err := rewrite(raw)
	if err != nil {
		return err
	}
	return s.database.Put(s.blockKey(hash), stripped, db.SensitivityNone)
}
