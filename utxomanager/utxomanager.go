// Package utxomanager owns the BTC UTXO set for the BTC leg of a bridge
// (spec.md §3.1, §4.4). Selection is by increasing utxo_nonce order — a
// monotonic ordering counter, not a cryptographic nonce — adapted from
// the teacher's largest-first wallet-send selection in
// bitcoin/builder.go's selectUTXOs.
package utxomanager

import (
	"encoding/json"
	"sort"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
	"github.com/pnetwork-association/ptokens-bridge/db"
)

// Utxo is one unspent output tracked by the manager.
type Utxo struct {
	Txid        string `json:"txid"`
	Vout        uint32 `json:"vout"`
	ValueSat    int64  `json:"valueSat"`
	Script      []byte `json:"script"`
	DepositInfo []byte `json:"depositInfo,omitempty"`
	Nonce       uint64 `json:"nonce"`
}

func (u Utxo) key() string { return u.Txid + ":" + itoa(u.Vout) }

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	digits := make([]byte, 0, 10)
	for v > 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	return string(digits)
}

const utxoSetKey = "utxo_set"

// Manager is the persisted, nonce-ordered UTXO set.
type Manager struct {
	database db.Database
	utxos    []Utxo
	nextNonce uint64
}

func Load(database db.Database) (*Manager, error) {
	m := &Manager{database: database}
	raw, err := database.Get([]byte(utxoSetKey), db.SensitivityNone)
	if err != nil {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m.utxos); err != nil {
		return nil, bridgeerr.Decodef(err, "corrupt utxo set")
	}
	for _, u := range m.utxos {
		if u.Nonce >= m.nextNonce {
			m.nextNonce = u.Nonce + 1
		}
	}
	sortByNonce(m.utxos)
	return m, nil
}

func sortByNonce(utxos []Utxo) {
	sort.Slice(utxos, func(i, j int) bool { return utxos[i].Nonce < utxos[j].Nonce })
}

func (m *Manager) persist() error {
	raw, err := json.Marshal(m.utxos)
	if err != nil {
		return bridgeerr.Decodef(err, "cannot marshal utxo set")
	}
	return m.database.Put([]byte(utxoSetKey), raw, db.SensitivityNone)
}

// Push inserts utxo, assigning it the next nonce. Idempotent on
// (txid,vout): pushing the same outpoint twice leaves the set size
// unchanged (spec.md Testable Property 7).
func (m *Manager) Push(u Utxo) error {
	for _, existing := range m.utxos {
		if existing.key() == u.key() {
			return nil
		}
	}
	u.Nonce = m.nextNonce
	m.nextNonce++
	m.utxos = append(m.utxos, u)
	return m.persist()
}

// Remove deletes the utxo matching (txid,vout). Deletion by (txid,vout)
// is total: every matching entry is removed.
func (m *Manager) Remove(txid string, vout uint32) error {
	target := Utxo{Txid: txid, Vout: vout}.key()
	out := m.utxos[:0:0]
	for _, u := range m.utxos {
		if u.key() != target {
			out = append(out, u)
		}
	}
	m.utxos = out
	return m.persist()
}

func (m *Manager) Size() int { return len(m.utxos) }

func (m *Manager) Enumerate() []Utxo {
	out := make([]Utxo, len(m.utxos))
	copy(out, m.utxos)
	return out
}

// SelectToCover picks utxos in increasing-nonce order until their total
// value covers target plus an estimated fee for the resulting input
// count, never selecting more than maxN inputs. feeRate is satoshis per
// estimated byte; the size estimate follows the teacher's own rough
// formula (10 + 148*nInputs + 34*2 bytes for a P2PKH-shaped tx).
func (m *Manager) SelectToCover(targetSat int64, maxN int, feeRate int64) ([]Utxo, int64, error) {
	selected := make([]Utxo, 0, maxN)
	var total int64
	for _, u := range m.utxos {
		if len(selected) >= maxN {
			break
		}
		selected = append(selected, u)
		total += u.ValueSat
		estimatedSize := int64(10 + 148*len(selected) + 34*2)
		fee := estimatedSize * feeRate
		if total >= targetSat+fee {
			return selected, fee, nil
		}
	}
	return nil, 0, bridgeerr.Insufficientf("insufficient utxos to cover %d sat (have %d across %d utxos)", targetSat, total, len(selected))
}

// Consolidate selects up to n utxos (increasing-nonce order) to fold
// into a single output. Returns the selected utxos without removing
// them; the caller chooses the output address and is responsible for
// building and signing the actual transaction via the chain-specific
// codec/signer.
func (m *Manager) Consolidate(n int) []Utxo {
	if n > len(m.utxos) {
		n = len(m.utxos)
	}
	out := make([]Utxo, n)
	copy(out, m.utxos[:n])
	return out
}
