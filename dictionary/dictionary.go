// Package dictionary maps asset addresses across chains and converts
// amounts between their native decimal precisions (spec.md §4.3).
package dictionary

import (
	"encoding/json"
	"math/big"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
	"github.com/pnetwork-association/ptokens-bridge/db"
)

// Entry is one cross-chain asset mapping.
type Entry struct {
	ChainAAddress   string `json:"chainAAddress"`
	ChainBAddress   string `json:"chainBAddress"`
	ChainASymbol    string `json:"chainASymbol"`
	ChainBSymbol    string `json:"chainBSymbol"`
	DecimalsA       uint8  `json:"decimalsA"`
	DecimalsB       uint8  `json:"decimalsB"`
	AccruedFees     string `json:"accruedFees"` // big.Int decimal string
	FeeBasisPoints  uint64 `json:"feeBasisPoints"`
}

const dictionaryKey = "dictionary"

// Dictionary is the persisted, ordered set of Entry values for one
// bridge. The full set is serialised on every write (spec.md §4.3).
type Dictionary struct {
	database db.Database
	entries  []Entry
}

func Load(database db.Database) (*Dictionary, error) {
	d := &Dictionary{database: database}
	raw, err := database.Get([]byte(dictionaryKey), db.SensitivityNone)
	if err != nil {
		return d, nil // not yet initialised: empty dictionary
	}
	if err := json.Unmarshal(raw, &d.entries); err != nil {
		return nil, bridgeerr.Decodef(err, "corrupt dictionary")
	}
	return d, nil
}

func (d *Dictionary) persist() error {
	raw, err := json.Marshal(d.entries)
	if err != nil {
		return bridgeerr.Decodef(err, "cannot marshal dictionary")
	}
	return d.database.Put([]byte(dictionaryKey), raw, db.SensitivityNone)
}

// Add appends entry, rejecting a duplicate address pair.
func (d *Dictionary) Add(entry Entry) error {
	for _, e := range d.entries {
		if e.ChainAAddress == entry.ChainAAddress && e.ChainBAddress == entry.ChainBAddress {
			return bridgeerr.New(bridgeerr.NoOverwrite, "dictionary entry for this address pair already exists", nil)
		}
	}
	d.entries = append(d.entries, entry)
	return d.persist()
}

// Remove deletes the entry matching chainAAddress, if any.
func (d *Dictionary) Remove(chainAAddress string) error {
	out := d.entries[:0:0]
	for _, e := range d.entries {
		if e.ChainAAddress != chainAAddress {
			out = append(out, e)
		}
	}
	d.entries = out
	return d.persist()
}

// GetByAddressOn returns the entry whose chain-A or chain-B address
// matches addr, reporting found=false on a miss (pipeline.FeeAccountStage
// then skips that TxInfo without logging it).
func (d *Dictionary) GetByAddressOn(addr string) (Entry, bool) {
	for _, e := range d.entries {
		if e.ChainAAddress == addr || e.ChainBAddress == addr {
			return e, true
		}
	}
	return Entry{}, false
}

// ConvertAmount converts amount from chain A's decimals to chain B's (or
// the reverse when fromA is false). Shrinking precision floors; expanding
// precision multiplies exactly, so the conversion is always lossless in
// the direction of increasing precision and loses only trailing digits
// when decreasing it.
func ConvertAmount(entry Entry, amount *big.Int, fromA bool) *big.Int {
	from, to := entry.DecimalsA, entry.DecimalsB
	if !fromA {
		from, to = entry.DecimalsB, entry.DecimalsA
	}
	if to >= from {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(to-from)), nil)
		return new(big.Int).Mul(amount, scale)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(from-to)), nil)
	return new(big.Int).Quo(amount, scale) // floor division (Quo truncates toward zero; amounts are non-negative)
}

// IncrementAccruedFees adds delta to the entry's accrued-fees counter.
func (d *Dictionary) IncrementAccruedFees(chainAAddress string, delta *big.Int) error {
	for i := range d.entries {
		if d.entries[i].ChainAAddress != chainAAddress {
			continue
		}
		current, ok := new(big.Int).SetString(d.entries[i].AccruedFees, 10)
		if !ok {
			current = big.NewInt(0)
		}
		current.Add(current, delta)
		d.entries[i].AccruedFees = current.String()
		return d.persist()
	}
	return bridgeerr.NotInStatef("no dictionary entry for address %s", chainAAddress)
}

// SetFeeBasisPoints updates the fee rate for the entry matching
// chainAAddress.
func (d *Dictionary) SetFeeBasisPoints(chainAAddress string, bp uint64) error {
	for i := range d.entries {
		if d.entries[i].ChainAAddress == chainAAddress {
			d.entries[i].FeeBasisPoints = bp
			return d.persist()
		}
	}
	return bridgeerr.NotInStatef("no dictionary entry for address %s", chainAAddress)
}

func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}
