package pipeline

import (
	"sync"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
	"github.com/pnetwork-association/ptokens-bridge/db"
	"github.com/pnetwork-association/ptokens-bridge/dictionary"
	"github.com/pnetwork-association/ptokens-bridge/noncekeys"
	"github.com/pnetwork-association/ptokens-bridge/processedids"
	"github.com/pnetwork-association/ptokens-bridge/txinfo"
)

// Stage is one fn(State) -> Result<State, Error> transform in the
// and-then chain (spec.md §9). A stage returning an error short-
// circuits every remaining stage.
type Stage func(*State) error

// Bridge composes the fixed-order stages for one source->destination
// pipeline. Two submissions for the same bridge may not run
// concurrently (spec.md §5); submitMu makes that explicit at the
// entrypoint rather than relying on the DB transaction's implicit
// serialisation (spec.md §9 Open Questions).
type Bridge struct {
	Name string

	Database     db.Database
	Dictionary   *dictionary.Dictionary
	ProcessedIds *processedids.Set
	NonceKeys    *noncekeys.Store

	Stages []Stage

	submitMu sync.Mutex
}

// Run drives raw submission material through every stage in order,
// inside a single DB transaction that commits on success and rolls back
// on any error or panic. Rollback uses the Database's own Rollback method
// (db/memory and db/filedb have one); a Database without one gets
// EndTransaction on failure, which commits.
func (b *Bridge) Run(raw []byte) (*State, error) {
	b.submitMu.Lock()
	defer b.submitMu.Unlock()

	if err := b.Database.StartTransaction(); err != nil {
		return nil, err
	}

	state := NewState(raw)
	var stageErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				stageErr = bridgeerr.New(bridgeerr.NotInState, "panic during pipeline execution", nil)
			}
		}()
		for _, stage := range b.Stages {
			if err := stage(state); err != nil {
				stageErr = err
				return
			}
		}
	}()

	if stageErr != nil {
		// guaranteed end on all exit paths
		if rb, ok := b.Database.(interface{ Rollback() error }); ok {
			_ = rb.Rollback()
		} else {
			_ = b.Database.EndTransaction()
		}
		return nil, stageErr
	}
	if err := b.Database.EndTransaction(); err != nil {
		return nil, err
	}
	return state, nil
}

// DedupeStage filters out any TxInfo whose ProcessedID has already been
// seen (spec.md's failure table: "Processed id seen -> Drop TxInfo
// silently").
func DedupeStage(processed *processedids.Set) Stage {
	return func(s *State) error {
		infos, err := s.TxInfos()
		if err != nil {
			return err
		}
		kept := infos[:0:0]
		for _, t := range infos {
			if !processed.Contains(t.ProcessedID) {
				kept = append(kept, t)
			}
		}
		s.txInfos = kept
		return nil
	}
}

// FeeAccountStage subtracts the dictionary's fee basis points from every
// TxInfo's amount and accrues the fee delta, only for TxInfos with a
// nonzero amount (zero-value rows must already have been filtered
// before this stage runs, per spec.md §4.8's stage-order contract).
func FeeAccountStage(dict *dictionary.Dictionary, accrue bool) Stage {
	return func(s *State) error {
		infos, err := s.TxInfos()
		if err != nil {
			return err
		}
		for i := range infos {
			entry, ok := dict.GetByAddressOn(infos[i].From)
			if !ok {
				continue // dictionary miss: skipped; nothing is logged
			}
			fee, err := txinfo.SubtractFee(&infos[i], entry.FeeBasisPoints)
			if err != nil {
				return err
			}
			if accrue {
				if err := dict.IncrementAccruedFees(entry.ChainAAddress, fee); err != nil {
					return err
				}
			}
		}
		s.txInfos = infos
		return nil
	}
}

// SignAndPersistStage assigns each TxInfo the next account nonce,
// records the processed id and nonce increment in the same transaction,
// and appends a SignedTx using the supplied signFn. If the pipeline run
// used a custom (debug-set) nonce, auto-increment is skipped.
func SignAndPersistStage(nonceKeys *noncekeys.Store, processed *processedids.Set, signFn func(t txinfo.TxInfo, nonce uint64) (SignedTx, error)) Stage {
	return func(s *State) error {
		infos, err := s.TxInfos()
		if err != nil {
			return err
		}
		startNonce, err := nonceKeys.AccountNonce()
		if err != nil {
			return err
		}
		var signed []SignedTx
		for i, t := range infos {
			nonce := startNonce + uint64(i)
			tx, err := signFn(t, nonce)
			if err != nil {
				return err
			}
			if err := processed.Add(t.ProcessedID); err != nil {
				return err
			}
			signed = append(signed, tx)
		}
		if !s.CustomNonceUsed && len(infos) > 0 {
			if err := nonceKeys.IncrementNonce(uint64(len(infos))); err != nil {
				return err
			}
		}
		s.SignedTransactions = signed
		return nil
	}
}
