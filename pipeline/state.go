// Package pipeline composes the fixed-order submission pipeline
// described in spec.md §2 and §4.8: parse -> validate_header ->
// validate_receipts/merkle -> filter_relevant -> extract_tx_infos ->
// dedupe -> fee_account -> divert_to_safe_address -> sign -> increment
// nonce -> persist -> emit. The order is part of the contract: fee
// accounting must precede signing but follow zero-value filtering; safe-
// address diversion must precede signing but follow extraction; dedupe
// must precede signing but may follow extraction.
package pipeline

import (
	"math/big"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
	"github.com/pnetwork-association/ptokens-bridge/txinfo"
)

// State is the per-submission state object threaded through every
// stage. Fields written through the Mark*/Set* setters are single-write:
// once set by a stage, a later call to the same setter gets a NoOverwrite
// error. This is the typestate-lite pattern spec.md §9 recommends for the
// "no overwrite" invariant, implemented as optional fields with a guarded
// setter rather than a changing type. The package's own stages
// (DedupeStage, FeeAccountStage) replace txInfos in place without going
// through the setter.
type State struct {
	RawMaterial []byte

	headerValidated   bool
	receiptsValidated bool

	txInfos []txinfo.TxInfo
	set     map[string]bool

	SignedTransactions []SignedTx

	AccountNonce      uint64
	CustomNonceUsed   bool
	LatestBlockNumber uint64
}

// SignedTx is one entry of the signed-output schema (spec.md §6.7).
type SignedTx struct {
	ID                   string
	Broadcast            bool
	TxHash               string
	TxAmount             *big.Int
	TxRecipient          string
	WitnessedTimestamp   int64
	HostTokenAddress     string
	OriginatingTxHash    string
	OriginatingAddress   string
	NativeTokenAddress   string
	SignedTxHex          string
	AccountNonce         uint64
	LatestBlockNumber    uint64
	DestinationChainID   string
}

func NewState(raw []byte) *State {
	return &State{RawMaterial: raw, set: make(map[string]bool)}
}

// setOnce marks field as written, failing with NoOverwrite if it was
// already written by an earlier stage.
func (s *State) setOnce(field string) error {
	if s.set[field] {
		return bridgeerr.NoOverwritef("state field %q already set by an earlier stage", field)
	}
	s.set[field] = true
	return nil
}

func (s *State) MarkHeaderValidated() error {
	if err := s.setOnce("headerValidated"); err != nil {
		return err
	}
	s.headerValidated = true
	return nil
}

func (s *State) MarkReceiptsValidated() error {
	if err := s.setOnce("receiptsValidated"); err != nil {
		return err
	}
	s.receiptsValidated = true
	return nil
}

func (s *State) SetTxInfos(infos []txinfo.TxInfo) error {
	if err := s.setOnce("txInfos"); err != nil {
		return err
	}
	s.txInfos = infos
	return nil
}

func (s *State) TxInfos() ([]txinfo.TxInfo, error) {
	if !s.set["txInfos"] {
		return nil, bridgeerr.NotInStatef("txInfos stage has not run yet")
	}
	return s.txInfos, nil
}

func (s *State) HeaderValidated() bool   { return s.headerValidated }
func (s *State) ReceiptsValidated() bool { return s.receiptsValidated }
