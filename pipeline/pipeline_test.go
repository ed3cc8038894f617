package pipeline

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnetwork-association/ptokens-bridge/db/memory"
	"github.com/pnetwork-association/ptokens-bridge/dictionary"
	"github.com/pnetwork-association/ptokens-bridge/noncekeys"
	"github.com/pnetwork-association/ptokens-bridge/processedids"
	"github.com/pnetwork-association/ptokens-bridge/txinfo"
)

func TestRunAppliesStagesInOrderAndCommits(t *testing.T) {
	d := memory.New()
	b := &Bridge{
		Name:     "test-bridge",
		Database: d,
		Stages: []Stage{
			func(s *State) error { return s.SetTxInfos([]txinfo.TxInfo{{ProcessedID: "a", Amount: big.NewInt(1)}}) },
		},
	}
	state, err := b.Run([]byte("raw"))
	require.NoError(t, err)
	infos, err := state.TxInfos()
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestRunShortCircuitsOnStageError(t *testing.T) {
	called := false
	b := &Bridge{
		Database: memory.New(),
		Stages: []Stage{
			func(s *State) error { return s.MarkHeaderValidated() },
			func(s *State) error { return assert.AnError },
			func(s *State) error { called = true; return nil },
		},
	}
	_, err := b.Run(nil)
	assert.Error(t, err)
	assert.False(t, called)
}

func TestRunRecoversFromPanic(t *testing.T) {
	b := &Bridge{
		Database: memory.New(),
		Stages: []Stage{
			func(s *State) error { panic("boom") },
		},
	}
	_, err := b.Run(nil)
	assert.Error(t, err)
}

func TestDedupeStageDropsSeenProcessedIds(t *testing.T) {
	processed, err := processedids.Load(memory.New())
	require.NoError(t, err)
	require.NoError(t, processed.Add("seen"))

	s := NewState(nil)
	require.NoError(t, s.SetTxInfos([]txinfo.TxInfo{
		{ProcessedID: "seen"},
		{ProcessedID: "fresh"},
	}))

	stage := DedupeStage(processed)
	require.NoError(t, stage(s))

	infos, err := s.TxInfos()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "fresh", infos[0].ProcessedID)
}

func newTestDictionary(t *testing.T) *dictionary.Dictionary {
	t.Helper()
	dict, err := dictionary.Load(memory.New())
	require.NoError(t, err)
	require.NoError(t, dict.Add(dictionary.Entry{
		ChainAAddress:  "0xToken",
		ChainBAddress:  "token.eos",
		DecimalsA:      18,
		DecimalsB:      18,
		AccruedFees:    "0",
		FeeBasisPoints: 100, // 1%
	}))
	return dict
}

func TestFeeAccountStageSubtractsFeeAndAccrues(t *testing.T) {
	dict := newTestDictionary(t)
	s := NewState(nil)
	require.NoError(t, s.SetTxInfos([]txinfo.TxInfo{
		{From: "0xToken", Amount: big.NewInt(10_000)},
	}))

	stage := FeeAccountStage(dict, true)
	require.NoError(t, stage(s))

	infos, err := s.TxInfos()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(9_900), infos[0].Amount)

	entry, ok := dict.GetByAddressOn("0xToken")
	require.True(t, ok)
	assert.Equal(t, "100", entry.AccruedFees)
}

func TestFeeAccountStageSkipsDictionaryMiss(t *testing.T) {
	dict := newTestDictionary(t)
	s := NewState(nil)
	require.NoError(t, s.SetTxInfos([]txinfo.TxInfo{
		{From: "0xUnknown", Amount: big.NewInt(500)},
	}))

	stage := FeeAccountStage(dict, true)
	require.NoError(t, stage(s))

	infos, err := s.TxInfos()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), infos[0].Amount)
}

func TestSignAndPersistStageAssignsSequentialNoncesAndMarksProcessed(t *testing.T) {
	nonceKeys := noncekeys.New(memory.New(), "evm")
	processed, err := processedids.Load(memory.New())
	require.NoError(t, err)

	var seenNonces []uint64
	signFn := func(tInfo txinfo.TxInfo, nonce uint64) (SignedTx, error) {
		seenNonces = append(seenNonces, nonce)
		return SignedTx{TxHash: tInfo.ProcessedID, AccountNonce: nonce}, nil
	}

	s := NewState(nil)
	require.NoError(t, s.SetTxInfos([]txinfo.TxInfo{
		{ProcessedID: "tx1"},
		{ProcessedID: "tx2"},
	}))

	stage := SignAndPersistStage(nonceKeys, processed, signFn)
	require.NoError(t, stage(s))

	assert.Equal(t, []uint64{0, 1}, seenNonces)
	require.Len(t, s.SignedTransactions, 2)
	assert.True(t, processed.Contains("tx1"))
	assert.True(t, processed.Contains("tx2"))

	n, err := nonceKeys.AccountNonce()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestSignAndPersistStageSkipsIncrementOnCustomNonce(t *testing.T) {
	nonceKeys := noncekeys.New(memory.New(), "evm")
	processed, err := processedids.Load(memory.New())
	require.NoError(t, err)

	signFn := func(tInfo txinfo.TxInfo, nonce uint64) (SignedTx, error) {
		return SignedTx{}, nil
	}

	s := NewState(nil)
	s.CustomNonceUsed = true
	require.NoError(t, s.SetTxInfos([]txinfo.TxInfo{{ProcessedID: "tx1"}}))

	stage := SignAndPersistStage(nonceKeys, processed, signFn)
	require.NoError(t, stage(s))

	n, err := nonceKeys.AccountNonce()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}
