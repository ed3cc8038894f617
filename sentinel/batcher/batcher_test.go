package batcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIsNotReadyWhenEmpty(t *testing.T) {
	b := Default()
	assert.False(t, b.IsReadyToSubmit())
}

func TestIsReadyToSubmitOnceBatchSizeReached(t *testing.T) {
	b := Default()
	b.BatchSize = 2
	b.Push(Block{Number: 1, Hash: "a"})
	assert.False(t, b.IsReadyToSubmit())
	b.Push(Block{Number: 2, Hash: "b", ParentHash: "a"})
	assert.True(t, b.IsReadyToSubmit())
}

func TestIsReadyToSubmitOnSingleSubmissionFlag(t *testing.T) {
	b := Default()
	b.BatchSize = 100
	b.Push(Block{Number: 1, Hash: "a"})
	assert.False(t, b.IsReadyToSubmit())
	b.SetSingleSubmissionsFlag(true)
	assert.True(t, b.IsReadyToSubmit())
}

func TestIsReadyToSubmitAfterDuration(t *testing.T) {
	b := Default()
	b.BatchSize = 100
	b.BatchDuration = time.Minute
	now := time.Now()
	b.nowFn = func() time.Time { return now }
	b.Push(Block{Number: 1, Hash: "a"})
	b.Drain() // sets lastSubmittedAt to `now`
	b.Push(Block{Number: 2, Hash: "b", ParentHash: "a"})
	assert.False(t, b.IsReadyToSubmit())
	b.nowFn = func() time.Time { return now.Add(2 * time.Minute) }
	assert.True(t, b.IsReadyToSubmit())
}

func TestCheckIsChainedPassesForContinuousBlocks(t *testing.T) {
	b := Default()
	b.Push(Block{Number: 1, Hash: "a"})
	b.Push(Block{Number: 2, Hash: "b", ParentHash: "a"})
	b.Push(Block{Number: 3, Hash: "c", ParentHash: "b"})
	assert.NoError(t, b.CheckIsChained())
}

func TestCheckIsChainedFailsOnGap(t *testing.T) {
	b := Default()
	b.Push(Block{Number: 1, Hash: "a"})
	b.Push(Block{Number: 2, Hash: "b", ParentHash: "x"})
	err := b.CheckIsChained()
	assert.Error(t, err)
}

func TestCheckIsChainedPassesForSingleBlock(t *testing.T) {
	b := Default()
	b.Push(Block{Number: 1, Hash: "a"})
	assert.NoError(t, b.CheckIsChained())
}

func TestDrainClearsBlocksAndFlag(t *testing.T) {
	b := Default()
	b.Push(Block{Number: 1, Hash: "a"})
	b.SetSingleSubmissionsFlag(true)
	b.Drain()
	assert.Equal(t, 0, b.Size())
	assert.False(t, b.SingleSubmissionFlag)
}
