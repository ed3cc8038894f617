// Package batcher holds a bounded sequence of submission material for
// one chain and decides when it is ready to submit (spec.md §4.9).
// Grounded verbatim on original_source's v3_bridges/sentinel batching.rs
// (Batch's push/drain/is_ready_to_submit/check_is_chained semantics).
package batcher

import (
	"time"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
)

// Block is the minimal shape the batcher needs: its own number/hash and
// its parent's hash, for the chaining check.
type Block struct {
	Number     uint64
	Hash       string
	ParentHash string
}

// Batch mirrors the teacher's Rust Batch struct: confs, batch size and
// duration thresholds, the accumulated blocks, and the single-submission
// override flag.
type Batch struct {
	Confs               uint64
	BatchSize           uint64
	BatchDuration        time.Duration
	SingleSubmissionFlag bool

	blocks                []Block
	lastSubmittedAt       time.Time
	nowFn                 func() time.Time
}

// Default matches the teacher's Rust Default impl: batch_duration 300s
// (5 minutes), batch_size 1, confs 1.
func Default() *Batch {
	return &Batch{
		Confs:           1,
		BatchSize:       1,
		BatchDuration:   300 * time.Second,
		lastSubmittedAt: time.Now(),
		nowFn:           time.Now,
	}
}

// now reads the batcher's clock, defaulting to time.Now (tests may
// override nowFn to make elapsed-time behaviour deterministic).
func (b *Batch) now() time.Time {
	if b.nowFn == nil {
		return time.Now()
	}
	return b.nowFn()
}

// SetSingleSubmissionsFlag forces the next IsReadyToSubmit to return true
// regardless of size/duration thresholds.
func (b *Batch) SetSingleSubmissionsFlag(v bool) { b.SingleSubmissionFlag = v }

// Push appends block to the batch. It does no receipt prefiltering:
// Block carries no receipts, and no caller in this repository filters
// them (by router/state-manager address or otherwise) before Push.
func (b *Batch) Push(block Block) {
	b.blocks = append(b.blocks, block)
}

// Size returns the number of blocks currently batched.
func (b *Batch) Size() int { return len(b.blocks) }

// Blocks returns the batched blocks in submission order.
func (b *Batch) Blocks() []Block {
	out := make([]Block, len(b.blocks))
	copy(out, b.blocks)
	return out
}

// secondsSinceLastSubmission returns math.MaxUint64 seconds on a clock
// error in the source; Go's monotonic clock cannot error, so this always
// succeeds, but the fallback value is kept as the documented "preferable
// to the batch never being ready" behaviour for the zero-value case
// (lastSubmittedAt never set).
func (b *Batch) secondsSinceLastSubmission() uint64 {
	if b.lastSubmittedAt.IsZero() {
		return ^uint64(0)
	}
	return uint64(b.now().Sub(b.lastSubmittedAt).Seconds())
}

// IsReadyToSubmit is false if empty; true if the single-submission flag
// is set; true if size >= BatchSize; true if elapsed time since the last
// submission >= BatchDuration; else false.
func (b *Batch) IsReadyToSubmit() bool {
	if len(b.blocks) == 0 {
		return false
	}
	if b.SingleSubmissionFlag {
		return true
	}
	if uint64(len(b.blocks)) >= b.BatchSize {
		return true
	}
	return b.secondsSinceLastSubmission() >= uint64(b.BatchDuration.Seconds())
}

// UnchainedBlocksError reports the actual block numbers of a pair of
// adjacent blocks in a batch that fail the continuity invariant, not
// their array indices.
type UnchainedBlocksError struct {
	BlockNum       uint64
	ParentBlockNum uint64
}

func (e *UnchainedBlocksError) Error() string {
	return bridgeerr.Batchingf("block %d does not chain to block %d", e.BlockNum, e.ParentBlockNum).Error()
}

// CheckIsChained verifies adjacent-pair continuity across the batch. A
// batch with fewer than two blocks always passes: there are too few
// blocks to matter.
func (b *Batch) CheckIsChained() error {
	if len(b.blocks) < 2 {
		return nil
	}
	for i := len(b.blocks) - 1; i > 0; i-- {
		if b.blocks[i].ParentHash != b.blocks[i-1].Hash {
			return &UnchainedBlocksError{
				BlockNum:       b.blocks[i].Number,
				ParentBlockNum: b.blocks[i-1].Number,
			}
		}
	}
	return nil
}

// Drain resets the batch after a successful submission: clears the
// accumulated blocks, clears the single-submission flag, and records the
// time of this submission.
func (b *Batch) Drain() {
	b.SingleSubmissionFlag = false
	b.blocks = nil
	b.lastSubmittedAt = b.now()
}
