// Package eos decodes EOS action proofs and action data. No EOS chain
// library appears anywhere in the retrieved example corpus, so this
// decoder is hand-rolled directly from the wire layout spec.md specifies
// (fixed byte offsets for amount and memo) rather than adapted from an
// existing idiom.
package eos

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
)

// ActionReceiptDigest is the 32-byte digest of one action receipt, a
// leaf of the block's action Merkle tree (the "action_mroot").
type ActionReceiptDigest [32]byte

// ActionProof is one EOS action together with the Merkle path proving
// its receipt digest is included in the block's action_mroot.
type ActionProof struct {
	Account       string               `json:"account"`
	Name          string               `json:"name"`
	Data          []byte               `json:"data"`
	GlobalSeq     uint64               `json:"globalSequence"`
	ReceiptDigest ActionReceiptDigest  `json:"receiptDigest"`
	MerklePath    []ActionReceiptDigest `json:"merklePath"`
	// LeftAtDepth[i] is true when MerklePath[i] sits to the left of the
	// running hash at that step of the incremerkle walk.
	LeftAtDepth []bool `json:"leftAtDepth"`
}

// BlockHeader carries just the fields the light client needs: the
// action_mroot committed by the producer and the parent linkage.
type BlockHeader struct {
	BlockNum     uint32 `json:"blockNum"`
	BlockID      string `json:"id"`
	PreviousID   string `json:"previous"`
	ActionMRoot  ActionReceiptDigest `json:"actionMroot"`
}

// SubmissionMaterial is the decoded {block_header, action_proofs[],
// interim_block_ids[]} capsule (spec.md §6.5).
type SubmissionMaterial struct {
	BlockHeader     BlockHeader
	ActionProofs    []ActionProof
	InterimBlockIds []string
}

func Decode(raw []byte) (*SubmissionMaterial, error) {
	var sm SubmissionMaterial
	if err := json.Unmarshal(raw, &sm); err != nil {
		return nil, bridgeerr.Decodef(err, "invalid EOS submission material JSON")
	}
	return &sm, nil
}

// incremerkleHash combines a node with its sibling in the canonical EOS
// order (left || right, sha256).
func incremerkleHash(left, right ActionReceiptDigest) ActionReceiptDigest {
	h := sha256.New()
	h.Write(left[:])
	h.Write(right[:])
	var out ActionReceiptDigest
	copy(out[:], h.Sum(nil))
	return out
}

// VerifyActionProof walks proof.MerklePath from the action's own receipt
// digest up to the root, combining with each sibling according to
// proof.LeftAtDepth, and reports whether the reconstructed root equals
// the block's action_mroot.
func VerifyActionProof(proof ActionProof, actionMRoot ActionReceiptDigest) bool {
	if len(proof.MerklePath) != len(proof.LeftAtDepth) {
		return false
	}
	current := proof.ReceiptDigest
	for i, sibling := range proof.MerklePath {
		if proof.LeftAtDepth[i] {
			current = incremerkleHash(sibling, current)
		} else {
			current = incremerkleHash(current, sibling)
		}
	}
	return current == actionMRoot
}

// DecodeActionAmount reads the little-endian u64 amount at byte offset
// [8:16] of the action's data field, per spec.md §4.1.
func DecodeActionAmount(data []byte) (uint64, error) {
	if len(data) < 16 {
		return 0, bridgeerr.Decodef(nil, "action data too short for amount field: %d bytes", len(data))
	}
	return binary.LittleEndian.Uint64(data[8:16]), nil
}

// DecodeActionMemo reads the UTF-8 memo from byte offset [25:] of the
// action's data field, per spec.md §4.1. The memo carries the
// destination address for a peg-out.
func DecodeActionMemo(data []byte) (string, error) {
	if len(data) < 25 {
		return "", bridgeerr.Decodef(nil, "action data too short for memo field: %d bytes", len(data))
	}
	return string(data[25:]), nil
}
