// Package codecs decodes and validates chain-native submission material
// for every supported source chain. Validation is limited to what the
// light client needs before it will accept a block: header shape,
// receipts-root equality, and (for EOS) action Merkle-path verification.
package codecs

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/trie"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
)

// ERC20TransferEventTopic is the fixed Keccak-256 topic hash for the
// ERC-20 Transfer(address,address,uint256) event. Two indexed topics
// carry the 20-byte from/to addresses right-aligned in 32-byte words.
var ERC20TransferEventTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// evmRawSubmissionMaterial mirrors the wire schema in spec.md §6.4: the
// whole block may be present, or just the four fields a light client
// walk actually needs (hash, parent_hash, block_number, receipts_root).
// Parsers must accept both shapes.
type evmRawSubmissionMaterial struct {
	Block           *types.Header     `json:"block,omitempty"`
	Receipts        []*types.Receipt  `json:"receipts"`
	Hash            *common.Hash      `json:"hash,omitempty"`
	ParentHash      *common.Hash      `json:"parentHash,omitempty"`
	BlockNumber     *big.Int          `json:"blockNumber,omitempty"`
	ReceiptsRoot    *common.Hash      `json:"receiptsRoot,omitempty"`
	EosRefBlockNum  *uint16           `json:"eosRefBlockNum,omitempty"`
	EosRefBlockPfx  *uint32           `json:"eosRefBlockPrefix,omitempty"`
	AlgoFirstValid  *uint64           `json:"algoFirstValidRound,omitempty"`
}

// EVMSubmissionMaterial is the decoded, chain-shaped capsule used by the
// light client and the extraction stage. It never holds receipts for
// which ReceiptsRootValid() has not been confirmed true, once the light
// client has run its acceptance check.
type EVMSubmissionMaterial struct {
	BlockHash    common.Hash
	ParentHash   common.Hash
	BlockNumber  *big.Int
	ReceiptsRoot common.Hash
	Receipts     []*types.Receipt
}

// DecodeEVMSubmissionMaterial parses the JSON schema described in
// spec.md §6.4, accepting either the full block header or the four
// explicit scalar fields.
func DecodeEVMSubmissionMaterial(raw []byte) (*EVMSubmissionMaterial, error) {
	var r evmRawSubmissionMaterial
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, bridgeerr.Decodef(err, "invalid EVM submission material JSON")
	}

	sm := &EVMSubmissionMaterial{Receipts: r.Receipts}
	switch {
	case r.Block != nil:
		sm.BlockHash = r.Block.Hash()
		sm.ParentHash = r.Block.ParentHash
		sm.BlockNumber = new(big.Int).Set(r.Block.Number)
		sm.ReceiptsRoot = r.Block.ReceiptHash
	case r.Hash != nil && r.ParentHash != nil && r.BlockNumber != nil && r.ReceiptsRoot != nil:
		sm.BlockHash = *r.Hash
		sm.ParentHash = *r.ParentHash
		sm.BlockNumber = r.BlockNumber
		sm.ReceiptsRoot = *r.ReceiptsRoot
	default:
		return nil, bridgeerr.Decodef(nil, "submission material has neither a full block nor the explicit hash/parentHash/blockNumber/receiptsRoot fields")
	}
	return sm, nil
}

// ReceiptsRootValid recomputes the receipts trie root from sm.Receipts
// (each receipt's EIP-2718 consensus encoding, hashed into a Merkle-
// Patricia trie) and compares it byte-for-byte against sm.ReceiptsRoot.
func (sm *EVMSubmissionMaterial) ReceiptsRootValid() bool {
	if len(sm.Receipts) == 0 {
		return sm.ReceiptsRoot == types.EmptyRootHash
	}
	computed := types.DeriveSha(types.Receipts(sm.Receipts), trie.NewStackTrie(nil))
	return computed == sm.ReceiptsRoot
}

// FilterLogsByAddress returns a new receipt slice with every log entry
// not originating from one of the given addresses removed. Receipts
// left with zero logs are dropped entirely. Nothing in this repository
// calls it: neither lightclient nor sentinel/batcher filters receipts
// itself.
func FilterLogsByAddress(receipts []*types.Receipt, addrs []common.Address) []*types.Receipt {
	allow := make(map[common.Address]bool, len(addrs))
	for _, a := range addrs {
		allow[a] = true
	}
	out := make([]*types.Receipt, 0, len(receipts))
	for _, r := range receipts {
		kept := r.Logs[:0:0]
		for _, l := range r.Logs {
			if allow[l.Address] {
				kept = append(kept, l)
			}
		}
		if len(kept) == 0 {
			continue
		}
		cp := *r
		cp.Logs = kept
		out = append(out, &cp)
	}
	return out
}

// AddressFromTopic extracts the 20-byte address right-aligned in an
// indexed event topic word.
func AddressFromTopic(topic common.Hash) common.Address {
	return common.BytesToAddress(topic[12:])
}
