package codecs

import (
	"bytes"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
)

// BTCSubmissionMaterial is a decoded Bitcoin block together with the
// deposit-address list the peg-in extraction stage matches transactions
// against.
type BTCSubmissionMaterial struct {
	Header         wire.BlockHeader
	Transactions   []*wire.MsgTx
	DepositAddrs   []DepositAddress
}

// DepositAddress is one entry of the watched deposit-address list: a p2sh
// or p2pkh address paired with the hash of the destination eth address
// and nonce that produced it.
type DepositAddress struct {
	Address               btcutil.Address
	EthAddressAndNonceHash chainhash.Hash
}

// DecodeBTCBlock parses a raw Bitcoin block (wire format) into its
// header and transactions.
func DecodeBTCBlock(raw []byte) (*wire.MsgBlock, error) {
	block := &wire.MsgBlock{}
	if err := block.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, bridgeerr.Decodef(err, "invalid BTC block wire format")
	}
	return block, nil
}

// MerkleRoot computes a block's transaction Merkle root the way Bitcoin
// does: leaves are double-SHA256 txids, each level pairs adjacent hashes
// (duplicating the last one when the level has an odd count) and
// double-SHA256s the concatenation, until a single root hash remains.
func MerkleRoot(txids []chainhash.Hash) chainhash.Hash {
	if len(txids) == 0 {
		return chainhash.Hash{}
	}
	level := make([]chainhash.Hash, len(txids))
	copy(level, txids)

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			var buf [chainhash.HashSize * 2]byte
			copy(buf[:chainhash.HashSize], level[i][:])
			copy(buf[chainhash.HashSize:], level[i+1][:])
			next = append(next, chainhash.DoubleHashH(buf[:]))
		}
		level = next
	}
	return level[0]
}

// MerkleRootValid recomputes the Merkle root over block's transactions
// and compares it against the header's committed MerkleRoot.
func MerkleRootValid(block *wire.MsgBlock) bool {
	if len(block.Transactions) == 0 {
		return block.Header.MerkleRoot == chainhash.Hash{}
	}
	txids := make([]chainhash.Hash, len(block.Transactions))
	for i, tx := range block.Transactions {
		txids[i] = tx.TxHash()
	}
	return MerkleRoot(txids) == block.Header.MerkleRoot
}

// MatchDepositAddress reports whether any output of tx pays one of the
// watched deposit addresses (p2sh or p2pkh), returning the matching
// entry and the paid amount in satoshis.
func MatchDepositAddress(tx *wire.MsgTx, deposits []DepositAddress, params *chaincfg.Params) (*DepositAddress, int64, bool) {
	for _, out := range tx.TxOut {
		_, addrs, _, err := txscript.ExtractPkScriptAddrs(out.PkScript, params)
		if err != nil || len(addrs) != 1 {
			continue
		}
		for i := range deposits {
			if addrs[0].EncodeAddress() == deposits[i].Address.EncodeAddress() {
				d := deposits[i]
				return &d, out.Value, true
			}
		}
	}
	return nil, 0, false
}
