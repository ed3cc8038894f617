package codecs

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashFromByte(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b
	return h
}

func TestMerkleRootSingleTxid(t *testing.T) {
	h := hashFromByte(1)
	assert.Equal(t, h, MerkleRoot([]chainhash.Hash{h}))
}

func TestMerkleRootOddCountDuplicatesLast(t *testing.T) {
	a, b, c := hashFromByte(1), hashFromByte(2), hashFromByte(3)
	withDup := MerkleRoot([]chainhash.Hash{a, b, c, c})
	odd := MerkleRoot([]chainhash.Hash{a, b, c})
	assert.Equal(t, withDup, odd)
}

func TestMerkleRootEmptyIsZeroHash(t *testing.T) {
	assert.Equal(t, chainhash.Hash{}, MerkleRoot(nil))
}

func TestMerkleRootValidAgainstSingleTxBlock(t *testing.T) {
	tx := wire.NewMsgTx(wire.TxVersion)
	txid := tx.TxHash()
	block := &wire.MsgBlock{
		Header:       wire.BlockHeader{MerkleRoot: txid},
		Transactions: []*wire.MsgTx{tx},
	}
	assert.True(t, MerkleRootValid(block))
}

func TestMerkleRootValidDetectsTamperedRoot(t *testing.T) {
	tx := wire.NewMsgTx(wire.TxVersion)
	block := &wire.MsgBlock{
		Header:       wire.BlockHeader{MerkleRoot: hashFromByte(0xFF)},
		Transactions: []*wire.MsgTx{tx},
	}
	assert.False(t, MerkleRootValid(block))
}

func TestMatchDepositAddressFindsWatchedAddress(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	addr, err := btcutil.NewAddressPubKeyHash(make([]byte, 20), params)
	require.NoError(t, err)
	pkScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxOut(wire.NewTxOut(5000, pkScript))

	deposits := []DepositAddress{{Address: addr}}
	match, value, ok := MatchDepositAddress(tx, deposits, params)
	require.True(t, ok)
	assert.Equal(t, int64(5000), value)
	assert.Equal(t, addr.EncodeAddress(), match.Address.EncodeAddress())
}

func TestMatchDepositAddressMissReturnsFalse(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	otherAddr, err := btcutil.NewAddressPubKeyHash(make([]byte, 20), params)
	require.NoError(t, err)
	watchedAddr, err := btcutil.NewAddressPubKeyHash(append(make([]byte, 19), 1), params)
	require.NoError(t, err)
	pkScript, err := txscript.PayToAddrScript(otherAddr)
	require.NoError(t, err)

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxOut(wire.NewTxOut(1000, pkScript))

	_, _, ok := MatchDepositAddress(tx, []DepositAddress{{Address: watchedAddr}}, params)
	assert.False(t, ok)
}
