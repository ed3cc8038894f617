package eos

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecodeParsesSubmissionMaterial(t *testing.T) {
	raw := []byte(`{
		"blockHeader": {"blockNum": 10, "id": "abc", "previous": "xyz"},
		"actionProofs": [],
		"interimBlockIds": ["a", "b"]
	}`)
	sm, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), sm.BlockHeader.BlockNum)
	assert.Len(t, sm.InterimBlockIds, 2)
}

func TestVerifyActionProofSingleSiblingOnRight(t *testing.T) {
	leaf := ActionReceiptDigest{0x01}
	sibling := ActionReceiptDigest{0x02}
	root := incremerkleHash(leaf, sibling)

	proof := ActionProof{
		ReceiptDigest: leaf,
		MerklePath:    []ActionReceiptDigest{sibling},
		LeftAtDepth:   []bool{false},
	}
	assert.True(t, VerifyActionProof(proof, root))
}

func TestVerifyActionProofSingleSiblingOnLeft(t *testing.T) {
	leaf := ActionReceiptDigest{0x01}
	sibling := ActionReceiptDigest{0x02}
	root := incremerkleHash(sibling, leaf)

	proof := ActionProof{
		ReceiptDigest: leaf,
		MerklePath:    []ActionReceiptDigest{sibling},
		LeftAtDepth:   []bool{true},
	}
	assert.True(t, VerifyActionProof(proof, root))
}

func TestVerifyActionProofRejectsMismatchedPathLengths(t *testing.T) {
	proof := ActionProof{
		MerklePath:  []ActionReceiptDigest{{0x01}},
		LeftAtDepth: []bool{true, false},
	}
	assert.False(t, VerifyActionProof(proof, ActionReceiptDigest{}))
}

func TestVerifyActionProofRejectsWrongRoot(t *testing.T) {
	leaf := ActionReceiptDigest{0x01}
	sibling := ActionReceiptDigest{0x02}
	proof := ActionProof{
		ReceiptDigest: leaf,
		MerklePath:    []ActionReceiptDigest{sibling},
		LeftAtDepth:   []bool{false},
	}
	assert.False(t, VerifyActionProof(proof, ActionReceiptDigest{0xFF}))
}

func TestDecodeActionAmountReadsLittleEndianU64(t *testing.T) {
	data := make([]byte, 16)
	binary.LittleEndian.PutUint64(data[8:16], 123456)
	amount, err := DecodeActionAmount(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(123456), amount)
}

func TestDecodeActionAmountRejectsShortData(t *testing.T) {
	_, err := DecodeActionAmount(make([]byte, 10))
	assert.Error(t, err)
}

func TestDecodeActionMemoReadsTailBytes(t *testing.T) {
	data := make([]byte, 25)
	data = append(data, []byte("destination-memo")...)
	memo, err := DecodeActionMemo(data)
	require.NoError(t, err)
	assert.Equal(t, "destination-memo", memo)
}

func TestDecodeActionMemoRejectsShortData(t *testing.T) {
	_, err := DecodeActionMemo(make([]byte, 5))
	assert.Error(t, err)
}
