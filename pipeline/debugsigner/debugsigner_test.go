package debugsigner

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSignedHash(t *testing.T) (*Signatory, []byte, []byte) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hash := crypto.Keccak256([]byte("debug command"))
	sig, err := crypto.Sign(hash, key)
	require.NoError(t, err)
	return &Signatory{Address: crypto.PubkeyToAddress(key.PublicKey)}, hash, sig
}

func TestValidateAcceptsCorrectSignature(t *testing.T) {
	sig, hash, signature := newSignedHash(t)
	assert.True(t, sig.Validate(signature, hash))
}

func TestValidateRejectsWrongLengthSignature(t *testing.T) {
	sig, hash, _ := newSignedHash(t)
	assert.False(t, sig.Validate([]byte{0x01, 0x02}, hash))
}

func TestValidateRejectsMismatchedAddress(t *testing.T) {
	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	_, hash, signature := newSignedHash(t)
	mismatched := &Signatory{Address: crypto.PubkeyToAddress(other.PublicKey)}
	assert.False(t, mismatched.Validate(signature, hash))
}

func TestValidateAndIncrementAdvancesOnlyMatchingSignatory(t *testing.T) {
	matching, hash, signature := newSignedHash(t)
	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	decoy := &Signatory{Address: crypto.PubkeyToAddress(other.PublicKey)}

	idx, err := ValidateAndIncrement([]*Signatory{decoy, matching}, signature, hash)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, uint64(1), matching.Nonce)
	assert.Equal(t, uint64(0), decoy.Nonce)
}

func TestValidateAndIncrementFailsWhenNoneMatch(t *testing.T) {
	_, hash, signature := newSignedHash(t)
	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	decoy := &Signatory{Address: crypto.PubkeyToAddress(other.PublicKey)}

	idx, err := ValidateAndIncrement([]*Signatory{decoy}, signature, hash)
	assert.Error(t, err)
	assert.Equal(t, -1, idx)
	assert.Equal(t, uint64(0), decoy.Nonce)
}
