package sealed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnetwork-association/ptokens-bridge/db"
	"github.com/pnetwork-association/ptokens-bridge/db/memory"
)

func TestSealedRoundTrip(t *testing.T) {
	store := Wrap(memory.New(), []byte("correct horse battery staple"))
	require.NoError(t, store.Put([]byte("priv"), []byte("secret-key-bytes"), db.SensitivityMax))
	got, err := store.Get([]byte("priv"), db.SensitivityMax)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret-key-bytes"), got)
}

func TestSealedValueIsNotStoredInPlaintext(t *testing.T) {
	inner := memory.New()
	store := Wrap(inner, []byte("passphrase"))
	require.NoError(t, store.Put([]byte("priv"), []byte("secret-key-bytes"), db.SensitivityMax))

	raw, err := inner.Get([]byte("priv"), db.SensitivityMax)
	require.NoError(t, err)
	assert.NotEqual(t, []byte("secret-key-bytes"), raw)
}

func TestWrongPassphraseFailsToUnseal(t *testing.T) {
	inner := memory.New()
	store := Wrap(inner, []byte("passphrase-a"))
	require.NoError(t, store.Put([]byte("priv"), []byte("secret-key-bytes"), db.SensitivityMax))

	wrongStore := Wrap(inner, []byte("passphrase-b"))
	_, err := wrongStore.Get([]byte("priv"), db.SensitivityMax)
	assert.Error(t, err)
}

func TestNonMaxSensitivityPassesThroughUnsealed(t *testing.T) {
	store := Wrap(memory.New(), []byte("passphrase"))
	require.NoError(t, store.Put([]byte("k"), []byte("plain"), db.SensitivityNone))
	got, err := store.Get([]byte("k"), db.SensitivityNone)
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), got)
}

func TestClearBytesZeroes(t *testing.T) {
	b := []byte{1, 2, 3}
	ClearBytes(b)
	assert.Equal(t, []byte{0, 0, 0}, b)
}
