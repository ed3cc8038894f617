package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnetwork-association/ptokens-bridge/db"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := New()
	require.NoError(t, s.Put([]byte("k"), []byte("v"), db.SensitivityNone))
	got, err := s.Get([]byte("k"), db.SensitivityNone)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestGetSensitivityMismatch(t *testing.T) {
	s := New()
	require.NoError(t, s.Put([]byte("k"), []byte("v"), db.SensitivityMax))
	_, err := s.Get([]byte("k"), db.SensitivityNone)
	assert.Error(t, err)
}

func TestGetMissingKey(t *testing.T) {
	s := New()
	_, err := s.Get([]byte("missing"), db.SensitivityNone)
	assert.Error(t, err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := New()
	require.NoError(t, s.Put([]byte("k"), []byte("v"), db.SensitivityNone))
	require.NoError(t, s.Delete([]byte("k")))
	require.NoError(t, s.Delete([]byte("k")))
	_, err := s.Get([]byte("k"), db.SensitivityNone)
	assert.Error(t, err)
}

func TestRollbackRestoresPreTransactionState(t *testing.T) {
	s := New()
	require.NoError(t, s.Put([]byte("k"), []byte("before"), db.SensitivityNone))
	require.NoError(t, s.StartTransaction())
	require.NoError(t, s.Put([]byte("k"), []byte("after"), db.SensitivityNone))
	require.NoError(t, s.Rollback())
	got, err := s.Get([]byte("k"), db.SensitivityNone)
	require.NoError(t, err)
	assert.Equal(t, []byte("before"), got)
}

func TestStartTransactionRejectsNesting(t *testing.T) {
	s := New()
	require.NoError(t, s.StartTransaction())
	assert.Error(t, s.StartTransaction())
	require.NoError(t, s.EndTransaction())
}
