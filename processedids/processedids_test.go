package processedids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnetwork-association/ptokens-bridge/db/memory"
)

func TestAddThenContains(t *testing.T) {
	s, err := Load(memory.New())
	require.NoError(t, err)
	assert.False(t, s.Contains("id-1"))
	require.NoError(t, s.Add("id-1"))
	assert.True(t, s.Contains("id-1"))
}

func TestAddIsIdempotent(t *testing.T) {
	s, err := Load(memory.New())
	require.NoError(t, err)
	require.NoError(t, s.Add("id-1"))
	require.NoError(t, s.Add("id-1"))
	assert.Equal(t, 1, s.Size())
}

func TestDebugRemoveIsOnlyWayToUnmark(t *testing.T) {
	s, err := Load(memory.New())
	require.NoError(t, err)
	require.NoError(t, s.Add("id-1"))
	require.NoError(t, s.DebugRemove("id-1"))
	assert.False(t, s.Contains("id-1"))
}

func TestLoadReloadsPersistedSet(t *testing.T) {
	store := memory.New()
	s, err := Load(store)
	require.NoError(t, err)
	require.NoError(t, s.Add("id-1"))

	reloaded, err := Load(store)
	require.NoError(t, err)
	assert.True(t, reloaded.Contains("id-1"))
}
