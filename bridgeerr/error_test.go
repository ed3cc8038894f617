package bridgeerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Rpcf(cause, "dial %s", "endpoint")
	assert.Contains(t, err.Error(), "Rpc")
	assert.Contains(t, err.Error(), "dial endpoint")
	assert.Contains(t, err.Error(), "boom")
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := Unauthorizedf("signature invalid")
	assert.Equal(t, "Unauthorized: signature invalid", err.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := Decodef(cause, "bad bytes")
	require.ErrorIs(t, err, cause)
}

func TestIs(t *testing.T) {
	err := Noncef("nonce too low")
	assert.True(t, Is(err, Nonce))
	assert.False(t, Is(err, Insufficient))
	assert.False(t, Is(errors.New("plain"), Nonce))
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "NoOverwrite", NoOverwrite.String())
	assert.Equal(t, "Unknown", Category(999).String())
}
