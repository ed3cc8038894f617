package rpcloop

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
)

func TestDispatchUnknownMethodReturnsMethodNotFound(t *testing.T) {
	l := New()
	resp := l.Dispatch(Request{ID: json.RawMessage(`1`), Method: "nope"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)
}

func TestDispatchRoutesToRegisteredHandler(t *testing.T) {
	l := New()
	l.Register("ping", func(params json.RawMessage) (json.RawMessage, error) {
		return json.RawMessage(`"pong"`), nil
	})
	resp := l.Dispatch(Request{ID: json.RawMessage(`1`), Method: "ping"})
	assert.Nil(t, resp.Error)
	assert.Equal(t, json.RawMessage(`"pong"`), resp.Result)
}

func TestDispatchMapsBridgeErrorCategoryToCode(t *testing.T) {
	l := New()
	l.Register("boom", func(params json.RawMessage) (json.RawMessage, error) {
		return nil, bridgeerr.Unauthorizedf("bad signature")
	})
	resp := l.Dispatch(Request{ID: json.RawMessage(`1`), Method: "boom"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeUnauthorized, resp.Error.Code)
}

func TestDispatchUnknownErrorTypeMapsToInternalError(t *testing.T) {
	l := New()
	l.Register("boom", func(params json.RawMessage) (json.RawMessage, error) {
		return nil, assert.AnError
	})
	resp := l.Dispatch(Request{ID: json.RawMessage(`1`), Method: "boom"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternalError, resp.Error.Code)
}

func TestRunDispatchesSubmittedCallsAndStops(t *testing.T) {
	l := New()
	l.Register("echo", func(params json.RawMessage) (json.RawMessage, error) {
		return params, nil
	})
	ctrlC := make(chan struct{})
	done := make(chan struct{})
	go func() {
		l.Run(ctrlC)
		close(done)
	}()

	resp := l.Submit("echo", json.RawMessage(`{"x":1}`))
	assert.Nil(t, resp.Error)
	assert.Equal(t, json.RawMessage(`{"x":1}`), resp.Result)

	l.Stop()
	<-done
}

func TestRunStopsOnCtrlC(t *testing.T) {
	l := New()
	ctrlC := make(chan struct{})
	done := make(chan struct{})
	go func() {
		l.Run(ctrlC)
		close(done)
	}()
	close(ctrlC)
	<-done
}
