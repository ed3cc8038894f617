package rpcloop

import (
	"encoding/json"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
)

// Request is one JSON-RPC 2.0 call.
type Request struct {
	ID      json.RawMessage `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is the JSON-RPC 2.0 reply: exactly one of Result/Error is
// set.
type Response struct {
	ID      json.RawMessage `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Handler processes one decoded request's params and returns a raw JSON
// result, or an error.
type Handler func(params json.RawMessage) (json.RawMessage, error)

// call is the internal request/responder pair passed over the Loop's
// channel, per spec.md §5's "typed channels (request/responder pairs)"
// concurrency model.
type call struct {
	method string
	params json.RawMessage
	reply  chan Response
}

// Loop is the JSON-RPC dispatcher: it receives typed request messages on
// a channel and dispatches each to the registered handler. Handlers that
// fail with a Rpc/Transport-classified error are retried by the caller's
// own endpoint-rotation loop, not by Loop itself; Loop's contract is
// simply "never drop a responder".
type Loop struct {
	handlers map[string]Handler
	requests chan call
	done     chan struct{}
}

func New() *Loop {
	return &Loop{
		handlers: make(map[string]Handler),
		requests: make(chan call, 64),
		done:     make(chan struct{}),
	}
}

// Register wires a method name to its handler. Methods named in
// spec.md §6.3 (ping, get, put, delete, getStatus, getCoreState,
// getInclusionProof, init, resetChain, processBlock, startSyncer,
// stopSyncer, getSyncState, getBalances, signMessage,
// getLatestBlockInfos, getAttestationCertificate,
// getAttestationSignature, addDebugSigners, removeDebugSigner,
// hardReset) are registered by the process entry point, not by this
// package.
func (l *Loop) Register(method string, h Handler) {
	l.handlers[method] = h
}

// Dispatch decodes req, routes it to the registered handler, and returns
// the JSON-RPC 2.0 response. Unknown methods return CodeMethodNotFound
// with a descriptive message. The error's Message may itself be JSON
// (e.g. a structured validation failure) and is never double-encoded.
func (l *Loop) Dispatch(req Request) Response {
	handler, ok := l.handlers[req.Method]
	if !ok {
		return errorResponse(req.ID, CodeMethodNotFound, "unknown method: "+req.Method)
	}
	result, err := handler(req.Params)
	if err != nil {
		return errorResponse(req.ID, codeForError(err), err.Error())
	}
	return Response{ID: req.ID, JSONRPC: "2.0", Result: result}
}

func errorResponse(id json.RawMessage, code int, message string) Response {
	return Response{ID: id, JSONRPC: "2.0", Error: &RPCError{Code: code, Message: message}}
}

func codeForError(err error) int {
	be, ok := err.(*bridgeerr.Error)
	if !ok {
		return CodeInternalError
	}
	switch be.Category {
	case bridgeerr.Decode:
		return CodeDecodeError
	case bridgeerr.Validation:
		return CodeValidationError
	case bridgeerr.NotInitialized:
		return CodeNotInitialized
	case bridgeerr.NotInState:
		return CodeNotInState
	case bridgeerr.NoOverwrite:
		return CodeNotInState
	case bridgeerr.Unauthorized:
		return CodeUnauthorized
	case bridgeerr.Batching:
		return CodeBatchingError
	case bridgeerr.Rpc:
		return CodeRpcError
	case bridgeerr.Insufficient:
		return CodeInsufficientFunds
	case bridgeerr.Nonce:
		return CodeNonceError
	default:
		return CodeInternalError
	}
}

// Run drains the request channel until Stop is called or ctrlC fires,
// dispatching each call and sending its response to the caller's
// responder. This is the one suspension point (channel recv) the
// RPC-loop task blocks on, besides WebSocket send/recv performed inside
// handlers themselves.
func (l *Loop) Run(ctrlC <-chan struct{}) {
	for {
		select {
		case c := <-l.requests:
			result, err := l.dispatchRaw(c.method, c.params)
			resp := Response{JSONRPC: "2.0"}
			if err != nil {
				resp.Error = &RPCError{Code: codeForError(err), Message: err.Error()}
			} else {
				resp.Result = result
			}
			c.reply <- resp
		case <-ctrlC:
			return
		case <-l.done:
			return
		}
	}
}

func (l *Loop) dispatchRaw(method string, params json.RawMessage) (json.RawMessage, error) {
	handler, ok := l.handlers[method]
	if !ok {
		return nil, bridgeerr.New(bridgeerr.NotInState, "unknown method: "+method, nil)
	}
	return handler(params)
}

// Submit enqueues a request and blocks until Run has produced a
// response for it. The responder channel is never dropped: Submit
// always returns, even under endpoint failure, because retry happens
// inside the handler (via sentinel/endpoints), not by abandoning the
// caller.
func (l *Loop) Submit(method string, params json.RawMessage) Response {
	reply := make(chan Response, 1)
	l.requests <- call{method: method, params: params, reply: reply}
	return <-reply
}

// Stop terminates Run.
func (l *Loop) Stop() {
	close(l.done)
}
