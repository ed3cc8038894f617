// Package rpcloop is the JSON-RPC 2.0 control plane and its dispatcher
// (spec.md §4.11, §6.3). The source's error codes are placeholders
// (1337, 1, ...); this assigns a coherent scheme instead (spec.md Open
// Questions).
package rpcloop

// Error code ranges:
//
//	-32700, -32600..-32603  JSON-RPC 2.0 standard (parse error/invalid
//	                request/method not found/invalid params/internal error)
//	1000..1999      Decode / Validation
//	2000..2999      NotInitialized / NotInState
//	3000..3999      Unauthorized (debug-signature failures)
//	4000..4999      Batching / Rpc / Transport
//	5000..5999      Insufficient / Nonce
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeDecodeError     = 1000
	CodeValidationError = 1001

	CodeNotInitialized = 2000
	CodeNotInState     = 2001

	CodeUnauthorized = 3000

	CodeBatchingError = 4000
	CodeNoEndpoint    = 4001
	CodeRpcError      = 4002
	CodeTransportError = 4003

	CodeInsufficientFunds = 5000
	CodeNonceError        = 5001
)
