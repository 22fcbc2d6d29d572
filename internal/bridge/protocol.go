// Package bridge exposes the document store to a host application over
// line-delimited JSON-RPC 2.0 on stdin/stdout.
package bridge

import "encoding/json"

// JSON-RPC 2.0 types

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error represents a JSON-RPC 2.0 error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error codes
const (
	ErrorCodeParse          = -32700
	ErrorCodeInvalidRequest = -32600
	ErrorCodeMethodNotFound = -32601
	ErrorCodeInvalidParams  = -32602
	ErrorCodeInternal       = -32603
)

// ErrorData is attached to JSON-RPC errors raised by the adapter.
type ErrorData struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Method names
const (
	MethodInitialize        = "initialize"
	MethodEcho              = "echo"
	MethodInsert            = "insert"
	MethodQuery             = "query"
	MethodGetWithPagination = "getWithPagination"
	MethodStatus            = "status"
	MethodPing              = "ping"
)
