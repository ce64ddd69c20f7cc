package rpc

import (
	"github.com/openexch/marketd/internal/core/exchange"
)

// RpcError is a transport or parameter level failure. Operation outcomes are
// never RpcErrors: a rejected list/buy/cancel still produces a successful
// response carrying an EngineResult.
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message,omitempty"`
}

func (e RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// RPC error codes. The JSON-RPC range is standard; the small positive codes
// follow the rippled numbering for general purpose and object errors.
const (
	RpcUNKNOWN          = -1
	RpcJSON_RPC         = -32600
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603
	RpcPARSE_ERROR      = -32700

	RpcGENERAL         = 1
	RpcMISSING_COMMAND = 2

	RpcOBJECT_NOT_FOUND = 92
)

// NewRpcError builds an error with an explicit code and short error string.
func NewRpcError(code int, error, message string) *RpcError {
	return &RpcError{
		Code:        code,
		ErrorString: error,
		Message:     message,
	}
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", message)
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", message)
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "Unknown method: "+method)
}

// RpcErrorMissingField reports a required parameter that was not supplied.
func RpcErrorMissingField(field string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "Missing field '"+field+"'.")
}

func RpcErrorObjectNotFound(message string) *RpcError {
	return NewRpcError(RpcOBJECT_NOT_FOUND, "objectNotFound", message)
}

// EngineResult is the wire form of an operation outcome. Both accepted and
// rejected submissions are reported this way; Applied distinguishes them.
type EngineResult struct {
	EngineResult string `json:"engine_result"`
	Code         int    `json:"engine_result_code"`
	Message      string `json:"engine_result_message"`
	Applied      bool   `json:"applied"`
	OperationID  string `json:"operation_id,omitempty"`
}

// engineResult flattens an apply result for the response envelope.
func engineResult(res exchange.ApplyResult, opID string) EngineResult {
	return EngineResult{
		EngineResult: res.Result.String(),
		Code:         int(res.Result),
		Message:      res.Message,
		Applied:      res.Applied,
		OperationID:  opID,
	}
}
