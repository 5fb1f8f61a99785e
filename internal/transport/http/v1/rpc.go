package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/ollama-mcp/internal/service"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeServerError    = -32000
)

// mcpProtocolVersion is answered to initialize requests.
const mcpProtocolVersion = "2024-11-05"

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// JSONRPC handles one JSON-RPC 2.0 request.
func (h *Handler) JSONRPC(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, rpcFailure(nil, CodeParseError, "failed to read request body"))
	}
	status, resp := h.handleRPC(c.Request().Context(), body)
	return c.JSON(status, resp)
}

// handleRPC decodes and runs one request and returns the HTTP status the
// response should carry. The websocket transport ignores the status.
func (h *Handler) handleRPC(ctx context.Context, data []byte) (status int, resp rpcResponse) {
	var req rpcRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return http.StatusBadRequest, rpcFailure(nil, CodeParseError, "invalid JSON")
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorf("json-rpc %s panicked: %v", req.Method, r)
			status, resp = http.StatusOK, rpcFailure(req.ID, CodeServerError, fmt.Sprint(r))
		}
	}()

	switch req.Method {
	case "initialize":
		return http.StatusOK, rpcSuccess(req.ID, map[string]any{
			"protocolVersion": mcpProtocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]string{"name": service.Name, "version": service.Version},
		})

	case "ping":
		return http.StatusOK, rpcSuccess(req.ID, map[string]any{})

	case "tools/list":
		return http.StatusOK, rpcSuccess(req.ID, map[string]any{"tools": h.tools()})

	case "tools/call":
		var params toolCallRequest
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return http.StatusBadRequest, rpcFailure(req.ID, CodeInvalidParams, "invalid params: "+err.Error())
			}
		}
		if params.Name == "" {
			return http.StatusBadRequest, rpcFailure(req.ID, CodeInvalidParams, "tool name is required")
		}
		if h.service == nil {
			return http.StatusInternalServerError, rpcFailure(req.ID, CodeServerError, "tool handler not initialized")
		}
		result := h.service.HandleToolCall(ctx, params.Name, params.Arguments)
		return http.StatusOK, rpcSuccess(req.ID, map[string]any{"result": result})

	default:
		return http.StatusBadRequest, rpcFailure(req.ID, CodeMethodNotFound, "unknown method: "+req.Method)
	}
}

func rpcSuccess(id json.RawMessage, result any) rpcResponse {
	return rpcResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func rpcFailure(id json.RawMessage, code int, message string) rpcResponse {
	return rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}}
}
