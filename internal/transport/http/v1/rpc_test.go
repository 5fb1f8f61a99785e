package v1

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/ollama-mcp/internal/tools"
)

func TestJSONRPC(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		nilService bool
		wantStatus int
		wantCode   float64
		wantID     any
	}{
		{name: "invalid json", body: `{"jsonrpc":`, wantStatus: http.StatusBadRequest, wantCode: CodeParseError, wantID: nil},
		{name: "unknown method", body: `{"jsonrpc":"2.0","id":3,"method":"tools/destroy"}`, wantStatus: http.StatusBadRequest, wantCode: CodeMethodNotFound, wantID: float64(3)},
		{name: "missing tool name", body: `{"jsonrpc":"2.0","id":"a","method":"tools/call","params":{}}`, wantStatus: http.StatusBadRequest, wantCode: CodeInvalidParams, wantID: "a"},
		{name: "malformed params", body: `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":[1]}`, wantStatus: http.StatusBadRequest, wantCode: CodeInvalidParams, wantID: float64(4)},
		{name: "not initialized", body: `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"ollama_get_version"}}`, nilService: true, wantStatus: http.StatusInternalServerError, wantCode: CodeServerError, wantID: float64(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			if tt.nilService {
				h = NewHandler(nil, Options{})
			}
			rec := doJSON(t, http.MethodPost, "/rpc", tt.body, h.JSONRPC)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "2.0", body["jsonrpc"])
			assert.Equal(t, tt.wantID, body["id"])
			assert.NotContains(t, body, "result")
			rpcErr := body["error"].(map[string]any)
			assert.Equal(t, tt.wantCode, rpcErr["code"])
			assert.NotEmpty(t, rpcErr["message"])
		})
	}
}

func TestJSONRPCToolsList(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, http.MethodPost, "/rpc", `{"jsonrpc":"2.0","id":7,"method":"tools/list"}`, h.JSONRPC)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(7), body["id"])
	result := body["result"].(map[string]any)
	assert.Len(t, result["tools"], len(tools.Catalog()))
}

func TestJSONRPCToolsCall(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, http.MethodPost, "/rpc",
		`{"jsonrpc":"2.0","id":"req-1","method":"tools/call","params":{"name":"ollama_get_model_size","arguments":{"model":"llama3.2:latest"}}}`,
		h.JSONRPC)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "req-1", body["id"])
	result := body["result"].(map[string]any)["result"].(map[string]any)
	assert.Equal(t, "llama3.2:latest", result["model"])
	assert.Equal(t, "1.88 GB", result["size_human"])
}

func TestJSONRPCToolFailureIsResult(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, http.MethodPost, "/rpc",
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ollama_show_model","arguments":{"model":"missing"}}}`,
		h.JSONRPC)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.NotContains(t, body, "error")
	result := body["result"].(map[string]any)["result"].(map[string]any)
	assert.Equal(t, "OllamaAPIError", result["error_type"])
}

func TestJSONRPCInitializeAndPing(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, http.MethodPost, "/rpc", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`, h.JSONRPC)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode(t, rec)["result"].(map[string]any)
	assert.Equal(t, mcpProtocolVersion, result["protocolVersion"])
	assert.Equal(t, "Ollama MCP Server", result["serverInfo"].(map[string]any)["name"])

	rec = doJSON(t, http.MethodPost, "/rpc", `{"jsonrpc":"2.0","id":2,"method":"ping"}`, h.JSONRPC)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":2,"result":{}}`, rec.Body.String())
}
