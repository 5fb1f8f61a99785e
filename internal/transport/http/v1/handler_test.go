package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/ollama-mcp/internal/adapter/ollama"
	"github.com/xiaot623/gogo/ollama-mcp/internal/repository"
	"github.com/xiaot623/gogo/ollama-mcp/internal/service"
	"github.com/xiaot623/gogo/ollama-mcp/internal/tools"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	svc := service.New(ollama.NewMockClient(), store.NewFileStore(t.TempDir(), time.Hour))
	t.Cleanup(func() { svc.Close() })
	return NewHandler(svc, Options{})
}

func doJSON(t *testing.T, method, path, body string, handle func(echo.Context) error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)

	require.NoError(t, handle(c))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRoot(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, http.MethodGet, "/", "", h.Root)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Ollama MCP Server", body["name"])
	assert.Equal(t, "0.1.0", body["version"])
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, float64(len(tools.Catalog())), body["tools_count"])
}

func TestHealth(t *testing.T) {
	t.Run("initialized", func(t *testing.T) {
		h := newTestHandler(t)
		rec := doJSON(t, http.MethodGet, "/health", "", h.Health)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy","ollama_connected":true}`, rec.Body.String())
	})

	t.Run("not initialized", func(t *testing.T) {
		h := NewHandler(nil, Options{})
		rec := doJSON(t, http.MethodGet, "/health", "", h.Health)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"unhealthy","message":"server not initialized"}`, rec.Body.String())
	})
}

func TestListTools(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, http.MethodPost, "/mcp/tools/list", "", h.ListTools)

	assert.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)["tools"].([]any)
	require.Len(t, list, len(tools.Catalog()))
	first := list[0].(map[string]any)
	assert.Equal(t, tools.CheckHealth, first["name"])
	assert.NotEmpty(t, first["inputSchema"])
}

func TestCallTool(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := newTestHandler(t)
		rec := doJSON(t, http.MethodPost, "/mcp/tools/call", `{"name":"ollama_get_version","arguments":{}}`, h.CallTool)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"result":{"version":"0.0.0-mock"}}`, rec.Body.String())
	})

	t.Run("arguments omitted", func(t *testing.T) {
		h := newTestHandler(t)
		rec := doJSON(t, http.MethodPost, "/mcp/tools/call", `{"name":"ollama_list_processes"}`, h.CallTool)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"result":{"models":[]}}`, rec.Body.String())
	})

	t.Run("tool failure is a result", func(t *testing.T) {
		h := newTestHandler(t)
		rec := doJSON(t, http.MethodPost, "/mcp/tools/call", `{"name":"ollama_nope"}`, h.CallTool)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"result":{"error":"unknown tool: ollama_nope","error_type":"UnknownToolError"}}`, rec.Body.String())
	})

	t.Run("validation failure is a result", func(t *testing.T) {
		h := newTestHandler(t)
		rec := doJSON(t, http.MethodPost, "/mcp/tools/call", `{"name":"ollama_show_model","arguments":{"model":""}}`, h.CallTool)
		assert.Equal(t, http.StatusOK, rec.Code)
		result := decode(t, rec)["result"].(map[string]any)
		assert.Equal(t, "ValidationError", result["error_type"])
	})

	t.Run("missing name", func(t *testing.T) {
		h := newTestHandler(t)
		rec := doJSON(t, http.MethodPost, "/mcp/tools/call", `{"arguments":{}}`, h.CallTool)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not initialized", func(t *testing.T) {
		h := NewHandler(nil, Options{})
		rec := doJSON(t, http.MethodPost, "/mcp/tools/call", `{"name":"ollama_get_version"}`, h.CallTool)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCallToolSessionRoundTrip(t *testing.T) {
	h := newTestHandler(t)

	save := `{"name":"ollama_save_context","arguments":{"session_id":"s1","messages":[{"role":"user","content":"hi"}]}}`
	rec := doJSON(t, http.MethodPost, "/mcp/tools/call", save, h.CallTool)
	assert.JSONEq(t, `{"result":{"session_id":"s1","saved":true}}`, rec.Body.String())

	load := `{"name":"ollama_load_context","arguments":{"session_id":"s1"}}`
	rec = doJSON(t, http.MethodPost, "/mcp/tools/call", load, h.CallTool)
	assert.JSONEq(t, `{"result":{"session_id":"s1","messages":[{"role":"user","content":"hi"}],"found":true}}`, rec.Body.String())
}

func TestRoutesRegistered(t *testing.T) {
	e := echo.New()
	newTestHandler(t).RegisterRoutes(e)

	routes := map[string]bool{}
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /", "GET /health", "POST /mcp/tools/list", "POST /mcp/tools/call", "POST /rpc", "GET /ws",
	} {
		assert.True(t, routes[want], "route %s", want)
	}
}

func TestCallToolRejectsMalformedBody(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/mcp/tools/call", bytes.NewReader([]byte(`{"name":`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.CallTool(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
