package http

import (
	"bytes"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/ollama-mcp/internal/adapter/ollama"
	"github.com/xiaot623/gogo/ollama-mcp/internal/logging"
	"github.com/xiaot623/gogo/ollama-mcp/internal/metrics"
	"github.com/xiaot623/gogo/ollama-mcp/internal/repository"
	"github.com/xiaot623/gogo/ollama-mcp/internal/service"
)

func newTestServer(t *testing.T, m *metrics.Metrics) *httptest.Server {
	t.Helper()
	svc := service.New(ollama.NewMockClient(), store.NewFileStore(t.TempDir(), time.Hour), service.WithMetrics(m))
	e := NewServer(svc, Options{Logger: logging.New("test", "ERROR", "text", io.Discard), Metrics: m})
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return server
}

func TestServerExposesMetrics(t *testing.T) {
	server := newTestServer(t, metrics.New())

	resp, err := stdhttp.Post(server.URL+"/mcp/tools/call", "application/json",
		bytes.NewReader([]byte(`{"name":"ollama_list_models"}`)))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp, err = stdhttp.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `ollama_mcp_tool_calls_total{outcome="ok",tool="ollama_list_models"} 1`)
}

func TestServerWithoutMetrics(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := stdhttp.Get(server.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)
}

func TestServerAllowsAnyOrigin(t *testing.T) {
	server := newTestServer(t, nil)

	req, err := stdhttp.NewRequest(stdhttp.MethodOptions, server.URL+"/mcp/tools/list", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", stdhttp.MethodPost)

	resp, err := stdhttp.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServerRoot(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := stdhttp.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `"status":"running"`))
}
