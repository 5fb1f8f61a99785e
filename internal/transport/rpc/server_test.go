package rpc

import (
	"context"
	"encoding/json"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/ollama-mcp/internal/adapter/ollama"
	"github.com/xiaot623/gogo/ollama-mcp/internal/repository"
	"github.com/xiaot623/gogo/ollama-mcp/internal/service"
	"github.com/xiaot623/gogo/ollama-mcp/internal/tools"
)

type rawCallReply struct {
	Result json.RawMessage `json:"result"`
}

func newPipeClient(t *testing.T) *rpc.Client {
	t.Helper()
	svc := service.New(ollama.NewMockClient(), store.NewFileStore(t.TempDir(), time.Hour))
	srv, err := NewServer(svc, nil)
	require.NoError(t, err)

	serverConn, clientConn := net.Pipe()
	go srv.ServeConn(serverConn)

	client := jsonrpc.NewClient(clientConn)
	t.Cleanup(func() {
		client.Close()
		srv.Shutdown(context.Background())
	})
	return client
}

func TestToolsList(t *testing.T) {
	client := newPipeClient(t)

	var reply ListReply
	require.NoError(t, client.Call("Tools.List", &ListArgs{}, &reply))
	assert.Len(t, reply.Tools, len(tools.Catalog()))
}

func TestToolsCall(t *testing.T) {
	client := newPipeClient(t)

	var reply rawCallReply
	err := client.Call("Tools.Call", &CallArgs{
		Name:      tools.SaveContext,
		Arguments: map[string]any{"session_id": "rpc", "messages": []any{map[string]any{"role": "user", "content": "hi"}}},
	}, &reply)
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"rpc","saved":true}`, string(reply.Result))

	reply = rawCallReply{}
	require.NoError(t, client.Call("Tools.Call", &CallArgs{Name: "ollama_unknown"}, &reply))
	assert.JSONEq(t, `{"error":"unknown tool: ollama_unknown","error_type":"UnknownToolError"}`, string(reply.Result))
}

func TestToolsCallRequiresName(t *testing.T) {
	client := newPipeClient(t)

	var reply rawCallReply
	err := client.Call("Tools.Call", &CallArgs{}, &reply)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool name is required")
}

func TestServeAndShutdown(t *testing.T) {
	svc := service.New(ollama.NewMockClient(), store.NewFileStore(t.TempDir(), time.Hour))
	srv, err := NewServer(svc, nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	client, err := jsonrpc.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	var reply ListReply
	require.NoError(t, client.Call("Tools.List", &ListArgs{}, &reply))
	client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-errCh)
}
