// Package mcpstdio serves the tool catalog as an MCP server over stdio.
package mcpstdio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"

	"github.com/labstack/gommon/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
	"github.com/xiaot623/gogo/ollama-mcp/internal/service"
)

// NewServer creates an MCP server with one tool per catalog entry.
func NewServer(svc *service.Service) (*server.MCPServer, error) {
	srv := server.NewMCPServer(
		service.Name,
		service.Version,
		server.WithToolCapabilities(true),
	)

	for _, desc := range svc.Tools() {
		schema, err := json.Marshal(desc.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("encode schema of %s: %w", desc.Name, err)
		}
		srv.AddTool(mcp.NewToolWithRawSchema(desc.Name, desc.Description, schema), toolHandler(svc))
	}
	return srv, nil
}

// toolHandler runs the call through the dispatcher. Error envelopes become
// MCP tool errors; the JSON body is the same either way.
func toolHandler(svc *service.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := svc.HandleToolCall(ctx, req.Params.Name, domain.Arguments(req.GetArguments()))

		data, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		if result.IsError() {
			return mcp.NewToolResultError(string(data)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// Serve reads MCP requests from in and writes responses to out until ctx is
// done or in is closed. Protocol errors go to logger.
func Serve(ctx context.Context, srv *server.MCPServer, in io.Reader, out io.Writer, logger *log.Logger) error {
	stdio := server.NewStdioServer(srv)
	if logger != nil {
		stdio.SetErrorLogger(stdlog.New(logger.Output(), "mcp: ", stdlog.LstdFlags))
	}
	return stdio.Listen(ctx, in, out)
}
