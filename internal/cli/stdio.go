package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/ollama-mcp/internal/config"
	"github.com/xiaot623/gogo/ollama-mcp/internal/transport/mcpstdio"
)

func newStdioCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP over stdin/stdout",
		Long:  "Serve MCP over stdin/stdout for clients that launch the server as a subprocess. Logs go to stderr.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			srv, err := mcpstdio.NewServer(a.service)
			if err != nil {
				return err
			}
			return mcpstdio.Serve(ctx, srv, cmd.InOrStdin(), cmd.OutOrStdout(), a.logger)
		},
	}
}
