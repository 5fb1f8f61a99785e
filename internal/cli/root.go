// Package cli wires the server together and provides the command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/ollama-mcp/internal/service"
)

// NewRootCommand returns the ollama-mcp command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ollama-mcp",
		Short: "Ollama REST API exposed as MCP tools",
		Long: `ollama-mcp exposes a local Ollama server as a catalog of MCP tools:
model management, generation, chat, embeddings and persistent chat sessions.

Configuration is read from environment variables (see CONFIG_FILE for an
optional YAML overlay).`,
		Version:       service.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newStdioCommand(),
		newToolsCommand(),
		newCallCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
