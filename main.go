// Command ollama-mcp serves the Ollama REST API as MCP tools.
package main

import (
	"fmt"
	"os"

	"github.com/xiaot623/gogo/ollama-mcp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
