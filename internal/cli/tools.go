package cli

import (
	"encoding/json"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
	"github.com/xiaot623/gogo/ollama-mcp/internal/tools"
)

func newToolsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tool catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := tools.Catalog()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"tools": catalog})
			}
			renderCatalog(cmd, catalog)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}

func renderCatalog(cmd *cobra.Command, catalog []domain.ToolDescriptor) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Name", "Required", "Description"})
	for _, desc := range catalog {
		var required string
		if desc.InputSchema != nil {
			required = strings.Join(desc.InputSchema.Required, ", ")
		}
		t.AppendRow(table.Row{desc.Name, required, desc.Description})
	}
	t.AppendFooter(table.Row{"Total", len(catalog), ""})
	t.SetStyle(table.StyleLight)
	t.Render()
}
