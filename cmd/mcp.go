package cmd

import (
	"github.com/huangsam/brewwater/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the brewwater MCP server",
	Long: `Launch an MCP server over stdio so AI agents can compute recipes and
browse presets and profiles via standard tools.

Tools:
  calculate_recipe - drops for a preset or custom GH/KH target
  list_presets     - preset catalog with drop counts
  list_profiles    - concentrate profiles and potencies`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, historyManager)
	},
}
