package cmd

import (
	"github.com/aeswibon/dora/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Dora MCP server",
	Long:  `Launch an MCP server that allows AI agents to compute DORA metrics via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Store access only; tool calls carry their own org and date range,
		// so the full shared setup validation does not apply here.
		return storeSetup()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
