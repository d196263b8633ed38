package cmd

import (
	"github.com/huangsam/cadence/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Cadence MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents preview activity patterns, read the schedule state and report on commit history.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol, so run tracking and logs stay on stderr.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, gitClient)
	},
}
