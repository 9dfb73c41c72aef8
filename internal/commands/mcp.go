package commands

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/veloera/velo/internal/mcp"
	"github.com/veloera/velo/internal/output"
)

var MCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio",
	Long:  "Expose usage, pricing, and account data as MCP tools for agent clients",
	Run: func(cmd *cobra.Command, args []string) {
		RunMCP()
	},
}

func RunMCP() {
	initLogger()
	if err := mcpserver.RunServer(Version); err != nil {
		output.PrintError(err)
	}
}
