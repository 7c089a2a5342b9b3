package cmd

import (
	"github.com/spf13/cobra"

	"photodesigner/internal/app"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the design tools over MCP on stdin/stdout",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app.ServeMCP()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
