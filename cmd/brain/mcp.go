package main

import (
	"github.com/spf13/cobra"

	brain "github.com/jnalv414/my-second-brain"
	"github.com/jnalv414/my-second-brain/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the vault tools over MCP on stdio",
	Long: `Start a Model Context Protocol server on standard input and output,
exposing tools to read, write, rename, delete, list, search and link notes.
Logs go to standard error.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openVault()
		server := mcp.NewVaultServer(svc, logger, brain.Version)
		if err := server.ServeStdio(); err != nil {
			fatal("Error serving MCP", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
