package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/mx/pkg/logger"
	"github.com/jingkaihe/mx/pkg/mcp"
	"github.com/jingkaihe/mx/pkg/presenter"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the context store over MCP stdio",
	Long: `Run a Model Context Protocol server exposing the context store to
coding agents over stdio.

Tools: context_read, context_write, context_remove, context_list.

Example Claude Code registration:
  claude mcp add mx -- mx mcp`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		// stdout carries the protocol, logs must stay on stderr
		logger.SetLogOutput(os.Stderr)

		s, err := newStore()
		if err != nil {
			presenter.Error(err, "Failed to initialize context store")
			os.Exit(1)
		}

		logger.G(ctx).Info("Starting MCP server over stdio")

		if err := mcp.NewServer(s).Serve(ctx); err != nil {
			presenter.Error(err, "MCP server failed")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
