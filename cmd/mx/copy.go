package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/mx/pkg/presenter"
	"github.com/jingkaihe/mx/pkg/snippets"
)

var copyCmd = &cobra.Command{
	Use:   "copy <query>",
	Short: "Copy a context document to the clipboard",
	Long: `Find a context document and copy its contents to the system clipboard.

The query matches an exact key first, then an exact relative path, then a
unique case-insensitive substring of keys and titles.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		s, err := newStore()
		if err != nil {
			presenter.Error(err, "Failed to initialize context store")
			os.Exit(1)
		}

		outcome, err := snippets.Copy(ctx, s, args[0])
		if err != nil {
			presenter.Error(err, fmt.Sprintf("Failed to copy %s", args[0]))
			os.Exit(1)
		}

		presenter.Success(fmt.Sprintf("Copied %s to the clipboard (%d bytes)", outcome.Path, outcome.Bytes))
	},
}

func init() {
	rootCmd.AddCommand(withTracing(copyCmd))
}
