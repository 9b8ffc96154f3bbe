package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/mx/pkg/presenter"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [key]",
	Short: "Remove a context document or the whole store",
	Long: `Remove the context document for a key, pruning any directories the
removal leaves empty. Without a key the entire store directory is removed.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		key := ""
		if len(args) > 0 {
			key = args[0]
		}

		s, err := newStore()
		if err != nil {
			presenter.Error(err, "Failed to initialize context store")
			os.Exit(1)
		}

		outcome, err := s.Clean(ctx, key)
		if err != nil {
			presenter.Error(err, "Failed to clean context store")
			os.Exit(1)
		}

		presenter.Info(outcome.Message)
	},
}

func init() {
	rootCmd.AddCommand(withTracing(cleanCmd))
}
