package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/mx/pkg/presenter"
)

var catCmd = &cobra.Command{
	Use:   "cat <key>",
	Short: "Print a context document",
	Long: `Print the context document for a symbolic key to stdout.

Keys resolve through the alias table (tk, rq, nt, ds, bg, id, pdt), numbered
variants like tk2, pending variants like pd-rq, or fall back to a relative
path such as docs/spec.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		s, err := newStore()
		if err != nil {
			presenter.Error(err, "Failed to initialize context store")
			os.Exit(1)
		}

		content, err := s.Cat(ctx, args[0])
		if err != nil {
			presenter.Error(err, fmt.Sprintf("Failed to read %s", args[0]))
			os.Exit(1)
		}

		fmt.Print(content)
	},
}

func init() {
	rootCmd.AddCommand(withTracing(catCmd))
}
