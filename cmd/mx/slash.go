package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/mx/pkg/presenter"
	"github.com/jingkaihe/mx/pkg/slash"
)

var slashCmd = &cobra.Command{
	Use:   "slash <target>",
	Short: "Generate agent slash commands",
	Long: fmt.Sprintf(`Generate one slash-command file per context alias, so coding
agents can read stored documents with commands like /mx-tk.

Supported targets: %s.`, strings.Join(slash.Targets(), ", ")),
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		force, _ := cmd.Flags().GetBool("force")

		target, err := slash.ParseTarget(args[0])
		if err != nil {
			presenter.Error(err, "Invalid target")
			os.Exit(1)
		}

		s, err := newStore()
		if err != nil {
			presenter.Error(err, "Failed to initialize context store")
			os.Exit(1)
		}

		outcome, err := slash.Generate(ctx, s.Resolver(), slash.Request{Target: target, Force: force})
		if err != nil {
			presenter.Error(err, "Failed to generate slash commands")
			os.Exit(1)
		}

		if len(outcome.Created) > 0 {
			presenter.Success(fmt.Sprintf("Created %d commands in %s", len(outcome.Created), outcome.Dir))
		}
		if len(outcome.Skipped) > 0 {
			presenter.Info(fmt.Sprintf("Skipped %d existing commands (use --force to overwrite)", len(outcome.Skipped)))
		}
	},
}

func init() {
	rootCmd.AddCommand(withTracing(slashCmd))

	slashCmd.Flags().Bool("force", false, "Overwrite existing command files")
}
