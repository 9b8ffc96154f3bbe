package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/mx/pkg/presenter"
	"github.com/jingkaihe/mx/pkg/store"
)

type TouchConfig struct {
	Paste bool
	HTML  bool
	Force bool
}

func NewTouchConfig() *TouchConfig {
	return &TouchConfig{}
}

var touchCmd = &cobra.Command{
	Use:   "touch <key>",
	Short: "Create a context document",
	Long: `Create the context document for a key, along with any missing parent
directories inside the store.

An existing document is left untouched unless --force truncates it. With
--paste the clipboard contents are written into the document; --html
additionally converts clipboard HTML to Markdown.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getTouchConfigFromFlags(cmd)

		s, err := newStore()
		if err != nil {
			presenter.Error(err, "Failed to initialize context store")
			os.Exit(1)
		}

		outcome, err := s.Touch(ctx, args[0], store.TouchOptions{
			Paste: config.Paste,
			HTML:  config.HTML,
			Force: config.Force,
		})
		if err != nil {
			presenter.Error(err, fmt.Sprintf("Failed to touch %s", args[0]))
			os.Exit(1)
		}

		if outcome.Existed && !outcome.Overwritten {
			presenter.Info(fmt.Sprintf("%s already exists (use --force to overwrite)", outcome.Path))
			return
		}

		message := fmt.Sprintf("Created %s", outcome.Path)
		if outcome.Overwritten {
			message = fmt.Sprintf("Overwrote %s", outcome.Path)
		}
		if outcome.Pasted {
			message += " with clipboard contents"
		}
		presenter.Success(message)
	},
}

func init() {
	rootCmd.AddCommand(withTracing(touchCmd))

	defaults := NewTouchConfig()
	touchCmd.Flags().Bool("paste", defaults.Paste, "Write the clipboard contents into the document")
	touchCmd.Flags().Bool("html", defaults.HTML, "Convert clipboard HTML to Markdown when pasting")
	touchCmd.Flags().Bool("force", defaults.Force, "Truncate the document if it already exists")
}

func getTouchConfigFromFlags(cmd *cobra.Command) *TouchConfig {
	config := NewTouchConfig()

	if paste, err := cmd.Flags().GetBool("paste"); err == nil {
		config.Paste = paste
	}
	if html, err := cmd.Flags().GetBool("html"); err == nil {
		config.HTML = html
	}
	if force, err := cmd.Flags().GetBool("force"); err == nil {
		config.Force = force
	}

	return config
}
