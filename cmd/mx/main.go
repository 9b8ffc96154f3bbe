package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/mx/pkg/config"
	"github.com/jingkaihe/mx/pkg/logger"
	"github.com/jingkaihe/mx/pkg/presenter"
	"github.com/jingkaihe/mx/pkg/store"
)

var rootCmd = &cobra.Command{
	Use:   "mx",
	Short: "Project-local context store for markdown notes",
	Long: `mx keeps project context in a hidden .mx directory of markdown
documents addressed by short symbolic keys (tk for tasks.md, rq for
requirements.md, pd-rq for pending/requirements.md), one command away for
humans and coding agents alike.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetLogLevel(viper.GetString("log_level"))
		logger.SetLogFormat(viper.GetString("log_format"))

		if quiet, err := cmd.Flags().GetBool("quiet"); err == nil && quiet {
			presenter.SetQuiet(true)
		}
	},
}

func init() {
	config.Init()

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json, text)")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress non-essential output")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// newStore builds the store with any aliases from configuration merged in.
func newStore() (*store.Store, error) {
	cfg, err := config.FromViper()
	if err != nil {
		return nil, err
	}
	if len(cfg.Aliases) > 0 {
		return store.New(store.WithAliases(cfg.Aliases))
	}
	return store.New()
}

func main() {
	ctx := context.Background()

	shutdown, err := initTracing(ctx)
	if err != nil {
		presenter.Warning("Failed to initialize tracing, continuing without it")
		logger.G(ctx).WithError(err).Debug("Tracing initialization failed")
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				logger.G(ctx).WithError(err).Debug("Failed to shut down tracing")
			}
		}()
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
