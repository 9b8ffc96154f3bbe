// Package config loads mx settings from config files and environment
// variables. The project-local .mx/config.yaml takes precedence over the
// per-user $HOME/.config/mx/config.yaml, and any key can be overridden
// through MX_* environment variables.
package config

import (
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jingkaihe/mx/pkg/store"
)

// TracingConfig controls OpenTelemetry trace export.
type TracingConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Sampler string  `mapstructure:"sampler"`
	Ratio   float64 `mapstructure:"ratio"`
}

// Config holds the full mx configuration.
type Config struct {
	LogLevel  string            `mapstructure:"log_level"`
	LogFormat string            `mapstructure:"log_format"`
	Aliases   map[string]string `mapstructure:"aliases"`
	Tracing   TracingConfig     `mapstructure:"tracing"`
}

// Init wires viper to the MX environment prefix, registers defaults, and
// reads the first config.yaml found in the search paths.
func Init() {
	viper.SetEnvPrefix("MX")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if root, err := store.FindProjectRoot(); err == nil {
		viper.AddConfigPath(filepath.Join(root, store.DirName))
	}
	viper.AddConfigPath(filepath.Join("$HOME", ".config", "mx"))

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "fmt")
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.sampler", "ratio")
	viper.SetDefault("tracing.ratio", 0.1)

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

// FromViper decodes the currently loaded viper state into a Config.
func FromViper() (Config, error) {
	var config Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &config,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return config, errors.Wrap(err, "failed to create config decoder")
	}
	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return config, errors.Wrap(err, "failed to decode configuration")
	}

	return config, nil
}
