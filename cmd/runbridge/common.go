package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kazuki/runbridge/internal/config"
	"github.com/kazuki/runbridge/internal/logging"
)

// loadConfig builds the effective configuration: environment first, an
// optional config file on top, logging flags last.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.FromEnv()

	if rootConfigPath != "" {
		var err error
		cfg, err = config.LoadFile(rootConfigPath, cfg)
		if err != nil {
			return cfg, err
		}
	}

	if cmd.Flags().Changed("log-level") || cfg.Log.Level == "" {
		cfg.Log.Level = rootLogLevel
	}
	if cmd.Flags().Changed("log-format") || cfg.Log.Format == "" {
		cfg.Log.Format = rootLogFormat
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Log.File = rootLogFile
	}
	return cfg, nil
}

// newLogger builds the zap logger from the effective config.
func newLogger(cfg config.Config) *zap.Logger {
	return logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		FilePath: cfg.Log.File,
	})
}
