package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	logFormat string

	rootCmd = &cobra.Command{
		Use:   "event-api",
		Short: "Hypermedia REST API for managing events",
		Long: `event-api serves a HAL REST API for creating, querying and updating events,
with an OAuth2 token endpoint protecting writes.

Configuration is read from EVENT_API_* environment variables.`,
		SilenceUsage: true,
		// serve when no subcommand is given
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error), overrides EVENT_API_LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console), overrides EVENT_API_LOG_FORMAT")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(importCmd)
}

// bootstrap loads the configuration and builds the logger every
// subcommand starts from.
func bootstrap() (EnvCfg, zerolog.Logger, error) {
	err := os.Setenv("TZ", "UTC")
	if err != nil {
		return EnvCfg{}, zerolog.Nop(), err
	}

	cfg, err := loadConfig()
	if err != nil {
		return EnvCfg{}, zerolog.Nop(), err
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	return cfg, newLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
