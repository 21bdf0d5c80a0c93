// Package main provides the entry point for the runbridge CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "runbridge",
	Short: "Bridge MagicPod batch runs into TestRail",
	Long:  "runbridge downloads the MagicPod api-client, prepares TestRail test plans, and runs MagicPod batch runs whose per-case results are pushed into TestRail.",
}

var (
	rootConfigPath string
	rootLogLevel   string
	rootLogFormat  string
	rootLogFile    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to a JSON config file (flags override its values)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&rootLogFormat, "log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().StringVar(&rootLogFile, "log-file", "", "Also write rotated JSON logs to this file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
