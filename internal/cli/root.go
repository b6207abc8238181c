// Package cli provides the underwriter command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/landscape-hq/underwriter/internal/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "underwriter",
		Short: "Real estate underwriting service",
		Long: `Underwriter is the REST service behind the landscape underwriting
platform: projects and parcels, lease administration, cost benchmarks,
operating expenses, market comps, budgets, document extraction, and
financial reporting.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// A local .env is a development convenience; absence is fine.
			_ = godotenv.Load()
			if cfgFile != "" {
				os.Setenv("CONFIG_PATH", cfgFile)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.yaml")
	rootCmd.SetVersionTemplate(fmt.Sprintf("underwriter %s (commit %s, built %s)\n", Version, GitCommit, BuildDate))

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())

	return rootCmd
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromPath(cfgFile)
	}
	return config.Load()
}
