// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/weekly-report/internal/config"
	"github.com/naka-gawa/weekly-report/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "weekly-report",
	Short: "A CLI tool to summarize a week of activity on a GitHub repository.",
	Long: `weekly-report builds a markdown report of the pull requests merged,
waiting for review and in progress, and of the issues opened, by members
of a GitHub organization on a single repository.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("env-file", config.DefaultEnvFile, "dotenv file to read configuration from")
}

// setup loads the configuration, applies the --repo and --org overrides of cmd
// when it defines them, and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, *zap.SugaredLogger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	if repo, _ := cmd.Flags().GetString("repo"); repo != "" {
		cfg.GitHub.Repository = repo
	}
	if org, _ := cmd.Flags().GetString("org"); org != "" {
		cfg.GitHub.Org = org
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

// fail prints an error message to standard error and exits with status 1.
func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
