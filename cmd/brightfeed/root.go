package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/brightfeed/internal/app"
	"github.com/MrSnakeDoc/brightfeed/internal/config"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
	"github.com/MrSnakeDoc/brightfeed/internal/version"
)

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "brightfeed",
		Short:         "News listing and per-profile bookmark service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(envFile)
		},
		// Without a subcommand, serve.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"dotenv file loaded before reading the environment (missing file is ignored)")

	root.AddCommand(
		newServeCmd(),
		newVersionCmd(),
		newCategoriesCmd(),
		newBookmarksCmd(),
		newCacheCmd(),
	)
	return root
}

// loadEnvFile never overrides variables already set in the environment.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = loggerClient.Sync() }()

	a, err := app.New(cfg, loggerClient)
	if err != nil {
		return err
	}
	return a.Run()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// cliLogger logs to stderr so command output stays clean.
func cliLogger() logger.Logger {
	level := os.Getenv("BRIGHTFEED_LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	return logger.New(level, true)
}
