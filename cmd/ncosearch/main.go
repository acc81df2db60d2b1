// Package main is the entry point for the ncosearch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shramsetu/ncosearch/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ncosearch",
		Short: "Multilingual NCO-2015 occupation search server",
		Long:  `ncosearch serves semantic search over the NCO-2015 occupation taxonomy, with synonym, translation, and lexical rescue for low-confidence queries.`,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(indexCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from a .env file and environment variables,
// stamping in the build metadata.
func loadConfig(envFile string) (config.AppConfig, error) {
	env, err := config.LoadFromEnv(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}

	cfg := env.ToAppConfig()
	if cfg.BuildTime() == "" && cfg.GitSHA() == "" {
		cfg = cfg.Apply(config.WithBuildInfo(date, commit))
	}
	return cfg, nil
}
