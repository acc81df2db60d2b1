package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shramsetu/ncosearch"
	"github.com/shramsetu/ncosearch/internal/log"
)

func indexCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the vector index artifacts and exit",
		Long: `Embed every catalog record and persist the vector index artifacts.

Run this once after changing the catalog or the embedding model; serve then
restores the snapshot from the artifacts instead of re-embedding at boot.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runIndex(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger := log.NewLogger(cfg)

	client, err := ncosearch.New(
		ncosearch.WithConfig(cfg),
		ncosearch.WithLogger(logger),
		ncosearch.WithVersion(version),
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("close client", "error", err)
		}
	}()

	report, err := client.Reindex.Reindex(context.Background())
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	fmt.Printf("indexed %d records in %s\n", report.Vectors, report.Duration.Round(time.Millisecond))
	return nil
}
