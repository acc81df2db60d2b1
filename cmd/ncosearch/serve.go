package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shramsetu/ncosearch"
	"github.com/shramsetu/ncosearch/infrastructure/api"
	"github.com/shramsetu/ncosearch/internal/config"
	"github.com/shramsetu/ncosearch/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8000)
  DATA_DIR                     Data directory (default: .ncosearch)
  CATALOG_FILE                 Occupation catalog JSON (default: {data_dir}/nco_data.json)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)

  EMBED_MODEL                  Embedding model id (default: intfloat/multilingual-e5-small)
  EMBEDDING_ENDPOINT_*         OpenAI-compatible embedding endpoint
    BASE_URL                   Base URL; unset selects the offline hash embedder
    API_KEY                    API key for authentication
    TIMEOUT                    Request timeout in seconds (default: 60)
    MAX_RETRIES                Retry attempts (default: 5)
    BATCH_SIZE                 Passages per request (default: 64)

  LOWCONF_TOPSIM               Low-confidence top similarity threshold (default: 0.48)
  LOWCONF_SOFTMAX              Low-confidence softmax threshold (default: 0.55)
  ENABLE_TRANSLATION           Enable the translation rescue stage (default: false)
  REINDEX_TIMEOUT_SEC          Reindex deadline in seconds (default: 300)

  CORS_ORIGINS                 Comma-separated allowed origins (default: *)
  ADMIN_TOKEN                  Admin token; unset leaves admin routes open
  RATE_LIMIT_SEARCH            Search requests per minute per client (default: 60)
  RATE_LIMIT_ADMIN             Admin requests per minute per client (default: 20)
  ALLOW_TEST_RATE_KEY          Honor X-Rate-Key for rate isolation (default: false)
  DISABLE_UA_LOGGING           Keep user agents out of search logs (default: false)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8000)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Flags take precedence over env vars.
	if host != "" {
		cfg = cfg.Apply(config.WithHost(host))
	}
	if port > 0 {
		cfg = cfg.Apply(config.WithPort(port))
	}

	logger := log.NewLogger(cfg)
	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	logger.Slog().LogAttrs(context.Background(), slog.LevelInfo, "starting ncosearch", attrs...)

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

	// Publish the first snapshot before accepting traffic; persisted
	// artifacts make this fast after the first boot.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := client.Reindex.Bootstrap(ctx); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	apiServer := api.NewAPIServer(client)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutting down server")
		cancel()

		// Drain in-flight requests on a fresh deadline before the deferred
		// client.Close stops the audit writers.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := apiServer.ListenAndServe(cfg.Addr()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
