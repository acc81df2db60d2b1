package ncosearch

import (
	"github.com/shramsetu/ncosearch/infrastructure/provider"
	"github.com/shramsetu/ncosearch/internal/config"
	"github.com/shramsetu/ncosearch/internal/log"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	cfg      config.AppConfig
	logger   *log.Logger
	embedder provider.Embedder
	version  string
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		cfg:     config.NewAppConfig(),
		version: "dev",
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig replaces the default configuration, usually with one loaded
// from the environment.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) { c.cfg = cfg }
}

// WithLogger replaces the logger derived from the configuration.
func WithLogger(logger *log.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// WithEmbedder replaces the configuration-derived embedding provider.
func WithEmbedder(embedder provider.Embedder) Option {
	return func(c *clientConfig) { c.embedder = embedder }
}

// WithVersion stamps the service version onto audit entries and the health
// signal.
func WithVersion(version string) Option {
	return func(c *clientConfig) {
		if version != "" {
			c.version = version
		}
	}
}
