package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration. Variable names match
// the deployment contract; there is no prefix.
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8000)
	Port int `envconfig:"PORT" default:"8000"`

	// DataDir is the data directory path.
	// Env: DATA_DIR (default: ~/.ncosearch)
	DataDir string `envconfig:"DATA_DIR"`

	// CatalogFile is the catalog JSON file path.
	// Env: CATALOG_FILE (default: {data_dir}/nco_data.json)
	CatalogFile string `envconfig:"CATALOG_FILE"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// EmbedModel is the embedding model identifier.
	// Env: EMBED_MODEL (default: intfloat/multilingual-e5-small)
	EmbedModel string `envconfig:"EMBED_MODEL" default:"intfloat/multilingual-e5-small"`

	// Embedding configures the remote embedding endpoint.
	Embedding EmbeddingEnv `envconfig:"EMBEDDING_ENDPOINT"`

	// LowConfSoftmax is the softmax low-confidence threshold.
	// Env: LOWCONF_SOFTMAX (default: 0.55)
	LowConfSoftmax float64 `envconfig:"LOWCONF_SOFTMAX" default:"0.55"`

	// LowConfTopSim is the raw similarity low-confidence threshold.
	// Env: LOWCONF_TOPSIM (default: 0.48)
	LowConfTopSim float64 `envconfig:"LOWCONF_TOPSIM" default:"0.48"`

	// EnableTranslation turns on the translation rescue stage.
	// Env: ENABLE_TRANSLATION (default: false)
	EnableTranslation bool `envconfig:"ENABLE_TRANSLATION" default:"false"`

	// CORSOrigins is a comma-separated list of allowed origins.
	// Env: CORS_ORIGINS (default: *)
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	// ReindexTimeoutSec bounds one reindex operation in seconds.
	// Env: REINDEX_TIMEOUT_SEC (default: 300)
	ReindexTimeoutSec int `envconfig:"REINDEX_TIMEOUT_SEC" default:"300"`

	// AdminToken is the shared admin secret. Unset leaves admin
	// endpoints open (development mode).
	// Env: ADMIN_TOKEN
	AdminToken string `envconfig:"ADMIN_TOKEN"`

	// RateLimitSearch is the per-client search budget per minute.
	// Env: RATE_LIMIT_SEARCH (default: 60)
	RateLimitSearch int `envconfig:"RATE_LIMIT_SEARCH" default:"60"`

	// RateLimitAdmin is the per-client admin budget per minute.
	// Env: RATE_LIMIT_ADMIN (default: 20)
	RateLimitAdmin int `envconfig:"RATE_LIMIT_ADMIN" default:"20"`

	// AllowTestRateKey honors the X-Rate-Key header for rate limiting.
	// Env: ALLOW_TEST_RATE_KEY (default: false)
	AllowTestRateKey bool `envconfig:"ALLOW_TEST_RATE_KEY" default:"false"`

	// DisableUALogging keeps user agents out of log entries.
	// Env: DISABLE_UA_LOGGING (default: false)
	DisableUALogging bool `envconfig:"DISABLE_UA_LOGGING" default:"false"`

	// BuildTime is the build timestamp reported by /health.
	// Env: BUILD_TIME
	BuildTime string `envconfig:"BUILD_TIME"`

	// GitSHA is the git revision reported by /health.
	// Env: GIT_SHA (default: unknown)
	GitSHA string `envconfig:"GIT_SHA" default:"unknown"`
}

// EmbeddingEnv holds environment configuration for the embedding endpoint.
type EmbeddingEnv struct {
	// BaseURL is the OpenAI-compatible endpoint base URL. Empty selects
	// the deterministic local provider.
	// Env: EMBEDDING_ENDPOINT_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// APIKey is the endpoint API key.
	// Env: EMBEDDING_ENDPOINT_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Timeout is the request timeout in seconds.
	// Env: EMBEDDING_ENDPOINT_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries.
	// Env: EMBEDDING_ENDPOINT_MAX_RETRIES (default: 5)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"5"`

	// BatchSize is the number of passages per embedding call at reindex.
	// Env: EMBEDDING_ENDPOINT_BATCH_SIZE (default: 64)
	BatchSize int `envconfig:"BATCH_SIZE" default:"64"`
}

// LoadFromEnv loads configuration from environment variables, reading an
// optional .env file first. A missing .env file is not an error.
func LoadFromEnv(envFile string) (EnvConfig, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}

	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	opts := []AppConfigOption{
		WithHost(e.Host),
		WithPort(e.Port),
		WithLogLevel(e.LogLevel),
		WithLogFormat(parseLogFormat(e.LogFormat)),
		WithEmbedModel(e.EmbedModel),
		WithEmbedding(e.Embedding.ToEmbeddingConfig()),
		WithThresholds(e.LowConfTopSim, e.LowConfSoftmax),
		WithTranslation(e.EnableTranslation),
		WithCORSOrigins(splitCSV(e.CORSOrigins)),
		WithReindexTimeout(time.Duration(e.ReindexTimeoutSec) * time.Second),
		WithAdminToken(e.AdminToken),
		WithRateLimits(e.RateLimitSearch, e.RateLimitAdmin),
		WithAllowTestRateKey(e.AllowTestRateKey),
		WithDisableUALogging(e.DisableUALogging),
		WithBuildInfo(e.BuildTime, e.GitSHA),
	}

	if e.DataDir != "" {
		opts = append([]AppConfigOption{WithDataDir(e.DataDir)}, opts...)
	}
	if e.CatalogFile != "" {
		opts = append(opts, WithCatalogFile(e.CatalogFile))
	}

	return NewAppConfigWithOptions(opts...)
}

// ToEmbeddingConfig converts EmbeddingEnv to EmbeddingConfig.
func (e EmbeddingEnv) ToEmbeddingConfig() EmbeddingConfig {
	cfg := NewEmbeddingConfig()
	cfg.baseURL = e.BaseURL
	cfg.apiKey = e.APIKey
	if e.Timeout > 0 {
		cfg.timeout = time.Duration(e.Timeout * float64(time.Second))
	}
	if e.MaxRetries > 0 {
		cfg.maxRetries = e.MaxRetries
	}
	if e.BatchSize > 0 {
		cfg.batchSize = e.BatchSize
	}
	return cfg
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}

// splitCSV splits a comma-separated string, trimming whitespace.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
