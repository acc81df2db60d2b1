// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8000
	DefaultLogLevel        = "INFO"
	DefaultEmbedModel      = "intfloat/multilingual-e5-small"
	DefaultLowConfSoftmax  = 0.55
	DefaultLowConfTopSim   = 0.48
	DefaultReindexTimeout  = 300 * time.Second
	DefaultRateLimitSearch = 60
	DefaultRateLimitAdmin  = 20
	DefaultMaxBodyBytes    = 10 * 1024
	DefaultEmbedTimeout    = 60 * time.Second
	DefaultEmbedRetries    = 5
	DefaultEmbedBatchSize  = 64
	DefaultCatalogFile     = "nco_data.json"
	DefaultLogsSubdir      = "logs"
	DefaultIndexSubdir     = "index"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// EmbeddingConfig configures the remote embedding endpoint. When no base
// URL is configured the service runs on the deterministic local provider.
type EmbeddingConfig struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	batchSize  int
}

// NewEmbeddingConfig creates an EmbeddingConfig with defaults.
func NewEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		timeout:    DefaultEmbedTimeout,
		maxRetries: DefaultEmbedRetries,
		batchSize:  DefaultEmbedBatchSize,
	}
}

// BaseURL returns the endpoint base URL.
func (e EmbeddingConfig) BaseURL() string { return e.baseURL }

// APIKey returns the endpoint API key.
func (e EmbeddingConfig) APIKey() string { return e.apiKey }

// Timeout returns the per-request timeout.
func (e EmbeddingConfig) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the retry budget.
func (e EmbeddingConfig) MaxRetries() int { return e.maxRetries }

// BatchSize returns how many passages are embedded per call at reindex.
func (e EmbeddingConfig) BatchSize() int { return e.batchSize }

// IsRemote reports whether a remote endpoint is configured.
func (e EmbeddingConfig) IsRemote() bool { return e.baseURL != "" }

// AppConfig holds the main application configuration.
type AppConfig struct {
	host              string
	port              int
	dataDir           string
	catalogFile       string
	logLevel          string
	logFormat         LogFormat
	embedModel        string
	embedding         EmbeddingConfig
	lowConfSoftmax    float64
	lowConfTopSim     float64
	enableTranslation bool
	corsOrigins       []string
	reindexTimeout    time.Duration
	adminToken        string
	rateLimitSearch   int
	rateLimitAdmin    int
	allowTestRateKey  bool
	disableUALogging  bool
	buildTime         string
	gitSHA            string
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ncosearch"
	}
	return filepath.Join(home, ".ncosearch")
}

// NewAppConfig creates an AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:            DefaultHost,
		port:            DefaultPort,
		dataDir:         dataDir,
		catalogFile:     filepath.Join(dataDir, DefaultCatalogFile),
		logLevel:        DefaultLogLevel,
		logFormat:       LogFormatPretty,
		embedModel:      DefaultEmbedModel,
		embedding:       NewEmbeddingConfig(),
		lowConfSoftmax:  DefaultLowConfSoftmax,
		lowConfTopSim:   DefaultLowConfTopSim,
		corsOrigins:     []string{"*"},
		reindexTimeout:  DefaultReindexTimeout,
		rateLimitSearch: DefaultRateLimitSearch,
		rateLimitAdmin:  DefaultRateLimitAdmin,
		gitSHA:          "unknown",
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// CatalogFile returns the catalog JSON file path.
func (c AppConfig) CatalogFile() string { return c.catalogFile }

// LogsDir returns the directory holding the append-only log streams.
func (c AppConfig) LogsDir() string {
	return filepath.Join(c.dataDir, DefaultLogsSubdir)
}

// IndexDir returns the directory holding snapshot build artifacts.
func (c AppConfig) IndexDir() string {
	return filepath.Join(c.dataDir, DefaultIndexSubdir)
}

// AuditDBPath returns the sqlite audit trail path.
func (c AppConfig) AuditDBPath() string {
	return filepath.Join(c.dataDir, "audit.db")
}

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// EmbedModel returns the embedding model identifier.
func (c AppConfig) EmbedModel() string { return c.embedModel }

// Embedding returns the embedding endpoint config.
func (c AppConfig) Embedding() EmbeddingConfig { return c.embedding }

// LowConfSoftmax returns the softmax low-confidence threshold.
func (c AppConfig) LowConfSoftmax() float64 { return c.lowConfSoftmax }

// LowConfTopSim returns the raw similarity low-confidence threshold.
func (c AppConfig) LowConfTopSim() float64 { return c.lowConfTopSim }

// EnableTranslation reports whether translation rescue is enabled.
func (c AppConfig) EnableTranslation() bool { return c.enableTranslation }

// CORSOrigins returns the allowed CORS origins.
func (c AppConfig) CORSOrigins() []string {
	origins := make([]string, len(c.corsOrigins))
	copy(origins, c.corsOrigins)
	return origins
}

// ReindexTimeout bounds one reindex operation.
func (c AppConfig) ReindexTimeout() time.Duration { return c.reindexTimeout }

// AdminToken returns the shared admin secret; empty means admin endpoints
// are open (development mode).
func (c AppConfig) AdminToken() string { return c.adminToken }

// RateLimitSearch returns the per-client search budget per minute.
func (c AppConfig) RateLimitSearch() int { return c.rateLimitSearch }

// RateLimitAdmin returns the per-client admin budget per minute.
func (c AppConfig) RateLimitAdmin() int { return c.rateLimitAdmin }

// AllowTestRateKey reports whether the X-Rate-Key header may override the
// rate-limit client key. Test mode only.
func (c AppConfig) AllowTestRateKey() bool { return c.allowTestRateKey }

// DisableUALogging reports whether user agents are kept out of the logs.
func (c AppConfig) DisableUALogging() bool { return c.disableUALogging }

// BuildTime returns the build timestamp reported by the health endpoint.
func (c AppConfig) BuildTime() string { return c.buildTime }

// GitSHA returns the git revision reported by the health endpoint.
func (c AppConfig) GitSHA() string { return c.gitSHA }

// EnsureDirs creates the data, logs, and index directories.
func (c AppConfig) EnsureDirs() error {
	for _, dir := range []string{c.dataDir, c.LogsDir(), c.IndexDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory and rebases the default catalog path.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		rebased := filepath.Base(c.catalogFile) == DefaultCatalogFile
		c.dataDir = dir
		if rebased {
			c.catalogFile = filepath.Join(dir, DefaultCatalogFile)
		}
	}
}

// WithCatalogFile sets the catalog JSON file path.
func WithCatalogFile(path string) AppConfigOption {
	return func(c *AppConfig) { c.catalogFile = path }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithEmbedModel sets the embedding model identifier.
func WithEmbedModel(model string) AppConfigOption {
	return func(c *AppConfig) { c.embedModel = model }
}

// WithEmbedding sets the embedding endpoint config.
func WithEmbedding(e EmbeddingConfig) AppConfigOption {
	return func(c *AppConfig) { c.embedding = e }
}

// WithThresholds sets the low-confidence thresholds.
func WithThresholds(topSim, softmax float64) AppConfigOption {
	return func(c *AppConfig) {
		if topSim > 0 {
			c.lowConfTopSim = topSim
		}
		if softmax > 0 {
			c.lowConfSoftmax = softmax
		}
	}
}

// WithTranslation enables or disables translation rescue.
func WithTranslation(enabled bool) AppConfigOption {
	return func(c *AppConfig) { c.enableTranslation = enabled }
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.corsOrigins = make([]string, len(origins))
		copy(c.corsOrigins, origins)
	}
}

// WithReindexTimeout bounds reindex duration.
func WithReindexTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.reindexTimeout = d
		}
	}
}

// WithAdminToken sets the shared admin secret.
func WithAdminToken(token string) AppConfigOption {
	return func(c *AppConfig) { c.adminToken = token }
}

// WithRateLimits sets the per-minute search and admin budgets.
func WithRateLimits(searchPerMin, adminPerMin int) AppConfigOption {
	return func(c *AppConfig) {
		if searchPerMin > 0 {
			c.rateLimitSearch = searchPerMin
		}
		if adminPerMin > 0 {
			c.rateLimitAdmin = adminPerMin
		}
	}
}

// WithAllowTestRateKey honors the X-Rate-Key header for rate limiting.
func WithAllowTestRateKey(allow bool) AppConfigOption {
	return func(c *AppConfig) { c.allowTestRateKey = allow }
}

// WithDisableUALogging keeps user agents out of log entries.
func WithDisableUALogging(disable bool) AppConfigOption {
	return func(c *AppConfig) { c.disableUALogging = disable }
}

// WithBuildInfo sets the build timestamp and git revision.
func WithBuildInfo(buildTime, gitSHA string) AppConfigOption {
	return func(c *AppConfig) {
		if buildTime != "" {
			c.buildTime = buildTime
		}
		if gitSHA != "" {
			c.gitSHA = gitSHA
		}
	}
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// The admin token is reported only as presence.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("catalog_file", c.catalogFile),
		slog.String("log_level", c.logLevel),
		slog.String("embed_model", c.embedModel),
		slog.Bool("embedding_remote", c.embedding.IsRemote()),
		slog.Float64("lowconf_topsim", c.lowConfTopSim),
		slog.Float64("lowconf_softmax", c.lowConfSoftmax),
		slog.Bool("translation_enabled", c.enableTranslation),
		slog.Bool("admin_token_set", c.adminToken != ""),
		slog.Int("rate_limit_search", c.rateLimitSearch),
		slog.Int("rate_limit_admin", c.rateLimitAdmin),
		slog.Duration("reindex_timeout", c.reindexTimeout),
	}
}
