package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvConfig_ToAppConfig(t *testing.T) {
	env := EnvConfig{
		Host:              "127.0.0.1",
		Port:              9000,
		DataDir:           "/tmp/nco",
		LogLevel:          "DEBUG",
		LogFormat:         "json",
		EmbedModel:        "intfloat/multilingual-e5-base",
		LowConfSoftmax:    0.6,
		LowConfTopSim:     0.5,
		EnableTranslation: true,
		CORSOrigins:       "https://a.example, https://b.example",
		ReindexTimeoutSec: 120,
		AdminToken:        "secret",
		RateLimitSearch:   30,
		RateLimitAdmin:    10,
		GitSHA:            "abc1234",
	}

	cfg := env.ToAppConfig()

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, "/tmp/nco", cfg.DataDir())
	assert.Equal(t, "/tmp/nco/nco_data.json", cfg.CatalogFile())
	assert.Equal(t, "/tmp/nco/logs", cfg.LogsDir())
	assert.Equal(t, "/tmp/nco/index", cfg.IndexDir())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, "intfloat/multilingual-e5-base", cfg.EmbedModel())
	assert.InDelta(t, 0.6, cfg.LowConfSoftmax(), 1e-9)
	assert.InDelta(t, 0.5, cfg.LowConfTopSim(), 1e-9)
	assert.True(t, cfg.EnableTranslation())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
	assert.Equal(t, 120*time.Second, cfg.ReindexTimeout())
	assert.Equal(t, "secret", cfg.AdminToken())
	assert.Equal(t, 30, cfg.RateLimitSearch())
	assert.Equal(t, 10, cfg.RateLimitAdmin())
	assert.Equal(t, "abc1234", cfg.GitSHA())
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv("/nonexistent/.env")
	require.NoError(t, err)

	app := cfg.ToAppConfig()
	assert.Equal(t, DefaultEmbedModel, app.EmbedModel())
	assert.InDelta(t, DefaultLowConfTopSim, app.LowConfTopSim(), 1e-9)
	assert.InDelta(t, DefaultLowConfSoftmax, app.LowConfSoftmax(), 1e-9)
	assert.Equal(t, DefaultRateLimitSearch, app.RateLimitSearch())
	assert.Equal(t, DefaultRateLimitAdmin, app.RateLimitAdmin())
	assert.False(t, app.EnableTranslation())
	assert.Empty(t, app.AdminToken())
}

func TestWithCatalogFile_OverridesDataDirDefault(t *testing.T) {
	cfg := NewAppConfigWithOptions(
		WithDataDir("/data"),
		WithCatalogFile("/etc/nco/catalog.json"),
	)
	assert.Equal(t, "/etc/nco/catalog.json", cfg.CatalogFile())
	assert.Equal(t, "/data/logs", cfg.LogsDir())
}
