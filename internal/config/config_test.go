package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "data/datachat_index.db", cfg.Store.Path)
	assert.Equal(t, 100, cfg.Query.DefaultLimit)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "ollama", cfg.Report.Generator)

	// Branch budgets drive the enrichment wall clock; the orchestrator
	// runs them in parallel so the widest one bounds the whole call.
	assert.Equal(t, 20, cfg.Enrich.SearchTimeoutSecs)
	assert.Equal(t, 12, cfg.Enrich.SocialTimeoutSecs)
	assert.Equal(t, 10, cfg.Enrich.DirectoryTimeoutSecs)
	assert.Equal(t, 10, cfg.Enrich.BreachTimeoutSecs)
	assert.Equal(t, 4, cfg.Enrich.MaxSearchWorkers)
	assert.Equal(t, 6, cfg.Enrich.MaxSocialWorkers)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DATACHAT_SERVER_PORT", "9100")
	t.Setenv("DATACHAT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "console"})
	assert.NoError(t, err)
}
