package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaults(t *testing.T) {
	for _, k := range []string{"TBENCH_LOG_LEVEL", "TBENCH_LOG_FORMAT", "TBENCH_PARALLEL",
		"TBENCH_SETTLE_STEPS", "TBENCH_DESIGN", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "OTEL_INSECURE"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Parallel:    4,
		SettleSteps: 16,
		Design:      "counter",
		ServiceName: "tbench",
	}, cfg)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_env(t *testing.T) {
	t.Setenv("TBENCH_LOG_LEVEL", "DEBUG")
	t.Setenv("TBENCH_LOG_FORMAT", "json")
	t.Setenv("TBENCH_PARALLEL", "2")
	t.Setenv("TBENCH_SETTLE_STEPS", "not a number")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	t.Setenv("OTEL_INSECURE", "true")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2, cfg.Parallel)
	assert.Equal(t, 16, cfg.SettleSteps, "invalid integers fall back to the default")
	assert.Equal(t, "localhost:4318", cfg.OTELEndpoint)
	assert.True(t, cfg.OTELInsecure)
}

func TestValidate(t *testing.T) {
	base := Config{LogLevel: "info", LogFormat: "text", Parallel: 1, SettleSteps: 1}
	require.NoError(t, base.Validate())

	for name, mod := range map[string]func(*Config){
		"level":    func(c *Config) { c.LogLevel = "loud" },
		"format":   func(c *Config) { c.LogFormat = "xml" },
		"parallel": func(c *Config) { c.Parallel = 0 },
		"settle":   func(c *Config) { c.SettleSteps = -1 },
	} {
		c := base
		mod(&c)
		assert.Error(t, c.Validate(), name)
	}
}
