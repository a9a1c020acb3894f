// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads and validates the command line tool configuration
// from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Config holds the environment configuration of the tbench command.
type Config struct {
	// Logging.
	LogLevel  string // debug, info, warn or error
	LogFormat string // text or json

	// Runs.
	Parallel    int    // maximum number of concurrent test benches
	SettleSteps int    // circuit steps per evaluation
	Design      string // default built-in design

	// OTEL settings.
	OTELEndpoint string
	ServiceName  string
	OTELInsecure bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		LogLevel:     envStr("TBENCH_LOG_LEVEL", "info"),
		LogFormat:    envStr("TBENCH_LOG_FORMAT", "text"),
		Parallel:     envInt("TBENCH_PARALLEL", 4),
		SettleSteps:  envInt("TBENCH_SETTLE_STEPS", 16),
		Design:       envStr("TBENCH_DESIGN", "counter"),
		OTELEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:  envStr("OTEL_SERVICE_NAME", "tbench"),
		OTELInsecure: envBool("OTEL_INSECURE", false),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks configuration values.
func (c Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Errorf("config: TBENCH_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.Parallel <= 0 {
		return errors.New("config: TBENCH_PARALLEL must be positive")
	}
	if c.SettleSteps <= 0 {
		return errors.New("config: TBENCH_SETTLE_STEPS must be positive")
	}
	return nil
}

// Level returns the slog level for LogLevel.
func (c Config) Level() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.Errorf("config: unknown TBENCH_LOG_LEVEL %q", s)
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
