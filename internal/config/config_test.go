package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, SourceMemory, cfg.EventSource)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, "skip", cfg.DecodeFailure)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("EVENT_SOURCE", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RETRY_DELAY", "250ms")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, SourceKafka, cfg.EventSource)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("SALES_STORE", "s3")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "SALES_STORE")

	t.Setenv("SALES_STORE", "file")
	t.Setenv("POLL_BATCH", "many")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "parse env:")
}

func TestLoadReportConfig(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories: [Electronics, Books]
regions: [Asia]
targets:
  "2025-01":
    Electronics:
      Asia: 1000
    Books:
      Asia: 250.5
`), 0o644))

	// Act
	cfg, err := LoadReportConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Books"}, cfg.Categories)
	assert.True(t, cfg.TargetFor(2025, time.January, "Electronics", "Asia").Equal(decimal.NewFromInt(1000)))
	assert.True(t, cfg.TargetFor(2025, time.January, "Books", "Asia").Equal(decimal.RequireFromString("250.5")))
	assert.True(t, cfg.TargetFor(2025, time.February, "Books", "Asia").IsZero())
}

func TestParseReportConfig_Errors(t *testing.T) {
	_, err := ParseReportConfig([]byte("targets:\n  january:\n    Books:\n      Asia: 1\n"))
	assert.ErrorContains(t, err, "invalid target period")

	_, err = ParseReportConfig([]byte("targets:\n  \"2025-01\":\n    Books:\n      Asia: -1\n"))
	assert.ErrorContains(t, err, "negative target")

	_, err = LoadReportConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
