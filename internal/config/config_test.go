package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker = "localhost:9092"
	testFiresURL  = "https://firms.example.com/api/fires"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FIRES_URL", testFiresURL)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, SourceHTTP, cfg.SourceKind)
	assert.Equal(t, testFiresURL, cfg.FiresURL)
	assert.Equal(t, "json", cfg.SourceFormat)
	assert.Equal(t, 15*time.Second, cfg.SourceTimeout)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "fire-detections", cfg.KafkaTopic)
	assert.Equal(t, "firewatch", cfg.KafkaGroupID)
	assert.Equal(t, 500, cfg.KafkaBatchSize)
	assert.Equal(t, 5*time.Second, cfg.KafkaPollTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 80.0, cfg.ConfidenceHighMin)
	assert.Equal(t, 30.0, cfg.ConfidenceLowMax)
	assert.Equal(t, "UTC", cfg.FilterTimezone)
	assert.Equal(t, 300*time.Millisecond, cfg.FilterDebounce)
	assert.Zero(t, cfg.DevFetchDelay)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SOURCE_KIND", "kafka")
	t.Setenv("SOURCE_FORMAT", "csv")
	t.Setenv("SOURCE_TIMEOUT", "3s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-detections")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("KAFKA_BATCH_SIZE", "100")
	t.Setenv("KAFKA_POLL_TIMEOUT", "1s")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("CONFIDENCE_HIGH_MIN", "75")
	t.Setenv("CONFIDENCE_LOW_MAX", "20")
	t.Setenv("FILTER_TIMEZONE", "America/Santiago")
	t.Setenv("FILTER_DEBOUNCE", "150ms")
	t.Setenv("DEV_FETCH_DELAY", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, SourceKafka, cfg.SourceKind)
	assert.Equal(t, "csv", cfg.SourceFormat)
	assert.Equal(t, 3*time.Second, cfg.SourceTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-detections", cfg.KafkaTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, 100, cfg.KafkaBatchSize)
	assert.Equal(t, 1*time.Second, cfg.KafkaPollTimeout)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 75.0, cfg.ConfidenceHighMin)
	assert.Equal(t, 20.0, cfg.ConfidenceLowMax)
	assert.Equal(t, "America/Santiago", cfg.FilterTimezone)
	assert.Equal(t, 150*time.Millisecond, cfg.FilterDebounce)
	assert.Equal(t, 2*time.Second, cfg.DevFetchDelay)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Santiago", loc.String())
}

func TestLoad_HTTPSourceRequiresURL(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIRES_URL")
}

func TestLoad_InvalidSourceKind(t *testing.T) {
	t.Setenv("SOURCE_KIND", "ftp")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOURCE_KIND")
}

func TestLoad_InvalidSourceFormat(t *testing.T) {
	t.Setenv("FIRES_URL", testFiresURL)
	t.Setenv("SOURCE_FORMAT", "xml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOURCE_FORMAT")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("FIRES_URL", testFiresURL)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeCacheTTL(t *testing.T) {
	t.Setenv("FIRES_URL", testFiresURL)
	t.Setenv("CACHE_TTL", "-1m")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_TTL")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("SOURCE_KIND", "kafka")
	t.Setenv("KAFKA_BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BATCH_SIZE")
}

func TestLoad_ConfidenceThresholdsMustBeOrdered(t *testing.T) {
	t.Setenv("FIRES_URL", testFiresURL)
	t.Setenv("CONFIDENCE_HIGH_MIN", "25")
	t.Setenv("CONFIDENCE_LOW_MAX", "30")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIDENCE_LOW_MAX")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("FIRES_URL", testFiresURL)
	t.Setenv("FILTER_TIMEZONE", "Mars/Olympus")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FILTER_TIMEZONE")
}
