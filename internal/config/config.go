package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Source kinds selectable through SOURCE_KIND.
const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	SourceKind    string
	FiresURL      string
	SourceFormat  string
	SourceTimeout time.Duration

	KafkaBrokers     []string
	KafkaTopic       string
	KafkaGroupID     string
	KafkaBatchSize   int
	KafkaPollTimeout time.Duration

	CacheTTL          time.Duration
	ConfidenceHighMin float64
	ConfidenceLowMax  float64

	FilterTimezone string
	FilterDebounce time.Duration

	// DevFetchDelay adds artificial latency to every fetch; development only.
	DevFetchDelay time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	sourceTimeout, err := parseDuration("SOURCE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}
	pollTimeout, err := parseDuration("KAFKA_POLL_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	debounce, err := parseDuration("FILTER_DEBOUNCE", "300ms")
	if err != nil {
		return nil, err
	}
	devDelay, err := parseOptionalDuration("DEV_FETCH_DELAY")
	if err != nil {
		return nil, err
	}

	highMin, err := parseFloat("CONFIDENCE_HIGH_MIN", 80)
	if err != nil {
		return nil, err
	}
	lowMax, err := parseFloat("CONFIDENCE_LOW_MAX", 30)
	if err != nil {
		return nil, err
	}

	batchSize, err := parseInt("KAFKA_BATCH_SIZE", 500)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SourceKind:    envOrDefault("SOURCE_KIND", SourceHTTP),
		FiresURL:      os.Getenv("FIRES_URL"),
		SourceFormat:  envOrDefault("SOURCE_FORMAT", "json"),
		SourceTimeout: sourceTimeout,

		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:       envOrDefault("KAFKA_TOPIC", "fire-detections"),
		KafkaGroupID:     envOrDefault("KAFKA_GROUP_ID", "firewatch"),
		KafkaBatchSize:   batchSize,
		KafkaPollTimeout: pollTimeout,

		CacheTTL:          cacheTTL,
		ConfidenceHighMin: highMin,
		ConfidenceLowMax:  lowMax,

		FilterTimezone: envOrDefault("FILTER_TIMEZONE", "UTC"),
		FilterDebounce: debounce,

		DevFetchDelay: devDelay,
	}

	switch cfg.SourceKind {
	case SourceHTTP:
		if cfg.FiresURL == "" {
			return nil, errors.New("FIRES_URL is required when SOURCE_KIND is http")
		}
		if cfg.SourceFormat != "json" && cfg.SourceFormat != "csv" {
			return nil, fmt.Errorf("invalid SOURCE_FORMAT %q", cfg.SourceFormat)
		}
	case SourceKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when SOURCE_KIND is kafka")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when SOURCE_KIND is kafka")
		}
	default:
		return nil, fmt.Errorf("invalid SOURCE_KIND %q", cfg.SourceKind)
	}

	if cfg.ConfidenceLowMax >= cfg.ConfidenceHighMin {
		return nil, errors.New("CONFIDENCE_LOW_MAX must be below CONFIDENCE_HIGH_MIN")
	}
	if _, tzErr := cfg.Location(); tzErr != nil {
		return nil, fmt.Errorf("invalid FILTER_TIMEZONE: %w", tzErr)
	}

	return cfg, nil
}

// Location resolves FilterTimezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.FilterTimezone)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseOptionalDuration(key string) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}
