// Package config loads creditai settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig
	Logging LoggingConfig
	Parser  ParserConfig
	Batch   BatchConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

// ParserConfig points at optional registry overrides. Empty values mean the
// embedded defaults.
type ParserConfig struct {
	FormatsDir    string
	CreditorsFile string
}

// BatchConfig controls parallel document parsing.
type BatchConfig struct {
	Workers         int
	DocumentTimeout time.Duration
}

const (
	defaultAddr            = ":8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
	defaultWorkers         = 4
	defaultDocumentTimeout = 5 * time.Second
)

// Default returns the configuration used when no environment overrides are set.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            defaultAddr,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
		Batch: BatchConfig{
			Workers:         defaultWorkers,
			DocumentTimeout: defaultDocumentTimeout,
		},
	}
}

// FromEnv reads configuration from CREDITAI_* environment variables, applying
// defaults. Malformed values are reported rather than ignored.
func FromEnv() (Config, error) {
	cfg := Default()

	cfg.HTTP.Addr = valueOrDefault("CREDITAI_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.Logging.Level = valueOrDefault("CREDITAI_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = valueOrDefault("CREDITAI_LOG_FORMAT", cfg.Logging.Format)
	cfg.Parser.FormatsDir = os.Getenv("CREDITAI_FORMATS_DIR")
	cfg.Parser.CreditorsFile = os.Getenv("CREDITAI_CREDITORS_FILE")

	var err error
	if cfg.Logging.IncludeCaller, err = parseBool("CREDITAI_LOG_INCLUDE_CALLER", false); err != nil {
		return Config{}, err
	}
	if cfg.HTTP.ReadTimeout, err = parseDuration("CREDITAI_HTTP_READ_TIMEOUT", cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if cfg.HTTP.WriteTimeout, err = parseDuration("CREDITAI_HTTP_WRITE_TIMEOUT", cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if cfg.HTTP.ShutdownTimeout, err = parseDuration("CREDITAI_HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Batch.DocumentTimeout, err = parseDuration("CREDITAI_DOCUMENT_TIMEOUT", cfg.Batch.DocumentTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Batch.Workers, err = parsePositiveInt("CREDITAI_WORKERS", cfg.Batch.Workers); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	val, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return val, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
