package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, 5*time.Second, cfg.Batch.DocumentTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CREDITAI_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("CREDITAI_HTTP_READ_TIMEOUT", "2s")
	t.Setenv("CREDITAI_LOG_LEVEL", "debug")
	t.Setenv("CREDITAI_LOG_FORMAT", "json")
	t.Setenv("CREDITAI_LOG_INCLUDE_CALLER", "true")
	t.Setenv("CREDITAI_FORMATS_DIR", "/etc/creditai/formats")
	t.Setenv("CREDITAI_CREDITORS_FILE", "/etc/creditai/creditors.yaml")
	t.Setenv("CREDITAI_WORKERS", "16")
	t.Setenv("CREDITAI_DOCUMENT_TIMEOUT", "750ms")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, 2*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Logging.IncludeCaller)
	assert.Equal(t, "/etc/creditai/formats", cfg.Parser.FormatsDir)
	assert.Equal(t, "/etc/creditai/creditors.yaml", cfg.Parser.CreditorsFile)
	assert.Equal(t, 16, cfg.Batch.Workers)
	assert.Equal(t, 750*time.Millisecond, cfg.Batch.DocumentTimeout)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"CREDITAI_HTTP_READ_TIMEOUT", "soon"},
		{"CREDITAI_HTTP_WRITE_TIMEOUT", "-1s"},
		{"CREDITAI_DOCUMENT_TIMEOUT", "0s"},
		{"CREDITAI_WORKERS", "many"},
		{"CREDITAI_WORKERS", "0"},
		{"CREDITAI_LOG_INCLUDE_CALLER", "perhaps"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
