package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":       "postgres://localhost:5432/pos",
		"REDIS_URL":          "redis://localhost:6379/0",
		"PORT":               "",
		"TENANT_HEADER":      "",
		"WORKER_CONCURRENCY": "",
		"BULK_LOCK_TTL":      "",
		"OBS_ENABLE_TRACING": "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "X-Tenant-ID", cfg.TenantHeader)
	require.Equal(t, 4, cfg.WorkerConcurrency)
	require.Equal(t, 10*time.Second, cfg.BulkLockTTL)
	require.True(t, cfg.TracingEnabled)
	require.Equal(t, "otlp", cfg.TracingExporter)
	require.Equal(t, 1.0, cfg.TracingSamplingRatio)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379/0",
	})
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":         "postgres://localhost:5432/pos",
		"REDIS_URL":            "redis://localhost:6379/0",
		"PORT":                 "9090",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"WORKER_CONCURRENCY":   "8",
		"BULK_JOB_TTL":         "1h",
		"OBS_ENABLE_TRACING":   "false",
		"OBS_OTLP_ENDPOINT":    "http://collector:4318",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 8, cfg.WorkerConcurrency)
	require.Equal(t, time.Hour, cfg.BulkJobTTL)
	require.False(t, cfg.TracingEnabled)
	require.Equal(t, "http://collector:4318", cfg.TracingEndpoint)
}
