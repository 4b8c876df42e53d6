package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, CartStorePostgres, cfg.CartStore)
	assert.Equal(t, 0, cfg.RemoteMaxRetries)
	assert.False(t, cfg.RemoteCircuitBreaker)
	assert.Equal(t, 30*time.Second, cfg.RemoteTimeout())
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_RedisCartStore(t *testing.T) {
	t.Setenv("CART_STORE", "redis")
	t.Setenv("REDIS_ADDR", "redis.local:6380")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, CartStoreRedis, cfg.CartStore)
	assert.Equal(t, "redis.local:6380", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,https://shop.example.com")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:5173", "https://shop.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"port zero", map[string]string{"STOREFRONT_HTTP_PORT": "0"}, "invalid HTTP port"},
		{"port too high", map[string]string{"STOREFRONT_HTTP_PORT": "70000"}, "invalid HTTP port"},
		{"relative catalog url", map[string]string{"CATALOG_BASE_URL": "/products"}, "CATALOG_BASE_URL"},
		{"catalog url scheme", map[string]string{"CATALOG_BASE_URL": "ftp://catalog"}, "CATALOG_BASE_URL"},
		{"zero timeout", map[string]string{"REMOTE_TIMEOUT_SECONDS": "0"}, "REMOTE_TIMEOUT_SECONDS"},
		{"negative retries", map[string]string{"REMOTE_MAX_RETRIES": "-1"}, "REMOTE_MAX_RETRIES"},
		{"pool bounds", map[string]string{"DB_MIN_CONNS": "20", "DB_MAX_CONNS": "5"}, "DB_MIN_CONNS"},
		{"unknown cart store", map[string]string{"CART_STORE": "sqlite"}, "CART_STORE"},
		{"sample rate", map[string]string{"OTEL_SAMPLE_RATE": "2.0"}, "OTEL_SAMPLE_RATE must be between 0.0 and 1.0"},
		{"not a number", map[string]string{"STOREFRONT_HTTP_PORT": "http"}, "load storefront config"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
