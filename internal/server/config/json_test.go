package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("CONFIG", "")

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"endpoint_addr_http":              ":8000",
		"endpoint_addr_grpc":              ":8001",
		"endpoint_addr_metrics":           ":8002",
		"database_dsn":                    "postgres://db",
		"access_token_secret":             "a-secret",
		"refresh_token_secret":            "r-secret",
		"access_token_validity_duration":  "5m",
		"refresh_token_validity_duration": "24h",
		"bcrypt_cost":                     12,
		"max_handle_attempts":             50,
		"cors_allowed_origin":             "https://tasks.example",
		"shutdown_timeout":                "3s",
		"log_level":                       "warn",
	})

	t.Run("loads every field", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, ":8000", cfg.EndpointAddrHTTP)
		assert.Equal(t, ":8001", cfg.EndpointAddrGRPC)
		assert.Equal(t, ":8002", cfg.EndpointAddrMetrics)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "a-secret", cfg.AccessTokenSecret)
		assert.Equal(t, "r-secret", cfg.RefreshTokenSecret)
		assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 24*time.Hour, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Equal(t, 50, cfg.MaxHandleAttempts)
		assert.Equal(t, "https://tasks.example", cfg.CORSAllowedOrigin)
		assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("partial file keeps other fields", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"database_dsn": "memory"})
		os.Args = []string{"testbin", "-c", partial}

		var cfg Config
		cfg.LoadDefaults()
		parseJson(&cfg)

		assert.Equal(t, "memory", cfg.DatabaseDSN)
		assert.Equal(t, ":5000", cfg.EndpointAddrHTTP)
		assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	})

	t.Run("no file → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{DatabaseDSN: "keep"}
		parseJson(cfg)
		assert.Equal(t, "keep", cfg.DatabaseDSN)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
