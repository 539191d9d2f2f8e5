package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setEnvAndRun(t *testing.T, env map[string]string, fn func()) {
	t.Helper()

	backup := map[string]string{}
	for k := range env {
		backup[k] = os.Getenv(k)
	}

	for k, v := range env {
		require.NoError(t, os.Setenv(k, v))
	}
	defer func() {
		for k := range env {
			_ = os.Unsetenv(k)
			if old, ok := backup[k]; ok && old != "" {
				_ = os.Setenv(k, old)
			}
		}
	}()

	fn()
}

func withFreshFlagSet(t *testing.T, fn func()) {
	t.Helper()
	old := flag.CommandLine
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	defer func() { flag.CommandLine = old }()
	fn()
}

func TestNewServerConfig_Defaults(t *testing.T) {
	withFreshFlagSet(t, func() {
		cfg := NewServerConfig()

		require.Equal(t, "localhost:8080", cfg.Addr)
		require.Equal(t, DefaultDedupWindowHours, cfg.DedupWindowHours)
		require.True(t, cfg.ForwardEnabled)
		require.Equal(t, DefaultForwardTimeout, cfg.ForwardTimeout)
		require.Equal(t, DefaultForwardUserAgent, cfg.ForwardUserAgent)
		require.Empty(t, cfg.ForwardURL)
		require.NotNil(t, cfg.Logger)
	})
}

func TestReadServerEnvironment(t *testing.T) {
	env := map[string]string{
		"ADDRESS":            "127.0.0.1:9999",
		"DATABASE_DSN":       "postgres://localhost/metrics",
		"DEDUP_WINDOW_HOURS": "24",
		"FORWARD_ENABLED":    "false",
		"FORWARD_URL":        "https://collector.example.com/ingest",
		"FORWARD_TIMEOUT":    "3",
		"KEY":                "hash-key",
		"TRUSTED_SUBNET":     "10.0.0.0/8",
	}

	setEnvAndRun(t, env, func() {
		cfg := &ServerConfig{}
		readServerEnvironment(cfg)

		require.Equal(t, "127.0.0.1:9999", cfg.Addr)
		require.Equal(t, "postgres://localhost/metrics", cfg.DatabaseDsn)
		require.Equal(t, 24, cfg.DedupWindowHours)
		require.False(t, cfg.ForwardEnabled)
		require.Equal(t, "https://collector.example.com/ingest", cfg.ForwardURL)
		require.Equal(t, 3, cfg.ForwardTimeout)
		require.Equal(t, "hash-key", cfg.Key)
		require.Equal(t, "10.0.0.0/8", cfg.TrustedSubnet)
	})
}

func TestReadServerEnvironment_InvalidNumbersIgnored(t *testing.T) {
	env := map[string]string{
		"DEDUP_WINDOW_HOURS": "not-a-number",
		"FORWARD_ENABLED":    "not-a-bool",
	}

	setEnvAndRun(t, env, func() {
		cfg := &ServerConfig{DedupWindowHours: 1, ForwardEnabled: true}
		readServerEnvironment(cfg)

		require.Equal(t, 1, cfg.DedupWindowHours)
		require.True(t, cfg.ForwardEnabled)
	})
}

func TestNewServerConfig_JSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"address": "0.0.0.0:7070",
		"database_dsn": "postgres://json/metrics",
		"dedup_window_hours": 6,
		"forward_enabled": false,
		"forward_url": "https://json.example.com/ingest",
		"forward_timeout": 20,
		"trusted_subnet": "192.168.0.0/16"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	setEnvAndRun(t, map[string]string{"CONFIG": path}, func() {
		withFreshFlagSet(t, func() {
			cfg := NewServerConfig()

			require.Equal(t, "0.0.0.0:7070", cfg.Addr)
			require.Equal(t, "postgres://json/metrics", cfg.DatabaseDsn)
			require.Equal(t, 6, cfg.DedupWindowHours)
			require.False(t, cfg.ForwardEnabled)
			require.Equal(t, "https://json.example.com/ingest", cfg.ForwardURL)
			require.Equal(t, 20, cfg.ForwardTimeout)
			require.Equal(t, "192.168.0.0/16", cfg.TrustedSubnet)
		})
	})
}

func TestNewServerConfig_EnvOverridesJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"address": "json:1111"}`), 0o600))

	env := map[string]string{
		"CONFIG":  path,
		"ADDRESS": "env:2222",
	}

	setEnvAndRun(t, env, func() {
		withFreshFlagSet(t, func() {
			cfg := NewServerConfig()
			require.Equal(t, "env:2222", cfg.Addr)
		})
	})
}

func TestLoadServerJSON_MissingFile(t *testing.T) {
	_, err := loadServerJSON("/does/not/exist.json")
	require.Error(t, err)
}
