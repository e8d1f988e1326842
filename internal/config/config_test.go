package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/supersafe-org/go-safe-apps/pkg/registry"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadDefault(t *testing.T) {
	cfg, err := load("", env(nil))
	require.NoError(t, err)

	require.Equal(t, registry.MainnetBeta, cfg.Network)
	require.Equal(t, "console", cfg.LogFormat)
	require.Equal(t, 15*time.Second, cfg.RequestTimeout())
	require.Equal(t, "https://api.mainnet-beta.solana.com", cfg.Endpoint())
}

func TestLoad_YAMLFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safeapps.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: devnet\nlog_format: json\nrequest_timeout_seconds: 3\n"), 0o600))

	cfg, err := load(path, env(nil))
	require.NoError(t, err)
	require.Equal(t, registry.Devnet, cfg.Network)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 3*time.Second, cfg.RequestTimeout())
	require.Equal(t, "https://api.devnet.solana.com", cfg.Endpoint())

	cfg, err = load(path, env(map[string]string{
		EnvNetwork:  "101",
		EnvRPCURL:   "http://127.0.0.1:8899",
		EnvTimeout:  "1m",
		EnvLogLevel: "debug",
	}))
	require.NoError(t, err)
	require.Equal(t, registry.MainnetBeta, cfg.Network)
	require.Equal(t, "http://127.0.0.1:8899", cfg.Endpoint())
	require.Equal(t, time.Minute, cfg.RequestTimeout())
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safeapps.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"network":"testnet","registry":"apps.yaml"}`), 0o600))

	cfg, err := load(path, env(nil))
	require.NoError(t, err)
	require.Equal(t, registry.Testnet, cfg.Network)
	require.Equal(t, "apps.yaml", cfg.Registry)
	require.Equal(t, "https://api.testnet.solana.com", cfg.Endpoint())
}

func TestLoad_Errors(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), env(nil))
	require.Error(t, err)

	_, err = load("", env(map[string]string{EnvNetwork: "moonnet"}))
	require.Error(t, err)

	_, err = load("", env(map[string]string{EnvLogFormat: "xml"}))
	require.ErrorContains(t, err, "log format")

	_, err = load("", env(map[string]string{EnvTimeout: "soon"}))
	require.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SAFEAPPS_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SAFEAPPS_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "absent.env")))
	require.Equal(t, "loaded", os.Getenv("SAFEAPPS_TEST_DOTENV"))
}
