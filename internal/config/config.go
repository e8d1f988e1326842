// Package config resolves CLI configuration: embedded defaults, an optional
// JSON or YAML file, then SAFEAPPS_* environment overrides.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/supersafe-org/go-safe-apps/pkg/registry"
)

// Environment variables recognised by Load.
const (
	EnvNetwork      = "SAFEAPPS_NETWORK"
	EnvRPCURL       = "SAFEAPPS_RPC_URL"
	EnvLogLevel     = "SAFEAPPS_LOG_LEVEL"
	EnvLogFormat    = "SAFEAPPS_LOG_FORMAT"
	EnvRegistry     = "SAFEAPPS_REGISTRY"
	EnvTimeout      = "SAFEAPPS_TIMEOUT"
	EnvAssetBaseURL = "SAFEAPPS_ASSET_BASE_URL"
)

//go:embed default_config.json
var defaultConfigJSON []byte

type Config struct {
	Network   registry.Network `json:"network" yaml:"network"`
	LogLevel  string           `json:"log_level" yaml:"log_level"`
	LogFormat string           `json:"log_format" yaml:"log_format"` // "json" or "console"

	// Registry points at a registry file replacing the embedded one.
	Registry     string `json:"registry,omitempty" yaml:"registry,omitempty"`
	AssetBaseURL string `json:"asset_base_url,omitempty" yaml:"asset_base_url,omitempty"`

	RequestTimeoutSeconds int `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`

	// RPCURL wins over the per-network RPCURLs entry.
	RPCURL  string            `json:"rpc_url,omitempty" yaml:"rpc_url,omitempty"`
	RPCURLs map[string]string `json:"rpc_urls" yaml:"rpc_urls"`
}

// LoadDefault returns the embedded configuration.
func LoadDefault() (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(defaultConfigJSON, &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal default config: %w", err)
	}
	return &cfg, nil
}

// Load layers the file at path (skipped when empty) and the environment over
// the embedded defaults, then validates the result.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg, err := LoadDefault()
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(data, path, cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid config: %w", err)
	}
	return cfg, nil
}

func decode(data []byte, source string, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	jsonErr := json.Unmarshal(data, cfg)
	if jsonErr == nil {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", source, jsonErr)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvNetwork); ok && v != "" {
		network, err := registry.ParseNetwork(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvNetwork, err)
		}
		cfg.Network = network
	}
	if v, ok := lookup(EnvRPCURL); ok && v != "" {
		cfg.RPCURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = v
	}
	if v, ok := lookup(EnvRegistry); ok && v != "" {
		cfg.Registry = v
	}
	if v, ok := lookup(EnvAssetBaseURL); ok && v != "" {
		cfg.AssetBaseURL = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		seconds, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvTimeout, err)
		}
		cfg.RequestTimeoutSeconds = seconds
	}
	return nil
}

// parseSeconds accepts a duration ("30s", "1m") or a plain number of seconds.
func parseSeconds(raw string) (int, error) {
	if d, err := time.ParseDuration(raw); err == nil {
		return int(d / time.Second), nil
	}
	return strconv.Atoi(raw)
}

func validate(cfg *Config) error {
	if !cfg.Network.Valid() {
		return fmt.Errorf("unknown network %s", cfg.Network)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}
	if cfg.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	if cfg.RequestTimeoutSeconds == 0 {
		cfg.RequestTimeoutSeconds = 15
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return nil
}

// RequestTimeout returns the remote fetch timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Endpoint returns the RPC endpoint for the configured network.
func (c *Config) Endpoint() string {
	if c.RPCURL != "" {
		return c.RPCURL
	}
	return c.RPCURLs[c.Network.String()]
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are ignored; existing variables are never overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	return nil
}
