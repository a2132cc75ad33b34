package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ledgerguard/ledgerguard/internal/alert"
	"github.com/ledgerguard/ledgerguard/internal/screening"
)

// Server holds the HTTP control-plane knobs.
type Server struct {
	Addr             string `yaml:"addr"`
	ReadTimeoutSec   int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec  int    `yaml:"write_timeout_sec"`
	ShutdownGraceSec int    `yaml:"shutdown_grace_sec"`
}

// Dataset configures the built-in dataset provider. An empty Path uses
// the seed fixtures.
type Dataset struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
	Path    string `yaml:"path,omitempty"`
}

// Heuristic configures the address-shape provider.
type Heuristic struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

// Remote configures one HTTP screening vendor. The API key is read from
// the named environment variable at build time so keys stay out of
// config files. MaxRequests caps vendor lookups per window; zero means
// unlimited, and WindowSec defaults to 60 when a cap is set.
type Remote struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env,omitempty"`
	MaxRequests int    `yaml:"max_requests,omitempty"`
	WindowSec   int    `yaml:"window_sec,omitempty"`
}

// Providers selects which screening sources the aggregator consults.
type Providers struct {
	Dataset   Dataset   `yaml:"dataset"`
	Heuristic Heuristic `yaml:"heuristic"`
	Remote    []Remote  `yaml:"remote,omitempty"`
}

// Lists points at the watchlist file. Empty means empty lists.
type Lists struct {
	Path string `yaml:"path,omitempty"`
}

// Persistence selects the checkpoint store. An empty SQLitePath
// disables persistence.
type Persistence struct {
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

// Config is the full application configuration.
type Config struct {
	Server      Server           `yaml:"server"`
	Screening   screening.Config `yaml:"screening"`
	Providers   Providers        `yaml:"providers"`
	Lists       Lists            `yaml:"lists"`
	Alerts      []alert.Config   `yaml:"alerts,omitempty"`
	Persistence Persistence      `yaml:"persistence"`
}

// Default returns the built-in configuration: local dataset and
// heuristic providers, no remotes, no persistence, no alerts.
func Default() Config {
	return Config{
		Server: Server{
			Addr:             ":8880",
			ReadTimeoutSec:   10,
			WriteTimeoutSec:  30,
			ShutdownGraceSec: 10,
		},
		Screening: screening.DefaultConfig(),
		Providers: Providers{
			Dataset:   Dataset{Enabled: true, Name: "dataset"},
			Heuristic: Heuristic{Enabled: true, Name: "heuristic"},
		},
	}
}

// Load reads configuration from a YAML file, overlaying the defaults.
// Empty path falls back to ~/.ledgerguard/config.yaml. A missing file
// returns defaults; invalid YAML or invalid values return an error.
// Environment overrides apply last.
func Load(path string) (Config, error) {
	cfg, _, err := LoadWithHash(path)
	return cfg, err
}

// LoadWithHash is Load plus the SHA-256 of the raw file bytes, for
// change detection on reload. Defaults hash as empty input.
func LoadWithHash(path string) (Config, string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return withEnv(Default()), emptyHash(), nil
		}
		path = filepath.Join(home, ".ledgerguard", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := withEnv(Default())
			return cfg, emptyHash(), cfg.Validate()
		}
		return Config{}, "", fmt.Errorf("read config: %w", err)
	}

	// Start with defaults; YAML overwrites only specified fields.
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, "", fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg = withEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}

	sum := sha256.Sum256(data)
	return cfg, "sha256:" + hex.EncodeToString(sum[:]), nil
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server addr is required")
	}
	if c.Server.ReadTimeoutSec < 0 || c.Server.WriteTimeoutSec < 0 || c.Server.ShutdownGraceSec < 0 {
		return fmt.Errorf("config: server timeouts must not be negative")
	}
	if err := c.Screening.Validate(); err != nil {
		return err
	}
	if !c.Providers.Dataset.Enabled && !c.Providers.Heuristic.Enabled && len(c.Providers.Remote) == 0 {
		return fmt.Errorf("config: at least one screening provider must be enabled")
	}
	for _, r := range c.Providers.Remote {
		if r.Name == "" || r.URL == "" {
			return fmt.Errorf("config: remote providers need a name and url")
		}
		if r.MaxRequests < 0 || r.WindowSec < 0 {
			return fmt.Errorf("config: remote %s rate limit must not be negative", r.Name)
		}
	}
	return nil
}

// Environment overrides, applied after file load so deployments can
// adjust a packaged config without editing it.
const (
	EnvAddr       = "LEDGERGUARD_ADDR"
	EnvSQLitePath = "LEDGERGUARD_SQLITE_PATH"
)

func withEnv(cfg Config) Config {
	if addr := os.Getenv(EnvAddr); addr != "" {
		cfg.Server.Addr = addr
	}
	if path := os.Getenv(EnvSQLitePath); path != "" {
		cfg.Persistence.SQLitePath = path
	}
	return cfg
}

func emptyHash() string {
	sum := sha256.Sum256(nil)
	return "sha256:" + hex.EncodeToString(sum[:])
}
