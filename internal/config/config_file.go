package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "VOCE_HOST_CONFIG"

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	LogLevel         string   `toml:"log_level"`
	LogFile          string   `toml:"log_file"`
	ByteOrder        string   `toml:"byte_order"`
	MaxInboundBytes  int      `toml:"max_inbound_bytes"`
	MaxOutboundBytes int      `toml:"max_outbound_bytes"`
	AllowedCallers   []string `toml:"allowed_callers"`

	Classifier struct {
		DomainsFile     string       `toml:"domains_file"`
		DefaultCategory string       `toml:"default_category"`
		WatchDomains    *bool        `toml:"watch_domains"`
		Command         []string     `toml:"command"`
		CommandDir      string       `toml:"command_dir"`
		CommandTimeout  string       `toml:"command_timeout"`
		CommandRetries  int          `toml:"command_retries"`
		Rules           []RuleConfig `toml:"rules"`
	} `toml:"classifier"`

	Cache struct {
		Backend       string `toml:"backend"`
		TTL           string `toml:"ttl"`
		RedisAddr     string `toml:"redis_addr"`
		RedisPassword string `toml:"redis_password"`
		RedisDB       int    `toml:"redis_db"`
	} `toml:"cache"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("%s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns the config file path: $VOCE_HOST_CONFIG, or
// voce-host/config.toml under the user's config directory.
func DefaultConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "voce-host", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	var s configSetter

	s.setString(fc.LogLevel, &cfg.LogLevel)
	s.setString(fc.LogFile, &cfg.LogFile)
	s.setString(fc.ByteOrder, &cfg.ByteOrder)
	s.setInt(fc.MaxInboundBytes, &cfg.MaxInboundBytes)
	s.setInt(fc.MaxOutboundBytes, &cfg.MaxOutboundBytes)
	if len(fc.AllowedCallers) > 0 {
		cfg.AllowedCallers = fc.AllowedCallers
	}

	cc := fc.Classifier
	s.setString(cc.DomainsFile, &cfg.Classifier.DomainsFile)
	s.setString(cc.DefaultCategory, &cfg.Classifier.DefaultCategory)
	s.setBool(cc.WatchDomains, &cfg.Classifier.WatchDomains)
	s.setString(cc.CommandDir, &cfg.Classifier.CommandDir)
	if len(cc.Command) > 0 {
		cfg.Classifier.Command = cc.Command
	}
	if err := s.setDuration("command_timeout", cc.CommandTimeout, &cfg.Classifier.CommandTimeout); err != nil {
		return err
	}
	s.setInt(cc.CommandRetries, &cfg.Classifier.CommandRetries)
	if len(cc.Rules) > 0 {
		cfg.Classifier.Rules = cc.Rules
	}

	s.setString(fc.Cache.Backend, &cfg.Cache.Backend)
	s.setString(fc.Cache.RedisAddr, &cfg.Cache.RedisAddr)
	s.setString(fc.Cache.RedisPassword, &cfg.Cache.RedisPassword)
	s.setInt(fc.Cache.RedisDB, &cfg.Cache.RedisDB)
	return s.setDuration("ttl", fc.Cache.TTL, &cfg.Cache.TTL)
}

// Load builds the effective configuration: defaults, then the file at path
// (if it exists), then the environment.  An empty path means
// DefaultConfigPath().
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigPath()
	}

	if path != "" {
		fc, err := LoadFileConfig(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Running without a config file is normal.
		case err != nil:
			return cfg, fmt.Errorf("load config: %w", err)
		default:
			if err := ApplyFileConfig(&cfg, fc); err != nil {
				return cfg, fmt.Errorf("load config: %w", err)
			}
		}
	}

	if err := ApplyEnvConfig(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
