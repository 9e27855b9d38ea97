// Package config loads host settings from a TOML file and VOCE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/p00ya/voce-host/internal/classify"
	"github.com/p00ya/voce-host/internal/nativemsg"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds the settings shared by every host binary.
type Config struct {
	LogLevel string
	LogFile  string

	ByteOrder        string
	MaxInboundBytes  int
	MaxOutboundBytes int

	// AllowedCallers lists extension origins (Chrome) or add-on IDs
	// (Firefox) that may launch the request loop.  Empty allows any.
	AllowedCallers []string

	Classifier ClassifierConfig
	Cache      CacheConfig
}

// ClassifierConfig selects and tunes the classifiers.
type ClassifierConfig struct {
	DomainsFile     string
	DefaultCategory string
	WatchDomains    bool
	Command         []string
	CommandDir      string
	CommandTimeout  time.Duration
	CommandRetries  int
	Rules           []RuleConfig
}

// RuleConfig is one CEL classification rule.
type RuleConfig struct {
	Category string `toml:"category"`
	Expr     string `toml:"expr"`
}

// CacheConfig configures the category cache.
type CacheConfig struct {
	Backend       string
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel:         "info",
		ByteOrder:        nativemsg.OrderNative,
		MaxInboundBytes:  nativemsg.DefaultMaxInbound,
		MaxOutboundBytes: nativemsg.DefaultMaxOutbound,
		Classifier: ClassifierConfig{
			DefaultCategory: classify.DefaultCategory,
			WatchDomains:    true,
			CommandTimeout:  classify.DefaultCommandTimeout,
		},
		Cache: CacheConfig{
			Backend:   CacheMemory,
			TTL:       24 * time.Hour,
			RedisAddr: "localhost:6379",
		},
	}
}

// Validate checks the configuration for errors and normalizes fields.
func (c *Config) Validate() error {
	if _, err := nativemsg.ParseByteOrder(c.ByteOrder); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.MaxInboundBytes <= 0 || c.MaxOutboundBytes <= 0 {
		return fmt.Errorf("%w: message size limits must be positive", ErrInvalidConfig)
	}
	if uint64(c.MaxInboundBytes) > 1<<32-1 || uint64(c.MaxOutboundBytes) > 1<<32-1 {
		return fmt.Errorf("%w: message size limits must fit in 32 bits", ErrInvalidConfig)
	}

	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = CacheNone
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("%w: redis cache needs redis_addr", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache ttl must not be negative", ErrInvalidConfig)
	}

	if c.Classifier.CommandTimeout <= 0 {
		return fmt.Errorf("%w: command timeout must be positive", ErrInvalidConfig)
	}
	if c.Classifier.CommandRetries < 0 {
		return fmt.Errorf("%w: command retries must not be negative", ErrInvalidConfig)
	}
	for i, r := range c.Classifier.Rules {
		if r.Category == "" || r.Expr == "" {
			return fmt.Errorf("%w: rule %d needs both category and expr", ErrInvalidConfig, i)
		}
	}

	if c.Classifier.DomainsFile != "" {
		c.Classifier.DomainsFile = expandHome(c.Classifier.DomainsFile)
	}
	if c.LogFile != "" {
		c.LogFile = expandHome(c.LogFile)
	}
	return nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, p[2:])
	}
	return p
}

// configSetter applies non-empty values onto a Config.
type configSetter struct{}

// setString sets a string value if not empty.
func (configSetter) setString(value string, dst *string) {
	if value == "" {
		return
	}
	*dst = value
}

// setInt sets an int value if positive.
func (configSetter) setInt(value int, dst *int) {
	if value <= 0 {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil.
func (configSetter) setBool(value *bool, dst *bool) {
	if value == nil {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid.
func (configSetter) setDuration(name, value string, dst *time.Duration) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
func (s configSetter) setIntFromString(name, value string, dst *int) error {
	if value == "" {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	s.setInt(i, dst)
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (configSetter) setBoolFromString(value string, dst *bool) {
	if value == "" {
		return
	}
	*dst = value == "true" || value == "1"
}
