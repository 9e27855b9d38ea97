package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "native", cfg.ByteOrder)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, "Outros", cfg.Classifier.DefaultCategory)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		check   func(t *testing.T, cfg Config)
	}{
		{
			name:    "bad byte order",
			mutate:  func(c *Config) { c.ByteOrder = "middle" },
			wantErr: true,
		},
		{
			name:    "zero inbound limit",
			mutate:  func(c *Config) { c.MaxInboundBytes = 0 },
			wantErr: true,
		},
		{
			name:    "unknown cache backend",
			mutate:  func(c *Config) { c.Cache.Backend = "memcached" },
			wantErr: true,
		},
		{
			name:    "redis without address",
			mutate:  func(c *Config) { c.Cache.Backend = "redis"; c.Cache.RedisAddr = "" },
			wantErr: true,
		},
		{
			name:    "negative ttl",
			mutate:  func(c *Config) { c.Cache.TTL = -time.Second },
			wantErr: true,
		},
		{
			name:    "zero command timeout",
			mutate:  func(c *Config) { c.Classifier.CommandTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "negative command retries",
			mutate:  func(c *Config) { c.Classifier.CommandRetries = -1 },
			wantErr: true,
		},
		{
			name:    "incomplete rule",
			mutate:  func(c *Config) { c.Classifier.Rules = []RuleConfig{{Category: "x"}} },
			wantErr: true,
		},
		{
			name:   "empty backend means none",
			mutate: func(c *Config) { c.Cache.Backend = "" },
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, CacheNone, cfg.Cache.Backend)
			},
		},
		{
			name:   "backend is case insensitive",
			mutate: func(c *Config) { c.Cache.Backend = " Redis " },
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, CacheRedis, cfg.Cache.Backend)
			},
		},
		{
			name:   "expands home in paths",
			mutate: func(c *Config) { c.LogFile = "~/voce.log" },
			check: func(t *testing.T, cfg Config) {
				home, err := os.UserHomeDir()
				require.NoError(t, err)
				assert.Equal(t, filepath.Join(home, "voce.log"), cfg.LogFile)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"VOCE_LOG_LEVEL":        "debug",
				"VOCE_LOG_FILE":         "/tmp/voce.log",
				"VOCE_BYTE_ORDER":       "little",
				"VOCE_ALLOWED_CALLERS":  "chrome-extension://abc/, voce@example.org ,",
				"VOCE_DOMAINS_FILE":     "/etc/voce/domains.toml",
				"VOCE_DEFAULT_CATEGORY": "Other",
				"VOCE_WATCH_DOMAINS":    "0",
				"VOCE_PREDICT_COMMAND":  "python3  predict.py",
				"VOCE_PREDICT_TIMEOUT":  "3s",
				"VOCE_PREDICT_RETRIES":  "2",
				"VOCE_CACHE_BACKEND":    "redis",
				"VOCE_CACHE_TTL":        "1h",
				"VOCE_REDIS_ADDR":       "redis:6379",
				"VOCE_REDIS_PASSWORD":   "secret",
				"VOCE_REDIS_DB":         "2",
			},
			expected: func(c *Config) {
				c.LogLevel = "debug"
				c.LogFile = "/tmp/voce.log"
				c.ByteOrder = "little"
				c.AllowedCallers = []string{"chrome-extension://abc/", "voce@example.org"}
				c.Classifier.DomainsFile = "/etc/voce/domains.toml"
				c.Classifier.DefaultCategory = "Other"
				c.Classifier.WatchDomains = false
				c.Classifier.Command = []string{"python3", "predict.py"}
				c.Classifier.CommandTimeout = 3 * time.Second
				c.Classifier.CommandRetries = 2
				c.Cache.Backend = "redis"
				c.Cache.TTL = time.Hour
				c.Cache.RedisAddr = "redis:6379"
				c.Cache.RedisPassword = "secret"
				c.Cache.RedisDB = 2
			},
		},
		{
			name:     "returns error for invalid duration",
			envVars:  map[string]string{"VOCE_PREDICT_TIMEOUT": "soon"},
			expected: func(*Config) {},
			wantErr:  true,
		},
		{
			name:     "returns error for invalid int",
			envVars:  map[string]string{"VOCE_REDIS_DB": "zero"},
			expected: func(*Config) {},
			wantErr:  true,
		},
		{
			name:     "ignores unset vars",
			envVars:  map[string]string{},
			expected: func(*Config) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := DefaultConfig()
			err := ApplyEnvConfig(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := DefaultConfig()
			tt.expected(&want)
			assert.Equal(t, want, cfg)
		})
	}
}
