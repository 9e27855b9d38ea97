package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
log_level = "debug"
byte_order = "native"
max_outbound_bytes = 2048
allowed_callers = ["chrome-extension://knldjmfmopnpolahpmmgbagdohdnhkik/"]

[classifier]
domains_file = "/etc/voce/domains.toml"
default_category = "Outros"
watch_domains = false
command = ["python3", "classifier-tf/predict.py"]
command_dir = "/opt/voce"
command_timeout = "5s"
command_retries = 1

[[classifier.rules]]
category = "Educacional"
expr = 'host.endsWith(".edu.br")'

[cache]
backend = "redis"
ttl = "12h"
redis_addr = "10.0.0.5:6379"
redis_db = 1
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFileConfig(t *testing.T) {
	fc, err := LoadFileConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", fc.LogLevel)
	assert.Equal(t, 2048, fc.MaxOutboundBytes)
	require.NotNil(t, fc.Classifier.WatchDomains)
	assert.False(t, *fc.Classifier.WatchDomains)
	assert.Equal(t, []RuleConfig{{Category: "Educacional", Expr: `host.endsWith(".edu.br")`}}, fc.Classifier.Rules)
	assert.Equal(t, "12h", fc.Cache.TTL)
}

func TestApplyFileConfig(t *testing.T) {
	fc, err := LoadFileConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	cfg := DefaultConfig()
	require.NoError(t, ApplyFileConfig(&cfg, fc))

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2048, cfg.MaxOutboundBytes)
	assert.Equal(t, DefaultConfig().MaxInboundBytes, cfg.MaxInboundBytes)
	assert.Equal(t, []string{"chrome-extension://knldjmfmopnpolahpmmgbagdohdnhkik/"}, cfg.AllowedCallers)
	assert.Equal(t, []string{"python3", "classifier-tf/predict.py"}, cfg.Classifier.Command)
	assert.Equal(t, "/opt/voce", cfg.Classifier.CommandDir)
	assert.Equal(t, 5*time.Second, cfg.Classifier.CommandTimeout)
	assert.Equal(t, 1, cfg.Classifier.CommandRetries)
	assert.False(t, cfg.Classifier.WatchDomains)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, 12*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "10.0.0.5:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 1, cfg.Cache.RedisDB)
}

func TestApplyFileConfigBadDuration(t *testing.T) {
	fc, err := LoadFileConfig(writeConfig(t, "[cache]\nttl = \"forever\"\n"))
	require.NoError(t, err)

	cfg := DefaultConfig()
	assert.Error(t, ApplyFileConfig(&cfg, fc))
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("VOCE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel, "environment overrides file")
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "log_level = "))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "byte_order = \"middle\"\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/voce/host.toml")
	assert.Equal(t, "/etc/voce/host.toml", DefaultConfigPath())

	t.Setenv(EnvConfigPath, "")
	if d, err := os.UserConfigDir(); err == nil {
		assert.Equal(t, filepath.Join(d, "voce-host", "config.toml"), DefaultConfigPath())
	}
}
