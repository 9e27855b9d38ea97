package config

import (
	"os"
	"strings"
)

// ApplyEnvConfig applies configuration from environment variables (VOCE_*).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config) error {
	var s configSetter

	s.setString(os.Getenv("VOCE_LOG_LEVEL"), &cfg.LogLevel)
	s.setString(os.Getenv("VOCE_LOG_FILE"), &cfg.LogFile)
	s.setString(os.Getenv("VOCE_BYTE_ORDER"), &cfg.ByteOrder)
	if v := os.Getenv("VOCE_ALLOWED_CALLERS"); v != "" {
		cfg.AllowedCallers = splitList(v)
	}

	s.setString(os.Getenv("VOCE_DOMAINS_FILE"), &cfg.Classifier.DomainsFile)
	s.setString(os.Getenv("VOCE_DEFAULT_CATEGORY"), &cfg.Classifier.DefaultCategory)
	s.setBoolFromString(os.Getenv("VOCE_WATCH_DOMAINS"), &cfg.Classifier.WatchDomains)
	if v := os.Getenv("VOCE_PREDICT_COMMAND"); v != "" {
		cfg.Classifier.Command = strings.Fields(v)
	}
	if err := s.setDuration("VOCE_PREDICT_TIMEOUT", os.Getenv("VOCE_PREDICT_TIMEOUT"), &cfg.Classifier.CommandTimeout); err != nil {
		return err
	}
	if err := s.setIntFromString("VOCE_PREDICT_RETRIES", os.Getenv("VOCE_PREDICT_RETRIES"), &cfg.Classifier.CommandRetries); err != nil {
		return err
	}

	s.setString(os.Getenv("VOCE_CACHE_BACKEND"), &cfg.Cache.Backend)
	if err := s.setDuration("VOCE_CACHE_TTL", os.Getenv("VOCE_CACHE_TTL"), &cfg.Cache.TTL); err != nil {
		return err
	}
	s.setString(os.Getenv("VOCE_REDIS_ADDR"), &cfg.Cache.RedisAddr)
	s.setString(os.Getenv("VOCE_REDIS_PASSWORD"), &cfg.Cache.RedisPassword)
	return s.setIntFromString("VOCE_REDIS_DB", os.Getenv("VOCE_REDIS_DB"), &cfg.Cache.RedisDB)
}

// splitList splits a comma separated list, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
