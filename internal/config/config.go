// Package config provides configuration loading for the sentinel:
// defaults, environment overrides, and an optional YAML file whose
// category source allow-lists can be hot-reloaded while running.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/veridano/threat-sentinel/internal/types"
)

// GetEnv returns the value of key from the environment, or defaultValue if unset or empty.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return defaultValue
}

// GetEnvDuration returns the duration for key, or defaultValue if unset/invalid.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

// GetEnvFloat returns the float for key, or defaultValue if unset/invalid.
func GetEnvFloat(key string, defaultValue float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// GetEnvInt returns the integer for key, or defaultValue if unset/invalid.
func GetEnvInt(key string, defaultValue int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}
	return n
}

// VeridanoConfig holds the upstream intelligence platform settings.
type VeridanoConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// WebhookConfig holds the optional webhook sink settings.
type WebhookConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// Config is the full sentinel configuration.
type Config struct {
	Interval        time.Duration `yaml:"interval"`
	ErrorBackoff    time.Duration `yaml:"error_backoff"`
	Retention       time.Duration `yaml:"retention"`
	CriticalScore   float64       `yaml:"critical_score"`
	HighScore       float64       `yaml:"high_score"`
	TopK            int           `yaml:"top_k"`
	MinScore        float64       `yaml:"min_score"`
	HTTPAddr        string        `yaml:"http_addr"`
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`

	Veridano VeridanoConfig `yaml:"veridano"`
	Webhook  WebhookConfig  `yaml:"webhook"`

	// Sources overrides the built-in per-category source allow-lists.
	Sources map[types.Category][]string `yaml:"sources"`

	// ConfigFile is the YAML file the values above were merged from,
	// if any; it is also the file the watcher observes.
	ConfigFile string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Interval:        15 * time.Minute,
		ErrorBackoff:    60 * time.Second,
		Retention:       7 * 24 * time.Hour,
		CriticalScore:   9.0,
		HighScore:       7.0,
		TopK:            5,
		MinScore:        0.6,
		HTTPAddr:        ":8080",
		DispatchTimeout: 30 * time.Second,
		Veridano: VeridanoConfig{
			Endpoint: "https://api.veridano.example.com",
			Timeout:  30 * time.Second,
		},
	}
}

// Load builds the configuration: defaults, then environment, then the
// optional YAML file named by SENTINEL_CONFIG (file values win).
func Load() (Config, error) {
	cfg := Default()

	cfg.Interval = GetEnvDuration("MONITOR_INTERVAL", cfg.Interval)
	cfg.ErrorBackoff = GetEnvDuration("MONITOR_ERROR_BACKOFF", cfg.ErrorBackoff)
	cfg.Retention = GetEnvDuration("HISTORY_RETENTION", cfg.Retention)
	cfg.CriticalScore = GetEnvFloat("CRITICAL_SCORE_THRESHOLD", cfg.CriticalScore)
	cfg.HighScore = GetEnvFloat("HIGH_SCORE_THRESHOLD", cfg.HighScore)
	cfg.TopK = GetEnvInt("SEARCH_TOP_K", cfg.TopK)
	cfg.MinScore = GetEnvFloat("SEARCH_MIN_SCORE", cfg.MinScore)
	cfg.HTTPAddr = GetEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DispatchTimeout = GetEnvDuration("DISPATCH_TIMEOUT", cfg.DispatchTimeout)
	cfg.Veridano.Endpoint = GetEnv("VERIDANO_ENDPOINT", cfg.Veridano.Endpoint)
	cfg.Veridano.APIKey = GetEnv("VERIDANO_API_KEY", cfg.Veridano.APIKey)
	cfg.Veridano.Timeout = GetEnvDuration("VERIDANO_TIMEOUT", cfg.Veridano.Timeout)
	cfg.Webhook.URL = GetEnv("WEBHOOK_URL", cfg.Webhook.URL)
	cfg.Webhook.Token = GetEnv("WEBHOOK_TOKEN", cfg.Webhook.Token)
	cfg.ConfigFile = GetEnv("SENTINEL_CONFIG", "")

	if cfg.ConfigFile != "" {
		if err := cfg.mergeFile(cfg.ConfigFile); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the values that must fail fast before monitoring
// starts.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("monitoring interval must be positive, got %s", c.Interval)
	}
	if c.Retention <= 0 {
		return fmt.Errorf("history retention must be positive, got %s", c.Retention)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("search top_k must be positive, got %d", c.TopK)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("search min_score must be in [0,1], got %g", c.MinScore)
	}
	if c.Veridano.Endpoint == "" {
		return fmt.Errorf("veridano endpoint must be set")
	}
	for category := range c.Sources {
		if !knownCategory(category) {
			return fmt.Errorf("unknown category %q in sources", category)
		}
	}
	return nil
}

func knownCategory(c types.Category) bool {
	for _, known := range types.Categories() {
		if c == known {
			return true
		}
	}
	return false
}
