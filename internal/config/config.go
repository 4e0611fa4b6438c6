// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Judge    JudgeConfig    `mapstructure:"judge"`
	DB       DBConfig       `mapstructure:"db"`
	Storage  StorageConfig  `mapstructure:"storage"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// FetchConfig governs the retrieval race and the document cache.
type FetchConfig struct {
	UserAgent           string `mapstructure:"user_agent"`
	QuickTimeoutSeconds int    `mapstructure:"quick_timeout_seconds"`
	FullTimeoutSeconds  int    `mapstructure:"full_timeout_seconds"`
	CacheTTLSeconds     int    `mapstructure:"cache_ttl_seconds"`
	// ReaderBaseURL enables the plain-text reader-proxy strategy; empty
	// disables it and the race runs on the remaining strategies.
	ReaderBaseURL  string `mapstructure:"reader_base_url"`
	QuickBodyLimit int    `mapstructure:"quick_body_limit"`
	FullBodyLimit  int    `mapstructure:"full_body_limit"`
}

// HeadlessConfig gates the optional browser-rendering strategy.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// JudgeConfig points at the external judgement service.
type JudgeConfig struct {
	Endpoint            string `mapstructure:"endpoint"`
	APIKey              string `mapstructure:"api_key"`
	QuickTimeoutSeconds int    `mapstructure:"quick_timeout_seconds"`
	FullTimeoutSeconds  int    `mapstructure:"full_timeout_seconds"`
}

// DBConfig controls access to the relational report store. An empty DSN
// selects the in-memory store.
type DBConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// StorageConfig selects the raw payload archive: "memory", "local", or "gcs".
type StorageConfig struct {
	Provider  string `mapstructure:"provider"`
	LocalDir  string `mapstructure:"local_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// PubSubConfig holds metadata for completion notifications. An empty project
// selects the in-memory publisher.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LEADLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.user_agent", "leadlens-bot/0.1")
	v.SetDefault("fetch.quick_timeout_seconds", 4)
	v.SetDefault("fetch.full_timeout_seconds", 30)
	v.SetDefault("fetch.cache_ttl_seconds", 300)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("judge.quick_timeout_seconds", 8)
	v.SetDefault("judge.full_timeout_seconds", 60)
	v.SetDefault("db.max_open_conns", 5)
	v.SetDefault("storage.provider", "memory")
	v.SetDefault("storage.prefix", "pages")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Fetch.QuickTimeoutSeconds <= 0 || c.Fetch.FullTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch timeouts must be > 0")
	}
	if c.Fetch.QuickTimeoutSeconds >= c.Fetch.FullTimeoutSeconds {
		return fmt.Errorf("fetch.quick_timeout_seconds must be < fetch.full_timeout_seconds")
	}
	if c.Judge.Endpoint == "" {
		return fmt.Errorf("judge.endpoint must be set")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	switch c.Storage.Provider {
	case "memory", "gcs", "local":
	default:
		return fmt.Errorf("storage.provider must be one of memory, local, gcs")
	}
	if c.Storage.Provider == "gcs" && c.Storage.GCSBucket == "" {
		return fmt.Errorf("storage.gcs_bucket must be set for the gcs provider")
	}
	if c.Storage.Provider == "local" && c.Storage.LocalDir == "" {
		return fmt.Errorf("storage.local_dir must be set for the local provider")
	}
	return nil
}

// QuickFetchTimeout returns the quick-phase fetch deadline.
func (c Config) QuickFetchTimeout() time.Duration {
	return time.Duration(c.Fetch.QuickTimeoutSeconds) * time.Second
}

// FullFetchTimeout returns the full-phase fetch deadline.
func (c Config) FullFetchTimeout() time.Duration {
	return time.Duration(c.Fetch.FullTimeoutSeconds) * time.Second
}

// CacheTTL returns the document cache window; zero disables caching.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Fetch.CacheTTLSeconds) * time.Second
}
