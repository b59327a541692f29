// Package config handles configuration loading and validation for the
// VerusHash service.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the VerusHash service.
type Config struct {
	Node       NodeConfig       `mapstructure:"node"`
	Activation ActivationConfig `mapstructure:"activation"`
	Cache      CacheConfig      `mapstructure:"cache"`
	API        APIConfig        `mapstructure:"api"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Profiling  ProfilingConfig  `mapstructure:"profiling"`
	APM        APMConfig        `mapstructure:"apm"`
	Log        LogConfig        `mapstructure:"log"`
}

// NodeConfig defines the upstream full node's JSON-RPC connection settings
// used to retrieve block headers for hashing (internal/rpc).
type NodeConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ActivationConfig carries the configured heights at which each VerusHash
// solution version becomes active (spec.md §3); it is ordinary
// configuration, not a re-specification of consensus rules.
type ActivationConfig struct {
	ChainID           string `mapstructure:"chain_id"`
	V2Height          int64  `mapstructure:"v2_height"`
	V21Height         int64  `mapstructure:"v21_height"`
	V22Height         int64  `mapstructure:"v22_height"`
	KeySizeBytes      int    `mapstructure:"key_size_bytes"`
}

// CacheConfig defines Redis connection settings for the hash/canonical
// result cache (internal/storage).
type CacheConfig struct {
	URL      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// APIConfig defines HTTP API server settings (internal/api).
type APIConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Bind        string        `mapstructure:"bind"`
	StatsCache  time.Duration `mapstructure:"stats_cache"`
	CORSOrigins []string      `mapstructure:"cors_origins"`
}

// NotifyConfig defines outbound webhook notification settings
// (internal/notify).
type NotifyConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	DiscordWebhook string `mapstructure:"discord_webhook"`
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID string `mapstructure:"telegram_chat_id"`
}

// ProfilingConfig defines the pprof debug server's settings
// (internal/profiling).
type ProfilingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Bind    string `mapstructure:"bind"`
}

// APMConfig defines New Relic application performance monitoring settings
// (internal/apm).
type APMConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	AppName    string `mapstructure:"app_name"`
	LicenseKey string `mapstructure:"license_key"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration from file and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/verushash-service")
	}

	v.SetEnvPrefix("VERUSHASH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("node.url", "http://127.0.0.1:27486")
	v.SetDefault("node.timeout", "10s")

	v.SetDefault("activation.chain_id", "")
	v.SetDefault("activation.v2_height", 0)
	v.SetDefault("activation.v21_height", 0)
	v.SetDefault("activation.v22_height", 0)
	v.SetDefault("activation.key_size_bytes", 1<<17)

	v.SetDefault("cache.url", "127.0.0.1:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("api.enabled", true)
	v.SetDefault("api.bind", "0.0.0.0:8080")
	v.SetDefault("api.stats_cache", "10s")
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("notify.enabled", false)

	v.SetDefault("profiling.enabled", false)
	v.SetDefault("profiling.bind", "127.0.0.1:6060")

	v.SetDefault("apm.enabled", false)
	v.SetDefault("apm.app_name", "verushash-service")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Validate checks configuration for errors.
func (c *Config) Validate() error {
	if c.Node.URL == "" {
		return fmt.Errorf("node.url is required")
	}

	if lanes := c.Activation.KeySizeBytes / 16; c.Activation.KeySizeBytes <= 0 || c.Activation.KeySizeBytes%16 != 0 || lanes&(lanes-1) != 0 {
		return fmt.Errorf("activation.key_size_bytes must be 16*2^n")
	}

	if c.Activation.ChainID == "" {
		return fmt.Errorf("activation.chain_id is required")
	}

	if c.Notify.Enabled && c.Notify.DiscordWebhook == "" && c.Notify.TelegramToken == "" {
		return fmt.Errorf("notify.enabled requires discord_webhook or telegram_token")
	}

	if c.APM.Enabled && c.APM.LicenseKey == "" {
		return fmt.Errorf("apm.license_key is required when apm is enabled")
	}

	return nil
}
