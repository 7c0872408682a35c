package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/ubuyfirst-proxy/")
	v.AddConfigPath("$HOME/.ubuyfirst-proxy")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("UBUYFIRST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Analysis provider defaults
	v.SetDefault("analysis.provider", "openai")
	v.SetDefault("analysis.timeout", "20s")
	v.SetDefault("analysis.retries", 1)
	v.SetDefault("analysis.tier2_enabled", true)
	v.SetDefault("analysis.tier2_hourly_budget", 60)

	// Server defaults
	v.SetDefault("server.listen_address", "127.0.0.1:8000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.tier1_model", "gpt-4o-mini")
	v.SetDefault("openai.tier2_model", "gpt-4o")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.tier1_model", "gemini-1.5-flash")
	v.SetDefault("gemini.tier2_model", "gemini-1.5-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.tier1_model", "anthropic.claude-3-5-haiku-20241022-v1:0")
	v.SetDefault("bedrock.tier2_model", "anthropic.claude-3-5-sonnet-20241022-v2:0")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 500)
	v.SetDefault("cache.ttl_buy", "60s")
	v.SetDefault("cache.ttl_research", "120s")
	v.SetDefault("cache.ttl_pass", "300s")
	v.SetDefault("cache.cleanup_frequency", "60s")
	v.SetDefault("cache.sqlite_path", "/data/decision_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/ubuyfirst")

	// Spam/duplicate filter defaults
	v.SetDefault("spam.window", "30s")
	v.SetDefault("spam.threshold", 2)
	v.SetDefault("spam.dedup_window", "10m")
	v.SetDefault("spam.blocklist_path", "/data/blocked_sellers.db")

	// Valuation defaults
	v.SetDefault("valuation.gold_max_buy_rate", 0.90)
	v.SetDefault("valuation.gold_sell_rate", 0.96)
	v.SetDefault("valuation.silver_max_buy_rate", 0.70)
	v.SetDefault("valuation.silver_sell_rate", 0.82)
	v.SetDefault("valuation.review_price_threshold", 1000)
	v.SetDefault("valuation.price_sanity_multiple", 3.0)
	v.SetDefault("valuation.min_profit_for_buy", 10)
	v.SetDefault("valuation.estimated_weight_profit_cap", 100)

	// Spot price feed defaults
	v.SetDefault("spot.feed_url", "")
	v.SetDefault("spot.refresh_interval", "15m")
	v.SetDefault("spot.fallback_gold_gram", 160.34)
	v.SetDefault("spot.fallback_silver_gram", 2.637)

	// Media fetch defaults
	v.SetDefault("media.max_concurrent", 5)
	v.SetDefault("media.per_fetch_timeout", "5s")
	v.SetDefault("media.max_images", 6)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
