package config

import "time"

// AnalysisConfig represents the configuration for the analysis provider
type AnalysisConfig struct {
	Provider          string
	Timeout           time.Duration
	Retries           int
	Tier2Enabled      bool
	Tier2HourlyBudget int
}

// ProviderModelConfig represents the per-provider model configuration
type ProviderModelConfig struct {
	APIKey      string
	Region      string
	Tier1Model  string
	Tier2Model  string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// CacheConfig represents the decision cache configuration
type CacheConfig struct {
	Type        string
	Enabled     bool
	MaxSize     int
	TTLBuy      time.Duration
	TTLResearch time.Duration
	TTLPass     time.Duration
	CleanupFreq time.Duration
	SQLitePath  string
	MySQLDSN    string
}

// SpamConfig represents the spam/duplicate filter configuration
type SpamConfig struct {
	Window        time.Duration
	Threshold     int
	DedupWindow   time.Duration
	BlocklistPath string
}

// ValuationConfig represents the validation threshold configuration
type ValuationConfig struct {
	GoldMaxBuyRate           float64
	GoldSellRate             float64
	SilverMaxBuyRate         float64
	SilverSellRate           float64
	ReviewPriceThreshold     float64
	PriceSanityMultiple      float64
	MinProfitForBuy          float64
	EstimatedWeightProfitCap float64
}

// MediaConfig represents the media fetch configuration
type MediaConfig struct {
	MaxConcurrent   int
	PerFetchTimeout time.Duration
	MaxImages       int
}

// SpotConfig represents the spot price feed configuration
type SpotConfig struct {
	FeedURL            string
	RefreshInterval    time.Duration
	FallbackGoldGram   float64
	FallbackSilverGram float64
}

// GetAnalysis returns the analysis provider configuration
func (c *Config) GetAnalysis() AnalysisConfig {
	timeout, err := c.GetDuration("analysis.timeout")
	if err != nil {
		timeout = 20 * time.Second
	}
	return AnalysisConfig{
		Provider:          c.GetString("analysis.provider"),
		Timeout:           timeout,
		Retries:           c.GetInt("analysis.retries"),
		Tier2Enabled:      c.GetBool("analysis.tier2_enabled"),
		Tier2HourlyBudget: c.GetInt("analysis.tier2_hourly_budget"),
	}
}

// GetProvider returns the model configuration for the named provider section
func (c *Config) GetProvider(section string) ProviderModelConfig {
	return ProviderModelConfig{
		APIKey:      c.GetString(section + ".api_key"),
		Region:      c.GetString(section + ".region"),
		Tier1Model:  c.GetString(section + ".tier1_model"),
		Tier2Model:  c.GetString(section + ".tier2_model"),
		MaxTokens:   c.GetInt(section + ".max_tokens"),
		Temperature: float32(c.GetFloat64(section + ".temperature")),
		TopP:        float32(c.GetFloat64(section + ".top_p")),
	}
}

// GetCache returns the decision cache configuration
func (c *Config) GetCache() CacheConfig {
	ttlBuy, _ := c.GetDuration("cache.ttl_buy")
	ttlResearch, _ := c.GetDuration("cache.ttl_research")
	ttlPass, _ := c.GetDuration("cache.ttl_pass")
	cleanup, _ := c.GetDuration("cache.cleanup_frequency")
	return CacheConfig{
		Type:        c.GetString("cache.type"),
		Enabled:     c.GetBool("cache.enabled"),
		MaxSize:     c.GetInt("cache.max_size"),
		TTLBuy:      ttlBuy,
		TTLResearch: ttlResearch,
		TTLPass:     ttlPass,
		CleanupFreq: cleanup,
		SQLitePath:  c.GetString("cache.sqlite_path"),
		MySQLDSN:    c.GetString("cache.mysql_dsn"),
	}
}

// GetSpam returns the spam/duplicate filter configuration
func (c *Config) GetSpam() SpamConfig {
	window, _ := c.GetDuration("spam.window")
	dedup, _ := c.GetDuration("spam.dedup_window")
	return SpamConfig{
		Window:        window,
		Threshold:     c.GetInt("spam.threshold"),
		DedupWindow:   dedup,
		BlocklistPath: c.GetString("spam.blocklist_path"),
	}
}

// GetValuation returns the validation threshold configuration
func (c *Config) GetValuation() ValuationConfig {
	return ValuationConfig{
		GoldMaxBuyRate:           c.GetFloat64("valuation.gold_max_buy_rate"),
		GoldSellRate:             c.GetFloat64("valuation.gold_sell_rate"),
		SilverMaxBuyRate:         c.GetFloat64("valuation.silver_max_buy_rate"),
		SilverSellRate:           c.GetFloat64("valuation.silver_sell_rate"),
		ReviewPriceThreshold:     c.GetFloat64("valuation.review_price_threshold"),
		PriceSanityMultiple:      c.GetFloat64("valuation.price_sanity_multiple"),
		MinProfitForBuy:          c.GetFloat64("valuation.min_profit_for_buy"),
		EstimatedWeightProfitCap: c.GetFloat64("valuation.estimated_weight_profit_cap"),
	}
}

// GetMedia returns the media fetch configuration
func (c *Config) GetMedia() MediaConfig {
	timeout, _ := c.GetDuration("media.per_fetch_timeout")
	return MediaConfig{
		MaxConcurrent:   c.GetInt("media.max_concurrent"),
		PerFetchTimeout: timeout,
		MaxImages:       c.GetInt("media.max_images"),
	}
}

// GetSpot returns the spot price feed configuration
func (c *Config) GetSpot() SpotConfig {
	refresh, _ := c.GetDuration("spot.refresh_interval")
	return SpotConfig{
		FeedURL:            c.GetString("spot.feed_url"),
		RefreshInterval:    refresh,
		FallbackGoldGram:   c.GetFloat64("spot.fallback_gold_gram"),
		FallbackSilverGram: c.GetFloat64("spot.fallback_silver_gram"),
	}
}
