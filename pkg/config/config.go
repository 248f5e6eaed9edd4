package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App         AppConfig
	Marketplace MarketplaceConfig
	Ads         AdsConfig
	Enrichment  EnrichmentConfig
	Redis       RedisConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Marketplace.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SELLERPULSE_APP_ENV" required:"true"`
	Port         string `envconfig:"SELLERPULSE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SELLERPULSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SELLERPULSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// MarketplaceConfig tunes the upstream API client, including its retry policy.
type MarketplaceConfig struct {
	BaseURL        string        `envconfig:"SELLERPULSE_MARKETPLACE_BASE_URL" default:"https://api.mercadolibre.com"`
	Timeout        time.Duration `envconfig:"SELLERPULSE_MARKETPLACE_TIMEOUT" default:"15s"`
	OrderPageSize  int           `envconfig:"SELLERPULSE_MARKETPLACE_ORDER_PAGE_SIZE" default:"50"`
	RetryAttempts  int           `envconfig:"SELLERPULSE_MARKETPLACE_RETRY_ATTEMPTS" default:"4"`
	RetryBaseDelay time.Duration `envconfig:"SELLERPULSE_MARKETPLACE_RETRY_BASE_DELAY" default:"500ms"`
}

func (m MarketplaceConfig) validate() error {
	if strings.TrimSpace(m.BaseURL) == "" {
		return fmt.Errorf("SELLERPULSE_MARKETPLACE_BASE_URL is required")
	}
	if m.OrderPageSize <= 0 {
		return fmt.Errorf("SELLERPULSE_MARKETPLACE_ORDER_PAGE_SIZE must be positive")
	}
	if m.RetryAttempts < 0 {
		return fmt.Errorf("SELLERPULSE_MARKETPLACE_RETRY_ATTEMPTS must not be negative")
	}
	return nil
}

// AdsConfig resolves which advertiser the product-ads lookups run against.
// AdvertiserID wins when set; SiteAdvertisers maps a seller's site prefix to
// an advertiser; otherwise the discovery endpoint is called.
type AdsConfig struct {
	AdvertiserID    string            `envconfig:"SELLERPULSE_ADS_ADVERTISER_ID"`
	SiteAdvertisers map[string]string `envconfig:"SELLERPULSE_ADS_SITE_ADVERTISERS"`
	Channels        []string          `envconfig:"SELLERPULSE_ADS_CHANNELS" default:"marketplace"`
	CacheTTL        time.Duration     `envconfig:"SELLERPULSE_ADS_CACHE_TTL" default:"12h"`
}

type EnrichmentConfig struct {
	Workers     int `envconfig:"SELLERPULSE_ENRICH_WORKERS" default:"6"`
	AdsBatchMax int `envconfig:"SELLERPULSE_ENRICH_ADS_BATCH_MAX" default:"100"`
	MaxPageSize int `envconfig:"SELLERPULSE_ENRICH_MAX_PAGE_SIZE" default:"50"`
}

// RedisConfig is optional; when URL is empty the advertiser cache stays
// in-process.
type RedisConfig struct {
	URL          string        `envconfig:"SELLERPULSE_REDIS_URL"`
	DialTimeout  time.Duration `envconfig:"SELLERPULSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SELLERPULSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SELLERPULSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}
