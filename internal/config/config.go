package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config carries everything the service reads from the process
// environment. Shopify application credentials are secrets and must
// only ever be logged through the redactor.
type Config struct {
	Address       string `env:"RUN_ADDRESS" envDefault:":8080"`
	AppURL        string `env:"APP_URL" envDefault:"http://localhost:8080"`
	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"shopmetrics"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	ShopifyAPIKey    string   `env:"SHOPIFY_API_KEY"`
	ShopifyAPISecret string   `env:"SHOPIFY_API_SECRET"`
	ShopifyScopes    []string `env:"SHOPIFY_SCOPES" envSeparator:"," envDefault:"read_orders,read_products,read_customers"`

	BusinessTimezone string        `env:"BUSINESS_TIMEZONE" envDefault:"Asia/Dubai"`
	SummaryCacheTTL  time.Duration `env:"SUMMARY_CACHE_TTL" envDefault:"5m"`
	RefundFanout     int           `env:"REFUND_FANOUT" envDefault:"10"`
	OutboundTimeout  time.Duration `env:"OUTBOUND_TIMEOUT" envDefault:"30s"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
}

// New parses configuration from the environment.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.ShopifyAPIKey == "" || cfg.ShopifyAPISecret == "" {
		return nil, fmt.Errorf("SHOPIFY_API_KEY and SHOPIFY_API_SECRET are required")
	}
	if cfg.RefundFanout < 1 {
		cfg.RefundFanout = 1
	}
	return cfg, nil
}

// RedirectURI is the callback Shopify redirects to after authorization.
func (c *Config) RedirectURI() string {
	return c.AppURL + "/auth/shopify/callback"
}
