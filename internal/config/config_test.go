package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("SHOPIFY_API_KEY", "test-key")
	t.Setenv("SHOPIFY_API_SECRET", "test-secret")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "http://localhost:8080", cfg.AppURL)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "shopmetrics", cfg.MongoDatabase)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, []string{"read_orders", "read_products", "read_customers"}, cfg.ShopifyScopes)
	assert.Equal(t, "Asia/Dubai", cfg.BusinessTimezone)
	assert.Equal(t, 5*time.Minute, cfg.SummaryCacheTTL)
	assert.Equal(t, 10, cfg.RefundFanout)
	assert.Equal(t, 30*time.Second, cfg.OutboundTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestNewOverrides(t *testing.T) {
	t.Setenv("SHOPIFY_API_KEY", "test-key")
	t.Setenv("SHOPIFY_API_SECRET", "test-secret")
	t.Setenv("RUN_ADDRESS", ":9090")
	t.Setenv("SHOPIFY_SCOPES", "read_orders")
	t.Setenv("SUMMARY_CACHE_TTL", "90s")
	t.Setenv("REFUND_FANOUT", "3")
	t.Setenv("BUSINESS_TIMEZONE", "America/Toronto")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, []string{"read_orders"}, cfg.ShopifyScopes)
	assert.Equal(t, 90*time.Second, cfg.SummaryCacheTTL)
	assert.Equal(t, 3, cfg.RefundFanout)
	assert.Equal(t, "America/Toronto", cfg.BusinessTimezone)
}

func TestNewRequiresShopifyCredentials(t *testing.T) {
	t.Setenv("SHOPIFY_API_KEY", "")
	t.Setenv("SHOPIFY_API_SECRET", "")

	_, err := New()
	assert.Error(t, err)
}

func TestNewClampsFanout(t *testing.T) {
	t.Setenv("SHOPIFY_API_KEY", "test-key")
	t.Setenv("SHOPIFY_API_SECRET", "test-secret")
	t.Setenv("REFUND_FANOUT", "0")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.RefundFanout)
}

func TestRedirectURI(t *testing.T) {
	cfg := &Config{AppURL: "https://dashboard.example.com"}
	assert.Equal(t, "https://dashboard.example.com/auth/shopify/callback", cfg.RedirectURI())
}
