package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shopify-metrics-dashboard/internal/domain"
	"shopify-metrics-dashboard/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SummaryCache keeps computed metrics summaries in Redis for a short
// TTL so repeated dashboard loads don't re-walk the Shopify API.
type SummaryCache struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewSummaryCache creates a Redis-backed summary cache.
func NewSummaryCache(client *redis.Client, logger zerolog.Logger) ports.SummaryCache {
	return &SummaryCache{
		client: client,
		logger: logger,
	}
}

func summaryKey(shopID string) string {
	return "metrics:summary:" + shopID
}

// Get retrieves a cached summary. A miss or any Redis failure reports
// absent; the caller falls through to the fetch path.
func (c *SummaryCache) Get(ctx context.Context, shopID string) (*domain.MetricsSummary, bool, error) {
	data, err := c.client.Get(ctx, summaryKey(shopID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached summary: %w", err)
	}

	var summary domain.MetricsSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		c.logger.Warn().Err(err).Str("shopId", shopID).Msg("Dropping undecodable cached summary")
		return nil, false, nil
	}
	return &summary, true, nil
}

// Set stores a summary under the shop's key with the given TTL.
func (c *SummaryCache) Set(ctx context.Context, shopID string, summary *domain.MetricsSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKey(shopID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}
