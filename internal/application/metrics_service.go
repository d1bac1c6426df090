package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopify-metrics-dashboard/internal/domain"
	"shopify-metrics-dashboard/internal/observability"
	"shopify-metrics-dashboard/internal/ports"

	"github.com/rs/zerolog"
)

// MetricsService orchestrates one metrics request: resolve the store
// record, compute the 30-day window, fetch and reduce the order list,
// and fall back to a zero-valued summary when the upstream listing
// fails. The fallback is returned as a success, marked degraded.
type MetricsService struct {
	shopRepo  ports.ShopRepository
	auditRepo ports.AuditRepository
	cache     ports.SummaryCache
	shopify   ports.ShopifyClient
	metrics   *observability.Metrics
	logger    zerolog.Logger
	location  *time.Location
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewMetricsService creates a new metrics application service. The
// location is the merchant's business timezone used to anchor the
// rolling 30-day window.
func NewMetricsService(
	shopRepo ports.ShopRepository,
	auditRepo ports.AuditRepository,
	cache ports.SummaryCache,
	shopify ports.ShopifyClient,
	metrics *observability.Metrics,
	logger zerolog.Logger,
	location *time.Location,
	cacheTTL time.Duration,
) *MetricsService {
	return &MetricsService{
		shopRepo:  shopRepo,
		auditRepo: auditRepo,
		cache:     cache,
		shopify:   shopify,
		metrics:   metrics,
		logger:    logger,
		location:  location,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// FetchMetrics computes the rolling 30-day summary for a connected
// shop. domain.ErrShopNotFound is the only error a healthy deployment
// returns; upstream failures degrade to the zero summary instead.
func (s *MetricsService) FetchMetrics(ctx context.Context, shopID string) (*domain.MetricsSummary, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	if shop == nil {
		return nil, domain.ErrShopNotFound
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, shopID)
		if err != nil {
			s.logger.Warn().Err(err).Str("shopId", shopID).Msg("Summary cache read failed")
		}
		if ok {
			s.count("cache_hit")
			return cached, nil
		}
	}

	window := domain.Last30Days(s.now(), s.location)
	fromDate, toDate := window.FromDate(), window.ToDate()

	s.logger.Info().
		Str("shopId", shopID).
		Str("from", fromDate).
		Str("to", toDate).
		Msg("Fetching metrics for shop")

	orders, err := s.shopify.FetchOrders(ctx, shop.Domain, shop.AccessToken, window)
	if err != nil {
		var fetchErr *domain.OrderFetchError
		if errors.As(err, &fetchErr) {
			s.logger.Error().
				Int("status", fetchErr.Status).
				Str("shopId", shopID).
				Msg("Order listing failed, returning zero summary")
		} else {
			s.logger.Error().Err(err).Str("shopId", shopID).Msg("Order fetch failed, returning zero summary")
		}

		zero := domain.ZeroSummary(shopID, fromDate, toDate)
		s.auditFetch(ctx, shopID, fromDate, toDate, 0)
		s.count("fallback")
		return &zero, nil
	}

	summary := domain.Reduce(orders)
	summary.ShopID = shopID
	summary.FromDate = fromDate
	summary.ToDate = toDate

	s.auditFetch(ctx, shopID, fromDate, toDate, summary.OrdersCount)

	if s.cache != nil {
		if err := s.cache.Set(ctx, shopID, &summary, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("shopId", shopID).Msg("Summary cache write failed")
		}
	}

	s.count("ok")
	s.logger.Info().
		Str("shopId", shopID).
		Int("ordersCount", summary.OrdersCount).
		Float64("grossRevenue", summary.GrossRevenue).
		Msg("Successfully fetched metrics")

	return &summary, nil
}

func (s *MetricsService) auditFetch(ctx context.Context, shopID, fromDate, toDate string, ordersCount int) {
	event := &domain.AuditEvent{
		Actor:  auditActor,
		Action: domain.AuditMetricsFetch,
		ShopID: shopID,
		Meta: map[string]any{
			"fromDate":    fromDate,
			"toDate":      toDate,
			"ordersCount": ordersCount,
		},
	}
	if err := s.auditRepo.Append(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("shopId", shopID).Msg("Failed to append audit event")
	}
}

func (s *MetricsService) count(result string) {
	if s.metrics != nil {
		s.metrics.MetricsRequests.WithLabelValues(result).Inc()
	}
}
