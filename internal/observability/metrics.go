package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	OAuthAttempts   *prometheus.CounterVec
	MetricsRequests *prometheus.CounterVec
	ShopifyRequests *prometheus.CounterVec
	ShopifyLatency  *prometheus.HistogramVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			OAuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "oauth_attempts_total",
				Help:      "Total OAuth callback completions by outcome.",
			}, []string{"status"}),
			MetricsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "metrics_requests_total",
				Help:      "Total metrics requests by result.",
			}, []string{"result"}),
			ShopifyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shopify_api_requests_total",
				Help:      "Total outbound Shopify API requests by endpoint and status.",
			}, []string{"endpoint", "status"}),
			ShopifyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "shopify_api_request_duration_seconds",
				Help:      "Latency distribution for outbound Shopify API calls.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"endpoint"}),
		}

		prometheus.MustRegister(
			metricsInstance.OAuthAttempts,
			metricsInstance.MetricsRequests,
			metricsInstance.ShopifyRequests,
			metricsInstance.ShopifyLatency,
		)
	})
	return metricsInstance
}
