package ports

import (
	"context"
	"time"

	"shopify-metrics-dashboard/internal/domain"
)

// ShopRepository defines the interface for store record persistence.
// UpsertByDomain keys on the unique shop domain: reconnecting the same
// store refreshes token and scope in place without creating a duplicate.
type ShopRepository interface {
	UpsertByDomain(ctx context.Context, shop *domain.Shop) (*domain.Shop, error)
	GetByID(ctx context.Context, id string) (*domain.Shop, error)
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error)
}

// AuditRepository appends immutable event records. There is no update
// or delete: each event is written once.
type AuditRepository interface {
	Append(ctx context.Context, event *domain.AuditEvent) error
}

// SessionRepository persists in-flight OAuth sessions keyed by state.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, state string) (*domain.Session, error)
	Delete(ctx context.Context, state string) error
}

// SummaryCache holds computed metrics summaries for a short TTL so
// repeated dashboard loads don't re-walk the upstream API.
type SummaryCache interface {
	Get(ctx context.Context, shopID string) (*domain.MetricsSummary, bool, error)
	Set(ctx context.Context, shopID string, summary *domain.MetricsSummary, ttl time.Duration) error
}
