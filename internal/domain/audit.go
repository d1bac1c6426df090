package domain

import "time"

// Audit actions recorded by the service. The log is append-only: events
// are written once and never updated or deleted.
const (
	AuditOAuthSuccess   = "oauth_success"
	AuditOAuthFailure   = "oauth_failure"
	AuditMetricsFetch   = "metrics_fetch"
	AuditShopDisconnect = "shop_disconnect"
)

// AuditEvent is one immutable trace record. ShopID is empty for events
// that fire before a store record exists (e.g. a failed OAuth exchange).
type AuditEvent struct {
	ID        string         `json:"id"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	ShopID    string         `json:"shop_id,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
