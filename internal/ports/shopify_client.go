package ports

import (
	"context"

	"shopify-metrics-dashboard/internal/domain"
)

// TokenGrant is the result of a successful code-for-token exchange,
// returned verbatim from the provider.
type TokenGrant struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// ShopifyClient defines the outbound Shopify API operations.
type ShopifyClient interface {
	// AuthorizeURL builds the OAuth authorize redirect for a shop.
	AuthorizeURL(shop string, scopes []string, state string) string

	// VerifyCallback checks the hmac signature on the OAuth callback
	// query. A false result is advisory; the callback flow logs it but
	// does not abort.
	VerifyCallback(callbackURL string) bool

	// ExchangeToken converts a one-time authorization code into an
	// access token with a single POST to the token endpoint. Any
	// failure surfaces as domain.ErrTokenExchangeFailed.
	ExchangeToken(ctx context.Context, shop, code string) (*TokenGrant, error)

	// FetchOrders lists all orders created inside the window (one page,
	// up to 250) and enriches each with its refunds, fetched
	// concurrently. A refund fetch failure degrades that order to an
	// empty refund list; a listing failure aborts with
	// *domain.OrderFetchError.
	FetchOrders(ctx context.Context, shop, accessToken string, window domain.ReportingWindow) ([]domain.Order, error)
}
