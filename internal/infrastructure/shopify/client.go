package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shopify-metrics-dashboard/internal/domain"
	"shopify-metrics-dashboard/internal/observability"
	"shopify-metrics-dashboard/internal/ports"
	"shopify-metrics-dashboard/internal/security"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const apiVersion = "2023-10"

type client struct {
	app         goshopify.App
	httpClient  *http.Client
	fanoutLimit int
	metrics     *observability.Metrics
	logger      zerolog.Logger

	// baseURL overrides the per-shop https base; set only by tests.
	baseURL string
}

// NewClient creates a Shopify API adapter. The app credentials are held
// in a goshopify.App so callback signatures can be verified with the
// library; the REST calls themselves are issued directly because the
// aggregation depends on Shopify's decimal-string wire format and the
// per-order refunds sub-resource.
func NewClient(apiKey, apiSecret, redirectURI string, fanoutLimit int, timeout time.Duration, metrics *observability.Metrics, logger zerolog.Logger) ports.ShopifyClient {
	return &client{
		app: goshopify.App{
			ApiKey:      apiKey,
			ApiSecret:   apiSecret,
			RedirectUrl: redirectURI,
		},
		httpClient:  &http.Client{Timeout: timeout},
		fanoutLimit: fanoutLimit,
		metrics:     metrics,
		logger:      logger,
	}
}

func (c *client) shopBase(shop string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return "https://" + shop
}

func (c *client) restURL(shop, endpoint string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.shopBase(shop), apiVersion, endpoint)
}

// AuthorizeURL builds the OAuth authorize redirect. Scopes are joined
// comma-separated, the form Shopify expects.
func (c *client) AuthorizeURL(shop string, scopes []string, state string) string {
	return fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		c.app.ApiKey,
		url.QueryEscape(strings.Join(scopes, ",")),
		url.QueryEscape(c.app.RedirectUrl),
		url.QueryEscape(state),
	)
}

// VerifyCallback checks the hmac parameter Shopify signs into the
// callback query. The result is advisory: the callback handler logs a
// mismatch and continues, since state verification already gates the flow.
func (c *client) VerifyCallback(callbackURL string) bool {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return false
	}
	ok, err := c.app.VerifyAuthorizationURL(u)
	return err == nil && ok
}

// ExchangeToken issues the single POST to the token endpoint. No retry.
// Every failure collapses to domain.ErrTokenExchangeFailed; the cause
// is logged with secrets redacted and goes no further.
func (c *client) ExchangeToken(ctx context.Context, shop, code string) (*ports.TokenGrant, error) {
	payload, err := json.Marshal(map[string]string{
		"client_id":     c.app.ApiKey,
		"client_secret": c.app.ApiSecret,
		"code":          code,
	})
	if err != nil {
		return nil, domain.ErrTokenExchangeFailed
	}

	tokenURL := c.shopBase(shop) + "/admin/oauth/access_token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.ErrTokenExchangeFailed
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("token", 0, start)
		c.logger.Error().Err(err).Str("shop", shop).Msg("Failed to exchange code for token")
		return nil, domain.ErrTokenExchangeFailed
	}
	defer resp.Body.Close()
	c.observe("token", resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("shop", shop).
			Interface("body", security.Redact(string(body))).
			Msg("Token endpoint returned non-2xx status")
		return nil, domain.ErrTokenExchangeFailed
	}

	var grant ports.TokenGrant
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		c.logger.Error().Err(err).Str("shop", shop).Msg("Failed to decode token response")
		return nil, domain.ErrTokenExchangeFailed
	}

	return &grant, nil
}

// FetchOrders lists the window's orders (a single page of up to 250)
// and enriches each with its refunds. Refund fetches run concurrently under a bounded group; a
// failed refund fetch leaves that order with an empty refund list and
// never fails the batch.
func (c *client) FetchOrders(ctx context.Context, shop, accessToken string, window domain.ReportingWindow) ([]domain.Order, error) {
	listURL := c.restURL(shop, "orders.json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, &domain.OrderFetchError{Err: err}
	}
	q := req.URL.Query()
	q.Set("created_at_min", window.FromDate())
	q.Set("created_at_max", window.ToDate())
	q.Set("status", "any")
	q.Set("limit", "250")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info().
		Str("shop", shop).
		Str("from", window.FromDate()).
		Str("to", window.ToDate()).
		Msg("Fetching orders from Shopify")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("orders", 0, start)
		return nil, &domain.OrderFetchError{Err: err}
	}
	defer resp.Body.Close()
	c.observe("orders", resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.OrderFetchError{Status: resp.StatusCode, Body: string(body)}
	}

	var listing struct {
		Orders []domain.Order `json:"orders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, &domain.OrderFetchError{Err: fmt.Errorf("failed to decode orders response: %w", err)}
	}

	orders := listing.Orders
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fanoutLimit)
	for i := range orders {
		i := i
		g.Go(func() error {
			orders[i].Refunds = c.fetchRefunds(gctx, shop, accessToken, orders[i].ID)
			return nil
		})
	}
	// Tasks never return errors; Wait only joins the fan-out.
	_ = g.Wait()

	return orders, nil
}

// fetchRefunds pulls one order's refund list. Failures degrade to an
// empty list: the order still contributes its price to gross revenue
// with zero contribution to refunds.
func (c *client) fetchRefunds(ctx context.Context, shop, accessToken string, orderID int64) []domain.Refund {
	refundsURL := c.restURL(shop, "orders/"+strconv.FormatInt(orderID, 10)+"/refunds.json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, refundsURL, nil)
	if err != nil {
		c.logger.Error().Err(err).Int64("orderId", orderID).Msg("Failed to build refunds request")
		return []domain.Refund{}
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("refunds", 0, start)
		c.logger.Error().Err(err).Str("shop", shop).Int64("orderId", orderID).Msg("Failed to fetch refunds for order")
		return []domain.Refund{}
	}
	defer resp.Body.Close()
	c.observe("refunds", resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("shop", shop).
			Int64("orderId", orderID).
			Msg("Refunds endpoint returned non-2xx status")
		return []domain.Refund{}
	}

	var listing struct {
		Refunds []domain.Refund `json:"refunds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		c.logger.Error().Err(err).Int64("orderId", orderID).Msg("Failed to decode refunds response")
		return []domain.Refund{}
	}
	if listing.Refunds == nil {
		return []domain.Refund{}
	}
	return listing.Refunds
}

func (c *client) observe(endpoint string, status int, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ShopifyRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	c.metrics.ShopifyLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
