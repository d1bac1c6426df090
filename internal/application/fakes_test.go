package application

import (
	"context"
	"fmt"
	"time"

	"shopify-metrics-dashboard/internal/domain"
	"shopify-metrics-dashboard/internal/ports"
)

type fakeShopRepo struct {
	byID      map[string]*domain.Shop
	byDomain  map[string]*domain.Shop
	nextID    int
	upsertErr error
}

func newFakeShopRepo() *fakeShopRepo {
	return &fakeShopRepo{
		byID:     map[string]*domain.Shop{},
		byDomain: map[string]*domain.Shop{},
	}
}

func (f *fakeShopRepo) UpsertByDomain(_ context.Context, shop *domain.Shop) (*domain.Shop, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	now := time.Now().UTC()
	if existing, ok := f.byDomain[shop.Domain]; ok {
		existing.AccessToken = shop.AccessToken
		existing.Scope = shop.Scope
		existing.UpdatedAt = now
		copied := *existing
		return &copied, nil
	}
	f.nextID++
	record := &domain.Shop{
		ID:          fmt.Sprintf("shop-%d", f.nextID),
		Domain:      shop.Domain,
		AccessToken: shop.AccessToken,
		Scope:       shop.Scope,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.byDomain[shop.Domain] = record
	f.byID[record.ID] = record
	copied := *record
	return &copied, nil
}

func (f *fakeShopRepo) GetByID(_ context.Context, id string) (*domain.Shop, error) {
	shop, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *shop
	return &copied, nil
}

func (f *fakeShopRepo) GetByDomain(_ context.Context, shopDomain string) (*domain.Shop, error) {
	shop, ok := f.byDomain[shopDomain]
	if !ok {
		return nil, nil
	}
	copied := *shop
	return &copied, nil
}

type fakeAuditRepo struct {
	events []*domain.AuditEvent
	err    error
}

func (f *fakeAuditRepo) Append(_ context.Context, event *domain.AuditEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeAuditRepo) actions() []string {
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Action)
	}
	return out
}

type fakeSessionRepo struct {
	sessions map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*domain.Session{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *domain.Session) error {
	f.sessions[session.State] = session
	return nil
}

func (f *fakeSessionRepo) Get(_ context.Context, state string) (*domain.Session, error) {
	return f.sessions[state], nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, state string) error {
	delete(f.sessions, state)
	return nil
}

type fakeSummaryCache struct {
	store  map[string]*domain.MetricsSummary
	getErr error
	setErr error
	sets   int
}

func newFakeSummaryCache() *fakeSummaryCache {
	return &fakeSummaryCache{store: map[string]*domain.MetricsSummary{}}
}

func (f *fakeSummaryCache) Get(_ context.Context, shopID string) (*domain.MetricsSummary, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	summary, ok := f.store[shopID]
	return summary, ok, nil
}

func (f *fakeSummaryCache) Set(_ context.Context, shopID string, summary *domain.MetricsSummary, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.store[shopID] = summary
	return nil
}

type fakeShopifyClient struct {
	grant       *ports.TokenGrant
	exchangeErr error
	orders      []domain.Order
	fetchErr    error
	fetchCalls  int
	verifyOK    bool
	lastShop    string
	lastWindow  domain.ReportingWindow
}

func (f *fakeShopifyClient) AuthorizeURL(shop string, scopes []string, state string) string {
	return fmt.Sprintf("https://%s/admin/oauth/authorize?state=%s", shop, state)
}

func (f *fakeShopifyClient) VerifyCallback(string) bool {
	return f.verifyOK
}

func (f *fakeShopifyClient) ExchangeToken(_ context.Context, shop, _ string) (*ports.TokenGrant, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.grant, nil
}

func (f *fakeShopifyClient) FetchOrders(_ context.Context, shop, _ string, window domain.ReportingWindow) ([]domain.Order, error) {
	f.fetchCalls++
	f.lastShop = shop
	f.lastWindow = window
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.orders, nil
}
