package application

import (
	"context"
	"testing"

	"shopify-metrics-dashboard/internal/domain"
	"shopify-metrics-dashboard/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOAuthFixture() (*OAuthService, *fakeShopRepo, *fakeSessionRepo, *fakeAuditRepo, *fakeShopifyClient) {
	shopRepo := newFakeShopRepo()
	sessionRepo := newFakeSessionRepo()
	auditRepo := &fakeAuditRepo{}
	shopifyClient := &fakeShopifyClient{
		verifyOK: true,
		grant:    &ports.TokenGrant{AccessToken: "shpat_token", Scope: "read_orders"},
	}

	svc := NewOAuthService(
		shopRepo,
		sessionRepo,
		auditRepo,
		shopifyClient,
		nil,
		zerolog.Nop(),
		[]string{"read_orders"},
	)
	return svc, shopRepo, sessionRepo, auditRepo, shopifyClient
}

func TestBeginAuthNormalizesAndStoresSession(t *testing.T) {
	svc, _, sessionRepo, _, _ := newOAuthFixture()

	oauthURL, err := svc.BeginAuth(context.Background(), "https://My-Store.myshopify.com/")
	require.NoError(t, err)

	assert.Contains(t, oauthURL, "https://My-Store.myshopify.com/admin/oauth/authorize")

	require.Len(t, sessionRepo.sessions, 1)
	for state, session := range sessionRepo.sessions {
		assert.Contains(t, oauthURL, "state="+state)
		assert.Equal(t, "My-Store.myshopify.com", session.Shop)
		assert.Equal(t, []string{"read_orders"}, session.Scopes)
		assert.False(t, session.ExpiresAt.IsZero())
	}
}

func TestCompleteAuthStoresShopAndAudits(t *testing.T) {
	svc, shopRepo, sessionRepo, auditRepo, _ := newOAuthFixture()
	ctx := context.Background()

	_, err := svc.BeginAuth(ctx, "my-store")
	require.NoError(t, err)
	var state string
	for s := range sessionRepo.sessions {
		state = s
	}

	record, err := svc.CompleteAuth(ctx, "my-store.myshopify.com", "code", state, "http://localhost/auth/shopify/callback")
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "my-store.myshopify.com", record.Domain)
	assert.Equal(t, "shpat_token", record.AccessToken)
	assert.Equal(t, "read_orders", record.Scope)

	stored, err := shopRepo.GetByDomain(ctx, "my-store.myshopify.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, record.ID, stored.ID)

	assert.Empty(t, sessionRepo.sessions, "session should be consumed")

	require.Len(t, auditRepo.events, 1)
	event := auditRepo.events[0]
	assert.Equal(t, domain.AuditOAuthSuccess, event.Action)
	assert.Equal(t, record.ID, event.ShopID)
	assert.Equal(t, "my-store.myshopify.com", event.Meta["shop"])
}

func TestCompleteAuthIsIdempotentPerDomain(t *testing.T) {
	svc, shopRepo, _, _, shopifyClient := newOAuthFixture()
	ctx := context.Background()

	first, err := svc.CompleteAuth(ctx, "my-store.myshopify.com", "code-1", "", "http://localhost/cb")
	require.NoError(t, err)

	shopifyClient.grant = &ports.TokenGrant{AccessToken: "shpat_rotated", Scope: "read_orders,read_products"}

	second, err := svc.CompleteAuth(ctx, "my-store.myshopify.com", "code-2", "", "http://localhost/cb")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "reconnect must reuse the existing record")
	assert.Equal(t, "shpat_rotated", second.AccessToken)
	assert.Equal(t, "read_orders,read_products", second.Scope)
	assert.Len(t, shopRepo.byDomain, 1)
}

func TestCompleteAuthExchangeFailure(t *testing.T) {
	svc, shopRepo, _, auditRepo, shopifyClient := newOAuthFixture()
	shopifyClient.exchangeErr = domain.ErrTokenExchangeFailed

	_, err := svc.CompleteAuth(context.Background(), "my-store.myshopify.com", "bad-code", "", "http://localhost/cb")

	assert.ErrorIs(t, err, domain.ErrTokenExchangeFailed)
	assert.Empty(t, shopRepo.byDomain)

	require.Len(t, auditRepo.events, 1)
	assert.Equal(t, domain.AuditOAuthFailure, auditRepo.events[0].Action)
	assert.Equal(t, "Token exchange failed", auditRepo.events[0].Meta["error"])
}

func TestCompleteAuthSessionShopMismatch(t *testing.T) {
	svc, shopRepo, sessionRepo, auditRepo, _ := newOAuthFixture()
	ctx := context.Background()

	_, err := svc.BeginAuth(ctx, "expected-store")
	require.NoError(t, err)
	var state string
	for s := range sessionRepo.sessions {
		state = s
	}

	_, err = svc.CompleteAuth(ctx, "attacker-store.myshopify.com", "code", state, "http://localhost/cb")

	assert.ErrorIs(t, err, domain.ErrTokenExchangeFailed)
	assert.Empty(t, shopRepo.byDomain)
	require.Len(t, auditRepo.events, 1)
	assert.Equal(t, domain.AuditOAuthFailure, auditRepo.events[0].Action)
}

func TestCompleteAuthHmacMismatchIsAdvisory(t *testing.T) {
	svc, _, _, _, shopifyClient := newOAuthFixture()
	shopifyClient.verifyOK = false

	record, err := svc.CompleteAuth(context.Background(), "my-store.myshopify.com", "code", "", "http://localhost/cb")

	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
}

func TestCompleteAuthAuditWriteFailureDoesNotBlock(t *testing.T) {
	svc, _, _, auditRepo, _ := newOAuthFixture()
	auditRepo.err = assert.AnError

	record, err := svc.CompleteAuth(context.Background(), "my-store.myshopify.com", "code", "", "http://localhost/cb")

	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
}

func TestDisconnect(t *testing.T) {
	svc, _, _, auditRepo, _ := newOAuthFixture()
	ctx := context.Background()

	record, err := svc.CompleteAuth(ctx, "my-store.myshopify.com", "code", "", "http://localhost/cb")
	require.NoError(t, err)

	require.NoError(t, svc.Disconnect(ctx, record.ID))

	require.Len(t, auditRepo.events, 2)
	assert.Equal(t, domain.AuditShopDisconnect, auditRepo.events[1].Action)
	assert.Equal(t, record.ID, auditRepo.events[1].ShopID)
}

func TestDisconnectUnknownShop(t *testing.T) {
	svc, _, _, auditRepo, _ := newOAuthFixture()

	err := svc.Disconnect(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrShopNotFound)
	assert.Empty(t, auditRepo.events)
}
