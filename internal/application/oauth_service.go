package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"shopify-metrics-dashboard/internal/domain"
	"shopify-metrics-dashboard/internal/observability"
	"shopify-metrics-dashboard/internal/ports"
	"shopify-metrics-dashboard/internal/security"

	"github.com/rs/zerolog"
)

const (
	auditActor      = "server"
	sessionLifetime = 10 * time.Minute
)

// OAuthService drives the OAuth handshake: it builds the authorize
// redirect, completes the code-for-token exchange and maintains the
// store record and audit trail around both.
type OAuthService struct {
	shopRepo    ports.ShopRepository
	sessionRepo ports.SessionRepository
	auditRepo   ports.AuditRepository
	shopify     ports.ShopifyClient
	metrics     *observability.Metrics
	logger      zerolog.Logger
	scopes      []string
}

// NewOAuthService creates a new OAuth application service.
func NewOAuthService(
	shopRepo ports.ShopRepository,
	sessionRepo ports.SessionRepository,
	auditRepo ports.AuditRepository,
	shopify ports.ShopifyClient,
	metrics *observability.Metrics,
	logger zerolog.Logger,
	scopes []string,
) *OAuthService {
	return &OAuthService{
		shopRepo:    shopRepo,
		sessionRepo: sessionRepo,
		auditRepo:   auditRepo,
		shopify:     shopify,
		metrics:     metrics,
		logger:      logger,
		scopes:      scopes,
	}
}

// BeginAuth normalizes a merchant-entered domain, records an OAuth
// session for the round trip and returns the authorize redirect URL.
func (s *OAuthService) BeginAuth(ctx context.Context, rawDomain string) (string, error) {
	shop := domain.NormalizeShopDomain(rawDomain)

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := hex.EncodeToString(stateBytes)

	session := &domain.Session{
		State:     state,
		Shop:      shop,
		Scopes:    s.scopes,
		ExpiresAt: time.Now().Add(sessionLifetime),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info().Str("shop", shop).Msg("Initiating Shopify OAuth")

	return s.shopify.AuthorizeURL(shop, s.scopes, state), nil
}

// CompleteAuth handles the provider callback: it validates the session,
// exchanges the code, upserts the store record and records the audit
// outcome. On any exchange failure the caller receives only
// domain.ErrTokenExchangeFailed; the cause stays in the (redacted) log.
func (s *OAuthService) CompleteAuth(ctx context.Context, shop, code, state, callbackURL string) (*domain.Shop, error) {
	if state != "" {
		session, err := s.sessionRepo.Get(ctx, state)
		if err != nil {
			s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to load OAuth session")
		}
		if session != nil && session.Shop != shop {
			s.logger.Warn().
				Str("shop", shop).
				Str("sessionShop", session.Shop).
				Msg("OAuth callback shop does not match session")
			s.auditFailure(ctx, shop, "session mismatch")
			return nil, domain.ErrTokenExchangeFailed
		}
		if session != nil {
			s.sessionRepo.Delete(ctx, state)
		}
	}

	if !s.shopify.VerifyCallback(callbackURL) {
		// Advisory only: state verification already gates the flow.
		s.logger.Warn().Str("shop", shop).Msg("OAuth callback hmac verification failed")
	}

	grant, err := s.shopify.ExchangeToken(ctx, shop, code)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("OAuth callback failed")
		s.auditFailure(ctx, shop, "Token exchange failed")
		if s.metrics != nil {
			s.metrics.OAuthAttempts.WithLabelValues("failure").Inc()
		}
		return nil, domain.ErrTokenExchangeFailed
	}

	record, err := s.shopRepo.UpsertByDomain(ctx, &domain.Shop{
		Domain:      shop,
		AccessToken: grant.AccessToken,
		Scope:       grant.Scope,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to save shop")
		s.auditFailure(ctx, shop, "Failed to save shop")
		return nil, fmt.Errorf("failed to save shop: %w", err)
	}

	s.audit(ctx, &domain.AuditEvent{
		Actor:  auditActor,
		Action: domain.AuditOAuthSuccess,
		ShopID: record.ID,
		Meta:   map[string]any{"shop": shop, "scope": grant.Scope},
	})
	if s.metrics != nil {
		s.metrics.OAuthAttempts.WithLabelValues("success").Inc()
	}

	s.logger.Info().
		Str("shopId", record.ID).
		Str("shop", shop).
		Interface("token", security.Redact(map[string]string{"access_token": grant.AccessToken})).
		Msg("Successfully connected shop")

	return record, nil
}

// Disconnect records a disconnect audit event. The store record is kept
// for traceability; normal flow never deletes it.
func (s *OAuthService) Disconnect(ctx context.Context, shopID string) error {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return fmt.Errorf("failed to get shop: %w", err)
	}
	if shop == nil {
		return domain.ErrShopNotFound
	}

	s.audit(ctx, &domain.AuditEvent{
		Actor:  auditActor,
		Action: domain.AuditShopDisconnect,
		ShopID: shopID,
		Meta:   map[string]any{"timestamp": time.Now().UTC().Format(time.RFC3339)},
	})

	s.logger.Info().Str("shopId", shopID).Msg("Disconnected shop")
	return nil
}

func (s *OAuthService) auditFailure(ctx context.Context, shop, reason string) {
	s.audit(ctx, &domain.AuditEvent{
		Actor:  auditActor,
		Action: domain.AuditOAuthFailure,
		Meta:   map[string]any{"error": reason, "shop": shop},
	})
}

func (s *OAuthService) audit(ctx context.Context, event *domain.AuditEvent) {
	if err := s.auditRepo.Append(ctx, event); err != nil {
		// The audit trail is best effort; a write failure never blocks
		// the merchant-facing flow.
		s.logger.Error().Err(err).Str("action", event.Action).Msg("Failed to append audit event")
	}
}
