package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"shopify-metrics-dashboard/internal/application"
	"shopify-metrics-dashboard/internal/config"
	"shopify-metrics-dashboard/internal/domain"
	"shopify-metrics-dashboard/internal/infrastructure/cache"
	"shopify-metrics-dashboard/internal/infrastructure/repository"
	shopifyinfra "shopify-metrics-dashboard/internal/infrastructure/shopify"
	"shopify-metrics-dashboard/internal/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cfg, err := config.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	location, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.BusinessTimezone).Msg("Invalid business timezone")
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)

	// Connect to Redis for the summary cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	// Initialize repositories
	shopRepo := repository.NewMongoShopRepository(db)
	sessionRepo := repository.NewMongoSessionRepository(db)
	auditRepo := repository.NewMongoAuditRepository(db)

	promMetrics := observability.Registry("shopmetrics")
	summaryCache := cache.NewSummaryCache(redisClient, logger)

	shopifyClient := shopifyinfra.NewClient(
		cfg.ShopifyAPIKey,
		cfg.ShopifyAPISecret,
		cfg.RedirectURI(),
		cfg.RefundFanout,
		cfg.OutboundTimeout,
		promMetrics,
		logger,
	)

	// Initialize application services
	oauthService := application.NewOAuthService(
		shopRepo,
		sessionRepo,
		auditRepo,
		shopifyClient,
		promMetrics,
		logger,
		cfg.ShopifyScopes,
	)

	metricsService := application.NewMetricsService(
		shopRepo,
		auditRepo,
		summaryCache,
		shopifyClient,
		promMetrics,
		logger,
		location,
		cfg.SummaryCacheTTL,
	)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Prometheus exposition
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// OAuth routes
	r.Post("/auth/shopify", beginOAuthHandler(oauthService, logger))
	r.Get("/auth/shopify/callback", oauthCallbackHandler(oauthService, logger))

	// Store routes
	r.Get("/shops/{id}/metrics", shopMetricsHandler(metricsService, logger))
	r.Post("/shops/{id}/disconnect", disconnectShopHandler(oauthService, logger))

	logger.Info().Str("address", cfg.Address).Msg("Starting API server")
	if err := http.ListenAndServe(cfg.Address, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// beginOAuthHandler accepts a raw shop domain and responds with the
// OAuth authorize URL the frontend should redirect to.
func beginOAuthHandler(oauthService *application.OAuthService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ShopDomain string `json:"shopDomain"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ShopDomain == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Shop domain is required"})
			return
		}

		oauthURL, err := oauthService.BeginAuth(r.Context(), body.ShopDomain)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to initiate OAuth")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to initiate OAuth"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"oauthUrl": oauthURL})
	}
}

// oauthCallbackHandler completes the OAuth round trip. Failures are
// surfaced to the user only as redirect-level error codes; the causes
// stay in the logs and audit trail.
func oauthCallbackHandler(oauthService *application.OAuthService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		shop := r.URL.Query().Get("shop")
		state := r.URL.Query().Get("state")

		if code == "" || shop == "" {
			http.Redirect(w, r, "/?error=missing_params", http.StatusFound)
			return
		}

		record, err := oauthService.CompleteAuth(r.Context(), shop, code, state, r.URL.String())
		if err != nil {
			http.Redirect(w, r, "/?error=oauth_failed", http.StatusFound)
			return
		}

		http.Redirect(w, r, "/?connected="+record.ID, http.StatusFound)
	}
}

// shopMetricsHandler returns the rolling 30-day summary for one shop.
// Upstream failures still answer 200 with the degraded zero summary.
func shopMetricsHandler(metricsService *application.MetricsService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID := chi.URLParam(r, "id")
		if shopID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Shop ID is required"})
			return
		}

		summary, err := metricsService.FetchMetrics(r.Context(), shopID)
		if err != nil {
			if errors.Is(err, domain.ErrShopNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "Shop not found"})
				return
			}
			logger.Error().Err(err).Str("shopId", shopID).Msg("Metrics request failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

// disconnectShopHandler records the disconnect in the audit trail. The
// store record itself is preserved.
func disconnectShopHandler(oauthService *application.OAuthService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID := chi.URLParam(r, "id")

		if err := oauthService.Disconnect(r.Context(), shopID); err != nil {
			if errors.Is(err, domain.ErrShopNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "Shop not found"})
				return
			}
			logger.Error().Err(err).Str("shopId", shopID).Msg("Failed to disconnect shop")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to disconnect shop"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
