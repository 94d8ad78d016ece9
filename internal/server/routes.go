package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/queryai/queryai/internal/agent"
	"github.com/queryai/queryai/internal/config"
	"github.com/queryai/queryai/internal/handler"
	"github.com/queryai/queryai/internal/middleware"
	"github.com/queryai/queryai/internal/mockdata"
	"github.com/queryai/queryai/internal/schema"
	"github.com/queryai/queryai/internal/security"
	"github.com/queryai/queryai/internal/store"
	"github.com/queryai/queryai/internal/telemetry"
	"github.com/rs/zerolog/log"
)

// setupRoutes returns (router, store, error) so the store can be closed on
// shutdown
func (s *Server) setupRoutes() (http.Handler, *telemetry.Store, error) {
	cfg := s.cfg
	ctx := context.Background()

	// ─── Usage accounting ───────────────────────────────────────────────────────
	var usageStore *telemetry.Store
	if cfg.DatabaseURL != "" {
		var dbErr error
		usageStore, dbErr = telemetry.New(ctx, cfg.DatabaseURL)
		if dbErr != nil {
			log.Warn().Err(dbErr).Msg("usage database unavailable - serving without accounting")
			usageStore = nil
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set - usage tracking disabled")
	}

	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)

	// ─── AI Agent ────────────────────────────────────────────────────────────────
	var sqlAgent *agent.SQLAgent
	if cfg.AnthropicAPIKey != "" {
		sqlAgent = agent.NewSQLAgent(cfg.AnthropicAPIKey, cfg.Model, cfg.AnthropicBaseURL, cfg.MaxTokens)
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - AI agent disabled")
	}

	// Startup summary — warn clearly about disabled features
	log.Info().
		Bool("agent_enabled", sqlAgent != nil).
		Bool("usage_tracking", usageStore != nil).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Msg("service configuration")

	if sqlAgent == nil {
		log.Warn().Msg("WARNING: no AI agent configured - /chat-stream will return 503")
	}
	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - all API requests will be rejected")
	}

	// ─── Data plane ──────────────────────────────────────────────────────────────
	executor := mockdata.NewJitterExecutor()
	records := store.NewMemStore(schema.Names())

	// ─── Handlers ────────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(usageStore)
	recordsH := handler.NewRecordsHandler(records)
	usageH := handler.NewUsageHandler(usageStore, cfg.DemoUserID)
	chatH := handler.NewChatHandler(
		sqlAgent,
		executor,
		usageStore,
		auditLogger,
		cfg.DemoUserID,
		time.Duration(cfg.ChatTimeoutSec)*time.Second,
	)

	// ─── Router ──────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	corsCfg := middleware.DefaultCORSConfig(cfg.CORSOrigins)
	corsCfg.MaxAge = config.DefaultCORSMaxAge
	r.Use(middleware.CORS(corsCfg))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	// Auth + rate limiting for API routes
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Post("/chat-stream", chatH.ChatStream)
		r.Post("/records/{table}", recordsH.Create)
		r.Get("/records/{table}", recordsH.List)
		r.Get("/usage", usageH.Usage)
	})

	return r, usageStore, nil
}
