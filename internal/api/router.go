package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
	"github.com/hungerium/hungeriumm-sub001/internal/game"
	"github.com/hungerium/hungeriumm-sub001/internal/session"
)

// Sessions is the part of session.Manager the API calls. Keep it minimal
// so tests can substitute a fake.
type Sessions interface {
	Create(ctx context.Context, playerID string, seed int64) (*session.Session, error)
	Get(id string) (*session.Session, error)
	Close(id, reason string) error
	List() []session.Info
	Top(n int) []game.LeaderboardEntry
	Around(playerID string, above, below int) []game.LeaderboardEntry
	Characters() []game.Character
}

// FrameRenderer encodes a snapshot as an image.
type FrameRenderer interface {
	RenderPNG(w io.Writer, snap game.Snapshot) error
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Sessions: manager,
//	    RateLimitConfig: &config.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Sessions is the session manager (required).
	Sessions Sessions

	// Renderer serves frame.png. Nil answers 501.
	Renderer FrameRenderer

	// Tokens signs and checks session tokens. Nil creates one with a
	// random secret.
	Tokens *TokenIssuer

	// Hub serves websocket streams. Nil disables the ws route.
	Hub *WebSocketHub

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one is created from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil. If both are nil,
	// DefaultRateLimitConfig applies.
	RateLimitConfig *config.RateLimitConfig

	// Origins lists allowed CORS origins. Nil allows local development.
	Origins *OriginChecker

	// LeaderboardTop is the default leaderboard size.
	LeaderboardTop int

	// DisableLogging disables the request logger (useful for benchmarks).
	DisableLogging bool

	Logger *zap.Logger
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE - it has no side effects:
//   - No goroutines are started
//   - No network listeners are opened
//
// This makes it safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	// Order matters: recover outermost, then metrics and logging.
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestMetrics(log, cfg.DisableLogging))

	// Rate limiting before CORS to reject early
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	origins := cfg.Origins
	if origins == nil {
		origins = NewOriginChecker(nil)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins.Patterns(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	tokens := cfg.Tokens
	if tokens == nil {
		tokens = NewTokenIssuer("", log)
	}
	top := cfg.LeaderboardTop
	if top <= 0 {
		top = 10
	}

	h := &routerHandlers{
		sessions: cfg.Sessions,
		renderer: cfg.Renderer,
		tokens:   tokens,
		hub:      cfg.Hub,
		top:      top,
		log:      log,
	}

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", h.handleLeaderboard)
		r.Get("/leaderboard/{player}", h.handlePlayerRank)
		r.Get("/characters", h.handleCharacters)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.handleCreateSession)
			r.Get("/", h.handleListSessions)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(tokens.RequireSession)

				r.Get("/", h.handleGetSession)
				r.Delete("/", h.handleDeleteSession)
				r.Get("/state", h.handleGetState)
				r.Get("/profile", h.handleGetProfile)
				r.Get("/characters", h.handleSessionCharacters)
				r.Get("/frame.png", h.handleGetFrame)

				r.Post("/input", h.handleInput)
				r.Post("/pause", h.handlePause)
				r.Post("/resume", h.handleResume)
				r.Post("/restart", h.handleRestart)
				r.Put("/character", h.handleSelectCharacter)

				if cfg.Hub != nil {
					r.Get("/ws", h.handleWebSocket)
				}
			})
		})
	})

	return r
}

// requestMetrics records latency per route pattern and logs each request.
func requestMetrics(log *zap.Logger, quiet bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			pattern := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					pattern = p
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			RecordRequest(r.Method, pattern, status, elapsed)

			if !quiet {
				log.Info("request",
					zap.String("method", r.Method),
					zap.String("route", pattern),
					zap.Int("status", status),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", elapsed),
					zap.String("ip", GetClientIP(r)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}
		})
	}
}
