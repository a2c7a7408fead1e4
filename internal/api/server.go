package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
)

// Server is the HTTP API server with websocket streaming.
type Server struct {
	cfg         config.ServerConfig
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	log         *zap.Logger
}

// NewServer wires the router, rate limiter and websocket hub.
//
// IMPORTANT: Background workers do NOT start until Run is called, so
// tests can construct the server and use Router() directly.
func NewServer(cfg config.ServerConfig, rl config.RateLimitConfig, sessions Sessions, renderer FrameRenderer, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	origins := NewOriginChecker(cfg.CORSOrigins)

	s := &Server{
		cfg:         cfg,
		rateLimiter: NewIPRateLimiter(rl),
		wsHub:       NewWebSocketHub(sessions, origins, rl.MaxWSPerIP, log.Named("ws")),
		log:         log,
	}
	s.router = NewRouter(RouterConfig{
		Sessions:       sessions,
		Renderer:       renderer,
		Tokens:         NewTokenIssuer(cfg.TokenSecret, log),
		Hub:            s.wsHub,
		RateLimiter:    s.rateLimiter,
		Origins:        origins,
		DisableLogging: cfg.DisableLogging,
		Logger:         log.Named("http"),
	})
	return s
}

// Run serves HTTP and the limiter cleanup until ctx is cancelled, then
// closes websocket clients and shuts down within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	go s.rateLimiter.Run()
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api server starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	s.wsHub.CloseAll("shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	s.log.Info("api server stopped")
	return nil
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}
