package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hongminglow/userhub/internal/account"
	"github.com/hongminglow/userhub/internal/auth"
	"github.com/hongminglow/userhub/internal/config"
	"github.com/hongminglow/userhub/internal/http/handlers"
	"github.com/hongminglow/userhub/internal/middleware"
	"github.com/hongminglow/userhub/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.UserStore, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenManager(cfg.SecretKey, cfg.Algorithm, cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}
	accounts := account.NewService(store, tokens, cfg.RequireActive)
	resolver := auth.NewResolver(tokens, store, cfg.RequireActive)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg.ProjectName, cfg.Version, time.Now()).Register(mux)
	handlers.NewAuthHandler(accounts, middleware.RequireUser(resolver, logger), logger).Register(mux)
	handlers.NewUserHandler(accounts, logger).Register(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	handler := middleware.CORS(cfg.CORSOrigins)(
		middleware.Logging(logger)(
			metrics.Middleware(mux),
		),
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return &Server{inner: httpServer}, nil
}

// Addr reports the listen address.
func (s *Server) Addr() string {
	return s.inner.Addr
}

// Handler exposes the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
