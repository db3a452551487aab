package proxy

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/harshraj001/cors-ninja/internal/config"
	"github.com/harshraj001/cors-ninja/internal/middleware"
	"github.com/harshraj001/cors-ninja/internal/ratelimit"
	memorystore "github.com/harshraj001/cors-ninja/internal/store/driver/memory"
	redisstore "github.com/harshraj001/cors-ninja/internal/store/driver/redis"
	"github.com/harshraj001/cors-ninja/pkg/store"
)

// Server wires the router, middleware and collaborators into an http.Server
type Server struct {
	config     *config.Config
	httpServer *http.Server
	forwarder  *HTTPForwarder
	kv         store.KVStore
	logger     *zap.Logger
}

// NewServer creates a new proxy server from the configuration
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// An unreachable store is not fatal: the limiter degrades to allow-all.
	kv, err := newStore(&cfg.Store)
	if err != nil {
		logger.Warn("rate limit store unavailable, rate limiting degrades to allow-all",
			zap.String("type", cfg.Store.Type),
			zap.Error(err))
		kv = nil
	}

	limiter := ratelimit.NewSlidingWindowLimiter(kv, cfg.RateLimit.RequestsPerMinute, logger)
	forwarder := NewHTTPForwarder()

	var metrics *middleware.Metrics
	if cfg.Monitoring.Enabled {
		metrics, err = middleware.NewMetrics("cors_ninja")
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	router := NewRouter(RouterOptions{
		Config:    cfg,
		Limiter:   limiter,
		Forwarder: forwarder,
		Store:     kv,
		Metrics:   metrics,
		Logger:    logger,
	})

	var handler http.Handler = router
	if metrics != nil {
		handler = metrics.Handler()(handler)
	}
	handler = middleware.NewAccessLog(logger).Handler()(handler)

	httpServer := &http.Server{
		Addr:           cfg.Server.Address,
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		forwarder:  forwarder,
		kv:         kv,
		logger:     logger,
	}, nil
}

// newStore creates the key-value backend selected by the configuration
func newStore(cfg *store.Config) (store.KVStore, error) {
	switch cfg.Type {
	case "redis":
		return redisstore.New(cfg)
	case "memory":
		return memorystore.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("address", s.config.Server.Address))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its collaborators
func (s *Server) Shutdown(ctx context.Context) error {
	s.forwarder.Close()

	if s.kv != nil {
		if err := s.kv.Close(); err != nil {
			s.logger.Warn("failed to close store", zap.Error(err))
		}
	}

	return s.httpServer.Shutdown(ctx)
}
