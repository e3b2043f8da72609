package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/pkg/api/docs"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	httpSwagger "github.com/swaggo/http-swagger"
)

const shutdownCtxTimeout = 10 * time.Second

// Server serves the read-only indexer API.
type Server struct {
	config   *config.APIConfig
	registry Registry
	handler  *Handler
	server   *http.Server
	log      *logger.Logger
}

// NewServer builds the routes and middleware chain. Nothing listens until Start.
func NewServer(cfg *config.APIConfig, registry Registry, log *logger.Logger) *Server {
	s := &Server{
		config:   cfg,
		registry: registry,
		handler:  NewHandler(registry, log),
		log:      log,
	}

	chain := []Middleware{RecoveryMiddleware(log), LoggingMiddleware(log)}
	if cfg.CORS.Enabled {
		chain = append(chain, CORSMiddleware(cfg.CORS.AllowedOrigins))
	}

	var h http.Handler = s.routes()
	for _, mw := range chain {
		h = mw(h)
	}

	s.server = &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout.Duration,
		WriteTimeout: cfg.WriteTimeout.Duration,
		IdleTimeout:  cfg.IdleTimeout.Duration,
	}

	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	for pattern, fn := range map[string]http.HandlerFunc{
		"GET /health":                                    s.handler.Health,
		"GET /api/v1/indexers":                           s.handler.ListIndexers,
		"GET /api/v1/indexers/{name}":                    s.handler.GetIndexer,
		"GET /api/v1/indexers/{name}/logs":               s.handler.GetLogs,
		"GET /api/v1/indexers/{name}/accounts/{address}": s.handler.GetAccount,
	} {
		mux.HandleFunc(pattern, fn)
	}

	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
	))

	return mux
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is cancelled and then drains open requests for up to shutdownCtxTimeout.
func (s *Server) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("API server is disabled")
		return nil
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("API server error: %w", err)
	}

	s.log.Infow("API server listening", "address", ln.Addr().String())

	served := make(chan error, 1)
	go func() { served <- s.server.Serve(ln) }()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownCtxTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown error: %w", err)
	}

	s.log.Info("API server stopped")
	return nil
}
