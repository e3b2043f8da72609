package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const runtimeSampleInterval = 15 * time.Second

// Server exposes the Prometheus registry and a liveness probe over HTTP.
type Server struct {
	cfg    *config.MetricsConfig
	log    *logger.Logger
	server *http.Server
	cancel context.CancelFunc
	done   chan struct{}
}

// NewServer creates a metrics server. A nil or disabled config makes Start a no-op.
func NewServer(cfg *config.MetricsConfig, log *logger.Logger) *Server {
	return &Server{cfg: cfg, log: log}
}

// Handler serves the metrics path and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError}),
	))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// Start binds the listen address, so a busy port fails here, then serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddress, err)
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.sampleRuntime(ctx)

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorw("metrics server stopped", "error", err)
		}
	}()

	s.log.Infow("metrics server listening", "address", ln.Addr().String(), "path", s.cfg.Path)

	return nil
}

// Stop shuts the HTTP server down and stops runtime sampling.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.cancel()
	<-s.done

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown metrics server: %w", err)
	}

	return nil
}

func (s *Server) sampleRuntime(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(runtimeSampleInterval)
	defer ticker.Stop()

	UpdateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			UpdateSystemMetrics()
		}
	}
}
