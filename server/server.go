// Package server exposes the onboarding engine over a REST API.
//
// # Endpoints
//
//   - GET  /health - simple health check, returns "ok"
//   - GET  /metrics - Prometheus exposition
//   - POST /processes - start an onboarding process
//   - GET  /processes - list processes, ?status= filters
//   - GET  /processes/{id} - fetch one process
//   - POST /processes/{id}/activate - execute a step as the request actor
//   - POST /processes/{id}/cancel - cancel a running process
//   - POST /processes/{id}/callbacks/document - document provider webhook
//   - POST /processes/{id}/callbacks/training - training provider webhook
//
// The acting identity comes from the X-Actor-Id and X-Actor-Capabilities
// headers; authenticating those headers is the job of a fronting proxy.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/talentops/onboard"
	"github.com/talentops/onboard/server/handlers"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Server serves the onboarding REST API.
type Server struct {
	addr       string
	service    *onboard.Service
	logger     *zap.Logger
	httpServer *http.Server
}

// New creates a server for an already wired onboarding service.
func New(service *onboard.Service) *Server {
	return &Server{
		addr:    service.Config().Listener.Addr,
		service: service,
		logger:  service.Logger(),
	}
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It performs a graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", s.addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	engine := s.service.Engine()
	resolver := s.service.Resolver()

	mux.HandleFunc("GET /health", handlers.HandleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.service.MetricsRegistry(), promhttp.HandlerOpts{}))

	mux.Handle("POST /processes", handlers.NewStartHandler(engine))
	mux.Handle("GET /processes", handlers.NewListProcessesHandler(engine))
	mux.Handle("GET /processes/{id}", handlers.NewGetProcessHandler(engine))
	mux.Handle("POST /processes/{id}/activate", handlers.NewActivateHandler(engine))
	mux.Handle("POST /processes/{id}/cancel", handlers.NewCancelHandler(engine))
	mux.Handle("POST /processes/{id}/callbacks/document", handlers.NewDocumentCallbackHandler(resolver))
	mux.Handle("POST /processes/{id}/callbacks/training", handlers.NewTrainingCallbackHandler(resolver))
}
