// Package httpserver implements the management listener: the HTTP server
// the service entry point runs for the life of the daemon.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	vdmerrors "github.com/voltgrid/vdm/internal/errors"
	"github.com/voltgrid/vdm/internal/metrics"
	"github.com/voltgrid/vdm/internal/server/handlers"
	smw "github.com/voltgrid/vdm/internal/server/middleware"
)

// Config configures the management listener.
type Config struct {
	// Bind is the host:port to listen on.
	Bind string
}

// Server is the HTTP listener for the management API.
type Server struct {
	cfg        Config
	httpServer *http.Server
	listener   net.Listener
	errCh      chan error

	monitoring   *handlers.MonitoringHandlers
	errorAdapter *vdmerrors.HTTPErrorAdapter
	mchain       func(http.Handler) http.Handler
	recorder     *metrics.Recorder
}

// New creates the listener. The daemon supplies its monitoring surface and
// metrics recorder; routes are fixed at construction.
func New(cfg Config, daemon handlers.DaemonInterface, rec *metrics.Recorder) *Server {
	s := &Server{
		cfg:          cfg,
		errCh:        make(chan error, 1),
		monitoring:   handlers.NewMonitoringHandlers(daemon),
		errorAdapter: vdmerrors.NewHTTPErrorAdapter(slog.Default()),
		recorder:     rec,
	}
	s.mchain = smw.Chain(slog.Default(), s.errorAdapter, rec)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.monitoring.HandleHealthCheck)
	mux.HandleFunc("/api/1.0/status", s.monitoring.HandleStatus)
	mux.HandleFunc("/api/1.0/version", s.monitoring.HandleVersion)
	if rec != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(rec.Registry(), promhttp.HandlerOpts{}))
	}

	s.httpServer = &http.Server{
		Handler:           s.mchain(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start pre-binds the listener so startup failures surface before the serve
// loop begins, then serves in the background. Serve-loop failures arrive on
// Err.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Bind)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Bind, err)
	}
	s.listener = ln

	go func() {
		if serveErr := s.httpServer.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.errCh <- serveErr
		}
	}()

	slog.Info("Management listener started", "addr", ln.Addr().String())
	return nil
}

// Err reports a serve-loop failure after Start returned successfully.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Addr returns the bound address, useful when Bind used port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.Bind
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("Stopping management listener")
	return s.httpServer.Shutdown(ctx)
}
