// Package http serves the map UI, the JSON API behind it, and the
// health, readiness and metrics endpoints.
package http

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server exposes the UI, the API, and the operational endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the UI and API routes plus
// /healthz, /readyz, and /metrics.
func NewServer(addr string, deps Deps, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           otelhttp.NewHandler(mux, "co2map.http"),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			// Searches wait on the geocoder, so leave room past its timeout.
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	h := &handlers{deps: deps, logger: logger}

	static, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	mux.Handle("GET /", http.FileServerFS(static))

	mux.HandleFunc("GET /api/config", h.handleConfig)
	mux.HandleFunc("POST /api/search", h.handleSearch)
	mux.HandleFunc("GET /api/map", h.handleMap)
	mux.HandleFunc("GET /api/panel", h.handleOverlay)
	mux.HandleFunc("POST /api/panel/{panel}", h.handlePanel)
	mux.HandleFunc("GET /api/cities", h.handleCities)
	mux.HandleFunc("GET /api/city/{name}", h.handleCity)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
