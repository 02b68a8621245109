// Package server exposes the record store and its aggregates as a JSON API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/KaramelBytes/speedatlas-cli/internal/analysis"
	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/KaramelBytes/speedatlas-cli/internal/logging"
	"github.com/KaramelBytes/speedatlas-cli/internal/source"
	"github.com/KaramelBytes/speedatlas-cli/internal/state"
	"github.com/KaramelBytes/speedatlas-cli/internal/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config wires the server to parsing and aggregation defaults.
type Config struct {
	Parse       dataset.Options
	Analysis    analysis.Options
	HTTPTimeout time.Duration
	Logger      *slog.Logger
	// Workspace, when set, persists records added through the API.
	Workspace *workspace.Workspace
	// Resolve maps a load request to a source; nil means source.Resolve.
	Resolve func(arg string, timeout time.Duration) source.Source
}

// Server serves one record store.
type Server struct {
	store  *state.Store
	cfg    Config
	router *chi.Mux
}

// New builds the router over store.
func New(store *state.Store, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Resolve == nil {
		cfg.Resolve = source.Resolve
	}
	s := &Server{store: store, cfg: cfg, router: chi.NewRouter()}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestLogging)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/records", s.handleRecords)
		r.Post("/records", s.handleAddRecord)
		r.Get("/summary", s.handleSummary)
		r.Get("/groups", s.handleGroups)
		r.Get("/outliers", s.handleOutliers)
		r.Get("/top", s.handleTop)
		r.Get("/series", s.handleSeries)
		r.Post("/load", s.handleLoad)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logging.LogOperation(s.cfg.Logger, "server_started", slog.String("addr", addr))
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// requestLogging logs one line per request with the captured status.
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		r = r.WithContext(logging.WithLogger(r.Context(), s.cfg.Logger))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logging.LogHTTPRequest(s.cfg.Logger, r.Method, r.URL.Path, status,
			float64(time.Since(start).Nanoseconds())/1e6,
			slog.String("component", "http_server"))
	})
}
