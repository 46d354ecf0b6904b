// Package dashboard serves the web dashboard, its JSON API and a websocket
// feed of valuation snapshots.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"PortfolioTracker/internal/report"
	"PortfolioTracker/internal/tracker"
)

// Config holds server configuration
type Config struct {
	Addr            string
	Service         *tracker.Service
	Log             zerolog.Logger
	Report          report.Options
	ReportDir       string
	RefreshInterval time.Duration
	AllowedOrigins  []string
	Clock           func() time.Time
}

// Server represents the HTTP server
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	svc     *tracker.Service
	cfg     Config
	maxBody int64
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 30 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		router:  chi.NewRouter(),
		log:     cfg.Log.With().Str("component", "dashboard").Logger(),
		svc:     cfg.Service,
		cfg:     cfg,
		maxBody: 10 << 20,
	}

	s.setupMiddleware()
	s.setupRoutes()

	// No read or write timeout: they would also cut hijacked websocket
	// connections. Plain requests are bounded by the timeout middleware.
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	// The feed is long-lived and stays outside the request timeout.
	s.router.Get("/ws", s.handleFeed)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/", s.handleIndex)
		r.Post("/trades", s.handleAddTrade)
		r.Post("/trades/{id}/delete", s.handleDeleteTrade)
		r.Post("/import", s.handleImport)
		r.Get("/export.csv", s.handleExport)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/report", s.handleReport)

		r.Route("/api", func(r chi.Router) {
			r.Get("/valuation", s.handleAPIValuation)
			r.Get("/positions", s.handleAPIListPositions)
			r.Post("/positions", s.handleAPIAddPosition)
			r.Delete("/positions/{id}", s.handleAPIDeletePosition)
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.cfg.Addr).Msg("starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
