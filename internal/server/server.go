// Package server exposes the journal session over a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"trademind/internal/app"
	"trademind/internal/logging"
	"trademind/internal/metrics"
)

// Config holds server dependencies.
type Config struct {
	Log     zerolog.Logger
	Session *app.Session
	Port    int
	DevMode bool
	Version string
}

// Server is the HTTP front of a Session.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	session *app.Session
	port    int
	version string
}

// New creates a server with middleware and routes installed.
func New(cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		log:     cfg.Log.With().Str("component", "server").Logger(),
		session: cfg.Session,
		port:    cfg.Port,
		version: cfg.Version,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
		// Advisory calls with web search can take a while.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(80 * time.Second))

	origins := []string{"http://localhost:*", "http://127.0.0.1:*"}
	if devMode {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Accept-Language"},
		MaxAge:         300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/calendar", s.handleCalendar)

		r.Route("/journals", func(r chi.Router) {
			r.Get("/", s.handleJournalList)
			r.Post("/undo", s.handleUndo)
			r.Get("/{date}", s.handleGetDay)
			r.Put("/{date}", s.handlePutDay)
			r.Post("/{date}/trades", s.handleAddTrade)
			r.Delete("/{date}/trades/{id}", s.handleRemoveTrade)
			r.Post("/{date}/refine", s.handleRefineNotes)
		})

		r.Get("/advice", s.handleAdvice)
		r.Get("/macro", s.handleMacro)
		r.Get("/scanners", s.handleScanners)
		r.Post("/scan", s.handleScan)
		r.Post("/breakout", s.handleBreakout)

		r.Get("/language", s.handleGetLanguage)
		r.Put("/language", s.handleSetLanguage)
		r.Get("/strings", s.handleStrings)

		r.Get("/state", s.handleState)
		r.Post("/navigate", s.handleNavigate)
	})
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLog := s.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(logging.WithLogger(r.Context(), reqLog)))

		reqLog.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Msg("HTTP request")
	})
}
