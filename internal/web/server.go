// Package web provides the HTTP API for the Spotify AI Curator.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/justestif/go-spotify-ai-curator/internal/logging"
	"github.com/justestif/go-spotify-ai-curator/internal/metrics"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:3000"

// Config holds server settings.
type Config struct {
	Addr          string
	AppURL        string
	PostLoginPath string
	CORSOrigins   []string

	// RateLimitRequests per RateLimitWindow per client IP on the
	// recommendation route. Zero disables the limit.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	SecureCookies      bool
	ResolveConcurrency int
}

// Server is the HTTP server for the API.
type Server struct {
	cfg      Config
	router   chi.Router
	server   *http.Server
	handlers *Handlers
}

// NewServer creates a new API server.
func NewServer(cfg Config, deps Deps) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	router := chi.NewRouter()

	s := &Server{
		cfg:      cfg,
		router:   router,
		handlers: NewHandlers(cfg, deps),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:        cfg.Addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Recommendation requests wait on the model and on catalog search.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logging.RequestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(observe)
	s.router.Use(middleware.Compress(5))

	if len(s.cfg.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.Get("/healthz", h.Health)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/auth/signin/spotify", h.SignIn)
		r.Get("/auth/callback/spotify", h.Callback)
		r.Get("/auth/signout", h.SignOutRedirect)
		r.Post("/auth/signout", h.SignOut)

		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)

			r.Get("/me", h.Me)
			r.Get("/spotify/top-tracks", h.TopTracks)
			r.Get("/spotify/top-artists", h.TopArtists)
			r.Get("/spotify/playlists", h.Playlists)
			r.Post("/spotify/export", h.Export)

			recommend := r.With()
			if s.cfg.RateLimitRequests > 0 {
				recommend = r.With(httprate.LimitByIP(s.cfg.RateLimitRequests, s.cfg.RateLimitWindow))
			}
			recommend.Post("/ai/recommend", h.Recommend)
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log := logging.Component("server")
	log.Info().Str("addr", s.server.Addr).Msg("starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	log := logging.Component("server")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		log.Info().Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
