// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — it connects handlers, middleware, and
// routes. It decides which URL patterns map to which handler functions, what
// middleware guards which route group, and how the server starts and stops
// gracefully.
//
// DEPENDENCY INJECTION FLOW:
// main.go loads config → Server.New() creates:
//   sqlite.DB → UserService/JourneyService/ScoreService → handlers
//   auth.Verifier → RequireAuth / RequireAccount middleware
//   docs.Load() → DocsHandler
//
// This is the "composition root" pattern — every dependency is wired in one
// place rather than scattered across the codebase.
//
// ROUTE GUARD MAP (the asymmetry is deliberate):
//   public:          GET /auth/config, GET /api-docs/spec, GET /metrics,
//                    GET /static/*
//   token only:      POST /api/users/, GET /api/myself/registered
//   token + account: every other /api route
//
// A freshly logged-in identity has a valid token but no account yet; the
// two token-only routes are exactly the ones it needs to register.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/ecodriven/internal/auth"
	"github.com/sakif/ecodriven/internal/config"
	"github.com/sakif/ecodriven/internal/docs"
	"github.com/sakif/ecodriven/internal/handler"
	"github.com/sakif/ecodriven/internal/metrics"
	"github.com/sakif/ecodriven/internal/middleware"
	sqliteRepo "github.com/sakif/ecodriven/internal/repository/sqlite"
	"github.com/sakif/ecodriven/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection. When the server shuts down the
// connection must be closed to flush the WAL and release the file lock;
// Start() handles that during graceful shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the given config, assembling the whole
// dependency chain: database, services, token verifier, handlers, routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER MATTERS — ours is:
// 1. RealIP — extracts the real client IP from proxy headers
// 2. Recoverer — catches panics and returns 500 instead of crashing
// 3. Logger — logs each request with a generated request ID
// 4. metrics — counts and times every request (when enabled)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	if s.config.MetricsEnabled {
		m := metrics.New()
		s.router.Use(m.Middleware)
		s.router.Handle("/metrics", m.Handler())
	}

	// === Token verification ===
	verifier, err := auth.NewVerifier(
		[]byte(s.config.AuthPublicKey), s.config.Issuer(), s.config.AuthAudience)
	if err != nil {
		return err
	}

	// === Services ===
	userService := service.NewUserService(s.db.Users(), s.logger)
	journeyService := service.NewJourneyService(s.db.Journeys(), s.logger)
	scoreService := service.NewScoreService(s.db.Scores(), s.logger)

	// === Handlers ===
	userHandler := handler.NewUserHandler(userService, s.logger)
	journeyHandler := handler.NewJourneyHandler(journeyService, s.logger)
	scoreHandler := handler.NewScoreHandler(scoreService, s.logger)

	// === Public routes ===
	authConfigHandler := handler.NewAuthConfigHandler(handler.AuthConfig{
		Domain:      s.config.AuthDomain,
		ClientID:    s.config.AuthClientID,
		Audience:    s.config.AuthAudience,
		CallbackURL: s.config.AuthCallbackURL,
	})
	s.router.Get("/auth/config", authConfigHandler.HandleGet)

	// The API description is assembled from YAML fragments once, here. An
	// unresolvable fragment is a packaging bug — fail startup, don't serve
	// a half-assembled document.
	doc, err := docs.Load(filepath.Join(s.config.SwaggerDir, "index.yaml"))
	if err != nil {
		return err
	}
	docsHandler := handler.NewDocsHandler(doc)
	s.router.Get("/api-docs/spec", docsHandler.HandleGet)

	// Static front-end files.
	// http.StripPrefix removes "/static/" before the filesystem lookup, so
	// GET /static/js/app.js serves {StaticDir}/js/app.js.
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// === API routes ===
	// The user service doubles as the account checker: RequireAccount asks
	// it whether the verified subject has registered.
	requireAuth := auth.RequireAuth(verifier)
	requireAccount := auth.RequireAccount(verifier, userService)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.With(requireAuth).Post("/", userHandler.HandleCreate)
		})

		r.Route("/myself", func(r chi.Router) {
			r.With(requireAuth).Get("/registered", userHandler.HandleRegistered)
			r.With(requireAccount).Delete("/", userHandler.HandleDelete)
		})

		r.Route("/journeys", func(r chi.Router) {
			r.Use(requireAccount)
			r.Get("/", journeyHandler.HandleList)
			r.Post("/", journeyHandler.HandleCreate)
			r.Get("/{journeyID}", journeyHandler.HandleGet)
			r.Put("/{journeyID}", journeyHandler.HandleUpdate)
		})

		r.Route("/scores", func(r chi.Router) {
			r.Use(requireAccount)
			r.Get("/", scoreHandler.HandleList)
			r.Post("/", scoreHandler.HandleCreate)
		})
	})

	return nil
}

// Handler exposes the configured router, mainly for httptest in route tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases the file lock)
//
// The `defer s.db.Close()` ensures step 3 happens even if something panics.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
