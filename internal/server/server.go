// Package server wires the router, handlers, and middleware together and
// owns the HTTP server lifecycle.
//
// This is the composition root: New assembles the whole dependency chain
// (sqlite.DB → repositories → services → handlers) in one place, so nothing
// else in the codebase constructs its own collaborators.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/handler"
	"github.com/sakif/second-brain/internal/middleware"
	sqliteRepo "github.com/sakif/second-brain/internal/repository/sqlite"
	"github.com/sakif/second-brain/internal/service"
)

// Config holds server configuration, loaded once in main.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string

	// Optional GitHub OAuth sign-in. Routes are registered only when both
	// client credentials are present.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and assembles the full dependency chain.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
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

// setupRoutes configures middleware and the route table.
//
// ROUTE STRUCTURE:
//
//	POST   /api/v1/signup               → register, returns token
//	POST   /api/v1/signin               → login, returns token
//	POST   /api/v1/content              → create item            (bearer)
//	GET    /api/v1/content              → list caller's items    (bearer)
//	DELETE /api/v1/content/{contentId}  → delete caller's item   (bearer)
//	POST   /api/v1/brain/share          → enable/disable sharing (bearer)
//	GET    /api/v1/brain/{shareLink}    → public resolve, no auth
//	GET    /auth/github/login,/callback → optional OAuth sign-in
//	GET    /healthz                     → liveness probe
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	contentService := service.NewContentService(s.db.Content(), s.logger)
	shareService := service.NewShareService(s.db.ShareLinks(), s.db.Users(), s.db.Content(), s.logger)

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	contentHandler := handler.NewContentHandler(contentService, s.logger)
	shareHandler := handler.NewShareHandler(shareService, s.logger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/signin", authHandler.HandleSignin)

		// Public resolver — the hash itself is the capability.
		r.Get("/brain/{shareLink}", shareHandler.HandleResolve)

		// Owner-scoped routes sit behind the auth gate.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Post("/content", contentHandler.HandleCreate)
			r.Get("/content", contentHandler.HandleList)
			r.Delete("/content/{contentId}", contentHandler.HandleDelete)

			r.Post("/brain/share", shareHandler.HandleShare)
		})
	})

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	} else {
		s.logger.Info("GitHub OAuth not configured — /auth/github routes disabled")
	}

	return nil
}

// Handler exposes the router, mainly for httptest-based end-to-end tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s
// limit), close the database.
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
