// Package server wires the application together: router, middleware,
// handlers, background jobs, and graceful shutdown. It is the
// composition root — every dependency chain is assembled in New, so
// the rest of the codebase only ever sees interfaces and services.
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
	"github.com/robfig/cron/v3"

	"github.com/study-and-research/QnA/internal/auth"
	"github.com/study-and-research/QnA/internal/handler"
	"github.com/study-and-research/QnA/internal/mail"
	"github.com/study-and-research/QnA/internal/middleware"
	sqliteRepo "github.com/study-and-research/QnA/internal/repository/sqlite"
	"github.com/study-and-research/QnA/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port   int
	DBPath string

	JWTSecret string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	// DigestSchedule is a cron expression for the daily digest job,
	// e.g. "0 8 * * *". Empty disables the job.
	DigestSchedule string
}

// Server owns the router, the database connection, and the digest
// scheduler. All three are released during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	cron   *cron.Cron
}

// New assembles the full dependency chain: database, token and
// password services, OAuth providers, the service layer, handlers, and
// routes.
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

	if err := s.setup(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up server: %w", err)
	}

	return s, nil
}

func (s *Server) setup() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	mailer := mail.NewLogMailer(s.logger)

	var providers []*auth.Provider
	if s.config.GitHubClientID != "" {
		providers = append(providers, auth.NewGitHubProvider(
			s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL))
	}
	if s.config.GoogleClientID != "" {
		providers = append(providers, auth.NewGoogleProvider(
			s.config.GoogleClientID, s.config.GoogleClientSecret, s.config.GoogleCallbackURL))
	}

	identityService := service.NewIdentityService(s.db, tokens, passwords, s.logger)
	questionService := service.NewQuestionService(s.db, s.logger)
	answerService := service.NewAnswerService(s.db, mailer, s.logger)
	voteService := service.NewVoteService(s.db, s.db, s.logger)
	commentService := service.NewCommentService(s.db, s.logger)
	digestService := service.NewDigestService(s.db, mailer, s.logger)

	authHandler := handler.NewAuthHandler(providers, identityService, s.logger)
	questionHandler := handler.NewQuestionHandler(questionService, commentService, s.logger)
	answerHandler := handler.NewAnswerHandler(answerService, voteService, commentService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)

	s.setupRoutes(tokens, authHandler, questionHandler, answerHandler, commentHandler)

	if s.config.DigestSchedule != "" {
		if err := s.scheduleDigest(digestService); err != nil {
			return err
		}
	}

	return nil
}

// setupRoutes maps URLs to handlers.
//
// Public routes run under OptionalAuth so handlers can still see a
// signed-in caller; everything mutating runs under RequireAuth.
func (s *Server) setupRoutes(
	tokens *auth.TokenService,
	authHandler *handler.AuthHandler,
	questionHandler *handler.QuestionHandler,
	answerHandler *handler.AnswerHandler,
	commentHandler *handler.CommentHandler,
) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Authentication flows.
	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignUp)
		r.Post("/signin", authHandler.HandleSignIn)
		r.Post("/logout", authHandler.HandleLogout)
		r.Post("/email", authHandler.HandleOAuthEmail)
		r.Get("/{provider}/login", authHandler.HandleOAuthLogin)
		r.Get("/{provider}/callback", authHandler.HandleOAuthCallback)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public reads.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/questions", questionHandler.HandleList)
			r.Get("/questions/{id}", questionHandler.HandleGet)
			r.Get("/questions/{id}/answers", answerHandler.HandleListByQuestion)
			r.Get("/questions/{id}/comments", questionHandler.HandleListComments)
			r.Get("/answers/{id}", answerHandler.HandleGet)
			r.Get("/answers/{id}/comments", answerHandler.HandleListComments)
		})

		// Authenticated operations.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Delete("/me", authHandler.HandleDeleteAccount)

			r.Post("/questions", questionHandler.HandleCreate)
			r.Delete("/questions/{id}", questionHandler.HandleDelete)
			r.Get("/questions/{id}/subscription", questionHandler.HandleSubscription)
			r.Put("/questions/{id}/subscription", questionHandler.HandleSubscribe)
			r.Delete("/questions/{id}/subscription", questionHandler.HandleUnsubscribe)
			r.Post("/questions/{id}/comments", questionHandler.HandleCreateComment)

			r.Post("/questions/{id}/answers", answerHandler.HandleCreate)
			r.Post("/questions/{id}/answers/{answerID}/accept", answerHandler.HandleAccept)

			r.Patch("/answers/{id}", answerHandler.HandleUpdate)
			r.Delete("/answers/{id}", answerHandler.HandleDelete)
			r.Put("/answers/{id}/vote", answerHandler.HandleVote)
			r.Delete("/answers/{id}/vote", answerHandler.HandleRecallVote)
			r.Post("/answers/{id}/comments", answerHandler.HandleCreateComment)

			r.Delete("/comments/{id}", commentHandler.HandleDelete)
		})
	})
}

// scheduleDigest registers the daily digest job on a cron scheduler.
// The scheduler starts with the server and stops during shutdown.
func (s *Server) scheduleDigest(digest *service.DigestService) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.config.DigestSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := digest.SendDailyDigest(ctx); err != nil {
			s.logger.Error("digest job failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling digest %q: %w", s.config.DigestSchedule, err)
	}
	s.logger.Info("digest job scheduled", slog.String("schedule", s.config.DigestSchedule))
	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests,
// stop the cron scheduler, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	if s.cron != nil {
		s.cron.Start()
		defer s.cron.Stop()
	}

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

// Router exposes the configured router for httptest-based tests.
func (s *Server) Router() http.Handler {
	return s.router
}
