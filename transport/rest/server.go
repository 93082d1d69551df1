package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	logger   *slog.Logger
	handlers *Handlers
}

func NewServer(logger *slog.Logger, handlers *Handlers) *Server {
	return &Server{
		logger:   logger.With("component", "rest"),
		handlers: handlers,
	}
}

// Start - runs the HTTP API until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)

	router.Get("/ping", that.handlers.Ping)
	router.Get("/auth/google/login", that.handlers.GoogleLogin)
	router.Get("/auth/google/callback", that.handlers.GoogleCallback)

	router.Route("/api", func(api chi.Router) {
		api.Use(that.handlers.SessionMiddleware)

		api.Post("/games", that.handlers.NewGame)
		api.Get("/games/current", that.handlers.CurrentGame)
		api.Delete("/games/current", that.handlers.AbandonGame)
		api.Post("/games/move", that.handlers.MakeTurn)
		api.Get("/stats", that.handlers.GetStats)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}

		return nil
	}
}
