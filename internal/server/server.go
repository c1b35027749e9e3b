// Package server exposes the HTTP API: dataset listing and scanning,
// chat turns, raw queries, conversation history and usage stats.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datachat-io/datachat/internal/chat"
	"github.com/datachat-io/datachat/internal/query"
	"github.com/datachat-io/datachat/internal/store"
)

// Server hosts the HTTP API.
type Server struct {
	store     store.Store
	chat      *chat.Service
	executor  *query.Executor
	sourceDir string
	port      int
	router    chi.Router
}

// New assembles the router. sourceDir is where dataset scans look for
// importable files.
func New(st store.Store, chatSvc *chat.Service, executor *query.Executor, sourceDir string, port int) *Server {
	s := &Server{
		store:     st,
		chat:      chatSvc,
		executor:  executor,
		sourceDir: sourceDir,
		port:      port,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/databases", s.handleListDatabases)
		r.Get("/databases/scan", s.handleScan)
		r.Post("/chat", s.handleChat)
		r.Post("/query", s.handleRawQuery)
		r.Get("/conversations", s.handleListConversations)
		r.Get("/conversations/{id}/messages", s.handleListMessages)
		r.Get("/stats", s.handleStats)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server: listening", zap.Int("port", s.port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server: shutdown")
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "server: listen")
	}
}
