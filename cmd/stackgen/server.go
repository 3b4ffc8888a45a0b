package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/artpar/stackgen/internal/shell/api"
	"github.com/artpar/stackgen/internal/shell/store"
)

const shutdownTimeout = 10 * time.Second

// =============================================================================
// Server
// =============================================================================

// Server serves the read-only catalog and descriptor API.
type Server struct {
	config     *Config
	httpServer *http.Server
	journal    *store.SQLiteJournal
	logger     *slog.Logger
}

// NewServer creates a server for the configured project.
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	reg, err := newRegistry(cfg, logger)
	if err != nil {
		return nil, &ServerError{Op: "NewServer", Err: err}
	}

	j, err := openJournal(cfg, logger)
	if err != nil {
		return nil, &ServerError{Op: "NewServer", Err: err}
	}

	hcfg := api.Config{
		Registry:   reg,
		Workspace:  store.NewFileStore(),
		ProjectDir: cfg.Project.Dir,
		Logger:     logger,
	}
	// A nil *SQLiteJournal must not become a non-nil interface.
	if j != nil {
		hcfg.Journal = j
	}
	handler := api.NewHandler(hcfg)

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Server.Address(),
			Handler:           handler.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		journal: j,
		logger:  logger,
	}, nil
}

// Start starts the server and blocks until ctx is cancelled or the listener
// fails.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server",
			"address", s.config.Server.Address(),
			"project", s.config.Project.Dir)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.close()
		return &ServerError{Op: "Start", Err: err}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}
	s.close()

	s.logger.Info("shutdown complete")
	return nil
}

func (s *Server) close() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Error("journal close error", "error", err)
		}
	}
}

// =============================================================================
// Errors
// =============================================================================

// ServerError represents a server lifecycle error.
type ServerError struct {
	Op  string
	Err error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
