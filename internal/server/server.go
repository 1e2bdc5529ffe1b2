// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes desks over a JSON HTTP API. Each client creates a
// desk, uploads files to a tool, processes them, walks the release modal,
// and retrieves the released artifact from a signed download link.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/pdfdesk/internal/desk"
	"github.com/pdiddy/pdfdesk/internal/logging"
	"github.com/pdiddy/pdfdesk/internal/metrics"
	"github.com/pdiddy/pdfdesk/internal/vault"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

const (
	defaultAddr           = ":8080"
	defaultMaxUploadBytes = 64 << 20
	sweepInterval         = time.Minute
	shutdownTimeout       = 15 * time.Second
)

// Downloads redeems download tokens. *vault.Vault implements it.
type Downloads interface {
	Redeem(token string) (types.PendingArtifact, error)
}

// Server is the HTTP front end of a desk.Manager.
type Server struct {
	cfg       types.ServerConfig
	desks     *desk.Manager
	downloads Downloads
}

// New creates a server. Zero fields of cfg take their defaults.
func New(cfg types.ServerConfig, desks *desk.Manager, downloads Downloads) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &Server{cfg: cfg, desks: desks, downloads: downloads}
}

// Handler returns the routed handler wrapped in request logging and metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/v1/desks", s.handleCreateDesk)
	mux.HandleFunc("GET /api/v1/desks/{id}", s.handleGetDesk)
	mux.HandleFunc("DELETE /api/v1/desks/{id}", s.handleDeleteDesk)

	mux.HandleFunc("POST /api/v1/desks/{id}/tools/{tool}/files", s.handleAddFiles)
	mux.HandleFunc("DELETE /api/v1/desks/{id}/tools/{tool}/files/{index}", s.handleRemoveFile)
	mux.HandleFunc("POST /api/v1/desks/{id}/tools/{tool}/reorder", s.handleReorder)
	mux.HandleFunc("POST /api/v1/desks/{id}/tools/{tool}/drag", s.handleDrag)
	mux.HandleFunc("POST /api/v1/desks/{id}/tools/{tool}/process", s.handleProcess)

	mux.HandleFunc("POST /api/v1/desks/{id}/gate/credentials", s.handleCredentials)
	mux.HandleFunc("POST /api/v1/desks/{id}/gate/{action}", s.handleGateAction)

	mux.HandleFunc("GET /downloads/{token}", s.handleDownload)

	return logging.Middleware(metrics.RecordHTTPRequest)(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully and waits
// for in-flight transformations. sweepers run alongside the listener with
// the server's context; pass the vault and desk manager sweep loops.
func (s *Server) Run(ctx context.Context, sweepers ...func(ctx context.Context, interval time.Duration)) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	for _, sweep := range sweepers {
		go sweep(ctx, sweepInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		logging.L().Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.desks.Wait()
	return nil
}

var _ Downloads = (*vault.Vault)(nil)
