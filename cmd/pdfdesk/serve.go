// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/pdfdesk/internal/desk"
	"github.com/pdiddy/pdfdesk/internal/gate"
	"github.com/pdiddy/pdfdesk/internal/logging"
	"github.com/pdiddy/pdfdesk/internal/secrets"
	"github.com/pdiddy/pdfdesk/internal/server"
	"github.com/pdiddy/pdfdesk/internal/vault"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

// signingKeyBytes is the size of a generated download signing key.
const signingKeyBytes = 32

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve desks over a JSON HTTP API",
	Long: `Serve starts the HTTP API. Each client creates a desk, uploads files to a
tool, processes them and completes the release dialog; the released artifact is
then available from a signed download link that expires after
release.download_ttl.

The signing key is read from .secrets/download-signing-key and generated there
on first start. Prometheus metrics are exposed on /metrics.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	loaded := loadSecrets()
	key := []byte(loaded[secrets.DownloadSigningKey])
	if len(key) == 0 {
		k, err := secrets.EnsureKey(secretsDir, secrets.DownloadSigningKey, signingKeyBytes)
		if err != nil {
			return err
		}
		key = k
	}
	v, err := vault.New(key, cfg.Release.DownloadTTL)
	if err != nil {
		return err
	}

	store, observers, err := openLedger()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tools, registry := buildTools(true)
	manager := desk.NewManager(desk.Config{
		Tools:     tools,
		Registry:  registry,
		Releaser:  v,
		Observers: append([]gate.Observer{desk.MetricsObserver{}}, observers...),
		Context:   ctx,
	}, desk.WithIdleTimeout(cfg.Server.DeskIdleTimeout))

	logging.L().Info("starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.Bool("word", !tools[types.ToolWord].ForceDisabled),
		zap.Bool("ledger", store != nil),
	)
	return server.New(cfg.Server, manager, v).Run(ctx, v.Run, manager.Run)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, \":8080\")")
	rootCmd.AddCommand(serveCmd)
}
