package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alphabot-ai/slashboard/internal/auth"
	"github.com/alphabot-ai/slashboard/internal/feed"
	httpapp "github.com/alphabot-ai/slashboard/internal/http"
	"github.com/alphabot-ai/slashboard/internal/store/sqlite"
	"github.com/alphabot-ai/slashboard/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Run the API server",
	RunE:    runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	st, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	shutdownTracing, err := telemetry.Init(cmd.Context(), cfg.Telemetry, nil)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("trace shutdown failed", "err", err)
		}
	}()

	feedSvc := feed.NewService(st, feed.Limits{
		Default:     cfg.Feed.PageSize,
		Max:         cfg.Feed.MaxPageSize,
		Child:       cfg.Feed.ChildPageSize,
		Parallelism: cfg.Feed.Parallelism,
	}, logger)
	authSvc := auth.NewService(st, cfg.Auth.TokenTTL, cfg.Auth.ChallengeTTL)
	server := httpapp.NewServer(st, feedSvc, authSvc, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("slashboard listening", "addr", cfg.Server.Addr, "db", cfg.Database.Path, "traces", cfg.Telemetry.Exporter)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
