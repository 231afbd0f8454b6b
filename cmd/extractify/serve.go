package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/extractify/internal/api"
	"github.com/MikeSquared-Agency/extractify/internal/config"
	"github.com/MikeSquared-Agency/extractify/internal/events"
	"github.com/MikeSquared-Agency/extractify/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the extraction and conversation storage API.

DATABASE_URL is required. ANTHROPIC_API_KEY, REDIS_URL and NATS_URL are
optional and enable LLM extraction, reply caching and event publishing.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("extractify starting", "port", cfg.Port, "rules", cfg.Rules)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	slog.Info("database connected")

	ext, closeCache := newExtractor(ctx, cfg)
	defer closeCache()

	// NATS (optional)
	var publisher events.Publisher = events.Nop{}
	if cfg.NatsURL != "" {
		nc, err := events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer nc.Close()
		publisher = nc
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	srv := api.NewServer(api.Options{
		Port:        cfg.Port,
		CORSOrigins: cfg.CORSOrigins,
		APIToken:    cfg.APIToken,
		Store:       db,
		Extractor:   ext,
		Events:      publisher,
		Logger:      slog.Default(),
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("extractify ready", "port", cfg.Port, "method", ext.Method())

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown failed", "error", err)
	}
	slog.Info("extractify stopped")
	return nil
}
