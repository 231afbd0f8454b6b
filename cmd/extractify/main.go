// Package main implements the extractify server and its batch tooling.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/extractify/internal/anthropic"
	"github.com/MikeSquared-Agency/extractify/internal/api"
	"github.com/MikeSquared-Agency/extractify/internal/cache"
	"github.com/MikeSquared-Agency/extractify/internal/config"
	"github.com/MikeSquared-Agency/extractify/internal/extractor"
	"github.com/MikeSquared-Agency/extractify/internal/fields"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "extractify",
	Short: "Extract contact and order fields from customer conversations",
	Long: `extractify pulls email, phone, zip code, order id and customer name
out of support transcripts using rules plus an optional LLM pass.

Configuration comes from the environment, .env.local and .env.`,
	Version:       api.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(bulkCmd)
	rootCmd.AddCommand(sampleCmd)
}

// newExtractor wires the LLM client and reply cache from config. Both are
// optional; without an API key extraction is regex only. The returned func
// releases the cache connection.
func newExtractor(ctx context.Context, cfg config.Config) (*extractor.Extractor, func()) {
	opts := extractor.Options{
		Profile:  fields.ParseProfile(cfg.Rules),
		MaxChars: cfg.LLMMaxChars,
		CacheTTL: cfg.LLMCacheTTL,
	}
	cleanup := func() {}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, "extractify:")
		if err != nil {
			slog.Warn("redis unavailable, LLM replies will not be cached", "error", err)
		} else {
			opts.Cache = rc
			cleanup = func() { rc.Close() }
			slog.Info("redis cache connected")
		}
	}

	// Keep llm a nil interface when no key is set.
	var llm extractor.Completer
	if cfg.AnthropicAPIKey != "" {
		llm = anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		slog.Info("anthropic client ready", "model", cfg.AnthropicModel)
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set, running regex extraction only")
	}

	return extractor.New(llm, slog.Default(), opts), cleanup
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
