package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	DatabaseURL     string
	LogLevel        string
	AnthropicAPIKey string
	AnthropicModel  string
	Rules           string
	LLMMaxChars     int
	RedisURL        string
	LLMCacheTTL     time.Duration
	NatsURL         string
	NatsToken       string
	CORSOrigins     []string
	APIToken        string
}

// Load reads configuration from the environment after applying .env.local
// and .env. Variables already set in the environment win over both files.
func Load() Config {
	if err := LoadDotEnv(".env.local", ".env"); err != nil {
		slog.Warn("failed to load dotenv file", "error", err)
	}

	return Config{
		Port:            envInt("EXTRACTIFY_PORT", 8000),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envStr("EXTRACTIFY_MODEL", "claude-3-5-haiku-20241022"),
		Rules:           envStr("EXTRACTIFY_RULES", "strict"),
		LLMMaxChars:     envInt("LLM_MAX_CHARS", 4000),
		RedisURL:        envStr("REDIS_URL", ""),
		LLMCacheTTL:     time.Duration(envInt("LLM_CACHE_TTL_SECONDS", 86400)) * time.Second,
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
		CORSOrigins:     envList("CORS_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		APIToken:        envStr("EXTRACTIFY_API_TOKEN", ""),
	}
}

// LoadDotEnv loads each file that exists. Missing files are skipped, a
// malformed file does not stop the rest from loading, and godotenv never
// overrides variables that are already set.
func LoadDotEnv(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("load %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
