package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/extractify/internal/anthropic"
	"github.com/MikeSquared-Agency/extractify/internal/cache"
	"github.com/MikeSquared-Agency/extractify/internal/fields"
	"github.com/MikeSquared-Agency/extractify/internal/metrics"
)

const (
	DefaultMaxChars = 4000
	llmMaxTokens    = 512
)

// Completer is the LLM call the extractor needs. *anthropic.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, system string, messages []anthropic.Message, maxTokens int) (string, error)
}

type Options struct {
	Profile  fields.Profile
	MaxChars int
	Cache    cache.Cache
	CacheTTL time.Duration
}

type Extractor struct {
	regex    *fields.Extractor
	llm      Completer
	cache    cache.Cache
	cacheTTL time.Duration
	maxChars int
	logger   *slog.Logger
	now      func() time.Time
}

// New builds a hybrid extractor. A nil llm runs regex extraction only.
func New(llm Completer, logger *slog.Logger, opts Options) *Extractor {
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	return &Extractor{
		regex:    fields.New(opts.Profile),
		llm:      llm,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		maxChars: opts.MaxChars,
		logger:   logger,
		now:      time.Now,
	}
}

// LLMAvailable reports whether a model is configured.
func (e *Extractor) LLMAvailable() bool {
	return e.llm != nil
}

// Method reports hybrid when a model is configured, otherwise regex.
func (e *Extractor) Method() string {
	if e.llm != nil {
		return MethodHybrid
	}
	return MethodRegex
}

// Extract runs the regex rules and, when configured, the LLM, then merges
// them field by field with the regex value taking precedence.
func (e *Extractor) Extract(ctx context.Context, text, fileName string) Extraction {
	regex := e.regex.Extract(text)

	var llm *LLMFields
	if e.llm != nil {
		r := e.extractLLM(ctx, text)
		llm = &r
	}

	merged := make(map[string]string, len(fields.Names))
	for _, name := range fields.Names {
		merged[name] = fields.NA
		if v := regex.Get(name); v != fields.NA {
			merged[name] = v
			metrics.RecordFieldFound(name, "regex")
		} else if llm != nil {
			if v := llm.get(name); v != fields.NA {
				merged[name] = v
				metrics.RecordFieldFound(name, "llm")
			}
		}
	}
	metrics.RecordExtraction(e.Method())

	return Extraction{
		Email:        merged["email"],
		Phone:        merged["phone"],
		ZipCode:      merged["zipCode"],
		OrderID:      merged["orderId"],
		CustomerName: regex.CustomerName,
		Metadata: Metadata{
			FileName:         fileName,
			ProcessedAt:      e.now().Format(time.RFC3339),
			TextLength:       utf8.RuneCountInString(text),
			ExtractionMethod: e.Method(),
			RegexResults:     regex,
			LLMResults:       llm,
		},
	}
}

// extractLLM never fails. Any transport, API or decoding error is logged and
// yields all-NA fields.
func (e *Extractor) extractLLM(ctx context.Context, text string) LLMFields {
	input := truncate(text, e.maxChars)
	key := cacheKey(input)

	var cached LLMFields
	err := e.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		e.logger.Debug("llm cache hit", "key", key)
		return cached
	}
	if !errors.Is(err, cache.ErrMiss) {
		e.logger.Warn("llm cache lookup failed", "error", err)
	}

	messages := []anthropic.Message{
		{Role: "user", Content: fmt.Sprintf(extractionUserPrompt, input)},
	}

	start := time.Now()
	raw, err := e.llm.Complete(ctx, systemPrompt, messages, llmMaxTokens)
	metrics.RecordLLMCall(time.Since(start))
	if err != nil {
		metrics.RecordLLMError("call")
		e.logger.Error("llm extraction failed", "error", err, "text_len", len(input))
		return emptyLLMFields()
	}

	result, err := parseReply(raw)
	if err != nil {
		metrics.RecordLLMError("parse")
		e.logger.Error("failed to parse llm reply", "error", err, "raw", raw)
		return emptyLLMFields()
	}

	if err := e.cache.SetJSON(ctx, key, result, e.cacheTTL); err != nil {
		e.logger.Warn("llm cache store failed", "error", err)
	}
	return result
}

// parseReply decodes the model reply, tolerating code fences and preamble.
// Missing, null or blank values become NA.
func parseReply(raw string) (LLMFields, error) {
	body, err := cleanJSON(raw)
	if err != nil {
		return LLMFields{}, err
	}

	var values map[string]any
	if err := json.Unmarshal(body, &values); err != nil {
		return LLMFields{}, fmt.Errorf("decode llm reply: %w", err)
	}

	return LLMFields{
		Email:   stringValue(values["email"]),
		Phone:   stringValue(values["phone"]),
		ZipCode: stringValue(values["zipCode"]),
		OrderID: stringValue(values["orderId"]),
	}, nil
}

// cleanJSON extracts a JSON object from an LLM reply that may be wrapped in
// markdown fences or surrounded by prose.
func cleanJSON(raw string) ([]byte, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.New("empty llm reply")
	}
	if json.Valid([]byte(s)) {
		return []byte(s), nil
	}

	if idx := strings.Index(s, "```"); idx >= 0 {
		inner := s[idx+3:]
		inner = strings.TrimPrefix(inner, "json")
		if end := strings.Index(inner, "```"); end >= 0 {
			inner = inner[:end]
		}
		inner = strings.TrimSpace(inner)
		if json.Valid([]byte(inner)) {
			return []byte(inner), nil
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		candidate := s[start : end+1]
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), nil
		}
	}
	return nil, errors.New("no json object in llm reply")
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return fields.NA
	case string:
		if strings.TrimSpace(t) == "" {
			return fields.NA
		}
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func cacheKey(input string) string {
	sum := sha256.Sum256([]byte(input))
	return "llm:" + hex.EncodeToString(sum[:])
}
