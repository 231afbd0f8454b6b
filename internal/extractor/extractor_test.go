package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/extractify/internal/anthropic"
	"github.com/MikeSquared-Agency/extractify/internal/cache"
	"github.com/MikeSquared-Agency/extractify/internal/fields"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeLLM struct {
	reply      string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeLLM) Complete(_ context.Context, _ string, messages []anthropic.Message, _ int) (string, error) {
	f.calls++
	if len(messages) > 0 {
		f.lastPrompt = messages[0].Content
	}
	return f.reply, f.err
}

const fullConversation = "Customer called about order 1012809669. Email is john@example.com. Phone (752) 693-4642. Zip code 78202."

func TestExtract_RegexOnly(t *testing.T) {
	ext := New(nil, discardLogger(), Options{})

	got := ext.Extract(context.Background(), fullConversation, "call.txt")

	if got.Email != "john@example.com" || got.Phone != "752-693-4642" || got.ZipCode != "78202" || got.OrderID != "1012809669" {
		t.Errorf("unexpected fields: %+v", got.Fields())
	}
	if got.Metadata.ExtractionMethod != MethodRegex {
		t.Errorf("expected method regex, got %q", got.Metadata.ExtractionMethod)
	}
	if got.Metadata.LLMResults != nil {
		t.Errorf("expected nil llm results, got %+v", got.Metadata.LLMResults)
	}
	if got.Metadata.FileName != "call.txt" {
		t.Errorf("expected fileName call.txt, got %q", got.Metadata.FileName)
	}
	if got.Metadata.TextLength != len(fullConversation) {
		t.Errorf("expected textLength %d, got %d", len(fullConversation), got.Metadata.TextLength)
	}
	if _, err := time.Parse(time.RFC3339, got.Metadata.ProcessedAt); err != nil {
		t.Errorf("processedAt not RFC3339: %v", err)
	}
	if ext.LLMAvailable() {
		t.Error("expected LLMAvailable false")
	}
}

func TestExtract_LLMFillsGaps(t *testing.T) {
	llm := &fakeLLM{reply: "```json\n{\"email\":\"john@example.com\",\"phone\":\"NA\",\"zipCode\":\"99999\",\"orderId\":null}\n```"}
	ext := New(llm, discardLogger(), Options{})

	got := ext.Extract(context.Background(), "I moved recently, zip code is 78202. Write to john at example dot com.", "")

	if got.Email != "john@example.com" {
		t.Errorf("expected email from llm, got %q", got.Email)
	}
	if got.ZipCode != "78202" {
		t.Errorf("expected regex zip to win, got %q", got.ZipCode)
	}
	if got.OrderID != fields.NA || got.Phone != fields.NA {
		t.Errorf("expected NA phone and order id, got %q %q", got.Phone, got.OrderID)
	}
	if got.Metadata.ExtractionMethod != MethodHybrid {
		t.Errorf("expected method hybrid, got %q", got.Metadata.ExtractionMethod)
	}
	if got.Metadata.LLMResults == nil || got.Metadata.LLMResults.ZipCode != "99999" {
		t.Errorf("expected llm results recorded, got %+v", got.Metadata.LLMResults)
	}
	if got.Metadata.RegexResults.Email != fields.NA {
		t.Errorf("expected regex email NA, got %q", got.Metadata.RegexResults.Email)
	}
}

func TestExtract_LLMFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	llm := anthropic.NewClient("test-key", "test-model")
	llm.SetTestTransport(server.URL)
	ext := New(llm, discardLogger(), Options{})

	got := ext.Extract(context.Background(), fullConversation, "")

	if got.Email != "john@example.com" {
		t.Errorf("expected regex email, got %q", got.Email)
	}
	want := emptyLLMFields()
	if got.Metadata.LLMResults == nil || *got.Metadata.LLMResults != want {
		t.Errorf("expected all-NA llm results, got %+v", got.Metadata.LLMResults)
	}
}

func TestExtract_LLMOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": `Here is the result: {"email":"NA","phone":"NA","zipCode":"NA","orderId":1012809669}`},
			},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	llm := anthropic.NewClient("test-key", "test-model")
	llm.SetTestTransport(server.URL)
	ext := New(llm, discardLogger(), Options{})

	got := ext.Extract(context.Background(), "please check on my last purchase", "")
	if got.OrderID != "1012809669" {
		t.Errorf("expected order id from llm, got %q", got.OrderID)
	}
}

func TestExtract_InvalidReply(t *testing.T) {
	llm := &fakeLLM{reply: "I could not find anything."}
	ext := New(llm, discardLogger(), Options{})

	got := ext.Extract(context.Background(), "hello", "")
	if got.Metadata.LLMResults == nil || *got.Metadata.LLMResults != emptyLLMFields() {
		t.Errorf("expected all-NA llm results, got %+v", got.Metadata.LLMResults)
	}
}

func TestExtract_TransportError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("connection refused")}
	ext := New(llm, discardLogger(), Options{})

	got := ext.Extract(context.Background(), fullConversation, "")
	if got.Phone != "752-693-4642" {
		t.Errorf("expected regex phone, got %q", got.Phone)
	}
}

func TestExtract_TruncatesLLMInput(t *testing.T) {
	llm := &fakeLLM{reply: `{"email":"NA","phone":"NA","zipCode":"NA","orderId":"NA"}`}
	ext := New(llm, discardLogger(), Options{})

	text := strings.Repeat("é", 5000)
	got := ext.Extract(context.Background(), text, "")

	if n := strings.Count(llm.lastPrompt, "é"); n != DefaultMaxChars {
		t.Errorf("expected %d characters sent to llm, got %d", DefaultMaxChars, n)
	}
	if got.Metadata.TextLength != 5000 {
		t.Errorf("expected textLength 5000, got %d", got.Metadata.TextLength)
	}
}

func TestExtract_CachesLLMReplies(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	llm := &fakeLLM{reply: `{"email":"jane@example.com","phone":"NA","zipCode":"NA","orderId":"NA"}`}
	ext := New(llm, discardLogger(), Options{
		Cache:    cache.NewRedisFromClient(client, "test:"),
		CacheTTL: time.Hour,
	})

	first := ext.Extract(context.Background(), "no details here", "")
	second := ext.Extract(context.Background(), "no details here", "")

	if llm.calls != 1 {
		t.Errorf("expected 1 llm call, got %d", llm.calls)
	}
	if first.Email != "jane@example.com" || second.Email != "jane@example.com" {
		t.Errorf("expected cached email, got %q and %q", first.Email, second.Email)
	}
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", `{"email":"a@b.co"}`, `{"email":"a@b.co"}`, false},
		{"json fence", "```json\n{\"email\":\"a@b.co\"}\n```", `{"email":"a@b.co"}`, false},
		{"bare fence", "```\n{\"email\":\"a@b.co\"}\n```", `{"email":"a@b.co"}`, false},
		{"preamble", "Sure! {\"email\":\"a@b.co\"} Hope that helps.", `{"email":"a@b.co"}`, false},
		{"empty", "   ", "", true},
		{"no object", "nothing found", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cleanJSON(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseReply_MissingKeys(t *testing.T) {
	got, err := parseReply(`{"email":"  "}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != emptyLLMFields() {
		t.Errorf("expected all NA, got %+v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := truncate("héllo", 2); got != "hé" {
		t.Errorf("got %q", got)
	}
}
