package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedFields struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisFromClient(client, "extractify:test:"), mr
}

func TestRedis_RoundTrip(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	want := cachedFields{Email: "john@example.com", Phone: "752-693-4642"}
	if err := c.SetJSON(ctx, "abc", want, time.Minute); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}
	if !mr.Exists("extractify:test:abc") {
		t.Fatal("expected prefixed key to exist")
	}

	var got cachedFields
	if err := c.GetJSON(ctx, "abc", &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRedis_Miss(t *testing.T) {
	c, _ := newTestRedis(t)

	var got cachedFields
	err := c.GetJSON(context.Background(), "missing", &got)
	if !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss, got %v", err)
	}
}

func TestRedis_Expiry(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	if err := c.SetJSON(ctx, "short", cachedFields{Email: "a@b.co"}, time.Second); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}
	mr.FastForward(2 * time.Second)

	var got cachedFields
	if err := c.GetJSON(ctx, "short", &got); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after expiry, got %v", err)
	}
}

func TestNewRedis_BadURL(t *testing.T) {
	if _, err := NewRedis(context.Background(), "not-a-url", ""); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	if err := c.SetJSON(context.Background(), "k", 1, 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	var v int
	if err := c.GetJSON(context.Background(), "k", &v); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss, got %v", err)
	}
}
