package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/panyam/oauthgate"
)

func testStore(t *testing.T) (*StateStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStateStore(client), mr
}

func TestStateStoreRoundTrip(t *testing.T) {
	store, mr := testStore(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, oauthgate.ErrNoState) {
		t.Fatalf("expected ErrNoState for a missing key, got %v", err)
	}

	if err := store.Set(ctx, "S", "/app/dashboard?tab=1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !mr.Exists(DefaultKeyPrefix + "S") {
		t.Error("entry not stored under the prefixed key")
	}

	url, err := store.Get(ctx, "S")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if url != "/app/dashboard?tab=1" {
		t.Errorf("Get = %q", url)
	}

	if err := store.Del(ctx, "S"); err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	if _, err := store.Get(ctx, "S"); !errors.Is(err, oauthgate.ErrNoState) {
		t.Errorf("expected ErrNoState after Del, got %v", err)
	}
	// Deleting again is a no-op.
	if err := store.Del(ctx, "S"); err != nil {
		t.Errorf("second Del failed: %v", err)
	}
}

func TestStateStoreTTLExpiry(t *testing.T) {
	store, mr := testStore(t)
	store.TTL = time.Minute
	ctx := context.Background()

	if err := store.Set(ctx, "S", "/home"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if ttl := mr.TTL(DefaultKeyPrefix + "S"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "S"); !errors.Is(err, oauthgate.ErrNoState) {
		t.Errorf("expected ErrNoState after expiry, got %v", err)
	}
}

func TestStateStoreCustomPrefix(t *testing.T) {
	store, mr := testStore(t)
	store.KeyPrefix = "login:"
	ctx := context.Background()

	if err := store.Set(ctx, "S", "/home"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !mr.Exists("login:S") {
		t.Error("entry not stored under the custom prefix")
	}
}

func TestHealthcheck(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	if err := Healthcheck(context.Background(), client); err != nil {
		t.Fatalf("Healthcheck failed: %v", err)
	}
}
