package oauthgate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
)

// sessionContext returns a context carrying a fresh loaded session.
func sessionContext(t *testing.T, session *scs.SessionManager) context.Context {
	t.Helper()
	ctx, err := session.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	return ctx
}

func TestSessionStateStore(t *testing.T) {
	session := scs.New()
	ctx := sessionContext(t, session)
	states := NewSessionStateStore(session)

	if _, err := states.Get(ctx, "missing"); !errors.Is(err, ErrNoState) {
		t.Fatalf("expected ErrNoState for a missing key, got %v", err)
	}

	if err := states.Set(ctx, "S", "/app/dashboard?tab=1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	url, err := states.Get(ctx, "S")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if url != "/app/dashboard?tab=1" {
		t.Errorf("Get = %q", url)
	}

	if err := states.Del(ctx, "S"); err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	if _, err := states.Get(ctx, "S"); !errors.Is(err, ErrNoState) {
		t.Errorf("expected ErrNoState after Del, got %v", err)
	}
	// Deleting again is a no-op.
	if err := states.Del(ctx, "S"); err != nil {
		t.Errorf("second Del failed: %v", err)
	}
}

func TestSessionIdentityRoundTrip(t *testing.T) {
	session := scs.New()
	ctx := sessionContext(t, session)

	if _, ok := getSessionIdentity(ctx, session); ok {
		t.Fatal("expected no identity in a fresh session")
	}

	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
	putSessionIdentity(ctx, session, Identity{
		UserID:       "u1",
		AccessToken:  "T1",
		RefreshToken: "R1",
		ExpiresAt:    &expiresAt,
	})

	identity, ok := getSessionIdentity(ctx, session)
	if !ok {
		t.Fatal("identity not found after put")
	}
	if identity.UserID != "u1" || identity.AccessToken != "T1" || identity.RefreshToken != "R1" {
		t.Errorf("identity round trip lost fields: %+v", identity)
	}
	if identity.ExpiresAt == nil || !identity.ExpiresAt.Equal(expiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", identity.ExpiresAt, expiresAt)
	}
}

func TestIdentityFromTokens(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	identity := identityFromTokens("u1", &TokenResponse{
		AccessToken:  "T1",
		RefreshToken: "R1",
		ExpiresIn:    3600,
	}, now)
	if identity.UserID != "u1" || identity.AccessToken != "T1" || identity.RefreshToken != "R1" {
		t.Errorf("unexpected identity %+v", identity)
	}
	if identity.ExpiresAt == nil || !identity.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, want %v", identity.ExpiresAt, now.Add(time.Hour))
	}

	// No expires_in from the provider means no local expiry tracking.
	identity = identityFromTokens("u1", &TokenResponse{AccessToken: "T1"}, now)
	if identity.ExpiresAt != nil {
		t.Errorf("expected nil ExpiresAt, got %v", identity.ExpiresAt)
	}
}
