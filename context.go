package oauthgate

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
)

type authContextKey struct{}

// Auth is the per-request authentication context attached by both
// middlewares. It is constructed once per request from the resolved identity
// and handed down the call chain through the request context.
type Auth struct {
	userID string

	// Session flow: refresh capability.
	session  *scs.SessionManager
	provider *Provider

	// Bearer flow: the presented token, returned verbatim.
	bearer      bool
	bearerToken string
}

// FromRequest returns the Auth attached to r, or nil when no auth middleware
// ran for this request. All methods are nil-safe.
func FromRequest(r *http.Request) *Auth {
	return FromContext(r.Context())
}

// FromContext returns the Auth carried by ctx, or nil.
func FromContext(ctx context.Context) *Auth {
	auth, _ := ctx.Value(authContextKey{}).(*Auth)
	return auth
}

func withAuth(r *http.Request, auth *Auth) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), authContextKey{}, auth))
}

// UserID returns the logged-in local user id, or "" when anonymous.
func (a *Auth) UserID() string {
	if a == nil {
		return ""
	}
	return a.userID
}

// AccessToken returns a usable provider access token for this request.
//
// In the session flow, a stored token that is present and unexpired is
// returned as is. A missing or expired token is refreshed with the stored
// refresh token; on success the session record is overwritten and the new
// token returned. Without a refresh token the stored token fields are
// cleared, forcing a future full re-authorization, and "" is returned.
// Refresh failures propagate to the caller.
//
// In the bearer flow the presented token is returned verbatim: no refresh
// token is ever obtained there, and bearer clients manage their own refresh.
func (a *Auth) AccessToken(ctx context.Context) (string, error) {
	if a == nil {
		return "", nil
	}
	if a.bearer {
		return a.bearerToken, nil
	}

	identity, ok := getSessionIdentity(ctx, a.session)
	if !ok {
		return "", nil
	}
	now := time.Now()
	if identity.AccessToken != "" && (identity.ExpiresAt == nil || identity.ExpiresAt.After(now)) {
		return identity.AccessToken, nil
	}
	if identity.RefreshToken == "" {
		putSessionIdentity(ctx, a.session, Identity{UserID: identity.UserID})
		return "", nil
	}
	tokens, err := a.provider.RefreshToken(ctx, identity.RefreshToken)
	if err != nil {
		return "", err
	}
	putSessionIdentity(ctx, a.session, identityFromTokens(identity.UserID, tokens, now))
	return tokens.AccessToken, nil
}
