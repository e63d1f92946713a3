package oauthgate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
)

// DefaultCallbackURI is where the provider redirects back to after an
// authorization attempt.
const DefaultCallbackURI = "/oauth2/callback"

// AuthorizeMiddleware implements the cookie/session authorization-code flow:
// a gatekeeper that redirects unauthenticated browser requests to the
// provider, plus the provider's callback endpoint.
//
// The scs LoadAndSave middleware must wrap the handler returned by Handler so
// the request context carries a loaded session.
type AuthorizeMiddleware struct {
	// Paths classifies request paths; first match wins. A request whose path
	// matches no entry fails with HTTP 500.
	Paths []PathConfig

	Provider *Provider
	Resolver *Resolver
	Session  *scs.SessionManager

	// States keeps the pending post-login redirect targets. Defaults to the
	// session-embedded store.
	States RedirectStateStore

	// CallbackURI defaults to DefaultCallbackURI.
	CallbackURI string

	// CallbackErrorHandler decides the response for callback failures.
	// Defaults to 400 with body "Error".
	CallbackErrorHandler ErrorHandler

	// ForwardedHeaderPrefix namespaces the X-Forwarded-* headers consulted
	// when rebuilding externally visible URLs.
	ForwardedHeaderPrefix string

	Logger *slog.Logger
}

func (m *AuthorizeMiddleware) ensureDefaults() {
	if m.CallbackURI == "" {
		m.CallbackURI = DefaultCallbackURI
	}
	if m.CallbackErrorHandler == nil {
		m.CallbackErrorHandler = DefaultErrorHandler(http.StatusBadRequest)
	}
	if m.States == nil {
		m.States = NewSessionStateStore(m.Session)
	}
	if m.Logger == nil {
		m.Logger = slog.Default()
	}
}

// Handler wraps next with the gatekeeper and mounts the callback route.
func (m *AuthorizeMiddleware) Handler(next http.Handler) http.Handler {
	m.ensureDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == m.CallbackURI && r.Method == http.MethodGet {
			m.handleCallback(w, r)
			return
		}
		m.gatekeep(w, r, next)
	})
}

func (m *AuthorizeMiddleware) gatekeep(w http.ResponseWriter, r *http.Request, next http.Handler) {
	path := r.URL.Path
	matched, err := MatchPath(m.Paths, path)
	if err != nil {
		// Deployment misconfiguration: surface loudly, never default to allow
		// or deny.
		m.Logger.Error("auth path configuration error", "path", path, "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	identity, _ := getSessionIdentity(r.Context(), m.Session)
	// Attached before the whitelist check so whitelisted handlers still see a
	// logged-in user when one exists.
	r = withAuth(r, &Auth{userID: identity.UserID, session: m.Session, provider: m.Provider})

	if matched.Whitelist {
		next.ServeHTTP(w, r)
		return
	}
	if identity.UserID != "" {
		next.ServeHTTP(w, r)
		return
	}
	if matched.FailFast {
		m.Logger.Debug("rejecting: not logged in on failfast path", "path", path)
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}
	m.redirectToProvider(w, r)
}

func (m *AuthorizeMiddleware) redirectToProvider(w http.ResponseWriter, r *http.Request) {
	fwd := Forwarded(r, m.ForwardedHeaderPrefix)
	stateKey := uuid.NewString()
	if err := m.States.Set(r.Context(), stateKey, fwd.FullURL); err != nil {
		m.Logger.Error("storing redirect state failed", "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	authorizeURL := m.Provider.AuthCodeURL(fwd.BaseURL+m.CallbackURI, stateKey, r.URL.Query().Get("ui_locales"))
	m.Logger.Debug("sending authorization request", "for", r.URL.String(), "url", authorizeURL)
	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

func (m *AuthorizeMiddleware) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	stateKey := query.Get("state")
	providerError := query.Get("error")
	m.Logger.Debug("authorization callback", "state", stateKey, "error", providerError)

	baseURL := Forwarded(r, m.ForwardedHeaderPrefix).BaseURL
	target, err := m.completeCallback(r.Context(), baseURL, code, stateKey, providerError)
	if err != nil {
		m.CallbackErrorHandler(err, w, r)
		return
	}
	m.Logger.Debug("redirecting after login", "url", target)
	http.Redirect(w, r, target, http.StatusFound)
}

// completeCallback runs the callback state machine and returns the original
// URL to resume. Any failure aborts before the session is touched.
func (m *AuthorizeMiddleware) completeCallback(ctx context.Context, baseURL, code, stateKey, providerError string) (string, error) {
	if providerError != "" {
		return "", newError(KindProviderDenied, providerError, nil)
	}
	if code == "" {
		return "", newError(KindMissingCode, "no code supplied", nil)
	}

	// CSRF guard: a callback is only valid if we stored a matching state when
	// issuing the redirect. Checked before any provider call.
	target, err := m.States.Get(ctx, stateKey)
	if err != nil {
		if errors.Is(err, ErrNoState) {
			return "", newError(KindStaleState, "no state found: key="+stateKey, err)
		}
		return "", err
	}

	tokens, err := m.Provider.ExchangeCode(ctx, code, baseURL+m.CallbackURI)
	if err != nil {
		return "", err
	}
	if tokens.AccessToken == "" {
		return "", newError(KindTokenExchange, "no access token in response", nil)
	}

	// Single use. A concurrent callback racing on the same key sees ErrNoState
	// after this and is rejected as a replay.
	if err := m.States.Del(ctx, stateKey); err != nil {
		return "", err
	}

	profile, err := m.Provider.FetchProfile(ctx, tokens.AccessToken)
	if err != nil {
		return "", err
	}
	userID, err := m.Resolver.ResolveOrCreate(ctx, profile)
	if err != nil {
		return "", err
	}

	putSessionIdentity(ctx, m.Session, identityFromTokens(userID, tokens, time.Now()))

	if target == "" {
		target = "/"
	}
	return target, nil
}
