package oauthgate

import (
	"log/slog"
	"net/http"
	"strings"
)

// BearerMiddleware implements the stateless API flow. Every request carrying
// a token is validated against the provider's profile endpoint and resolved
// to a local user, including creation. Nothing is cached locally: latency is
// traded for statelessness.
type BearerMiddleware struct {
	// Paths classifies request paths; first match wins.
	Paths []PathConfig

	Provider *Provider
	Resolver *Resolver

	// AuthErrorHandler decides the response for rejected requests.
	// Defaults to 401 with body "Error".
	AuthErrorHandler ErrorHandler

	Logger *slog.Logger
}

func (m *BearerMiddleware) ensureDefaults() {
	if m.AuthErrorHandler == nil {
		m.AuthErrorHandler = DefaultErrorHandler(http.StatusUnauthorized)
	}
	if m.Logger == nil {
		m.Logger = slog.Default()
	}
}

// Handler wraps next with the bearer filter. No redirects are ever issued.
func (m *BearerMiddleware) Handler(next http.Handler) http.Handler {
	m.ensureDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		matched, err := MatchPath(m.Paths, path)
		if err != nil {
			m.Logger.Error("auth path configuration error", "path", path, "error", err)
			http.Error(w, "Error", http.StatusInternalServerError)
			return
		}

		token := bearerToken(r)
		if !matched.Whitelist && token == "" {
			m.AuthErrorHandler(newError(KindMissingToken, "no bearer/access token supplied", nil), w, r)
			return
		}

		// A whitelisted request with no token passes through anonymous, but a
		// presented token is still resolved so handlers see the user.
		var userID string
		if token != "" {
			profile, err := m.Provider.FetchProfile(r.Context(), token)
			if err != nil {
				m.AuthErrorHandler(err, w, r)
				return
			}
			userID, err = m.Resolver.ResolveOrCreate(r.Context(), profile)
			if err != nil {
				m.AuthErrorHandler(err, w, r)
				return
			}
		}

		next.ServeHTTP(w, withAuth(r, &Auth{userID: userID, bearer: true, bearerToken: token}))
	})
}

// bearerToken extracts the token from the Authorization header. The scheme
// match is case-insensitive and surrounding whitespace is dropped; anything
// that is not a bearer credential yields "".
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
