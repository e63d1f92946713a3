// Package oauthgate is an OAuth2 authorization-code front-door for Go HTTP
// services. It intercepts unauthenticated requests, drives the identity
// provider's authorize/token/refresh/profile endpoints, binds the result to a
// local user record, and attaches a reusable access-token accessor to every
// authenticated request.
//
// # Architecture
//
// Provider: the client for the three outbound provider calls (code exchange,
// token refresh, profile download) plus the authorize-URL builder.
//
// Resolver: finds or creates the local user for a downloaded profile and
// keeps the stored profile snapshot fresh. Persistence is supplied by the
// embedding application through the UserStore interface; Postgres and GORM
// backends ship in the stores subdirectories.
//
// RedirectStateStore: the CSRF binding for the authorization-code flow. A
// random state key maps to the URL the user was originally trying to reach,
// consumed exactly once by the callback. Two implementations are provided:
// one embedded in the scs session and one on Redis with automatic expiry.
//
// AuthorizeMiddleware: the cookie/session flow. Requests are classified by an
// ordered path policy (whitelist, fail-fast, normal); unauthenticated browser
// requests are redirected to the provider and resumed at the callback
// endpoint.
//
// BearerMiddleware: the stateless API flow. The bearer token is validated
// against the provider's profile endpoint on every request; no session state
// is kept.
//
// # Basic Usage
//
//	session := scs.New()
//	provider := cfg.NewProvider()
//	resolver := &oauthgate.Resolver{Store: users}
//
//	authz := &oauthgate.AuthorizeMiddleware{
//	    Paths: []oauthgate.PathConfig{
//	        {Pattern: regexp.MustCompile(`/healthz`), Whitelist: true},
//	        {Pattern: regexp.MustCompile(`/api/`), FailFast: true},
//	        {Pattern: regexp.MustCompile(`.`)},
//	    },
//	    Provider: provider,
//	    Resolver: resolver,
//	    Session:  session,
//	}
//	handler := session.LoadAndSave(authz.Handler(appRoutes))
//
// Downstream handlers read the per-request identity:
//
//	auth := oauthgate.FromRequest(r)
//	userID := auth.UserID()
//	token, err := auth.AccessToken(r.Context())
//
// AccessToken refreshes the provider token on demand in the session flow and
// returns the presented token verbatim in the bearer flow.
//
// # Testing
//
// Both middlewares can be tested without a running HTTP server using
// httptest.NewRequest, httptest.ResponseRecorder and a mock provider built on
// httptest.Server. The Redis state store is testable against miniredis.
package oauthgate
