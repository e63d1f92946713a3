package oauthgate

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Kind classifies authentication failures so error handlers can map them to
// HTTP statuses without string matching.
type Kind string

const (
	// KindProviderDenied means the provider returned an error on the callback.
	KindProviderDenied Kind = "provider_denied"
	// KindMissingCode means the callback arrived without an authorization code.
	KindMissingCode Kind = "missing_code"
	// KindStaleState means no redirect-state entry matched the callback's state
	// key. This is the CSRF guard firing: forged, replayed or expired callbacks
	// all land here.
	KindStaleState Kind = "stale_state"
	// KindTokenExchange means a token endpoint call failed or returned no
	// access token.
	KindTokenExchange Kind = "token_exchange"
	// KindProfileFetch means the profile endpoint call failed.
	KindProfileFetch Kind = "profile_fetch"
	// KindMissingToken means a non-whitelisted bearer request carried no token.
	KindMissingToken Kind = "missing_token"
	// KindConfiguration means no path policy entry matched the request path.
	// Always fatal to the request, never defaulted to allow or deny.
	KindConfiguration Kind = "configuration"
)

// Error is a classified authentication failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// HasKind reports whether err is (or wraps) an Error of the given kind.
func HasKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// ErrorHandler decides the HTTP response for a failed authentication step.
// Callback and bearer failures are always routed here instead of bubbling to
// a generic framework handler.
type ErrorHandler func(err error, w http.ResponseWriter, r *http.Request)

// DefaultErrorHandler logs the failure and responds with statusCode and the
// body "Error".
func DefaultErrorHandler(statusCode int) ErrorHandler {
	return func(err error, w http.ResponseWriter, r *http.Request) {
		slog.Error("auth error", "status", statusCode, "path", r.URL.Path, "error", err)
		http.Error(w, "Error", statusCode)
	}
}
