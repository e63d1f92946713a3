package oauthgate

import (
	"context"
	"errors"
)

// ErrNotFound is returned by UserStore lookups when no record matches.
var ErrNotFound = errors.New("oauthgate: not found")

// ErrNoState is returned by RedirectStateStore.Get when no entry exists for a
// state key. An entry that expired before use is indistinguishable from one
// that was never written.
var ErrNoState = errors.New("oauthgate: no state found")

// User is a local user record owned by the embedding application. Records are
// created at most once per distinct email (or per distinct provider subject
// for email-less profiles) and are never deleted by this package.
type User interface {
	Id() string
	Email() string
}

// OauthProfile is the stored provider-profile snapshot for one
// (provider subject, local user) pairing. ProfileJSON holds the full
// serialized profile and is overwritten on every successful authentication;
// no history is kept.
type OauthProfile struct {
	Sub         string
	UserID      string
	ProfileJSON string
}

// UserStore is the persistence contract consumed during user resolution.
// Lookups return ErrNotFound (possibly wrapped) when no record matches.
// Implementations are shared across concurrent requests and rely on their
// backend's own consistency guarantees (upsert semantics, unique indexes).
type UserStore interface {
	// GetUserByEmail finds the user owning the given email address.
	GetUserByEmail(ctx context.Context, email string) (User, error)

	// AddUserByEmail creates a new user. The full downloaded profile is passed
	// so implementations can seed additional attributes. email may be empty
	// for providers that do not disclose one.
	AddUserByEmail(ctx context.Context, email string, profile *Profile) (User, error)

	// GetOauthProfileBySub finds the stored profile snapshot for a provider
	// subject.
	GetOauthProfileBySub(ctx context.Context, sub string) (*OauthProfile, error)

	// UpsertOauthProfile creates or overwrites the snapshot for (sub, userID).
	UpsertOauthProfile(ctx context.Context, sub, userID, profileJSON string) (*OauthProfile, error)
}

// ReconcileUserFunc updates an existing user's attributes from a freshly
// stored profile snapshot. The Resolver invokes it only for users that
// already existed before the current login.
type ReconcileUserFunc func(ctx context.Context, userID string, profile *OauthProfile) error

// RedirectStateStore is the durable short-lived mapping from an opaque state
// key to the URL the user was originally trying to reach. An entry is created
// when an unauthenticated request is redirected to the provider and consumed
// exactly once by the callback.
//
// For request-scoped backends (the session store) ctx must be the request's
// context.
type RedirectStateStore interface {
	// Set persists the pending redirect target under stateKey.
	Set(ctx context.Context, stateKey, url string) error

	// Get returns the stored target, or ErrNoState when absent.
	Get(ctx context.Context, stateKey string) (string, error)

	// Del removes the entry. Deleting an absent key is not an error.
	Del(ctx context.Context, stateKey string) error
}
