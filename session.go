package oauthgate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alexedwards/scs/v2"
)

// Session keys used by the authorize middleware.
const (
	sessionUserKey     = "oauthgate.user"
	sessionStatePrefix = "oauthgate.state."
)

// Identity is the session-bound identity record, created in the callback
// handler on a successful token exchange and overwritten (never merged) on
// every refresh. A nil ExpiresAt means no local expiry is tracked.
type Identity struct {
	UserID       string     `json:"userId"`
	AccessToken  string     `json:"accessToken,omitempty"`
	RefreshToken string     `json:"refreshToken,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

// identityFromTokens builds the record written after an exchange or refresh.
func identityFromTokens(userID string, tokens *TokenResponse, now time.Time) Identity {
	identity := Identity{
		UserID:       userID,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	if tokens.ExpiresIn > 0 {
		expiresAt := now.Add(time.Duration(tokens.ExpiresIn) * time.Second)
		identity.ExpiresAt = &expiresAt
	}
	return identity
}

func putSessionIdentity(ctx context.Context, session *scs.SessionManager, identity Identity) {
	// Identity marshals without error by construction.
	data, _ := json.Marshal(identity)
	session.Put(ctx, sessionUserKey, data)
}

func getSessionIdentity(ctx context.Context, session *scs.SessionManager) (Identity, bool) {
	data := session.GetBytes(ctx, sessionUserKey)
	if len(data) == 0 {
		return Identity{}, false
	}
	var identity Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return Identity{}, false
	}
	return identity, true
}

// SessionStateStore keeps pending redirect targets inside the user's scs
// session. No extra backend is needed, but the state is tied to cookie
// presence: a browser that drops the session cookie loses its pending
// authorization attempts.
type SessionStateStore struct {
	Session *scs.SessionManager
}

// NewSessionStateStore returns a state store embedded in session.
func NewSessionStateStore(session *scs.SessionManager) *SessionStateStore {
	return &SessionStateStore{Session: session}
}

// Set stores url under stateKey in the request's session. ctx must carry the
// loaded session.
func (s *SessionStateStore) Set(ctx context.Context, stateKey, url string) error {
	s.Session.Put(ctx, sessionStatePrefix+stateKey, url)
	return nil
}

// Get returns the stored target, or ErrNoState when absent.
func (s *SessionStateStore) Get(ctx context.Context, stateKey string) (string, error) {
	key := sessionStatePrefix + stateKey
	if !s.Session.Exists(ctx, key) {
		return "", ErrNoState
	}
	return s.Session.GetString(ctx, key), nil
}

// Del removes the entry; deleting an absent key is a no-op.
func (s *SessionStateStore) Del(ctx context.Context, stateKey string) error {
	s.Session.Remove(ctx, sessionStatePrefix+stateKey)
	return nil
}
