package oauthgate_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	"github.com/panyam/oauthgate"
)

// mockProvider is a mock OAuth provider server handling:
// - /token for code exchange and refresh
// - /userinfo for profile download
// It counts calls so tests can assert which provider endpoints were hit.
type mockProvider struct {
	server *httptest.Server

	mu              sync.Mutex
	tokenResponse   map[string]any
	profileResponse map[string]any
	tokenRawBody    string // overrides tokenResponse when set
	profileStatus   int    // defaults to 200
	tokenCalls      int
	profileCalls    int
	lastTokenForm   url.Values
	lastAuthHeader  string
}

func newMockProvider() *mockProvider {
	mock := &mockProvider{
		tokenResponse: map[string]any{
			"access_token":  "mock_access_token",
			"token_type":    "Bearer",
			"expires_in":    3600,
			"refresh_token": "mock_refresh_token",
		},
		profileResponse: map[string]any{
			"sub":   "subject-1",
			"email": "testuser@example.com",
			"name":  "Test User",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		defer mock.mu.Unlock()
		mock.tokenCalls++
		r.ParseForm()
		mock.lastTokenForm = r.PostForm
		if mock.tokenRawBody != "" {
			fmt.Fprint(w, mock.tokenRawBody)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mock.tokenResponse)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		defer mock.mu.Unlock()
		mock.profileCalls++
		mock.lastAuthHeader = r.Header.Get("Authorization")
		if mock.profileStatus != 0 && mock.profileStatus != http.StatusOK {
			http.Error(w, "profile fetch failed", mock.profileStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mock.profileResponse)
	})

	mock.server = httptest.NewServer(mux)
	return mock
}

func (m *mockProvider) Close() { m.server.Close() }

func (m *mockProvider) provider() *oauthgate.Provider {
	return &oauthgate.Provider{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		AuthorizeURL: m.server.URL + "/authorize",
		TokenURL:     m.server.URL + "/token",
		ProfileURL:   m.server.URL + "/userinfo",
		Scopes:       []string{"openid", "profile", "email"},
	}
}

// memUser is an in-memory local user record.
type memUser struct {
	id    string
	email string
}

func (u *memUser) Id() string    { return u.id }
func (u *memUser) Email() string { return u.email }

// memUsers is an in-memory UserStore with call counters.
type memUsers struct {
	mu       sync.Mutex
	nextID   int
	byEmail  map[string]*memUser
	byID     map[string]*memUser
	profiles map[string]*oauthgate.OauthProfile

	addCalls    int
	upsertCalls int
	failWith    error // when set, every call fails
}

func newMemUsers() *memUsers {
	return &memUsers{
		byEmail:  map[string]*memUser{},
		byID:     map[string]*memUser{},
		profiles: map[string]*oauthgate.OauthProfile{},
	}
}

func (s *memUsers) GetUserByEmail(ctx context.Context, email string) (oauthgate.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	user, ok := s.byEmail[email]
	if !ok {
		return nil, oauthgate.ErrNotFound
	}
	return user, nil
}

func (s *memUsers) AddUserByEmail(ctx context.Context, email string, profile *oauthgate.Profile) (oauthgate.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.addCalls++
	s.nextID++
	user := &memUser{id: fmt.Sprintf("user-%d", s.nextID), email: email}
	s.byID[user.id] = user
	if email != "" {
		s.byEmail[email] = user
	}
	return user, nil
}

func (s *memUsers) GetOauthProfileBySub(ctx context.Context, sub string) (*oauthgate.OauthProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	profile, ok := s.profiles[sub]
	if !ok {
		return nil, oauthgate.ErrNotFound
	}
	return profile, nil
}

func (s *memUsers) UpsertOauthProfile(ctx context.Context, sub, userID, profileJSON string) (*oauthgate.OauthProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.upsertCalls++
	profile := &oauthgate.OauthProfile{Sub: sub, UserID: userID, ProfileJSON: profileJSON}
	s.profiles[sub] = profile
	return profile, nil
}

// memStates is an in-memory RedirectStateStore.
type memStates struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemStates() *memStates {
	return &memStates{m: map[string]string{}}
}

func (s *memStates) Set(ctx context.Context, stateKey, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[stateKey] = url
	return nil
}

func (s *memStates) Get(ctx context.Context, stateKey string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url, ok := s.m[stateKey]
	if !ok {
		return "", oauthgate.ErrNoState
	}
	return url, nil
}

func (s *memStates) Del(ctx context.Context, stateKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, stateKey)
	return nil
}

func (s *memStates) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
