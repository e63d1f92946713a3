package oauthgate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// TokenResponse is the provider's token endpoint response, decoded
// best-effort. The client does not validate it: callers must check that
// AccessToken is present.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

// Profile is the provider-asserted identity. Sub is the provider's stable
// subject identifier and is always present; Email may be absent for providers
// that do not disclose one.
type Profile struct {
	Sub           string `json:"sub"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Nickname      string `json:"nickname,omitempty"`
	Picture       string `json:"picture,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`

	// Raw is the undecoded response body. Stored snapshots use it so provider
	// fields this struct does not model survive the round trip.
	Raw json.RawMessage `json:"-"`
}

// JSON returns the serialized profile, preferring the provider's own bytes.
func (p *Profile) JSON() string {
	if len(p.Raw) > 0 {
		return string(p.Raw)
	}
	data, _ := json.Marshal(p)
	return string(data)
}

// Provider performs the outbound calls to the OAuth2 identity provider. All
// calls are side-effect-free with respect to local state; they never retry
// and never cache.
type Provider struct {
	ClientID     string
	ClientSecret string

	// AuthorizeURL is the browser redirect target for authorization requests.
	AuthorizeURL string
	// TokenURL handles code-for-token and refresh-token exchanges.
	TokenURL string
	// ProfileURL returns the profile for a bearer access token.
	ProfileURL string

	Scopes []string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func (p *Provider) httpClient() *http.Client {
	if p.HTTPClient != nil {
		return p.HTTPClient
	}
	return http.DefaultClient
}

func (p *Provider) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// AuthCodeURL builds the authorization request URL with response_type=code,
// client_id, redirect_uri, scope and state. uiLocales is passed through when
// non-empty (auth0 and friends honor it).
func (p *Provider) AuthCodeURL(redirectURI, stateKey, uiLocales string) string {
	cfg := oauth2.Config{
		ClientID:    p.ClientID,
		RedirectURL: redirectURI,
		Scopes:      p.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  p.AuthorizeURL,
			TokenURL: p.TokenURL,
		},
	}
	var opts []oauth2.AuthCodeOption
	if uiLocales != "" {
		opts = append(opts, oauth2.SetAuthURLParam("ui_locales", uiLocales))
	}
	return cfg.AuthCodeURL(stateKey, opts...)
}

// ExchangeCode swaps an authorization code for tokens. Transport failures and
// unparsable bodies surface as KindTokenExchange errors; a parsed response
// with no access token does not.
func (p *Provider) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}
	resp, err := p.postToken(ctx, form)
	if err != nil {
		return nil, newError(KindTokenExchange, "token exchange failed", err)
	}
	return resp, nil
}

// RefreshToken exchanges a refresh token for a new access token. Same failure
// contract as ExchangeCode.
func (p *Provider) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	resp, err := p.postToken(ctx, form)
	if err != nil {
		return nil, newError(KindTokenExchange, "token refresh failed", err)
	}
	return resp, nil
}

func (p *Provider) postToken(ctx context.Context, form url.Values) (*TokenResponse, error) {
	form.Set("client_id", p.ClientID)
	form.Set("client_secret", p.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := p.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	p.logger().Debug("token endpoint response", "status", res.StatusCode)

	// Non-2xx bodies are decoded best-effort like any other: the caller checks
	// for a present access token.
	var tr TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &tr, nil
}

// FetchProfile downloads the profile asserted by accessToken.
func (p *Provider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ProfileURL, nil)
	if err != nil {
		return nil, newError(KindProfileFetch, "profile download failed", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient().Do(req)
	if err != nil {
		return nil, newError(KindProfileFetch, "profile download failed", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, newError(KindProfileFetch, "profile download failed", err)
	}
	p.logger().Debug("profile endpoint response", "status", res.StatusCode)

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, newError(KindProfileFetch, "decode profile response", err)
	}
	profile.Raw = body
	return &profile, nil
}
