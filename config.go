package oauthgate

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries the provider and middleware settings, parsed from
// environment variables.
type Config struct {
	ClientID     string `env:"OAUTH2_CLIENT_ID"`
	ClientSecret string `env:"OAUTH2_CLIENT_SECRET"`
	AuthorizeURL string `env:"OAUTH2_AUTHORIZE_URL"`
	TokenURL     string `env:"OAUTH2_TOKEN_URL"`
	ProfileURL   string `env:"OAUTH2_PROFILE_URL"`

	Scopes      []string `env:"OAUTH2_SCOPES" envSeparator:" " envDefault:"openid profile email"`
	CallbackURI string   `env:"OAUTH2_CALLBACK_URI" envDefault:"/oauth2/callback"`

	// ForwardedHeaderPrefix namespaces the X-Forwarded-* headers, for proxies
	// that rewrite them.
	ForwardedHeaderPrefix string `env:"OAUTH2_FORWARDED_HEADER_PREFIX"`

	// RedisURL, when set, selects the Redis-backed redirect-state store.
	RedisURL string `env:"REDIS_URL"`
	// StateTTL bounds how long an abandoned authorization attempt is kept.
	StateTTL time.Duration `env:"OAUTH2_STATE_TTL" envDefault:"10m"`

	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`
}

// ConfigFromEnv parses Config from the process environment.
func ConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// NewProvider builds the provider client described by the config.
func (c *Config) NewProvider() *Provider {
	return &Provider{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		AuthorizeURL: c.AuthorizeURL,
		TokenURL:     c.TokenURL,
		ProfileURL:   c.ProfileURL,
		Scopes:       c.Scopes,
	}
}
