// Package pgstore implements the oauthgate user store on Postgres using
// database/sql and lib/pq.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/panyam/oauthgate"
)

// Config is the connection-pool configuration, parseable from environment
// variables.
type Config struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	Username string `env:"PG_USERNAME"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE"`

	SSLEnabled    bool   `env:"PG_SSL_ENABLED"`
	SSLVerify     bool   `env:"PG_SSL_VERIFY"`
	SSLCACertFile string `env:"PG_SSL_CA_CERT_FILE"`

	MinPool         int           `env:"PG_MINPOOL" envDefault:"0"`
	MaxPool         int           `env:"PG_MAXPOOL" envDefault:"3"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"5m"`
}

func (c Config) sslMode() string {
	if !c.SSLEnabled {
		return "disable"
	}
	if !c.SSLVerify {
		return "require"
	}
	return "verify-full"
}

// Open builds the connection pool and verifies connectivity. The pool is
// long-lived: construct it at startup, share it across requests and close it
// at shutdown.
func Open(cfg Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, cfg.sslMode())
	if cfg.SSLEnabled && cfg.SSLCACertFile != "" {
		dsn += " sslrootcert=" + cfg.SSLCACertFile
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxIdleConns(cfg.MinPool)
	db.SetMaxOpenConns(cfg.MaxPool)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Store implements oauthgate.UserStore.
type Store struct {
	DB *sql.DB
}

// NewStore wraps an existing pool.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Migrate creates the users and oauth_profiles tables if missing.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id          TEXT PRIMARY KEY,
			email       TEXT NOT NULL DEFAULT '',
			name        TEXT NOT NULL DEFAULT '',
			given_name  TEXT NOT NULL DEFAULT '',
			family_name TEXT NOT NULL DEFAULT '',
			picture     TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		// Email-less users (providers that withhold email) share the empty
		// string, so uniqueness only applies to real addresses.
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx
			ON users (email) WHERE email <> ''`,
		`CREATE TABLE IF NOT EXISTS oauth_profiles (
			sub          TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL REFERENCES users (id),
			profile_json TEXT NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// User is a row in the users table.
type User struct {
	ID           string
	EmailAddress string
	Name         string
	GivenName    string
	FamilyName   string
	Picture      string
}

func (u *User) Id() string    { return u.ID }
func (u *User) Email() string { return u.EmailAddress }

func (s *Store) GetUserByEmail(ctx context.Context, email string) (oauthgate.User, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, email, name, given_name, family_name, picture
		 FROM users WHERE email = $1 AND email <> ''`, email)

	var u User
	err := row.Scan(&u.ID, &u.EmailAddress, &u.Name, &u.GivenName, &u.FamilyName, &u.Picture)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oauthgate.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) AddUserByEmail(ctx context.Context, email string, profile *oauthgate.Profile) (oauthgate.User, error) {
	u := User{
		ID:           uuid.NewString(),
		EmailAddress: email,
	}
	if profile != nil {
		u.Name = profile.Name
		u.GivenName = profile.GivenName
		u.FamilyName = profile.FamilyName
		u.Picture = profile.Picture
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, name, given_name, family_name, picture)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.EmailAddress, u.Name, u.GivenName, u.FamilyName, u.Picture)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetOauthProfileBySub(ctx context.Context, sub string) (*oauthgate.OauthProfile, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT sub, user_id, profile_json FROM oauth_profiles WHERE sub = $1`, sub)

	var p oauthgate.OauthProfile
	err := row.Scan(&p.Sub, &p.UserID, &p.ProfileJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oauthgate.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpsertOauthProfile(ctx context.Context, sub, userID, profileJSON string) (*oauthgate.OauthProfile, error) {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO oauth_profiles (sub, user_id, profile_json, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (sub) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			profile_json = EXCLUDED.profile_json,
			updated_at = EXCLUDED.updated_at`,
		sub, userID, profileJSON)
	if err != nil {
		return nil, err
	}
	return &oauthgate.OauthProfile{Sub: sub, UserID: userID, ProfileJSON: profileJSON}, nil
}
