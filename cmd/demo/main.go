// Command demo runs a minimal host application protected by oauthgate.
//
// Browser routes go through the session authorization-code flow, /api/ routes
// through the stateless bearer flow. Configuration comes from the
// environment: OAUTH2_* for the provider, PG_* for the user store and
// REDIS_URL (optional) for the redirect-state store.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"regexp"

	"github.com/alexedwards/scs/v2"
	"github.com/caarlos0/env/v11"
	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"

	"github.com/panyam/oauthgate"
	"github.com/panyam/oauthgate/stores/pgstore"
	redisstate "github.com/panyam/oauthgate/stores/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg, err := oauthgate.ConfigFromEnv()
	if err != nil {
		return err
	}
	var pgcfg pgstore.Config
	if err := env.Parse(&pgcfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	db, err := pgstore.Open(pgcfg)
	if err != nil {
		return err
	}
	defer db.Close()

	users := pgstore.NewStore(db)
	if err := users.Migrate(context.Background()); err != nil {
		return err
	}

	session := scs.New()
	session.Lifetime = cfg.SessionLifetime

	provider := cfg.NewProvider()
	resolver := &oauthgate.Resolver{Store: users}

	// State store: Redis when configured, session-embedded otherwise.
	var states oauthgate.RedirectStateStore
	if cfg.RedisURL != "" {
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := goredis.NewClient(opts)
		defer client.Close()
		if err := redisstate.Healthcheck(context.Background(), client); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
		store := redisstate.NewStateStore(client)
		store.TTL = cfg.StateTTL
		states = store
	}

	paths := []oauthgate.PathConfig{
		{Pattern: regexp.MustCompile(`/healthz$`), Whitelist: true},
		{Pattern: regexp.MustCompile(`/api/`), FailFast: true},
		{Pattern: regexp.MustCompile(`.`)},
	}

	authz := &oauthgate.AuthorizeMiddleware{
		Paths:                 paths,
		Provider:              provider,
		Resolver:              resolver,
		Session:               session,
		States:                states,
		CallbackURI:           cfg.CallbackURI,
		ForwardedHeaderPrefix: cfg.ForwardedHeaderPrefix,
		Logger:                logger,
	}
	bearer := &oauthgate.BearerMiddleware{
		Paths:    paths,
		Provider: provider,
		Resolver: resolver,
		Logger:   logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		auth := oauthgate.FromRequest(r)
		token, err := auth.AccessToken(r.Context())
		if err != nil {
			http.Error(w, "Error", http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, "hello %s (token present: %v)\n", auth.UserID(), token != "")
	})

	api := mux.NewRouter()
	api.HandleFunc("/api/me", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "user=%s\n", oauthgate.FromRequest(r).UserID())
	})

	// /api/ is stateless bearer auth; everything else runs the session flow.
	root := mux.NewRouter()
	root.PathPrefix("/api/").Handler(bearer.Handler(api))
	root.PathPrefix("/").Handler(session.LoadAndSave(authz.Handler(router)))

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	timing := oauthgate.TimingMiddleware(logger)
	logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, timing(root))
}
