package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikbrunner/boomarks/internal/atproto"
	"github.com/nikbrunner/boomarks/internal/auth"
	"github.com/nikbrunner/boomarks/internal/identity"
	"github.com/nikbrunner/boomarks/internal/logger"
	"github.com/nikbrunner/boomarks/internal/render"
	"github.com/nikbrunner/boomarks/internal/session"
	"github.com/nikbrunner/boomarks/internal/storage"
)

// env holds the process-wide collaborators shared by every subcommand.
type env struct {
	cfg      *storage.Config
	log      logger.Logger
	store    storage.Storage
	redis    *redis.Client
	http     *http.Client
	resolver *identity.Resolver
	authn    *auth.Authenticator
}

type envOptions struct {
	logToStderr bool // serve has no TUI competing for the terminal
}

// newEnv loads configuration and opens storage, the identity cache and
// the authenticator. Callers must close it.
func newEnv(ctx context.Context, opts envOptions) (*env, error) {
	cfgPath := configPath
	if cfgPath == "" {
		p, err := storage.DefaultConfigFilePath()
		if err != nil {
			return nil, fmt.Errorf("config path: %w", err)
		}
		cfgPath = p
	}

	cfg, err := storage.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv(os.Getenv)
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", cfgPath, err)
	}

	logPath := cfg.Log.File
	if opts.logToStderr {
		logPath = ""
	} else if logPath == "" {
		p, err := storage.DefaultLogFilePath()
		if err != nil {
			return nil, fmt.Errorf("log path: %w", err)
		}
		logPath = p
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty, logPath)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	e := &env{
		cfg:  cfg,
		log:  log,
		http: &http.Client{Timeout: cfg.HTTPTimeout},
	}

	e.store, err = storage.OpenStorage(cfg.Storage.Backend, "")
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}

	var cache identity.Cache
	if cfg.Cache.RedisAddr != "" {
		client, err := identity.ConnectRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			// The memory cache is a fine fallback for a CLI.
			log.Warn("redis unavailable, caching identities in memory", logger.Error(err))
		} else {
			e.redis = client
			cache = identity.NewRedisCache(client)
		}
	}

	e.resolver = identity.NewResolver(identity.ResolverParams{
		Service:      cfg.Service,
		PLCDirectory: cfg.PLCDirectory,
		HTTP:         e.http,
		Cache:        cache,
		TTL:          cfg.Cache.TTL,
		Logger:       log.With(logger.String("component", "identity")),
	})

	e.authn = auth.NewAuthenticator(auth.AuthenticatorParams{
		Resolver: e.resolver,
		Store:    e.store,
		HTTP:     e.http,
		Logger:   log.With(logger.String("component", "auth")),
	})

	return e, nil
}

func (e *env) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
	if e.store != nil {
		_ = e.store.Close()
	}
	_ = e.log.Sync()
}

// restore returns the persisted session, or nil when signed out. A
// session the PDS rejects is reported and treated as signed out.
func (e *env) restore(ctx context.Context) *auth.Session {
	s, err := e.authn.Init(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (run 'boomarks login')\n", err)
		return nil
	}
	return s
}

// newSession builds an AppSession for signedIn, which may be nil.
func (e *env) newSession(ctx context.Context, signedIn *auth.Session, opts session.Options) *session.AppSession {
	return session.New(session.Deps{
		Repos: func(pds string, authenticated bool) session.Repo {
			if authenticated {
				return atproto.New(pds, e.authn.HTTPClient(ctx))
			}
			return atproto.New(pds, e.http)
		},
		Profiles: atproto.New(e.cfg.Service, e.http),
		Resolver: e.resolver,
		Auth:     e.authn,
		Logger:   e.log.With(logger.String("component", "session")),
		Now:      time.Now,
	}, signedIn, opts)
}

// presentation returns the configured layout and order; flags override.
func (e *env) presentation(grid, oldest bool) session.Options {
	layout, err := render.ParseLayout(e.cfg.Layout)
	if err != nil {
		e.log.Warn("invalid layout in config, using list", logger.String("layout", e.cfg.Layout))
	}
	if grid {
		layout = render.LayoutGrid
	}
	return session.Options{
		Layout:       layout,
		SortReversed: e.cfg.SortReversed || oldest,
	}
}
