// Package auth signs a user in against their PDS and keeps the session
// usable: persisted across runs, refreshed when the access token expires.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/nikbrunner/boomarks/internal/atproto"
	"github.com/nikbrunner/boomarks/internal/identity"
	"github.com/nikbrunner/boomarks/internal/logger"
)

var (
	ErrAuthFailure = errors.New("authentication failed")
	ErrNotSignedIn = errors.New("not signed in")
)

// Session is an authenticated account on its PDS.
type Session struct {
	DID        string    `json:"did"`
	Handle     string    `json:"handle"`
	PDS        string    `json:"pds"`
	AccessJwt  string    `json:"accessJwt"`
	RefreshJwt string    `json:"refreshJwt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Store persists the current session. Load returns nil, nil when none
// is stored.
type Store interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// Resolver finds the PDS of a handle or DID.
type Resolver interface {
	Resolve(ctx context.Context, input string) (*identity.Identity, error)
}

// Authenticator owns the lifecycle of one session.
type Authenticator struct {
	resolver Resolver
	store    Store
	http     *http.Client
	log      logger.Logger
	now      func() time.Time

	mu      sync.Mutex
	session *Session
}

// AuthenticatorParams holds the Authenticator dependencies.
type AuthenticatorParams struct {
	Resolver Resolver
	Store    Store
	HTTP     *http.Client
	Logger   logger.Logger
	Now      func() time.Time
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(params AuthenticatorParams) *Authenticator {
	a := &Authenticator{
		resolver: params.Resolver,
		store:    params.Store,
		http:     params.HTTP,
		log:      params.Logger,
		now:      params.Now,
	}
	if a.http == nil {
		a.http = http.DefaultClient
	}
	if a.log == nil {
		a.log = logger.Nop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Init restores the persisted session and refreshes it. Returns nil, nil
// when nothing is stored. A session the PDS no longer accepts is cleared.
func (a *Authenticator) Init(ctx context.Context) (*Session, error) {
	stored, err := a.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if stored == nil {
		return nil, nil
	}

	refreshed, err := a.refresh(ctx, stored)
	if err != nil {
		if atproto.IsAuth(err) {
			a.log.Warn("stored session rejected, clearing", logger.String("did", stored.DID), logger.Error(err))
			if clearErr := a.store.Clear(); clearErr != nil {
				a.log.Error("clear session failed", logger.Error(clearErr))
			}
		}
		return nil, fmt.Errorf("%w: restore session: %v", ErrAuthFailure, err)
	}

	a.log.Info("session restored", logger.String("did", refreshed.DID), logger.String("pds", refreshed.PDS))
	return refreshed.clone(), nil
}

// SignIn creates a session for identifier with an app password.
func (a *Authenticator) SignIn(ctx context.Context, identifier, password string) (*Session, error) {
	id, err := a.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}

	tokens, err := atproto.New(id.PDS, a.http).CreateSession(ctx, identity.Normalize(identifier), password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}

	s := &Session{
		DID:        tokens.DID,
		Handle:     tokens.Handle,
		PDS:        id.PDS,
		AccessJwt:  tokens.AccessJwt,
		RefreshJwt: tokens.RefreshJwt,
		UpdatedAt:  a.now().UTC(),
	}
	if err := a.store.Save(s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	a.mu.Lock()
	a.session = s
	a.mu.Unlock()

	a.log.Info("signed in", logger.String("did", s.DID), logger.String("pds", s.PDS))
	return s.clone(), nil
}

// Revoke ends the session remotely (best effort) and forgets it locally.
func (a *Authenticator) Revoke(ctx context.Context) error {
	a.mu.Lock()
	s := a.session
	a.session = nil
	a.mu.Unlock()

	if s == nil {
		stored, err := a.store.Load()
		if err == nil {
			s = stored
		}
	}

	if s != nil && s.RefreshJwt != "" {
		if err := atproto.New(s.PDS, a.http).DeleteSession(ctx, s.RefreshJwt); err != nil {
			a.log.Warn("remote session delete failed", logger.String("did", s.DID), logger.Error(err))
		}
	}

	if err := a.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Session returns a copy of the active session, or nil.
func (a *Authenticator) Session() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.clone()
}

// HTTPClient returns a client that authorizes every request with the
// session's access token, refreshing it on expiry.
func (a *Authenticator) HTTPClient(ctx context.Context) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, &tokenSource{ctx: ctx, auth: a}),
			Base:   a.http.Transport,
		},
		Timeout: a.http.Timeout,
	}
}

// refresh exchanges s's refresh token and persists the result.
func (a *Authenticator) refresh(ctx context.Context, s *Session) (*Session, error) {
	tokens, err := atproto.New(s.PDS, a.http).RefreshSession(ctx, s.RefreshJwt)
	if err != nil {
		return nil, err
	}

	next := s.clone()
	next.AccessJwt = tokens.AccessJwt
	next.RefreshJwt = tokens.RefreshJwt
	if tokens.Handle != "" {
		next.Handle = tokens.Handle
	}
	next.UpdatedAt = a.now().UTC()

	if err := a.store.Save(next); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	a.mu.Lock()
	a.session = next
	a.mu.Unlock()

	a.log.Debug("session refreshed", logger.String("did", next.DID))
	return next, nil
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
