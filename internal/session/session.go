// Package session holds the state of one browsing session: who is signed
// in, whose bookmarks are shown, how they are presented, and the bookmark
// store itself. Every remote action goes through an AppSession.
package session

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikbrunner/boomarks/internal/atproto"
	"github.com/nikbrunner/boomarks/internal/auth"
	"github.com/nikbrunner/boomarks/internal/identity"
	"github.com/nikbrunner/boomarks/internal/logger"
	"github.com/nikbrunner/boomarks/internal/model"
	"github.com/nikbrunner/boomarks/internal/record"
	"github.com/nikbrunner/boomarks/internal/render"
)

// Repo is the repository protocol surface the session needs.
type Repo interface {
	DescribeRepo(ctx context.Context, repo string) (*atproto.RepoDescription, error)
	ListRecords(ctx context.Context, repo, collection string) ([]atproto.Record, error)
	CreateRecord(ctx context.Context, repo, collection string, record any) (*atproto.RecordRef, error)
	DeleteRecord(ctx context.Context, repo, collection, rkey string) error
}

// RepoFactory returns a Repo talking to pds. authenticated selects a
// client that carries the session's credentials.
type RepoFactory func(pds string, authenticated bool) Repo

// ProfileFetcher fetches public profiles.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, actor string) (*atproto.Profile, error)
}

// Resolver maps a handle to its DID and PDS.
type Resolver interface {
	Resolve(ctx context.Context, input string) (*identity.Identity, error)
}

// Revoker ends the signed-in session.
type Revoker interface {
	Revoke(ctx context.Context) error
}

// AuthState says whether writes are possible at all.
type AuthState int

const (
	Anonymous AuthState = iota
	Authenticated
)

func (a AuthState) String() string {
	if a == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Viewed is the identity whose bookmarks are displayed.
type Viewed struct {
	Self    bool
	DID     string
	Handle  string
	PDS     string
	Profile *atproto.Profile
}

// ViewContext is the user-controlled presentation state.
type ViewContext struct {
	Viewed       Viewed
	SortReversed bool
	Layout       render.Layout
}

// Deps are the collaborators of an AppSession.
type Deps struct {
	Repos    RepoFactory
	Profiles ProfileFetcher
	Resolver Resolver
	Auth     Revoker
	Logger   logger.Logger
	Now      func() time.Time
}

// Options seed the view context.
type Options struct {
	Layout       render.Layout
	SortReversed bool
}

// AppSession is safe for concurrent use; remote calls run without the
// lock held and commit their results under it.
type AppSession struct {
	deps Deps
	log  logger.Logger

	mu         sync.Mutex
	auth       *auth.Session
	view       ViewContext
	store      *model.Store
	generation uint64
	deleting   map[string]bool
	notice     string
}

// New creates a session. A nil signedIn starts an anonymous session.
func New(deps Deps, signedIn *auth.Session, opts Options) *AppSession {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &AppSession{
		deps:     deps,
		log:      deps.Logger,
		store:    model.NewStore(),
		deleting: make(map[string]bool),
		view: ViewContext{
			SortReversed: opts.SortReversed,
			Layout:       opts.Layout,
		},
	}
	if signedIn != nil {
		s.auth = signedIn
		s.view.Viewed = selfView(signedIn)
	}
	return s
}

func selfView(a *auth.Session) Viewed {
	return Viewed{Self: true, DID: a.DID, Handle: a.Handle, PDS: a.PDS}
}

// AuthState reports whether a user is signed in.
func (s *AppSession) AuthState() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auth == nil {
		return Anonymous
	}
	return Authenticated
}

// View returns a copy of the view context.
func (s *AppSession) View() ViewContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Writable reports whether create and delete are allowed right now.
func (s *AppSession) Writable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writableLocked()
}

func (s *AppSession) writableLocked() bool {
	return s.auth != nil && s.view.Viewed.Self
}

// Bookmarks returns a snapshot of the store.
func (s *AppSession) Bookmarks() []model.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Count returns the number of bookmarks held.
func (s *AppSession) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// Notice returns the last user-visible notice.
func (s *AppSession) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

func (s *AppSession) setNotice(err error) {
	if n := Notice(err); n != "" {
		s.notice = n
	}
}

// ToggleSort flips between newest-first and oldest-first.
func (s *AppSession) ToggleSort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.SortReversed = !s.view.SortReversed
	return s.view.SortReversed
}

// ToggleLayout flips between list and grid.
func (s *AppSession) ToggleLayout() render.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Layout = s.view.Layout.Toggle()
	return s.view.Layout
}

// SetPresentation applies layout and sort order restored from shared
// view state.
func (s *AppSession) SetPresentation(layout render.Layout, sortReversed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Layout = layout
	s.view.SortReversed = sortReversed
}

// Render builds the view model of the current store.
func (s *AppSession) Render(now time.Time, term string) render.View {
	s.mu.Lock()
	bookmarks := s.store.Snapshot()
	p := render.Params{
		Layout:       s.view.Layout,
		SortReversed: s.view.SortReversed,
		IsSelf:       s.writableLocked(),
		Term:         term,
		Now:          now,
	}
	s.mu.Unlock()

	return render.Render(bookmarks, p)
}

// action returns a logger tagged with a fresh action id.
func (s *AppSession) action(op string) logger.Logger {
	return s.log.With(
		logger.String("action", uuid.NewString()),
		logger.String("op", op),
	)
}

// LoadSelf shows and reloads the signed-in user's bookmarks.
func (s *AppSession) LoadSelf(ctx context.Context) error {
	s.mu.Lock()
	if s.auth == nil {
		s.mu.Unlock()
		return ErrAuthFailure
	}
	target := selfView(s.auth)
	s.mu.Unlock()

	return s.load(ctx, "load_self", target)
}

// ViewGuest resolves handle and shows that user's public bookmarks. An
// empty handle returns to the user's own bookmarks. A failed resolution
// leaves the view unchanged.
func (s *AppSession) ViewGuest(ctx context.Context, handle string) error {
	handle = identity.Normalize(handle)
	if handle == "" {
		return s.ReturnToSelf(ctx)
	}

	log := s.action("view_guest")
	log.Info("resolving guest", logger.String("handle", handle))

	id, err := s.deps.Resolver.Resolve(ctx, handle)
	if err != nil {
		log.Warn("guest resolution failed", logger.Error(err))
		err = fmt.Errorf("%w: %s", ErrResolutionFailure, handle)
		s.mu.Lock()
		s.setNotice(err)
		s.mu.Unlock()
		return err
	}

	var profile *atproto.Profile
	if s.deps.Profiles != nil {
		profile, err = s.deps.Profiles.GetProfile(ctx, id.DID)
		if err != nil {
			log.Warn("profile fetch failed", logger.String("did", id.DID), logger.Error(err))
			profile = nil
		}
	}

	return s.load(ctx, "load_guest", Viewed{
		DID:     id.DID,
		Handle:  handle,
		PDS:     id.PDS,
		Profile: profile,
	})
}

// ReturnToSelf leaves a guest view. The guest profile is dropped and no
// profile is fetched. Anonymous sessions end up with an empty view.
func (s *AppSession) ReturnToSelf(ctx context.Context) error {
	s.mu.Lock()
	if s.auth == nil {
		s.generation++
		s.view.Viewed = Viewed{}
		s.store.Clear()
		s.notice = ""
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	return s.LoadSelf(ctx)
}

// load switches the view to target and replaces the store with its
// bookmarks. Only the most recent load may commit.
func (s *AppSession) load(ctx context.Context, op string, target Viewed) error {
	log := s.action(op).With(logger.String("did", target.DID))

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.view.Viewed = target
	s.mu.Unlock()

	start := s.deps.Now()
	bookmarks, err := s.fetch(ctx, target)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		log.Debug("discarding stale load", logger.Int("generation", int(gen)))
		return ErrStale
	}

	if err != nil {
		s.store.Clear()
		s.setNotice(err)
		log.Warn("load failed", logger.Error(err))
		return err
	}

	s.store.Replace(bookmarks)
	s.notice = ""
	log.Info("loaded bookmarks",
		logger.Int("count", len(bookmarks)),
		logger.Duration("elapsed", s.deps.Now().Sub(start)))
	return nil
}

func (s *AppSession) fetch(ctx context.Context, target Viewed) ([]model.Bookmark, error) {
	repo := s.deps.Repos(target.PDS, target.Self)

	desc, err := repo.DescribeRepo(ctx, target.DID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if len(desc.Collections) > 0 && !slices.Contains(desc.Collections, record.LexiconID) {
		return nil, ErrLexiconAbsent
	}

	records, err := repo.ListRecords(ctx, target.DID, record.LexiconID)
	if err != nil {
		if atproto.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %v", ErrLexiconAbsent, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return record.ToLocalAll(records), nil
}

// Create stores a new bookmark and appends it on success. The store is
// untouched when the PDS refuses.
func (s *AppSession) Create(ctx context.Context, subject, title, rawTags string) (model.Bookmark, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return model.Bookmark{}, ErrEmptySubject
	}

	s.mu.Lock()
	if !s.writableLocked() {
		s.mu.Unlock()
		return model.Bookmark{}, ErrReadOnly
	}
	self := s.auth
	s.mu.Unlock()

	log := s.action("create").With(logger.String("did", self.DID))

	draft := model.NewBookmark(model.NewBookmarkParams{
		Subject: subject,
		Title:   strings.TrimSpace(title),
		Tags:    model.ParseTags(rawTags),
	}, s.deps.Now())
	payload := record.ToRemote(draft, s.deps.Now())

	ref, err := s.deps.Repos(self.PDS, true).CreateRecord(ctx, self.DID, record.LexiconID, payload)
	if err != nil {
		err = fmt.Errorf("%w: create: %v", ErrRejected, err)
		log.Warn("create rejected", logger.Error(err))
		s.mu.Lock()
		s.setNotice(err)
		s.mu.Unlock()
		return model.Bookmark{}, err
	}

	created := record.FromCreated(*ref, payload)

	s.mu.Lock()
	// The user may have switched to a guest view meanwhile.
	if s.view.Viewed.Self && s.view.Viewed.DID == self.DID {
		s.store.Append(created)
	}
	s.notice = ""
	s.mu.Unlock()

	log.Info("created bookmark", logger.String("uri", created.RecordURI))
	return created, nil
}

// Delete removes the bookmark with recordURI. Unknown URIs and deletes
// already in flight are no-ops.
func (s *AppSession) Delete(ctx context.Context, recordURI string) error {
	s.mu.Lock()
	if !s.writableLocked() {
		s.mu.Unlock()
		return ErrReadOnly
	}
	if s.deleting[recordURI] || s.store.GetBookmarkByURI(recordURI) == nil {
		s.mu.Unlock()
		return nil
	}
	s.deleting[recordURI] = true
	self := s.auth
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.deleting, recordURI)
		s.mu.Unlock()
	}()

	log := s.action("delete").With(logger.String("did", self.DID), logger.String("uri", recordURI))

	err := s.deps.Repos(self.PDS, true).DeleteRecord(ctx, self.DID, record.LexiconID, model.RecordKey(recordURI))
	if err != nil {
		err = fmt.Errorf("%w: delete: %v", ErrRejected, err)
		log.Warn("delete rejected", logger.Error(err))
		s.mu.Lock()
		s.setNotice(err)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.store.Remove(recordURI)
	s.notice = ""
	s.mu.Unlock()

	log.Info("deleted bookmark")
	return nil
}

// Logout revokes the session and discards all state.
func (s *AppSession) Logout(ctx context.Context) error {
	log := s.action("logout")

	var err error
	if s.deps.Auth != nil {
		err = s.deps.Auth.Revoke(ctx)
	}

	s.mu.Lock()
	s.generation++
	s.auth = nil
	s.view.Viewed = Viewed{}
	s.store.Clear()
	s.deleting = make(map[string]bool)
	s.notice = ""
	s.mu.Unlock()

	if err != nil {
		log.Warn("revoke failed", logger.Error(err))
		return err
	}
	log.Info("logged out")
	return nil
}

// SetNotice records an adapter-level notice, such as a clipboard failure.
func (s *AppSession) SetNotice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = msg
}
