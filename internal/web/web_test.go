package web_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikbrunner/boomarks/internal/atproto"
	"github.com/nikbrunner/boomarks/internal/auth"
	"github.com/nikbrunner/boomarks/internal/identity"
	"github.com/nikbrunner/boomarks/internal/record"
	"github.com/nikbrunner/boomarks/internal/render"
	"github.com/nikbrunner/boomarks/internal/session"
	"github.com/nikbrunner/boomarks/internal/web"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

const selfDID = "did:plc:self"

type fakeRepo struct {
	mu      sync.Mutex
	records map[string][]atproto.Record
	deleted []string
	created []any

	// hold blocks ListRecords for a repo until the channel is closed;
	// entered reports the repo once the call is waiting.
	hold    map[string]chan struct{}
	entered chan string
}

func (f *fakeRepo) DescribeRepo(_ context.Context, repo string) (*atproto.RepoDescription, error) {
	return &atproto.RepoDescription{DID: repo, Collections: []string{record.LexiconID}}, nil
}

func (f *fakeRepo) ListRecords(_ context.Context, repo, _ string) ([]atproto.Record, error) {
	if release, ok := f.hold[repo]; ok {
		f.entered <- repo
		<-release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[repo], nil
}

func (f *fakeRepo) CreateRecord(_ context.Context, repo, _ string, value any) (*atproto.RecordRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, value)
	return &atproto.RecordRef{URI: fmt.Sprintf("at://%s/%s/new%d", repo, record.LexiconID, len(f.created))}, nil
}

func (f *fakeRepo) DeleteRecord(_ context.Context, _, _, rkey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, rkey)
	return nil
}

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, input string) (*identity.Identity, error) {
	if input == "guest.test" {
		return &identity.Identity{DID: "did:plc:guest", Handle: input, PDS: "https://guest.pds"}, nil
	}
	return nil, identity.ErrResolution
}

func rec(did, rkey, subject, title string, tags []string, created time.Time) atproto.Record {
	value, _ := json.Marshal(map[string]any{
		"$type":     record.LexiconID,
		"subject":   subject,
		"title":     title,
		"tags":      tags,
		"createdAt": created.Format(time.RFC3339),
	})
	return atproto.Record{
		URI:   fmt.Sprintf("at://%s/%s/%s", did, record.LexiconID, rkey),
		Value: value,
	}
}

func newTestRepo() *fakeRepo {
	return &fakeRepo{records: map[string][]atproto.Record{
		selfDID: {
			rec(selfDID, "a", "https://go.dev", "Go", []string{"go"}, now.Add(-72*time.Hour)),
			rec(selfDID, "b", "https://www.rust-lang.org", "Rust", []string{"rust"}, now.Add(-24*time.Hour)),
		},
		"did:plc:guest": {
			rec("did:plc:guest", "g", "https://guest.example", "Guest Page", nil, now),
		},
	}}
}

func newServer(t *testing.T, repo *fakeRepo, signedIn bool) *web.Server {
	t.Helper()
	var self *auth.Session
	if signedIn {
		self = &auth.Session{DID: selfDID, Handle: "alice.test", PDS: "https://self.pds"}
	}
	sess := session.New(session.Deps{
		Repos:    func(string, bool) session.Repo { return repo },
		Resolver: fakeResolver{},
		Now:      func() time.Time { return now },
	}, self, session.Options{})
	return web.New(web.Params{Session: sess, Now: func() time.Time { return now }})
}

func get(t *testing.T, s *web.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func post(t *testing.T, s *web.Server, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestIndex_ListNewestFirst(t *testing.T) {
	rr := get(t, newServer(t, newTestRepo(), true), "/")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "@alice.test")
	assert.Contains(t, body, "2 bookmarks in PDS")
	rust, golang := strings.Index(body, "https://www.rust-lang.org"), strings.Index(body, "https://go.dev")
	require.True(t, rust > 0 && golang > 0)
	assert.Less(t, rust, golang, "newest bookmark first")
	assert.Contains(t, body, `action="/bookmarks"`, "add form shown when writable")
}

func TestIndex_SortAscending(t *testing.T) {
	body := get(t, newServer(t, newTestRepo(), true), "/?sort=asc").Body.String()
	assert.Less(t, strings.Index(body, "https://go.dev"), strings.Index(body, "https://www.rust-lang.org"))
	assert.Contains(t, body, "Date ▼")
}

func TestIndex_Grid(t *testing.T) {
	body := get(t, newServer(t, newTestRepo(), true), "/?view=grid").Body.String()
	assert.Contains(t, body, `class="grid"`)
	assert.Contains(t, body, "background-color:")
	assert.Contains(t, body, "List ☰")
}

func TestIndex_SearchHidesNonMatches(t *testing.T) {
	body := get(t, newServer(t, newTestRepo(), true), "/?search=rust").Body.String()
	assert.Contains(t, body, `value="rust"`)
	assert.Equal(t, 1, strings.Count(body, "<li hidden>"))
}

func TestIndex_GuestIsReadOnly(t *testing.T) {
	body := get(t, newServer(t, newTestRepo(), true), "/?user=guest.test").Body.String()
	assert.Contains(t, body, "Guest Page")
	assert.Contains(t, body, "1 bookmarks in PDS")
	assert.NotContains(t, body, `action="/bookmarks/delete"`)
	assert.NotContains(t, body, `action="/bookmarks"`)
}

func TestIndex_OverlappingLoadsKeepTheirOwnView(t *testing.T) {
	repo := newTestRepo()
	release := make(chan struct{})
	repo.hold = map[string]chan struct{}{"did:plc:guest": release}
	repo.entered = make(chan string, 1)
	s := newServer(t, repo, true)

	guestBody := make(chan string, 1)
	go func() { guestBody <- get(t, s, "/?user=guest.test").Body.String() }()
	require.Equal(t, "did:plc:guest", <-repo.entered)

	selfBody := make(chan string, 1)
	go func() { selfBody <- get(t, s, "/").Body.String() }()
	time.Sleep(20 * time.Millisecond)
	close(release)

	guest := <-guestBody
	assert.Contains(t, guest, "Guest Page")
	assert.NotContains(t, guest, "https://go.dev")
	assert.NotContains(t, guest, `action="/bookmarks/delete"`)

	self := <-selfBody
	assert.Contains(t, self, "https://go.dev")
	assert.NotContains(t, self, "Guest Page")
	assert.Contains(t, self, `action="/bookmarks/delete"`)
}

func TestCreate_AfterGuestViewWritesOwnCollection(t *testing.T) {
	repo := newTestRepo()
	s := newServer(t, repo, true)
	get(t, s, "/?user=guest.test")

	rr := post(t, s, "/bookmarks", url.Values{"subject": {"https://new.test"}, "title": {"New"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "Saved+New")
	assert.Len(t, repo.created, 1)
}

func TestIndex_UnknownUser(t *testing.T) {
	body := get(t, newServer(t, newTestRepo(), true), "/?user=nobody.test").Body.String()
	assert.Contains(t, body, "user not found")
}

func TestIndex_PrefillOpensAddForm(t *testing.T) {
	s := newServer(t, newTestRepo(), true)

	body := get(t, s, "/?title=Hello&url=https%3A%2F%2Fhello.test").Body.String()
	assert.Contains(t, body, "<details open>")
	assert.Contains(t, body, `value="https://hello.test"`)

	body = get(t, s, "/?url=https%3A%2F%2Fhello.test").Body.String()
	assert.NotContains(t, body, "<details open>")
}

func TestIndex_Anonymous(t *testing.T) {
	body := get(t, newServer(t, newTestRepo(), false), "/").Body.String()
	assert.Contains(t, body, "not signed in")
	assert.Contains(t, body, "0 bookmarks in PDS")
}

func TestCreate_RedirectsWithState(t *testing.T) {
	repo := newTestRepo()
	s := newServer(t, repo, true)
	get(t, s, "/")

	rr := post(t, s, "/bookmarks", url.Values{
		"subject": {"https://new.test"},
		"title":   {"New"},
		"tags":    {"a, b"},
		"view":    {"grid"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "grid", loc.Query().Get("view"))
	assert.Equal(t, "Saved New", loc.Query().Get("msg"))
	assert.Len(t, repo.created, 1)
}

func TestCreate_ReadOnlyForAnonymous(t *testing.T) {
	repo := newTestRepo()
	rr := post(t, newServer(t, repo, false), "/bookmarks", url.Values{"subject": {"https://new.test"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	loc, _ := url.Parse(rr.Header().Get("Location"))
	assert.Equal(t, session.ErrReadOnly.Error(), loc.Query().Get("msg"))
	assert.Empty(t, repo.created)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo()
	s := newServer(t, repo, true)
	get(t, s, "/")

	rr := post(t, s, "/bookmarks/delete", url.Values{
		"uri": {fmt.Sprintf("at://%s/%s/a", selfDID, record.LexiconID)},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Equal(t, []string{"a"}, repo.deleted)
}

func TestDelete_MissingURI(t *testing.T) {
	rr := post(t, newServer(t, newTestRepo(), true), "/bookmarks/delete", url.Values{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealthz(t *testing.T) {
	s := newServer(t, newTestRepo(), true)
	get(t, s, "/")

	rr := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, "authenticated", got["auth"])
	assert.EqualValues(t, 2, got["bookmarks"])
}

func TestState_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  web.State
		link  string
	}{
		{"defaults", "", web.State{Layout: render.LayoutList}, "/"},
		{"grid asc", "view=grid&sort=asc", web.State{Layout: render.LayoutGrid, SortReversed: true}, "/?sort=asc&view=grid"},
		{"unknown view", "view=table", web.State{Layout: render.LayoutList}, "/"},
		{"search and user", "search=%23go&user=bob.test", web.State{Search: "#go", User: "bob.test", Layout: render.LayoutList}, "/?search=%23go&user=bob.test"},
		{"prefill dropped from link", "title=T&url=u", web.State{Layout: render.LayoutList, Title: "T", URL: "u"}, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			got := web.ParseState(q)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.link, got.Link())
		})
	}
}

func TestMetrics(t *testing.T) {
	s := newServer(t, newTestRepo(), true)
	get(t, s, "/")
	post(t, s, "/bookmarks", url.Values{"subject": {"https://new.test"}})
	post(t, s, "/bookmarks", url.Values{"subject": {"  "}})

	rr := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `boomarks_http_requests_total{method="GET",route="/",status="200"} 1`)
	assert.Contains(t, body, `boomarks_http_requests_total{method="POST",route="/bookmarks",status="303"} 2`)
	assert.Contains(t, body, `boomarks_bookmark_writes_total{op="create",outcome="ok"} 1`)
	assert.Contains(t, body, `boomarks_bookmark_writes_total{op="create",outcome="error"} 1`)
}
