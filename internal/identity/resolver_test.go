package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func fakeNetwork(t *testing.T, resolveCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/com.atproto.identity.resolveHandle", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(resolveCalls, 1)
		switch r.URL.Query().Get("handle") {
		case "alice.test":
			_, _ = w.Write([]byte(`{"did":"did:plc:alice"}`))
		case "nopds.test":
			_, _ = w.Write([]byte(`{"did":"did:plc:nopds"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"InvalidRequest","message":"Unable to resolve handle"}`))
		}
	})
	mux.HandleFunc("/did:plc:alice", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"alsoKnownAs":["at://alice.test"],"service":[{"id":"#atproto_pds","type":"AtprotoPersonalDataServer","serviceEndpoint":"https://pds.alice.test/"}]}`))
	})
	mux.HandleFunc("/did:plc:nopds", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":[]}`))
	})
	return httptest.NewServer(mux)
}

func newTestResolver(srv *httptest.Server) *Resolver {
	return NewResolver(ResolverParams{
		Service:      srv.URL,
		PLCDirectory: srv.URL,
		HTTP:         srv.Client(),
	})
}

func TestResolve_Handle(t *testing.T) {
	var calls int32
	srv := fakeNetwork(t, &calls)
	defer srv.Close()

	id, err := newTestResolver(srv).Resolve(context.Background(), "  @Alice.Test ")
	assert.NilError(t, err)
	assert.DeepEqual(t, *id, Identity{DID: "did:plc:alice", Handle: "alice.test", PDS: "https://pds.alice.test"})
}

func TestResolve_DIDFillsHandleFromDocument(t *testing.T) {
	var calls int32
	srv := fakeNetwork(t, &calls)
	defer srv.Close()

	id, err := newTestResolver(srv).Resolve(context.Background(), "did:plc:alice")
	assert.NilError(t, err)
	assert.Equal(t, id.Handle, "alice.test")
	assert.Equal(t, atomic.LoadInt32(&calls), int32(0))
}

func TestResolve_FallsBackToService(t *testing.T) {
	var calls int32
	srv := fakeNetwork(t, &calls)
	defer srv.Close()

	id, err := newTestResolver(srv).Resolve(context.Background(), "nopds.test")
	assert.NilError(t, err)
	assert.Equal(t, id.PDS, srv.URL)
}

func TestResolve_Failure(t *testing.T) {
	var calls int32
	srv := fakeNetwork(t, &calls)
	defer srv.Close()

	_, err := newTestResolver(srv).Resolve(context.Background(), "ghost.test")
	assert.Assert(t, errors.Is(err, ErrResolution))

	_, err = newTestResolver(srv).Resolve(context.Background(), "  ")
	assert.Assert(t, errors.Is(err, ErrEmptyIdentity))
}

func TestResolve_CachesAndCollapses(t *testing.T) {
	var calls int32
	srv := fakeNetwork(t, &calls)
	defer srv.Close()

	r := newTestResolver(srv)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), "alice.test")
			assert.Check(t, err)
		}()
	}
	wg.Wait()

	_, err := r.Resolve(context.Background(), "@alice.test")
	assert.NilError(t, err)

	// Concurrent callers may race the first cache write, never the flight.
	assert.Assert(t, atomic.LoadInt32(&calls) <= 8)
	before := atomic.LoadInt32(&calls)
	_, _ = r.Resolve(context.Background(), "alice.test")
	assert.Equal(t, atomic.LoadInt32(&calls), before)
}

func TestResolve_CancelledCallerLeavesOthersWaiting(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/com.atproto.identity.resolveHandle", func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{"did":"did:plc:alice"}`))
	})
	mux.HandleFunc("/did:plc:alice", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":[{"id":"#atproto_pds","serviceEndpoint":"https://pds.alice.test"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := newTestResolver(srv)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx, "alice.test")
		first <- err
	}()
	<-entered

	type result struct {
		id  *Identity
		err error
	}
	second := make(chan result, 1)
	go func() {
		id, err := r.Resolve(context.Background(), "alice.test")
		second <- result{id, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.Assert(t, errors.Is(<-first, context.Canceled))

	close(release)
	got := <-second
	assert.NilError(t, got.err)
	assert.Equal(t, got.id.PDS, "https://pds.alice.test")
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	assert.NilError(t, c.Set(ctx, "k", &Identity{DID: "did:plc:k"}, time.Minute))

	got, err := c.Get(ctx, "k")
	assert.NilError(t, err)
	assert.Equal(t, got.DID, "did:plc:k")

	now = now.Add(time.Minute)
	got, err = c.Get(ctx, "k")
	assert.NilError(t, err)
	assert.Assert(t, got == nil)
}

func TestDIDWebURL(t *testing.T) {
	u, err := didWebURL("example.com")
	assert.NilError(t, err)
	assert.Equal(t, u, "https://example.com/.well-known/did.json")

	u, err = didWebURL("localhost%3A8080")
	assert.NilError(t, err)
	assert.Equal(t, u, "https://localhost:8080/.well-known/did.json")

	_, err = didWebURL("example.com:user:alice")
	assert.ErrorContains(t, err, "unsupported")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Normalize(" @Bob.BSKY.social"), "bob.bsky.social")
	assert.Equal(t, Normalize("did:plc:AbC"), "did:plc:AbC")
}
