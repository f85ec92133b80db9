// Package identity resolves handles and DIDs to the PDS hosting them.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nikbrunner/boomarks/internal/atproto"
	"github.com/nikbrunner/boomarks/internal/logger"
)

const (
	DefaultService      = "https://bsky.social"
	DefaultPLCDirectory = "https://plc.directory"
	DefaultTTL          = time.Hour

	pdsServiceType = "AtprotoPersonalDataServer"
	pdsServiceID   = "#atproto_pds"
)

var (
	ErrResolution    = errors.New("identity resolution failed")
	ErrEmptyIdentity = errors.New("empty handle")
)

// Identity is a resolved account.
type Identity struct {
	DID    string `json:"did"`
	Handle string `json:"handle,omitempty"`
	PDS    string `json:"pds"`
}

// Resolver maps handles and DIDs to identities, caching results.
type Resolver struct {
	service      string
	plcDirectory string
	http         *http.Client
	cache        Cache
	ttl          time.Duration
	log          logger.Logger
	group        singleflight.Group
}

// ResolverParams holds the Resolver dependencies. Zero values fall back
// to the public entryway, the PLC directory and an in-memory cache.
type ResolverParams struct {
	Service      string
	PLCDirectory string
	HTTP         *http.Client
	Cache        Cache
	TTL          time.Duration
	Logger       logger.Logger
}

// NewResolver creates a Resolver.
func NewResolver(params ResolverParams) *Resolver {
	r := &Resolver{
		service:      strings.TrimRight(params.Service, "/"),
		plcDirectory: strings.TrimRight(params.PLCDirectory, "/"),
		http:         params.HTTP,
		cache:        params.Cache,
		ttl:          params.TTL,
		log:          params.Logger,
	}
	if r.service == "" {
		r.service = DefaultService
	}
	if r.plcDirectory == "" {
		r.plcDirectory = DefaultPLCDirectory
	}
	if r.http == nil {
		r.http = http.DefaultClient
	}
	if r.cache == nil {
		r.cache = NewMemoryCache()
	}
	if r.ttl <= 0 {
		r.ttl = DefaultTTL
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	return r
}

// Normalize trims input, drops a leading "@" and lowercases handles.
func Normalize(input string) string {
	s := strings.TrimPrefix(strings.TrimSpace(input), "@")
	if strings.HasPrefix(s, "did:") {
		return s
	}
	return strings.ToLower(s)
}

// Resolve returns the identity for a handle or DID. Concurrent lookups
// of the same input share one network round trip.
func (r *Resolver) Resolve(ctx context.Context, input string) (*Identity, error) {
	key := Normalize(input)
	if key == "" {
		return nil, ErrEmptyIdentity
	}

	if cached, err := r.cache.Get(ctx, key); err != nil {
		r.log.Warn("identity cache read failed", logger.String("key", key), logger.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	// The shared lookup outlives any single caller; each caller stops
	// waiting on its own ctx.
	ch := r.group.DoChan(key, func() (interface{}, error) {
		return r.resolve(context.WithoutCancel(ctx), key)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	id := res.Val.(*Identity)

	if err := r.cache.Set(ctx, key, id, r.ttl); err != nil {
		r.log.Warn("identity cache write failed", logger.String("key", key), logger.Error(err))
	}
	return id, nil
}

func (r *Resolver) resolve(ctx context.Context, key string) (*Identity, error) {
	id := &Identity{DID: key}
	if !strings.HasPrefix(key, "did:") {
		did, err := atproto.New(r.service, r.http).ResolveHandle(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrResolution, key, err)
		}
		id = &Identity{DID: did, Handle: key}
	}

	doc, err := r.fetchDocument(ctx, id.DID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResolution, key, err)
	}
	id.PDS = pdsEndpoint(*doc, r.service)
	if id.Handle == "" {
		id.Handle = doc.handle()
	}

	r.log.Debug("resolved identity",
		logger.String("input", key),
		logger.String("did", id.DID),
		logger.String("pds", id.PDS))
	return id, nil
}

// didDocument is the subset of a DID document naming services.
type didDocument struct {
	AlsoKnownAs []string `json:"alsoKnownAs"`
	Service     []struct {
		ID              string `json:"id"`
		Type            string `json:"type"`
		ServiceEndpoint string `json:"serviceEndpoint"`
	} `json:"service"`
}

// handle returns the first at:// alias of the document.
func (d didDocument) handle() string {
	for _, aka := range d.AlsoKnownAs {
		if h, ok := strings.CutPrefix(aka, "at://"); ok {
			return h
		}
	}
	return ""
}

func (r *Resolver) fetchDocument(ctx context.Context, did string) (*didDocument, error) {
	docURL, err := r.documentURL(did)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("did document %s: status %d", did, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var doc didDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode did document: %w", err)
	}

	return &doc, nil
}

func (r *Resolver) documentURL(did string) (string, error) {
	switch {
	case strings.HasPrefix(did, "did:plc:"):
		return r.plcDirectory + "/" + did, nil
	case strings.HasPrefix(did, "did:web:"):
		return didWebURL(strings.TrimPrefix(did, "did:web:"))
	}
	return "", fmt.Errorf("unsupported did method: %s", did)
}

// didWebURL supports host-only did:web identifiers; a percent-encoded
// port is allowed, path segments are not.
func didWebURL(host string) (string, error) {
	if host == "" || strings.Contains(host, ":") {
		return "", fmt.Errorf("unsupported did:web identifier %q", host)
	}
	decoded, err := url.PathUnescape(host)
	if err != nil || strings.Contains(decoded, "/") {
		return "", fmt.Errorf("invalid did:web host %q", host)
	}
	return "https://" + decoded + "/.well-known/did.json", nil
}

// pdsEndpoint picks the PDS service entry, falling back to fallback.
func pdsEndpoint(doc didDocument, fallback string) string {
	for _, s := range doc.Service {
		if (s.Type == pdsServiceType || s.ID == pdsServiceID) && s.ServiceEndpoint != "" {
			return strings.TrimRight(s.ServiceEndpoint, "/")
		}
	}
	return fallback
}
