// Package atproto is a small XRPC client for the repository, identity,
// actor and server endpoints a bookmark client needs.
package atproto

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const pageLimit = 100

var ErrInvalidResponse = errors.New("invalid XRPC response")

// Client talks XRPC to a single host (a PDS, entryway or AppView).
type Client struct {
	Host string
	HTTP *http.Client
}

// New creates a Client for host. A nil httpClient uses http.DefaultClient.
func New(host string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		Host: strings.TrimRight(host, "/"),
		HTTP: httpClient,
	}
}

// Record is one entry of a listRecords response.
type Record struct {
	URI   string          `json:"uri"`
	CID   string          `json:"cid"`
	Value json.RawMessage `json:"value"`
}

// RecordRef identifies a stored record version.
type RecordRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// RepoDescription is the subset of describeRepo the client uses.
type RepoDescription struct {
	Handle      string   `json:"handle"`
	DID         string   `json:"did"`
	Collections []string `json:"collections"`
}

// Profile is the subset of an actor profile shown next to a guest view.
type Profile struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// SessionTokens is the body returned by createSession and refreshSession.
type SessionTokens struct {
	DID        string          `json:"did"`
	Handle     string          `json:"handle"`
	AccessJwt  string          `json:"accessJwt"`
	RefreshJwt string          `json:"refreshJwt"`
	DIDDoc     json.RawMessage `json:"didDoc,omitempty"`
}

// DescribeRepo returns repository metadata, or an XRPCError when the
// repository does not exist.
func (c *Client) DescribeRepo(ctx context.Context, repo string) (*RepoDescription, error) {
	var out RepoDescription
	params := url.Values{"repo": {repo}}
	if err := c.call(ctx, http.MethodGet, "com.atproto.repo.describeRepo", params, nil, &out, ""); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRecords returns every record of collection in listing order,
// following the cursor until the listing is exhausted.
func (c *Client) ListRecords(ctx context.Context, repo, collection string) ([]Record, error) {
	var all []Record
	cursor := ""
	for {
		params := url.Values{
			"repo":       {repo},
			"collection": {collection},
			"limit":      {strconv.Itoa(pageLimit)},
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var page struct {
			Records []Record `json:"records"`
			Cursor  string   `json:"cursor"`
		}
		if err := c.call(ctx, http.MethodGet, "com.atproto.repo.listRecords", params, nil, &page, ""); err != nil {
			return nil, err
		}

		all = append(all, page.Records...)
		if page.Cursor == "" || page.Cursor == cursor || len(page.Records) == 0 {
			break
		}
		cursor = page.Cursor
	}

	if all == nil {
		all = []Record{}
	}
	return all, nil
}

// CreateRecord stores record in collection and returns its reference.
func (c *Client) CreateRecord(ctx context.Context, repo, collection string, record any) (*RecordRef, error) {
	in := map[string]any{
		"repo":       repo,
		"collection": collection,
		"record":     record,
	}
	var out RecordRef
	if err := c.call(ctx, http.MethodPost, "com.atproto.repo.createRecord", nil, in, &out, ""); err != nil {
		return nil, err
	}
	if out.URI == "" {
		return nil, fmt.Errorf("%w: createRecord returned no uri", ErrInvalidResponse)
	}
	return &out, nil
}

// DeleteRecord removes the record with rkey from collection.
func (c *Client) DeleteRecord(ctx context.Context, repo, collection, rkey string) error {
	in := map[string]any{
		"repo":       repo,
		"collection": collection,
		"rkey":       rkey,
	}
	return c.call(ctx, http.MethodPost, "com.atproto.repo.deleteRecord", nil, in, nil, "")
}

// GetProfile fetches the public profile of actor (handle or DID).
func (c *Client) GetProfile(ctx context.Context, actor string) (*Profile, error) {
	var out Profile
	params := url.Values{"actor": {actor}}
	if err := c.call(ctx, http.MethodGet, "app.bsky.actor.getProfile", params, nil, &out, ""); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResolveHandle maps a handle to its DID.
func (c *Client) ResolveHandle(ctx context.Context, handle string) (string, error) {
	var out struct {
		DID string `json:"did"`
	}
	params := url.Values{"handle": {handle}}
	if err := c.call(ctx, http.MethodGet, "com.atproto.identity.resolveHandle", params, nil, &out, ""); err != nil {
		return "", err
	}
	if out.DID == "" {
		return "", fmt.Errorf("%w: resolveHandle returned no did", ErrInvalidResponse)
	}
	return out.DID, nil
}

// CreateSession signs in with an identifier and (app) password.
func (c *Client) CreateSession(ctx context.Context, identifier, password string) (*SessionTokens, error) {
	in := map[string]string{
		"identifier": identifier,
		"password":   password,
	}
	var out SessionTokens
	if err := c.call(ctx, http.MethodPost, "com.atproto.server.createSession", nil, in, &out, ""); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshSession exchanges a refresh JWT for a new token pair.
func (c *Client) RefreshSession(ctx context.Context, refreshJwt string) (*SessionTokens, error) {
	var out SessionTokens
	if err := c.call(ctx, http.MethodPost, "com.atproto.server.refreshSession", nil, nil, &out, refreshJwt); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSession revokes the session behind refreshJwt.
func (c *Client) DeleteSession(ctx context.Context, refreshJwt string) error {
	return c.call(ctx, http.MethodPost, "com.atproto.server.deleteSession", nil, nil, nil, refreshJwt)
}

// call performs one XRPC request. bearer, when set, overrides whatever
// authorization the underlying transport would add.
func (c *Client) call(ctx context.Context, method, nsid string, params url.Values, in, out any, bearer string) error {
	endpoint := c.Host + "/xrpc/" + nsid
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s input: %w", nsid, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", nsid, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", nsid, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", nsid, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newXRPCError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, nsid, err)
	}
	return nil
}
