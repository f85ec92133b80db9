package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// expirySkew refreshes slightly before the server would reject a token.
const expirySkew = 30 * time.Second

// tokenSource hands the session's access token to oauth2.Transport and
// refreshes the session once the token has expired.
type tokenSource struct {
	ctx  context.Context
	auth *Authenticator
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	ts.auth.mu.Lock()
	s := ts.auth.session.clone()
	ts.auth.mu.Unlock()

	if s == nil {
		return nil, ErrNotSignedIn
	}

	expiry := jwtExpiry(s.AccessJwt)
	if !expiry.IsZero() && !ts.auth.now().Add(expirySkew).Before(expiry) {
		refreshed, err := ts.auth.refresh(ts.ctx, s)
		if err != nil {
			return nil, err
		}
		s = refreshed
		expiry = jwtExpiry(s.AccessJwt)
	}

	return &oauth2.Token{
		AccessToken: s.AccessJwt,
		TokenType:   "Bearer",
		Expiry:      expiry,
	}, nil
}

// jwtExpiry reads the exp claim without verifying the signature; the PDS
// does the verifying. Returns the zero time when the claim is unreadable.
func jwtExpiry(token string) time.Time {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return time.Time{}
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Exp == 0 {
		return time.Time{}
	}
	return time.Unix(claims.Exp, 0)
}
