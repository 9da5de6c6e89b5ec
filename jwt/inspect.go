package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned for tokens that are not three-part compact JWTs or
// whose segments do not decode.
var ErrNotJWT = errors.New("token is not a JWT")

var registered = map[string]struct{}{
	"iss": {}, "sub": {}, "aud": {}, "exp": {}, "nbf": {}, "iat": {}, "jti": {},
}

// Claims is the decoded, unverified content of a bearer token.
type Claims struct {
	Algorithm string
	KeyID     string
	ID        string
	Subject   string
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
	// Extra holds every non-registered claim.
	Extra map[string]any
}

// Inspect decodes token without verifying its signature. The client has no
// key to verify with; the result is for diagnostics only and must never be
// used to grant access.
func Inspect(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return nil, ErrNotJWT
	}

	mc := jwt.MapClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, mc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	c := &Claims{Extra: map[string]any{}}
	if parsed.Method != nil {
		c.Algorithm = parsed.Method.Alg()
	}
	if kid, ok := parsed.Header["kid"].(string); ok {
		c.KeyID = kid
	}
	if jti, ok := mc["jti"].(string); ok {
		c.ID = jti
	}

	// Malformed registered claims are dropped rather than failing the
	// whole inspection.
	c.Subject, _ = mc.GetSubject()
	c.Issuer, _ = mc.GetIssuer()
	if aud, err := mc.GetAudience(); err == nil {
		c.Audience = []string(aud)
	}
	c.IssuedAt = numericTime(mc.GetIssuedAt())
	c.NotBefore = numericTime(mc.GetNotBefore())
	c.ExpiresAt = numericTime(mc.GetExpirationTime())

	for k, v := range mc {
		if _, ok := registered[k]; !ok {
			c.Extra[k] = v
		}
	}
	return c, nil
}

// Expired reports whether the exp claim is at or before now. Tokens without
// exp never expire.
func (c *Claims) Expired(now time.Time) bool {
	return c != nil && !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ExpiresIn is the time left until exp, zero when expired or unset.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c == nil || c.ExpiresAt.IsZero() || c.Expired(now) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

func numericTime(d *jwt.NumericDate, err error) time.Time {
	if err != nil || d == nil {
		return time.Time{}
	}
	return d.Time.UTC()
}
