package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrTokenUnavailable is returned when the token source fails. The request
// is not sent.
var ErrTokenUnavailable = errors.New("token source unavailable")

// TokenSource yields the current bearer token, or "" when none is stored.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// BearerToken attaches "Authorization: Bearer <token>" to every outgoing
// request. The token is looked up per request, so a login or clear that
// happened a moment ago is always reflected. Requests that already carry a
// bearer header are left alone.
func BearerToken(src TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if src == nil {
				return next.RoundTrip(r)
			}
			if _, ok := bearerToken(r.Header.Get("Authorization")); ok {
				return next.RoundTrip(r)
			}

			token, err := src.Token(r.Context())
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrTokenUnavailable, err)
			}
			if token == "" {
				return next.RoundTrip(r)
			}

			// RoundTrippers must not modify the caller's request.
			out := r.Clone(r.Context())
			out.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(out)
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
