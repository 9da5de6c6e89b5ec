package middleware

import (
	"context"
	"net/http"
)

// SessionClearer removes the locally stored credentials.
type SessionClearer interface {
	Clear(ctx context.Context) error
}

// ClearOnUnauthorized deletes the stored session whenever the server answers
// 401, before the response reaches the caller. notify, when non-nil, is
// called after every clear with the clear's error.
func ClearOnUnauthorized(c SessionClearer, notify func(r *http.Request, err error)) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(r)
			if err != nil || resp == nil || c == nil {
				return resp, err
			}
			if resp.StatusCode == http.StatusUnauthorized {
				// The caller may already be cancelling; the clear must still land.
				clearErr := c.Clear(context.WithoutCancel(r.Context()))
				if notify != nil {
					notify(r, clearErr)
				}
			}
			return resp, nil
		})
	}
}
