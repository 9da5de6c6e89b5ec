package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// RequestID stamps each request with a random X-Request-ID unless one is set.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(r)
			}
			out := r.Clone(r.Context())
			out.Header.Set(RequestIDHeader, uuid.NewString())
			return next.RoundTrip(out)
		})
	}
}

// Logging logs one line per exchange. Bodies and headers other than the
// request id are never logged.
func Logging(logger zerolog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)

			ev := logger.Debug()
			if err != nil {
				ev = logger.Warn().Err(err)
			} else if resp.StatusCode >= 400 {
				ev = logger.Info()
			}
			ev = ev.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start))
			if id := r.Header.Get(RequestIDHeader); id != "" {
				ev = ev.Str("request_id", id)
			}
			if resp != nil {
				ev = ev.Int("status", resp.StatusCode)
			}
			ev.Msg("api exchange")
			return resp, err
		})
	}
}

// Latency reports the duration of every round trip to observe, failed ones
// included.
func Latency(observe func(d time.Duration)) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if observe == nil {
				return next.RoundTrip(r)
			}
			start := time.Now()
			resp, err := next.RoundTrip(r)
			observe(time.Since(start))
			return resp, err
		})
	}
}
