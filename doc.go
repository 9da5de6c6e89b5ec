// Package hastauth is the session client of the HAST attendance backend. It
// signs teachers in, keeps the bearer token and user record in a pluggable
// credential store, and exposes the profile, password, avatar, attendance
// and class operations of the mobile app.
//
// Every operation returns a [Result] and never panics or returns a Go error:
// transport failures, HTTP error statuses, explicit rejections and
// unrecognized response shapes all become failure Results with a
// human-readable Error and a sentinel in Result.Err.
//
// Client methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// hastauth is the public surface. It exposes [Client], [Builder], [Config], and value types
// (Result, MetricsSnapshot, SessionInfo). Response normalization, the HTTP transport, audit
// dispatch and the operation flows live under internal/ and are never exported. Request
// interceptors live in middleware/, credential stores in session/.
//
// # What this package must NOT do
//
//   - Log or audit passwords or bearer tokens.
//   - Verify, refresh or expire tokens on its own; the backend is the only authority.
//   - Retry requests automatically.
//   - Import any sub-package that re-imports hastauth (no import cycles).
package hastauth
