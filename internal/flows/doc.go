// Package flows contains the orchestration behind every Client operation.
//
// Each flow function (RunLogin, RunLogout, RunGetProfile, etc.) accepts the
// Deps struct and returns a Result. Flows never return a Go error: every
// failure, including bad input and unreachable servers, becomes a failure
// Result carrying a sentinel from Deps.Errors.
//
// # Architecture boundaries
//
// Flows talk to the backend only through Deps.API and Deps.Probe, and to the
// credential store only through Deps.Session. Response bodies are interpreted
// with internal/normalize. Logging, metrics and audit are injected.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import hastauth (to avoid import cycles).
//   - Open files or sockets directly.
package flows
