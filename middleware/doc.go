// Package middleware provides the http.RoundTripper decorators the client
// composes into its transport.
//
// # Decorators
//
//   - [BearerToken]: pre-request, attaches the stored token.
//   - [ClearOnUnauthorized]: post-response, clears the stored session on 401.
//   - [RequestID]: stamps X-Request-ID.
//   - [Logging]: one zerolog line per exchange.
//
// Decorators are combined with [Chain]; the first one listed is outermost.
//
// # What this package must NOT do
//
//   - Read or interpret response bodies.
//   - Retry requests.
//   - Hold session state itself; it only calls the TokenSource / SessionClearer it is given.
package middleware
