// Package session persists the client's credentials: the bearer token and
// the JSON-encoded user record, under the keys "authToken" and "userInfo".
//
// # Stores
//
// [Store] is a plain string key/value contract. Three implementations ship:
// [MemoryStore] (process lifetime), [RedisStore] (shared device profile) and
// [SQLiteStore] (on-disk, used by the CLI). Stores that also implement
// [BatchStore] apply the login pair write and the clear as one transaction.
//
// # Architecture boundaries
//
// [Keeper] is the only writer. It serializes writes so concurrent login,
// profile update and 401 clears cannot interleave into a half-written pair.
//
// # What this package must NOT do
//
//   - Import hastauth, middleware or the transport (no upward imports).
//   - Interpret or validate the token.
//   - Expire sessions on its own; invalidation comes from the server.
package session
