// Package hasttest runs an in-process fake of the HAST backend for tests and
// examples. It issues HS256 JWTs, keeps accounts, attendance and classes in
// memory, records every request and lets a test override any path with a
// canned response.
package hasttest
