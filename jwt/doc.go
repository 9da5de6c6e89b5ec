// Package jwt decodes the bearer token issued by the backend for local
// session diagnostics. Signatures are never verified and expiry is reported,
// not enforced: the backend remains the only authority on token validity.
package jwt
