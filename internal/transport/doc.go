// Package transport sends JSON and multipart requests to the HAST backend
// and sorts every failure into one of three kinds: a non-2xx status, no
// response at all, or a request that could not be built.
//
// Token attachment and the 401 reaction are not implemented here; they are
// middleware.RoundTripper decorators passed to [New].
package transport
