package hastauth

import "errors"

var (
	// ErrNetwork is an exported constant or variable used by the session client.
	ErrNetwork = errors.New("server unreachable")
	// ErrRequest is an exported constant or variable used by the session client.
	ErrRequest = errors.New("request could not be sent")
	// ErrHTTPStatus is an exported constant or variable used by the session client.
	ErrHTTPStatus = errors.New("api returned error status")
	// ErrUnauthorized is an exported constant or variable used by the session client.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRejected is an exported constant or variable used by the session client.
	ErrRejected = errors.New("rejected by server")
	// ErrRoleDenied is an exported constant or variable used by the session client.
	ErrRoleDenied = errors.New("role not allowed")
	// ErrAmbiguousResponse is an exported constant or variable used by the session client.
	ErrAmbiguousResponse = errors.New("ambiguous response")
	// ErrInvalidInput is an exported constant or variable used by the session client.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotAuthenticated is an exported constant or variable used by the session client.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrStore is an exported constant or variable used by the session client.
	ErrStore = errors.New("credential store failure")
)
