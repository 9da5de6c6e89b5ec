package transport

import (
	"fmt"
	"strconv"
)

// ErrorKind classifies a failed exchange.
type ErrorKind uint8

const (
	// KindStatus: the server answered with a non-2xx status.
	KindStatus ErrorKind = iota + 1
	// KindNetwork: no answer arrived (refused, DNS, timeout, cancelled).
	KindNetwork
	// KindRequest: the request could not be built or sent.
	KindRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindNetwork:
		return "network"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Error is returned by Transport.Do for every failure.
type Error struct {
	Kind   ErrorKind
	Status int
	Body   []byte
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus:
		return "http status " + strconv.Itoa(e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error { return e.Err }
