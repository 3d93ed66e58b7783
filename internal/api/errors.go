package api

import (
	"errors"
	"fmt"
)

// ErrTransport matches every failure to reach the backend or to read its
// answer. Refusals carried in a well-formed body are not transport errors.
var ErrTransport = errors.New("api: transport failure")

// TransportError describes a failed round trip.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api: %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("api: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
