// internal/domain/errors.go
package domain

import "errors"

// Failure kinds surfaced by the order core. Adapters wrap transport and
// storage failures into these so callers can branch with errors.Is.
var (
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrConflict           = errors.New("order state conflict")
	ErrAuth               = errors.New("authentication failed")
	ErrNetwork            = errors.New("network failure")
	ErrMalformedToken     = errors.New("malformed token")
	ErrUnrecognizedStatus = errors.New("unrecognized order status")
	ErrNotFound           = errors.New("not found")
)
