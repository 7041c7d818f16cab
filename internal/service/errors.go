package service

import "errors"

// Error taxonomy. Validation errors reject before any write; conflict
// errors surface storage-level collisions; state errors reject
// transitions the lifecycle does not allow. Handlers map these onto
// HTTP status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)
