// internal/services/errors.go
package services

import "errors"

// Stable error kinds surfaced across the service layer. Handlers map these to
// the response envelope codes; callers must not retry anything but transient
// storage failures.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
)
