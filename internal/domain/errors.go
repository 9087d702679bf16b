package domain

import "errors"

// ErrNotFound is returned when the requested resource does not exist,
// e.g. a session whose trip slot has never been written.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. a blank address field, cycle hours out of range).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when an operation cannot run in the current state,
// e.g. a second submit while the first is still in flight.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")
