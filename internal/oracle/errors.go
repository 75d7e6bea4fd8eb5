package oracle

import "errors"

// Failure taxonomy. Every mutating operation fails closed: detection aborts
// the whole operation with no partial state change. Callers match with
// errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("result already exists")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidShape    = errors.New("invalid shape")
	ErrSchemaViolation = errors.New("schema violation")
	ErrStateViolation  = errors.New("state violation")
	ErrValueMismatch   = errors.New("value mismatch")
	ErrEmptyBalance    = errors.New("empty balance")
)
