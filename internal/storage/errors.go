package storage

import "errors"

// Sentinel errors shared by every store implementation. Callers match with
// errors.Is; each driver maps its native failures onto these.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned on an insert whose (mint, evaluated_at)
	// key already exists. Evaluation history is append-only; a duplicate is
	// a re-submission, never an update.
	ErrDuplicateKey = errors.New("duplicate key: history records are append-only")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
