package book

import "errors"

// Sentinel errors for domain-level failures. Every failing operation in this
// package wraps one of these, so callers dispatch with errors.Is.
var (
	// ErrInvalidArgument indicates malformed name, phone, or birthday input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateField indicates adding a phone, birthday, or record that
	// already exists.
	ErrDuplicateField = errors.New("already exists")

	// ErrNotFound indicates operating on a phone or contact that does not exist.
	ErrNotFound = errors.New("not found")
)
