package core

import "errors"

var (
	// ErrInvalidAction marks a decision that could not be turned into a
	// structured action: unknown kind, missing field, or a reference the
	// agent never observed. Recovered locally, never fatal.
	ErrInvalidAction = errors.New("invalid action")

	// ErrUnknownReference is returned by the world for an ID that does
	// not exist.
	ErrUnknownReference = errors.New("unknown reference")

	ErrContentTooLong = errors.New("content too long")

	// ErrPermissionDenied marks an interaction forbidden by a block.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTransientBackend marks retryable connected-mode failures:
	// network errors, 429s and 5xx responses.
	ErrTransientBackend = errors.New("transient backend error")

	// ErrConfiguration is fatal and aborts the run before any turn.
	ErrConfiguration = errors.New("configuration error")
)
