package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidDeleteMode = errors.New("invalid delete mode")
	ErrInvalidTemplate   = errors.New("invalid board template")
)
