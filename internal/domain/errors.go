package domain

import "errors"

// ErrInvalidID and related errors describe validation failures.
var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidKind     = errors.New("invalid board kind")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidValue    = errors.New("invalid value")
	ErrDuplicateColumn = errors.New("duplicate column id")
	ErrNoColumns       = errors.New("board has no columns")
)
