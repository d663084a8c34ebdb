package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidKind   = errors.New("invalid application kind")
	ErrInvalidStatus = errors.New("invalid status")
	ErrConflict      = errors.New("review conflict")
)
