package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("assessment not found")
	ErrDuplicate    = errors.New("assessment already stored")
	ErrInvalidLimit = errors.New("invalid page")
	ErrInvalidID    = errors.New("assessment id must not be empty")
)
