package repository

import "errors"

// Sentinel store errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidLimit = errors.New("invalid ranking limit")
	ErrEmptyName    = errors.New("empty name")
)
