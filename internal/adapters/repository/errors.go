package repository

import "errors"

// Sentinel kinds for ranking store errors.
var (
	ErrNotFound     = errors.New("team not found")
	ErrInvalidLimit = errors.New("invalid ranking limit")
	ErrInvalidTeam  = errors.New("invalid team number")
)
