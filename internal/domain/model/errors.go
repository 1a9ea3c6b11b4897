package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrInvalidRecord = errors.New("invalid scouting record")
)
