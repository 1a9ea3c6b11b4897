package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoDraft = errors.New("no active draft session")
)
