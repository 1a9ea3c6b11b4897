package draft

import "errors"

// Sentinel kinds for draft errors. Every rejected mutation leaves the
// table unchanged.
var (
	ErrInvalidAssignment = errors.New("invalid assignment")
	ErrUnknownAlliance   = errors.New("unknown alliance")
	ErrEmptyPool         = errors.New("empty team pool")
)
