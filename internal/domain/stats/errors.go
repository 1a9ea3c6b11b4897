package stats

import "errors"

// Sentinel kinds for profile construction errors.
var (
	ErrUnknownTeam = errors.New("unknown team")
	ErrNoRecords   = errors.New("no match records for team")
)
