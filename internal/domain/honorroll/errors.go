package honorroll

import "errors"

// Sentinel kinds for honor-roll errors.
var (
	ErrDegenerateInput = errors.New("degenerate honor roll input")
	ErrUnknownTeam     = errors.New("unknown team")
)
