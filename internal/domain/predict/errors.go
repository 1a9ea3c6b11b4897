package predict

import "errors"

// Sentinel kinds for prediction errors.
var (
	ErrInsufficientData = errors.New("insufficient data for prediction")
	ErrInvalidMode      = errors.New("invalid prediction mode")
	ErrNilRandSource    = errors.New("nil random source")
)
