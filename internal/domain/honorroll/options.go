package honorroll

// Defaults for the dynamic phase scaling and qualification floor.
const (
	defaultScaleMin        = 2.0
	defaultScaleMax        = 10.0
	defaultScaleFallback   = 4.0
	defaultQualifyingScore = 70.0
)

// Option configures a System.
type Option func(*System)

// WithScaleBounds sets the clamp range for the dynamic phase scale factor.
// Non-positive or inverted bounds are ignored.
func WithScaleBounds(min, max float64) Option {
	return func(s *System) {
		if min > 0 && max >= min {
			s.scaleMin = min
			s.scaleMax = max
		}
	}
}

// WithScaleFallback sets the factor used when the reference average or the
// raw phase total is zero. Non-positive values are ignored.
func WithScaleFallback(f float64) Option {
	return func(s *System) {
		if f > 0 {
			s.scaleFallback = f
		}
	}
}

// WithQualifyingScore sets the minimum honor-roll score a team needs to
// stay qualified. Negative values are ignored.
func WithQualifyingScore(min float64) Option {
	return func(s *System) {
		if min >= 0 {
			s.qualifyingScore = min
		}
	}
}
