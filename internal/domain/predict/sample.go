package predict

import (
	"math"
	"math/rand"

	"github.com/scoutlab/reefcore/internal/domain/stats"
)

// knuthCutoff is the mean above which the multiplication chain in Knuth's
// algorithm underflows; larger means fall back to a normal approximation.
const knuthCutoff = 30.0

// poisson draws a Poisson-distributed count with the given mean. A mean of
// zero (a category the team never scores in) is a deterministic zero.
func poisson(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	if mean > knuthCutoff {
		// Normal approximation, rounded and floored at zero.
		n := mean + math.Sqrt(mean)*rng.NormFloat64()
		if n < 0 {
			return 0
		}
		return int(math.Round(n))
	}

	// Knuth's algorithm.
	limit := math.Exp(-mean)
	p := 1.0
	k := 0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// bernoulli draws a single success/failure with probability p.
func bernoulli(rng *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}

// sampleClimbPoints draws a climb outcome from the distribution and
// returns its point value. Probability mass lost to rounding falls through
// to "none".
func sampleClimbPoints(rng *rand.Rand, dist stats.ClimbDistribution, pts *ClimbPoints) float64 {
	r := rng.Float64()

	cumulative := dist.Deep
	if r < cumulative {
		return pts.Deep
	}
	cumulative += dist.Shallow
	if r < cumulative {
		return pts.Shallow
	}
	cumulative += dist.Park
	if r < cumulative {
		return pts.Park
	}
	return pts.None
}
