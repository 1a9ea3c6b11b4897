package predict

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/scoutlab/reefcore/internal/domain/stats"
)

// profile builds a test profile with uniform teleop coral rates and the
// given teleop processor rate.
func profile(team int, coralPerLevel, processor float64) stats.Profile {
	p := stats.Profile{
		TeamNumber:      team,
		Matches:         10,
		TeleopProcessor: processor,
		TeleopNet:       1,
		PLeaveZone:      1,
		Climb:           stats.ClimbDistribution{None: 1},
	}
	for i := range p.TeleopCoral {
		p.TeleopCoral[i] = coralPerLevel
	}
	return p
}

func alliance(base int, coralPerLevel, processor float64) []stats.Profile {
	return []stats.Profile{
		profile(base, coralPerLevel, processor),
		profile(base+1, coralPerLevel, processor),
		profile(base+2, coralPerLevel, processor),
	}
}

func TestParseMode(t *testing.T) {
	Convey("Given mode strings", t, func() {
		Convey("Empty input defaults to quick", func() {
			mode, err := ParseMode("")
			So(err, ShouldBeNil)
			So(mode, ShouldEqual, ModeQuick)
		})

		Convey("Known modes parse", func() {
			for _, s := range []string{"quick", "montecarlo"} {
				mode, err := ParseMode(s)
				So(err, ShouldBeNil)
				So(string(mode), ShouldEqual, s)
			}
		})

		Convey("Unknown modes are rejected", func() {
			_, err := ParseMode("psychic")
			So(errors.Is(err, ErrInvalidMode), ShouldBeTrue)
		})
	})
}

func TestQuick(t *testing.T) {
	Convey("Given a quick prediction between unequal alliances", t, func() {
		ctx := context.Background()
		e := NewEngine()

		red := alliance(100, 2, 1)
		blue := alliance(200, 1, 1)

		p, err := e.Quick(ctx, red, blue)
		So(err, ShouldBeNil)

		Convey("Then the stronger alliance wins with certainty", func() {
			So(p.Mode, ShouldEqual, ModeQuick)
			So(p.RedScore, ShouldBeGreaterThan, p.BlueScore)
			So(p.RedWinProbability, ShouldEqual, 1)
			So(p.BlueWinProbability, ShouldEqual, 0)
			So(p.TieProbability, ShouldEqual, 0)
		})

		Convey("Then the breakdown reconciles with the headline score", func() {
			So(p.RedBreakdown.Total(), ShouldAlmostEqual, p.RedScore, 1e-9)
			So(p.BlueBreakdown.Total(), ShouldAlmostEqual, p.BlueScore, 1e-9)
		})

		Convey("Then the winner takes the win ranking points", func() {
			So(p.RedRP, ShouldBeGreaterThanOrEqualTo, 3)
			So(p.BlueRP, ShouldBeLessThan, 3)
		})
	})

	Convey("Given identical alliances", t, func() {
		ctx := context.Background()
		e := NewEngine()

		red := alliance(100, 2, 1)
		blue := alliance(200, 2, 1)

		p, err := e.Quick(ctx, red, blue)
		So(err, ShouldBeNil)

		Convey("Then the quick pass predicts a tie", func() {
			So(p.RedScore, ShouldAlmostEqual, p.BlueScore, 1e-9)
			So(p.TieProbability, ShouldEqual, 1)
			So(p.RedRP, ShouldEqual, p.BlueRP)
		})
	})

	Convey("Given the auto ranking point conditions", t, func() {
		ctx := context.Background()
		e := NewEngine()

		Convey("All three leaves plus auto coral earn the extra point", func() {
			red := alliance(100, 3, 0)
			for i := range red {
				red[i].AutoCoral[0] = 1
			}
			blue := alliance(200, 1, 0)
			for i := range blue {
				blue[i].PLeaveZone = 0
			}

			p, err := e.Quick(ctx, red, blue)
			So(err, ShouldBeNil)
			// Win (3) + auto (1) + coral: red places 3+3+1 auto = 10 per level 1
			// but only level 1; other levels 3*3=9 >= 7 so coral RP too.
			So(p.RedRP, ShouldBeGreaterThanOrEqualTo, 4)
			So(p.BlueRP, ShouldEqual, 0)
		})
	})
}

func TestCooperation(t *testing.T) {
	Convey("Given the joint cooperation gate", t, func() {
		ctx := context.Background()
		e := NewEngine()

		Convey("When both alliances clear twice the threshold", func() {
			// 3 teams x 2 processor = 6 expected >= 4.
			red := alliance(100, 2, 2)
			blue := alliance(200, 2, 2)

			rt := e.expectedTally(red)
			bt := e.expectedTally(blue)

			So(e.cooperationAchieved(&rt, &bt), ShouldBeTrue)

			Convey("Then the coral RP threshold relaxes to three levels", func() {
				// 6 coral per level < 7, fails without coop on all levels;
				// with coop it still fails (6 < 7 everywhere).
				p, err := e.Quick(ctx, red, blue)
				So(err, ShouldBeNil)
				So(p.RedRP, ShouldEqual, 1) // tie only
			})
		})

		Convey("When one alliance falls short", func() {
			red := alliance(100, 2, 2)
			blue := alliance(200, 2, 0.5)

			rt := e.expectedTally(red)
			bt := e.expectedTally(blue)

			Convey("Then neither earns the bonus", func() {
				So(e.cooperationAchieved(&rt, &bt), ShouldBeFalse)
			})
		})
	})
}

func TestMonteCarlo(t *testing.T) {
	Convey("Given a Monte Carlo prediction", t, func() {
		ctx := context.Background()
		e := NewEngine()

		red := alliance(100, 2.5, 1)
		blue := alliance(200, 1, 1)

		Convey("When run with a fixed seed", func() {
			p, err := e.MonteCarlo(ctx, red, blue, 1000, rand.New(rand.NewSource(7)))
			So(err, ShouldBeNil)

			Convey("Then probabilities are a closed distribution", func() {
				So(p.Mode, ShouldEqual, ModeMonteCarlo)
				So(p.Iterations, ShouldEqual, 1000)
				sum := p.RedWinProbability + p.BlueWinProbability + p.TieProbability
				So(sum, ShouldAlmostEqual, 1.0, 1e-9)
			})

			Convey("Then the stronger alliance wins most trials", func() {
				So(p.RedWinProbability, ShouldBeGreaterThan, p.BlueWinProbability)
			})

			Convey("Then mean breakdowns reconcile with mean scores", func() {
				So(p.RedBreakdown.Total(), ShouldAlmostEqual, p.RedScore, 1e-6)
				So(p.BlueBreakdown.Total(), ShouldAlmostEqual, p.BlueScore, 1e-6)
			})

			Convey("Then the same seed reproduces the same prediction", func() {
				again, err := e.MonteCarlo(ctx, red, blue, 1000, rand.New(rand.NewSource(7)))
				So(err, ShouldBeNil)
				So(again.RedScore, ShouldEqual, p.RedScore)
				So(again.RedWinProbability, ShouldEqual, p.RedWinProbability)
				So(again.RedRP, ShouldEqual, p.RedRP)
			})
		})

		Convey("When no rand source is supplied", func() {
			_, err := e.MonteCarlo(ctx, red, blue, 1000, nil)
			So(errors.Is(err, ErrNilRandSource), ShouldBeTrue)
		})

		Convey("When iteration counts are out of bounds", func() {
			low, err := e.MonteCarlo(ctx, red, blue, 1, rand.New(rand.NewSource(1)))
			So(err, ShouldBeNil)
			So(low.Iterations, ShouldEqual, 200)

			high, err := e.MonteCarlo(ctx, red, blue, 1_000_000, rand.New(rand.NewSource(1)))
			So(err, ShouldBeNil)
			So(high.Iterations, ShouldEqual, 5000)

			def, err := e.MonteCarlo(ctx, red, blue, 0, rand.New(rand.NewSource(1)))
			So(err, ShouldBeNil)
			So(def.Iterations, ShouldEqual, 1000)
		})
	})
}

func TestValidation(t *testing.T) {
	Convey("Given malformed alliances", t, func() {
		ctx := context.Background()
		e := NewEngine()
		full := alliance(100, 1, 1)

		Convey("Short alliances are rejected", func() {
			_, err := e.Quick(ctx, full[:2], full)
			So(errors.Is(err, ErrInsufficientData), ShouldBeTrue)
		})

		Convey("Profiles without a team are rejected", func() {
			broken := alliance(200, 1, 1)
			broken[1].TeamNumber = 0
			_, err := e.Quick(ctx, full, broken)
			So(errors.Is(err, ErrInsufficientData), ShouldBeTrue)
		})

		Convey("Unknown modes are rejected by Predict", func() {
			_, err := e.Predict(ctx, full, alliance(200, 1, 1), Mode("psychic"), 0, nil)
			So(errors.Is(err, ErrInvalidMode), ShouldBeTrue)
		})
	})
}

func TestSampling(t *testing.T) {
	Convey("Given the samplers", t, func() {
		rng := rand.New(rand.NewSource(42))

		Convey("A zero-rate Poisson is a deterministic zero", func() {
			for i := 0; i < 100; i++ {
				So(poisson(rng, 0), ShouldEqual, 0)
			}
		})

		Convey("Poisson means converge for small rates", func() {
			const trials = 20000
			const mean = 2.5
			var sum int
			for i := 0; i < trials; i++ {
				sum += poisson(rng, mean)
			}
			So(float64(sum)/trials, ShouldAlmostEqual, mean, 0.1)
		})

		Convey("Large means use the normal approximation and stay close", func() {
			const trials = 20000
			const mean = 50.0
			var sum int
			for i := 0; i < trials; i++ {
				sum += poisson(rng, mean)
			}
			So(float64(sum)/trials, ShouldAlmostEqual, mean, 0.5)
		})

		Convey("Bernoulli respects the degenerate probabilities", func() {
			So(bernoulli(rng, 0), ShouldBeFalse)
			So(bernoulli(rng, 1), ShouldBeTrue)
		})

		Convey("Climb sampling only returns configured point values", func() {
			dist := stats.ClimbDistribution{None: 0.25, Park: 0.25, Shallow: 0.25, Deep: 0.25}
			pts := DefaultGameConfig().Climb
			valid := map[float64]bool{pts.None: true, pts.Park: true, pts.Shallow: true, pts.Deep: true}
			for i := 0; i < 1000; i++ {
				So(valid[sampleClimbPoints(rng, dist, &pts)], ShouldBeTrue)
			}
		})
	})
}
