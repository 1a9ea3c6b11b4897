package predict

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/scoutlab/reefcore/internal/domain/stats"
)

// AllianceSize is the number of teams per alliance in the standard format.
const AllianceSize = 3

// Default Monte Carlo iteration bounds.
const (
	defaultIterations = 1000
	minIterations     = 200
	maxIterations     = 5000
)

// Mode selects the aggregation strategy for a prediction.
type Mode string

// Supported prediction modes.
const (
	ModeQuick      Mode = "quick"
	ModeMonteCarlo Mode = "montecarlo"
)

// ParseMode validates a mode string. Empty input defaults to quick.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeQuick, nil
	case ModeQuick, ModeMonteCarlo:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidMode, s)
}

// Breakdown holds per-category point contributions for one alliance.
// Point components sum to the alliance's headline score; AutoLeaves and
// Cooperation are informational (counts and rates, not points).
type Breakdown struct {
	CoralAuto   [4]float64 `json:"coral_auto_points"`
	CoralTeleop [4]float64 `json:"coral_teleop_points"`
	Processor   float64    `json:"processor_points"`
	Net         float64    `json:"net_points"`
	Climb       float64    `json:"climb_points"`

	AutoLeaves  float64 `json:"auto_leaves"`
	Cooperation float64 `json:"cooperation_rate"`
}

// Total sums the point-bearing components.
func (b *Breakdown) Total() float64 {
	t := b.Processor + b.Net + b.Climb
	for i := range b.CoralAuto {
		t += b.CoralAuto[i] + b.CoralTeleop[i]
	}
	return t
}

// Prediction is the immutable outcome of a single prediction call.
type Prediction struct {
	Mode       Mode `json:"mode"`
	Iterations int  `json:"iterations,omitempty"`

	RedScore  float64 `json:"red_score"`
	BlueScore float64 `json:"blue_score"`

	RedWinProbability  float64 `json:"red_win_probability"`
	BlueWinProbability float64 `json:"blue_win_probability"`
	TieProbability     float64 `json:"tie_probability"`

	RedRP  int `json:"red_rp"`
	BlueRP int `json:"blue_rp"`

	RedBreakdown  Breakdown `json:"red_breakdown"`
	BlueBreakdown Breakdown `json:"blue_breakdown"`
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithGameConfig overrides the season point values.
func WithGameConfig(cfg GameConfig) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithIterationBounds sets the default, minimum, and maximum Monte Carlo
// trial counts. Requested iteration counts are clamped to [min, max].
func WithIterationBounds(def, minIter, maxIter int) Option {
	return func(e *Engine) {
		if minIter > 0 && maxIter >= minIter && def >= minIter && def <= maxIter {
			e.defaultIter = def
			e.minIter = minIter
			e.maxIter = maxIter
		}
	}
}

// Engine computes match predictions. It is stateless apart from its
// configuration and safe for concurrent use; randomness is injected per
// call so identical seeds reproduce identical predictions.
type Engine struct {
	cfg         GameConfig
	defaultIter int
	minIter     int
	maxIter     int
}

// NewEngine creates an engine with REEFSCAPE defaults.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cfg:         DefaultGameConfig(),
		defaultIter: defaultIterations,
		minIter:     minIterations,
		maxIter:     maxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Predict dispatches to the requested mode. For Monte Carlo, iterations of
// zero selects the default and rng must not be nil.
func (e *Engine) Predict(ctx context.Context, red, blue []stats.Profile, mode Mode, iterations int, rng *rand.Rand) (Prediction, error) {
	switch mode {
	case ModeQuick:
		return e.Quick(ctx, red, blue)
	case ModeMonteCarlo:
		return e.MonteCarlo(ctx, red, blue, iterations, rng)
	}
	return Prediction{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidMode, mode)
}

// Quick computes a single expected-value pass: every rate contributes its
// mean directly and ranking point thresholds are evaluated against the
// expected totals. The winner is decided by strict score comparison, so
// probabilities are degenerate (1/0/0, or tie probability 1 on exact
// equality).
func (e *Engine) Quick(_ context.Context, red, blue []stats.Profile) (Prediction, error) {
	if err := validateAlliances(red, blue); err != nil {
		return Prediction{}, err
	}

	rt := e.expectedTally(red)
	bt := e.expectedTally(blue)
	coop := e.cooperationAchieved(&rt, &bt)

	p := Prediction{
		Mode:          ModeQuick,
		RedScore:      rt.score(&e.cfg),
		BlueScore:     bt.score(&e.cfg),
		RedBreakdown:  rt.breakdown(&e.cfg, cooperationEstimate(red, blue)),
		BlueBreakdown: bt.breakdown(&e.cfg, cooperationEstimate(red, blue)),
	}

	switch {
	case p.RedScore > p.BlueScore:
		p.RedWinProbability = 1
	case p.BlueScore > p.RedScore:
		p.BlueWinProbability = 1
	default:
		p.TieProbability = 1
	}

	redRP, blueRP := e.rankingPoints(&rt, &bt, coop)
	p.RedRP, p.BlueRP = redRP, blueRP
	return p, nil
}

// MonteCarlo runs independent trials and aggregates them: scores and
// breakdown components are trial means, win and tie probabilities are
// trial frequencies, and ranking points are the per-trial mean rounded to
// the nearest integer (documented aggregation policy).
func (e *Engine) MonteCarlo(_ context.Context, red, blue []stats.Profile, iterations int, rng *rand.Rand) (Prediction, error) {
	if err := validateAlliances(red, blue); err != nil {
		return Prediction{}, err
	}
	if rng == nil {
		return Prediction{}, ErrNilRandSource
	}
	iterations = e.clampIterations(iterations)

	var (
		redSum, blueSum   tally
		redWins, blueWins int
		ties              int
		redRPSum          int
		blueRPSum         int
		coopCount         int
	)

	for i := 0; i < iterations; i++ {
		rt := e.sampleTally(rng, red)
		bt := e.sampleTally(rng, blue)

		coop := e.cooperationAchieved(&rt, &bt)
		if coop {
			coopCount++
		}

		redScore := rt.score(&e.cfg)
		blueScore := bt.score(&e.cfg)
		switch {
		case redScore > blueScore:
			redWins++
		case blueScore > redScore:
			blueWins++
		default:
			ties++
		}

		redRP, blueRP := e.rankingPoints(&rt, &bt, coop)
		redRPSum += redRP
		blueRPSum += blueRP

		redSum.add(&rt)
		blueSum.add(&bt)
	}

	n := float64(iterations)
	redSum.scale(1 / n)
	blueSum.scale(1 / n)
	coopRate := float64(coopCount) / n

	p := Prediction{
		Mode:               ModeMonteCarlo,
		Iterations:         iterations,
		RedScore:           redSum.score(&e.cfg),
		BlueScore:          blueSum.score(&e.cfg),
		RedWinProbability:  float64(redWins) / n,
		BlueWinProbability: float64(blueWins) / n,
		TieProbability:     float64(ties) / n,
		RedRP:              int(math.Round(float64(redRPSum) / n)),
		BlueRP:             int(math.Round(float64(blueRPSum) / n)),
		RedBreakdown:       redSum.breakdown(&e.cfg, coopRate),
		BlueBreakdown:      blueSum.breakdown(&e.cfg, coopRate),
	}
	return p, nil
}

func (e *Engine) clampIterations(n int) int {
	switch {
	case n == 0:
		return e.defaultIter
	case n < e.minIter:
		return e.minIter
	case n > e.maxIter:
		return e.maxIter
	}
	return n
}

// tally accumulates alliance-level category counts for one trial or for
// the expected-value pass. Counts, not points; scoring happens at the end
// so breakdown components always reconcile with the total.
type tally struct {
	coralAuto   [4]float64
	coralTeleop [4]float64
	processor   float64
	net         float64
	climbPoints float64
	leaves      float64
}

func (t *tally) add(o *tally) {
	for i := range t.coralAuto {
		t.coralAuto[i] += o.coralAuto[i]
		t.coralTeleop[i] += o.coralTeleop[i]
	}
	t.processor += o.processor
	t.net += o.net
	t.climbPoints += o.climbPoints
	t.leaves += o.leaves
}

func (t *tally) scale(f float64) {
	for i := range t.coralAuto {
		t.coralAuto[i] *= f
		t.coralTeleop[i] *= f
	}
	t.processor *= f
	t.net *= f
	t.climbPoints *= f
	t.leaves *= f
}

func (t *tally) autoCoral() float64 {
	var s float64
	for _, c := range t.coralAuto {
		s += c
	}
	return s
}

// coralPerLevel returns combined auto+teleop coral for a level.
func (t *tally) coralPerLevel(level int) float64 {
	return t.coralAuto[level] + t.coralTeleop[level]
}

func (t *tally) score(cfg *GameConfig) float64 {
	s := t.processor*cfg.ProcessorPoints + t.net*cfg.NetPoints + t.climbPoints
	for i := range t.coralAuto {
		s += t.coralAuto[i]*cfg.CoralAutoPoints[i] + t.coralTeleop[i]*cfg.CoralTeleopPoints[i]
	}
	return s
}

func (t *tally) breakdown(cfg *GameConfig, coopRate float64) Breakdown {
	b := Breakdown{
		Processor:   t.processor * cfg.ProcessorPoints,
		Net:         t.net * cfg.NetPoints,
		Climb:       t.climbPoints,
		AutoLeaves:  t.leaves,
		Cooperation: coopRate,
	}
	for i := range t.coralAuto {
		b.CoralAuto[i] = t.coralAuto[i] * cfg.CoralAutoPoints[i]
		b.CoralTeleop[i] = t.coralTeleop[i] * cfg.CoralTeleopPoints[i]
	}
	return b
}

// expectedTally sums each team's mean rates.
func (e *Engine) expectedTally(teams []stats.Profile) tally {
	var t tally
	for i := range teams {
		p := &teams[i]
		for l := 0; l < 4; l++ {
			t.coralAuto[l] += p.AutoCoral[l]
			t.coralTeleop[l] += p.TeleopCoral[l]
		}
		t.processor += p.AutoProcessor + p.TeleopProcessor
		t.net += p.TeleopNet
		t.climbPoints += p.Climb.None*e.cfg.Climb.None +
			p.Climb.Park*e.cfg.Climb.Park +
			p.Climb.Shallow*e.cfg.Climb.Shallow +
			p.Climb.Deep*e.cfg.Climb.Deep
		t.leaves += p.PLeaveZone
	}
	return t
}

// sampleTally draws one trial for an alliance. Zero-rate categories are
// deterministic zeros.
func (e *Engine) sampleTally(rng *rand.Rand, teams []stats.Profile) tally {
	var t tally
	for i := range teams {
		p := &teams[i]
		for l := 0; l < 4; l++ {
			t.coralAuto[l] += float64(poisson(rng, p.AutoCoral[l]))
			t.coralTeleop[l] += float64(poisson(rng, p.TeleopCoral[l]))
		}
		t.processor += float64(poisson(rng, p.AutoProcessor) + poisson(rng, p.TeleopProcessor))
		t.net += float64(poisson(rng, p.TeleopNet))
		t.climbPoints += sampleClimbPoints(rng, p.Climb, &e.cfg.Climb)
		if bernoulli(rng, p.PLeaveZone) {
			t.leaves++
		}
	}
	return t
}

// cooperationAchieved is the joint match-level gate: both alliances must
// clear twice the per-processor algae threshold, or neither earns the bonus.
func (e *Engine) cooperationAchieved(rt, bt *tally) bool {
	need := float64(e.cfg.CooperationThreshold * 2)
	return rt.processor >= need && bt.processor >= need
}

// rankingPoints evaluates match-result, auto, and coral ranking points for
// both alliances against one pair of tallies.
func (e *Engine) rankingPoints(rt, bt *tally, coop bool) (int, int) {
	var redRP, blueRP int

	redScore := rt.score(&e.cfg)
	blueScore := bt.score(&e.cfg)
	switch {
	case redScore > blueScore:
		redRP += e.cfg.WinRP
		blueRP += e.cfg.LossRP
	case blueScore > redScore:
		blueRP += e.cfg.WinRP
		redRP += e.cfg.LossRP
	default:
		redRP += e.cfg.TieRP
		blueRP += e.cfg.TieRP
	}

	if rt.leaves >= float64(e.cfg.AutoRPLeaves) && rt.autoCoral() >= float64(e.cfg.AutoRPMinCoral) {
		redRP++
	}
	if bt.leaves >= float64(e.cfg.AutoRPLeaves) && bt.autoCoral() >= float64(e.cfg.AutoRPMinCoral) {
		blueRP++
	}

	if e.coralRP(rt, coop) {
		redRP++
	}
	if e.coralRP(bt, coop) {
		blueRP++
	}
	return redRP, blueRP
}

// coralRP checks the coral threshold: every level without the cooperation
// bonus, or a reduced level count with it.
func (e *Engine) coralRP(t *tally, coop bool) bool {
	need := float64(e.cfg.CoralRPPerLevel)
	if coop {
		levels := 0
		for l := 0; l < 4; l++ {
			if t.coralPerLevel(l) >= need {
				levels++
			}
		}
		return levels >= e.cfg.CoralRPLevelsWithCoop
	}
	for l := 0; l < 4; l++ {
		if t.coralPerLevel(l) < need {
			return false
		}
	}
	return true
}

// cooperationEstimate is a display-only probability that both alliances
// play the cooperation objective, from the profiles' estimated rates.
func cooperationEstimate(red, blue []stats.Profile) float64 {
	mean := func(teams []stats.Profile) float64 {
		var s float64
		for i := range teams {
			s += teams[i].PCooperation
		}
		return s / float64(len(teams))
	}
	return mean(red) * mean(blue)
}

func validateAlliances(red, blue []stats.Profile) error {
	if len(red) != AllianceSize {
		return fmt.Errorf("%w: red alliance has %d of %d teams", ErrInsufficientData, len(red), AllianceSize)
	}
	if len(blue) != AllianceSize {
		return fmt.Errorf("%w: blue alliance has %d of %d teams", ErrInsufficientData, len(blue), AllianceSize)
	}
	for _, teams := range [][]stats.Profile{red, blue} {
		for i := range teams {
			if teams[i].TeamNumber < 1 {
				return fmt.Errorf("%w: alliance contains a team without a profile", ErrInsufficientData)
			}
		}
	}
	return nil
}
