package stats

import (
	"context"
	"math"

	"github.com/scoutlab/reefcore/internal/domain/model"
)

// Heuristic constants for fields that cannot be observed directly, carried
// over from the scouting extractor that predates per-field collection.
const (
	autoCoralShare     = 0.30 // combined coral averages split 30% auto / 70% teleop
	teleopCoralShare   = 0.70
	autoProcessorShare = 0.25 // auto processor estimated from teleop rate

	cooperationFloor   = 0.1
	cooperationCeiling = 0.8
	cooperationDivisor = 3.0
)

// ClimbDistribution is a probability vector over endgame outcomes.
// Components sum to 1 for any profile built from at least one record.
type ClimbDistribution struct {
	None    float64 `json:"none"`
	Park    float64 `json:"park"`
	Shallow float64 `json:"shallow"`
	Deep    float64 `json:"deep"`
}

// Profile is the immutable per-team performance model. All rates are
// expected counts per match; probabilities are in [0, 1].
type Profile struct {
	TeamNumber int `json:"team_number"`
	Matches    int `json:"matches"`

	// Coral rates per reef level, index 0 = L1.
	AutoCoral   [4]float64 `json:"auto_coral"`
	TeleopCoral [4]float64 `json:"teleop_coral"`

	// Algae rates.
	AutoProcessor   float64 `json:"auto_processor"`
	TeleopProcessor float64 `json:"teleop_processor"`
	TeleopNet       float64 `json:"teleop_net"`

	// Probabilities.
	PLeaveZone   float64           `json:"p_leave_zone"`
	PCooperation float64           `json:"p_cooperation"`
	Climb        ClimbDistribution `json:"climb"`

	// Aggregate scores.
	OverallAvg float64 `json:"overall_avg"`
	OverallStd float64 `json:"overall_std"`
	AutoAvg    float64 `json:"auto_avg"`
	TeleopAvg  float64 `json:"teleop_avg"`
	EndgameAvg float64 `json:"endgame_avg"`

	// Qualitative rates.
	DefenseRate float64 `json:"defense_rate"`
	DeathRate   float64 `json:"death_rate"`

	// Valuation rewards improvement across an event.
	Valuation float64 `json:"valuation"`
}

// Build derives a profile from a team's match history. At least one record
// is required; zero-rate categories are legitimate zeros, not errors.
func Build(_ context.Context, team int, records []model.MatchRecord) (Profile, error) {
	if team < 1 {
		return Profile{}, ErrUnknownTeam
	}
	if len(records) == 0 {
		return Profile{}, ErrNoRecords
	}

	n := float64(len(records))
	p := Profile{TeamNumber: team, Matches: len(records)}

	var sum, sumSq float64
	var left, defense, died int
	var climbCounts [4]int

	for i := range records {
		r := &records[i]

		p.AutoCoral[0] += float64(r.AutoCoralL1)
		p.AutoCoral[1] += float64(r.AutoCoralL2)
		p.AutoCoral[2] += float64(r.AutoCoralL3)
		p.AutoCoral[3] += float64(r.AutoCoralL4)
		p.TeleopCoral[0] += float64(r.TeleopCoralL1)
		p.TeleopCoral[1] += float64(r.TeleopCoralL2)
		p.TeleopCoral[2] += float64(r.TeleopCoralL3)
		p.TeleopCoral[3] += float64(r.TeleopCoralL4)
		p.AutoProcessor += float64(r.AutoProcessor)
		p.TeleopProcessor += float64(r.TeleopProcessor)
		p.TeleopNet += float64(r.TeleopNet)

		s := MatchScore(r)
		sum += s
		sumSq += s * s
		p.AutoAvg += AutoScore(r)
		p.TeleopAvg += TeleopScore(r)
		p.EndgameAvg += EndgameScore(r)

		if r.LeftStartingZone {
			left++
		}
		if r.PlayedDefense {
			defense++
		}
		if r.DiedOnField {
			died++
		}
		switch r.ClimbResult {
		case model.ClimbPark:
			climbCounts[1]++
		case model.ClimbShallow:
			climbCounts[2]++
		case model.ClimbDeep:
			climbCounts[3]++
		default:
			climbCounts[0]++
		}
	}

	for i := range p.AutoCoral {
		p.AutoCoral[i] /= n
		p.TeleopCoral[i] /= n
	}
	p.AutoProcessor /= n
	p.TeleopProcessor /= n
	p.TeleopNet /= n
	p.AutoAvg /= n
	p.TeleopAvg /= n
	p.EndgameAvg /= n

	p.OverallAvg = sum / n
	variance := sumSq/n - p.OverallAvg*p.OverallAvg
	if variance > 0 {
		p.OverallStd = math.Sqrt(variance)
	}

	p.PLeaveZone = float64(left) / n
	p.DefenseRate = float64(defense) / n
	p.DeathRate = float64(died) / n
	p.Climb = ClimbDistribution{
		None:    float64(climbCounts[0]) / n,
		Park:    float64(climbCounts[1]) / n,
		Shallow: float64(climbCounts[2]) / n,
		Deep:    float64(climbCounts[3]) / n,
	}
	p.PCooperation = cooperationEstimate(p.TeleopProcessor)
	p.Valuation = valuation(records)

	return p, nil
}

// FromAverages derives a profile from pre-aggregated per-level coral
// averages and a teleop processor rate, for data sources that only export
// combined statistics. The split heuristics mirror Build's direct
// observation as closely as the inputs allow.
func FromAverages(team int, coralLevelAvg [4]float64, teleopProcessor, teleopNet, overallAvg float64) Profile {
	p := Profile{
		TeamNumber:      team,
		Matches:         0,
		TeleopProcessor: teleopProcessor,
		AutoProcessor:   teleopProcessor * autoProcessorShare,
		TeleopNet:       teleopNet,
		OverallAvg:      overallAvg,
	}
	for i, avg := range coralLevelAvg {
		p.AutoCoral[i] = avg * autoCoralShare
		p.TeleopCoral[i] = avg * teleopCoralShare
	}

	switch {
	case overallAvg > 60:
		p.PLeaveZone = 0.85
	case overallAvg > 30:
		p.PLeaveZone = 0.65
	default:
		p.PLeaveZone = 0.35
	}

	switch {
	case overallAvg > 50:
		p.Climb = ClimbDistribution{None: 0.1, Park: 0.2, Shallow: 0.4, Deep: 0.3}
	case overallAvg > 30:
		p.Climb = ClimbDistribution{None: 0.2, Park: 0.3, Shallow: 0.4, Deep: 0.1}
	default:
		p.Climb = ClimbDistribution{None: 0.5, Park: 0.3, Shallow: 0.15, Deep: 0.05}
	}

	p.PCooperation = cooperationEstimate(teleopProcessor)
	return p
}

// cooperationEstimate maps processor activity onto a cooperation
// probability, clamped so no team is ever certain either way.
func cooperationEstimate(teleopProcessor float64) float64 {
	return math.Min(cooperationCeiling, math.Max(cooperationFloor, teleopProcessor/cooperationDivisor))
}
