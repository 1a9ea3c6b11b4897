// Package stats aggregates scouting records into immutable per-team
// performance profiles. Profiles are rebuilt from scratch whenever the
// underlying records change; they are never patched in place.
package stats

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/scoutlab/reefcore/internal/domain/model"
)

// Per-match scoring weights used for the overall score. Coral weights are
// per level; autonomous coral counts double.
const (
	coralWeightL1 = 2.0
	coralWeightL2 = 3.0
	coralWeightL3 = 4.0
	coralWeightL4 = 5.0
	autoMultiplier = 2.0

	processorAutoWeight   = 9.0
	processorTeleopWeight = 6.0
	netTeleopWeight       = 3.0

	climbDeepPoints    = 12.0
	climbShallowPoints = 6.0
	climbParkPoints    = 2.0

	// Robot valuation bonuses, applied per match within a phase.
	defenseBonus   = 5.0
	autoLeaveBonus = 3.0
)

// Valuation phase weights; later phases count more to reward improvement
// across an event. They sum to 1.0.
var valuationWeights = [3]float64{0.2, 0.3, 0.5}

// MatchScore computes the weighted overall score for a single match record.
func MatchScore(r *model.MatchRecord) float64 {
	auto := coralWeightL1*float64(r.AutoCoralL1) +
		coralWeightL2*float64(r.AutoCoralL2) +
		coralWeightL3*float64(r.AutoCoralL3) +
		coralWeightL4*float64(r.AutoCoralL4)
	teleop := coralWeightL1*float64(r.TeleopCoralL1) +
		coralWeightL2*float64(r.TeleopCoralL2) +
		coralWeightL3*float64(r.TeleopCoralL3) +
		coralWeightL4*float64(r.TeleopCoralL4)

	algae := processorAutoWeight*float64(r.AutoProcessor) +
		processorTeleopWeight*float64(r.TeleopProcessor) +
		netTeleopWeight*float64(r.TeleopNet)

	return auto*autoMultiplier + teleop + algae + climbPoints(r.ClimbResult)
}

// AutoScore computes the autonomous portion of the overall score.
func AutoScore(r *model.MatchRecord) float64 {
	auto := coralWeightL1*float64(r.AutoCoralL1) +
		coralWeightL2*float64(r.AutoCoralL2) +
		coralWeightL3*float64(r.AutoCoralL3) +
		coralWeightL4*float64(r.AutoCoralL4)
	return auto*autoMultiplier + processorAutoWeight*float64(r.AutoProcessor)
}

// TeleopScore computes the teleop portion of the overall score.
func TeleopScore(r *model.MatchRecord) float64 {
	teleop := coralWeightL1*float64(r.TeleopCoralL1) +
		coralWeightL2*float64(r.TeleopCoralL2) +
		coralWeightL3*float64(r.TeleopCoralL3) +
		coralWeightL4*float64(r.TeleopCoralL4)
	return teleop + processorTeleopWeight*float64(r.TeleopProcessor) + netTeleopWeight*float64(r.TeleopNet)
}

// EndgameScore computes the endgame portion of the overall score.
func EndgameScore(r *model.MatchRecord) float64 {
	return climbPoints(r.ClimbResult)
}

func climbPoints(c model.Climb) float64 {
	switch c {
	case model.ClimbDeep:
		return climbDeepPoints
	case model.ClimbShallow:
		return climbShallowPoints
	case model.ClimbPark:
		return climbParkPoints
	default:
		return 0
	}
}

// Registry collects match records per team and serves freshly built
// profiles. Safe for concurrent use by the worker pool and HTTP readers.
type Registry struct {
	mu    sync.RWMutex
	teams map[int][]model.MatchRecord
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{teams: make(map[int][]model.MatchRecord)}
}

// Add appends a record to the team's history and returns the rebuilt
// profile reflecting it.
func (g *Registry) Add(ctx context.Context, r model.MatchRecord) (Profile, error) {
	if err := r.Validate(); err != nil {
		return Profile{}, err
	}

	g.mu.Lock()
	g.teams[r.TeamNumber] = append(g.teams[r.TeamNumber], r)
	records := make([]model.MatchRecord, len(g.teams[r.TeamNumber]))
	copy(records, g.teams[r.TeamNumber])
	g.mu.Unlock()

	return Build(ctx, r.TeamNumber, records)
}

// Profile builds the current profile for a team.
func (g *Registry) Profile(ctx context.Context, team int) (Profile, error) {
	g.mu.RLock()
	records, ok := g.teams[team]
	if ok {
		records = append([]model.MatchRecord(nil), records...)
	}
	g.mu.RUnlock()

	if !ok {
		return Profile{}, ErrUnknownTeam
	}
	return Build(ctx, team, records)
}

// Profiles builds profiles for every tracked team, ordered by team number.
func (g *Registry) Profiles(ctx context.Context) ([]Profile, error) {
	g.mu.RLock()
	snapshot := make(map[int][]model.MatchRecord, len(g.teams))
	for team, records := range g.teams {
		snapshot[team] = append([]model.MatchRecord(nil), records...)
	}
	g.mu.RUnlock()

	teams := make([]int, 0, len(snapshot))
	for team := range snapshot {
		teams = append(teams, team)
	}
	sort.Ints(teams)

	out := make([]Profile, 0, len(teams))
	for _, team := range teams {
		p, err := Build(ctx, team, snapshot[team])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// TeamCount returns the number of teams with at least one record.
func (g *Registry) TeamCount(ctx context.Context) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.teams)
}

// valuation weights match performance across the first, middle, and final
// third of a team's matches, rewarding teams that peak at the right time.
func valuation(records []model.MatchRecord) float64 {
	if len(records) == 0 {
		return 0
	}

	ordered := append([]model.MatchRecord(nil), records...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].MatchNumber < ordered[j].MatchNumber
	})

	phaseScore := func(phase []model.MatchRecord) float64 {
		if len(phase) == 0 {
			return 0
		}
		var total float64
		for i := range phase {
			s := MatchScore(&phase[i])
			if phase[i].PlayedDefense {
				s += defenseBonus
			}
			if phase[i].LeftStartingZone {
				s += autoLeaveBonus
			}
			total += s
		}
		return total / float64(len(phase))
	}

	n := len(ordered)
	firstCut := (n + 2) / 3
	secondCut := firstCut + (n-firstCut+1)/2

	total := valuationWeights[0]*phaseScore(ordered[:firstCut]) +
		valuationWeights[1]*phaseScore(ordered[firstCut:secondCut]) +
		valuationWeights[2]*phaseScore(ordered[secondCut:])
	return math.Round(total*100) / 100
}
