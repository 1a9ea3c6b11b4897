// Package honorroll scores teams on a curved honor-roll composite built
// from match performance, pit scouting, and event conduct. Teams that miss
// the competency or score floors are marked disqualified but stay in the
// ranking with zeroed curved points.
package honorroll

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/scoutlab/reefcore/internal/domain/model"
)

// Composite weights. Match/pit/event must sum to one; the pit component
// weights are fractions of its 30-point share.
const (
	matchWeight = 0.50
	pitWeight   = 0.30
	eventWeight = 0.20

	phaseAutoWeight    = 0.20
	phaseTeleopWeight  = 0.60
	phaseEndgameWeight = 0.20

	pitElectricalWeight    = 10.0 / 30.0
	pitMechanicalWeight    = 7.5 / 30.0
	pitDriverStationWeight = 5.0 / 30.0
	pitToolsWeight         = 5.0 / 30.0
	pitSparePartsWeight    = 2.5 / 30.0

	competencyMultiplier    = 6
	subcompetencyMultiplier = 3

	minCompetencies    = 2
	minSubcompetencies = 1

	scoreFloor   = 0.0
	scoreCeiling = 100.0
)

// ReportType classifies a behavior report by severity.
type ReportType string

// Behavior report types.
const (
	LowConduct     ReportType = "low_conduct"
	VeryLowConduct ReportType = "very_low_conduct"
)

// Penalty returns the points subtracted per report of this type.
func (t ReportType) Penalty() int {
	switch t {
	case LowConduct:
		return 2
	case VeryLowConduct:
		return 5
	default:
		return 0
	}
}

// Valid reports whether t names a known report type.
func (t ReportType) Valid() bool {
	return t == LowConduct || t == VeryLowConduct
}

// Competencies are the seven pass/fail checks a team must mostly clear to
// qualify.
type Competencies struct {
	TeamCommunication    bool `json:"team_communication"`
	DrivingSkills        bool `json:"driving_skills"`
	Reliability          bool `json:"reliability"`
	NoDeaths             bool `json:"no_deaths"`
	PassedInspectionFast bool `json:"passed_inspection_fast"`
	HumanPlayer          bool `json:"human_player"`
	NecessaryDriversFix  bool `json:"necessary_drivers_fix"`
}

// Count returns the number of checked competencies.
func (c Competencies) Count() int {
	n := 0
	for _, v := range []bool{
		c.TeamCommunication, c.DrivingSkills, c.Reliability, c.NoDeaths,
		c.PassedInspectionFast, c.HumanPlayer, c.NecessaryDriversFix,
	} {
		if v {
			n++
		}
	}
	return n
}

// Subcompetencies are the five softer checks worth bonus points.
type Subcompetencies struct {
	WorkingUnderPressure bool `json:"working_under_pressure"`
	Commitment           bool `json:"commitment"`
	WinMostGames         bool `json:"win_most_games"`
	NeverAskPitAdmin     bool `json:"never_ask_pit_admin"`
	KnowsTheRules        bool `json:"knows_the_rules"`
}

// Count returns the number of checked subcompetencies.
func (s Subcompetencies) Count() int {
	n := 0
	for _, v := range []bool{
		s.WorkingUnderPressure, s.Commitment, s.WinMostGames,
		s.NeverAskPitAdmin, s.KnowsTheRules,
	} {
		if v {
			n++
		}
	}
	return n
}

// Result is the computed honor-roll standing of one team.
type Result struct {
	Team            int     `json:"team"`
	MatchScore      float64 `json:"match_score"`
	PitScore        float64 `json:"pit_score"`
	EventScore      float64 `json:"event_score"`
	HonorRollScore  float64 `json:"honor_roll_score"`
	CurvedScore     float64 `json:"curved_score"`
	FinalPoints     int     `json:"final_points"`
	Competencies    int     `json:"competencies"`
	Subcompetencies int     `json:"subcompetencies"`
	Penalties       int     `json:"penalties"`
	Disqualified    bool    `json:"disqualified"`
	Reason          string  `json:"reason,omitempty"`
}

type teamEntry struct {
	auto    float64
	teleop  float64
	endgame float64

	electrical    float64
	mechanical    float64
	driverStation float64
	tools         float64
	spareParts    float64

	organization  float64
	collaboration float64

	competencies    Competencies
	subcompetencies Subcompetencies
	penalties       int
}

// System accumulates per-team inputs and computes the curved ranking on
// demand. All methods are safe for concurrent use.
type System struct {
	mu    sync.Mutex
	teams map[int]*teamEntry

	scaleMin        float64
	scaleMax        float64
	scaleFallback   float64
	qualifyingScore float64
}

// NewSystem builds an empty scoring system.
func NewSystem(opts ...Option) *System {
	s := &System{
		teams:           make(map[int]*teamEntry),
		scaleMin:        defaultScaleMin,
		scaleMax:        defaultScaleMax,
		scaleFallback:   defaultScaleFallback,
		qualifyingScore: defaultQualifyingScore,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *System) entry(team int) *teamEntry {
	e, ok := s.teams[team]
	if !ok {
		e = &teamEntry{}
		s.teams[team] = e
	}
	return e
}

// scaleFactor maps raw phase totals into the 0-100 competency domain. The
// factor tracks how the reference overall average relates to the raw phase
// total so strong and weak fields scale consistently; degenerate inputs
// use the fixed fallback instead of dividing by zero.
func (s *System) scaleFactor(overallAvg, phaseTotal float64) float64 {
	if overallAvg <= 0 || phaseTotal <= 0 {
		return s.scaleFallback
	}
	f := overallAvg / phaseTotal
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return s.scaleFallback
	}
	return math.Max(s.scaleMin, math.Min(s.scaleMax, f))
}

func clampScore(v float64) float64 {
	return math.Max(scoreFloor, math.Min(scoreCeiling, v))
}

// SetMatchPhases records raw autonomous/teleop/endgame averages for a
// team, scaled against the reference overall average.
func (s *System) SetMatchPhases(_ context.Context, team int, auto, teleop, endgame, overallAvg float64) error {
	if team < 1 {
		return fmt.Errorf("team %d: %w", team, ErrDegenerateInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	factor := s.scaleFactor(overallAvg, auto+teleop+endgame)
	e := s.entry(team)
	e.auto = clampScore(auto * factor)
	e.teleop = clampScore(teleop * factor)
	e.endgame = clampScore(endgame * factor)
	return nil
}

// SetPit records the pit-scouting scores for a team.
func (s *System) SetPit(_ context.Context, team int, rec *model.PitRecord) error {
	if team < 1 || rec == nil {
		return fmt.Errorf("team %d: %w", team, ErrDegenerateInput)
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(team)
	e.electrical = clampScore(rec.Electrical)
	e.mechanical = clampScore(rec.Mechanical)
	e.driverStation = clampScore(rec.DriverStation)
	e.tools = clampScore(rec.Tools)
	e.spareParts = clampScore(rec.SpareParts)
	return nil
}

// SetEvent records the during-event conduct scores for a team.
func (s *System) SetEvent(_ context.Context, team int, organization, collaboration float64) error {
	if team < 1 {
		return fmt.Errorf("team %d: %w", team, ErrDegenerateInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(team)
	e.organization = clampScore(organization)
	e.collaboration = clampScore(collaboration)
	return nil
}

// SetCompetencies replaces the competency checklist for a team.
func (s *System) SetCompetencies(_ context.Context, team int, c Competencies, sub Subcompetencies) error {
	if team < 1 {
		return fmt.Errorf("team %d: %w", team, ErrDegenerateInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(team)
	e.competencies = c
	e.subcompetencies = sub
	return nil
}

// AddBehaviorReport files a conduct report against a team.
func (s *System) AddBehaviorReport(_ context.Context, team int, typ ReportType) error {
	if team < 1 || !typ.Valid() {
		return fmt.Errorf("team %d report %q: %w", team, typ, ErrDegenerateInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entry(team).penalties += typ.Penalty()
	return nil
}

// TeamCount returns the number of teams with any recorded input.
func (s *System) TeamCount(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.teams)
}

func (e *teamEntry) matchScore() float64 {
	return e.auto*phaseAutoWeight + e.teleop*phaseTeleopWeight + e.endgame*phaseEndgameWeight
}

func (e *teamEntry) pitScore() float64 {
	return e.electrical*pitElectricalWeight +
		e.mechanical*pitMechanicalWeight +
		e.driverStation*pitDriverStationWeight +
		e.tools*pitToolsWeight +
		e.spareParts*pitSparePartsWeight
}

func (e *teamEntry) eventScore() float64 {
	return 0.5*e.organization + 0.5*e.collaboration
}

func (s *System) compute(team int, e *teamEntry) Result {
	r := Result{
		Team:            team,
		MatchScore:      e.matchScore(),
		PitScore:        e.pitScore(),
		EventScore:      e.eventScore(),
		Competencies:    e.competencies.Count(),
		Subcompetencies: e.subcompetencies.Count(),
		Penalties:       e.penalties,
	}
	r.HonorRollScore = r.MatchScore*matchWeight + r.PitScore*pitWeight + r.EventScore*eventWeight

	switch {
	case r.Competencies < minCompetencies:
		r.Disqualified = true
		r.Reason = fmt.Sprintf("insufficient competencies: %d < %d", r.Competencies, minCompetencies)
	case r.Subcompetencies < minSubcompetencies:
		r.Disqualified = true
		r.Reason = fmt.Sprintf("insufficient subcompetencies: %d < %d", r.Subcompetencies, minSubcompetencies)
	case r.HonorRollScore < s.qualifyingScore:
		r.Disqualified = true
		r.Reason = fmt.Sprintf("honor roll score too low: %.1f < %.1f", r.HonorRollScore, s.qualifyingScore)
	}
	return r
}

// Ranking computes every team's standing, ordered by honor-roll score
// descending with ties broken by team number ascending. Disqualified teams
// appear with zero curved score and final points.
func (s *System) Ranking(_ context.Context) []Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]Result, 0, len(s.teams))
	topQualified := 0.0
	for team, e := range s.teams {
		r := s.compute(team, e)
		if !r.Disqualified && r.HonorRollScore > topQualified {
			topQualified = r.HonorRollScore
		}
		results = append(results, r)
	}
	if topQualified == 0 {
		topQualified = 1
	}

	for i := range results {
		if results[i].Disqualified {
			continue
		}
		r := &results[i]
		r.CurvedScore = r.HonorRollScore / topQualified * 100
		r.FinalPoints = int(math.Round(r.CurvedScore)) +
			r.Competencies*competencyMultiplier +
			r.Subcompetencies*subcompetencyMultiplier -
			r.Penalties
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].HonorRollScore != results[j].HonorRollScore {
			return results[i].HonorRollScore > results[j].HonorRollScore
		}
		return results[i].Team < results[j].Team
	})
	return results
}

// Result computes the standing of a single team, curved against the
// current field.
func (s *System) Result(ctx context.Context, team int) (Result, error) {
	for _, r := range s.Ranking(ctx) {
		if r.Team == team {
			return r, nil
		}
	}
	return Result{}, fmt.Errorf("team %d: %w", team, ErrUnknownTeam)
}

// Disqualified lists the teams that currently fail a qualification rule,
// with reasons.
func (s *System) Disqualified(ctx context.Context) []Result {
	all := s.Ranking(ctx)
	out := make([]Result, 0, len(all))
	for _, r := range all {
		if r.Disqualified {
			out = append(out, r)
		}
	}
	return out
}

// Reset drops all recorded inputs.
func (s *System) Reset(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = make(map[int]*teamEntry)
}
