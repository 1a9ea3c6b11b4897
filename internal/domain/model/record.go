// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// Climb enumerates endgame climb outcomes.
type Climb string

// Climb outcomes in ascending point order.
const (
	ClimbNone    Climb = "none"
	ClimbPark    Climb = "park"
	ClimbShallow Climb = "shallow"
	ClimbDeep    Climb = "deep"
)

// Valid reports whether c is a known climb outcome.
func (c Climb) Valid() bool {
	switch c {
	case ClimbNone, ClimbPark, ClimbShallow, ClimbDeep:
		return true
	}
	return false
}

// MatchRecord is a single team's scouted performance in one match.
// Fields mirror the OpenAPI schema for /events.
type MatchRecord struct {
	RecordID    string    `json:"record_id"`    // unique id for idempotency (double-scan guard)
	TeamNumber  int       `json:"team_number"`  // positive team identifier
	MatchNumber int       `json:"match_number"` // qualification match number
	ScoutedAt   time.Time `json:"scouted_at"`   // collection timestamp

	// Coral counts per reef level, split by phase.
	AutoCoralL1   int `json:"auto_coral_l1"`
	AutoCoralL2   int `json:"auto_coral_l2"`
	AutoCoralL3   int `json:"auto_coral_l3"`
	AutoCoralL4   int `json:"auto_coral_l4"`
	TeleopCoralL1 int `json:"teleop_coral_l1"`
	TeleopCoralL2 int `json:"teleop_coral_l2"`
	TeleopCoralL3 int `json:"teleop_coral_l3"`
	TeleopCoralL4 int `json:"teleop_coral_l4"`

	// Algae counts.
	AutoProcessor   int `json:"auto_processor"`
	TeleopProcessor int `json:"teleop_processor"`
	TeleopNet       int `json:"teleop_net"`

	// Autonomous mobility and endgame.
	LeftStartingZone bool  `json:"left_starting_zone"`
	ClimbResult      Climb `json:"climb_result"`

	// Qualitative flags.
	PlayedDefense bool `json:"played_defense"`
	DiedOnField   bool `json:"died_on_field"`
}

// Validate checks the record for structurally impossible values.
func (r *MatchRecord) Validate() error {
	switch {
	case r.RecordID == "":
		return fmt.Errorf("%w: missing record_id", ErrInvalidRecord)
	case r.TeamNumber < 1:
		return fmt.Errorf("%w: team_number must be positive", ErrInvalidRecord)
	case r.MatchNumber < 1:
		return fmt.Errorf("%w: match_number must be positive", ErrInvalidRecord)
	case !r.ClimbResult.Valid():
		return fmt.Errorf("%w: unknown climb_result %q", ErrInvalidRecord, r.ClimbResult)
	}
	for _, n := range []int{
		r.AutoCoralL1, r.AutoCoralL2, r.AutoCoralL3, r.AutoCoralL4,
		r.TeleopCoralL1, r.TeleopCoralL2, r.TeleopCoralL3, r.TeleopCoralL4,
		r.AutoProcessor, r.TeleopProcessor, r.TeleopNet,
	} {
		if n < 0 {
			return fmt.Errorf("%w: negative scoring count", ErrInvalidRecord)
		}
	}
	return nil
}

// AutoCoral returns the total autonomous coral count across levels.
func (r *MatchRecord) AutoCoral() int {
	return r.AutoCoralL1 + r.AutoCoralL2 + r.AutoCoralL3 + r.AutoCoralL4
}

// TeleopCoral returns the total teleop coral count across levels.
func (r *MatchRecord) TeleopCoral() int {
	return r.TeleopCoralL1 + r.TeleopCoralL2 + r.TeleopCoralL3 + r.TeleopCoralL4
}

// PitRecord captures pit-scouting attributes for a team. Scores are 0-100.
type PitRecord struct {
	TeamNumber    int     `json:"team_number"`
	Electrical    float64 `json:"electrical"`
	Mechanical    float64 `json:"mechanical"`
	DriverStation float64 `json:"driver_station"`
	Tools         float64 `json:"tools"`
	SpareParts    float64 `json:"spare_parts"`
}

// Validate checks the pit record for out-of-domain values.
func (p *PitRecord) Validate() error {
	if p.TeamNumber < 1 {
		return fmt.Errorf("%w: team_number must be positive", ErrInvalidRecord)
	}
	for _, v := range []float64{p.Electrical, p.Mechanical, p.DriverStation, p.Tools, p.SpareParts} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: pit scores must be within [0, 100]", ErrInvalidRecord)
		}
	}
	return nil
}
