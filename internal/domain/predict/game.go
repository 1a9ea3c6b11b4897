// Package predict turns per-team performance profiles into probabilistic
// match outcomes, either via a single expected-value pass or Monte Carlo
// sampling.
package predict

// ClimbPoints holds endgame point values per climb outcome.
type ClimbPoints struct {
	None    float64 `json:"none"`
	Park    float64 `json:"park"`
	Shallow float64 `json:"shallow"`
	Deep    float64 `json:"deep"`
}

// GameConfig holds the point values and ranking point thresholds for the
// competition season. Index 0 of level arrays is L1.
type GameConfig struct {
	CoralAutoPoints   [4]float64 `json:"coral_auto_points"`
	CoralTeleopPoints [4]float64 `json:"coral_teleop_points"`

	ProcessorPoints float64     `json:"processor_points"`
	NetPoints       float64     `json:"net_points"`
	Climb           ClimbPoints `json:"climb_points"`

	// CooperationThreshold is the minimum algae each alliance must place in
	// its processor for the cooperation bonus. The bonus is a joint,
	// match-level condition: both alliances must clear it.
	CooperationThreshold int `json:"cooperation_threshold"`

	// Match result ranking points.
	WinRP  int `json:"win_rp"`
	TieRP  int `json:"tie_rp"`
	LossRP int `json:"loss_rp"`

	// Auto RP: all teams leave the starting zone and at least one auto coral.
	AutoRPLeaves   int `json:"auto_rp_leaves"`
	AutoRPMinCoral int `json:"auto_rp_min_coral"`

	// Coral RP: CoralRPPerLevel coral on every level, or on
	// CoralRPLevelsWithCoop levels when the cooperation bonus is achieved.
	CoralRPPerLevel       int `json:"coral_rp_per_level"`
	CoralRPLevelsWithCoop int `json:"coral_rp_levels_with_coop"`
}

// DefaultGameConfig returns the REEFSCAPE point values.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		CoralAutoPoints:   [4]float64{3, 4, 6, 7},
		CoralTeleopPoints: [4]float64{2, 3, 4, 5},
		ProcessorPoints:   6,
		NetPoints:         4,
		Climb:             ClimbPoints{None: 0, Park: 2, Shallow: 6, Deep: 12},

		CooperationThreshold: 2,

		WinRP:  3,
		TieRP:  1,
		LossRP: 0,

		AutoRPLeaves:   3,
		AutoRPMinCoral: 1,

		CoralRPPerLevel:       7,
		CoralRPLevelsWithCoop: 3,
	}
}
