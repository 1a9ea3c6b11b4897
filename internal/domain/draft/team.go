// Package draft implements a constraint-checked alliance selection table
// with snake-draft auto-completion. A draft session is single-user; the
// selector serializes access internally so HTTP handlers can share one.
package draft

// Draft value weights. Consistency and clutch are 0-100 ratings and are
// normalized before weighting; the valuation multiplier rewards teams that
// improved across the event.
const (
	weightAuto        = 1.5
	weightTeleop      = 1.0
	weightEndgame     = 1.2
	weightDefense     = 12.0
	weightConsistency = 5.0
	weightClutch      = 8.0

	valuationDivisor = 1000.0
	ratingScale      = 100.0
)

// Team is a draftable team with its seed rank and scoring components.
type Team struct {
	Number int    `json:"number"`
	Name   string `json:"name,omitempty"`
	Rank   int    `json:"rank"`

	AutoEPA    float64 `json:"auto_epa"`
	TeleopEPA  float64 `json:"teleop_epa"`
	EndgameEPA float64 `json:"endgame_epa"`

	Defense     bool    `json:"defense"`
	DefenseRate float64 `json:"defense_rate"`
	AlgaeScore  float64 `json:"algae_score"`
	DeathRate   float64 `json:"death_rate"`

	Consistency float64 `json:"consistency"`
	Clutch      float64 `json:"clutch"`
	Valuation   float64 `json:"valuation"`
}

// Value computes the team's draft value used for pick ordering and the
// alliance table score column.
func (t *Team) Value() float64 {
	v := weightAuto*t.AutoEPA + weightTeleop*t.TeleopEPA + weightEndgame*t.EndgameEPA
	if t.Defense {
		v += weightDefense
	}
	v += (t.Consistency / ratingScale) * weightConsistency
	v += (t.Clutch / ratingScale) * weightClutch
	return v * (1 + t.Valuation/valuationDivisor)
}

// PickSlot identifies one of the two pick positions of an alliance.
type PickSlot string

// Pick slots.
const (
	Pick1 PickSlot = "pick1"
	Pick2 PickSlot = "pick2"
)

// Valid reports whether s names a real pick slot.
func (s PickSlot) Valid() bool {
	return s == Pick1 || s == Pick2
}

// Alliance is one row of the draft table. Team numbers of zero mean unset.
// CaptainRank is frozen at assignment time and is the rank used for pick
// eligibility even if seeds shift afterwards.
type Alliance struct {
	Number      int `json:"number"`
	Captain     int `json:"captain,omitempty"`
	CaptainRank int `json:"captain_rank,omitempty"`
	Pick1       int `json:"pick1,omitempty"`
	Pick2       int `json:"pick2,omitempty"`

	Pick1Rec int `json:"pick1_rec,omitempty"`
	Pick2Rec int `json:"pick2_rec,omitempty"`

	// ManualCaptain distinguishes explicit captain assignments from
	// seed-order auto-fill.
	ManualCaptain bool `json:"manual_captain"`
}

// Complete reports whether the alliance has a captain and both picks.
func (a *Alliance) Complete() bool {
	return a.Captain != 0 && a.Pick1 != 0 && a.Pick2 != 0
}

// TableRow is a read-only display projection of an alliance.
type TableRow struct {
	Alliance      int     `json:"alliance"`
	Captain       int     `json:"captain,omitempty"`
	CaptainName   string  `json:"captain_name,omitempty"`
	CaptainRank   int     `json:"captain_rank,omitempty"`
	Pick1         int     `json:"pick1,omitempty"`
	Pick1Name     string  `json:"pick1_name,omitempty"`
	Pick2         int     `json:"pick2,omitempty"`
	Pick2Name     string  `json:"pick2_name,omitempty"`
	Pick1Rec      int     `json:"pick1_rec,omitempty"`
	Pick2Rec      int     `json:"pick2_rec,omitempty"`
	AllianceScore float64 `json:"alliance_score"`
	CaptainMode   string  `json:"captain_mode"`
}
