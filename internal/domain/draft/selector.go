package draft

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// defaultMaxAlliances matches the standard eight-alliance playoff bracket.
const defaultMaxAlliances = 8

// teamsPerAlliance fixes how many teams each alliance drafts.
const teamsPerAlliance = 3

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithMaxAlliances caps the number of alliances regardless of pool size.
func WithMaxAlliances(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.maxAlliances = n
		}
	}
}

// Selector is a constraint-checked mutable draft table over a ranked team
// pool. All mutations either fully apply or fully reject; illegal input
// never corrupts existing assignments.
type Selector struct {
	mu sync.Mutex

	teams     map[int]*Team
	seedOrder []int // team numbers by seed rank, best first
	alliances []*Alliance

	maxAlliances int
}

// NewSelector builds a draft over the given pool. Teams are seeded by
// their Rank field (ascending, ties by team number) and re-ranked into a
// contiguous 1..n sequence. The alliance count is one per three teams,
// capped by the configured maximum. Captain slots fill by seed order.
func NewSelector(teams []Team, opts ...Option) (*Selector, error) {
	if len(teams) == 0 {
		return nil, ErrEmptyPool
	}

	s := &Selector{
		teams:        make(map[int]*Team, len(teams)),
		maxAlliances: defaultMaxAlliances,
	}
	for _, opt := range opts {
		opt(s)
	}

	ordered := append([]Team(nil), teams...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Rank != ordered[j].Rank {
			return ordered[i].Rank < ordered[j].Rank
		}
		return ordered[i].Number < ordered[j].Number
	})
	for i := range ordered {
		t := ordered[i]
		if t.Number < 1 {
			return nil, fmt.Errorf("%w: team number %d", ErrInvalidAssignment, t.Number)
		}
		if _, dup := s.teams[t.Number]; dup {
			return nil, fmt.Errorf("%w: duplicate team %d", ErrInvalidAssignment, t.Number)
		}
		t.Rank = i + 1
		s.teams[t.Number] = &t
		s.seedOrder = append(s.seedOrder, t.Number)
	}

	n := len(teams) / teamsPerAlliance
	if n < 1 {
		n = 1
	}
	if n > s.maxAlliances {
		n = s.maxAlliances
	}
	s.alliances = make([]*Alliance, n)
	for i := range s.alliances {
		s.alliances[i] = &Alliance{Number: i + 1}
	}

	s.refillCaptains()
	s.updateRecommendations()
	return s, nil
}

// AllianceCount returns the number of alliances in the draft.
func (s *Selector) AllianceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alliances)
}

// Team returns a copy of a pool team.
func (s *Selector) Team(number int) (Team, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[number]
	if !ok {
		return Team{}, false
	}
	return *t, true
}

// SetCaptain assigns or clears (team == 0) the captain of an alliance.
// Assigning freezes the captain's current seed rank; clearing cascades to
// the alliance's picks, which are only valid relative to a captain.
func (s *Selector) SetCaptain(allianceNumber, team int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.alliance(allianceNumber)
	if err != nil {
		return err
	}

	if team == 0 {
		a.Captain = 0
		a.CaptainRank = 0
		a.ManualCaptain = false
		// Cascade: picks are invalid without the captain that chose them.
		a.Pick1 = 0
		a.Pick2 = 0
		s.updateRecommendations()
		return nil
	}

	t, ok := s.teams[team]
	if !ok {
		return fmt.Errorf("%w: team %d is not in the pool", ErrInvalidAssignment, team)
	}
	if s.pickedAnywhere(team) {
		return fmt.Errorf("%w: team %d is already selected as a pick", ErrInvalidAssignment, team)
	}

	// A team may captain at most one alliance; stealing it clears the
	// previous slot, which refills by seed order below.
	for _, other := range s.alliances {
		if other != a && other.Captain == team {
			other.Captain = 0
			other.CaptainRank = 0
			other.ManualCaptain = false
			other.Pick1 = 0
			other.Pick2 = 0
		}
	}

	a.Captain = t.Number
	a.CaptainRank = t.Rank
	a.ManualCaptain = true
	s.refillCaptains()
	s.updateRecommendations()
	return nil
}

// SetPick assigns or clears (team == 0) a pick slot. The alliance must
// already have a captain, and the team must appear in the slot's
// availability list.
func (s *Selector) SetPick(allianceNumber int, slot PickSlot, team int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.alliance(allianceNumber)
	if err != nil {
		return err
	}
	if !slot.Valid() {
		return fmt.Errorf("%w: unknown pick slot %q", ErrInvalidAssignment, slot)
	}

	if team == 0 {
		s.assignPick(a, slot, 0)
		s.updateRecommendations()
		return nil
	}

	if a.Captain == 0 {
		return fmt.Errorf("%w: alliance %d has no captain yet", ErrInvalidAssignment, allianceNumber)
	}
	if team == a.Captain {
		return fmt.Errorf("%w: captains cannot pick themselves", ErrInvalidAssignment)
	}
	if _, ok := s.teams[team]; !ok {
		return fmt.Errorf("%w: team %d is not in the pool", ErrInvalidAssignment, team)
	}
	if s.pickedAnywhere(team) {
		return fmt.Errorf("%w: team %d is already selected as a pick", ErrInvalidAssignment, team)
	}
	if !s.eligible(a, team) {
		return fmt.Errorf("%w: team %d is not available to alliance %d", ErrInvalidAssignment, team, allianceNumber)
	}

	s.assignPick(a, slot, team)
	// Drafting a sitting captain vacates their alliance; refill by seed.
	s.refillCaptains()
	s.updateRecommendations()
	return nil
}

// AvailableCaptains lists teams not assigned anywhere, ordered by seed
// rank (best first). The alliance must exist; candidates are the same for
// every alliance but the check keeps callers honest.
func (s *Selector) AvailableCaptains(allianceNumber int) ([]Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.alliance(allianceNumber); err != nil {
		return nil, err
	}

	out := make([]Team, 0, len(s.seedOrder))
	for _, number := range s.seedOrder {
		if s.assignedAnywhere(number) {
			continue
		}
		out = append(out, *s.teams[number])
	}
	return out, nil
}

// AvailableTeams lists legal picks for the alliance whose frozen captain
// rank is captainRank. Sitting captains are eligible only to alliances
// with a lower alliance number. Ordering is slot-specific: pick1 by draft
// value, pick2 prioritizes defensive specialists.
func (s *Selector) AvailableTeams(captainRank int, slot PickSlot) ([]Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slot.Valid() {
		return nil, fmt.Errorf("%w: unknown pick slot %q", ErrInvalidAssignment, slot)
	}

	var drafting *Alliance
	for _, a := range s.alliances {
		if a.CaptainRank == captainRank {
			drafting = a
			break
		}
	}

	out := s.availableFor(drafting)
	sortForSlot(out, slot)
	return out, nil
}

// AutoOptimize completes the draft with snake semantics: captains by seed,
// then every unset pick1 in ascending alliance order, then every unset
// pick2 in descending order, each taking the head of its availability
// list.
func (s *Selector) AutoOptimize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refillCaptains()

	for _, a := range s.alliances {
		if a.Pick1 != 0 || a.Captain == 0 {
			continue
		}
		candidates := s.availableFor(a)
		sortForSlot(candidates, Pick1)
		if len(candidates) > 0 {
			s.assignPick(a, Pick1, candidates[0].Number)
			s.refillCaptains()
		}
	}

	for i := len(s.alliances) - 1; i >= 0; i-- {
		a := s.alliances[i]
		if a.Pick2 != 0 || a.Captain == 0 {
			continue
		}
		candidates := s.availableFor(a)
		sortForSlot(candidates, Pick2)
		if len(candidates) > 0 {
			s.assignPick(a, Pick2, candidates[0].Number)
			s.refillCaptains()
		}
	}

	s.updateRecommendations()
}

// Reset clears every assignment and re-seeds captains by rank.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.alliances {
		a.Captain = 0
		a.CaptainRank = 0
		a.Pick1 = 0
		a.Pick2 = 0
		a.Pick1Rec = 0
		a.Pick2Rec = 0
		a.ManualCaptain = false
	}
	s.refillCaptains()
	s.updateRecommendations()
}

// Table returns a read-only projection of all alliances for display.
func (s *Selector) Table() []TableRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]TableRow, 0, len(s.alliances))
	for _, a := range s.alliances {
		row := TableRow{
			Alliance:    a.Number,
			Captain:     a.Captain,
			CaptainRank: a.CaptainRank,
			Pick1:       a.Pick1,
			Pick2:       a.Pick2,
			Pick1Rec:    a.Pick1Rec,
			Pick2Rec:    a.Pick2Rec,
			CaptainMode: "auto",
		}
		if a.ManualCaptain {
			row.CaptainMode = "manual"
		}
		var score float64
		for _, number := range []int{a.Captain, a.Pick1, a.Pick2} {
			if t, ok := s.teams[number]; ok {
				score += t.Value()
			}
		}
		row.AllianceScore = math.Round(score*10) / 10
		if t, ok := s.teams[a.Captain]; ok {
			row.CaptainName = t.Name
		}
		if t, ok := s.teams[a.Pick1]; ok {
			row.Pick1Name = t.Name
		}
		if t, ok := s.teams[a.Pick2]; ok {
			row.Pick2Name = t.Name
		}
		rows = append(rows, row)
	}
	return rows
}

// Alliances returns copies of the alliance rows.
func (s *Selector) Alliances() []Alliance {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Alliance, len(s.alliances))
	for i, a := range s.alliances {
		out[i] = *a
	}
	return out
}

// alliance resolves a 1-based alliance number. Callers hold s.mu.
func (s *Selector) alliance(number int) (*Alliance, error) {
	if number < 1 || number > len(s.alliances) {
		return nil, fmt.Errorf("%w: alliance %d", ErrUnknownAlliance, number)
	}
	return s.alliances[number-1], nil
}

func (s *Selector) assignPick(a *Alliance, slot PickSlot, team int) {
	if slot == Pick1 {
		a.Pick1 = team
		return
	}
	a.Pick2 = team
}

// pickedAnywhere reports whether the team occupies any pick slot.
func (s *Selector) pickedAnywhere(team int) bool {
	for _, a := range s.alliances {
		if a.Pick1 == team || a.Pick2 == team {
			return true
		}
	}
	return false
}

// assignedAnywhere reports whether the team occupies any slot at all.
func (s *Selector) assignedAnywhere(team int) bool {
	for _, a := range s.alliances {
		if a.Captain == team || a.Pick1 == team || a.Pick2 == team {
			return true
		}
	}
	return false
}

// eligible reports whether the drafting alliance may take the team,
// applying the sitting-captain rule.
func (s *Selector) eligible(drafting *Alliance, team int) bool {
	for _, a := range s.alliances {
		if a.Captain != team {
			continue
		}
		// Sitting captains may only be drafted upward: strictly lower
		// alliance number, never their own alliance.
		return drafting != nil && drafting.Number < a.Number
	}
	return true
}

// availableFor collects pickable teams for the drafting alliance, in seed
// order. Callers hold s.mu and sort for the slot afterwards.
func (s *Selector) availableFor(drafting *Alliance) []Team {
	out := make([]Team, 0, len(s.seedOrder))
	for _, number := range s.seedOrder {
		if s.pickedAnywhere(number) {
			continue
		}
		if drafting != nil && number == drafting.Captain {
			continue
		}
		if !s.eligible(drafting, number) {
			continue
		}
		out = append(out, *s.teams[number])
	}
	return out
}

// sortForSlot orders candidates by slot strategy: pick1 wants raw draft
// value, pick2 wants defense, algae output, and reliability first.
func sortForSlot(teams []Team, slot PickSlot) {
	if slot == Pick2 {
		sort.SliceStable(teams, func(i, j int) bool {
			a, b := &teams[i], &teams[j]
			if a.DefenseRate != b.DefenseRate {
				return a.DefenseRate > b.DefenseRate
			}
			if a.AlgaeScore != b.AlgaeScore {
				return a.AlgaeScore > b.AlgaeScore
			}
			if a.DeathRate != b.DeathRate {
				return a.DeathRate < b.DeathRate
			}
			if av, bv := a.Value(), b.Value(); av != bv {
				return av > bv
			}
			return a.Rank < b.Rank
		})
		return
	}
	sort.SliceStable(teams, func(i, j int) bool {
		a, b := &teams[i], &teams[j]
		if av, bv := a.Value(), b.Value(); av != bv {
			return av > bv
		}
		return a.Rank < b.Rank
	})
}

// refillCaptains validates captain slots and fills empty ones with the
// best-seeded unassigned teams. Captains that became picks elsewhere are
// vacated first; their picks cascade-clear with them. Frozen captain
// ranks of surviving captains are left untouched. Callers hold s.mu.
func (s *Selector) refillCaptains() {
	for _, a := range s.alliances {
		if a.Captain != 0 && s.pickedAnywhere(a.Captain) {
			a.Captain = 0
			a.CaptainRank = 0
			a.ManualCaptain = false
			a.Pick1 = 0
			a.Pick2 = 0
		}
	}

	for _, a := range s.alliances {
		if a.Captain != 0 {
			continue
		}
		for _, number := range s.seedOrder {
			if s.assignedAnywhere(number) {
				continue
			}
			a.Captain = number
			a.CaptainRank = s.teams[number].Rank
			a.ManualCaptain = false
			break
		}
	}
}

// updateRecommendations simulates the snake order to suggest a unique team
// for every empty slot: pick1 ascending (preferring the best available
// team seeded below the captain), pick2 descending. Callers hold s.mu.
func (s *Selector) updateRecommendations() {
	recommended := make(map[int]bool)

	for _, a := range s.alliances {
		a.Pick1Rec = 0
		if a.Pick1 != 0 || a.Captain == 0 {
			continue
		}
		candidates := s.availableFor(a)
		sortForSlot(candidates, Pick1)
		var chosen int
		for i := range candidates {
			if recommended[candidates[i].Number] {
				continue
			}
			if chosen == 0 {
				chosen = candidates[i].Number
			}
			if candidates[i].Rank > a.CaptainRank {
				chosen = candidates[i].Number
				break
			}
		}
		if chosen != 0 {
			a.Pick1Rec = chosen
			recommended[chosen] = true
		}
	}

	for i := len(s.alliances) - 1; i >= 0; i-- {
		a := s.alliances[i]
		a.Pick2Rec = 0
		if a.Pick2 != 0 || a.Captain == 0 {
			continue
		}
		candidates := s.availableFor(a)
		sortForSlot(candidates, Pick2)
		for j := range candidates {
			if recommended[candidates[j].Number] {
				continue
			}
			a.Pick2Rec = candidates[j].Number
			recommended[candidates[j].Number] = true
			break
		}
	}
}
