package draft

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// pool builds n teams ranked 1..n with draft value decreasing by rank.
func pool(n int) []Team {
	teams := make([]Team, 0, n)
	for i := 1; i <= n; i++ {
		teams = append(teams, Team{
			Number:      1000 + i,
			Rank:        i,
			AutoEPA:     float64(40 - i),
			TeleopEPA:   float64(60 - i),
			EndgameEPA:  float64(12 - i%6),
			Consistency: 80,
			Clutch:      75,
		})
	}
	return teams
}

func TestNewSelector(t *testing.T) {
	Convey("Given a ranked pool of 24 teams", t, func() {
		s, err := NewSelector(pool(24))
		So(err, ShouldBeNil)

		Convey("Then eight alliances exist with captains seeded by rank", func() {
			So(s.AllianceCount(), ShouldEqual, 8)

			table := s.Table()
			for i, row := range table {
				So(row.Alliance, ShouldEqual, i+1)
				So(row.Captain, ShouldEqual, 1001+i)
				So(row.CaptainRank, ShouldEqual, i+1)
				So(row.CaptainMode, ShouldEqual, "auto")
			}
		})

		Convey("Then every empty slot has a unique recommendation", func() {
			seen := make(map[int]bool)
			for _, row := range s.Table() {
				for _, rec := range []int{row.Pick1Rec, row.Pick2Rec} {
					So(rec, ShouldNotEqual, 0)
					So(seen[rec], ShouldBeFalse)
					seen[rec] = true
				}
			}
		})
	})

	Convey("Given degenerate pools", t, func() {
		Convey("An empty pool is rejected", func() {
			_, err := NewSelector(nil)
			So(errors.Is(err, ErrEmptyPool), ShouldBeTrue)
		})

		Convey("Duplicate team numbers are rejected", func() {
			_, err := NewSelector([]Team{
				{Number: 100, Rank: 1},
				{Number: 100, Rank: 2},
			})
			So(errors.Is(err, ErrInvalidAssignment), ShouldBeTrue)
		})

		Convey("A tiny pool still forms one alliance", func() {
			s, err := NewSelector(pool(2))
			So(err, ShouldBeNil)
			So(s.AllianceCount(), ShouldEqual, 1)
		})

		Convey("The alliance cap limits large pools", func() {
			s, err := NewSelector(pool(60), WithMaxAlliances(4))
			So(err, ShouldBeNil)
			So(s.AllianceCount(), ShouldEqual, 4)
		})
	})
}

func TestSetCaptain(t *testing.T) {
	Convey("Given a fresh draft over 12 teams", t, func() {
		s, err := NewSelector(pool(12))
		So(err, ShouldBeNil)

		Convey("When a captain is assigned manually", func() {
			So(s.SetCaptain(2, 1007), ShouldBeNil)

			Convey("Then the slot freezes that team's rank", func() {
				rows := s.Table()
				So(rows[1].Captain, ShouldEqual, 1007)
				So(rows[1].CaptainRank, ShouldEqual, 7)
				So(rows[1].CaptainMode, ShouldEqual, "manual")
			})
		})

		Convey("When a captain is stolen by another alliance", func() {
			So(s.SetCaptain(3, 1007), ShouldBeNil)
			So(s.SetCaptain(1, 1007), ShouldBeNil)

			Convey("Then the old slot refills by seed order", func() {
				rows := s.Table()
				So(rows[0].Captain, ShouldEqual, 1007)
				So(rows[2].Captain, ShouldNotEqual, 1007)
				So(rows[2].Captain, ShouldNotEqual, 0)
			})
		})

		Convey("When a captain slot is cleared", func() {
			So(s.SetPick(1, Pick1, 1012), ShouldBeNil)
			So(s.SetCaptain(1, 0), ShouldBeNil)

			Convey("Then its picks cascade-clear with it", func() {
				// Clearing also lets refill logic leave the slot empty until
				// the next mutation; the pick must be gone regardless.
				for _, row := range s.Table() {
					So(row.Pick1, ShouldNotEqual, 1012)
				}
			})
		})

		Convey("When an already-picked team is promoted to captain", func() {
			So(s.SetPick(1, Pick1, 1012), ShouldBeNil)
			err := s.SetCaptain(2, 1012)

			Convey("Then the assignment is rejected", func() {
				So(errors.Is(err, ErrInvalidAssignment), ShouldBeTrue)
			})
		})

		Convey("When the alliance number is out of range", func() {
			err := s.SetCaptain(99, 1001)
			So(errors.Is(err, ErrUnknownAlliance), ShouldBeTrue)
		})
	})
}

func TestSetPick(t *testing.T) {
	Convey("Given a fresh draft over 12 teams", t, func() {
		s, err := NewSelector(pool(12))
		So(err, ShouldBeNil)

		Convey("When a legal pick is made", func() {
			So(s.SetPick(1, Pick1, 1010), ShouldBeNil)

			Convey("Then the team occupies exactly one slot", func() {
				rows := s.Table()
				So(rows[0].Pick1, ShouldEqual, 1010)
				for i := 1; i < len(rows); i++ {
					So(rows[i].Pick1, ShouldNotEqual, 1010)
					So(rows[i].Pick2, ShouldNotEqual, 1010)
				}
			})

			Convey("Then the same team cannot be picked again", func() {
				err := s.SetPick(2, Pick1, 1010)
				So(errors.Is(err, ErrInvalidAssignment), ShouldBeTrue)
			})
		})

		Convey("When a sitting captain is drafted by a better alliance", func() {
			// Alliance 1 drafts the captain of alliance 2.
			So(s.SetPick(1, Pick1, 1002), ShouldBeNil)

			Convey("Then the vacated slot refills by seed order", func() {
				rows := s.Table()
				So(rows[0].Pick1, ShouldEqual, 1002)
				So(rows[1].Captain, ShouldNotEqual, 1002)
				So(rows[1].Captain, ShouldNotEqual, 0)
			})
		})

		Convey("When a lower alliance tries to draft a better captain", func() {
			err := s.SetPick(3, Pick1, 1001)

			Convey("Then the sitting-captain rule rejects it", func() {
				So(errors.Is(err, ErrInvalidAssignment), ShouldBeTrue)
			})
		})

		Convey("When a captain picks themselves", func() {
			err := s.SetPick(1, Pick1, 1001)
			So(errors.Is(err, ErrInvalidAssignment), ShouldBeTrue)
		})

		Convey("When the slot name is unknown", func() {
			err := s.SetPick(1, PickSlot("pick9"), 1010)
			So(errors.Is(err, ErrInvalidAssignment), ShouldBeTrue)
		})

		Convey("When a pick is cleared", func() {
			So(s.SetPick(1, Pick1, 1010), ShouldBeNil)
			So(s.SetPick(1, Pick1, 0), ShouldBeNil)

			Convey("Then the team becomes available again", func() {
				So(s.SetPick(2, Pick1, 1010), ShouldBeNil)
			})
		})
	})
}

func TestAvailability(t *testing.T) {
	Convey("Given a draft over 12 teams", t, func() {
		s, err := NewSelector(pool(12))
		So(err, ShouldBeNil)

		Convey("When captain candidates are listed", func() {
			captains, err := s.AvailableCaptains(1)
			So(err, ShouldBeNil)

			Convey("Then only unassigned teams appear, by seed order", func() {
				// Seeds 1-4 hold captain slots already.
				So(len(captains), ShouldEqual, 8)
				So(captains[0].Number, ShouldEqual, 1005)
			})
		})

		Convey("When pick1 candidates are listed for the top captain", func() {
			teams, err := s.AvailableTeams(1, Pick1)
			So(err, ShouldBeNil)

			numbers := make([]int, 0, len(teams))
			for _, team := range teams {
				numbers = append(numbers, team.Number)
			}

			Convey("Then captains seated below are draftable, the own captain is not", func() {
				So(1001, ShouldNotBeIn, numbers)
				So(1002, ShouldBeIn, numbers)
			})
		})

		Convey("When pick1 candidates are listed for a middle captain", func() {
			teams, err := s.AvailableTeams(3, Pick1)
			So(err, ShouldBeNil)

			numbers := make([]int, 0, len(teams))
			for _, team := range teams {
				numbers = append(numbers, team.Number)
			}

			Convey("Then better-seated captains are off limits", func() {
				So(1001, ShouldNotBeIn, numbers)
				So(1002, ShouldNotBeIn, numbers)
				So(1003, ShouldNotBeIn, numbers)
				So(1004, ShouldBeIn, numbers)
			})
		})

		Convey("When pick2 candidates are listed", func() {
			defensive := pool(12)
			defensive[11].DefenseRate = 0.9
			defensive[11].Defense = true
			s2, err := NewSelector(defensive)
			So(err, ShouldBeNil)

			teams, err := s2.AvailableTeams(1, Pick2)
			So(err, ShouldBeNil)

			Convey("Then defensive specialists sort first", func() {
				So(teams[0].Number, ShouldEqual, 1012)
			})
		})
	})
}

func TestAutoOptimize(t *testing.T) {
	Convey("Given a draft over 24 teams", t, func() {
		s, err := NewSelector(pool(24))
		So(err, ShouldBeNil)

		Convey("When the draft is auto-completed", func() {
			s.AutoOptimize()

			Convey("Then every alliance is complete", func() {
				for _, a := range s.Alliances() {
					So(a.Complete(), ShouldBeTrue)
				}
			})

			Convey("Then no team appears twice", func() {
				seen := make(map[int]int)
				for _, a := range s.Alliances() {
					seen[a.Captain]++
					seen[a.Pick1]++
					seen[a.Pick2]++
				}
				for team, count := range seen {
					So(count, ShouldEqual, 1)
					So(team, ShouldNotEqual, 0)
				}
			})

			Convey("Then picks snake back on the second round", func() {
				// Seeds and scouting value disagree here: the captains hold
				// the top three ranks but the free pool carries all the
				// draft value, so no captain gets stolen and the pick order
				// is visible in the final table.
				teams := make([]Team, 0, 9)
				for i := 1; i <= 9; i++ {
					epa := float64(50 - i)
					if i <= 3 {
						epa = float64(10 - i)
					}
					teams = append(teams, Team{
						Number:      1000 + i,
						Rank:        i,
						TeleopEPA:   epa,
						Consistency: 80,
						Clutch:      75,
					})
				}
				s2, err := NewSelector(teams)
				So(err, ShouldBeNil)
				So(s2.AllianceCount(), ShouldEqual, 3)
				s2.AutoOptimize()

				rows := s2.Table()
				// Round one runs first-to-last: 1004, 1005, 1006.
				So(rows[0].Pick1, ShouldEqual, 1004)
				So(rows[1].Pick1, ShouldEqual, 1005)
				So(rows[2].Pick1, ShouldEqual, 1006)
				// Round two reverses, so the last alliance takes the
				// strongest remaining team before alliance one picks.
				So(rows[2].Pick2, ShouldEqual, 1007)
				So(rows[1].Pick2, ShouldEqual, 1008)
				So(rows[0].Pick2, ShouldEqual, 1009)
			})

			Convey("Then manual assignments made beforehand survive", func() {
				s2, err := NewSelector(pool(24))
				So(err, ShouldBeNil)
				So(s2.SetPick(2, Pick1, 1020), ShouldBeNil)
				s2.AutoOptimize()

				rows := s2.Table()
				So(rows[1].Pick1, ShouldEqual, 1020)
			})
		})

		Convey("When the pool barely covers the alliances", func() {
			s2, err := NewSelector(pool(9))
			So(err, ShouldBeNil)
			So(s2.AllianceCount(), ShouldEqual, 3)
			s2.AutoOptimize()

			Convey("Then all nine teams are assigned", func() {
				for _, a := range s2.Alliances() {
					So(a.Complete(), ShouldBeTrue)
				}
			})
		})
	})
}

func TestReset(t *testing.T) {
	Convey("Given a partially drafted table", t, func() {
		s, err := NewSelector(pool(12))
		So(err, ShouldBeNil)
		So(s.SetCaptain(1, 1006), ShouldBeNil)
		So(s.SetPick(1, Pick1, 1010), ShouldBeNil)

		Convey("When the draft is reset", func() {
			s.Reset()

			Convey("Then captains re-seed by rank and picks clear", func() {
				rows := s.Table()
				for i, row := range rows {
					So(row.Captain, ShouldEqual, 1001+i)
					So(row.Pick1, ShouldEqual, 0)
					So(row.Pick2, ShouldEqual, 0)
					So(row.CaptainMode, ShouldEqual, "auto")
				}
			})
		})
	})
}

func TestTeamValue(t *testing.T) {
	Convey("Given the draft value formula", t, func() {
		base := Team{AutoEPA: 10, TeleopEPA: 20, EndgameEPA: 5}

		Convey("Defense adds a flat bonus", func() {
			withDefense := base
			withDefense.Defense = true
			So(withDefense.Value(), ShouldBeGreaterThan, base.Value())
		})

		Convey("Valuation scales multiplicatively", func() {
			improved := base
			improved.Valuation = 100
			So(improved.Value(), ShouldAlmostEqual, base.Value()*1.1, 1e-9)
		})

		Convey("Ratings are normalized before weighting", func() {
			rated := base
			rated.Consistency = 100
			rated.Clutch = 100
			So(rated.Value()-base.Value(), ShouldAlmostEqual, 13.0, 1e-9)
		})
	})
}

func TestSeedRenumbering(t *testing.T) {
	Convey("Given a pool with sparse ranks", t, func() {
		teams := []Team{
			{Number: 30, Rank: 17},
			{Number: 10, Rank: 3},
			{Number: 20, Rank: 9},
		}
		s, err := NewSelector(teams)
		So(err, ShouldBeNil)

		Convey("Then ranks compact into a contiguous 1..n sequence", func() {
			for i, want := range []int{10, 20, 30} {
				team, ok := s.Team(want)
				So(ok, ShouldBeTrue)
				So(team.Rank, ShouldEqual, i+1)
			}
		})
	})
}

func ExampleSelector_Table() {
	teams := []Team{
		{Number: 254, Rank: 1, TeleopEPA: 60},
		{Number: 1678, Rank: 2, TeleopEPA: 55},
		{Number: 118, Rank: 3, TeleopEPA: 50},
	}
	s, _ := NewSelector(teams)
	s.AutoOptimize()
	for _, row := range s.Table() {
		fmt.Printf("alliance %d: %d / %d / %d\n", row.Alliance, row.Captain, row.Pick1, row.Pick2)
	}
	// Output:
	// alliance 1: 254 / 1678 / 118
}
