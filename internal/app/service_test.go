package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/scoutlab/reefcore/internal/domain/honorroll"
	"github.com/scoutlab/reefcore/internal/domain/model"
	"github.com/scoutlab/reefcore/internal/domain/names"
	"github.com/scoutlab/reefcore/internal/domain/stats"
)

func honorCompetencies() honorroll.Competencies {
	return honorroll.Competencies{
		TeamCommunication:    true,
		DrivingSkills:        true,
		Reliability:          true,
		NoDeaths:             true,
		PassedInspectionFast: true,
		HumanPlayer:          true,
		NecessaryDriversFix:  true,
	}
}

func honorSubcompetencies() honorroll.Subcompetencies {
	return honorroll.Subcompetencies{
		WorkingUnderPressure: true,
		Commitment:           true,
		WinMostGames:         true,
		NeverAskPitAdmin:     true,
		KnowsTheRules:        true,
	}
}

func startedService(t *testing.T, opts ...Option) (*Service, context.Context) {
	t.Helper()
	base := []Option{
		WithWorkerCount(2),
		WithQueueSize(1000),
		WithDedupeSize(1000),
	}
	svc := New(append(base, opts...)...)

	ctx := context.Background()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("failed to start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc, ctx
}

func scoutRecord(team, match, teleopL4 int) model.MatchRecord {
	return model.MatchRecord{
		RecordID:      fmt.Sprintf("rec-%d-%d", team, match),
		TeamNumber:    team,
		MatchNumber:   match,
		ScoutedAt:     time.Now(),
		TeleopCoralL4: teleopL4,
		ClimbResult:   model.ClimbNone,
	}
}

// ingestField submits a full schedule and waits until every team is ranked.
func ingestField(t *testing.T, ctx context.Context, svc *Service, teams, matches int) {
	t.Helper()
	for team := 1; team <= teams; team++ {
		for match := 1; match <= matches; match++ {
			rec := scoutRecord(1000+team, match, team)
			if svc.SeenAndRecord(ctx, rec.RecordID) {
				t.Fatalf("unexpected duplicate %s", rec.RecordID)
			}
			if !svc.Enqueue(ctx, rec) {
				t.Fatalf("enqueue refused %s", rec.RecordID)
			}
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if entries, err := svc.TopN(ctx, teams); err == nil && len(entries) == teams {
			done := true
			for _, e := range entries {
				if e.Matches != matches {
					done = false
					break
				}
			}
			if done {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timed out waiting for ingestion to settle")
}

func TestIngestToRanking(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := startedService(t)

		Convey("When a field of teams is scouted", func() {
			ingestField(t, ctx, svc, 6, 4)

			Convey("Then the ranking orders teams by overall average", func() {
				entries, err := svc.TopN(ctx, 6)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 6)
				// Team 1006 scores the most teleop L4 coral.
				So(entries[0].Team, ShouldEqual, 1006)
				So(entries[0].Rank, ShouldEqual, 1)
				for i := 1; i < len(entries); i++ {
					So(entries[i].Score, ShouldBeLessThanOrEqualTo, entries[i-1].Score)
				}
			})

			Convey("Then single-team lookups agree with the ranking", func() {
				entry, err := svc.Rank(ctx, 1006)
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 1)

				profile, pentry, err := svc.TeamProfile(ctx, 1006)
				So(err, ShouldBeNil)
				So(profile.Matches, ShouldEqual, 4)
				So(pentry.Rank, ShouldEqual, 1)
			})

			Convey("Then duplicate record IDs are flagged", func() {
				So(svc.SeenAndRecord(ctx, "rec-1001-1"), ShouldBeTrue)
			})

			Convey("Then service stats expose the pipeline state", func() {
				statsMap := svc.GetStats()
				So(statsMap["started"], ShouldBeTrue)
				So(statsMap["totalTeams"], ShouldEqual, 6)
				So(statsMap["scoutedTeams"], ShouldEqual, 6)
			})
		})

		Convey("When a record ID is unrecorded after a failed enqueue", func() {
			So(svc.SeenAndRecord(ctx, "retry-1"), ShouldBeFalse)
			svc.Unrecord(ctx, "retry-1")
			So(svc.SeenAndRecord(ctx, "retry-1"), ShouldBeFalse)
		})
	})
}

func TestNameResolution(t *testing.T) {
	Convey("Given a service with a name resolver", t, func() {
		resolver := names.NewStatic(map[string]string{"1001": "Reef Sharks"})
		svc, ctx := startedService(t, WithNameResolver(resolver))
		ingestField(t, ctx, svc, 2, 1)

		Convey("Then ranking entries carry display names", func() {
			entries, err := svc.TopN(ctx, 2)
			So(err, ShouldBeNil)
			for _, e := range entries {
				if e.Team == 1001 {
					So(e.Name, ShouldEqual, "Reef Sharks")
				} else {
					So(e.Name, ShouldEqual, "")
				}
			}
		})
	})
}

func TestPredictOperation(t *testing.T) {
	Convey("Given a service with six scouted teams", t, func() {
		svc, ctx := startedService(t)
		ingestField(t, ctx, svc, 6, 3)

		red := []int{1004, 1005, 1006}
		blue := []int{1001, 1002, 1003}

		Convey("When a quick prediction is requested", func() {
			p, err := svc.Predict(ctx, red, blue, "quick", 0, 0)
			So(err, ShouldBeNil)
			So(p.RedScore, ShouldBeGreaterThan, p.BlueScore)
			So(p.RedWinProbability, ShouldEqual, 1)
		})

		Convey("When a seeded Monte Carlo prediction is requested twice", func() {
			p1, err := svc.Predict(ctx, red, blue, "montecarlo", 500, 99)
			So(err, ShouldBeNil)
			p2, err := svc.Predict(ctx, red, blue, "montecarlo", 500, 99)
			So(err, ShouldBeNil)
			So(p1.RedScore, ShouldEqual, p2.RedScore)
			So(p1.RedWinProbability, ShouldEqual, p2.RedWinProbability)
		})

		Convey("When an unscouted team is listed", func() {
			_, err := svc.Predict(ctx, []int{1004, 1005, 9999}, blue, "quick", 0, 0)
			So(errors.Is(err, stats.ErrUnknownTeam), ShouldBeTrue)
		})

		Convey("When the mode is unknown", func() {
			_, err := svc.Predict(ctx, red, blue, "psychic", 0, 0)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestDraftOperations(t *testing.T) {
	Convey("Given a service with twelve scouted teams", t, func() {
		svc, ctx := startedService(t)
		ingestField(t, ctx, svc, 12, 2)

		Convey("When no draft session exists", func() {
			_, err := svc.DraftTable(ctx)
			So(errors.Is(err, ErrNoDraft), ShouldBeTrue)
			So(svc.DraftSessionID(), ShouldEqual, "")
		})

		Convey("When a draft session is started", func() {
			id, err := svc.StartDraft(ctx, 0)
			So(err, ShouldBeNil)
			So(id, ShouldNotEqual, "")
			So(svc.DraftSessionID(), ShouldEqual, id)

			Convey("Then the table seeds captains from the ranking", func() {
				rows, err := svc.DraftTable(ctx)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 4)
				// Best team captains alliance 1.
				So(rows[0].Captain, ShouldEqual, 1012)
			})

			Convey("Then captain and pick mutations apply", func() {
				So(svc.DraftSetCaptain(ctx, 2, 1005), ShouldBeNil)
				So(svc.DraftSetPick(ctx, 1, "pick1", 1008), ShouldBeNil)

				rows, err := svc.DraftTable(ctx)
				So(err, ShouldBeNil)
				So(rows[1].Captain, ShouldEqual, 1005)
				So(rows[0].Pick1, ShouldEqual, 1008)
			})

			Convey("Then invalid slots are rejected", func() {
				err := svc.DraftSetPick(ctx, 1, "pick9", 1008)
				So(err, ShouldNotBeNil)
			})

			Convey("Then auto-optimize completes every alliance", func() {
				So(svc.DraftAutoOptimize(ctx), ShouldBeNil)
				rows, err := svc.DraftTable(ctx)
				So(err, ShouldBeNil)
				for _, row := range rows {
					So(row.Captain, ShouldNotEqual, 0)
					So(row.Pick1, ShouldNotEqual, 0)
					So(row.Pick2, ShouldNotEqual, 0)
				}
			})

			Convey("Then availability listings respond", func() {
				captains, err := svc.DraftAvailableCaptains(ctx, 1)
				So(err, ShouldBeNil)
				So(len(captains), ShouldBeGreaterThan, 0)

				teams, err := svc.DraftAvailableTeams(ctx, 1, "pick2")
				So(err, ShouldBeNil)
				So(len(teams), ShouldBeGreaterThan, 0)
			})

			Convey("Then reset clears assignments", func() {
				So(svc.DraftAutoOptimize(ctx), ShouldBeNil)
				So(svc.DraftReset(ctx), ShouldBeNil)
				rows, err := svc.DraftTable(ctx)
				So(err, ShouldBeNil)
				for _, row := range rows {
					So(row.Pick1, ShouldEqual, 0)
					So(row.Pick2, ShouldEqual, 0)
				}
			})
		})
	})
}

func TestHonorRollOperations(t *testing.T) {
	Convey("Given a service with scouted teams", t, func() {
		svc, ctx := startedService(t)
		ingestField(t, ctx, svc, 3, 3)

		all := func(team int) {
			So(svc.HonorRollSetPit(ctx, team, &model.PitRecord{
				TeamNumber: team, Electrical: 95, Mechanical: 95,
				DriverStation: 95, Tools: 95, SpareParts: 95,
			}), ShouldBeNil)
			So(svc.HonorRollSetEvent(ctx, team, 95, 95), ShouldBeNil)
			So(svc.HonorRollSetCompetencies(ctx, team,
				honorCompetencies(), honorSubcompetencies()), ShouldBeNil)
		}

		Convey("When full honor roll input is recorded", func() {
			for team := 1001; team <= 1003; team++ {
				all(team)
			}
			So(svc.HonorRollAddReport(ctx, 1001, "low_conduct"), ShouldBeNil)

			Convey("Then the ranking covers every scouted team", func() {
				results, err := svc.HonorRollRanking(ctx)
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 3)

				for i := 1; i < len(results); i++ {
					So(results[i].HonorRollScore, ShouldBeLessThanOrEqualTo, results[i-1].HonorRollScore)
				}
			})

			Convey("Then behavior penalties survive the refresh", func() {
				results, err := svc.HonorRollRanking(ctx)
				So(err, ShouldBeNil)
				for _, r := range results {
					if r.Team == 1001 {
						So(r.Penalties, ShouldEqual, 2)
					}
				}
			})
		})

		Convey("When invalid input is submitted", func() {
			err := svc.HonorRollAddReport(ctx, 1001, "rude")
			So(err, ShouldNotBeNil)
		})
	})
}
