package loadgen

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/scoutlab/reefcore/pkg/logger"
)

// archetype describes the scoring tendencies of a synthetic team. Rates
// are per-match means fed to Poisson-ish integer draws.
type archetype struct {
	name        string
	coralTeleop [4]float64
	coralAuto   [4]float64
	processor   float64
	net         float64
	pLeave      float64
	pDeep       float64
	pShallow    float64
	pPark       float64
	pDefense    float64
	pDeath      float64
}

// Field mix loosely modeled on regional-event scoring spreads: a few
// elite coral robots, a midfield, algae specialists, and strugglers.
var archetypes = []archetype{
	{
		name:        "elite",
		coralTeleop: [4]float64{0.5, 1.5, 2.5, 3.5},
		coralAuto:   [4]float64{0, 0.5, 1.0, 1.5},
		processor:   1.0, net: 2.0,
		pLeave: 0.98, pDeep: 0.7, pShallow: 0.2, pPark: 0.05,
		pDefense: 0.05, pDeath: 0.02,
	},
	{
		name:        "midfield",
		coralTeleop: [4]float64{1.5, 2.0, 1.5, 0.5},
		coralAuto:   [4]float64{0.5, 0.5, 0.3, 0},
		processor:   0.5, net: 1.0,
		pLeave: 0.85, pDeep: 0.2, pShallow: 0.4, pPark: 0.2,
		pDefense: 0.15, pDeath: 0.05,
	},
	{
		name:        "algae",
		coralTeleop: [4]float64{1.0, 0.5, 0.2, 0},
		coralAuto:   [4]float64{0.3, 0.2, 0, 0},
		processor:   3.0, net: 3.5,
		pLeave: 0.9, pDeep: 0.1, pShallow: 0.5, pPark: 0.3,
		pDefense: 0.1, pDeath: 0.05,
	},
	{
		name:        "defense",
		coralTeleop: [4]float64{1.0, 0.8, 0.2, 0},
		coralAuto:   [4]float64{0.2, 0.1, 0, 0},
		processor:   0.3, net: 0.5,
		pLeave: 0.8, pDeep: 0.05, pShallow: 0.3, pPark: 0.4,
		pDefense: 0.8, pDeath: 0.08,
	},
	{
		name:        "struggling",
		coralTeleop: [4]float64{0.8, 0.3, 0, 0},
		coralAuto:   [4]float64{0.1, 0, 0, 0},
		processor:   0.2, net: 0.2,
		pLeave: 0.5, pDeep: 0, pShallow: 0.1, pPark: 0.3,
		pDefense: 0.2, pDeath: 0.25,
	},
}

// generateRecords builds NumTeams * NumMatches records, one full match
// schedule per team, cycling teams through the archetypes.
func generateRecords(ctx context.Context, config *Config, stats *Stats) []Record {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	logger.Get().Info(ctx, "generating scouting records",
		logger.Int("teams", config.NumTeams),
		logger.Int("matchesPerTeam", config.NumMatches),
		logger.Int("seed", int(seed)),
	)

	records := make([]Record, 0, config.NumTeams*config.NumMatches)
	for t := 0; t < config.NumTeams; t++ {
		team := 1000 + t
		arch := archetypes[t%len(archetypes)]
		for m := 1; m <= config.NumMatches; m++ {
			records = append(records, generateRecord(rng, &arch, team, m))
		}
	}

	stats.RecordsGenerated = len(records)
	return records
}

func generateRecord(rng *rand.Rand, arch *archetype, team, match int) Record {
	r := Record{
		RecordID:         uuid.NewString(),
		TeamNumber:       team,
		MatchNumber:      match,
		ScoutedAt:        time.Now().UTC().Format(time.RFC3339),
		AutoProcessor:    draw(rng, arch.processor*0.3),
		TeleopProcessor:  draw(rng, arch.processor),
		TeleopNet:        draw(rng, arch.net),
		LeftStartingZone: rng.Float64() < arch.pLeave,
		ClimbResult:      drawClimb(rng, arch),
		PlayedDefense:    rng.Float64() < arch.pDefense,
		DiedOnField:      rng.Float64() < arch.pDeath,
	}

	auto := [4]*int{&r.AutoCoralL1, &r.AutoCoralL2, &r.AutoCoralL3, &r.AutoCoralL4}
	teleop := [4]*int{&r.TeleopCoralL1, &r.TeleopCoralL2, &r.TeleopCoralL3, &r.TeleopCoralL4}
	for i := 0; i < 4; i++ {
		*auto[i] = draw(rng, arch.coralAuto[i])
		*teleop[i] = draw(rng, arch.coralTeleop[i])
	}
	return r
}

// draw returns a small non-negative integer centered on mean.
func draw(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	n := int(mean + rng.NormFloat64()*mean*0.5 + 0.5)
	if n < 0 {
		return 0
	}
	return n
}

func drawClimb(rng *rand.Rand, arch *archetype) string {
	v := rng.Float64()
	switch {
	case v < arch.pDeep:
		return "deep"
	case v < arch.pDeep+arch.pShallow:
		return "shallow"
	case v < arch.pDeep+arch.pShallow+arch.pPark:
		return "park"
	default:
		return "none"
	}
}
