// Package repository defines the seed ranking store interface and errors.
package repository

import "context"

// Entry represents one row of the seed ranking.
type Entry struct {
	Rank      int     `json:"rank"`
	Team      int     `json:"team"`
	Score     float64 `json:"score"`
	Matches   int     `json:"matches"`
	Valuation float64 `json:"valuation"`
}

// Store provides read/write access to the seed ranking state. Scores are
// replaced on every write: the ranking tracks each team's current overall
// average, not its best.
type Store interface {
	// SetScore replaces the team's ranking score. Returns true when the
	// stored score changed.
	SetScore(ctx context.Context, team int, score float64) (bool, error)
	// SetScoreWithMeta replaces the score along with display metadata.
	SetScoreWithMeta(ctx context.Context, team int, score float64, matches int, valuation float64) (bool, error)

	// Rank returns the current rank and score for a team.
	// Returns ErrNotFound when the team is unknown.
	Rank(ctx context.Context, team int) (Entry, error)

	// TopN returns the top-N entries ordered by score desc, ties by team
	// number asc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// All returns every entry in rank order.
	All(ctx context.Context) ([]Entry, error)

	// Count returns the number of ranked teams.
	Count(ctx context.Context) int

	// Clear drops all entries.
	Clear(ctx context.Context)
}
