// Package types contains API projection types shared across the application.
package types

// Entry represents one seed ranking row as served to clients.
type Entry struct {
	Rank      int     `json:"rank"`
	Team      int     `json:"team"`
	Name      string  `json:"name,omitempty"`
	Score     float64 `json:"score"`
	Matches   int     `json:"matches"`
	Valuation float64 `json:"valuation"`
}
