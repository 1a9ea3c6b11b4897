// Package loadgen generates synthetic scouting records and drives them
// through a running service to exercise the ingest and ranking paths.
package loadgen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumTeams   int           // Number of synthetic teams
	NumMatches int           // Matches scouted per team
	TopN       int           // Ranking entries to fetch for verification
	Workers    int           // Concurrent submission workers
	Timeout    time.Duration // HTTP request timeout
	Seed       int64         // RNG seed; zero draws from the clock
	Verbose    bool          // Enable verbose logging
}

// Record mirrors the wire shape of POST /events.
type Record struct {
	RecordID         string `json:"record_id"`
	TeamNumber       int    `json:"team_number"`
	MatchNumber      int    `json:"match_number"`
	ScoutedAt        string `json:"scouted_at"`
	AutoCoralL1      int    `json:"auto_coral_l1"`
	AutoCoralL2      int    `json:"auto_coral_l2"`
	AutoCoralL3      int    `json:"auto_coral_l3"`
	AutoCoralL4      int    `json:"auto_coral_l4"`
	TeleopCoralL1    int    `json:"teleop_coral_l1"`
	TeleopCoralL2    int    `json:"teleop_coral_l2"`
	TeleopCoralL3    int    `json:"teleop_coral_l3"`
	TeleopCoralL4    int    `json:"teleop_coral_l4"`
	AutoProcessor    int    `json:"auto_processor"`
	TeleopProcessor  int    `json:"teleop_processor"`
	TeleopNet        int    `json:"teleop_net"`
	LeftStartingZone bool   `json:"left_starting_zone"`
	ClimbResult      string `json:"climb_result"`
	PlayedDefense    bool   `json:"played_defense"`
	DiedOnField      bool   `json:"died_on_field"`
}

// Entry mirrors one ranking row.
type Entry struct {
	Rank  int     `json:"rank"`
	Team  int     `json:"team"`
	Score float64 `json:"score"`
}

// AckResponse mirrors the response from record submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds load run statistics.
type Stats struct {
	RecordsGenerated int
	RecordsSubmitted int
	RecordsAccepted  int
	RecordsDuplicate int
	RecordsFailed    int
	RankingEntries   int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
