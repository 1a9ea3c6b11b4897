// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults, Load(ctx) to layer
//   file and environment sources on top.
// - External errors must be wrapped via this package's sentinels.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory scouting record queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of aggregation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the duplicate-scan cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRankingLimit caps GET /ranking?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// SimIterations is the default Monte Carlo trial count; requests may
	// override it within [SimIterationsMin, SimIterationsMax].
	SimIterations    int `koanf:"sim_iterations"`
	SimIterationsMin int `koanf:"sim_iterations_min"`
	SimIterationsMax int `koanf:"sim_iterations_max"`

	// MaxAlliances caps the number of draft alliances.
	MaxAlliances int `koanf:"max_alliances"`

	// TeamsPerAlliance is fixed by the competition format but kept
	// configurable for scrimmage formats.
	TeamsPerAlliance int `koanf:"teams_per_alliance"`

	// ScaleFactorMin/Max bound the dynamic honor roll phase scaling factor;
	// ScaleFactorFallback is used when either term of the ratio is zero.
	ScaleFactorMin      float64 `koanf:"scale_factor_min"`
	ScaleFactorMax      float64 `koanf:"scale_factor_max"`
	ScaleFactorFallback float64 `koanf:"scale_factor_fallback"`

	// HonorRollQualifyingScore is the minimum honor roll score to qualify.
	HonorRollQualifyingScore float64 `koanf:"honor_roll_qualifying_score"`

	// TeamNames optionally maps team numbers (as strings) to nicknames for
	// display; engines work with bare numbers when absent.
	TeamNames map[string]string `koanf:"team_names"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:                 "info",
		Addr:                     ":9080",
		QueueSize:                100_000,
		WorkerCount:              runtime.NumCPU() * 2,
		DedupeSize:               500_000,
		MaxRankingLimit:          100,
		SimIterations:            1000,
		SimIterationsMin:         200,
		SimIterationsMax:         5000,
		MaxAlliances:             8,
		TeamsPerAlliance:         3,
		ScaleFactorMin:           2.0,
		ScaleFactorMax:           10.0,
		ScaleFactorFallback:      4.0,
		HonorRollQualifyingScore: 70.0,
		TeamNames:                map[string]string{},
	}
	return c
}
