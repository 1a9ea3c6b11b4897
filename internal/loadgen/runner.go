package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/scoutlab/reefcore/pkg/logger"
)

// settleDelay gives the worker pool time to drain the queue before the
// ranking is fetched for verification.
const settleDelay = 2 * time.Second

// Run executes a full load run: health check, record generation,
// concurrent submission, and a ranking fetch to verify the pipeline.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("teams", config.NumTeams),
		logger.Int("matchesPerTeam", config.NumMatches),
	)

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	records := generateRecords(ctx, config, stats)

	submitRecords(ctx, config, records, stats)

	// Give the pipeline a moment to drain before reading back.
	logger.Get().Info(ctx, "waiting for processing to settle")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(settleDelay):
	}

	entries, err := fetchRanking(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to retrieve ranking: %w", err)
	}
	stats.RankingEntries = len(entries)

	verifyRanking(ctx, config, entries)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.RecordsFailed > 0 {
		return fmt.Errorf("%d of %d records failed to submit", stats.RecordsFailed, stats.RecordsSubmitted)
	}
	return nil
}

func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	resp, err := client.get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %d", resp.StatusCode)
	}
	return nil
}

func fetchRanking(ctx context.Context, config *Config) ([]Entry, error) {
	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/ranking?limit=%d", config.BaseURL, config.TopN)

	resp, err := client.get(ctx, url)
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ranking request returned status %d", resp.StatusCode)
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode ranking: %w", err)
	}
	return entries, nil
}

// verifyRanking sanity-checks the returned entries: ranks ascending,
// scores non-increasing, teams within the generated range.
func verifyRanking(ctx context.Context, config *Config, entries []Entry) {
	log := logger.Get()
	if len(entries) == 0 {
		log.Warn(ctx, "ranking is empty after submission")
		return
	}

	ordered := true
	inRange := true
	for i, e := range entries {
		if i > 0 {
			if entries[i-1].Score < e.Score {
				ordered = false
			}
		}
		if e.Team < 1000 || e.Team >= 1000+config.NumTeams {
			inRange = false
		}
		if config.Verbose {
			log.Info(ctx, "ranking entry",
				logger.Int("rank", e.Rank),
				logger.Int("team", e.Team),
				logger.Float64("score", e.Score),
			)
		}
	}

	if !ordered {
		log.Warn(ctx, "ranking scores are not non-increasing")
	}
	if !inRange {
		log.Warn(ctx, "ranking contains teams outside the generated range")
	}
	if ordered && inRange {
		log.Info(ctx, "ranking verification passed", logger.Int("entries", len(entries)))
	}
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	throughput := 0.0
	if stats.Duration > 0 {
		throughput = float64(stats.RecordsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "load run completed",
		logger.Int("generated", stats.RecordsGenerated),
		logger.Int("submitted", stats.RecordsSubmitted),
		logger.Int("accepted", stats.RecordsAccepted),
		logger.Int("duplicate", stats.RecordsDuplicate),
		logger.Int("failed", stats.RecordsFailed),
		logger.Int("rankingEntries", stats.RankingEntries),
		logger.String("duration", stats.Duration.Round(time.Millisecond).String()),
		logger.Float64("recordsPerSecond", throughput),
	)
}
