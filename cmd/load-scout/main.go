package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/scoutlab/reefcore/internal/loadgen"
	"github.com/scoutlab/reefcore/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumTeams   = 40
	defaultNumMatches = 10
	defaultTopN       = 25
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numTeams   = flag.Int("teams", defaultNumTeams, "Number of synthetic teams to generate")
		numMatches = flag.Int("matches", defaultNumMatches, "Matches scouted per team")
		topN       = flag.Int("top", defaultTopN, "Number of ranking entries to fetch for verification")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submission workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed       = flag.Int64("seed", 0, "RNG seed (0 uses the clock)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &loadgen.Config{
		BaseURL:    *baseURL,
		NumTeams:   *numTeams,
		NumMatches: *numMatches,
		TopN:       *topN,
		Workers:    *workers,
		Timeout:    *timeout,
		Seed:       *seed,
		Verbose:    *verbose,
	}

	if err := loadgen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("load run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
