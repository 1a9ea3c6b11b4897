package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if REEFCORE_CONFIG is set
//  3. env (prefix REEFCORE_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("REEFCORE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: REEFCORE_ADDR, REEFCORE_QUEUE_SIZE, ...
	// Map env keys like REEFCORE_QUEUE_SIZE -> queue_size (flat keys).
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("REEFCORE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "reefcore_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations that cannot produce a working service.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxRankingLimit < 1:
		return fmt.Errorf("%w: max_ranking_limit must be positive", ErrInvalidConfig)
	case c.SimIterationsMin < 1 || c.SimIterationsMax < c.SimIterationsMin:
		return fmt.Errorf("%w: sim iteration bounds are inverted", ErrInvalidConfig)
	case c.SimIterations < c.SimIterationsMin || c.SimIterations > c.SimIterationsMax:
		return fmt.Errorf("%w: sim_iterations outside [%d, %d]", ErrInvalidConfig, c.SimIterationsMin, c.SimIterationsMax)
	case c.MaxAlliances < 1:
		return fmt.Errorf("%w: max_alliances must be positive", ErrInvalidConfig)
	case c.TeamsPerAlliance < 2:
		return fmt.Errorf("%w: teams_per_alliance must be at least 2", ErrInvalidConfig)
	case c.ScaleFactorMin <= 0 || c.ScaleFactorMax < c.ScaleFactorMin:
		return fmt.Errorf("%w: scale factor bounds are inverted", ErrInvalidConfig)
	case c.ScaleFactorFallback < c.ScaleFactorMin || c.ScaleFactorFallback > c.ScaleFactorMax:
		return fmt.Errorf("%w: scale_factor_fallback outside bounds", ErrInvalidConfig)
	}
	return nil
}
