package core

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/huangsam/cadence/core/fabricate"
	"github.com/huangsam/cadence/core/pattern"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// PlanEvents generates the pattern described by cfg and applies its limit.
// A non-zero seed makes the plan reproducible.
func PlanEvents(cfg *contract.Config, now func() time.Time) ([]schema.ActivityEvent, error) {
	var opts []pattern.Option
	if cfg.Seed != 0 {
		opts = append(opts, pattern.WithSeed(cfg.Seed))
	}
	if now != nil {
		opts = append(opts, pattern.WithClock(now))
	}
	events, err := pattern.NewGenerator(opts...).Generate(cfg.Pattern)
	if err != nil {
		return nil, err
	}
	if cfg.Limit > 0 && len(events) > cfg.Limit {
		events = events[:cfg.Limit]
	}
	return events, nil
}

// RunPattern commits planned events with the rotating fabricator.
func RunPattern(ctx context.Context, rc *RunContext, cfg *contract.Config, events []schema.ActivityEvent, progress func(schema.ProgressUpdate)) (schema.RunOutcome, error) {
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1))
	}
	opts := BatchOptionsFromConfig(cfg, string(cfg.Preset))
	opts.Progress = progress
	opts.ConfigParams = map[string]any{
		"preset":       string(cfg.Preset),
		"days_back":    cfg.Pattern.DaysBack,
		"days_forward": cfg.Pattern.DaysForward,
		"frequency":    cfg.Pattern.Frequency,
		"min_per_day":  cfg.Pattern.MinCommitsPerDay,
		"max_per_day":  cfg.Pattern.MaxCommitsPerDay,
		"no_weekends":  cfg.Pattern.NoWeekends,
		"burst_chance": cfg.Pattern.BurstChance,
		"seed":         cfg.Seed,
		"limit":        cfg.Limit,
	}
	return RunBatch(ctx, rc, events, fabricate.NewRotating(rc.RepoPath, rng), opts)
}
