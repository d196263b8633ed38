package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/core/pattern"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// addPatternFlags registers the pattern flags with the defaults of preset.
func addPatternFlags(cmd *cobra.Command, preset schema.Preset) {
	params, err := pattern.PresetParameters(preset)
	if err != nil {
		contract.LogFatal("Error loading preset", err)
	}
	cmd.Flags().Int("days-back", params.DaysBack, "Days before today covered by the pattern")
	cmd.Flags().Int("days-forward", params.DaysForward, "Days after today covered by the pattern")
	cmd.Flags().Float64("frequency", params.Frequency, "Percent chance (0-100) that a day gets commits")
	cmd.Flags().Int("min-per-day", params.MinCommitsPerDay, "Minimum commits on an active day")
	cmd.Flags().Int("max-per-day", params.MaxCommitsPerDay, "Maximum commits on an active day")
	cmd.Flags().Bool("no-weekends", params.NoWeekends, "Skip Saturdays and Sundays")
	cmd.Flags().String("messages", "", "Comma-separated custom commit messages")
	cmd.Flags().Float64("burst-chance", params.BurstChance, "Probability (0-1) that an active day gets extra commits")
	cmd.Flags().Int("start-hour", params.StartHour, "First hour of the commit window")
	cmd.Flags().Int("end-hour", params.EndHour, "End hour of the commit window (exclusive)")
	cmd.Flags().Uint64("seed", 0, "Seed for a reproducible pattern (0 = random)")
	cmd.Flags().Bool("dry-run", false, "Print the planned events without committing")
	cmd.Flags().Int("limit", 0, "Commit at most N events (0 = all)")
	cmd.Flags().Bool("push", false, "Push after the batch")
}

// applyPresetDefaults makes preset the lowest-priority source for the pattern keys.
func applyPresetDefaults(preset schema.Preset) error {
	params, err := pattern.PresetParameters(preset)
	if err != nil {
		return err
	}
	viper.SetDefault("preset", preset)
	viper.SetDefault("days-back", params.DaysBack)
	viper.SetDefault("days-forward", params.DaysForward)
	viper.SetDefault("frequency", params.Frequency)
	viper.SetDefault("min-per-day", params.MinCommitsPerDay)
	viper.SetDefault("max-per-day", params.MaxCommitsPerDay)
	viper.SetDefault("no-weekends", params.NoWeekends)
	viper.SetDefault("burst-chance", params.BurstChance)
	viper.SetDefault("start-hour", params.StartHour)
	viper.SetDefault("end-hour", params.EndHour)
	return nil
}

// positionalPattern applies `[daysBack] [daysForward] [frequency] [maxPerDay]
// [noWeekends] [customMessages]`. Unparseable values keep what flags, env
// and config resolved; an explicit 0 is honored.
func positionalPattern(args []string) func(*contract.ConfigRawInput) {
	return func(in *contract.ConfigRawInput) {
		if len(args) > 0 {
			in.DaysBack = contract.ParseIntOr(args[0], in.DaysBack)
		}
		if len(args) > 1 {
			in.DaysForward = contract.ParseIntOr(args[1], in.DaysForward)
		}
		if len(args) > 2 {
			in.Frequency = contract.ParseFloatOr(args[2], in.Frequency)
		}
		if len(args) > 3 {
			in.MaxPerDay = contract.ParseIntOr(args[3], in.MaxPerDay)
		}
		if len(args) > 4 {
			in.NoWeekends = contract.ParseBoolOr(args[4], in.NoWeekends)
		}
		if len(args) > 5 {
			in.Messages = args[5]
		}
	}
}

// patternSetup returns the PreRunE of a pattern command for preset.
func patternSetup(preset schema.Preset) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("binding %s flags: %w", cmd.Name(), err)
		}
		if err := applyPresetDefaults(preset); err != nil {
			return err
		}
		viper.Set("preset", preset)
		overrideInput = positionalPattern(args)
		return sharedSetup(rootCtx, cmd, args)
	}
}

// runPattern plans events and commits them, or prints them on --dry-run.
func runPattern(_ *cobra.Command, _ []string) {
	events, err := core.PlanEvents(cfg, nil)
	if err != nil {
		contract.LogFatal("Cannot generate pattern", err)
	}
	if cfg.DryRun {
		if err := writer.WriteEvents(events, cfg); err != nil {
			contract.LogFatal("Error writing events", err)
		}
		return
	}

	start := time.Now()
	outcome, err := core.RunPattern(rootCtx, newRunContext(), cfg, events, printProgress)
	if err != nil && !errors.Is(err, context.Canceled) {
		contract.LogFatal("Cannot run batch", err)
	}
	if err := writer.WriteOutcome(outcome, cfg, time.Since(start)); err != nil {
		contract.LogFatal("Error writing outcome", err)
	}
}

// batchCmd commits a generated activity pattern.
var batchCmd = &cobra.Command{
	Use:   "batch [daysBack] [daysForward] [frequency] [maxPerDay] [noWeekends] [customMessages]",
	Short: "Backfill the contribution graph with a generated commit pattern.",
	Long: `Generate commit activity over a date range and commit it with backdated timestamps.

Each day in the range is active with the given frequency and receives between
min and max commits at random times inside the hour window. Positional
arguments override the matching flags. An explicit 0 is taken as given, so
"cadence batch 365 0 0" plans no commits; a value that does not parse keeps
the flag or preset default.

Examples:
  # A year of activity on about 80% of days
  cadence batch

  # Last 90 days, weekdays only, at most 5 commits a day
  cadence batch 90 0 70 5 true

  # Preview the plan without touching the repository
  cadence batch --dry-run --seed 42 --output csv

  # Commit and push in one go
  cadence batch 30 --push`,
	Args:    cobra.MaximumNArgs(6),
	PreRunE: patternSetup(schema.BatchPreset),
	Run:     runPattern,
}

// highVolumeCmd is batch with the high-volume preset.
var highVolumeCmd = &cobra.Command{
	Use:   "high-volume [daysBack] [daysForward] [frequency] [maxPerDay] [noWeekends] [customMessages]",
	Short: "Backfill with the dense high-volume preset.",
	Long: `Same as batch, but defaults to the high-volume preset: 95% active days,
3 to 15 commits a day, a 30% burst chance and a 06:00 to 23:00 window.
Positional arguments behave as in batch: an explicit 0 is taken as given and
a value that does not parse keeps the preset default.

Examples:
  cadence high-volume
  cadence high-volume 180 --no-weekends`,
	Args:    cobra.MaximumNArgs(6),
	PreRunE: patternSetup(schema.HighVolumePreset),
	Run:     runPattern,
}
