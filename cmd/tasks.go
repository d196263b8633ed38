package cmd

import (
	"fmt"
	"time"

	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/core/fabricate"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/spf13/cobra"
)

// taskShort describes each built-in task set.
var taskShort = map[string]string{
	fabricate.TaskDaily:    "Commit today's progress log and TODO updates.",
	fabricate.TaskMicro:    "Commit a handful of small tweaks spread across the last few hours.",
	fabricate.TaskDocs:     "Commit documentation updates.",
	fabricate.TaskTests:    "Commit new test stubs.",
	fabricate.TaskRefactor: "Commit a round of refactoring notes.",
	fabricate.TaskBugfix:   "Commit a series of small bug fixes.",
}

// taskCmds holds one command per built-in task set.
var taskCmds = func() []*cobra.Command {
	names := []string{
		fabricate.TaskDaily,
		fabricate.TaskMicro,
		fabricate.TaskDocs,
		fabricate.TaskTests,
		fabricate.TaskRefactor,
		fabricate.TaskBugfix,
	}
	cmds := make([]*cobra.Command, 0, len(names))
	for _, name := range names {
		cmds = append(cmds, &cobra.Command{
			Use:     name,
			Short:   taskShort[name],
			Args:    cobra.NoArgs,
			PreRunE: sharedSetupWrapper,
			Run:     runNamedCommand(name),
		})
	}
	return cmds
}()

// runNamedCommand runs one of the whitelisted commands under the command timeout.
func runNamedCommand(name string) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		ctx, cancel := commandContext()
		defer cancel()

		start := time.Now()
		result, err := core.ExecuteCommand(ctx, newRunContext(), name, commandOptions(name))
		if err != nil {
			contract.LogFatal("Command "+name+" failed", err)
		}
		printResult(result, time.Since(start))
	}
}

// printResult renders whichever part of a command result is populated.
func printResult(result schema.CommandResult, duration time.Duration) {
	var err error
	switch {
	case result.Status != nil:
		err = writer.WriteStatus(*result.Status, cfg)
	case result.Outcome != nil && result.Outcome.Total == 0 && result.Outcome.Push != nil:
		err = writer.WritePush(*result.Outcome.Push, cfg)
	case result.Outcome != nil:
		err = writer.WriteOutcome(*result.Outcome, cfg, duration)
	default:
		fmt.Printf("✅ %s\n", result.Message)
	}
	if err != nil {
		contract.LogFatal("Error writing result", err)
	}
}

// featureCmd commits the feature task set.
var featureCmd = &cobra.Command{
	Use:   "feature [name]",
	Short: "Commit a feature scaffold (module, tests and docs) over a few hours.",
	Long: `Create a small feature in the repository: a module file, its tests and a
documentation page, committed in sequence with timestamps spread over the
last few hours. Without a name a random one is picked.

Examples:
  cadence feature
  cadence feature search-index`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		ctx, cancel := commandContext()
		defer cancel()

		start := time.Now()
		outcome, err := core.RunTaskSet(ctx, newRunContext(), fabricate.TaskFeature, name, commandOptions(fabricate.TaskFeature))
		if err != nil {
			contract.LogFatal("Cannot create feature", err)
		}
		if err := writer.WriteOutcome(outcome, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Error writing outcome", err)
		}
	},
}

// initCmd prepares the repository and its seed files.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the repository, identity and seed files.",
	Long: `Create the repository if needed, configure the commit identity, and
commit the seed files (daily-progress.md, todos.md, CHANGELOG.md) that are
missing. Running it again is harmless.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runNamedCommand(core.CommandInit),
}

// pushCmd pushes the current branch.
var pushCmd = &cobra.Command{
	Use:     "push",
	Short:   "Push the current branch to origin.",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		result := core.PushNow(rootCtx, newRunContext())
		if err := writer.WritePush(result, cfg); err != nil {
			contract.LogFatal("Error writing push result", err)
		}
	},
}

// setupRemoteCmd points origin at a new URL and pushes.
var setupRemoteCmd = &cobra.Command{
	Use:   "setup-remote <url>",
	Short: "Set the origin remote and push the current branch.",
	Long: `Replace the origin remote with url and push the current branch with
upstream tracking. Only https and ssh GitHub-style URLs are accepted.

Examples:
  cadence setup-remote https://github.com/you/activity.git
  cadence setup-remote git@github.com:you/activity.git`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		result, err := core.SetupRemote(rootCtx, newRunContext(), args[0])
		if err != nil {
			contract.LogFatal("Cannot set up remote", err)
		}
		if err := writer.WritePush(result, cfg); err != nil {
			contract.LogFatal("Error writing push result", err)
		}
	},
}

// forcePushCmd runs the daily set and pushes regardless of the schedule.
var forcePushCmd = &cobra.Command{
	Use:     "force-push",
	Short:   "Commit the daily set and push, ignoring the 24 hour gate.",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runNamedCommand(core.CommandForcePush),
}

// autoCmd is the gated automation entrypoint meant for cron.
var autoCmd = &cobra.Command{
	Use:     "auto",
	Aliases: []string{"run-daily"},
	Short:   "Run the daily automation when the last push is 24 hours old.",
	Long: `Run the daily set and push when no push happened in the last 24 hours,
then maybe add a bonus set (micro, docs or tests). Does nothing before the
gate opens, so it is safe to call from cron as often as you like.

Examples:
  # crontab entry
  0 9 * * * cd ~/activity && cadence auto`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runNamedCommand(core.CommandAuto),
}

// statusCmd shows the scheduler state.
var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"schedule-status"},
	Short:   "Show the last push, the next due push and the remote state.",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status := core.Status(rootCtx, newRunContext(), cfg.Cron)
		if err := writer.WriteStatus(status, cfg); err != nil {
			contract.LogFatal("Error writing status", err)
		}
	},
}
