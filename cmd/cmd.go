// Package cmd defines the command-line interface for cadence.
package cmd

import (
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(initCmd)
	for _, c := range taskCmds {
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(featureCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(highVolumeCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(setupRemoteCmd)
	rootCmd.AddCommand(forcePushCmd)
	rootCmd.AddCommand(autoCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("repo", ".", "Path to the repository that receives the commits")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or html")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log scheduler decisions to stderr")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("run-backend", string(schema.SQLiteBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname?parseTime=true)")
	rootCmd.PersistentFlags().String("identity-name", contract.DefaultIdentityName, "Commit author name configured in the repository")
	rootCmd.PersistentFlags().String("identity-email", contract.DefaultIdentityEmail, "Commit author email configured in the repository")
	rootCmd.PersistentFlags().String("schedule-file", contract.DefaultScheduleFile, "Schedule state file, relative to the repository")
	rootCmd.PersistentFlags().String("cron", contract.DefaultCron, "Cron expression for scheduled automation")
	rootCmd.PersistentFlags().Int("chunk-size", contract.DefaultChunkSize, "Events per chunk before pausing")
	rootCmd.PersistentFlags().Duration("chunk-pause", contract.DefaultChunkPause, "Pause between chunks")
	rootCmd.PersistentFlags().Int("progress-every", contract.DefaultProgressEvery, "Report progress every N events")
	rootCmd.PersistentFlags().Duration("lock-stale-after", contract.DefaultLockStaleAfter, "Age after which a git index lock is removed")
	rootCmd.PersistentFlags().Duration("commit-timeout", contract.DefaultCommitTimeout, "Timeout for a single stage-and-commit")
	rootCmd.PersistentFlags().Duration("push-timeout", contract.DefaultPushTimeout, "Timeout for a single push attempt")
	rootCmd.PersistentFlags().Duration("command-timeout", contract.DefaultCommandTimeout, "Timeout for task set commands")
	rootCmd.PersistentFlags().Int("push-retries", contract.DefaultPushRetries, "Push retries after the first attempt")
	rootCmd.PersistentFlags().Duration("push-backoff", contract.DefaultPushBackoff, "Base backoff between push retries")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// batch and high-volume share flag names with different defaults, so
	// their flags are bound when the command runs (see patternSetup)
	addPatternFlags(batchCmd, schema.BatchPreset)
	addPatternFlags(highVolumeCmd, schema.HighVolumePreset)

	statsCmd.Flags().Int("days", 0, "Only report commits from the last N days (0 = whole history)")
	statsCmd.Flags().Int("activity", 10, "Number of recent commits to list")
	if err := viper.BindPFlags(statsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding stats flags", err)
	}

	serveCmd.Flags().String("addr", contract.DefaultAddr, "Address for the dashboard to listen on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
