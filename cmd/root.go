package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/outwriter"
	"github.com/huangsam/cadence/internal/runstore"
	"github.com/huangsam/cadence/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// gitClient is shared by every command.
var gitClient contract.GitClient = contract.NewLocalGitClient()

// writer renders results in the configured output format.
var writer = outwriter.NewOutWriter()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "cadence",
	Short:              "Keep a steady contribution graph with scheduled, backdated commits.",
	Long:               `Cadence plans commit activity over a date range, lands it in a local repository with backdated timestamps, and pushes it on a daily schedule.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".cadence") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("CADENCE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("run-backend", schema.SQLiteBackend)
	viper.SetDefault("run-db-connect", "")
	viper.SetDefault("schedule-file", contract.DefaultScheduleFile)
	viper.SetDefault("cron", contract.DefaultCron)
	viper.SetDefault("identity-name", contract.DefaultIdentityName)
	viper.SetDefault("identity-email", contract.DefaultIdentityEmail)
	viper.SetDefault("chunk-size", contract.DefaultChunkSize)
	viper.SetDefault("chunk-pause", contract.DefaultChunkPause)
	viper.SetDefault("progress-every", contract.DefaultProgressEvery)
	viper.SetDefault("lock-stale-after", contract.DefaultLockStaleAfter)
	viper.SetDefault("commit-timeout", contract.DefaultCommitTimeout)
	viper.SetDefault("push-timeout", contract.DefaultPushTimeout)
	viper.SetDefault("command-timeout", contract.DefaultCommandTimeout)
	viper.SetDefault("push-retries", contract.DefaultPushRetries)
	viper.SetDefault("push-backoff", contract.DefaultPushBackoff)
	viper.SetDefault("days-back", contract.DefaultDaysBack)
	viper.SetDefault("days-forward", contract.DefaultDaysForward)
	viper.SetDefault("frequency", contract.DefaultFrequency)
	viper.SetDefault("min-per-day", contract.DefaultMinCommitsPerDay)
	viper.SetDefault("max-per-day", contract.DefaultMaxCommitsPerDay)
	viper.SetDefault("start-hour", contract.DefaultStartHour)
	viper.SetDefault("end-hour", contract.DefaultEndHour)
	viper.SetDefault("preset", schema.BatchPreset)
	viper.SetDefault("addr", contract.DefaultAddr)
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(ctx context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Positional arguments are applied by the commands that take them.
	if overrideInput != nil {
		overrideInput(input)
	}

	// 4. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(ctx, cfg, gitClient, input); err != nil {
		return err
	}
	color.NoColor = !cfg.UseColors

	// 5. Initialize persistence layer with validated config. Run tracking is
	// best effort, so a broken store only disables it.
	if err := runstore.InitStores(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		contract.LogWarn("Run tracking disabled", err)
	}
	return nil
}

// overrideInput lets a command rewrite the raw input before validation.
var overrideInput func(*contract.ConfigRawInput)

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// newLogger builds the operational logger for the current config.
func newLogger() *slog.Logger {
	return contract.NewLogger(cfg.Verbose, os.Stderr)
}

// newRunContext wires the repository collaborators for the current config.
func newRunContext() *core.RunContext {
	return core.NewRunContext(cfg, gitClient, runstore.Manager.GetRunStore(), newLogger())
}

// commandOptions returns the shared options for a named command.
func commandOptions(name string) core.CommandOptions {
	opts := core.CommandOptions{
		Batch: core.BatchOptionsFromConfig(cfg, name),
		Cron:  cfg.Cron,
	}
	opts.Batch.Progress = printProgress
	return opts
}

// commandContext bounds a named command by the configured timeout.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(rootCtx, cfg.CommandTimeout)
}

func printProgress(update schema.ProgressUpdate) {
	_, _ = fmt.Fprintf(os.Stderr, "⏳ %d/%d events (%d committed, %d skipped)\n",
		update.Index, update.Total, update.Successful, update.Skipped)
}

// Execute runs the root command. An interrupt cancels rootCtx so batches
// stop between events and serve shuts down gracefully.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rootCtx = ctx
	return rootCmd.Execute()
}
