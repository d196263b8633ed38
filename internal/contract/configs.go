package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/cadence/schema"
)

// Default values for configuration.
const (
	DefaultDaysBack         = 365
	DefaultDaysForward      = 0
	DefaultFrequency        = 80.0
	DefaultMinCommitsPerDay = 1
	DefaultMaxCommitsPerDay = 10
	DefaultStartHour        = 9
	DefaultEndHour          = 21

	DefaultChunkSize      = 100
	DefaultProgressEvery  = 25
	DefaultPushRetries    = 3
	DefaultChunkPause     = time.Second
	DefaultLockStaleAfter = 60 * time.Second
	DefaultCommitTimeout  = 10 * time.Second
	DefaultPushTimeout    = 60 * time.Second
	DefaultCommandTimeout = 120 * time.Second
	DefaultPushBackoff    = 5 * time.Second

	DefaultIdentityName  = "Cadence Bot"
	DefaultIdentityEmail = "cadence-bot@users.noreply.github.com"
	DefaultScheduleFile  = "last-push.json"
	DefaultCron          = "0 9 * * *"
	DefaultAddr          = ":3000"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for a cadence invocation.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath   string
	Output     schema.OutputMode
	OutputFile string
	UseColors  bool
	Verbose    bool
	Width      int // Terminal width override (0 = auto-detect)

	Preset  schema.Preset
	Pattern schema.PatternParameters
	Seed    uint64 // 0 means time-seeded
	DryRun  bool
	Push    bool
	Limit   int // 0 means every generated event

	ChunkSize      int
	ChunkPause     time.Duration
	ProgressEvery  int
	LockStaleAfter time.Duration
	CommitTimeout  time.Duration
	PushTimeout    time.Duration
	CommandTimeout time.Duration
	PushRetries    int
	PushBackoff    time.Duration

	IdentityName  string
	IdentityEmail string
	ScheduleFile  string // relative paths resolve against RepoPath
	Cron          string
	Addr          string

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Repo         string `mapstructure:"repo"`
	Output       string `mapstructure:"output"`
	OutputFile   string `mapstructure:"output-file"`
	Color        string `mapstructure:"color"`
	Verbose      bool   `mapstructure:"verbose"`
	Width        int    `mapstructure:"width"`
	RunBackend   string `mapstructure:"run-backend"`
	RunDBConnect string `mapstructure:"run-db-connect"`

	IdentityName   string        `mapstructure:"identity-name"`
	IdentityEmail  string        `mapstructure:"identity-email"`
	ScheduleFile   string        `mapstructure:"schedule-file"`
	Cron           string        `mapstructure:"cron"`
	ChunkSize      int           `mapstructure:"chunk-size"`
	ChunkPause     time.Duration `mapstructure:"chunk-pause"`
	ProgressEvery  int           `mapstructure:"progress-every"`
	LockStaleAfter time.Duration `mapstructure:"lock-stale-after"`
	CommitTimeout  time.Duration `mapstructure:"commit-timeout"`
	PushTimeout    time.Duration `mapstructure:"push-timeout"`
	CommandTimeout time.Duration `mapstructure:"command-timeout"`
	PushRetries    int           `mapstructure:"push-retries"`
	PushBackoff    time.Duration `mapstructure:"push-backoff"`

	// --- Fields from batchCmd / highVolumeCmd flags ---
	DaysBack    int     `mapstructure:"days-back"`
	DaysForward int     `mapstructure:"days-forward"`
	Frequency   float64 `mapstructure:"frequency"`
	MinPerDay   int     `mapstructure:"min-per-day"`
	MaxPerDay   int     `mapstructure:"max-per-day"`
	NoWeekends  bool    `mapstructure:"no-weekends"`
	Messages    string  `mapstructure:"messages"`
	BurstChance float64 `mapstructure:"burst-chance"`
	StartHour   int     `mapstructure:"start-hour"`
	EndHour     int     `mapstructure:"end-hour"`
	Seed        uint64  `mapstructure:"seed"`
	DryRun      bool    `mapstructure:"dry-run"`
	Push        bool    `mapstructure:"push"`
	Limit       int     `mapstructure:"limit"`
	Preset      string  `mapstructure:"preset"`

	// --- Fields from serveCmd.Flags() ---
	Addr string `mapstructure:"addr"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Pattern.CustomMessages = slices.Clone(c.Pattern.CustomMessages)
	return &clone
}

// SchedulePath returns the absolute path of the schedule file.
func (c *Config) SchedulePath() string {
	if filepath.IsAbs(c.ScheduleFile) {
		return c.ScheduleFile
	}
	return filepath.Join(c.RepoPath, c.ScheduleFile)
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processPattern(cfg, input); err != nil {
		return err
	}
	if err := processTimings(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := resolveRepoPath(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseMessages splits a comma-separated message list, dropping blanks.
func ParseMessages(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// validateBackendConfigs validates the run history backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(input.RunBackend)
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	cfg.RunBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("%w: invalid run backend '%s'. must be sqlite, mysql, postgresql, none", ErrInvalidConfiguration, input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	return ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect)
}

// validateSimpleInputs processes and validates output and presentation fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Verbose = input.Verbose
	cfg.Width = input.Width
	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	output := strings.ToLower(input.Output)
	if output == "" {
		output = string(schema.TextOut)
	}
	cfg.Output = schema.OutputMode(output)
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("%w: invalid output format '%s'. must be text, csv, json, yaml, html", ErrInvalidConfiguration, input.Output)
	}

	cfg.IdentityName = strings.TrimSpace(input.IdentityName)
	if cfg.IdentityName == "" {
		cfg.IdentityName = DefaultIdentityName
	}
	cfg.IdentityEmail = strings.TrimSpace(input.IdentityEmail)
	if cfg.IdentityEmail == "" {
		cfg.IdentityEmail = DefaultIdentityEmail
	}
	cfg.ScheduleFile = input.ScheduleFile
	if cfg.ScheduleFile == "" {
		cfg.ScheduleFile = DefaultScheduleFile
	}
	cfg.Cron = strings.TrimSpace(input.Cron)
	if cfg.Cron == "" {
		cfg.Cron = DefaultCron
	}
	return nil
}

// processPattern builds the pattern parameters and validates their invariants.
func processPattern(cfg *Config, input *ConfigRawInput) error {
	preset := strings.ToLower(input.Preset)
	if preset == "" {
		preset = string(schema.BatchPreset)
	}
	cfg.Preset = schema.Preset(preset)
	if _, ok := schema.ValidPresets[cfg.Preset]; !ok {
		return fmt.Errorf("%w: invalid preset '%s'. must be batch, high-volume", ErrInvalidConfiguration, input.Preset)
	}

	cfg.Pattern = schema.PatternParameters{
		DaysBack:         input.DaysBack,
		DaysForward:      input.DaysForward,
		Frequency:        input.Frequency,
		MinCommitsPerDay: input.MinPerDay,
		MaxCommitsPerDay: input.MaxPerDay,
		NoWeekends:       input.NoWeekends,
		CustomMessages:   ParseMessages(input.Messages),
		BurstChance:      input.BurstChance,
		StartHour:        input.StartHour,
		EndHour:          input.EndHour,
	}
	if err := cfg.Pattern.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	if input.Limit < 0 {
		return fmt.Errorf("%w: limit must be >= 0 (received %d)", ErrInvalidConfiguration, input.Limit)
	}
	cfg.Limit = input.Limit
	cfg.Seed = input.Seed
	cfg.DryRun = input.DryRun
	cfg.Push = input.Push
	return nil
}

// processTimings applies scheduler and transport tuning, falling back to defaults for unset values.
func processTimings(cfg *Config, input *ConfigRawInput) error {
	positive := func(v, def time.Duration) time.Duration {
		if v <= 0 {
			return def
		}
		return v
	}
	cfg.CommitTimeout = positive(input.CommitTimeout, DefaultCommitTimeout)
	cfg.PushTimeout = positive(input.PushTimeout, DefaultPushTimeout)
	cfg.CommandTimeout = positive(input.CommandTimeout, DefaultCommandTimeout)
	cfg.LockStaleAfter = positive(input.LockStaleAfter, DefaultLockStaleAfter)
	cfg.PushBackoff = positive(input.PushBackoff, DefaultPushBackoff)

	if input.ChunkPause < 0 {
		return fmt.Errorf("%w: chunk-pause cannot be negative (received %s)", ErrInvalidConfiguration, input.ChunkPause)
	}
	cfg.ChunkPause = input.ChunkPause

	cfg.ChunkSize = input.ChunkSize
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	cfg.ProgressEvery = input.ProgressEvery
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = DefaultProgressEvery
	}
	if input.PushRetries < 0 {
		return fmt.Errorf("%w: push-retries cannot be negative (received %d)", ErrInvalidConfiguration, input.PushRetries)
	}
	cfg.PushRetries = input.PushRetries
	return nil
}

// resolveRepoPath resolves the working repository. The directory must exist,
// but it does not have to be a git repository yet since init and batch create one.
func resolveRepoPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.Repo
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	info, statErr := os.Stat(absSearchPath)
	if statErr != nil {
		return fmt.Errorf("%w: repository path %q: %w", ErrEnvironment, absSearchPath, statErr)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: repository path %q is not a directory", ErrEnvironment, absSearchPath)
	}

	if gitRoot, err := client.GetRepoRoot(ctx, absSearchPath); err == nil && gitRoot != "" {
		cfg.RepoPath = gitRoot
		return nil
	}
	cfg.RepoPath = absSearchPath
	return nil
}
