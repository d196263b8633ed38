package contract

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input equivalent to the viper defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Repo:        ".",
		Output:      "text",
		Color:       "yes",
		RunBackend:  "none",
		DaysBack:    DefaultDaysBack,
		DaysForward: DefaultDaysForward,
		Frequency:   DefaultFrequency,
		MinPerDay:   DefaultMinCommitsPerDay,
		MaxPerDay:   DefaultMaxCommitsPerDay,
		StartHour:   DefaultStartHour,
		EndHour:     DefaultEndHour,
		PushRetries: DefaultPushRetries,
	}
}

func TestProcessAndValidate(t *testing.T) {
	workDir, err := filepath.Abs(".")
	require.NoError(t, err)

	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
		setupMock   func(*MockGitClient)
	}{
		{
			name:   "valid defaults inside a repository",
			mutate: func(*ConfigRawInput) {},
			setupMock: func(m *MockGitClient) {
				m.On("GetRepoRoot", context.Background(), workDir).Return("/mock/repo/root", nil)
			},
		},
		{
			name:   "valid defaults outside a repository",
			mutate: func(*ConfigRawInput) {},
			setupMock: func(m *MockGitClient) {
				m.On("GetRepoRoot", context.Background(), workDir).Return("", ErrNotGitRepository)
			},
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: true,
		},
		{
			name:        "invalid color",
			mutate:      func(in *ConfigRawInput) { in.Color = "maybe" },
			expectError: true,
		},
		{
			name:        "max below min",
			mutate:      func(in *ConfigRawInput) { in.MinPerDay, in.MaxPerDay = 5, 2 },
			expectError: true,
		},
		{
			name:        "frequency above 100",
			mutate:      func(in *ConfigRawInput) { in.Frequency = 101 },
			expectError: true,
		},
		{
			name:        "invalid preset",
			mutate:      func(in *ConfigRawInput) { in.Preset = "turbo" },
			expectError: true,
		},
		{
			name:        "negative limit",
			mutate:      func(in *ConfigRawInput) { in.Limit = -1 },
			expectError: true,
		},
		{
			name:        "invalid backend",
			mutate:      func(in *ConfigRawInput) { in.RunBackend = "oracle" },
			expectError: true,
		},
		{
			name:        "mysql without connection string",
			mutate:      func(in *ConfigRawInput) { in.RunBackend = "mysql" },
			expectError: true,
		},
		{
			name:        "missing repository directory",
			mutate:      func(in *ConfigRawInput) { in.Repo = filepath.Join(t.TempDir(), "missing") },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := new(MockGitClient)
			if tt.setupMock != nil {
				tt.setupMock(mockClient)
			}
			input := validInput()
			tt.mutate(input)

			cfg := &Config{}
			err := ProcessAndValidate(context.Background(), cfg, mockClient, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			mockClient.AssertExpectations(t)
		})
	}
}

func TestProcessAndValidate_ResolvedValues(t *testing.T) {
	workDir, err := filepath.Abs(".")
	require.NoError(t, err)

	mockClient := new(MockGitClient)
	mockClient.On("GetRepoRoot", context.Background(), workDir).Return("/mock/repo/root", nil)

	input := validInput()
	input.Messages = "ship it, ,polish docs"
	input.NoWeekends = true
	input.Output = "JSON"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(context.Background(), cfg, mockClient, input))

	assert.Equal(t, "/mock/repo/root", cfg.RepoPath)
	assert.Equal(t, schema.JSONOut, cfg.Output)
	assert.Equal(t, schema.BatchPreset, cfg.Preset)
	assert.Equal(t, schema.NoneBackend, cfg.RunBackend)
	assert.Equal(t, []string{"ship it", "polish docs"}, cfg.Pattern.CustomMessages)
	assert.True(t, cfg.Pattern.NoWeekends)

	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, DefaultProgressEvery, cfg.ProgressEvery)
	assert.Equal(t, DefaultCommitTimeout, cfg.CommitTimeout)
	assert.Equal(t, DefaultPushTimeout, cfg.PushTimeout)
	assert.Equal(t, DefaultCommandTimeout, cfg.CommandTimeout)
	assert.Equal(t, DefaultLockStaleAfter, cfg.LockStaleAfter)
	assert.Equal(t, DefaultIdentityName, cfg.IdentityName)
	assert.Equal(t, DefaultCron, cfg.Cron)
	assert.Equal(t, filepath.Join("/mock/repo/root", DefaultScheduleFile), cfg.SchedulePath())
}

func TestProcessAndValidate_WrapsInvalidConfiguration(t *testing.T) {
	input := validInput()
	input.StartHour, input.EndHour = 20, 10

	err := ProcessAndValidate(context.Background(), &Config{}, new(MockGitClient), input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	assert.True(t, errors.Is(err, schema.ErrInvalidParameters))
}

func TestProcessTimings_KeepsExplicitValues(t *testing.T) {
	input := validInput()
	input.ChunkPause = 250 * time.Millisecond
	input.PushBackoff = time.Second
	input.PushRetries = 0

	cfg := &Config{}
	require.NoError(t, processTimings(cfg, input))
	assert.Equal(t, 250*time.Millisecond, cfg.ChunkPause)
	assert.Equal(t, time.Second, cfg.PushBackoff)
	assert.Equal(t, 0, cfg.PushRetries)

	input.ChunkPause = -time.Second
	assert.Error(t, processTimings(cfg, input))
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "root:pw@tcp(localhost:3306)/cadence", false},
		{"mysql missing tcp", schema.MySQLBackend, "root:pw@localhost/cadence", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=cadence", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Pattern: schema.PatternParameters{CustomMessages: []string{"a", "b"}}}
	clone := cfg.Clone()
	clone.Pattern.CustomMessages[0] = "changed"
	assert.Equal(t, "a", cfg.Pattern.CustomMessages[0])
}
