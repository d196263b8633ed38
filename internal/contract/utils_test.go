package contract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPushLabel(t *testing.T) {
	assert.Equal(t, "Pushed", GetPushLabel(schema.PushPushed))
	assert.Equal(t, "Skipped", GetPushLabel(schema.PushSkipped))
	assert.Equal(t, "Failed", GetPushLabel(schema.PushFailed))
	assert.Equal(t, "Not attempted", GetPushLabel(""))
}

func TestGetColorPushLabel(t *testing.T) {
	for _, state := range []schema.PushState{schema.PushPushed, schema.PushSkipped, schema.PushFailed, ""} {
		assert.Contains(t, GetColorPushLabel(state), GetPushLabel(state))
	}
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.txt")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.FileExists(t, path)
}

func TestGetRunDBFilePath(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetRunDBFilePath(), ".cadence_runs.db"))
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    int
		expected string
	}{
		{"short text", "feat: add", 20, "feat: add"},
		{"exact width", "12345", 5, "12345"},
		{"truncated", "fix: resolve memory leak", 10, "fix: re..."},
		{"tiny width is ignored", "abcdef", 3, "abcdef"},
		{"multibyte", "ドキュメント更新", 5, "ドキ..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateText(tt.text, tt.width))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1", " true "} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("sometimes")
	assert.Error(t, err)
}

func TestLenientParsers(t *testing.T) {
	assert.Equal(t, 30, ParseIntOr("30", 365))
	assert.Equal(t, 0, ParseIntOr("0", 365))
	assert.Equal(t, 365, ParseIntOr("abc", 365))
	assert.Equal(t, 365, ParseIntOr("", 365))

	assert.InDelta(t, 55.5, ParseFloatOr("55.5", 80), 1e-9)
	assert.InDelta(t, 80.0, ParseFloatOr("lots", 80), 1e-9)

	assert.True(t, ParseBoolOr("true", false))
	assert.False(t, ParseBoolOr("nah", false))
}

func TestParseMessages(t *testing.T) {
	assert.Nil(t, ParseMessages(""))
	assert.Equal(t, []string{"a", "b c"}, ParseMessages(" a ,, b c ,"))
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, SleepContext(ctx, 0), context.Canceled)
	assert.NoError(t, SleepContext(context.Background(), 0))
}
