package fabricate

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2024, 2, 29, 10, 15, 0, 0, time.UTC)

func testRand() *rand.Rand { return rand.New(rand.NewPCG(1, 1)) }

func TestApply_WritesAndAppends(t *testing.T) {
	root := t.TempDir()
	paths, err := Apply(root, []schema.FileMutation{
		{Path: "config/settings.yaml", Content: "a: 1\n", Append: true},
		{Path: "config/settings.yaml", Content: "b: 2\n", Append: true},
		{Path: "notes.md", Content: "first\n"},
		{Path: "notes.md", Content: "second\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"config/settings.yaml", "config/settings.yaml", "notes.md", "notes.md"}, paths)

	data, err := os.ReadFile(filepath.Join(root, "config", "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "a: 1\nb: 2\n", string(data))

	data, err = os.ReadFile(filepath.Join(root, "notes.md"))
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))
}

func TestApply_RejectsUnsafePaths(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"", "/etc/passwd", "../outside.txt", "a/../../b", ".", ".git/config"} {
		_, err := Apply(root, []schema.FileMutation{{Path: p, Content: "x"}})
		assert.True(t, errors.Is(err, ErrUnsafePath), "path %q", p)
	}
	_, err := Apply(root, []schema.FileMutation{{Path: "a/../b.txt", Content: "x"}})
	assert.NoError(t, err)
}

func TestKindFor(t *testing.T) {
	assert.Equal(t, ProgressLog, KindFor(0))
	assert.Equal(t, Documentation, KindFor(1))
	assert.Equal(t, Configuration, KindFor(2))
	assert.Equal(t, ProgressLog, KindFor(3))
	assert.Equal(t, "documentation", Documentation.String())
}

func TestRotating_EveryEventChangesTheTree(t *testing.T) {
	root := t.TempDir()
	r := NewRotating(root, testRand())

	for i := range 9 {
		muts, err := r.Produce(ts.Add(time.Duration(i)*time.Minute), i)
		require.NoError(t, err)
		require.Len(t, muts, 1)
		m := muts[0]
		assert.True(t, m.Append)
		switch KindFor(i) {
		case ProgressLog:
			assert.Equal(t, "daily-progress.md", m.Path)
		case Documentation:
			assert.Contains(t, docPaths, m.Path)
		case Configuration:
			assert.Equal(t, "config/settings.yaml", m.Path)
		}
		_, err = Apply(root, muts)
		require.NoError(t, err)
	}

	data, err := os.ReadFile(filepath.Join(root, "daily-progress.md"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "# Daily Progress Log"))
	assert.Equal(t, 3, strings.Count(string(data), "## 2024-02-29"))
}

func TestNewTaskSet_AllNames(t *testing.T) {
	expected := map[string]int{
		TaskDaily: 2, TaskMicro: 4, TaskDocs: 4, TaskTests: 4,
		TaskRefactor: 4, TaskBugfix: 4, TaskFeature: 3,
	}
	for _, name := range TaskNames {
		t.Run(name, func(t *testing.T) {
			set, err := NewTaskSet(name, t.TempDir(), "", testRand())
			require.NoError(t, err)
			assert.Equal(t, expected[name], set.Len())
		})
	}
}

func TestNewTaskSet_Errors(t *testing.T) {
	_, err := NewTaskSet("weekly", t.TempDir(), "", nil)
	assert.True(t, errors.Is(err, contract.ErrInvalidConfiguration))

	_, err = NewTaskSet(TaskFeature, t.TempDir(), "../escape", nil)
	assert.True(t, errors.Is(err, contract.ErrInvalidConfiguration))
}

func TestTaskSet_Feature(t *testing.T) {
	set, err := NewTaskSet(TaskFeature, t.TempDir(), "search", nil)
	require.NoError(t, err)
	tasks := set.Tasks()
	assert.Equal(t, "src/search.js", tasks[0].Path)
	assert.Equal(t, "feat: implement search feature", tasks[0].Message)
	assert.Equal(t, "docs/search.md", tasks[2].Path)
}

func TestTaskSet_EventsAreOneSecondApart(t *testing.T) {
	set, err := NewTaskSet(TaskDocs, t.TempDir(), "", nil)
	require.NoError(t, err)
	events := set.Events(ts)
	require.Len(t, events, 4)
	for i, e := range events {
		assert.Equal(t, ts.Add(time.Duration(i)*time.Second), e.Timestamp)
		assert.Equal(t, set.Tasks()[i].Message, e.Message)
	}
}

func TestTaskSet_ProduceHeaderOnlyOnce(t *testing.T) {
	root := t.TempDir()
	set, err := NewTaskSet(TaskDaily, root, "", testRand())
	require.NoError(t, err)

	for range 2 {
		muts, err := set.Produce(ts, 0)
		require.NoError(t, err)
		_, err = Apply(root, muts)
		require.NoError(t, err)
	}
	data, err := os.ReadFile(filepath.Join(root, "daily-progress.md"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "# Daily Progress Log"))

	_, err = set.Produce(ts, 5)
	assert.Error(t, err)
}

func TestTaskSet_OverwritesAreTimestamped(t *testing.T) {
	set, err := NewTaskSet(TaskTests, t.TempDir(), "", nil)
	require.NoError(t, err)
	for i := range set.Len() {
		a, err := set.Produce(ts, i)
		require.NoError(t, err)
		b, err := set.Produce(ts.Add(time.Hour), i)
		require.NoError(t, err)
		assert.NotEqual(t, a[0].Content, b[0].Content, set.Tasks()[i].Path)
	}
}
