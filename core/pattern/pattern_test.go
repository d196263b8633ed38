package pattern

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow is a Wednesday.
var fixedNow = time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)

func newTestGenerator(seed uint64) *Generator {
	return NewGenerator(
		WithSeed(seed),
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	)
}

func baseParams() schema.PatternParameters {
	p, _ := PresetParameters(schema.BatchPreset)
	return p
}

func TestGenerate_ZeroWindow(t *testing.T) {
	p := baseParams()
	p.DaysBack = 0
	events, err := newTestGenerator(1).Generate(p)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGenerate_ZeroFrequency(t *testing.T) {
	p := baseParams()
	p.Frequency = 0
	events, err := newTestGenerator(1).Generate(p)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGenerate_DeterministicCount(t *testing.T) {
	p := baseParams()
	p.DaysBack = 30
	p.Frequency = 100
	p.MinCommitsPerDay = 2
	p.MaxCommitsPerDay = 2

	events, err := newTestGenerator(7).Generate(p)
	require.NoError(t, err)
	assert.Len(t, events, 60)
}

func TestGenerate_WindowAndHours(t *testing.T) {
	p := baseParams()
	p.DaysBack = 10
	p.DaysForward = 5
	p.Frequency = 100
	p.StartHour = 9
	p.EndHour = 12

	events, err := newTestGenerator(3).Generate(p)
	require.NoError(t, err)
	require.NotEmpty(t, events)

	today := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	lower := today.AddDate(0, 0, -10)
	upper := today.AddDate(0, 0, 5)
	for _, e := range events {
		assert.False(t, e.Timestamp.Before(lower), e.Timestamp)
		assert.True(t, e.Timestamp.Before(upper), e.Timestamp)
		assert.GreaterOrEqual(t, e.Timestamp.Hour(), 9)
		assert.Less(t, e.Timestamp.Hour(), 12)
	}
}

func TestGenerate_SortedAscending(t *testing.T) {
	p := baseParams()
	p.DaysBack = 60
	events, err := newTestGenerator(11).Generate(p)
	require.NoError(t, err)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp))
	}
}

func TestGenerate_NoWeekends(t *testing.T) {
	p := baseParams()
	p.DaysBack = 28
	p.Frequency = 100
	p.NoWeekends = true

	events, err := newTestGenerator(5).Generate(p)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	for _, e := range events {
		assert.False(t, isWeekend(e.Timestamp), e.Timestamp)
	}
}

func TestGenerate_PerDayBounds(t *testing.T) {
	p := baseParams()
	p.DaysBack = 90
	p.Frequency = 100
	p.MinCommitsPerDay = 2
	p.MaxCommitsPerDay = 4

	events, err := newTestGenerator(9).Generate(p)
	require.NoError(t, err)
	perDay := map[string]int{}
	for _, e := range events {
		perDay[e.Timestamp.Format(time.DateOnly)]++
	}
	assert.Len(t, perDay, 90)
	for day, n := range perDay {
		assert.GreaterOrEqual(t, n, 2, day)
		assert.LessOrEqual(t, n, 4, day)
	}
}

func TestGenerate_BurstAddsCommits(t *testing.T) {
	p := baseParams()
	p.DaysBack = 20
	p.Frequency = 100
	p.MinCommitsPerDay = 1
	p.MaxCommitsPerDay = 1
	p.BurstChance = 1

	events, err := newTestGenerator(2).Generate(p)
	require.NoError(t, err)
	perDay := map[string]int{}
	for _, e := range events {
		perDay[e.Timestamp.Format(time.DateOnly)]++
	}
	for day, n := range perDay {
		assert.GreaterOrEqual(t, n, 1+burstMin, day)
		assert.LessOrEqual(t, n, 1+burstMin+burstSpread-1, day)
	}
}

func TestGenerate_CustomMessagesCarryDate(t *testing.T) {
	p := baseParams()
	p.DaysBack = 5
	p.Frequency = 100
	p.CustomMessages = []string{"feat: new feature", `fix: "quoted" bug`}

	events, err := newTestGenerator(4).Generate(p)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	for _, e := range events {
		suffix := " - " + e.Timestamp.Format(time.DateOnly)
		require.True(t, strings.HasSuffix(e.Message, suffix), e.Message)
		base := strings.TrimSuffix(e.Message, suffix)
		assert.Contains(t, p.CustomMessages, base)
	}
}

func TestGenerate_PoolMessagesAreConventional(t *testing.T) {
	p := baseParams()
	p.DaysBack = 30
	events, err := newTestGenerator(8).Generate(p)
	require.NoError(t, err)
	for _, e := range events {
		cat, phrase, ok := strings.Cut(e.Message, ": ")
		require.True(t, ok, e.Message)
		assert.Contains(t, phrasePool[cat], phrase)
	}
}

func TestGenerate_SeedIsReproducible(t *testing.T) {
	p := baseParams()
	p.DaysBack = 45
	a, err := newTestGenerator(42).Generate(p)
	require.NoError(t, err)
	b, err := newTestGenerator(42).Generate(p)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewGenerator(
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	).Generate(p)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestGenerate_DSTKeepsCalendarDays(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}
	p := baseParams()
	p.DaysBack = 20
	p.Frequency = 100
	p.MinCommitsPerDay = 1
	p.MaxCommitsPerDay = 1
	// Window spans the March 10, 2024 spring-forward.
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, loc)
	events, err := NewGenerator(WithSeed(1), WithClock(func() time.Time { return now }), WithLocation(loc)).Generate(p)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, e := range events {
		seen[e.Timestamp.In(loc).Format(time.DateOnly)] = true
	}
	assert.Len(t, seen, 20)
}

func TestGenerate_InvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*schema.PatternParameters)
	}{
		{"min below one", func(p *schema.PatternParameters) { p.MinCommitsPerDay = 0 }},
		{"max below min", func(p *schema.PatternParameters) { p.MaxCommitsPerDay = 0 }},
		{"frequency above 100", func(p *schema.PatternParameters) { p.Frequency = 101 }},
		{"negative days", func(p *schema.PatternParameters) { p.DaysBack = -1 }},
		{"burst above one", func(p *schema.PatternParameters) { p.BurstChance = 1.5 }},
		{"empty hour window", func(p *schema.PatternParameters) { p.EndHour = p.StartHour }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			tt.mutate(&p)
			_, err := newTestGenerator(1).Generate(p)
			assert.True(t, errors.Is(err, schema.ErrInvalidParameters), err)
		})
	}
}

func TestPresetParameters(t *testing.T) {
	batch, err := PresetParameters(schema.BatchPreset)
	require.NoError(t, err)
	assert.Equal(t, 80.0, batch.Frequency)
	assert.Equal(t, 10, batch.MaxCommitsPerDay)
	assert.NoError(t, batch.Validate())

	hv, err := PresetParameters(schema.HighVolumePreset)
	require.NoError(t, err)
	assert.Equal(t, 95.0, hv.Frequency)
	assert.Equal(t, 3, hv.MinCommitsPerDay)
	assert.Equal(t, 15, hv.MaxCommitsPerDay)
	assert.Equal(t, 0.3, hv.BurstChance)
	assert.NoError(t, hv.Validate())

	_, err = PresetParameters("turbo")
	assert.True(t, errors.Is(err, schema.ErrInvalidParameters))
}
