// Package pattern generates the timestamped activity events that a batch run
// turns into commits.
package pattern

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/huangsam/cadence/schema"
)

// Burst days add between burstMin and burstMin+burstSpread-1 extra commits.
const (
	burstMin    = 3
	burstSpread = 5
)

// Generator produces activity events. It is not safe for concurrent use
// because it owns its random source.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
	loc *time.Location
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand injects the random source.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithSeed makes generation reproducible.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithClock sets the clock used to find today.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLocation sets the timezone whose calendar days are used.
func WithLocation(loc *time.Location) Option {
	return func(g *Generator) { g.loc = loc }
}

// NewGenerator builds a generator. Without options it uses a randomly seeded
// source, the wall clock and the local timezone.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

// Generate returns events sorted ascending by timestamp.
func (g *Generator) Generate(params schema.PatternParameters) ([]schema.ActivityEvent, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	now := g.now().In(g.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, g.loc)
	start := today.AddDate(0, 0, -params.DaysBack)
	days := params.DaysBack + params.DaysForward

	var events []schema.ActivityEvent
	for i := range days {
		day := start.AddDate(0, 0, i)
		if params.NoWeekends && isWeekend(day) {
			continue
		}
		if g.rng.Float64()*100 >= params.Frequency {
			continue
		}
		count := params.MinCommitsPerDay + g.rng.IntN(params.MaxCommitsPerDay-params.MinCommitsPerDay+1)
		if params.BurstChance > 0 && g.rng.Float64() < params.BurstChance {
			count += burstMin + g.rng.IntN(burstSpread)
		}
		for range count {
			ts := time.Date(day.Year(), day.Month(), day.Day(),
				params.StartHour+g.rng.IntN(params.EndHour-params.StartHour),
				g.rng.IntN(60), g.rng.IntN(60), 0, g.loc)
			events = append(events, schema.ActivityEvent{
				Timestamp: ts,
				Message:   g.message(ts, params.CustomMessages),
			})
		}
	}

	slices.SortStableFunc(events, func(a, b schema.ActivityEvent) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return events, nil
}

// message picks a custom message suffixed with the event date, or a
// conventional-commit message from the built-in pool.
func (g *Generator) message(ts time.Time, custom []string) string {
	if len(custom) > 0 {
		return fmt.Sprintf("%s - %s", custom[g.rng.IntN(len(custom))], ts.Format(time.DateOnly))
	}
	cat := categories[g.rng.IntN(len(categories))]
	phrases := phrasePool[cat]
	return fmt.Sprintf("%s: %s", cat, phrases[g.rng.IntN(len(phrases))])
}

func isWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
