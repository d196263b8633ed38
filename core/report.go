package core

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// MaxActivityMessage caps the message length in activity entries.
const MaxActivityMessage = 100

// periodCounter counts keys and remembers the order they were first seen.
type periodCounter struct {
	order  []string
	counts map[string]int
}

func newPeriodCounter() *periodCounter {
	return &periodCounter{counts: make(map[string]int)}
}

func (c *periodCounter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *periodCounter) list() []schema.PeriodCount {
	out := make([]schema.PeriodCount, len(c.order))
	for i, key := range c.order {
		out[i] = schema.PeriodCount{Period: key, Count: c.counts[key]}
	}
	return out
}

// busiest returns the highest count. Ties keep the first-seen key.
func (c *periodCounter) busiest() schema.PeriodCount {
	var best schema.PeriodCount
	for _, key := range c.order {
		if n := c.counts[key]; n > best.Count {
			best = schema.PeriodCount{Period: key, Count: n}
		}
	}
	return best
}

// BuildReport aggregates events by month, weekday and day.
func BuildReport(events []schema.ActivityEvent) schema.Report {
	times := make([]time.Time, len(events))
	for i, e := range events {
		times[i] = e.Timestamp
	}
	return reportFromTimes(times)
}

func reportFromTimes(times []time.Time) schema.Report {
	months, weekdays, days := newPeriodCounter(), newPeriodCounter(), newPeriodCounter()
	var report schema.Report
	for _, ts := range times {
		months.add(ts.Format("2006-01"))
		weekdays.add(ts.Weekday().String())
		days.add(ts.Format(time.DateOnly))
		if report.First.IsZero() || ts.Before(report.First) {
			report.First = ts
		}
		if ts.After(report.Last) {
			report.Last = ts
		}
	}
	report.Total = len(times)
	report.ActiveDays = len(days.order)
	if report.ActiveDays > 0 {
		report.AveragePerDay = float64(report.Total) / float64(report.ActiveDays)
	}
	report.Months = months.list()
	report.Weekdays = weekdays.list()
	report.Days = days.list()
	report.BusiestMonth = months.busiest()
	report.BusiestWeekday = weekdays.busiest()
	return report
}

// ReportFromHistory builds a report over the commits of repoPath since the
// given time, oldest first. A zero since covers the whole history.
func ReportFromHistory(ctx context.Context, client contract.GitClient, repoPath string, since time.Time) (schema.Report, error) {
	times, err := client.GetCommitTimes(ctx, repoPath, since)
	if err != nil {
		return schema.Report{}, err
	}
	ordered := slices.Clone(times)
	slices.SortStableFunc(ordered, func(a, b time.Time) int { return a.Compare(b) })
	return reportFromTimes(ordered), nil
}

// ComputeStats counts commits for today, the last 7 days, the last month and
// in total, plus the streak of consecutive active days ending today or yesterday.
func ComputeStats(times []time.Time, now time.Time) schema.CommitStats {
	loc := now.Location()
	today := now.Format(time.DateOnly)
	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthAgo := now.AddDate(0, -1, 0)

	stats := schema.CommitStats{Total: len(times)}
	active := make(map[string]bool, len(times))
	for _, ts := range times {
		local := ts.In(loc)
		day := local.Format(time.DateOnly)
		active[day] = true
		if day == today {
			stats.Today++
		}
		if local.After(weekAgo) {
			stats.Week++
		}
		if local.After(monthAgo) {
			stats.Month++
		}
	}
	stats.Streak = streak(active, now)
	return stats
}

func streak(active map[string]bool, now time.Time) int {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !active[day.Format(time.DateOnly)] {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for active[day.Format(time.DateOnly)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

// StatsFromHistory computes commit stats from the repository history.
func StatsFromHistory(ctx context.Context, client contract.GitClient, repoPath string, now time.Time) (schema.CommitStats, error) {
	times, err := client.GetCommitTimes(ctx, repoPath, time.Time{})
	if err != nil {
		return schema.CommitStats{}, err
	}
	return ComputeStats(times, now), nil
}

// ActivityType classifies a commit subject for the activity feed.
func ActivityType(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "merge"):
		return "merge"
	case strings.Contains(msg, "fix") || strings.Contains(msg, "bug"):
		return "bugfix"
	case strings.Contains(msg, "feat"):
		return "feature"
	case strings.Contains(msg, "docs"):
		return "docs"
	case strings.Contains(msg, "test"):
		return "test"
	default:
		return "commit"
	}
}

// RecentActivity returns the last n commits with their activity type. An
// empty repository yields a single init entry.
func RecentActivity(ctx context.Context, client contract.GitClient, repoPath string, n int) ([]schema.ActivityEntry, error) {
	entries, err := client.GetRecentCommits(ctx, repoPath, n)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []schema.ActivityEntry{{Hash: "init", Message: "Repository initialized", Time: "recently", Type: "init"}}, nil
	}
	for i := range entries {
		entries[i].Message = contract.TruncateText(entries[i].Message, MaxActivityMessage)
		entries[i].Type = ActivityType(entries[i].Message)
	}
	return entries, nil
}
