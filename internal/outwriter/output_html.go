package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/cadence/schema"
)

const (
	dayLayout     = "2006-01-02"
	heatMapHeight = "260px"
	barHeight     = "360px"
)

// contributionPalette matches the five-step green scale of a contribution graph.
var contributionPalette = []string{"#ebedf0", "#9be9a8", "#40c463", "#30a14e", "#216e39"}

var weekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WriteReportHTML renders the report as a standalone page with a contribution
// heatmap followed by a per-month bar chart.
func WriteReportHTML(w io.Writer, report schema.Report, title string) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(createHeatMap(report), createMonthBar(report))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}

// createHeatMap lays days out as weeks (x) by weekday (y).
func createHeatMap(report schema.Report) *charts.HeatMap {
	weeks, data, peak := buildHeatMapData(report.Days)

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Contributions", Subtitle: fmt.Sprintf("%d commits on %d days", report.Total, report.ActiveDays)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: heatMapHeight}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category", Data: weeks,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category", Data: weekdayLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true), Min: 0, Max: float32(max(peak, 1)),
			InRange: &opts.VisualMapInRange{Color: contributionPalette},
			Orient:  "horizontal", Left: "center", Bottom: "2%",
		}),
	)
	hm.AddSeries("Commits", data)
	return hm
}

// buildHeatMapData returns the week labels, the [week, weekday, count]
// cells and the largest daily count. Weeks start on Sunday.
func buildHeatMapData(days []schema.PeriodCount) (weeks []string, data []opts.HeatMapData, peak int) {
	counts := make(map[string]int, len(days))
	var first, last time.Time
	for _, d := range days {
		t, err := time.Parse(dayLayout, d.Period)
		if err != nil {
			continue
		}
		counts[d.Period] += d.Count
		if first.IsZero() || t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	if first.IsZero() {
		return nil, nil, 0
	}

	start := first.AddDate(0, 0, -int(first.Weekday()))
	week := -1
	for day := start; !day.After(last); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Sunday {
			week++
			weeks = append(weeks, day.Format(dayLayout))
		}
		count := counts[day.Format(dayLayout)]
		peak = max(peak, count)
		data = append(data, opts.HeatMapData{Value: []any{week, int(day.Weekday()), count}})
	}
	return weeks, data, peak
}

// createMonthBar charts commits per month in first-seen order.
func createMonthBar(report schema.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Commits per month"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: barHeight}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	labels := make([]string, len(report.Months))
	values := make([]opts.BarData, len(report.Months))
	for i, m := range report.Months {
		labels[i] = m.Period
		values[i] = opts.BarData{Value: m.Count}
	}
	bar.SetXAxis(labels)
	bar.AddSeries("Commits", values, charts.WithItemStyleOpts(opts.ItemStyle{Color: contributionPalette[3]}))
	return bar
}
