package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// barWidth is the widest histogram bar drawn in text tables.
const barWidth = 30

// PrintReport outputs the report, dispatching based on the output format configured.
func PrintReport(report schema.Report, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(1)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON report")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, report)
		}, "Wrote YAML report")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportCSV(w, report)
		}, "Wrote CSV report")
	case schema.HTMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteReportHTML(w, report, "Activity report")
		}, "Wrote HTML report")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportText(w, report, fmtFloat)
		}, "Wrote report")
	}
}

// writeReportText prints the summary lines followed by month and weekday tables.
func writeReportText(w io.Writer, report schema.Report, fmtFloat func(float64) string) error {
	_, _ = fmt.Fprintln(w, "📊 Activity Report")
	if report.Total == 0 {
		_, _ = fmt.Fprintln(w, "No activity in range.")
		return nil
	}
	_, _ = fmt.Fprintf(w, "Total: %s commits over %s active days (avg %s/day)\n",
		humanize.Comma(int64(report.Total)), humanize.Comma(int64(report.ActiveDays)), fmtFloat(report.AveragePerDay))
	_, _ = fmt.Fprintf(w, "Range: %s to %s\n", formatTime(report.First, "2006-01-02"), formatTime(report.Last, "2006-01-02"))
	_, _ = fmt.Fprintf(w, "Busiest month: %s (%d)\n", report.BusiestMonth.Period, report.BusiestMonth.Count)
	_, _ = fmt.Fprintf(w, "Busiest weekday: %s (%d)\n", report.BusiestWeekday.Period, report.BusiestWeekday.Count)

	if err := writePeriodTable(w, "Month", report.Months); err != nil {
		return err
	}
	return writePeriodTable(w, "Weekday", report.Weekdays)
}

// writePeriodTable renders one bucket list with a proportional bar column.
func writePeriodTable(w io.Writer, label string, periods []schema.PeriodCount) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{label, "Commits", ""})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight, tw.AlignLeft}
	})

	peak := 0
	for _, p := range periods {
		peak = max(peak, p.Count)
	}

	var data [][]string
	for _, p := range periods {
		data = append(data, []string{p.Period, strconv.Itoa(p.Count), bar(p.Count, peak)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// bar scales count against peak into a run of block characters.
func bar(count, peak int) string {
	if peak <= 0 || count <= 0 {
		return ""
	}
	n := max(1, count*barWidth/peak)
	return strings.Repeat("█", n)
}

// writeReportCSV flattens every bucket into kind,period,count rows.
func writeReportCSV(w io.Writer, report schema.Report) error {
	header := []string{"kind", "period", "count"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		groups := []struct {
			kind    string
			periods []schema.PeriodCount
		}{
			{"month", report.Months},
			{"weekday", report.Weekdays},
			{"day", report.Days},
		}
		for _, g := range groups {
			for _, p := range g.periods {
				if err := cw.Write([]string{g.kind, p.Period, strconv.Itoa(p.Count)}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
