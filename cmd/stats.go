package cmd

import (
	"time"

	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// statsCmd summarizes the commit history of the repository.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize commit history: streak, totals and busiest periods.",
	Long: `Read the repository history and report today's and this week's commits,
the current daily streak, the busiest month and weekday, and the most recent
commits classified by type.

Examples:
  # Whole history as a table
  cadence stats

  # Last 90 days as an HTML heatmap
  cadence stats --days 90 --output html --output-file activity.html

  # Machine readable
  cadence stats --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		now := time.Now()
		var since time.Time
		if days := viper.GetInt("days"); days > 0 {
			since = now.AddDate(0, 0, -days)
		}

		var view schema.HistoryView
		var err error
		if view.Stats, err = core.StatsFromHistory(rootCtx, gitClient, cfg.RepoPath, now); err != nil {
			contract.LogFatal("Cannot read commit stats", err)
		}
		if view.Report, err = core.ReportFromHistory(rootCtx, gitClient, cfg.RepoPath, since); err != nil {
			contract.LogFatal("Cannot build history report", err)
		}
		if n := viper.GetInt("activity"); n > 0 {
			if view.Activity, err = core.RecentActivity(rootCtx, gitClient, cfg.RepoPath, n); err != nil {
				contract.LogWarn("Cannot list recent activity", err)
			}
		}
		if err := writer.WriteHistory(view, cfg); err != nil {
			contract.LogFatal("Error writing stats", err)
		}
	},
}
