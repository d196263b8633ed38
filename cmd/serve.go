package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/schedule"
	"github.com/huangsam/cadence/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd runs the dashboard API and the cron scheduler.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API and run automation on a cron schedule.",
	Long: `Start an HTTP server exposing repository status, stats, recent activity and
the progress log, plus whitelisted command execution. The cron expression
(--cron, default "0 9 * * *") triggers the gated automation in-process.

Endpoints:
  GET  /health               liveness and repository state
  GET  /api/status           scheduler state
  GET  /api/stats            commit statistics
  GET  /api/activity         recent commits
  GET  /api/logs             progress log tail
  GET  /api/report           history report (?days=N, ?format=html)
  POST /api/init             initialize the repository
  POST /api/config/repository  {"url": "..."} set origin and push
  POST /api/config/schedule    {"cron": "..."} change the schedule
  POST /api/execute/{command}  run a whitelisted command
  GET  /api/ws               live batch progress (websocket)
  GET  /metrics              Prometheus metrics

Examples:
  cadence serve
  cadence serve --addr 127.0.0.1:8080 --cron "30 7 * * 1-5"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		cron, err := schedule.NewCron(cfg.Cron)
		if err != nil {
			contract.LogFatal("Invalid cron expression", err)
		}
		srv := server.New(server.Options{
			Config: cfg,
			Client: gitClient,
			Run:    newRunContext(),
			Cron:   cron,
			Build:  server.BuildInfo{Version: version, Commit: commit},
			Logger: newLogger(),
		})
		_, _ = fmt.Fprintf(os.Stderr, "🌐 Dashboard listening on %s (repo %s, cron %q)\n", cfg.Addr, cfg.RepoPath, cron.Expr())
		if err := srv.Run(rootCtx); err != nil {
			contract.LogFatal("Dashboard stopped", err)
		}
	},
}
