// Package server serves the dashboard JSON API, the websocket progress feed
// and Prometheus metrics, and drives the cron automation loop for `serve`.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/schedule"
	"github.com/huangsam/cadence/schema"
	"golang.org/x/sync/errgroup"
)

const (
	// ExecuteTimeout bounds one command execution.
	ExecuteTimeout = 2 * time.Minute

	timeoutMessage  = "Command timed out after 2 minutes"
	shutdownTimeout = 10 * time.Second
	cronTick        = 30 * time.Second
)

// BuildInfo is reported by /health.
type BuildInfo struct {
	Version string
	Commit  string
}

// Options wires a Server.
type Options struct {
	Config *contract.Config
	Client contract.GitClient
	Run    *core.RunContext
	Cron   *schedule.Cron
	Build  BuildInfo
	Logger *slog.Logger

	// Now and ExecuteTimeout are replaced by tests.
	Now            func() time.Time
	ExecuteTimeout time.Duration
}

// Server is the cadence dashboard.
type Server struct {
	cfg     *contract.Config
	client  contract.GitClient
	rc      *core.RunContext
	cron    *schedule.Cron
	build   BuildInfo
	logger  *slog.Logger
	hub     *Hub
	metrics *Metrics
	now     func() time.Time
	timeout time.Duration
	started time.Time

	execMu sync.Mutex // the repository is shared by every execution
}

// New builds a Server from opts.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	timeout := opts.ExecuteTimeout
	if timeout <= 0 {
		timeout = ExecuteTimeout
	}
	cron := opts.Cron
	if cron == nil {
		// DefaultCron is a constant expression, it always parses
		cron, _ = schedule.NewCron(contract.DefaultCron)
	}
	return &Server{
		cfg:     opts.Config,
		client:  opts.Client,
		rc:      opts.Run,
		cron:    cron,
		build:   opts.Build,
		logger:  logger,
		hub:     NewHub(logger),
		metrics: NewMetrics(),
		now:     now,
		timeout: timeout,
		started: now(),
	}
}

// Hub returns the progress hub.
func (s *Server) Hub() *Hub { return s.hub }

// Metrics returns the collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/activity", s.handleActivity)
	mux.HandleFunc("GET /api/logs", s.handleLogs)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("POST /api/init", s.handleInit)
	mux.HandleFunc("POST /api/config/repository", s.handleConfigRepository)
	mux.HandleFunc("POST /api/config/schedule", s.handleConfigSchedule)
	mux.HandleFunc("POST /api/execute/{command}", s.handleExecute)
	mux.Handle("GET /api/ws", s.hub)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("/api/", s.handleNotFound)
	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

// Execute runs one allowed command under the execution lock and timeout,
// feeding progress to the hub and outcomes to the metrics.
func (s *Server) Execute(ctx context.Context, name string) (schema.CommandResult, error) {
	s.execMu.Lock()
	defer s.execMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := core.CommandOptions{
		Batch: core.BatchOptionsFromConfig(s.cfg, name),
		Cron:  s.cron.Expr(),
	}
	opts.Batch.Progress = s.hub.Broadcast

	start := time.Now()
	result, err := core.ExecuteCommand(ctx, s.rc, name, opts)
	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
	}
	s.metrics.ObserveExecute(name, status, time.Since(start))
	s.metrics.ObserveOutcome(result.Outcome)
	return result, err
}

// runScheduled is the cron callback. Errors are logged, never returned.
func (s *Server) runScheduled(ctx context.Context) {
	result, err := s.Execute(ctx, core.CommandAuto)
	if err != nil {
		s.logger.Warn("scheduled automation failed", "error", err)
		return
	}
	s.logger.Info("scheduled automation", "message", result.Message, "commits", result.Commits)
}

// Run serves on cfg.Addr and runs the cron loop until ctx is done, then
// shuts the HTTP server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("dashboard listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.cron.Loop(ctx, cronTick, s.now, s.runScheduled)
	})
	g.Go(func() error {
		<-ctx.Done()
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
