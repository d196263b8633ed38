package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/outwriter"
	"github.com/huangsam/cadence/schema"
)

const (
	activityLimit  = 10
	logLineLimit   = 50
	progressLog    = "daily-progress.md"
	maxRequestBody = 1 << 16
)

// envelope is the JSON body of every API response.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, err error, extra envelope) {
	body := envelope{"success": false, "error": err.Error()}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, code, body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// optionalTime renders a zero time as null.
func optionalTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	git := "initialized"
	if _, err := s.client.GetGitDir(r.Context(), s.cfg.RepoPath); err != nil {
		git = "not_initialized"
	}
	now := s.now()
	writeJSON(w, http.StatusOK, envelope{
		"success":   true,
		"status":    "OK",
		"timestamp": now.UTC().Format(time.RFC3339),
		"uptime":    now.Sub(s.started).Seconds(),
		"version":   s.build.Version,
		"commit":    s.build.Commit,
		"git":       git,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := core.Status(r.Context(), s.rc, s.cron.Expr())
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"data": envelope{
			"isConfigured":     status.IsConfigured,
			"nextRunDue":       status.NextRunDue,
			"nextRunTime":      optionalTime(status.NextRunTime),
			"nextPush":         optionalTime(status.NextPush),
			"lastPush":         optionalTime(status.LastPush),
			"totalRuns":        status.TotalRuns,
			"remoteConfigured": status.RemoteConfigured,
			"cron":             s.cron.Expr(),
			"systemStatus":     "operational",
		},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := core.StatsFromHistory(r.Context(), s.client, s.cfg.RepoPath, s.now())
	if err != nil {
		s.logger.Warn("stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, err, envelope{"stats": schema.CommitStats{}})
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "stats": stats})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	activities, err := core.RecentActivity(r.Context(), s.client, s.cfg.RepoPath, activityLimit)
	if err != nil {
		// The feed degrades to empty rather than failing the dashboard.
		s.logger.Warn("activity failed", "error", err)
		activities = []schema.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "activities": activities})
}

func (s *Server) handleLogs(w http.ResponseWriter, _ *http.Request) {
	lines, source, err := readProgressLog(s.cfg.RepoPath, s.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, envelope{"logs": []string{}})
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "logs": lines, "source": source})
}

// readProgressLog returns the last non-empty lines of the progress log,
// creating it with a header when missing.
func readProgressLog(repoPath string, now time.Time) ([]string, string, error) {
	path := filepath.Join(repoPath, progressLog)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		header := fmt.Sprintf("# Daily Progress Log\n\n## %s\n- cadence dashboard started\n", now.Format(time.DateOnly))
		if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
			return nil, "", err
		}
		return []string{"# Daily Progress Log", "## " + now.Format(time.DateOnly), "- cadence dashboard started"}, "initialized", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, "", err
	}
	if len(lines) > logLineLimit {
		lines = lines[len(lines)-logLineLimit:]
	}
	if lines == nil {
		lines = []string{}
	}
	return lines, progressLog, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if days := contract.ParseIntOr(r.URL.Query().Get("days"), 0); days > 0 {
		since = s.now().AddDate(0, 0, -days)
	}
	report, err := core.ReportFromHistory(r.Context(), s.client, s.cfg.RepoPath, since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, nil)
		return
	}
	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := outwriter.WriteReportHTML(w, report, "cadence activity"); err != nil {
			s.logger.Warn("html report failed", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "report": report})
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	s.execMu.Lock()
	defer s.execMu.Unlock()

	res, err := core.InitRepository(r.Context(), s.rc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success":      true,
		"message":      "System initialized successfully",
		"filesCreated": len(res.Created),
		"created":      res.Created,
		"commits":      res.Commits,
	})
}

func (s *Server) handleConfigRepository(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err, nil)
		return
	}

	s.execMu.Lock()
	defer s.execMu.Unlock()

	push, err := core.SetupRemote(r.Context(), s.rc, req.URL)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, contract.ErrInvalidConfiguration) {
			code = http.StatusBadRequest
		}
		writeError(w, code, err, nil)
		return
	}
	s.metrics.ObservePush(push)
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Repository configured successfully",
		"push":    push,
	})
}

func (s *Server) handleConfigSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cron string `json:"cron"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err, nil)
		return
	}
	if err := s.cron.Set(strings.TrimSpace(req.Cron)); err != nil {
		writeError(w, http.StatusBadRequest, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success":     true,
		"message":     "Schedule updated successfully",
		"cron":        s.cron.Expr(),
		"nextRunTime": optionalTime(s.cron.Next(s.now())),
	})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("command")
	if !core.IsAllowedCommand(name) {
		s.metrics.ObserveExecute(name, "rejected", 0)
		writeError(w, http.StatusBadRequest,
			fmt.Errorf("command '%s' not allowed. Allowed: %s", name, strings.Join(core.AllowedCommands, ", ")),
			envelope{"allowed": core.AllowedCommands})
		return
	}

	result, err := s.Execute(r.Context(), name)
	timestamp := s.now().UTC().Format(time.RFC3339)
	if err != nil {
		code := http.StatusInternalServerError
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			code = http.StatusGatewayTimeout
			msg = timeoutMessage
		}
		s.logger.Warn("execute failed", "command", name, "error", err)
		writeJSON(w, code, envelope{
			"success":   false,
			"error":     msg,
			"command":   name,
			"outcome":   result.Outcome,
			"timestamp": timestamp,
		})
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success":   true,
		"command":   name,
		"message":   result.Message,
		"commits":   result.Commits,
		"outcome":   result.Outcome,
		"status":    result.Status,
		"timestamp": timestamp,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, fmt.Errorf("API endpoint not found: %s %s", r.Method, r.URL.Path), nil)
}
