package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// previewSampleSize caps the events echoed back by preview_pattern.
const previewSampleSize = 10

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
}

// PatternPreview is the preview_pattern result.
type PatternPreview struct {
	Parameters schema.PatternParameters `json:"parameters"`
	Events     int                      `json:"events"`
	Sample     []schema.ActivityEvent   `json:"sample"`
	Report     schema.Report            `json:"report"`
}

func (h *toolHandler) configFor(request mcp.CallToolRequest) *contract.Config {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	return cfg
}

func (h *toolHandler) handlePreviewPattern(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.configFor(request)
	p := &cfg.Pattern
	p.DaysBack = request.GetInt("days_back", p.DaysBack)
	p.DaysForward = request.GetInt("days_forward", p.DaysForward)
	p.Frequency = request.GetFloat("frequency", p.Frequency)
	p.MinCommitsPerDay = request.GetInt("min_per_day", p.MinCommitsPerDay)
	p.MaxCommitsPerDay = request.GetInt("max_per_day", p.MaxCommitsPerDay)
	p.NoWeekends = request.GetBool("no_weekends", p.NoWeekends)
	p.BurstChance = request.GetFloat("burst_chance", p.BurstChance)
	if seed := request.GetInt("seed", 0); seed > 0 {
		cfg.Seed = uint64(seed)
	}
	cfg.Limit = 0

	if err := p.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	events, err := core.PlanEvents(cfg, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("pattern generation failed: %v", err)), nil
	}

	preview := PatternPreview{
		Parameters: *p,
		Events:     len(events),
		Sample:     events[:min(len(events), previewSampleSize)],
		Report:     core.BuildReport(events),
	}
	return jsonResult(preview)
}

func (h *toolHandler) handleGetScheduleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.configFor(request)
	rc := core.NewRunContext(cfg, h.client, nil, nil)
	status := core.Status(ctx, rc, cfg.Cron)
	return jsonResult(status)
}

func (h *toolHandler) handleGetHistoryReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.configFor(request)
	days := request.GetInt("days", 0)
	if days < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("days must be >= 0 (received %d)", days)), nil
	}
	var since time.Time
	if days > 0 {
		since = time.Now().AddDate(0, 0, -days)
	}

	report, err := core.ReportFromHistory(ctx, h.client, cfg.RepoPath, since)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history report failed: %v", err)), nil
	}
	return jsonResult(report)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
