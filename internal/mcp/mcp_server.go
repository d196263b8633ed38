// Package mcp provides the Model Context Protocol (MCP) server implementation.
// Every tool is read-only: agents can preview patterns and inspect history,
// but nothing here commits or pushes.
package mcp

import (
	"context"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the cadence MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient) *server.MCPServer {
	s := server.NewMCPServer(
		"Cadence Activity Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
	}

	// --- 1. Tool: preview_pattern ---
	s.AddTool(mcp.NewTool("preview_pattern",
		mcp.WithDescription("Generate an activity pattern without committing it and summarize the planned commits."),
		mcp.WithNumber("days_back", mcp.Description("Days before today covered by the pattern.")),
		mcp.WithNumber("days_forward", mcp.Description("Days after today covered by the pattern.")),
		mcp.WithNumber("frequency", mcp.Description("Percent chance (0-100) that a day gets commits.")),
		mcp.WithNumber("min_per_day", mcp.Description("Minimum commits on an active day.")),
		mcp.WithNumber("max_per_day", mcp.Description("Maximum commits on an active day.")),
		mcp.WithBoolean("no_weekends", mcp.Description("Skip Saturdays and Sundays.")),
		mcp.WithNumber("burst_chance", mcp.Description("Probability (0-1) that an active day doubles its commits.")),
		mcp.WithNumber("seed", mcp.Description("Seed for a reproducible preview.")),
	), h.handlePreviewPattern)

	// --- 2. Tool: get_schedule_status ---
	s.AddTool(mcp.NewTool("get_schedule_status",
		mcp.WithDescription("Report the daily automation gate, last push and remote state of a repository."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to current directory if not specified).")),
	), h.handleGetScheduleStatus)

	// --- 3. Tool: get_history_report ---
	s.AddTool(mcp.NewTool("get_history_report",
		mcp.WithDescription("Summarize real commit history by month, weekday and day."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithNumber("days", mcp.Description("Only include commits from the last N days (0 for the whole history).")),
	), h.handleGetHistoryReport)

	return s
}

// StartMCPServer starts the cadence MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.GitClient) error {
	s := NewMCPServer(baseCfg, client)
	return server.ServeStdio(s)
}
