// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the DORA MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"DORA Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: compute_dora_metrics ---
	s.AddTool(mcp.NewTool("compute_dora_metrics",
		mcp.WithDescription("Compute DORA metrics (deployment frequency, lead time, change failure rate, time to restore) for an organization over a date range."),
		mcp.WithString("org", mcp.Description("Organization to compute metrics for."), mcp.Required()),
		mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD)."), mcp.Required()),
		mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD)."), mcp.Required()),
		mcp.WithString("granularity", mcp.Description("Window granularity. Defaults to 'day'."), mcp.Enum("day", "week", "month")),
		mcp.WithString("repo", mcp.Description("Optional single-repository filter.")),
	), h.handleComputeDoraMetrics)

	// --- 2. Tool: list_repositories ---
	s.AddTool(mcp.NewTool("list_repositories",
		mcp.WithDescription("List the repositories with ingested activity for an organization."),
		mcp.WithString("org", mcp.Description("Organization to list repositories for."), mcp.Required()),
	), h.handleListRepositories)

	// --- 3. Tool: get_score_status ---
	s.AddTool(mcp.NewTool("get_score_status",
		mcp.WithDescription("Report backend, row counts, and freshness for the persisted score store."),
	), h.handleGetScoreStatus)

	return s
}

// StartMCPServer starts the DORA MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
