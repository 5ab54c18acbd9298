package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aeswibon/dora/core"
	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

func (h *toolHandler) handleComputeDoraMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()

	org := request.GetString("org", "")
	start := request.GetString("start", "")
	end := request.GetString("end", "")
	granularity := request.GetString("granularity", string(schema.DayGranularity))
	repo := request.GetString("repo", "")

	if err := contract.RevalidateWindowInputs(cfg, org, start, end, granularity, repo); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid metric parameters: %v", err)), nil
	}

	metrics, err := core.ComputeMetrics(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("metric computation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(metrics, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListRepositories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	org := request.GetString("org", "")
	if org == "" {
		return mcp.NewToolResultError("org is required"), nil
	}

	repos, err := h.mgr.GetActivityStore().ListRepositories(ctx, org)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("repository listing failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(repos, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetScoreStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.mgr.GetScoreStore().GetStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status lookup failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
