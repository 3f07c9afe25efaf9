package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/regpulse/regpulse/core"
	"github.com/regpulse/regpulse/core/feed"
	"github.com/regpulse/regpulse/core/listing"
	"github.com/regpulse/regpulse/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	engine    *core.Engine
	refresher Refresher
}

func (h *toolHandler) selection(request mcp.CallToolRequest) (schema.Selection, error) {
	sel := schema.Selection{
		Product: request.GetString("product", ""),
		Quarter: request.GetString("quarter", ""),
	}.Normalized()
	if !schema.IsAll(sel.Product) && !h.engine.Goals().HasProduct(sel.Product) {
		return sel, fmt.Errorf("unknown product '%s'. must be one of %s", sel.Product, strings.Join(h.engine.Goals().Products(), ", "))
	}
	return sel, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.engine.Status())
}

func (h *toolHandler) handleGetAggregates(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := h.selection(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid selection: %v", err)), nil
	}

	switch kind := request.GetString("kind", "totals"); kind {
	case "totals":
		return jsonResult(h.engine.Totals(sel))
	case "products":
		return jsonResult(nonNil(h.engine.ByProduct(sel)))
	case "quarters":
		return jsonResult(nonNil(h.engine.ByQuarter(sel)))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid kind '%s'. must be totals, products, quarters", kind)), nil
	}
}

func (h *toolHandler) handleGetGoals(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := h.selection(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid selection: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"selection": sel,
		"cards":     nonNil(h.engine.GoalCards(sel)),
		"bars":      nonNil(h.engine.GoalBars(sel)),
	})
}

func (h *toolHandler) handleGetRanking(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := h.selection(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid selection: %v", err)), nil
	}
	return jsonResult(nonNil(h.engine.Ranking(sel)))
}

func (h *toolHandler) handleGetInsights(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := h.selection(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid selection: %v", err)), nil
	}
	report := h.engine.Insights(sel)
	report.Concerns = nonNil(report.Concerns)
	report.Positives = nonNil(report.Positives)
	return jsonResult(report)
}

func (h *toolHandler) handleListEvents(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := h.selection(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid selection: %v", err)), nil
	}

	state := listing.DefaultSortState()
	if col := request.GetString("sort", ""); col != "" {
		state.Column = schema.SortColumn(col)
		if _, ok := schema.ValidSortColumns[state.Column]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid sort column '%s'", col)), nil
		}
	}
	if dir := strings.ToLower(request.GetString("dir", "")); dir != "" {
		state.Direction = schema.SortDirection(dir)
		if state.Direction != schema.Ascending && state.Direction != schema.Descending {
			return mcp.NewToolResultError(fmt.Sprintf("invalid sort direction '%s'", dir)), nil
		}
	}

	events := nonNil(h.engine.SortedEvents(sel, state))
	if l := request.GetInt("limit", 0); l > 0 && l < len(events) {
		events = events[:l]
	}
	return jsonResult(events)
}

func (h *toolHandler) handleRefresh(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.refresher == nil {
		return mcp.NewToolResultError("refresh is not available for this source"), nil
	}
	switch err := h.refresher.Refresh(ctx); {
	case errors.Is(err, feed.ErrInFlight):
		return mcp.NewToolResultText("A sync is already in flight; no new sync was started."), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}
	return mcp.NewToolResultText("Sync started. Call get_status to see the outcome."), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
