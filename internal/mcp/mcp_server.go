// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/regpulse/regpulse/core"
)

// Refresher starts a background sync. It fails with feed.ErrInFlight while a sync
// is running and feed.ErrClosed once the controller has shut down.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// NewMCPServer initializes and configures the regpulse MCP server without starting it.
// A nil refresher makes the refresh tool report an error.
func NewMCPServer(engine *core.Engine, refresher Refresher) *server.MCPServer {
	s := server.NewMCPServer(
		"Registration Pulse Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		engine:    engine,
		refresher: refresher,
	}

	scope := func() []mcp.ToolOption {
		return []mcp.ToolOption{
			mcp.WithString("product", mcp.Description("Product code to restrict to (defaults to All).")),
			mcp.WithString("quarter", mcp.Description("Quarter label such as 'Q1 2026' (defaults to All).")),
		}
	}

	s.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Report the freshness of the registration data: status, last update, event count and last error."),
	), h.handleGetStatus)

	s.AddTool(mcp.NewTool("get_aggregates",
		append([]mcp.ToolOption{
			mcp.WithDescription("Sum registrations, attendees and ratios for the selection, as one total or grouped by product or quarter."),
			mcp.WithString("kind", mcp.Description("Grouping to return. Defaults to 'totals'."), mcp.Enum("totals", "products", "quarters")),
		}, scope()...)...,
	), h.handleGetAggregates)

	s.AddTool(mcp.NewTool("get_goals",
		append([]mcp.ToolOption{
			mcp.WithDescription("Project quarter-end registrations against goals for every product and quarter in the selection."),
		}, scope()...)...,
	), h.handleGetGoals)

	s.AddTool(mcp.NewTool("get_ranking",
		append([]mcp.ToolOption{
			mcp.WithDescription("Rank products by a weighted composite of goal attainment, ICP mix, conversion and event size."),
		}, scope()...)...,
	), h.handleGetRanking)

	s.AddTool(mcp.NewTool("get_insights",
		append([]mcp.ToolOption{
			mcp.WithDescription("List rule-based concerns and positives for the selection."),
		}, scope()...)...,
	), h.handleGetInsights)

	s.AddTool(mcp.NewTool("list_events",
		append([]mcp.ToolOption{
			mcp.WithDescription("List the individual event records in the selection, sorted."),
			mcp.WithString("sort", mcp.Description("Column to sort by. Defaults to 'date'.")),
			mcp.WithString("dir", mcp.Description("Sort direction. Defaults to 'desc'."), mcp.Enum("asc", "desc")),
			mcp.WithNumber("limit", mcp.Description("Limit the number of events returned.")),
		}, scope()...)...,
	), h.handleListEvents)

	s.AddTool(mcp.NewTool("refresh",
		mcp.WithDescription("Start a background re-fetch of the registration data. Poll get_status to see the outcome."),
	), h.handleRefresh)

	return s
}

// StartMCPServer serves the regpulse MCP server over stdio until the client disconnects.
func StartMCPServer(_ context.Context, engine *core.Engine, refresher Refresher) error {
	s := NewMCPServer(engine, refresher)
	return server.ServeStdio(s)
}
