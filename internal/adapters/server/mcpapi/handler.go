// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hylla/fieldboard/internal/adapters/server/common"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the board tools.
func NewHandler(cfg Config, boards common.BoardService) (*Handler, error) {
	if boards == nil {
		return nil, fmt.Errorf("board service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerBoardTools(mcpSrv, boards)
	registerItemTools(mcpSrv, boards)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "fieldboard"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = "/" + strings.Trim(strings.TrimSpace(cfg.EndpointPath), "/")
	if cfg.EndpointPath == "/" {
		cfg.EndpointPath = "/mcp"
	}
	return cfg
}

// registerBoardTools registers read-side board tools.
func registerBoardTools(srv *mcpserver.MCPServer, boards common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"fieldboard.list_boards",
			mcp.WithDescription("List the configured boards with their columns."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			list, err := boards.ListBoards(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"boards": list,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_boards result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"fieldboard.board_lanes",
			mcp.WithDescription("Return one board partitioned into its columns. Items with unknown statuses are listed under unassigned."),
			mcp.WithString("board_id", mcp.Required(), mcp.Description("Board identifier")),
			mcp.WithBoolean("include_archived", mcp.Description("Include archived items")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boardID, err := req.RequireString("board_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			lanes, err := boards.BoardLanes(ctx, boardID, req.GetBool("include_archived", false))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(lanes)
			if err != nil {
				return nil, fmt.Errorf("encode board_lanes result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"fieldboard.list_activity",
			mcp.WithDescription("List recent item changes on one board, newest first."),
			mcp.WithString("board_id", mcp.Required(), mcp.Description("Board identifier")),
			mcp.WithNumber("limit", mcp.Description("Maximum events to return")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boardID, err := req.RequireString("board_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			events, err := boards.ListActivity(ctx, common.ActivityRequest{
				BoardID: boardID,
				Limit:   req.GetInt("limit", 0),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"events": events,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_activity result: %w", err)
			}
			return result, nil
		},
	)
}

// registerItemTools registers item mutation tools.
func registerItemTools(srv *mcpserver.MCPServer, boards common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"fieldboard.create_item",
			mcp.WithDescription("Create a job or lead at the end of a column."),
			mcp.WithString("board_id", mcp.Required(), mcp.Description("Board identifier")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Short title")),
			mcp.WithString("status", mcp.Description("Column id (defaults to the first column)")),
			mcp.WithString("description", mcp.Description("Markdown description")),
			mcp.WithString("contact", mcp.Description("Customer contact")),
			mcp.WithString("address", mcp.Description("Job site address")),
			mcp.WithString("source", mcp.Description("Lead source")),
			mcp.WithNumber("value_cents", mcp.Description("Estimated value in cents")),
			mcp.WithString("scheduled_at", mcp.Description("RFC3339 appointment time")),
			mcp.WithArray("labels", mcp.Description("Optional labels"), mcp.WithStringItems()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boardID, err := req.RequireString("board_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			scheduledAt, err := parseOptionalTime(req.GetString("scheduled_at", ""))
			if err != nil {
				return mcp.NewToolResultError("invalid_request: " + err.Error()), nil
			}
			item, err := boards.CreateItem(ctx, common.CreateItemRequest{
				BoardID:     boardID,
				Status:      req.GetString("status", ""),
				Title:       title,
				Description: req.GetString("description", ""),
				Contact:     req.GetString("contact", ""),
				Address:     req.GetString("address", ""),
				Source:      req.GetString("source", ""),
				ValueCents:  int64(req.GetInt("value_cents", 0)),
				ScheduledAt: scheduledAt,
				Labels:      req.GetStringSlice("labels", nil),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(item)
			if err != nil {
				return nil, fmt.Errorf("encode create_item result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"fieldboard.move_item",
			mcp.WithDescription("Move an item to the end of another column. Moving to its current column is a no-op."),
			mcp.WithString("item_id", mcp.Required(), mcp.Description("Item identifier")),
			mcp.WithString("status", mcp.Required(), mcp.Description("Target column id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			itemID, err := req.RequireString("item_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			status, err := req.RequireString("status")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			res, err := boards.MoveItem(ctx, common.MoveItemRequest{ItemID: itemID, Status: status})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(res)
			if err != nil {
				return nil, fmt.Errorf("encode move_item result: %w", err)
			}
			return result, nil
		},
	)
}

func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("scheduled_at must be RFC3339: %w", err)
	}
	return &at, nil
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrUnavailable):
		return mcp.NewToolResultError("service_unavailable: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
