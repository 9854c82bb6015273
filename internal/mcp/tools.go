package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/toshiwd/moomoo-like-sub001/internal/models"
	"github.com/toshiwd/moomoo-like-sub001/internal/readiness"
	"github.com/toshiwd/moomoo-like-sub001/internal/store"
)

// RegisterTools adds the screener tools to the MCP server and returns how
// many were registered.
func RegisterTools(s *server.MCPServer, probe *readiness.Probe, st *store.Store) int {
	tools := []struct {
		tool    mcp.Tool
		handler server.ToolHandlerFunc
	}{
		{
			mcp.NewTool("ticker_list",
				mcp.WithDescription("List the screener ticker universe (code, name, stage, score)."),
			),
			tickerListHandler(probe, st),
		},
		{
			mcp.NewTool("ticker_bars",
				mcp.WithDescription("Fetch chart payloads (bars, moving averages, boxes) for ticker codes."),
				mcp.WithString("timeframe",
					mcp.Description("monthly, weekly or daily (default monthly)")),
				mcp.WithArray("codes",
					mcp.WithStringItems(),
					mcp.Description("Ticker codes to fetch"),
					mcp.Required()),
			),
			tickerBarsHandler(probe, st),
		},
		{
			mcp.NewTool("favorites_list",
				mcp.WithDescription("List the favorites set."),
			),
			favoritesListHandler(st),
		},
		{
			mcp.NewTool("favorites_remove",
				mcp.WithDescription("Remove a ticker code from the favorites set."),
				mcp.WithString("code",
					mcp.Description("Ticker code to remove"),
					mcp.Required()),
			),
			favoritesRemoveHandler(st),
		},
	}

	for _, t := range tools {
		s.AddTool(t.tool, t.handler)
	}
	return len(tools)
}

func tickerListHandler(probe *readiness.Probe, st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !probe.Ready() {
			return errorResult("Error: backend is not ready yet"), nil
		}
		if err := st.LoadList(ctx); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(map[string]any{"items": st.Tickers()})
	}
}

func tickerBarsHandler(probe *readiness.Probe, st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !probe.Ready() {
			return errorResult("Error: backend is not ready yet"), nil
		}

		tf := models.Timeframe(r.GetString("timeframe", string(models.TimeframeMonthly)))
		if !tf.Valid() {
			return errorResult(fmt.Sprintf("Error: unknown timeframe %q", tf)), nil
		}

		codes := stringSliceArg(r, "codes")
		if len(codes) == 0 {
			return errorResult("Error: codes parameter is required"), nil
		}

		if err := st.EnsureBars(ctx, tf, codes, store.DefaultBatchSize); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(map[string]any{
			"timeframe": tf,
			"items":     st.BarsFor(tf, codes),
		})
	}
}

func favoritesListHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := st.LoadFavorites(ctx); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(map[string]any{"items": st.Favorites()})
	}
}

func favoritesRemoveHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code := r.GetString("code", "")
		if code == "" {
			return errorResult("Error: code parameter is required"), nil
		}
		if err := st.RemoveFavorite(ctx, code); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(map[string]any{"items": st.Favorites()})
	}
}

// stringSliceArg extracts an array-of-strings argument, tolerating the
// []any form the JSON-RPC layer delivers.
func stringSliceArg(r mcp.CallToolRequest, name string) []string {
	args := r.GetArguments()
	if args == nil {
		return nil
	}
	raw, ok := args[name]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{mcp.NewTextContent(message)},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Sprintf("Error: %v", err)), nil
	}
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(data))}}, nil
}
