// Package mcp exposes the screener store to MCP clients (Claude CLI,
// Desktop) over the streamable HTTP transport.
package mcp

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/toshiwd/moomoo-like-sub001/internal/common"
	"github.com/toshiwd/moomoo-like-sub001/internal/config"
	"github.com/toshiwd/moomoo-like-sub001/internal/readiness"
	"github.com/toshiwd/moomoo-like-sub001/internal/store"
)

// Handler is the HTTP handler for the MCP endpoint. It wraps mcp-go's
// StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
}

// NewHandler creates an MCP handler serving the screener tool set against
// the shared store and readiness probe.
func NewHandler(logger *common.Logger, probe *readiness.Probe, st *store.Store) *Handler {
	mcpSrv := mcpserver.NewMCPServer(
		"screener-portal",
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	toolCount := RegisterTools(mcpSrv, probe, st)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().Int("tools", toolCount).Msg("MCP handler initialized")

	return &Handler{
		streamable: streamable,
		logger:     logger,
	}
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
