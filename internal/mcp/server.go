package mcp

import (
	"context"
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mjessen/formpilot/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"form_capture": {
		def:     formCaptureToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCapture },
	},
	"form_fill": {
		def:     formFillToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFill },
	},
	"profile_status": {
		def:     profileStatusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfileStatus },
	},
	"profile_tokens": {
		def:     profileTokensToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfileTokens },
	},
	"captures_list": {
		def:     capturesListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCapturesList },
	},
	"captures_get": {
		def:     capturesGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCapturesGet },
	},
	"roadmap_list": {
		def:     roadmapListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRoadmapList },
	},
	"roadmap_update": {
		def:     roadmapUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRoadmapUpdate },
	},
	"chat_log": {
		def:     chatLogToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleChatLog },
	},
	"guides_list": {
		def:     guidesListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGuidesList },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with FormPilot tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, log *zap.Logger, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"formpilot",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, log)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, log *zap.Logger, version string) error {
	s := NewServer(db, cfg, log, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
