package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/mjessen/formpilot/internal/agent"
	"github.com/mjessen/formpilot/internal/archive"
	"github.com/mjessen/formpilot/internal/config"
	"github.com/mjessen/formpilot/internal/errors"
	"github.com/mjessen/formpilot/internal/fill"
	"github.com/mjessen/formpilot/internal/history"
	"github.com/mjessen/formpilot/internal/offline"
	"github.com/mjessen/formpilot/internal/profile"
	"github.com/mjessen/formpilot/internal/schema"
	"github.com/mjessen/formpilot/internal/token"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cfg      *config.Config
	profile  *profile.Store
	captures *archive.Store
	messages *history.Messages
	roadmap  *history.Roadmap
	events   *history.Events
	cache    *offline.Coordinator
	log      *zap.Logger
}

// NewHandlers creates a new Handlers instance over an initialized database.
func NewHandlers(db *sql.DB, cfg *config.Config, log *zap.Logger) *Handlers {
	return &Handlers{
		cfg:      cfg,
		profile:  profile.NewStore(db),
		captures: archive.NewStore(db, cfg.CaptureListLimit),
		messages: history.NewMessages(db, cfg.HistoryLimit),
		roadmap:  history.NewRoadmap(db),
		events:   history.NewEvents(db, cfg.EventLimit),
		cache:    offline.New(db, cfg, log),
		log:      log,
	}
}

// Request types for each tool

// CaptureRequest represents the arguments for form_capture.
type CaptureRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// FillRequest represents the arguments for form_fill.
type FillRequest struct {
	URL       string                 `json:"url"`
	HTML      string                 `json:"html"`
	SchemaURL string                 `json:"schema_url,omitempty"`
	Mapping   map[string]token.Token `json:"mapping"`
}

// CapturesListRequest represents the arguments for captures_list.
type CapturesListRequest struct {
	Limit int `json:"limit,omitempty"`
}

// CapturesGetRequest represents the arguments for captures_get.
type CapturesGetRequest struct {
	ID string `json:"id"`
}

// RoadmapUpdateRequest represents the arguments for roadmap_update.
type RoadmapUpdateRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// ChatLogRequest represents the arguments for chat_log.
type ChatLogRequest struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// Handler implementations

// HandleCapture handles the form_capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.URL == "" || input.HTML == "" {
		return errorResult(errors.NewInvalidRequest("url and html are required")), nil
	}

	page, err := schema.LoadPageString(input.URL, input.HTML)
	if err != nil {
		return errorResult(err), nil
	}
	rec := h.profile.Get()
	// Redacted before it is stored: the archive is readable over the
	// remote-agent channel, so it must only ever hold tokens, same as the
	// capture response itself.
	fs := agent.Redact(schema.Extract(page), rec)

	// Archival and analytics are reactive side effects; they never gate the
	// capture itself.
	if _, err := h.captures.Create(ctx, fs); err != nil {
		h.log.Warn("capture archive write failed", zap.Error(err))
	}
	if err := h.events.Track("form_captured", input.URL); err != nil {
		h.log.Warn("event track failed", zap.Error(err))
	}

	payload, err := agent.Outbound(fs, rec)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(json.RawMessage(payload))
}

// HandleFill handles the form_fill tool call.
func (h *Handlers) HandleFill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FillRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.URL == "" || input.HTML == "" {
		return errorResult(errors.NewInvalidRequest("url and html are required")), nil
	}
	if len(input.Mapping) == 0 {
		return errorResult(errors.NewInvalidRequest("mapping is required")), nil
	}

	schemaURL := input.SchemaURL
	if schemaURL == "" {
		schemaURL = input.URL
	}

	instr := token.FillInstruction{SchemaURL: schemaURL, Mapping: input.Mapping}
	values, skips := token.Resolve(instr, h.profile.Get())

	page, err := schema.LoadPageString(input.URL, input.HTML)
	if err != nil {
		return errorResult(err), nil
	}

	report, err := fill.Apply(page, instr.SchemaURL, values)
	if err != nil {
		return errorResult(err), nil
	}

	filled, err := page.RenderString()
	if err != nil {
		return errorResult(errors.NewInternal(err)), nil
	}

	if err := h.events.Track("fill_applied", input.URL); err != nil {
		h.log.Warn("event track failed", zap.Error(err))
	}

	return successResult(map[string]any{
		"report": report,
		"skips":  skips,
		"html":   filled,
	})
}

// HandleProfileStatus handles the profile_status tool call.
// Booleans only: the record itself stays on-device.
func (h *Handlers) HandleProfileStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec := h.profile.Get()

	filled := map[string]bool{}
	for field, value := range rec.Values() {
		filled[field] = value != ""
	}

	return successResult(map[string]any{
		"fields":       filled,
		"filled_count": rec.FilledCount(),
		"total":        len(profile.FieldNames),
	})
}

// HandleProfileTokens handles the profile_tokens tool call.
func (h *Handlers) HandleProfileTokens(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vocabulary := make([]map[string]string, 0, len(token.All()))
	for _, tok := range token.All() {
		field, _ := tok.Field()
		vocabulary = append(vocabulary, map[string]string{
			"token": string(tok),
			"field": field,
		})
	}
	return successResult(map[string]any{"tokens": vocabulary})
}

// HandleCapturesList handles the captures_list tool call.
func (h *Handlers) HandleCapturesList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CapturesListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	captures, err := h.captures.List(ctx, input.Limit)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"captures": captures})
}

// HandleCapturesGet handles the captures_get tool call.
func (h *Handlers) HandleCapturesGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CapturesGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	capture, err := h.captures.GetByID(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(capture)
}

// HandleRoadmapList handles the roadmap_list tool call.
func (h *Handlers) HandleRoadmapList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	steps, err := h.roadmap.List()
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"steps": steps})
}

// HandleRoadmapUpdate handles the roadmap_update tool call.
func (h *Handlers) HandleRoadmapUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RoadmapUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := h.roadmap.SetStatus(input.ID, input.Status, input.Notes); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"updated": true, "id": input.ID})
}

// HandleChatLog handles the chat_log tool call.
func (h *Handlers) HandleChatLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ChatLogRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := h.messages.Append(input.SessionID, input.Role, input.Content); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"logged": true})
}

// HandleGuidesList handles the guides_list tool call.
func (h *Handlers) HandleGuidesList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	guides, err := h.cache.Guides()
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"fresh":  h.cache.IsCacheFresh(),
		"guides": guides,
	})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if pErr, ok := err.(*errors.PilotError); ok {
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": pErr.Message,
			"status":  pErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
