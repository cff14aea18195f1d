package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions for the remote voice agent. The agent only ever sees form
// schemas, placeholder tokens, and progress state; no tool returns personal
// values.

var formCaptureToolDef = mcp.NewTool("form_capture",
	mcp.WithDescription("Extract the structural schema of a web form from page HTML. Returns field ids, labels and types; any values already on the page are replaced by placeholder tokens. The schema is archived for later reuse."),
	mcp.WithString("url", mcp.Required(), mcp.Description("URL of the page the HTML came from")),
	mcp.WithString("html", mcp.Required(), mcp.Description("Full HTML of the loaded page")),
)

var formFillToolDef = mcp.NewTool("form_fill",
	mcp.WithDescription("Fill a form using a placeholder-token mapping. Tokens are resolved against locally stored personal data on this device; send tokens only, never literal values. Returns a fill report and the filled HTML."),
	mcp.WithString("url", mcp.Required(), mcp.Description("URL of the page being filled")),
	mcp.WithString("html", mcp.Required(), mcp.Description("Full HTML of the loaded page")),
	mcp.WithString("schema_url", mcp.Description("URL the schema was captured from; defaults to url. The fill is refused if it no longer matches the page.")),
	mcp.WithObject("mapping", mcp.Required(), mcp.Description("Map of form field id to placeholder token, e.g. {\"vorname\": \"[FIRST_NAME]\"}")),
)

var profileStatusToolDef = mcp.NewTool("profile_status",
	mcp.WithDescription("Report which personal-data fields the user has filled in, as booleans only. Values never leave the device."),
)

var profileTokensToolDef = mcp.NewTool("profile_tokens",
	mcp.WithDescription("List the closed placeholder-token vocabulary and the personal-data field each token stands for."),
)

var capturesListToolDef = mcp.NewTool("captures_list",
	mcp.WithDescription("List archived form captures, newest first (bounded to 50)."),
	mcp.WithNumber("limit", mcp.Description("Maximum captures to return (default and cap: 50)")),
)

var capturesGetToolDef = mcp.NewTool("captures_get",
	mcp.WithDescription("Fetch one archived form capture by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capture ID")),
)

var roadmapListToolDef = mcp.NewTool("roadmap_list",
	mcp.WithDescription("List the relocation roadmap steps with their status."),
)

var roadmapUpdateToolDef = mcp.NewTool("roadmap_update",
	mcp.WithDescription("Update a roadmap step's status and notes."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Step ID")),
	mcp.WithString("status", mcp.Required(), mcp.Description("One of: pending, in_progress, complete")),
	mcp.WithString("notes", mcp.Description("Optional notes for the step")),
)

var chatLogToolDef = mcp.NewTool("chat_log",
	mcp.WithDescription("Append a message to the conversation transcript. Only the newest 50 messages are retained."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation session ID")),
	mcp.WithString("role", mcp.Required(), mcp.Description("Message role: user or assistant")),
	mcp.WithString("content", mcp.Required(), mcp.Description("Message text")),
)

var guidesListToolDef = mcp.NewTool("guides_list",
	mcp.WithDescription("Return the cached offline reference guides and whether the cache is fresh."),
)
