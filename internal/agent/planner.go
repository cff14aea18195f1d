// Package agent defines the boundary to the remote conversational agent.
// Outbound traffic is a form schema, inbound is a token-only fill instruction;
// literal personal values never cross this boundary in either direction.
package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mjessen/formpilot/internal/errors"
	"github.com/mjessen/formpilot/internal/profile"
	"github.com/mjessen/formpilot/internal/schema"
	"github.com/mjessen/formpilot/internal/token"
)

// Planner is how the rest of the application asks the remote agent which
// token belongs in which form field. The production planner lives on the
// other side of the MCP transport; HeuristicPlanner serves offline mode and
// tests.
type Planner interface {
	PlanFill(ctx context.Context, fs *schema.FormSchema) (token.FillInstruction, error)
}

// Redact returns a copy of fs with every field whose current page value
// matches a stored personal value replaced by its placeholder token. A schema
// captured after a fill carries only tokens afterwards. The input is never
// mutated.
func Redact(fs *schema.FormSchema, rec profile.Record) *schema.FormSchema {
	if fs == nil {
		return nil
	}

	redacted := *fs
	redacted.Fields = make([]schema.Field, len(fs.Fields))
	copy(redacted.Fields, fs.Fields)

	values := rec.Values()
	for i := range redacted.Fields {
		current := strings.TrimSpace(redacted.Fields[i].CurrentValue)
		if current == "" {
			continue
		}
		for field, value := range values {
			if value != "" && strings.TrimSpace(value) == current {
				if tok, ok := token.ForField(field); ok {
					redacted.Fields[i].CurrentValue = string(tok)
				}
				break
			}
		}
	}

	return &redacted
}

// Outbound serializes a schema for the remote-agent channel. It is the single
// chokepoint for outgoing page data: the schema passes through Redact before
// serialization so literal personal values never leave the process.
func Outbound(fs *schema.FormSchema, rec profile.Record) ([]byte, error) {
	if fs == nil {
		return nil, errors.NewInvalidRequest("schema is required")
	}

	data, err := json.Marshal(Redact(fs, rec))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return data, nil
}
