package token

import (
	"sort"

	"github.com/mjessen/formpilot/internal/profile"
)

// FillInstruction is what the remote agent sends back: which form field gets
// which placeholder. Values are always tokens, never literal personal data.
type FillInstruction struct {
	// SchemaURL is the URL of the page the schema was extracted from. The
	// filler refuses to apply the instruction to any other page.
	SchemaURL string `json:"schema_url"`

	// Mapping assigns a token to each form field id.
	Mapping map[string]Token `json:"mapping"`
}

// Skip records one mapping entry that was dropped during resolution.
type Skip struct {
	FieldID string `json:"field_id"`
	Token   Token  `json:"token"`
	Reason  string `json:"reason"`
}

// Resolve decodes each mapping entry to the concrete value from the record.
// Entries with a token outside the vocabulary are dropped and reported in the
// skip list; they never abort the rest. A field the user hasn't filled in
// resolves to empty string. Pure function, deterministic: skips are sorted by
// field id.
func Resolve(instr FillInstruction, rec profile.Record) (map[string]string, []Skip) {
	values := make(map[string]string, len(instr.Mapping))
	var skips []Skip

	for fieldID, tok := range instr.Mapping {
		field, ok := tok.Field()
		if !ok {
			skips = append(skips, Skip{FieldID: fieldID, Token: tok, Reason: "unknown token"})
			continue
		}
		value, _ := rec.Value(field)
		values[fieldID] = value
	}

	sort.Slice(skips, func(i, j int) bool { return skips[i].FieldID < skips[j].FieldID })
	return values, skips
}
