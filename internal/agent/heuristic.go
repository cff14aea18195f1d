package agent

import (
	"context"
	"strings"

	"github.com/mjessen/formpilot/internal/schema"
	"github.com/mjessen/formpilot/internal/token"
)

// HeuristicPlanner assigns tokens by matching field labels and ids against
// keyword tables. It powers offline fills and tests; the voice agent over MCP
// does the same job with actual language understanding.
type HeuristicPlanner struct{}

// NewHeuristicPlanner creates a HeuristicPlanner.
func NewHeuristicPlanner() *HeuristicPlanner {
	return &HeuristicPlanner{}
}

// keywordRules map field text to tokens, most specific first. German terms
// cover the bureaucracy forms this assistant is built around.
var keywordRules = []struct {
	tok      token.Token
	keywords []string
}{
	{token.DateOfBirth, []string{"geburtsdatum", "date of birth", "birth date", "birthdate", "dob"}},
	{token.Birthplace, []string{"geburtsort", "place of birth", "birthplace", "born in"}},
	{token.HouseNumber, []string{"hausnummer", "house number", "house no", "street number"}},
	{token.Postcode, []string{"postleitzahl", "plz", "postcode", "postal code", "zip"}},
	{token.NationalID, []string{"steuer", "tax id", "national id", "national insurance"}},
	{token.BankAccount, []string{"iban", "bank account", "kontonummer", "account number"}},
	{token.DocumentNumber, []string{"passnummer", "passport number", "document number", "ausweisnummer", "id number"}},
	{token.MoveDate, []string{"einzugsdatum", "move date", "move-in", "moving date", "umzugsdatum"}},
	{token.Nationality, []string{"staatsangeh", "nationality", "citizenship"}},
	{token.Gender, []string{"geschlecht", "gender", "sex"}},
	{token.FirstName, []string{"vorname", "first name", "given name", "forename"}},
	{token.LastName, []string{"nachname", "last name", "surname", "family name", "familienname"}},
	{token.Street, []string{"straße", "strasse", "street", "address line"}},
	{token.City, []string{"stadt", "wohnort", "city", "town"}},
	{token.Phone, []string{"telefon", "phone", "mobile", "handy"}},
	{token.Email, []string{"e-mail", "email"}},
}

// PlanFill emits a token mapping for every field it can classify. Fields it
// cannot place are simply left out of the instruction.
func (p *HeuristicPlanner) PlanFill(_ context.Context, fs *schema.FormSchema) (token.FillInstruction, error) {
	instr := token.FillInstruction{
		SchemaURL: fs.URL,
		Mapping:   map[string]token.Token{},
	}

	for _, f := range fs.Fields {
		if tok, ok := classify(f); ok {
			instr.Mapping[f.ID] = tok
		}
	}

	return instr, nil
}

func classify(f schema.Field) (token.Token, bool) {
	// Input types are stronger signals than words.
	switch f.Type {
	case "email":
		return token.Email, true
	case "tel":
		return token.Phone, true
	case "checkbox", "radio":
		// Consent boxes and the like; nothing personal to place there.
		return "", false
	}

	hay := strings.ToLower(f.Label + " " + f.ID)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(hay, kw) {
				return rule.tok, true
			}
		}
	}
	return "", false
}
