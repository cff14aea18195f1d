// Package token defines the placeholder vocabulary spoken between this
// process and the remote agent, and resolves agent fill instructions against
// the local personal-data record. Tokens are opaque stand-ins for personal
// values and are the only value-shaped thing that ever crosses the wire.
package token

// Token is one symbol from the closed placeholder vocabulary. The vocabulary
// is versioned together with profile.Record: every token maps to exactly one
// record field and every record field has exactly one token.
type Token string

const (
	FirstName      Token = "[FIRST_NAME]"
	LastName       Token = "[LAST_NAME]"
	DateOfBirth    Token = "[DATE_OF_BIRTH]"
	Birthplace     Token = "[BIRTHPLACE]"
	Nationality    Token = "[NATIONALITY]"
	Gender         Token = "[GENDER]"
	Street         Token = "[STREET]"
	HouseNumber    Token = "[HOUSE_NUMBER]"
	Postcode       Token = "[POSTCODE]"
	City           Token = "[CITY]"
	Phone          Token = "[PHONE]"
	Email          Token = "[EMAIL]"
	NationalID     Token = "[NATIONAL_ID]"
	BankAccount    Token = "[BANK_ACCOUNT]"
	DocumentNumber Token = "[DOCUMENT_NUMBER]"
	MoveDate       Token = "[MOVE_DATE]"
)

// All lists the vocabulary in canonical order, matching profile.FieldNames.
func All() []Token {
	return []Token{
		FirstName,
		LastName,
		DateOfBirth,
		Birthplace,
		Nationality,
		Gender,
		Street,
		HouseNumber,
		Postcode,
		City,
		Phone,
		Email,
		NationalID,
		BankAccount,
		DocumentNumber,
		MoveDate,
	}
}

// Field decodes the token to its profile field name. The second return is
// false for symbols outside the vocabulary.
func (t Token) Field() (string, bool) {
	switch t {
	case FirstName:
		return "first_name", true
	case LastName:
		return "last_name", true
	case DateOfBirth:
		return "date_of_birth", true
	case Birthplace:
		return "birthplace", true
	case Nationality:
		return "nationality", true
	case Gender:
		return "gender", true
	case Street:
		return "street", true
	case HouseNumber:
		return "house_number", true
	case Postcode:
		return "postcode", true
	case City:
		return "city", true
	case Phone:
		return "phone", true
	case Email:
		return "email", true
	case NationalID:
		return "national_id", true
	case BankAccount:
		return "bank_account", true
	case DocumentNumber:
		return "document_number", true
	case MoveDate:
		return "move_date", true
	}
	return "", false
}

// ForField encodes a profile field name as its token.
func ForField(field string) (Token, bool) {
	for _, t := range All() {
		if f, _ := t.Field(); f == field {
			return t, true
		}
	}
	return "", false
}
