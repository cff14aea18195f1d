// Package profile owns the user's personal-data record. It is the single
// source of truth for real values and deliberately imports nothing capable of
// network I/O: the record can only leave this process through the filler
// writing into a local page.
package profile

// Record is the versioned personal-data field set. It is a total map: every
// field is always present, empty string means "not filled in yet". The field
// set is closed and versioned together with the placeholder token vocabulary.
type Record struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DateOfBirth    string `json:"date_of_birth"`
	Birthplace     string `json:"birthplace"`
	Nationality    string `json:"nationality"`
	Gender         string `json:"gender"`
	Street         string `json:"street"`
	HouseNumber    string `json:"house_number"`
	Postcode       string `json:"postcode"`
	City           string `json:"city"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	NationalID     string `json:"national_id"`
	BankAccount    string `json:"bank_account"`
	DocumentNumber string `json:"document_number"`
	MoveDate       string `json:"move_date"`
}

// FieldNames lists the record fields in canonical order.
var FieldNames = []string{
	"first_name",
	"last_name",
	"date_of_birth",
	"birthplace",
	"nationality",
	"gender",
	"street",
	"house_number",
	"postcode",
	"city",
	"phone",
	"email",
	"national_id",
	"bank_account",
	"document_number",
	"move_date",
}

// Value returns the value of the named field. The second return is false for
// names outside the field set.
func (r Record) Value(field string) (string, bool) {
	switch field {
	case "first_name":
		return r.FirstName, true
	case "last_name":
		return r.LastName, true
	case "date_of_birth":
		return r.DateOfBirth, true
	case "birthplace":
		return r.Birthplace, true
	case "nationality":
		return r.Nationality, true
	case "gender":
		return r.Gender, true
	case "street":
		return r.Street, true
	case "house_number":
		return r.HouseNumber, true
	case "postcode":
		return r.Postcode, true
	case "city":
		return r.City, true
	case "phone":
		return r.Phone, true
	case "email":
		return r.Email, true
	case "national_id":
		return r.NationalID, true
	case "bank_account":
		return r.BankAccount, true
	case "document_number":
		return r.DocumentNumber, true
	case "move_date":
		return r.MoveDate, true
	}
	return "", false
}

// SetValue sets the named field. Returns false for names outside the field
// set (unknown keys are dropped, per the record contract).
func (r *Record) SetValue(field, value string) bool {
	switch field {
	case "first_name":
		r.FirstName = value
	case "last_name":
		r.LastName = value
	case "date_of_birth":
		r.DateOfBirth = value
	case "birthplace":
		r.Birthplace = value
	case "nationality":
		r.Nationality = value
	case "gender":
		r.Gender = value
	case "street":
		r.Street = value
	case "house_number":
		r.HouseNumber = value
	case "postcode":
		r.Postcode = value
	case "city":
		r.City = value
	case "phone":
		r.Phone = value
	case "email":
		r.Email = value
	case "national_id":
		r.NationalID = value
	case "bank_account":
		r.BankAccount = value
	case "document_number":
		r.DocumentNumber = value
	case "move_date":
		r.MoveDate = value
	default:
		return false
	}
	return true
}

// FilledCount returns how many fields hold a non-empty value.
func (r Record) FilledCount() int {
	count := 0
	for _, name := range FieldNames {
		if v, _ := r.Value(name); v != "" {
			count++
		}
	}
	return count
}

// Values returns the record as a field-name map, in no particular order.
func (r Record) Values() map[string]string {
	m := make(map[string]string, len(FieldNames))
	for _, name := range FieldNames {
		v, _ := r.Value(name)
		m[name] = v
	}
	return m
}

// DemoRecord returns the demo fixture used for walkthroughs. Loading it is a
// whole-record replace, so loading twice equals loading once.
func DemoRecord() Record {
	return Record{
		FirstName:      "Maya",
		LastName:       "Schneider",
		DateOfBirth:    "1992-04-17",
		Birthplace:     "Amsterdam",
		Nationality:    "Dutch",
		Gender:         "female",
		Street:         "Kastanienallee",
		HouseNumber:    "12b",
		Postcode:       "10435",
		City:           "Berlin",
		Phone:          "+49 30 1234567",
		Email:          "maya.schneider@example.com",
		NationalID:     "12 345 678 901",
		BankAccount:    "DE89 3704 0044 0532 0130 00",
		DocumentNumber: "NX1234567",
		MoveDate:       "2026-09-01",
	}
}
