package credential

import "strings"

// Reserved field names. They are matched case-insensitively by Entry.Field.
const (
	FieldTitle    = "title"
	FieldUsername = "username"
	FieldPassword = "password"
	FieldURL      = "url"
	FieldNotes    = "notes"
)

// Entry is the unified representation of a credential record.
//
// Entries are built fresh for every search result and own copies of all of
// their data. They are snapshots: mutating an Entry never affects the store
// it was read from.
type Entry struct {
	// Title is the display name of the record. Always present, may be empty.
	Title string

	// Username, Password, URL and Notes are optional; nil means the store
	// had no value for the attribute.
	Username *string
	Password *string
	URL      *string
	Notes    *string

	// CustomFields holds every other named value of the record. Keys are
	// matched case-sensitively.
	CustomFields map[string]string

	// Path locates the record inside its store at the time of the query.
	// It always begins with "/".
	Path string
}

// NewEntry creates an Entry with the given title and path and an empty
// custom field map.
func NewEntry(title, path string) Entry {
	return Entry{
		Title:        title,
		Path:         path,
		CustomFields: make(map[string]string),
	}
}

// String returns a pointer to a copy of s.
func String(s string) *string {
	return &s
}

// OptionalString returns nil for an empty string and String(s) otherwise.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return String(s)
}

// Field returns the value of the named field.
//
// The five reserved names are resolved first, ignoring case. A reserved
// attribute without a value reports ok=false; it does not fall through to a
// custom field of the same name. Any other name is looked up in
// CustomFields with an exact, case-sensitive key match.
func (e Entry) Field(name string) (value string, ok bool) {
	switch strings.ToLower(name) {
	case FieldTitle:
		return e.Title, true
	case FieldUsername:
		return deref(e.Username)
	case FieldPassword:
		return deref(e.Password)
	case FieldURL:
		return deref(e.URL)
	case FieldNotes:
		return deref(e.Notes)
	}

	value, ok = e.CustomFields[name]
	return value, ok
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	out := e
	out.Username = clonePtr(e.Username)
	out.Password = clonePtr(e.Password)
	out.URL = clonePtr(e.URL)
	out.Notes = clonePtr(e.Notes)
	out.CustomFields = make(map[string]string, len(e.CustomFields))
	for k, v := range e.CustomFields {
		out.CustomFields[k] = v
	}
	return out
}

// IsReservedField reports whether name is one of the reserved field names.
func IsReservedField(name string) bool {
	switch strings.ToLower(name) {
	case FieldTitle, FieldUsername, FieldPassword, FieldURL, FieldNotes:
		return true
	}
	return false
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	return String(*s)
}
