package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/systmms/kpasscli/pkg/credential"
)

const separator = "----------------------------------------"

// RenderEntry writes every field of entry: the standard fields that have a
// value, then custom fields ordered by name.
func RenderEntry(w io.Writer, entry credential.Entry) error {
	lines := []string{
		separator,
		"Entry Details:",
		separator,
		"Path: " + entry.Path,
		"Title: " + entry.Title,
	}

	standard := []struct {
		label string
		value *string
	}{
		{"Username", entry.Username},
		{"Password", entry.Password},
		{"URL", entry.URL},
		{"Notes", entry.Notes},
	}
	for _, f := range standard {
		if f.value != nil {
			lines = append(lines, f.label+": "+*f.value)
		}
	}

	names := make([]string, 0, len(entry.CustomFields))
	for name := range entry.CustomFields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, name+": "+entry.CustomFields[name])
	}
	lines = append(lines, separator)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
