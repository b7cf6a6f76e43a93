package credential

import (
	"fmt"
	"strings"
)

// StoreOpenError reports that a backend could not open or authenticate
// against its store: bad credentials, a missing or corrupt file, or an
// unavailable external tool. It is fatal and never retried.
type StoreOpenError struct {
	// Backend is the name of the backend that failed.
	Backend string

	// Location is the store location that was being opened, if any.
	Location string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e StoreOpenError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("failed to open %s store %q: %v", e.Backend, e.Location, e.Err)
	}
	return fmt.Sprintf("failed to open %s store: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying cause.
func (e StoreOpenError) Unwrap() error {
	return e.Err
}

// NoItemsFoundError reports that a query matched no entry.
type NoItemsFoundError struct {
	Query string

	// Err optionally carries the resolver error that produced the empty
	// result, for example an absolute path naming a missing group.
	Err error
}

// Error implements the error interface.
func (e NoItemsFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no items found for %q: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("no items found for %q", e.Query)
}

// Unwrap returns the resolver error, if any.
func (e NoItemsFoundError) Unwrap() error {
	return e.Err
}

// AmbiguousMatchError reports that a query matched more than one entry.
// Paths lists every candidate so the operator can refine the query.
type AmbiguousMatchError struct {
	Query string
	Paths []string
}

// Error implements the error interface.
func (e AmbiguousMatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "multiple items found for %q:", e.Query)
	for _, p := range e.Paths {
		b.WriteString("\n  - ")
		b.WriteString(p)
	}
	return b.String()
}

// FieldNotFoundError reports that an entry has no value for a field.
type FieldNotFoundError struct {
	Field string
	Path  string
}

// Error implements the error interface.
func (e FieldNotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("field '%s' not found in %s", e.Field, e.Path)
	}
	return fmt.Sprintf("field '%s' not found", e.Field)
}
