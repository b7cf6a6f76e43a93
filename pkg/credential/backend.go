package credential

import "context"

// Backend is the contract every credential store implementation satisfies.
//
// A Backend is created already opened and authenticated (see
// internal/backends.Open); construction is the only place where failures
// such as a wrong master password or a missing CLI tool surface. Each
// Backend owns its store handle exclusively.
type Backend interface {
	// Name returns a stable, lowercase identifier such as "keepass".
	Name() string

	// Kind returns the variant this backend implements.
	Kind() Kind

	// Search returns every entry whose title satisfies query under policy.
	//
	// Zero matches is not an error: implementations return an empty slice
	// and a nil error. Tree-structured stores additionally accept absolute
	// paths (queries beginning with "/") and may return resolver errors for
	// them.
	Search(ctx context.Context, query string, policy MatchPolicy) ([]Entry, error)

	// Field returns the named field of entry, or a FieldNotFoundError when
	// the field has no value.
	Field(entry Entry, name string) (string, error)
}

// LookupField implements Backend.Field on top of Entry.Field. Backends
// without store-specific field aliases delegate to it.
func LookupField(entry Entry, name string) (string, error) {
	value, ok := entry.Field(name)
	if !ok {
		return "", FieldNotFoundError{Field: name, Path: entry.Path}
	}
	return value, nil
}
