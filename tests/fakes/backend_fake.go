package fakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/systmms/kpasscli/pkg/credential"
)

// FakeBackend is a manual fake implementation of credential.Backend.
//
// It holds a flat list of entries and matches queries against their
// titles with credential.Matches. Queries beginning with "/" are compared
// against entry paths exactly, mirroring absolute-path resolution.
//
// Example usage:
//
//	fake := fakes.NewFakeBackend(credential.KindKeePass).
//	    WithEntry(credential.NewEntry("github", "/Work/github")).
//	    WithSearchError(errors.New("store unavailable"))
type FakeBackend struct {
	kind      credential.Kind
	entries   []credential.Entry
	searchErr error
	queries   []string
	callCount map[string]int

	mu sync.RWMutex
}

// NewFakeBackend creates an empty FakeBackend of the given kind.
func NewFakeBackend(kind credential.Kind) *FakeBackend {
	return &FakeBackend{
		kind:      kind,
		callCount: make(map[string]int),
	}
}

// WithEntry appends an entry. Entries are returned in insertion order.
func (f *FakeBackend) WithEntry(entry credential.Entry) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = append(f.entries, entry)
	return f
}

// WithSearchError makes every Search fail with err.
func (f *FakeBackend) WithSearchError(err error) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.searchErr = err
	return f
}

// Name returns the kind's name.
func (f *FakeBackend) Name() string {
	return f.kind.String()
}

// Kind returns the configured kind.
func (f *FakeBackend) Kind() credential.Kind {
	return f.kind
}

// Search returns the entries whose title matches query, or whose path
// equals query when it begins with "/".
func (f *FakeBackend) Search(ctx context.Context, query string, policy credential.MatchPolicy) ([]credential.Entry, error) {
	f.trackCall("Search")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.searchErr != nil {
		return nil, f.searchErr
	}

	var results []credential.Entry
	for _, e := range f.entries {
		if len(query) > 0 && query[0] == '/' {
			if e.Path == query {
				results = append(results, e.Clone())
			}
			continue
		}
		if credential.Matches(e.Title, query, policy) {
			results = append(results, e.Clone())
		}
	}
	return results, nil
}

// Field delegates to credential.LookupField.
func (f *FakeBackend) Field(entry credential.Entry, name string) (string, error) {
	f.trackCall("Field")
	return credential.LookupField(entry, name)
}

// Queries returns every query passed to Search.
func (f *FakeBackend) Queries() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]string(nil), f.queries...)
}

// GetCallCount returns the number of times a method was called.
func (f *FakeBackend) GetCallCount(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.callCount[method]
}

func (f *FakeBackend) trackCall(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callCount[method]++
}

// String returns a string representation of the fake backend.
func (f *FakeBackend) String() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return fmt.Sprintf("FakeBackend{kind=%s, entries=%d}", f.kind, len(f.entries))
}

var _ credential.Backend = (*FakeBackend)(nil)
