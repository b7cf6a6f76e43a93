// Package tree locates credential records inside a tree-structured store.
//
// A store is a root Group holding records and child groups. Groups are held
// by value and never point back at their parent; the resolver passes the
// accumulated parent path down during traversal instead.
package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/systmms/kpasscli/pkg/credential"
)

// Resolver sentinel errors, returned wrapped in a *PathError.
var (
	ErrGroupNotFound = errors.New("group not found")
	ErrEntryNotFound = errors.New("entry not found")
	ErrPathIsGroup   = errors.New("path points to a group, not an entry")
)

// PathError describes an absolute path that could not be resolved.
type PathError struct {
	Path    string
	Segment string
	Err     error
}

func (e *PathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Path, e.Err, e.Segment)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Group is a named container of records and child groups.
type Group struct {
	Name    string
	Records []credential.Entry
	Groups  []Group
}

// Child returns the direct child group with exactly the given name.
func (g *Group) Child(name string) (*Group, bool) {
	for i := range g.Groups {
		if g.Groups[i].Name == name {
			return &g.Groups[i], true
		}
	}
	return nil, false
}

// Record returns the first direct record with exactly the given title.
func (g *Group) Record(title string) (credential.Entry, bool) {
	for _, r := range g.Records {
		if r.Title == title {
			return r, true
		}
	}
	return credential.Entry{}, false
}

// Count returns the number of records in the group and all descendants.
func (g *Group) Count() int {
	n := len(g.Records)
	for i := range g.Groups {
		n += g.Groups[i].Count()
	}
	return n
}

// Resolver answers queries against one root group. It never modifies the
// tree.
type Resolver struct {
	root *Group
}

// NewResolver creates a resolver over root.
func NewResolver(root *Group) *Resolver {
	return &Resolver{root: root}
}

// Find resolves query as an absolute path when it begins with "/" and
// searches entry titles otherwise.
func (r *Resolver) Find(query string, policy credential.MatchPolicy) ([]credential.Entry, error) {
	if strings.HasPrefix(query, "/") {
		entry, err := r.Resolve(query)
		if err != nil {
			return nil, err
		}
		return []credential.Entry{entry}, nil
	}
	return r.Search(query, policy), nil
}

// Resolve addresses a single entry by its absolute path.
//
// Segments are compared byte for byte. A leading segment equal to the root
// group's name is skipped. The returned entry carries the canonical path,
// without the root segment.
func (r *Resolver) Resolve(path string) (credential.Entry, error) {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if segments[0] == r.root.Name {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return credential.Entry{}, &PathError{Path: path, Err: ErrPathIsGroup}
	}

	current := r.root
	last := len(segments) - 1
	for _, segment := range segments[:last] {
		child, ok := current.Child(segment)
		if !ok {
			return credential.Entry{}, &PathError{Path: path, Segment: segment, Err: ErrGroupNotFound}
		}
		current = child
	}

	leaf := segments[last]
	if leaf == "" {
		return credential.Entry{}, &PathError{Path: path, Err: ErrPathIsGroup}
	}
	if _, ok := current.Child(leaf); ok {
		return credential.Entry{}, &PathError{Path: path, Segment: leaf, Err: ErrPathIsGroup}
	}

	record, ok := current.Record(leaf)
	if !ok {
		return credential.Entry{}, &PathError{Path: path, Segment: leaf, Err: ErrEntryNotFound}
	}
	return snapshot(record, "/"+strings.Join(segments, "/")), nil
}

// Search returns every entry whose title satisfies query under policy,
// in depth-first pre-order: a group's records come before its child
// groups, and siblings keep the store's order. The root group's name is
// not part of any result path.
func (r *Resolver) Search(query string, policy credential.MatchPolicy) []credential.Entry {
	var results []credential.Entry
	r.walk(r.root, "", query, policy, &results)
	return results
}

func (r *Resolver) walk(g *Group, groupPath, query string, policy credential.MatchPolicy, results *[]credential.Entry) {
	for _, record := range g.Records {
		if credential.Matches(record.Title, query, policy) {
			*results = append(*results, snapshot(record, joinPath(groupPath, record.Title)))
		}
	}

	for i := range g.Groups {
		child := &g.Groups[i]
		r.walk(child, joinPath(groupPath, child.Name), query, policy, results)
	}
}

func joinPath(parent, name string) string {
	return parent + "/" + name
}

func snapshot(record credential.Entry, path string) credential.Entry {
	entry := record.Clone()
	entry.Path = path
	return entry
}
