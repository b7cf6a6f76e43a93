package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/kpasscli/internal/tree"
	"github.com/systmms/kpasscli/pkg/credential"
)

func record(title, password string) credential.Entry {
	e := credential.NewEntry(title, "")
	e.Password = credential.String(password)
	return e
}

// sampleTree builds:
//
//	Root
//	├── Email
//	├── Work
//	│   ├── github
//	│   ├── Jira
//	│   └── Servers
//	│       └── db01
//	└── Personal
//	    ├── github
//	    └── Bank
func sampleTree() *tree.Group {
	return &tree.Group{
		Name:    "Root",
		Records: []credential.Entry{record("Email", "mail-pass")},
		Groups: []tree.Group{
			{
				Name:    "Work",
				Records: []credential.Entry{record("github", "work-gh"), record("Jira", "jira-pass")},
				Groups: []tree.Group{
					{Name: "Servers", Records: []credential.Entry{record("db01", "db-pass")}},
				},
			},
			{
				Name:    "Personal",
				Records: []credential.Entry{record("github", "home-gh"), record("Bank", "bank-pass")},
			},
		},
	}
}

func paths(entries []credential.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

func TestResolverSearch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		query  string
		policy credential.MatchPolicy
		want   []string
	}{
		{
			name:  "root elision",
			query: "Email",
			want:  []string{"/Email"},
		},
		{
			name:   "exact insensitive finds both github entries",
			query:  "GitHub",
			policy: credential.MatchPolicy{Exact: true},
			want:   []string{"/Work/github", "/Personal/github"},
		},
		{
			name:   "exact sensitive misses wrong case",
			query:  "GitHub",
			policy: credential.MatchPolicy{Exact: true, CaseSensitive: true},
			want:   []string{},
		},
		{
			name:  "substring pre-order",
			query: "b",
			want:  []string{"/Work/github", "/Work/Servers/db01", "/Personal/github", "/Personal/Bank"},
		},
		{
			name:  "nested group",
			query: "db0",
			want:  []string{"/Work/Servers/db01"},
		},
		{
			name:  "no match",
			query: "nothing",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := tree.NewResolver(sampleTree())
			got, err := r.Find(tt.query, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, paths(got))
		})
	}
}

func TestResolverResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		wantPath  string
		wantPass  string
		wantErr   error
		wantInMsg string
	}{
		{name: "top level entry", path: "/Email", wantPath: "/Email", wantPass: "mail-pass"},
		{name: "root name skipped", path: "/Root/Email", wantPath: "/Email", wantPass: "mail-pass"},
		{name: "nested entry", path: "/Work/Servers/db01", wantPath: "/Work/Servers/db01", wantPass: "db-pass"},
		{name: "same title other group", path: "/Personal/github", wantPath: "/Personal/github", wantPass: "home-gh"},
		{name: "missing entry", path: "/Work/Missing", wantErr: tree.ErrEntryNotFound, wantInMsg: "Missing"},
		{name: "missing group", path: "/Nope/github", wantErr: tree.ErrGroupNotFound, wantInMsg: "Nope"},
		{name: "group path", path: "/Work", wantErr: tree.ErrPathIsGroup},
		{name: "nested group path", path: "/Root/Work/Servers", wantErr: tree.ErrPathIsGroup},
		{name: "root only", path: "/Root", wantErr: tree.ErrPathIsGroup},
		{name: "case sensitive segments", path: "/work/github", wantErr: tree.ErrGroupNotFound},
		{name: "case sensitive title", path: "/Work/GitHub", wantErr: tree.ErrEntryNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := tree.NewResolver(sampleTree())
			got, err := r.Find(tt.path, credential.MatchPolicy{})

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				var pathErr *tree.PathError
				require.ErrorAs(t, err, &pathErr)
				assert.Equal(t, tt.path, pathErr.Path)
				if tt.wantInMsg != "" {
					assert.Contains(t, err.Error(), tt.wantInMsg)
				}
				return
			}

			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantPath, got[0].Path)
			assert.Equal(t, tt.wantPass, *got[0].Password)
		})
	}
}

func TestResolverResolveTrailingSlashNamesGroup(t *testing.T) {
	t.Parallel()

	root := sampleTree()
	root.Records = append(root.Records, record("", "untitled-root"))
	root.Groups[0].Records = append(root.Groups[0].Records, record("", "untitled-work"))
	r := tree.NewResolver(root)

	for _, path := range []string{"/", "/Root/", "/Work/", "/Root/Work/Servers/"} {
		_, err := r.Resolve(path)
		assert.ErrorIs(t, err, tree.ErrPathIsGroup, path)
	}
}

func TestResolverDuplicateTitlesResolveToFirst(t *testing.T) {
	t.Parallel()

	root := sampleTree()
	root.Groups[0].Records = append(root.Groups[0].Records, record("github", "work-gh-2"))
	r := tree.NewResolver(root)

	found := r.Search("github", credential.MatchPolicy{Exact: true})
	assert.Equal(t, []string{"/Work/github", "/Work/github", "/Personal/github"}, paths(found))

	got, err := r.Resolve("/Work/github")
	require.NoError(t, err)
	assert.Equal(t, "work-gh", *got.Password)
}

func TestResolverResolveIsIdempotent(t *testing.T) {
	t.Parallel()

	r := tree.NewResolver(sampleTree())

	first, err := r.Resolve("/Work/Servers/db01")
	require.NoError(t, err)
	second, err := r.Resolve("/Work/Servers/db01")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolverSearchPathsAreResolvable(t *testing.T) {
	t.Parallel()

	r := tree.NewResolver(sampleTree())
	for _, found := range r.Search("", credential.MatchPolicy{}) {
		resolved, err := r.Resolve(found.Path)
		require.NoError(t, err, found.Path)
		assert.Equal(t, found.Title, resolved.Title)
	}
}

func TestResolverReturnsSnapshots(t *testing.T) {
	t.Parallel()

	root := sampleTree()
	r := tree.NewResolver(root)

	got := r.Search("Email", credential.MatchPolicy{Exact: true})
	require.Len(t, got, 1)
	*got[0].Password = "tampered"
	got[0].CustomFields["x"] = "y"

	again, err := r.Resolve("/Email")
	require.NoError(t, err)
	assert.Equal(t, "mail-pass", *again.Password)
	assert.Empty(t, again.CustomFields)
	assert.Empty(t, root.Records[0].Path)
}

func TestGroupCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 6, sampleTree().Count())
}
