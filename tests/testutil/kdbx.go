package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tobischo/gokeepasslib/v3"
	w "github.com/tobischo/gokeepasslib/v3/wrappers"
)

// KDBXEntry describes an entry to write into a test database. Empty
// standard fields are omitted from the entry.
type KDBXEntry struct {
	Title    string
	Username string
	Password string
	URL      string
	Notes    string
	Fields   map[string]string
}

// KDBXGroup describes a group to write into a test database.
type KDBXGroup struct {
	Name    string
	Entries []KDBXEntry
	Groups  []KDBXGroup
}

// WriteKDBX encrypts root into a new database file under t.TempDir() and
// returns its path.
//
// Example usage:
//
//	path := testutil.WriteKDBX(t, "master", testutil.KDBXGroup{
//	    Name: "Root",
//	    Entries: []testutil.KDBXEntry{{Title: "github", Password: "hunter2"}},
//	})
func WriteKDBX(t *testing.T, password string, root KDBXGroup) string {
	t.Helper()
	return writeKDBX(t, gokeepasslib.NewPasswordCredentials(password), root)
}

// WriteKDBXWithKeyFile is WriteKDBX for a database that also requires the
// returned key file.
func WriteKDBXWithKeyFile(t *testing.T, password string, root KDBXGroup) (dbPath, keyPath string) {
	t.Helper()

	keyPath = filepath.Join(t.TempDir(), "test.key")
	require.NoError(t, os.WriteFile(keyPath, []byte("kpasscli test key file contents"), 0o600))

	creds, err := gokeepasslib.NewPasswordAndKeyCredentials(password, keyPath)
	require.NoError(t, err)
	return writeKDBX(t, creds, root), keyPath
}

func writeKDBX(t *testing.T, creds *gokeepasslib.DBCredentials, root KDBXGroup) string {
	t.Helper()

	db := &gokeepasslib.Database{
		Header:      gokeepasslib.NewHeader(),
		Credentials: creds,
		Content: &gokeepasslib.DBContent{
			Meta: gokeepasslib.NewMetaData(),
			Root: &gokeepasslib.RootData{
				Groups: []gokeepasslib.Group{buildGroup(root)},
			},
		},
	}
	require.NoError(t, db.LockProtectedEntries())

	path := filepath.Join(t.TempDir(), "test.kdbx")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	require.NoError(t, gokeepasslib.NewEncoder(file).Encode(db))
	return path
}

func buildGroup(spec KDBXGroup) gokeepasslib.Group {
	group := gokeepasslib.NewGroup()
	group.Name = spec.Name
	for _, e := range spec.Entries {
		group.Entries = append(group.Entries, buildEntry(e))
	}
	for _, g := range spec.Groups {
		group.Groups = append(group.Groups, buildGroup(g))
	}
	return group
}

func buildEntry(spec KDBXEntry) gokeepasslib.Entry {
	entry := gokeepasslib.NewEntry()
	entry.Values = append(entry.Values, value("Title", spec.Title, false))
	if spec.Username != "" {
		entry.Values = append(entry.Values, value("UserName", spec.Username, false))
	}
	if spec.Password != "" {
		entry.Values = append(entry.Values, value("Password", spec.Password, true))
	}
	if spec.URL != "" {
		entry.Values = append(entry.Values, value("URL", spec.URL, false))
	}
	if spec.Notes != "" {
		entry.Values = append(entry.Values, value("Notes", spec.Notes, false))
	}
	for k, v := range spec.Fields {
		entry.Values = append(entry.Values, value(k, v, true))
	}
	return entry
}

func value(key, content string, protected bool) gokeepasslib.ValueData {
	return gokeepasslib.ValueData{
		Key:   key,
		Value: gokeepasslib.V{Content: content, Protected: w.NewBoolWrapper(protected)},
	}
}
