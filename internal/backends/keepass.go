package backends

import (
	"context"
	"fmt"
	"os"

	"github.com/tobischo/gokeepasslib/v3"

	"github.com/systmms/kpasscli/internal/logging"
	"github.com/systmms/kpasscli/internal/secure"
	"github.com/systmms/kpasscli/internal/tree"
	"github.com/systmms/kpasscli/pkg/credential"
)

// Standard KeePass field keys. Every other key is a custom field.
const (
	keepassTitle    = "Title"
	keepassUserName = "UserName"
	keepassPassword = "Password"
	keepassURL      = "URL"
	keepassNotes    = "Notes"
)

// KeePassConfig configures the KeePass backend.
type KeePassConfig struct {
	// Path is the location of the .kdbx file.
	Path string

	// KeyFile is an optional key file combined with the password.
	KeyFile string
}

// KeePassBackend serves queries from a decrypted KeePass database.
//
// The database is decrypted once, at construction, and copied into a
// tree.Group snapshot. Queries never touch the decoded database again.
type KeePassBackend struct {
	path     string
	root     tree.Group
	resolver *tree.Resolver
	logger   *logging.Logger
}

// NewKeePassBackend opens and decrypts the database at config.Path with
// the given master password.
func NewKeePassBackend(config KeePassConfig, password *secure.SecureBuffer, logger *logging.Logger) (*KeePassBackend, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	db, err := decodeKeePass(config, password)
	if err != nil {
		return nil, credential.StoreOpenError{Backend: "keepass", Location: config.Path, Err: err}
	}

	kp := newKeePassBackend(config.Path, convertRoot(db.Content.Root), logger)
	logger.Debug("keepass database %s holds %d entries", config.Path, kp.root.Count())
	return kp, nil
}

// NewKeePassBackendFromTree serves queries from an already built tree.
// This is primarily for testing.
func NewKeePassBackendFromTree(root tree.Group, logger *logging.Logger) *KeePassBackend {
	if logger == nil {
		logger = logging.Discard()
	}
	return newKeePassBackend("", root, logger)
}

func newKeePassBackend(path string, root tree.Group, logger *logging.Logger) *KeePassBackend {
	kp := &KeePassBackend{
		path:   path,
		root:   root,
		logger: logger,
	}
	kp.resolver = tree.NewResolver(&kp.root)
	return kp
}

// Name returns the backend name
func (kp *KeePassBackend) Name() string {
	return "keepass"
}

// Kind returns credential.KindKeePass
func (kp *KeePassBackend) Kind() credential.Kind {
	return credential.KindKeePass
}

// Search resolves absolute paths and searches entry titles otherwise.
func (kp *KeePassBackend) Search(_ context.Context, query string, policy credential.MatchPolicy) ([]credential.Entry, error) {
	return kp.resolver.Find(query, policy)
}

// Field returns the named field of entry
func (kp *KeePassBackend) Field(entry credential.Entry, name string) (string, error) {
	return credential.LookupField(entry, name)
}

func decodeKeePass(config KeePassConfig, password *secure.SecureBuffer) (*gokeepasslib.Database, error) {
	file, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file: %w", err)
	}
	defer file.Close()

	db := gokeepasslib.NewDatabase()
	err = password.Use(func(plaintext []byte) error {
		if config.KeyFile != "" {
			creds, err := gokeepasslib.NewPasswordAndKeyCredentials(string(plaintext), config.KeyFile)
			if err != nil {
				return fmt.Errorf("failed to read key file %s: %w", config.KeyFile, err)
			}
			db.Credentials = creds
		} else {
			db.Credentials = gokeepasslib.NewPasswordCredentials(string(plaintext))
		}
		return gokeepasslib.NewDecoder(file).Decode(db)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt database, check password or key file: %w", err)
	}

	if err := db.UnlockProtectedEntries(); err != nil {
		return nil, fmt.Errorf("failed to unlock protected entries: %w", err)
	}
	return db, nil
}

// convertRoot builds the tree root. A KDBX file normally has exactly one
// top-level group; if it has several they are placed under an unnamed root.
func convertRoot(root *gokeepasslib.RootData) tree.Group {
	if root == nil {
		return tree.Group{}
	}
	if len(root.Groups) == 1 {
		return convertGroup(&root.Groups[0])
	}

	out := tree.Group{Groups: make([]tree.Group, 0, len(root.Groups))}
	for i := range root.Groups {
		out.Groups = append(out.Groups, convertGroup(&root.Groups[i]))
	}
	return out
}

func convertGroup(g *gokeepasslib.Group) tree.Group {
	out := tree.Group{
		Name:    g.Name,
		Records: make([]credential.Entry, 0, len(g.Entries)),
		Groups:  make([]tree.Group, 0, len(g.Groups)),
	}
	for i := range g.Entries {
		out.Records = append(out.Records, convertEntry(&g.Entries[i]))
	}
	for i := range g.Groups {
		out.Groups = append(out.Groups, convertGroup(&g.Groups[i]))
	}
	return out
}

// convertEntry copies a KeePass entry into a credential.Entry. Standard
// fields present on the entry are set even when empty; all other keys
// become custom fields.
func convertEntry(e *gokeepasslib.Entry) credential.Entry {
	entry := credential.NewEntry("", "")
	for _, v := range e.Values {
		content := v.Value.Content
		switch v.Key {
		case keepassTitle:
			entry.Title = content
		case keepassUserName:
			entry.Username = credential.String(content)
		case keepassPassword:
			entry.Password = credential.String(content)
		case keepassURL:
			entry.URL = credential.String(content)
		case keepassNotes:
			entry.Notes = credential.String(content)
		default:
			entry.CustomFields[v.Key] = content
		}
	}
	return entry
}

var _ credential.Backend = (*KeePassBackend)(nil)
