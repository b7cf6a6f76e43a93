package backends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	kerrors "github.com/systmms/kpasscli/internal/errors"
	"github.com/systmms/kpasscli/internal/logging"
	pkgexec "github.com/systmms/kpasscli/pkg/exec"
	"github.com/systmms/kpasscli/pkg/credential"
)

const (
	bitwardenPathPrefix = "/" + credential.LocationBitwarden + "/"

	// DefaultBitwardenSessionEnv is the variable `bw unlock` tells users
	// to export.
	DefaultBitwardenSessionEnv = "BW_SESSION"
)

// BitwardenConfig configures the Bitwarden backend.
type BitwardenConfig struct {
	// SessionEnv names the environment variable holding the session key.
	SessionEnv string `yaml:"session_env,omitempty"`
}

// BitwardenBackend reads items from a Bitwarden vault through the bw CLI.
type BitwardenBackend struct {
	session  string
	executor pkgexec.CommandExecutor
	logger   *logging.Logger
}

// NewBitwardenBackend checks that bw is installed and the vault is
// unlocked.
func NewBitwardenBackend(ctx context.Context, config BitwardenConfig, logger *logging.Logger) (*BitwardenBackend, error) {
	return NewBitwardenBackendWithExecutor(ctx, config, pkgexec.DefaultExecutor(), logger)
}

// NewBitwardenBackendWithExecutor creates a Bitwarden backend with a custom
// executor. This is primarily for testing.
func NewBitwardenBackendWithExecutor(ctx context.Context, config BitwardenConfig, executor pkgexec.CommandExecutor, logger *logging.Logger) (*BitwardenBackend, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	sessionEnv := config.SessionEnv
	if sessionEnv == "" {
		sessionEnv = DefaultBitwardenSessionEnv
	}

	bw := &BitwardenBackend{
		session:  os.Getenv(sessionEnv),
		executor: executor,
		logger:   logger,
	}

	if err := bw.validate(ctx); err != nil {
		return nil, credential.StoreOpenError{Backend: bw.Name(), Err: err}
	}
	return bw, nil
}

// Name returns the backend name
func (bw *BitwardenBackend) Name() string {
	return "bitwarden"
}

// Kind returns credential.KindBitwarden
func (bw *BitwardenBackend) Kind() credential.Kind {
	return credential.KindBitwarden
}

// Search lists vault items matching query and filters their names with
// policy. A query of the form "/bitwarden/name" (the path reported for
// Bitwarden entries) selects items named exactly name.
func (bw *BitwardenBackend) Search(ctx context.Context, query string, policy credential.MatchPolicy) ([]credential.Entry, error) {
	if strings.HasPrefix(query, bitwardenPathPrefix) {
		query = strings.TrimPrefix(query, bitwardenPathPrefix)
		policy = credential.MatchPolicy{CaseSensitive: true, Exact: true}
	}

	output, err := bw.run(ctx, "list", "items", "--search", query)
	if err != nil {
		return nil, err
	}

	var items []BitwardenItem
	if err := json.Unmarshal(output, &items); err != nil {
		return nil, fmt.Errorf("failed to parse bitwarden items: %w", err)
	}
	bw.logger.Debug("bw returned %d candidate items for %q", len(items), query)

	var results []credential.Entry
	for i := range items {
		if credential.Matches(items[i].Name, query, policy) {
			results = append(results, items[i].toEntry())
		}
	}
	return results, nil
}

// Field returns the named field of entry. "totp" is accepted as an alias
// for the otp field.
func (bw *BitwardenBackend) Field(entry credential.Entry, name string) (string, error) {
	if strings.EqualFold(name, "totp") {
		if _, ok := entry.CustomFields["totp"]; !ok {
			name = "otp"
		}
	}
	return credential.LookupField(entry, name)
}

// validate checks if the bw CLI is available and the vault unlocked
func (bw *BitwardenBackend) validate(ctx context.Context) error {
	if _, err := bw.executor.LookPath("bw"); err != nil {
		return kerrors.WrapCommandNotFound("bw", err)
	}

	output, err := bw.run(ctx, "status")
	if err != nil {
		return fmt.Errorf("failed to check bitwarden status: %w", err)
	}

	var status BitwardenStatus
	if err := json.Unmarshal(output, &status); err != nil {
		return fmt.Errorf("failed to parse bitwarden status: %w", err)
	}

	switch status.Status {
	case "unlocked":
		bw.logger.Debug("bitwarden vault unlocked for %s", status.UserEmail)
		return nil
	case "unauthenticated":
		return fmt.Errorf("%w: %w", AuthError{Backend: bw.Name(), Message: "not logged in. Run: bw login"}, ErrBitwardenUnauthenticated)
	case "locked":
		return fmt.Errorf("%w: %w", AuthError{Backend: bw.Name(), Message: "vault is locked. Run: bw unlock and export BW_SESSION"}, ErrBitwardenLocked)
	default:
		return AuthError{Backend: bw.Name(), Message: fmt.Sprintf("unknown status: %s", status.Status)}
	}
}

// run executes bw with the session appended and returns stdout.
func (bw *BitwardenBackend) run(ctx context.Context, args ...string) ([]byte, error) {
	if bw.session != "" {
		args = append(args, "--session", bw.session)
	}

	stdout, stderr, err := bw.executor.Execute(ctx, "bw", args...)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		return nil, kerrors.CommandError{
			Command: "bw " + args[0],
			Message: logging.Redact(msg, []string{bw.session}),
		}
	}
	return stdout, nil
}

// Bitwarden data structures

// BitwardenStatus represents the status response from 'bw status'
type BitwardenStatus struct {
	Status    string `json:"status"`
	LastSync  string `json:"lastSync"`
	UserEmail string `json:"userEmail"`
	UserID    string `json:"userId"`
}

// BitwardenItemType represents the type of Bitwarden item
type BitwardenItemType int

const (
	TypeLogin    BitwardenItemType = 1
	TypeNote     BitwardenItemType = 2
	TypeCard     BitwardenItemType = 3
	TypeIdentity BitwardenItemType = 4
)

// BitwardenItem represents a Bitwarden vault item
type BitwardenItem struct {
	ID             string            `json:"id"`
	OrganizationID string            `json:"organizationId"`
	FolderID       string            `json:"folderId"`
	Type           BitwardenItemType `json:"type"`
	Name           string            `json:"name"`
	Notes          string            `json:"notes"`
	Fields         []BitwardenField  `json:"fields"`
	Login          *BitwardenLogin   `json:"login"`
	RevisionDate   string            `json:"revisionDate"`
}

// BitwardenLogin represents login-specific data
type BitwardenLogin struct {
	Username string         `json:"username"`
	Password string         `json:"password"`
	Totp     string         `json:"totp"`
	Uris     []BitwardenURI `json:"uris"`
}

// BitwardenURI represents a URI associated with a login item
type BitwardenURI struct {
	Match *int   `json:"match"`
	URI   string `json:"uri"`
}

// BitwardenField represents a custom field in a Bitwarden item
type BitwardenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  int    `json:"type"`
}

// toEntry converts an item into a credential entry. The login's TOTP seed
// is exposed as the "otp" custom field unless the item already defines one.
func (item *BitwardenItem) toEntry() credential.Entry {
	entry := credential.NewEntry(item.Name, bitwardenPathPrefix+item.Name)
	entry.Notes = credential.OptionalString(item.Notes)

	for _, f := range item.Fields {
		if f.Name != "" {
			entry.CustomFields[f.Name] = f.Value
		}
	}

	if login := item.Login; login != nil {
		entry.Username = credential.OptionalString(login.Username)
		entry.Password = credential.OptionalString(login.Password)
		if len(login.Uris) > 0 {
			entry.URL = credential.OptionalString(login.Uris[0].URI)
		}
		if _, ok := entry.CustomFields["otp"]; !ok && login.Totp != "" {
			entry.CustomFields["otp"] = normalizeBitwardenTotp(item.Name, login.Totp)
		}
	}

	if _, ok := entry.CustomFields["id"]; !ok && item.ID != "" {
		entry.CustomFields["id"] = item.ID
	}
	return entry
}

// normalizeBitwardenTotp turns a bare base32 seed into an otpauth URI.
// Bitwarden stores either form.
func normalizeBitwardenTotp(name, totp string) string {
	if strings.HasPrefix(strings.ToLower(totp), "otpauth://") {
		return totp
	}
	return "otpauth://totp/" + url.PathEscape(name) + "?secret=" + url.QueryEscape(strings.ReplaceAll(totp, " ", ""))
}

var _ credential.Backend = (*BitwardenBackend)(nil)
