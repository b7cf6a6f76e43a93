package backends

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/systmms/kpasscli/internal/backends/contracts"
	"github.com/systmms/kpasscli/internal/logging"
	"github.com/systmms/kpasscli/pkg/credential"
)

const keychainPathPrefix = "/" + credential.LocationKeychain + "/"

// KeychainConfig configures the keychain backend.
type KeychainConfig struct {
	// Account is used when a query names only a service.
	// Defaults to $USER.
	Account string `yaml:"account,omitempty"`

	// ServicePrefix is prepended to queried service names and stripped
	// from listed ones.
	ServicePrefix string `yaml:"service_prefix,omitempty"`
}

// KeychainBackend reads generic password items from the OS keychain
// (macOS Keychain and Linux Secret Service).
//
// Items are flat: a query is matched against the service name of every
// listed item. Where the platform cannot enumerate items, the query is
// taken as a direct "service" or "service/account" reference.
type KeychainBackend struct {
	config KeychainConfig
	client contracts.KeychainClient
	logger *logging.Logger
}

// NewKeychainBackend opens the platform keychain.
func NewKeychainBackend(config KeychainConfig, logger *logging.Logger) (*KeychainBackend, error) {
	return NewKeychainBackendWithClient(config, newPlatformKeychainClient(), logger)
}

// NewKeychainBackendWithClient creates a keychain backend with a custom
// client. This is primarily for testing.
func NewKeychainBackendWithClient(config KeychainConfig, client contracts.KeychainClient, logger *logging.Logger) (*KeychainBackend, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if config.Account == "" {
		config.Account = os.Getenv("USER")
	}

	if !client.IsAvailable() {
		return nil, credential.StoreOpenError{Backend: "keychain", Err: ErrKeychainUnsupportedPlatform}
	}
	if err := client.Validate(); err != nil {
		return nil, credential.StoreOpenError{
			Backend: "keychain",
			Err:     &KeychainError{Op: "validate", Err: err},
		}
	}
	if client.IsHeadless() {
		logger.Warn("keychain access from a headless session may block on an authorization prompt")
	}

	return &KeychainBackend{
		config: config,
		client: client,
		logger: logger,
	}, nil
}

// Name returns the backend name
func (kc *KeychainBackend) Name() string {
	return "keychain"
}

// Kind returns credential.KindKeychain
func (kc *KeychainBackend) Kind() credential.Kind {
	return credential.KindKeychain
}

// Search matches query against keychain service names.
//
// A query of the form "/keychain/service/account" (the path reported for
// keychain entries) is resolved directly.
func (kc *KeychainBackend) Search(ctx context.Context, query string, policy credential.MatchPolicy) ([]credential.Entry, error) {
	if strings.HasPrefix(query, keychainPathPrefix) {
		return kc.direct(strings.TrimPrefix(query, keychainPathPrefix))
	}

	items, err := kc.client.List(ctx)
	if errors.Is(err, contracts.ErrListUnsupported) {
		kc.logger.Debug("keychain cannot enumerate items, querying %q directly", query)
		return kc.direct(query)
	}
	if err != nil {
		return nil, &KeychainError{Op: "list", Err: err}
	}

	var results []credential.Entry
	for _, item := range items {
		if !credential.Matches(kc.stripServicePrefix(item.Service), query, policy) {
			continue
		}
		entry, found, err := kc.read(item.Service, item.Account)
		if err != nil {
			return nil, err
		}
		if found {
			results = append(results, entry)
		}
	}
	return results, nil
}

// Field returns the named field of entry
func (kc *KeychainBackend) Field(entry credential.Entry, name string) (string, error) {
	return credential.LookupField(entry, name)
}

// direct resolves a "service" or "service/account" reference.
func (kc *KeychainBackend) direct(ref string) ([]credential.Entry, error) {
	kcRef, err := ParseKeychainReference(ref, kc.config.Account)
	if err != nil {
		return nil, err
	}

	entry, found, err := kc.read(kc.applyServicePrefix(kcRef.Service), kcRef.Account)
	if err != nil || !found {
		return nil, err
	}
	return []credential.Entry{entry}, nil
}

// read queries one item. A missing item is reported with found=false.
func (kc *KeychainBackend) read(service, account string) (credential.Entry, bool, error) {
	secret, err := kc.client.Query(service, account)
	if err != nil {
		if isKeychainNotFoundError(err) {
			return credential.Entry{}, false, nil
		}
		if isKeychainAccessDeniedError(err) {
			err = ErrKeychainAccessDenied
		}
		return credential.Entry{}, false, &KeychainError{Op: "query", Service: service, Account: account, Err: err}
	}

	title := kc.stripServicePrefix(service)
	entry := credential.NewEntry(title, keychainPathPrefix+title+"/"+account)
	entry.Username = credential.String(account)
	entry.Password = credential.String(string(secret))
	return entry, true, nil
}

// applyServicePrefix combines the configured prefix with the service name
func (kc *KeychainBackend) applyServicePrefix(service string) string {
	if kc.config.ServicePrefix == "" {
		return service
	}
	// If service already starts with prefix, don't add it again
	if strings.HasPrefix(service, kc.config.ServicePrefix) {
		return service
	}
	return kc.config.ServicePrefix + "." + service
}

func (kc *KeychainBackend) stripServicePrefix(service string) string {
	if kc.config.ServicePrefix == "" {
		return service
	}
	return strings.TrimPrefix(service, kc.config.ServicePrefix+".")
}

// KeychainReference represents a parsed keychain secret reference
type KeychainReference struct {
	Service string
	Account string
}

// ParseKeychainReference parses "service/account", or "service" together
// with a default account.
func ParseKeychainReference(key, defaultAccount string) (*KeychainReference, error) {
	service, account, hasAccount := strings.Cut(key, "/")
	service = strings.TrimSpace(service)
	account = strings.TrimSpace(account)
	if !hasAccount {
		account = defaultAccount
	}

	if service == "" {
		return nil, fmt.Errorf("keychain reference service cannot be empty")
	}
	if account == "" {
		return nil, fmt.Errorf("%w: use service/account or set keychain.account", ErrKeychainAccountRequired)
	}

	return &KeychainReference{
		Service: service,
		Account: account,
	}, nil
}

// isKeychainNotFoundError checks if an error indicates item not found
func isKeychainNotFoundError(err error) bool {
	if errors.Is(err, ErrKeychainItemNotFound) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "not found") ||
		strings.Contains(errStr, "itemNotFound")
}

// isKeychainAccessDeniedError checks if an error indicates access was denied
func isKeychainAccessDeniedError(err error) bool {
	if errors.Is(err, ErrKeychainAccessDenied) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "access denied") ||
		strings.Contains(errStr, "accessDenied") ||
		strings.Contains(errStr, "user denied") ||
		strings.Contains(errStr, "canceled")
}

var _ credential.Backend = (*KeychainBackend)(nil)
