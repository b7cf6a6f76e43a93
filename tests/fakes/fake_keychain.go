package fakes

import (
	"context"
	"sort"
	"sync"

	"github.com/systmms/kpasscli/internal/backends/contracts"
)

// FakeKeychainClient is a test double for contracts.KeychainClient
type FakeKeychainClient struct {
	// Secrets is a map of service -> account -> value
	Secrets map[string]map[string][]byte

	// Available controls whether the keychain reports as available
	Available bool

	// Headless controls whether the environment is reported as headless
	Headless bool

	// Listable controls whether List enumerates Secrets or reports
	// contracts.ErrListUnsupported, as the Linux client does.
	Listable bool

	// ValidateErr is returned by Validate() if set
	ValidateErr error

	// QueryErr is returned by Query() if set (overrides Secrets lookup)
	QueryErr error

	// ListErr is returned by List() if set
	ListErr error

	// Queries records every service/account pair passed to Query
	Queries []string

	mu sync.Mutex
}

// NewFakeKeychainClient creates a new listable fake keychain client
func NewFakeKeychainClient() *FakeKeychainClient {
	return &FakeKeychainClient{
		Secrets:   make(map[string]map[string][]byte),
		Available: true,
		Listable:  true,
	}
}

// SetSecret adds a secret to the fake keychain
func (f *FakeKeychainClient) SetSecret(service, account string, value []byte) {
	if f.Secrets == nil {
		f.Secrets = make(map[string]map[string][]byte)
	}
	if f.Secrets[service] == nil {
		f.Secrets[service] = make(map[string][]byte)
	}
	f.Secrets[service][account] = value
}

// Query retrieves a secret from the fake keychain
func (f *FakeKeychainClient) Query(service, account string) ([]byte, error) {
	f.mu.Lock()
	f.Queries = append(f.Queries, service+"/"+account)
	f.mu.Unlock()

	if f.QueryErr != nil {
		return nil, f.QueryErr
	}

	if accounts, ok := f.Secrets[service]; ok {
		if value, ok := accounts[account]; ok {
			return value, nil
		}
	}
	return nil, ErrFakeKeychainItemNotFound
}

// List returns every stored item ordered by service then account
func (f *FakeKeychainClient) List(_ context.Context) ([]contracts.KeychainItem, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	if !f.Listable {
		return nil, contracts.ErrListUnsupported
	}

	var items []contracts.KeychainItem
	for service, accounts := range f.Secrets {
		for account := range accounts {
			items = append(items, contracts.KeychainItem{Service: service, Account: account, Label: service})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Service != items[j].Service {
			return items[i].Service < items[j].Service
		}
		return items[i].Account < items[j].Account
	})
	return items, nil
}

// Validate checks if the keychain is accessible
func (f *FakeKeychainClient) Validate() error {
	return f.ValidateErr
}

// IsAvailable returns whether keychain is available
func (f *FakeKeychainClient) IsAvailable() bool {
	return f.Available
}

// IsHeadless returns whether running in headless environment
func (f *FakeKeychainClient) IsHeadless() bool {
	return f.Headless
}

// ErrFakeKeychainItemNotFound is returned when a keychain item doesn't exist
var ErrFakeKeychainItemNotFound = &fakeKeychainError{code: "itemNotFound"}

// ErrFakeKeychainAccessDenied is returned when keychain access is denied
var ErrFakeKeychainAccessDenied = &fakeKeychainError{code: "accessDenied"}

type fakeKeychainError struct {
	code string
}

func (e *fakeKeychainError) Error() string {
	switch e.code {
	case "itemNotFound":
		return "keychain item not found"
	case "accessDenied":
		return "keychain access denied"
	default:
		return "keychain error: " + e.code
	}
}

// Ensure FakeKeychainClient implements contracts.KeychainClient
var _ contracts.KeychainClient = (*FakeKeychainClient)(nil)
