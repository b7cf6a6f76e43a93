// Package contracts defines interfaces for backend client abstractions.
// These interfaces enable dependency injection for testing.
package contracts

import (
	"context"
	"errors"
)

// ErrListUnsupported is returned by KeychainClient.List on platforms that
// cannot enumerate keychain items.
var ErrListUnsupported = errors.New("keychain listing not supported on this platform")

// KeychainItem identifies one generic password item in the OS keychain.
type KeychainItem struct {
	Service string
	Account string
	Label   string
}

// KeychainClient abstracts OS keychain operations for testing
type KeychainClient interface {
	// Query retrieves the secret stored for service and account
	Query(service, account string) ([]byte, error)

	// List enumerates generic password items without reading their
	// secrets. Platforms that cannot enumerate return
	// ErrListUnsupported.
	List(ctx context.Context) ([]KeychainItem, error)

	// Validate checks if the keychain is accessible
	Validate() error

	// IsAvailable returns true if keychain is available on this platform
	IsAvailable() bool

	// IsHeadless returns true if running in headless environment
	IsHeadless() bool
}
