//go:build !darwin && !linux

package backends

import (
	"context"

	"github.com/systmms/kpasscli/internal/backends/contracts"
)

// unsupportedKeychainClient is a stub for unsupported platforms
type unsupportedKeychainClient struct{}

// newPlatformKeychainClient creates a stub client for unsupported platforms
func newPlatformKeychainClient() contracts.KeychainClient {
	return &unsupportedKeychainClient{}
}

func (c *unsupportedKeychainClient) Query(service, account string) ([]byte, error) {
	return nil, ErrKeychainUnsupportedPlatform
}

func (c *unsupportedKeychainClient) List(ctx context.Context) ([]contracts.KeychainItem, error) {
	return nil, ErrKeychainUnsupportedPlatform
}

func (c *unsupportedKeychainClient) Validate() error {
	return ErrKeychainUnsupportedPlatform
}

func (c *unsupportedKeychainClient) IsAvailable() bool {
	return false
}

func (c *unsupportedKeychainClient) IsHeadless() bool {
	return false
}

var _ contracts.KeychainClient = (*unsupportedKeychainClient)(nil)
