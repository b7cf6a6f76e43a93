//go:build linux

package backends

import (
	"context"
	"errors"
	"os"

	"github.com/zalando/go-keyring"

	"github.com/systmms/kpasscli/internal/backends/contracts"
)

// linuxKeychainClient implements KeychainClient for Linux (Secret Service)
type linuxKeychainClient struct{}

// newPlatformKeychainClient creates the platform-specific keychain client
func newPlatformKeychainClient() contracts.KeychainClient {
	return &linuxKeychainClient{}
}

// Query retrieves a secret from Linux Secret Service
func (c *linuxKeychainClient) Query(service, account string) ([]byte, error) {
	secret, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrKeychainItemNotFound
		}
		return nil, err
	}
	return []byte(secret), nil
}

// List is not supported by go-keyring on Linux; lookups are direct.
func (c *linuxKeychainClient) List(ctx context.Context) ([]contracts.KeychainItem, error) {
	return nil, contracts.ErrListUnsupported
}

// Validate checks if Secret Service is accessible
func (c *linuxKeychainClient) Validate() error {
	// A Secret Service implementation (gnome-keyring, KWallet) has to be
	// reachable on the session bus; go-keyring reports that on first use.
	return nil
}

// IsAvailable returns true if a desktop session bus is likely present
func (c *linuxKeychainClient) IsAvailable() bool {
	return os.Getenv("DBUS_SESSION_BUS_ADDRESS") != "" ||
		os.Getenv("DISPLAY") != "" ||
		os.Getenv("WAYLAND_DISPLAY") != ""
}

// IsHeadless returns true if running in headless environment
func (c *linuxKeychainClient) IsHeadless() bool {
	if os.Getenv("SSH_TTY") != "" || os.Getenv("CI") != "" {
		return true
	}
	return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}

var _ contracts.KeychainClient = (*linuxKeychainClient)(nil)
