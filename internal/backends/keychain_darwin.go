//go:build darwin

package backends

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/systmms/kpasscli/internal/backends/contracts"
	pkgexec "github.com/systmms/kpasscli/pkg/exec"
)

// darwinKeychainClient implements KeychainClient for macOS
type darwinKeychainClient struct {
	executor pkgexec.CommandExecutor
}

// newPlatformKeychainClient creates the platform-specific keychain client
func newPlatformKeychainClient() contracts.KeychainClient {
	return &darwinKeychainClient{executor: pkgexec.DefaultExecutor()}
}

// Query retrieves a secret from the macOS keychain
func (c *darwinKeychainClient) Query(service, account string) ([]byte, error) {
	secret, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrKeychainItemNotFound
		}
		if isKeychainAccessDeniedError(err) {
			return nil, ErrKeychainAccessDenied
		}
		return nil, err
	}
	return []byte(secret), nil
}

// List enumerates generic password items with `security dump-keychain`.
func (c *darwinKeychainClient) List(ctx context.Context) ([]contracts.KeychainItem, error) {
	stdout, stderr, err := c.executor.Execute(ctx, "security", "dump-keychain")
	if err != nil {
		return nil, fmt.Errorf("security dump-keychain: %w: %s", err, strings.TrimSpace(string(stderr)))
	}
	return parseDumpKeychain(stdout), nil
}

// Validate checks that the security tool is present
func (c *darwinKeychainClient) Validate() error {
	if _, err := c.executor.LookPath("security"); err != nil {
		return fmt.Errorf("'security' command not found: %w", err)
	}
	return nil
}

// IsAvailable returns true since we're on macOS
func (c *darwinKeychainClient) IsAvailable() bool {
	return true
}

// IsHeadless returns true if running in headless environment
func (c *darwinKeychainClient) IsHeadless() bool {
	return os.Getenv("SSH_TTY") != "" || os.Getenv("CI") != ""
}

var _ contracts.KeychainClient = (*darwinKeychainClient)(nil)
