package backends

import (
	"context"
	"fmt"
	"time"

	"github.com/systmms/kpasscli/internal/backends/contracts"
	"github.com/systmms/kpasscli/internal/logging"
	"github.com/systmms/kpasscli/internal/secure"
	pkgexec "github.com/systmms/kpasscli/pkg/exec"
	"github.com/systmms/kpasscli/pkg/credential"
)

// PasswordSource supplies the KeePass master password. It is only
// consulted when the location selects a KeePass database.
type PasswordSource interface {
	Password(ctx context.Context) (*secure.SecureBuffer, error)
}

// PasswordFunc adapts a function to PasswordSource.
type PasswordFunc func(ctx context.Context) (*secure.SecureBuffer, error)

// Password calls f.
func (f PasswordFunc) Password(ctx context.Context) (*secure.SecureBuffer, error) {
	return f(ctx)
}

// Options selects and configures the backend opened by Open.
type Options struct {
	// Location is a .kdbx path, "keychain" or "bitwarden".
	Location string

	KeyFile   string
	Password  PasswordSource
	Keychain  KeychainConfig
	Bitwarden BitwardenConfig

	// Executor and KeychainClient replace the platform defaults when set.
	Executor       pkgexec.CommandExecutor
	KeychainClient contracts.KeychainClient

	Logger *logging.Logger
}

// Open selects the backend kind for opts.Location and opens it.
func Open(ctx context.Context, opts Options) (credential.Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	kind := credential.SelectKind(opts.Location)
	logger.Debug("selected %s backend for %q", kind, opts.Location)

	start := time.Now()
	defer logger.Timed(fmt.Sprintf("open %s backend", kind), start)

	switch kind {
	case credential.KindKeychain:
		client := opts.KeychainClient
		if client == nil {
			client = newPlatformKeychainClient()
		}
		backend, err := NewKeychainBackendWithClient(opts.Keychain, client, logger)
		if err != nil {
			return nil, err
		}
		return backend, nil

	case credential.KindBitwarden:
		executor := opts.Executor
		if executor == nil {
			executor = pkgexec.DefaultExecutor()
		}
		backend, err := NewBitwardenBackendWithExecutor(ctx, opts.Bitwarden, executor, logger)
		if err != nil {
			return nil, err
		}
		return backend, nil

	default:
		if opts.Password == nil {
			return nil, credential.StoreOpenError{
				Backend:  "keepass",
				Location: opts.Location,
				Err:      fmt.Errorf("no master password source configured"),
			}
		}
		password, err := opts.Password.Password(ctx)
		if err != nil {
			return nil, credential.StoreOpenError{Backend: "keepass", Location: opts.Location, Err: err}
		}
		defer password.Destroy()

		backend, err := NewKeePassBackend(KeePassConfig{Path: opts.Location, KeyFile: opts.KeyFile}, password, logger)
		if err != nil {
			return nil, err
		}
		return backend, nil
	}
}
