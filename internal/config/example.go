package config

import (
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/systmms/kpasscli/internal/errors"
)

// ExampleConfig is the document written by `kpasscli config init`.
const ExampleConfig = `# kpasscli configuration

# Credential store: a .kdbx file, "keychain" or "bitwarden".
# Overridden by --kdbpath and KPASSCLI_KDBPATH.
database_path: ~/Passwords.kdbx

# Where values go: stdout or clipboard. Overridden by --out and KPASSCLI_OUT.
default_output: stdout

# Master password sources, tried after --kdbpassword and KPASSCLI_KDBPASSWORD.
# A file is read; an executable is run and its output used.
# password_file: ~/.config/kpasscli/master
# password_executable: ~/bin/kpass-master

# Optional key file combined with the master password.
# key_file: ~/Passwords.key

# Seconds before a copied value is cleared from the clipboard. 0 disables.
clipboard_timeout: 0

# keychain:
#   account: alice
#   service_prefix: com.example

# bitwarden:
#   session_env: BW_SESSION

# Write lookup metrics in Prometheus text format after every run.
# metrics_textfile: ~/.local/state/kpasscli/metrics.prom
`

// CreateExample writes ExampleConfig to path. An existing file is only
// replaced when force is set.
func CreateExample(path string, force bool) error {
	path = ExpandHome(path)

	if _, err := os.Stat(path); err == nil && !force {
		return kerrors.ConfigError{
			Field:      "path",
			Value:      path,
			Message:    "configuration file already exists",
			Suggestion: "Use --force to overwrite it",
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(ExampleConfig), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
