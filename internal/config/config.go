package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/systmms/kpasscli/internal/backends"
	kerrors "github.com/systmms/kpasscli/internal/errors"
	"github.com/systmms/kpasscli/internal/logging"
)

// Environment variables that override the configuration file.
const (
	EnvDatabasePath = "KPASSCLI_KDBPATH"
	EnvPassword     = "KPASSCLI_KDBPASSWORD"
	EnvOutput       = "KPASSCLI_OUT"
)

// Config holds the runtime configuration
type Config struct {
	Path       string
	Logger     *logging.Logger
	Definition *Definition
}

// Definition represents the config.yaml structure
type Definition struct {
	DatabasePath       string                   `yaml:"database_path,omitempty"`
	DefaultOutput      string                   `yaml:"default_output,omitempty"`
	PasswordFile       string                   `yaml:"password_file,omitempty"`
	PasswordExecutable string                   `yaml:"password_executable,omitempty"`
	KeyFile            string                   `yaml:"key_file,omitempty"`
	ClipboardTimeout   int                      `yaml:"clipboard_timeout,omitempty"`
	Keychain           backends.KeychainConfig  `yaml:"keychain,omitempty"`
	Bitwarden          backends.BitwardenConfig `yaml:"bitwarden,omitempty"`
	MetricsTextfile    string                   `yaml:"metrics_textfile,omitempty"`
}

// DefaultPath returns ~/.config/kpasscli/config.yaml, or a relative
// config.yaml when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "kpasscli", "config.yaml")
}

// Load reads and validates the configuration file. A missing file yields
// an empty definition.
func (c *Config) Load() error {
	if c.Path == "" {
		c.Path = DefaultPath()
	}
	path := ExpandHome(c.Path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.debug("no config file at %s, using defaults", path)
			c.Definition = &Definition{}
			return nil
		}
		return kerrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	def, err := Parse(data)
	if err != nil {
		return err
	}
	c.debug("loaded config from %s", path)
	c.Definition = def
	return nil
}

// Parse decodes and validates a configuration document. Relative paths
// are left as they are; "~" is expanded.
func Parse(data []byte) (*Definition, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, kerrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters",
			Err:        err,
		}
	}
	if raw != nil {
		if err := validateDocument(raw); err != nil {
			return nil, err
		}
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, kerrors.ConfigError{
			Message: "invalid configuration file",
			Err:     err,
		}
	}

	def.DatabasePath = expandLocation(def.DatabasePath)
	def.PasswordFile = ExpandHome(def.PasswordFile)
	def.PasswordExecutable = ExpandHome(def.PasswordExecutable)
	def.KeyFile = ExpandHome(def.KeyFile)
	def.MetricsTextfile = ExpandHome(def.MetricsTextfile)
	return &def, nil
}

// DatabaseLocation returns the store location: flag, then
// $KPASSCLI_KDBPATH, then database_path.
func (c *Config) DatabaseLocation(flag string) (string, error) {
	if flag != "" {
		return expandLocation(flag), nil
	}
	if env := os.Getenv(EnvDatabasePath); env != "" {
		return expandLocation(env), nil
	}
	if c.Definition != nil && c.Definition.DatabasePath != "" {
		return c.Definition.DatabasePath, nil
	}
	return "", kerrors.ConfigError{
		Field:      "database_path",
		Message:    "no credential store configured",
		Suggestion: fmt.Sprintf("Pass --kdbpath, set %s or add database_path to %s", EnvDatabasePath, c.displayPath()),
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// expandLocation leaves the reserved keychain and bitwarden locations alone.
func expandLocation(location string) string {
	switch location {
	case "", "keychain", "bitwarden":
		return location
	}
	return ExpandHome(location)
}

func (c *Config) displayPath() string {
	if c.Path == "" {
		return DefaultPath()
	}
	return c.Path
}

func (c *Config) debug(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Debug(format, args...)
	}
}

// Render returns the definition as YAML.
func (d *Definition) Render() ([]byte, error) {
	return yaml.Marshal(d)
}
