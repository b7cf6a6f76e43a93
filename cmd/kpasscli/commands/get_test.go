package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/kpasscli/internal/backends"
	"github.com/systmms/kpasscli/internal/config"
	kerrors "github.com/systmms/kpasscli/internal/errors"
	"github.com/systmms/kpasscli/internal/tree"
	"github.com/systmms/kpasscli/pkg/credential"
	"github.com/systmms/kpasscli/tests/fakes"
	"github.com/systmms/kpasscli/tests/testutil"
)

const (
	masterPassword = "correct horse battery staple"

	// RFC 6238 SHA1 secret; the 8 digit code at t=59s is 94287082.
	rfcOTP = "otpauth://totp/Test?secret=GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ&digits=8"
)

type fakeClipboard struct {
	mu     sync.Mutex
	writes []string
	err    error
}

func (f *fakeClipboard) WriteAll(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, text)
	return nil
}

type fakeSpawner struct {
	after []time.Duration
}

func (f *fakeSpawner) SpawnClear(after time.Duration) error {
	f.after = append(f.after, after)
	return nil
}

type stubPrompter struct {
	secret string
	calls  int
}

func (s *stubPrompter) Prompt(string) ([]byte, error) {
	s.calls++
	return []byte(s.secret), nil
}

type testEnv struct {
	rt        runtime
	executor  *testutil.MockCommandExecutor
	keychain  *fakes.FakeKeychainClient
	clipboard *fakeClipboard
	spawner   *fakeSpawner
	prompter  *stubPrompter
}

func newTestEnv() *testEnv {
	env := &testEnv{
		executor:  testutil.NewMockCommandExecutor(),
		keychain:  fakes.NewFakeKeychainClient(),
		clipboard: &fakeClipboard{},
		spawner:   &fakeSpawner{},
		prompter:  &stubPrompter{secret: masterPassword},
	}
	env.rt = runtime{
		executor:       env.executor,
		keychainClient: env.keychain,
		clipboard:      env.clipboard,
		spawner:        env.spawner,
		prompter:       env.prompter,
		now:            func() time.Time { return time.Unix(59, 0) },
	}
	return env
}

func sampleDatabase(t *testing.T) string {
	t.Helper()

	return testutil.WriteKDBX(t, masterPassword, testutil.KDBXGroup{
		Name:    "Root",
		Entries: []testutil.KDBXEntry{{Title: "Email", Username: "me@example.com", Password: "mail-pass"}},
		Groups: []testutil.KDBXGroup{
			{
				Name: "Work",
				Entries: []testutil.KDBXEntry{{
					Title:    "github",
					Username: "octocat",
					Password: "hunter2",
					URL:      "https://github.com",
					Fields:   map[string]string{"otp": rfcOTP},
				}},
			},
			{
				Name:    "Personal",
				Entries: []testutil.KDBXEntry{{Title: "github", Password: "home-pass"}},
			},
		},
	})
}

func writePasswordFile(t *testing.T, password string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "master")
	require.NoError(t, os.WriteFile(path, []byte(password+"\n"), 0o600))
	return path
}

func keepassConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Definition: &config.Definition{
			DatabasePath: sampleDatabase(t),
			PasswordFile: writePasswordFile(t, masterPassword),
		},
	}
}

func runLookup(t *testing.T, cfg *config.Config, env *testEnv, args ...string) (string, error) {
	t.Helper()

	cmd := &cobra.Command{Use: "kpasscli", SilenceUsage: true, SilenceErrors: true}
	attachLookup(cmd, cfg, env.rt)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	// A nil slice makes cobra fall back to os.Args.
	cmd.SetArgs(append([]string{}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLookup_KeePass(t *testing.T) {
	t.Parallel()

	cfg := keepassConfig(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "default field", args: []string{"-i", "email"}, want: "mail-pass\n"},
		{name: "positional item", args: []string{"Email", "-f", "UserName"}, want: "me@example.com\n"},
		{name: "absolute path", args: []string{"/Work/github", "-f", "url"}, want: "https://github.com\n"},
		{name: "exact case-sensitive", args: []string{"-i", "Email", "-e", "-c", "-f", "title"}, want: "Email\n"},
		{name: "totp", args: []string{"/Work/github", "--totp"}, want: "94287082\n"},
		{name: "password and totp", args: []string{"/Work/github", "-T"}, want: "hunter294287082\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := runLookup(t, cfg, newTestEnv(), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestLookup_KeePassFailures(t *testing.T) {
	t.Parallel()

	cfg := keepassConfig(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "ambiguous",
			args:     []string{"github"},
			contains: []string{"/Work/github", "/Personal/github", "Pass one of the listed paths"},
			check: func(t *testing.T, err error) {
				var ambiguous credential.AmbiguousMatchError
				assert.ErrorAs(t, err, &ambiguous)
			},
		},
		{
			name:     "case-sensitive miss",
			args:     []string{"-i", "EMAIL", "-c"},
			contains: []string{`no items found for "EMAIL"`},
			check: func(t *testing.T, err error) {
				var notFound credential.NoItemsFoundError
				assert.ErrorAs(t, err, &notFound)
			},
		},
		{
			name:     "missing field",
			args:     []string{"-i", "email", "-f", "pin"},
			contains: []string{"--show-all"},
			check: func(t *testing.T, err error) {
				var noField credential.FieldNotFoundError
				assert.ErrorAs(t, err, &noField)
			},
		},
		{
			name: "path names a group",
			args: []string{"/Work"},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, tree.ErrPathIsGroup)
			},
		},
		{
			name:     "totp without otp field",
			args:     []string{"-i", "email", "-t"},
			contains: []string{"field 'otp' not found"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := runLookup(t, cfg, newTestEnv(), tt.args...)
			require.Error(t, err)
			assert.Empty(t, out)
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestLookup_ShowAll(t *testing.T) {
	t.Parallel()

	out, err := runLookup(t, keepassConfig(t), newTestEnv(), "/Work/github", "--show-all")
	require.NoError(t, err)

	assert.Contains(t, out, "Entry Details:")
	assert.Contains(t, out, "Path: /Work/github")
	assert.Contains(t, out, "Username: octocat")
	assert.Contains(t, out, "Password: hunter2")
	assert.Contains(t, out, "otp: "+rfcOTP)
}

func TestLookup_Clipboard(t *testing.T) {
	t.Parallel()

	cfg := keepassConfig(t)
	cfg.Definition.ClipboardTimeout = 15
	env := newTestEnv()

	out, err := runLookup(t, cfg, env, "-i", "email", "--clip")
	require.NoError(t, err)

	assert.Empty(t, out)
	assert.Equal(t, []string{"mail-pass"}, env.clipboard.writes)
	assert.Equal(t, []time.Duration{15 * time.Second}, env.spawner.after)
}

func TestLookup_DefaultOutputFromConfig(t *testing.T) {
	t.Parallel()

	cfg := keepassConfig(t)
	cfg.Definition.DefaultOutput = "clipboard"
	env := newTestEnv()

	_, err := runLookup(t, cfg, env, "-i", "email")
	require.NoError(t, err)
	assert.Equal(t, []string{"mail-pass"}, env.clipboard.writes)
	assert.Empty(t, env.spawner.after, "clipboard_timeout 0 never clears")

	out, err := runLookup(t, cfg, env, "-i", "email", "-o", "stdout")
	require.NoError(t, err)
	assert.Equal(t, "mail-pass\n", out)
}

func TestLookup_FlagValidation(t *testing.T) {
	t.Parallel()

	cfg := keepassConfig(t)

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "no item", args: nil, contains: "item parameter is required"},
		{name: "item twice", args: []string{"-i", "a", "b"}, contains: "both as argument and with --item"},
		{name: "unknown output", args: []string{"-i", "email", "-o", "printer"}, contains: `unknown output type "printer"`},
		{name: "exclusive modes", args: []string{"-i", "email", "--totp", "--show-all"}, contains: "none of the others"},
		{name: "too many args", args: []string{"a", "b"}, contains: "accepts at most 1 arg"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			_, err := runLookup(t, cfg, env, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Zero(t, env.prompter.calls)
		})
	}
}

func TestLookup_NoStoreConfigured(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Definition: &config.Definition{}}
	if os.Getenv(config.EnvDatabasePath) != "" {
		t.Skip("KPASSCLI_KDBPATH is set in this environment")
	}

	_, err := runLookup(t, cfg, newTestEnv(), "-i", "email")

	var cfgErr kerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "database_path", cfgErr.Field)
}

func TestLookup_WrongPassword(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Definition: &config.Definition{
			DatabasePath: sampleDatabase(t),
			PasswordFile: writePasswordFile(t, "not-the-master-password"),
		},
	}

	_, err := runLookup(t, cfg, newTestEnv(), "-i", "email")

	var openErr credential.StoreOpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, "keepass", openErr.Backend)
	assert.Contains(t, err.Error(), "Check the master password")
	assert.NotContains(t, err.Error(), "not-the-master-password")
}

func TestLookup_PromptsWithoutPasswordSource(t *testing.T) {
	t.Parallel()

	if os.Getenv(config.EnvPassword) != "" {
		t.Skip("KPASSCLI_KDBPASSWORD is set in this environment")
	}

	cfg := &config.Config{Definition: &config.Definition{DatabasePath: sampleDatabase(t)}}
	env := newTestEnv()

	out, err := runLookup(t, cfg, env, "-i", "email")
	require.NoError(t, err)
	assert.Equal(t, "mail-pass\n", out)
	assert.Equal(t, 1, env.prompter.calls)
}

func TestLookup_PasswordFlagOverridesConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Definition: &config.Definition{
			DatabasePath: sampleDatabase(t),
			PasswordFile: writePasswordFile(t, "wrong"),
		},
	}

	out, err := runLookup(t, cfg, newTestEnv(), "-i", "email", "-w", writePasswordFile(t, masterPassword))
	require.NoError(t, err)
	assert.Equal(t, "mail-pass\n", out)
}

func TestLookup_Bitwarden(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.executor.AddResponse("bw status", testutil.BitwardenMockResponses{}.StatusUnlocked())
	env.executor.AddResponse("bw list items --search GitHub", testutil.BitwardenMockResponses{}.Items("GitHub", "GitHub Enterprise"))

	cfg := &config.Config{Definition: &config.Definition{
		Bitwarden: backends.BitwardenConfig{SessionEnv: "KPASSCLI_TEST_UNSET_BW_SESSION"},
	}}

	out, err := runLookup(t, cfg, env, "-p", "bitwarden", "-i", "GitHub", "-e", "-f", "username")
	require.NoError(t, err)
	assert.Equal(t, "GitHub-user\n", out)
	assert.Zero(t, env.prompter.calls, "bitwarden needs no master password")

	_, err = runLookup(t, cfg, env, "-p", "bitwarden", "-i", "GitHub")
	var ambiguous credential.AmbiguousMatchError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, []string{"/bitwarden/GitHub", "/bitwarden/GitHub Enterprise"}, ambiguous.Paths)
}

func TestLookup_BitwardenLocked(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.executor.AddResponse("bw status", testutil.BitwardenMockResponses{}.StatusLocked())

	cfg := &config.Config{Definition: &config.Definition{
		Bitwarden: backends.BitwardenConfig{SessionEnv: "KPASSCLI_TEST_UNSET_BW_SESSION"},
	}}

	_, err := runLookup(t, cfg, env, "-p", "bitwarden", "-i", "GitHub")
	require.Error(t, err)
	assert.ErrorIs(t, err, backends.ErrBitwardenLocked)
	assert.Contains(t, err.Error(), "bw unlock")
}

func TestLookup_Keychain(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.keychain.SetSecret("github.com", "alice", []byte("s3cret"))
	env.keychain.SetSecret("gitlab.com", "alice", []byte("other"))

	cfg := &config.Config{Definition: &config.Definition{
		Keychain: backends.KeychainConfig{Account: "alice"},
	}}

	out, err := runLookup(t, cfg, env, "--kdbpath", "keychain", "-i", "github")
	require.NoError(t, err)
	assert.Equal(t, "s3cret\n", out)

	out, err = runLookup(t, cfg, env, "-p", "KEYCHAIN", "/keychain/gitlab.com/alice", "-f", "username")
	require.NoError(t, err)
	assert.Equal(t, "alice\n", out)
}

func TestLookup_WritesMetricsTextfile(t *testing.T) {
	t.Parallel()

	cfg := keepassConfig(t)
	cfg.Definition.MetricsTextfile = filepath.Join(t.TempDir(), "kpasscli.prom")

	_, err := runLookup(t, cfg, newTestEnv(), "-i", "email")
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.Definition.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `kpasscli_lookups_total{backend="keepass",result="found"} 1`)
	assert.Contains(t, string(data), "kpasscli_phase_duration_seconds")
}

func TestLookup_LoadsConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := "database_path: " + sampleDatabase(t) + "\n" +
		"password_file: " + writePasswordFile(t, masterPassword) + "\n"
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))

	out, err := runLookup(t, &config.Config{Path: configFile}, newTestEnv(), "-i", "email")
	require.NoError(t, err)
	assert.Equal(t, "mail-pass\n", out)
}
