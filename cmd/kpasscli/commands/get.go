package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/kpasscli/internal/backends"
	"github.com/systmms/kpasscli/internal/config"
	kerrors "github.com/systmms/kpasscli/internal/errors"
	"github.com/systmms/kpasscli/internal/logging"
	"github.com/systmms/kpasscli/internal/lookup"
	"github.com/systmms/kpasscli/internal/metrics"
	"github.com/systmms/kpasscli/internal/output"
	"github.com/systmms/kpasscli/internal/password"
	"github.com/systmms/kpasscli/pkg/credential"
)

const getLong = `Retrieve one field of one credential entry.

The store is a KeePass database file, or one of the keywords "keychain"
(the OS keychain) and "bitwarden" (a vault unlocked with the bw CLI). It is
taken from --kdbpath, then KPASSCLI_KDBPATH, then database_path in the
config file.

The item is matched against entry titles, as a case-insensitive substring
unless --case-sensitive or --exact-match is given. An item starting with
"/" is an absolute path such as /Work/github and must name exactly one
entry. The query must match exactly one entry; when several match, their
paths are listed.

Examples:
  # Print the password of the "github" entry
  kpasscli -p ~/Passwords.kdbx -i github

  # Copy the username of an entry given by path
  kpasscli get /Work/github -f UserName --clip

  # Print the current TOTP code, or password followed by the code
  kpasscli -i vpn --totp
  kpasscli -i vpn --password-totp

  # Look up a keychain item or a Bitwarden item
  kpasscli -p keychain -i github.com
  kpasscli -p bitwarden -i GitHub -f username`

type lookupOptions struct {
	kdbPath       string
	kdbPassword   string
	item          string
	fieldName     string
	out           string
	clip          bool
	caseSensitive bool
	exactMatch    bool
	showAll       bool
	totp          bool
	passwordTOTP  bool
}

// NewGetCommand creates the get command.
func NewGetCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [item]",
		Short: "Retrieve a field from a credential entry",
		Long:  getLong,
	}
	AttachLookup(cmd, cfg)
	return cmd
}

// AttachLookup adds the lookup flags to cmd and makes it run a lookup. The
// root command uses it so that `kpasscli -i github` works without a
// subcommand.
func AttachLookup(cmd *cobra.Command, cfg *config.Config) {
	attachLookup(cmd, cfg, defaultRuntime())
}

func attachLookup(cmd *cobra.Command, cfg *config.Config, rt runtime) {
	opts := &lookupOptions{}

	cmd.Args = cobra.MaximumNArgs(1)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return opts.run(cmd, args, cfg, rt)
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.kdbPath, "kdbpath", "p", "", "Store location: a .kdbx file, keychain or bitwarden")
	flags.StringVarP(&opts.kdbPassword, "kdbpassword", "w", "", "File or executable providing the master password")
	flags.StringVarP(&opts.item, "item", "i", "", "Entry title or absolute path to look up")
	flags.StringVarP(&opts.fieldName, "fieldname", "f", lookup.DefaultField, "Field to retrieve")
	flags.StringVarP(&opts.out, "out", "o", "", "Output destination: stdout or clipboard")
	flags.BoolVarP(&opts.clip, "clip", "C", false, "Copy the value to the clipboard")
	flags.BoolVarP(&opts.caseSensitive, "case-sensitive", "c", false, "Match titles case-sensitively")
	flags.BoolVarP(&opts.exactMatch, "exact-match", "e", false, "Require the whole title to match")
	flags.BoolVar(&opts.showAll, "show-all", false, "Print every field of the entry")
	flags.BoolVarP(&opts.totp, "totp", "t", false, "Print the current TOTP code")
	flags.BoolVarP(&opts.passwordTOTP, "password-totp", "T", false, "Print the password followed by the current TOTP code")

	cmd.MarkFlagsMutuallyExclusive("totp", "password-totp", "show-all")
	cmd.MarkFlagsMutuallyExclusive("out", "clip")
}

func (o *lookupOptions) run(cmd *cobra.Command, args []string, cfg *config.Config, rt runtime) error {
	item, err := o.query(args)
	if err != nil {
		return err
	}
	if o.out != "" {
		if _, ok := output.ParseType(o.out); !ok {
			return kerrors.UserError{
				Message:    fmt.Sprintf("unknown output type %q", o.out),
				Suggestion: "Use --out stdout or --out clipboard",
			}
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.Definition == nil {
		if err := cfg.Load(); err != nil {
			return err
		}
	}
	def := cfg.Definition

	location, err := cfg.DatabaseLocation(o.kdbPath)
	if err != nil {
		return err
	}

	var m *metrics.LookupMetrics
	if def.MetricsTextfile != "" {
		m = metrics.New()
		defer func() {
			if err := m.WriteTextfile(def.MetricsTextfile); err != nil {
				logger.Warn("failed to write metrics to %s: %v", def.MetricsTextfile, err)
			}
		}()
	}

	ctx := cmd.Context()
	kind := credential.SelectKind(location)

	svc, err := lookup.Open(ctx, backends.Options{
		Location: location,
		KeyFile:  def.KeyFile,
		Password: &password.Resolver{
			Flag:       o.kdbPassword,
			Env:        os.Getenv(config.EnvPassword),
			File:       def.PasswordFile,
			Executable: def.PasswordExecutable,
			Executor:   rt.executor,
			Prompter:   rt.prompter,
			Logger:     logger,
		},
		Keychain:       def.Keychain,
		Bitwarden:      def.Bitwarden,
		Executor:       rt.executor,
		KeychainClient: rt.keychainClient,
		Logger:         logger,
	}, m, lookup.WithClock(rt.now))
	if err != nil {
		return kerrors.BackendError(kind.String(), "open", err)
	}

	result, err := svc.Lookup(ctx, lookup.Request{
		Query:  item,
		Field:  o.fieldName,
		Policy: credential.MatchPolicy{CaseSensitive: o.caseSensitive, Exact: o.exactMatch},
		Mode:   o.mode(),
	})
	if err != nil {
		return explainLookupError(err)
	}

	if o.showAll {
		return output.RenderEntry(cmd.OutOrStdout(), result.Entry)
	}

	outType := output.ResolveType(o.out, o.clip, os.Getenv(config.EnvOutput), def.DefaultOutput)
	logger.Debug("writing %s to %s", o.mode(), outType)

	handler := output.NewHandler(outType, def.ClipboardTimeout, logger)
	handler.Stdout = cmd.OutOrStdout()
	handler.Clipboard = rt.clipboard
	handler.Spawner = rt.spawner
	return handler.Output(result.Value)
}

func (o *lookupOptions) query(args []string) (string, error) {
	switch {
	case o.item != "" && len(args) > 0:
		return "", kerrors.UserError{
			Message:    "item given both as argument and with --item",
			Suggestion: "Pass the item once",
		}
	case o.item != "":
		return o.item, nil
	case len(args) > 0 && args[0] != "":
		return args[0], nil
	}
	return "", kerrors.UserError{
		Message:    "item parameter is required",
		Suggestion: "Use --item <title> or pass the title as an argument",
	}
}

func (o *lookupOptions) mode() lookup.Mode {
	switch {
	case o.showAll:
		return lookup.ModeShowAll
	case o.totp:
		return lookup.ModeTOTP
	case o.passwordTOTP:
		return lookup.ModePasswordTOTP
	}
	return lookup.ModeField
}

// explainLookupError attaches a suggestion to the lookup failures an
// operator can fix by changing the query.
func explainLookupError(err error) error {
	var (
		ambiguous credential.AmbiguousMatchError
		notFound  credential.NoItemsFoundError
		noField   credential.FieldNotFoundError
	)
	switch {
	case errors.As(err, &ambiguous):
		return kerrors.UserError{
			Message:    err.Error(),
			Suggestion: "Pass one of the listed paths as the item, or use --exact-match",
			Err:        err,
		}
	case errors.As(err, &notFound):
		return kerrors.UserError{
			Message:    err.Error(),
			Suggestion: "Check the item name, or drop --exact-match and --case-sensitive",
			Err:        err,
		}
	case errors.As(err, &noField):
		return kerrors.UserError{
			Message:    err.Error(),
			Suggestion: "Use --show-all to list the fields of the entry",
			Err:        err,
		}
	}
	return err
}
