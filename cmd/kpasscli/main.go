package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/kpasscli/cmd/kpasscli/commands"
	"github.com/systmms/kpasscli/internal/config"
	"github.com/systmms/kpasscli/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	memguard.CatchInterrupt()

	err := run()
	memguard.Purge()
	if err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile string
		noColor    bool
		debug      bool
	)

	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "kpasscli [item]",
		Short: "Look up credentials in KeePass, the OS keychain or Bitwarden",
		Long: `kpasscli retrieves a single field of a single credential entry from a
KeePass database, the OS keychain or a Bitwarden vault, and prints it or
copies it to the clipboard. Run without a subcommand it behaves like
'kpasscli get'.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Path = configFile
			cfg.Logger = logging.New(debug, noColor)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "~/.config/kpasscli/config.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	commands.AttachLookup(rootCmd, cfg)

	rootCmd.AddCommand(
		commands.NewGetCommand(cfg),
		commands.NewConfigCommand(cfg),
		commands.NewClearClipboardCommand(),
		commands.NewCompletionCommand(),
	)

	return rootCmd.Execute()
}
