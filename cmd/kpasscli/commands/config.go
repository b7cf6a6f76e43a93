package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/kpasscli/internal/config"
)

const configSeparator = "------------------------------------------"

// NewConfigCommand creates the config command with its init and show
// subcommands.
func NewConfigCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the configuration file",
	}
	cmd.AddCommand(
		newConfigInitCommand(cfg),
		newConfigShowCommand(cfg),
	)
	return cmd
}

func newConfigInitCommand(cfg *config.Config) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write an example configuration file",
		Long: `Write a commented example configuration to the --config path
(default ~/.config/kpasscli/config.yaml). An existing file is kept unless
--force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(cfg)
			if err := config.CreateExample(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example config file '%s' created successfully.\n", config.ExpandHome(path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	return cmd
}

func newConfigShowCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the configuration in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), cfg)
		},
	}
}

func printConfig(w io.Writer, cfg *config.Config) error {
	rendered, err := cfg.Definition.Render()
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}

	fmt.Fprintf(w, "Current used Configuration: %s\n", config.ExpandHome(configPath(cfg)))
	fmt.Fprintln(w, configSeparator)
	if string(rendered) != "{}\n" {
		fmt.Fprint(w, string(rendered))
	}
	for _, name := range []string{config.EnvDatabasePath, config.EnvPassword, config.EnvOutput} {
		if value := os.Getenv(name); value != "" {
			fmt.Fprintf(w, "%s=%s (overrides the file)\n", name, value)
		}
	}
	fmt.Fprintln(w, configSeparator)
	return nil
}

func configPath(cfg *config.Config) string {
	if cfg.Path == "" {
		return config.DefaultPath()
	}
	return cfg.Path
}
