package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/kpasscli/internal/output"
)

// NewClearClipboardCommand creates the hidden command that the clipboard
// output spawns to empty the clipboard after a delay.
func NewClearClipboardCommand() *cobra.Command {
	return newClearClipboardCommand(output.SystemClipboard{})
}

func newClearClipboardCommand(cb output.Clipboard) *cobra.Command {
	var after int

	cmd := &cobra.Command{
		Use:    output.ClearCommand,
		Short:  "Clear the clipboard after a delay",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return output.ClearAfter(cmd.Context(), time.Duration(after)*time.Second, cb)
		},
	}

	cmd.Flags().IntVar(&after, "after", 0, "Seconds to wait before clearing")
	return cmd
}
