package commands

import (
	"fmt"
	"io"

	kerrors "github.com/systmms/kpasscli/internal/errors"
)

// PrintError writes err to w the way the CLI reports a failed run. Known
// low-level causes are replaced by a message with a suggestion.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", kerrors.SimplifyError(err))
}
