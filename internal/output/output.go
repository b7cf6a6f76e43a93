// Package output delivers a looked-up value to stdout or the system
// clipboard.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	kerrors "github.com/systmms/kpasscli/internal/errors"
	"github.com/systmms/kpasscli/internal/logging"
)

// Type is an output destination.
type Type string

const (
	TypeStdout    Type = "stdout"
	TypeClipboard Type = "clipboard"
)

// ParseType accepts "stdout" or "clipboard" in any case.
func ParseType(s string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeStdout:
		return TypeStdout, true
	case TypeClipboard:
		return TypeClipboard, true
	}
	return "", false
}

// ResolveType picks the destination: --out, then --clip, then
// $KPASSCLI_OUT, then default_output, then stdout. Unrecognised values
// are skipped.
func ResolveType(flagOut string, clip bool, env string, configured string) Type {
	if t, ok := ParseType(flagOut); ok {
		return t
	}
	if clip {
		return TypeClipboard
	}
	if t, ok := ParseType(env); ok {
		return t
	}
	if t, ok := ParseType(configured); ok {
		return t
	}
	return TypeStdout
}

// Clipboard is the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard uses github.com/atotto/clipboard, which drives
// pbcopy, wl-copy, xclip or xsel depending on the platform.
type SystemClipboard struct{}

// WriteAll replaces the clipboard contents.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Handler writes values to the selected destination.
type Handler struct {
	Type       Type
	Stdout     io.Writer
	Clipboard  Clipboard
	ClearAfter time.Duration
	Spawner    Spawner
	Logger     *logging.Logger
}

// NewHandler creates a handler for the real stdout and clipboard.
// clearAfterSeconds <= 0 disables clipboard clearing.
func NewHandler(t Type, clearAfterSeconds int, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		Type:       t,
		Stdout:     os.Stdout,
		Clipboard:  SystemClipboard{},
		ClearAfter: time.Duration(clearAfterSeconds) * time.Second,
		Spawner:    SelfSpawner{},
		Logger:     logger,
	}
}

// Output delivers value. Clipboard writes schedule a background clear when
// ClearAfter is positive; the clear runs in a detached process and is
// never waited for.
func (h *Handler) Output(value string) error {
	if h.Type != TypeClipboard {
		_, err := fmt.Fprintln(h.Stdout, value)
		return err
	}

	if err := h.Clipboard.WriteAll(value); err != nil {
		return kerrors.UserError{
			Message:    "Failed to copy to clipboard",
			Details:    err.Error(),
			Suggestion: "Install wl-clipboard, xclip or xsel, or use --out stdout",
			Err:        err,
		}
	}

	if h.ClearAfter <= 0 {
		return nil
	}
	if err := h.Spawner.SpawnClear(h.ClearAfter); err != nil {
		return fmt.Errorf("failed to schedule clipboard clearing: %w", err)
	}
	if h.Logger != nil {
		h.Logger.Info("Clipboard will be cleared in %d seconds", int(h.ClearAfter/time.Second))
	}
	return nil
}
