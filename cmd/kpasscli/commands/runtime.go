package commands

import (
	"time"

	"github.com/systmms/kpasscli/internal/backends/contracts"
	"github.com/systmms/kpasscli/internal/output"
	"github.com/systmms/kpasscli/internal/password"
	pkgexec "github.com/systmms/kpasscli/pkg/exec"
)

// runtime holds the process collaborators of the lookup. Tests swap them
// for fakes.
type runtime struct {
	executor pkgexec.CommandExecutor

	// keychainClient is nil outside tests; the backend picks the
	// platform client.
	keychainClient contracts.KeychainClient

	clipboard output.Clipboard
	spawner   output.Spawner
	prompter  password.Prompter
	now       func() time.Time
}

func defaultRuntime() runtime {
	return runtime{
		executor:  pkgexec.DefaultExecutor(),
		clipboard: output.SystemClipboard{},
		spawner:   output.SelfSpawner{},
		prompter:  password.NewTerminalPrompter(),
		now:       time.Now,
	}
}
