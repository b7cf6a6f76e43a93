package output

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// ClearCommand is the hidden subcommand run by the detached clearer.
const ClearCommand = "clear-clipboard"

// Spawner starts the background clipboard clearer.
type Spawner interface {
	SpawnClear(after time.Duration) error
}

// SelfSpawner re-executes the running binary as
// `<exe> clear-clipboard --after <seconds>` without waiting for it.
type SelfSpawner struct{}

// SpawnClear starts the clearer and releases it.
func (SelfSpawner) SpawnClear(after time.Duration) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	// Nil stdio: the child gets /dev/null and outlives this process.
	cmd := exec.Command(exe, ClearArgs(after)...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// ClearArgs returns the clearer's argument list.
func ClearArgs(after time.Duration) []string {
	return []string{ClearCommand, "--after", strconv.Itoa(int(after / time.Second))}
}

// ClearAfter waits for d, or until ctx is done, and then empties cb.
func ClearAfter(ctx context.Context, d time.Duration, cb Clipboard) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	return cb.WriteAll("")
}
