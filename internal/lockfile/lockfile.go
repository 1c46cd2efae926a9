// Package lockfile guards against starting a second instance of the
// control daemon on the same host.
package lockfile

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/mutker/coolantd/internal/errors"
)

const fileName = "coolantd.pid"

// path returns the lockfile location under the OS temp directory.
func path() string {
	return filepath.Join(os.TempDir(), fileName)
}

// Acquire writes the current process ID to the lockfile, failing if a live
// process already holds it.
func Acquire() error {
	errFactory := errors.New()
	lockPath := path()

	if _, err := os.Stat(lockPath); err == nil {
		bytes, err := os.ReadFile(lockPath)
		if err != nil {
			return errFactory.Wrap(errors.ErrLockfileRead, err)
		}

		existingPID, err := strconv.Atoi(string(bytes))
		if err != nil {
			return errFactory.Wrap(errors.ErrLockfileRead, err)
		}

		process, err := os.FindProcess(existingPID)
		if err != nil {
			return errFactory.Wrap(errors.ErrLockfileRead, err)
		}

		if err := process.Signal(syscall.Signal(0)); err == nil {
			return errFactory.WithData(errors.ErrAlreadyRunning, struct{ PID int }{existingPID})
		}
	}

	if err := os.WriteFile(lockPath, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrLockfileWrite, err)
	}

	return nil
}

// Release removes the lockfile. Safe to call even if Acquire was never
// called or already failed.
func Release() error {
	errFactory := errors.New()
	lockPath := path()

	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(lockPath); err != nil {
		return errFactory.Wrap(errors.ErrLockfileRemove, err)
	}

	return nil
}
