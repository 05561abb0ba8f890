// Package pid guards against running two requireflow servers at once.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/startificial/requireflow/internal/errors"
)

const (
	pidFile = "requireflow.pid"
)

// Write writes the current process ID to a PID file.
func Write() error {
	pid := os.Getpid()
	path := filepath.Join(os.TempDir(), pidFile)

	if _, err := os.Stat(path); err == nil {
		// PID file exists, check if the process is running
		bytes, err := os.ReadFile(path)
		if err != nil {
			return errors.NewAPI("failed to read PID file: "+err.Error(), 500, nil)
		}

		pid, err := strconv.Atoi(string(bytes))
		if err != nil {
			return errors.NewAPI("invalid PID file contents: "+err.Error(), 500, nil)
		}

		process, err := os.FindProcess(pid)
		if err == nil {
			if process.Signal(syscall.Signal(0)) == nil {
				return errors.NewConflict("requireflow is already running")
			}
		}
	}

	err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o600)
	if err != nil {
		return errors.NewAPI("failed to write PID file: "+err.Error(), 500, nil)
	}

	return nil
}

// Remove removes the PID file.
func Remove() error {
	path := filepath.Join(os.TempDir(), pidFile)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(path); err != nil {
		return errors.NewAPI("failed to remove PID file: "+err.Error(), 500, nil)
	}

	return nil
}
