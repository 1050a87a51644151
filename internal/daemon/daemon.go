// Package daemon relaunches shadow detached from the controlling terminal.
package daemon

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

// detachedEnvFlag marks a process that was started by Spawn.
const detachedEnvFlag = "SHADOW_DETACHED"

func isCharDevice(f *os.File) bool {
	if f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// Detached reports whether this process was started by Spawn.
func Detached() bool {
	return os.Getenv(detachedEnvFlag) == "1"
}

// Interactive reports whether any standard stream is a terminal.
func Interactive() bool {
	return isCharDevice(os.Stdin) || isCharDevice(os.Stdout) || isCharDevice(os.Stderr)
}

// ShouldDetach reports whether a --detach request needs a relaunch. A process
// already started by Spawn, or one with no terminal on any standard stream,
// is detached enough and keeps running in place.
func ShouldDetach(requested bool) bool {
	return shouldDetach(requested, Detached(), Interactive())
}

func shouldDetach(requested, detached, interactive bool) bool {
	return requested && !detached && interactive
}

// Command builds the command Spawn starts: the running executable with
// args, in a new session, with its standard streams on devNull.
func Command(args []string, devNull *os.File) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(err, "locating executable")
	}
	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(), detachedEnvFlag+"=1")
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd, nil
}

// Spawn starts the executable with args in a new session and returns its
// pid without waiting for it.
func Spawn(args []string) (int, error) {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return 0, errors.Wrap(err, "opening null device")
	}
	defer devNull.Close()

	cmd, err := Command(args, devNull)
	if err != nil {
		return 0, err
	}
	if err := cmd.Start(); err != nil {
		return 0, errors.Wrap(err, "starting detached process")
	}
	pid := cmd.Process.Pid
	// The child is reparented once we exit; nothing waits for it here.
	_ = cmd.Process.Release()
	return pid, nil
}
