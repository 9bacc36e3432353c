//go:build windows

package session

import (
	"os"
	"os/exec"
	"time"
)

func openDevice(cols, rows int) (master, tty *os.File, err error) {
	return nil, nil, ErrNotSupported
}

func spawn(cmd *exec.Cmd, tty *os.File) (Job, error) {
	return nil, ErrNotSupported
}

func waitReady(fd uintptr, timeout time.Duration, checkWrite bool) (readable, writable bool, err error) {
	return false, false, ErrNotSupported
}
