//go:build !windows

package session

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/goselect"
	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// select(2) cannot watch descriptors past FD_SETSIZE
const selectLimit = 1024

// openDevice allocates a pseudoterminal pair sized cols x rows
func openDevice(cols, rows int) (master, tty *os.File, err error) {
	master, tty, err = pty.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to allocate pseudoterminal: %w", err)
	}

	size := &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}
	if err := pty.Setsize(master, size); err != nil {
		master.Close()
		tty.Close()
		return nil, nil, fmt.Errorf("failed to set window size: %w", err)
	}
	return master, tty, nil
}

// spawn starts cmd on the subordinate end as leader of a new session with
// tty as its controlling terminal
func spawn(cmd *exec.Cmd, tty *os.File) (Job, error) {
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return newProcessGroup(cmd), nil
}

// waitReady waits up to timeout for fd to become readable, and when
// checkWrite is set also reports whether it is writable
func waitReady(fd uintptr, timeout time.Duration, checkWrite bool) (readable, writable bool, err error) {
	if fd >= selectLimit {
		return pollReady(fd, timeout, checkWrite)
	}

	var rset, wset goselect.FDSet
	rset.Set(fd)
	wp := (*goselect.FDSet)(nil)
	if checkWrite {
		wset.Set(fd)
		wp = &wset
	}

	if err := goselect.Select(int(fd)+1, &rset, wp, nil, timeout); err != nil {
		return false, false, err
	}
	return rset.IsSet(fd), checkWrite && wset.IsSet(fd), nil
}

// pollReady is the poll(2) version of waitReady for large descriptors
func pollReady(fd uintptr, timeout time.Duration, checkWrite bool) (readable, writable bool, err error) {
	events := int16(unix.POLLIN)
	if checkWrite {
		events |= unix.POLLOUT
	}
	fds := []unix.PollFd{{Fd: int32(fd), Events: events}}

	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil || n == 0 {
		return false, false, err
	}

	revents := fds[0].Revents
	// hangup is reported as readable so the read surfaces end-of-stream
	readable = revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0
	writable = checkWrite && revents&unix.POLLOUT != 0
	return readable, writable, nil
}
