//go:build !windows

package session

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// processGroup is a Job for a child started with its own session, so its
// pid doubles as the id of the group holding it and its descendants
type processGroup struct {
	cmd    *exec.Cmd
	pgid   int
	exited chan struct{}
	err    error
}

// newProcessGroup takes over a started command and reaps it in the background
func newProcessGroup(cmd *exec.Cmd) *processGroup {
	pg := &processGroup{
		cmd:    cmd,
		pgid:   cmd.Process.Pid,
		exited: make(chan struct{}),
	}
	go pg.reap()
	return pg
}

func (pg *processGroup) reap() {
	pg.err = pg.cmd.Wait()
	close(pg.exited)
}

func (pg *processGroup) PID() int {
	return pg.pgid
}

func (pg *processGroup) Terminate() error {
	return pg.signal(unix.SIGTERM)
}

func (pg *processGroup) Kill() error {
	return pg.signal(unix.SIGKILL)
}

// signal sends sig to every process in the group. A group that no longer
// exists is not an error.
func (pg *processGroup) signal(sig syscall.Signal) error {
	err := unix.Kill(-pg.pgid, sig)
	if err == nil || errors.Is(err, unix.ESRCH) {
		return nil
	}
	return fmt.Errorf("failed to send %v to process group %d: %w", sig, pg.pgid, err)
}

func (pg *processGroup) Wait(timeout time.Duration) bool {
	return waitExited(pg.exited, timeout)
}

func (pg *processGroup) Exited() <-chan struct{} {
	return pg.exited
}

func (pg *processGroup) ExitCode() int {
	select {
	case <-pg.exited:
	default:
		return -1
	}
	if pg.cmd.ProcessState == nil {
		return -1
	}
	return pg.cmd.ProcessState.ExitCode()
}
