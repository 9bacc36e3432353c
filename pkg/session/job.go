package session

import "time"

// Job controls a spawned child together with the process group it leads
type Job interface {
	// PID returns the child's process id, which is also its group id
	PID() int
	// Terminate asks the whole group to exit
	Terminate() error
	// Kill forcibly ends the whole group
	Kill() error
	// Wait blocks until the child has been reaped or timeout passes and
	// reports whether it was reaped
	Wait(timeout time.Duration) bool
	// Exited is closed once the child has been reaped
	Exited() <-chan struct{}
	// ExitCode returns the child's exit status, or -1 while it is running
	// or when it was ended by a signal
	ExitCode() int
}

// waitExited waits on an exited channel with a timeout
func waitExited(exited <-chan struct{}, timeout time.Duration) bool {
	if timeout <= 0 {
		select {
		case <-exited:
			return true
		default:
			return false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-exited:
		return true
	case <-timer.C:
		return false
	}
}
