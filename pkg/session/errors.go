package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyCommand is returned by Start when no program is given
	ErrEmptyCommand = errors.New("command cannot be empty")

	// ErrAlreadyStarted is returned by Start on a running session
	ErrAlreadyStarted = errors.New("session already started")

	// ErrSessionClosed is returned by Start once the session has stopped.
	// Sessions are not restartable.
	ErrSessionClosed = errors.New("session is closed")

	// ErrNotSupported is returned on platforms without pseudoterminals
	ErrNotSupported = errors.New("pseudoterminals are not supported on this platform")
)

// StartError reports which step of starting a child failed
type StartError struct {
	Op      string
	Command []string
	Err     error
}

// Error implements the error interface
func (e *StartError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, strings.Join(e.Command, " "), e.Err)
}

// Unwrap returns the underlying error
func (e *StartError) Unwrap() error {
	return e.Err
}
