package session

import (
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pty-terminal/pkg/terminal"
)

// time allowed for the reaper after SIGKILL
const killWait = 2 * time.Second

// Logger is the logging surface a session needs; *logrus.Logger and
// *logrus.Entry satisfy it
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Callbacks are invoked on the session's pump goroutine. Receivers that
// own a UI must hand the data over to their own event loop.
type Callbacks struct {
	// OnFrame receives the rendered screen after every chunk of output
	OnFrame func(frame string)
	// OnExit is called exactly once when the session ends
	OnExit func()
	// OnOutput receives each raw chunk before it is interpreted
	OnOutput func(chunk []byte)
}

type sessionState int

const (
	stateIdle sessionState = iota
	stateRunning
	stateStopped
)

// String returns the state name
func (s sessionState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRunning:
		return "running"
	case stateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time summary of a session
type Stats struct {
	ID            string
	Command       []string
	PID           int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	BytesSent     int64
	BytesReceived int64
	ExitCode      int
}

// Session runs one child process on a pseudoterminal.
//
// After Start only the pump goroutine touches the master descriptor and the
// screen. Write, Stop and the accessors are safe from any goroutine.
type Session struct {
	id        string
	config    Config
	logger    Logger
	callbacks Callbacks

	mu        sync.Mutex
	state     sessionState
	command   []string
	job       Job
	startTime time.Time
	endTime   time.Time

	running atomic.Bool
	queue   writeQueue

	screen      *terminal.ScreenBuffer
	interpreter *terminal.Interpreter

	frameMu  sync.RWMutex
	frame    string
	snapshot terminal.Snapshot

	bytesSent     atomic.Int64
	bytesReceived atomic.Int64

	stopOnce sync.Once
	exitOnce sync.Once
	doneOnce sync.Once
	done     chan struct{}
}

// New creates a stopped session. Zero fields of cfg take their defaults.
func New(cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	screen := terminal.NewScreenBuffer(cfg.Cols, cfg.Rows)
	s := &Session{
		id:          uuid.NewString(),
		config:      cfg,
		logger:      discardLogger(),
		screen:      screen,
		interpreter: terminal.NewInterpreter(screen),
		done:        make(chan struct{}),
	}
	s.snapshot = screen.Snapshot()
	s.frame = terminal.Render(s.snapshot)
	s.interpreter.SetLogger(s.logger)
	return s, nil
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// SetLogger sets the logger. It must be called before Start.
func (s *Session) SetLogger(logger Logger) {
	if logger == nil {
		logger = discardLogger()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
	s.interpreter.SetLogger(logger)
}

// SetCallbacks registers the frame, exit and output callbacks. It must be
// called before Start.
func (s *Session) SetCallbacks(callbacks Callbacks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = callbacks
}

// ID returns the session's unique id
func (s *Session) ID() string {
	return s.id
}

// Config returns the session configuration with defaults applied
func (s *Session) Config() Config {
	return s.config
}

// Start spawns command on a new pseudoterminal and starts pumping its
// output. It fails with ErrSessionClosed once the session has been stopped.
func (s *Session) Start(command []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateRunning:
		return ErrAlreadyStarted
	case stateStopped:
		return ErrSessionClosed
	}
	if len(command) == 0 || command[0] == "" {
		return ErrEmptyCommand
	}
	command = append([]string(nil), command...)

	master, tty, err := openDevice(s.config.Cols, s.config.Rows)
	if err != nil {
		return &StartError{Op: "open", Command: command, Err: err}
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Env = s.config.environment(os.Environ())
	cmd.Dir = s.config.Dir

	job, err := spawn(cmd, tty)
	if err != nil {
		master.Close()
		tty.Close()
		return &StartError{Op: "spawn", Command: command, Err: err}
	}

	// the child holds its own copy of the subordinate end
	if err := tty.Close(); err != nil {
		s.logger.Debugf("session %s: closing subordinate end: %v", s.id, err)
	}

	s.command = command
	s.job = job
	s.startTime = time.Now()
	s.state = stateRunning
	s.running.Store(true)

	s.logger.Infof("session %s: started %v (pid %d, %dx%d)", s.id, command, job.PID(), s.config.Cols, s.config.Rows)

	go s.pump(master)
	return nil
}

// Write queues data for the child's input. It never blocks and does
// nothing unless the session is running.
func (s *Session) Write(data []byte) {
	if !s.running.Load() {
		return
	}
	s.queue.push(data)
}

// Stop ends the session: the child's process group is sent SIGTERM, then
// SIGKILL if it outlives the grace period. Stop is idempotent and safe to
// call from any goroutine, including from the session's callbacks. The
// exit callback runs once the pump has released the pseudoterminal; use
// Done to wait for it.
func (s *Session) Stop() {
	s.running.Store(false)

	s.mu.Lock()
	prev := s.state
	s.state = stateStopped
	job := s.job
	s.mu.Unlock()

	if prev == stateIdle {
		// never started, nothing will close done
		s.doneOnce.Do(func() { close(s.done) })
		return
	}
	if job == nil {
		return
	}

	s.stopOnce.Do(func() {
		s.teardown(job)
	})
}

// teardown terminates the child's group and waits for it to be reaped
func (s *Session) teardown(job Job) {
	if err := job.Terminate(); err != nil {
		s.logger.Warnf("session %s: %v", s.id, err)
	}
	if job.Wait(s.config.GracePeriod) {
		s.logger.Debugf("session %s: child %d exited with code %d", s.id, job.PID(), job.ExitCode())
		return
	}

	s.logger.Warnf("session %s: child %d still running after %v, killing", s.id, job.PID(), s.config.GracePeriod)
	if err := job.Kill(); err != nil {
		s.logger.Warnf("session %s: %v", s.id, err)
	}
	if !job.Wait(killWait) {
		s.logger.Warnf("session %s: child %d was not reaped", s.id, job.PID())
	}
}

// Done is closed after the session has ended and the exit callback returned
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// IsRunning reports whether the session is running
func (s *Session) IsRunning() bool {
	return s.running.Load()
}

// Frame returns the most recently rendered frame
func (s *Session) Frame() string {
	s.frameMu.RLock()
	defer s.frameMu.RUnlock()
	return s.frame
}

// Snapshot returns the screen as of the most recent frame
func (s *Session) Snapshot() terminal.Snapshot {
	s.frameMu.RLock()
	defer s.frameMu.RUnlock()
	return s.snapshot
}

// PID returns the child's process id, or 0 before Start
func (s *Session) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return 0
	}
	return s.job.PID()
}

// ExitCode returns the child's exit status, or -1 while it has not been reaped
func (s *Session) ExitCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return -1
	}
	return s.job.ExitCode()
}

// GetStats returns a summary of the session
func (s *Session) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		ID:            s.id,
		Command:       append([]string(nil), s.command...),
		StartTime:     s.startTime,
		EndTime:       s.endTime,
		BytesSent:     s.bytesSent.Load(),
		BytesReceived: s.bytesReceived.Load(),
		ExitCode:      -1,
	}
	if s.job != nil {
		stats.PID = s.job.PID()
		stats.ExitCode = s.job.ExitCode()
	}

	switch {
	case s.startTime.IsZero():
	case s.endTime.IsZero():
		stats.Duration = time.Since(s.startTime)
	default:
		stats.Duration = s.endTime.Sub(s.startTime)
	}
	return stats
}

// consume hands one chunk of output to the screen and the callbacks
func (s *Session) consume(chunk []byte) {
	s.bytesReceived.Add(int64(len(chunk)))
	if cb := s.callbacks.OnOutput; cb != nil {
		cb(chunk)
	}

	s.interpreter.Feed(chunk)
	snapshot := s.screen.Snapshot()
	frame := terminal.Render(snapshot)

	s.frameMu.Lock()
	s.frame = frame
	s.snapshot = snapshot
	s.frameMu.Unlock()

	if cb := s.callbacks.OnFrame; cb != nil {
		cb(frame)
	}
}

// finish runs once on the pump goroutine after the loop ends
func (s *Session) finish(master *os.File) {
	s.Stop()

	if err := master.Close(); err != nil {
		s.logger.Debugf("session %s: closing master: %v", s.id, err)
	}
	if entries, _ := s.queue.len(); entries > 0 {
		s.logger.Debugf("session %s: discarding %d queued writes", s.id, entries)
	}
	s.queue.reset()

	s.mu.Lock()
	s.endTime = time.Now()
	s.mu.Unlock()

	s.logger.Infof("session %s: ended", s.id)

	s.exitOnce.Do(func() {
		if cb := s.callbacks.OnExit; cb != nil {
			cb()
		}
	})
	s.doneOnce.Do(func() { close(s.done) })
}
