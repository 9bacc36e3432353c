package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"pty-terminal/pkg/session"
)

// Runner provides a high-level interface to run a command in the best
// available host: the full-screen UI on a terminal, headless otherwise
type Runner struct {
	config AppConfig
	logger logrus.FieldLogger
	stdin  *os.File
	stdout *os.File
}

// NewRunner creates a new application runner
func NewRunner(config AppConfig, logger logrus.FieldLogger) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, NewAppError(ErrorConfig, "invalid configuration", err)
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &Runner{
		config: config,
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}, nil
}

// Interactive reports whether the runner will use the full-screen UI
func (r *Runner) Interactive() bool {
	if r.config.Headless {
		return false
	}
	return term.IsTerminal(int(r.stdin.Fd())) && term.IsTerminal(int(r.stdout.Fd()))
}

// Run runs the command and blocks until it exits or SIGINT/SIGTERM arrives
func (r *Runner) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !r.Interactive() {
		r.logger.Debugf("running headless")
		stats, err := RunHeadless(ctx, r.config, r.stdin, r.stdout, r.logger)
		if err != nil {
			return err
		}
		printSessionSummary(os.Stderr, stats)
		return nil
	}

	app, err := NewApplication(r.config, nil, r.logger)
	if err != nil {
		return err
	}
	if err := app.Start(); err != nil {
		return err
	}

	// the UI loop returns once the session has ended
	go func() {
		select {
		case <-ctx.Done():
			r.logger.Infof("received signal, stopping session")
			app.Session().Stop()
		case <-app.Session().Done():
		}
	}()
	app.Run()

	if err := app.Stop(); err != nil {
		return err
	}
	printSessionSummary(r.stdout, app.GetStats())
	return nil
}

// printSessionSummary prints a summary of the session
func printSessionSummary(w io.Writer, stats session.Stats) {
	fmt.Fprintf(w, "\n=== Session Summary ===\n")
	fmt.Fprintf(w, "Command: %s\n", strings.Join(stats.Command, " "))
	fmt.Fprintf(w, "Session: %s\n", stats.ID)
	fmt.Fprintf(w, "Duration: %v\n", stats.Duration.Round(1e6))
	fmt.Fprintf(w, "Bytes Sent: %d\n", stats.BytesSent)
	fmt.Fprintf(w, "Bytes Received: %d\n", stats.BytesReceived)
	if stats.ExitCode >= 0 {
		fmt.Fprintf(w, "Exit Code: %d\n", stats.ExitCode)
	}
	fmt.Fprintf(w, "=======================\n")
}
