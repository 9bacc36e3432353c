package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"pty-terminal/pkg/history"
	"pty-terminal/pkg/session"
	"pty-terminal/pkg/terminal"
)

// Headless runs a session without a screen: lines read from input are
// typed into the child, end of input sends Ctrl+D, and the final screen
// is written to output when the child exits.
type Headless struct {
	config     AppConfig
	logger     logrus.FieldLogger
	session    *session.Session
	transcript *history.Transcript
}

// NewHeadless creates a headless host for config
func NewHeadless(config AppConfig, logger logrus.FieldLogger) (*Headless, error) {
	if err := config.Validate(); err != nil {
		return nil, NewAppError(ErrorConfig, "invalid configuration", err)
	}
	if logger == nil {
		logger = discardLogger()
	}

	sess, err := session.New(config.Session)
	if err != nil {
		return nil, NewAppError(ErrorConfig, "invalid session config", err)
	}
	sess.SetLogger(logger.WithField("session", sess.ID()))

	return &Headless{
		config:     config,
		logger:     logger,
		session:    sess,
		transcript: history.NewTranscript(config.TranscriptSize),
	}, nil
}

// RunHeadless runs config without a screen and returns the session stats
func RunHeadless(ctx context.Context, config AppConfig, input io.Reader, output io.Writer, logger logrus.FieldLogger) (session.Stats, error) {
	h, err := NewHeadless(config, logger)
	if err != nil {
		return session.Stats{}, err
	}
	err = h.Run(ctx, input, output)
	return h.Session().GetStats(), err
}

// Run starts the command and blocks until it exits or ctx is cancelled
func (h *Headless) Run(ctx context.Context, input io.Reader, output io.Writer) error {
	h.session.SetCallbacks(session.Callbacks{
		OnOutput: h.transcript.RecordOutput,
	})

	if err := h.session.Start(h.config.Command); err != nil {
		return NewAppError(ErrorSession, "failed to start session", err)
	}

	if input != nil {
		go h.feed(input)
	}

	select {
	case <-h.session.Done():
	case <-ctx.Done():
		h.logger.Debugf("stopping session: %v", ctx.Err())
		h.session.Stop()
		<-h.session.Done()
	}

	for _, line := range trimTrailingBlank(terminal.RenderLines(h.session.Snapshot())) {
		if _, err := fmt.Fprintln(output, line); err != nil {
			return NewAppError(ErrorScreen, "failed to write screen", err)
		}
	}

	if h.config.TranscriptFile != "" {
		if err := h.transcript.Save(h.config.TranscriptFile, h.config.TranscriptFormat); err != nil {
			return NewAppError(ErrorTranscript, "failed to save transcript", err)
		}
	}
	return nil
}

// feed types input into the child line by line
func (h *Headless) feed(input io.Reader) {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		if !h.session.IsRunning() {
			return
		}
		h.send(scanner.Bytes())
		h.send(terminal.Translate(terminal.KeyEvent{Key: terminal.KeyEnter}))
	}
	if err := scanner.Err(); err != nil {
		h.logger.Warnf("reading input: %v", err)
	}
	h.send(terminal.Translate(terminal.KeyEvent{Key: terminal.KeyCtrlD}))
}

func (h *Headless) send(data []byte) {
	if len(data) == 0 {
		return
	}
	h.session.Write(data)
	h.transcript.RecordInput(data)
}

// Session returns the hosted session
func (h *Headless) Session() *session.Session {
	return h.session
}

// Transcript returns the recorded input and output
func (h *Headless) Transcript() *history.Transcript {
	return h.transcript
}

// trimTrailingBlank drops empty lines at the end of a screen
func trimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[:end]
}
