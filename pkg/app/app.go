// Package app hosts a session in a full-screen terminal UI or headless
package app

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"pty-terminal/pkg/history"
	"pty-terminal/pkg/session"
	"pty-terminal/pkg/terminal"
)

// time the UI waits for the session to finish after asking it to stop
const stopTimeout = 5 * time.Second

// AppConfig contains application configuration
type AppConfig struct {
	Session          session.Config
	Command          []string
	TranscriptSize   int
	TranscriptFile   string
	TranscriptFormat history.FileFormat
	Headless         bool
}

// DefaultAppConfig returns default application configuration
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Session:          session.DefaultConfig(),
		TranscriptSize:   history.DefaultMaxSize,
		TranscriptFormat: history.FormatTimestamped,
	}
}

// Validate checks if the application configuration is valid
func (c AppConfig) Validate() error {
	if len(c.Command) == 0 || c.Command[0] == "" {
		return fmt.Errorf("command cannot be empty")
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("invalid session config: %w", err)
	}
	if c.TranscriptSize < 0 {
		return fmt.Errorf("transcript size cannot be negative")
	}
	return nil
}

// frameEvent carries a rendered frame from the pump to the UI loop
type frameEvent struct {
	tcell.EventTime
	frame string
}

func newFrameEvent(frame string) *frameEvent {
	ev := &frameEvent{frame: frame}
	ev.SetEventNow()
	return ev
}

// exitEvent tells the UI loop that the session has ended
type exitEvent struct {
	tcell.EventTime
}

func newExitEvent() *exitEvent {
	ev := &exitEvent{}
	ev.SetEventNow()
	return ev
}

// Application shows one session on a tcell screen and forwards keys to it
type Application struct {
	config     AppConfig
	logger     logrus.FieldLogger
	screen     tcell.Screen
	session    *session.Session
	transcript *history.Transcript
	help       *overlay
	actions    *menu

	mu        sync.RWMutex
	isRunning bool
	lastFrame string
}

// NewApplication creates an application drawing on screen. A nil screen
// selects the real terminal.
func NewApplication(config AppConfig, screen tcell.Screen, logger logrus.FieldLogger) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, NewAppError(ErrorConfig, "invalid configuration", err)
	}
	if logger == nil {
		logger = discardLogger()
	}

	if screen == nil {
		var err error
		screen, err = tcell.NewScreen()
		if err != nil {
			return nil, NewAppError(ErrorScreen, "failed to create screen", err)
		}
	}

	sess, err := session.New(config.Session)
	if err != nil {
		return nil, NewAppError(ErrorConfig, "invalid session config", err)
	}
	sess.SetLogger(logger.WithField("session", sess.ID()))

	app := &Application{
		config:     config,
		logger:     logger,
		screen:     screen,
		session:    sess,
		transcript: history.NewTranscript(config.TranscriptSize),
		help:       newOverlay(screen),
	}
	app.actions = app.newActionMenu()
	return app, nil
}

// newActionMenu builds the Ctrl+T menu
func (app *Application) newActionMenu() *menu {
	m := newMenu("Session", app.screen)
	sendControl := func(r rune) func() error {
		return func() error {
			app.send(terminal.KeyEvent{Key: terminal.KeyControl, Rune: r})
			return nil
		}
	}

	m.addItem("Send Ctrl+C", "c", sendControl('c'))
	m.addItem("Send Ctrl+Z", "z", sendControl('z'))
	m.addItem("Send Ctrl+Q", "q", sendControl('q'))
	m.addItem("Send Ctrl+T", "t", sendControl('t'))
	m.addSeparator()
	m.addItem("Save transcript", "s", func() error {
		if err := app.transcript.Save(app.config.TranscriptFile, app.config.TranscriptFormat); err != nil {
			return NewAppError(ErrorTranscript, "failed to save transcript", err)
		}
		app.logger.Infof("transcript saved to %s", app.config.TranscriptFile)
		return nil
	})
	m.enableItem(5, app.config.TranscriptFile != "")
	m.addItem("Clear transcript", "l", func() error {
		app.transcript.Clear()
		return nil
	})
	m.addItem("Help", "h", func() error {
		app.help.show(helpText)
		return nil
	})
	m.addItem("Stop session", "x", func() error {
		go app.session.Stop()
		return nil
	})

	m.onClose = func() {
		app.drawFrame(app.currentFrame())
	}
	m.onError = func(err error) {
		app.logger.Warnf("menu action: %v", err)
	}
	return m
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Start initializes the screen and spawns the command
func (app *Application) Start() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.isRunning {
		return fmt.Errorf("application is already running")
	}

	if err := app.screen.Init(); err != nil {
		return NewAppError(ErrorScreen, "failed to initialize screen", err)
	}
	app.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset))
	app.screen.HideCursor()
	app.screen.Clear()

	app.session.SetCallbacks(session.Callbacks{
		OnFrame: func(frame string) {
			// PostEvent fails only when the queue is full; the next frame replaces this one
			_ = app.screen.PostEvent(newFrameEvent(frame))
		},
		OnExit: func() {
			app.postExit()
		},
		OnOutput: app.transcript.RecordOutput,
	})

	if err := app.session.Start(app.config.Command); err != nil {
		app.screen.Fini()
		return NewAppError(ErrorSession, "failed to start session", err)
	}

	app.isRunning = true
	app.drawFrame(app.session.Frame())
	app.logger.Debugf("application started for %v", app.config.Command)
	return nil
}

// postExit delivers the exit event even when the queue is full, since
// the UI loop only returns once it sees it
func (app *Application) postExit() {
	for i := 0; i < 100; i++ {
		if app.screen.PostEvent(newExitEvent()) == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	app.logger.Warnf("could not deliver exit event")
}

// Run processes UI events until the session ends. It must be called on
// the goroutine that called Start.
func (app *Application) Run() {
	for {
		ev := app.screen.PollEvent()
		if ev == nil {
			return
		}

		switch ev := ev.(type) {
		case *frameEvent:
			app.mu.Lock()
			app.lastFrame = ev.frame
			app.mu.Unlock()
			if !app.help.visible() {
				app.drawFrame(ev.frame)
			}
		case *exitEvent:
			app.logger.Debugf("session ended, leaving UI loop")
			return
		case *tcell.EventKey:
			app.handleKeyEvent(ev)
		case *tcell.EventResize:
			app.screen.Sync()
			app.drawFrame(app.currentFrame())
		}
	}
}

// handleKeyEvent handles application keys and forwards the rest
func (app *Application) handleKeyEvent(ev *tcell.EventKey) {
	if app.actions.handleKey(ev) {
		return
	}
	if app.help.visible() {
		app.help.hide()
		app.drawFrame(app.currentFrame())
		if ev.Key() == tcell.KeyF1 {
			return
		}
	}

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		app.logger.Debugf("Ctrl+Q pressed, stopping session")
		// Stop may wait out the grace period, keep the UI responsive
		go app.session.Stop()
		return
	case tcell.KeyF1:
		app.help.show(helpText)
		return
	case tcell.KeyCtrlT:
		app.actions.show()
		return
	}

	key, ok := terminal.FromTcell(ev)
	if !ok {
		app.logger.Debugf("ignoring key %v", ev.Name())
		return
	}
	if key.Key == terminal.KeyRune && app.session.Snapshot().AltScreen {
		key = terminal.PagerEvent(key.Rune)
	}
	app.send(key)
}

// send translates a key and queues it for the child
func (app *Application) send(key terminal.KeyEvent) {
	data := terminal.Translate(key)
	if len(data) == 0 {
		return
	}
	app.session.Write(data)
	app.transcript.RecordInput(data)
}

func (app *Application) currentFrame() string {
	app.mu.RLock()
	defer app.mu.RUnlock()
	if app.lastFrame == "" {
		return app.session.Frame()
	}
	return app.lastFrame
}

// drawFrame replaces the screen content with frame
func (app *Application) drawFrame(frame string) {
	app.screen.Clear()
	for y, line := range strings.Split(frame, "\n") {
		drawString(app.screen, 0, y, line, tcell.StyleDefault)
	}
	app.screen.Show()
}

// Stop ends the session, restores the terminal and saves the transcript
func (app *Application) Stop() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if !app.isRunning {
		return nil
	}
	app.isRunning = false

	app.session.Stop()
	select {
	case <-app.session.Done():
	case <-time.After(stopTimeout):
		app.logger.Warnf("session did not finish within %v", stopTimeout)
	}

	app.screen.Fini()

	if app.config.TranscriptFile != "" {
		if err := app.transcript.Save(app.config.TranscriptFile, app.config.TranscriptFormat); err != nil {
			return NewAppError(ErrorTranscript, "failed to save transcript", err)
		}
		app.logger.Infof("transcript saved to %s", app.config.TranscriptFile)
	}
	return nil
}

// Session returns the hosted session
func (app *Application) Session() *session.Session {
	return app.session
}

// Transcript returns the recorded input and output
func (app *Application) Transcript() *history.Transcript {
	return app.transcript
}

// IsRunning reports whether the application is running
func (app *Application) IsRunning() bool {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.isRunning
}

// GetStats returns session statistics
func (app *Application) GetStats() session.Stats {
	return app.session.GetStats()
}
