package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"pty-terminal/pkg/session"
)

func TestAppConfigValidate(t *testing.T) {
	valid := DefaultAppConfig()
	valid.Command = []string{"sh"}

	tests := []struct {
		name    string
		modify  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(c *AppConfig) {}, false},
		{"no command", func(c *AppConfig) { c.Command = nil }, true},
		{"empty program", func(c *AppConfig) { c.Command = []string{""} }, true},
		{"bad rows", func(c *AppConfig) { c.Session.Rows = 0 }, true},
		{"negative transcript", func(c *AppConfig) { c.TranscriptSize = -1 }, true},
		{"zero transcript", func(c *AppConfig) { c.TranscriptSize = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			cfg.Command = append([]string(nil), valid.Command...)
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      string
	}{
		{ErrorConfig, "config"},
		{ErrorSession, "session"},
		{ErrorScreen, "screen"},
		{ErrorTranscript, "transcript"},
		{ErrorType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.errorType.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tt.errorType, got, tt.want)
		}
	}
}

func TestAppError(t *testing.T) {
	cause := errors.New("boom")
	err := NewAppError(ErrorSession, "failed to start session", cause)

	if got, want := err.Error(), "[session] failed to start session: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}

	bare := NewAppError(ErrorConfig, "bad flag", nil)
	if got, want := bare.Error(), "[config] bad flag"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func newSimScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	screen.SetSize(width, height)
	t.Cleanup(screen.Fini)
	return screen
}

func rowText(screen tcell.Screen, y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		mainc, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(mainc)
	}
	return strings.TrimRight(b.String(), " ")
}

func TestDrawString(t *testing.T) {
	screen := newSimScreen(t, 20, 3)

	next := drawString(screen, 2, 1, "a世b", tcell.StyleDefault)
	if next != 6 {
		t.Errorf("drawString() = %d, want 6", next)
	}
	if mainc, _, _, _ := screen.GetContent(2, 1); mainc != 'a' {
		t.Errorf("cell (2,1) = %q, want 'a'", mainc)
	}
	if mainc, _, _, _ := screen.GetContent(5, 1); mainc != 'b' {
		t.Errorf("cell (5,1) = %q, want 'b'", mainc)
	}
}

func TestOverlayRestoresScreen(t *testing.T) {
	screen := newSimScreen(t, 40, 12)
	screen.SetContent(20, 6, 'x', nil, tcell.StyleDefault)

	o := newOverlay(screen)
	if o.visible() {
		t.Fatal("new overlay should be hidden")
	}

	o.show("help line\nsecond line")
	if !o.visible() {
		t.Fatal("overlay should be visible after show")
	}
	if mainc, _, _, _ := screen.GetContent(20, 6); mainc == 'x' {
		t.Error("overlay should cover the center of the screen")
	}
	if !strings.Contains(rowText(screen, 5, 40), "help line") {
		t.Errorf("row 5 = %q, want the help text", rowText(screen, 5, 40))
	}

	o.hide()
	if o.visible() {
		t.Error("overlay should be hidden after hide")
	}
	if mainc, _, _, _ := screen.GetContent(20, 6); mainc != 'x' {
		t.Errorf("cell (20,6) = %q after hide, want 'x'", mainc)
	}
}

func TestApplicationDrawFrame(t *testing.T) {
	screen := newSimScreen(t, 20, 4)
	cfg := DefaultAppConfig()
	cfg.Command = []string{"sh"}

	app, err := NewApplication(cfg, screen, nil)
	if err != nil {
		t.Fatalf("NewApplication() error = %v", err)
	}
	if app.IsRunning() {
		t.Error("application should not run before Start")
	}

	app.drawFrame("hello\n  world")
	if got := rowText(screen, 0, 20); got != "hello" {
		t.Errorf("row 0 = %q, want %q", got, "hello")
	}
	if got := rowText(screen, 1, 20); got != "  world" {
		t.Errorf("row 1 = %q, want %q", got, "  world")
	}

	app.drawFrame("next")
	if got := rowText(screen, 1, 20); got != "" {
		t.Errorf("row 1 = %q after redraw, want it cleared", got)
	}

	// Stop without Start is a no-op
	if err := app.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestNewApplicationInvalidConfig(t *testing.T) {
	_, err := NewApplication(DefaultAppConfig(), tcell.NewSimulationScreen(""), nil)
	if err == nil {
		t.Fatal("NewApplication() should reject a config without a command")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Type != ErrorConfig {
		t.Errorf("error = %v, want a config AppError", err)
	}
}

func TestTrimTrailingBlank(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  int
	}{
		{"empty", nil, 0},
		{"all blank", []string{"", " ", ""}, 0},
		{"keeps inner blanks", []string{"a", "", "b", "", ""}, 3},
		{"nothing to trim", []string{"a", "b"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimTrailingBlank(tt.lines); len(got) != tt.want {
				t.Errorf("trimTrailingBlank() kept %d lines, want %d", len(got), tt.want)
			}
		})
	}
}

func TestPrintSessionSummary(t *testing.T) {
	var buf bytes.Buffer
	printSessionSummary(&buf, session.Stats{
		ID:            "abc",
		Command:       []string{"ls", "-l"},
		Duration:      1500 * time.Millisecond,
		BytesSent:     3,
		BytesReceived: 42,
		ExitCode:      0,
	})

	out := buf.String()
	for _, want := range []string{"Command: ls -l", "Session: abc", "Duration: 1.5s", "Bytes Sent: 3", "Bytes Received: 42", "Exit Code: 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printSessionSummary(&buf, session.Stats{ExitCode: -1})
	if strings.Contains(buf.String(), "Exit Code") {
		t.Error("summary should omit an unknown exit code")
	}
}

func TestRunnerHeadlessFlag(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.Command = []string{"sh"}
	cfg.Headless = true

	r, err := NewRunner(cfg, nil)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	if r.Interactive() {
		t.Error("Interactive() should be false when headless is requested")
	}

	if _, err := NewRunner(DefaultAppConfig(), nil); err == nil {
		t.Error("NewRunner() should reject a config without a command")
	}
}

func TestMenu(t *testing.T) {
	screen := newSimScreen(t, 60, 20)

	var ran []string
	record := func(name string) func() error {
		return func() error {
			ran = append(ran, name)
			return nil
		}
	}

	m := newMenu("Session", screen)
	m.addItem("First", "a", record("first"))
	m.addSeparator()
	m.addItem("Disabled", "b", record("disabled"))
	m.addItem("Third", "c", record("third"))
	m.addItem("Failing", "d", func() error { return errors.New("nope") })
	m.enableItem(2, false)

	closed := 0
	m.onClose = func() { closed++ }
	var failures []error
	m.onError = func(err error) { failures = append(failures, err) }

	if m.handleKey(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone)) {
		t.Error("hidden menu should not consume keys")
	}

	m.show()
	if !m.isVisible() || m.selected != 0 {
		t.Fatalf("visible = %v, selected = %d after show", m.isVisible(), m.selected)
	}

	// down skips the separator and the disabled item
	m.handleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	if m.selected != 3 {
		t.Errorf("selected = %d after down, want 3", m.selected)
	}
	m.handleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	if m.selected != 0 {
		t.Errorf("selected = %d after up, want 0", m.selected)
	}

	m.handleKey(tcell.NewEventKey(tcell.KeyRune, 'b', tcell.ModNone))
	if len(ran) != 0 || !m.isVisible() {
		t.Errorf("disabled item ran = %v, visible = %v", ran, m.isVisible())
	}

	m.handleKey(tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone))
	if len(ran) != 1 || ran[0] != "third" {
		t.Errorf("ran = %v, want [third]", ran)
	}
	if m.isVisible() || closed != 1 {
		t.Errorf("visible = %v, closed = %d after activation", m.isVisible(), closed)
	}

	m.show()
	m.handleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if len(ran) != 2 || ran[1] != "first" {
		t.Errorf("ran = %v, want enter to run the selected item", ran)
	}

	m.show()
	m.handleKey(tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModNone))
	if len(failures) != 1 {
		t.Errorf("failures = %v, want the action error reported", failures)
	}

	m.show()
	m.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if m.isVisible() || closed != 4 {
		t.Errorf("visible = %v, closed = %d after escape", m.isVisible(), closed)
	}
}

func TestMenuDimensions(t *testing.T) {
	m := newMenu("T", tcell.NewSimulationScreen(""))
	m.addItem("Save transcript", "s", nil)
	m.addSeparator()

	if m.width != len("Save transcript")+1+8 {
		t.Errorf("width = %d", m.width)
	}
	// two items, the border and the title with its rule
	if m.height != 2+2+2 {
		t.Errorf("height = %d, want 6", m.height)
	}
}
