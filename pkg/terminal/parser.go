package terminal

import (
	"unicode/utf8"
)

// Logger is used to report sequences the interpreter does not handle
type Logger interface {
	Debugf(format string, args ...interface{})
}

// ParserState represents the current state of the interpreter
type ParserState int

const (
	StateGround ParserState = iota
	StateEscape
	StateCSI
	StateOSC
	StateOSCEscape
	StateCharset
)

// Interpreter applies a child's output to a ScreenBuffer.
//
// Parsing state does not survive between Feed calls: a sequence that is
// split across two chunks is dropped, and the rest of the second chunk is
// read from the ground state.
type Interpreter struct {
	screen *ScreenBuffer
	logger Logger

	state        ParserState
	params       []byte
	intermediate []byte
}

// NewInterpreter creates an interpreter writing into screen
func NewInterpreter(screen *ScreenBuffer) *Interpreter {
	return &Interpreter{
		screen:       screen,
		params:       make([]byte, 0, 16),
		intermediate: make([]byte, 0, 4),
	}
}

// SetLogger sets the logger for unhandled sequences
func (in *Interpreter) SetLogger(logger Logger) {
	in.logger = logger
}

// Screen returns the buffer the interpreter writes into
func (in *Interpreter) Screen() *ScreenBuffer {
	return in.screen
}

// Feed interprets one chunk of output
func (in *Interpreter) Feed(chunk []byte) {
	in.reset()

	for i := 0; i < len(chunk); {
		b := chunk[i]

		if in.state != StateGround {
			in.step(b)
			i++
			continue
		}

		switch {
		case b == 0x1B:
			in.state = StateEscape
			i++
		case b < 0x20 || b == 0x7F:
			in.control(b)
			i++
		case b < utf8.RuneSelf:
			in.screen.Put(rune(b))
			i++
		default:
			r, size := utf8.DecodeRune(chunk[i:])
			if r == utf8.RuneError && size <= 1 {
				if !utf8.FullRune(chunk[i:]) {
					// truncated at the end of the chunk
					return
				}
				i++
				continue
			}
			in.screen.Put(r)
			i += size
		}
	}

	if in.state != StateGround {
		in.logDebug("dropping unterminated sequence (state %d)", in.state)
	}
}

func (in *Interpreter) reset() {
	in.state = StateGround
	in.params = in.params[:0]
	in.intermediate = in.intermediate[:0]
}

// control handles C0 control bytes
func (in *Interpreter) control(b byte) {
	switch b {
	case '\n':
		in.screen.Newline()
	case '\r':
		in.screen.CarriageReturn()
	case '\b':
		in.screen.Backspace()
	case '\t':
		in.screen.Tab()
	}
}

func (in *Interpreter) step(b byte) {
	switch in.state {
	case StateEscape:
		in.handleEscape(b)
	case StateCSI:
		in.handleCSI(b)
	case StateOSC:
		switch b {
		case 0x07:
			in.reset()
		case 0x1B:
			in.state = StateOSCEscape
		}
	case StateOSCEscape:
		// ESC \ terminates, anything else is still part of the string
		if b == '\\' {
			in.reset()
		} else {
			in.state = StateOSC
		}
	case StateCharset:
		in.reset()
	}
}

// handleEscape processes the byte after ESC
func (in *Interpreter) handleEscape(b byte) {
	switch b {
	case '[':
		in.state = StateCSI
		in.params = in.params[:0]
		in.intermediate = in.intermediate[:0]
	case ']':
		in.state = StateOSC
	case '(', ')', '*', '+':
		in.state = StateCharset
	case '7':
		in.screen.SaveCursor()
		in.reset()
	case '8':
		in.screen.RestoreCursor()
		in.reset()
	case 'c':
		in.screen.Clear()
		in.reset()
	default:
		in.logDebug("ignoring ESC %q", b)
		in.reset()
	}
}

// handleCSI collects parameter and intermediate bytes until a final byte
func (in *Interpreter) handleCSI(b byte) {
	switch {
	case b >= 0x30 && b <= 0x3F:
		in.params = append(in.params, b)
	case b >= 0x20 && b <= 0x2F:
		in.intermediate = append(in.intermediate, b)
	case b >= 0x40 && b <= 0x7E:
		in.executeCSI(b)
		in.reset()
	default:
		// control byte inside a sequence, abandon it
		in.reset()
		in.control(b)
	}
}

// executeCSI executes a complete CSI sequence
func (in *Interpreter) executeCSI(final byte) {
	private := len(in.params) > 0 && in.params[0] == '?'
	params := parseParams(in.params)

	if private {
		in.handlePrivateMode(final, params)
		return
	}

	switch final {
	case 'A': // CUU
		in.screen.MoveCursor(0, -getParam(params, 0, 1))
	case 'B': // CUD
		in.screen.MoveCursor(0, getParam(params, 0, 1))
	case 'C': // CUF
		in.screen.MoveCursor(getParam(params, 0, 1), 0)
	case 'D': // CUB
		in.screen.MoveCursor(-getParam(params, 0, 1), 0)
	case 'G': // CHA
		in.screen.SetCursor(getParam(params, 0, 1)-1, in.screen.Cursor().Y)
	case 'd': // VPA
		in.screen.SetCursor(in.screen.Cursor().X, getParam(params, 0, 1)-1)
	case 'H', 'f': // CUP
		row := getParam(params, 0, 1) - 1
		col := getParam(params, 1, 1) - 1
		in.screen.SetCursor(col, row)
	case 'J': // ED
		switch getParam(params, 0, 0) {
		case 0:
			in.screen.ClearBelowCursor()
		case 1:
			in.screen.ClearAboveCursor()
		case 2, 3:
			in.screen.Clear()
		}
	case 'K': // EL
		switch getParam(params, 0, 0) {
		case 0:
			in.screen.ClearLineFromCursor()
		case 1:
			in.screen.ClearLineToCursor()
		case 2:
			in.screen.ClearLine()
		}
	case 's':
		in.screen.SaveCursor()
	case 'u':
		in.screen.RestoreCursor()
	case 'm':
		// colors and attributes are not rendered
	default:
		in.logDebug("ignoring CSI %s%c", in.params, final)
	}
}

// handlePrivateMode handles ESC [ ? Pn h and ESC [ ? Pn l
func (in *Interpreter) handlePrivateMode(final byte, params []int) {
	if final != 'h' && final != 'l' {
		in.logDebug("ignoring private CSI %s%c", in.params, final)
		return
	}

	for _, mode := range params {
		switch mode {
		case 47, 1047, 1049:
			in.screen.SetAlternateScreen(final == 'h')
		default:
			in.logDebug("ignoring private mode %d%c", mode, final)
		}
	}
}

// parseParams splits "1;2" style parameter bytes into integers. Empty
// fields become 0 and non-digit bytes such as the private marker are skipped.
func parseParams(raw []byte) []int {
	if len(raw) == 0 {
		return nil
	}

	params := make([]int, 0, 4)
	current := 0
	for _, ch := range raw {
		switch {
		case ch >= '0' && ch <= '9':
			current = current*10 + int(ch-'0')
		case ch == ';':
			params = append(params, current)
			current = 0
		}
	}
	return append(params, current)
}

// getParam returns the parameter at index, or defaultValue when it is
// missing or zero
func getParam(params []int, index, defaultValue int) int {
	if index < len(params) && params[index] != 0 {
		return params[index]
	}
	return defaultValue
}

func (in *Interpreter) logDebug(format string, args ...interface{}) {
	if in.logger != nil {
		in.logger.Debugf(format, args...)
	}
}
