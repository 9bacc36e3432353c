package terminal

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

const (
	// DefaultCols is the width used when a session does not configure one
	DefaultCols = 80
	// DefaultRows is the height used when a session does not configure one
	DefaultRows = 24

	tabWidth = 8
)

// Position is a zero-based cell coordinate
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ScreenBuffer is a fixed-size grid of runes with a cursor.
//
// The cursor always stays inside the grid: every operation clamps or wraps
// instead of letting it escape. A ScreenBuffer is not safe for concurrent
// use; the session that owns it serializes access.
type ScreenBuffer struct {
	rows  int
	cols  int
	cells [][]rune

	cursor    Position
	saved     *Position
	altScreen bool
}

// NewScreenBuffer creates a blank buffer with the cursor at the origin
func NewScreenBuffer(cols, rows int) *ScreenBuffer {
	if cols <= 0 {
		cols = DefaultCols
	}
	if rows <= 0 {
		rows = DefaultRows
	}

	sb := &ScreenBuffer{
		rows:  rows,
		cols:  cols,
		cells: make([][]rune, rows),
	}
	for y := range sb.cells {
		sb.cells[y] = blankLine(cols)
	}
	return sb
}

func blankLine(cols int) []rune {
	line := make([]rune, cols)
	for i := range line {
		line[i] = ' '
	}
	return line
}

// Rows returns the number of lines in the grid
func (sb *ScreenBuffer) Rows() int { return sb.rows }

// Cols returns the number of cells per line
func (sb *ScreenBuffer) Cols() int { return sb.cols }

// Cursor returns the current cursor position
func (sb *ScreenBuffer) Cursor() Position { return sb.cursor }

// AlternateScreen reports whether the alternate screen is active
func (sb *ScreenBuffer) AlternateScreen() bool { return sb.altScreen }

// Cell returns the rune at (x, y), or a space outside the grid
func (sb *ScreenBuffer) Cell(x, y int) rune {
	if x < 0 || x >= sb.cols || y < 0 || y >= sb.rows {
		return ' '
	}
	return sb.cells[y][x]
}

// Line returns line y as a string, including trailing blanks
func (sb *ScreenBuffer) Line(y int) string {
	if y < 0 || y >= sb.rows {
		return ""
	}
	return string(sb.cells[y])
}

// Clear blanks every cell and moves the cursor to the origin
func (sb *ScreenBuffer) Clear() {
	for y := range sb.cells {
		sb.fill(y, 0, sb.cols)
	}
	sb.cursor = Position{}
}

// ClearLineFromCursor blanks the current line from the cursor to its end
func (sb *ScreenBuffer) ClearLineFromCursor() {
	sb.fill(sb.cursor.Y, sb.cursor.X, sb.cols)
}

// ClearLineToCursor blanks the current line from its start through the cursor
func (sb *ScreenBuffer) ClearLineToCursor() {
	sb.fill(sb.cursor.Y, 0, sb.cursor.X+1)
}

// ClearLine blanks the whole current line
func (sb *ScreenBuffer) ClearLine() {
	sb.fill(sb.cursor.Y, 0, sb.cols)
}

// ClearBelowCursor blanks from the cursor to the end of the grid
func (sb *ScreenBuffer) ClearBelowCursor() {
	sb.ClearLineFromCursor()
	for y := sb.cursor.Y + 1; y < sb.rows; y++ {
		sb.fill(y, 0, sb.cols)
	}
}

// ClearAboveCursor blanks from the start of the grid through the cursor
func (sb *ScreenBuffer) ClearAboveCursor() {
	for y := 0; y < sb.cursor.Y; y++ {
		sb.fill(y, 0, sb.cols)
	}
	sb.ClearLineToCursor()
}

func (sb *ScreenBuffer) fill(y, from, to int) {
	if y < 0 || y >= sb.rows {
		return
	}
	from = clamp(from, 0, sb.cols)
	to = clamp(to, 0, sb.cols)
	line := sb.cells[y]
	for x := from; x < to; x++ {
		line[x] = ' '
	}
}

// Put writes r at the cursor and advances one column. Reaching the right
// edge moves the cursor to the start of the next line, scrolling when the
// cursor is already on the last line. Zero-width runes are dropped.
func (sb *ScreenBuffer) Put(r rune) {
	if runewidth.RuneWidth(r) == 0 {
		return
	}

	sb.cells[sb.cursor.Y][sb.cursor.X] = r
	sb.cursor.X++
	if sb.cursor.X >= sb.cols {
		sb.Newline()
	}
}

// Newline moves the cursor to column 0 of the next line, scrolling if needed
func (sb *ScreenBuffer) Newline() {
	sb.cursor.X = 0
	if sb.cursor.Y+1 >= sb.rows {
		sb.scroll()
		return
	}
	sb.cursor.Y++
}

// CarriageReturn moves the cursor to column 0
func (sb *ScreenBuffer) CarriageReturn() {
	sb.cursor.X = 0
}

// Backspace moves the cursor one column left, stopping at column 0
func (sb *ScreenBuffer) Backspace() {
	if sb.cursor.X > 0 {
		sb.cursor.X--
	}
}

// Tab advances the cursor to the next tab stop, stopping at the last column
func (sb *ScreenBuffer) Tab() {
	next := (sb.cursor.X/tabWidth + 1) * tabWidth
	sb.cursor.X = clamp(next, 0, sb.cols-1)
}

// SetCursor moves the cursor to (x, y), clamped to the grid
func (sb *ScreenBuffer) SetCursor(x, y int) {
	sb.cursor.X = clamp(x, 0, sb.cols-1)
	sb.cursor.Y = clamp(y, 0, sb.rows-1)
}

// MoveCursor moves the cursor relative to its position, clamped to the grid
func (sb *ScreenBuffer) MoveCursor(dx, dy int) {
	sb.SetCursor(sb.cursor.X+dx, sb.cursor.Y+dy)
}

// SaveCursor remembers the current cursor position
func (sb *ScreenBuffer) SaveCursor() {
	saved := sb.cursor
	sb.saved = &saved
}

// RestoreCursor moves the cursor back to the saved position.
// Without a saved position it does nothing.
func (sb *ScreenBuffer) RestoreCursor() {
	if sb.saved == nil {
		return
	}
	sb.SetCursor(sb.saved.X, sb.saved.Y)
}

// SetAlternateScreen switches between the primary and alternate screen.
// Both directions clear the grid; no content is kept for the other screen.
func (sb *ScreenBuffer) SetAlternateScreen(enabled bool) {
	sb.altScreen = enabled
	sb.Clear()
}

// scroll drops the first line and appends a blank one
func (sb *ScreenBuffer) scroll() {
	first := sb.cells[0]
	copy(sb.cells, sb.cells[1:])
	for i := range first {
		first[i] = ' '
	}
	sb.cells[sb.rows-1] = first
}

// Snapshot returns a copy of the grid that stays valid after further writes
func (sb *ScreenBuffer) Snapshot() Snapshot {
	lines := make([][]rune, sb.rows)
	for y, line := range sb.cells {
		lines[y] = append([]rune(nil), line...)
	}
	return Snapshot{
		Lines:     lines,
		Cursor:    sb.cursor,
		AltScreen: sb.altScreen,
	}
}

// String implements fmt.Stringer for debugging
func (sb *ScreenBuffer) String() string {
	return fmt.Sprintf("ScreenBuffer{%dx%d cursor=%d,%d alt=%v}", sb.cols, sb.rows, sb.cursor.X, sb.cursor.Y, sb.altScreen)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
