package terminal

import "strings"

// CursorGlyph marks the cursor cell in rendered frames
const CursorGlyph = '█'

// Snapshot is an immutable copy of a ScreenBuffer
type Snapshot struct {
	Lines     [][]rune
	Cursor    Position
	AltScreen bool
}

// Rows returns the number of lines in the snapshot
func (s Snapshot) Rows() int { return len(s.Lines) }

// Cols returns the width of the snapshot
func (s Snapshot) Cols() int {
	if len(s.Lines) == 0 {
		return 0
	}
	return len(s.Lines[0])
}

// Render turns a snapshot into a frame: one text line per row joined by
// "\n", trailing blanks trimmed, with CursorGlyph drawn at the cursor cell.
func Render(s Snapshot) string {
	var b strings.Builder
	b.Grow(s.Rows() * (s.Cols() + 1))

	for y, line := range s.Lines {
		if y > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderLine(line, y, s.Cursor))
	}
	return b.String()
}

// RenderLines renders a snapshot into separate lines without the cursor glyph
func RenderLines(s Snapshot) []string {
	lines := make([]string, len(s.Lines))
	for y, line := range s.Lines {
		lines[y] = strings.TrimRight(string(line), " ")
	}
	return lines
}

func renderLine(line []rune, y int, cursor Position) string {
	if y != cursor.Y || cursor.X < 0 || cursor.X >= len(line) {
		return strings.TrimRight(string(line), " ")
	}

	out := make([]rune, len(line))
	copy(out, line)
	out[cursor.X] = CursorGlyph
	return strings.TrimRight(string(out), " ")
}
