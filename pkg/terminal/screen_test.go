package terminal

import (
	"strings"
	"testing"
)

func TestNewScreenBuffer(t *testing.T) {
	tests := []struct {
		name     string
		cols     int
		rows     int
		wantCols int
		wantRows int
	}{
		{"explicit size", 10, 4, 10, 4},
		{"zero size uses defaults", 0, 0, DefaultCols, DefaultRows},
		{"negative size uses defaults", -1, -5, DefaultCols, DefaultRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb := NewScreenBuffer(tt.cols, tt.rows)
			if sb.Cols() != tt.wantCols || sb.Rows() != tt.wantRows {
				t.Fatalf("size = %dx%d, want %dx%d", sb.Cols(), sb.Rows(), tt.wantCols, tt.wantRows)
			}
			if sb.Cursor() != (Position{}) {
				t.Errorf("Cursor() = %v, want origin", sb.Cursor())
			}
			for y := 0; y < sb.Rows(); y++ {
				if line := sb.Line(y); line != strings.Repeat(" ", tt.wantCols) {
					t.Fatalf("Line(%d) = %q, want blanks", y, line)
				}
			}
		})
	}
}

func TestScreenBuffer_PutAdvances(t *testing.T) {
	sb := NewScreenBuffer(10, 3)

	for i := 0; i < sb.Cols()-1; i++ {
		sb.Put('a')
		if got := sb.Cursor(); got.X != i+1 || got.Y != 0 {
			t.Fatalf("after %d puts cursor = %v, want (%d,0)", i+1, got, i+1)
		}
	}
}

func TestScreenBuffer_PutWraps(t *testing.T) {
	sb := NewScreenBuffer(5, 3)

	for _, r := range "abcde" {
		sb.Put(r)
	}
	sb.Put('X')

	if got := sb.Line(0); got != "abcde" {
		t.Errorf("Line(0) = %q, want %q", got, "abcde")
	}
	if got := sb.Cell(0, 1); got != 'X' {
		t.Errorf("Cell(0,1) = %q, want 'X'", got)
	}
	if got := sb.Cursor(); got != (Position{X: 1, Y: 1}) {
		t.Errorf("Cursor() = %v, want (1,1)", got)
	}
}

func TestScreenBuffer_ScrollKeepsRowCount(t *testing.T) {
	sb := NewScreenBuffer(4, 3)

	for _, line := range []string{"one", "two", "thr", "fou"} {
		for _, r := range line {
			sb.Put(r)
		}
		sb.Newline()
	}

	if sb.Rows() != 3 {
		t.Fatalf("Rows() = %d, want 3", sb.Rows())
	}
	want := []string{"thr ", "fou ", "    "}
	for y, w := range want {
		if got := sb.Line(y); got != w {
			t.Errorf("Line(%d) = %q, want %q", y, got, w)
		}
	}
	if got := sb.Cursor(); got != (Position{X: 0, Y: 2}) {
		t.Errorf("Cursor() = %v, want (0,2)", got)
	}
}

func TestScreenBuffer_SetCursorClamps(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		want Position
	}{
		{"inside", 3, 2, Position{3, 2}},
		{"negative", -4, -1, Position{0, 0}},
		{"beyond", 100, 100, Position{9, 4}},
		{"mixed", 100, -3, Position{9, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb := NewScreenBuffer(10, 5)
			sb.SetCursor(tt.x, tt.y)
			if got := sb.Cursor(); got != tt.want {
				t.Errorf("Cursor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScreenBuffer_Backspace(t *testing.T) {
	sb := NewScreenBuffer(10, 2)
	sb.Put('a')
	sb.Backspace()
	sb.Backspace()

	if got := sb.Cursor(); got != (Position{}) {
		t.Errorf("Cursor() = %v, want origin", got)
	}
	if got := sb.Cell(0, 0); got != 'a' {
		t.Errorf("Backspace should not erase, Cell(0,0) = %q", got)
	}
}

func TestScreenBuffer_SaveRestoreCursor(t *testing.T) {
	sb := NewScreenBuffer(10, 5)

	// nothing saved yet
	sb.SetCursor(4, 4)
	sb.RestoreCursor()
	if got := sb.Cursor(); got != (Position{4, 4}) {
		t.Fatalf("RestoreCursor without save moved cursor to %v", got)
	}

	sb.SetCursor(2, 3)
	sb.SaveCursor()
	sb.SetCursor(7, 0)
	sb.Put('z')
	sb.RestoreCursor()

	if got := sb.Cursor(); got != (Position{2, 3}) {
		t.Errorf("Cursor() = %v, want (2,3)", got)
	}
}

func TestScreenBuffer_ClearLineFromCursor(t *testing.T) {
	sb := NewScreenBuffer(6, 2)
	for _, r := range "abcdef" {
		sb.Put(r)
	}
	sb.SetCursor(2, 0)
	sb.ClearLineFromCursor()

	if got := sb.Line(0); got != "ab    " {
		t.Errorf("Line(0) = %q, want %q", got, "ab    ")
	}
	if got := sb.Cursor(); got != (Position{2, 0}) {
		t.Errorf("Cursor() = %v, want (2,0)", got)
	}
}

func TestScreenBuffer_ClearVariants(t *testing.T) {
	fill := func() *ScreenBuffer {
		sb := NewScreenBuffer(3, 3)
		for i := 0; i < 8; i++ {
			sb.Put('x')
		}
		sb.SetCursor(1, 1)
		return sb
	}

	tests := []struct {
		name  string
		clear func(*ScreenBuffer)
		want  []string
	}{
		{"line to cursor", (*ScreenBuffer).ClearLineToCursor, []string{"xxx", "  x", "xx "}},
		{"whole line", (*ScreenBuffer).ClearLine, []string{"xxx", "   ", "xx "}},
		{"below cursor", (*ScreenBuffer).ClearBelowCursor, []string{"xxx", "x  ", "   "}},
		{"above cursor", (*ScreenBuffer).ClearAboveCursor, []string{"   ", "  x", "xx "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb := fill()
			tt.clear(sb)
			for y, w := range tt.want {
				if got := sb.Line(y); got != w {
					t.Errorf("Line(%d) = %q, want %q", y, got, w)
				}
			}
		})
	}
}

func TestScreenBuffer_AlternateScreenClears(t *testing.T) {
	sb := NewScreenBuffer(5, 2)
	sb.Put('a')

	sb.SetAlternateScreen(true)
	if !sb.AlternateScreen() {
		t.Fatal("AlternateScreen() = false after enabling")
	}
	if sb.Cell(0, 0) != ' ' || sb.Cursor() != (Position{}) {
		t.Fatal("enabling the alternate screen should clear the grid")
	}

	sb.Put('b')
	sb.SetAlternateScreen(false)
	if sb.AlternateScreen() {
		t.Fatal("AlternateScreen() = true after disabling")
	}
	if sb.Cell(0, 0) != ' ' {
		t.Error("disabling the alternate screen should clear the grid")
	}
}

func TestScreenBuffer_Tab(t *testing.T) {
	sb := NewScreenBuffer(20, 1)
	sb.Tab()
	if got := sb.Cursor().X; got != 8 {
		t.Errorf("first tab X = %d, want 8", got)
	}
	sb.Tab()
	sb.Tab()
	if got := sb.Cursor().X; got != 19 {
		t.Errorf("tab past the edge X = %d, want 19", got)
	}
}

func TestScreenBuffer_PutDropsZeroWidth(t *testing.T) {
	sb := NewScreenBuffer(5, 1)
	sb.Put('e')
	sb.Put('\u0301')

	if got := sb.Cursor().X; got != 1 {
		t.Errorf("Cursor().X = %d, want 1", got)
	}
}

func TestScreenBuffer_SnapshotIsCopy(t *testing.T) {
	sb := NewScreenBuffer(3, 1)
	sb.Put('a')
	snap := sb.Snapshot()
	sb.Clear()

	if snap.Lines[0][0] != 'a' {
		t.Error("Snapshot changed after the buffer was cleared")
	}
	if snap.Cursor != (Position{X: 1}) {
		t.Errorf("snapshot cursor = %v, want (1,0)", snap.Cursor)
	}
}
