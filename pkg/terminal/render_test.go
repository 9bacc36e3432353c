package terminal

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	sb := NewScreenBuffer(10, 3)
	in := NewInterpreter(sb)
	in.Feed([]byte("hello\r\n"))

	frame := Render(sb.Snapshot())
	lines := strings.Split(frame, "\n")

	if len(lines) != 3 {
		t.Fatalf("frame has %d lines, want 3", len(lines))
	}
	if lines[0] != "hello" {
		t.Errorf("line 0 = %q, want %q", lines[0], "hello")
	}
	if lines[1] != string(CursorGlyph) {
		t.Errorf("line 1 = %q, want the cursor glyph", lines[1])
	}
	if lines[2] != "" {
		t.Errorf("line 2 = %q, want empty", lines[2])
	}
}

func TestRender_CursorOverText(t *testing.T) {
	sb := NewScreenBuffer(10, 1)
	for _, r := range "abc" {
		sb.Put(r)
	}
	sb.SetCursor(1, 0)

	if got := Render(sb.Snapshot()); got != "a"+string(CursorGlyph)+"c" {
		t.Errorf("Render() = %q", got)
	}
	// the glyph is never written into the buffer itself
	if sb.Cell(1, 0) != 'b' {
		t.Errorf("Cell(1,0) = %q, want 'b'", sb.Cell(1, 0))
	}
}

func TestRender_AfterFullClear(t *testing.T) {
	sb := NewScreenBuffer(4, 2)
	in := NewInterpreter(sb)
	in.Feed([]byte("abcd\r\nefgh\x1b[2J"))

	want := string(CursorGlyph) + "\n"
	if got := Render(sb.Snapshot()); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderLines(t *testing.T) {
	sb := NewScreenBuffer(6, 2)
	for _, r := range "hi" {
		sb.Put(r)
	}

	lines := RenderLines(sb.Snapshot())
	if len(lines) != 2 || lines[0] != "hi" || lines[1] != "" {
		t.Errorf("RenderLines() = %q", lines)
	}
}

func TestSnapshot_Size(t *testing.T) {
	snap := NewScreenBuffer(7, 3).Snapshot()
	if snap.Rows() != 3 || snap.Cols() != 7 {
		t.Errorf("snapshot size = %dx%d, want 7x3", snap.Cols(), snap.Rows())
	}
	if (Snapshot{}).Cols() != 0 {
		t.Error("empty snapshot should have zero width")
	}
}
