package terminal

import (
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// Key identifies an abstract input event
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEscape
	KeyCtrlC
	KeyCtrlD
	KeyCtrlZ
	KeyControl // Ctrl plus the letter in KeyEvent.Rune
	KeyPagerQuit
	KeyPagerForward
	KeyPagerBack
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
)

var keyNames = map[Key]string{
	KeyNone:         "None",
	KeyRune:         "Rune",
	KeyEnter:        "Enter",
	KeyBackspace:    "Backspace",
	KeyTab:          "Tab",
	KeyEscape:       "Escape",
	KeyCtrlC:        "Ctrl+C",
	KeyCtrlD:        "Ctrl+D",
	KeyCtrlZ:        "Ctrl+Z",
	KeyControl:      "Ctrl",
	KeyPagerQuit:    "PagerQuit",
	KeyPagerForward: "PagerForward",
	KeyPagerBack:    "PagerBack",
	KeyUp:           "Up",
	KeyDown:         "Down",
	KeyRight:        "Right",
	KeyLeft:         "Left",
	KeyHome:         "Home",
	KeyEnd:          "End",
	KeyPageUp:       "PageUp",
	KeyPageDown:     "PageDown",
	KeyDelete:       "Delete",
}

// String returns the name of the key
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Unknown"
}

// KeyEvent is an input event independent of any UI toolkit
type KeyEvent struct {
	Key  Key
	Rune rune
}

// RuneEvent returns the event for a printable character
func RuneEvent(r rune) KeyEvent {
	return KeyEvent{Key: KeyRune, Rune: r}
}

// fixed byte sequences for non-printable keys
var keySequences = map[Key][]byte{
	KeyEnter:        {0x0D},
	KeyBackspace:    {0x7F},
	KeyTab:          {0x09},
	KeyEscape:       {0x1B},
	KeyCtrlC:        {0x03},
	KeyCtrlD:        {0x04},
	KeyCtrlZ:        {0x1A},
	KeyPagerQuit:    {'q'},
	KeyPagerForward: {' '},
	KeyPagerBack:    {'b'},
	KeyUp:           []byte("\x1b[A"),
	KeyDown:         []byte("\x1b[B"),
	KeyRight:        []byte("\x1b[C"),
	KeyLeft:         []byte("\x1b[D"),
	KeyHome:         []byte("\x1b[H"),
	KeyEnd:          []byte("\x1b[F"),
	KeyPageUp:       []byte("\x1b[5~"),
	KeyPageDown:     []byte("\x1b[6~"),
	KeyDelete:       []byte("\x1b[3~"),
}

// Translate returns the bytes a terminal sends to the child for ev.
// Events with no byte representation translate to nil.
func Translate(ev KeyEvent) []byte {
	switch ev.Key {
	case KeyRune:
		if ev.Rune < 0 || !utf8.ValidRune(ev.Rune) {
			return nil
		}
		return []byte(string(ev.Rune))
	case KeyControl:
		return controlByte(ev.Rune)
	}

	seq, ok := keySequences[ev.Key]
	if !ok {
		return nil
	}
	out := make([]byte, len(seq))
	copy(out, seq)
	return out
}

// controlByte maps a letter to its Ctrl combination (Ctrl+A = 0x01)
func controlByte(r rune) []byte {
	switch {
	case r >= 'a' && r <= 'z':
		return []byte{byte(r-'a') + 1}
	case r >= 'A' && r <= 'Z':
		return []byte{byte(r-'A') + 1}
	}
	return nil
}

// FromTcell converts a tcell key event. The second result is false for
// keys that have no KeyEvent equivalent.
func FromTcell(ev *tcell.EventKey) (KeyEvent, bool) {
	switch ev.Key() {
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			if seq := controlByte(ev.Rune()); seq != nil {
				return KeyEvent{Key: KeyControl, Rune: ev.Rune()}, true
			}
		}
		return RuneEvent(ev.Rune()), true
	case tcell.KeyEnter:
		return KeyEvent{Key: KeyEnter}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return KeyEvent{Key: KeyBackspace}, true
	case tcell.KeyTab:
		return KeyEvent{Key: KeyTab}, true
	case tcell.KeyEscape:
		return KeyEvent{Key: KeyEscape}, true
	case tcell.KeyCtrlC:
		return KeyEvent{Key: KeyCtrlC}, true
	case tcell.KeyCtrlD:
		return KeyEvent{Key: KeyCtrlD}, true
	case tcell.KeyCtrlZ:
		return KeyEvent{Key: KeyCtrlZ}, true
	case tcell.KeyUp:
		return KeyEvent{Key: KeyUp}, true
	case tcell.KeyDown:
		return KeyEvent{Key: KeyDown}, true
	case tcell.KeyRight:
		return KeyEvent{Key: KeyRight}, true
	case tcell.KeyLeft:
		return KeyEvent{Key: KeyLeft}, true
	case tcell.KeyHome:
		return KeyEvent{Key: KeyHome}, true
	case tcell.KeyEnd:
		return KeyEvent{Key: KeyEnd}, true
	case tcell.KeyPgUp:
		return KeyEvent{Key: KeyPageUp}, true
	case tcell.KeyPgDn:
		return KeyEvent{Key: KeyPageDown}, true
	case tcell.KeyDelete:
		return KeyEvent{Key: KeyDelete}, true
	}

	// remaining Ctrl+letter keys share their values with the control bytes
	if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return KeyEvent{Key: KeyControl, Rune: rune('a' + int(k-tcell.KeyCtrlA))}, true
	}
	return KeyEvent{}, false
}

// PagerEvent maps a rune typed while a pager is in front to the matching
// pager key. Other runes stay plain KeyRune events.
func PagerEvent(r rune) KeyEvent {
	switch r {
	case 'q':
		return KeyEvent{Key: KeyPagerQuit}
	case ' ':
		return KeyEvent{Key: KeyPagerForward}
	case 'b':
		return KeyEvent{Key: KeyPagerBack}
	}
	return RuneEvent(r)
}
