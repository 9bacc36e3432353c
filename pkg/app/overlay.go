package app

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const helpText = `Keys
  Ctrl+Q   stop the session and exit
  Ctrl+T   session menu
  F1       toggle this help
  Ctrl+C   interrupt (sent to the program)
  Ctrl+D   end of input (sent to the program)
  Ctrl+Z   suspend (sent to the program)`

// savedCell is a screen cell kept while an overlay covers it
type savedCell struct {
	mainc rune
	combc []rune
	style tcell.Style
}

// overlay draws a box above the session view and puts the covered cells
// back when it is closed
type overlay struct {
	screen tcell.Screen
	saved  [][]savedCell
}

func newOverlay(screen tcell.Screen) *overlay {
	return &overlay{screen: screen}
}

// visible reports whether the overlay is shown
func (o *overlay) visible() bool {
	return o.saved != nil
}

// show saves the screen and draws text in a centered box
func (o *overlay) show(text string) {
	o.save()

	lines := strings.Split(text, "\n")
	inner := 0
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > inner {
			inner = w
		}
	}

	width, height := o.screen.Size()
	boxW, boxH := inner+4, len(lines)+2
	left := max(0, (width-boxW)/2)
	top := max(0, (height-boxH)/2)
	style := tcell.StyleDefault.Reverse(true)

	for y := 0; y < boxH; y++ {
		for x := 0; x < boxW; x++ {
			o.screen.SetContent(left+x, top+y, ' ', nil, style)
		}
	}
	for i, line := range lines {
		drawString(o.screen, left+2, top+1+i, line, style)
	}
	o.screen.Show()
}

// hide restores the saved cells
func (o *overlay) hide() {
	for y, row := range o.saved {
		for x, cell := range row {
			o.screen.SetContent(x, y, cell.mainc, cell.combc, cell.style)
		}
	}
	o.saved = nil
	o.screen.Show()
}

func (o *overlay) save() {
	width, height := o.screen.Size()
	o.saved = make([][]savedCell, height)
	for y := 0; y < height; y++ {
		o.saved[y] = make([]savedCell, width)
		for x := 0; x < width; x++ {
			mainc, combc, style, _ := o.screen.GetContent(x, y)
			o.saved[y][x] = savedCell{mainc: mainc, combc: combc, style: style}
		}
	}
}

// drawString draws s starting at (x, y) and returns the column after it
func drawString(screen tcell.Screen, x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x += max(1, runewidth.RuneWidth(r))
	}
	return x
}
