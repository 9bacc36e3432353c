package app

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// menuItem represents a single menu entry
type menuItem struct {
	label     string
	shortcut  string
	action    func() error
	enabled   bool
	separator bool
}

// menu is a centered list of actions drawn over the session view
type menu struct {
	screen   tcell.Screen
	title    string
	items    []menuItem
	selected int
	visible  bool
	x, y     int
	width    int
	height   int

	onClose func()
	onError func(error)
}

func newMenu(title string, screen tcell.Screen) *menu {
	m := &menu{
		title:  title,
		screen: screen,
	}
	m.updateDimensions()
	return m
}

// addItem adds an action bound to a single-rune shortcut
func (m *menu) addItem(label, shortcut string, action func() error) {
	m.items = append(m.items, menuItem{
		label:    label,
		shortcut: shortcut,
		action:   action,
		enabled:  true,
	})
	m.updateDimensions()
}

func (m *menu) addSeparator() {
	m.items = append(m.items, menuItem{separator: true})
	m.updateDimensions()
}

// enableItem enables or disables the item at index
func (m *menu) enableItem(index int, enabled bool) {
	if index >= 0 && index < len(m.items) {
		m.items[index].enabled = enabled
	}
}

func (m *menu) isVisible() bool {
	return m.visible
}

// show centers the menu and selects the first usable item
func (m *menu) show() {
	m.visible = true
	m.selected = -1
	m.moveSelection(1)

	screenWidth, screenHeight := m.screen.Size()
	m.x = max(0, (screenWidth-m.width)/2)
	m.y = max(0, (screenHeight-m.height)/2)
	m.draw()
}

func (m *menu) hide() {
	if !m.visible {
		return
	}
	m.visible = false
	if m.onClose != nil {
		m.onClose()
	}
}

func (m *menu) draw() {
	if !m.visible {
		return
	}

	style := tcell.StyleDefault.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorWhite)
	selectedStyle := tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	disabledStyle := style.Foreground(tcell.ColorGray)

	m.drawBorder(style)

	y := m.y + 1
	if m.title != "" {
		titleX := m.x + (m.width-runewidth.StringWidth(m.title))/2
		drawString(m.screen, titleX, y, m.title, style.Bold(true))
		y++
		m.drawRule(y, style)
		y++
	}

	for i, item := range m.items {
		if item.separator {
			m.drawRule(y, style)
			y++
			continue
		}

		itemStyle := style
		switch {
		case !item.enabled:
			itemStyle = disabledStyle
		case i == m.selected:
			itemStyle = selectedStyle
		}

		for x := m.x + 1; x < m.x+m.width-1; x++ {
			m.screen.SetContent(x, y, ' ', nil, itemStyle)
		}
		drawString(m.screen, m.x+2, y, item.label, itemStyle)
		if item.shortcut != "" {
			drawString(m.screen, m.x+m.width-runewidth.StringWidth(item.shortcut)-2, y, item.shortcut, itemStyle)
		}
		y++
	}

	m.screen.Show()
}

// handleKey processes a key while the menu is open. Every key is consumed.
func (m *menu) handleKey(ev *tcell.EventKey) bool {
	if !m.visible {
		return false
	}

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlT:
		m.hide()
	case tcell.KeyUp:
		m.moveSelection(-1)
		m.draw()
	case tcell.KeyDown, tcell.KeyTab:
		m.moveSelection(1)
		m.draw()
	case tcell.KeyEnter:
		if m.selected >= 0 && m.selected < len(m.items) {
			m.activate(m.items[m.selected])
		}
	case tcell.KeyRune:
		for _, item := range m.items {
			if !item.separator && item.shortcut == string(ev.Rune()) {
				m.activate(item)
				break
			}
		}
	}
	return true
}

// moveSelection moves the selection, skipping separators and disabled items
func (m *menu) moveSelection(direction int) {
	count := len(m.items)
	next := m.selected
	for i := 0; i < count; i++ {
		next += direction
		if next < 0 {
			next = count - 1
		} else if next >= count {
			next = 0
		}
		if !m.items[next].separator && m.items[next].enabled {
			m.selected = next
			return
		}
	}
}

// activate closes the menu and runs the item's action
func (m *menu) activate(item menuItem) {
	if !item.enabled || item.action == nil {
		return
	}
	m.hide()
	if err := item.action(); err != nil && m.onError != nil {
		m.onError(err)
	}
}

func (m *menu) drawBorder(style tcell.Style) {
	right, bottom := m.x+m.width-1, m.y+m.height-1

	m.screen.SetContent(m.x, m.y, '┌', nil, style)
	m.screen.SetContent(right, m.y, '┐', nil, style)
	m.screen.SetContent(m.x, bottom, '└', nil, style)
	m.screen.SetContent(right, bottom, '┘', nil, style)
	for x := m.x + 1; x < right; x++ {
		m.screen.SetContent(x, m.y, '─', nil, style)
		m.screen.SetContent(x, bottom, '─', nil, style)
	}
	for y := m.y + 1; y < bottom; y++ {
		m.screen.SetContent(m.x, y, '│', nil, style)
		m.screen.SetContent(right, y, '│', nil, style)
		for x := m.x + 1; x < right; x++ {
			m.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func (m *menu) drawRule(y int, style tcell.Style) {
	for x := m.x + 1; x < m.x+m.width-1; x++ {
		m.screen.SetContent(x, y, '─', nil, style)
	}
}

// updateDimensions sizes the menu to fit its title and items
func (m *menu) updateDimensions() {
	width := runewidth.StringWidth(m.title) + 4
	for _, item := range m.items {
		if item.separator {
			continue
		}
		if w := runewidth.StringWidth(item.label) + runewidth.StringWidth(item.shortcut) + 8; w > width {
			width = w
		}
	}

	m.width = width
	m.height = len(m.items) + 2
	if m.title != "" {
		m.height += 2
	}
}
