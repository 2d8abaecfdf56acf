package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var cursorStyle = lipgloss.NewStyle().Reverse(true)

// lineEditor is a single-line rune buffer with a cursor.
type lineEditor struct {
	buffer []rune
	cursor int
	masked bool
}

func newLineEditor(value string, masked bool) lineEditor {
	buffer := []rune(value)
	return lineEditor{buffer: buffer, cursor: len(buffer), masked: masked}
}

func (e lineEditor) Value() string {
	return string(e.buffer)
}

// handle applies an editing key. It reports false for keys it does not
// consume (enter, esc and everything else the caller handles).
func (e *lineEditor) handle(message tea.KeyMsg) bool {
	switch message.Type {
	case tea.KeyBackspace:
		if e.cursor > 0 {
			e.buffer = append(e.buffer[:e.cursor-1], e.buffer[e.cursor:]...)
			e.cursor--
		}
	case tea.KeyDelete:
		if e.cursor < len(e.buffer) {
			e.buffer = append(e.buffer[:e.cursor], e.buffer[e.cursor+1:]...)
		}
	case tea.KeyLeft:
		if e.cursor > 0 {
			e.cursor--
		}
	case tea.KeyRight:
		if e.cursor < len(e.buffer) {
			e.cursor++
		}
	case tea.KeyHome, tea.KeyCtrlA:
		e.cursor = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		e.cursor = len(e.buffer)
	case tea.KeyCtrlU:
		e.buffer = append([]rune(nil), e.buffer[e.cursor:]...)
		e.cursor = 0
	case tea.KeyRunes, tea.KeySpace:
		runes := message.Runes
		if message.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		for _, character := range runes {
			e.buffer = append(e.buffer, 0)
			copy(e.buffer[e.cursor+1:], e.buffer[e.cursor:])
			e.buffer[e.cursor] = character
			e.cursor++
		}
	default:
		return false
	}
	return true
}

// View renders the buffer with a reverse-video cursor.
func (e lineEditor) View() string {
	shown := e.buffer
	if e.masked {
		shown = make([]rune, len(e.buffer))
		for i := range shown {
			shown[i] = '*'
		}
	}
	before := string(shown[:e.cursor])
	if e.cursor >= len(shown) {
		return before + cursorStyle.Render(" ")
	}
	return before + cursorStyle.Render(string(shown[e.cursor])) + string(shown[e.cursor+1:])
}
