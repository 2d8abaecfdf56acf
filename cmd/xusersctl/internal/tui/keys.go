package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the console's key bindings.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	// Select expands a row, starts editing a field, toggles a checkbox or
	// list item, or presses a submit control, depending on focus.
	Select key.Binding
	Back   key.Binding

	NextTab key.Binding

	// Membership editor moves. Right moves selected assigned names to the
	// available side; left moves selected available names to assigned.
	MoveRight    key.Binding
	MoveLeft     key.Binding
	MoveAllRight key.Binding
	MoveAllLeft  key.Binding

	Submit key.Binding

	ActiveOnly key.Binding
	Filter     key.Binding
	Reload     key.Binding
	Create     key.Binding
	Delete     key.Binding
	Logout     key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "open/edit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "users/groups"),
	),
	MoveRight: key.NewBinding(
		key.WithKeys(">"),
		key.WithHelp(">", "unassign"),
	),
	MoveLeft: key.NewBinding(
		key.WithKeys("<"),
		key.WithHelp("<", "assign"),
	),
	MoveAllRight: key.NewBinding(
		key.WithKeys("}"),
		key.WithHelp("}", "unassign all"),
	),
	MoveAllLeft: key.NewBinding(
		key.WithKeys("{"),
		key.WithHelp("{", "assign all"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "submit"),
	),
	ActiveOnly: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "active only"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Create: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Delete: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "delete group"),
	),
	Logout: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "log out"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
