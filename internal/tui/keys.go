package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	New     key.Binding
	Cycle   key.Binding
	Delete  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Next    key.Binding
	Prev    key.Binding
	Submit  key.Binding
	Left    key.Binding
	Right   key.Binding
	Tab     key.Binding
	View1   key.Binding
	View2   key.Binding
	Login   key.Binding
	Quit    key.Binding
	Force   key.Binding
}

var keys = keyMap{
	New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Cycle:   key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "next status")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Confirm: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Next:    key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:    key.NewBinding(key.WithKeys("shift+tab", "up")),
	Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
	Left:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "choose")),
	Right:   key.NewBinding(key.WithKeys("right")),
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
	View1:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "projects")),
	View2:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "tasks")),
	Login:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "change token")),
	Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	Force:   key.NewBinding(key.WithKeys("ctrl+c")),
}
