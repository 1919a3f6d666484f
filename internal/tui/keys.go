package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add, Edit, Toggle, Delete, Filter, Quit key.Binding
	Submit, Cancel, NextField, Priority     key.Binding
}

var keys = keyMap{
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "done")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "show/hide done")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	NextField: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
	Priority:  key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "priority")),
}

func (k keyMap) browse() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Toggle, k.Delete, k.Filter}
}

func (k keyMap) form() []key.Binding {
	return []key.Binding{k.Submit, k.NextField, k.Priority, k.Cancel}
}
