package keys

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"
)

// KeyMap holds every binding the views match against. The help view
// renders it through ShortHelp and FullHelp.
type KeyMap struct {
	Down, Up     key.Binding
	Select, Back key.Binding
	Quit, Help   key.Binding
	Search       key.Binding
	Command      key.Binding
	Refresh      key.Binding

	New, Edit, Delete, Duplicate, Toggle key.Binding

	CycleFilter, CycleSort, ClearFilter key.Binding
	Categories, DarkMode                key.Binding

	// Detail view only; [ and ] are bound there.
	Compare, Restore key.Binding
}

// bind builds a binding whose help key is the first of keys unless label
// is set.
func bind(label, desc string, keys ...string) key.Binding {
	if label == "" {
		label = keys[0]
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down:    bind("j/↓", "down", "j", "down"),
		Up:      bind("k/↑", "up", "k", "up"),
		Select:  bind("", "open detail", "enter"),
		Back:    bind("", "back", "esc"),
		Quit:    bind("", "quit", "q"),
		Help:    bind("", "toggle help", "?"),
		Search:  bind("", "search", "/"),
		Command: bind("", "command palette", ":"),
		Refresh: bind("", "reload", "r"),

		New:       bind("", "new item", "n"),
		Edit:      bind("", "edit", "e"),
		Delete:    bind("", "delete", "d"),
		Duplicate: bind("", "duplicate", "y"),
		Toggle:    bind("space/x", "toggle done", " ", "x"),

		CycleFilter: bind("", "cycle filter", "f"),
		CycleSort:   bind("", "cycle sort", "tab"),
		ClearFilter: bind("⌫", "clear filters", "backspace"),
		Categories:  bind("", "categories", "c"),
		DarkMode:    bind("", "dark mode", "m"),

		Compare: bind("", "compare version", "v"),
		Restore: bind("", "restore version", "R"),
	}
}

// ShortHelp implements help.KeyMap.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.New,
		k.Toggle, k.Quit, k.Help,
	}
}

// FullHelp implements help.KeyMap; one column per group.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.New, k.Edit, k.Delete, k.Duplicate, k.Toggle},
		{k.Search, k.CycleFilter, k.CycleSort, k.ClearFilter, k.Categories},
		{k.Command, k.Help, k.Refresh, k.DarkMode},
		{k.Compare, k.Restore},
	}
}

// FormKeyMap returns the huh form bindings with esc added to Quit, so every
// form and confirmation can be dismissed the same way as the other views.
func FormKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = bind("esc", "cancel", "esc", "ctrl+c")
	return km
}
