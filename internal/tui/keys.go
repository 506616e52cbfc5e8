package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Branches  key.Binding
	PRs       key.Binding
	Repo      key.Binding
	Activity  key.Binding
	NextPanel key.Binding
	Menu      key.Binding
	Back      key.Binding

	Up   key.Binding
	Down key.Binding

	Filter key.Binding
	Open   key.Binding
	Delete key.Binding

	Confirm key.Binding
	Cancel  key.Binding

	Token  key.Binding
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var DefaultKeyMap = KeyMap{
	Branches: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "branches"),
	),
	PRs: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "PRs"),
	),
	Repo: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "repo"),
	),
	Activity: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "activity"),
	),
	NextPanel: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next panel"),
	),
	Menu: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "menu"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Filter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "filter"),
	),
	Open: key.NewBinding(
		key.WithKeys("o", "enter"),
		key.WithHelp("o", "open"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete/close"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n", "cancel"),
	),
	Token: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "token"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPanel, k.Down, k.Up, k.Open, k.Delete, k.Filter, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Branches, k.PRs, k.Repo, k.Activity, k.NextPanel, k.Menu},
		{k.Up, k.Down, k.Filter, k.Open, k.Delete},
		{k.Token, k.Reload, k.Back, k.Help, k.Quit},
	}
}
