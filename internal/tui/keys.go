package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Choose   key.Binding
	Increase key.Binding
	Decrease key.Binding
	Focus    key.Binding
	Close    key.Binding
	Search   key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Choose: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "choose option"),
		),
		Increase: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "more"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "less"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "menu/cart"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
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
}

// contextHelp adapts the bindings relevant to the current focus for help.Model.
type contextHelp struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h contextHelp) ShortHelp() []key.Binding  { return h.short }
func (h contextHelp) FullHelp() [][]key.Binding { return h.full }

func (k keyMap) catalogHelp() contextHelp {
	return contextHelp{
		short: []key.Binding{k.Up, k.Down, k.Select, k.Focus, k.Help, k.Quit},
		full: [][]key.Binding{
			{k.Up, k.Down, k.Select},
			{k.Focus, k.Search, k.Reload},
			{k.Help, k.Quit},
		},
	}
}

func (k keyMap) cartHelp() contextHelp {
	return contextHelp{
		short: []key.Binding{k.Up, k.Down, k.Increase, k.Decrease, k.Focus, k.Quit},
		full: [][]key.Binding{
			{k.Up, k.Down},
			{k.Increase, k.Decrease},
			{k.Focus, k.Reload, k.Help, k.Quit},
		},
	}
}

func (k keyMap) modalHelp() contextHelp {
	add := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add order"))
	return contextHelp{
		short: []key.Binding{k.Up, k.Down, k.Choose, k.Increase, k.Decrease, add, k.Close},
		full: [][]key.Binding{
			{k.Up, k.Down, k.Choose},
			{k.Increase, k.Decrease},
			{add, k.Close},
		},
	}
}

func (k keyMap) searchHelp() contextHelp {
	done := key.NewBinding(key.WithKeys("esc", "enter"), key.WithHelp("esc", "done"))
	return contextHelp{
		short: []key.Binding{done},
		full:  [][]key.Binding{{done}},
	}
}
