package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap contains all key bindings for the checkout wizard.
type KeyMap struct {
	// Wizard actions
	Continue key.Binding
	Submit   key.Binding
	Edit     key.Binding
	Coupon   key.Binding
	NewOrder key.Binding

	// Input handling
	Confirm key.Binding
	Cancel  key.Binding

	// General
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Wizard actions
		Continue: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "continue"),
		),
		Submit: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "submit order"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit a step"),
		),
		Coupon: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "add coupon"),
		),
		NewOrder: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new order"),
		),

		// Input handling
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),

		// General
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

// IsDigit reports whether the key message is a plain digit key and
// returns its value. Digits pick the step to edit.
func (k KeyMap) IsDigit(msg tea.KeyMsg) (int, bool) {
	s := msg.String()
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '0'), true
}
