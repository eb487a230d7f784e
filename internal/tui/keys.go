package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/pders01/flick/internal/config"
)

type keyMap struct {
	Quit       key.Binding
	QuitShort  key.Binding
	Focus      key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Open       key.Binding
	OpenPage   key.Binding
	OpenPoster key.Binding
	Back       key.Binding
	Search     key.Binding
}

func newKeyMap(b config.KeyBindings) keyMap {
	return keyMap{
		Quit:       binding(b.Quit, "ctrl+c", "quit"),
		QuitShort:  key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Focus:      binding(b.Focus, "tab", "results"),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Open:       binding(b.Open, "enter", "details"),
		OpenPage:   binding(b.OpenPage, "o", "open page"),
		OpenPoster: binding(b.OpenPoster, "p", "poster"),
		Back:       binding(b.Back, "esc", "back"),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	}
}

// binding builds a key.Binding from a comma separated config value,
// falling back to def when the value is empty.
func binding(value, def, desc string) key.Binding {
	var keys []string
	for _, k := range strings.Split(value, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		keys = []string{def}
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(strings.Join(keys, "/"), desc))
}
