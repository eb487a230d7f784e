package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/flick/internal/media"
)

type KeyHandler struct {
	screen *Screen
	keys   keyMap
}

func NewKeyHandler(screen *Screen, keys keyMap) *KeyHandler {
	return &KeyHandler{screen: screen, keys: keys}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := kh.screen

	if key.Matches(msg, kh.keys.Quit) {
		return kh.quit()
	}

	switch {
	case s.view == ViewDetail:
		return kh.handleDetailKeys(msg)
	case s.focus == FocusGrid:
		return kh.handleGridKeys(msg)
	default:
		return kh.handleInputKeys(msg)
	}
}

func (kh *KeyHandler) quit() (tea.Model, tea.Cmd) {
	kh.screen.Unmount()
	return kh.screen, tea.Quit
}

func (kh *KeyHandler) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := kh.screen

	switch {
	case key.Matches(msg, kh.keys.Focus), msg.Type == tea.KeyDown:
		if len(s.state.Results) > 0 {
			s.focusGrid()
		}
		return s, nil

	case key.Matches(msg, kh.keys.Back):
		if !isBlank(s.input.Value()) {
			return s, s.SetQuery("")
		}
		return s, nil

	case key.Matches(msg, kh.keys.Open):
		// Open the first result straight from the search box.
		if len(s.state.Results) > 0 {
			s.selected = 0
			return s, s.openDetail(0)
		}
		return s, nil
	}

	return kh.delegateToTextInput(msg)
}

// delegateToTextInput passes the key to the search box and reports any
// change of its value as a query change.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := kh.screen
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, tea.Batch(cmd, s.SetQuery(s.input.Value()))
}

func (kh *KeyHandler) handleGridKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := kh.screen
	columns := s.columns()
	total := len(s.state.Results)

	switch {
	case key.Matches(msg, kh.keys.QuitShort):
		return kh.quit()
	case key.Matches(msg, kh.keys.Back), key.Matches(msg, kh.keys.Focus), key.Matches(msg, kh.keys.Search):
		s.focusInput()
	case key.Matches(msg, kh.keys.Up):
		if s.selected-columns < 0 {
			s.focusInput()
		} else {
			s.selected -= columns
		}
	case key.Matches(msg, kh.keys.Down):
		if s.selected+columns < total {
			s.selected += columns
		} else if s.selected/columns < (total-1)/columns {
			s.selected = total - 1
		}
	case key.Matches(msg, kh.keys.Left):
		if s.selected > 0 {
			s.selected--
		}
	case key.Matches(msg, kh.keys.Right):
		if s.selected < total-1 {
			s.selected++
		}
	case key.Matches(msg, kh.keys.Open):
		return s, s.openDetail(s.selected)
	case key.Matches(msg, kh.keys.OpenPage):
		if m, ok := s.selectedMovie(); ok {
			return s, kh.openURL(m.PageURL())
		}
	case key.Matches(msg, kh.keys.OpenPoster):
		if m, ok := s.selectedMovie(); ok {
			return s, kh.openURL(m.PosterURL())
		}
	}
	return s, nil
}

func (kh *KeyHandler) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := kh.screen

	switch {
	case key.Matches(msg, kh.keys.QuitShort):
		return kh.quit()
	case key.Matches(msg, kh.keys.Back):
		return kh.navigateBack()
	case key.Matches(msg, kh.keys.OpenPage):
		if s.current != nil {
			return s, kh.openURL(s.current.PageURL())
		}
		return s, nil
	case key.Matches(msg, kh.keys.OpenPoster):
		if s.current != nil {
			return s, kh.openURL(s.current.PosterURL())
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

// navigateBack leaves the detail view for the grid it was opened from.
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	s := kh.screen
	s.view = ViewSearch
	s.current = nil
	s.loadingDetail = false
	if len(s.state.Results) > 0 {
		s.focusGrid()
	} else {
		s.focusInput()
	}
	return s, nil
}

// openURL opens a URL using the launcher and handles errors appropriately
func (kh *KeyHandler) openURL(url string) tea.Cmd {
	opener := kh.screen.opener
	kind := media.DetectType(url).String()
	return func() tea.Msg {
		if opener == nil {
			return errorMsg{err: fmt.Errorf("no application configured to open %s", url)}
		}
		if err := opener.Open(url); err != nil {
			return errorMsg{err: wrapErr("failed to open "+truncateMiddle(url, 60), err)}
		}
		return statusMsg{text: MsgOpening(kind, truncateMiddle(url, 60)), kind: StatusSuccess}
	}
}

// helpBindings returns the bindings shown in the help bar for the current view.
func (kh *KeyHandler) helpBindings() []key.Binding {
	s := kh.screen
	switch {
	case s.view == ViewDetail:
		return []key.Binding{kh.keys.Back, kh.keys.OpenPage, kh.keys.OpenPoster, kh.keys.Up, kh.keys.Down, kh.keys.Quit}
	case s.focus == FocusGrid:
		return []key.Binding{kh.keys.Open, kh.keys.OpenPage, kh.keys.OpenPoster, kh.keys.Search, kh.keys.Quit}
	case len(s.state.Results) > 0:
		return []key.Binding{kh.keys.Focus, kh.keys.Open, kh.keys.Back, kh.keys.Quit}
	default:
		return []key.Binding{kh.keys.Quit}
	}
}
