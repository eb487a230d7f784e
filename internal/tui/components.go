package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// renderHeader returns a consistently styled header with an optional muted subtitle.
// Width is used to guide truncation via helpers; zero means unknown.
func renderHeader(title, subtitle string, width int) string {
	if width > 0 {
		title = truncateEnd(title, width-2)
		subtitle = truncateEnd(subtitle, width-2)
	}
	rows := []string{HeaderStyle.Render(title)}
	if subtitle != "" {
		rows = append(rows, renderMuted(subtitle))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderInputFrame draws a rounded bordered container around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

// renderCentered centers the provided content within the given width/height box.
func renderCentered(width, height int, content string) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

// The state renderers below are pure functions of their inputs.

func renderLoading(spinnerView string) string {
	return spinnerView + " " + renderMuted(MsgSearching)
}

func renderError(err error) string {
	return ErrorMessageStyle.Render(MsgSearchError(err))
}

func renderResultsLabel(query string, count, width int) string {
	return renderHeader(MsgResultsFor(query)+" · "+MsgResultsCount(count), "", width)
}

func renderEmptyState(query string) string {
	if isBlank(query) {
		return renderHelp(MsgStartTyping)
	}
	return renderMuted(MsgNoMovies)
}
