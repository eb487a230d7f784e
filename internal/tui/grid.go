package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/flick/internal/movie"
)

const (
	defaultSeparatorWidth = 16
	defaultCardWidth      = 24
	minCardWidth          = 12
	posterHeight          = 3
	// cardHeight is poster, title and meta lines plus the border.
	cardHeight = posterHeight + 2 + 2
)

// ListSeparator is a blank spacer placed between grid cards. Width
// defaults to 16 cells when omitted or not positive.
func ListSeparator(width ...int) string {
	w := defaultSeparatorWidth
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	return strings.Repeat(" ", w)
}

// cardWidthFor splits width into columns cards separated by gap cells.
func cardWidthFor(width, columns, gap int) int {
	if columns < 1 {
		columns = 1
	}
	if gap < 0 {
		gap = 0
	}
	if width <= 0 {
		return defaultCardWidth
	}
	w := (width - gap*(columns-1)) / columns
	if w < minCardWidth {
		w = minCardWidth
	}
	return w
}

// renderGrid lays movies out columns wide. selected is an index into movies,
// or -1 for no highlight.
func renderGrid(movies []movie.Movie, columns, gap, width, selected int) string {
	if len(movies) == 0 {
		return ""
	}
	if columns < 1 {
		columns = 1
	}
	cardWidth := cardWidthFor(width, columns, gap)

	var rows []string
	for i := 0; i < len(movies); i += columns {
		end := min(i+columns, len(movies))
		cells := make([]string, 0, 2*(end-i))
		for j := i; j < end; j++ {
			if j > i && gap > 0 {
				cells = append(cells, ListSeparator(gap))
			}
			cells = append(cells, renderCard(movies[j], cardWidth, j == selected))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n\n")
}

// renderCard draws one movie: a poster placeholder, the title and a
// rating/year line.
func renderCard(m movie.Movie, width int, selected bool) string {
	inner := width - 4
	if inner < 1 {
		inner = 1
	}

	posterLabel := "no poster"
	if m.PosterPath != "" {
		posterLabel = "▣ poster"
	}
	poster := PosterStyle.
		Width(inner).
		Height(posterHeight).
		Render(truncateEnd(posterLabel, inner))

	title := CardTitleStyle.Render(truncateEnd(m.Title, inner))
	meta := RatingStyle.Render("★ "+m.Rating()) + renderMuted(" • "+yearOrNA(m))

	style := CardStyle
	if selected {
		style = SelectedCardStyle
	}
	return style.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, poster, title, meta))
}

func yearOrNA(m movie.Movie) string {
	if y := m.Year(); y != "" {
		return y
	}
	return "N/A"
}

// gridWindow returns the slice bounds of movies that fit in height lines
// while keeping selected visible.
func gridWindow(total, columns, height, selected int) (int, int) {
	if columns < 1 {
		columns = 1
	}
	if height <= 0 || total == 0 {
		return 0, total
	}
	visibleRows := (height + 1) / (cardHeight + 1)
	if visibleRows < 1 {
		visibleRows = 1
	}
	firstRow := 0
	if selected >= 0 {
		if row := selected / columns; row >= visibleRows {
			firstRow = row - visibleRows + 1
		}
	}
	start := firstRow * columns
	end := min(start+visibleRows*columns, total)
	return start, end
}
