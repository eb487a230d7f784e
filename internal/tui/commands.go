package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/pders01/flick/internal/analytics"
	"github.com/pders01/flick/internal/debuglog"
	"github.com/pders01/flick/internal/movie"
)

func fetchMovies(ctx context.Context, fetcher movie.Fetcher, seq uint64, query string) tea.Cmd {
	return func() tea.Msg {
		movies, err := fetcher.FetchMovies(ctx, query)
		return moviesFetchedMsg{seq: seq, query: query, movies: movies, err: err}
	}
}

// recordSearch reports a search in the background. Failures are logged
// and never reach the screen.
func recordSearch(parent context.Context, rec analytics.Recorder, timeout time.Duration, query string, m movie.Movie) tea.Cmd {
	return func() tea.Msg {
		ctx := parent
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parent, timeout)
			defer cancel()
		}
		if err := rec.RecordSearch(ctx, query, m); err != nil {
			debuglog.WithFields(map[string]interface{}{
				"query":    query,
				"movie_id": m.ID,
			}).Warnf("recording search failed: %v", err)
			return nil
		}
		debuglog.Debugf("recorded search %q -> %d", query, m.ID)
		return nil
	}
}

func renderDetail(r *glamour.TermRenderer, m movie.Movie) tea.Cmd {
	return func() tea.Msg {
		md := detailMarkdown(m)
		if r == nil {
			return detailRenderedMsg{movieID: m.ID, content: md}
		}
		rendered, err := r.Render(md)
		if err != nil {
			return detailRenderedMsg{movieID: m.ID, content: fmt.Sprintf("# Error\n\nFailed to render details: %s\n\nPress Escape to go back.", err.Error())}
		}
		return detailRenderedMsg{movieID: m.ID, content: rendered}
	}
}

// detailMarkdown describes a movie as markdown for the detail view.
func detailMarkdown(m movie.Movie) string {
	var b strings.Builder

	title := m.Title
	if y := m.Year(); y != "" {
		title = fmt.Sprintf("%s (%s)", title, y)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if m.OriginalTitle != "" && m.OriginalTitle != m.Title {
		fmt.Fprintf(&b, "*%s*\n\n", m.OriginalTitle)
	}

	fmt.Fprintf(&b, "**Rating:** ★ %s (%d votes)", m.Rating(), m.VoteCount)
	if m.ReleaseDate != "" {
		fmt.Fprintf(&b, " • **Released:** %s", m.ReleaseDate)
	}
	if m.OriginalLanguage != "" {
		fmt.Fprintf(&b, " • **Language:** %s", strings.ToUpper(m.OriginalLanguage))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "[TMDB page](%s)\n\n", m.PageURL())
	fmt.Fprintf(&b, "Poster: %s\n\n", m.PosterURL())
	b.WriteString("---\n\n")

	if strings.TrimSpace(m.Overview) != "" {
		b.WriteString(m.Overview)
	} else {
		b.WriteString("*No overview available.*")
	}
	b.WriteString("\n")
	return b.String()
}
