package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/flick/internal/analytics"
	"github.com/pders01/flick/internal/config"
	"github.com/pders01/flick/internal/debuglog"
	"github.com/pders01/flick/internal/movie"
)

// Opener opens a URL outside the terminal. media.Launcher implements it.
type Opener interface {
	Open(url string) error
}

// Screen is the movie search screen. All state changes happen on the
// bubbletea event loop; commands report back through messages.
type Screen struct {
	config     *config.Config
	fetcher    movie.Fetcher
	recorder   analytics.Recorder
	opener     Opener
	keyHandler *KeyHandler

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model

	view          View
	focus         Focus
	state         SearchState
	resultsQuery  string
	selected      int
	current       *movie.Movie
	loadingDetail bool
	status        string
	statusKind    StatusKind
	width         int
	height        int

	debounce         time.Duration
	analyticsDelay   time.Duration
	analyticsTimeout time.Duration

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int

	ctx         context.Context
	cancel      context.CancelFunc
	fetchCancel context.CancelFunc

	searchSeq    uint64
	fetchSeq     uint64
	analyticsSeq uint64
	unmounted    bool
}

func NewScreen(cfg *config.Config, fetcher movie.Fetcher, recorder analytics.Recorder, opener Opener) *Screen {
	if recorder == nil {
		recorder = analytics.Nop{}
	}
	ApplyTheme(cfg.UI.Colors)

	ti := textinput.New()
	ti.Placeholder = MsgPlaceholder
	ti.Prompt = "⌕ "
	ti.CharLimit = maxQueryLength
	ti.Width = 40
	ti.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(PrimaryColor)),
	)

	ctx, cancel := context.WithCancel(context.Background())

	s := &Screen{
		config:           cfg,
		fetcher:          fetcher,
		recorder:         recorder,
		opener:           opener,
		input:            ti,
		spinner:          sp,
		viewport:         viewport.New(0, 0),
		help:             help.New(),
		view:             ViewSearch,
		focus:            FocusInput,
		debounce:         cfg.Search.Debounce,
		analyticsDelay:   cfg.Analytics.Delay,
		analyticsTimeout: cfg.Analytics.Timeout,
		ctx:              ctx,
		cancel:           cancel,
	}
	s.keyHandler = NewKeyHandler(s, newKeyMap(cfg.Keys.Bindings))
	return s
}

// State returns a copy of the current search state.
func (s *Screen) State() SearchState {
	return s.state
}

func (s *Screen) Init() tea.Cmd {
	return textinput.Blink
}

// Unmount cancels both timers and any in-flight fetch. Messages that
// arrive afterwards are dropped.
func (s *Screen) Unmount() {
	if s.unmounted {
		return
	}
	s.unmounted = true
	s.searchSeq++
	s.analyticsSeq++
	s.fetchSeq++
	if s.fetchCancel != nil {
		s.fetchCancel()
		s.fetchCancel = nil
	}
	s.cancel()
}

func (s *Screen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if s.unmounted {
		return s, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(msg.Width, msg.Height)
		return s, nil

	case tea.KeyMsg:
		return s.keyHandler.HandleKey(msg)

	case searchDebounceFireMsg:
		return s, s.onDebounceFire(msg)

	case moviesFetchedMsg:
		return s, s.onMoviesFetched(msg)

	case analyticsFireMsg:
		return s, s.onAnalyticsFire(msg)

	case detailRenderedMsg:
		if s.view == ViewDetail && s.current != nil && s.current.ID == msg.movieID {
			s.viewport.SetContent(msg.content)
			s.viewport.GotoTop()
			s.loadingDetail = false
		}
		return s, nil

	case spinner.TickMsg:
		if !s.state.Loading && !s.loadingDetail {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case statusMsg:
		s.setStatus(msg.text, msg.kind)
		return s, nil

	case errorMsg:
		debuglog.Warnf("%v", msg.err)
		s.setStatus(msg.err.Error(), StatusError)
		return s, nil

	case tea.MouseMsg:
		if s.view == ViewDetail {
			var cmd tea.Cmd
			s.viewport, cmd = s.viewport.Update(msg)
			return s, cmd
		}
		return s, nil
	}

	if s.view == ViewSearch && s.focus == FocusInput {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// SetQuery records a change of the search box text. It never fetches
// directly: a non-blank query schedules a debounced search, a blank one
// resets the screen at once.
func (s *Screen) SetQuery(text string) tea.Cmd {
	if s.unmounted {
		return nil
	}
	if s.input.Value() != text {
		s.input.SetValue(text)
	}
	if text == s.state.Query {
		return nil
	}

	prev := s.state.Query
	s.state.Query = text
	s.status = ""

	if isBlank(text) {
		s.reset()
		return nil
	}
	if sanitizeQuery(text) == sanitizeQuery(prev) {
		return nil
	}

	s.cancelAnalytics()
	return s.scheduleSearch()
}

func (s *Screen) scheduleSearch() tea.Cmd {
	s.searchSeq++
	seq := s.searchSeq
	return tea.Tick(s.debounce, func(time.Time) tea.Msg { return searchDebounceFireMsg{seq: seq} })
}

func (s *Screen) scheduleAnalytics() tea.Cmd {
	s.analyticsSeq++
	seq := s.analyticsSeq
	return tea.Tick(s.analyticsDelay, func(time.Time) tea.Msg { return analyticsFireMsg{seq: seq} })
}

func (s *Screen) cancelAnalytics() {
	s.analyticsSeq++
}

func (s *Screen) cancelFetch() {
	s.fetchSeq++
	if s.fetchCancel != nil {
		s.fetchCancel()
		s.fetchCancel = nil
	}
}

// reset returns to the initial state, dropping every pending timer and
// any in-flight fetch.
func (s *Screen) reset() {
	s.searchSeq++
	s.cancelAnalytics()
	s.cancelFetch()

	s.state.Results = nil
	s.state.Loading = false
	s.state.Err = nil
	s.resultsQuery = ""
	s.selected = 0
	s.focus = FocusInput
	s.input.Focus()
}

func (s *Screen) onDebounceFire(msg searchDebounceFireMsg) tea.Cmd {
	if msg.seq != s.searchSeq {
		return nil
	}
	q := sanitizeQuery(s.state.Query)
	if q == "" {
		return nil
	}
	return s.startFetch(q)
}

func (s *Screen) startFetch(query string) tea.Cmd {
	s.cancelFetch()
	ctx, cancel := context.WithCancel(s.ctx)
	s.fetchCancel = cancel
	seq := s.fetchSeq

	s.state.Loading = true
	s.state.Err = nil
	debuglog.Debugf("fetching movies for %q", query)

	return tea.Batch(s.spinner.Tick, fetchMovies(ctx, s.fetcher, seq, query))
}

func (s *Screen) onMoviesFetched(msg moviesFetchedMsg) tea.Cmd {
	if msg.seq != s.fetchSeq {
		debuglog.Debugf("dropping superseded results for %q", msg.query)
		return nil
	}
	if s.fetchCancel != nil {
		s.fetchCancel()
		s.fetchCancel = nil
	}
	s.state.Loading = false
	s.selected = 0

	if msg.err != nil {
		debuglog.Warnf("search %q failed: %v", msg.query, msg.err)
		s.state.Err = msg.err
		s.state.Results = []movie.Movie{}
		s.resultsQuery = ""
		s.focusInput()
		return nil
	}

	results := movie.Dedupe(msg.movies)
	if results == nil {
		results = []movie.Movie{}
	}
	s.state.Results = results
	s.state.Err = nil
	s.resultsQuery = msg.query

	if len(results) == 0 {
		s.focusInput()
		return nil
	}
	return s.scheduleAnalytics()
}

func (s *Screen) onAnalyticsFire(msg analyticsFireMsg) tea.Cmd {
	if msg.seq != s.analyticsSeq {
		return nil
	}
	s.analyticsSeq++

	q := sanitizeQuery(s.state.Query)
	if q == "" || q != s.resultsQuery || len(s.state.Results) == 0 || s.state.Loading || s.state.Err != nil {
		return nil
	}
	return recordSearch(s.ctx, s.recorder, s.analyticsTimeout, q, s.state.Results[0])
}

func (s *Screen) openDetail(idx int) tea.Cmd {
	if idx < 0 || idx >= len(s.state.Results) {
		return nil
	}
	m := s.state.Results[idx]
	s.current = &m
	s.view = ViewDetail
	s.loadingDetail = true
	s.viewport.SetContent("")

	r, err := s.getRenderer()
	if err != nil {
		debuglog.Warnf("creating markdown renderer: %v", err)
	}
	return tea.Batch(s.spinner.Tick, renderDetail(r, m))
}

func (s *Screen) selectedMovie() (movie.Movie, bool) {
	if s.selected < 0 || s.selected >= len(s.state.Results) {
		return movie.Movie{}, false
	}
	return s.state.Results[s.selected], true
}

func (s *Screen) focusGrid() {
	s.focus = FocusGrid
	s.input.Blur()
	if s.selected >= len(s.state.Results) {
		s.selected = 0
	}
}

func (s *Screen) focusInput() {
	s.focus = FocusInput
	s.input.Focus()
}

func (s *Screen) columns() int {
	if c := s.config.UI.Grid.Columns; c > 0 {
		return c
	}
	return 1
}

func (s *Screen) setStatus(text string, kind StatusKind) {
	s.status = text
	s.statusKind = kind
}

func (s *Screen) resize(width, height int) {
	s.width = width
	s.height = height
	s.help.Width = width

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = width - 4
	}
	if inputWidth > 60 {
		inputWidth = 60
	}
	s.input.Width = inputWidth

	s.viewport.Width = width
	s.viewport.Height = max(height-5, 1)
}

func (s *Screen) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (s.width * 9) / 10
	if wordWrapWidth > 100 {
		wordWrapWidth = 100
	}
	if wordWrapWidth < 40 {
		wordWrapWidth = 40
	}

	if s.glamourRenderer == nil || abs(s.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		s.glamourRenderer = r
		s.rendererWidth = wordWrapWidth
	}
	return s.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (s *Screen) View() string {
	if s.unmounted {
		return ""
	}

	var content string
	switch s.view {
	case ViewDetail:
		content = s.detailView()
	default:
		content = s.searchView()
	}

	footer := s.footer()
	out := lipgloss.JoinVertical(lipgloss.Left, content, footer)
	if s.width > 0 && s.height > 0 {
		return lipgloss.Place(s.width, s.height, lipgloss.Left, lipgloss.Top, out,
			lipgloss.WithWhitespaceBackground(BackgroundColor))
	}
	return out
}

func (s *Screen) searchView() string {
	st := s.state

	header := lipgloss.JoinVertical(
		lipgloss.Center,
		renderLogo(),
		"",
		renderInputFrame(s.input.View(), s.focus == FocusInput, s.input.Width),
	)
	if s.width > 0 {
		header = lipgloss.PlaceHorizontal(s.width, lipgloss.Center, header)
	}

	rows := []string{header, ""}
	if line := s.statusLine(); line != "" {
		rows = append(rows, line, "")
	}

	switch {
	case len(st.Results) > 0:
		selected := -1
		if s.focus == FocusGrid {
			selected = s.selected
		}
		avail := 0
		if s.height > 0 {
			avail = s.height - lipgloss.Height(strings.Join(rows, "\n")) - 3
		}
		start, end := gridWindow(len(st.Results), s.columns(), avail, selected)
		if selected >= 0 {
			selected -= start
		}
		rows = append(rows, renderGrid(st.Results[start:end], s.columns(), s.config.UI.Grid.Gap, s.width, selected))
	case !st.Loading && st.Err == nil:
		rows = append(rows, renderEmptyState(st.Query))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// statusLine is the conditional line under the search box: loading, then
// error, then the results label.
func (s *Screen) statusLine() string {
	st := s.state
	switch {
	case st.Loading:
		return renderLoading(s.spinner.View())
	case st.Err != nil:
		return renderError(st.Err)
	case !isBlank(st.Query) && len(st.Results) > 0:
		return renderResultsLabel(st.Query, len(st.Results), s.width)
	}
	return ""
}

func (s *Screen) detailView() string {
	if s.current == nil {
		return ""
	}
	header := renderHeader("› "+s.current.Title, truncateMiddle(s.current.PageURL(), max(s.width-2, 20)), s.width)
	if s.loadingDetail {
		body := s.spinner.View() + " " + renderMuted(MsgLoadingDetail)
		return lipgloss.JoinVertical(lipgloss.Left, header, renderCentered(s.width, s.height-5, body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, s.viewport.View())
}

func (s *Screen) footer() string {
	separatorWidth := s.width - 2
	if separatorWidth < 0 {
		separatorWidth = 0
	}
	separator := SeparatorStyle.Render("─" + strings.Repeat("─", separatorWidth))

	lines := []string{separator}
	if s.status != "" {
		lines = append(lines, StatusBarStyle.Render(s.statusKind.style().Render(truncateEnd(s.status, max(s.width-2, 20)))))
	}
	lines = append(lines, StatusBarStyle.Render(s.help.ShortHelpView(s.keyHandler.helpBindings())))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
