package tui

import "github.com/pders01/flick/internal/movie"

type View int

const (
	ViewSearch View = iota
	ViewDetail
)

// Focus is the part of the search view that receives keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusGrid
)

// SearchState is what the search view renders from. Results is nil until a
// search completes and again after a reset.
type SearchState struct {
	Query   string
	Results []movie.Movie
	Loading bool
	Err     error
}

type searchDebounceFireMsg struct {
	seq uint64
}

type moviesFetchedMsg struct {
	seq    uint64
	query  string
	movies []movie.Movie
	err    error
}

type analyticsFireMsg struct {
	seq uint64
}

type detailRenderedMsg struct {
	movieID int
	content string
}

type statusMsg struct {
	text string
	kind StatusKind
}

type errorMsg struct {
	err error
}
