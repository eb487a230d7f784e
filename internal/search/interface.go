package search

import "github.com/pders01/flick/internal/movie"

// MovieSource supplies movies for a full reindex. storage.Store
// implements it over the result cache.
type MovieSource interface {
	AllCachedMovies() ([]movie.Movie, error)
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

var (
	_ movie.Fetcher = (*Index)(nil)
	_ movie.Indexer = (*Index)(nil)
	_ DebugStatser  = (*Index)(nil)
)
