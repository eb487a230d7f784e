package storage

import (
	"time"

	"github.com/pders01/flick/internal/movie"
)

// SearchMetric counts how often a search term led to a result. The field
// names match the analytics collection documents.
type SearchMetric struct {
	SearchTerm string    `json:"searchTerm"`
	Count      int       `json:"count"`
	MovieID    int       `json:"movie_id"`
	Title      string    `json:"title"`
	PosterURL  string    `json:"poster_url"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CachedResult is a fetched result set for one normalized query.
type CachedResult struct {
	Query     string        `json:"query"`
	Movies    []movie.Movie `json:"movies"`
	FetchedAt time.Time     `json:"fetched_at"`
}
