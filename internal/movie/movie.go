package movie

import (
	"context"
	"fmt"
	"strings"
)

const (
	// ImageBaseURL is the TMDB CDN prefix for w500 posters.
	ImageBaseURL = "https://image.tmdb.org/t/p/w500"
	// PlaceholderPoster is used when a movie has no poster.
	PlaceholderPoster = "https://placehold.co/600x400/1a1a1a/FFFFFF.png"
	pageBaseURL       = "https://www.themoviedb.org/movie/"
)

// Movie is a single search result. Values are treated as immutable once a
// Fetcher returns them.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	OriginalLanguage string  `json:"original_language"`
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`
	GenreIDs         []int   `json:"genre_ids"`
}

// Year returns the release year or "" when the date is unknown.
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// PosterURL returns an absolute poster URL, falling back to a placeholder.
func (m Movie) PosterURL() string {
	if m.PosterPath == "" {
		return PlaceholderPoster
	}
	if strings.HasPrefix(m.PosterPath, "http://") || strings.HasPrefix(m.PosterPath, "https://") {
		return m.PosterPath
	}
	return ImageBaseURL + m.PosterPath
}

// PageURL returns the movie's TMDB page.
func (m Movie) PageURL() string {
	return fmt.Sprintf("%s%d", pageBaseURL, m.ID)
}

// Rating formats VoteAverage on TMDB's ten point scale.
func (m Movie) Rating() string {
	return fmt.Sprintf("%.1f", m.VoteAverage)
}

// Fetcher resolves a query to a list of movies.
type Fetcher interface {
	FetchMovies(ctx context.Context, query string) ([]Movie, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, query string) ([]Movie, error)

func (f FetcherFunc) FetchMovies(ctx context.Context, query string) ([]Movie, error) {
	return f(ctx, query)
}

// NormalizeQuery is the canonical form used for cache and metric keys.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Dedupe drops movies whose ID was already seen, keeping the first one.
func Dedupe(movies []Movie) []Movie {
	if len(movies) < 2 {
		return movies
	}
	seen := make(map[int]struct{}, len(movies))
	out := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
