package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgSearching     = "Searching…"
	MsgLoadingDetail = "Loading details…"
	MsgStartTyping   = "Start typing to search for movies"
	MsgNoMovies      = "No movies found"
	MsgPlaceholder   = "Search for a movie"
)

func MsgResultsFor(query string) string {
	return "Search Results for " + strings.TrimSpace(query)
}

func MsgSearchError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 movie"
	}
	return fmt.Sprintf("%d movies", n)
}

func MsgOpening(kind, url string) string {
	return fmt.Sprintf("Opening %s %s", kind, url)
}
