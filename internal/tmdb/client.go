package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pders01/flick/internal/config"
	"github.com/pders01/flick/internal/movie"
)

const (
	defaultUserAgent = "flick/1.0 (movie search; github.com/pders01/flick)"
	defaultTimeout   = 15 * time.Second
)

// Client talks to the TMDB v3 REST API.
type Client struct {
	client     *http.Client
	baseURL    string
	token      string
	userAgent  string
	maxResults int
}

func NewClient(cfg *config.Config) *Client {
	timeout := defaultTimeout
	userAgent := defaultUserAgent
	maxResults := 0
	baseURL := "https://api.themoviedb.org/3"
	var token string

	if cfg != nil {
		token = cfg.API.Token
		if cfg.API.HTTPTimeout > 0 {
			timeout = cfg.API.HTTPTimeout
		}
		if cfg.API.UserAgent != "" {
			userAgent = cfg.API.UserAgent
		}
		if cfg.API.BaseURL != "" {
			baseURL = cfg.API.BaseURL
		}
		maxResults = cfg.Search.MaxResults
	}

	return &Client{
		client:     &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		userAgent:  userAgent,
		maxResults: maxResults,
	}
}

type searchResponse struct {
	Page         int           `json:"page"`
	Results      []movie.Movie `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

type errorResponse struct {
	StatusMessage string `json:"status_message"`
	StatusCode    int    `json:"status_code"`
}

// FetchMovies searches by title, or lists popular movies for an empty query.
func (c *Client) FetchMovies(ctx context.Context, query string) ([]movie.Movie, error) {
	endpoint := c.endpointFor(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching movies: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, statusError(resp)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	movies := movie.Dedupe(body.Results)
	if c.maxResults > 0 && len(movies) > c.maxResults {
		movies = movies[:c.maxResults]
	}
	return movies, nil
}

func (c *Client) endpointFor(query string) string {
	if q := strings.TrimSpace(query); q != "" {
		return c.baseURL + "/search/movie?query=" + url.QueryEscape(query)
	}
	return c.baseURL + "/discover/movie?sort_by=popularity.desc"
}

// StatusError reports a non-2xx response from TMDB. Its text is shown to
// the user as is, after "Error: ".
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return "Failed to fetch movies: " + e.Status + " (" + e.Message + ")"
	}
	return "Failed to fetch movies: " + e.Status
}

func statusError(resp *http.Response) error {
	text := resp.Status
	if text == "" {
		text = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	se := &StatusError{StatusCode: resp.StatusCode, Status: text}
	var apiErr errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
		se.Message = apiErr.StatusMessage
	}
	return se
}
