package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/flick/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.TestConfig()
	cfg.API.BaseURL = server.URL
	cfg.API.Token = "test-token"
	return NewClient(cfg)
}

func TestClient_FetchMovies(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		serverResponse func(t *testing.T, w http.ResponseWriter, r *http.Request)
		expectCount    int
		expectError    string
	}{
		{
			name:  "search by title",
			query: "the dark knight",
			serverResponse: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/search/movie", r.URL.Path)
				assert.Equal(t, "the dark knight", r.URL.Query().Get("query"))
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Accept"))
				assert.Equal(t, "flick-test/1.0", r.Header.Get("User-Agent"))
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"page":1,"results":[
					{"id":155,"title":"The Dark Knight","poster_path":"/qJ2tW6WMUDux911r6m7haRef0WH.jpg","release_date":"2008-07-16","vote_average":8.5},
					{"id":272,"title":"Batman Begins","release_date":"2005-06-10","vote_average":7.7}
				],"total_pages":1,"total_results":2}`))
			},
			expectCount: 2,
		},
		{
			name:  "empty query discovers popular movies",
			query: "   ",
			serverResponse: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/discover/movie", r.URL.Path)
				assert.Equal(t, "popularity.desc", r.URL.Query().Get("sort_by"))
				w.Write([]byte(`{"page":1,"results":[{"id":1,"title":"Popular"}]}`))
			},
			expectCount: 1,
		},
		{
			name:  "duplicate ids are dropped",
			query: "dup",
			serverResponse: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"results":[{"id":1,"title":"a"},{"id":1,"title":"b"},{"id":2,"title":"c"}]}`))
			},
			expectCount: 2,
		},
		{
			name:  "no matches",
			query: "xyzzy",
			serverResponse: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"page":1,"results":[],"total_pages":0,"total_results":0}`))
			},
			expectCount: 0,
		},
		{
			name:  "unauthorized carries api message",
			query: "batman",
			serverResponse: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key."}`))
			},
			expectError: "Failed to fetch movies: 401 Unauthorized (Invalid API key: You must be granted a valid key.)",
		},
		{
			name:  "server error",
			query: "batman",
			serverResponse: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectError: "Failed to fetch movies: 500 Internal Server Error",
		},
		{
			name:  "malformed body",
			query: "batman",
			serverResponse: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"results": [`))
			},
			expectError: "decoding response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				tt.serverResponse(t, w, r)
			})

			movies, err := client.FetchMovies(context.Background(), tt.query)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.Len(t, movies, tt.expectCount)
		})
	}
}

func TestClient_StatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`not json`))
	})

	_, err := client.FetchMovies(context.Background(), "batman")
	var se *StatusError
	require.True(t, errors.As(err, &se), "got %T: %v", err, err)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Empty(t, se.Message)
	assert.Equal(t, "Failed to fetch movies: 404 Not Found", err.Error())
}

func TestClient_ParsesMovieFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":603,"title":"The Matrix","overview":"A hacker learns the truth.","poster_path":"/m.jpg","backdrop_path":"/b.jpg","release_date":"1999-03-30","vote_average":8.2,"vote_count":25000,"popularity":80.5,"original_language":"en","genre_ids":[28,878]}]}`))
	})

	movies, err := client.FetchMovies(context.Background(), "matrix")
	require.NoError(t, err)
	require.Len(t, movies, 1)

	m := movies[0]
	assert.Equal(t, 603, m.ID)
	assert.Equal(t, "The Matrix", m.Title)
	assert.Equal(t, "1999", m.Year())
	assert.Equal(t, "8.2", m.Rating())
	assert.Equal(t, []int{28, 878}, m.GenreIDs)
	assert.Equal(t, "en", m.OriginalLanguage)
}

func TestClient_MaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":1},{"id":2},{"id":3}]}`))
	}))
	defer server.Close()

	cfg := config.TestConfig()
	cfg.API.BaseURL = server.URL
	cfg.Search.MaxResults = 2

	movies, err := NewClient(cfg).FetchMovies(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, movies, 2)
}

func TestClient_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchMovies(ctx, "slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(nil)
	assert.Equal(t, "https://api.themoviedb.org/3", c.baseURL)
	assert.Equal(t, defaultUserAgent, c.userAgent)
	assert.Equal(t, defaultTimeout, c.client.Timeout)
	assert.Equal(t, "https://api.themoviedb.org/3/search/movie?query=a+b", c.endpointFor("a b"))
}
