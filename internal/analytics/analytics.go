package analytics

import (
	"context"
	"fmt"

	"github.com/pders01/flick/internal/config"
	"github.com/pders01/flick/internal/movie"
	"github.com/pders01/flick/internal/storage"
	"github.com/pders01/flick/internal/validation"
)

// Recorder associates a search term with the movie it surfaced.
type Recorder interface {
	RecordSearch(ctx context.Context, query string, m movie.Movie) error
}

// TrendingLister reports the most searched terms.
type TrendingLister interface {
	Trending(ctx context.Context, limit int) ([]storage.SearchMetric, error)
}

// Nop discards every report.
type Nop struct{}

func (Nop) RecordSearch(context.Context, string, movie.Movie) error { return nil }

// New builds the recorder selected by analytics.backend. store may be nil
// unless the backend is "local".
func New(cfg *config.Config, store *storage.Store) (Recorder, error) {
	switch cfg.Analytics.Backend {
	case "", "local":
		if store == nil {
			return nil, fmt.Errorf("local analytics requires a store")
		}
		return NewLocal(store), nil
	case "appwrite":
		validator := validation.NewEndpointValidator()
		if cfg.API.AllowLocalEndpoints {
			validator = validation.NewPermissiveEndpointValidator()
		}
		endpoint, err := validator.ValidateAndNormalize(cfg.Analytics.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("analytics.endpoint: %w", err)
		}
		if cfg.Analytics.ProjectID == "" || cfg.Analytics.DatabaseID == "" {
			return nil, fmt.Errorf("appwrite analytics requires project_id and database_id")
		}
		aw := cfg.Analytics
		aw.Endpoint = endpoint
		return NewAppwrite(aw), nil
	case "none":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown analytics backend %q", cfg.Analytics.Backend)
	}
}
