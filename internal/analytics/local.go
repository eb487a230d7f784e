package analytics

import (
	"context"

	"github.com/pders01/flick/internal/debuglog"
	"github.com/pders01/flick/internal/movie"
	"github.com/pders01/flick/internal/storage"
)

// Local keeps search counts in the bbolt store.
type Local struct {
	store *storage.Store
}

func NewLocal(store *storage.Store) *Local {
	return &Local{store: store}
}

func (l *Local) RecordSearch(ctx context.Context, query string, m movie.Movie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	metric, err := l.store.IncrementSearchCount(query, m)
	if err != nil {
		return err
	}
	debuglog.WithFields(map[string]interface{}{
		"term":  metric.SearchTerm,
		"count": metric.Count,
	}).Debugf("search count updated")
	return nil
}

func (l *Local) Trending(ctx context.Context, limit int) ([]storage.SearchMetric, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	top, err := l.store.TopSearches(limit)
	if err != nil {
		return nil, err
	}
	metrics := make([]storage.SearchMetric, 0, len(top))
	for _, m := range top {
		metrics = append(metrics, *m)
	}
	return metrics, nil
}
