package movie

import (
	"context"
	"fmt"
	"time"

	"github.com/pders01/flick/internal/debuglog"
	"golang.org/x/sync/singleflight"
)

// ResultCache stores fetched result sets by normalized query.
type ResultCache interface {
	CachedMovies(query string, maxAge time.Duration) ([]Movie, bool, error)
	CacheMovies(query string, movies []Movie) error
}

// Indexer receives every successfully fetched result set.
type Indexer interface {
	IndexMovies(movies []Movie) error
}

// CachingFetcher wraps a Fetcher with a result cache, an optional indexer and
// deduplication of identical concurrent queries.
type CachingFetcher struct {
	next    Fetcher
	cache   ResultCache
	indexer Indexer
	ttl     time.Duration
	sf      singleflight.Group
}

// NewCachingFetcher returns a decorator around next. cache and indexer may be nil.
func NewCachingFetcher(next Fetcher, cache ResultCache, indexer Indexer, ttl time.Duration) *CachingFetcher {
	return &CachingFetcher{
		next:    next,
		cache:   cache,
		indexer: indexer,
		ttl:     ttl,
	}
}

func (c *CachingFetcher) FetchMovies(ctx context.Context, query string) ([]Movie, error) {
	key := NormalizeQuery(query)
	// Callers that join an in-flight query must not inherit the first
	// caller's cancellation. Each caller still returns on its own ctx below.
	shared := context.WithoutCancel(ctx)

	ch := c.sf.DoChan(key, func() (interface{}, error) {
		if c.cache != nil && c.ttl > 0 {
			movies, ok, err := c.cache.CachedMovies(key, c.ttl)
			if err != nil {
				debuglog.Warnf("cache lookup for %q: %v", key, err)
			} else if ok {
				debuglog.Debugf("cache hit for %q (%d movies)", key, len(movies))
				return movies, nil
			}
		}

		movies, err := c.next.FetchMovies(shared, query)
		if err != nil {
			return nil, err
		}
		movies = Dedupe(movies)

		if c.cache != nil {
			if err := c.cache.CacheMovies(key, movies); err != nil {
				debuglog.Warnf("caching results for %q: %v", key, err)
			}
		}
		if c.indexer != nil && len(movies) > 0 {
			if err := c.indexer.IndexMovies(movies); err != nil {
				debuglog.Warnf("indexing results for %q: %v", key, err)
			}
		}
		return movies, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		movies, ok := res.Val.([]Movie)
		if !ok {
			return nil, fmt.Errorf("unexpected result type %T", res.Val)
		}
		return movies, nil
	}
}
