package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pders01/flick/internal/movie"
	bolt "go.etcd.io/bbolt"
)

var (
	metricsBucket = []byte("metrics")
	cacheBucket   = []byte("cache")
)

// ErrNotFound is returned when a key has no record.
var ErrNotFound = errors.New("not found")

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, 1*time.Second)
}

// NewStoreWithTimeout opens the database, waiting up to timeout for the file lock.
func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{metricsBucket, cacheBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// IncrementSearchCount bumps the counter for term, creating the record with
// m as its representative movie on first use.
func (s *Store) IncrementSearchCount(term string, m movie.Movie) (*SearchMetric, error) {
	key := movie.NormalizeQuery(term)
	if key == "" {
		return nil, fmt.Errorf("search term cannot be empty")
	}

	var metric SearchMetric
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(metricsBucket)
		if data := b.Get([]byte(key)); data != nil {
			if err := json.Unmarshal(data, &metric); err != nil {
				return err
			}
			metric.Count++
		} else {
			metric = SearchMetric{
				SearchTerm: term,
				Count:      1,
				MovieID:    m.ID,
				Title:      m.Title,
				PosterURL:  m.PosterURL(),
			}
		}
		metric.UpdatedAt = s.now()

		data, err := json.Marshal(metric)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return nil, err
	}
	return &metric, nil
}

func (s *Store) GetSearchMetric(term string) (*SearchMetric, error) {
	var metric SearchMetric
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(metricsBucket).Get([]byte(movie.NormalizeQuery(term)))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &metric)
	})
	if err != nil {
		return nil, err
	}
	return &metric, nil
}

// TopSearches returns metrics ordered by count, most searched first.
func (s *Store) TopSearches(limit int) ([]*SearchMetric, error) {
	var metrics []*SearchMetric
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(metricsBucket).ForEach(func(_ []byte, v []byte) error {
			var metric SearchMetric
			if err := json.Unmarshal(v, &metric); err != nil {
				return nil
			}
			metrics = append(metrics, &metric)
			return nil
		})
	})
	sort.SliceStable(metrics, func(i, j int) bool {
		if metrics[i].Count != metrics[j].Count {
			return metrics[i].Count > metrics[j].Count
		}
		return metrics[i].UpdatedAt.After(metrics[j].UpdatedAt)
	})
	if limit > 0 && len(metrics) > limit {
		metrics = metrics[:limit]
	}
	return metrics, err
}

// CacheMovies stores a result set under the normalized query.
func (s *Store) CacheMovies(query string, movies []movie.Movie) error {
	key := movie.NormalizeQuery(query)
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(CachedResult{Query: key, Movies: movies, FetchedAt: s.now()})
		if err != nil {
			return err
		}
		return tx.Bucket(cacheBucket).Put([]byte(key), data)
	})
}

// CachedMovies returns the cached result set if it is younger than maxAge.
func (s *Store) CachedMovies(query string, maxAge time.Duration) ([]movie.Movie, bool, error) {
	var cached CachedResult
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(cacheBucket).Get([]byte(movie.NormalizeQuery(query)))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &cached)
	})
	if err != nil || !found {
		return nil, false, err
	}
	if maxAge > 0 && s.now().Sub(cached.FetchedAt) > maxAge {
		return nil, false, nil
	}
	return cached.Movies, true, nil
}

// PurgeCache deletes cached result sets older than maxAge and reports how many went.
func (s *Store) PurgeCache(maxAge time.Duration) (int, error) {
	removed := 0
	cutoff := s.now().Add(-maxAge)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(cacheBucket)
		// Deleting through a live cursor skips the following key.
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var cached CachedResult
			if err := json.Unmarshal(v, &cached); err != nil || cached.FetchedAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// AllCachedMovies returns every cached movie, deduplicated by ID.
func (s *Store) AllCachedMovies() ([]movie.Movie, error) {
	var all []movie.Movie
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).ForEach(func(_ []byte, v []byte) error {
			var cached CachedResult
			if err := json.Unmarshal(v, &cached); err != nil {
				return nil
			}
			all = append(all, cached.Movies...)
			return nil
		})
	})
	return movie.Dedupe(all), err
}
