package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/appwrite/sdk-for-go/appwrite"
	"github.com/appwrite/sdk-for-go/databases"
	"github.com/appwrite/sdk-for-go/id"
	"github.com/appwrite/sdk-for-go/query"

	"github.com/pders01/flick/internal/config"
	"github.com/pders01/flick/internal/debuglog"
	"github.com/pders01/flick/internal/movie"
	"github.com/pders01/flick/internal/storage"
)

// Appwrite records search counts in an Appwrite database collection.
type Appwrite struct {
	db         *databases.Databases
	databaseID string
	collection string
	timeout    time.Duration
}

func NewAppwrite(cfg config.AnalyticsConfig) *Appwrite {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "metrics"
	}

	client := appwrite.NewClient(
		appwrite.WithEndpoint(strings.TrimRight(cfg.Endpoint, "/")),
		appwrite.WithProject(cfg.ProjectID),
		appwrite.WithKey(cfg.APIKey),
	)

	return &Appwrite{
		db:         appwrite.NewDatabases(client),
		databaseID: cfg.DatabaseID,
		collection: collection,
		timeout:    timeout,
	}
}

type document struct {
	ID         string `json:"$id"`
	SearchTerm string `json:"searchTerm"`
	Count      int    `json:"count"`
	MovieID    int    `json:"movie_id"`
	Title      string `json:"title"`
	PosterURL  string `json:"poster_url"`
	UpdatedAt  string `json:"$updatedAt,omitempty"`
}

type documentList struct {
	Total     int        `json:"total"`
	Documents []document `json:"documents"`
}

// RecordSearch increments the document for q, creating it with m on
// first use.
func (a *Appwrite) RecordSearch(ctx context.Context, q string, m movie.Movie) error {
	q = strings.TrimSpace(q)
	if q == "" {
		return fmt.Errorf("search term cannot be empty")
	}

	existing, err := a.listDocuments(ctx, query.Equal("searchTerm", q))
	if err != nil {
		return err
	}

	if len(existing) > 0 {
		doc := existing[0]
		return a.call(ctx, "update document", func() error {
			_, err := a.db.UpdateDocument(a.databaseID, a.collection, doc.ID,
				a.db.WithUpdateDocumentData(map[string]interface{}{"count": doc.Count + 1}),
			)
			return err
		})
	}

	return a.call(ctx, "create document", func() error {
		_, err := a.db.CreateDocument(a.databaseID, a.collection, id.Unique(), map[string]interface{}{
			"searchTerm": q,
			"movie_id":   m.ID,
			"title":      m.Title,
			"count":      1,
			"poster_url": m.PosterURL(),
		})
		return err
	})
}

// Trending lists documents ordered by count, highest first.
func (a *Appwrite) Trending(ctx context.Context, limit int) ([]storage.SearchMetric, error) {
	queries := []string{query.OrderDesc("count")}
	if limit > 0 {
		queries = append(queries, query.Limit(limit))
	}
	docs, err := a.listDocuments(ctx, queries...)
	if err != nil {
		return nil, err
	}

	metrics := make([]storage.SearchMetric, 0, len(docs))
	for _, d := range docs {
		metric := storage.SearchMetric{
			SearchTerm: d.SearchTerm,
			Count:      d.Count,
			MovieID:    d.MovieID,
			Title:      d.Title,
			PosterURL:  d.PosterURL,
		}
		if t, err := time.Parse(time.RFC3339, d.UpdatedAt); err == nil {
			metric.UpdatedAt = t
		}
		metrics = append(metrics, metric)
	}
	return metrics, nil
}

func (a *Appwrite) listDocuments(ctx context.Context, queries ...string) ([]document, error) {
	var list documentList
	err := a.call(ctx, "list documents", func() error {
		resp, err := a.db.ListDocuments(a.databaseID, a.collection,
			a.db.WithListDocumentsQueries(queries),
		)
		if err != nil {
			return err
		}
		return resp.Decode(&list)
	})
	if err != nil {
		return nil, err
	}
	return list.Documents, nil
}

// call runs an SDK request, returning early when ctx ends or the
// configured timeout passes. The SDK takes no context, so an abandoned
// request finishes in the background.
func (a *Appwrite) call(ctx context.Context, op string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("appwrite %s: %w", op, err)
		}
		return nil
	case <-ctx.Done():
		debuglog.Debugf("appwrite %s abandoned: %v", op, ctx.Err())
		return fmt.Errorf("appwrite %s: %w", op, ctx.Err())
	}
}
