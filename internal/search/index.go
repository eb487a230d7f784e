package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/flick/internal/debuglog"
	"github.com/pders01/flick/internal/movie"
)

const defaultLimit = 30

// Index is a local full-text index of movies seen in earlier fetches. It
// doubles as an offline movie.Fetcher.
type Index struct {
	idx   bleve.Index
	limit int
}

// Open opens the index at path, creating it when missing. An empty path or
// ":memory:" gives an in-memory index.
func Open(path string) (*Index, error) {
	var idx bleve.Index
	var err error

	if path == "" || path == ":memory:" {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating memory index: %w", err)
		}
		return &Index{idx: idx, limit: defaultLimit}, nil
	}

	if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
		return nil, fmt.Errorf("creating index directory: %w", mkErr)
	}

	idx, err = bleve.Open(path)
	if err != nil {
		debuglog.Infof("creating search index at %s", path)
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}
	return &Index{idx: idx, limit: defaultLimit}, nil
}

// SetLimit caps the number of movies FetchMovies returns.
func (i *Index) SetLimit(n int) {
	if n > 0 {
		i.limit = n
	}
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()
	dm.Dynamic = false

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.IncludeTermVectors = true

	originalTitle := bleve.NewTextFieldMapping()
	originalTitle.Analyzer = standard.Name

	overview := bleve.NewTextFieldMapping()
	overview.Analyzer = standard.Name
	overview.IncludeTermVectors = false

	year := bleve.NewTextFieldMapping()
	year.Analyzer = keyword.Name

	popularity := bleve.NewNumericFieldMapping()

	// The full movie is kept as JSON so hits can be returned without a
	// second lookup.
	raw := bleve.NewTextFieldMapping()
	raw.Index = false
	raw.Store = true
	raw.IncludeInAll = false

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("original_title", originalTitle)
	dm.AddFieldMappingsAt("overview", overview)
	dm.AddFieldMappingsAt("year", year)
	dm.AddFieldMappingsAt("popularity", popularity)
	dm.AddFieldMappingsAt("raw", raw)

	im.DefaultMapping = dm
	return im
}

// IndexMovies adds or replaces movies in one batch.
func (i *Index) IndexMovies(movies []movie.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	batch := i.idx.NewBatch()
	for _, m := range movies {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encoding movie %d: %w", m.ID, err)
		}
		if err := batch.Index(docID(m.ID), map[string]any{
			"title":          m.Title,
			"original_title": m.OriginalTitle,
			"overview":       m.Overview,
			"year":           m.Year(),
			"popularity":     m.Popularity,
			"raw":            string(data),
		}); err != nil {
			return err
		}
	}
	return i.idx.Batch(batch)
}

// Reindex loads every movie src knows about into the index.
func (i *Index) Reindex(src MovieSource) (int, error) {
	movies, err := src.AllCachedMovies()
	if err != nil {
		return 0, err
	}
	if err := i.IndexMovies(movies); err != nil {
		return 0, err
	}
	return len(movies), nil
}

// FetchMovies searches titles and overviews. An empty query lists the most
// popular indexed movies.
func (i *Index) FetchMovies(ctx context.Context, q string) ([]movie.Movie, error) {
	var query bleveQuery.Query
	tokens := tokenize(q)

	if strings.TrimSpace(q) == "" {
		query = bleve.NewMatchAllQuery()
	} else if len(tokens) == 0 {
		return []movie.Movie{}, nil
	} else {
		var qs []bleveQuery.Query
		for _, tok := range tokens {
			qs = append(qs,
				fieldMatch("title", tok, 4.0),
				fieldPrefix("title", tok, 3.5),
				fieldMatch("original_title", tok, 2.5),
				fieldMatch("overview", tok, 1.0),
				fieldPrefix("overview", tok, 0.8),
			)
			if isYear(tok) {
				tq := bleve.NewTermQuery(tok)
				tq.SetField("year")
				tq.SetBoost(2.0)
				qs = append(qs, tq)
			}
		}
		query = bleve.NewDisjunctionQuery(qs...)
	}

	req := bleve.NewSearchRequestOptions(query, i.limit, 0, false)
	req.Fields = []string{"raw"}
	if _, all := query.(*bleveQuery.MatchAllQuery); all {
		req.SortBy([]string{"-popularity", "_id"})
	}

	res, err := i.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	out := make([]movie.Movie, 0, len(res.Hits))
	for _, h := range res.Hits {
		raw, ok := h.Fields["raw"].(string)
		if !ok {
			continue
		}
		var m movie.Movie
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			debuglog.Warnf("skipping unreadable index document %s: %v", h.ID, err)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (i *Index) DocCount() (int, error) {
	n, err := i.idx.DocCount()
	return int(n), err
}

func (i *Index) Close() error {
	return i.idx.Close()
}

func fieldMatch(field, tok string, boost float64) bleveQuery.Query {
	q := bleve.NewMatchQuery(tok)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

func fieldPrefix(field, tok string, boost float64) bleveQuery.Query {
	q := bleve.NewPrefixQuery(tok)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			terms = append(terms, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		terms = append(terms, current.String())
	}
	return terms
}

func isYear(tok string) bool {
	if len(tok) != 4 {
		return false
	}
	_, err := strconv.Atoi(tok)
	return err == nil
}

func docID(id int) string { return "movie:" + strconv.Itoa(id) }
