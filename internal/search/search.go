// Package search answers free-text queries over index records using an
// in-memory bleve index.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	cerrors "github.com/Aman-CERP/cohorts/internal/errors"
	"github.com/Aman-CERP/cohorts/internal/index"
)

// DefaultLimit is the number of hits returned when no limit is given.
const DefaultLimit = 20

// Hit is one matching record.
type Hit struct {
	Record index.FileRecord `json:"record"`
	Score  float64          `json:"score"`
}

// document is what bleve sees for one record. Field names follow the
// json tags, so queries use filename:, year:, district: and subject:.
type document struct {
	Filename string `json:"filename"`
	Year     string `json:"year"`
	District string `json:"district"`
	Subject  string `json:"subject"`
}

// Index is a searchable view of a record list.
type Index struct {
	mu      sync.RWMutex
	index   bleve.Index
	records map[string]index.FileRecord
	closed  bool
}

// New indexes records in memory. Records are keyed by filename.
func New(ctx context.Context, records []index.FileRecord) (*Index, error) {
	m, err := newMapping()
	if err != nil {
		return nil, fmt.Errorf("failed to create index mapping: %w", err)
	}

	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	s := &Index{
		index:   idx,
		records: make(map[string]index.FileRecord, len(records)),
	}

	batch := idx.NewBatch()
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			_ = idx.Close()
			return nil, err
		}
		s.records[r.Filename] = r
		if err := batch.Index(r.Filename, document(r)); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("failed to index %s: %w", r.Filename, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("failed to execute batch: %w", err)
	}

	slog.Debug("search_index_built", slog.Int("records", len(records)))
	return s, nil
}

func newMapping() (*mapping.IndexMappingImpl, error) {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name

	keyword := bleve.NewKeywordFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("filename", keyword)
	doc.AddFieldMappingsAt("year", text)
	doc.AddFieldMappingsAt("district", text)
	doc.AddFieldMappingsAt("subject", text)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = standard.Name
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Search runs a query-string query and returns up to limit hits, best
// first. Hits with equal scores are ordered by filename.
func (s *Index) Search(ctx context.Context, queryStr string, limit int) ([]Hit, error) {
	queryStr = strings.TrimSpace(queryStr)
	if queryStr == "" {
		return nil, cerrors.ValidationError("search query is empty", nil).
			WithSuggestion("Pass one or more terms, e.g. 'cohorts find springfield math'")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	q := bleve.NewQueryStringQuery(queryStr)
	if _, err := q.Parse(); err != nil {
		return nil, cerrors.ValidationError(fmt.Sprintf("invalid search query %q", queryStr), err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("index is closed")
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.SortBy([]string{"-_score", "filename"})

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		r, ok := s.records[h.ID]
		if !ok {
			continue
		}
		hits = append(hits, Hit{Record: r, Score: h.Score})
	}

	slog.Debug("search_complete",
		slog.String("query", queryStr),
		slog.Int("hits", len(hits)),
		slog.Uint64("total", result.Total))

	return hits, nil
}

// Count returns the number of indexed records.
func (s *Index) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("index is closed")
	}
	return s.index.DocCount()
}

// Close releases the index. Safe to call multiple times.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.index.Close()
}
