// Package search provides full-text search over commit history.
package search

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/index/scorch"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/devflow/chronicle-go/internal/models"
)

// Index is a bleve-backed commit index searchable by message, author, and
// touched files.
type Index struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
}

// Result is one search hit with its relevance score.
type Result struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
}

// NewMemIndex creates an in-memory commit index.
func NewMemIndex() (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating commit index: %w", err)
	}
	return &Index{bleveIndex: index}, nil
}

// OpenIndex opens (or creates) a persistent commit index at path.
func OpenIndex(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	index, err := bleve.NewUsing(path, buildIndexMapping(), scorch.Name, scorch.Name, nil)
	if err != nil {
		index, err = bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening commit index: %w", err)
		}
	}

	return &Index{bleveIndex: index}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	commitMapping := bleve.NewDocumentMapping()

	commitMapping.AddFieldMappingsAt("message", bleve.NewTextFieldMapping())
	commitMapping.AddFieldMappingsAt("author", bleve.NewTextFieldMapping())
	commitMapping.AddFieldMappingsAt("files", bleve.NewTextFieldMapping())

	timestampMapping := bleve.NewDateTimeFieldMapping()
	commitMapping.AddFieldMappingsAt("timestamp", timestampMapping)

	hashMapping := bleve.NewTextFieldMapping()
	hashMapping.IncludeInAll = false
	commitMapping.AddFieldMappingsAt("hash", hashMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", commitMapping)

	return indexMapping
}

// IndexCommits adds commits to the index in one batch, keyed by full hash
// so re-indexing the same history is idempotent.
func (i *Index) IndexCommits(commits []models.Commit) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()
	for _, c := range commits {
		docID := c.FullHash
		if docID == "" {
			docID = c.Hash
		}

		doc := map[string]interface{}{
			"hash":      c.Hash,
			"message":   c.Message,
			"author":    c.Author,
			"files":     c.Files,
			"timestamp": c.Timestamp,
		}
		if err := batch.Index(docID, doc); err != nil {
			return fmt.Errorf("indexing commit %s: %w", c.Hash, err)
		}
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("batch indexing commits: %w", err)
	}
	return nil
}

// Search runs a match query over the indexed commits.
func (i *Index) Search(queryText string, limit int) ([]Result, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	request := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(queryText), limit, 0, false)
	request.Fields = []string{"hash", "message", "author", "timestamp"}

	results, err := i.bleveIndex.Search(request)
	if err != nil {
		return nil, fmt.Errorf("commit search failed: %w", err)
	}

	hits := make([]Result, 0, len(results.Hits))
	for _, hit := range results.Hits {
		r := Result{Score: hit.Score}
		r.Hash, _ = hit.Fields["hash"].(string)
		r.Message, _ = hit.Fields["message"].(string)
		r.Author, _ = hit.Fields["author"].(string)
		if raw, ok := hit.Fields["timestamp"].(string); ok {
			if ts, err := time.Parse(time.RFC3339, raw); err == nil {
				r.Timestamp = ts
			}
		}
		hits = append(hits, r)
	}

	return hits, nil
}

// Count returns the number of indexed commits.
func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.bleveIndex.DocCount()
}

// Close releases the index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.bleveIndex.Close()
}
