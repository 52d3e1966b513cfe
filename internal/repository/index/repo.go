// Package index manages per-document vector indexes: one FT index per
// document over hash entries holding the embedding and a pointer back to
// the externally stored chunk text.
package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"docsearch/internal/db"
	"docsearch/internal/domain"
)

// Entry hash field names.
const (
	fieldID       = "id"
	fieldVector   = "vector"
	fieldBlobKey  = "blob_key"
	fieldDocument = "document_name"
)

// store is the consumer interface for the index repository (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	ListIndexes(ctx context.Context) ([]string, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo reads and writes per-document vector indexes.
type Repo struct {
	store store
	dim   int
}

// New creates an index repository with the configured vector dimension.
func New(s store, dim int) *Repo {
	return &Repo{store: s, dim: dim}
}

func entryKey(doc string, seq int) string {
	return "entry:" + doc + ":" + strconv.Itoa(seq)
}

func entryPrefix(doc string) string {
	return "entry:" + doc + ":"
}

// Ensure creates the document's index if absent. Idempotent: a concurrent
// creation racing past the existence check is absorbed, both callers
// observe success.
func (r *Repo) Ensure(ctx context.Context, doc string) error {
	def := &db.IndexDefinition{
		Name:     domain.IndexName(doc),
		Prefixes: []string{entryPrefix(doc)},
		Fields: []db.IndexField{
			{Name: fieldVector, Type: db.IndexFieldVector, VectorDim: r.dim},
			{Name: fieldBlobKey, Type: db.IndexFieldTag},
			{Name: fieldDocument, Type: db.IndexFieldTag},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("ensure index for %s: %w", doc, err)
	}
	return nil
}

// Upsert writes one index entry. The chunk's blob key must already be
// durable: callers write text before calling Upsert so no queryable entry
// ever references a missing blob.
func (r *Repo) Upsert(ctx context.Context, chunk domain.Chunk, vector []float32, blobKey string) error {
	fields := map[string]string{
		fieldID:       chunk.ID(),
		fieldVector:   db.VectorBytes(vector),
		fieldBlobKey:  blobKey,
		fieldDocument: chunk.Document,
	}
	if err := r.store.HSet(ctx, entryKey(chunk.Document, chunk.Seq), fields); err != nil {
		return fmt.Errorf("upsert entry %s: %w", chunk.ID(), err)
	}
	return nil
}

// Query runs a top-k similarity search against a named index and returns
// matches ordered by descending similarity. An index with no entries
// yields an empty slice, not an error.
func (r *Repo) Query(ctx context.Context, indexName string, vector []float32, topK int) ([]domain.Match, error) {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName,
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{fieldID, fieldBlobKey, fieldDocument},
	})
	if err != nil {
		return nil, fmt.Errorf("query index %s: %w", indexName, err)
	}

	matches := make([]domain.Match, 0, len(res.Entries))
	for _, e := range res.Entries {
		matches = append(matches, domain.Match{
			ID:       e.Fields[fieldID],
			Score:    e.Score,
			BlobKey:  e.Fields[fieldBlobKey],
			Document: e.Fields[fieldDocument],
		})
	}
	return matches, nil
}

// DeleteAll drops the document's index together with all its entries.
// Absent indexes are a no-op so re-ingestion of a fresh document works.
func (r *Repo) DeleteAll(ctx context.Context, doc string) error {
	err := r.store.DropIndex(ctx, domain.IndexName(doc), true)
	if err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("delete index for %s: %w", doc, err)
	}
	return nil
}

// Exists reports whether a named index is present.
func (r *Repo) Exists(ctx context.Context, indexName string) (bool, error) {
	return r.store.IndexExists(ctx, indexName)
}

// ListNames returns all index names known to the store.
func (r *Repo) ListNames(ctx context.Context) ([]string, error) {
	return r.store.ListIndexes(ctx)
}
