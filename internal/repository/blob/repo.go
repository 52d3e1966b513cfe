// Package blob stores document artifacts in the key-value store: source
// PDFs under a fixed prefix, one markdown blob per document, and one text
// blob per chunk addressed by content hash.
package blob

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"docsearch/internal/domain"
)

// store is the consumer interface for the blob repository (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo reads and writes document blobs.
type Repo struct {
	store     store
	pdfPrefix string
}

// New creates a blob repository. pdfPrefix is where source PDFs live,
// e.g. "pdfs/".
func New(s store, pdfPrefix string) *Repo {
	return &Repo{store: s, pdfPrefix: pdfPrefix}
}

// ListPDFs returns the keys of all source PDFs, sorted for deterministic
// batch order.
func (r *Repo) ListPDFs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, r.pdfPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("list pdfs: %w", err)
	}
	pdfs := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasSuffix(strings.ToLower(k), ".pdf") {
			pdfs = append(pdfs, k)
		}
	}
	sort.Strings(pdfs)
	return pdfs, nil
}

// GetPDF fetches the raw bytes of a source PDF.
func (r *Repo) GetPDF(ctx context.Context, key string) ([]byte, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get pdf %s: %w", key, err)
	}
	return data, nil
}

// PutMarkdown stores a document's converted markdown, overwriting any
// previous conversion, and returns the blob key.
func (r *Repo) PutMarkdown(ctx context.Context, doc, markdown string) (string, error) {
	key := domain.MarkdownKey(doc)
	if err := r.store.Set(ctx, key, []byte(markdown)); err != nil {
		return "", fmt.Errorf("put markdown %s: %w", key, err)
	}
	return key, nil
}

// GetMarkdown fetches a document's converted markdown.
func (r *Repo) GetMarkdown(ctx context.Context, doc string) (string, error) {
	data, err := r.store.Get(ctx, domain.MarkdownKey(doc))
	if err != nil {
		return "", fmt.Errorf("get markdown for %s: %w", doc, err)
	}
	return string(data), nil
}

// PutChunk durably stores a chunk's raw text and returns its blob key.
// Identical text writes to the identical key, so duplicates overwrite
// harmlessly.
func (r *Repo) PutChunk(ctx context.Context, chunk domain.Chunk) (string, error) {
	key := chunk.BlobKey()
	if err := r.store.Set(ctx, key, []byte(chunk.Text)); err != nil {
		return "", fmt.Errorf("put chunk %s: %w", key, err)
	}
	return key, nil
}

// GetChunkByKey fetches chunk text by its blob key. A missing blob
// surfaces the store's not-found sentinel unchanged so callers can
// distinguish it from transport failures.
func (r *Repo) GetChunkByKey(ctx context.Context, key string) (string, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DeleteChunks removes all chunk blobs of a document and returns how many
// were deleted. Used by delete-then-write re-ingestion.
func (r *Repo) DeleteChunks(ctx context.Context, doc string) (int, error) {
	keys, err := r.store.Scan(ctx, doc+"/metadata/*")
	if err != nil {
		return 0, fmt.Errorf("scan chunks for %s: %w", doc, err)
	}
	deleted := 0
	for _, k := range keys {
		if err := r.store.Del(ctx, k); err != nil {
			return deleted, fmt.Errorf("delete chunk %s: %w", k, err)
		}
		deleted++
	}
	return deleted, nil
}
