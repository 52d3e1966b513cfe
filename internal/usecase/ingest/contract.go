package ingest

import (
	"context"

	"docsearch/internal/domain"
)

// BlobStore is the blob repository surface the ingestion pipeline consumes.
type BlobStore interface {
	ListPDFs(ctx context.Context) ([]string, error)
	GetPDF(ctx context.Context, key string) ([]byte, error)
	PutMarkdown(ctx context.Context, doc, markdown string) (string, error)
	GetMarkdown(ctx context.Context, doc string) (string, error)
	PutChunk(ctx context.Context, chunk domain.Chunk) (string, error)
	DeleteChunks(ctx context.Context, doc string) (int, error)
}

// IndexStore is the vector index surface the ingestion pipeline consumes.
type IndexStore interface {
	Ensure(ctx context.Context, doc string) error
	Upsert(ctx context.Context, chunk domain.Chunk, vector []float32, blobKey string) error
	DeleteAll(ctx context.Context, doc string) error
}

// Embedder produces a fixed-dimension vector from text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Converter turns a local document file into markdown.
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}
