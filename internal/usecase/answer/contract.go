package answer

import (
	"context"

	"docsearch/internal/domain"
)

// IndexStore is the retrieval surface the answering pipeline consumes.
type IndexStore interface {
	Query(ctx context.Context, indexName string, vector []float32, topK int) ([]domain.Match, error)
	ListNames(ctx context.Context) ([]string, error)
}

// BlobStore resolves a match's blob key to the stored chunk text.
type BlobStore interface {
	GetChunkByKey(ctx context.Context, key string) (string, error)
}

// Embedder produces the query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer generates an answer from a system prompt and a user prompt.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
