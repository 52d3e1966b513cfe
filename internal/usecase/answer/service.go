// Package answer implements grounded question answering over previously
// ingested documents: embed the query, retrieve the most similar chunks
// from the document's vector index, then generate an answer conditioned on
// the retrieved context.
package answer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"docsearch/internal/db"
	"docsearch/internal/domain"
)

// Prompts used for context-conditioned generation.
const (
	systemPrompt   = "You are a helpful assistant."
	userPromptTmpl = "Context: %s\n\nQuestion: %s"
)

// Fallback answers for queries that cannot be grounded. Degraded retrieval
// is an answerable state, not an error: the caller still gets a Result.
const (
	answerNoMatches = "No relevant content was found for this question in the selected document."
	answerNoContext = "Relevant matches were found but their content could not be retrieved."
)

// Service answers questions against a single document's index per request.
type Service struct {
	selector *Selector
	index    IndexStore
	blobs    BlobStore
	embed    Embedder
	complete Completer
	topK     int
	logger   *zap.Logger
}

// New creates an answering service.
func New(selector *Selector, index IndexStore, blobs BlobStore, embed Embedder, complete Completer, logger *zap.Logger) *Service {
	return &Service{
		selector: selector,
		index:    index,
		blobs:    blobs,
		embed:    embed,
		complete: complete,
		topK:     domain.DefaultTopK,
		logger:   logger,
	}
}

// WithTopK overrides how many matches are retrieved per query.
func (s *Service) WithTopK(k int) *Service {
	if k > 0 {
		s.topK = k
	}
	return s
}

// Documents returns the document names this service can answer about.
func (s *Service) Documents() []string {
	return s.selector.Documents()
}

// Answer retrieves context for the query from the named document's index
// and generates a grounded answer. Infrastructure failures (embedding,
// search, generation) surface as errors; an empty or unresolvable context
// degrades to a fallback Result instead.
func (s *Service) Answer(ctx context.Context, document, query string) (domain.Result, error) {
	indexName, err := s.selector.Resolve(document)
	if err != nil {
		return domain.Result{}, err
	}

	vector, err := s.embed.Embed(ctx, query)
	if err != nil {
		return domain.Result{}, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.index.Query(ctx, indexName, vector, s.topK)
	if err != nil {
		return domain.Result{}, err
	}

	if len(matches) == 0 {
		s.logger.Info("No matches for query",
			zap.String("document", document), zap.String("index", indexName))
		return domain.Result{Answer: answerNoMatches, Details: ""}, nil
	}

	// Only the best match supplies context; lower-ranked matches are
	// retrieved for scoring but not fed to generation.
	top := matches[0]
	if top.BlobKey == "" {
		s.logger.Warn("Top match carries no blob key",
			zap.String("document", document),
			zap.String("match_id", top.ID),
			zap.Error(domain.ErrMissingContext))
		return domain.Result{Answer: answerNoContext, Details: ""}, nil
	}
	contextText, err := s.blobs.GetChunkByKey(ctx, top.BlobKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			s.logger.Warn("Top match has no retrievable text",
				zap.String("document", document),
				zap.String("match_id", top.ID),
				zap.String("blob_key", top.BlobKey),
				zap.Error(fmt.Errorf("%w: %v", domain.ErrMissingContext, err)))
			return domain.Result{Answer: answerNoContext, Details: ""}, nil
		}
		return domain.Result{}, fmt.Errorf("resolve match %s: %w", top.ID, err)
	}

	answer, err := s.complete.Complete(ctx, systemPrompt, fmt.Sprintf(userPromptTmpl, contextText, query))
	if err != nil {
		return domain.Result{}, err
	}

	s.logger.Info("Answered query",
		zap.String("document", document),
		zap.String("match_id", top.ID),
		zap.Float64("score", top.Score),
	)
	return domain.Result{Answer: answer, Details: contextText}, nil
}
