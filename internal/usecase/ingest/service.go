// Package ingest implements the ingestion pipeline: fetch a source PDF,
// convert it to markdown, split into content-addressed chunks, embed each
// chunk and persist text + vector. Chunk text is always durably written to
// the blob store before its index entry is upserted, so no queryable entry
// ever points at a missing blob.
package ingest

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"docsearch/internal/domain"
	"docsearch/internal/metrics"
)

// DocumentRef identifies a document and where its current artifact lives.
type DocumentRef struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// IndexReport summarizes one document's indexing run.
type IndexReport struct {
	Document  string `json:"document"`
	IndexName string `json:"index_name"`
	Chunks    int    `json:"chunks"`
	Indexed   int    `json:"indexed"`
	Skipped   int    `json:"skipped"`
}

// Service runs the ingestion pipeline for one document at a time.
// Distinct documents never share blob keys or index names, so concurrent
// ingestion of different documents is safe.
type Service struct {
	blobs         BlobStore
	index         IndexStore
	embed         Embedder
	convert       Converter
	maxChunkWords int
	logger        *zap.Logger
}

// New creates an ingestion service.
func New(blobs BlobStore, index IndexStore, embed Embedder, convert Converter, logger *zap.Logger) *Service {
	return &Service{
		blobs:         blobs,
		index:         index,
		embed:         embed,
		convert:       convert,
		maxChunkWords: domain.DefaultMaxChunkWords,
		logger:        logger,
	}
}

// WithMaxChunkWords overrides the chunk word budget.
func (s *Service) WithMaxChunkWords(n int) *Service {
	if n > 0 {
		s.maxChunkWords = n
	}
	return s
}

// ListDocuments returns all known source documents in deterministic order.
func (s *Service) ListDocuments(ctx context.Context) ([]DocumentRef, error) {
	keys, err := s.blobs.ListPDFs(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]DocumentRef, 0, len(keys))
	for _, k := range keys {
		refs = append(refs, DocumentRef{Name: domain.DocumentNameFromKey(k), Key: k})
	}
	return refs, nil
}

// ProcessDocument fetches a source PDF, converts it and stores the
// markdown artifact, overwriting any previous conversion. A conversion
// failure is fatal for this document only and persists nothing.
func (s *Service) ProcessDocument(ctx context.Context, pdfKey string) (DocumentRef, error) {
	doc := domain.DocumentNameFromKey(pdfKey)

	data, err := s.blobs.GetPDF(ctx, pdfKey)
	if err != nil {
		return DocumentRef{}, err
	}

	tmp, err := os.CreateTemp("", "docsearch-*.pdf")
	if err != nil {
		return DocumentRef{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return DocumentRef{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return DocumentRef{}, fmt.Errorf("close temp file: %w", err)
	}

	markdown, err := s.convert.Convert(ctx, tmp.Name())
	if err != nil {
		metrics.DocumentsProcessedTotal.WithLabelValues("error").Inc()
		return DocumentRef{}, fmt.Errorf("convert %s: %w", pdfKey, err)
	}

	mdKey, err := s.blobs.PutMarkdown(ctx, doc, markdown)
	if err != nil {
		return DocumentRef{}, err
	}

	metrics.DocumentsProcessedTotal.WithLabelValues("ok").Inc()
	s.logger.Info("Converted document",
		zap.String("document", doc),
		zap.String("markdown_key", mdKey),
	)
	return DocumentRef{Name: doc, Key: mdKey}, nil
}

// IndexDocument splits a document's markdown into chunks, embeds them and
// writes text + vector entries. Prior entries and chunk blobs are removed
// first, so a shrinking chunk count cannot leave stale entries behind.
// Per-chunk failures are logged and skipped; one bad chunk never aborts
// the rest of the document.
func (s *Service) IndexDocument(ctx context.Context, doc string) (IndexReport, error) {
	markdown, err := s.blobs.GetMarkdown(ctx, doc)
	if err != nil {
		return IndexReport{}, err
	}

	// Delete-then-write: clear prior state before re-populating.
	if err := s.index.DeleteAll(ctx, doc); err != nil {
		return IndexReport{}, err
	}
	if _, err := s.blobs.DeleteChunks(ctx, doc); err != nil {
		return IndexReport{}, err
	}
	if err := s.index.Ensure(ctx, doc); err != nil {
		return IndexReport{}, err
	}

	// Sequence indices are assigned here, at split time, so they stay
	// deterministic regardless of how chunk writes complete.
	texts := SplitText(markdown, s.maxChunkWords)
	report := IndexReport{
		Document:  doc,
		IndexName: domain.IndexName(doc),
		Chunks:    len(texts),
	}

	for seq, text := range texts {
		chunk := domain.NewChunk(doc, seq, text)

		vector, err := s.embed.Embed(ctx, chunk.Text)
		if err != nil {
			s.skipChunk(chunk, "embed chunk", err, &report)
			continue
		}

		// Text first, entry second: the write-order invariant.
		blobKey, err := s.blobs.PutChunk(ctx, chunk)
		if err != nil {
			s.skipChunk(chunk, "store chunk text", err, &report)
			continue
		}

		if err := s.index.Upsert(ctx, chunk, vector, blobKey); err != nil {
			s.skipChunk(chunk, "upsert index entry", err, &report)
			continue
		}

		metrics.ChunksIndexedTotal.WithLabelValues("ok").Inc()
		report.Indexed++
	}

	s.logger.Info("Indexed document",
		zap.String("document", doc),
		zap.String("index", report.IndexName),
		zap.Int("chunks", report.Chunks),
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

func (s *Service) skipChunk(chunk domain.Chunk, op string, err error, report *IndexReport) {
	metrics.ChunksIndexedTotal.WithLabelValues("skipped").Inc()
	report.Skipped++
	s.logger.Warn("Skipping chunk",
		zap.String("document", chunk.Document),
		zap.Int("seq", chunk.Seq),
		zap.String("op", op),
		zap.Error(err),
	)
}
