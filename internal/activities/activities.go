// Package activities exposes the ingestion pipeline steps as Temporal
// activities. Each activity is a thin adapter over the ingest service;
// retry semantics live in the workflow's retry policy, except conversion
// failures which are marked non-retryable because a malformed PDF never
// converts on a second attempt.
package activities

import (
	"context"
	"errors"

	"go.temporal.io/sdk/temporal"

	"docsearch/internal/domain"
	"docsearch/internal/usecase/ingest"
)

type Activities struct {
	ingest *ingest.Service
}

func New(svc *ingest.Service) *Activities {
	return &Activities{ingest: svc}
}

func (a *Activities) ListDocumentsActivity(ctx context.Context, _ ListDocumentsInput) (ListDocumentsOutput, error) {
	refs, err := a.ingest.ListDocuments(ctx)
	if err != nil {
		return ListDocumentsOutput{}, err
	}
	keys := make([]string, 0, len(refs))
	for _, r := range refs {
		keys = append(keys, r.Key)
	}
	return ListDocumentsOutput{Keys: keys}, nil
}

func (a *Activities) ProcessDocumentActivity(ctx context.Context, in ProcessDocumentInput) (ProcessDocumentOutput, error) {
	ref, err := a.ingest.ProcessDocument(ctx, in.PDFKey)
	if err != nil {
		if errors.Is(err, domain.ErrConversion) {
			return ProcessDocumentOutput{}, temporal.NewNonRetryableApplicationError(
				err.Error(), "ConversionError", err)
		}
		return ProcessDocumentOutput{}, err
	}
	return ProcessDocumentOutput{Document: ref.Name, MarkdownKey: ref.Key}, nil
}

func (a *Activities) IndexDocumentActivity(ctx context.Context, in IndexDocumentInput) (IndexDocumentOutput, error) {
	report, err := a.ingest.IndexDocument(ctx, in.Document)
	if err != nil {
		return IndexDocumentOutput{}, err
	}
	return IndexDocumentOutput{
		IndexName: report.IndexName,
		Chunks:    report.Chunks,
		Indexed:   report.Indexed,
		Skipped:   report.Skipped,
	}, nil
}
