// Package workflows orchestrates the ingestion pipeline as a Temporal
// workflow: discover source PDFs, then convert and index each document in
// a fixed per-document order. Documents are independent; one document's
// failure is recorded and the run continues.
package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"docsearch/internal/activities"
)

const (
	QueryGetProgress = "GetProgress"
)

// IngestWorkflow converts and indexes documents. Per document the step
// order is fixed: convert first, index second; the index step never runs
// when conversion failed.
func IngestWorkflow(ctx workflow.Context, input IngestInput) (IngestProgress, error) {
	progress := IngestProgress{
		RunID:       input.RunID,
		PerDocument: map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetProgress, func() (IngestProgress, error) {
		return progress, nil
	}); err != nil {
		return progress, err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	keys := input.PDFKeys
	if len(keys) == 0 {
		var listOut activities.ListDocumentsOutput
		if err := workflow.ExecuteActivity(ctx, "ListDocumentsActivity", activities.ListDocumentsInput{}).Get(ctx, &listOut); err != nil {
			return progress, err
		}
		keys = listOut.Keys
	}
	progress.Total = len(keys)

	for _, key := range keys {
		progress.PerDocument[key] = "processing"

		var procOut activities.ProcessDocumentOutput
		if err := workflow.ExecuteActivity(ctx, "ProcessDocumentActivity", activities.ProcessDocumentInput{PDFKey: key}).Get(ctx, &procOut); err != nil {
			progress.Failed++
			progress.PerDocument[key] = "failed"
			continue
		}

		var idxOut activities.IndexDocumentOutput
		if err := workflow.ExecuteActivity(ctx, "IndexDocumentActivity", activities.IndexDocumentInput{Document: procOut.Document}).Get(ctx, &idxOut); err != nil {
			progress.Failed++
			progress.PerDocument[key] = "failed"
			continue
		}

		progress.Done++
		progress.PerDocument[key] = "indexed"
	}

	return progress, nil
}
