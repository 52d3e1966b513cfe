package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"docsearch/internal/activities"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func newEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(IngestWorkflow)
	registerActivityName(env, "ListDocumentsActivity", func(context.Context, activities.ListDocumentsInput) (activities.ListDocumentsOutput, error) {
		return activities.ListDocumentsOutput{}, nil
	})
	registerActivityName(env, "ProcessDocumentActivity", func(context.Context, activities.ProcessDocumentInput) (activities.ProcessDocumentOutput, error) {
		return activities.ProcessDocumentOutput{}, nil
	})
	registerActivityName(env, "IndexDocumentActivity", func(context.Context, activities.IndexDocumentInput) (activities.IndexDocumentOutput, error) {
		return activities.IndexDocumentOutput{}, nil
	})
	return env
}

func TestIngestWorkflowSuccess(t *testing.T) {
	env := newEnv(t)

	env.OnActivity("ListDocumentsActivity", mock.Anything, mock.Anything).
		Return(activities.ListDocumentsOutput{Keys: []string{"pdfs/a.pdf", "pdfs/b.pdf"}}, nil)
	env.OnActivity("ProcessDocumentActivity", mock.Anything, activities.ProcessDocumentInput{PDFKey: "pdfs/a.pdf"}).
		Return(activities.ProcessDocumentOutput{Document: "a", MarkdownKey: "a/a.md"}, nil)
	env.OnActivity("ProcessDocumentActivity", mock.Anything, activities.ProcessDocumentInput{PDFKey: "pdfs/b.pdf"}).
		Return(activities.ProcessDocumentOutput{Document: "b", MarkdownKey: "b/b.md"}, nil)
	env.OnActivity("IndexDocumentActivity", mock.Anything, activities.IndexDocumentInput{Document: "a"}).
		Return(activities.IndexDocumentOutput{IndexName: "a-index", Chunks: 3, Indexed: 3}, nil)
	env.OnActivity("IndexDocumentActivity", mock.Anything, activities.IndexDocumentInput{Document: "b"}).
		Return(activities.IndexDocumentOutput{IndexName: "b-index", Chunks: 1, Indexed: 1}, nil)

	env.ExecuteWorkflow(IngestWorkflow, IngestInput{RunID: "run-1"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out IngestProgress
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, 2, out.Total)
	require.Equal(t, 2, out.Done)
	require.Equal(t, 0, out.Failed)
	require.Equal(t, "indexed", out.PerDocument["pdfs/a.pdf"])
	require.Equal(t, "indexed", out.PerDocument["pdfs/b.pdf"])
}

func TestIngestWorkflowExplicitKeysSkipListing(t *testing.T) {
	env := newEnv(t)

	env.OnActivity("ProcessDocumentActivity", mock.Anything, activities.ProcessDocumentInput{PDFKey: "pdfs/only.pdf"}).
		Return(activities.ProcessDocumentOutput{Document: "only", MarkdownKey: "only/only.md"}, nil)
	env.OnActivity("IndexDocumentActivity", mock.Anything, activities.IndexDocumentInput{Document: "only"}).
		Return(activities.IndexDocumentOutput{IndexName: "only-index", Chunks: 1, Indexed: 1}, nil)

	env.ExecuteWorkflow(IngestWorkflow, IngestInput{RunID: "run-2", PDFKeys: []string{"pdfs/only.pdf"}})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	env.AssertNotCalled(t, "ListDocumentsActivity", mock.Anything, mock.Anything)
}

func TestIngestWorkflowFailedDocumentDoesNotAbortRun(t *testing.T) {
	env := newEnv(t)

	env.OnActivity("ListDocumentsActivity", mock.Anything, mock.Anything).
		Return(activities.ListDocumentsOutput{Keys: []string{"pdfs/bad.pdf", "pdfs/good.pdf"}}, nil)
	env.OnActivity("ProcessDocumentActivity", mock.Anything, activities.ProcessDocumentInput{PDFKey: "pdfs/bad.pdf"}).
		Return(activities.ProcessDocumentOutput{}, errors.New("garbled stream"))
	env.OnActivity("ProcessDocumentActivity", mock.Anything, activities.ProcessDocumentInput{PDFKey: "pdfs/good.pdf"}).
		Return(activities.ProcessDocumentOutput{Document: "good", MarkdownKey: "good/good.md"}, nil)
	env.OnActivity("IndexDocumentActivity", mock.Anything, activities.IndexDocumentInput{Document: "good"}).
		Return(activities.IndexDocumentOutput{IndexName: "good-index", Chunks: 2, Indexed: 2}, nil)

	env.ExecuteWorkflow(IngestWorkflow, IngestInput{RunID: "run-3"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out IngestProgress
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, 1, out.Done)
	require.Equal(t, 1, out.Failed)
	require.Equal(t, "failed", out.PerDocument["pdfs/bad.pdf"])
	require.Equal(t, "indexed", out.PerDocument["pdfs/good.pdf"])

	// The failed document must never reach the indexing step.
	env.AssertNotCalled(t, "IndexDocumentActivity", mock.Anything, activities.IndexDocumentInput{Document: "bad"})
}
