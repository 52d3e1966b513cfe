package workflows

// IngestInput starts an ingestion run. PDFKeys limits the run to specific
// source keys; when empty the workflow ingests every discovered document.
type IngestInput struct {
	RunID   string   `json:"run_id"`
	PDFKeys []string `json:"pdf_keys,omitempty"`
}

// IngestProgress is the query-visible state of a running ingestion.
type IngestProgress struct {
	RunID       string            `json:"run_id"`
	Total       int               `json:"total"`
	Done        int               `json:"done"`
	Failed      int               `json:"failed"`
	PerDocument map[string]string `json:"per_document"`
}
