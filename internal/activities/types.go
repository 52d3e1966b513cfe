package activities

// ListDocumentsInput has no parameters; the source prefix is configured on
// the blob repository.
type ListDocumentsInput struct{}

type ListDocumentsOutput struct {
	Keys []string `json:"keys"`
}

type ProcessDocumentInput struct {
	PDFKey string `json:"pdf_key"`
}

type ProcessDocumentOutput struct {
	Document    string `json:"document"`
	MarkdownKey string `json:"markdown_key"`
}

type IndexDocumentInput struct {
	Document string `json:"document"`
}

type IndexDocumentOutput struct {
	IndexName string `json:"index_name"`
	Chunks    int    `json:"chunks"`
	Indexed   int    `json:"indexed"`
	Skipped   int    `json:"skipped"`
}
