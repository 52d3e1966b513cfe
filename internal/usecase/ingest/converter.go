package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"docsearch/internal/domain"
)

// PDFConverter extracts a PDF's text into page-structured markdown.
type PDFConverter struct {
	logger *zap.Logger
}

// NewPDFConverter creates a PDF converter.
func NewPDFConverter(logger *zap.Logger) *PDFConverter {
	return &PDFConverter{logger: logger}
}

// Convert reads the PDF at path and returns its markdown rendering, one
// section per page. Unparsable documents return domain.ErrConversion and
// never a panic; no partial artifact is persisted because Convert only
// returns text — persistence is the caller's job.
func (c *PDFConverter) Convert(ctx context.Context, path string) (markdown string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrConversion, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", domain.ErrConversion, path, err)
	}
	defer f.Close()

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			c.logger.Warn("Failed to extract page text",
				zap.String("path", path), zap.Int("page", i), zap.Error(err))
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		fmt.Fprintf(&b, "## Page %d\n\n%s\n\n", i, text)
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("%w: no extractable text in %s", domain.ErrConversion, path)
	}

	return b.String(), nil
}
