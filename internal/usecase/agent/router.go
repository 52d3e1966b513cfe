// Package agent routes a research request to one of three strategies —
// grounded document answering, literature search, or web search — and
// resolves every strategy to the same uniform Result shape.
package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docsearch/internal/domain"
	"docsearch/internal/transport/arxiv"
	"docsearch/internal/transport/tavily"
)

// Fixed answers for search strategies; the payload lives in Details.
const (
	answerLiterature      = "Literature search completed. See details below."
	answerLiteratureEmpty = "No papers were found for this query."
	answerWeb             = "Web search completed. See details below."
	answerWebEmpty        = "No web results were found for this query."
)

// Request is one routed research question.
type Request struct {
	Document string          `json:"document"`
	Query    string          `json:"query"`
	Strategy domain.Strategy `json:"strategy"`
}

// GroundedAnswerer answers a question against an ingested document.
type GroundedAnswerer interface {
	Answer(ctx context.Context, document, query string) (domain.Result, error)
}

// LiteratureSearcher finds academic papers for a query.
type LiteratureSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]arxiv.Paper, error)
}

// WebSearcher finds general web results for a query.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]tavily.Hit, error)
}

// Router dispatches requests on a closed strategy enum. Routing is pure
// dispatch: equal requests with equal downstream responses produce equal
// results, and no strategy falls through to another on failure.
type Router struct {
	grounded      GroundedAnswerer
	literature    LiteratureSearcher
	web           WebSearcher
	maxLiterature int
	maxWeb        int
	logger        *zap.Logger
}

// NewRouter creates a strategy router.
func NewRouter(grounded GroundedAnswerer, literature LiteratureSearcher, web WebSearcher, logger *zap.Logger) *Router {
	return &Router{
		grounded:      grounded,
		literature:    literature,
		web:           web,
		maxLiterature: defaultSearchResults,
		maxWeb:        defaultSearchResults,
		logger:        logger,
	}
}

const defaultSearchResults = 10

// WithMaxResults overrides how many hits each search strategy fetches.
func (r *Router) WithMaxResults(literature, web int) *Router {
	if literature > 0 {
		r.maxLiterature = literature
	}
	if web > 0 {
		r.maxWeb = web
	}
	return r
}

// Route executes the request's strategy. Unknown strategies fail with
// domain.ErrUnknownStrategy; they are never coerced to a default.
func (r *Router) Route(ctx context.Context, req Request) (domain.Result, error) {
	strategy, err := domain.ParseStrategy(string(req.Strategy))
	if err != nil {
		return domain.Result{}, err
	}

	r.logger.Info("Routing request",
		zap.String("strategy", string(strategy)),
		zap.String("document", req.Document),
	)

	switch strategy {
	case domain.StrategyGrounded:
		return r.grounded.Answer(ctx, req.Document, req.Query)
	case domain.StrategyLiterature:
		return r.routeLiterature(ctx, req.Query)
	case domain.StrategyWeb:
		return r.routeWeb(ctx, req.Query)
	default:
		return domain.Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, strategy)
	}
}

func (r *Router) routeLiterature(ctx context.Context, query string) (domain.Result, error) {
	papers, err := r.literature.Search(ctx, query, r.maxLiterature)
	if err != nil {
		return domain.Result{}, fmt.Errorf("literature search: %w", err)
	}
	if len(papers) == 0 {
		return domain.Result{Answer: answerLiteratureEmpty, Details: ""}, nil
	}

	var b strings.Builder
	for i, p := range papers {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Title: %s\nSummary: %s\nPDF: %s\n", p.Title, p.Summary, p.PDFURL)
	}
	return domain.Result{Answer: answerLiterature, Details: b.String()}, nil
}

func (r *Router) routeWeb(ctx context.Context, query string) (domain.Result, error) {
	hits, err := r.web.Search(ctx, query, r.maxWeb)
	if err != nil {
		return domain.Result{}, fmt.Errorf("web search: %w", err)
	}
	if len(hits) == 0 {
		return domain.Result{Answer: answerWebEmpty, Details: ""}, nil
	}

	var b strings.Builder
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Title: %s\nURL: %s\nSnippet: %s\n", h.Title, h.URL, h.Snippet)
	}
	return domain.Result{Answer: answerWeb, Details: b.String()}, nil
}
