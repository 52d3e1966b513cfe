package agent

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"docsearch/internal/domain"
	"docsearch/internal/transport/arxiv"
	"docsearch/internal/transport/tavily"
)

type fakeGrounded struct {
	result domain.Result
	err    error
	calls  int
}

func (f *fakeGrounded) Answer(ctx context.Context, document, query string) (domain.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeLiterature struct {
	papers []arxiv.Paper
	err    error
	calls  int
}

func (f *fakeLiterature) Search(ctx context.Context, query string, maxResults int) ([]arxiv.Paper, error) {
	f.calls++
	return f.papers, f.err
}

type fakeWeb struct {
	hits  []tavily.Hit
	err   error
	calls int
}

func (f *fakeWeb) Search(ctx context.Context, query string, maxResults int) ([]tavily.Hit, error) {
	f.calls++
	return f.hits, f.err
}

func TestRouteGrounded(t *testing.T) {
	grounded := &fakeGrounded{result: domain.Result{Answer: "a", Details: "d"}}
	lit := &fakeLiterature{}
	web := &fakeWeb{}
	r := NewRouter(grounded, lit, web, zap.NewNop())

	res, err := r.Route(context.Background(), Request{
		Document: "ai-and-big-data",
		Query:    "q",
		Strategy: domain.StrategyGrounded,
	})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res != (domain.Result{Answer: "a", Details: "d"}) {
		t.Errorf("result = %+v", res)
	}
	if grounded.calls != 1 || lit.calls != 0 || web.calls != 0 {
		t.Errorf("calls grounded=%d lit=%d web=%d, want exactly one grounded call",
			grounded.calls, lit.calls, web.calls)
	}
}

func TestRouteLiteratureFormatting(t *testing.T) {
	lit := &fakeLiterature{papers: []arxiv.Paper{
		{Title: "Paper One", Summary: "First summary.", PDFURL: "https://arxiv.org/pdf/1"},
		{Title: "Paper Two", Summary: "Second summary.", PDFURL: "https://arxiv.org/pdf/2"},
	}}
	r := NewRouter(&fakeGrounded{}, lit, &fakeWeb{}, zap.NewNop())

	res, err := r.Route(context.Background(), Request{Query: "q", Strategy: domain.StrategyLiterature})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Answer != "Literature search completed. See details below." {
		t.Errorf("answer = %q", res.Answer)
	}
	want := "Title: Paper One\nSummary: First summary.\nPDF: https://arxiv.org/pdf/1\n" +
		"\n" +
		"Title: Paper Two\nSummary: Second summary.\nPDF: https://arxiv.org/pdf/2\n"
	if res.Details != want {
		t.Errorf("details = %q\nwant %q", res.Details, want)
	}
}

func TestRouteWebFormatting(t *testing.T) {
	web := &fakeWeb{hits: []tavily.Hit{
		{Title: "Site", URL: "https://example.com", Snippet: "A snippet."},
	}}
	r := NewRouter(&fakeGrounded{}, &fakeLiterature{}, web, zap.NewNop())

	res, err := r.Route(context.Background(), Request{Query: "q", Strategy: domain.StrategyWeb})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Answer != "Web search completed. See details below." {
		t.Errorf("answer = %q", res.Answer)
	}
	want := "Title: Site\nURL: https://example.com\nSnippet: A snippet.\n"
	if res.Details != want {
		t.Errorf("details = %q, want %q", res.Details, want)
	}
}

func TestRouteEmptySearchResults(t *testing.T) {
	r := NewRouter(&fakeGrounded{}, &fakeLiterature{}, &fakeWeb{}, zap.NewNop())

	res, err := r.Route(context.Background(), Request{Query: "q", Strategy: domain.StrategyLiterature})
	if err != nil {
		t.Fatalf("Route literature: %v", err)
	}
	if res.Answer != "No papers were found for this query." || res.Details != "" {
		t.Errorf("literature empty result = %+v", res)
	}

	res, err = r.Route(context.Background(), Request{Query: "q", Strategy: domain.StrategyWeb})
	if err != nil {
		t.Fatalf("Route web: %v", err)
	}
	if res.Answer != "No web results were found for this query." || res.Details != "" {
		t.Errorf("web empty result = %+v", res)
	}
}

func TestRouteUnknownStrategy(t *testing.T) {
	grounded := &fakeGrounded{}
	lit := &fakeLiterature{}
	web := &fakeWeb{}
	r := NewRouter(grounded, lit, web, zap.NewNop())

	_, err := r.Route(context.Background(), Request{Query: "q", Strategy: "telepathy"})
	if !errors.Is(err, domain.ErrUnknownStrategy) {
		t.Fatalf("err = %v, want ErrUnknownStrategy", err)
	}
	if grounded.calls+lit.calls+web.calls != 0 {
		t.Error("unknown strategy must not reach any handler")
	}
}

func TestRouteNoFallbackAcrossStrategies(t *testing.T) {
	lit := &fakeLiterature{err: errors.New("arxiv down")}
	web := &fakeWeb{hits: []tavily.Hit{{Title: "t"}}}
	r := NewRouter(&fakeGrounded{}, lit, web, zap.NewNop())

	_, err := r.Route(context.Background(), Request{Query: "q", Strategy: domain.StrategyLiterature})
	if err == nil {
		t.Fatal("failed strategy must surface its error")
	}
	if web.calls != 0 {
		t.Error("a failing strategy must never fall through to another")
	}
}

func TestRouteDeterministic(t *testing.T) {
	lit := &fakeLiterature{papers: []arxiv.Paper{{Title: "P", Summary: "S", PDFURL: "U"}}}
	r := NewRouter(&fakeGrounded{}, lit, &fakeWeb{}, zap.NewNop())
	req := Request{Query: "q", Strategy: domain.StrategyLiterature}

	first, err := r.Route(context.Background(), req)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	for i := 0; i < 3; i++ {
		res, err := r.Route(context.Background(), req)
		if err != nil {
			t.Fatalf("Route: %v", err)
		}
		if res != first {
			t.Fatalf("run %d diverged: %+v vs %+v", i, res, first)
		}
	}
}
