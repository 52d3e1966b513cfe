package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const feedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Attention Is All You Need</title>
    <summary>
      We propose a new simple network architecture.
    </summary>
    <link href="http://arxiv.org/abs/1706.03762" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <title>Another Paper</title>
    <summary>Summary text.</summary>
    <link href="http://arxiv.org/abs/0000.00000" rel="alternate" type="text/html"/>
  </entry>
</feed>`

func TestSearchParsesFeed(t *testing.T) {
	var gotQuery, gotMax string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		gotMax = r.URL.Query().Get("max_results")
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(feedFixture))
	}))
	defer srv.Close()

	c := New(srv.URL)
	papers, err := c.Search(context.Background(), "transformers", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotQuery != "all:transformers" {
		t.Errorf("search_query = %q", gotQuery)
	}
	if gotMax != "5" {
		t.Errorf("max_results = %q", gotMax)
	}
	if len(papers) != 2 {
		t.Fatalf("got %d papers", len(papers))
	}
	if papers[0].Title != "Attention Is All You Need" {
		t.Errorf("title = %q", papers[0].Title)
	}
	if papers[0].Summary != "We propose a new simple network architecture." {
		t.Errorf("summary = %q", papers[0].Summary)
	}
	if papers[0].PDFURL != "http://arxiv.org/pdf/1706.03762" {
		t.Errorf("pdf url = %q", papers[0].PDFURL)
	}
	// No pdf link: fall back to the first link.
	if papers[1].PDFURL != "http://arxiv.org/abs/0000.00000" {
		t.Errorf("fallback url = %q", papers[1].PDFURL)
	}
}

func TestSearchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Search(context.Background(), "q", 3); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
