// Package arxiv is a minimal client for the arXiv Atom query API, used by
// the literature search strategy.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Paper is one literature search hit.
type Paper struct {
	Title   string
	Summary string
	PDFURL  string
}

// Client queries the arXiv export API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates an arXiv client. baseURL defaults to the public export API.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://export.arxiv.org/api/query"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	Summary string     `xml:"summary"`
	Links   []atomLink `xml:"link"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

// Search returns up to maxResults papers ranked by relevance.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Paper, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "relevance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build arxiv request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv search: unexpected status %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode arxiv feed: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		papers = append(papers, Paper{
			Title:   strings.TrimSpace(e.Title),
			Summary: strings.TrimSpace(e.Summary),
			PDFURL:  pdfLink(e.Links),
		})
	}
	return papers, nil
}

// pdfLink picks the entry link pointing at the paper's PDF.
func pdfLink(links []atomLink) string {
	for _, l := range links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			return l.Href
		}
	}
	if len(links) > 0 {
		return links[0].Href
	}
	return ""
}
