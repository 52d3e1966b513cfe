// Package docsearch provides a typed HTTP client for the docsearch API.
package docsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// Client calls the docsearch HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a docsearch API client.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("docsearch: base URL required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Result is the uniform payload every strategy resolves to.
type Result struct {
	Answer  string `json:"answer"`
	Details string `json:"details"`
}

// DocumentRef identifies a source document.
type DocumentRef struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// DocumentList enumerates sources and queryable documents.
type DocumentList struct {
	Sources   []DocumentRef `json:"sources"`
	Queryable []string      `json:"queryable"`
}

// Health is the service health report.
type Health struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Indexes int               `json:"indexes"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("docsearch: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// Query routes a research question to a strategy: "grounded", "literature"
// or "web". Document is required for the grounded strategy.
func (c *Client) Query(ctx context.Context, document, query, strategy string) (Result, error) {
	var out Result
	err := c.do(ctx, http.MethodPost, "/agents/query", map[string]string{
		"document": document,
		"query":    query,
		"strategy": strategy,
	}, &out)
	return out, err
}

// ListDocuments returns discovered source PDFs and queryable documents.
func (c *Client) ListDocuments(ctx context.Context) (DocumentList, error) {
	var out DocumentList
	err := c.do(ctx, http.MethodGet, "/documents", nil, &out)
	return out, err
}

// TriggerIngest starts an asynchronous ingestion run and returns its
// workflow ID. Empty pdfKeys ingests every discovered document.
func (c *Client) TriggerIngest(ctx context.Context, pdfKeys ...string) (string, error) {
	var out struct {
		WorkflowID string `json:"workflow_id"`
	}
	err := c.do(ctx, http.MethodPost, "/ingest", map[string]any{
		"pdf_keys": pdfKeys,
	}, &out)
	return out.WorkflowID, err
}

// Health reports service health. A degraded or unhealthy service returns
// the report with a nil error; transport failures return an error.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
		// The body is the health report itself, not an error envelope.
		return out, nil
	}
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("docsearch: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("docsearch: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("docsearch: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		dec := json.NewDecoder(resp.Body)
		if out != nil {
			// Some endpoints return a typed body on failure too.
			raw := json.RawMessage{}
			if err := dec.Decode(&raw); err == nil {
				_ = json.Unmarshal(raw, out)
				_ = json.Unmarshal(raw, apiErr)
			}
		} else {
			_ = dec.Decode(apiErr)
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("docsearch: decode response: %w", err)
	}
	return nil
}
