package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestEmbedderRequestsConfiguredDimensions(t *testing.T) {
	var gotDims int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Dimensions int      `json:"dimensions"`
			Input      []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		gotDims = body.Dimensions

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer srv.Close()

	e := NewEmbedder(&EmbedderConfig{
		APIKey:     "test",
		BaseURL:    srv.URL,
		Model:      "text-embedding-3-small",
		Dimensions: 384,
		Logger:     zap.NewNop(),
	})

	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if gotDims != 384 {
		t.Errorf("requested dimensions = %d, want 384", gotDims)
	}
	if len(vec) != 3 {
		t.Errorf("vector length = %d", len(vec))
	}
}

func TestEmbedderEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	e := NewEmbedder(&EmbedderConfig{
		APIKey:  "test",
		BaseURL: srv.URL,
		Model:   "text-embedding-3-small",
		Logger:  zap.NewNop(),
	})

	if _, err := e.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for empty response")
	}
}
