package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"docsearch/internal/domain"
)

func TestCompleterSendsSystemAndUserMessages(t *testing.T) {
	var gotMaxTokens int
	var gotRoles []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			MaxTokens int `json:"max_tokens"`
			Messages  []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		gotMaxTokens = body.MaxTokens
		for _, m := range body.Messages {
			gotRoles = append(gotRoles, m.Role)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"an answer"}}]}`))
	}))
	defer srv.Close()

	c := NewCompleter(&CompleterConfig{
		APIKey:    "test",
		BaseURL:   srv.URL,
		Model:     "gpt-4o-mini",
		MaxTokens: 500,
		Logger:    zap.NewNop(),
	})

	answer, err := c.Complete(context.Background(), "You are a helpful assistant.", "Context: x\n\nQuestion: y")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if answer != "an answer" {
		t.Errorf("answer = %q", answer)
	}
	if gotMaxTokens != 500 {
		t.Errorf("max_tokens = %d, want 500", gotMaxTokens)
	}
	if len(gotRoles) != 2 || gotRoles[0] != "system" || gotRoles[1] != "user" {
		t.Errorf("roles = %v", gotRoles)
	}
}

func TestCompleterWrapsProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCompleter(&CompleterConfig{
		APIKey:  "test",
		BaseURL: srv.URL,
		Model:   "gpt-4o-mini",
		Logger:  zap.NewNop(),
	})

	_, err := c.Complete(context.Background(), "sys", "user")
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}
