package config

import (
	"os"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions = %d, want 384", cfg.Embedding.Dimensions)
	}
	if cfg.Ingest.MaxChunkWords != 300 {
		t.Errorf("default max chunk words = %d, want 300", cfg.Ingest.MaxChunkWords)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("default top_k = %d, want 3", cfg.Retrieval.TopK)
	}
	if cfg.Completion.MaxTokens != 500 {
		t.Errorf("default max tokens = %d, want 500", cfg.Completion.MaxTokens)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestDocumentMappingDefaults(t *testing.T) {
	cfg := Config{Documents: map[string]string{
		"AI and Big Data": "",
		"custom":          "my-index",
	}}
	cfg.ApplyDefaults()

	if got := cfg.Documents["AI and Big Data"]; got != "ai-and-big-data-index" {
		t.Errorf("defaulted index = %q, want %q", got, "ai-and-big-data-index")
	}
	if got := cfg.Documents["custom"]; got != "my-index" {
		t.Errorf("explicit index overwritten: %q", got)
	}
}

func TestValidateRejectsDimensionMismatch(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	cfg.Embedding.Dimensions = 512

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("DOCSEARCH_TEST_KEY", "sekret")
	defer os.Unsetenv("DOCSEARCH_TEST_KEY")

	out := expandEnvVars([]byte("api_key: ${DOCSEARCH_TEST_KEY}\nother: ${DOCSEARCH_TEST_UNSET}"))

	var parsed struct {
		APIKey string `yaml:"api_key"`
		Other  string `yaml:"other"`
	}
	if err := yaml.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("unmarshal expanded config: %v", err)
	}
	if parsed.APIKey != "sekret" {
		t.Errorf("api_key = %q, want %q", parsed.APIKey, "sekret")
	}
	if parsed.Other != "" {
		t.Errorf("unset var should expand empty, got %q", parsed.Other)
	}
}
