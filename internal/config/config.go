package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"docsearch/internal/domain"
)

// Config holds the docsearch service configuration.
type Config struct {
	HTTP       HTTPConfig        `yaml:"http"`
	Database   DatabaseConfig    `yaml:"database"`
	Embedding  EmbeddingConfig   `yaml:"embedding"`
	Completion CompletionConfig  `yaml:"completion"`
	Ingest     IngestConfig      `yaml:"ingest"`
	Retrieval  RetrievalConfig   `yaml:"retrieval"`
	Documents  map[string]string `yaml:"documents"` // document name -> index name
	Arxiv      ArxivConfig       `yaml:"arxiv"`
	Tavily     TavilyConfig      `yaml:"tavily"`
	Temporal   TemporalConfig    `yaml:"temporal"`
	Auth       AuthConfig        `yaml:"auth"`
	Logging    LoggingConfig     `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds backing store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// CompletionConfig holds text-completion provider settings.
type CompletionConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	PDFPrefix     string `yaml:"pdf_prefix"`
	MaxChunkWords int    `yaml:"max_chunk_words"`
}

// RetrievalConfig holds retrieval pipeline settings.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// ArxivConfig holds literature search settings.
type ArxivConfig struct {
	BaseURL    string `yaml:"base_url"`
	MaxResults int    `yaml:"max_results"`
}

// TavilyConfig holds web search settings.
type TavilyConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	MaxResults int    `yaml:"max_results"`
}

// TemporalConfig holds orchestration settings. An empty host-port disables
// the ingestion trigger on the API server.
type TemporalConfig struct {
	HostPort  string `yaml:"host_port"`
	Namespace string `yaml:"namespace"`
	TaskQueue string `yaml:"task_queue"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.Database.Addrs) == 0 {
		c.Database.Addrs = []string{"localhost:6379"}
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 30
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = domain.VectorDim
	}
	if c.Completion.Model == "" {
		c.Completion.Model = "gpt-4o-mini"
	}
	if c.Completion.MaxTokens <= 0 {
		c.Completion.MaxTokens = domain.DefaultMaxAnswerTokens
	}
	if c.Ingest.PDFPrefix == "" {
		c.Ingest.PDFPrefix = "pdfs/"
	}
	if c.Ingest.MaxChunkWords <= 0 {
		c.Ingest.MaxChunkWords = domain.DefaultMaxChunkWords
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = domain.DefaultTopK
	}
	if c.Arxiv.BaseURL == "" {
		c.Arxiv.BaseURL = "https://export.arxiv.org/api/query"
	}
	if c.Arxiv.MaxResults <= 0 {
		c.Arxiv.MaxResults = 10
	}
	if c.Tavily.BaseURL == "" {
		c.Tavily.BaseURL = "https://api.tavily.com"
	}
	if c.Tavily.MaxResults <= 0 {
		c.Tavily.MaxResults = 10
	}
	if c.Temporal.Namespace == "" {
		c.Temporal.Namespace = "default"
	}
	if c.Temporal.TaskQueue == "" {
		c.Temporal.TaskQueue = "docsearch-ingest"
	}
	if c.Documents == nil {
		c.Documents = map[string]string{}
	}
	// Empty mapping values default to the canonical index name.
	for doc, idx := range c.Documents {
		if idx == "" {
			c.Documents[doc] = domain.IndexName(domain.NormalizeName(doc))
		}
	}
}

// Validate checks configuration consistency. Called after ApplyDefaults.
func (c *Config) Validate() error {
	if c.Embedding.Dimensions != domain.VectorDim {
		return fmt.Errorf("embedding dimensions must be %d, got %d",
			domain.VectorDim, c.Embedding.Dimensions)
	}
	for doc, idx := range c.Documents {
		if doc == "" {
			return fmt.Errorf("documents mapping contains an empty document name")
		}
		if idx == "" {
			return fmt.Errorf("documents mapping for %q has an empty index name", doc)
		}
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// expandEnvVars replaces ${VAR} references with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		name := envVarPattern.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// findConfigPath locates configs/<env>.yaml, searching upward from the
// working directory so tests in nested packages resolve the same file.
func findConfigPath(env string) string {
	rel := filepath.Join("configs", env+".yaml")

	dir, err := os.Getwd()
	if err != nil {
		return rel
	}
	for {
		candidate := filepath.Join(dir, rel)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return rel
		}
		dir = parent
	}
}
