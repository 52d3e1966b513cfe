package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Pipeline-wide defaults shared by ingestion and retrieval.
const (
	// VectorDim is the embedding dimension every index is created with.
	VectorDim = 384
	// DefaultTopK is the number of matches retrieved per query.
	DefaultTopK = 3
	// DefaultMaxChunkWords bounds the word budget of a single chunk.
	DefaultMaxChunkWords = 300
	// DefaultMaxAnswerTokens caps the completion output length.
	DefaultMaxAnswerTokens = 500
)

// NormalizeName lowercases a document name and collapses every run of
// non-alphanumeric characters into a single hyphen. It is a pure function:
// equal inputs always produce equal outputs, which keeps index naming and
// blob keys stable across re-ingestion runs.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('-')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DocumentNameFromKey derives the normalized document name from a storage
// key such as "pdfs/AI and Big Data.pdf".
func DocumentNameFromKey(key string) string {
	base := key
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".pdf")
	return NormalizeName(base)
}

// IndexName returns the vector index name for a normalized document name.
func IndexName(doc string) string {
	return doc + "-index"
}

// VectorID returns the index entry id for a chunk of a document.
func VectorID(doc string, seq int) string {
	return fmt.Sprintf("%s_%d", doc, seq)
}

// ChunkHash content-addresses a chunk by the sha256 of its exact text.
// Two chunks with identical text hash identically, wherever they occur.
func ChunkHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// MarkdownKey is the blob key of a document's converted markdown.
func MarkdownKey(doc string) string {
	return doc + "/" + doc + ".md"
}

// ChunkKey is the blob key of a chunk's raw text, addressed by content hash.
func ChunkKey(doc, hash string) string {
	return doc + "/metadata/" + hash + ".txt"
}

// Chunk is a contiguous span of a document's markdown, bounded by a word
// budget and split on line boundaries only. Sequence indices are dense and
// zero-based per ingestion run; identity is the content hash.
type Chunk struct {
	Document string
	Seq      int
	Text     string
	Hash     string
}

// NewChunk builds a chunk with its content hash precomputed.
func NewChunk(doc string, seq int, text string) Chunk {
	return Chunk{Document: doc, Seq: seq, Text: text, Hash: ChunkHash(text)}
}

// BlobKey returns the blob key the chunk text is stored under.
func (c Chunk) BlobKey() string {
	return ChunkKey(c.Document, c.Hash)
}

// ID returns the vector id of the chunk's index entry.
func (c Chunk) ID() string {
	return VectorID(c.Document, c.Seq)
}

// Match is a single retrieval hit, ordered by descending similarity.
// BlobKey points at the externally stored chunk text; the entry itself
// never carries the text inline.
type Match struct {
	ID       string
	Score    float64
	BlobKey  string
	Document string
}

// Result is the uniform payload every agent strategy resolves to.
type Result struct {
	Answer  string `json:"answer"`
	Details string `json:"details"`
}
