package answer

import (
	"context"
	"fmt"
	"sort"

	"docsearch/internal/domain"
)

// Selector maps a requested document name to the vector index serving it.
// The mapping is fixed at construction; requests for documents outside it
// fail with domain.ErrUnmappedDocument rather than guessing an index name.
type Selector struct {
	mapping map[string]string
}

// NewSelector builds a selector from a document -> index-name mapping.
// Entries with an empty index name fall back to the canonical name derived
// from the document.
func NewSelector(mapping map[string]string) *Selector {
	m := make(map[string]string, len(mapping))
	for doc, idx := range mapping {
		doc = domain.NormalizeName(doc)
		if idx == "" {
			idx = domain.IndexName(doc)
		}
		m[doc] = idx
	}
	return &Selector{mapping: m}
}

// Resolve returns the index name configured for a document.
func (s *Selector) Resolve(document string) (string, error) {
	idx, ok := s.mapping[domain.NormalizeName(document)]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnmappedDocument, document)
	}
	return idx, nil
}

// Documents returns the mapped document names in sorted order.
func (s *Selector) Documents() []string {
	docs := make([]string, 0, len(s.mapping))
	for doc := range s.mapping {
		docs = append(docs, doc)
	}
	sort.Strings(docs)
	return docs
}

// Validate checks every mapped index against the store and fails fast on
// the first one that is missing. Meant for startup, before traffic.
func (s *Selector) Validate(ctx context.Context, store IndexStore) error {
	names, err := store.ListNames(ctx)
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}
	existing := make(map[string]struct{}, len(names))
	for _, n := range names {
		existing[n] = struct{}{}
	}
	for _, doc := range s.Documents() {
		idx := s.mapping[doc]
		if _, ok := existing[idx]; !ok {
			return fmt.Errorf("document %q maps to index %q which does not exist", doc, idx)
		}
	}
	return nil
}
