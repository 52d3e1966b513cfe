package embcache

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"docsearch/internal/db"
)

type mockKV struct {
	data map[string][]byte
}

func (m *mockKV) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKV) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

type countingEmbedder struct {
	calls int
	vec   []float32
	err   error
}

func (e *countingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.vec, nil
}

func TestEmbedCachesByContent(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.25, -1.5}}
	cache := New(inner, &mockKV{data: map[string][]byte{}}, nil, zap.NewNop())

	ctx := context.Background()
	first, err := cache.Embed(ctx, "chunk text")
	if err != nil {
		t.Fatalf("first Embed: %v", err)
	}
	second, err := cache.Embed(ctx, "chunk text")
	if err != nil {
		t.Fatalf("second Embed: %v", err)
	}

	if inner.calls != 1 {
		t.Fatalf("inner embedder called %d times, want 1", inner.calls)
	}
	if len(first) != len(second) {
		t.Fatalf("vector length changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cached vector differs at %d: %v vs %v", i, first, second)
		}
	}
}

func TestEmbedDistinctTextsMiss(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}}
	cache := New(inner, &mockKV{data: map[string][]byte{}}, nil, zap.NewNop())

	ctx := context.Background()
	if _, err := cache.Embed(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Embed(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Fatalf("inner embedder called %d times, want 2", inner.calls)
	}
}
