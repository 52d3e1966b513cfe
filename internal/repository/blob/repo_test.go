package blob

import (
	"context"
	"errors"
	"testing"

	"docsearch/internal/db"
	"docsearch/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn  func(ctx context.Context, key string) ([]byte, error)
	setFn  func(ctx context.Context, key string, value []byte) error
	delFn  func(ctx context.Context, key string) error
	scanFn func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func TestListPDFsFiltersAndSorts(t *testing.T) {
	ms := &mockStore{scanFn: func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "pdfs/*" {
			t.Errorf("scan pattern = %q, want %q", pattern, "pdfs/*")
		}
		return []string{"pdfs/z.pdf", "pdfs/notes.txt", "pdfs/a.PDF"}, nil
	}}
	repo := New(ms, "pdfs/")

	got, err := repo.ListPDFs(context.Background())
	if err != nil {
		t.Fatalf("ListPDFs: %v", err)
	}
	if len(got) != 2 || got[0] != "pdfs/a.PDF" || got[1] != "pdfs/z.pdf" {
		t.Fatalf("unexpected listing: %v", got)
	}
}

func TestPutChunkUsesContentAddressedKey(t *testing.T) {
	var wroteKey string
	ms := &mockStore{setFn: func(_ context.Context, key string, _ []byte) error {
		wroteKey = key
		return nil
	}}
	repo := New(ms, "pdfs/")

	chunk := domain.NewChunk("my-doc", 0, "chunk body")
	key, err := repo.PutChunk(context.Background(), chunk)
	if err != nil {
		t.Fatalf("PutChunk: %v", err)
	}
	want := "my-doc/metadata/" + chunk.Hash + ".txt"
	if key != want || wroteKey != want {
		t.Fatalf("key = %q (wrote %q), want %q", key, wroteKey, want)
	}
}

func TestGetChunkByKeyPreservesNotFound(t *testing.T) {
	repo := New(&mockStore{}, "pdfs/")

	_, err := repo.GetChunkByKey(context.Background(), "gone/metadata/x.txt")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestDeleteChunks(t *testing.T) {
	deleted := map[string]bool{}
	ms := &mockStore{
		scanFn: func(_ context.Context, pattern string) ([]string, error) {
			if pattern != "my-doc/metadata/*" {
				t.Errorf("scan pattern = %q", pattern)
			}
			return []string{"my-doc/metadata/a.txt", "my-doc/metadata/b.txt"}, nil
		},
		delFn: func(_ context.Context, key string) error {
			deleted[key] = true
			return nil
		},
	}
	repo := New(ms, "pdfs/")

	n, err := repo.DeleteChunks(context.Background(), "my-doc")
	if err != nil {
		t.Fatalf("DeleteChunks: %v", err)
	}
	if n != 2 || !deleted["my-doc/metadata/a.txt"] || !deleted["my-doc/metadata/b.txt"] {
		t.Fatalf("deleted %d keys: %v", n, deleted)
	}
}
