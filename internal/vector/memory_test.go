package vector

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func mustUpsert(t *testing.T, idx *MemoryIndex, id string, vec []float32, payload map[string]string) {
	t.Helper()
	if err := idx.Upsert(context.Background(), id, vec, payload); err != nil {
		t.Fatalf("Upsert(%s) failed: %v", id, err)
	}
}

func TestMemoryIndexSearchRanking(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatalf("NewMemoryIndex failed: %v", err)
	}
	ctx := context.Background()

	// Angles from the query vector (1,0,0): far, near, orthogonal.
	mustUpsert(t, idx, "far", []float32{-1, 0, 0}, nil)
	mustUpsert(t, idx, "near", []float32{0.9, 0.1, 0}, nil)
	mustUpsert(t, idx, "mid", []float32{0, 1, 0}, nil)

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].ID != "near" || hits[1].ID != "mid" || hits[2].ID != "far" {
		t.Errorf("wrong order: %s, %s, %s", hits[0].ID, hits[1].ID, hits[2].ID)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("scores not descending at %d: %f > %f", i, hits[i].Score, hits[i-1].Score)
		}
	}
}

func TestMemoryIndexSearchTopK(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	mustUpsert(t, idx, "a", []float32{1, 0}, nil)
	mustUpsert(t, idx, "b", []float32{0, 1}, nil)
	mustUpsert(t, idx, "c", []float32{1, 1}, nil)

	hits, err := idx.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("expected 2 hits, got %d", len(hits))
	}

	// k larger than the index returns everything.
	hits, err = idx.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("expected 3 hits, got %d", len(hits))
	}

	// Non-positive k returns nothing.
	hits, err = idx.Search(ctx, []float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits for k=0, got %d", len(hits))
	}
}

func TestMemoryIndexTiesKeepInsertionOrder(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()

	// Identical vectors, so every score ties.
	mustUpsert(t, idx, "first", []float32{1, 0}, nil)
	mustUpsert(t, idx, "second", []float32{1, 0}, nil)
	mustUpsert(t, idx, "third", []float32{1, 0}, nil)

	for i := 0; i < 10; i++ {
		hits, err := idx.Search(ctx, []float32{1, 0}, 3)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if hits[0].ID != "first" || hits[1].ID != "second" || hits[2].ID != "third" {
			t.Fatalf("tie order not stable on run %d: %s, %s, %s", i, hits[0].ID, hits[1].ID, hits[2].ID)
		}
	}
}

func TestMemoryIndexOverwrite(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()

	mustUpsert(t, idx, "doc", []float32{1, 0}, map[string]string{"title": "old"})
	mustUpsert(t, idx, "other", []float32{0, 1}, nil)
	mustUpsert(t, idx, "doc", []float32{0, 1}, map[string]string{"title": "new"})

	if idx.Size() != 2 {
		t.Errorf("expected size 2 after overwrite, got %d", idx.Size())
	}
	hits, err := idx.Search(ctx, []float32{0, 1}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	// Both now tie at score 1; "doc" kept its original insertion slot.
	if hits[0].ID != "doc" || hits[1].ID != "other" {
		t.Errorf("overwrite moved insertion slot: %s, %s", hits[0].ID, hits[1].ID)
	}
	if hits[0].Payload["title"] != "new" {
		t.Errorf("expected payload replaced, got %q", hits[0].Payload["title"])
	}
}

func TestMemoryIndexConcurrentAccess(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	mustUpsert(t, idx, "doc", []float32{1, 0}, map[string]string{"axis": "x"})

	var writers, readers sync.WaitGroup
	stop := make(chan struct{})

	// Writers flip "doc" between two complete (vector, payload) versions
	// and churn other ids with upsert/delete pairs.
	for w := 0; w < 4; w++ {
		writers.Add(1)
		go func(w int) {
			defer writers.Done()
			for i := 0; i < 200; i++ {
				if i%2 == 0 {
					_ = idx.Upsert(ctx, "doc", []float32{1, 0}, map[string]string{"axis": "x"})
				} else {
					_ = idx.Upsert(ctx, "doc", []float32{0, 1}, map[string]string{"axis": "y"})
				}
				other := fmt.Sprintf("w%d-%d", w, i)
				_ = idx.Upsert(ctx, other, []float32{1, 1}, nil)
				_ = idx.Delete(ctx, other)
			}
		}(w)
	}

	// Readers must only ever see a complete version of "doc": the score
	// identifies the stored vector, so the payload must agree with it.
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			query := []float32{1, 0}
			for {
				select {
				case <-stop:
					return
				default:
				}
				hits, err := idx.Search(ctx, query, 16)
				if err != nil {
					t.Errorf("Search failed: %v", err)
					return
				}
				for _, hit := range hits {
					if hit.ID != "doc" {
						continue
					}
					axis := hit.Payload["axis"]
					if hit.Score > 0.5 && axis != "x" {
						t.Errorf("torn read: score %f with payload axis %q", hit.Score, axis)
						return
					}
					if hit.Score < 0.5 && axis != "y" {
						t.Errorf("torn read: score %f with payload axis %q", hit.Score, axis)
						return
					}
				}
			}
		}()
	}

	writers.Wait()
	close(stop)
	readers.Wait()

	// After the writers finish, exactly one complete version remains.
	if idx.Size() != 1 {
		t.Errorf("expected only doc left, got size %d", idx.Size())
	}
	hits, err := idx.Search(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	axis := hits[0].Payload["axis"]
	if !(hits[0].Score > 0.5 && axis == "x") && !(hits[0].Score < 0.5 && axis == "y") {
		t.Errorf("final record is a blend: score %f, axis %q", hits[0].Score, axis)
	}
}

func TestMemoryIndexDimensionMismatch(t *testing.T) {
	idx, _ := NewMemoryIndex(3)
	ctx := context.Background()

	err := idx.Upsert(ctx, "bad", []float32{1, 0}, nil)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if idx.Size() != 0 {
		t.Errorf("index changed by rejected upsert: size %d", idx.Size())
	}

	mustUpsert(t, idx, "ok", []float32{1, 0, 0}, nil)
	if _, err := idx.Search(ctx, []float32{1, 0}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch from search, got %v", err)
	}

	err = idx.Upsert(ctx, "empty", nil, nil)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch for empty vector, got %v", err)
	}
}

func TestMemoryIndexFirstUpsertEstablishesDimension(t *testing.T) {
	idx, _ := NewMemoryIndex(0)
	ctx := context.Background()

	if idx.Dimensions() != 0 {
		t.Errorf("expected dimension 0 before first upsert, got %d", idx.Dimensions())
	}
	mustUpsert(t, idx, "a", []float32{1, 0, 0, 0}, nil)
	if idx.Dimensions() != 4 {
		t.Errorf("expected dimension 4, got %d", idx.Dimensions())
	}
	if err := idx.Upsert(ctx, "b", []float32{1, 0}, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch after dimension established, got %v", err)
	}
}

func TestMemoryIndexSearchEmpty(t *testing.T) {
	idx, _ := NewMemoryIndex(3)
	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search on empty index failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits from empty index, got %d", len(hits))
	}
}

func TestMemoryIndexSearchEmptyDimensionGuard(t *testing.T) {
	// A fixed dimension is enforced even before any record exists.
	idx, _ := NewMemoryIndex(3)
	if _, err := idx.Search(context.Background(), []float32{1, 0}, 5); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on empty fixed-dimension index, got %v", err)
	}

	// With no dimension established yet, any query length yields empty.
	open, _ := NewMemoryIndex(0)
	hits, err := open.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search on unestablished index failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestMemoryIndexDelete(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	mustUpsert(t, idx, "a", []float32{1, 0}, nil)
	mustUpsert(t, idx, "b", []float32{1, 0}, nil)
	mustUpsert(t, idx, "c", []float32{1, 0}, nil)

	if err := idx.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if idx.Size() != 2 {
		t.Errorf("expected size 2, got %d", idx.Size())
	}
	// Absent id is a no-op.
	if err := idx.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing id failed: %v", err)
	}
	// Remaining records still searchable in insertion order.
	hits, err := idx.Search(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 || hits[0].ID != "a" || hits[1].ID != "c" {
		t.Errorf("unexpected hits after delete: %+v", hits)
	}
}

func TestMemoryIndexSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.idx")
	ctx := context.Background()

	idx, _ := NewMemoryIndex(3)
	mustUpsert(t, idx, "a", []float32{1, 0, 0}, map[string]string{"title": "Alpha", "source": "/tmp/a.txt"})
	mustUpsert(t, idx, "b", []float32{0, 1, 0}, map[string]string{"title": "Beta"})
	if err := idx.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, _ := NewMemoryIndex(0)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("expected 2 records after load, got %d", loaded.Size())
	}
	if loaded.Dimensions() != 3 {
		t.Errorf("expected dimension 3 after load, got %d", loaded.Dimensions())
	}
	hits, err := loaded.Search(ctx, []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Search after load failed: %v", err)
	}
	if hits[0].ID != "a" {
		t.Errorf("expected hit a, got %s", hits[0].ID)
	}
	if hits[0].Payload["title"] != "Alpha" || hits[0].Payload["source"] != "/tmp/a.txt" {
		t.Errorf("payload lost on roundtrip: %+v", hits[0].Payload)
	}
}

func TestMemoryIndexLoadMissingFile(t *testing.T) {
	idx, _ := NewMemoryIndex(3)
	if err := idx.Load(filepath.Join(t.TempDir(), "does-not-exist.idx")); err != nil {
		t.Errorf("Load of missing file should be a no-op, got %v", err)
	}
	if idx.Size() != 0 {
		t.Errorf("expected empty index, got size %d", idx.Size())
	}
}

func TestMemoryIndexLoadDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.idx")

	src, _ := NewMemoryIndex(3)
	mustUpsert(t, src, "a", []float32{1, 0, 0}, nil)
	if err := src.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	dst, _ := NewMemoryIndex(8)
	if err := dst.Load(path); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestMemoryIndexSearchReturnsCopies(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	mustUpsert(t, idx, "a", []float32{1, 0}, map[string]string{"title": "Alpha"})

	hits, _ := idx.Search(ctx, []float32{1, 0}, 1)
	hits[0].Payload["title"] = "mutated"

	hits2, _ := idx.Search(ctx, []float32{1, 0}, 1)
	if hits2[0].Payload["title"] != "Alpha" {
		t.Errorf("search result mutation leaked into index: %q", hits2[0].Payload["title"])
	}
}

func TestNewVectorIndexFactory(t *testing.T) {
	idx, err := NewVectorIndex("memory", 4)
	if err != nil {
		t.Fatalf("factory failed for memory: %v", err)
	}
	if _, ok := idx.(*MemoryIndex); !ok {
		t.Errorf("expected *MemoryIndex, got %T", idx)
	}
	if _, err := NewVectorIndex("hnsw", 4); err == nil {
		t.Error("expected error for unknown index type")
	}
}
