package database

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/bizpilot/bizpilot-be/types"
)

func mustUpsert(t *testing.T, index *MemoryIndex, entries ...VectorEntry) {
	t.Helper()
	if err := index.Upsert(context.Background(), entries); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
}

func TestMemoryIndexSearchOrdering(t *testing.T) {
	index := NewMemoryIndex()
	mustUpsert(t, index,
		VectorEntry{DocID: "far", Content: "far", Vector: []float32{0, 1, 0}},
		VectorEntry{DocID: "near", Content: "near", Vector: []float32{1, 0.1, 0}},
		VectorEntry{DocID: "exact", Content: "exact", Vector: []float32{1, 0, 0}},
	)

	contexts, err := index.Search(context.Background(), []float32{1, 0, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(contexts) != 3 {
		t.Fatalf("got %d results", len(contexts))
	}
	if contexts[0].DocID != "exact" || contexts[1].DocID != "near" || contexts[2].DocID != "far" {
		t.Errorf("order = %s, %s, %s", contexts[0].DocID, contexts[1].DocID, contexts[2].DocID)
	}
	if math.Abs(contexts[0].Score-1.0) > 1e-6 {
		t.Errorf("identical vectors should score 1.0, got %v", contexts[0].Score)
	}
	for i := 1; i < len(contexts); i++ {
		if contexts[i].Score > contexts[i-1].Score {
			t.Errorf("scores not descending: %v then %v", contexts[i-1].Score, contexts[i].Score)
		}
	}
}

func TestMemoryIndexStableTies(t *testing.T) {
	index := NewMemoryIndex()
	mustUpsert(t, index,
		VectorEntry{DocID: "first", Vector: []float32{1, 0}},
		VectorEntry{DocID: "second", Vector: []float32{1, 0}},
		VectorEntry{DocID: "third", Vector: []float32{1, 0}},
	)

	for i := 0; i < 5; i++ {
		contexts, err := index.Search(context.Background(), []float32{1, 0}, 10, nil)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if contexts[0].DocID != "first" || contexts[1].DocID != "second" || contexts[2].DocID != "third" {
			t.Fatalf("tie order changed: %s, %s, %s", contexts[0].DocID, contexts[1].DocID, contexts[2].DocID)
		}
	}
}

func TestMemoryIndexLimit(t *testing.T) {
	index := NewMemoryIndex()
	mustUpsert(t, index,
		VectorEntry{DocID: "a", Vector: []float32{1, 0}},
		VectorEntry{DocID: "b", Vector: []float32{0, 1}},
		VectorEntry{DocID: "c", Vector: []float32{1, 1}},
	)

	contexts, err := index.Search(context.Background(), []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(contexts) != 2 {
		t.Errorf("got %d results, want 2", len(contexts))
	}
}

func TestMemoryIndexFilter(t *testing.T) {
	index := NewMemoryIndex()
	mustUpsert(t, index,
		VectorEntry{DocID: "faq", Vector: []float32{1, 0}, Metadata: map[string]string{"doc_type": "faq"}},
		VectorEntry{DocID: "page", Vector: []float32{1, 0}, Metadata: map[string]string{"doc_type": "product_page"}},
	)

	contexts, err := index.Search(context.Background(), []float32{1, 0}, 10,
		map[string]string{"doc_type": "faq"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(contexts) != 1 || contexts[0].DocID != "faq" {
		t.Errorf("contexts = %+v, want only faq", contexts)
	}

	// Empty filter values are ignored rather than matching nothing.
	contexts, err = index.Search(context.Background(), []float32{1, 0}, 10,
		map[string]string{"doc_type": ""})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(contexts) != 2 {
		t.Errorf("empty filter value excluded entries: %+v", contexts)
	}
}

func TestMemoryIndexUpsertOverwrites(t *testing.T) {
	index := NewMemoryIndex()
	mustUpsert(t, index, VectorEntry{DocID: "a", Content: "old", Vector: []float32{1, 0}})
	mustUpsert(t, index, VectorEntry{DocID: "a", Content: "new", Vector: []float32{0, 1}})

	contexts, err := index.Search(context.Background(), []float32{0, 1}, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(contexts) != 1 {
		t.Fatalf("got %d entries, want 1 after overwrite", len(contexts))
	}
	if contexts[0].Content != "new" {
		t.Errorf("content = %q, want new", contexts[0].Content)
	}
}

func TestMemoryIndexDelete(t *testing.T) {
	index := NewMemoryIndex()
	mustUpsert(t, index,
		VectorEntry{DocID: "a", Vector: []float32{1, 0}},
		VectorEntry{DocID: "b", Vector: []float32{0, 1}},
	)

	if err := index.Delete(context.Background(), "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	contexts, err := index.Search(context.Background(), []float32{1, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, c := range contexts {
		if c.DocID == "a" {
			t.Error("deleted entry still returned")
		}
	}

	// Deleting an absent id is a no-op.
	if err := index.Delete(context.Background(), "missing"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}

	// Remaining entry is still addressable after index compaction.
	mustUpsert(t, index, VectorEntry{DocID: "b", Content: "updated", Vector: []float32{0, 1}})
	contexts, err = index.Search(context.Background(), []float32{0, 1}, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(contexts) != 1 || contexts[0].Content != "updated" {
		t.Errorf("contexts = %+v", contexts)
	}
}

func TestMemoryIndexDimensionMismatch(t *testing.T) {
	index := NewMemoryIndex()
	mustUpsert(t, index, VectorEntry{DocID: "a", Vector: []float32{1, 0, 0}})

	err := index.Upsert(context.Background(), []VectorEntry{
		{DocID: "b", Vector: []float32{1, 0, 0}},
		{DocID: "c", Vector: []float32{1, 0}},
	})
	if !errors.Is(err, types.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}

	// The valid entry from the rejected batch must not have landed.
	contexts, err := index.Search(context.Background(), []float32{1, 0, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(contexts) != 1 {
		t.Errorf("rejected batch partially applied: %+v", contexts)
	}
	if index.Dimension() != 3 {
		t.Errorf("dimension = %d, want 3", index.Dimension())
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}
