package database

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/bizpilot/bizpilot-be/types"
)

// MemoryIndex is a brute-force cosine similarity index. It backs tests and
// deployments that have no Weaviate instance to talk to.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	entries   []VectorEntry
	byID      map[string]int // docID -> position in entries
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		byID: make(map[string]int),
	}
}

func (s *MemoryIndex) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Upsert validates the whole batch before touching the index, so a search
// running concurrently never sees a partial batch.
func (s *MemoryIndex) Upsert(ctx context.Context, entries []VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dimension
	for _, e := range entries {
		if dim == 0 {
			dim = len(e.Vector)
		}
		if len(e.Vector) != dim {
			return types.ConfigurationErrorf(
				"vector dimension %d does not match index dimension %d", len(e.Vector), dim)
		}
	}
	s.dimension = dim

	for _, e := range entries {
		if i, ok := s.byID[e.DocID]; ok {
			s.entries[i] = e
			continue
		}
		s.byID[e.DocID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return nil
}

func (s *MemoryIndex) Search(ctx context.Context, vector []float32, limit int, filter map[string]string) ([]types.RetrievedContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	type scored struct {
		entry VectorEntry
		score float64
	}
	var results []scored
	for _, e := range s.entries {
		if !matchesFilter(e.Metadata, filter) {
			continue
		}
		results = append(results, scored{entry: e, score: cosineSimilarity(vector, e.Vector)})
	}

	// Stable keeps insertion order on ties, which makes result order
	// deterministic for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	contexts := make([]types.RetrievedContext, 0, len(results))
	for _, r := range results {
		metadata := make(map[string]string, len(r.entry.Metadata))
		for k, v := range r.entry.Metadata {
			metadata[k] = v
		}
		contexts = append(contexts, types.RetrievedContext{
			DocID:    r.entry.DocID,
			Content:  r.entry.Content,
			Score:    r.score,
			Metadata: metadata,
		})
	}
	return contexts, nil
}

func (s *MemoryIndex) Delete(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[docID]
	if !ok {
		return nil
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	delete(s.byID, docID)
	for j := i; j < len(s.entries); j++ {
		s.byID[s.entries[j].DocID] = j
	}
	return nil
}

func matchesFilter(metadata, filter map[string]string) bool {
	for k, want := range filter {
		if want == "" {
			continue
		}
		if metadata[k] != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
