package database

import (
	"context"

	"github.com/bizpilot/bizpilot-be/types"
)

// VectorEntry is one indexed document: its vector plus the metadata written
// alongside it. An entry is only searchable once both are committed.
type VectorEntry struct {
	DocID    string
	Content  string
	Vector   []float32
	Metadata map[string]string // title, doc_type, source_url, priority
}

// VectorIndex is the similarity index behind the knowledge store.
//
// Upsert commits a batch atomically from the caller's perspective: a
// concurrent Search never observes an entry without its vector or metadata.
// Search returns up to limit entries sorted by descending similarity
// (cosine, stored as 1-distance); ties are stable with respect to insertion
// order. An empty index or a filter matching nothing returns an empty
// slice, not an error.
type VectorIndex interface {
	Upsert(ctx context.Context, entries []VectorEntry) error
	Search(ctx context.Context, vector []float32, limit int, filter map[string]string) ([]types.RetrievedContext, error)
	Delete(ctx context.Context, docID string) error

	// Dimension reports the vector dimension the index is committed to,
	// or 0 while the index is still empty.
	Dimension() int
}
