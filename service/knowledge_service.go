package service

import (
	"context"
	"fmt"
	"log"

	"github.com/bizpilot/bizpilot-be/database"
	"github.com/bizpilot/bizpilot-be/repository"
	"github.com/bizpilot/bizpilot-be/types"
)

// KnowledgeService owns the knowledge documents and their vector index
// entries. Nothing else mutates the index.
type KnowledgeService struct {
	embedder EmbeddingService
	index    database.VectorIndex
	repo     repository.KnowledgeRepo
}

func NewKnowledgeService(
	embedder EmbeddingService,
	index database.VectorIndex,
	repo repository.KnowledgeRepo,
) *KnowledgeService {
	return &KnowledgeService{
		embedder: embedder,
		index:    index,
		repo:     repo,
	}
}

func embeddingID(docID string) string {
	return "kb_" + docID
}

// IndexAll indexes every active knowledge document that is not yet carrying
// an embedding reference. force re-indexes documents regardless.
func (s *KnowledgeService) IndexAll(ctx context.Context, force bool) (int, error) {
	docs, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing knowledge documents: %w", err)
	}
	if len(docs) == 0 {
		log.Println("knowledge index: no active documents")
		return 0, nil
	}
	return s.Index(ctx, docs, force)
}

// Index embeds and indexes the given documents. The whole batch is embedded
// in one backend call; either every vector is computed and written or none
// are, and embedding references are persisted only after the index write
// succeeds. Re-indexing documents that already carry a reference is a no-op
// unless force is set.
func (s *KnowledgeService) Index(ctx context.Context, docs []*types.KnowledgeDocument, force bool) (int, error) {
	var toIndex []*types.KnowledgeDocument
	for _, doc := range docs {
		if !doc.Active {
			continue
		}
		if force || doc.EmbeddingID == "" {
			toIndex = append(toIndex, doc)
		}
	}
	if len(toIndex) == 0 {
		return 0, nil
	}

	contents := make([]string, len(toIndex))
	for i, doc := range toIndex {
		contents[i] = doc.Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return 0, fmt.Errorf("embedding batch of %d documents: %w", len(toIndex), err)
	}

	if err := s.checkDimension(vectors); err != nil {
		return 0, err
	}

	entries := make([]database.VectorEntry, len(toIndex))
	for i, doc := range toIndex {
		entries[i] = database.VectorEntry{
			DocID:   embeddingID(doc.ID),
			Content: doc.Content,
			Vector:  vectors[i],
			Metadata: map[string]string{
				"title":      doc.Title,
				"doc_type":   string(doc.DocType),
				"source_url": doc.SourceURL,
				"priority":   fmt.Sprintf("%d", doc.Priority),
			},
		}
	}

	if err := s.index.Upsert(ctx, entries); err != nil {
		return 0, err
	}

	// References are written only after the vectors are committed, so a
	// document never carries a reference to a missing vector.
	for _, doc := range toIndex {
		id := embeddingID(doc.ID)
		if err := s.repo.SetEmbeddingID(ctx, doc.ID, id); err != nil {
			return 0, fmt.Errorf("persisting embedding reference for %s: %w", doc.ID, err)
		}
		doc.EmbeddingID = id
	}

	log.Printf("knowledge index: indexed %d documents", len(toIndex))
	return len(toIndex), nil
}

// checkDimension fails fast when the embedding backend disagrees with the
// dimension the index is already committed to, instead of letting search
// quality degrade silently.
func (s *KnowledgeService) checkDimension(vectors [][]float32) error {
	indexDim := s.index.Dimension()
	if indexDim == 0 {
		return nil
	}
	for _, v := range vectors {
		if len(v) != indexDim {
			return types.ConfigurationErrorf(
				"embedding backend %s produces %d-dimension vectors but the index holds %d-dimension vectors",
				s.embedder.Name(), len(v), indexDim)
		}
	}
	return nil
}

// Search runs a similarity query against the index. An empty index or a
// filter matching nothing yields an empty result, not an error.
func (s *KnowledgeService) Search(ctx context.Context, vector []float32, limit int, filter map[string]string) ([]types.RetrievedContext, error) {
	return s.index.Search(ctx, vector, limit, filter)
}

// SearchText embeds the query and searches. Used by the admin search
// surface; the pipeline embeds queries itself.
func (s *KnowledgeService) SearchText(ctx context.Context, query string, docType types.DocType, limit int) ([]types.RetrievedContext, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	var filter map[string]string
	if docType != "" {
		filter = map[string]string{"doc_type": string(docType)}
	}
	return s.Search(ctx, vector, limit, filter)
}

// Delete removes the document's vector entry and its backing record as one
// logical operation. The vector goes first: a record without a vector can
// be re-indexed, a vector without a record cannot be accounted for.
func (s *KnowledgeService) Delete(ctx context.Context, docID string) error {
	if err := s.index.Delete(ctx, embeddingID(docID)); err != nil {
		return err
	}
	if err := s.repo.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("deleting knowledge document %s: %w", docID, err)
	}
	return nil
}

// Deactivate takes a document out of search without deleting its record.
func (s *KnowledgeService) Deactivate(ctx context.Context, docID string) error {
	if err := s.index.Delete(ctx, embeddingID(docID)); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, docID, false); err != nil {
		return fmt.Errorf("deactivating knowledge document %s: %w", docID, err)
	}
	return nil
}
