package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/bizpilot/bizpilot-be/config"
	"github.com/go-openapi/strfmt"
	"github.com/bizpilot/bizpilot-be/types"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 100

var (
	KNOWLEDGE_CLASS        = "KnowledgeDocument"
	KNOWLEDGE_CLASS_OBJECT = &models.Class{
		Class: KNOWLEDGE_CLASS,
		Properties: []*models.Property{
			{Name: "docId", DataType: []string{"text"}},
			{Name: "content", DataType: []string{"text"}},
			{Name: "title", DataType: []string{"text"}},
			{Name: "docType", DataType: []string{"text"}},
			{Name: "sourceUrl", DataType: []string{"text"}},
			{Name: "priority", DataType: []string{"int"}},
		},
		// Vectors are supplied by the embedding service, not a vectorizer module.
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
)

// WeaviateIndex implements VectorIndex on a Weaviate instance.
type WeaviateIndex struct {
	client *weaviate.Client

	mu        sync.Mutex
	dimension int
}

func NewWeaviateIndex(cfg config.WeaviateConfig) (*WeaviateIndex, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
	}
	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, types.RetrievalErrorf("failed to get schema: %v", err)
	}

	hasClass := false
	for _, class := range schema.Classes {
		if class.Class == KNOWLEDGE_CLASS {
			hasClass = true
			break
		}
	}
	if !hasClass {
		err = client.Schema().ClassCreator().WithClass(KNOWLEDGE_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create %s class: %v", KNOWLEDGE_CLASS, err)
		}
	}
	return &WeaviateIndex{
		client: client,
	}, nil
}

// objectID derives a stable Weaviate object id from a document id so that
// re-indexing overwrites instead of duplicating and delete needs no lookup.
func objectID(docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID)).String()
}

func (s *WeaviateIndex) Dimension() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dimension
}

func (s *WeaviateIndex) checkDimension(entries []VectorEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if s.dimension == 0 {
			s.dimension = len(e.Vector)
			continue
		}
		if len(e.Vector) != s.dimension {
			return types.ConfigurationErrorf(
				"vector dimension %d does not match index dimension %d", len(e.Vector), s.dimension)
		}
	}
	return nil
}

func (s *WeaviateIndex) Upsert(ctx context.Context, entries []VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := s.checkDimension(entries); err != nil {
		return err
	}

	total := len(entries)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			e := entries[j]
			properties := map[string]interface{}{
				"docId":     e.DocID,
				"content":   e.Content,
				"title":     e.Metadata["title"],
				"docType":   e.Metadata["doc_type"],
				"sourceUrl": e.Metadata["source_url"],
				"priority":  metaInt(e.Metadata, "priority"),
			}
			batcher = batcher.WithObjects(&models.Object{
				ID:         strfmt.UUID(objectID(e.DocID)),
				Class:      KNOWLEDGE_CLASS,
				Properties: properties,
				Vector:     e.Vector,
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return types.RetrievalErrorf("failed to insert batch %d-%d: %v", i, end, err)
		}
	}

	return nil
}

func (s *WeaviateIndex) Search(ctx context.Context, vector []float32, limit int, filter map[string]string) ([]types.RetrievedContext, error) {
	fields := []graphql.Field{
		{Name: "docId"},
		{Name: "content"},
		{Name: "title"},
		{Name: "docType"},
		{Name: "sourceUrl"},
		{Name: "priority"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(KNOWLEDGE_CLASS).
		WithFields(fields...).
		WithNearVector(nearVector)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}
	if where := buildFilter(filter); where != nil {
		getBuilder = getBuilder.WithWhere(where)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, types.RetrievalErrorf("search failed: %v", err)
	}
	if result.Errors != nil {
		return nil, types.RetrievalErrorf("search failed: %v", result.Errors[0].Message)
	}

	var contexts []types.RetrievedContext
	if data, ok := result.Data["Get"].(map[string]interface{})[KNOWLEDGE_CLASS].([]interface{}); ok {
		for _, item := range data {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			ctxEntry := types.RetrievedContext{
				DocID:   stringProp(obj, "docId"),
				Content: stringProp(obj, "content"),
				Metadata: map[string]string{
					"title":      stringProp(obj, "title"),
					"doc_type":   stringProp(obj, "docType"),
					"source_url": stringProp(obj, "sourceUrl"),
					"priority":   strconv.Itoa(intProp(obj, "priority")),
				},
			}
			if additional, ok := obj["_additional"].(map[string]interface{}); ok {
				if distance, ok := additional["distance"].(float64); ok {
					// Cosine distance to similarity.
					ctxEntry.Score = 1.0 - distance
				}
			}
			contexts = append(contexts, ctxEntry)
		}
	}

	return contexts, nil
}

func (s *WeaviateIndex) Delete(ctx context.Context, docID string) error {
	err := s.client.Data().Deleter().
		WithClassName(KNOWLEDGE_CLASS).
		WithID(objectID(docID)).
		Do(ctx)
	if err != nil {
		return types.RetrievalErrorf("failed to delete %s: %v", docID, err)
	}
	return nil
}

func buildFilter(filter map[string]string) *filters.WhereBuilder {
	var where *filters.WhereBuilder

	// Only doc_type is an indexed filter field; other keys are ignored.
	if docType, ok := filter["doc_type"]; ok && docType != "" {
		where = filters.Where().
			WithPath([]string{"docType"}).
			WithOperator(filters.Equal).
			WithValueString(docType)
	}

	return where
}

// Helper functions
func stringProp(obj map[string]interface{}, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

func intProp(obj map[string]interface{}, key string) int {
	if v, ok := obj[key].(float64); ok {
		return int(v)
	}
	return 0
}

func metaInt(metadata map[string]string, key string) int {
	n, err := strconv.Atoi(metadata[key])
	if err != nil {
		return 0
	}
	return n
}
