package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bizpilot/bizpilot-be/database"
	"github.com/bizpilot/bizpilot-be/types"
)

// fakeEmbedder returns a fixed vector per known text and records the
// queries it was asked to embed.
type fakeEmbedder struct {
	vectors map[string][]float32
	fixed   []float32
	err     error
	queries []string
}

func (f *fakeEmbedder) Name() string   { return "fake" }
func (f *fakeEmbedder) Dimension() int { return 3 }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.queries = append(f.queries, text)
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	if f.fixed != nil {
		return f.fixed, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func TestBuildClassificationQuery(t *testing.T) {
	tests := []struct {
		name string
		lead types.Lead
		want string
	}{
		{
			name: "all fields",
			lead: types.Lead{
				Name:    "Jane",
				Company: "Acme Corp",
				SourceMetadata: map[string]string{
					"message": "Need a demo",
					"subject": "Demo request",
				},
			},
			want: "Company: Acme Corp\nMessage: Need a demo\nSubject: Demo request",
		},
		{
			name: "message only",
			lead: types.Lead{
				Name:           "Jane",
				SourceMetadata: map[string]string{"message": "Need a demo"},
			},
			want: "Message: Need a demo",
		},
		{
			name: "falls back to name",
			lead: types.Lead{Name: "Jane Doe"},
			want: "Jane Doe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildClassificationQuery(&tt.lead)
			if got != tt.want {
				t.Errorf("query = %q, want %q", got, tt.want)
			}
		})
	}
}

func seedIndex(t *testing.T, index *database.MemoryIndex, entries []database.VectorEntry) {
	t.Helper()
	if err := index.Upsert(context.Background(), entries); err != nil {
		t.Fatalf("seeding index: %v", err)
	}
}

func TestClassifyLead(t *testing.T) {
	index := database.NewMemoryIndex()
	seedIndex(t, index, []database.VectorEntry{
		{DocID: "kb_1", Content: "pricing details", Vector: []float32{1, 0, 0},
			Metadata: map[string]string{"title": "Pricing", "doc_type": "faq"}},
		{DocID: "kb_2", Content: "product overview", Vector: []float32{0, 1, 0},
			Metadata: map[string]string{"title": "Overview", "doc_type": "product_page"}},
	})
	embedder := &fakeEmbedder{}
	rag := NewRAGService(embedder, NewKnowledgeService(embedder, index, nil))

	lead := &types.Lead{
		ID:             "lead-1",
		Name:           "Jane",
		Company:        "Acme Corp",
		SourceMetadata: map[string]string{"message": "I want to see a demo of your product ASAP"},
	}

	classification, err := rag.ClassifyLead(context.Background(), lead)
	if err != nil {
		t.Fatalf("ClassifyLead: %v", err)
	}
	if classification.Intent != types.IntentHot {
		t.Errorf("intent = %s, want hot", classification.Intent)
	}
	if classification.Confidence != HotConfidence {
		t.Errorf("confidence = %v, want %v", classification.Confidence, HotConfidence)
	}
	if len(classification.RetrievedDocs) != 2 {
		t.Errorf("retrieved docs = %v, want both knowledge entries", classification.RetrievedDocs)
	}

	if len(embedder.queries) != 1 {
		t.Fatalf("embedded %d queries, want 1", len(embedder.queries))
	}
	if !strings.HasPrefix(embedder.queries[0], "Company: Acme Corp\n") {
		t.Errorf("classification query = %q", embedder.queries[0])
	}
}

func TestClassifyLeadEmbedError(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("backend down")}
	rag := NewRAGService(embedder, NewKnowledgeService(embedder, database.NewMemoryIndex(), nil))

	_, err := rag.ClassifyLead(context.Background(), &types.Lead{Name: "Jane"})
	if err == nil {
		t.Fatal("expected error when embedding fails")
	}
}

func TestRetrieveForGenerationHotFiltersFAQ(t *testing.T) {
	index := database.NewMemoryIndex()
	seedIndex(t, index, []database.VectorEntry{
		{DocID: "kb_faq", Content: "starter plan pricing", Vector: []float32{1, 0, 0},
			Metadata: map[string]string{"doc_type": "faq"}},
		{DocID: "kb_page", Content: "product overview", Vector: []float32{1, 0, 0},
			Metadata: map[string]string{"doc_type": "product_page"}},
	})
	embedder := &fakeEmbedder{}
	rag := NewRAGService(embedder, NewKnowledgeService(embedder, index, nil))

	lead := &types.Lead{Company: "Acme Corp"}
	contexts, err := rag.RetrieveForGeneration(context.Background(), lead, types.IntentHot)
	if err != nil {
		t.Fatalf("RetrieveForGeneration: %v", err)
	}
	if len(contexts) != 1 || contexts[0].DocID != "kb_faq" {
		t.Errorf("contexts = %+v, want only the faq entry", contexts)
	}
	if got := embedder.queries[0]; got != "pricing demo trial purchase Acme Corp" {
		t.Errorf("generation query = %q", got)
	}
}

func TestRetrieveForGenerationSeeds(t *testing.T) {
	tests := []struct {
		intent types.LeadIntent
		want   string
	}{
		{types.IntentHot, "pricing demo trial purchase"},
		{types.IntentWarm, "features benefits how it works"},
		{types.IntentCold, "introduction overview getting started"},
		{types.IntentUnqualified, "introduction overview getting started"},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			embedder := &fakeEmbedder{}
			rag := NewRAGService(embedder, NewKnowledgeService(embedder, database.NewMemoryIndex(), nil))
			if _, err := rag.RetrieveForGeneration(context.Background(), &types.Lead{}, tt.intent); err != nil {
				t.Fatalf("RetrieveForGeneration: %v", err)
			}
			if embedder.queries[0] != tt.want {
				t.Errorf("query = %q, want %q", embedder.queries[0], tt.want)
			}
		})
	}
}

func TestRetrieveForGenerationLimit(t *testing.T) {
	index := database.NewMemoryIndex()
	var entries []database.VectorEntry
	for _, id := range []string{"kb_1", "kb_2", "kb_3", "kb_4", "kb_5"} {
		entries = append(entries, database.VectorEntry{
			DocID: id, Content: "doc " + id, Vector: []float32{1, 0, 0},
			Metadata: map[string]string{"doc_type": "faq"},
		})
	}
	seedIndex(t, index, entries)
	embedder := &fakeEmbedder{}
	rag := NewRAGService(embedder, NewKnowledgeService(embedder, index, nil))

	contexts, err := rag.RetrieveForGeneration(context.Background(), &types.Lead{}, types.IntentWarm)
	if err != nil {
		t.Fatalf("RetrieveForGeneration: %v", err)
	}
	if len(contexts) != generationResults {
		t.Errorf("got %d contexts, want %d", len(contexts), generationResults)
	}
}
