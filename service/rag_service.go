package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bizpilot/bizpilot-be/types"
)

const (
	classificationResults = 5
	generationResults     = 3
)

// Intent-specific keyword seeds biasing the generation-pass retrieval.
var generationSeeds = map[types.LeadIntent]string{
	types.IntentHot:  "pricing demo trial purchase",
	types.IntentWarm: "features benefits how it works",
}

const generationSeedDefault = "introduction overview getting started"

// RAGService runs the two retrieval passes of the pipeline: a broad pass
// feeding classification and a narrow, intent-weighted pass feeding
// message generation.
type RAGService struct {
	embedder  EmbeddingService
	knowledge *KnowledgeService
}

func NewRAGService(embedder EmbeddingService, knowledge *KnowledgeService) *RAGService {
	return &RAGService{
		embedder:  embedder,
		knowledge: knowledge,
	}
}

// buildClassificationQuery concatenates company, inquiry message and
// explicit subject line in that order; a lead carrying none of them is
// queried by name alone.
func buildClassificationQuery(lead *types.Lead) string {
	var parts []string
	if lead.Company != "" {
		parts = append(parts, "Company: "+lead.Company)
	}
	if msg := lead.Message(); msg != "" {
		parts = append(parts, "Message: "+msg)
	}
	if subject := lead.Subject(); subject != "" {
		parts = append(parts, "Subject: "+subject)
	}
	if len(parts) == 0 {
		return lead.Name
	}
	return strings.Join(parts, "\n")
}

// ClassifyLead retrieves broad context for the lead and runs the intent
// rule cascade over it.
func (s *RAGService) ClassifyLead(ctx context.Context, lead *types.Lead) (*types.Classification, error) {
	query := buildClassificationQuery(lead)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding classification query: %w", err)
	}
	contexts, err := s.knowledge.Search(ctx, vector, classificationResults, nil)
	if err != nil {
		return nil, err
	}

	intent, confidence, reason := classifyWithRules(query, contexts)

	docs := make([]string, 0, len(contexts))
	for _, c := range contexts {
		docs = append(docs, c.DocID)
	}
	return &types.Classification{
		Intent:        intent,
		Confidence:    confidence,
		Reason:        reason,
		RetrievedDocs: docs,
	}, nil
}

// RetrieveForGeneration runs the intent-biased retrieval pass. Hot leads
// are restricted to FAQ documents, narrowing toward purchase-enabling
// facts; other intents search unfiltered.
func (s *RAGService) RetrieveForGeneration(ctx context.Context, lead *types.Lead, intent types.LeadIntent) ([]types.RetrievedContext, error) {
	seed, ok := generationSeeds[intent]
	if !ok {
		seed = generationSeedDefault
	}
	parts := []string{seed}
	if lead.Company != "" {
		parts = append(parts, lead.Company)
	}
	query := strings.Join(parts, " ")

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding generation query: %w", err)
	}

	var filter map[string]string
	if intent == types.IntentHot {
		filter = map[string]string{"doc_type": string(types.DocTypeFAQ)}
	}
	return s.knowledge.Search(ctx, vector, generationResults, filter)
}
