package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/bizpilot/bizpilot-be/repository"
	"github.com/bizpilot/bizpilot-be/types"
)

const (
	// Flat placeholder heuristic, not billing-accurate pricing.
	costPerThousandTokens = 0.01

	// Snippets fed into the prompt and recorded on the message artifact.
	contextSnippetLimit = 300
	recordSnippetLimit  = 200

	confidenceCap   = 0.95
	confidenceFloor = 0.5

	fallbackTemplateID = "fallback"
)

// Intent weights applied to the average retrieval similarity when scoring
// generation confidence.
var intentWeights = map[types.LeadIntent]float64{
	types.IntentHot:  1.0,
	types.IntentWarm: 0.85,
	types.IntentCold: 0.70,
}

const unknownIntentWeight = 0.60

// MessageGenerator renders an intent-specific prompt, calls the generative
// backend within a timeout, and scores the result. A backend failure never
// reaches the caller: the generator degrades to a static fallback message
// so the pipeline always produces a sendable artifact.
type MessageGenerator struct {
	ai      AIService
	rag     *RAGService
	logs    repository.ModelLogRepo
	timeout time.Duration
}

func NewMessageGenerator(
	ai AIService,
	rag *RAGService,
	logs repository.ModelLogRepo,
	timeout time.Duration,
) *MessageGenerator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MessageGenerator{
		ai:      ai,
		rag:     rag,
		logs:    logs,
		timeout: timeout,
	}
}

// Generate produces a follow-up message for the lead. contexts may be nil,
// in which case the generation-pass retrieval runs here; a retrieval
// failure is the only error this method returns.
func (g *MessageGenerator) Generate(ctx context.Context, lead *types.Lead, intent types.LeadIntent, contexts []types.RetrievedContext) (*types.GeneratedMessage, error) {
	start := time.Now()

	if contexts == nil {
		var err error
		contexts, err = g.rag.RetrieveForGeneration(ctx, lead, intent)
		if err != nil {
			return nil, err
		}
	}

	template := templateFor(intent)
	userMessage := template.render(lead, buildContextBlock(contexts))

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	content, usage, err := g.ai.Complete(callCtx, template.systemPrompt, userMessage)
	if err != nil {
		log.Printf("message generation failed, using fallback: %v", err)
		msg := g.fallbackMessage(lead, intent)
		g.reportModelCall(lead, intent, msg)
		return msg, nil
	}

	subject, body := parseResponse(content)
	confidence := calculateConfidence(contexts, intent)
	latency := time.Since(start).Milliseconds()
	tokens := usage.Total()

	msg := &types.GeneratedMessage{
		Subject:         subject,
		Body:            body,
		Channel:         types.ChannelEmail,
		Confidence:      confidence,
		TemplateUsed:    template.name,
		ContextUsed:     contextIDs(contexts),
		ContextSnippets: contextSnippets(contexts),
		ModelVersion:    g.ai.ModelVersion(),
		LatencyMS:       latency,
		TokensUsed:      tokens,
		CostUSD:         float64(tokens) / 1000 * costPerThousandTokens,
	}
	g.reportModelCall(lead, intent, msg)
	return msg, nil
}

// parseResponse splits the backend's raw text on the SUBJECT:/BODY: markers.
// Parsing never fails: a missing subject gets a generic one and a missing
// body falls back to the entire raw response.
func parseResponse(content string) (subject, body string) {
	var bodyLines []string
	inBody := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "SUBJECT:"):
			subject = strings.TrimSpace(strings.TrimPrefix(trimmed, "SUBJECT:"))
		case strings.HasPrefix(trimmed, "BODY:"):
			inBody = true
			if rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "BODY:")); rest != "" {
				bodyLines = append(bodyLines, rest)
			}
		case inBody:
			bodyLines = append(bodyLines, line)
		}
	}

	body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
	if subject == "" {
		subject = "Re: Your inquiry about BizPilot"
	}
	if body == "" {
		body = content
	}
	return subject, body
}

// calculateConfidence scores a generated message from retrieval quality
// and intent: average similarity times the intent weight, clamped to
// [0, 0.95] and rounded to two decimals. Similarity is cosine, so a
// negative average is possible and must not produce a negative score. No
// contexts means no retrieval evidence, so the score floors at 0.5.
func calculateConfidence(contexts []types.RetrievedContext, intent types.LeadIntent) float64 {
	if len(contexts) == 0 {
		return confidenceFloor
	}

	var sum float64
	for _, c := range contexts {
		sum += c.Score
	}
	avg := sum / float64(len(contexts))

	weight, ok := intentWeights[intent]
	if !ok {
		weight = unknownIntentWeight
	}

	confidence := math.Max(0, math.Min(avg*weight, confidenceCap))
	return math.Round(confidence*100) / 100
}

func (g *MessageGenerator) fallbackMessage(lead *types.Lead, intent types.LeadIntent) *types.GeneratedMessage {
	template := fallbackFor(intent)
	name := lead.Name
	if name == "" {
		name = "there"
	}
	return &types.GeneratedMessage{
		Subject:         template.subject,
		Body:            strings.ReplaceAll(template.body, "{name}", name),
		Channel:         types.ChannelEmail,
		Confidence:      confidenceFloor,
		TemplateUsed:    fallbackTemplateID,
		ContextUsed:     []string{},
		ContextSnippets: []string{},
		ModelVersion:    fallbackTemplateID,
	}
}

// reportModelCall writes the audit record for a generation call. It runs
// detached and best-effort: the caller's result never depends on whether
// the record lands.
func (g *MessageGenerator) reportModelCall(lead *types.Lead, intent types.LeadIntent, msg *types.GeneratedMessage) {
	if g.logs == nil {
		return
	}
	record := &types.ModelLog{
		ModelVersion:    msg.ModelVersion,
		Operation:       "generate_message",
		InputSummary:    fmt.Sprintf("lead=%s intent=%s", lead.ID, intent),
		OutputSummary:   fmt.Sprintf("subject=%q template=%s", msg.Subject, msg.TemplateUsed),
		LatencyMS:       msg.LatencyMS,
		TokensUsed:      msg.TokensUsed,
		CostUSD:         msg.CostUSD,
		ConfidenceScore: msg.Confidence,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := g.logs.CreateLog(ctx, record); err != nil {
			log.Printf("model call audit failed: %v", err)
		}
	}()
}

func buildContextBlock(contexts []types.RetrievedContext) string {
	var parts []string
	for i, c := range contexts {
		if i >= generationResults {
			break
		}
		parts = append(parts, "• "+truncate(c.Content, contextSnippetLimit))
	}
	return strings.Join(parts, "\n\n")
}

func contextIDs(contexts []types.RetrievedContext) []string {
	ids := make([]string, 0, len(contexts))
	for _, c := range contexts {
		ids = append(ids, c.DocID)
	}
	return ids
}

func contextSnippets(contexts []types.RetrievedContext) []string {
	snippets := make([]string, 0, len(contexts))
	for _, c := range contexts {
		snippets = append(snippets, truncate(c.Content, recordSnippetLimit))
	}
	return snippets
}

func truncate(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength]
}
