package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bizpilot/bizpilot-be/types"
)

// Signal phrases and thresholds for the intent rule cascade. Exported so
// they can be tuned and tested without touching the control flow.
var (
	HotSignals = []string{
		"urgent", "asap", "immediately", "buy now", "purchase",
		"pricing", "demo", "trial", "start today",
	}
	WarmSignals = []string{
		"interested", "learn more", "information", "how does",
		"tell me about", "curious", "exploring",
	}
)

const (
	HotConfidence          = 0.85
	WarmConfidence         = 0.70
	ShortQueryConfidence   = 0.60
	ContextMatchConfidence = 0.65
	DefaultConfidence      = 0.50

	// Queries shorter than this many characters are classified cold for
	// lack of context.
	ShortQueryLength = 20

	// Top retrieval score above this marks the lead warm even without
	// keyword signals.
	ContextScoreThreshold = 0.70
)

type ruleOutcome struct {
	intent     types.LeadIntent
	confidence float64
	reason     string
}

// classificationRule is one step of the cascade. ok=false means the rule
// does not apply and evaluation moves to the next rule.
type classificationRule struct {
	name  string
	apply func(query string, contexts []types.RetrievedContext) (ruleOutcome, bool)
}

// intentRules is evaluated in order; the first matching rule wins. The
// order encodes priority: hot signals override warm signals override the
// length and retrieval fallbacks.
var intentRules = []classificationRule{
	{
		name: "hot_signals",
		apply: func(query string, _ []types.RetrievedContext) (ruleOutcome, bool) {
			matched := matchSignals(query, HotSignals)
			if len(matched) == 0 {
				return ruleOutcome{}, false
			}
			return ruleOutcome{
				intent:     types.IntentHot,
				confidence: HotConfidence,
				reason:     fmt.Sprintf("High-intent keywords detected: %s", strings.Join(matched, ", ")),
			}, true
		},
	},
	{
		name: "warm_signals",
		apply: func(query string, _ []types.RetrievedContext) (ruleOutcome, bool) {
			matched := matchSignals(query, WarmSignals)
			if len(matched) == 0 {
				return ruleOutcome{}, false
			}
			return ruleOutcome{
				intent:     types.IntentWarm,
				confidence: WarmConfidence,
				reason:     fmt.Sprintf("Interest indicators found: %s", strings.Join(matched, ", ")),
			}, true
		},
	},
	{
		name: "short_query",
		apply: func(query string, _ []types.RetrievedContext) (ruleOutcome, bool) {
			if utf8.RuneCountInString(query) >= ShortQueryLength {
				return ruleOutcome{}, false
			}
			return ruleOutcome{
				intent:     types.IntentCold,
				confidence: ShortQueryConfidence,
				reason:     "Brief inquiry, needs more context",
			}, true
		},
	},
	{
		name: "context_relevance",
		apply: func(_ string, contexts []types.RetrievedContext) (ruleOutcome, bool) {
			if len(contexts) == 0 || contexts[0].Score <= ContextScoreThreshold {
				return ruleOutcome{}, false
			}
			title := contexts[0].Title()
			if title == "" {
				title = "N/A"
			}
			return ruleOutcome{
				intent:     types.IntentWarm,
				confidence: ContextMatchConfidence,
				reason:     fmt.Sprintf("Relevant to our knowledge base: %s", title),
			}, true
		},
	},
}

// classifyWithRules runs the cascade over the lowercased query text.
func classifyWithRules(query string, contexts []types.RetrievedContext) (types.LeadIntent, float64, string) {
	for _, rule := range intentRules {
		if outcome, ok := rule.apply(query, contexts); ok {
			return outcome.intent, outcome.confidence, outcome.reason
		}
	}
	return types.IntentCold, DefaultConfidence, "Standard inquiry, no strong signals"
}

func matchSignals(query string, signals []string) []string {
	lower := strings.ToLower(query)
	var matched []string
	for _, signal := range signals {
		if strings.Contains(lower, signal) {
			matched = append(matched, signal)
		}
	}
	return matched
}
