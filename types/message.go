package types

// Channel is the outbound communication channel for a message.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// MessageStatus tracks a follow-up message through the review workflow.
type MessageStatus string

const (
	MessageGenerated MessageStatus = "generated" // AI generated, awaiting review
	MessageApproved  MessageStatus = "approved"
	MessageSent      MessageStatus = "sent"
	MessageFailed    MessageStatus = "failed"
	MessageEdited    MessageStatus = "edited"
	MessageRejected  MessageStatus = "rejected"
)

// GeneratedMessage is the immutable artifact produced by one generation
// call. The fallback path produces one with zero-valued latency, token and
// cost accounting.
type GeneratedMessage struct {
	Subject string  `json:"subject,omitempty"`
	Body    string  `json:"body"`
	Channel Channel `json:"channel"`

	Confidence   float64 `json:"confidence"`
	TemplateUsed string  `json:"template_used"`

	ContextUsed     []string `json:"context_used"`
	ContextSnippets []string `json:"context_snippets"`

	ModelVersion string  `json:"model_version"`
	LatencyMS    int64   `json:"latency_ms"`
	TokensUsed   int     `json:"tokens_used"`
	CostUSD      float64 `json:"cost_usd"`
}

// Message is the persisted follow-up message record wrapping a
// GeneratedMessage with review and engagement state.
type Message struct {
	ID     string `bson:"_id" json:"id"`
	LeadID string `bson:"lead_id" json:"lead_id"`

	Subject string  `bson:"subject,omitempty" json:"subject,omitempty"`
	Body    string  `bson:"body" json:"body"`
	Channel Channel `bson:"channel" json:"channel"`

	ModelVersion     string  `bson:"model_version" json:"model_version"`
	PromptTemplateID string  `bson:"prompt_template_id" json:"prompt_template_id"`
	ConfidenceScore  float64 `bson:"confidence_score" json:"confidence_score"`

	RetrievedDocs   []string `bson:"retrieved_docs,omitempty" json:"retrieved_docs,omitempty"`
	ContextSnippets []string `bson:"context_snippets,omitempty" json:"context_snippets,omitempty"`

	Status      MessageStatus `bson:"status" json:"status"`
	HumanEdited bool          `bson:"human_edited" json:"human_edited"`
	EditCount   int           `bson:"edit_count" json:"edit_count"`

	SentAt     int64  `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
	SentVia    string `bson:"sent_via,omitempty" json:"sent_via,omitempty"`
	ExternalID string `bson:"external_id,omitempty" json:"external_id,omitempty"`

	CreatedAt int64 `bson:"created_at" json:"created_at"`
	UpdatedAt int64 `bson:"updated_at" json:"updated_at"`
}

// ModelLog is the audit record reported for every generation call.
type ModelLog struct {
	ID           string `bson:"_id,omitempty" json:"id"`
	ModelVersion string `bson:"model_version" json:"model_version"`
	Operation    string `bson:"operation" json:"operation"`

	InputSummary  string `bson:"input_summary" json:"input_summary"`
	OutputSummary string `bson:"output_summary" json:"output_summary"`

	LatencyMS  int64   `bson:"latency_ms" json:"latency_ms"`
	TokensUsed int     `bson:"tokens_used" json:"tokens_used"`
	CostUSD    float64 `bson:"cost_usd" json:"cost_usd"`

	ConfidenceScore float64 `bson:"confidence_score" json:"confidence_score"`

	CreatedAt int64 `bson:"created_at" json:"created_at"`
}
