package types

// LeadSource identifies where a lead was ingested from.
type LeadSource string

const (
	LeadSourceEmail     LeadSource = "email"
	LeadSourceForm      LeadSource = "google_form"
	LeadSourceWhatsApp  LeadSource = "whatsapp"
	LeadSourceWebhook   LeadSource = "webhook"
	LeadSourceCSVUpload LeadSource = "csv_upload"
	LeadSourceAPI       LeadSource = "api"
)

// LeadIntent is the purchase-readiness classification of a lead.
type LeadIntent string

const (
	IntentHot         LeadIntent = "hot"         // high purchase intent, ready to buy
	IntentWarm        LeadIntent = "warm"        // interested, needs nurturing
	IntentCold        LeadIntent = "cold"        // low intent, early stage
	IntentUnqualified LeadIntent = "unqualified" // not a fit
)

// Lead is the core lead entity. Classification fields are written back
// once the pipeline has run.
type Lead struct {
	ID      string `bson:"_id" json:"id"`
	Email   string `bson:"email" json:"email"`
	Phone   string `bson:"phone" json:"phone"`
	Name    string `bson:"name" json:"name"`
	Company string `bson:"company" json:"company"`

	Source         LeadSource        `bson:"source" json:"source"`
	SourceMetadata map[string]string `bson:"source_metadata" json:"source_metadata"`

	Intent               LeadIntent `bson:"intent,omitempty" json:"intent,omitempty"`
	IntentConfidence     float64    `bson:"intent_confidence,omitempty" json:"intent_confidence,omitempty"`
	ClassificationReason string     `bson:"classification_reason,omitempty" json:"classification_reason,omitempty"`

	CreatedAt     int64 `bson:"created_at" json:"created_at"`
	UpdatedAt     int64 `bson:"updated_at" json:"updated_at"`
	LastContactAt int64 `bson:"last_contact_at,omitempty" json:"last_contact_at,omitempty"`
}

// Message returns the free-text inquiry supplied with the lead, if any.
func (l *Lead) Message() string {
	if l.SourceMetadata == nil {
		return ""
	}
	return l.SourceMetadata["message"]
}

// Subject returns the explicit subject line supplied with the lead, if any.
func (l *Lead) Subject() string {
	if l.SourceMetadata == nil {
		return ""
	}
	return l.SourceMetadata["subject"]
}

// Classification is the output of one classification invocation.
type Classification struct {
	Intent        LeadIntent `json:"intent"`
	Confidence    float64    `json:"confidence"`
	Reason        string     `json:"reason"`
	RetrievedDocs []string   `json:"retrieved_docs"`
}
