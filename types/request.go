package types

type CreateLeadRequest struct {
	Email          string            `json:"email,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Name           string            `json:"name"`
	Company        string            `json:"company,omitempty"`
	Source         LeadSource        `json:"source"`
	SourceMetadata map[string]string `json:"source_metadata,omitempty"`
}

type SearchKnowledgeRequest struct {
	Query   string  `json:"query"`
	DocType DocType `json:"doc_type,omitempty"`
	Limit   int     `json:"limit,omitempty"`
}

type ImportKnowledgeRequest struct {
	Documents []KnowledgeDocument `json:"documents"`
}

type ReviewMessageRequest struct {
	MessageID     string `json:"message_id"`
	Action        string `json:"action"` // approve, edit, reject
	EditedSubject string `json:"edited_subject,omitempty"`
	EditedBody    string `json:"edited_body,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
