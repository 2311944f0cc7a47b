package types

// DocType tags a knowledge document by its editorial kind.
type DocType string

const (
	DocTypeFAQ         DocType = "faq"
	DocTypeProductPage DocType = "product_page"
	DocTypeCaseStudy   DocType = "case_study"
	DocTypeOther       DocType = "other"
)

// KnowledgeDocument is a business knowledge base record. Once indexed it
// carries an EmbeddingID referencing its entry in the vector index.
type KnowledgeDocument struct {
	ID        string   `bson:"_id" json:"id"`
	Title     string   `bson:"title" json:"title"`
	Content   string   `bson:"content" json:"content"`
	DocType   DocType  `bson:"doc_type" json:"doc_type"`
	SourceURL string   `bson:"source_url,omitempty" json:"source_url,omitempty"`
	Tags      []string `bson:"tags,omitempty" json:"tags,omitempty"`
	Priority  int      `bson:"priority" json:"priority"`
	Active    bool     `bson:"active" json:"active"`

	EmbeddingID string `bson:"embedding_id,omitempty" json:"embedding_id,omitempty"`

	CreatedAt int64 `bson:"created_at" json:"created_at"`
	UpdatedAt int64 `bson:"updated_at" json:"updated_at"`
}

// RetrievedContext is a knowledge snippet returned by similarity search.
// Score is a cosine similarity (1 - distance), higher is more similar.
type RetrievedContext struct {
	DocID    string            `json:"doc_id"`
	Content  string            `json:"content"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Title returns the indexed title of the retrieved document, if present.
func (c RetrievedContext) Title() string {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata["title"]
}
