package model

// Document is the caller-facing view of an indexed document. The vector store
// holds one point per chunk; a Document is the deduplicated whole.
type Document struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt string            `json:"created_at,omitempty"`
}
