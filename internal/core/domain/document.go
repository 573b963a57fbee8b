package domain

import "time"

// Document represents one ingested piece of content owned by a tenant
type Document struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Source      string    `json:"source"`      // Origin system (e.g. "upload", "wiki", "crawler")
	ExternalID  string    `json:"external_id"` // ID in the origin system
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash"` // sha256 over the normalized full text
	Labels      []string  `json:"labels,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// Chunk is a token-bounded segment of a document's normalized text.
// Chunks are append-only: re-ingesting a document replaces the whole set.
type Chunk struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	TenantID    string    `json:"tenant_id"`
	Seq         int       `json:"seq"` // 0-based, dense after dedup
	Content     string    `json:"content"`
	TokenCount  int       `json:"token_count"`
	ContentHash string    `json:"content_hash"` // sha256 over the normalized chunk text
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentContent holds the full reconstructed content of a document
type DocumentContent struct {
	DocumentID string   `json:"document_id"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Labels     []string `json:"labels,omitempty"`
}

// DocumentWithChunks combines a document with its chunks
type DocumentWithChunks struct {
	Document *Document `json:"document"`
	Chunks   []*Chunk  `json:"chunks"`
}
