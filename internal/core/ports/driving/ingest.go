package driving

import (
	"context"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
)

// IngestRequest carries one piece of raw content into the pipeline
type IngestRequest struct {
	TenantID   string   `json:"tenant_id"`
	ExternalID string   `json:"external_id"`
	Source     string   `json:"source"`
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	Labels     []string `json:"labels,omitempty"`
}

// IngestResult reports what the ingestion did
type IngestResult struct {
	Document     *domain.Document `json:"document"`
	ChunkCount   int              `json:"chunk_count"`
	Unchanged    bool             `json:"unchanged"`     // content hash matched the stored document
	JobsEnqueued int              `json:"jobs_enqueued"` // embed jobs handed to the queue
}

// IngestService turns raw text into persisted, embeddable chunks.
// Chunking and persistence are synchronous; embedding is handed off to the
// background queue and never fails the ingest.
type IngestService interface {
	// Ingest processes one document. Re-ingesting unchanged content is a
	// no-op; changed content replaces all prior chunks.
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)

	// DeleteDocument removes a document, its chunks, embedding records and
	// indexed vectors.
	DeleteDocument(ctx context.Context, tenantID, documentID string) error
}
