package driven

import (
	"context"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
)

// ChunkStore handles chunk persistence and lexical candidate retrieval
type ChunkStore interface {
	// SaveBatch saves a document's chunks in one transaction
	SaveBatch(ctx context.Context, chunks []*domain.Chunk) error

	// Get retrieves a chunk by ID
	Get(ctx context.Context, id string) (*domain.Chunk, error)

	// GetByIDs retrieves chunks by ID; missing IDs are silently skipped
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Chunk, error)

	// GetByDocument retrieves all chunks for a document ordered by seq
	GetByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error)

	// SearchCandidates returns chunks whose content contains any of the query
	// terms (case-insensitive), scoped to the tenant and filters, capped at
	// limit. Scoring happens in the service layer; this is retrieval only.
	SearchCandidates(ctx context.Context, tenantID string, terms []string, filters domain.Filters, limit int) ([]*domain.Chunk, error)

	// DeleteByDocument deletes all chunks for a document
	DeleteByDocument(ctx context.Context, documentID string) error
}
