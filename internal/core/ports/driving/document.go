package driving

import (
	"context"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
)

// DocumentService provides read access to documents and their chunks
type DocumentService interface {
	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetWithChunks retrieves a document with its chunks
	GetWithChunks(ctx context.Context, id string) (*domain.DocumentWithChunks, error)

	// GetContent retrieves the full reconstructed content of a document
	GetContent(ctx context.Context, id string) (*domain.DocumentContent, error)

	// ListByTenant retrieves documents for a tenant
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Document, error)

	// CountByTenant returns the document count for a tenant
	CountByTenant(ctx context.Context, tenantID string) (int, error)
}
