package driven

import (
	"context"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
)

// DocumentStore handles document persistence
type DocumentStore interface {
	// Save creates or updates a document
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetByExternalID retrieves a document by tenant and external ID
	GetByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Document, error)

	// ListByTenant retrieves documents for a tenant with pagination
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Document, error)

	// Delete removes a document. Chunks and embedding records cascade.
	Delete(ctx context.Context, id string) error

	// CountByTenant returns the document count for a tenant
	CountByTenant(ctx context.Context, tenantID string) (int, error)
}
