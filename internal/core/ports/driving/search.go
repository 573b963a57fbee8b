package driving

import (
	"context"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
)

// SearchService performs hybrid retrieval over a tenant's chunks
type SearchService interface {
	// Search runs the lexical and/or semantic sub-searches per the requested
	// mode, blends the scores and returns ranked, snippeted hits.
	Search(ctx context.Context, tenantID, query string, opts domain.SearchOptions) (*domain.SearchResult, error)
}
