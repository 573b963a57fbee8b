package driven

import (
	"context"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
)

// EmbeddingCacheStore persists computed vectors keyed by
// (text hash, provider, model). The cache is global and content-addressed:
// the key carries no document or tenant identity, so identical text shares
// one entry across the whole deployment.
type EmbeddingCacheStore interface {
	// Get retrieves an entry, or nil when absent
	Get(ctx context.Context, textHash, provider, model string) (*domain.EmbeddingCacheEntry, error)

	// InsertIfAbsent writes an entry unless one already exists for the key.
	// A concurrent identical write is an accepted benign race: whichever
	// writer wins, the method returns nil either way.
	InsertIfAbsent(ctx context.Context, entry *domain.EmbeddingCacheEntry) error
}

// EmbeddingRecordStore persists the one-per-chunk embedding markers
type EmbeddingRecordStore interface {
	// Get retrieves the record for a chunk, or nil when absent
	Get(ctx context.Context, chunkID string) (*domain.EmbeddingRecord, error)

	// InsertIfAbsent writes a record unless the chunk already has one.
	// Duplicate job delivery makes concurrent writes possible; conflicts
	// are not errors.
	InsertIfAbsent(ctx context.Context, record *domain.EmbeddingRecord) error

	// DeleteByDocument removes all records for a document's chunks
	DeleteByDocument(ctx context.Context, documentID string) error
}
