package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EmbeddingCacheStore = (*EmbeddingCacheStore)(nil)

// EmbeddingCacheStore implements driven.EmbeddingCacheStore using PostgreSQL
type EmbeddingCacheStore struct {
	db *DB
}

// NewEmbeddingCacheStore creates a new EmbeddingCacheStore
func NewEmbeddingCacheStore(db *DB) *EmbeddingCacheStore {
	return &EmbeddingCacheStore{db: db}
}

// Get retrieves an entry, or nil when absent
func (s *EmbeddingCacheStore) Get(ctx context.Context, textHash, provider, model string) (*domain.EmbeddingCacheEntry, error) {
	query := `
		SELECT text_hash, provider, model, dimension, vector, created_at
		FROM embedding_cache
		WHERE text_hash = $1 AND provider = $2 AND model = $3
	`

	var entry domain.EmbeddingCacheEntry
	err := s.db.QueryRowContext(ctx, query, textHash, provider, model).Scan(
		&entry.TextHash,
		&entry.Provider,
		&entry.Model,
		&entry.Dimension,
		pq.Array(&entry.Vector),
		&entry.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// InsertIfAbsent writes an entry unless one already exists. Concurrent
// identical writes resolve via ON CONFLICT DO NOTHING.
func (s *EmbeddingCacheStore) InsertIfAbsent(ctx context.Context, entry *domain.EmbeddingCacheEntry) error {
	query := `
		INSERT INTO embedding_cache (text_hash, provider, model, dimension, vector, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (text_hash, provider, model) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.TextHash,
		entry.Provider,
		entry.Model,
		entry.Dimension,
		pq.Array(entry.Vector),
		entry.CreatedAt,
	)
	return err
}
