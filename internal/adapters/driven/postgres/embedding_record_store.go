package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EmbeddingRecordStore = (*EmbeddingRecordStore)(nil)

// EmbeddingRecordStore implements driven.EmbeddingRecordStore using PostgreSQL
type EmbeddingRecordStore struct {
	db *DB
}

// NewEmbeddingRecordStore creates a new EmbeddingRecordStore
func NewEmbeddingRecordStore(db *DB) *EmbeddingRecordStore {
	return &EmbeddingRecordStore{db: db}
}

// Get retrieves the record for a chunk, or nil when absent
func (s *EmbeddingRecordStore) Get(ctx context.Context, chunkID string) (*domain.EmbeddingRecord, error) {
	query := `
		SELECT chunk_id, document_id, provider, model, dimension, vector_ref, created_at
		FROM embedding_records
		WHERE chunk_id = $1
	`

	var record domain.EmbeddingRecord
	err := s.db.QueryRowContext(ctx, query, chunkID).Scan(
		&record.ChunkID,
		&record.DocumentID,
		&record.Provider,
		&record.Model,
		&record.Dimension,
		&record.VectorRef,
		&record.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// InsertIfAbsent writes a record unless the chunk already has one
func (s *EmbeddingRecordStore) InsertIfAbsent(ctx context.Context, record *domain.EmbeddingRecord) error {
	query := `
		INSERT INTO embedding_records (chunk_id, document_id, provider, model, dimension, vector_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chunk_id) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ChunkID,
		record.DocumentID,
		record.Provider,
		record.Model,
		record.Dimension,
		record.VectorRef,
		record.CreatedAt,
	)
	return err
}

// DeleteByDocument removes all records for a document's chunks
func (s *EmbeddingRecordStore) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM embedding_records WHERE document_id = $1`, documentID)
	return err
}
