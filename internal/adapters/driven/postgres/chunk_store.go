package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore implements driven.ChunkStore using PostgreSQL.
// Note: vectors live in the vector index, not here.
type ChunkStore struct {
	db *DB
}

// NewChunkStore creates a new ChunkStore
func NewChunkStore(db *DB) *ChunkStore {
	return &ChunkStore{db: db}
}

// SaveBatch saves a document's chunks in one transaction
func (s *ChunkStore) SaveBatch(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO chunks (id, document_id, tenant_id, seq, content, token_count, content_hash, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, chunk := range chunks {
			_, err = stmt.ExecContext(ctx,
				chunk.ID,
				chunk.DocumentID,
				chunk.TenantID,
				chunk.Seq,
				chunk.Content,
				chunk.TokenCount,
				chunk.ContentHash,
				chunk.CreatedAt,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// Get retrieves a chunk by ID
func (s *ChunkStore) Get(ctx context.Context, id string) (*domain.Chunk, error) {
	query := selectChunk + ` WHERE id = $1`

	chunk, err := scanChunk(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return chunk, err
}

// GetByIDs retrieves chunks by ID; missing IDs are silently skipped
func (s *ChunkStore) GetByIDs(ctx context.Context, ids []string) ([]*domain.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := selectChunk + ` WHERE id = ANY($1)`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectChunks(rows)
}

// GetByDocument retrieves all chunks for a document ordered by seq
func (s *ChunkStore) GetByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	query := selectChunk + ` WHERE document_id = $1 ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectChunks(rows)
}

// SearchCandidates returns chunks whose content contains any query term,
// scoped to the tenant and filters. Retrieval only; scoring happens upstream.
func (s *ChunkStore) SearchCandidates(ctx context.Context, tenantID string, terms []string, filters domain.Filters, limit int) ([]*domain.Chunk, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	patterns := make([]string, len(terms))
	for i, term := range terms {
		patterns[i] = "%" + escapeLike(term) + "%"
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT c.id, c.document_id, c.tenant_id, c.seq, c.content, c.token_count, c.content_hash, c.created_at
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.tenant_id = $1 AND c.content ILIKE ANY($2)
	`)

	args := []interface{}{tenantID, pq.Array(patterns)}

	if filters.Source != "" {
		args = append(args, filters.Source)
		sb.WriteString(` AND d.source = $` + placeholder(len(args)))
	}
	if len(filters.Labels) > 0 {
		args = append(args, pq.Array(filters.Labels))
		sb.WriteString(` AND d.labels @> $` + placeholder(len(args)))
	}
	if filters.DateAfter != nil {
		args = append(args, *filters.DateAfter)
		sb.WriteString(` AND d.updated_at >= $` + placeholder(len(args)))
	}
	if filters.DateBefore != nil {
		args = append(args, *filters.DateBefore)
		sb.WriteString(` AND d.updated_at <= $` + placeholder(len(args)))
	}

	args = append(args, limit)
	sb.WriteString(` ORDER BY c.created_at DESC LIMIT $` + placeholder(len(args)))

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectChunks(rows)
}

// DeleteByDocument deletes all chunks for a document
func (s *ChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID)
	return err
}

const selectChunk = `
	SELECT id, document_id, tenant_id, seq, content, token_count, content_hash, created_at
	FROM chunks`

func scanChunk(row rowScanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	err := row.Scan(
		&chunk.ID,
		&chunk.DocumentID,
		&chunk.TenantID,
		&chunk.Seq,
		&chunk.Content,
		&chunk.TokenCount,
		&chunk.ContentHash,
		&chunk.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

func collectChunks(rows *sql.Rows) ([]*domain.Chunk, error) {
	var chunks []*domain.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func placeholder(n int) string {
	return strconv.Itoa(n)
}

// escapeLike escapes LIKE metacharacters in a user-supplied term
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
