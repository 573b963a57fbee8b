package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Save creates or updates a document
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, tenant_id, source, external_id, title, content_hash, labels, created_at, updated_at, indexed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content_hash = EXCLUDED.content_hash,
			labels = EXCLUDED.labels,
			updated_at = EXCLUDED.updated_at,
			indexed_at = EXCLUDED.indexed_at
	`

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.TenantID,
		doc.Source,
		doc.ExternalID,
		doc.Title,
		doc.ContentHash,
		pq.Array(doc.Labels),
		doc.CreatedAt,
		doc.UpdatedAt,
		nullTime(doc.IndexedAt),
	)
	return err
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := selectDocument + ` WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetByExternalID retrieves a document by its origin-system identity
func (s *DocumentStore) GetByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Document, error) {
	query := selectDocument + ` WHERE tenant_id = $1 AND external_id = $2`
	return s.scanOne(s.db.QueryRowContext(ctx, query, tenantID, externalID))
}

// ListByTenant retrieves documents for a tenant, newest first
func (s *DocumentStore) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Document, error) {
	query := selectDocument + `
		WHERE tenant_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := s.scanRow(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// CountByTenant returns the number of documents owned by a tenant
func (s *DocumentStore) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}

// Delete deletes a document. Chunks and embedding records cascade.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

const selectDocument = `
	SELECT id, tenant_id, source, external_id, title, content_hash, labels, created_at, updated_at, indexed_at
	FROM documents`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *DocumentStore) scanOne(row *sql.Row) (*domain.Document, error) {
	doc, err := s.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

func (s *DocumentStore) scanRow(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var indexedAt sql.NullTime
	err := row.Scan(
		&doc.ID,
		&doc.TenantID,
		&doc.Source,
		&doc.ExternalID,
		&doc.Title,
		&doc.ContentHash,
		pq.Array(&doc.Labels),
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&indexedAt,
	)
	if err != nil {
		return nil, err
	}
	if indexedAt.Valid {
		doc.IndexedAt = indexedAt.Time
	}
	return &doc, nil
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
