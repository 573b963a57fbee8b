package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driven"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driving"
	"github.com/meridian-labs/meridian-core/internal/runtime"
	"github.com/meridian-labs/meridian-core/internal/textproc"
)

// Ensure ingestService implements IngestService
var _ driving.IngestService = (*ingestService)(nil)

// ingestService runs the synchronous half of the pipeline:
// normalize -> hash -> chunk -> persist, then hand embed jobs to the queue.
// Ingestion latency is bounded by local persistence only; everything that
// talks to an AI provider happens in the background worker.
type ingestService struct {
	documentStore driven.DocumentStore
	chunkStore    driven.ChunkStore
	recordStore   driven.EmbeddingRecordStore
	taskQueue     driven.TaskQueue
	services      *runtime.Services
	chunker       *textproc.Chunker
	logger        *slog.Logger
}

// IngestServiceConfig holds dependencies for the ingest service.
type IngestServiceConfig struct {
	DocumentStore driven.DocumentStore
	ChunkStore    driven.ChunkStore
	RecordStore   driven.EmbeddingRecordStore
	TaskQueue     driven.TaskQueue
	Services      *runtime.Services
	Chunker       *textproc.Chunker
	Logger        *slog.Logger
}

// NewIngestService creates a new IngestService
func NewIngestService(cfg IngestServiceConfig) driving.IngestService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	chunker := cfg.Chunker
	if chunker == nil {
		chunker = textproc.NewChunker(textproc.DefaultChunkerConfig())
	}
	return &ingestService{
		documentStore: cfg.DocumentStore,
		chunkStore:    cfg.ChunkStore,
		recordStore:   cfg.RecordStore,
		taskQueue:     cfg.TaskQueue,
		services:      cfg.Services,
		chunker:       chunker,
		logger:        logger,
	}
}

// Ingest processes one document end to end on the request path.
func (s *ingestService) Ingest(ctx context.Context, req driving.IngestRequest) (*driving.IngestResult, error) {
	if req.TenantID == "" || req.ExternalID == "" {
		return nil, fmt.Errorf("tenant_id and external_id are required: %w", domain.ErrInvalidInput)
	}

	normalized := textproc.Normalize(req.Text)
	contentHash := textproc.HashText(req.Text)
	now := time.Now()

	existing, err := s.documentStore.GetByExternalID(ctx, req.TenantID, req.ExternalID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup document: %w", err)
	}

	if existing != nil && existing.ContentHash == contentHash {
		// Whole-document dedup: unchanged content never re-chunks.
		return &driving.IngestResult{Document: existing, Unchanged: true}, nil
	}

	doc := &domain.Document{
		ID:          domain.GenerateID(),
		TenantID:    req.TenantID,
		Source:      req.Source,
		ExternalID:  req.ExternalID,
		Title:       req.Title,
		ContentHash: contentHash,
		Labels:      req.Labels,
		CreatedAt:   now,
		UpdatedAt:   now,
		IndexedAt:   now,
	}
	if existing != nil {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt

		// Replaced content invalidates every prior chunk: delete them, their
		// embedding records and their indexed vectors, then regenerate.
		if err := s.deleteDerived(ctx, existing.ID); err != nil {
			return nil, err
		}
	}

	segments := s.chunker.Chunk(normalized)

	chunks := make([]*domain.Chunk, 0, len(segments))
	for _, seg := range segments {
		chunks = append(chunks, &domain.Chunk{
			ID:          domain.GenerateID(),
			DocumentID:  doc.ID,
			TenantID:    req.TenantID,
			Seq:         seg.Seq,
			Content:     seg.Text,
			TokenCount:  seg.TokenCount,
			ContentHash: seg.ContentHash,
			CreatedAt:   now,
		})
	}

	if err := s.documentStore.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if len(chunks) > 0 {
		if err := s.chunkStore.SaveBatch(ctx, chunks); err != nil {
			return nil, fmt.Errorf("save chunks: %w", err)
		}
	}

	enqueued := s.enqueueEmbedJobs(ctx, chunks)

	s.logger.Info("document ingested",
		"tenant_id", req.TenantID,
		"document_id", doc.ID,
		"chunks", len(chunks),
		"embed_jobs", enqueued,
		"replaced", existing != nil,
	)

	return &driving.IngestResult{
		Document:     doc,
		ChunkCount:   len(chunks),
		JobsEnqueued: enqueued,
	}, nil
}

// enqueueEmbedJobs hands chunks to the background queue. Enqueue failures
// are logged and swallowed: the chunks are already lexically searchable and
// a reconciliation sweep can re-embed them later. Embedding jobs are only
// worth queueing when an embedding provider is configured.
func (s *ingestService) enqueueEmbedJobs(ctx context.Context, chunks []*domain.Chunk) int {
	if s.taskQueue == nil || len(chunks) == 0 {
		return 0
	}
	if s.services != nil && !s.services.Config().EmbeddingAvailable() {
		return 0
	}

	tasks := make([]*domain.Task, 0, len(chunks))
	for _, chunk := range chunks {
		tasks = append(tasks, domain.NewEmbedChunkTask(chunk.TenantID, chunk.DocumentID, chunk.ID))
	}

	if err := s.taskQueue.EnqueueBatch(ctx, tasks); err != nil {
		s.logger.Warn("failed to enqueue embed jobs, chunks remain lexically searchable",
			"chunks", len(chunks), "error", err)
		return 0
	}
	return len(tasks)
}

// DeleteDocument removes a document and everything derived from it.
func (s *ingestService) DeleteDocument(ctx context.Context, tenantID, documentID string) error {
	doc, err := s.documentStore.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.TenantID != tenantID {
		return domain.ErrNotFound
	}

	if err := s.deleteDerived(ctx, documentID); err != nil {
		return err
	}
	return s.documentStore.Delete(ctx, documentID)
}

// deleteDerived removes chunks, embedding records and indexed vectors for a
// document. The vector index delete is best-effort: an unavailable backend
// must not block re-ingestion.
func (s *ingestService) deleteDerived(ctx context.Context, documentID string) error {
	if index := s.services.VectorIndex(); index != nil && index.Available() {
		if err := index.DeleteByDocument(ctx, documentID); err != nil {
			s.logger.Warn("failed to delete vectors", "document_id", documentID, "error", err)
		}
	}
	if s.recordStore != nil {
		if err := s.recordStore.DeleteByDocument(ctx, documentID); err != nil {
			return fmt.Errorf("delete embedding records: %w", err)
		}
	}
	if err := s.chunkStore.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}
