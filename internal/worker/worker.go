// Package worker consumes embed jobs from the task queue and runs the
// asynchronous half of the pipeline: compute (or reuse) the chunk's vector
// and upsert it into the vector index. Jobs are independent per chunk and
// idempotent, so the only coordination is the cache's race-tolerant write.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driven"
	"github.com/meridian-labs/meridian-core/internal/core/services"
	"github.com/meridian-labs/meridian-core/internal/runtime"
)

// Worker processes embed_chunk tasks from the task queue.
type Worker struct {
	taskQueue   driven.TaskQueue
	chunkStore  driven.ChunkStore
	recordStore driven.EmbeddingRecordStore
	cache       *services.EmbeddingCache
	services    *runtime.Services
	logger      *slog.Logger

	// Configuration
	concurrency    int
	dequeueTimeout int // seconds

	// Internal state
	mu      sync.RWMutex
	running bool
	pool    *ants.Pool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds configuration for the worker.
type Config struct {
	TaskQueue      driven.TaskQueue
	ChunkStore     driven.ChunkStore
	RecordStore    driven.EmbeddingRecordStore
	Cache          *services.EmbeddingCache
	Services       *runtime.Services
	Logger         *slog.Logger
	Concurrency    int // Number of concurrent embed jobs
	DequeueTimeout int // Seconds to wait for a task before checking again
}

// New creates a new embed worker.
func New(cfg Config) (*Worker, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	dequeueTimeout := cfg.DequeueTimeout
	if dequeueTimeout <= 0 {
		dequeueTimeout = 5
	}

	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	return &Worker{
		taskQueue:      cfg.TaskQueue,
		chunkStore:     cfg.ChunkStore,
		recordStore:    cfg.RecordStore,
		cache:          cfg.Cache,
		services:       cfg.Services,
		logger:         logger,
		concurrency:    concurrency,
		dequeueTimeout: dequeueTimeout,
		pool:           pool,
	}, nil
}

// Start begins the dequeue loop. It runs until Stop is called or the
// context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("embed worker starting",
		"concurrency", w.concurrency,
		"dequeue_timeout", w.dequeueTimeout,
	)

	go w.dequeueLoop(ctx)

	return nil
}

// Stop gracefully stops the worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.pool.Release()

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("embed worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	<-w.doneCh
}

// dequeueLoop pulls tasks and submits them to the bounded pool.
func (w *Worker) dequeueLoop(ctx context.Context) {
	defer close(w.doneCh)

	var inflight sync.WaitGroup
	defer inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker context cancelled")
			return
		case <-w.stopCh:
			w.logger.Info("worker stop signal received")
			return
		default:
		}

		task, err := w.taskQueue.DequeueWithTimeout(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.logger.Error("failed to dequeue task", "error", err)
			time.Sleep(time.Second) // Back off on error
			continue
		}

		if task == nil {
			continue
		}

		inflight.Add(1)
		t := task
		if err := w.pool.Submit(func() {
			defer inflight.Done()
			w.processTask(ctx, t)
		}); err != nil {
			inflight.Done()
			w.logger.Error("failed to submit task to pool", "task_id", t.ID, "error", err)
			if nackErr := w.taskQueue.Nack(ctx, t.ID, err.Error()); nackErr != nil {
				w.logger.Error("failed to nack task", "task_id", t.ID, "nack_error", nackErr)
			}
		}
	}
}

// processTask processes a single task.
func (w *Worker) processTask(ctx context.Context, task *domain.Task) {
	logger := w.logger.With("task_id", task.ID, "task_type", task.Type, "tenant_id", task.TenantID)

	start := time.Now()
	var err error

	switch task.Type {
	case domain.TaskTypeEmbedChunk:
		err = w.handleEmbedChunk(ctx, task)
	default:
		err = fmt.Errorf("unknown task type: %s", task.Type)
	}

	if err != nil {
		logger.Error("task failed", "duration", time.Since(start), "error", err)
		if nackErr := w.taskQueue.Nack(ctx, task.ID, err.Error()); nackErr != nil {
			logger.Error("failed to nack task", "nack_error", nackErr)
		}
		return
	}

	logger.Debug("task completed", "duration", time.Since(start))

	if ackErr := w.taskQueue.Ack(ctx, task.ID); ackErr != nil {
		logger.Error("failed to ack task", "ack_error", ackErr)
	}
}

// handleEmbedChunk embeds and indexes one chunk.
// Delivery is at-least-once: the existing EmbeddingRecord is the idempotency
// guard that makes re-delivery a no-op.
func (w *Worker) handleEmbedChunk(ctx context.Context, task *domain.Task) error {
	chunkID := task.ChunkID()
	if chunkID == "" {
		return fmt.Errorf("chunk_id not found in task payload")
	}

	chunk, err := w.chunkStore.Get(ctx, chunkID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Chunk was replaced before the job ran; nothing to embed.
			w.logger.Debug("chunk gone, skipping embed", "chunk_id", chunkID)
			return nil
		}
		return fmt.Errorf("fetch chunk: %w", err)
	}

	record, err := w.recordStore.Get(ctx, chunkID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check embedding record: %w", err)
	}
	if record != nil {
		return nil // Already embedded
	}

	embedder := w.services.EmbeddingService()
	if embedder == nil {
		// Provider went away since enqueue. The chunk stays lexically
		// searchable; a later sweep can re-embed it.
		w.logger.Warn("embedding provider unavailable, skipping chunk", "chunk_id", chunkID)
		return nil
	}

	vector, cacheHit, err := w.cache.GetOrCompute(ctx, chunk.Content, embedder)
	if err != nil {
		return fmt.Errorf("compute embedding: %w", err)
	}
	if vector == nil {
		// Provider declined to embed; degraded but not an error.
		w.logger.Warn("no vector for chunk", "chunk_id", chunkID)
		return nil
	}

	vectorRef := ""
	if index := w.services.VectorIndex(); index != nil && index.Available() {
		if err := index.Upsert(ctx, chunk.ID, vector, driven.VectorPayload{
			DocumentID: chunk.DocumentID,
			TenantID:   chunk.TenantID,
			Seq:        chunk.Seq,
		}); err != nil {
			return fmt.Errorf("upsert vector: %w", err)
		}
		vectorRef = chunk.ID
	}

	if err := w.recordStore.InsertIfAbsent(ctx, &domain.EmbeddingRecord{
		ChunkID:    chunk.ID,
		DocumentID: chunk.DocumentID,
		Provider:   embedder.Provider(),
		Model:      embedder.Model(),
		Dimension:  len(vector),
		VectorRef:  vectorRef,
		CreatedAt:  time.Now(),
	}); err != nil {
		return fmt.Errorf("persist embedding record: %w", err)
	}

	w.logger.Debug("chunk embedded",
		"chunk_id", chunk.ID,
		"document_id", chunk.DocumentID,
		"cache_hit", cacheHit,
	)
	return nil
}

// Health returns health status of the worker.
type Health struct {
	Running     bool   `json:"running"`
	QueueHealth bool   `json:"queue_health"`
	Error       string `json:"error,omitempty"`
}

// Health returns the health status of the worker.
func (w *Worker) Health(ctx context.Context) Health {
	w.mu.RLock()
	running := w.running
	w.mu.RUnlock()

	health := Health{Running: running}

	if err := w.taskQueue.Ping(ctx); err != nil {
		health.QueueHealth = false
		health.Error = err.Error()
	} else {
		health.QueueHealth = true
	}

	return health
}
