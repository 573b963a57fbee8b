package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driven"
	"github.com/meridian-labs/meridian-core/internal/textproc"
)

// EmbeddingCache avoids recomputing vectors for text already embedded with
// the same provider and model. Identical normalized text (boilerplate,
// repeated templates, re-ingested documents) is common, so the cache turns
// an external network call into a store lookup.
//
// Writes race by design: two workers embedding the same text concurrently
// both compute, both try to persist, and the store's insert-if-absent keeps
// exactly one entry. Neither caller needs to retry - both already hold a
// usable vector.
type EmbeddingCache struct {
	store  driven.EmbeddingCacheStore
	logger *slog.Logger
}

// NewEmbeddingCache creates a new EmbeddingCache
func NewEmbeddingCache(store driven.EmbeddingCacheStore, logger *slog.Logger) *EmbeddingCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingCache{store: store, logger: logger}
}

// GetOrCompute returns the vector for rawText, serving from the cache when a
// dimension-valid entry exists and computing via the embedder otherwise.
// A provider failure returns (nil, false, nil): no vector is a degraded
// outcome the caller handles, never a fatal ingestion error. A store failure
// on lookup falls through to compute; a store failure on write is logged and
// swallowed since the vector is already in hand.
func (c *EmbeddingCache) GetOrCompute(ctx context.Context, rawText string, embedder driven.EmbeddingService) (vector []float32, cacheHit bool, err error) {
	if embedder == nil {
		return nil, false, fmt.Errorf("embed: %w", domain.ErrServiceUnavailable)
	}

	hash := textproc.HashText(rawText)
	provider := embedder.Provider()
	model := embedder.Model()
	dimension := embedder.Dimensions()

	entry, err := c.store.Get(ctx, hash, provider, model)
	if err != nil {
		c.logger.Warn("embedding cache lookup failed, computing",
			"text_hash", hash, "error", err)
	} else if entry.Valid(dimension) {
		return entry.Vector, true, nil
	}
	// A present but dimension-mismatched entry is treated as a miss.

	vectors, err := embedder.Embed(ctx, []string{rawText})
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		c.logger.Warn("embedding provider call failed", "error", err)
		return nil, false, nil
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, false, nil
	}
	vector = vectors[0]

	writeErr := c.store.InsertIfAbsent(ctx, &domain.EmbeddingCacheEntry{
		TextHash:  hash,
		Provider:  provider,
		Model:     model,
		Dimension: len(vector),
		Vector:    vector,
		CreatedAt: time.Now(),
	})
	if writeErr != nil {
		// Not a conflict (those return nil from the store) - the vector is
		// still usable, only the cache write is lost.
		c.logger.Warn("embedding cache write failed", "text_hash", hash, "error", writeErr)
	}

	return vector, false, nil
}
