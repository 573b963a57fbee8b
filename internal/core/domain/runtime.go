package domain

import "sync"

// RuntimeConfig tracks which external services are available at runtime.
// Availability is determined by startup health checks; callers consult the
// flags instead of connecting lazily on demand.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	QueueBackend string // "redis" or "postgres"

	// Dynamic capability flags
	embeddingAvailable   bool
	vectorIndexAvailable bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(queueBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		QueueBackend: queueBackend,
	}
}

// EmbeddingAvailable returns whether the embedding provider is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// VectorIndexAvailable returns whether the vector index backend is available
func (c *RuntimeConfig) VectorIndexAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vectorIndexAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetVectorIndexAvailable updates the vector index availability flag
func (c *RuntimeConfig) SetVectorIndexAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectorIndexAvailable = available
}

// CanDoSemanticSearch returns true if semantic search is possible.
// It needs both a query vectorizer and a vector index to query.
func (c *RuntimeConfig) CanDoSemanticSearch() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable && c.vectorIndexAvailable
}

// EffectiveSearchMode returns the best available search mode
func (c *RuntimeConfig) EffectiveSearchMode() SearchMode {
	if c.CanDoSemanticSearch() {
		return SearchModeHybrid
	}
	return SearchModeLexical
}
