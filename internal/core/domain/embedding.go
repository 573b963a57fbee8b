package domain

import "time"

// EmbeddingCacheEntry maps a normalized-text hash to a previously computed
// vector for a given provider/model pair. Entries are immutable once written;
// racing writers for the same key are resolved by insert-if-absent.
type EmbeddingCacheEntry struct {
	TextHash  string    `json:"text_hash"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Dimension int       `json:"dimension"`
	Vector    []float32 `json:"vector"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the stored vector matches the declared dimension.
// A mismatched entry is treated as a cache miss, never as an error.
func (e *EmbeddingCacheEntry) Valid(dimension int) bool {
	return e != nil && len(e.Vector) == dimension && dimension > 0
}

// EmbeddingRecord marks a chunk as embedded and indexed. At most one exists
// per chunk; its presence is the idempotency guard for re-delivered jobs.
type EmbeddingRecord struct {
	ChunkID    string    `json:"chunk_id"`
	DocumentID string    `json:"document_id"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Dimension  int       `json:"dimension"`
	VectorRef  string    `json:"vector_ref"` // location of the vector in the external index
	CreatedAt  time.Time `json:"created_at"`
}
