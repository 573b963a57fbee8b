package driven

import "context"

// VectorHit is one approximate-nearest-neighbor match
type VectorHit struct {
	ChunkID    string
	Similarity float64
}

// VectorPayload is the metadata stored alongside a vector
type VectorPayload struct {
	DocumentID string
	TenantID   string
	Seq        int
}

// VectorIndex is the client contract to the external ANN backend.
// The backend is optional: an unconfigured deployment gets an index whose
// Available() is false, and every caller degrades to lexical-only search
// instead of erroring.
type VectorIndex interface {
	// Available reports whether the backend was configured and reachable
	// at startup. Callers check this flag rather than connecting lazily.
	Available() bool

	// EnsureIndex creates the index for the given dimension if missing
	EnsureIndex(ctx context.Context, dimension int) error

	// Upsert writes one vector with its payload
	Upsert(ctx context.Context, chunkID string, vector []float32, payload VectorPayload) error

	// KNN returns the topK nearest neighbors for the tenant, ordered by
	// descending similarity
	KNN(ctx context.Context, vector []float32, topK int, tenantID string) ([]VectorHit, error)

	// DeleteByDocument removes all vectors belonging to a document
	DeleteByDocument(ctx context.Context, documentID string) error

	// HealthCheck verifies the backend is reachable
	HealthCheck(ctx context.Context) error
}
