package mocks

import (
	"context"
	"sync"

	"github.com/meridian-labs/meridian-core/internal/core/ports/driven"
)

type indexedVector struct {
	vector  []float32
	payload driven.VectorPayload
}

// MockVectorIndex is an in-memory VectorIndex for testing.
// KNN returns pre-seeded hits rather than computing real similarities.
type MockVectorIndex struct {
	mu        sync.RWMutex
	available bool
	vectors   map[string]indexedVector

	// Hits is returned from KNN, filtered by tenant and capped at topK
	Hits []driven.VectorHit

	// HitTenants maps chunk ID to tenant for KNN filtering; unset IDs pass
	HitTenants map[string]string

	// KNNErr, when set, is returned from KNN
	KNNErr error
}

// NewMockVectorIndex creates an available mock index
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{
		available:  true,
		vectors:    make(map[string]indexedVector),
		HitTenants: make(map[string]string),
	}
}

// SetAvailable toggles the availability flag
func (m *MockVectorIndex) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
}

func (m *MockVectorIndex) Available() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available
}

func (m *MockVectorIndex) EnsureIndex(ctx context.Context, dimension int) error {
	return nil
}

func (m *MockVectorIndex) Upsert(ctx context.Context, chunkID string, vector []float32, payload driven.VectorPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[chunkID] = indexedVector{vector: vector, payload: payload}
	return nil
}

func (m *MockVectorIndex) KNN(ctx context.Context, vector []float32, topK int, tenantID string) ([]driven.VectorHit, error) {
	if m.KNNErr != nil {
		return nil, m.KNNErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []driven.VectorHit
	for _, hit := range m.Hits {
		if tenant, ok := m.HitTenants[hit.ChunkID]; ok && tenant != tenantID {
			continue
		}
		hits = append(hits, hit)
		if topK > 0 && len(hits) >= topK {
			break
		}
	}
	return hits, nil
}

func (m *MockVectorIndex) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, v := range m.vectors {
		if v.payload.DocumentID == documentID {
			delete(m.vectors, id)
		}
	}
	return nil
}

func (m *MockVectorIndex) HealthCheck(ctx context.Context) error { return nil }

// Upserted reports whether a vector was stored for the chunk
func (m *MockVectorIndex) Upserted(chunkID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vectors[chunkID]
	return ok
}

// UpsertCount returns the number of stored vectors
func (m *MockVectorIndex) UpsertCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}
