package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
)

// MockChunkStore is an in-memory ChunkStore for testing
type MockChunkStore struct {
	mu     sync.RWMutex
	chunks map[string]*domain.Chunk

	// SearchErr, when set, is returned from SearchCandidates
	SearchErr error
}

// NewMockChunkStore creates a new MockChunkStore
func NewMockChunkStore() *MockChunkStore {
	return &MockChunkStore{
		chunks: make(map[string]*domain.Chunk),
	}
}

func (m *MockChunkStore) SaveBatch(ctx context.Context, chunks []*domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chunk := range chunks {
		m.chunks[chunk.ID] = chunk
	}
	return nil
}

func (m *MockChunkStore) Get(ctx context.Context, id string) (*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chunk, ok := m.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return chunk, nil
}

func (m *MockChunkStore) GetByIDs(ctx context.Context, ids []string) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var chunks []*domain.Chunk
	for _, id := range ids {
		if chunk, ok := m.chunks[id]; ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

func (m *MockChunkStore) GetByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var chunks []*domain.Chunk
	for _, chunk := range m.chunks {
		if chunk.DocumentID == documentID {
			chunks = append(chunks, chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Seq < chunks[j].Seq })
	return chunks, nil
}

// SearchCandidates matches any chunk containing any term, case-insensitive.
// Filters are ignored; filter behavior is the stores' concern.
func (m *MockChunkStore) SearchCandidates(ctx context.Context, tenantID string, terms []string, filters domain.Filters, limit int) ([]*domain.Chunk, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var chunks []*domain.Chunk
	for _, chunk := range m.chunks {
		if chunk.TenantID != tenantID {
			continue
		}
		content := strings.ToLower(chunk.Content)
		for _, term := range terms {
			if strings.Contains(content, strings.ToLower(term)) {
				chunks = append(chunks, chunk)
				break
			}
		}
	}

	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ID < chunks[j].ID })
	if limit > 0 && limit < len(chunks) {
		chunks = chunks[:limit]
	}
	return chunks, nil
}

func (m *MockChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, chunk := range m.chunks {
		if chunk.DocumentID == documentID {
			delete(m.chunks, id)
		}
	}
	return nil
}

// Count returns the number of stored chunks
func (m *MockChunkStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}
