package mocks

import (
	"context"
	"sync"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
)

// MockEmbeddingCacheStore is an in-memory EmbeddingCacheStore for testing
type MockEmbeddingCacheStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.EmbeddingCacheEntry

	// InsertErr, when set, is returned from InsertIfAbsent
	InsertErr error
}

// NewMockEmbeddingCacheStore creates a new MockEmbeddingCacheStore
func NewMockEmbeddingCacheStore() *MockEmbeddingCacheStore {
	return &MockEmbeddingCacheStore{
		entries: make(map[string]*domain.EmbeddingCacheEntry),
	}
}

func cacheKey(textHash, provider, model string) string {
	return textHash + "|" + provider + "|" + model
}

func (m *MockEmbeddingCacheStore) Get(ctx context.Context, textHash, provider, model string) (*domain.EmbeddingCacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[cacheKey(textHash, provider, model)], nil
}

func (m *MockEmbeddingCacheStore) InsertIfAbsent(ctx context.Context, entry *domain.EmbeddingCacheEntry) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := cacheKey(entry.TextHash, entry.Provider, entry.Model)
	if _, ok := m.entries[key]; !ok {
		m.entries[key] = entry
	}
	return nil
}

// Len returns the number of cached entries
func (m *MockEmbeddingCacheStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// MockEmbeddingRecordStore is an in-memory EmbeddingRecordStore for testing
type MockEmbeddingRecordStore struct {
	mu      sync.RWMutex
	records map[string]*domain.EmbeddingRecord
}

// NewMockEmbeddingRecordStore creates a new MockEmbeddingRecordStore
func NewMockEmbeddingRecordStore() *MockEmbeddingRecordStore {
	return &MockEmbeddingRecordStore{
		records: make(map[string]*domain.EmbeddingRecord),
	}
}

func (m *MockEmbeddingRecordStore) Get(ctx context.Context, chunkID string) (*domain.EmbeddingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[chunkID], nil
}

func (m *MockEmbeddingRecordStore) InsertIfAbsent(ctx context.Context, record *domain.EmbeddingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.ChunkID]; !ok {
		m.records[record.ChunkID] = record
	}
	return nil
}

func (m *MockEmbeddingRecordStore) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, record := range m.records {
		if record.DocumentID == documentID {
			delete(m.records, id)
		}
	}
	return nil
}

// Len returns the number of stored records
func (m *MockEmbeddingRecordStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
