package mocks

import (
	"context"
	"errors"
	"sync"
)

// MockEmbeddingService is a deterministic EmbeddingService for testing.
// Vectors are derived from text length so tests can predict them.
type MockEmbeddingService struct {
	mu         sync.Mutex
	dimensions int
	callCount  int

	// EmbedErr, when set, is returned from Embed and EmbedQuery
	EmbedErr error

	// QueryVector overrides the vector returned by EmbedQuery
	QueryVector []float32
}

// NewMockEmbeddingService creates a mock with the given dimension
func NewMockEmbeddingService(dimensions int) *MockEmbeddingService {
	if dimensions <= 0 {
		dimensions = 4
	}
	return &MockEmbeddingService{dimensions: dimensions}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.EmbedErr != nil {
		return nil, m.EmbedErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.vectorFor(text)
	}
	return vectors, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if m.EmbedErr != nil {
		return nil, m.EmbedErr
	}
	if m.QueryVector != nil {
		return m.QueryVector, nil
	}
	vectors, err := m.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return vectors[0], nil
}

func (m *MockEmbeddingService) Dimensions() int { return m.dimensions }

func (m *MockEmbeddingService) Provider() string { return "mock" }

func (m *MockEmbeddingService) Model() string { return "mock-embed-1" }

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error { return m.EmbedErr }

func (m *MockEmbeddingService) Close() error { return nil }

// CallCount returns how many times Embed ran
func (m *MockEmbeddingService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func (m *MockEmbeddingService) vectorFor(text string) []float32 {
	vector := make([]float32, m.dimensions)
	for i := range vector {
		vector[i] = float32(len(text)%7) + float32(i)
	}
	return vector
}
