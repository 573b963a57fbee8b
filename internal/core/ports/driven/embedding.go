package driven

import (
	"context"
)

// EmbeddingService generates text embeddings via an external provider
type EmbeddingService interface {
	// Embed generates embeddings for multiple texts. A nil vector at a
	// position is a valid, non-exceptional "could not embed" response.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a search query
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimensions returns the embedding dimension size
	Dimensions() int

	// Provider returns the provider identifier (e.g. "openai")
	Provider() string

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the embedding service
	Close() error
}
