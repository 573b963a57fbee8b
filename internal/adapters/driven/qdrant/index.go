package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meridian-labs/meridian-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*Index)(nil)

// Index is a REST client to Qdrant implementing VectorIndex.
// An Index constructed with an empty BaseURL is permanently unavailable;
// callers see Available() == false and fall back to lexical-only search.
type Index struct {
	baseURL    string
	apiKey     string
	collection string
	available  bool
	client     *http.Client
}

// Config holds Qdrant connection configuration
type Config struct {
	// BaseURL is the Qdrant HTTP endpoint. Empty disables the index.
	BaseURL string

	// APIKey is optional
	APIKey string

	// Collection is the collection name (default "meridian_chunks")
	Collection string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// NewIndex creates a Qdrant-backed vector index.
// The index starts unavailable; ValidateConnection flips it on success.
func NewIndex(cfg Config) *Index {
	collection := cfg.Collection
	if collection == "" {
		collection = "meridian_chunks"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Index{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// ValidateConnection checks reachability and marks the index available.
// Call once at startup; an unreachable backend leaves the index disabled.
func (x *Index) ValidateConnection(ctx context.Context) error {
	if x.baseURL == "" {
		return fmt.Errorf("qdrant URL not configured")
	}
	if err := x.HealthCheck(ctx); err != nil {
		return err
	}
	x.available = true
	return nil
}

// Available reports whether the backend was configured and reachable at startup
func (x *Index) Available() bool {
	return x.available
}

// EnsureIndex creates the collection for the given dimension if missing.
// Qdrant returns 200 for an existing collection with the same schema.
func (x *Index) EnsureIndex(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}

	return x.doJSON(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", x.collection), body, nil)
}

// Upsert writes one vector with its payload. The chunk ID doubles as the
// point ID, which is why chunk IDs are UUIDs.
func (x *Index) Upsert(ctx context.Context, chunkID string, vector []float32, payload driven.VectorPayload) error {
	body := map[string]any{
		"points": []map[string]any{
			{
				"id":     chunkID,
				"vector": vector,
				"payload": map[string]any{
					"chunk_id":    chunkID,
					"document_id": payload.DocumentID,
					"tenant_id":   payload.TenantID,
					"seq":         payload.Seq,
				},
			},
		},
	}

	return x.doJSON(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", x.collection), body, nil)
}

// KNN returns the topK nearest neighbors for the tenant
func (x *Index) KNN(ctx context.Context, vector []float32, topK int, tenantID string) ([]driven.VectorHit, error) {
	if topK <= 0 {
		topK = 10
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key":   "tenant_id",
					"match": map[string]any{"value": tenantID},
				},
			},
		},
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	path := fmt.Sprintf("/collections/%s/points/search", x.collection)
	if err := x.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunkID, ok := r.Payload["chunk_id"].(string)
		if !ok {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    chunkID,
			Similarity: r.Score,
		})
	}

	return hits, nil
}

// DeleteByDocument removes all vectors belonging to a document
func (x *Index) DeleteByDocument(ctx context.Context, documentID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key":   "document_id",
					"match": map[string]any{"value": documentID},
				},
			},
		},
	}

	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", x.collection)
	return x.doJSON(ctx, http.MethodPost, path, body, nil)
}

// HealthCheck verifies the backend is reachable
func (x *Index) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.baseURL+"/collections", nil)
	if err != nil {
		return err
	}
	x.setHeaders(req)

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant health check failed: %s", resp.Status)
	}
	return nil
}

func (x *Index) doJSON(ctx context.Context, method, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	x.setHeaders(req)

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant %s %s returned %s: %s", method, path, resp.Status, string(respBody))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (x *Index) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}
}
