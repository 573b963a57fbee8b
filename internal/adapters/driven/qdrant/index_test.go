package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meridian-labs/meridian-core/internal/core/ports/driven"
)

func TestIndex_UnavailableWithoutURL(t *testing.T) {
	index := NewIndex(Config{})
	if index.Available() {
		t.Error("expected index without a URL to be unavailable")
	}
	if err := index.ValidateConnection(context.Background()); err == nil {
		t.Error("expected validation failure without a URL")
	}
	if index.Available() {
		t.Error("failed validation must not mark the index available")
	}
}

func TestIndex_ValidateConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	index := NewIndex(Config{BaseURL: server.URL})
	if err := index.ValidateConnection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !index.Available() {
		t.Error("expected index available after validation")
	}
}

func TestIndex_ValidateConnection_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	index := NewIndex(Config{BaseURL: server.URL})
	if err := index.ValidateConnection(context.Background()); err == nil {
		t.Error("expected error for unhealthy backend")
	}
	if index.Available() {
		t.Error("unhealthy backend must leave the index unavailable")
	}
}

func TestIndex_EnsureIndex(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/collections/meridian_chunks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	index := NewIndex(Config{BaseURL: server.URL})
	if err := index.EnsureIndex(context.Background(), 1536); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vectors, _ := gotBody["vectors"].(map[string]any)
	if vectors["size"] != float64(1536) {
		t.Errorf("expected size 1536, got %v", vectors["size"])
	}
	if vectors["distance"] != "Cosine" {
		t.Errorf("expected cosine distance, got %v", vectors["distance"])
	}

	if err := index.EnsureIndex(context.Background(), 0); err == nil {
		t.Error("expected error for zero dimension")
	}
}

func TestIndex_Upsert(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/meridian_chunks/points" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("wait") != "true" {
			t.Error("expected wait=true")
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	index := NewIndex(Config{BaseURL: server.URL})
	err := index.Upsert(context.Background(), "chunk-uuid", []float32{0.1, 0.2}, driven.VectorPayload{
		DocumentID: "doc-1",
		TenantID:   "tenant-a",
		Seq:        3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	points, _ := gotBody["points"].([]any)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	point := points[0].(map[string]any)
	if point["id"] != "chunk-uuid" {
		t.Errorf("expected chunk id as point id, got %v", point["id"])
	}
	payload := point["payload"].(map[string]any)
	if payload["tenant_id"] != "tenant-a" || payload["document_id"] != "doc-1" {
		t.Errorf("unexpected payload: %v", payload)
	}
}

func TestIndex_KNN(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/meridian_chunks/points/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"result": [
				{"score": 0.92, "payload": {"chunk_id": "chunk-1"}},
				{"score": 0.73, "payload": {"chunk_id": "chunk-2"}},
				{"score": 0.10, "payload": {}}
			]
		}`))
	}))
	defer server.Close()

	index := NewIndex(Config{BaseURL: server.URL})
	hits, err := index.KNN(context.Background(), []float32{0.1, 0.2}, 5, "tenant-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The payload-less result has no chunk id and is dropped.
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ChunkID != "chunk-1" || hits[0].Similarity != 0.92 {
		t.Errorf("unexpected first hit: %+v", hits[0])
	}

	// The request must carry the tenant filter.
	filter, _ := gotBody["filter"].(map[string]any)
	must, _ := filter["must"].([]any)
	if len(must) != 1 {
		t.Fatalf("expected 1 must clause, got %d", len(must))
	}
	clause := must[0].(map[string]any)
	if clause["key"] != "tenant_id" {
		t.Errorf("expected tenant_id filter, got %v", clause["key"])
	}
	match := clause["match"].(map[string]any)
	if match["value"] != "tenant-a" {
		t.Errorf("expected tenant-a, got %v", match["value"])
	}
	if gotBody["limit"] != float64(5) {
		t.Errorf("expected limit 5, got %v", gotBody["limit"])
	}
}

func TestIndex_DeleteByDocument(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/meridian_chunks/points/delete" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	index := NewIndex(Config{BaseURL: server.URL})
	if err := index.DeleteByDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	filter, _ := gotBody["filter"].(map[string]any)
	must, _ := filter["must"].([]any)
	clause := must[0].(map[string]any)
	if clause["key"] != "document_id" {
		t.Errorf("expected document_id filter, got %v", clause["key"])
	}
}

func TestIndex_APIKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "secret" {
			t.Error("expected api-key header")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	index := NewIndex(Config{BaseURL: server.URL, APIKey: "secret"})
	if err := index.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIndex_ErrorStatusSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":{"error":"bad vector size"}}`))
	}))
	defer server.Close()

	index := NewIndex(Config{BaseURL: server.URL})
	_, err := index.KNN(context.Background(), []float32{0.1}, 5, "tenant-a")
	if err == nil {
		t.Error("expected error for 400 response")
	}
}
