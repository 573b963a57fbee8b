package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meridian-labs/meridian-core/internal/adapters/driven/auth"
	"github.com/meridian-labs/meridian-core/internal/core/domain"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driven/mocks"
	"github.com/meridian-labs/meridian-core/internal/core/services"
	"github.com/meridian-labs/meridian-core/internal/runtime"
	"github.com/meridian-labs/meridian-core/internal/textproc"
)

type testEnv struct {
	server    *Server
	auth      *auth.Adapter
	taskQueue *mocks.MockTaskQueue
}

// newTestEnv wires the API against in-memory stores
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	documentStore := mocks.NewMockDocumentStore()
	chunkStore := mocks.NewMockChunkStore()
	recordStore := mocks.NewMockEmbeddingRecordStore()
	taskQueue := mocks.NewMockTaskQueue()
	rt := runtime.NewServices(domain.NewRuntimeConfig("postgres"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ingestService := services.NewIngestService(services.IngestServiceConfig{
		DocumentStore: documentStore,
		ChunkStore:    chunkStore,
		RecordStore:   recordStore,
		TaskQueue:     taskQueue,
		Services:      rt,
		Chunker:       textproc.NewChunker(textproc.DefaultChunkerConfig()),
		Logger:        logger,
	})
	searchService := services.NewSearchService(chunkStore, rt, services.DefaultSearchServiceConfig(), logger)
	docService := services.NewDocumentService(documentStore, chunkStore)

	verifier := auth.NewAdapter("test-secret")
	server := NewServer(DefaultConfig(), ingestService, searchService, docService, verifier, taskQueue, nil, logger)

	return &testEnv{server: server, auth: verifier, taskQueue: taskQueue}
}

func (e *testEnv) token(t *testing.T, tenantID string) string {
	t.Helper()
	token, err := e.auth.GenerateToken(tenantID, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// do executes a request against the router and returns the recorder
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("ready: expected 200, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/version", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("version: expected 200, got %d", rec.Code)
	}
}

func TestIngestEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "tenant-a")

	body := map[string]interface{}{
		"external_id": "wiki-1",
		"source":      "wiki",
		"title":       "Runbook",
		"text":        "restart the service. check the logs.",
	}

	rec := env.do(t, http.MethodPost, "/api/v1/ingest", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Document   *domain.Document `json:"document"`
		ChunkCount int              `json:"chunk_count"`
		Unchanged  bool             `json:"unchanged"`
	}
	decodeBody(t, rec, &result)
	if result.Document.TenantID != "tenant-a" {
		t.Errorf("tenant must come from the token, got %q", result.Document.TenantID)
	}
	if result.ChunkCount == 0 {
		t.Error("expected chunks")
	}

	// Re-ingesting unchanged content returns 200, not 201.
	rec = env.do(t, http.MethodPost, "/api/v1/ingest", token, body)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for unchanged content, got %d", rec.Code)
	}
	decodeBody(t, rec, &result)
	if !result.Unchanged {
		t.Error("expected unchanged flag")
	}
}

func TestIngestEndpoint_Validation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "tenant-a")

	rec := env.do(t, http.MethodPost, "/api/v1/ingest", token, map[string]interface{}{
		"text": "missing external id",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing external_id, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", bytes.NewReader([]byte("{broken")))
	req.Header.Set("Authorization", "Bearer "+token)
	rec2 := httptest.NewRecorder()
	env.server.router.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec2.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "tenant-a")

	rec := env.do(t, http.MethodPost, "/api/v1/ingest", token, map[string]interface{}{
		"external_id": "wiki-1",
		"text":        "redis streams power the task queue.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("ingest failed: %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/search", token, map[string]interface{}{
		"query": "redis",
		"mode":  "lexical",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result domain.SearchResult
	decodeBody(t, rec, &result)
	if len(result.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(result.Hits))
	}
	if result.Hits[0].Snippet == "" {
		t.Error("expected a snippet")
	}
	if result.Mode != domain.SearchModeLexical {
		t.Errorf("expected lexical mode, got %s", result.Mode)
	}
}

func TestSearchEndpoint_TenantScoped(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/ingest", env.token(t, "tenant-a"), map[string]interface{}{
		"external_id": "doc", "text": "private tenant-a material.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("ingest failed: %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/search", env.token(t, "tenant-b"), map[string]interface{}{
		"query": "material",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result domain.SearchResult
	decodeBody(t, rec, &result)
	if len(result.Hits) != 0 {
		t.Errorf("tenant-b must not see tenant-a's chunks, got %d hits", len(result.Hits))
	}
}

func TestDocumentEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "tenant-a")

	rec := env.do(t, http.MethodPost, "/api/v1/ingest", token, map[string]interface{}{
		"external_id": "wiki-1",
		"title":       "Runbook",
		"text":        "first part.\n\nsecond part.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("ingest failed: %d", rec.Code)
	}
	var ingestResult struct {
		Document *domain.Document `json:"document"`
	}
	decodeBody(t, rec, &ingestResult)
	docID := ingestResult.Document.ID

	// List
	rec = env.do(t, http.MethodGet, "/api/v1/documents", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list struct {
		Documents []*domain.Document `json:"documents"`
		Total     int                `json:"total"`
	}
	decodeBody(t, rec, &list)
	if list.Total != 1 || len(list.Documents) != 1 {
		t.Errorf("expected 1 document, got total=%d len=%d", list.Total, len(list.Documents))
	}

	// Get
	rec = env.do(t, http.MethodGet, "/api/v1/documents/"+docID, token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get: expected 200, got %d", rec.Code)
	}

	// Content reconstruction
	rec = env.do(t, http.MethodGet, "/api/v1/documents/"+docID+"/content", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("content: expected 200, got %d", rec.Code)
	}
	var content domain.DocumentContent
	decodeBody(t, rec, &content)
	if content.Body == "" || content.Title != "Runbook" {
		t.Errorf("unexpected content: %+v", content)
	}

	// Chunks
	rec = env.do(t, http.MethodGet, "/api/v1/documents/"+docID+"/chunks", token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("chunks: expected 200, got %d", rec.Code)
	}

	// Delete
	rec = env.do(t, http.MethodDelete, "/api/v1/documents/"+docID, token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/v1/documents/"+docID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestDocumentEndpoints_CrossTenant404(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/ingest", env.token(t, "tenant-a"), map[string]interface{}{
		"external_id": "doc", "text": "tenant-a only.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("ingest failed: %d", rec.Code)
	}
	var ingestResult struct {
		Document *domain.Document `json:"document"`
	}
	decodeBody(t, rec, &ingestResult)
	docID := ingestResult.Document.ID

	otherToken := env.token(t, "tenant-b")

	// Another tenant sees 404, not 403, for every document route.
	for _, path := range []string{
		"/api/v1/documents/" + docID,
		"/api/v1/documents/" + docID + "/chunks",
		"/api/v1/documents/" + docID + "/content",
	} {
		rec = env.do(t, http.MethodGet, path, otherToken, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404 for another tenant, got %d", path, rec.Code)
		}
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/documents/"+docID, otherToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete: expected 404 for another tenant, got %d", rec.Code)
	}
}

func TestGetTaskEndpoint(t *testing.T) {
	env := newTestEnv(t)

	task := domain.NewEmbedChunkTask("tenant-a", "doc-1", "chunk-1")
	_ = env.taskQueue.Enqueue(context.Background(), task)

	rec := env.do(t, http.MethodGet, "/api/v1/tasks/"+task.ID, env.token(t, "tenant-a"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got domain.Task
	decodeBody(t, rec, &got)
	if got.ID != task.ID {
		t.Errorf("expected task %s, got %s", task.ID, got.ID)
	}

	// Another tenant cannot see the task.
	rec = env.do(t, http.MethodGet, "/api/v1/tasks/"+task.ID, env.token(t, "tenant-b"), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another tenant, got %d", rec.Code)
	}

	// Unknown task.
	rec = env.do(t, http.MethodGet, "/api/v1/tasks/nope", env.token(t, "tenant-a"), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown task, got %d", rec.Code)
	}
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/ingest"},
		{http.MethodPost, "/api/v1/search"},
		{http.MethodGet, "/api/v1/documents"},
		{http.MethodGet, "/api/v1/documents/some-id"},
		{http.MethodDelete, "/api/v1/documents/some-id"},
		{http.MethodGet, "/api/v1/tasks/some-id"},
	}

	for _, p := range paths {
		rec := env.do(t, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without a token, got %d", p.method, p.path, rec.Code)
		}
	}
}
