package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status"`
}

// Health endpoints

// handleHealth returns liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady checks the backing stores
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "task queue unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Ingestion endpoints

type ingestBody struct {
	ExternalID string   `json:"external_id"`
	Source     string   `json:"source"`
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	Labels     []string `json:"labels,omitempty"`
}

// handleIngest accepts one document for chunking and async embedding.
// The tenant comes from the bearer token, never from the body.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var body ingestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.ingestService.Ingest(r.Context(), driving.IngestRequest{
		TenantID:   GetTenantID(r.Context()),
		ExternalID: body.ExternalID,
		Source:     body.Source,
		Title:      body.Title,
		Text:       body.Text,
		Labels:     body.Labels,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("ingest failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ingest failed")
		return
	}

	status := http.StatusCreated
	if result.Unchanged {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

// Search endpoint

type searchBody struct {
	Query   string            `json:"query"`
	Mode    domain.SearchMode `json:"mode,omitempty"`
	Limit   int               `json:"limit,omitempty"`
	Alpha   *float64          `json:"alpha,omitempty"`
	Filters domain.Filters    `json:"filters,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body searchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := domain.DefaultSearchOptions()
	if body.Mode != "" {
		opts.Mode = body.Mode
	}
	if body.Limit > 0 {
		opts.Limit = body.Limit
	}
	opts.Alpha = body.Alpha
	opts.Filters = body.Filters

	result, err := s.searchService.Search(r.Context(), GetTenantID(r.Context()), body.Query, opts)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Document endpoints

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	tenantID := GetTenantID(r.Context())
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	docs, err := s.docService.ListByTenant(r.Context(), tenantID, limit, offset)
	if err != nil {
		s.logger.Error("list documents failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	total, err := s.docService.CountByTenant(r.Context(), tenantID)
	if err != nil {
		s.logger.Error("count documents failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"total":     total,
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.fetchTenantDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleGetDocumentChunks(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.fetchTenantDocument(w, r); !ok {
		return
	}

	result, err := s.docService.GetWithChunks(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("get chunks failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get chunks")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetDocumentContent(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.fetchTenantDocument(w, r); !ok {
		return
	}

	content, err := s.docService.GetContent(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("get content failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get content")
		return
	}

	writeJSON(w, http.StatusOK, content)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	err := s.ingestService.DeleteDocument(r.Context(), GetTenantID(r.Context()), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "document not found")
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusForbidden, "document belongs to another tenant")
		default:
			s.logger.Error("delete document failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to delete document")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Task endpoints

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.taskQueue.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("get task failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil || task.TenantID != GetTenantID(r.Context()) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// fetchTenantDocument loads the path document and enforces tenant ownership.
// On failure it writes the error response and returns ok=false.
func (s *Server) fetchTenantDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	doc, err := s.docService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
		} else {
			s.logger.Error("get document failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get document")
		}
		return nil, false
	}

	if doc.TenantID != GetTenantID(r.Context()) {
		// Do not leak existence across tenants
		writeError(w, http.StatusNotFound, "document not found")
		return nil, false
	}

	return doc, true
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
