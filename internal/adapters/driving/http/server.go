package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/meridian-labs/meridian-core/internal/core/ports/driven"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	ingestService driving.IngestService
	searchService driving.SearchService
	docService    driving.DocumentService

	// Infrastructure
	verifier  driven.TokenVerifier
	taskQueue driven.TaskQueue
	db        Pinger // PostgreSQL health check
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	ingestService driving.IngestService,
	searchService driving.SearchService,
	docService driving.DocumentService,
	verifier driven.TokenVerifier,
	taskQueue driven.TaskQueue,
	db Pinger,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:        http.NewServeMux(),
		version:       cfg.Version,
		logger:        logger,
		ingestService: ingestService,
		searchService: searchService,
		docService:    docService,
		verifier:      verifier,
		taskQueue:     taskQueue,
		db:            db,
	}

	logging := NewLoggingMiddleware(logger)
	recovery := NewRecoveryMiddleware(logger)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      recovery.Handler(logging.Handler(s.router)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	auth := NewAuthMiddleware(s.verifier)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Ingestion endpoints
	s.router.Handle("POST /api/v1/ingest",
		auth.Authenticate(http.HandlerFunc(s.handleIngest)))

	// Search endpoint
	s.router.Handle("POST /api/v1/search",
		auth.Authenticate(http.HandlerFunc(s.handleSearch)))

	// Document endpoints
	s.router.Handle("GET /api/v1/documents",
		auth.Authenticate(http.HandlerFunc(s.handleListDocuments)))
	s.router.Handle("GET /api/v1/documents/{id}",
		auth.Authenticate(http.HandlerFunc(s.handleGetDocument)))
	s.router.Handle("GET /api/v1/documents/{id}/chunks",
		auth.Authenticate(http.HandlerFunc(s.handleGetDocumentChunks)))
	s.router.Handle("GET /api/v1/documents/{id}/content",
		auth.Authenticate(http.HandlerFunc(s.handleGetDocumentContent)))
	s.router.Handle("DELETE /api/v1/documents/{id}",
		auth.Authenticate(http.HandlerFunc(s.handleDeleteDocument)))

	// Task status endpoint
	s.router.Handle("GET /api/v1/tasks/{id}",
		auth.Authenticate(http.HandlerFunc(s.handleGetTask)))
}

// Start starts the HTTP server; it blocks until the listener fails
func (s *Server) Start() error {
	s.logger.Info("starting http server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
