package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driven"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driving"
	"github.com/meridian-labs/meridian-core/internal/runtime"
)

// Ensure searchService implements SearchService
var _ driving.SearchService = (*searchService)(nil)

// DefaultAlpha is the default semantic weight in the blended score
const DefaultAlpha = 0.5

// SearchServiceConfig holds tunables for the hybrid ranker
type SearchServiceConfig struct {
	// DefaultAlpha is the semantic weight used when a request carries none
	DefaultAlpha float64

	// CandidateFactor caps the lexical candidate set at Limit * factor
	CandidateFactor int
}

// DefaultSearchServiceConfig returns sensible defaults
func DefaultSearchServiceConfig() SearchServiceConfig {
	return SearchServiceConfig{
		DefaultAlpha:    DefaultAlpha,
		CandidateFactor: 2,
	}
}

// searchService implements hybrid retrieval: a lexical sub-search over the
// chunk store and a semantic sub-search over the vector index run
// concurrently, then their scores are blended and the merged hits snippeted.
type searchService struct {
	chunkStore driven.ChunkStore
	services   *runtime.Services
	config     SearchServiceConfig
	logger     *slog.Logger
}

// NewSearchService creates a new SearchService.
// AI clients (embedding, vector index) are accessed via runtime.Services so
// availability can change without rebuilding the service.
func NewSearchService(
	chunkStore driven.ChunkStore,
	services *runtime.Services,
	config SearchServiceConfig,
	logger *slog.Logger,
) driving.SearchService {
	if config.DefaultAlpha <= 0 || config.DefaultAlpha > 1 {
		config.DefaultAlpha = DefaultAlpha
	}
	if config.CandidateFactor <= 0 {
		config.CandidateFactor = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &searchService{
		chunkStore: chunkStore,
		services:   services,
		config:     config,
		logger:     logger,
	}
}

// scored accumulates the per-chunk sub-scores before blending
type scored struct {
	chunk    *domain.Chunk
	lexical  float64
	semantic float64
	order    int // original retrieval order, for stable ties
}

// Search performs a search for one tenant
func (s *searchService) Search(ctx context.Context, tenantID, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	start := time.Now()

	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}

	alpha := s.config.DefaultAlpha
	if opts.Alpha != nil && *opts.Alpha >= 0 && *opts.Alpha <= 1 {
		alpha = *opts.Alpha
	}

	// Determine effective search mode based on what's available NOW
	opts.Mode = s.effectiveMode(opts.Mode)

	// Fan out the two sub-searches; both honor the request's cancellation.
	var (
		wg          sync.WaitGroup
		lexChunks   []*domain.Chunk
		lexErr      error
		semHits     []driven.VectorHit
		semDegraded bool
	)

	if opts.Mode.IncludesLexical() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lexChunks, lexErr = s.lexicalCandidates(ctx, tenantID, query, opts)
		}()
	}

	if opts.Mode.RequiresEmbedding() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			semHits, semDegraded = s.semanticHits(ctx, tenantID, query, opts.Limit)
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if lexErr != nil {
		// The chunk store is structural: without it the application cannot
		// function, so this is the one sub-search failure that propagates.
		return nil, lexErr
	}
	if semDegraded && opts.Mode == domain.SearchModeSemantic {
		// Nothing left to rank with; fall back to lexical so the user still
		// gets results.
		opts.Mode = domain.SearchModeLexical
		lexChunks, lexErr = s.lexicalCandidates(ctx, tenantID, query, opts)
		if lexErr != nil {
			return nil, lexErr
		}
	}

	merged := s.merge(ctx, query, alpha, opts.Mode, lexChunks, semHits)

	// Stable sort so identical scores keep their retrieval order between runs.
	sort.SliceStable(merged, func(i, j int) bool {
		return blend(merged[i], alpha, opts.Mode) > blend(merged[j], alpha, opts.Mode)
	})

	total := len(merged)
	if len(merged) > opts.Limit {
		merged = merged[:opts.Limit]
	}

	hits := make([]*domain.SearchHit, 0, len(merged))
	for _, m := range merged {
		snippet, matchStart, matchLen := extractSnippet(m.chunk.Content, query)
		hits = append(hits, &domain.SearchHit{
			DocumentID: m.chunk.DocumentID,
			ChunkID:    m.chunk.ID,
			Seq:        m.chunk.Seq,
			Snippet:    snippet,
			MatchStart: matchStart,
			MatchLen:   matchLen,
			Score:      blend(m, alpha, opts.Mode),
			Lexical:    m.lexical,
			Semantic:   m.semantic,
		})
	}

	return &domain.SearchResult{
		Query:      query,
		Mode:       opts.Mode,
		Hits:       hits,
		TotalCount: total,
		Took:       time.Since(start),
	}, nil
}

// blend combines the sub-scores per the effective mode
func blend(m *scored, alpha float64, mode domain.SearchMode) float64 {
	switch mode {
	case domain.SearchModeLexical:
		return m.lexical
	case domain.SearchModeSemantic:
		return m.semantic * alpha
	default:
		return alpha*m.semantic + (1-alpha)*m.lexical
	}
}

// lexicalCandidates retrieves and scores the term-match candidate set
func (s *searchService) lexicalCandidates(ctx context.Context, tenantID, query string, opts domain.SearchOptions) ([]*domain.Chunk, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}
	limit := opts.Limit * s.config.CandidateFactor
	return s.chunkStore.SearchCandidates(ctx, tenantID, terms, opts.Filters, limit)
}

// semanticHits vectorizes the query and runs KNN. Any failure on this path
// degrades to an empty result set rather than failing the search: the
// vector index and embedding provider are optional collaborators.
func (s *searchService) semanticHits(ctx context.Context, tenantID, query string, topK int) ([]driven.VectorHit, bool) {
	embedder := s.services.EmbeddingService()
	index := s.services.VectorIndex()
	if embedder == nil || index == nil || !index.Available() {
		return nil, true
	}

	queryVector, err := embedder.EmbedQuery(ctx, query)
	if err != nil || len(queryVector) == 0 {
		if err != nil && ctx.Err() == nil {
			s.logger.Warn("query vectorization failed, semantic sub-search skipped", "error", err)
		}
		return nil, true
	}

	hits, err := index.KNN(ctx, queryVector, topK, tenantID)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("vector index query failed, semantic sub-search skipped", "error", err)
		}
		return nil, true
	}
	return hits, false
}

// merge joins the two result sets by chunk id. Semantic similarities are
// normalized by the maximum in the set; chunks present only in the semantic
// set are materialized from the store so they can be snippeted - hybrid mode
// never discards a purely semantic match.
func (s *searchService) merge(ctx context.Context, query string, alpha float64, mode domain.SearchMode, lexChunks []*domain.Chunk, semHits []driven.VectorHit) []*scored {
	byID := make(map[string]*scored)
	var ordered []*scored

	for _, chunk := range lexChunks {
		sc := &scored{
			chunk:   chunk,
			lexical: lexicalScore(chunk.Content, query),
			order:   len(ordered),
		}
		byID[chunk.ID] = sc
		ordered = append(ordered, sc)
	}

	if len(semHits) == 0 {
		return ordered
	}

	maxSim := 0.0
	for _, h := range semHits {
		if h.Similarity > maxSim {
			maxSim = h.Similarity
		}
	}
	if maxSim <= 0 {
		return ordered
	}

	var missing []string
	normalized := make(map[string]float64, len(semHits))
	for _, h := range semHits {
		normalized[h.ChunkID] = h.Similarity / maxSim
		if _, ok := byID[h.ChunkID]; !ok {
			missing = append(missing, h.ChunkID)
		}
	}

	if len(missing) > 0 {
		chunks, err := s.chunkStore.GetByIDs(ctx, missing)
		if err != nil {
			s.logger.Warn("failed to materialize semantic-only hits", "error", err)
		} else {
			for _, chunk := range chunks {
				sc := &scored{chunk: chunk, order: len(ordered)}
				byID[chunk.ID] = sc
				ordered = append(ordered, sc)
			}
		}
	}

	for id, sim := range normalized {
		if sc, ok := byID[id]; ok {
			sc.semantic = sim
		}
	}

	return ordered
}

// effectiveMode determines the best search mode given current capabilities
func (s *searchService) effectiveMode(requested domain.SearchMode) domain.SearchMode {
	if requested == "" {
		requested = s.services.Config().EffectiveSearchMode()
	}

	if requested.RequiresEmbedding() && !s.services.Config().CanDoSemanticSearch() {
		return domain.SearchModeLexical
	}

	return requested
}
