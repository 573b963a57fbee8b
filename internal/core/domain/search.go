package domain

import "time"

// SearchMode determines the search strategy
type SearchMode string

const (
	SearchModeHybrid   SearchMode = "hybrid"   // lexical + vector (default)
	SearchModeLexical  SearchMode = "lexical"  // term matching only
	SearchModeSemantic SearchMode = "semantic" // vector similarity only
)

// RequiresEmbedding reports whether the mode needs a query vector
func (m SearchMode) RequiresEmbedding() bool {
	return m == SearchModeHybrid || m == SearchModeSemantic
}

// IncludesLexical reports whether the mode runs the lexical sub-search
func (m SearchMode) IncludesLexical() bool {
	return m == SearchModeHybrid || m == SearchModeLexical
}

// SearchOptions configures a search request
type SearchOptions struct {
	Mode    SearchMode `json:"mode"`
	Limit   int        `json:"limit"`
	Alpha   *float64   `json:"alpha,omitempty"` // semantic weight in [0,1]; nil uses the default
	Filters Filters    `json:"filters,omitempty"`
}

// Filters narrows the lexical candidate set
type Filters struct {
	Source     string     `json:"source,omitempty"`
	Labels     []string   `json:"labels,omitempty"`
	DateAfter  *time.Time `json:"date_after,omitempty"`
	DateBefore *time.Time `json:"date_before,omitempty"`
}

// DefaultSearchOptions returns sensible defaults
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Mode:  SearchModeHybrid,
		Limit: 20,
	}
}

// SearchResult represents the result of a search query
type SearchResult struct {
	Query      string        `json:"query"`
	Mode       SearchMode    `json:"mode"`
	Hits       []*SearchHit  `json:"hits"`
	TotalCount int           `json:"total_count"`
	Took       time.Duration `json:"took"`
}

// SearchHit is one ranked, snippeted result. It is built per query and
// never persisted.
type SearchHit struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Seq        int     `json:"seq"`
	Snippet    string  `json:"snippet"`
	MatchStart int     `json:"match_start"` // byte offset into chunk content, -1 when no literal match
	MatchLen   int     `json:"match_len"`   // 0 when no literal match
	Score      float64 `json:"score"`       // blended score
	Lexical    float64 `json:"lexical_score"`
	Semantic   float64 `json:"semantic_score"`
}
