package textproc

import "strings"

// DefaultTokenBudget is the default per-chunk token estimate target.
// It is a heuristic default, tunable via ChunkerConfig.
const DefaultTokenBudget = 1200

// Segment is one chunk of input text produced by the Chunker.
// Seq is dense and 0-based after dedup; ContentHash is the sha256 of the
// normalized trimmed text.
type Segment struct {
	Seq         int
	Text        string
	TokenCount  int
	ContentHash string
}

// ChunkerConfig configures the chunker behavior.
type ChunkerConfig struct {
	// TokenBudget is the estimated token target per chunk
	TokenBudget int
}

// DefaultChunkerConfig returns sensible defaults.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{TokenBudget: DefaultTokenBudget}
}

// Chunker splits normalized text into token-bounded, content-addressed
// segments. It never splits a sentence-like unit: a single unit over budget
// becomes its own chunk, which guarantees progress and non-empty content.
type Chunker struct {
	config ChunkerConfig
}

// NewChunker creates a new chunker with the given config.
func NewChunker(config ChunkerConfig) *Chunker {
	if config.TokenBudget <= 0 {
		config.TokenBudget = DefaultTokenBudget
	}
	return &Chunker{config: config}
}

// EstimateTokens estimates the token count of text: len/4, minimum 1.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// Chunk splits normalized text into segments. Calling it twice with the same
// input yields identical segments (same hashes, same count, same order).
// Empty or whitespace-only input yields nil.
func (c *Chunker) Chunk(text string) []Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	units := sentenceUnits(text)
	if len(units) == 0 {
		return nil
	}

	var packed []string
	var cur []string
	curTokens := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		packed = append(packed, strings.Join(cur, "\n"))
		cur = nil
		curTokens = 0
	}

	for _, unit := range units {
		est := EstimateTokens(unit)
		if curTokens+est > c.config.TokenBudget {
			if len(cur) > 0 {
				// Close the chunk without the just-considered unit.
				flush()
			}
			cur = append(cur, unit)
			curTokens = est
			if curTokens > c.config.TokenBudget {
				// Oversized single unit: force-close to guarantee progress.
				flush()
			}
			continue
		}
		cur = append(cur, unit)
		curTokens += est
	}
	flush()

	// Dedup by content hash, then renumber densely.
	seen := make(map[string]bool, len(packed))
	segments := make([]Segment, 0, len(packed))
	for _, text := range packed {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		hash := HashText(trimmed)
		if seen[hash] {
			continue
		}
		seen[hash] = true
		segments = append(segments, Segment{
			Seq:         len(segments),
			Text:        trimmed,
			TokenCount:  EstimateTokens(trimmed),
			ContentHash: hash,
		})
	}

	if len(segments) == 0 {
		return nil
	}
	return segments
}

// sentenceUnits splits text into sentence-like units. Lines are split on
// sentence terminators; pieces accumulate across consecutive non-blank lines
// until a blank line flushes the accumulator or the accumulated text ends
// with `.`, `!` or `?`.
func sentenceUnits(text string) []string {
	var units []string
	var acc []string

	flush := func() {
		if len(acc) == 0 {
			return
		}
		unit := strings.TrimSpace(strings.Join(acc, " "))
		if unit != "" {
			units = append(units, unit)
		}
		acc = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		for _, piece := range splitSentences(line) {
			acc = append(acc, piece)
			if endsSentence(piece) {
				flush()
			}
		}
	}
	flush()

	return units
}

// splitSentences cuts a line after each terminator that is followed by a
// space (or ends the line). Terminators stay attached to their sentence.
func splitSentences(line string) []string {
	var pieces []string
	start := 0
	for i := 0; i < len(line); i++ {
		if !isTerminator(line[i]) {
			continue
		}
		if i+1 < len(line) && line[i+1] != ' ' {
			continue
		}
		piece := strings.TrimSpace(line[start : i+1])
		if piece != "" {
			pieces = append(pieces, piece)
		}
		start = i + 1
	}
	if rest := strings.TrimSpace(line[start:]); rest != "" {
		pieces = append(pieces, rest)
	}
	return pieces
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func endsSentence(s string) bool {
	return s != "" && isTerminator(s[len(s)-1])
}
