// Package textproc provides the deterministic text canonicalization and
// chunking used by the ingestion pipeline. Everything here is pure CPU work
// with no I/O; the same normalization feeds document hashing, chunk hashing
// and embedding-cache keys, so there is exactly one implementation of it.
package textproc

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Normalize canonicalizes text for hashing. Rules, applied in order:
// unify line endings to "\n", replace every non-newline whitespace rune with
// a space, collapse runs of spaces to one, lowercase, trim.
// Using any other normalization for a hash key is a correctness bug: it
// produces cache misses and spurious chunk duplicates.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	lastSpace := false
	for _, r := range text {
		switch {
		case r == '\n':
			b.WriteByte('\n')
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
		default:
			b.WriteRune(unicode.ToLower(r))
			lastSpace = false
		}
	}

	return strings.TrimSpace(b.String())
}

// HashText returns the hex sha256 of the normalized text.
// This is the content hash for documents and chunks and the key of the
// embedding cache.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}
