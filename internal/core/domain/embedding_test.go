package domain

import "testing"

func TestEmbeddingCacheEntry_Valid(t *testing.T) {
	entry := &EmbeddingCacheEntry{
		Dimension: 3,
		Vector:    []float32{0.1, 0.2, 0.3},
	}

	if !entry.Valid(3) {
		t.Error("expected entry valid for matching dimension")
	}
	if entry.Valid(4) {
		t.Error("expected entry invalid for mismatched dimension")
	}
	if entry.Valid(0) {
		t.Error("expected entry invalid for zero dimension")
	}

	var nilEntry *EmbeddingCacheEntry
	if nilEntry.Valid(3) {
		t.Error("expected nil entry invalid")
	}
}
