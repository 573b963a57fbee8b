package domain

import "testing"

func TestSearchMode_RequiresEmbedding(t *testing.T) {
	testCases := []struct {
		mode SearchMode
		want bool
	}{
		{SearchModeHybrid, true},
		{SearchModeSemantic, true},
		{SearchModeLexical, false},
	}

	for _, tc := range testCases {
		if got := tc.mode.RequiresEmbedding(); got != tc.want {
			t.Errorf("%s: expected RequiresEmbedding %v, got %v", tc.mode, tc.want, got)
		}
	}
}

func TestSearchMode_IncludesLexical(t *testing.T) {
	testCases := []struct {
		mode SearchMode
		want bool
	}{
		{SearchModeHybrid, true},
		{SearchModeLexical, true},
		{SearchModeSemantic, false},
	}

	for _, tc := range testCases {
		if got := tc.mode.IncludesLexical(); got != tc.want {
			t.Errorf("%s: expected IncludesLexical %v, got %v", tc.mode, tc.want, got)
		}
	}
}

func TestDefaultSearchOptions(t *testing.T) {
	opts := DefaultSearchOptions()
	if opts.Mode != SearchModeHybrid {
		t.Errorf("expected hybrid default, got %s", opts.Mode)
	}
	if opts.Limit != 20 {
		t.Errorf("expected limit 20, got %d", opts.Limit)
	}
	if opts.Alpha != nil {
		t.Error("expected nil alpha by default")
	}
}
