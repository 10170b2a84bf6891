package report

import "testing"

func TestParseDetailLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"summary", DetailSummary},
		{"standard", DetailStandard},
		{"full", DetailFull},
		{"", DetailStandard},
		{"invalid", DetailStandard},
		{"SUMMARY", DetailStandard}, // case-sensitive
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseDetailLevel(tt.input); got != tt.want {
				t.Errorf("ParseDetailLevel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetailLevelValues(t *testing.T) {
	vals := DetailLevelValues()
	if len(vals) != 3 {
		t.Fatalf("expected 3 values, got %d", len(vals))
	}
	for _, v := range vals {
		if ParseDetailLevel(v) != v {
			t.Errorf("value %q does not round-trip through ParseDetailLevel", v)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcdefgh", 2},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestTokenFooter(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{42, "\n📏 ~42 tokens"},
		{1000, "\n📏 ~1,000 tokens"},
		{1234567, "\n📏 ~1,234,567 tokens"},
	}
	for _, tt := range tests {
		if got := TokenFooter(tt.n); got != tt.want {
			t.Errorf("TokenFooter(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
