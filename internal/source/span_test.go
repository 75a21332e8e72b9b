package source

import "testing"

func TestSpan(t *testing.T) {
	sp := Span{File: 2, Start: 4, End: 4}
	if !sp.Empty() {
		t.Error("zero-length span must be empty")
	}
	sp.End = 9
	if sp.Empty() {
		t.Error("span with bytes reported empty")
	}
	if got := sp.String(); got != "2:4-9" {
		t.Errorf("String() = %q", got)
	}
}

func TestDisplayCol(t *testing.T) {
	tests := []struct {
		line    string
		byteCol uint32
		want    int
	}{
		{"abc", 1, 1},
		{"abc", 3, 3},
		{"\tx", 2, 5},
		{"日本x", 7, 5},
	}
	for _, tt := range tests {
		if got := DisplayCol(tt.line, tt.byteCol, 4); got != tt.want {
			t.Errorf("DisplayCol(%q, %d) = %d, want %d", tt.line, tt.byteCol, got, tt.want)
		}
	}
}
