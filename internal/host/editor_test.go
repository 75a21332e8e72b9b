package host

import (
	"errors"
	"testing"

	"amend/internal/source"
)

func TestEditorCaretLine(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("a.txt", []byte("one\ntwo\nthree")))

	tests := []struct {
		pos  source.LineCol
		line uint32
	}{
		{source.LineCol{Line: 1, Col: 1}, 1},
		{source.LineCol{Line: 2, Col: 3}, 2},
		{source.LineCol{Line: 3, Col: 6}, 3},
	}
	for _, tt := range tests {
		ed, err := NewEditorAt(f, tt.pos)
		if err != nil {
			t.Fatalf("NewEditorAt(%v): %v", tt.pos, err)
		}
		if got := ed.CaretLine(f); got != tt.line {
			t.Errorf("CaretLine at %v = %d, want %d", tt.pos, got, tt.line)
		}
	}

	if _, err := NewEditorAt(f, source.LineCol{Line: 9, Col: 1}); !errors.Is(err, source.ErrPositionOutOfRange) {
		t.Fatalf("expected ErrPositionOutOfRange, got %v", err)
	}
}
