package host

import (
	"fmt"

	"amend/internal/source"
)

// Editor is a caret placed in one file.
type Editor struct {
	File  source.FileID
	Caret uint32
}

// NewEditorAt places a caret at a 1-based line/column of f.
func NewEditorAt(f *source.File, pos source.LineCol) (*Editor, error) {
	if f == nil {
		return nil, fmt.Errorf("editor: file is nil")
	}
	off, err := f.Offset(pos)
	if err != nil {
		return nil, err
	}
	return &Editor{File: f.ID, Caret: off}, nil
}

// CaretLine returns the 1-based line the caret is on.
func (ed *Editor) CaretLine(f *source.File) uint32 {
	if ed == nil || f == nil {
		return 0
	}
	lo, hi := uint32(1), f.LineCount()
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.LineSpan(mid).Start <= ed.Caret {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
