package fix

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"amend/internal/diag"
	"amend/internal/source"
)

// ErrEditRejected is returned by ApplyEdits when an edit cannot be applied.
var ErrEditRejected = errors.New("edit rejected")

// FileChange summarises modifications performed on a file.
type FileChange struct {
	ID        source.FileID
	Path      string // relative to the file set base dir
	EditCount int
	Content   []byte
	Virtual   bool
}

// EditOptions configures ApplyEdits.
type EditOptions struct {
	// DryRun computes new contents without touching the disk.
	DryRun bool
}

// ApplyEdits applies a group of edits atomically: either every edit is
// staged or none is, and files are written only after staging succeeded.
// Virtual files are updated in memory only.
func ApplyEdits(fs *source.FileSet, edits []diag.TextEdit, opts EditOptions) ([]FileChange, error) {
	if fs == nil {
		return nil, fmt.Errorf("fix: FileSet is nil")
	}
	if len(edits) == 0 {
		return nil, nil
	}
	st := newStage(fs)
	if _, reason := st.stage(edits, true); reason != "" {
		return nil, fmt.Errorf("%w: %s", ErrEditRejected, reason)
	}
	return st.commit(opts.DryRun)
}

// stage accumulates accepted edits per file on top of the original content.
type stage struct {
	fs            *source.FileSet
	buffers       map[source.FileID][]byte
	appliedEdits  map[source.FileID][]diag.TextEdit
	fileEditCount map[source.FileID]int
}

func newStage(fs *source.FileSet) *stage {
	return &stage{
		fs:            fs,
		buffers:       make(map[source.FileID][]byte),
		appliedEdits:  make(map[source.FileID][]diag.TextEdit),
		fileEditCount: make(map[source.FileID]int),
	}
}

// stage tries to apply one fix worth of edits. On failure nothing is kept
// and the reason is returned.
func (s *stage) stage(edits []diag.TextEdit, allowVirtual bool) (int, string) {
	buckets := groupEditsByFile(edits)
	stagedBuffers := make(map[source.FileID][]byte)
	stagedApplied := make(map[source.FileID][]diag.TextEdit)
	stagedCount := make(map[source.FileID]int)
	total := 0

	fileIDs := make([]source.FileID, 0, len(buckets))
	for id := range buckets {
		fileIDs = append(fileIDs, id)
	}
	sort.Slice(fileIDs, func(i, j int) bool { return fileIDs[i] < fileIDs[j] })

	for _, fileID := range fileIDs {
		fileEdits := buckets[fileID]
		file := s.fs.Get(fileID)
		if file == nil {
			return 0, fmt.Sprintf("unknown file id %d", fileID)
		}
		if !allowVirtual && file.Flags&source.FileVirtual != 0 {
			return 0, "target file is virtual"
		}
		if conflictsWithExisting(s.appliedEdits[fileID], fileEdits) || conflictsWithin(fileEdits) {
			return 0, fmt.Sprintf("conflicts with previously applied edits in %s", file.FormatPath("auto", s.fs.BaseDir()))
		}

		base := s.buffers[fileID]
		if base == nil {
			base = file.Content
		}
		working := append([]byte(nil), base...)

		// с конца к началу, чтобы не сдвигать ещё не применённые правки
		sort.SliceStable(fileEdits, func(i, j int) bool {
			if fileEdits[i].Span.Start == fileEdits[j].Span.Start {
				return fileEdits[i].Span.End > fileEdits[j].Span.End
			}
			return fileEdits[i].Span.Start > fileEdits[j].Span.Start
		})

		existing := append([]diag.TextEdit(nil), s.appliedEdits[fileID]...)
		for _, edit := range fileEdits {
			start := int(edit.Span.Start) + cumulativeDelta(existing, int(edit.Span.Start))
			end := int(edit.Span.End) + cumulativeDelta(existing, int(edit.Span.End))
			if start < 0 || end < start || end > len(working) {
				return 0, "edit span out of range"
			}
			if edit.OldText != "" && string(working[start:end]) != edit.OldText {
				return 0, "existing text does not match expected content"
			}
			suffix := append([]byte(nil), working[end:]...)
			working = append(append(working[:start], edit.NewText...), suffix...)
			existing = insertEditSorted(existing, edit)
		}
		stagedBuffers[fileID] = working
		stagedApplied[fileID] = existing
		stagedCount[fileID] = len(fileEdits)
		total += len(fileEdits)
	}

	for fileID, buf := range stagedBuffers {
		s.buffers[fileID] = buf
		s.appliedEdits[fileID] = stagedApplied[fileID]
		s.fileEditCount[fileID] += stagedCount[fileID]
	}
	return total, ""
}

// commit writes staged buffers to disk (unless dryRun) and returns changes
// sorted by path. The BOM and CRLF endings Load removed are put back on
// write; FileChange.Content stays normalized.
func (s *stage) commit(dryRun bool) ([]FileChange, error) {
	baseDir := s.fs.BaseDir()
	fileChanges := make([]FileChange, 0, len(s.buffers))

	ids := make([]source.FileID, 0, len(s.buffers))
	for id := range s.buffers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, fileID := range ids {
		buf := s.buffers[fileID]
		file := s.fs.Get(fileID)
		virtual := file.Flags&source.FileVirtual != 0

		if !dryRun && !virtual {
			mode := os.FileMode(0o644)
			if info, err := os.Stat(file.Path); err == nil {
				mode = info.Mode()
			}
			if err := os.WriteFile(file.Path, source.DiskBytes(buf, file.Flags), mode); err != nil {
				return fileChanges, fmt.Errorf("write %s: %w", file.Path, err)
			}
		}

		fileChanges = append(fileChanges, FileChange{
			ID:        fileID,
			Path:      file.FormatPath("relative", baseDir),
			EditCount: s.fileEditCount[fileID],
			Content:   buf,
			Virtual:   virtual,
		})
	}

	sort.SliceStable(fileChanges, func(i, j int) bool {
		return fileChanges[i].Path < fileChanges[j].Path
	})
	return fileChanges, nil
}

func conflictsWithExisting(existing []diag.TextEdit, edits []diag.TextEdit) bool {
	for _, prev := range existing {
		for _, cand := range edits {
			if spansConflict(prev, cand) {
				return true
			}
		}
	}
	return false
}

func conflictsWithin(edits []diag.TextEdit) bool {
	for i := range edits {
		for j := i + 1; j < len(edits); j++ {
			if spansConflict(edits[i], edits[j]) {
				return true
			}
		}
	}
	return false
}

// spansConflict reports whether two text edits' spans overlap.
// Spans are half-open intervals [Start, End). Two zero-length edits never
// conflict. A zero-length edit conflicts with a non-zero span if its position
// is within that span (Start <= pos < End).
func spansConflict(a, b diag.TextEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart <= aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart <= bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

func groupEditsByFile(edits []diag.TextEdit) map[source.FileID][]diag.TextEdit {
	buckets := make(map[source.FileID][]diag.TextEdit)
	for _, edit := range edits {
		buckets[edit.Span.File] = append(buckets[edit.Span.File], edit)
	}
	return buckets
}

func cumulativeDelta(edits []diag.TextEdit, pos int) int {
	delta := 0
	for _, e := range edits {
		eStart := int(e.Span.Start)
		if eStart > pos {
			break
		}
		eEnd := int(e.Span.End)
		change := len(e.NewText) - (eEnd - eStart)
		if eEnd <= pos {
			delta += change
		}
	}
	return delta
}

func insertEditSorted(edits []diag.TextEdit, edit diag.TextEdit) []diag.TextEdit {
	insertIdx := sort.Search(len(edits), func(i int) bool {
		if edits[i].Span.Start == edit.Span.Start {
			return edits[i].Span.End >= edit.Span.End
		}
		return edits[i].Span.Start > edit.Span.Start
	})
	edits = append(edits, diag.TextEdit{})
	copy(edits[insertIdx+1:], edits[insertIdx:])
	edits[insertIdx] = edit
	return edits
}
