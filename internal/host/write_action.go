package host

import (
	"errors"
	"fmt"
	"strconv"

	"amend/internal/diag"
	"amend/internal/fix"
	"amend/internal/source"
	"amend/internal/trace"
)

var (
	// ErrWriteActionActive is returned when a write action starts while
	// another one is running.
	ErrWriteActionActive = errors.New("write action already in progress")
	// ErrNoWriteAction is returned when a mutation is attempted outside a
	// write action.
	ErrNoWriteAction = errors.New("mutation outside of a write action")
)

// Commit records the outcome of one write action.
type Commit struct {
	Name    string
	Changes []fix.FileChange
}

// WriteAction collects edits; they are applied only when the action returns
// without error.
type WriteAction struct {
	edits []diag.TextEdit
}

// Replace schedules replacing sp with text. guard, when non-empty, must
// match the current content of sp at commit time.
func (wa *WriteAction) Replace(sp source.Span, text, guard string) {
	wa.edits = append(wa.edits, diag.TextEdit{Span: sp, NewText: text, OldText: guard})
}

// Insert schedules inserting text at off.
func (wa *WriteAction) Insert(file source.FileID, off uint32, text string) {
	wa.Replace(source.Span{File: file, Start: off, End: off}, text, "")
}

// Delete schedules deleting sp.
func (wa *WriteAction) Delete(sp source.Span, guard string) {
	wa.Replace(sp, "", guard)
}

// WriteAction returns the running write action, or nil.
func (p *Project) WriteAction() *WriteAction {
	return p.writing.Load()
}

// RunWriteAction runs fn inside a write action and commits its edits through
// the fix engine. An error from fn discards every scheduled edit. Changed
// files are re-added to the file set so later reads see the new content; on
// disk they keep the BOM and CRLF line endings they were loaded with.
func (p *Project) RunWriteAction(name string, fn func(*WriteAction) error) error {
	wa := &WriteAction{}
	if !p.writing.CompareAndSwap(nil, wa) {
		return fmt.Errorf("%s: %w", name, ErrWriteActionActive)
	}
	defer p.writing.Store(nil)

	span := trace.Begin(p.Tracer, trace.ScopePass, "write-action:"+name, 0)
	if err := fn(wa); err != nil {
		span.End("rolled back")
		trace.Fail(p.Tracer, "write-action:"+name, err)
		return err
	}
	if len(wa.edits) == 0 {
		span.End("no edits")
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	changes, err := fix.ApplyEdits(p.Files, wa.edits, fix.EditOptions{DryRun: p.DryRun})
	if err != nil {
		span.End("rejected")
		trace.Fail(p.Tracer, "write-action:"+name, err)
		return fmt.Errorf("%s: %w", name, err)
	}
	for _, ch := range changes {
		old := p.Files.Get(ch.ID)
		p.Files.Add(old.Path, ch.Content, old.Flags)
	}
	p.commits = append(p.commits, Commit{Name: name, Changes: changes})
	span.WithExtra("files", strconv.Itoa(len(changes))).End("committed")
	return nil
}
