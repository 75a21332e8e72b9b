// Package inspect holds the line-level inspections amend runs and the quick
// fixes each of them offers.
package inspect

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"amend/internal/config"
	"amend/internal/diag"
	"amend/internal/fix"
	"amend/internal/host"
	"amend/internal/intention"
	"amend/internal/source"
)

var (
	// ErrNoEditor is returned by a quick fix factory without a caret.
	ErrNoEditor = errors.New("inspect: no editor")
	// ErrStaleFile is returned when the file a quick fix targets is no
	// longer loaded in the project.
	ErrStaleFile = errors.New("inspect: file is no longer loaded")
	// ErrNotApplicable is returned by Invoke when the file changed and the
	// fix no longer has anything to do.
	ErrNotApplicable = errors.New("inspect: fix no longer applies")
)

// Rule is one inspection. Check reports findings to rep; Offers lists the
// quick fixes the rule provides for a caret, whether or not they are
// available.
type Rule interface {
	ID() string
	Code() diag.Code
	Check(file *source.File, cfg config.Config, rep diag.Reporter)
	Offers(t Target) []Offer
}

// Target is the place quick fixes are requested for. Factories resolve it
// again on every call so they always see the newest file content.
type Target struct {
	Project *host.Project
	Editor  *host.Editor
	Path    string
}

// Offer is a quick fix factory and the priority its action is listed with.
type Offer struct {
	Factory     intention.Factory
	LowPriority bool
}

func (t Target) resolve() (*source.File, uint32, error) {
	if t.Editor == nil {
		return nil, 0, ErrNoEditor
	}
	f, ok := t.Project.Lookup(t.Path)
	if !ok {
		return nil, 0, fmt.Errorf("%s: %w", t.Path, ErrStaleFile)
	}
	return f, t.Editor.CaretLine(f), nil
}

// hit is one finding within a line. start/end is the reported range;
// editStart/editEnd is replaced by replacement. All offsets are bytes from
// the start of the line.
type hit struct {
	start, end         int
	editStart, editEnd int
	replacement        string
}

func lineOffset(base uint32, i int) uint32 {
	off, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("line offset overflow: %w", err))
	}
	return base + off
}

// lineRule is a rule whose findings and fixes are confined to single lines.
type lineRule struct {
	id            string
	code          diag.Code
	severity      diag.Severity
	message       string
	family        string
	applicability diag.FixApplicability
	suppressible  bool
	title         func(cfg config.Config) string
	scan          func(line string, cfg config.Config) []hit
}

func (r *lineRule) ID() string      { return r.id }
func (r *lineRule) Code() diag.Code { return r.code }

func (r *lineRule) hits(f *source.File, n uint32, cfg config.Config) []hit {
	line := f.GetLine(n)
	if suppressed(line, r.id) {
		return nil
	}
	return r.scan(line, cfg)
}

func (r *lineRule) edits(f *source.File, n uint32, cfg config.Config) []diag.TextEdit {
	hits := r.hits(f, n, cfg)
	if len(hits) == 0 {
		return nil
	}
	base := f.LineSpan(n).Start
	line := f.GetLine(n)
	out := make([]diag.TextEdit, 0, len(hits))
	for _, h := range hits {
		out = append(out, diag.TextEdit{
			Span: source.Span{
				File:  f.ID,
				Start: lineOffset(base, h.editStart),
				End:   lineOffset(base, h.editEnd),
			},
			NewText: h.replacement,
			OldText: line[h.editStart:h.editEnd],
		})
	}
	return out
}

func (r *lineRule) suppressEdits(f *source.File, n uint32, cfg config.Config) []diag.TextEdit {
	if len(r.hits(f, n, cfg)) == 0 {
		return nil
	}
	end := f.LineSpan(n).End
	return []diag.TextEdit{{
		Span:    source.Span{File: f.ID, Start: end, End: end},
		NewText: suppressComment(r.id),
	}}
}

// Check reports every hit. The line's fixes ride on its first hit, since
// they rewrite the whole line at once.
func (r *lineRule) Check(f *source.File, cfg config.Config, rep diag.Reporter) {
	for n := uint32(1); n <= f.LineCount(); n++ {
		hits := r.hits(f, n, cfg)
		base := f.LineSpan(n).Start
		for i, h := range hits {
			sp := source.Span{File: f.ID, Start: lineOffset(base, h.start), End: lineOffset(base, h.end)}
			b := diag.NewReportBuilder(rep, r.severity, r.code, sp, r.message)
			if i == 0 {
				b.WithFixSuggestion(r.lazyFix(f, n, cfg))
				if r.suppressible {
					b.WithFixSuggestion(r.lazySuppress(f, n, cfg))
				}
			}
			b.Emit()
		}
	}
}

func fixID(rule string, f *source.File, n uint32) string {
	return fmt.Sprintf("%s:%s:%d", rule, f.Path, n)
}

// lazyFix defers computing edits until the fix engine asks, against the
// file set it applies to.
func (r *lineRule) lazyFix(f *source.File, n uint32, cfg config.Config) diag.Fix {
	id := fixID(r.id, f, n)
	fileID := f.ID
	thunk := diag.FixThunkFunc{Key: id, Fn: func(ctx diag.FixBuildContext) (diag.Fix, error) {
		cur := ctx.FileSet.Get(fileID)
		if cur == nil {
			return diag.Fix{}, fmt.Errorf("%s: %w", id, ErrStaleFile)
		}
		return diag.Fix{Edits: r.edits(cur, n, cfg)}, nil
	}}
	return fix.Lazy(r.title(cfg), thunk,
		fix.WithID(id),
		fix.WithApplicability(r.applicability),
		fix.Preferred(),
	)
}

func (r *lineRule) lazySuppress(f *source.File, n uint32, cfg config.Config) diag.Fix {
	id := fixID(r.id, f, n) + "/suppress"
	fileID := f.ID
	thunk := diag.FixThunkFunc{Key: id, Fn: func(ctx diag.FixBuildContext) (diag.Fix, error) {
		cur := ctx.FileSet.Get(fileID)
		if cur == nil {
			return diag.Fix{}, fmt.Errorf("%s: %w", id, ErrStaleFile)
		}
		return diag.Fix{Edits: r.suppressEdits(cur, n, cfg)}, nil
	}}
	return fix.Lazy(suppressTitle(r.id), thunk,
		fix.WithID(id),
		fix.WithKind(diag.FixKindSourceAction),
		fix.WithApplicability(diag.FixApplicabilityManualReview),
	)
}

func (r *lineRule) Offers(t Target) []Offer {
	offers := []Offer{{Factory: r.fixFactory(t)}}
	if r.suppressible {
		offers = append(offers, Offer{Factory: r.suppressFactory(t), LowPriority: true})
	}
	return offers
}

func (r *lineRule) fixFactory(t Target) intention.Factory {
	return func() (intention.Action, error) {
		f, n, err := t.resolve()
		if err != nil {
			return nil, err
		}
		cfg := t.Project.Config
		return &lineAction{
			family: r.family,
			text:   r.title(cfg),
			path:   f.Path,
			line:   n,
			edits: func(cur *source.File, n uint32) []diag.TextEdit {
				return r.edits(cur, n, cfg)
			},
		}, nil
	}
}

func (r *lineRule) suppressFactory(t Target) intention.Factory {
	return func() (intention.Action, error) {
		f, n, err := t.resolve()
		if err != nil {
			return nil, err
		}
		cfg := t.Project.Config
		return &lineAction{
			family: suppressFamily,
			text:   suppressTitle(r.id),
			path:   f.Path,
			line:   n,
			edits: func(cur *source.File, n uint32) []diag.TextEdit {
				return r.suppressEdits(cur, n, cfg)
			},
		}, nil
	}
}
