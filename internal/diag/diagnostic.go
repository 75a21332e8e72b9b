package diag

import (
	"errors"
	"fmt"

	"amend/internal/source"
)

// ErrNilThunk is returned when a lazy fix has no edits and no thunk to build them.
var ErrNilThunk = errors.New("fix has neither edits nor thunk")

// TextEdit replaces Span with NewText. A non-empty OldText guards the edit:
// the engine refuses to apply it when the current text differs.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// FixKind is a coarse classification used by listings.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactor
	FixKindRefactorRewrite
	FixKindSourceAction
)

func (k FixKind) String() string {
	switch k {
	case FixKindQuickFix:
		return "quickfix"
	case FixKindRefactor:
		return "refactor"
	case FixKindRefactorRewrite:
		return "refactor.rewrite"
	case FixKindSourceAction:
		return "source"
	}
	return "unknown"
}

// FixApplicability expresses how confident the producer is in the edits.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

// FixBuildContext is handed to thunks when a lazy fix is materialised.
type FixBuildContext struct {
	FileSet *source.FileSet
}

// FixThunk builds the edits of a fix on demand.
type FixThunk interface {
	ID() string
	Build(ctx FixBuildContext) (Fix, error)
}

// FixThunkFunc adapts a function to FixThunk.
type FixThunkFunc struct {
	Key string
	Fn  func(ctx FixBuildContext) (Fix, error)
}

func (f FixThunkFunc) ID() string { return f.Key }

func (f FixThunkFunc) Build(ctx FixBuildContext) (Fix, error) {
	if f.Fn == nil {
		return Fix{}, ErrNilThunk
	}
	return f.Fn(ctx)
}

type Fix struct {
	ID            string
	Title         string
	Kind          FixKind
	Applicability FixApplicability
	IsPreferred   bool
	Edits         []TextEdit
	Thunk         FixThunk
}

// Resolve returns a materialised copy of the fix. Metadata set on the lazy
// fix wins over metadata produced by the thunk; of the two applicabilities
// the more cautious one is kept.
func (f Fix) Resolve(ctx FixBuildContext) (Fix, error) {
	if f.Thunk == nil {
		if len(f.Edits) == 0 {
			return f, nil
		}
		out := f
		out.Edits = append([]TextEdit(nil), f.Edits...)
		return out, nil
	}
	built, err := f.Thunk.Build(ctx)
	if err != nil {
		return Fix{}, fmt.Errorf("build fix %q: %w", f.Thunk.ID(), err)
	}
	if f.ID != "" {
		built.ID = f.ID
	} else if built.ID == "" {
		built.ID = f.Thunk.ID()
	}
	if f.Title != "" {
		built.Title = f.Title
	}
	if f.Applicability > built.Applicability {
		built.Applicability = f.Applicability
	}
	if f.Kind != FixKindQuickFix {
		built.Kind = f.Kind
	}
	if f.IsPreferred {
		built.IsPreferred = true
	}
	built.Thunk = nil
	return built, nil
}

// MaterializeFixes resolves every fix in order and stops at the first failure.
func MaterializeFixes(ctx FixBuildContext, fixes []Fix) ([]Fix, error) {
	out := make([]Fix, 0, len(fixes))
	for _, f := range fixes {
		resolved, err := f.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Fixes    []Fix
}
