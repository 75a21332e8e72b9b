package fix

import (
	"errors"
	"fmt"
	"sort"

	"amend/internal/diag"
	"amend/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	// ApplyModeOnce applies the first always-safe fix, or the first fix at
	// all when none is always-safe.
	ApplyModeOnce ApplyMode = iota
	// ApplyModeAll applies every always-safe fix.
	ApplyModeAll
	// ApplyModeID applies the fix with ApplyOptions.TargetID, whatever its
	// applicability.
	ApplyModeID
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	DryRun   bool
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID            string
	Title         string
	Code          diag.Code
	Message       string
	Applicability diag.FixApplicability
	PrimaryPath   string
	EditCount     int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

// candidate is a materialised fix together with the finding it belongs to.
// seq is the position in which collect met it.
type candidate struct {
	diag diag.Diagnostic
	fix  diag.Fix
	seq  int
}

func (c candidate) skip(reason string) SkippedFix {
	return SkippedFix{ID: c.fix.ID, Title: c.fix.Title, Reason: reason}
}

// Apply materialises the fixes attached to diagnostics, picks the ones opts
// asks for and commits them as one batch through a stage. A picked fix that
// conflicts with an earlier one, or whose guard no longer matches, is
// skipped; the rest still apply. Virtual files are never written.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	res := &ApplyResult{}
	if fs == nil {
		return res, fmt.Errorf("fix: FileSet is nil")
	}

	pool, skipped := collect(diag.FixBuildContext{FileSet: fs}, diagnostics)
	res.Skipped = append(res.Skipped, skipped...)
	picked, skipped := pick(pool, opts)
	res.Skipped = append(res.Skipped, skipped...)
	if len(picked) == 0 {
		return res, ErrNoFixes
	}

	st := newStage(fs)
	for _, c := range picked {
		n, reason := st.stage(c.fix.Edits, false)
		if reason != "" {
			res.Skipped = append(res.Skipped, c.skip(reason))
			continue
		}
		res.Applied = append(res.Applied, AppliedFix{
			ID:            c.fix.ID,
			Title:         c.fix.Title,
			Code:          c.diag.Code,
			Message:       c.diag.Message,
			Applicability: c.fix.Applicability,
			PrimaryPath:   displayPath(fs, c.diag.Primary.File),
			EditCount:     n,
		})
	}
	if len(res.Applied) == 0 {
		return res, ErrNoFixes
	}

	changes, err := st.commit(opts.DryRun)
	res.FileChanges = changes
	return res, err
}

// collect resolves every fix and returns them ordered by the position of
// their finding. A diagnostic whose fixes fail to build is skipped as a
// whole; fixes without edits or repeating an id are skipped one by one.
// Missing ids are derived from the finding.
func collect(ctx diag.FixBuildContext, diagnostics []diag.Diagnostic) ([]candidate, []SkippedFix) {
	var pool []candidate
	var skipped []SkippedFix
	seen := make(map[string]bool)

	for _, d := range diagnostics {
		if len(d.Fixes) == 0 {
			continue
		}
		fixes, err := diag.MaterializeFixes(ctx, d.Fixes)
		if err != nil {
			skipped = append(skipped, SkippedFix{Title: d.Message, Reason: fmt.Sprintf("failed to build fixes: %v", err)})
			continue
		}
		for i, f := range fixes {
			if f.ID == "" {
				f.ID = fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, i)
			}
			c := candidate{diag: d, fix: f, seq: len(pool)}
			switch {
			case len(f.Edits) == 0:
				skipped = append(skipped, c.skip("fix has no edits"))
			case seen[f.ID]:
				skipped = append(skipped, c.skip("duplicate fix id"))
			default:
				seen[f.ID] = true
				pool = append(pool, c)
			}
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i].diag.Primary, pool[j].diag.Primary
		switch {
		case a.File != b.File:
			return a.File < b.File
		case a.Start != b.Start:
			return a.Start < b.Start
		case a.End != b.End:
			return a.End < b.End
		}
		return pool[i].seq < pool[j].seq
	})
	return pool, skipped
}

// pick selects candidates according to opts.Mode.
func pick(pool []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	safe := func(c candidate) bool { return c.fix.Applicability == diag.FixApplicabilityAlwaysSafe }

	switch opts.Mode {
	case ApplyModeID:
		for _, c := range pool {
			if c.fix.ID == opts.TargetID {
				return []candidate{c}, nil
			}
		}
		return nil, []SkippedFix{{ID: opts.TargetID, Reason: "fix id not found"}}

	case ApplyModeAll:
		var picked []candidate
		var skipped []SkippedFix
		for _, c := range pool {
			if safe(c) {
				picked = append(picked, c)
				continue
			}
			skipped = append(skipped, c.skip("applicability is "+c.fix.Applicability.String()))
		}
		return picked, skipped

	case ApplyModeOnce:
		for _, c := range pool {
			if safe(c) {
				return []candidate{c}, nil
			}
		}
		if len(pool) > 0 {
			return pool[:1], nil
		}
	}
	return nil, nil
}

func displayPath(fs *source.FileSet, id source.FileID) string {
	file := fs.Get(id)
	if file == nil {
		return ""
	}
	return file.FormatPath("auto", fs.BaseDir())
}
