package diag

import "amend/internal/source"

// DedupReporter forwards a finding only the first time its code and primary
// span are seen. Two rules that flag the same bytes under one code, or a
// rule that reports a range twice, produce a single diagnostic.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

type dedupKey struct {
	code Code
	span source.Span
}

// NewDedupReporter wraps next.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, fixes []Fix) {
	key := dedupKey{code: code, span: primary}
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, fixes)
	}
}
