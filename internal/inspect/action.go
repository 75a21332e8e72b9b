package inspect

import (
	"amend/internal/diag"
	"amend/internal/host"
	"amend/internal/intention"
	"amend/internal/source"
)

// lineAction is the concrete quick fix a factory builds: a set of edits
// computed from the newest content of one line.
type lineAction struct {
	family string
	text   string
	path   string
	line   uint32
	edits  func(f *source.File, line uint32) []diag.TextEdit
}

var _ intention.Action = (*lineAction)(nil)

func (a *lineAction) FamilyName() string       { return a.family }
func (a *lineAction) Text() string             { return a.text }
func (a *lineAction) StartInWriteAction() bool { return true }

func (a *lineAction) IsAvailable(p *host.Project, _ *host.Editor, file *source.File) (bool, error) {
	f := file
	if p != nil {
		f = p.Latest(file)
	}
	if f.Path != a.path {
		return false, nil
	}
	return len(a.edits(f, a.line)) > 0, nil
}

// Invoke schedules the edits on the running write action. Without a file it
// falls back to the file the action was built for.
func (a *lineAction) Invoke(p *host.Project, _ *host.Editor, file *source.File) error {
	wa := p.WriteAction()
	if wa == nil {
		return host.ErrNoWriteAction
	}
	var f *source.File
	if file != nil {
		f = p.Latest(file)
	} else {
		cur, ok := p.Lookup(a.path)
		if !ok {
			return ErrStaleFile
		}
		f = cur
	}
	edits := a.edits(f, a.line)
	if len(edits) == 0 {
		return ErrNotApplicable
	}
	for _, e := range edits {
		switch {
		case e.Span.Empty():
			wa.Insert(e.Span.File, e.Span.Start, e.NewText)
		case e.NewText == "":
			wa.Delete(e.Span, e.OldText)
		default:
			wa.Replace(e.Span, e.NewText, e.OldText)
		}
	}
	return nil
}
