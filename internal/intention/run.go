package intention

import (
	"sort"

	"amend/internal/host"
	"amend/internal/source"
	"amend/internal/trace"
)

// Sort orders a menu: regular actions before low priority ones, then by
// text. The sort is stable.
func Sort(actions []Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		li, lj := IsLowPriority(actions[i]), IsLowPriority(actions[j])
		if li != lj {
			return !li
		}
		return actions[i].Text() < actions[j].Text()
	})
}

// Available keeps the actions that report themselves available for file and
// returns them sorted. An action whose check fails is left out and the
// failure is traced; the rest of the menu is still offered.
func Available(p *host.Project, ed *host.Editor, file *source.File, actions []Action) ([]Action, error) {
	if file == nil {
		return nil, ErrNilFile
	}
	out := make([]Action, 0, len(actions))
	for _, a := range actions {
		ok, err := a.IsAvailable(p, ed, file)
		if err != nil {
			if p != nil {
				trace.Fail(p.Tracer, "is-available:"+a.FamilyName(), err)
			}
			continue
		}
		if ok {
			out = append(out, a)
		}
	}
	Sort(out)
	return out, nil
}

// Invoke runs a selected action the way the host does: inside a write action
// when the action asks for one, directly otherwise. Errors are returned
// unchanged.
func Invoke(p *host.Project, ed *host.Editor, file *source.File, a Action) error {
	if !a.StartInWriteAction() {
		return a.Invoke(p, ed, file)
	}
	return p.RunWriteAction(a.Text(), func(*host.WriteAction) error {
		return a.Invoke(p, ed, file)
	})
}

// Find returns the first action whose family name or text equals key.
func Find(actions []Action, key string) (Action, bool) {
	for _, a := range actions {
		if a.FamilyName() == key || a.Text() == key {
			return a, true
		}
	}
	return nil, false
}
