// Package intention defines intention actions (quick fixes offered at a
// caret) and the delegating wrappers that build the real action lazily.
package intention

import (
	"amend/internal/host"
	"amend/internal/source"
)

// Action is a user-invocable fix bound to a position in a file.
//
// IsAvailable always receives a file; ed may be nil. Invoke may run
// without an editor and without a file in some host flows.
type Action interface {
	FamilyName() string
	Text() string
	IsAvailable(p *host.Project, ed *host.Editor, file *source.File) (bool, error)
	StartInWriteAction() bool
	Invoke(p *host.Project, ed *host.Editor, file *source.File) error
}

// LowPriority marks an action the host lists after regular ones.
type LowPriority interface {
	LowPriority()
}

// IsLowPriority reports whether a carries the LowPriority marker.
func IsLowPriority(a Action) bool {
	_, ok := a.(LowPriority)
	return ok
}

// Factory produces the action a Delegating forwards to. It may return a
// fresh or a cached instance on every call.
type Factory func() (Action, error)
