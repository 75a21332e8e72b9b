package intention

import (
	"errors"
	"reflect"

	"amend/internal/host"
	"amend/internal/source"
	"amend/internal/trace"
)

var (
	// ErrNilFactory is returned when a delegating action is built without a factory.
	ErrNilFactory = errors.New("intention: nil factory")
	// ErrNilDelegate is returned when a factory yields a nil action, including
	// a nil pointer wrapped in the Action interface.
	ErrNilDelegate = errors.New("intention: factory returned nil action")
	// ErrNilFile is returned when availability is queried without a file.
	ErrNilFile = errors.New("intention: availability check requires a file")
)

// Delegating presents a stable name, text and write-action policy for an
// action that is rebuilt by its factory on every availability check and
// every invocation.
//
// The three display properties are read once, from a probe built by
// NewDelegating, and never change afterwards even if later delegates would
// report something else.
type Delegating struct {
	factory            Factory
	familyName         string
	text               string
	startInWriteAction bool
}

// NewDelegating calls factory once to snapshot the display properties. The
// probe is dropped right after; it is never invoked. A factory error is
// returned unchanged.
func NewDelegating(factory Factory) (*Delegating, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	probe, err := factory()
	if err != nil {
		return nil, err
	}
	if isNil(probe) {
		return nil, ErrNilDelegate
	}
	return &Delegating{
		factory:            factory,
		familyName:         probe.FamilyName(),
		text:               probe.Text(),
		startInWriteAction: probe.StartInWriteAction(),
	}, nil
}

func (d *Delegating) FamilyName() string { return d.familyName }

func (d *Delegating) Text() string { return d.text }

func (d *Delegating) StartInWriteAction() bool { return d.startInWriteAction }

// IsAvailable builds a fresh delegate and asks it. Nothing is cached.
func (d *Delegating) IsAvailable(p *host.Project, ed *host.Editor, file *source.File) (bool, error) {
	if file == nil {
		return false, ErrNilFile
	}
	delegate, err := d.delegate(p, "is-available")
	if err != nil {
		return false, err
	}
	return delegate.IsAvailable(p, ed, file)
}

// Invoke builds another fresh delegate, independent of any used for
// IsAvailable, and invokes it. file may be nil.
func (d *Delegating) Invoke(p *host.Project, ed *host.Editor, file *source.File) error {
	delegate, err := d.delegate(p, "invoke")
	if err != nil {
		return err
	}
	return delegate.Invoke(p, ed, file)
}

func (d *Delegating) delegate(p *host.Project, purpose string) (Action, error) {
	if p != nil {
		trace.Point(p.Tracer, trace.ScopeAction, "factory:"+d.familyName, purpose)
	}
	a, err := d.factory()
	if err != nil {
		return nil, err
	}
	if isNil(a) {
		return nil, ErrNilDelegate
	}
	return a, nil
}

func isNil(a Action) bool {
	if a == nil {
		return true
	}
	v := reflect.ValueOf(a)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// LowPriorityDelegating is a Delegating the host sorts after regular actions.
type LowPriorityDelegating struct {
	*Delegating
}

// NewLowPriorityDelegating is NewDelegating plus the LowPriority marker.
func NewLowPriorityDelegating(factory Factory) (*LowPriorityDelegating, error) {
	d, err := NewDelegating(factory)
	if err != nil {
		return nil, err
	}
	return &LowPriorityDelegating{Delegating: d}, nil
}

// LowPriority implements the LowPriority marker.
func (*LowPriorityDelegating) LowPriority() {}

var (
	_ Action      = (*Delegating)(nil)
	_ Action      = (*LowPriorityDelegating)(nil)
	_ LowPriority = (*LowPriorityDelegating)(nil)
)
