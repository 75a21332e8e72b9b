package inspect

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"amend/internal/config"
	"amend/internal/diag"
	"amend/internal/host"
	"amend/internal/intention"
	"amend/internal/source"
	"amend/internal/trace"
)

// ErrUnknownRule is returned when amend.toml names a rule that does not exist.
var ErrUnknownRule = errors.New("unknown rule")

// Registry is an ordered, read-only set of rules. It is safe for concurrent
// use once built.
type Registry struct {
	rules []Rule
	byID  map[string]Rule
}

// NewRegistry builds a registry; rule ids must be unique.
func NewRegistry(rules ...Rule) (*Registry, error) {
	r := &Registry{byID: make(map[string]Rule, len(rules))}
	for _, rule := range rules {
		if _, dup := r.byID[rule.ID()]; dup {
			return nil, fmt.Errorf("duplicate rule %q", rule.ID())
		}
		r.byID[rule.ID()] = rule
		r.rules = append(r.rules, rule)
	}
	return r, nil
}

// Default returns the registry of every built-in rule.
func Default() *Registry {
	r, err := NewRegistry(
		TrailingWhitespace(),
		FinalNewline(),
		TabIndent(),
		UnicodeNFC(),
		TodoOwner(),
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Rules returns the rules in registration order.
func (r *Registry) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

func (r *Registry) Lookup(id string) (Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// Validate checks that every rule named in cfg exists.
func (r *Registry) Validate(cfg config.Config) error {
	for _, list := range [][]string{cfg.Inspect.Enable, cfg.Inspect.Disable} {
		for _, id := range list {
			if _, ok := r.byID[id]; !ok {
				return fmt.Errorf("%w %q (known: %s)", ErrUnknownRule, id, strings.Join(r.IDs(), ", "))
			}
		}
	}
	return nil
}

// Enabled returns the rules cfg turns on.
func (r *Registry) Enabled(cfg config.Config) []Rule {
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if cfg.RuleEnabled(rule.ID()) {
			out = append(out, rule)
		}
	}
	return out
}

// Run inspects file with every enabled rule. Repeated findings (same code
// and span) are reported once; the result is capped at
// cfg.Inspect.MaxDiagnostics and sorted by position.
func (r *Registry) Run(file *source.File, cfg config.Config) []diag.Diagnostic {
	bag := diag.NewBag(cfg.Inspect.MaxDiagnostics)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	for _, rule := range r.Enabled(cfg) {
		rule.Check(file, cfg, rep)
	}
	bag.Sort()
	return bag.Items()
}

// Intentions builds a delegating action for every quick fix the enabled
// rules offer at ed and returns the available ones in menu order. A factory
// that fails while building its probe leaves its action out of the menu.
func (r *Registry) Intentions(p *host.Project, ed *host.Editor, file *source.File) ([]intention.Action, error) {
	if file == nil {
		return nil, intention.ErrNilFile
	}
	span := trace.Begin(p.Tracer, trace.ScopeFile, "intentions:"+file.Path, 0)
	defer span.End("")

	target := Target{Project: p, Editor: ed, Path: file.Path}
	var actions []intention.Action
	for _, rule := range r.Enabled(p.Config) {
		for _, offer := range rule.Offers(target) {
			a, err := build(offer)
			if err != nil {
				trace.Fail(p.Tracer, "intention:"+rule.ID(), err)
				continue
			}
			actions = append(actions, a)
		}
	}
	available, err := intention.Available(p, ed, file, actions)
	if err != nil {
		return nil, err
	}
	span.WithExtra("available", fmt.Sprint(len(available)))
	return available, nil
}

func build(o Offer) (intention.Action, error) {
	if o.LowPriority {
		return intention.NewLowPriorityDelegating(o.Factory)
	}
	return intention.NewDelegating(o.Factory)
}

// Run inspects file with the default registry.
func Run(file *source.File, cfg config.Config) []diag.Diagnostic {
	return Default().Run(file, cfg)
}

// Intentions lists quick fixes at ed with the default registry.
func Intentions(p *host.Project, ed *host.Editor, file *source.File) ([]intention.Action, error) {
	return Default().Intentions(p, ed, file)
}

// IDs returns the sorted ids of every rule in r.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
