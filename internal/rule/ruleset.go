package rule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownRule is returned when an override or removal names no registered rule
var ErrUnknownRule = errors.New("unknown rule")

// Ruleset is an ordered, immutable collection of uniquely named rules.
// Severity overrides are stored separately and applied at resolution time,
// so the rule definitions themselves never change. A Ruleset is safe for
// concurrent use.
type Ruleset struct {
	rules     []Rule
	index     map[string]int
	overrides map[string]Severity
}

// Builder accumulates rule registrations for a Ruleset
type Builder struct {
	rules []Rule
	index map[string]int
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

// Add registers rules in order. Registering a name again replaces the earlier
// definition but keeps its original position.
func (b *Builder) Add(rules ...Rule) *Builder {
	for _, r := range rules {
		if i, ok := b.index[r.Name]; ok {
			b.rules[i] = r
			continue
		}
		b.index[r.Name] = len(b.rules)
		b.rules = append(b.rules, r)
	}
	return b
}

// Build validates every rule and freezes the collection
func (b *Builder) Build() (*Ruleset, error) {
	var errs []error
	for _, r := range b.rules {
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	rs := &Ruleset{
		rules:     make([]Rule, len(b.rules)),
		index:     make(map[string]int, len(b.rules)),
		overrides: map[string]Severity{},
	}
	copy(rs.rules, b.rules)
	for i, r := range rs.rules {
		rs.index[r.Name] = i
	}
	return rs, nil
}

// MustBuild is Build for statically defined rulesets; it panics on error
func (b *Builder) MustBuild() *Ruleset {
	rs, err := b.Build()
	if err != nil {
		panic(err)
	}
	return rs
}

// Len returns the number of rules
func (rs *Ruleset) Len() int {
	return len(rs.rules)
}

// At returns the rule at registration index i
func (rs *Ruleset) At(i int) Rule {
	return rs.rules[i]
}

// Rules returns the rules in registration order
func (rs *Ruleset) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Names returns rule names in registration order
func (rs *Ruleset) Names() []string {
	names := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		names[i] = r.Name
	}
	return names
}

// Lookup finds a rule and its registration index by name
func (rs *Ruleset) Lookup(name string) (Rule, int, bool) {
	i, ok := rs.index[name]
	if !ok {
		return Rule{}, -1, false
	}
	return rs.rules[i], i, true
}

// EffectiveSeverity resolves the severity of a rule: override first, then the
// rule's default. Unknown names resolve to Ignore.
func (rs *Ruleset) EffectiveSeverity(name string) Severity {
	if s, ok := rs.overrides[name]; ok {
		return s
	}
	if i, ok := rs.index[name]; ok {
		return rs.rules[i].Severity
	}
	return Ignore
}

// Overrides returns a copy of the severity overrides
func (rs *Ruleset) Overrides() map[string]Severity {
	out := make(map[string]Severity, len(rs.overrides))
	for name, s := range rs.overrides {
		out[name] = s
	}
	return out
}

// WithOverrides returns a new Ruleset with severities layered on top of the
// existing overrides. Later calls win.
func (rs *Ruleset) WithOverrides(overrides map[string]Severity) (*Ruleset, error) {
	var unknown []string
	for name, s := range overrides {
		if _, ok := rs.index[name]; !ok {
			unknown = append(unknown, name)
			continue
		}
		if !s.Valid() {
			return nil, fmt.Errorf("rule %q: invalid severity %d", name, int(s))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownRule, strings.Join(unknown, ", "))
	}

	next := &Ruleset{rules: rs.rules, index: rs.index, overrides: rs.Overrides()}
	for name, s := range overrides {
		next.overrides[name] = s
	}
	return next, nil
}

// Without returns a new Ruleset with the named rules removed
func (rs *Ruleset) Without(names ...string) (*Ruleset, error) {
	drop := make(map[string]bool, len(names))
	var unknown []string
	for _, name := range names {
		if _, ok := rs.index[name]; !ok {
			unknown = append(unknown, name)
		}
		drop[name] = true
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownRule, strings.Join(unknown, ", "))
	}

	next := &Ruleset{index: make(map[string]int), overrides: make(map[string]Severity)}
	for _, r := range rs.rules {
		if drop[r.Name] {
			continue
		}
		next.index[r.Name] = len(next.rules)
		next.rules = append(next.rules, r)
		if s, ok := rs.overrides[r.Name]; ok {
			next.overrides[r.Name] = s
		}
	}
	return next, nil
}
