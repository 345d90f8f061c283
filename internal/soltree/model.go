// Package soltree compiles a JSON decision-tree configuration into a tree of
// conditions that can be evaluated repeatedly against host values of type T,
// merging partial results into an output map as it goes.
package soltree

import "github.com/sem0ark/soltree/internal/parser"

// Output is what a compiled tree writes into: a plain string-keyed map,
// built up incrementally as matching conditions fire.
type Output = map[string]any

// Selector extracts the value a condition should compare, from a host value
// of type T. The tree never inspects T itself — only what selectors return.
type Selector[T any] func(T) any

// node is what every evaluable piece of a compiled tree implements:
// Conditions, and the two switch variants that hold lists of them.
type node[T any] interface {
	Match(value T, output Output) bool
}

// ValueMatcher accepts a host value if a named selector, applied to it,
// lands in a fixed set of allowed values.
type ValueMatcher[T any] struct {
	selector Selector[T]
	values   map[string]struct{}
	raw      []any
}

// NewValueMatcher builds a ValueMatcher over selector accepting any of
// values. Equality between values follows parser.ValueEqual: no cross-kind
// coercion, so the string "1" never matches the number 1.
func NewValueMatcher[T any](selector Selector[T], values []any) *ValueMatcher[T] {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[parser.ValueKey(v)] = struct{}{}
	}
	return &ValueMatcher[T]{selector: selector, values: set, raw: values}
}

// IsEmpty reports whether the matcher accepts nothing, which happens when
// it was built from an empty value list. Intersect never returns an empty
// matcher; it returns nil when no value is left in common.
func (m *ValueMatcher[T]) IsEmpty() bool { return len(m.values) == 0 }

func (m *ValueMatcher[T]) Match(value T) bool {
	_, ok := m.values[parser.ValueKey(m.selector(value))]
	return ok
}

// Intersect returns a ValueMatcher accepting values both m and other accept,
// or nil if that set is empty. Both matchers are assumed to share the same
// selector, since Query only ever intersects matchers keyed by selector
// name.
func (m *ValueMatcher[T]) Intersect(other *ValueMatcher[T]) *ValueMatcher[T] {
	inter := make(map[string]struct{})
	for k := range m.values {
		if _, ok := other.values[k]; ok {
			inter[k] = struct{}{}
		}
	}
	if len(inter) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(inter))
	var raw []any
	for _, source := range [][]any{m.raw, other.raw} {
		for _, v := range source {
			k := parser.ValueKey(v)
			if _, keep := inter[k]; keep && !seen[k] {
				raw = append(raw, v)
				seen[k] = true
			}
		}
	}
	return &ValueMatcher[T]{selector: m.selector, values: inter, raw: raw}
}

// Query is a conjunction of named ValueMatchers: a host value matches only
// if every matcher in it matches.
type Query[T any] struct {
	matchers map[string]*ValueMatcher[T]
}

// NewQuery wraps a set of named matchers.
func NewQuery[T any](matchers map[string]*ValueMatcher[T]) *Query[T] {
	return &Query[T]{matchers: matchers}
}

func (q *Query[T]) Match(value T) bool {
	for _, m := range q.matchers {
		if !m.Match(value) {
			return false
		}
	}
	return true
}

// Intersect combines two queries field-by-field, intersecting matchers that
// share a selector name and keeping the rest as-is. It returns nil if any
// shared field's intersection is empty.
func (q *Query[T]) Intersect(other *Query[T]) *Query[T] {
	merged := make(map[string]*ValueMatcher[T], len(q.matchers))
	for k, v := range q.matchers {
		merged[k] = v
	}
	for k, m := range other.matchers {
		if existing, ok := merged[k]; ok {
			inter := existing.Intersect(m)
			if inter == nil {
				return nil
			}
			merged[k] = inter
		} else {
			merged[k] = m
		}
	}
	return &Query[T]{matchers: merged}
}

// Setter merges a fixed set of key/value pairs into the output map when its
// owning Condition matches.
type Setter struct {
	update map[string]any
}

// NewSetter wraps the key/value pairs a matching Condition writes.
func NewSetter(update map[string]any) *Setter {
	return &Setter{update: update}
}

func (s *Setter) apply(output Output) {
	for k, v := range s.update {
		output[k] = v
	}
}

// Condition pairs a Query with an optional Setter and optional
// subconditions. Matching a value runs the setter (if the query matched)
// and then recurses into subconditions, so a parent's output is always
// applied before a nested "also" clause can override it.
type Condition[T any] struct {
	Query         *Query[T]
	Setter        *Setter
	Annotation    string
	Subconditions node[T]

	// ID is a unique identifier (a ULID) assigned at compile time. Nothing
	// in this package reads it; it plays no role in matching.
	ID string
}

func (c *Condition[T]) Match(value T, output Output) bool {
	matched := c.Query.Match(value)
	recordConditionMatch(matched)
	if !matched {
		return false
	}
	if c.Setter != nil {
		c.Setter.apply(output)
	}
	if c.Subconditions != nil {
		c.Subconditions.Match(value, output)
	}
	return true
}

// SwitchApplyFirst evaluates conditions in order and stops at the first
// match, like a switch statement.
type SwitchApplyFirst[T any] struct {
	Conditions []*Condition[T]
}

func (s *SwitchApplyFirst[T]) Match(value T, output Output) bool {
	for _, c := range s.Conditions {
		if c.Match(value, output) {
			return true
		}
	}
	return false
}

// SwitchApplyAll evaluates every condition, letting later setters overwrite
// earlier ones in the output map.
type SwitchApplyAll[T any] struct {
	Conditions []*Condition[T]
}

func (s *SwitchApplyAll[T]) Match(value T, output Output) bool {
	matched := false
	for _, c := range s.Conditions {
		if c.Match(value, output) {
			matched = true
		}
	}
	return matched
}
