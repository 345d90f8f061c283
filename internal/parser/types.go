package parser

import (
	"fmt"
	"sort"
	"strings"
)

// Constructor transforms an already-matched value into whatever the caller
// wants the parse result to be. The default constructor is identity.
type Constructor func(any) any

func identity(v any) any { return v }

// Matcher is the common interface every combinator in this package
// implements. Each operation exists in a shallow and a deep form:
//
//   - IsMatching performs structural recognition without construction. When
//     shallow is true, container variants skip recursing into elements —
//     UnionExp uses this to probe alternatives cheaply before committing.
//   - Parse performs recognition and construction. When blind is true the
//     caller has already verified structure (typically via IsMatching) and
//     Parse skips re-verifying it, which keeps a full parse of a nested
//     value O(n) instead of O(n^2).
//   - SyntaxString renders a human-readable grammar fragment. continue_
//     controls whether a Scoped reference expands inline (once) or is
//     rendered by name, so recursive grammars don't expand forever.
type Matcher interface {
	IsMatching(target any, shallow bool) bool
	Parse(target any, blind bool) (any, error)
	SyntaxString(continue_ bool) string
}

// kindOf classifies a decoded-JSON value the way Python's type() would:
// cross-kind values are never equal, even when one coerces to the other
// (e.g. the string "1" never matches the number 1).
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case float64, int:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "dict"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Kind enumerates the primitive Go shapes produced by decoding JSON, used
// by Type to pick which kind of value it accepts.
type Kind int

const (
	KindBool Kind = iota
	KindString
	KindNumber
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "str"
	case KindNumber:
		return "number"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return "unknown"
	}
}

func kindMatches(k Kind, v any) bool {
	switch k {
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindString:
		_, ok := v.(string)
		return ok
	case KindNumber:
		switch v.(type) {
		case float64, int:
			return true
		}
		return false
	case KindList:
		_, ok := v.([]any)
		return ok
	case KindDict:
		_, ok := v.(map[string]any)
		return ok
	default:
		return false
	}
}

// Type matches values whose runtime kind is exactly k. No subtype or
// cross-kind coercion.
type Type struct {
	Kind Kind
	Ctor Constructor
}

// NewType builds a Type matcher. ctor may be nil for the identity
// constructor.
func NewType(kind Kind, ctor Constructor) *Type {
	if ctor == nil {
		ctor = identity
	}
	return &Type{Kind: kind, Ctor: ctor}
}

func (t *Type) IsMatching(target any, _ bool) bool {
	return kindMatches(t.Kind, target)
}

func (t *Type) SyntaxString(_ bool) string {
	return t.Kind.String()
}

func (t *Type) Parse(target any, _ bool) (any, error) {
	if !t.IsMatching(target, false) {
		return nil, newParseError(target, t.SyntaxString(true), nil)
	}
	return t.Ctor(target), nil
}

// Const matches values equal to Value.
type Const struct {
	Value any
	Ctor  Constructor
}

func NewConst(value any, ctor Constructor) *Const {
	if ctor == nil {
		ctor = identity
	}
	return &Const{Value: value, Ctor: ctor}
}

func (c *Const) IsMatching(target any, _ bool) bool {
	return valueEqual(target, c.Value)
}

func (c *Const) SyntaxString(_ bool) string {
	return fmt.Sprintf("const(%v)", c.Value)
}

func (c *Const) Parse(target any, _ bool) (any, error) {
	if !c.IsMatching(target, false) {
		return nil, newParseError(target, c.SyntaxString(true), nil)
	}
	return c.Ctor(target), nil
}

// Enumerated matches if target is a member of a finite set of values. It
// records the kinds of the source values and rejects by kind before doing
// an equality check, so None and an equal-but-different-kind value are
// always distinct.
type Enumerated struct {
	values []any
	kinds  map[string]struct{}
	Ctor   Constructor
}

func NewEnumerated(values []any, ctor Constructor) *Enumerated {
	if ctor == nil {
		ctor = identity
	}
	kinds := make(map[string]struct{}, len(values))
	for _, v := range values {
		kinds[kindOf(v)] = struct{}{}
	}
	return &Enumerated{values: values, kinds: kinds, Ctor: ctor}
}

func (e *Enumerated) IsMatching(target any, _ bool) bool {
	if _, ok := e.kinds[kindOf(target)]; !ok {
		return false
	}
	for _, v := range e.values {
		if valueEqual(target, v) {
			return true
		}
	}
	return false
}

func (e *Enumerated) SyntaxString(_ bool) string {
	parts := make([]string, len(e.values))
	for i, v := range e.values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	sort.Strings(parts)
	return "enum{" + strings.Join(parts, ", ") + "}"
}

func (e *Enumerated) Parse(target any, _ bool) (any, error) {
	if !e.IsMatching(target, false) {
		return nil, newParseError(target, e.SyntaxString(true), nil)
	}
	return e.Ctor(target), nil
}

// Identity matches whatever Inner matches; it exists so a constructor can
// be layered on top of another matcher without inventing a fresh variant.
type Identity struct {
	Inner Matcher
	Ctor  Constructor
}

func NewIdentity(inner Matcher, ctor Constructor) *Identity {
	if ctor == nil {
		ctor = identity
	}
	return &Identity{Inner: inner, Ctor: ctor}
}

func (i *Identity) IsMatching(target any, shallow bool) bool {
	return i.Inner.IsMatching(target, shallow)
}

func (i *Identity) SyntaxString(continue_ bool) string {
	return i.Inner.SyntaxString(continue_)
}

func (i *Identity) Parse(target any, _ bool) (any, error) {
	if !i.IsMatching(target, false) {
		return nil, newParseError(target, i.SyntaxString(true), nil)
	}
	inner, err := i.Inner.Parse(target, true)
	if err != nil {
		return nil, err
	}
	return i.Ctor(inner), nil
}

// Opt marks a DictExp field as optional. It is legal only as a direct field
// value inside a DictExp's field map; it is not a free-standing Matcher and
// deliberately does not implement the Matcher interface, so misuse (e.g.
// passing it to ListOf) is a compile error rather than a runtime one.
type Opt struct {
	Inner Matcher
}

func NewOpt(inner Matcher) *Opt {
	return &Opt{Inner: inner}
}

// ValueKey renders v as a string that is equal for two values iff ValueEqual
// would consider them equal. It lets callers outside this package (e.g. the
// solution-tree compiler's ValueMatcher sets) use decoded-JSON scalars as map
// keys without duplicating the kind-aware equality rules here.
func ValueKey(v any) string {
	if v == nil {
		return "null:"
	}
	switch vv := v.(type) {
	case bool:
		return fmt.Sprintf("bool:%v", vv)
	case string:
		return "string:" + vv
	case float64, int:
		return fmt.Sprintf("number:%v", toFloat64(v))
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

// ValueEqual exports valueEqual for callers outside this package that need
// the same kind-aware equality (no cross-kind coercion between e.g. a string
// and a number).
func ValueEqual(a, b any) bool { return valueEqual(a, b) }

// valueEqual compares two decoded-JSON (or host-selector) values for
// equality without any cross-kind coercion. Numbers compare by value
// regardless of whether they arrived as float64 or int, since JSON
// decoding and Go selector code disagree on which of those they hand back.
func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if kindOf(a) != kindOf(b) {
		return false
	}
	switch av := a.(type) {
	case bool:
		bv, _ := b.(bool)
		return av == bv
	case string:
		bv, _ := b.(string)
		return av == bv
	case float64, int:
		return toFloat64(a) == toFloat64(b)
	default:
		return a == b
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
