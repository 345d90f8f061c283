package parser

import (
	"fmt"
	"sort"
	"strings"
)

// KeyPredicate decides whether a DictOf key is acceptable. The default,
// used when nil is passed to NewDictOf, accepts every key.
type KeyPredicate func(key string) bool

func acceptAllKeys(string) bool { return true }

// DictOf matches any mapping whose every value matches Inner and whose
// every key satisfies KeyIsAllowed.
type DictOf struct {
	Inner        Matcher
	Ctor         Constructor
	KeyIsAllowed KeyPredicate
}

func NewDictOf(inner Matcher, ctor Constructor, keyIsAllowed KeyPredicate) *DictOf {
	if ctor == nil {
		ctor = identity
	}
	if keyIsAllowed == nil {
		keyIsAllowed = acceptAllKeys
	}
	return &DictOf{Inner: inner, Ctor: ctor, KeyIsAllowed: keyIsAllowed}
}

func (d *DictOf) IsMatching(target any, shallow bool) bool {
	m, ok := target.(map[string]any)
	if !ok {
		return false
	}
	for key := range m {
		if !d.KeyIsAllowed(key) {
			return false
		}
	}
	if shallow {
		return true
	}
	for _, v := range m {
		if !d.Inner.IsMatching(v, shallow) {
			return false
		}
	}
	return true
}

func (d *DictOf) SyntaxString(continue_ bool) string {
	return "{ [str]: " + d.Inner.SyntaxString(continue_) + " }"
}

func (d *DictOf) Parse(target any, blind bool) (any, error) {
	m, ok := target.(map[string]any)
	if !ok {
		return nil, newParseError(target, d.SyntaxString(true), nil)
	}

	var details []string
	for key := range m {
		if !d.KeyIsAllowed(key) {
			details = append(details, fmt.Sprintf("Unexpected key %q", key))
		}
	}
	if len(details) > 0 {
		sort.Strings(details)
		return nil, newParseError(target, d.SyntaxString(true), details)
	}

	out := make(map[string]any, len(m))
	for key, v := range m {
		parsed, err := d.Inner.Parse(v, blind)
		if err != nil {
			return nil, err
		}
		out[key] = parsed
	}
	return d.Ctor(out), nil
}

// ListOf matches any ordered sequence whose every element matches Inner.
type ListOf struct {
	Inner Matcher
	Ctor  Constructor
}

func NewListOf(inner Matcher, ctor Constructor) *ListOf {
	if ctor == nil {
		ctor = identity
	}
	return &ListOf{Inner: inner, Ctor: ctor}
}

func (l *ListOf) IsMatching(target any, shallow bool) bool {
	s, ok := target.([]any)
	if !ok {
		return false
	}
	if shallow {
		return true
	}
	for _, v := range s {
		if !l.Inner.IsMatching(v, shallow) {
			return false
		}
	}
	return true
}

func (l *ListOf) SyntaxString(continue_ bool) string {
	return l.Inner.SyntaxString(continue_) + "[]"
}

func (l *ListOf) Parse(target any, blind bool) (any, error) {
	s, ok := target.([]any)
	if !ok {
		return nil, newParseError(target, l.SyntaxString(true), nil)
	}
	if !blind && !l.IsMatching(target, false) {
		return nil, newParseError(target, l.SyntaxString(true), nil)
	}

	out := make([]any, len(s))
	for i, v := range s {
		parsed, err := l.Inner.Parse(v, true)
		if err != nil {
			return nil, err
		}
		out[i] = parsed
	}
	return l.Ctor(out), nil
}

// field is one entry of a DictExp's field list: a matcher, optionally
// wrapped in Opt. DictExp is the only place Opt is legal.
type field struct {
	key      string
	matcher  Matcher
	optional bool
}

// DictExp matches a mapping with exactly the declared keys. Each field is
// either required or wrapped in Opt. Unknown keys are a failure; missing
// required keys are a failure.
type DictExp struct {
	fields     []field
	fieldByKey map[string]field
	Ctor       Constructor
}

// NewDictExp builds a DictExp from a field map. Values must be a Matcher
// or an *Opt wrapping one; anything else panics, since that is a
// programming error in the grammar, not a data-driven failure.
func NewDictExp(fields map[string]any, ctor Constructor) *DictExp {
	if ctor == nil {
		ctor = identity
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fieldByKey := make(map[string]field, len(fields))
	ordered := make([]field, 0, len(fields))
	for _, k := range keys {
		v := fields[k]
		var f field
		switch m := v.(type) {
		case *Opt:
			f = field{key: k, matcher: m.Inner, optional: true}
		case Matcher:
			f = field{key: k, matcher: m, optional: false}
		default:
			panic(fmt.Sprintf("soltree/parser: DictExp field %q is neither a Matcher nor an Opt", k))
		}
		fieldByKey[k] = f
		ordered = append(ordered, f)
	}
	return &DictExp{fields: ordered, fieldByKey: fieldByKey, Ctor: ctor}
}

func (d *DictExp) IsMatching(target any, shallow bool) bool {
	m, ok := target.(map[string]any)
	if !ok {
		return false
	}
	for key := range m {
		if _, known := d.fieldByKey[key]; !known {
			return false
		}
	}
	for _, f := range d.fields {
		if !f.optional {
			if _, present := m[f.key]; !present {
				return false
			}
		}
	}
	if shallow {
		return true
	}
	for _, f := range d.fields {
		v, present := m[f.key]
		if !present {
			continue
		}
		if !f.matcher.IsMatching(v, false) {
			return false
		}
	}
	return true
}

func (d *DictExp) SyntaxString(continue_ bool) string {
	var b strings.Builder
	b.WriteString("{")
	for _, f := range d.fields {
		b.WriteString("\n  ")
		b.WriteString(f.key)
		b.WriteString(": ")
		if f.optional {
			b.WriteString("?(")
			b.WriteString(f.matcher.SyntaxString(continue_))
			b.WriteString(")")
		} else {
			b.WriteString(f.matcher.SyntaxString(continue_))
		}
		b.WriteString(",")
	}
	b.WriteString("\n}")
	return b.String()
}

func (d *DictExp) Parse(target any, blind bool) (any, error) {
	m, ok := target.(map[string]any)
	if !ok {
		return nil, newParseError(target, d.SyntaxString(true), nil)
	}

	var details []string
	for key := range m {
		if _, known := d.fieldByKey[key]; !known {
			details = append(details, fmt.Sprintf("Unexpected key %q", key))
		}
	}
	for _, f := range d.fields {
		if !f.optional {
			if _, present := m[f.key]; !present {
				details = append(details, fmt.Sprintf("Expected key %q", f.key))
			}
		}
	}
	if len(details) > 0 {
		sort.Strings(details)
		return nil, newParseError(target, d.SyntaxString(true), details)
	}

	out := make(map[string]any, len(m))
	for _, f := range d.fields {
		v, present := m[f.key]
		if !present {
			continue
		}
		parsed, err := f.matcher.Parse(v, true)
		if err != nil {
			return nil, err
		}
		out[f.key] = parsed
	}
	return d.Ctor(out), nil
}
