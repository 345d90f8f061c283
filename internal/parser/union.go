package parser

import "strings"

// UnionExp matches if any alternative matches, tried in declaration order.
// Because a value may shallowly resemble several alternatives but only
// deeply satisfy one, parsing must attempt construction, catch failure, and
// continue — the first alternative that both shallow-matches and fully
// parses without error wins.
type UnionExp struct {
	Alternatives []Matcher
	Ctor         Constructor
}

func NewUnionExp(ctor Constructor, alternatives ...Matcher) *UnionExp {
	if ctor == nil {
		ctor = identity
	}
	return &UnionExp{Alternatives: alternatives, Ctor: ctor}
}

func (u *UnionExp) IsMatching(target any, shallow bool) bool {
	for _, alt := range u.Alternatives {
		if alt.IsMatching(target, shallow) {
			return true
		}
	}
	return false
}

func (u *UnionExp) SyntaxString(continue_ bool) string {
	var b strings.Builder
	for _, alt := range u.Alternatives {
		b.WriteString("\n| ")
		b.WriteString(strings.TrimLeft(alt.SyntaxString(continue_), " "))
	}
	return b.String()
}

// Parse tries each alternative that shallow-matches, in order. The first
// one that also parses without error wins. A union that shallow-matches
// nothing raises immediately with no detail messages; a union where every
// alternative shallow-matches but every construction fails aggregates all
// of their failure messages.
func (u *UnionExp) Parse(target any, _ bool) (any, error) {
	var messages []string
	anyShallow := false

	for _, alt := range u.Alternatives {
		if !alt.IsMatching(target, true) {
			continue
		}
		anyShallow = true

		parsed, err := alt.Parse(target, false)
		if err == nil {
			return u.Ctor(parsed), nil
		}
		messages = append(messages, err.Error())
	}

	if !anyShallow {
		return nil, newParseError(target, u.SyntaxString(true), nil)
	}
	return nil, newParseError(target, u.SyntaxString(true), messages)
}
