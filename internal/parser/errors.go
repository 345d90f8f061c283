// Package parser implements a small structural-schema parser/combinator
// algebra over already-decoded JSON values (bool, string, float64, nil,
// []any, map[string]any — the shapes encoding/json produces). It recognises
// values against a grammar built from a handful of matcher combinators,
// supports mutually recursive named productions via a scope mechanism, and
// runs a two-phase match-then-construct pipeline.
//
// The package intentionally has zero third-party dependencies: it is the
// algebra other packages build on, not a leaf that should drag in logging
// or error-wrapping libraries of its own.
package parser

import "fmt"

// maxOffendingValueLen bounds how much of a rejected value is embedded in
// a parse error message.
const maxOffendingValueLen = 100

// ParseError reports a structural mismatch between a value and a Matcher.
// It is always fatal at the point it is raised to a caller outside this
// package; UnionExp catches it internally while probing alternatives.
type ParseError struct {
	// Value is a truncated string representation of the rejected value.
	Value string
	// Syntax is the syntax string of the matcher that rejected it.
	Syntax string
	// Details carries per-violation messages (e.g. one per unexpected or
	// missing dict key, or one per failed union alternative).
	Details []string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("failed to parse %s, expected\n%s", e.Value, e.Syntax)
	for _, d := range e.Details {
		msg += "\n" + d
	}
	return msg
}

func newParseError(target any, syntax string, details []string) *ParseError {
	return &ParseError{
		Value:   truncate(target),
		Syntax:  syntax,
		Details: details,
	}
}

// truncate renders target with fmt and clips it to maxOffendingValueLen
// runes, appending "..." when clipped. Mirrors show_part from the Python
// original this package is ported from.
func truncate(target any) string {
	repr := fmt.Sprintf("%v", target)
	runes := []rune(repr)
	if len(runes) <= maxOffendingValueLen {
		return repr
	}
	return string(runes[:maxOffendingValueLen]) + "..."
}

// ConstructionError reports that a configuration references something the
// host program never supplied: an undefined scope production, as returned
// by Scope.Resolve. (An Opt used outside a DictExp field list never gets
// this far: Opt does not implement Matcher, so the Go compiler rejects
// it.) It is distinct from ParseError because
// it denotes a bug in the relationship between the configuration and the
// host program, not in the configuration's shape.
type ConstructionError struct {
	Message string
}

func (e *ConstructionError) Error() string {
	return e.Message
}
