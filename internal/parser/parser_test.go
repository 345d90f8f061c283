package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sem0ark/soltree/internal/parser"
)

func TestType(t *testing.T) {
	m := parser.NewType(parser.KindString, nil)
	assert.True(t, m.IsMatching("hello", false))
	assert.False(t, m.IsMatching(1.0, false))
	assert.False(t, m.IsMatching(nil, false))

	v, err := m.Parse("hello", false)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = m.Parse(42.0, false)
	require.Error(t, err)
	var pe *parser.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestConst(t *testing.T) {
	m := parser.NewConst("ok", nil)
	assert.True(t, m.IsMatching("ok", false))
	assert.False(t, m.IsMatching("no", false))
	assert.False(t, m.IsMatching(1.0, false))
}

func TestEnumeratedAcceptsNilMember(t *testing.T) {
	m := parser.NewEnumerated([]any{1.0, 2.0, 3.0, nil}, nil)
	assert.True(t, m.IsMatching(1.0, false))
	assert.True(t, m.IsMatching(nil, false))
	assert.False(t, m.IsMatching("1", false), "cross-kind values must never match")
	assert.False(t, m.IsMatching(4.0, false))
}

func TestDictOfRejectsDisallowedKeys(t *testing.T) {
	m := parser.NewDictOf(parser.NewType(parser.KindNumber, nil), nil, func(k string) bool {
		return k != "forbidden"
	})
	assert.True(t, m.IsMatching(map[string]any{"a": 1.0, "b": 2.0}, false))
	assert.False(t, m.IsMatching(map[string]any{"forbidden": 1.0}, false))

	_, err := m.Parse(map[string]any{"forbidden": 1.0}, false)
	require.Error(t, err)
}

func TestListOfParsesEachElementBlindAfterFullCheck(t *testing.T) {
	m := parser.NewListOf(parser.NewType(parser.KindNumber, nil), nil)
	v, err := m.Parse([]any{1.0, 2.0, 3.0}, false)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, v)

	_, err = m.Parse([]any{1.0, "bad"}, false)
	require.Error(t, err)
}

func TestDictExpRequiredAndOptionalFields(t *testing.T) {
	m := parser.NewDictExp(map[string]any{
		"name": parser.NewType(parser.KindString, nil),
		"age":  parser.NewOpt(parser.NewType(parser.KindNumber, nil)),
	}, nil)

	assert.True(t, m.IsMatching(map[string]any{"name": "a"}, false))
	assert.True(t, m.IsMatching(map[string]any{"name": "a", "age": 1.0}, false))
	assert.False(t, m.IsMatching(map[string]any{"age": 1.0}, false), "missing required field")
	assert.False(t, m.IsMatching(map[string]any{"name": "a", "extra": 1}, false), "unexpected key")

	_, err := m.Parse(map[string]any{"age": 1.0}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Expected key "name"`)

	_, err = m.Parse(map[string]any{"name": "a", "extra": 1}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Unexpected key "extra"`)
}

func TestDictExpShallowSkipsElementChecksButNotStructuralOnes(t *testing.T) {
	m := parser.NewDictExp(map[string]any{
		"name": parser.NewType(parser.KindString, nil),
	}, nil)

	assert.True(t, m.IsMatching(map[string]any{"name": 123.0}, true), "shallow must not check element types")
	assert.False(t, m.IsMatching(map[string]any{"name": 123.0}, false), "deep must check element types")
	assert.False(t, m.IsMatching(map[string]any{"other": "x"}, true), "shallow must still enforce required keys")
	assert.False(t, m.IsMatching(map[string]any{"name": "a", "extra": 1}, true), "shallow must still reject unknown keys")
}

func TestUnionBacktracksPastShallowMatchThatFailsConstruction(t *testing.T) {
	// Both alternatives shallow-match the dict (they declare the same keys),
	// but only the second one's "kind" constant accepts the value, so the
	// first fails construction and the union moves on.
	first := parser.NewDictExp(map[string]any{
		"kind":  parser.NewConst("a", nil),
		"value": parser.NewType(parser.KindNumber, nil),
	}, nil)
	second := parser.NewDictExp(map[string]any{
		"kind":  parser.NewConst("b", nil),
		"value": parser.NewType(parser.KindNumber, nil),
	}, nil)
	u := parser.NewUnionExp(nil, first, second)

	v, err := u.Parse(map[string]any{"kind": "b", "value": 1.0}, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"kind": "b", "value": 1.0}, v)
}

func TestUnionAggregatesErrorsWhenAllAlternativesFail(t *testing.T) {
	// Both alternatives shallow-match the dict, and both fail construction.
	u := parser.NewUnionExp(nil,
		parser.NewDictExp(map[string]any{"kind": parser.NewConst("a", nil)}, nil),
		parser.NewDictExp(map[string]any{"kind": parser.NewConst("b", nil)}, nil),
	)
	_, err := u.Parse(map[string]any{"kind": "c"}, false)
	require.Error(t, err)
	var pe *parser.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Len(t, pe.Details, 2)
}

func TestUnionRaisesImmediatelyWhenNothingShallowMatches(t *testing.T) {
	u := parser.NewUnionExp(nil,
		parser.NewType(parser.KindString, nil),
		parser.NewType(parser.KindBool, nil),
	)
	_, err := u.Parse(42.0, false)
	require.Error(t, err)
	var pe *parser.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Empty(t, pe.Details)
}

func TestIdentityLayersConstructorOverInner(t *testing.T) {
	m := parser.NewIdentity(parser.NewType(parser.KindNumber, nil), func(v any) any {
		return v.(float64) * 2
	})
	v, err := m.Parse(21.0, false)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestTruncatesLongOffendingValueInErrorMessage(t *testing.T) {
	long := strings.Repeat("x", 500)
	m := parser.NewType(parser.KindNumber, nil)
	_, err := m.Parse(long, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "...")
	assert.Less(t, len(err.Error()), len(long))
}

// A recursive grammar for a binary tree of numbers, ported from the
// original_source test suite's canonical Scope example: a Node is either a
// number, or a dict with Left/Right sub-nodes.
func TestRecursiveScopeGrammar(t *testing.T) {
	scope := parser.NewScope("Tree", func(scoped func(string) *parser.Scoped) map[string]parser.Matcher {
		node := parser.NewUnionExp(nil,
			parser.NewType(parser.KindNumber, nil),
			parser.NewDictExp(map[string]any{
				"left":  scoped("Node"),
				"right": scoped("Node"),
			}, nil),
		)
		return map[string]parser.Matcher{"Node": node}
	})

	nodeRef, err := scope.Resolve("Node")
	require.NoError(t, err)

	tree := map[string]any{
		"left":  1.0,
		"right": map[string]any{"left": 2.0, "right": 3.0},
	}
	assert.True(t, nodeRef.IsMatching(tree, false))
	v, err := nodeRef.Parse(tree, false)
	require.NoError(t, err)
	assert.Equal(t, tree, v)

	assert.False(t, nodeRef.IsMatching(map[string]any{"left": "not a number or node"}, false))
}

// TestRecursiveScopeGrammarLiteralExample ports spec.md's own recursive
// tree grammar verbatim: Node = int | {Left: Node, Right: Node?} |
// {Left: Node?, Right: Node}, including its two example values.
func TestRecursiveScopeGrammarLiteralExample(t *testing.T) {
	scope := parser.NewScope("Tree", func(scoped func(string) *parser.Scoped) map[string]parser.Matcher {
		node := parser.NewUnionExp(nil,
			parser.NewType(parser.KindNumber, nil),
			parser.NewDictExp(map[string]any{
				"Left":  scoped("Node"),
				"Right": parser.NewOpt(scoped("Node")),
			}, nil),
			parser.NewDictExp(map[string]any{
				"Left":  parser.NewOpt(scoped("Node")),
				"Right": scoped("Node"),
			}, nil),
		)
		return map[string]parser.Matcher{"Node": node}
	})

	nodeRef, err := scope.Resolve("Node")
	require.NoError(t, err)

	value := map[string]any{
		"Left":  map[string]any{"Right": 0.0},
		"Right": map[string]any{"Right": 1.0},
	}
	assert.True(t, nodeRef.IsMatching(value, false))
	parsed, err := nodeRef.Parse(value, false)
	require.NoError(t, err)
	assert.Equal(t, value, parsed)

	bad := map[string]any{
		"Left":  map[string]any{"Right": "0"},
		"Right": map[string]any{"Right": 1.0},
	}
	assert.False(t, nodeRef.IsMatching(bad, false))
	_, err = nodeRef.Parse(bad, false)
	require.Error(t, err)
	var pe *parser.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestScopeResolveUnknownProductionIsConstructionError(t *testing.T) {
	scope := parser.NewScope("Empty", func(scoped func(string) *parser.Scoped) map[string]parser.Matcher {
		return map[string]parser.Matcher{}
	})
	_, err := scope.Resolve("Missing")
	require.Error(t, err)
	var ce *parser.ConstructionError
	require.ErrorAs(t, err, &ce)
}
