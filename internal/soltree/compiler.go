package soltree

import (
	"github.com/Masterminds/semver/v3"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/sem0ark/soltree/internal/parser"
)

const (
	whenClause       = "when"
	setClause        = "set"
	alsoClause       = "also"
	annotationClause = "_annotation"

	switchApplyFirst = "apply first"
	switchApplyAll   = "apply all"
)

// supportedSchemaMajor is the highest configuration major version this
// compiler understands. A configuration may declare a top-level "version"
// field (a feature the original format never had); anything with a
// higher major version is rejected before compilation even starts.
const supportedSchemaMajor = 1

// metaRoot is the result of Phase A: splitting the raw document into its
// schema sub-document and its condition tree, tagged with which switch
// variant the tree root uses.
type metaRoot struct {
	schemaDoc  map[string]any
	tree       map[string]any
	applyFirst bool
}

// schemaTypes is the result of Phase B: the type sublanguage used in the
// "schema" sub-document ("bool", "str", "number", an enum list, or
// {"list of": ...} for outputs) lifted into actual parser.Matcher values.
type schemaTypes struct {
	selectors map[string]parser.Matcher
	output    map[string]parser.Matcher
}

// Compile builds a SolutionTree[T] from a decoded JSON configuration
// document and the selector functions it is allowed to reference by name.
// Compilation is single-threaded, synchronous, and produces no side
// effects beyond the returned tree (and, on failure, the compile-failure
// counter in metrics.go); an error here always means the
// configuration is unusable, never that a retry might succeed.
func Compile[T any](doc map[string]any, selectors map[string]Selector[T]) (*SolutionTree[T], error) {
	tree, err := compile(doc, selectors)
	if err != nil {
		compileFailures.Inc()
		return nil, err
	}
	return tree, nil
}

func compile[T any](doc map[string]any, selectors map[string]Selector[T]) (*SolutionTree[T], error) {
	if err := checkSchemaVersion(doc); err != nil {
		return nil, err
	}

	meta, err := parseMetaRoot(doc)
	if err != nil {
		return nil, oops.Code("PARSE").With("phase", "meta").Wrap(err)
	}

	types, err := parseSchemaTypes(meta.schemaDoc)
	if err != nil {
		return nil, oops.Code("PARSE").With("phase", "schema").Wrap(err)
	}

	for name := range types.selectors {
		if _, ok := selectors[name]; !ok {
			return nil, oops.Code("CONSTRUCTION").With("selector", name).
				Errorf("selector %q is required by the schema but was not supplied", name)
		}
	}

	cache := newSelectorCache(selectors)
	wrapped := make(map[string]Selector[T], len(selectors))
	for name := range selectors {
		wrapped[name] = cache.wrapped(name)
	}

	root, err := parseConditionTree(meta, types, wrapped)
	if err != nil {
		return nil, oops.Code("PARSE").With("phase", "tree").Wrap(err)
	}

	return &SolutionTree[T]{root: root, cache: cache}, nil
}

// checkSchemaVersion validates an optional top-level "version" field. Its
// absence is not an error — configurations with no version are treated as
// version 1, the only version this compiler has ever produced.
func checkSchemaVersion(doc map[string]any) error {
	raw, present := doc["version"]
	if !present {
		return nil
	}
	str, ok := raw.(string)
	if !ok {
		return oops.Code("CONSTRUCTION").Errorf(`"version" must be a string, got %T`, raw)
	}
	v, err := semver.NewVersion(str)
	if err != nil {
		return oops.Code("CONSTRUCTION").With("version", str).Wrap(err)
	}
	if v.Major() > supportedSchemaMajor {
		return oops.Code("CONSTRUCTION").With("version", str).
			Errorf("configuration requires major version %d, this compiler supports up to %d", v.Major(), supportedSchemaMajor)
	}
	return nil
}

func parseMetaRoot(doc map[string]any) (*metaRoot, error) {
	schemaMatcher := parser.NewDictExp(map[string]any{
		"selectors": parser.NewType(parser.KindDict, nil),
		"output":    parser.NewType(parser.KindDict, nil),
	}, nil)

	first := parser.NewDictExp(map[string]any{
		"schema":         schemaMatcher,
		switchApplyFirst: parser.NewType(parser.KindList, nil),
		"version":        parser.NewOpt(parser.NewType(parser.KindString, nil)),
	}, func(v any) any {
		d := v.(map[string]any)
		tree := map[string]any{switchApplyFirst: d[switchApplyFirst]}
		return &metaRoot{schemaDoc: d["schema"].(map[string]any), tree: tree, applyFirst: true}
	})

	all := parser.NewDictExp(map[string]any{
		"schema":       schemaMatcher,
		switchApplyAll: parser.NewType(parser.KindList, nil),
		"version":      parser.NewOpt(parser.NewType(parser.KindString, nil)),
	}, func(v any) any {
		d := v.(map[string]any)
		tree := map[string]any{switchApplyAll: d[switchApplyAll]}
		return &metaRoot{schemaDoc: d["schema"].(map[string]any), tree: tree, applyFirst: false}
	})

	root := parser.NewUnionExp(nil, first, all)

	parsed, err := root.Parse(doc, false)
	if err != nil {
		return nil, err
	}
	return parsed.(*metaRoot), nil
}

// buildSchemaTypeScope constructs the grammar for the tiny type
// sublanguage a "schema" sub-document is written in: "bool", "str",
// "number", a list of scalar literals (an enum), and, for output fields
// only, {"list of": <one of the above>}.
func buildSchemaTypeScope() *parser.Scope {
	return parser.NewScope("SchemaType", func(scoped func(string) *parser.Scoped) map[string]parser.Matcher {
		boolType := parser.NewConst("bool", func(any) any { return parser.NewType(parser.KindBool, nil) })
		strType := parser.NewConst("str", func(any) any { return parser.NewType(parser.KindString, nil) })
		numberType := parser.NewConst("number", func(any) any { return parser.NewType(parser.KindNumber, nil) })

		enum := parser.NewListOf(
			parser.NewUnionExp(nil,
				parser.NewConst(nil, nil),
				parser.NewType(parser.KindString, nil),
				parser.NewType(parser.KindNumber, nil),
				parser.NewType(parser.KindBool, nil),
			),
			func(v any) any { return parser.NewEnumerated(v.([]any), nil) },
		)

		array := parser.NewDictExp(map[string]any{
			"list of": parser.NewUnionExp(nil,
				scoped("bool_type"), scoped("str_type"), scoped("number_type"), scoped("enum"),
			),
		}, func(v any) any {
			d := v.(map[string]any)
			return parser.NewListOf(d["list of"].(parser.Matcher), nil)
		})

		selectorValue := parser.NewUnionExp(nil,
			scoped("bool_type"), scoped("str_type"), scoped("number_type"), scoped("enum"),
		)
		outputValue := parser.NewUnionExp(nil,
			scoped("bool_type"), scoped("str_type"), scoped("number_type"), scoped("enum"), scoped("array"),
		)

		root := parser.NewDictExp(map[string]any{
			"selectors": parser.NewDictOf(selectorValue, nil, nil),
			"output":    parser.NewDictOf(outputValue, nil, nil),
		}, func(v any) any {
			d := v.(map[string]any)
			return &schemaTypes{
				selectors: toMatcherMap(d["selectors"]),
				output:    toMatcherMap(d["output"]),
			}
		})

		return map[string]parser.Matcher{
			"bool_type":   boolType,
			"str_type":    strType,
			"number_type": numberType,
			"enum":        enum,
			"array":       array,
			"root":        root,
		}
	})
}

func toMatcherMap(v any) map[string]parser.Matcher {
	raw := v.(map[string]any)
	out := make(map[string]parser.Matcher, len(raw))
	for k, vv := range raw {
		out[k] = vv.(parser.Matcher)
	}
	return out
}

func parseSchemaTypes(schemaDoc map[string]any) (*schemaTypes, error) {
	scope := buildSchemaTypeScope()
	rootProd, err := scope.Resolve("root")
	if err != nil {
		return nil, err
	}
	parsed, err := rootProd.Parse(schemaDoc, false)
	if err != nil {
		return nil, err
	}
	return parsed.(*schemaTypes), nil
}

// parseConditionTree builds Phase C's grammar — Condition, SwitchFirst,
// SwitchAll, WhenClause, SetClause — parameterized by the selector and
// output type schemas derived in Phase B, and the host-supplied (already
// cache-wrapped) selector functions, then parses the tree sub-document
// against it.
func parseConditionTree[T any](meta *metaRoot, types *schemaTypes, selectors map[string]Selector[T]) (node[T], error) {
	scope := parser.NewScope("SolutionTree", func(scoped func(string) *parser.Scoped) map[string]parser.Matcher {
		switchFirst := parser.NewDictExp(map[string]any{
			switchApplyFirst: parser.NewListOf(scoped("Condition"), nil),
		}, func(v any) any {
			d := v.(map[string]any)
			return &SwitchApplyFirst[T]{Conditions: toConditions[T](d[switchApplyFirst])}
		})

		switchAll := parser.NewDictExp(map[string]any{
			switchApplyAll: parser.NewListOf(scoped("Condition"), nil),
		}, func(v any) any {
			d := v.(map[string]any)
			return &SwitchApplyAll[T]{Conditions: toConditions[T](d[switchApplyAll])}
		})

		whenFields := make(map[string]any, len(types.selectors))
		for name, valueType := range types.selectors {
			selectorName := name
			sel := selectors[name]
			single := parser.NewIdentity(valueType, func(v any) any {
				return NewValueMatcher[T](sel, []any{v})
			})
			many := parser.NewListOf(valueType, func(v any) any {
				return NewValueMatcher[T](sel, v.([]any))
			})
			whenFields[selectorName] = parser.NewOpt(parser.NewUnionExp(nil, single, many))
		}
		whenClauseMatcher := parser.NewDictExp(whenFields, func(v any) any {
			d := v.(map[string]any)
			matchers := make(map[string]*ValueMatcher[T], len(d))
			for k, vv := range d {
				matchers[k] = vv.(*ValueMatcher[T])
			}
			return NewQuery(matchers)
		})

		setFields := make(map[string]any, len(types.output))
		for name, valueType := range types.output {
			setFields[name] = parser.NewOpt(valueType)
		}
		setClauseMatcher := parser.NewDictExp(setFields, func(v any) any {
			return NewSetter(v.(map[string]any))
		})

		condition := parser.NewDictExp(map[string]any{
			annotationClause: parser.NewOpt(parser.NewType(parser.KindString, nil)),
			whenClause:       scoped("WhenClause"),
			setClause:        scoped("SetClause"),
			alsoClause: parser.NewOpt(parser.NewUnionExp(nil,
				parser.NewListOf(scoped("Condition"), func(v any) any {
					return &SwitchApplyFirst[T]{Conditions: toConditions[T](v)}
				}),
				scoped("SwitchAll"),
				scoped("SwitchFirst"),
			)),
		}, func(v any) any {
			d := v.(map[string]any)
			c := &Condition[T]{
				ID:     ulid.Make().String(),
				Query:  d[whenClause].(*Query[T]),
				Setter: d[setClause].(*Setter),
			}
			if ann, ok := d[annotationClause]; ok {
				c.Annotation = ann.(string)
			}
			if sub, ok := d[alsoClause]; ok {
				c.Subconditions = sub.(node[T])
			}
			return c
		})

		return map[string]parser.Matcher{
			"SwitchFirst": switchFirst,
			"SwitchAll":   switchAll,
			"WhenClause":  whenClauseMatcher,
			"SetClause":   setClauseMatcher,
			"Condition":   condition,
		}
	})

	var rootProd parser.Matcher
	var err error
	if meta.applyFirst {
		rootProd, err = scope.Resolve("SwitchFirst")
	} else {
		rootProd, err = scope.Resolve("SwitchAll")
	}
	if err != nil {
		return nil, err
	}

	parsed, err := rootProd.Parse(meta.tree, false)
	if err != nil {
		return nil, err
	}
	return parsed.(node[T]), nil
}

func toConditions[T any](v any) []*Condition[T] {
	raw := v.([]any)
	out := make([]*Condition[T], len(raw))
	for i, c := range raw {
		out[i] = c.(*Condition[T])
	}
	return out
}
