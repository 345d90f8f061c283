package main

import (
	"github.com/sem0ark/soltree/internal/soltree"
)

// genericValue is the host value type the CLI evaluates against: a plain
// decoded-JSON object, looked up by selector name. A library caller with an
// actual domain type supplies its own Selector[T] functions instead; the
// CLI exists to exercise the compiler and evaluator against arbitrary JSON
// input without requiring a compiled-in Go type.
type genericValue = map[string]any

// autoSelectors builds one passthrough selector per name the document's
// schema declares, each returning value[name]. This lets the CLI compile
// any well-formed document without knowing its selector names in advance.
func autoSelectors(doc map[string]any) map[string]soltree.Selector[genericValue] {
	schema, _ := doc["schema"].(map[string]any)
	names, _ := schema["selectors"].(map[string]any)

	out := make(map[string]soltree.Selector[genericValue], len(names))
	for name := range names {
		name := name
		out[name] = func(v genericValue) any { return v[name] }
	}
	return out
}
