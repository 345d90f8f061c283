package loader

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// metaSchemaDoc is a coarse JSON Schema for the top-level shape of a
// solution-tree configuration document. It exists purely as a fast,
// friendlier first error message for obviously malformed documents
// (missing "schema", neither switch clause present, wrong JSON types at
// the top level); it is never authoritative. The internal/soltree compiler
// alone decides whether a document actually compiles, via the same
// structural grammar it uses to build the tree.
const metaSchemaDoc = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["schema"],
	"properties": {
		"version": {"type": "string"},
		"schema": {
			"type": "object",
			"required": ["selectors", "output"],
			"properties": {
				"selectors": {"type": "object"},
				"output": {"type": "object"}
			}
		},
		"apply first": {"type": "array"},
		"apply all": {"type": "array"}
	},
	"oneOf": [
		{"required": ["apply first"]},
		{"required": ["apply all"]}
	]
}`

const metaSchemaID = "soltree://config-meta-schema.json"

func compileMetaSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(metaSchemaDoc))
	if err != nil {
		return nil, err
	}
	if err := compiler.AddResource(metaSchemaID, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(metaSchemaID)
}

// PreValidate runs advisory JSON-Schema validation over a decoded
// configuration document. A document that passes here may still fail the
// canonical compiler; a document that fails here is certainly broken.
func PreValidate(doc map[string]any) error {
	schema, err := compileMetaSchema()
	if err != nil {
		return err
	}
	return schema.Validate(doc)
}
