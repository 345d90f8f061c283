// Command schemagen emits a JSON Schema describing the shape of the
// soltree CLI's own YAML configuration file, for editor validation and CI
// checks. It has nothing to do with the solution-tree document schema
// language the compiler implements — that one is structural and
// data-driven, not reflected from a Go struct.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
)

// cliConfig mirrors internal/config.Config; kept as a separate doc-only
// struct here so this command's reflection target doesn't force export of
// fields the config package has no other reason to export.
type cliConfig struct {
	LogFormat      string `json:"log_format" jsonschema:"enum=json,enum=text,default=json"`
	LogLevel       string `json:"log_level" jsonschema:"default=info"`
	TreeSearchPath string `json:"tree_search_path" jsonschema:"default=."`
}

func main() {
	schema := jsonschema.Reflect(&cliConfig{})
	encoded, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(encoded))
}
