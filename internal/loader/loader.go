// Package loader reads a solution-tree configuration document from disk.
// It owns only the file-system and JSON-decoding glue named out of scope
// for the compiler itself; the compiler in internal/soltree is handed a
// plain decoded map and never touches a *os.File.
package loader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
)

// Load reads path, verifies it looks like a solution-tree configuration
// file, and decodes it into a generic JSON document. Beyond requiring a
// JSON object, it only runs the coarse, advisory PreValidate check of the
// top-level shape; full validation is left to the compiler in
// internal/soltree.
func Load(path string) (map[string]any, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is validated by checkPath above
	if err != nil {
		return nil, oops.Code("CONFIG_LOAD").With("path", path).Wrap(err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, oops.Code("CONFIG_LOAD").With("path", path).
			With("reason", "invalid JSON").Wrap(err)
	}

	if err := PreValidate(doc); err != nil {
		return nil, oops.Code("CONFIG_LOAD").With("path", path).
			With("reason", "failed advisory schema pre-validation").Wrap(err)
	}

	return doc, nil
}

// checkPath mirrors check_json_path from the reference implementation this
// package is grounded on: the path must exist, be a regular file, and have
// a .json extension.
func checkPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return oops.Code("CONFIG_LOAD").With("path", path).
			With("reason", "configuration does not exist").Wrap(err)
	}
	if !info.Mode().IsRegular() {
		return oops.Code("CONFIG_LOAD").With("path", path).
			Errorf("%s is expected to be a regular file", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return oops.Code("CONFIG_LOAD").With("path", path).
			Errorf("%s is expected to be a JSON file", path)
	}
	return nil
}
