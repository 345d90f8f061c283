// Package config loads the soltree CLI's own configuration: log format and
// level, and the default directory to search for tree documents. The
// compiler and evaluator in
// internal/soltree take no configuration of their own — they are
// constructed directly from a decoded document and a selector table — this
// package only configures the surrounding CLI.
package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the CLI's runtime settings, layered from defaults, an
// optional YAML config file, and command-line flags, in that priority
// order (flags win).
type Config struct {
	LogFormat      string `koanf:"log_format"`
	LogLevel       string `koanf:"log_level"`
	TreeSearchPath string `koanf:"tree_search_path"`
}

func defaults() *koanf.Koanf {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(map[string]any{
		"log_format":       "json",
		"log_level":        "info",
		"tree_search_path": ".",
	}, "."), nil)
	return k
}

// Load builds a Config from, in increasing priority: built-in defaults, the
// YAML file at configPath (skipped if empty), and any flags set on fs.
func Load(configPath string, fs *pflag.FlagSet) (*Config, error) {
	k := defaults()

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD").With("path", configPath).Wrap(err)
		}
	}

	if fs != nil {
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD").With("operation", "read flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD").With("operation", "unmarshal").Wrap(err)
	}
	return &cfg, nil
}
