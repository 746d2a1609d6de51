// Package config loads nuspec-lsp settings from defaults, an optional TOML
// file, NUSPEC_LSP_* environment variables and command-line overrides, in
// that order of precedence.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = ".nuspec-lsp.toml"

	// EnvPrefix prefixes environment overrides. Double underscores separate
	// sections: NUSPEC_LSP_CHECK__JOBS=4 sets check.jobs.
	EnvPrefix = "NUSPEC_LSP_"

	// DefaultInclude matches the files an editor hands to the server.
	DefaultInclude = "**/*.nuspec"
)

// Config is the merged configuration.
type Config struct {
	LogLevel string `koanf:"log-level"`
	LogFile  string `koanf:"log-file"`
	Check    Check  `koanf:"check"`
}

// Check configures the check command.
type Check struct {
	// Include are doublestar patterns selecting files below a directory.
	Include []string `koanf:"include"`
	// Exclude are .dockerignore-style patterns removing files again.
	Exclude []string `koanf:"exclude"`
	// Color is one of auto, always or never.
	Color string `koanf:"color"`
	// Jobs bounds parallel file checks. Zero means one per CPU.
	Jobs int `koanf:"jobs"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		LogFile:  "",
		Check: Check{
			Include: []string{DefaultInclude},
			Exclude: []string{},
			Color:   "auto",
			Jobs:    0,
		},
	}
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// Path is an explicit config file. It must exist.
	Path string
	// Dir is searched for FileName when Path is empty.
	Dir string
	// Overrides are dotted keys set from command-line flags.
	Overrides map[string]any
}

// Load merges all configuration sources and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path, err := resolvePath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	if err := validate(k.Raw()); err != nil {
		if path != "" {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func resolvePath(opts LoadOptions) (string, error) {
	if opts.Path != "" {
		if _, err := os.Stat(opts.Path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return opts.Path, nil
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	candidate := filepath.Join(dir, FileName)
	if _, err := os.Stat(candidate); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config file: %w", err)
	}
	return candidate, nil
}

// envKey maps NUSPEC_LSP_CHECK__JOBS to check.jobs and converts values
// whose key expects a list or a number.
func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	key = strings.ReplaceAll(key, "_", "-")

	switch key {
	case "check.include", "check.exclude":
		var out []string
		for p := range strings.SplitSeq(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return key, out
	case "check.jobs":
		if n, err := strconv.Atoi(value); err == nil {
			return key, n
		}
	}
	return key, value
}

//go:embed config.schema.json
var schemaJSON []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("config.schema.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("config.schema.json")
})

// validate checks the merged map. Values from different providers have
// different Go types, so the map is normalized through JSON first.
func validate(raw map[string]any) error {
	sch, err := compileSchema()
	if err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return sch.Validate(inst)
}
