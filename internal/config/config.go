package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"gopkg.in/yaml.v3"

	"github.com/tsgonest/tszod/internal/compiler"
)

// EnvVar names the environment variable that points at a config file.
const EnvVar = "TSZOD_CONFIG"

// configFiles lists the names Discover looks for, highest priority first.
var configFiles = []string{
	"tszod.config.yaml",
	"tszod.config.yml",
	"tszod.config.json",
}

// Config represents the tszod configuration.
type Config struct {
	Input       string `json:"input" yaml:"input"`                                 // Source unit (.json, .yaml or .yml)
	Output      string `json:"output" yaml:"output"`                               // Rendered zod module
	TypesImport string `json:"typesImport,omitempty" yaml:"typesImport,omitempty"` // Module enum symbols are imported from

	// Paths maps tsconfig-style aliases to targets relative to the config
	// file, so typesImport may name an alias.
	Paths map[string][]string `json:"paths,omitempty" yaml:"paths,omitempty"`

	Maybe         MaybeConfig       `json:"maybe" yaml:"maybe"`
	CustomFormats map[string]string `json:"customFormats,omitempty" yaml:"customFormats,omitempty"`
	SchemaName    SchemaNameConfig  `json:"schemaName" yaml:"schemaName"`

	Workers   int  `json:"workers,omitempty" yaml:"workers,omitempty"`     // Parallel declaration compiles
	CacheSize int  `json:"cacheSize,omitempty" yaml:"cacheSize,omitempty"` // In-process compiled-result memo entries
	Strict    bool `json:"strict,omitempty" yaml:"strict,omitempty"`       // Warnings become errors
	Quiet     bool `json:"quiet,omitempty" yaml:"quiet,omitempty"`         // Suppress warnings
}

// MaybeConfig configures reserved boolean-generic interfaces and Maybe
// wrappers.
type MaybeConfig struct {
	TypeNames []string `json:"typeNames" yaml:"typeNames"`
	Optional  bool     `json:"optional" yaml:"optional"`
	Nullable  bool     `json:"nullable" yaml:"nullable"`
}

// SchemaNameConfig derives schema identifiers from declaration names.
type SchemaNameConfig struct {
	Prefix string `json:"prefix" yaml:"prefix"`
	Suffix string `json:"suffix" yaml:"suffix"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Input:       "types.ast.json",
		Output:      "src/schemas.zod.ts",
		TypesImport: "./types",
		Maybe: MaybeConfig{
			TypeNames: []string{"Maybe"},
			Optional:  true,
			Nullable:  true,
		},
		SchemaName: SchemaNameConfig{Suffix: "Schema"},
		Workers:    4,
		CacheSize:  256,
	}
}

// Discover returns the highest-priority config file in dir, or "" when
// there is none.
func Discover(dir string) string {
	for _, name := range configFiles {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Locate picks the config file to load: an explicit path wins, then
// $TSZOD_CONFIG, then Discover(dir).
func Locate(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvVar); env != "" {
		return env
	}
	return Discover(dir)
}

// Load reads and parses a tszod config file over DefaultConfig. Relative
// input and output paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	config := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	case ".json":
		err = json.Unmarshal(data, &config)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q (use .yaml, .yml or .json)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}

	base := filepath.Dir(path)
	config.Input = resolve(base, config.Input)
	config.Output = resolve(base, config.Output)
	return &config, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	if r := c.ValidateDetailed(); !r.IsValid() {
		return fmt.Errorf("%s", strings.Join(r.Errors, "; "))
	}
	return nil
}

// CompilerOptions converts the config into compiler options.
func (c *Config) CompilerOptions() compiler.Options {
	opts := compiler.Options{
		MaybeTypeNames: append([]string(nil), c.Maybe.TypeNames...),
		MaybeOptional:  c.Maybe.Optional,
		MaybeNullable:  c.Maybe.Nullable,
		SchemaName:     compiler.SchemaNamer(c.SchemaName.Prefix, c.SchemaName.Suffix),
	}
	if len(c.CustomFormats) > 0 {
		opts.CustomFormats = make(map[string]string, len(c.CustomFormats))
		for k, v := range c.CustomFormats {
			opts.CustomFormats[k] = v
		}
	}
	return opts
}
