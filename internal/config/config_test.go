package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "types.ast.json", cfg.Input)
	assert.Equal(t, "src/schemas.zod.ts", cfg.Output)
	assert.Equal(t, "./types", cfg.TypesImport)
	assert.Equal(t, []string{"Maybe"}, cfg.Maybe.TypeNames)
	assert.True(t, cfg.Maybe.Optional)
	assert.True(t, cfg.Maybe.Nullable)
	assert.Equal(t, SchemaNameConfig{Suffix: "Schema"}, cfg.SchemaName)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tszod.config.yaml", `
input: api/types.ast.yaml
output: gen/schemas.zod.ts
typesImport: ../api/types
maybe:
  typeNames: [Maybe, Flag]
  nullable: false
customFormats:
  phone: "^\\+?[0-9]{7,15}$"
schemaName: { prefix: "", suffix: Validator }
paths:
  "@api/*": [api/*]
workers: 8
strict: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "api/types.ast.yaml"), cfg.Input)
	assert.Equal(t, filepath.Join(dir, "gen/schemas.zod.ts"), cfg.Output)
	assert.Equal(t, "../api/types", cfg.TypesImport)
	assert.Equal(t, []string{"Maybe", "Flag"}, cfg.Maybe.TypeNames)
	assert.True(t, cfg.Maybe.Optional, "unset fields keep their defaults")
	assert.False(t, cfg.Maybe.Nullable)
	assert.Equal(t, `^\+?[0-9]{7,15}$`, cfg.CustomFormats["phone"])
	assert.Equal(t, "Validator", cfg.SchemaName.Suffix)
	assert.Equal(t, map[string][]string{"@api/*": {"api/*"}}, cfg.Paths)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.True(t, cfg.Strict)
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "elsewhere", "out.ts")
	path := writeFile(t, dir, "tszod.config.json", `{
		"input": "unit.json",
		"output": "`+filepath.ToSlash(abs)+`",
		"maybe": { "typeNames": ["Opt"] },
		"quiet": true
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "unit.json"), cfg.Input)
	assert.Equal(t, filepath.ToSlash(abs), filepath.ToSlash(cfg.Output), "absolute paths are kept")
	assert.Equal(t, []string{"Opt"}, cfg.Maybe.TypeNames)
	assert.True(t, cfg.Maybe.Nullable)
	assert.True(t, cfg.Quiet)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = Load(writeFile(t, dir, "tszod.config.toml", "input = 1"))
	assert.ErrorContains(t, err, "unsupported config file extension")

	_, err = Load(writeFile(t, dir, "bad.json", "not json"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = Load(writeFile(t, dir, "bad.yaml", "workers: [1"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = Load(writeFile(t, dir, "invalid.yaml", "output: schemas.js\n"))
	assert.ErrorContains(t, err, "invalid config")
	assert.ErrorContains(t, err, ".ts, .mts or .cts")
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", Discover(dir))

	jsonPath := writeFile(t, dir, "tszod.config.json", `{}`)
	assert.Equal(t, jsonPath, Discover(dir))

	yamlPath := writeFile(t, dir, "tszod.config.yaml", "")
	assert.Equal(t, yamlPath, Discover(dir), "YAML takes priority over JSON")
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	discovered := writeFile(t, dir, "tszod.config.yml", "")

	t.Setenv(EnvVar, "")
	assert.Equal(t, discovered, Locate("", dir))
	assert.Equal(t, "explicit.yaml", Locate("explicit.yaml", dir))

	t.Setenv(EnvVar, "from-env.json")
	assert.Equal(t, "from-env.json", Locate("", dir))
	assert.Equal(t, "explicit.yaml", Locate("explicit.yaml", dir), "an explicit path beats the environment")
}

func TestCompilerOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Maybe.TypeNames = []string{"Maybe", "Flag"}
	cfg.Maybe.Optional = false
	cfg.CustomFormats = map[string]string{"slug": "^[a-z-]+$"}
	cfg.SchemaName = SchemaNameConfig{Prefix: "Z", Suffix: ""}

	opts := cfg.CompilerOptions()
	assert.Equal(t, []string{"Maybe", "Flag"}, opts.MaybeTypeNames)
	assert.False(t, opts.MaybeOptional)
	assert.True(t, opts.MaybeNullable)
	assert.Equal(t, "^[a-z-]+$", opts.CustomFormats["slug"])
	require.NotNil(t, opts.SchemaName)
	assert.Equal(t, "ZUser", opts.SchemaName("User"))

	cfg.CustomFormats["slug"] = "changed"
	cfg.Maybe.TypeNames[0] = "changed"
	assert.Equal(t, "^[a-z-]+$", opts.CustomFormats["slug"], "options must not alias the config")
	assert.Equal(t, "Maybe", opts.MaybeTypeNames[0])
}
