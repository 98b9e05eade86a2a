package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tsgonest/tszod/internal/annotation"
)

// ValidationResult holds config validation results.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// ValidateDetailed performs thorough config validation with suggestions.
func (c *Config) ValidateDetailed() *ValidationResult {
	result := &ValidationResult{}

	// Input / output
	if c.Input == "" {
		result.Errors = append(result.Errors, "input: a source unit path is required")
	} else {
		switch strings.ToLower(filepath.Ext(c.Input)) {
		case ".json", ".yaml", ".yml":
		default:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("input: extension %q is unusual; units are decoded as JSON unless they end in .yaml or .yml", filepath.Ext(c.Input)))
		}
	}
	if c.Output == "" {
		result.Errors = append(result.Errors, "output: a module path is required")
	} else {
		switch ext := filepath.Ext(c.Output); ext {
		case ".ts", ".mts", ".cts":
		default:
			result.Errors = append(result.Errors,
				fmt.Sprintf("output: must have a .ts, .mts or .cts extension, got %q", ext))
		}
	}

	// Maybe
	for _, name := range c.Maybe.TypeNames {
		if !identifierPattern.MatchString(name) {
			result.Errors = append(result.Errors, fmt.Sprintf("maybe.typeNames: %q is not a type name", name))
		}
	}
	if len(c.Maybe.TypeNames) > 0 && !c.Maybe.Optional && !c.Maybe.Nullable {
		result.Warnings = append(result.Warnings,
			"maybe: optional and nullable are both false, so Maybe<T> compiles to T")
	}

	// Custom formats
	for name, pattern := range c.CustomFormats {
		if annotation.KnownFormat(name) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("customFormats.%s: shadowed by the built-in format of the same name", name))
		}
		if pattern == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("customFormats.%s: pattern must not be empty", name))
			continue
		}
		if _, err := regexp.Compile(pattern); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("customFormats.%s: pattern does not parse as RE2 (%v); it is emitted verbatim", name, err))
		}
	}

	// Path aliases
	for pattern, targets := range c.Paths {
		if strings.Count(pattern, "*") > 1 {
			result.Errors = append(result.Errors, fmt.Sprintf("paths.%s: a pattern may contain at most one '*'", pattern))
		}
		if len(targets) == 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("paths.%s: at least one target is required", pattern))
		} else if len(targets) > 1 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("paths.%s: only the first target is used", pattern))
		}
	}
	if c.TypesImport == "" && len(c.Paths) > 0 {
		result.Warnings = append(result.Warnings, "paths: set but typesImport is empty, so no import is resolved")
	}

	// Schema names
	if c.SchemaName.Prefix == "" && c.SchemaName.Suffix == "" {
		result.Warnings = append(result.Warnings,
			"schemaName: no prefix or suffix, so schema names differ from type names only in case")
	}
	for _, part := range []string{c.SchemaName.Prefix, c.SchemaName.Suffix} {
		if part != "" && !identifierPattern.MatchString("x"+part) {
			result.Errors = append(result.Errors, fmt.Sprintf("schemaName: %q cannot appear in an identifier", part))
		}
	}

	// Driver
	if c.Workers < 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("workers: must not be negative, got %d", c.Workers))
	}
	if c.CacheSize < 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("cacheSize: must not be negative, got %d", c.CacheSize))
	}
	if c.Strict && c.Quiet {
		result.Warnings = append(result.Warnings, "strict and quiet are both set; quiet drops warnings before strict can escalate them")
	}

	return result
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}
