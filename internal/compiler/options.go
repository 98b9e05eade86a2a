package compiler

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// MaxInstantiationDepth bounds nested generic expansions.
	MaxInstantiationDepth = 32
	// MaxTemplateCombinations bounds template-literal expansion.
	MaxTemplateCombinations = 1000
)

// Options configures a Compiler.
type Options struct {
	// MaybeTypeNames are the reserved boolean-generic interfaces and Maybe
	// wrappers.
	MaybeTypeNames []string
	// MaybeOptional and MaybeNullable select the modifiers applied to members
	// of a reserved interface instantiated with a non-true argument, and to
	// the value of a Maybe wrapper.
	MaybeOptional bool
	MaybeNullable bool
	// CustomFormats maps format tag values to regular expressions.
	CustomFormats map[string]string
	// SchemaName derives the identifier of a declaration's compiled schema.
	SchemaName func(declaration string) string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaybeTypeNames: []string{"Maybe"},
		MaybeOptional:  true,
		MaybeNullable:  true,
		SchemaName:     SchemaNamer("", "Schema"),
	}
}

// lower folds s to lower case. Casers are stateful, so each call builds
// its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// SchemaNamer returns a deriver producing prefix + name + suffix, with the
// first letter of name lowered when there is no prefix ("User" becomes
// "userSchema").
func SchemaNamer(prefix, suffix string) func(string) string {
	return func(name string) string {
		if prefix == "" {
			name = lowerFirst(name)
		}
		return prefix + name + suffix
	}
}

func lowerFirst(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return lower(s[:size]) + s[size:]
}
