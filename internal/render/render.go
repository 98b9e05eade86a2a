// Package render writes compiled schemas as a zod TypeScript module.
package render

import (
	"sort"
	"strings"

	"github.com/tsgonest/tszod/internal/compiler"
	"github.com/tsgonest/tszod/internal/driver"
	"github.com/tsgonest/tszod/internal/schema"
)

// FileOptions configures File.
type FileOptions struct {
	// TypesImport is the module enums and recursive types are imported
	// from. Empty omits those imports.
	TypesImport string
	// Source names the unit in the generated header.
	Source string
}

// File renders every compiled declaration of report in dependency order.
// References to schemas defined later in the file, including a schema's
// references to itself, are deferred with z.lazy, and the schemas of a
// cycle are annotated with their type.
func File(report *driver.Report, opts FileOptions) string {
	byName := make(map[string]*compiler.Result, len(report.Results))
	local := make(map[string]bool, len(report.Results))
	for _, r := range report.Results {
		byName[r.Name] = r
		local[r.SchemaName] = true
	}
	recursive := make(map[string]bool)
	for _, cycle := range report.Cycles {
		for _, name := range cycle {
			recursive[name] = true
		}
	}

	e := NewEmitter()
	if opts.Source != "" {
		e.Line("// Code generated by tszod from %s. DO NOT EDIT.", opts.Source)
	} else {
		e.Line("// Code generated by tszod. DO NOT EDIT.")
	}
	e.Blank()
	e.Line(`import { z } from "zod";`)
	if opts.TypesImport != "" {
		from := schema.String(opts.TypesImport).Src
		if enums := enumImports(report.Results); len(enums) > 0 {
			e.Line("import { %s } from %s;", strings.Join(enums, ", "), from)
		}
		if len(recursive) > 0 {
			e.Line("import type { %s } from %s;", strings.Join(sortedKeys(recursive), ", "), from)
		}
	}

	emitted := make(map[string]bool, len(report.Results))
	p := printer{lazy: func(name string) bool { return local[name] && !emitted[name] }}
	for _, name := range report.Order {
		r, ok := byName[name]
		if !ok {
			continue
		}
		e.Blank()
		decl := r.SchemaName
		if recursive[name] && opts.TypesImport != "" {
			decl += ": z.ZodType<" + name + ">"
		}
		e.Line("export const %s = %s;", decl, p.expr(r.Schema, 0))
		emitted[r.SchemaName] = true
	}
	return e.String()
}

// enumImports lists the enum symbols the module refers to.
func enumImports(results []*compiler.Result) []string {
	set := make(map[string]bool)
	for _, r := range results {
		if r.IsEnum {
			set[r.Name] = true
		}
		for _, name := range r.EnumReferences {
			set[name] = true
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
