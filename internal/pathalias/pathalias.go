// Package pathalias resolves tsconfig-style path aliases in the import
// specifiers of generated modules.
//
// Matching follows TypeScript's tryLoadModuleUsingPaths:
//  1. Exact matches are checked first
//  2. Wildcard patterns are matched by longest prefix (ties broken by longest suffix)
//  3. The matched wildcard text is substituted into the first target
//  4. Targets are resolved relative to the base directory
package pathalias

import (
	"path/filepath"
	"strings"
)

// Resolver rewrites aliased import specifiers into relative ones.
type Resolver struct {
	baseDir string              // absolute dir path targets are resolved against
	aliases map[string][]string // pattern → targets (e.g., "@app/*" → ["src/*"])
}

// New creates a resolver. baseDir is usually the config file's directory.
func New(baseDir string, paths map[string][]string) *Resolver {
	return &Resolver{baseDir: baseDir, aliases: paths}
}

// HasAliases reports whether the resolver has any path aliases to resolve.
func (r *Resolver) HasAliases() bool {
	return r != nil && len(r.aliases) > 0
}

// Resolve returns the specifier fromFile should use to import specifier.
// Relative specifiers, absolute paths and unmatched bare specifiers (npm
// packages) are returned unchanged.
func (r *Resolver) Resolve(specifier, fromFile string) string {
	if !r.HasAliases() || strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		return specifier
	}

	if targets, ok := r.aliases[specifier]; ok && !strings.Contains(specifier, "*") && len(targets) > 0 {
		return r.relative(targets[0], fromFile)
	}

	var (
		best      []string
		matched   string
		prefixLen = -1
		suffixLen = -1
	)
	for key, targets := range r.aliases {
		star := strings.IndexByte(key, '*')
		if star < 0 || len(targets) == 0 {
			continue
		}
		prefix, suffix := key[:star], key[star+1:]
		if len(specifier) < len(prefix)+len(suffix) ||
			!strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) {
			continue
		}
		if len(prefix) > prefixLen || (len(prefix) == prefixLen && len(suffix) > suffixLen) {
			prefixLen, suffixLen = len(prefix), len(suffix)
			best = targets
			matched = specifier[len(prefix) : len(specifier)-len(suffix)]
		}
	}
	if best == nil {
		return specifier
	}
	return r.relative(strings.Replace(best[0], "*", matched, 1), fromFile)
}

// relative turns a target into an extensionless import relative to fromFile.
func (r *Resolver) relative(target, fromFile string) string {
	path := filepath.Join(r.baseDir, strings.TrimPrefix(target, "./"))
	rel, err := filepath.Rel(filepath.Dir(fromFile), path)
	if err != nil {
		return target
	}
	rel = filepath.ToSlash(trimExtension(rel))
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

func trimExtension(p string) string {
	for _, ext := range []string{".d.ts", ".ts", ".tsx", ".mts", ".cts"} {
		if strings.HasSuffix(p, ext) {
			return strings.TrimSuffix(p, ext)
		}
	}
	return p
}
