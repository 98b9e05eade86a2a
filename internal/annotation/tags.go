// Package annotation holds the tag maps attached to declarations and members
// and turns them into schema modifiers.
package annotation

import (
	"sort"
	"strings"
)

// Reserved tag names.
const (
	TagSchema        = "schema"
	TagDiscriminator = "discriminator"
	TagStrict        = "strict"
	TagDescription   = "description"
	TagDefault       = "default"
	TagMinimum       = "minimum"
	TagMaximum       = "maximum"
	TagMinLength     = "minLength"
	TagMaxLength     = "maxLength"
	TagFormat        = "format"
	TagPattern       = "pattern"

	// ElementPrefix marks tags that annotate the elements of an array.
	ElementPrefix = "element-"
)

// Tags is an immutable tag map. The nil value is an empty map.
type Tags map[string]string

// FromMap copies m into a Tags value. Empty input yields nil.
func FromMap(m map[string]string) Tags {
	if len(m) == 0 {
		return nil
	}
	t := make(Tags, len(m))
	for k, v := range m {
		t[canonicalName(k)] = v
	}
	return t
}

// Get returns the value of a tag.
func (t Tags) Get(name string) (string, bool) {
	v, ok := t[name]
	return v, ok
}

// Has reports whether the tag is present.
func (t Tags) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Map returns a plain copy, or nil when empty.
func (t Tags) Map() map[string]string {
	if len(t) == 0 {
		return nil
	}
	m := make(map[string]string, len(t))
	for k, v := range t {
		m[k] = v
	}
	return m
}

// Names returns the tag names in sorted order.
func (t Tags) Names() []string {
	names := make([]string, 0, len(t))
	for k := range t {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Merge returns the union of t and over; entries in over win.
func (t Tags) Merge(over Tags) Tags {
	if len(over) == 0 {
		return t
	}
	if len(t) == 0 {
		return over
	}
	out := make(Tags, len(t)+len(over))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Element projects the element-* namespace: "element-minimum" becomes
// "minimum" on the returned map. Other tags are dropped.
func (t Tags) Element() Tags {
	var out Tags
	for k, v := range t {
		name, ok := strings.CutPrefix(k, ElementPrefix)
		if !ok || name == "" {
			continue
		}
		if out == nil {
			out = make(Tags)
		}
		out[name] = v
	}
	return out
}

// canonical spellings of tag names that are matched case-insensitively.
var canonical = map[string]string{
	"min":           TagMinimum,
	"minimum":       TagMinimum,
	"max":           TagMaximum,
	"maximum":       TagMaximum,
	"minlength":     TagMinLength,
	"maxlength":     TagMaxLength,
	"format":        TagFormat,
	"pattern":       TagPattern,
	"description":   TagDescription,
	"default":       TagDefault,
	"schema":        TagSchema,
	"discriminator": TagDiscriminator,
	"strict":        TagStrict,
}

func canonicalName(name string) string {
	lower := strings.ToLower(name)
	if rest, ok := strings.CutPrefix(lower, ElementPrefix); ok {
		if c, ok := canonical[rest]; ok {
			return ElementPrefix + c
		}
		return name
	}
	if c, ok := canonical[lower]; ok {
		return c
	}
	return name
}
