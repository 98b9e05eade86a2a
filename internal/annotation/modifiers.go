package annotation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tsgonest/tszod/internal/schema"
)

var (
	// ErrUnknownFormat is reported for a format tag naming no built-in or
	// custom format.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrInvalidValue is reported for a constraint tag whose value does not
	// parse.
	ErrInvalidValue = errors.New("invalid tag value")
)

// TagError describes a tag that was skipped.
type TagError struct {
	Tag   string
	Value string
	Err   error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("@%s %s: %v", e.Tag, e.Value, e.Err)
}

func (e *TagError) Unwrap() error { return e.Err }

// ReportFunc receives skipped tags.
type ReportFunc func(err *TagError)

// formatMethods maps format names to the string method that checks them.
var formatMethods = map[string]schema.Modifier{
	"email":     schema.Mod("email"),
	"uuid":      schema.Mod("uuid"),
	"url":       schema.Mod("url"),
	"uri":       schema.Mod("url"),
	"date-time": schema.Mod("datetime"),
	"datetime":  schema.Mod("datetime"),
	"date":      schema.Mod("date"),
	"time":      schema.Mod("time"),
	"ip":        schema.Mod("ip"),
	"ipv4":      schema.Mod("ip", schema.Obj(schema.F("version", schema.String("v4")))),
	"ipv6":      schema.Mod("ip", schema.Obj(schema.F("version", schema.String("v6")))),
	"cuid":      schema.Mod("cuid"),
	"cuid2":     schema.Mod("cuid2"),
	"ulid":      schema.Mod("ulid"),
	"emoji":     schema.Mod("emoji"),
}

// KnownFormat reports whether name is a built-in format.
func KnownFormat(name string) bool {
	_, ok := formatMethods[name]
	return ok
}

// Constrain applies constraint tags, the schema override and strict to e,
// in that order. Constraint tags only apply to the combinators they are
// meaningful for; anything else is left alone.
func Constrain(e schema.Expr, tags Tags, customFormats map[string]string, report ReportFunc) schema.Expr {
	if len(tags) == 0 {
		return e
	}
	if report == nil {
		report = func(*TagError) {}
	}

	var mods []schema.Modifier
	switch schema.Head(e) {
	case "string":
		mods = append(mods, lengthMods(tags, report)...)
		if f, ok := tags.Get(TagFormat); ok {
			if m, ok := formatModifier(f, customFormats); ok {
				mods = append(mods, m)
			} else {
				report(&TagError{Tag: TagFormat, Value: f, Err: ErrUnknownFormat})
			}
		}
		if p, ok := tags.Get(TagPattern); ok && p != "" {
			mods = append(mods, schema.Mod("regex", RegexLiteral(p)))
		}
	case "number", "bigint":
		mods = append(mods, rangeMods(tags, schema.Head(e) == "bigint", report)...)
	case "array", "set":
		mods = append(mods, lengthMods(tags, report)...)
	}
	e = schema.With(e, mods...)

	if o, ok := tags.Get(TagSchema); ok && strings.TrimSpace(o) != "" {
		e = Override(e, o)
	}
	if tags.Has(TagStrict) && tags[TagStrict] != "false" && IsObjectSchema(e) {
		e = schema.With(e, schema.Mod("strict"))
	}
	return e
}

// Document applies description and default tags.
func Document(e schema.Expr, tags Tags) schema.Expr {
	if d, ok := tags.Get(TagDescription); ok && d != "" {
		e = schema.With(e, schema.Mod("describe", schema.String(stripQuotes(d))))
	}
	if d, ok := tags.Get(TagDefault); ok && d != "" {
		e = schema.With(e, schema.Mod("default", schema.Text(d)))
	}
	return e
}

// Override applies a schema override tag. Text starting with "." is chained
// onto e; anything else replaces e with a namespace expression.
func Override(e schema.Expr, text string) schema.Expr {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "."); ok {
		return schema.With(e, schema.Prop(rest))
	}
	if strings.HasPrefix(text, schema.Namespace+".") {
		return schema.Text(text)
	}
	return schema.Text(schema.Namespace + "." + text)
}

// IsObjectSchema reports whether e is an object schema or a chain derived
// from one.
func IsObjectSchema(e schema.Expr) bool {
	if schema.Head(e) == "object" {
		return true
	}
	for _, m := range schema.ChainOf(e) {
		switch m.Name {
		case "extend", "omit", "pick", "partial", "required", "merge":
			return true
		}
	}
	return false
}

// RegexLiteral renders pattern as a regular-expression literal.
func RegexLiteral(pattern string) schema.Expr {
	var sb strings.Builder
	sb.WriteByte('/')
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '/':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('/')
	return schema.Text(sb.String())
}

func formatModifier(name string, custom map[string]string) (schema.Modifier, bool) {
	if m, ok := formatMethods[name]; ok {
		return m, true
	}
	if p, ok := custom[name]; ok {
		return schema.Mod("regex", RegexLiteral(p), schema.String("must be a valid "+name)), true
	}
	return schema.Modifier{}, false
}

func lengthMods(tags Tags, report ReportFunc) []schema.Modifier {
	var mods []schema.Modifier
	for _, c := range []struct{ tag, method string }{
		{TagMinLength, "min"},
		{TagMaxLength, "max"},
	} {
		v, ok := tags.Get(c.tag)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			report(&TagError{Tag: c.tag, Value: v, Err: ErrInvalidValue})
			continue
		}
		mods = append(mods, schema.Mod(c.method, schema.Number(strconv.Itoa(n))))
	}
	return mods
}

func rangeMods(tags Tags, bigint bool, report ReportFunc) []schema.Modifier {
	var mods []schema.Modifier
	for _, c := range []struct{ tag, method string }{
		{TagMinimum, "min"},
		{TagMaximum, "max"},
	} {
		v, ok := tags.Get(c.tag)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			report(&TagError{Tag: c.tag, Value: v, Err: ErrInvalidValue})
			continue
		}
		if bigint {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				report(&TagError{Tag: c.tag, Value: v, Err: ErrInvalidValue})
				continue
			}
			v += "n"
		}
		mods = append(mods, schema.Mod(c.method, schema.Number(v)))
	}
	return mods
}
