package compiler

import (
	"fmt"
	"strings"

	"github.com/tsgonest/tszod/internal/diagnostic"
	"github.com/tsgonest/tszod/internal/schema"
	"github.com/tsgonest/tszod/internal/typeast"
)

// spanValues is what a template span's type contributes.
type spanValues struct {
	values   []string
	nullable bool
}

// expandTemplate enumerates every string a template-literal type can take
// and compiles it to a literal or a union of literals. Spans that cannot be
// enumerated degrade the whole node.
func (cc *compilation) expandTemplate(tpl *typeast.Template, sc scope) (schema.Expr, wrap) {
	segments := [][]string{{tpl.Head}}
	var w wrap
	total := 1
	for _, span := range tpl.Spans {
		sv, reason := cc.harvest(sc.env.Resolve(span.Type), 0)
		if reason == "" && len(sv.values) == 0 {
			reason = "span has no string values"
		}
		if reason != "" {
			return cc.degrade(diagnostic.CategoryTemplateLiteral, fmt.Sprintf("template literal %s: %s; accepting any value", templateText(tpl), reason)), wrap{}
		}
		if total > MaxTemplateCombinations/len(sv.values) {
			return cc.degrade(diagnostic.CategoryTemplateExpansion, fmt.Sprintf("template literal %s expands to more than %d strings; accepting any value", templateText(tpl), MaxTemplateCombinations)), wrap{}
		}
		total *= len(sv.values)
		w.nullable = w.nullable || sv.nullable
		segments = append(segments, sv.values, []string{span.Tail})
	}

	combos := product(segments)
	if len(combos) == 1 {
		return schema.Z("literal", schema.String(combos[0])), w
	}
	lits := make([]schema.Expr, 0, len(combos))
	for _, s := range combos {
		lits = append(lits, schema.Z("literal", schema.String(s)))
	}
	return schema.Z("union", schema.ListOf(lits...)), w
}

// harvest collects the literal values of a span type. A non-empty reason
// means the span cannot be enumerated.
func (cc *compilation) harvest(t typeast.Type, depth int) (spanValues, string) {
	if depth > maxAliasHops {
		return spanValues{}, "alias chain too deep"
	}
	switch n := typeast.Unparen(t).(type) {
	case *typeast.Literal:
		switch n.LiteralKind {
		case typeast.LiteralNull:
			return spanValues{nullable: true}, ""
		case typeast.LiteralEnumMember:
			return cc.harvestEnumMember(n.Enum, n.Member)
		}
		return spanValues{values: []string{n.Value}}, ""
	case *typeast.Keyword:
		if n.Name == typeast.KeywordNull {
			return spanValues{nullable: true}, ""
		}
		return spanValues{}, fmt.Sprintf("${%s} spans cannot be enumerated", n.Name)
	case *typeast.Union:
		var out spanValues
		for _, arm := range n.Types {
			sv, reason := cc.harvest(arm, depth+1)
			if reason != "" {
				return spanValues{}, reason
			}
			out.values = append(out.values, sv.values...)
			out.nullable = out.nullable || sv.nullable
		}
		return out, ""
	case *typeast.Reference:
		if len(n.TypeArgs) > 0 {
			return spanValues{}, fmt.Sprintf("generic reference %s cannot be enumerated", n.Name)
		}
		decl, ok := cc.unit.Lookup(n.Name)
		if !ok {
			if enum, member, ok := strings.Cut(n.Name, "."); ok {
				return cc.harvestEnumMember(enum, member)
			}
			return spanValues{}, fmt.Sprintf("unresolved reference %s", n.Name)
		}
		switch d := decl.(type) {
		case *typeast.Alias:
			if len(d.TypeParams) > 0 {
				return spanValues{}, fmt.Sprintf("generic alias %s cannot be enumerated", d.Name)
			}
			return cc.harvest(d.Type, depth+1)
		case *typeast.Enum:
			var out spanValues
			for _, m := range d.Members {
				if m.Value == nil {
					return spanValues{}, fmt.Sprintf("enum member %s.%s has no initializer", d.Name, m.Name)
				}
				out.values = append(out.values, m.Value.Value)
			}
			return out, ""
		}
		return spanValues{}, fmt.Sprintf("%s is not a union of literals", n.Name)
	case *typeast.Template:
		var out spanValues
		if len(n.Spans) == 0 {
			out.values = []string{n.Head}
			return out, ""
		}
		return spanValues{}, "nested template literals cannot be enumerated"
	case nil:
		return spanValues{}, "missing span type"
	default:
		return spanValues{}, fmt.Sprintf("unsupported span type %s", n.Kind())
	}
}

func (cc *compilation) harvestEnumMember(enum, member string) (spanValues, string) {
	e, ok := cc.unit.LookupEnum(enum)
	if !ok {
		return spanValues{}, fmt.Sprintf("unresolved reference %s.%s", enum, member)
	}
	for _, m := range e.Members {
		if m.Name != member {
			continue
		}
		if m.Value == nil {
			return spanValues{}, fmt.Sprintf("enum member %s.%s has no initializer", enum, member)
		}
		return spanValues{values: []string{m.Value.Value}}, ""
	}
	return spanValues{}, fmt.Sprintf("enum %s has no member %s", enum, member)
}

// product concatenates one choice from each segment, in order, for every
// combination. Duplicates keep their first position.
func product(segments [][]string) []string {
	combos := []string{""}
	for _, seg := range segments {
		next := make([]string, 0, len(combos)*len(seg))
		for _, prefix := range combos {
			for _, s := range seg {
				next = append(next, prefix+s)
			}
		}
		combos = next
	}
	seen := make(map[string]bool, len(combos))
	out := combos[:0]
	for _, c := range combos {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// templateText renders a template type for messages.
func templateText(tpl *typeast.Template) string {
	var sb strings.Builder
	sb.WriteByte('`')
	sb.WriteString(tpl.Head)
	for _, s := range tpl.Spans {
		sb.WriteString("${")
		if s.Type != nil {
			sb.WriteString(string(typeast.Unparen(s.Type).Kind()))
		}
		sb.WriteString("}")
		sb.WriteString(s.Tail)
	}
	sb.WriteByte('`')
	return sb.String()
}
