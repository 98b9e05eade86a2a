package render

import (
	"strings"

	"github.com/tsgonest/tszod/internal/schema"
)

// maxWidth is the widest list or inline object kept on one line.
const maxWidth = 80

// shapeTakers are the calls and modifiers whose object argument is an
// object shape. Shapes print one member per line.
var shapeTakers = map[string]bool{
	"object":       true,
	"strictObject": true,
	"looseObject":  true,
	"extend":       true,
}

// printer lays out expressions over several lines.
type printer struct {
	// lazy reports whether a reference to the named schema must be
	// deferred because the schema is not defined yet.
	lazy func(name string) bool
}

// Expr prints e on one line.
func Expr(e schema.Expr) string {
	return e.String()
}

// Format prints e over several lines the way File does, with no lazy
// references.
func Format(e schema.Expr) string {
	return printer{}.expr(e, 0)
}

func (p printer) expr(e schema.Expr, indent int) string {
	switch n := e.(type) {
	case *schema.Call:
		var sb strings.Builder
		sb.WriteString(schema.Namespace)
		sb.WriteByte('.')
		sb.WriteString(n.Name)
		p.args(&sb, n.Name, n.Args, indent)
		p.chain(&sb, n.Chain, indent)
		return sb.String()
	case *schema.Ref:
		var sb strings.Builder
		target := n.Name
		if len(n.Path) > 0 {
			target += "." + strings.Join(n.Path, ".")
		}
		if p.lazy != nil && p.lazy(n.Name) {
			target = schema.Namespace + ".lazy(() => " + target + ")"
		}
		sb.WriteString(target)
		p.chain(&sb, n.Chain, indent)
		return sb.String()
	case *schema.Object:
		return p.object(n, indent, false)
	case *schema.List:
		return p.list(n, indent)
	case *schema.Value:
		return n.Src
	case *schema.Raw:
		var sb strings.Builder
		sb.WriteString(n.Text)
		p.chain(&sb, n.Chain, indent)
		return sb.String()
	}
	return e.String()
}

func (p printer) args(sb *strings.Builder, callee string, args []schema.Expr, indent int) {
	sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if obj, ok := a.(*schema.Object); ok && shapeTakers[callee] {
			sb.WriteString(p.object(obj, indent, true))
			continue
		}
		sb.WriteString(p.expr(a, indent))
	}
	sb.WriteByte(')')
}

func (p printer) chain(sb *strings.Builder, chain []schema.Modifier, indent int) {
	for _, m := range chain {
		sb.WriteByte('.')
		sb.WriteString(m.Name)
		if !m.Verbatim {
			p.args(sb, m.Name, m.Args, indent)
		}
	}
}

func (p printer) object(o *schema.Object, indent int, shape bool) string {
	if len(o.Fields) == 0 {
		return "{}"
	}
	if !shape {
		parts := make([]string, len(o.Fields))
		for i, f := range o.Fields {
			parts[i] = schema.PropertyName(f.Name) + ": " + p.expr(f.Value, indent+1)
		}
		if line := "{ " + strings.Join(parts, ", ") + " }"; fits(line) {
			return line
		}
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, f := range o.Fields {
		pad(&sb, indent+1)
		sb.WriteString(schema.PropertyName(f.Name))
		sb.WriteString(": ")
		sb.WriteString(p.expr(f.Value, indent+1))
		sb.WriteString(",\n")
	}
	pad(&sb, indent)
	sb.WriteByte('}')
	return sb.String()
}

func (p printer) list(l *schema.List, indent int) string {
	items := make([]string, len(l.Items))
	for i, it := range l.Items {
		items[i] = p.expr(it, indent+1)
	}
	if line := "[" + strings.Join(items, ", ") + "]"; fits(line) {
		return line
	}
	var sb strings.Builder
	sb.WriteString("[\n")
	for _, it := range items {
		pad(&sb, indent+1)
		sb.WriteString(it)
		sb.WriteString(",\n")
	}
	pad(&sb, indent)
	sb.WriteByte(']')
	return sb.String()
}

func fits(line string) bool {
	return len(line) <= maxWidth && !strings.Contains(line, "\n")
}

func pad(sb *strings.Builder, indent int) {
	for i := 0; i < indent; i++ {
		sb.WriteString("  ")
	}
}
