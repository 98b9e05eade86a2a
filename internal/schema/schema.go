// Package schema defines the validator schema expression tree produced by
// the compiler. Expressions are immutable once built; With returns a copy.
package schema

import (
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
)

// Namespace is the identifier every combinator call is qualified with.
const Namespace = "z"

// Kind identifies the variant of an expression.
type Kind string

const (
	KindCall   Kind = "call"   // z.name(args).chain
	KindRef    Kind = "ref"    // name.path.chain
	KindObject Kind = "object" // { a: x, b: y }
	KindList   Kind = "list"   // [x, y]
	KindValue  Kind = "value"  // "a", 1, true
	KindRaw    Kind = "raw"    // verbatim source text
)

// Expr is a schema expression.
type Expr interface {
	Kind() Kind
	String() string
	exprNode()
}

// Modifier is one chained method. A Verbatim modifier prints its Name after
// the dot as-is, with no argument list (property access or override text).
type Modifier struct {
	Name     string
	Args     []Expr
	Verbatim bool
}

// Call is a combinator call on the namespace.
type Call struct {
	Name  string
	Args  []Expr
	Chain []Modifier
}

// Ref names another compiled schema. Path segments are joined with dots
// before the chain (e.g. shape, name, items[0], element, unwrap()).
type Ref struct {
	Name  string
	Path  []string
	Chain []Modifier
}

// Field is one name -> schema pair of an Object.
type Field struct {
	Name  string
	Value Expr
}

// Object is an object literal whose values are schemas (or plain values).
type Object struct {
	Fields []Field
}

// List is an array literal of schemas.
type List struct {
	Items []Expr
}

// Value is a scalar literal. Src holds its source text ("\"a\"", "1", "true").
type Value struct {
	Src string
}

// Raw is verbatim source text with an optional chain.
type Raw struct {
	Text  string
	Chain []Modifier
}

func (*Call) Kind() Kind   { return KindCall }
func (*Ref) Kind() Kind    { return KindRef }
func (*Object) Kind() Kind { return KindObject }
func (*List) Kind() Kind   { return KindList }
func (*Value) Kind() Kind  { return KindValue }
func (*Raw) Kind() Kind    { return KindRaw }

func (*Call) exprNode()   {}
func (*Ref) exprNode()    {}
func (*Object) exprNode() {}
func (*List) exprNode()   {}
func (*Value) exprNode()  {}
func (*Raw) exprNode()    {}

// Z builds a namespace combinator call.
func Z(name string, args ...Expr) *Call {
	return &Call{Name: name, Args: args}
}

// Named builds a reference to a compiled schema.
func Named(name string, path ...string) *Ref {
	return &Ref{Name: name, Path: path}
}

// Obj builds an object literal.
func Obj(fields ...Field) *Object {
	return &Object{Fields: fields}
}

// F builds an object field.
func F(name string, value Expr) Field {
	return Field{Name: name, Value: value}
}

// ListOf builds an array literal.
func ListOf(items ...Expr) *List {
	return &List{Items: items}
}

// Text builds a raw expression.
func Text(src string) *Raw {
	return &Raw{Text: src}
}

// String builds a quoted string value.
func String(s string) *Value {
	return &Value{Src: quote(s)}
}

// Number builds a numeric value from its source text.
func Number(src string) *Value {
	return &Value{Src: src}
}

// Bool builds a boolean value.
func Bool(b bool) *Value {
	if b {
		return &Value{Src: "true"}
	}
	return &Value{Src: "false"}
}

// Mod builds a chained method call.
func Mod(name string, args ...Expr) Modifier {
	return Modifier{Name: name, Args: args}
}

// Prop builds a verbatim chain segment (".shape", ".transform(fn)").
func Prop(text string) Modifier {
	return Modifier{Name: text, Verbatim: true}
}

// With returns a copy of e with mods appended to its chain. Only calls,
// references and raw expressions can carry a chain.
func With(e Expr, mods ...Modifier) Expr {
	if len(mods) == 0 {
		return e
	}
	switch n := e.(type) {
	case *Call:
		c := *n
		c.Chain = appendChain(n.Chain, mods)
		return &c
	case *Ref:
		r := *n
		r.Chain = appendChain(n.Chain, mods)
		return &r
	case *Raw:
		r := *n
		r.Chain = appendChain(n.Chain, mods)
		return &r
	}
	panic(fmt.Sprintf("schema: cannot chain onto %s expression", e.Kind()))
}

func appendChain(chain, mods []Modifier) []Modifier {
	out := make([]Modifier, 0, len(chain)+len(mods))
	out = append(out, chain...)
	return append(out, mods...)
}

// ChainOf returns the modifier chain of e (nil for expressions without one).
func ChainOf(e Expr) []Modifier {
	switch n := e.(type) {
	case *Call:
		return n.Chain
	case *Ref:
		return n.Chain
	case *Raw:
		return n.Chain
	}
	return nil
}

// Head returns the combinator name of a call, or "" for other expressions.
func Head(e Expr) string {
	if c, ok := e.(*Call); ok {
		return c.Name
	}
	return ""
}

// HasModifier reports whether e's chain contains a modifier named name.
func HasModifier(e Expr, name string) bool {
	for _, m := range ChainOf(e) {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Any is the catch-all combinator.
func Any() *Call { return Z("any") }

// --- printing ---

func (c *Call) String() string {
	var sb strings.Builder
	sb.WriteString(Namespace)
	sb.WriteByte('.')
	sb.WriteString(c.Name)
	writeArgs(&sb, c.Args)
	writeChain(&sb, c.Chain)
	return sb.String()
}

func (r *Ref) String() string {
	var sb strings.Builder
	sb.WriteString(r.Name)
	for _, p := range r.Path {
		sb.WriteByte('.')
		sb.WriteString(p)
	}
	writeChain(&sb, r.Chain)
	return sb.String()
}

func (o *Object) String() string {
	if len(o.Fields) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, f := range o.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(PropertyName(f.Name))
		sb.WriteString(": ")
		sb.WriteString(f.Value.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, it := range l.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(it.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (v *Value) String() string { return v.Src }

func (r *Raw) String() string {
	var sb strings.Builder
	sb.WriteString(r.Text)
	writeChain(&sb, r.Chain)
	return sb.String()
}

func writeArgs(sb *strings.Builder, args []Expr) {
	sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte(')')
}

func writeChain(sb *strings.Builder, chain []Modifier) {
	for _, m := range chain {
		sb.WriteByte('.')
		sb.WriteString(m.Name)
		if !m.Verbatim {
			writeArgs(sb, m.Args)
		}
	}
}

// PropertyName quotes name when it is not a valid identifier.
func PropertyName(name string) string {
	if isIdentifier(name) {
		return name
	}
	return quote(name)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// quote renders s as a double-quoted string literal.
func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// Invalid UTF-8; fall back to a lossy literal.
		return fmt.Sprintf("%q", strings.ToValidUTF8(s, "�"))
	}
	return string(b)
}
