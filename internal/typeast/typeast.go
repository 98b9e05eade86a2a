// Package typeast defines the structural type model consumed by the schema
// compiler. Trees are produced by an external TypeScript parser and are
// read-only for the duration of a compilation pass.
package typeast

import "github.com/tsgonest/tszod/internal/annotation"

// Kind identifies the variant of a type expression.
type Kind string

const (
	KindKeyword       Kind = "keyword"       // string, number, boolean, ...
	KindReference     Kind = "reference"     // Name or Name<Args>
	KindObject        Kind = "object"        // { a: T; [k: string]: V }
	KindArray         Kind = "array"         // T[]
	KindTuple         Kind = "tuple"         // [A, B, ...C[]]
	KindUnion         Kind = "union"         // A | B
	KindIntersection  Kind = "intersection"  // A & B
	KindLiteral       Kind = "literal"       // "a", 1, -1, true, null, E.M
	KindFunction      Kind = "function"      // (a: A) => R
	KindTemplate      Kind = "template"      // `x-${T}`
	KindIndexedAccess Kind = "indexedAccess" // T["k"]
	KindParenthesized Kind = "parenthesized" // (T)
	KindUnsupported   Kind = "unsupported"   // conditional, mapped, typeof, keyof, ...
)

// Type is a type expression. The set of implementations is closed; every
// consumer switches over the concrete types below.
type Type interface {
	Kind() Kind
	typeNode()
}

// Keyword names a primitive keyword type.
type Keyword struct {
	Name string
}

// Keyword names understood by the compiler.
const (
	KeywordString    = "string"
	KeywordNumber    = "number"
	KeywordBoolean   = "boolean"
	KeywordBigInt    = "bigint"
	KeywordAny       = "any"
	KeywordUnknown   = "unknown"
	KeywordNever     = "never"
	KeywordVoid      = "void"
	KeywordUndefined = "undefined"
	KeywordNull      = "null"
	KeywordObject    = "object"
	KeywordSymbol    = "symbol"
)

// Reference is a named type reference, optionally with type arguments.
// Qualified names keep their dots (e.g. "Color.Red").
type Reference struct {
	Name     string
	TypeArgs []Type
}

// Member is a property of an object type or interface body.
type Member struct {
	Name     string
	Type     Type
	Optional bool
	Readonly bool
	Tags     annotation.Tags
}

// IndexSignature is `[key: K]: V`.
type IndexSignature struct {
	KeyName   string
	KeyType   Type
	ValueType Type
	Tags      annotation.Tags
}

// Object is an object literal type or interface body.
type Object struct {
	Members []Member
	Index   *IndexSignature
}

// Array is the `T[]` sugar.
type Array struct {
	Elem Type
}

// TupleElement is one slot of a tuple. Name is set for named tuple members.
type TupleElement struct {
	Name     string
	Type     Type
	Optional bool
	Rest     bool
}

// Tuple is `[A, B, ...C]`.
type Tuple struct {
	Elements []TupleElement
}

// Union is `A | B | ...` in source order.
type Union struct {
	Types []Type
}

// Intersection is `A & B & ...` in source order.
type Intersection struct {
	Types []Type
}

// LiteralKind classifies a literal type.
type LiteralKind string

const (
	LiteralString     LiteralKind = "string"
	LiteralNumber     LiteralKind = "number"
	LiteralBoolean    LiteralKind = "boolean"
	LiteralNull       LiteralKind = "null"
	LiteralEnumMember LiteralKind = "enumMember"
)

// Literal is a literal type. Value holds the source text of numbers
// (including a leading minus for signed numbers), the unquoted text of
// strings, and "true"/"false" for booleans. Enum and Member are set for
// qualified enum-member literals.
type Literal struct {
	LiteralKind LiteralKind
	Value       string
	Enum        string
	Member      string
}

// Param is a function parameter.
type Param struct {
	Name     string
	Type     Type
	Optional bool
	Rest     bool
}

// Function is `(params) => Return`.
type Function struct {
	Params []Param
	Return Type
}

// TemplateSpan is one `${Type}tail` segment of a template literal.
type TemplateSpan struct {
	Type Type
	Tail string
}

// Template is a template-literal type: Head followed by spans.
type Template struct {
	Head  string
	Spans []TemplateSpan
}

// IndexedAccess is `Object[Index]`.
type IndexedAccess struct {
	Object Type
	Index  Type
}

// Parenthesized wraps a single inner type.
type Parenthesized struct {
	Inner Type
}

// Unsupported stands for syntax the compiler does not translate. Syntax
// names the original construct ("conditional", "mapped", ...).
type Unsupported struct {
	Syntax string
}

func (*Keyword) Kind() Kind       { return KindKeyword }
func (*Reference) Kind() Kind     { return KindReference }
func (*Object) Kind() Kind        { return KindObject }
func (*Array) Kind() Kind         { return KindArray }
func (*Tuple) Kind() Kind         { return KindTuple }
func (*Union) Kind() Kind         { return KindUnion }
func (*Intersection) Kind() Kind  { return KindIntersection }
func (*Literal) Kind() Kind       { return KindLiteral }
func (*Function) Kind() Kind      { return KindFunction }
func (*Template) Kind() Kind      { return KindTemplate }
func (*IndexedAccess) Kind() Kind { return KindIndexedAccess }
func (*Parenthesized) Kind() Kind { return KindParenthesized }
func (*Unsupported) Kind() Kind   { return KindUnsupported }

func (*Keyword) typeNode()       {}
func (*Reference) typeNode()     {}
func (*Object) typeNode()        {}
func (*Array) typeNode()         {}
func (*Tuple) typeNode()         {}
func (*Union) typeNode()         {}
func (*Intersection) typeNode()  {}
func (*Literal) typeNode()       {}
func (*Function) typeNode()      {}
func (*Template) typeNode()      {}
func (*IndexedAccess) typeNode() {}
func (*Parenthesized) typeNode() {}
func (*Unsupported) typeNode()   {}

// IsNull reports whether t is the null literal or the null keyword.
func IsNull(t Type) bool {
	switch n := t.(type) {
	case *Literal:
		return n.LiteralKind == LiteralNull
	case *Keyword:
		return n.Name == KeywordNull
	}
	return false
}

// Unparen strips any number of enclosing parentheses.
func Unparen(t Type) Type {
	for {
		p, ok := t.(*Parenthesized)
		if !ok {
			return t
		}
		t = p.Inner
	}
}
