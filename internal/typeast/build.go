package typeast

import "github.com/tsgonest/tszod/internal/annotation"

// Constructors for building trees by hand (tests, fixtures, synthesized nodes).

func KW(name string) *Keyword { return &Keyword{Name: name} }

func Str() *Keyword  { return KW(KeywordString) }
func Num() *Keyword  { return KW(KeywordNumber) }
func Bool() *Keyword { return KW(KeywordBoolean) }

func Ref(name string, args ...Type) *Reference {
	return &Reference{Name: name, TypeArgs: args}
}

func StrLit(s string) *Literal  { return &Literal{LiteralKind: LiteralString, Value: s} }
func NumLit(s string) *Literal  { return &Literal{LiteralKind: LiteralNumber, Value: s} }
func NullLit() *Literal         { return &Literal{LiteralKind: LiteralNull, Value: "null"} }
func EnumLit(enum, member string) *Literal {
	return &Literal{LiteralKind: LiteralEnumMember, Enum: enum, Member: member}
}

func BoolLit(b bool) *Literal {
	if b {
		return &Literal{LiteralKind: LiteralBoolean, Value: "true"}
	}
	return &Literal{LiteralKind: LiteralBoolean, Value: "false"}
}

func ArrayOf(elem Type) *Array          { return &Array{Elem: elem} }
func UnionOf(ts ...Type) *Union         { return &Union{Types: ts} }
func InterOf(ts ...Type) *Intersection  { return &Intersection{Types: ts} }
func Paren(t Type) *Parenthesized       { return &Parenthesized{Inner: t} }
func Index(obj, idx Type) *IndexedAccess { return &IndexedAccess{Object: obj, Index: idx} }

func Obj(members ...Member) *Object { return &Object{Members: members} }

func Prop(name string, t Type) Member    { return Member{Name: name, Type: t} }
func OptProp(name string, t Type) Member { return Member{Name: name, Type: t, Optional: true} }

// WithTags returns a copy of m carrying tags.
func (m Member) WithTags(tags annotation.Tags) Member {
	m.Tags = tags
	return m
}

func Tup(elems ...Type) *Tuple {
	t := &Tuple{}
	for _, e := range elems {
		t.Elements = append(t.Elements, TupleElement{Type: e})
	}
	return t
}

func Unsup(syntax string) *Unsupported { return &Unsupported{Syntax: syntax} }
