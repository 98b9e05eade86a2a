package typeast

import "github.com/tsgonest/tszod/internal/annotation"

// DeclKind identifies the variant of a declaration.
type DeclKind string

const (
	DeclInterface DeclKind = "interface"
	DeclAlias     DeclKind = "alias"
	DeclEnum      DeclKind = "enum"
)

// Declaration is a top-level named declaration.
type Declaration interface {
	DeclName() string
	DeclKind() DeclKind
	declNode()
}

// TypeParam is a generic parameter.
type TypeParam struct {
	Name       string
	Constraint Type
	Default    Type
}

// Projection names the utility type wrapping a heritage target.
type Projection string

const (
	ProjectionNone Projection = ""
	ProjectionOmit Projection = "Omit"
	ProjectionPick Projection = "Pick"
)

// HeritageClause is one `extends` entry. Keys is the key-set type of an
// Omit/Pick projection.
type HeritageClause struct {
	Target     string
	TypeArgs   []Type
	Projection Projection
	Keys       Type
}

// Interface is `interface Name<Params> extends Heritage { Body }`.
type Interface struct {
	Name       string
	TypeParams []TypeParam
	Heritage   []HeritageClause
	Body       *Object
	Tags       annotation.Tags
}

// Alias is `type Name<Params> = Type`.
type Alias struct {
	Name       string
	TypeParams []TypeParam
	Type       Type
	Tags       annotation.Tags
}

// EnumMember is one enum member; Value is nil when there is no initializer.
type EnumMember struct {
	Name  string
	Value *Literal
}

// Enum is `enum Name { Members }`.
type Enum struct {
	Name    string
	Members []EnumMember
	Tags    annotation.Tags
}

func (d *Interface) DeclName() string { return d.Name }
func (d *Alias) DeclName() string     { return d.Name }
func (d *Enum) DeclName() string      { return d.Name }

func (*Interface) DeclKind() DeclKind { return DeclInterface }
func (*Alias) DeclKind() DeclKind     { return DeclAlias }
func (*Enum) DeclKind() DeclKind      { return DeclEnum }

func (*Interface) declNode() {}
func (*Alias) declNode()     {}
func (*Enum) declNode()      {}

// TypeParamsOf returns the generic parameters of d (nil for enums).
func TypeParamsOf(d Declaration) []TypeParam {
	switch d := d.(type) {
	case *Interface:
		return d.TypeParams
	case *Alias:
		return d.TypeParams
	}
	return nil
}

// TagsOf returns the annotation tags attached to d.
func TagsOf(d Declaration) annotation.Tags {
	switch d := d.(type) {
	case *Interface:
		return d.Tags
	case *Alias:
		return d.Tags
	case *Enum:
		return d.Tags
	}
	return nil
}

// Unit is one parsed source unit. Declarations keep source order; lookups
// are by simple name.
type Unit struct {
	Declarations []Declaration
	byName       map[string]Declaration
}

// NewUnit indexes decls by name. A later declaration with a duplicate name
// shadows an earlier one for lookup purposes.
func NewUnit(decls ...Declaration) *Unit {
	u := &Unit{Declarations: decls, byName: make(map[string]Declaration, len(decls))}
	for _, d := range decls {
		u.byName[d.DeclName()] = d
	}
	return u
}

// Lookup finds a declaration by name.
func (u *Unit) Lookup(name string) (Declaration, bool) {
	if u == nil {
		return nil, false
	}
	d, ok := u.byName[name]
	return d, ok
}

// LookupEnum finds an enum declaration by name.
func (u *Unit) LookupEnum(name string) (*Enum, bool) {
	d, ok := u.Lookup(name)
	if !ok {
		return nil, false
	}
	e, ok := d.(*Enum)
	return e, ok
}
