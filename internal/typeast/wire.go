package typeast

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"gopkg.in/yaml.v3"

	"github.com/tsgonest/tszod/internal/annotation"
)

// wireUnit is the on-disk shape of a source unit. The same structs serve the
// JSON and YAML encodings.
type wireUnit struct {
	Declarations []wireDecl `json:"declarations" yaml:"declarations"`
}

type wireDecl struct {
	Kind        string            `json:"kind" yaml:"kind"`
	Name        string            `json:"name" yaml:"name"`
	TypeParams  []wireTypeParam   `json:"typeParams,omitempty" yaml:"typeParams,omitempty"`
	Heritage    []wireHeritage    `json:"heritage,omitempty" yaml:"heritage,omitempty"`
	Members     []wireMember      `json:"members,omitempty" yaml:"members,omitempty"`
	Index       *wireIndex        `json:"index,omitempty" yaml:"index,omitempty"`
	Type        *wireType         `json:"type,omitempty" yaml:"type,omitempty"`
	EnumMembers []wireEnumMember  `json:"enumMembers,omitempty" yaml:"enumMembers,omitempty"`
	Tags        map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Doc         string            `json:"doc,omitempty" yaml:"doc,omitempty"`
}

type wireTypeParam struct {
	Name       string    `json:"name" yaml:"name"`
	Constraint *wireType `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Default    *wireType `json:"default,omitempty" yaml:"default,omitempty"`
}

type wireHeritage struct {
	Target     string     `json:"target" yaml:"target"`
	TypeArgs   []wireType `json:"typeArgs,omitempty" yaml:"typeArgs,omitempty"`
	Projection string     `json:"projection,omitempty" yaml:"projection,omitempty"`
	Keys       *wireType  `json:"keys,omitempty" yaml:"keys,omitempty"`
}

type wireMember struct {
	Name     string            `json:"name" yaml:"name"`
	Type     *wireType         `json:"type" yaml:"type"`
	Optional bool              `json:"optional,omitzero" yaml:"optional,omitempty"`
	Readonly bool              `json:"readonly,omitzero" yaml:"readonly,omitempty"`
	Tags     map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Doc      string            `json:"doc,omitempty" yaml:"doc,omitempty"`
}

type wireIndex struct {
	KeyName   string            `json:"keyName,omitempty" yaml:"keyName,omitempty"`
	KeyType   *wireType         `json:"keyType" yaml:"keyType"`
	ValueType *wireType         `json:"valueType" yaml:"valueType"`
	Tags      map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Doc       string            `json:"doc,omitempty" yaml:"doc,omitempty"`
}

type wireEnumMember struct {
	Name  string    `json:"name" yaml:"name"`
	Value *wireType `json:"value,omitempty" yaml:"value,omitempty"`
}

type wireTupleElement struct {
	Name     string    `json:"name,omitempty" yaml:"name,omitempty"`
	Type     *wireType `json:"type" yaml:"type"`
	Optional bool      `json:"optional,omitzero" yaml:"optional,omitempty"`
	Rest     bool      `json:"rest,omitzero" yaml:"rest,omitempty"`
}

type wireParam struct {
	Name     string    `json:"name" yaml:"name"`
	Type     *wireType `json:"type" yaml:"type"`
	Optional bool      `json:"optional,omitzero" yaml:"optional,omitempty"`
	Rest     bool      `json:"rest,omitzero" yaml:"rest,omitempty"`
}

type wireSpan struct {
	Type *wireType `json:"type" yaml:"type"`
	Tail string    `json:"tail" yaml:"tail"`
}

// wireType flattens every Type variant into one struct keyed by Kind.
type wireType struct {
	Kind string `json:"kind" yaml:"kind"`

	// keyword, reference, unsupported
	Name     string     `json:"name,omitempty" yaml:"name,omitempty"`
	TypeArgs []wireType `json:"typeArgs,omitempty" yaml:"typeArgs,omitempty"`
	Syntax   string     `json:"syntax,omitempty" yaml:"syntax,omitempty"`

	// object
	Members []wireMember `json:"members,omitempty" yaml:"members,omitempty"`
	Index   *wireIndex   `json:"index,omitempty" yaml:"index,omitempty"`

	// array, parenthesized
	Elem  *wireType `json:"elem,omitempty" yaml:"elem,omitempty"`
	Inner *wireType `json:"inner,omitempty" yaml:"inner,omitempty"`

	// tuple
	Elements []wireTupleElement `json:"elements,omitempty" yaml:"elements,omitempty"`

	// union, intersection
	Types []wireType `json:"types,omitempty" yaml:"types,omitempty"`

	// literal
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
	Enum    string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Member  string `json:"member,omitempty" yaml:"member,omitempty"`

	// function
	Params  []wireParam `json:"params,omitempty" yaml:"params,omitempty"`
	Returns *wireType   `json:"returns,omitempty" yaml:"returns,omitempty"`

	// template
	Head  string     `json:"head,omitempty" yaml:"head,omitempty"`
	Spans []wireSpan `json:"spans,omitempty" yaml:"spans,omitempty"`

	// indexed access
	ObjectType *wireType `json:"objectType,omitempty" yaml:"objectType,omitempty"`
	IndexType  *wireType `json:"indexType,omitempty" yaml:"indexType,omitempty"`
}

// DecodeJSON parses a JSON source unit.
func DecodeJSON(data []byte) (*Unit, error) {
	var w wireUnit
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding unit: %w", err)
	}
	return w.toUnit()
}

// DecodeYAML parses a YAML source unit.
func DecodeYAML(data []byte) (*Unit, error) {
	var w wireUnit
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding unit: %w", err)
	}
	return w.toUnit()
}

// Load reads a unit from disk, choosing the decoder by file extension
// (.yaml/.yml for YAML, anything else for JSON).
func Load(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit %q: %w", path, err)
	}
	var u *Unit
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		u, err = DecodeYAML(data)
	default:
		u, err = DecodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return u, nil
}

// EncodeJSON serializes u in canonical form. Map keys are sorted, so equal
// units encode to equal bytes.
func EncodeJSON(u *Unit) ([]byte, error) {
	w := wireUnit{Declarations: make([]wireDecl, 0, len(u.Declarations))}
	for _, d := range u.Declarations {
		w.Declarations = append(w.Declarations, declToWire(d))
	}
	return json.Marshal(w, json.Deterministic(true))
}

// EncodeDeclJSON serializes a single declaration in canonical form.
func EncodeDeclJSON(d Declaration) ([]byte, error) {
	return json.Marshal(declToWire(d), json.Deterministic(true))
}

func (w wireUnit) toUnit() (*Unit, error) {
	decls := make([]Declaration, 0, len(w.Declarations))
	for i, wd := range w.Declarations {
		d, err := wd.toDecl()
		if err != nil {
			return nil, fmt.Errorf("declaration %d (%s): %w", i, wd.Name, err)
		}
		decls = append(decls, d)
	}
	return NewUnit(decls...), nil
}

func mergeTags(tags map[string]string, doc string) annotation.Tags {
	if doc == "" {
		return annotation.FromMap(tags)
	}
	return annotation.ParseDoc(doc).Merge(annotation.FromMap(tags))
}

func (wd wireDecl) toDecl() (Declaration, error) {
	if wd.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	tags := mergeTags(wd.Tags, wd.Doc)
	params, err := typeParamsFromWire(wd.TypeParams)
	if err != nil {
		return nil, err
	}
	switch DeclKind(wd.Kind) {
	case DeclInterface:
		body, err := objectFromWire(wd.Members, wd.Index)
		if err != nil {
			return nil, err
		}
		d := &Interface{Name: wd.Name, TypeParams: params, Body: body, Tags: tags}
		for _, h := range wd.Heritage {
			hc, err := heritageFromWire(h)
			if err != nil {
				return nil, err
			}
			d.Heritage = append(d.Heritage, hc)
		}
		return d, nil
	case DeclAlias:
		t, err := typeFromWire(wd.Type)
		if err != nil {
			return nil, err
		}
		return &Alias{Name: wd.Name, TypeParams: params, Type: t, Tags: tags}, nil
	case DeclEnum:
		d := &Enum{Name: wd.Name, Tags: tags}
		for _, m := range wd.EnumMembers {
			em := EnumMember{Name: m.Name}
			if m.Value != nil {
				t, err := typeFromWire(m.Value)
				if err != nil {
					return nil, fmt.Errorf("enum member %s: %w", m.Name, err)
				}
				lit, ok := t.(*Literal)
				if !ok {
					return nil, fmt.Errorf("enum member %s: initializer must be a literal, got %s", m.Name, t.Kind())
				}
				em.Value = lit
			}
			d.Members = append(d.Members, em)
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown declaration kind %q", wd.Kind)
}

func typeParamsFromWire(ws []wireTypeParam) ([]TypeParam, error) {
	var out []TypeParam
	for _, w := range ws {
		p := TypeParam{Name: w.Name}
		var err error
		if w.Constraint != nil {
			if p.Constraint, err = typeFromWire(w.Constraint); err != nil {
				return nil, err
			}
		}
		if w.Default != nil {
			if p.Default, err = typeFromWire(w.Default); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func heritageFromWire(w wireHeritage) (HeritageClause, error) {
	hc := HeritageClause{Target: w.Target, Projection: Projection(w.Projection)}
	switch hc.Projection {
	case ProjectionNone, ProjectionOmit, ProjectionPick:
	default:
		return hc, fmt.Errorf("heritage %s: unknown projection %q", w.Target, w.Projection)
	}
	for i := range w.TypeArgs {
		t, err := typeFromWire(&w.TypeArgs[i])
		if err != nil {
			return hc, err
		}
		hc.TypeArgs = append(hc.TypeArgs, t)
	}
	if w.Keys != nil {
		k, err := typeFromWire(w.Keys)
		if err != nil {
			return hc, err
		}
		hc.Keys = k
	}
	return hc, nil
}

func objectFromWire(members []wireMember, index *wireIndex) (*Object, error) {
	obj := &Object{}
	for _, wm := range members {
		t, err := typeFromWire(wm.Type)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", wm.Name, err)
		}
		obj.Members = append(obj.Members, Member{
			Name:     wm.Name,
			Type:     t,
			Optional: wm.Optional,
			Readonly: wm.Readonly,
			Tags:     mergeTags(wm.Tags, wm.Doc),
		})
	}
	if index != nil {
		kt, err := typeFromWire(index.KeyType)
		if err != nil {
			return nil, fmt.Errorf("index signature key: %w", err)
		}
		vt, err := typeFromWire(index.ValueType)
		if err != nil {
			return nil, fmt.Errorf("index signature value: %w", err)
		}
		obj.Index = &IndexSignature{KeyName: index.KeyName, KeyType: kt, ValueType: vt, Tags: mergeTags(index.Tags, index.Doc)}
	}
	return obj, nil
}

func typeFromWire(w *wireType) (Type, error) {
	if w == nil {
		return nil, fmt.Errorf("missing type")
	}
	switch Kind(w.Kind) {
	case KindKeyword:
		if w.Name == "" {
			return nil, fmt.Errorf("keyword without name")
		}
		return &Keyword{Name: w.Name}, nil
	case KindReference:
		if w.Name == "" {
			return nil, fmt.Errorf("reference without name")
		}
		ref := &Reference{Name: w.Name}
		for i := range w.TypeArgs {
			t, err := typeFromWire(&w.TypeArgs[i])
			if err != nil {
				return nil, err
			}
			ref.TypeArgs = append(ref.TypeArgs, t)
		}
		return ref, nil
	case KindObject:
		return objectFromWire(w.Members, w.Index)
	case KindArray:
		elem, err := typeFromWire(w.Elem)
		if err != nil {
			return nil, fmt.Errorf("array element: %w", err)
		}
		return &Array{Elem: elem}, nil
	case KindTuple:
		tup := &Tuple{}
		for _, e := range w.Elements {
			t, err := typeFromWire(e.Type)
			if err != nil {
				return nil, fmt.Errorf("tuple element: %w", err)
			}
			tup.Elements = append(tup.Elements, TupleElement{Name: e.Name, Type: t, Optional: e.Optional, Rest: e.Rest})
		}
		return tup, nil
	case KindUnion, KindIntersection:
		var ts []Type
		for i := range w.Types {
			t, err := typeFromWire(&w.Types[i])
			if err != nil {
				return nil, err
			}
			ts = append(ts, t)
		}
		if Kind(w.Kind) == KindUnion {
			return &Union{Types: ts}, nil
		}
		return &Intersection{Types: ts}, nil
	case KindLiteral:
		return literalFromWire(w)
	case KindFunction:
		fn := &Function{}
		for _, p := range w.Params {
			t, err := typeFromWire(p.Type)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
			}
			fn.Params = append(fn.Params, Param{Name: p.Name, Type: t, Optional: p.Optional, Rest: p.Rest})
		}
		if w.Returns != nil {
			ret, err := typeFromWire(w.Returns)
			if err != nil {
				return nil, fmt.Errorf("return type: %w", err)
			}
			fn.Return = ret
		}
		return fn, nil
	case KindTemplate:
		tpl := &Template{Head: w.Head}
		for _, s := range w.Spans {
			t, err := typeFromWire(s.Type)
			if err != nil {
				return nil, fmt.Errorf("template span: %w", err)
			}
			tpl.Spans = append(tpl.Spans, TemplateSpan{Type: t, Tail: s.Tail})
		}
		return tpl, nil
	case KindIndexedAccess:
		obj, err := typeFromWire(w.ObjectType)
		if err != nil {
			return nil, fmt.Errorf("indexed access object: %w", err)
		}
		idx, err := typeFromWire(w.IndexType)
		if err != nil {
			return nil, fmt.Errorf("indexed access index: %w", err)
		}
		return &IndexedAccess{Object: obj, Index: idx}, nil
	case KindParenthesized:
		inner, err := typeFromWire(w.Inner)
		if err != nil {
			return nil, err
		}
		return &Parenthesized{Inner: inner}, nil
	case KindUnsupported:
		return &Unsupported{Syntax: w.Syntax}, nil
	}
	return nil, fmt.Errorf("unknown type kind %q", w.Kind)
}

func literalFromWire(w *wireType) (*Literal, error) {
	lit := &Literal{LiteralKind: LiteralKind(w.Literal), Value: w.Value}
	switch lit.LiteralKind {
	case LiteralString:
	case LiteralNumber:
		if w.Value == "" {
			return nil, fmt.Errorf("number literal without value")
		}
	case LiteralBoolean:
		if w.Value != "true" && w.Value != "false" {
			return nil, fmt.Errorf("boolean literal value %q", w.Value)
		}
	case LiteralNull:
		lit.Value = "null"
	case LiteralEnumMember:
		if w.Enum == "" || w.Member == "" {
			return nil, fmt.Errorf("enum member literal needs enum and member")
		}
		lit.Enum, lit.Member = w.Enum, w.Member
	default:
		return nil, fmt.Errorf("unknown literal kind %q", w.Literal)
	}
	return lit, nil
}

// --- encoding ---

func declToWire(d Declaration) wireDecl {
	wd := wireDecl{Kind: string(d.DeclKind()), Name: d.DeclName(), Tags: TagsOf(d).Map()}
	for _, p := range TypeParamsOf(d) {
		wd.TypeParams = append(wd.TypeParams, wireTypeParam{Name: p.Name, Constraint: typeToWire(p.Constraint), Default: typeToWire(p.Default)})
	}
	switch d := d.(type) {
	case *Interface:
		if d.Body != nil {
			wd.Members, wd.Index = objectToWire(d.Body)
		}
		for _, h := range d.Heritage {
			wh := wireHeritage{Target: h.Target, Projection: string(h.Projection), Keys: typeToWire(h.Keys)}
			for _, a := range h.TypeArgs {
				wh.TypeArgs = append(wh.TypeArgs, *typeToWire(a))
			}
			wd.Heritage = append(wd.Heritage, wh)
		}
	case *Alias:
		wd.Type = typeToWire(d.Type)
	case *Enum:
		for _, m := range d.Members {
			em := wireEnumMember{Name: m.Name}
			if m.Value != nil {
				em.Value = typeToWire(m.Value)
			}
			wd.EnumMembers = append(wd.EnumMembers, em)
		}
	}
	return wd
}

func objectToWire(o *Object) ([]wireMember, *wireIndex) {
	var members []wireMember
	for _, m := range o.Members {
		members = append(members, wireMember{Name: m.Name, Type: typeToWire(m.Type), Optional: m.Optional, Readonly: m.Readonly, Tags: m.Tags.Map()})
	}
	var idx *wireIndex
	if o.Index != nil {
		idx = &wireIndex{KeyName: o.Index.KeyName, KeyType: typeToWire(o.Index.KeyType), ValueType: typeToWire(o.Index.ValueType), Tags: o.Index.Tags.Map()}
	}
	return members, idx
}

func typeToWire(t Type) *wireType {
	if t == nil {
		return nil
	}
	w := &wireType{Kind: string(t.Kind())}
	switch n := t.(type) {
	case *Keyword:
		w.Name = n.Name
	case *Reference:
		w.Name = n.Name
		for _, a := range n.TypeArgs {
			w.TypeArgs = append(w.TypeArgs, *typeToWire(a))
		}
	case *Object:
		w.Members, w.Index = objectToWire(n)
	case *Array:
		w.Elem = typeToWire(n.Elem)
	case *Tuple:
		for _, e := range n.Elements {
			w.Elements = append(w.Elements, wireTupleElement{Name: e.Name, Type: typeToWire(e.Type), Optional: e.Optional, Rest: e.Rest})
		}
	case *Union:
		for _, m := range n.Types {
			w.Types = append(w.Types, *typeToWire(m))
		}
	case *Intersection:
		for _, m := range n.Types {
			w.Types = append(w.Types, *typeToWire(m))
		}
	case *Literal:
		w.Literal, w.Value, w.Enum, w.Member = string(n.LiteralKind), n.Value, n.Enum, n.Member
	case *Function:
		for _, p := range n.Params {
			w.Params = append(w.Params, wireParam{Name: p.Name, Type: typeToWire(p.Type), Optional: p.Optional, Rest: p.Rest})
		}
		w.Returns = typeToWire(n.Return)
	case *Template:
		w.Head = n.Head
		for _, s := range n.Spans {
			w.Spans = append(w.Spans, wireSpan{Type: typeToWire(s.Type), Tail: s.Tail})
		}
	case *IndexedAccess:
		w.ObjectType = typeToWire(n.Object)
		w.IndexType = typeToWire(n.Index)
	case *Parenthesized:
		w.Inner = typeToWire(n.Inner)
	case *Unsupported:
		w.Syntax = n.Syntax
	}
	return w
}
