package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsgonest/tszod/internal/diagnostic"
	"github.com/tsgonest/tszod/internal/schema"
	"github.com/tsgonest/tszod/internal/typeast"
)

// maxAliasHops bounds alias chasing while resolving declared types.
const maxAliasHops = 16

// extensionChain compiles an interface with heritage clauses. The first
// clause is the base; later clauses fold in with extend(X.shape); own
// members fold in last with extend({...}).
func (cc *compilation) extensionChain(heritage []typeast.HeritageClause, body *typeast.Object, sc scope) schema.Expr {
	var chain schema.Expr
	for i, h := range heritage {
		e := cc.heritageSchema(h, sc)
		if i == 0 {
			chain = e
			continue
		}
		chain = schema.With(chain, schema.Mod("extend", schema.With(e, schema.Prop("shape"))))
	}
	if len(body.Members) > 0 {
		chain = schema.With(chain, schema.Mod("extend", schema.Obj(cc.fields(body, sc)...)))
	}
	return chain
}

func (cc *compilation) heritageSchema(h typeast.HeritageClause, sc scope) schema.Expr {
	base := cc.compile(&typeast.Reference{Name: h.Target, TypeArgs: h.TypeArgs}, sc.arm())
	if h.Projection == typeast.ProjectionNone {
		return base
	}
	return cc.project(base, h.Projection, h.Keys, sc)
}

// project applies an Omit/Pick projection to base.
func (cc *compilation) project(base schema.Expr, proj typeast.Projection, keys typeast.Type, sc scope) schema.Expr {
	names, ok := projectionKeys(sc.env.Resolve(keys))
	if !ok {
		kind := "missing key set"
		if keys != nil {
			kind = string(typeast.Unparen(keys).Kind())
		}
		return cc.fail(ErrProjectionKeys, fmt.Sprintf("%s keys must be string literals, got %s", proj, kind))
	}
	fields := make([]schema.Field, 0, len(names))
	for _, n := range names {
		fields = append(fields, schema.F(n, schema.Bool(true)))
	}
	return schema.With(base, schema.Mod(lower(string(proj)), schema.Obj(fields...)))
}

// projectionKeys extracts a string literal or a union of string literals.
func projectionKeys(t typeast.Type) ([]string, bool) {
	if t == nil {
		return nil, false
	}
	switch n := typeast.Unparen(t).(type) {
	case *typeast.Literal:
		if n.LiteralKind == typeast.LiteralString {
			return []string{n.Value}, true
		}
	case *typeast.Union:
		var keys []string
		for _, arm := range n.Types {
			lit, ok := typeast.Unparen(arm).(*typeast.Literal)
			if !ok || lit.LiteralKind != typeast.LiteralString {
				return nil, false
			}
			keys = append(keys, lit.Value)
		}
		return keys, len(keys) > 0
	}
	return nil, false
}

// checkDiscriminated returns "" when every arm can be discriminated on
// disc, or the reason it cannot.
func (cc *compilation) checkDiscriminated(arms []typeast.Type, disc string, sc scope) string {
	for i, arm := range arms {
		t := typeast.Unparen(sc.env.Resolve(arm))
		switch n := t.(type) {
		case *typeast.Object:
			if !hasMember(n, disc) {
				return fmt.Sprintf("arm %d has no %q member", i+1, disc)
			}
		case *typeast.Reference:
			if reason := cc.checkDiscriminatedRef(n, disc); reason != "" {
				return reason
			}
		default:
			return fmt.Sprintf("arm %d is a %s, not an object or reference", i+1, t.Kind())
		}
	}
	return ""
}

func (cc *compilation) checkDiscriminatedRef(ref *typeast.Reference, disc string) string {
	for hops := 0; hops < maxAliasHops; hops++ {
		decl, ok := cc.unit.Lookup(ref.Name)
		if !ok {
			return "" // unresolved references are trusted
		}
		switch d := decl.(type) {
		case *typeast.Interface:
			if len(d.Heritage) > 0 || (d.Body != nil && hasMember(d.Body, disc)) {
				return ""
			}
			return fmt.Sprintf("%s has no %q member", d.Name, disc)
		case *typeast.Alias:
			switch n := typeast.Unparen(d.Type).(type) {
			case *typeast.Object:
				if hasMember(n, disc) {
					return ""
				}
				return fmt.Sprintf("%s has no %q member", d.Name, disc)
			case *typeast.Reference:
				ref = n
				continue
			}
			return ""
		case *typeast.Enum:
			return fmt.Sprintf("%s is an enum", d.Name)
		}
		return ""
	}
	return ""
}

func hasMember(obj *typeast.Object, name string) bool {
	for _, m := range obj.Members {
		if m.Name == name {
			return true
		}
	}
	return false
}

// qualifiedEnumMember resolves "E.M" where E names an enum of the unit.
func (cc *compilation) qualifiedEnumMember(name string) (*typeast.Literal, bool) {
	enum, member, ok := strings.Cut(name, ".")
	if !ok {
		return nil, false
	}
	if _, ok := cc.unit.LookupEnum(enum); !ok {
		return nil, false
	}
	return typeast.EnumLit(enum, member), true
}

// resolveIndexedAccess rewrites T["a"][number]... into a field projection
// path on T's schema. The root reference is the dependency.
func (cc *compilation) resolveIndexedAccess(ia *typeast.IndexedAccess, sc scope) schema.Expr {
	// Collect indices outermost first.
	var (
		indices []typeast.Type
		root    typeast.Type = ia
	)
	for {
		n, ok := typeast.Unparen(root).(*typeast.IndexedAccess)
		if !ok {
			break
		}
		indices = append(indices, n.Index)
		root = n.Object
	}
	root = typeast.Unparen(sc.env.Resolve(root))
	ref, ok := root.(*typeast.Reference)
	if !ok {
		return cc.fail(ErrIndexedAccessRoot, fmt.Sprintf("object type is %s", root.Kind()))
	}

	out := cc.reference(ref.Name)
	var path []string
	var declared typeast.Type = ref
	for i := len(indices) - 1; i >= 0; i-- {
		last := i == 0
		declared, path = cc.peel(declared, path)
		idx := typeast.Unparen(sc.env.Resolve(indices[i]))
		switch n := idx.(type) {
		case *typeast.Literal:
			switch {
			case n.LiteralKind == typeast.LiteralString:
				path = append(path, shapeSegments(n.Value)...)
				var optional bool
				declared, optional = cc.memberType(declared, n.Value)
				if optional && !last {
					path = append(path, "unwrap()")
				}
				continue
			case n.LiteralKind == typeast.LiteralNumber && n.Value == "-1":
				var seg string
				seg, declared = elementStep(declared)
				path = append(path, seg)
				continue
			case n.LiteralKind == typeast.LiteralNumber:
				pos, err := strconv.Atoi(n.Value)
				if err == nil && pos >= 0 {
					path = append(path, fmt.Sprintf("items[%d]", pos))
					declared = tupleElement(declared, pos)
					continue
				}
			}
		case *typeast.Keyword:
			if n.Name == typeast.KeywordNumber {
				var seg string
				seg, declared = elementStep(declared)
				path = append(path, seg)
				continue
			}
		}
		return cc.degrade(diagnostic.CategoryTypeUnsupported, fmt.Sprintf("indexed access by %s is not supported; accepting any value", idx.Kind()))
	}
	out.Path = path
	return out
}

// peel resolves aliases and steps through nullable and Maybe layers of
// declared, appending one unwrap() per layer.
func (cc *compilation) peel(declared typeast.Type, path []string) (typeast.Type, []string) {
	for hops := 0; hops < maxAliasHops && declared != nil; hops++ {
		switch n := typeast.Unparen(declared).(type) {
		case *typeast.Union:
			var arms []typeast.Type
			layers := 0
			nullable, optional := false, false
			for _, t := range n.Types {
				ut := typeast.Unparen(t)
				if typeast.IsNull(ut) {
					nullable = true
					continue
				}
				if k, ok := ut.(*typeast.Keyword); ok && k.Name == typeast.KeywordUndefined {
					optional = true
					continue
				}
				arms = append(arms, t)
			}
			if len(arms) != 1 {
				return declared, path
			}
			if nullable {
				layers++
			}
			if optional {
				layers++
			}
			path = appendUnwraps(path, layers)
			declared = arms[0]
		case *typeast.Reference:
			if cc.maybe[n.Name] {
				if _, isInterface := cc.declOf(n.Name).(*typeast.Interface); !isInterface && len(n.TypeArgs) > 0 {
					layers := 0
					if cc.opts.MaybeNullable {
						layers++
					}
					if cc.opts.MaybeOptional {
						layers++
					}
					path = appendUnwraps(path, layers)
					declared = n.TypeArgs[0]
					continue
				}
			}
			alias, ok := cc.declOf(n.Name).(*typeast.Alias)
			if !ok || len(alias.TypeParams) > 0 {
				return declared, path
			}
			declared = alias.Type
		default:
			return declared, path
		}
	}
	return declared, path
}

func appendUnwraps(path []string, n int) []string {
	for ; n > 0; n-- {
		path = append(path, "unwrap()")
	}
	return path
}

func (cc *compilation) declOf(name string) typeast.Declaration {
	d, _ := cc.unit.Lookup(name)
	return d
}

// memberType finds a member's declared type in an object type or an
// interface (searching heritage clauses too).
func (cc *compilation) memberType(declared typeast.Type, name string) (typeast.Type, bool) {
	return cc.memberTypeDepth(declared, name, 0)
}

func (cc *compilation) memberTypeDepth(declared typeast.Type, name string, depth int) (typeast.Type, bool) {
	if depth > maxAliasHops {
		return nil, false
	}
	switch n := typeast.Unparen(declared).(type) {
	case *typeast.Object:
		for _, m := range n.Members {
			if m.Name == name {
				return m.Type, m.Optional
			}
		}
	case *typeast.Reference:
		switch d := cc.declOf(n.Name).(type) {
		case *typeast.Interface:
			if d.Body != nil {
				if t, opt := cc.memberTypeDepth(d.Body, name, depth+1); t != nil {
					return t, opt
				}
			}
			for _, h := range d.Heritage {
				if t, opt := cc.memberTypeDepth(&typeast.Reference{Name: h.Target}, name, depth+1); t != nil {
					return t, opt
				}
			}
		case *typeast.Alias:
			return cc.memberTypeDepth(d.Type, name, depth+1)
		}
	case *typeast.Intersection:
		for _, t := range n.Types {
			if mt, opt := cc.memberTypeDepth(t, name, depth+1); mt != nil {
				return mt, opt
			}
		}
	}
	return nil, false
}

// elementStep returns the path segment for a [number] index and the
// element type it reaches. Unknown shapes default to an array element.
func elementStep(declared typeast.Type) (string, typeast.Type) {
	switch n := typeast.Unparen(declared).(type) {
	case *typeast.Array:
		return "element", n.Elem
	case *typeast.Reference:
		switch n.Name {
		case "Array", "ReadonlyArray":
			if len(n.TypeArgs) > 0 {
				return "element", n.TypeArgs[0]
			}
		case "Record":
			if len(n.TypeArgs) > 1 {
				return "valueSchema", n.TypeArgs[1]
			}
			return "valueSchema", nil
		}
	case *typeast.Object:
		if n.Index != nil && len(n.Members) == 0 {
			return "valueSchema", n.Index.ValueType
		}
	}
	return "element", nil
}

func tupleElement(declared typeast.Type, pos int) typeast.Type {
	tup, ok := typeast.Unparen(declared).(*typeast.Tuple)
	if !ok || pos >= len(tup.Elements) {
		return nil
	}
	return tup.Elements[pos].Type
}

// shapeSegments addresses a member of an object schema's shape.
func shapeSegments(name string) []string {
	if prop := schema.PropertyName(name); prop == name {
		return []string{"shape", name}
	}
	return []string{"shape[" + schema.String(name).Src + "]"}
}
