package compiler

import (
	"github.com/tsgonest/tszod/internal/annotation"
	"github.com/tsgonest/tszod/internal/schema"
	"github.com/tsgonest/tszod/internal/typeast"
)

// objectModifier applies mod (partial or required) to every object schema
// in e. Union arms and intersection operands receive it individually;
// optional and nullable wrappers stay outermost. Schemas that are not
// objects are returned unchanged.
func (cc *compilation) objectModifier(e schema.Expr, mod string, depth int) schema.Expr {
	if depth > maxAliasHops {
		return e
	}
	chain := schema.ChainOf(e)
	if n := trailingWrappers(chain); n > 0 {
		inner := cc.objectModifier(withChain(e, chain[:len(chain)-n]), mod, depth+1)
		return schema.With(inner, chain[len(chain)-n:]...)
	}
	if i := firstAnd(chain); i >= 0 {
		head := cc.objectModifier(withChain(e, chain[:i]), mod, depth+1)
		rest := make([]schema.Modifier, 0, len(chain)-i)
		for _, m := range chain[i:] {
			if m.Name == "and" && len(m.Args) == 1 {
				m = schema.Mod("and", cc.objectModifier(m.Args[0], mod, depth+1))
			}
			rest = append(rest, m)
		}
		return schema.With(head, rest...)
	}

	switch n := e.(type) {
	case *schema.Call:
		if annotation.IsObjectSchema(e) {
			return schema.With(e, schema.Mod(mod))
		}
		if len(n.Chain) > 0 {
			return e
		}
		switch n.Name {
		case "union":
			if len(n.Args) == 1 {
				if l, ok := n.Args[0].(*schema.List); ok {
					return schema.Z("union", cc.objectArms(l, mod, depth))
				}
			}
		case "discriminatedUnion":
			if len(n.Args) == 2 {
				if l, ok := n.Args[1].(*schema.List); ok {
					// A partial arm loses its required discriminator.
					if mod == "partial" {
						return schema.Z("union", cc.objectArms(l, mod, depth))
					}
					return schema.Z("discriminatedUnion", n.Args[0], cc.objectArms(l, mod, depth))
				}
			}
		}
	case *schema.Ref:
		if annotation.IsObjectSchema(e) || (len(n.Path) == 0 && len(n.Chain) == 0 && cc.objectRef(n.Name)) {
			return schema.With(e, schema.Mod(mod))
		}
	}
	return e
}

func (cc *compilation) objectArms(l *schema.List, mod string, depth int) *schema.List {
	items := make([]schema.Expr, len(l.Items))
	for i, it := range l.Items {
		items[i] = cc.objectModifier(it, mod, depth+1)
	}
	return schema.ListOf(items...)
}

// objectRef reports whether the schema named id compiles to an object.
// Schemas declared outside the unit are assumed to be objects.
func (cc *compilation) objectRef(id string) bool {
	if cc.unit == nil {
		return true
	}
	for _, d := range cc.unit.Declarations {
		if cc.opts.SchemaName(d.DeclName()) != id {
			continue
		}
		switch d := d.(type) {
		case *typeast.Interface:
			return d.Body == nil || d.Body.Index == nil
		case *typeast.Alias:
			return cc.objectType(d.Type, 0)
		}
		return false
	}
	return true
}

// objectType reports whether t, a non-generic alias body, compiles to an
// object schema.
func (cc *compilation) objectType(t typeast.Type, hops int) bool {
	switch n := typeast.Unparen(t).(type) {
	case *typeast.Object:
		return n.Index == nil
	case *typeast.Reference:
		if len(n.TypeArgs) > 0 || hops >= maxAliasHops {
			return false
		}
		switch d := cc.declOf(n.Name).(type) {
		case *typeast.Interface:
			return !cc.maybe[d.Name] && (d.Body == nil || d.Body.Index == nil)
		case *typeast.Alias:
			return len(d.TypeParams) == 0 && cc.objectType(d.Type, hops+1)
		case nil:
			return true
		}
	}
	return false
}

// trailingWrappers counts the optional and nullable modifiers ending chain.
func trailingWrappers(chain []schema.Modifier) int {
	n := 0
	for i := len(chain) - 1; i >= 0; i-- {
		if name := chain[i].Name; name != "optional" && name != "nullable" {
			break
		}
		n++
	}
	return n
}

func firstAnd(chain []schema.Modifier) int {
	for i, m := range chain {
		if m.Name == "and" {
			return i
		}
	}
	return -1
}

// withChain returns a copy of e with its chain replaced.
func withChain(e schema.Expr, chain []schema.Modifier) schema.Expr {
	switch n := e.(type) {
	case *schema.Call:
		c := *n
		c.Chain = chain
		return &c
	case *schema.Ref:
		r := *n
		r.Chain = chain
		return &r
	case *schema.Raw:
		r := *n
		r.Chain = chain
		return &r
	}
	return e
}
