package typeast

// Substitute returns t with every argument-less reference whose name lookup
// resolves replaced by the resolved type. The input tree is not modified;
// subtrees without substitutions are shared.
func Substitute(t Type, lookup func(name string) (Type, bool)) Type {
	if t == nil || lookup == nil {
		return t
	}
	switch n := t.(type) {
	case *Reference:
		if len(n.TypeArgs) == 0 {
			if bound, ok := lookup(n.Name); ok {
				return bound
			}
			return n
		}
		args, changed := substituteAll(n.TypeArgs, lookup)
		if !changed {
			return n
		}
		return &Reference{Name: n.Name, TypeArgs: args}
	case *Object:
		return substituteObject(n, lookup)
	case *Array:
		elem := Substitute(n.Elem, lookup)
		if elem == n.Elem {
			return n
		}
		return &Array{Elem: elem}
	case *Tuple:
		out := &Tuple{Elements: make([]TupleElement, len(n.Elements))}
		changed := false
		for i, e := range n.Elements {
			e2 := e
			e2.Type = Substitute(e.Type, lookup)
			changed = changed || e2.Type != e.Type
			out.Elements[i] = e2
		}
		if !changed {
			return n
		}
		return out
	case *Union:
		ts, changed := substituteAll(n.Types, lookup)
		if !changed {
			return n
		}
		return &Union{Types: ts}
	case *Intersection:
		ts, changed := substituteAll(n.Types, lookup)
		if !changed {
			return n
		}
		return &Intersection{Types: ts}
	case *Function:
		out := &Function{Params: make([]Param, len(n.Params))}
		changed := false
		for i, p := range n.Params {
			p2 := p
			p2.Type = Substitute(p.Type, lookup)
			changed = changed || p2.Type != p.Type
			out.Params[i] = p2
		}
		out.Return = Substitute(n.Return, lookup)
		if !changed && out.Return == n.Return {
			return n
		}
		return out
	case *Template:
		out := &Template{Head: n.Head, Spans: make([]TemplateSpan, len(n.Spans))}
		changed := false
		for i, s := range n.Spans {
			s2 := s
			s2.Type = Substitute(s.Type, lookup)
			changed = changed || s2.Type != s.Type
			out.Spans[i] = s2
		}
		if !changed {
			return n
		}
		return out
	case *IndexedAccess:
		obj := Substitute(n.Object, lookup)
		idx := Substitute(n.Index, lookup)
		if obj == n.Object && idx == n.Index {
			return n
		}
		return &IndexedAccess{Object: obj, Index: idx}
	case *Parenthesized:
		inner := Substitute(n.Inner, lookup)
		if inner == n.Inner {
			return n
		}
		return &Parenthesized{Inner: inner}
	case *Keyword, *Literal, *Unsupported:
		return n
	}
	return t
}

func substituteAll(ts []Type, lookup func(string) (Type, bool)) ([]Type, bool) {
	out := make([]Type, len(ts))
	changed := false
	for i, t := range ts {
		out[i] = Substitute(t, lookup)
		changed = changed || out[i] != t
	}
	return out, changed
}

func substituteObject(n *Object, lookup func(string) (Type, bool)) *Object {
	out := &Object{Members: make([]Member, len(n.Members))}
	changed := false
	for i, m := range n.Members {
		m2 := m
		m2.Type = Substitute(m.Type, lookup)
		changed = changed || m2.Type != m.Type
		out.Members[i] = m2
	}
	if n.Index != nil {
		idx := *n.Index
		idx.KeyType = Substitute(n.Index.KeyType, lookup)
		idx.ValueType = Substitute(n.Index.ValueType, lookup)
		changed = changed || idx.KeyType != n.Index.KeyType || idx.ValueType != n.Index.ValueType
		out.Index = &idx
	}
	if !changed {
		return n
	}
	return out
}
