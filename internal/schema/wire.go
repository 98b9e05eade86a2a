package schema

import "github.com/go-json-experiment/json"

// wireExpr is the tagged JSON form of an expression.
type wireExpr struct {
	Kind   Kind           `json:"kind"`
	Name   string         `json:"name,omitempty"`
	Path   []string       `json:"path,omitempty"`
	Args   []wireExpr     `json:"args,omitempty"`
	Items  []wireExpr     `json:"items,omitempty"`
	Fields []wireField    `json:"fields,omitempty"`
	Value  string         `json:"value,omitempty"`
	Text   string         `json:"text,omitempty"`
	Chain  []wireModifier `json:"chain,omitempty"`
}

type wireField struct {
	Name  string   `json:"name"`
	Value wireExpr `json:"value"`
}

type wireModifier struct {
	Name     string     `json:"name"`
	Args     []wireExpr `json:"args,omitempty"`
	Verbatim bool       `json:"verbatim,omitzero"`
}

// Encode serializes e as tagged JSON with deterministic member order.
func Encode(e Expr) ([]byte, error) {
	return json.Marshal(toWire(e), json.Deterministic(true))
}

func (c *Call) MarshalJSON() ([]byte, error)   { return Encode(c) }
func (r *Ref) MarshalJSON() ([]byte, error)    { return Encode(r) }
func (o *Object) MarshalJSON() ([]byte, error) { return Encode(o) }
func (l *List) MarshalJSON() ([]byte, error)   { return Encode(l) }
func (v *Value) MarshalJSON() ([]byte, error)  { return Encode(v) }
func (r *Raw) MarshalJSON() ([]byte, error)    { return Encode(r) }

func toWire(e Expr) wireExpr {
	w := wireExpr{Kind: e.Kind()}
	switch n := e.(type) {
	case *Call:
		w.Name = n.Name
		w.Args = toWireAll(n.Args)
		w.Chain = chainToWire(n.Chain)
	case *Ref:
		w.Name = n.Name
		w.Path = n.Path
		w.Chain = chainToWire(n.Chain)
	case *Object:
		for _, f := range n.Fields {
			w.Fields = append(w.Fields, wireField{Name: f.Name, Value: toWire(f.Value)})
		}
	case *List:
		w.Items = toWireAll(n.Items)
	case *Value:
		w.Value = n.Src
	case *Raw:
		w.Text = n.Text
		w.Chain = chainToWire(n.Chain)
	}
	return w
}

func toWireAll(es []Expr) []wireExpr {
	var out []wireExpr
	for _, e := range es {
		out = append(out, toWire(e))
	}
	return out
}

func chainToWire(chain []Modifier) []wireModifier {
	var out []wireModifier
	for _, m := range chain {
		out = append(out, wireModifier{Name: m.Name, Args: toWireAll(m.Args), Verbatim: m.Verbatim})
	}
	return out
}
