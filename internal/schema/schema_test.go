package schema

import (
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"bare call", Z("string"), "z.string()"},
		{"chain", With(Z("number"), Mod("min", Number("0")), Mod("optional")), "z.number().min(0).optional()"},
		{"list argument", Z("union", ListOf(Z("string"), Z("null"))), "z.union([z.string(), z.null()])"},
		{"empty object", Z("object", Obj()), "z.object({})"},
		{
			"object fields",
			Z("object", Obj(F("id", Z("string")), F("first-name", Z("string")), F("$ref", Z("number")))),
			`z.object({ id: z.string(), "first-name": z.string(), $ref: z.number() })`,
		},
		{"ref with path", Named("userSchema", "shape", "tags", "element"), "userSchema.shape.tags.element"},
		{"ref with chain", With(Named("userSchema"), Mod("partial")), "userSchema.partial()"},
		{"verbatim chain segment", With(Named("userSchema"), Prop("shape")), "userSchema.shape"},
		{"raw", With(Text("z.custom<Foo>()"), Mod("optional")), "z.custom<Foo>().optional()"},
		{"string value escaping", Z("literal", String(`say "hi"`)), `z.literal("say \"hi\"")`},
		{"boolean values", Z("tuple", ListOf(Z("literal", Bool(true)), Z("literal", Bool(false)))), "z.tuple([z.literal(true), z.literal(false)])"},
		{"any", Any(), "z.any()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.String(); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestWithCopies(t *testing.T) {
	base := With(Z("string"), Mod("min", Number("1")))
	a := With(base, Mod("max", Number("5")))
	b := With(base, Mod("email"))

	if got := base.String(); got != "z.string().min(1)" {
		t.Errorf("base changed: %s", got)
	}
	if got := a.String(); got != "z.string().min(1).max(5)" {
		t.Errorf("a = %s", got)
	}
	if got := b.String(); got != "z.string().min(1).email()" {
		t.Errorf("b = %s", got)
	}
	if With(base) != base {
		t.Error("With without modifiers should return its input")
	}
}

func TestWithPanicsOnLiterals(t *testing.T) {
	for _, e := range []Expr{Obj(), ListOf(), Number("1")} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("expected a panic chaining onto %s", e.Kind())
				}
			}()
			With(e, Mod("optional"))
		}()
	}
}

func TestHelpers(t *testing.T) {
	e := With(Z("object", Obj()), Mod("strict"), Prop("shape"))
	if Head(e) != "object" {
		t.Errorf("Head = %q", Head(e))
	}
	if Head(Named("x")) != "" {
		t.Error("references have no head")
	}
	if !HasModifier(e, "strict") || HasModifier(e, "optional") {
		t.Error("HasModifier mismatch")
	}
	if n := len(ChainOf(e)); n != 2 {
		t.Errorf("chain length %d", n)
	}
	if ChainOf(Obj()) != nil {
		t.Error("objects carry no chain")
	}
}

func TestPropertyName(t *testing.T) {
	tests := map[string]string{
		"id":       "id",
		"_private": "_private",
		"$meta":    "$meta",
		"a1":       "a1",
		"1a":       `"1a"`,
		"kebab-ok": `"kebab-ok"`,
		"":         `""`,
		"with sp":  `"with sp"`,
	}
	for in, want := range tests {
		if got := PropertyName(in); got != want {
			t.Errorf("PropertyName(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestEncode(t *testing.T) {
	e := With(Z("string"), Mod("min", Number("1")), Prop("brand<Id>()"))
	got, err := Encode(e)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"kind":"call","name":"string","chain":[{"name":"min","args":[{"kind":"value","value":"1"}]},{"name":"brand<Id>()","verbatim":true}]}`
	if string(got) != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}

	ref, err := Encode(Named("userSchema", "shape", "name"))
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"kind":"ref","name":"userSchema","path":["shape","name"]}`; string(ref) != want {
		t.Errorf("got  %s\nwant %s", ref, want)
	}
}

func TestMarshalJSONMatchesEncode(t *testing.T) {
	e := Z("object", Obj(F("a", With(Z("string"), Mod("optional")))))
	viaMethod, err := e.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	viaEncode, err := Encode(e)
	if err != nil {
		t.Fatal(err)
	}
	if string(viaMethod) != string(viaEncode) {
		t.Errorf("MarshalJSON = %s, Encode = %s", viaMethod, viaEncode)
	}
}
