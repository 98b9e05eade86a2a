package compiler

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsgonest/tszod/internal/annotation"
	"github.com/tsgonest/tszod/internal/diagnostic"
	"github.com/tsgonest/tszod/internal/schema"
	"github.com/tsgonest/tszod/internal/typeast"
)

func compileType(t *testing.T, c *Compiler, typ typeast.Type, tags annotation.Tags) *Result {
	t.Helper()
	res, err := c.CompileType(typ, tags)
	if err != nil {
		t.Fatalf("CompileType: %v", err)
	}
	return res
}

func compileNamed(t *testing.T, c *Compiler, name string) *Result {
	t.Helper()
	d, ok := c.Unit().Lookup(name)
	if !ok {
		t.Fatalf("no declaration %s", name)
	}
	res, err := c.CompileDeclaration(d)
	if err != nil {
		t.Fatalf("CompileDeclaration(%s): %v", name, err)
	}
	return res
}

func newCompiler(decls ...typeast.Declaration) *Compiler {
	return New(typeast.NewUnit(decls...), DefaultOptions())
}

func TestKeywords(t *testing.T) {
	c := newCompiler()
	tests := map[string]string{
		typeast.KeywordString:    "z.string()",
		typeast.KeywordNumber:    "z.number()",
		typeast.KeywordBoolean:   "z.boolean()",
		typeast.KeywordBigInt:    "z.bigint()",
		typeast.KeywordAny:       "z.any()",
		typeast.KeywordUnknown:   "z.unknown()",
		typeast.KeywordNever:     "z.never()",
		typeast.KeywordVoid:      "z.void()",
		typeast.KeywordUndefined: "z.undefined()",
		typeast.KeywordNull:      "z.null()",
		typeast.KeywordSymbol:    "z.symbol()",
		typeast.KeywordObject:    "z.record(z.any())",
	}
	for kw, want := range tests {
		res := compileType(t, c, typeast.KW(kw), nil)
		if got := res.Schema.String(); got != want {
			t.Errorf("%s: got %q, want %q", kw, got, want)
		}
		if kw != typeast.KeywordObject {
			call, ok := res.Schema.(*schema.Call)
			if !ok || len(call.Args) != 0 || len(call.Chain) != 0 {
				t.Errorf("%s: expected a bare combinator, got %#v", kw, res.Schema)
			}
		}
	}
}

func TestArraySugarMatchesArrayReference(t *testing.T) {
	c := newCompiler()
	for _, elem := range []typeast.Type{
		typeast.Str(),
		typeast.Ref("User"),
		typeast.UnionOf(typeast.Str(), typeast.Num()),
		typeast.Obj(typeast.Prop("a", typeast.Bool())),
	} {
		sugar := compileType(t, c, typeast.ArrayOf(elem), nil)
		generic := compileType(t, c, typeast.Ref("Array", elem), nil)
		if diff := cmp.Diff(sugar.Schema, generic.Schema); diff != "" {
			t.Errorf("T[] and Array<T> differ (-sugar +generic):\n%s", diff)
		}
		readonly := compileType(t, c, typeast.Ref("ReadonlyArray", elem), nil)
		if diff := cmp.Diff(sugar.Schema, readonly.Schema); diff != "" {
			t.Errorf("T[] and ReadonlyArray<T> differ (-sugar +readonly):\n%s", diff)
		}
	}
}

func TestNullableUnion(t *testing.T) {
	c := newCompiler()
	for _, typ := range []typeast.Type{
		typeast.Str(),
		typeast.Ref("User"),
		typeast.ArrayOf(typeast.Num()),
		typeast.StrLit("a"),
	} {
		plain := compileType(t, c, typ, nil)
		nullable := compileType(t, c, typeast.UnionOf(typ, typeast.NullLit()), nil)
		want := schema.With(plain.Schema, schema.Mod("nullable"))
		if diff := cmp.Diff(want, nullable.Schema); diff != "" {
			t.Errorf("T | null (-want +got):\n%s", diff)
		}
	}

	res := compileType(t, c, typeast.UnionOf(typeast.NullLit(), typeast.Str(), typeast.Num()), nil)
	if got, want := res.Schema.String(), "z.union([z.string(), z.number()]).nullable()"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestObjectMembers(t *testing.T) {
	c := newCompiler()
	res := compileType(t, c, typeast.Obj(
		typeast.Prop("a", typeast.Str()),
		typeast.OptProp("b", typeast.Num()),
	), nil)

	want := schema.Z("object", schema.Obj(
		schema.F("a", schema.Z("string")),
		schema.F("b", schema.With(schema.Z("number"), schema.Mod("optional"))),
	))
	if diff := cmp.Diff(schema.Expr(want), res.Schema); diff != "" {
		t.Errorf("object (-want +got):\n%s", diff)
	}
	if got, want := res.Schema.String(), "z.object({ a: z.string(), b: z.number().optional() })"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIdempotent(t *testing.T) {
	unit := typeast.NewUnit(
		&typeast.Interface{Name: "Box", TypeParams: []typeast.TypeParam{{Name: "T"}}, Body: typeast.Obj(typeast.Prop("value", typeast.Ref("T")))},
		&typeast.Alias{Name: "Holder", Type: typeast.Obj(
			typeast.Prop("box", typeast.Ref("Box", typeast.Str())),
			typeast.Prop("tags", typeast.ArrayOf(typeast.Ref("Tag"))),
		)},
	)
	c := New(unit, DefaultOptions())
	first := compileNamed(t, c, "Holder")
	second := compileNamed(t, c, "Holder")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second compile differs (-first +second):\n%s", diff)
	}
}

func TestGenericInstantiation(t *testing.T) {
	c := newCompiler(&typeast.Interface{
		Name:       "Box",
		TypeParams: []typeast.TypeParam{{Name: "T"}},
		Body:       typeast.Obj(typeast.Prop("value", typeast.Ref("T"))),
	})
	got := compileType(t, c, typeast.Ref("Box", typeast.Str()), nil)
	want := compileType(t, c, typeast.Obj(typeast.Prop("value", typeast.Str())), nil)
	if diff := cmp.Diff(want.Schema, got.Schema); diff != "" {
		t.Errorf("Box<string> (-want +got):\n%s", diff)
	}
	if len(got.Dependencies) != 0 {
		t.Errorf("expected no dependencies, got %v", got.Dependencies)
	}
}

func TestGenericNestedAndDefaults(t *testing.T) {
	c := newCompiler(
		&typeast.Interface{
			Name:       "Pair",
			TypeParams: []typeast.TypeParam{{Name: "A"}, {Name: "B", Default: typeast.ArrayOf(typeast.Ref("A"))}},
			Body:       typeast.Obj(typeast.Prop("left", typeast.Ref("A")), typeast.Prop("right", typeast.Ref("B"))),
		},
		&typeast.Interface{
			Name:       "Box",
			TypeParams: []typeast.TypeParam{{Name: "T"}},
			Body:       typeast.Obj(typeast.Prop("pair", typeast.Ref("Pair", typeast.Ref("T")))),
		},
		&typeast.Alias{
			Name:       "Paged",
			TypeParams: []typeast.TypeParam{{Name: "T", Default: typeast.Ref("Item")}},
			Type:       typeast.Obj(typeast.Prop("items", typeast.ArrayOf(typeast.Ref("T")))),
		},
	)

	res := compileType(t, c, typeast.Ref("Box", typeast.Num()), nil)
	want := "z.object({ pair: z.object({ left: z.number(), right: z.array(z.number()) }) })"
	if got := res.Schema.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	res = compileType(t, c, typeast.Ref("Paged"), nil)
	if got, want := res.Schema.String(), "z.object({ items: z.array(itemSchema) })"; got != want {
		t.Errorf("default-only expansion: got %q, want %q", got, want)
	}
}

func TestGenericSelfReferenceArgument(t *testing.T) {
	c := newCompiler(&typeast.Interface{
		Name:       "Box",
		TypeParams: []typeast.TypeParam{{Name: "T"}},
		Body:       typeast.Obj(typeast.Prop("value", typeast.Ref("T"))),
	})
	// T is free in the caller, so Box<T> leaves T unbound.
	res := compileType(t, c, typeast.Ref("Box", typeast.Ref("T")), nil)
	if got, want := res.Schema.String(), "z.object({ value: tSchema })"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReservedBooleanInterface(t *testing.T) {
	unit := typeast.NewUnit(&typeast.Interface{
		Name:       "Flag",
		TypeParams: []typeast.TypeParam{{Name: "T", Constraint: typeast.Bool(), Default: typeast.BoolLit(true)}},
		Body:       typeast.Obj(typeast.Prop("x", typeast.Str())),
	})
	opts := DefaultOptions()
	opts.MaybeTypeNames = []string{"Flag"}
	c := New(unit, opts)

	res := compileType(t, c, typeast.Ref("Flag"), nil)
	if got, want := res.Schema.String(), "z.object({ x: z.string() })"; got != want {
		t.Errorf("Flag: got %q, want %q", got, want)
	}
	res = compileType(t, c, typeast.Ref("Flag", typeast.BoolLit(false)), nil)
	if got, want := res.Schema.String(), "z.object({ x: z.string().nullable().optional() })"; got != want {
		t.Errorf("Flag<false>: got %q, want %q", got, want)
	}

	opts.MaybeNullable = false
	c = New(unit, opts)
	res = compileType(t, c, typeast.Ref("Flag", typeast.BoolLit(false)), nil)
	if got, want := res.Schema.String(), "z.object({ x: z.string().optional() })"; got != want {
		t.Errorf("Flag<false> optional only: got %q, want %q", got, want)
	}

	top := compileNamed(t, c, "Flag")
	if got, want := top.Schema.String(), "z.object({ x: z.string() })"; got != want {
		t.Errorf("top-level Flag: got %q, want %q", got, want)
	}
}

func TestReservedBooleanInterfaceIgnoresCallerScope(t *testing.T) {
	unit := typeast.NewUnit(
		&typeast.Interface{
			Name:       "Flag",
			TypeParams: []typeast.TypeParam{{Name: "T", Constraint: typeast.Bool(), Default: typeast.BoolLit(true)}},
			Body:       typeast.Obj(typeast.Prop("x", typeast.Str())),
		},
		&typeast.Interface{
			Name:       "Outer",
			TypeParams: []typeast.TypeParam{{Name: "T"}},
			Body:       typeast.Obj(typeast.Prop("f", typeast.Ref("Flag")), typeast.Prop("g", typeast.Ref("Flag", typeast.Ref("T")))),
		},
	)
	opts := DefaultOptions()
	opts.MaybeTypeNames = []string{"Flag"}
	c := New(unit, opts)

	// A bare Flag takes its default; Flag<T> follows the caller's T.
	res := compileType(t, c, typeast.Ref("Outer", typeast.BoolLit(false)), nil)
	want := "z.object({ f: z.object({ x: z.string() }), g: z.object({ x: z.string().nullable().optional() }) })"
	if got := res.Schema.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReservedArity(t *testing.T) {
	unit := typeast.NewUnit(
		&typeast.Interface{Name: "Flag", TypeParams: []typeast.TypeParam{{Name: "A"}, {Name: "B"}}, Body: typeast.Obj()},
		&typeast.Alias{Name: "Uses", Type: typeast.Ref("Flag", typeast.BoolLit(true), typeast.BoolLit(true))},
	)
	opts := DefaultOptions()
	opts.MaybeTypeNames = []string{"Flag"}
	c := New(unit, opts)
	d, _ := unit.Lookup("Uses")
	_, err := c.CompileDeclaration(d)
	if !errors.Is(err, ErrReservedArity) {
		t.Fatalf("expected ErrReservedArity, got %v", err)
	}
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Declaration != "Uses" {
		t.Errorf("expected *Error for Uses, got %#v", err)
	}
}

func TestMaybeWrapper(t *testing.T) {
	c := newCompiler(&typeast.Alias{
		Name:       "Maybe",
		TypeParams: []typeast.TypeParam{{Name: "T"}},
		Type:       typeast.UnionOf(typeast.Ref("T"), typeast.NullLit()),
	})
	res := compileType(t, c, typeast.Obj(
		typeast.Prop("name", typeast.Ref("Maybe", typeast.Str())).WithTags(annotation.Tags{"minLength": "2"}),
	), nil)
	want := "z.object({ name: z.string().min(2).nullable().optional() })"
	if got := res.Schema.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDiscriminatedUnion(t *testing.T) {
	c := newCompiler()
	u := typeast.UnionOf(
		typeast.Obj(typeast.Prop("kind", typeast.StrLit("a")), typeast.Prop("v", typeast.Str())),
		typeast.Obj(typeast.Prop("kind", typeast.StrLit("b")), typeast.Prop("v", typeast.Num())),
	)
	res := compileType(t, c, u, annotation.Tags{"discriminator": "kind"})
	want := `z.discriminatedUnion("kind", [z.object({ kind: z.literal("a"), v: z.string() }), z.object({ kind: z.literal("b"), v: z.number() })])`
	if got := res.Schema.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}
}

func TestDiscriminatedUnionFallback(t *testing.T) {
	c := newCompiler(&typeast.Interface{Name: "Plain", Body: typeast.Obj(typeast.Prop("v", typeast.Str()))})
	tests := []struct {
		name string
		arms []typeast.Type
	}{
		{"missing member", []typeast.Type{
			typeast.Obj(typeast.Prop("kind", typeast.StrLit("a"))),
			typeast.Obj(typeast.Prop("other", typeast.StrLit("b"))),
		}},
		{"keyword arm", []typeast.Type{
			typeast.Obj(typeast.Prop("kind", typeast.StrLit("a"))),
			typeast.Str(),
		}},
		{"interface without member", []typeast.Type{
			typeast.Obj(typeast.Prop("kind", typeast.StrLit("a"))),
			typeast.Ref("Plain"),
		}},
	}
	for _, tt := range tests {
		res := compileType(t, c, typeast.UnionOf(tt.arms...), annotation.Tags{"discriminator": "kind"})
		if schema.Head(res.Schema) != "union" {
			t.Errorf("%s: expected plain union, got %s", tt.name, res.Schema)
		}
		if len(res.Warnings) != 1 || res.Warnings[0].Category != diagnostic.CategoryDiscriminatorInvalid {
			t.Errorf("%s: expected one discriminator warning, got %v", tt.name, res.Warnings)
		}
	}

	// Unresolved references are trusted.
	res := compileType(t, c, typeast.UnionOf(typeast.Ref("A"), typeast.Ref("B")), annotation.Tags{"discriminator": "kind"})
	if got, want := res.Schema.String(), `z.discriminatedUnion("kind", [aSchema, bSchema])`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTemplateLiteral(t *testing.T) {
	c := newCompiler(
		&typeast.Alias{Name: "Size", Type: typeast.UnionOf(typeast.StrLit("sm"), typeast.StrLit("lg"), typeast.NullLit())},
		&typeast.Enum{Name: "Dir", Members: []typeast.EnumMember{{Name: "Up", Value: typeast.StrLit("up")}, {Name: "Down", Value: typeast.StrLit("down")}}},
		&typeast.Enum{Name: "Bare", Members: []typeast.EnumMember{{Name: "A"}}},
	)
	tests := []struct {
		name string
		tpl  *typeast.Template
		want string
	}{
		{"inline union", &typeast.Template{Head: "x-", Spans: []typeast.TemplateSpan{{Type: typeast.UnionOf(typeast.StrLit("a"), typeast.StrLit("b"))}}},
			`z.union([z.literal("x-a"), z.literal("x-b")])`},
		{"alias with null", &typeast.Template{Head: "btn-", Spans: []typeast.TemplateSpan{{Type: typeast.Ref("Size"), Tail: "!"}}},
			`z.union([z.literal("btn-sm!"), z.literal("btn-lg!")]).nullable()`},
		{"enum product", &typeast.Template{Spans: []typeast.TemplateSpan{{Type: typeast.Ref("Dir"), Tail: "/"}, {Type: typeast.UnionOf(typeast.NumLit("1"), typeast.NumLit("2"))}}},
			`z.union([z.literal("up/1"), z.literal("up/2"), z.literal("down/1"), z.literal("down/2")])`},
		{"single combination", &typeast.Template{Head: "id-", Spans: []typeast.TemplateSpan{{Type: typeast.StrLit("x")}}},
			`z.literal("id-x")`},
		{"no spans", &typeast.Template{Head: "plain"},
			`z.literal("plain")`},
	}
	for _, tt := range tests {
		res := compileType(t, c, tt.tpl, nil)
		if got := res.Schema.String(); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}

	degraded := []*typeast.Template{
		{Head: "x-", Spans: []typeast.TemplateSpan{{Type: typeast.Str()}}},
		{Head: "x-", Spans: []typeast.TemplateSpan{{Type: typeast.Ref("Bare")}}},
		{Head: "x-", Spans: []typeast.TemplateSpan{{Type: typeast.Ref("Missing")}}},
		{Head: "x-", Spans: []typeast.TemplateSpan{{Type: typeast.ArrayOf(typeast.Str())}}},
	}
	for i, tpl := range degraded {
		res := compileType(t, c, tpl, nil)
		if got := res.Schema.String(); got != "z.any()" {
			t.Errorf("degraded %d: got %q, want z.any()", i, got)
		}
		if len(res.Warnings) != 1 || res.Warnings[0].Category != diagnostic.CategoryTemplateLiteral {
			t.Errorf("degraded %d: expected template-literal warning, got %v", i, res.Warnings)
		}
	}
}

func TestTemplateLiteralCombinationCap(t *testing.T) {
	var lits []typeast.Type
	for i := 0; i < 40; i++ {
		lits = append(lits, typeast.StrLit("v"+strconv.Itoa(i)))
	}
	c := newCompiler(&typeast.Alias{Name: "Many", Type: typeast.UnionOf(lits...)})
	tpl := &typeast.Template{Spans: []typeast.TemplateSpan{{Type: typeast.Ref("Many"), Tail: "-"}, {Type: typeast.Ref("Many")}}}
	res := compileType(t, c, tpl, nil)
	if got := res.Schema.String(); got != "z.any()" {
		t.Errorf("got %q, want z.any()", got)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Category != diagnostic.CategoryTemplateExpansion {
		t.Errorf("expected template-expansion warning, got %v", res.Warnings)
	}
}

func TestOmitPick(t *testing.T) {
	c := newCompiler()
	res := compileType(t, c, typeast.Ref("Omit", typeast.Ref("Person"), typeast.StrLit("age")), nil)
	if got, want := res.Schema.String(), "personSchema.omit({ age: true })"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"personSchema"}, res.Dependencies); diff != "" {
		t.Errorf("dependencies (-want +got):\n%s", diff)
	}

	res = compileType(t, c, typeast.Ref("Pick", typeast.Ref("Person"), typeast.UnionOf(typeast.StrLit("name"), typeast.StrLit("email"))), nil)
	if got, want := res.Schema.String(), "personSchema.pick({ name: true, email: true })"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	_, err := c.CompileType(typeast.Ref("Omit", typeast.Ref("Person"), typeast.Str()), nil)
	if !errors.Is(err, ErrProjectionKeys) {
		t.Errorf("expected ErrProjectionKeys, got %v", err)
	}
}

func TestBuiltins(t *testing.T) {
	c := newCompiler()
	tests := []struct {
		typ  typeast.Type
		want string
	}{
		{typeast.Ref("Partial", typeast.Ref("User")), "userSchema.partial()"},
		{typeast.Ref("Required", typeast.Ref("User")), "userSchema.required()"},
		{typeast.Ref("Readonly", typeast.Ref("User")), "userSchema"},
		{typeast.Ref("Record", typeast.Str(), typeast.Num()), "z.record(z.number())"},
		{typeast.Ref("Record", typeast.UnionOf(typeast.StrLit("a"), typeast.StrLit("b")), typeast.Num()),
			`z.record(z.union([z.literal("a"), z.literal("b")]), z.number())`},
		{typeast.Ref("Set", typeast.Str()), "z.set(z.string())"},
		{typeast.Ref("Promise", typeast.Num()), "z.promise(z.number())"},
		{typeast.Ref("Date"), "z.date()"},
		{typeast.Ref("Other", typeast.Str()), "otherSchema"},
		{typeast.InterOf(typeast.Ref("A"), typeast.Ref("B"), typeast.Obj(typeast.Prop("c", typeast.Str()))),
			"aSchema.and(bSchema).and(z.object({ c: z.string() }))"},
		{typeast.Paren(typeast.UnionOf(typeast.Str(), typeast.NullLit())), "z.string().nullable()"},
		{&typeast.Function{Params: []typeast.Param{{Name: "a", Type: typeast.Str()}, {Name: "b", Type: typeast.Num(), Optional: true}}, Return: typeast.Bool()},
			"z.function().args(z.string(), z.number().optional()).returns(z.boolean())"},
		{&typeast.Tuple{Elements: []typeast.TupleElement{
			{Name: "first", Type: typeast.Str()},
			{Type: typeast.Num(), Optional: true},
			{Type: typeast.ArrayOf(typeast.Bool()), Rest: true},
		}}, "z.tuple([z.string(), z.number().optional()]).rest(z.boolean())"},
		{typeast.Tup(typeast.Str(), typeast.Num()), "z.tuple([z.string(), z.number()])"},
		{typeast.NumLit("-1"), "z.literal(-1)"},
		{typeast.BoolLit(false), "z.literal(false)"},
		{typeast.StrLit(`say "hi"`), `z.literal("say \"hi\"")`},
	}
	for _, tt := range tests {
		res := compileType(t, c, tt.typ, nil)
		if got := res.Schema.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestIndexSignature(t *testing.T) {
	c := newCompiler()
	obj := &typeast.Object{
		Members: []typeast.Member{typeast.Prop("a", typeast.Num())},
		Index:   &typeast.IndexSignature{KeyName: "k", KeyType: typeast.Str(), ValueType: typeast.Num()},
	}
	res := compileType(t, c, obj, nil)
	if got, want := res.Schema.String(), "z.record(z.number()).and(z.object({ a: z.number() }))"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	obj = &typeast.Object{Index: &typeast.IndexSignature{KeyType: typeast.Num(), ValueType: typeast.Str()}}
	res = compileType(t, c, obj, nil)
	if got, want := res.Schema.String(), "z.record(z.number(), z.string())"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtensionChain(t *testing.T) {
	unit := typeast.NewUnit(
		&typeast.Interface{
			Name: "Employee",
			Heritage: []typeast.HeritageClause{
				{Target: "Person"},
				{Target: "Contact", Projection: typeast.ProjectionOmit, Keys: typeast.StrLit("id")},
			},
			Body: typeast.Obj(typeast.Prop("salary", typeast.Num())),
		},
		&typeast.Interface{
			Name:     "Bad",
			Heritage: []typeast.HeritageClause{{Target: "Person"}},
			Body:     &typeast.Object{Index: &typeast.IndexSignature{KeyType: typeast.Str(), ValueType: typeast.Str()}},
		},
	)
	c := New(unit, DefaultOptions())

	res := compileNamed(t, c, "Employee")
	want := "personSchema.extend(contactSchema.omit({ id: true }).shape).extend({ salary: z.number() })"
	if got := res.Schema.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"personSchema", "contactSchema"}, res.Dependencies); diff != "" {
		t.Errorf("dependencies (-want +got):\n%s", diff)
	}

	d, _ := unit.Lookup("Bad")
	if _, err := c.CompileDeclaration(d); !errors.Is(err, ErrExtendsWithIndex) {
		t.Errorf("expected ErrExtendsWithIndex, got %v", err)
	}
}

func TestIndexedAccess(t *testing.T) {
	unit := typeast.NewUnit(
		&typeast.Interface{Name: "User", Body: typeast.Obj(
			typeast.Prop("address", typeast.Ref("Address")),
			typeast.OptProp("tags", typeast.ArrayOf(typeast.Str())),
			typeast.Prop("scores", typeast.Ref("Record", typeast.Str(), typeast.Num())),
			typeast.Prop("pair", typeast.Tup(typeast.Str(), typeast.Ref("Address"))),
			typeast.Prop("nick", typeast.Ref("Maybe", typeast.ArrayOf(typeast.Str()))),
		)},
		&typeast.Interface{Name: "Address", Body: typeast.Obj(typeast.Prop("city", typeast.Str()))},
	)
	c := New(unit, DefaultOptions())
	tests := []struct {
		typ  typeast.Type
		want string
	}{
		{typeast.Index(typeast.Index(typeast.Ref("User"), typeast.StrLit("address")), typeast.StrLit("city")), "userSchema.shape.address.shape.city"},
		{typeast.Index(typeast.Index(typeast.Ref("User"), typeast.StrLit("tags")), typeast.Num()), "userSchema.shape.tags.unwrap().element"},
		{typeast.Index(typeast.Index(typeast.Ref("User"), typeast.StrLit("scores")), typeast.NumLit("-1")), "userSchema.shape.scores.valueSchema"},
		{typeast.Index(typeast.Index(typeast.Ref("User"), typeast.StrLit("pair")), typeast.NumLit("1")), "userSchema.shape.pair.items[1]"},
		{typeast.Index(typeast.Index(typeast.Ref("User"), typeast.StrLit("nick")), typeast.Num()), "userSchema.shape.nick.unwrap().unwrap().element"},
		{typeast.Index(typeast.Ref("User"), typeast.StrLit("first-name")), `userSchema.shape["first-name"]`},
	}
	for _, tt := range tests {
		res := compileType(t, c, tt.typ, nil)
		if got := res.Schema.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
		if diff := cmp.Diff([]string{"userSchema"}, res.Dependencies); diff != "" {
			t.Errorf("dependencies (-want +got):\n%s", diff)
		}
	}

	_, err := c.CompileType(typeast.Index(typeast.Obj(typeast.Prop("a", typeast.Str())), typeast.StrLit("a")), nil)
	if !errors.Is(err, ErrIndexedAccessRoot) {
		t.Errorf("expected ErrIndexedAccessRoot, got %v", err)
	}
}

func TestEnums(t *testing.T) {
	c := newCompiler(&typeast.Enum{Name: "Color", Members: []typeast.EnumMember{{Name: "Red", Value: typeast.StrLit("red")}}})

	res := compileNamed(t, c, "Color")
	if got, want := res.Schema.String(), "z.nativeEnum(Color)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !res.IsEnum || len(res.EnumReferences) != 1 || res.EnumReferences[0] != "Color" {
		t.Errorf("expected enum result referencing Color, got %+v", res)
	}

	for _, typ := range []typeast.Type{typeast.EnumLit("Color", "Red"), typeast.Ref("Color.Red")} {
		res = compileType(t, c, typ, nil)
		if got, want := res.Schema.String(), "z.literal(Color.Red)"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
		if diff := cmp.Diff([]string{"Color"}, res.EnumReferences); diff != "" {
			t.Errorf("enum references (-want +got):\n%s", diff)
		}
		if len(res.Dependencies) != 0 {
			t.Errorf("enum member literal should not add dependencies, got %v", res.Dependencies)
		}
	}
}

func TestMemberTags(t *testing.T) {
	opts := DefaultOptions()
	opts.CustomFormats = map[string]string{"phone": `^\+?[0-9]{7,15}$`}
	c := New(typeast.NewUnit(), opts)
	tests := []struct {
		name   string
		member typeast.Member
		want   string
	}{
		{"string constraints", typeast.Prop("email", typeast.Str()).WithTags(annotation.Tags{
			"minLength": "1", "format": "email", "description": "Contact address",
		}), `z.string().min(1).email().describe("Contact address")`},
		{"nullable optional", typeast.OptProp("nick", typeast.UnionOf(typeast.Str(), typeast.NullLit())).WithTags(annotation.Tags{
			"maxLength": "20",
		}), "z.string().max(20).nullable().optional()"},
		{"number range", typeast.Prop("age", typeast.Num()).WithTags(annotation.Tags{
			"minimum": "0", "maximum": "150", "default": "18",
		}), "z.number().min(0).max(150).default(18)"},
		{"element tags", typeast.Prop("names", typeast.ArrayOf(typeast.Str())).WithTags(annotation.Tags{
			"minLength": "1", "element-maxLength": "5",
		}), "z.array(z.string().max(5)).min(1)"},
		{"custom format", typeast.Prop("phone", typeast.Str()).WithTags(annotation.Tags{"format": "phone"}),
			`z.string().regex(/^\+?[0-9]{7,15}$/, "must be a valid phone")`},
		{"pattern", typeast.Prop("slug", typeast.Str()).WithTags(annotation.Tags{"pattern": "^a/b$"}),
			`z.string().regex(/^a\/b$/)`},
		{"override replace", typeast.Prop("id", typeast.Str()).WithTags(annotation.Tags{"schema": "string().uuid()"}),
			"z.string().uuid()"},
		{"override append", typeast.OptProp("n", typeast.Str()).WithTags(annotation.Tags{"schema": ".transform(Number)"}),
			"z.string().transform(Number).optional()"},
		{"ipv4", typeast.Prop("ip", typeast.Str()).WithTags(annotation.Tags{"format": "ipv4"}),
			`z.string().ip({ version: "v4" })`},
		{"bigint", typeast.Prop("big", typeast.KW(typeast.KeywordBigInt)).WithTags(annotation.Tags{"minimum": "1"}),
			"z.bigint().min(1n)"},
	}
	for _, tt := range tests {
		res := compileType(t, c, typeast.Obj(tt.member), nil)
		obj := res.Schema.(*schema.Call).Args[0].(*schema.Object)
		if got := obj.Fields[0].Value.String(); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
		if len(res.Warnings) != 0 {
			t.Errorf("%s: unexpected warnings %v", tt.name, res.Warnings)
		}
	}
}

func TestTagWarnings(t *testing.T) {
	c := newCompiler()
	res := compileType(t, c, typeast.Obj(
		typeast.Prop("a", typeast.Str()).WithTags(annotation.Tags{"format": "nope"}),
		typeast.Prop("b", typeast.Num()).WithTags(annotation.Tags{"minimum": "lots"}),
	), nil)
	if got, want := res.Schema.String(), "z.object({ a: z.string(), b: z.number() })"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", res.Warnings)
	}
	if res.Warnings[0].Category != diagnostic.CategoryFormatUnknown || res.Warnings[1].Category != diagnostic.CategoryConstraintInvalid {
		t.Errorf("unexpected categories: %v", res.Warnings)
	}
}

func TestStrictInterface(t *testing.T) {
	c := newCompiler(&typeast.Interface{
		Name: "Strict",
		Body: typeast.Obj(typeast.Prop("a", typeast.Str())),
		Tags: annotation.Tags{"strict": "true", "description": "Closed shape"},
	})
	res := compileNamed(t, c, "Strict")
	if got, want := res.Schema.String(), `z.object({ a: z.string() }).strict().describe("Closed shape")`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestUnsupportedDegrades(t *testing.T) {
	c := newCompiler(&typeast.Alias{Name: "Cond", Type: typeast.Obj(
		typeast.Prop("a", typeast.Unsup("conditional")),
		typeast.Prop("b", typeast.Str()),
	)})
	res := compileNamed(t, c, "Cond")
	if got, want := res.Schema.String(), "z.object({ a: z.any(), b: z.string() })"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Category != diagnostic.CategoryTypeUnsupported {
		t.Errorf("expected one type-unsupported warning, got %v", res.Warnings)
	}
	if res.Warnings[0].Declaration != "Cond" {
		t.Errorf("got declaration %q, want %q", res.Warnings[0].Declaration, "Cond")
	}
}

func TestHardErrors(t *testing.T) {
	unit := typeast.NewUnit(
		&typeast.Interface{Name: "Box", TypeParams: []typeast.TypeParam{{Name: "T"}}, Body: typeast.Obj(typeast.Prop("v", typeast.Ref("T")))},
		&typeast.Alias{Name: "List", TypeParams: []typeast.TypeParam{{Name: "T"}}, Type: typeast.ArrayOf(typeast.Ref("T"))},
		&typeast.Interface{Name: "Nest", TypeParams: []typeast.TypeParam{{Name: "T"}}, Body: typeast.Obj(
			typeast.Prop("next", typeast.Ref("Nest", typeast.ArrayOf(typeast.Ref("T")))),
		)},
		&typeast.Alias{Name: "Deep", Type: typeast.Ref("Nest", typeast.Str())},
	)
	c := New(unit, DefaultOptions())
	tests := []struct {
		decl string
		want error
	}{
		{"Box", ErrGenericDeclaration},
		{"List", ErrGenericDeclaration},
		{"Deep", ErrInstantiationDepth},
	}
	for _, tt := range tests {
		d, _ := unit.Lookup(tt.decl)
		res, err := c.CompileDeclaration(d)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.decl, err, tt.want)
		}
		if res != nil {
			t.Errorf("%s: expected nil result on hard error", tt.decl)
		}
	}
}

func TestDependenciesDeduplicated(t *testing.T) {
	c := newCompiler(&typeast.Alias{Name: "Graph", Type: typeast.Obj(
		typeast.Prop("a", typeast.Ref("Node")),
		typeast.Prop("b", typeast.ArrayOf(typeast.Ref("Edge"))),
		typeast.Prop("c", typeast.Ref("Node")),
		typeast.Prop("d", typeast.Ref("Graph")),
	)})
	res := compileNamed(t, c, "Graph")
	if diff := cmp.Diff([]string{"nodeSchema", "edgeSchema", "graphSchema"}, res.Dependencies); diff != "" {
		t.Errorf("dependencies (-want +got):\n%s", diff)
	}
}

func TestSchemaNamer(t *testing.T) {
	tests := []struct {
		prefix, suffix, in, want string
	}{
		{"", "Schema", "User", "userSchema"},
		{"", "Schema", "URL", "uRLSchema"},
		{"z", "", "User", "zUser"},
		{"", "Validator", "Élan", "élanValidator"},
	}
	for _, tt := range tests {
		if got := SchemaNamer(tt.prefix, tt.suffix)(tt.in); got != tt.want {
			t.Errorf("SchemaNamer(%q, %q)(%q) = %q, want %q", tt.prefix, tt.suffix, tt.in, got, tt.want)
		}
	}
}

func TestPartialRequiredTargets(t *testing.T) {
	c := newCompiler(
		&typeast.Interface{Name: "A", Body: typeast.Obj(typeast.Prop("a", typeast.Str()))},
		&typeast.Interface{Name: "B", Body: typeast.Obj(typeast.Prop("b", typeast.Num()))},
		&typeast.Interface{Name: "Dict", Body: &typeast.Object{Index: &typeast.IndexSignature{KeyType: typeast.Str(), ValueType: typeast.Num()}}},
		&typeast.Alias{Name: "Id", Type: typeast.Str()},
		&typeast.Alias{Name: "Shape", Type: typeast.Obj(typeast.Prop("s", typeast.Str()))},
		&typeast.Alias{Name: "Alias", Type: typeast.Ref("Shape")},
	)
	tests := []struct {
		typ  typeast.Type
		want string
	}{
		{typeast.Ref("Partial", typeast.Str()), "z.string()"},
		{typeast.Ref("Required", typeast.ArrayOf(typeast.Str())), "z.array(z.string())"},
		{typeast.Ref("Partial", typeast.Ref("Id")), "idSchema"},
		{typeast.Ref("Partial", typeast.Ref("Dict")), "dictSchema"},
		{typeast.Ref("Partial", typeast.Ref("A")), "aSchema.partial()"},
		{typeast.Ref("Partial", typeast.Ref("Alias")), "aliasSchema.partial()"},
		{typeast.Ref("Partial", typeast.Ref("Imported")), "importedSchema.partial()"},
		{typeast.Ref("Partial", typeast.Obj(typeast.Prop("c", typeast.Str()))), "z.object({ c: z.string() }).partial()"},
		{typeast.Ref("Partial", typeast.UnionOf(typeast.Ref("A"), typeast.Ref("B"))), "z.union([aSchema.partial(), bSchema.partial()])"},
		{typeast.Ref("Required", typeast.UnionOf(typeast.Ref("A"), typeast.Str())), "z.union([aSchema.required(), z.string()])"},
		{typeast.Ref("Partial", typeast.UnionOf(typeast.Ref("A"), typeast.NullLit())), "aSchema.partial().nullable()"},
		{typeast.Ref("Partial", typeast.InterOf(typeast.Ref("A"), typeast.Obj(typeast.Prop("c", typeast.Str())))),
			"aSchema.partial().and(z.object({ c: z.string() }).partial())"},
		{typeast.Ref("Partial", &typeast.Object{
			Members: []typeast.Member{typeast.Prop("c", typeast.Str())},
			Index:   &typeast.IndexSignature{KeyType: typeast.Str(), ValueType: typeast.Str()},
		}), "z.record(z.string()).and(z.object({ c: z.string() }).partial())"},
	}
	for _, tt := range tests {
		res := compileType(t, c, tt.typ, nil)
		if got := res.Schema.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
