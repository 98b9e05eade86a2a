// Package compiler translates structural type declarations into zod schema
// expressions.
//
// A Compiler is built once per source unit and is safe for concurrent use:
// every CompileDeclaration call owns its generic environment, dependency
// collector and diagnostics.
package compiler

import (
	"errors"
	"fmt"

	"github.com/tsgonest/tszod/internal/annotation"
	"github.com/tsgonest/tszod/internal/deps"
	"github.com/tsgonest/tszod/internal/diagnostic"
	"github.com/tsgonest/tszod/internal/genericenv"
	"github.com/tsgonest/tszod/internal/schema"
	"github.com/tsgonest/tszod/internal/typeast"
)

// Result is the compiled form of one declaration.
type Result struct {
	Name           string                  `json:"name"`
	Kind           typeast.DeclKind        `json:"kind"`
	SchemaName     string                  `json:"schemaName"`
	Dependencies   []string                `json:"dependencies"`
	EnumReferences []string                `json:"enumReferences,omitempty"`
	IsEnum         bool                    `json:"isEnum"`
	Schema         schema.Expr             `json:"schema"`
	Warnings       []diagnostic.Diagnostic `json:"warnings,omitempty"`
}

// Compiler compiles the declarations of one unit.
type Compiler struct {
	unit  *typeast.Unit
	opts  Options
	maybe map[string]bool
}

// New returns a compiler for unit.
func New(unit *typeast.Unit, opts Options) *Compiler {
	if opts.SchemaName == nil {
		opts.SchemaName = SchemaNamer("", "Schema")
	}
	maybe := make(map[string]bool, len(opts.MaybeTypeNames))
	for _, n := range opts.MaybeTypeNames {
		maybe[n] = true
	}
	return &Compiler{unit: unit, opts: opts, maybe: maybe}
}

// Unit returns the unit the compiler resolves references against.
func (c *Compiler) Unit() *typeast.Unit { return c.unit }

// SchemaName derives the schema identifier for a declaration name.
func (c *Compiler) SchemaName(declaration string) string { return c.opts.SchemaName(declaration) }

// CompileDeclaration compiles d into a named schema. The returned error is
// an *Error for hard failures; soft degradations are reported as warnings
// on the result.
func (c *Compiler) CompileDeclaration(d typeast.Declaration) (*Result, error) {
	cc := c.begin(d.DeclName())
	res := &Result{
		Name:       d.DeclName(),
		Kind:       d.DeclKind(),
		SchemaName: c.opts.SchemaName(d.DeclName()),
	}

	var e schema.Expr
	switch d := d.(type) {
	case *typeast.Enum:
		cc.enums.Add(d.Name)
		res.IsEnum = true
		e = annotation.Document(schema.Z("nativeEnum", schema.Text(d.Name)), d.Tags)
	case *typeast.Alias:
		if len(d.TypeParams) > 0 {
			return nil, cc.hardError(ErrGenericDeclaration, fmt.Sprintf("type %s declares %d type parameter(s)", d.Name, len(d.TypeParams)))
		}
		e = cc.boundary(d.Type, scope{}, d.Tags, false, false)
	case *typeast.Interface:
		switch {
		case c.maybe[d.Name]:
			e = cc.expandReserved(d, nil, scope{})
		case len(d.TypeParams) > 0:
			return nil, cc.hardError(ErrGenericDeclaration, fmt.Sprintf("interface %s declares %d type parameter(s)", d.Name, len(d.TypeParams)))
		default:
			e = cc.constrain(cc.compileInterface(d, scope{tags: d.Tags}), d.Tags)
		}
		e = annotation.Document(e, d.Tags)
	default:
		return nil, cc.hardError(errors.New("unknown declaration kind"), string(d.DeclKind()))
	}
	if cc.err != nil {
		return nil, cc.err
	}
	return cc.finish(res, e), nil
}

// CompileType compiles a free-standing type expression carrying tags. The
// result has no name.
func (c *Compiler) CompileType(t typeast.Type, tags annotation.Tags) (*Result, error) {
	cc := c.begin("")
	e := cc.boundary(t, scope{}, tags, false, false)
	if cc.err != nil {
		return nil, cc.err
	}
	return cc.finish(&Result{}, e), nil
}

// compilation is the state of one top-level compile.
type compilation struct {
	*Compiler
	decl  string
	deps  *deps.Collector
	enums *deps.Collector
	diags *diagnostic.Collector
	err   error
}

func (c *Compiler) begin(decl string) *compilation {
	return &compilation{
		Compiler: c,
		decl:     decl,
		deps:     deps.NewCollector(),
		enums:    deps.NewCollector(),
		diags:    diagnostic.NewCollector(false, false),
	}
}

func (cc *compilation) finish(res *Result, e schema.Expr) *Result {
	res.Schema = e
	res.Dependencies = cc.deps.Names()
	res.EnumReferences = cc.enums.Names()
	res.Warnings = cc.diags.Diagnostics()
	return res
}

// scope is the context threaded down the walk.
type scope struct {
	env   genericenv.Env
	tags  annotation.Tags // tags of the enclosing boundary
	depth int             // generic instantiation depth
	// members overrides optional/nullable for the members of the next
	// object body only.
	members *memberMode
}

type memberMode struct {
	optional bool
	nullable bool
}

// arm returns the scope for a nested node: same environment, no tags and
// no member override.
func (sc scope) arm() scope {
	return scope{env: sc.env, depth: sc.depth}
}

// wrap carries modifiers deferred to the enclosing boundary so constraint
// tags apply to the unwrapped schema.
type wrap struct {
	nullable bool
	optional bool
}

func (w wrap) apply(e schema.Expr) schema.Expr {
	if w.nullable {
		e = schema.With(e, schema.Mod("nullable"))
	}
	if w.optional {
		e = schema.With(e, schema.Mod("optional"))
	}
	return e
}

// boundary compiles a type that carries its own tags (a member, an alias,
// an array element). Modifiers apply in order: constraints, override,
// strict, nullable, optional, description, default.
func (cc *compilation) boundary(t typeast.Type, sc scope, tags annotation.Tags, optional, nullable bool) schema.Expr {
	sc.tags = tags
	e, w := cc.compileInner(t, sc)
	e = cc.constrain(e, tags)
	w.nullable = w.nullable || nullable
	w.optional = w.optional || optional
	return annotation.Document(w.apply(e), tags)
}

func (cc *compilation) constrain(e schema.Expr, tags annotation.Tags) schema.Expr {
	return annotation.Constrain(e, tags, cc.opts.CustomFormats, cc.reportTag)
}

func (cc *compilation) reportTag(err *annotation.TagError) {
	cat := diagnostic.CategoryConstraintInvalid
	if errors.Is(err, annotation.ErrUnknownFormat) {
		cat = diagnostic.CategoryFormatUnknown
	}
	cc.diags.Warn(cat, cc.decl, fmt.Sprintf("ignoring %v", err))
}

// compile compiles t and applies any deferred modifiers.
func (cc *compilation) compile(t typeast.Type, sc scope) schema.Expr {
	e, w := cc.compileInner(t, sc)
	return w.apply(e)
}

// compileInner dispatches on the node kind.
func (cc *compilation) compileInner(t typeast.Type, sc scope) (schema.Expr, wrap) {
	if cc.err != nil {
		return schema.Any(), wrap{}
	}
	switch n := t.(type) {
	case *typeast.Reference:
		return cc.compileReference(n, sc)
	case *typeast.Object:
		return cc.compileObject(n, sc), wrap{}
	case *typeast.Union:
		return cc.compileUnion(n, sc)
	case *typeast.Intersection:
		return cc.compileIntersection(n, sc), wrap{}
	case *typeast.Tuple:
		return cc.compileTuple(n, sc), wrap{}
	case *typeast.Literal:
		return cc.compileLiteral(n), wrap{}
	case *typeast.Array:
		return cc.arrayOf(n.Elem, sc), wrap{}
	case *typeast.Function:
		return cc.compileFunction(n, sc), wrap{}
	case *typeast.IndexedAccess:
		return cc.resolveIndexedAccess(n, sc), wrap{}
	case *typeast.Template:
		return cc.expandTemplate(n, sc)
	case *typeast.Keyword:
		return cc.compileKeyword(n), wrap{}
	case *typeast.Parenthesized:
		return cc.compileInner(n.Inner, sc)
	case *typeast.Unsupported:
		return cc.degrade(diagnostic.CategoryTypeUnsupported, fmt.Sprintf("%s types are not supported; accepting any value", n.Syntax)), wrap{}
	case nil:
		return cc.degrade(diagnostic.CategoryTypeUnsupported, "missing type; accepting any value"), wrap{}
	}
	return cc.degrade(diagnostic.CategoryTypeUnsupported, fmt.Sprintf("unrecognized type node %s; accepting any value", t.Kind())), wrap{}
}

// compileReference applies rules 1 to 4.
func (cc *compilation) compileReference(ref *typeast.Reference, sc scope) (schema.Expr, wrap) {
	// Generic parameter substitution. Bound types were resolved against the
	// environment they were bound in, so they compile in an empty one.
	if len(ref.TypeArgs) == 0 {
		if bound, ok := sc.env.Lookup(ref.Name); ok {
			return cc.compileInner(bound, scope{tags: sc.tags, depth: sc.depth})
		}
	}

	decl, declared := cc.unit.Lookup(ref.Name)

	// Reserved boolean-generic interfaces and Maybe wrappers.
	if cc.maybe[ref.Name] {
		if iface, ok := decl.(*typeast.Interface); ok {
			return cc.expandReserved(iface, ref.TypeArgs, sc), wrap{}
		}
		return cc.maybeWrapper(ref, sc)
	}

	// Generic declaration expansion.
	if declared {
		if params := typeast.TypeParamsOf(decl); len(params) > 0 && (len(ref.TypeArgs) > 0 || allDefaulted(params)) {
			return cc.instantiate(decl, ref.TypeArgs, sc)
		}
	}

	return cc.compileBuiltin(ref, sc)
}

func allDefaulted(params []typeast.TypeParam) bool {
	for _, p := range params {
		if p.Default == nil {
			return false
		}
	}
	return true
}

// instantiate compiles the body of a generic declaration with its
// parameters bound to args.
func (cc *compilation) instantiate(decl typeast.Declaration, args []typeast.Type, sc scope) (schema.Expr, wrap) {
	if sc.depth >= MaxInstantiationDepth {
		return cc.fail(ErrInstantiationDepth, fmt.Sprintf("%s nests more than %d generic instantiations", decl.DeclName(), MaxInstantiationDepth)), wrap{}
	}
	inner := scope{
		env:   bindParams(typeast.TypeParamsOf(decl), args, sc.env),
		tags:  typeast.TagsOf(decl),
		depth: sc.depth + 1,
	}
	switch d := decl.(type) {
	case *typeast.Alias:
		e, w := cc.compileInner(d.Type, inner)
		return cc.constrain(e, d.Tags), w
	case *typeast.Interface:
		return cc.constrain(cc.compileInterface(d, inner), d.Tags), wrap{}
	}
	return cc.compileBuiltin(&typeast.Reference{Name: decl.DeclName()}, sc)
}

// bindParams builds the environment of an instantiation. Arguments are
// resolved in the caller's environment first; missing arguments take the
// parameter default. A parameter whose argument is a bare reference to
// itself stays unbound.
func bindParams(params []typeast.TypeParam, args []typeast.Type, caller genericenv.Env) genericenv.Env {
	env := genericenv.Empty()
	for i, p := range params {
		var arg typeast.Type
		switch {
		case i < len(args):
			arg = caller.Resolve(args[i])
		case p.Default != nil:
			arg = env.Resolve(p.Default)
		default:
			continue
		}
		if r, ok := typeast.Unparen(arg).(*typeast.Reference); ok && len(r.TypeArgs) == 0 && r.Name == p.Name {
			env = env.Without(p.Name)
			continue
		}
		env = env.Bind(p.Name, arg)
	}
	return env
}

// expandReserved compiles a reserved boolean-generic interface. A true
// argument compiles the body as declared; anything else overrides every
// member with the configured optional/nullable modifiers.
func (cc *compilation) expandReserved(iface *typeast.Interface, args []typeast.Type, sc scope) schema.Expr {
	if len(iface.TypeParams) != 1 {
		return cc.fail(ErrReservedArity, fmt.Sprintf("%s declares %d", iface.Name, len(iface.TypeParams)))
	}
	if sc.depth >= MaxInstantiationDepth {
		return cc.fail(ErrInstantiationDepth, fmt.Sprintf("%s nests more than %d generic instantiations", iface.Name, MaxInstantiationDepth))
	}
	p := iface.TypeParams[0]
	var arg typeast.Type
	if len(args) > 0 {
		arg = sc.env.Resolve(args[0])
	} else if p.Default != nil {
		arg = p.Default
	} else {
		arg = typeast.BoolLit(true)
	}

	inner := scope{env: genericenv.Empty().Bind(p.Name, arg), tags: iface.Tags, depth: sc.depth + 1}
	if !isTrue(arg) {
		inner.members = &memberMode{optional: cc.opts.MaybeOptional, nullable: cc.opts.MaybeNullable}
	}
	return cc.constrain(cc.compileInterface(iface, inner), iface.Tags)
}

func isTrue(t typeast.Type) bool {
	lit, ok := typeast.Unparen(t).(*typeast.Literal)
	return ok && lit.LiteralKind == typeast.LiteralBoolean && lit.Value == "true"
}

// maybeWrapper compiles Maybe<T> as T with the configured modifiers.
func (cc *compilation) maybeWrapper(ref *typeast.Reference, sc scope) (schema.Expr, wrap) {
	if len(ref.TypeArgs) == 0 {
		return cc.degrade(diagnostic.CategoryTypeUnsupported, fmt.Sprintf("%s used without a type argument; accepting any value", ref.Name)), wrap{}
	}
	e, w := cc.compileInner(ref.TypeArgs[0], sc.arm())
	w.nullable = w.nullable || cc.opts.MaybeNullable
	w.optional = w.optional || cc.opts.MaybeOptional
	return e, w
}

// compileBuiltin applies rule 4: built-in generic constructs, then named
// references.
func (cc *compilation) compileBuiltin(ref *typeast.Reference, sc scope) (schema.Expr, wrap) {
	arg := func(i int) typeast.Type {
		if i < len(ref.TypeArgs) {
			return ref.TypeArgs[i]
		}
		return &typeast.Keyword{Name: typeast.KeywordAny}
	}
	switch ref.Name {
	case "Array", "ReadonlyArray":
		return cc.arrayOf(arg(0), sc), wrap{}
	case "Partial":
		return cc.objectModifier(cc.compile(arg(0), sc.arm()), "partial", 0), wrap{}
	case "Required":
		return cc.objectModifier(cc.compile(arg(0), sc.arm()), "required", 0), wrap{}
	case "Readonly":
		return cc.compileInner(arg(0), sc)
	case "Record":
		if len(ref.TypeArgs) < 2 {
			return cc.record(typeast.KW(typeast.KeywordString), arg(0), nil, sc), wrap{}
		}
		return cc.record(ref.TypeArgs[0], ref.TypeArgs[1], nil, sc), wrap{}
	case "Set":
		return schema.Z("set", cc.boundary(arg(0), sc.arm(), sc.tags.Element(), false, false)), wrap{}
	case "Promise":
		return schema.Z("promise", cc.compile(arg(0), sc.arm())), wrap{}
	case "Date":
		return schema.Z("date"), wrap{}
	case "Omit", "Pick":
		base := cc.compile(arg(0), sc.arm())
		return cc.project(base, typeast.Projection(ref.Name), arg(1), sc), wrap{}
	}
	if lit, ok := cc.qualifiedEnumMember(ref.Name); ok {
		return cc.compileLiteral(lit), wrap{}
	}
	return cc.reference(ref.Name), wrap{}
}

// reference registers name as a dependency and refers to its schema.
func (cc *compilation) reference(name string) *schema.Ref {
	id := cc.opts.SchemaName(name)
	cc.deps.Add(id)
	return schema.Named(id)
}

// compileInterface compiles an interface body, as an extension chain when
// it has heritage clauses.
func (cc *compilation) compileInterface(iface *typeast.Interface, sc scope) schema.Expr {
	body := iface.Body
	if body == nil {
		body = &typeast.Object{}
	}
	if len(iface.Heritage) > 0 {
		if body.Index != nil {
			return cc.fail(ErrExtendsWithIndex, fmt.Sprintf("interface %s", iface.Name))
		}
		return cc.extensionChain(iface.Heritage, body, sc)
	}
	return cc.compileObject(body, sc)
}

// compileObject applies rule 5.
func (cc *compilation) compileObject(obj *typeast.Object, sc scope) schema.Expr {
	if obj.Index == nil {
		return schema.Z("object", schema.Obj(cc.fields(obj, sc)...))
	}
	rec := cc.record(obj.Index.KeyType, obj.Index.ValueType, obj.Index.Tags, sc)
	if len(obj.Members) == 0 {
		return rec
	}
	return schema.With(rec, schema.Mod("and", schema.Z("object", schema.Obj(cc.fields(obj, sc)...))))
}

// fields compiles the data members of obj. The member override of sc, if
// any, replaces each member's own optional flag.
func (cc *compilation) fields(obj *typeast.Object, sc scope) []schema.Field {
	fields := make([]schema.Field, 0, len(obj.Members))
	for _, m := range obj.Members {
		optional, nullable := m.Optional, false
		if sc.members != nil {
			optional, nullable = sc.members.optional, sc.members.nullable
		}
		fields = append(fields, schema.F(m.Name, cc.boundary(m.Type, sc.arm(), m.Tags, optional, nullable)))
	}
	return fields
}

// record compiles a record: one argument for string keys, two otherwise.
func (cc *compilation) record(key, value typeast.Type, valueTags annotation.Tags, sc scope) schema.Expr {
	v := cc.boundary(value, sc.arm(), valueTags, false, false)
	if k, ok := typeast.Unparen(sc.env.Resolve(key)).(*typeast.Keyword); ok && k.Name == typeast.KeywordString {
		return schema.Z("record", v)
	}
	return schema.Z("record", cc.compile(key, sc.arm()), v)
}

// arrayOf compiles an array; element tags come from the element-* tags of
// the enclosing boundary.
func (cc *compilation) arrayOf(elem typeast.Type, sc scope) schema.Expr {
	return schema.Z("array", cc.boundary(elem, sc.arm(), sc.tags.Element(), false, false))
}

// compileUnion applies rule 6.
func (cc *compilation) compileUnion(u *typeast.Union, sc scope) (schema.Expr, wrap) {
	var (
		w    wrap
		arms []typeast.Type
	)
	for _, t := range u.Types {
		ut := typeast.Unparen(t)
		if typeast.IsNull(ut) {
			w.nullable = true
			continue
		}
		if k, ok := ut.(*typeast.Keyword); ok && k.Name == typeast.KeywordUndefined {
			w.optional = true
			continue
		}
		arms = append(arms, t)
	}

	switch len(arms) {
	case 0:
		if w.nullable {
			return schema.Z("null"), wrap{optional: w.optional}
		}
		return schema.Z("undefined"), wrap{}
	case 1:
		e, inner := cc.compileInner(arms[0], sc)
		inner.nullable = inner.nullable || w.nullable
		inner.optional = inner.optional || w.optional
		return e, inner
	}

	compiled := make([]schema.Expr, 0, len(arms))
	for _, arm := range arms {
		compiled = append(compiled, cc.compile(arm, sc.arm()))
	}
	if disc, ok := sc.tags.Get(annotation.TagDiscriminator); ok && disc != "" && disc != "true" {
		reason := cc.checkDiscriminated(arms, disc, sc)
		if reason == "" {
			return schema.Z("discriminatedUnion", schema.String(disc), schema.ListOf(compiled...)), w
		}
		cc.diags.WarnWithHint(diagnostic.CategoryDiscriminatorInvalid, cc.decl,
			fmt.Sprintf("cannot discriminate union on %q: %s; compiling a plain union", disc, reason),
			fmt.Sprintf("give every arm a %q member", disc))
	}
	return schema.Z("union", schema.ListOf(compiled...)), w
}

// compileIntersection applies rule 7.
func (cc *compilation) compileIntersection(in *typeast.Intersection, sc scope) schema.Expr {
	if len(in.Types) == 0 {
		return schema.Z("unknown")
	}
	acc := cc.compile(in.Types[0], sc.arm())
	for _, t := range in.Types[1:] {
		acc = schema.With(acc, schema.Mod("and", cc.compile(t, sc.arm())))
	}
	return acc
}

// compileTuple applies rule 8.
func (cc *compilation) compileTuple(tup *typeast.Tuple, sc scope) schema.Expr {
	var (
		items []schema.Expr
		rest  schema.Expr
	)
	for i, el := range tup.Elements {
		if el.Rest && i == len(tup.Elements)-1 {
			rest = cc.compile(restElement(sc.env.Resolve(el.Type)), sc.arm())
			continue
		}
		e := cc.compile(el.Type, sc.arm())
		if el.Optional {
			e = schema.With(e, schema.Mod("optional"))
		}
		items = append(items, e)
	}
	e := schema.Expr(schema.Z("tuple", schema.ListOf(items...)))
	if rest != nil {
		e = schema.With(e, schema.Mod("rest", rest))
	}
	return e
}

// restElement returns the element type of a rest slot's array type.
func restElement(t typeast.Type) typeast.Type {
	switch n := typeast.Unparen(t).(type) {
	case *typeast.Array:
		return n.Elem
	case *typeast.Reference:
		if (n.Name == "Array" || n.Name == "ReadonlyArray") && len(n.TypeArgs) == 1 {
			return n.TypeArgs[0]
		}
	}
	return t
}

// compileLiteral applies rule 9.
func (cc *compilation) compileLiteral(lit *typeast.Literal) schema.Expr {
	switch lit.LiteralKind {
	case typeast.LiteralString:
		return schema.Z("literal", schema.String(lit.Value))
	case typeast.LiteralNumber:
		return schema.Z("literal", schema.Number(lit.Value))
	case typeast.LiteralBoolean:
		return schema.Z("literal", schema.Bool(lit.Value == "true"))
	case typeast.LiteralNull:
		return schema.Z("null")
	case typeast.LiteralEnumMember:
		cc.enums.Add(lit.Enum)
		return schema.Z("literal", schema.Text(lit.Enum+"."+lit.Member))
	}
	return cc.degrade(diagnostic.CategoryTypeUnsupported, fmt.Sprintf("unrecognized %s literal; accepting any value", lit.LiteralKind))
}

// compileFunction applies rule 11.
func (cc *compilation) compileFunction(fn *typeast.Function, sc scope) schema.Expr {
	params := make([]schema.Expr, 0, len(fn.Params))
	for _, p := range fn.Params {
		e := cc.compile(p.Type, sc.arm())
		if p.Optional {
			e = schema.With(e, schema.Mod("optional"))
		}
		params = append(params, e)
	}
	ret := schema.Expr(schema.Z("void"))
	if fn.Return != nil {
		ret = cc.compile(fn.Return, sc.arm())
	}
	return schema.With(schema.Z("function"), schema.Mod("args", params...), schema.Mod("returns", ret))
}

var keywordCombinators = map[string]string{
	typeast.KeywordString:    "string",
	typeast.KeywordNumber:    "number",
	typeast.KeywordBoolean:   "boolean",
	typeast.KeywordBigInt:    "bigint",
	typeast.KeywordAny:       "any",
	typeast.KeywordUnknown:   "unknown",
	typeast.KeywordNever:     "never",
	typeast.KeywordVoid:      "void",
	typeast.KeywordUndefined: "undefined",
	typeast.KeywordNull:      "null",
	typeast.KeywordSymbol:    "symbol",
}

// compileKeyword applies rule 14.
func (cc *compilation) compileKeyword(k *typeast.Keyword) schema.Expr {
	if k.Name == typeast.KeywordObject {
		return schema.Z("record", schema.Any())
	}
	if name, ok := keywordCombinators[k.Name]; ok {
		return schema.Z(name)
	}
	return cc.degrade(diagnostic.CategoryTypeUnsupported, fmt.Sprintf("keyword %q is not supported; accepting any value", k.Name))
}

// degrade reports a soft failure and returns the catch-all schema.
func (cc *compilation) degrade(cat diagnostic.Category, msg string) schema.Expr {
	cc.diags.Warn(cat, cc.decl, msg)
	return schema.Any()
}

// fail records the first hard error and returns a placeholder schema.
func (cc *compilation) fail(kind error, detail string) schema.Expr {
	if cc.err == nil {
		cc.err = &Error{Declaration: cc.decl, Kind: kind, Detail: detail}
	}
	return schema.Any()
}

func (cc *compilation) hardError(kind error, detail string) error {
	cc.fail(kind, detail)
	return cc.err
}
