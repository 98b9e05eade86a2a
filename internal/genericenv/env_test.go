package genericenv

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsgonest/tszod/internal/typeast"
)

func TestBindForks(t *testing.T) {
	root := Empty()
	a := root.Bind("T", typeast.Str())
	b := a.Bind("U", typeast.Num())
	shadow := b.Bind("T", typeast.Bool())

	if root.Len() != 0 {
		t.Errorf("root gained bindings: %v", root.Names())
	}
	if a.Len() != 1 {
		t.Errorf("a = %v", a.Names())
	}
	if diff := cmp.Diff([]string{"T", "U"}, b.Names()); diff != "" {
		t.Errorf("b names (-want +got):\n%s", diff)
	}
	if got, _ := b.Lookup("T"); got.(*typeast.Keyword).Name != typeast.KeywordString {
		t.Errorf("b sees the shadowed binding: %v", got)
	}
	if got, _ := shadow.Lookup("T"); got.(*typeast.Keyword).Name != typeast.KeywordBoolean {
		t.Errorf("shadow T = %v", got)
	}
}

func TestWithout(t *testing.T) {
	env := Empty().Bind("T", typeast.Str()).Bind("U", typeast.Num())
	dropped := env.Without("T")
	if _, ok := dropped.Lookup("T"); ok {
		t.Error("T still bound")
	}
	if _, ok := env.Lookup("T"); !ok {
		t.Error("Without modified its receiver")
	}
	if same := env.Without("missing"); same.Len() != env.Len() {
		t.Error("removing an unbound name should be a no-op")
	}
}

func TestResolve(t *testing.T) {
	env := Empty().Bind("T", typeast.Ref("User"))
	got := env.Resolve(typeast.UnionOf(typeast.ArrayOf(typeast.Ref("T")), typeast.Ref("U")))
	want := typeast.UnionOf(typeast.ArrayOf(typeast.Ref("User")), typeast.Ref("U"))
	if diff := cmp.Diff(typeast.Type(want), got); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}

	in := typeast.Ref("T")
	if Empty().Resolve(in) != typeast.Type(in) {
		t.Error("an empty environment should return its input")
	}
}

func TestZeroValueIsEmpty(t *testing.T) {
	var env Env
	if _, ok := env.Lookup("T"); ok {
		t.Error("zero Env has bindings")
	}
	if got := env.Bind("T", typeast.Str()).Len(); got != 1 {
		t.Errorf("Len = %d", got)
	}
}
