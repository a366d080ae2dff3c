package types

import "testing"

func TestCheckAnyAcceptsEverything(t *testing.T) {
	l := NewLattice()
	if !l.Check(T(Any), T(String)) {
		t.Fatal("Any guard should accept String")
	}
	if !l.Check(T(Any), &Arr{Elem: T(Integer)}) {
		t.Fatal("Any guard should accept Array")
	}
}

func TestIsSubtypeLattice(t *testing.T) {
	l := NewLattice()
	cases := []struct {
		a, b Type
		want bool
	}{
		{T(Integer), T(Number), true},
		{T(Real), T(Number), true},
		{T(Number), T(Integer), false},
		{T(Builtin), T(Function), true},
		{T(String), T(Number), false},
		{T(Integer), T(Any), true},
	}
	for _, c := range cases {
		if got := l.IsSubtype(c.a, c.b); got != c.want {
			t.Errorf("IsSubtype(%s, %s) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestPromoteIntegerReal(t *testing.T) {
	l := NewLattice()
	got := l.Promote(T(Integer), T(Real))
	if got.String() != Real {
		t.Fatalf("expected Real, got %s", got)
	}
}

func TestPromoteIncompatibleShapes(t *testing.T) {
	l := NewLattice()
	got := l.Promote(T(String), T(Number))
	if got != NoPromotion {
		t.Fatalf("expected NoPromotion, got %s", got)
	}
}

func TestUniteIdempotent(t *testing.T) {
	l := NewLattice()
	got := Unite(l, []Type{T(Integer), T(Integer)})
	if got.String() != Integer {
		t.Fatalf("unite([T,T]) should collapse to T, got %s", got)
	}
}

func TestUniteAnyAbsorbs(t *testing.T) {
	l := NewLattice()
	got := Unite(l, []Type{T(Integer), T(Any), T(String)})
	if got.String() != Any {
		t.Fatalf("unite containing Any should equal Any, got %s", got)
	}
}

func TestUniteSortedUnion(t *testing.T) {
	l := NewLattice()
	got := Unite(l, []Type{T(String), T(Integer)})
	u, ok := got.(*Union)
	if !ok {
		t.Fatalf("expected Union, got %T", got)
	}
	if u.Members[0].String() != Integer || u.Members[1].String() != String {
		t.Fatalf("expected sorted [Integer, String], got %s", u)
	}
}

func TestFuncSubtypeContravariantParams(t *testing.T) {
	l := NewLattice()
	narrow := &Func{Kind: Function, Params: []Type{T(Integer)}, Ret: T(Integer)}
	wide := &Func{Kind: Function, Params: []Type{T(Number)}, Ret: T(Integer)}
	// wide accepts Number params, narrow only accepts Integer: narrow is
	// NOT substitutable for wide (it can't accept a Real), but wide IS
	// substitutable for narrow's call sites.
	if l.IsSubtype(narrow, wide) {
		t.Fatal("narrow func should not be a subtype of wide func")
	}
	if !l.IsSubtype(wide, narrow) {
		t.Fatal("wide func should be a subtype of narrow func (contravariant params)")
	}
}

func TestAliasResolution(t *testing.T) {
	l := NewLattice()
	l.RegisterAlias("ID", T(Integer))
	if !l.IsSubtype(T("ID"), T(Number)) {
		t.Fatal("alias ID should resolve to Integer and be a subtype of Number")
	}
}
