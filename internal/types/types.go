// Package types implements Plang's gradual type lattice: a subtype
// relation rooted at Any, union types, function types, arrays and map
// (record) types, plus the promotion and unification operations the
// Validator relies on (spec.md §3, §4.4).
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the shared interface for every member of the lattice. Concrete
// variants mirror spec.md §3: Type(name), TypeUnion, TypeFunc, TypeArray,
// TypeMap.
type Type interface {
	String() string
	typeNode()
}

// Kind names the base lattice members (spec.md §3).
const (
	Any      = "Any"
	Null     = "Null"
	Boolean  = "Boolean"
	Number   = "Number"
	Integer  = "Integer"
	Real     = "Real"
	String   = "String"
	Array    = "Array"
	Map      = "Map"
	Function = "Function"
	Builtin  = "Builtin"
)

// Simple is a nominal, non-compound type: one of the base lattice names or
// a user-defined alias/nominal subtype installed via `type`.
type Simple struct {
	Name string
}

func (s *Simple) String() string { return s.Name }
func (*Simple) typeNode()        {}

// T is a convenience constructor for a Simple type.
func T(name string) *Simple { return &Simple{Name: name} }

// Union is a deduplicated, lexicographically sorted, flattened set of two
// or more member types (spec.md §3 invariant: never directly nests
// another Union; Any absorbs everything).
type Union struct {
	Members []Type
}

func (u *Union) String() string {
	names := make([]string, len(u.Members))
	for i, m := range u.Members {
		names[i] = m.String()
	}
	return strings.Join(names, "|")
}
func (*Union) typeNode() {}

// Func is a function type: ordinary (Function) or builtin (Builtin).
type Func struct {
	Kind   string // Function or Builtin
	Params []Type
	Ret    Type
}

func (f *Func) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Ret.String())
}
func (*Func) typeNode() {}

// Arr is an array type parameterized by its element type.
type Arr struct {
	Elem Type
}

func (a *Arr) String() string { return "[" + a.Elem.String() + "]" }
func (*Arr) typeNode()        {}

// Property is one named field of a record (map) type.
type Property struct {
	Name string
	Type Type
}

// Rec is a map/record type: a fixed set of named properties.
type Rec struct {
	Properties []Property
}

func (r *Rec) String() string {
	parts := make([]string, len(r.Properties))
	for i, p := range r.Properties {
		parts[i] = p.Name + ": " + p.Type.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (*Rec) typeNode() {}

// NoPromotion is the distinguished failure value returned by Promote when
// two shapes cannot be unified (spec.md §4.4).
var NoPromotion Type = &Simple{Name: "<no-promotion>"}

// ---- Lattice ----

// parents maps each base type name to its immediate supertype. Any has no
// parent (it is the lattice root). NewLattice copies it into each Lattice;
// RegisterSubtype adds user-defined types to that copy, not to this map.
var parents = map[string]string{
	Null: Any, Boolean: Any, Number: Any, String: Any, Array: Any, Map: Any, Function: Any,
	Real: Number, Integer: Number,
	Builtin: Function,
}

// aliases maps a user-defined alias name directly to the Type it stands
// for (spec.md §3: "User-defined types may be added as aliases...").
var aliases = map[string]Type{}

// Lattice owns the mutable subtype table plus alias table so that multiple
// independent interpretations do not share global state (spec.md §5:
// "the type system's subtype table" is a shared resource "mutated only by
// the top-level parser/importer/validator phases").
type Lattice struct {
	parents map[string]string
	aliases map[string]Type
}

// NewLattice returns a Lattice seeded with the built-in hierarchy.
func NewLattice() *Lattice {
	l := &Lattice{parents: map[string]string{}, aliases: map[string]Type{}}
	for k, v := range parents {
		l.parents[k] = v
	}
	return l
}

// RegisterSubtype installs name as an immediate nominal subtype of parent.
func (l *Lattice) RegisterSubtype(name, parent string) {
	l.parents[name] = parent
}

// RegisterAlias installs name as an alias for an existing Type.
func (l *Lattice) RegisterAlias(name string, t Type) {
	l.aliases[name] = t
}

// Resolve expands a Simple alias to its underlying Type; any other Type is
// returned unchanged.
func (l *Lattice) Resolve(t Type) Type {
	if s, ok := t.(*Simple); ok {
		if target, found := l.aliases[s.Name]; found {
			return l.Resolve(target)
		}
	}
	return t
}

func (l *Lattice) ancestors(name string) []string {
	chain := []string{name}
	for {
		p, ok := l.parents[name]
		if !ok {
			return chain
		}
		chain = append(chain, p)
		name = p
	}
}

// IsSubtype reports whether a is a subtype of b per the lattice
// (spec.md §4.4 `is_subtype`).
func (l *Lattice) IsSubtype(a, b Type) bool {
	a, b = l.Resolve(a), l.Resolve(b)
	if bs, ok := b.(*Simple); ok && bs.Name == Any {
		return true
	}
	as, aok := a.(*Simple)
	bs, bok := b.(*Simple)
	if aok && bok {
		for _, anc := range l.ancestors(as.Name) {
			if anc == bs.Name {
				return true
			}
		}
		return as.Name == bs.Name
	}
	if au, ok := a.(*Union); ok {
		for _, m := range au.Members {
			if !l.IsSubtype(m, b) {
				return false
			}
		}
		return true
	}
	if aa, ok := a.(*Arr); ok {
		if ba, ok := b.(*Arr); ok {
			return l.IsSubtype(aa.Elem, ba.Elem)
		}
		return false
	}
	if af, ok := a.(*Func); ok {
		if bf, ok := b.(*Func); ok {
			return l.funcSubtype(af, bf)
		}
		return false
	}
	if ar, ok := a.(*Rec); ok {
		if br, ok := b.(*Rec); ok {
			return l.recSubtype(ar, br)
		}
		return false
	}
	return l.IsEqual(a, b)
}

func (l *Lattice) funcSubtype(a, b *Func) bool {
	if a.Kind != b.Kind || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		// contravariant in parameters
		if !l.IsSubtype(b.Params[i], a.Params[i]) {
			return false
		}
	}
	return l.IsSubtype(a.Ret, b.Ret)
}

func (l *Lattice) recSubtype(a, b *Rec) bool {
	for _, bp := range b.Properties {
		found := false
		for _, ap := range a.Properties {
			if ap.Name == bp.Name {
				if !l.IsSubtype(ap.Type, bp.Type) {
					return false
				}
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Check reports whether candidate is assignable where guard is required
// (spec.md §4.4 `check`). Any guard accepts everything; a Union guard
// accepts any member match; TypeFunc compatibility requires equal kind,
// arity, and pairwise param/return subtyping.
func (l *Lattice) Check(guard, candidate Type) bool {
	guard, candidate = l.Resolve(guard), l.Resolve(candidate)
	if gs, ok := guard.(*Simple); ok && gs.Name == Any {
		return true
	}
	if gu, ok := guard.(*Union); ok {
		for _, m := range gu.Members {
			if l.Check(m, candidate) {
				return true
			}
		}
		return false
	}
	if cu, ok := candidate.(*Union); ok {
		for _, m := range cu.Members {
			if !l.Check(guard, m) {
				return false
			}
		}
		return true
	}
	return l.IsSubtype(candidate, guard)
}

// IsEqual is nominal equality for simple types, structural for compounds.
func (l *Lattice) IsEqual(a, b Type) bool {
	a, b = l.Resolve(a), l.Resolve(b)
	switch av := a.(type) {
	case *Simple:
		bv, ok := b.(*Simple)
		return ok && av.Name == bv.Name
	case *Union:
		bv, ok := b.(*Union)
		if !ok || len(av.Members) != len(bv.Members) {
			return false
		}
		for i := range av.Members {
			if !l.IsEqual(av.Members[i], bv.Members[i]) {
				return false
			}
		}
		return true
	case *Func:
		bv, ok := b.(*Func)
		if !ok || av.Kind != bv.Kind || len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			if !l.IsEqual(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return l.IsEqual(av.Ret, bv.Ret)
	case *Arr:
		bv, ok := b.(*Arr)
		return ok && l.IsEqual(av.Elem, bv.Elem)
	case *Rec:
		bv, ok := b.(*Rec)
		if !ok || len(av.Properties) != len(bv.Properties) {
			return false
		}
		for i := range av.Properties {
			if av.Properties[i].Name != bv.Properties[i].Name ||
				!l.IsEqual(av.Properties[i].Type, bv.Properties[i].Type) {
				return false
			}
		}
		return true
	}
	return false
}

// Promote returns the least upper bound of a and b: Integer+Real -> Real,
// otherwise the wider of the two in the lattice, with ties widening to
// Number. Incompatible shapes (e.g. String with Number) yield NoPromotion
// (spec.md §4.4).
func (l *Lattice) Promote(a, b Type) Type {
	a, b = l.Resolve(a), l.Resolve(b)
	as, aok := a.(*Simple)
	bs, bok := b.(*Simple)
	if !aok || !bok {
		if l.IsEqual(a, b) {
			return a
		}
		return NoPromotion
	}
	if as.Name == bs.Name {
		return a
	}
	if as.Name == Any || bs.Name == Any {
		return T(Any)
	}
	numeric := map[string]bool{Integer: true, Real: true, Number: true}
	if numeric[as.Name] && numeric[bs.Name] {
		if as.Name == Real || bs.Name == Real {
			return T(Real)
		}
		if as.Name == Number || bs.Name == Number {
			return T(Number)
		}
		return T(Integer)
	}
	if l.IsSubtype(a, b) {
		return b
	}
	if l.IsSubtype(b, a) {
		return a
	}
	return NoPromotion
}

// Unite deduplicates list, drops members covered by Any, collapses a
// single remaining member to a bare Type, and otherwise builds a sorted
// Union (spec.md §4.4 `unite`, §8 union-normalization law).
func Unite(l *Lattice, list []Type) Type {
	seen := map[string]Type{}
	for _, t := range list {
		if s, ok := l.Resolve(t).(*Simple); ok && s.Name == Any {
			return T(Any)
		}
	}
	var flat []Type
	for _, t := range list {
		if u, ok := t.(*Union); ok {
			flat = append(flat, u.Members...)
		} else {
			flat = append(flat, t)
		}
	}
	order := []string{}
	for _, t := range flat {
		key := t.String()
		if _, dup := seen[key]; !dup {
			seen[key] = t
			order = append(order, key)
		}
	}
	sort.Strings(order)
	members := make([]Type, len(order))
	for i, k := range order {
		members[i] = seen[k]
	}
	if len(members) == 0 {
		return T(Any)
	}
	if len(members) == 1 {
		return members[0]
	}
	return &Union{Members: members}
}

// IsArithmetic reports whether t participates in arithmetic/comparison
// operators (Number and its children, plus Boolean "by design", spec.md
// §4.6).
func (l *Lattice) IsArithmetic(t Type) bool {
	s, ok := l.Resolve(t).(*Simple)
	if !ok {
		return false
	}
	switch s.Name {
	case Number, Integer, Real, Boolean, Any:
		return true
	}
	return false
}

// IsTruthy reports whether t can be used as an `if`/ternary/while
// condition: Any or any concrete type (every Plang value has a defined
// truthiness).
func (l *Lattice) IsTruthy(t Type) bool { return true }
