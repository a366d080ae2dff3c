// Package evaluator is the tree-walking evaluator (spec.md §4.7): it
// shares the Validator's dispatch shape (a type switch on the concrete
// ast node type) but carries runtime Values through lexically scoped
// Scopes instead of static types, with sentinel-based control transfer
// for next/last/return and a structured try/catch/throw exception
// protocol (spec.md §3 "CONCURRENCY & RESOURCE MODEL").
package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/plang-lang/plang/internal/ast"
)

// Value is the runtime counterpart of types.Type: every Plang value
// implements it. Concrete variants mirror the base lattice (spec.md §3).
type Value interface {
	TypeName() string
	String() string
}

// NullValue is the single Null value.
type NullValue struct{}

func (NullValue) TypeName() string { return "Null" }
func (NullValue) String() string   { return "null" }

// BoolValue wraps a bool.
type BoolValue bool

func (BoolValue) TypeName() string { return "Boolean" }
func (b BoolValue) String() string {
	if b {
		return "true"
	}
	return "false"
}

// IntValue wraps an int64 (spec.md §3 Integer).
type IntValue int64

func (IntValue) TypeName() string { return "Integer" }
func (i IntValue) String() string { return strconv.FormatInt(int64(i), 10) }

// RealValue wraps a float64 (spec.md §3 Real).
type RealValue float64

func (RealValue) TypeName() string { return "Real" }
func (r RealValue) String() string { return strconv.FormatFloat(float64(r), 'g', -1, 64) }

// StringValue wraps a string.
type StringValue string

func (StringValue) TypeName() string { return "String" }
func (s StringValue) String() string { return string(s) }

// ArrayValue is a mutable, ordered sequence of Values.
type ArrayValue struct {
	Elements []Value
}

func (*ArrayValue) TypeName() string { return "Array" }
func (a *ArrayValue) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = displayOf(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// MapValue is an insertion-ordered string-keyed dictionary (spec.md §3
// Map): Keys preserves insertion order for deterministic `keys`/`values`
// iteration, Entries holds the actual bindings.
type MapValue struct {
	Keys    []string
	Entries map[string]Value
}

// NewMap builds an empty MapValue ready for Set.
func NewMap() *MapValue {
	return &MapValue{Entries: map[string]Value{}}
}

// Set installs key=val, appending key to Keys only the first time it is
// seen so re-assignment doesn't reorder existing keys.
func (m *MapValue) Set(key string, val Value) {
	if _, exists := m.Entries[key]; !exists {
		m.Keys = append(m.Keys, key)
	}
	m.Entries[key] = val
}

// Delete removes key, if present, preserving the order of the rest.
func (m *MapValue) Delete(key string) {
	if _, ok := m.Entries[key]; !ok {
		return
	}
	delete(m.Entries, key)
	for i, k := range m.Keys {
		if k == key {
			m.Keys = append(m.Keys[:i], m.Keys[i+1:]...)
			break
		}
	}
}

func (*MapValue) TypeName() string { return "Map" }
func (m *MapValue) String() string {
	parts := make([]string, len(m.Keys))
	for i, k := range m.Keys {
		parts[i] = fmt.Sprintf("%q: %s", k, displayOf(m.Entries[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FuncValue is a closure: the defining FuncDef plus the Scope it was
// defined in (spec.md §4.7 "closures").
type FuncValue struct {
	Def     *ast.FuncDef
	Closure *Scope
}

func (*FuncValue) TypeName() string { return "Function" }
func (f *FuncValue) String() string { return "fn " + f.Def.Name }

// BuiltinFunc is a native Go implementation of a registered builtin
// (spec.md §4.8 BuiltinRegistry); it is invoked directly by the
// evaluator when a call target names one.
type BuiltinFunc func(ev *Evaluator, scope *Scope, args []Value) (Value, error)

// BuiltinValue wraps a registered native function as a callable Value.
type BuiltinValue struct {
	Name string
	Fn   BuiltinFunc
}

func (*BuiltinValue) TypeName() string { return "Builtin" }
func (b *BuiltinValue) String() string { return "builtin " + b.Name }

// displayOf renders a Value the way it appears nested inside an
// array/map's own String(): strings are quoted, everything else uses its
// natural String().
func displayOf(v Value) string {
	if s, ok := v.(StringValue); ok {
		return strconv.Quote(string(s))
	}
	return v.String()
}

// Truthy reports whether v is truthy in an if/ternary/while condition
// (spec.md §4.4 "every value has a defined truthiness"): Null and false
// are falsy, Integer/Real zero is falsy, the empty String/Array/Map are
// falsy, everything else is truthy.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case NullValue:
		return false
	case BoolValue:
		return bool(x)
	case IntValue:
		return x != 0
	case RealValue:
		return x != 0
	case StringValue:
		return x != ""
	case *ArrayValue:
		return len(x.Elements) > 0
	case *MapValue:
		return len(x.Keys) > 0
	}
	return true
}
