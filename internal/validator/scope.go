// Package validator implements the static pass that type-checks, infers,
// and desugars a parsed (and, for importing files, already
// module-rewritten) Plang AST (spec.md §4.6).
package validator

import (
	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/types"
)

// FuncSig pairs a function's static type with its parameter declarations
// (names/defaults), which Call validation needs for named-argument
// resolution and default-filling beyond what a bare types.Func carries.
type FuncSig struct {
	Type   *types.Func
	Params []ast.Param
}

// Scope is the Validator's compile-time analogue of the Evaluator's
// runtime Scope (spec.md §3): declared-variable guards, a parent for
// lexical lookup, a closure scope for functions, and loop/function
// context flags used by the next/last/return legality checks.
type Scope struct {
	guards    map[string]types.Type
	funcSigs  map[string]*FuncSig
	parent    *Scope
	closure   *Scope
	whileLoop bool
	currentFn string // "" when not inside a function body

	// typedCache is one map shared by a scope and every Child of it. No
	// validation step reads or writes it: checkFuncDef breaks recursion
	// in a recursive function's own body by declaring the function's type
	// in the enclosing scope before the body is walked.
	typedCache map[interface{}]types.Type
}

// NewScope creates a root scope (e.g. the top-level Program scope).
func NewScope() *Scope {
	return &Scope{
		guards:     map[string]types.Type{},
		funcSigs:   map[string]*FuncSig{},
		typedCache: map[interface{}]types.Type{},
	}
}

// Child creates a lexically nested scope (block/function body entry).
func (s *Scope) Child() *Scope {
	return &Scope{
		guards:     map[string]types.Type{},
		funcSigs:   map[string]*FuncSig{},
		parent:     s,
		typedCache: s.typedCache,
	}
}

// ChildWithClosure creates a nested scope whose lookup chain also
// consults closure (the function's definition-time scope), as used for a
// function call's body scope.
func (s *Scope) ChildWithClosure(closure *Scope) *Scope {
	c := s.Child()
	c.closure = closure
	return c
}

// Declare installs name with guard in this scope, shadowing any outer
// binding of the same name.
func (s *Scope) Declare(name string, guard types.Type) {
	s.guards[name] = guard
}

// HasLocal reports whether name is declared directly in this scope (used
// by the redeclaration check, which only fires for same-scope repeats).
func (s *Scope) HasLocal(name string) bool {
	_, ok := s.guards[name]
	return ok
}

// Lookup walks locals -> closure -> parent, returning the first hit and
// the scope that owns it (so assignment can reach into an outer scope).
func (s *Scope) Lookup(name string) (types.Type, *Scope, bool) {
	if g, ok := s.guards[name]; ok {
		return g, s, true
	}
	if s.closure != nil {
		if g, owner, ok := s.closure.Lookup(name); ok {
			return g, owner, true
		}
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return nil, nil, false
}

// DeclareFunc installs a named function's signature, consulted by call
// validation for named-argument resolution and default-filling.
func (s *Scope) DeclareFunc(name string, sig *FuncSig) {
	s.funcSigs[name] = sig
}

// LookupFunc walks locals -> closure -> parent for a function signature
// declared via `fn name(...)`, mirroring Lookup's chain.
func (s *Scope) LookupFunc(name string) (*FuncSig, bool) {
	if sig, ok := s.funcSigs[name]; ok {
		return sig, true
	}
	if s.closure != nil {
		if sig, ok := s.closure.LookupFunc(name); ok {
			return sig, true
		}
	}
	if s.parent != nil {
		return s.parent.LookupFunc(name)
	}
	return nil, false
}

// InWhile reports whether this scope (or an enclosing one, stopping at a
// function boundary) is within a `while` body.
func (s *Scope) InWhile() bool { return s.whileLoop }

// InFunction reports the name of the innermost enclosing function body,
// or "" if none.
func (s *Scope) InFunction() string { return s.currentFn }

// Guards returns this scope's own declared-variable guard map (not
// including parent/closure scopes), for the ModuleImporter (spec.md §4.5
// step 4) to read a validated module's exported top-level symbol types.
func (s *Scope) Guards() map[string]types.Type { return s.guards }
