// Package builtins is the BuiltinRegistry (spec.md §4.8): a name-indexed
// table of native functions, each carrying a signature, a validate-body
// consulted by the Validator, and a value-producing body the Evaluator
// runs. It depends on validator, evaluator, ast, types and errors, never
// the reverse, so wiring it in (via Registry) cannot create an import
// cycle.
//
// The registry is split by category across several files, the teacher's
// internal/eval/builtins*.go layout (builtins.go: registry + init;
// builtins_core.go, builtins_higher_order.go, builtins_conversion.go:
// one file per functional group). Unlike the teacher's arity-and-
// reflection CallBuiltin dispatcher, each entry here carries its own
// Validate/Eval closures directly — a better fit for a gradually-typed,
// Any-accepting builtin system than a generic reflective invoker.
package builtins

import (
	"strconv"

	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/evaluator"
	"github.com/plang-lang/plang/internal/types"
	"github.com/plang-lang/plang/internal/validator"
)

// Builtin is one registered entry (spec.md §4.8).
type Builtin struct {
	Name string

	// Validate type-checks a call against this builtin's signature,
	// returning the call's static result type. It receives the whole
	// Call so it can walk arguments with v.Check-equivalent logic; see
	// the per-builtin files for how each uses it.
	Validate func(v *validator.Validator, scope *validator.Scope, call *ast.Call) (types.Type, *errors.Report)

	// Eval evaluates the call's (still-unevaluated) arguments itself and
	// produces the builtin's result, propagating any Signal (a throw
	// raised while evaluating an argument, for instance) or fatal error.
	Eval func(ev *evaluator.Evaluator, scope *evaluator.Scope, args []ast.Arg) (evaluator.Value, *evaluator.Signal, error)
}

// Registry is the BuiltinRegistry itself, adapted to satisfy both
// validator.Builtins and evaluator.Builtins so each pass can dispatch
// through its own narrow interface.
type Registry struct {
	entries map[string]*Builtin
}

// New builds a Registry populated with every standard builtin named in
// spec.md §4.8: print, typeof, whatis, length, map, filter, and the cast
// functions Integer, Real, String, Boolean, Array, Map.
func New() *Registry {
	r := &Registry{entries: map[string]*Builtin{}}
	r.registerCore()
	r.registerHigherOrder()
	r.registerConversions()
	return r
}

func (r *Registry) register(b *Builtin) {
	r.entries[b.Name] = b
}

// Validate implements validator.Builtins.
func (r *Registry) Validate(v *validator.Validator, scope *validator.Scope, call *ast.Call) (types.Type, *errors.Report, bool) {
	ident, ok := call.Target.(*ast.Ident)
	if !ok {
		return nil, nil, false
	}
	b, ok := r.entries[ident.Name]
	if !ok {
		return nil, nil, false
	}
	t, rep := b.Validate(v, scope, call)
	return t, rep, true
}

// Call implements evaluator.Builtins.
func (r *Registry) Call(ev *evaluator.Evaluator, scope *evaluator.Scope, name string, args []ast.Arg) (evaluator.Value, *evaluator.Signal, bool, error) {
	b, ok := r.entries[name]
	if !ok {
		return nil, nil, false, nil
	}
	v, sig, err := b.Eval(ev, scope, args)
	return v, sig, true, err
}

// evalArgs evaluates every argument in scope, short-circuiting on the
// first escaping Signal or error — the shared first step of nearly every
// builtin's Eval body.
func evalArgs(ev *evaluator.Evaluator, scope *evaluator.Scope, args []ast.Arg) ([]evaluator.Value, *evaluator.Signal, error) {
	return ev.EvalArgValues(scope, args)
}

// checkArgs type-checks every argument expression in scope in place
// (rewriting call.Args[i].Value the way the generic Call path does),
// returning their inferred types in order — the shared first step of
// nearly every builtin's Validate body.
func checkArgs(v *validator.Validator, scope *validator.Scope, call *ast.Call) []types.Type {
	argTypes := make([]types.Type, len(call.Args))
	for i, a := range call.Args {
		node, t := v.CheckNode(scope, a.Value)
		call.Args[i].Value = node
		argTypes[i] = t
	}
	return argTypes
}

func arityError(call *ast.Call, name string, want, got int) *errors.Report {
	return errors.New("validate", errors.VAL009, errors.Position{Line: call.Position().Line, Col: call.Position().Col},
		name+" expects "+strconv.Itoa(want)+" argument(s), got "+strconv.Itoa(got), map[string]any{"name": name, "want": want, "got": got})
}
