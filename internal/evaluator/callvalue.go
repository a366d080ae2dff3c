package evaluator

import (
	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
)

// EvalArgValues evaluates every one of a call's argument expressions in
// order, short-circuiting on the first escaping Signal or error. It
// exposes the private eval dispatch to the BuiltinRegistry (spec.md
// §4.8), whose Eval bodies evaluate their own arguments rather than
// receiving pre-evaluated Values (so a throw raised while evaluating an
// argument propagates as a Signal instead of being silently dropped).
func (ev *Evaluator) EvalArgValues(scope *Scope, args []ast.Arg) ([]Value, *Signal, error) {
	out := make([]Value, len(args))
	for i, a := range args {
		v, sig, err := ev.eval(scope, a.Value)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		out[i] = v
	}
	return out, nil, nil
}

// Eval exposes the private eval dispatch for a single node, for builtins
// that need to evaluate something outside a call's argument list (e.g. a
// parsed String(...) cast's array/map constructor body).
func (ev *Evaluator) Eval(scope *Scope, node ast.Node) (Value, *Signal, error) {
	return ev.eval(scope, node)
}

// CallValue invokes an already-resolved callable Value with already
// -evaluated arguments, sharing callFunc's recursion-limit and signal
// -unwrapping protocol. Higher-order builtins (map, filter) use this to
// invoke their function argument without going through a Call AST node.
func (ev *Evaluator) CallValue(scope *Scope, fn Value, args []Value) (Value, *Signal, error) {
	switch f := fn.(type) {
	case *FuncValue:
		return ev.callFuncWithArgs(scope, f, args)
	case *BuiltinValue:
		v, err := f.Fn(ev, scope, args)
		return v, nil, err
	}
	return nil, nil, errors.Wrap(errors.New("evaluate", errors.RUN007, errors.Position{}, "value is not callable", nil))
}

func (ev *Evaluator) callFuncWithArgs(scope *Scope, fn *FuncValue, args []Value) (Value, *Signal, error) {
	ev.depth++
	defer func() { ev.depth-- }()
	if ev.depth > ev.Limits.MaxRecursion {
		return nil, nil, errors.Wrap(errors.New("evaluate", errors.RUN001, errors.Position{}, "recursion exceeded maximum depth", map[string]any{"limit": ev.Limits.MaxRecursion}))
	}

	callScope := scope.Child().ChildWithClosure(fn.Closure)
	for i, param := range fn.Def.Params {
		var v Value = NullValue{}
		switch {
		case i < len(args):
			v = args[i]
		case param.Default != nil:
			dv, sig, err := ev.eval(callScope, param.Default)
			if err != nil || (sig != nil && sig.Kind != SigNone) {
				return nil, sig, err
			}
			v = dv
		}
		callScope.Declare(param.Name, v)
	}

	v, sig, err := ev.eval(callScope, fn.Def.Body)
	if err != nil {
		return nil, nil, err
	}
	if sig != nil {
		if sig.Kind == SigReturn {
			return sig.Value, nil, nil
		}
		if sig.Kind == SigThrow {
			return nil, sig, nil
		}
	}
	return v, nil, nil
}
