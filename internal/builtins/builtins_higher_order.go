package builtins

import (
	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/evaluator"
	"github.com/plang-lang/plang/internal/types"
	"github.com/plang-lang/plang/internal/validator"
)

// registerHigherOrder installs map and filter (spec.md §4.8 scenario 8:
// `filter(fn(x) x < 4, [1,2,3,4,5])` → `[1,2,3]`).
func (r *Registry) registerHigherOrder() {
	r.register(&Builtin{
		Name:     "map",
		Validate: validateMap,
		Eval:     evalMap,
	})
	r.register(&Builtin{
		Name:     "filter",
		Validate: validateFilter,
		Eval:     evalFilter,
	})
}

// validateMap returns `[Any]`: a mapped function's return type isn't
// known statically unless fn carries a declared Function type, in which
// case that return type is used instead.
func validateMap(v *validator.Validator, scope *validator.Scope, call *ast.Call) (types.Type, *errors.Report) {
	if len(call.Args) != 2 {
		return &types.Arr{Elem: types.T(types.Any)}, arityError(call, "map", 2, len(call.Args))
	}
	argTypes := checkArgs(v, scope, call)
	elem := types.T(types.Any)
	if fn, ok := v.Lattice.Resolve(argTypes[0]).(*types.Func); ok {
		elem = fn.Ret
	}
	return &types.Arr{Elem: elem}, nil
}

func evalMap(ev *evaluator.Evaluator, scope *evaluator.Scope, args []ast.Arg) (evaluator.Value, *evaluator.Signal, error) {
	vals, sig, err := evalArgs(ev, scope, args)
	if err != nil || (sig != nil && sig.Kind != evaluator.SigNone) {
		return nil, sig, err
	}
	arr, ok := vals[1].(*evaluator.ArrayValue)
	if !ok {
		return &evaluator.ArrayValue{}, nil, nil
	}
	out := make([]evaluator.Value, len(arr.Elements))
	for i, el := range arr.Elements {
		v, sig, err := ev.CallValue(scope, vals[0], []evaluator.Value{el})
		if err != nil || (sig != nil && sig.Kind != evaluator.SigNone) {
			return nil, sig, err
		}
		out[i] = v
	}
	return &evaluator.ArrayValue{Elements: out}, nil, nil
}

// validateFilter returns the same array element type as its input array,
// since filtering never changes element type.
func validateFilter(v *validator.Validator, scope *validator.Scope, call *ast.Call) (types.Type, *errors.Report) {
	if len(call.Args) != 2 {
		return &types.Arr{Elem: types.T(types.Any)}, arityError(call, "filter", 2, len(call.Args))
	}
	argTypes := checkArgs(v, scope, call)
	if arr, ok := v.Lattice.Resolve(argTypes[1]).(*types.Arr); ok {
		return arr, nil
	}
	return &types.Arr{Elem: types.T(types.Any)}, nil
}

func evalFilter(ev *evaluator.Evaluator, scope *evaluator.Scope, args []ast.Arg) (evaluator.Value, *evaluator.Signal, error) {
	vals, sig, err := evalArgs(ev, scope, args)
	if err != nil || (sig != nil && sig.Kind != evaluator.SigNone) {
		return nil, sig, err
	}
	arr, ok := vals[1].(*evaluator.ArrayValue)
	if !ok {
		return &evaluator.ArrayValue{}, nil, nil
	}
	var out []evaluator.Value
	for _, el := range arr.Elements {
		keep, sig, err := ev.CallValue(scope, vals[0], []evaluator.Value{el})
		if err != nil || (sig != nil && sig.Kind != evaluator.SigNone) {
			return nil, sig, err
		}
		if evaluator.Truthy(keep) {
			out = append(out, el)
		}
	}
	return &evaluator.ArrayValue{Elements: out}, nil, nil
}
