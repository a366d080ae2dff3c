package builtins

import (
	"fmt"

	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/evaluator"
	"github.com/plang-lang/plang/internal/types"
	"github.com/plang-lang/plang/internal/validator"
)

// registerCore installs print, typeof, whatis and length (spec.md §4.8).
func (r *Registry) registerCore() {
	r.register(&Builtin{
		Name:     "print",
		Validate: validatePrint,
		Eval:     evalPrint,
	})
	r.register(&Builtin{
		Name:     "typeof",
		Validate: validateUnary(types.T(types.String)),
		Eval:     evalTypeof,
	})
	r.register(&Builtin{
		Name:     "whatis",
		Validate: validateUnary(types.T(types.String)),
		Eval:     evalTypeof, // whatis and typeof report the same runtime type name
	})
	r.register(&Builtin{
		Name:     "length",
		Validate: validateUnary(types.T(types.Integer)),
		Eval:     evalLength,
	})
}

// validatePrint accepts any number of Any-typed arguments and returns
// Null (print is a side-effecting statement-expression).
func validatePrint(v *validator.Validator, scope *validator.Scope, call *ast.Call) (types.Type, *errors.Report) {
	checkArgs(v, scope, call)
	return types.T(types.Null), nil
}

func evalPrint(ev *evaluator.Evaluator, scope *evaluator.Scope, args []ast.Arg) (evaluator.Value, *evaluator.Signal, error) {
	vals, sig, err := evalArgs(ev, scope, args)
	if err != nil || (sig != nil && sig.Kind != evaluator.SigNone) {
		return nil, sig, err
	}
	for i, v := range vals {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(v.String())
	}
	fmt.Println()
	return evaluator.NullValue{}, nil, nil
}

// validateUnary builds a Validate body for a one-argument builtin with a
// fixed, known result type and an Any-typed parameter (typeof, whatis,
// length all share this shape).
func validateUnary(ret types.Type) func(*validator.Validator, *validator.Scope, *ast.Call) (types.Type, *errors.Report) {
	return func(v *validator.Validator, scope *validator.Scope, call *ast.Call) (types.Type, *errors.Report) {
		if len(call.Args) != 1 {
			return ret, arityError(call, callName(call), 1, len(call.Args))
		}
		checkArgs(v, scope, call)
		return ret, nil
	}
}

func callName(call *ast.Call) string {
	if ident, ok := call.Target.(*ast.Ident); ok {
		return ident.Name
	}
	return "<builtin>"
}

func evalTypeof(ev *evaluator.Evaluator, scope *evaluator.Scope, args []ast.Arg) (evaluator.Value, *evaluator.Signal, error) {
	vals, sig, err := evalArgs(ev, scope, args)
	if err != nil || (sig != nil && sig.Kind != evaluator.SigNone) {
		return nil, sig, err
	}
	if len(vals) != 1 {
		return evaluator.StringValue(""), nil, nil
	}
	return evaluator.StringValue(vals[0].TypeName()), nil, nil
}

func evalLength(ev *evaluator.Evaluator, scope *evaluator.Scope, args []ast.Arg) (evaluator.Value, *evaluator.Signal, error) {
	vals, sig, err := evalArgs(ev, scope, args)
	if err != nil || (sig != nil && sig.Kind != evaluator.SigNone) {
		return nil, sig, err
	}
	if len(vals) != 1 {
		return evaluator.IntValue(0), nil, nil
	}
	switch v := vals[0].(type) {
	case evaluator.StringValue:
		return evaluator.IntValue(len([]rune(string(v)))), nil, nil
	case *evaluator.ArrayValue:
		return evaluator.IntValue(len(v.Elements)), nil, nil
	case *evaluator.MapValue:
		return evaluator.IntValue(len(v.Keys)), nil, nil
	}
	return evaluator.IntValue(0), nil, nil
}
