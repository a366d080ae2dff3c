package builtins

import (
	"sort"
	"strconv"
	"strings"

	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/evaluator"
	"github.com/plang-lang/plang/internal/parser"
	"github.com/plang-lang/plang/internal/types"
)

// registerConversions installs the six cast functions of spec.md §6.2's
// conversion table: Integer, Real, String, Boolean, Array, Map. Every one
// accepts Any at validate time (the Validator prefers the validate body
// and never attempts the concrete conversion itself) and performs the
// actual per-type conversion only when the Evaluator runs it.
func (r *Registry) registerConversions() {
	r.register(&Builtin{Name: "Integer", Validate: validateUnary(types.T(types.Integer)), Eval: castEval(castInteger)})
	r.register(&Builtin{Name: "Real", Validate: validateUnary(types.T(types.Real)), Eval: castEval(castReal)})
	r.register(&Builtin{Name: "String", Validate: validateUnary(types.T(types.String)), Eval: castEval(castString)})
	r.register(&Builtin{Name: "Boolean", Validate: validateUnary(types.T(types.Boolean)), Eval: castEval(castBoolean)})
	r.register(&Builtin{Name: "Array", Validate: validateUnary(&types.Arr{Elem: types.T(types.Any)}), Eval: castArray})
	r.register(&Builtin{Name: "Map", Validate: validateUnary(types.T(types.Any)), Eval: castMap})
}

// castEval adapts a pure Value->(Value,error) conversion into a Builtin's
// Eval body, handling argument evaluation and signal propagation once for
// every simple (non-parsing) cast.
func castEval(fn func(evaluator.Value) (evaluator.Value, error)) func(*evaluator.Evaluator, *evaluator.Scope, []ast.Arg) (evaluator.Value, *evaluator.Signal, error) {
	return func(ev *evaluator.Evaluator, scope *evaluator.Scope, args []ast.Arg) (evaluator.Value, *evaluator.Signal, error) {
		vals, sig, err := evalArgs(ev, scope, args)
		if err != nil || (sig != nil && sig.Kind != evaluator.SigNone) {
			return nil, sig, err
		}
		if len(vals) != 1 {
			return evaluator.NullValue{}, nil, nil
		}
		v, err := fn(vals[0])
		return v, nil, err
	}
}

func castErr(msg string) error {
	return errors.Wrap(errors.New("evaluate", errors.RUN008, errors.Position{}, msg, nil))
}

// castInteger implements the "Integer" column of spec.md §6.2's table.
func castInteger(v evaluator.Value) (evaluator.Value, error) {
	switch x := v.(type) {
	case evaluator.NullValue:
		return evaluator.IntValue(0), nil
	case evaluator.BoolValue:
		if x {
			return evaluator.IntValue(1), nil
		}
		return evaluator.IntValue(0), nil
	case evaluator.IntValue:
		return x, nil
	case evaluator.RealValue:
		return evaluator.IntValue(int64(x)), nil
	case evaluator.StringValue:
		return evaluator.IntValue(leadingInt(string(x))), nil
	case *evaluator.FuncValue, *evaluator.BuiltinValue:
		return nil, castErr("cannot convert a Function to Integer")
	}
	return evaluator.IntValue(0), nil
}

// castReal implements the "Real" column.
func castReal(v evaluator.Value) (evaluator.Value, error) {
	switch x := v.(type) {
	case evaluator.NullValue:
		return evaluator.RealValue(0), nil
	case evaluator.BoolValue:
		if x {
			return evaluator.RealValue(1), nil
		}
		return evaluator.RealValue(0), nil
	case evaluator.IntValue:
		return evaluator.RealValue(x), nil
	case evaluator.RealValue:
		return x, nil
	case evaluator.StringValue:
		return evaluator.RealValue(leadingReal(string(x))), nil
	case *evaluator.FuncValue, *evaluator.BuiltinValue:
		return nil, castErr("cannot convert a Function to Real")
	}
	return evaluator.RealValue(0), nil
}

// castBoolean implements the "Boolean" column.
func castBoolean(v evaluator.Value) (evaluator.Value, error) {
	switch x := v.(type) {
	case evaluator.NullValue:
		return evaluator.BoolValue(false), nil
	case evaluator.BoolValue:
		return x, nil
	case evaluator.IntValue:
		return evaluator.BoolValue(x != 0), nil
	case evaluator.RealValue:
		return evaluator.BoolValue(x != 0), nil
	case evaluator.StringValue:
		return evaluator.BoolValue(x != ""), nil
	case *evaluator.FuncValue, *evaluator.BuiltinValue:
		return nil, castErr("cannot convert a Function to Boolean")
	}
	return evaluator.BoolValue(true), nil
}

// castString implements the "String" column, including the Array/Map
// recursive JSON-compatible serialization rows.
func castString(v evaluator.Value) (evaluator.Value, error) {
	switch x := v.(type) {
	case evaluator.NullValue:
		return evaluator.StringValue(""), nil
	case evaluator.BoolValue:
		return evaluator.StringValue(x.String()), nil
	case evaluator.IntValue:
		return evaluator.StringValue(x.String()), nil
	case evaluator.RealValue:
		return evaluator.StringValue(x.String()), nil
	case evaluator.StringValue:
		return x, nil
	case *evaluator.ArrayValue, *evaluator.MapValue:
		return evaluator.StringValue(jsonSerialize(x)), nil
	case *evaluator.FuncValue, *evaluator.BuiltinValue:
		return nil, castErr("cannot convert a Function to String")
	}
	return evaluator.StringValue(""), nil
}

// jsonSerialize renders v the way spec.md §6.2 requires for Array/Map ->
// String: arrays as `[a,b,c]`, maps as `{"k": v, …}` with keys sorted
// lexicographically, string values double-quoted with escape expansion.
// This differs deliberately from MapValue.String/ArrayValue.String (which
// preserve insertion order for REPL/print display) because the cast's
// round-trip law (spec.md §8 "Array(String(v))... yield a value equal to
// v") only needs a stable, re-parseable rendering, not display fidelity.
func jsonSerialize(v evaluator.Value) string {
	switch x := v.(type) {
	case evaluator.NullValue:
		return "null"
	case evaluator.BoolValue:
		return x.String()
	case evaluator.IntValue:
		return x.String()
	case evaluator.RealValue:
		return x.String()
	case evaluator.StringValue:
		return strconv.Quote(string(x))
	case *evaluator.ArrayValue:
		parts := make([]string, len(x.Elements))
		for i, e := range x.Elements {
			parts[i] = jsonSerialize(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case *evaluator.MapValue:
		keys := append([]string(nil), x.Keys...)
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ": " + jsonSerialize(x.Entries[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "null"
}

// castArray implements the "Array (from String)" column: a String is
// parsed as an array-literal constructor and evaluated; an Array passes
// through unchanged; anything else is a runtime error (spec.md §6.2
// marks every other row "—", i.e. unsupported).
func castArray(ev *evaluator.Evaluator, scope *evaluator.Scope, args []ast.Arg) (evaluator.Value, *evaluator.Signal, error) {
	vals, sig, err := evalArgs(ev, scope, args)
	if err != nil || (sig != nil && sig.Kind != evaluator.SigNone) {
		return nil, sig, err
	}
	if len(vals) != 1 {
		return &evaluator.ArrayValue{}, nil, nil
	}
	switch x := vals[0].(type) {
	case *evaluator.ArrayValue:
		return x, nil, nil
	case evaluator.StringValue:
		return parseConstructor(ev, scope, string(x))
	}
	return nil, nil, castErr("cannot convert to Array")
}

// castMap implements the "Map (from String)" column, mirroring castArray.
func castMap(ev *evaluator.Evaluator, scope *evaluator.Scope, args []ast.Arg) (evaluator.Value, *evaluator.Signal, error) {
	vals, sig, err := evalArgs(ev, scope, args)
	if err != nil || (sig != nil && sig.Kind != evaluator.SigNone) {
		return nil, sig, err
	}
	if len(vals) != 1 {
		return evaluator.NewMap(), nil, nil
	}
	switch x := vals[0].(type) {
	case *evaluator.MapValue:
		return x, nil, nil
	case evaluator.StringValue:
		return parseConstructor(ev, scope, string(x))
	}
	return nil, nil, castErr("cannot convert to Map")
}

// parseConstructor parses src as a single expression (an array or map
// literal, per spec.md §6.2's "parse as array/map constructor") through
// the same Lexer/Parser pipeline interpolated strings use, then evaluates
// it in scope.
func parseConstructor(ev *evaluator.Evaluator, scope *evaluator.Scope, src string) (evaluator.Value, *evaluator.Signal, error) {
	prog, reports := parser.Parse(src)
	if len(reports) > 0 {
		return nil, nil, castErr("cannot parse '" + src + "' as a constructor: " + reports[0].Message)
	}
	if len(prog.Statements) == 0 {
		return evaluator.NullValue{}, nil, nil
	}
	return ev.Eval(scope, prog.Statements[0])
}

// leadingInt scans an optional sign followed by leading decimal digits,
// defaulting to 0 when none are present (spec.md §6.2 "leading-integer (0
// default)").
func leadingInt(s string) int64 {
	i, n := 0, len(s)
	for i < n && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	start := i
	if i < n && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digitsStart := i
	for i < n && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digitsStart {
		return 0
	}
	v, err := strconv.ParseInt(s[start:i], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// leadingReal scans an optional sign, leading digits, an optional decimal
// point with more digits, and an optional exponent, defaulting to 0 when
// no numeric prefix is present (spec.md §6.2 "leading-real").
func leadingReal(s string) float64 {
	i, n := 0, len(s)
	for i < n && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	start := i
	if i < n && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digitsStart := i
	for i < n && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	sawDigits := i > digitsStart
	if i < n && s[i] == '.' {
		i++
		fracStart := i
		for i < n && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		sawDigits = sawDigits || i > fracStart
	}
	if !sawDigits {
		return 0
	}
	if i < n && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < n && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < n && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j > expStart {
			i = j
		}
	}
	v, err := strconv.ParseFloat(s[start:i], 64)
	if err != nil {
		return 0
	}
	return v
}
