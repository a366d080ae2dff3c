package evaluator

import (
	"strings"
	"unicode/utf8"

	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
)

func (ev *Evaluator) evalUnary(scope *Scope, n *ast.Unary) (Value, *Signal, error) {
	v, sig, err := ev.eval(scope, n.Expr)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	switch n.Op {
	case "not", "!":
		return BoolValue(!Truthy(v)), nil, nil
	case "-":
		switch x := v.(type) {
		case IntValue:
			return IntValue(-x), nil, nil
		case RealValue:
			return RealValue(-x), nil, nil
		}
	case "+":
		return v, nil, nil
	}
	return v, nil, nil
}

func (ev *Evaluator) evalBinary(scope *Scope, n *ast.Binary) (Value, *Signal, error) {
	// and/or short-circuit, so evaluate Left first and decide before Right.
	if n.Op == "and" || n.Op == "&&" {
		lv, sig, err := ev.eval(scope, n.Left)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		if !Truthy(lv) {
			return lv, nil, nil
		}
		return ev.eval(scope, n.Right)
	}
	if n.Op == "or" || n.Op == "||" {
		lv, sig, err := ev.eval(scope, n.Left)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		if Truthy(lv) {
			return lv, nil, nil
		}
		return ev.eval(scope, n.Right)
	}

	lv, sig, err := ev.eval(scope, n.Left)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	rv, sig, err := ev.eval(scope, n.Right)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}

	switch n.Op {
	case "==":
		return BoolValue(valuesEqual(lv, rv)), nil, nil
	case "!=":
		return BoolValue(!valuesEqual(lv, rv)), nil, nil
	case "~":
		return IntValue(runeIndexOf(lv.String(), rv.String())), nil, nil
	case "^^":
		return StringValue(lv.String() + rv.String()), nil, nil
	case "<", "<=", ">", ">=":
		return evalRelational(n.Op, lv, rv), nil, nil
	}
	return evalArithmetic(ev, n, lv, rv)
}

func valuesEqual(a, b Value) bool {
	switch x := a.(type) {
	case NullValue:
		_, ok := b.(NullValue)
		return ok
	case BoolValue:
		y, ok := b.(BoolValue)
		return ok && x == y
	case IntValue:
		if y, ok := b.(IntValue); ok {
			return x == y
		}
		if y, ok := b.(RealValue); ok {
			return float64(x) == float64(y)
		}
	case RealValue:
		if y, ok := b.(RealValue); ok {
			return x == y
		}
		if y, ok := b.(IntValue); ok {
			return float64(x) == float64(y)
		}
	case StringValue:
		y, ok := b.(StringValue)
		return ok && x == y
	}
	return false
}

// runeIndexOf returns the code-point index of substr's first occurrence in
// s, or -1 if absent, implementing the `~` substring-index operator
// (spec.md §4.6) in code points rather than bytes.
func runeIndexOf(s, substr string) int {
	byteIdx := strings.Index(s, substr)
	if byteIdx < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:byteIdx])
}

func evalRelational(op string, lv, rv Value) Value {
	lf, lok := numericOf(lv)
	rf, rok := numericOf(rv)
	if lok && rok {
		switch op {
		case "<":
			return BoolValue(lf < rf)
		case "<=":
			return BoolValue(lf <= rf)
		case ">":
			return BoolValue(lf > rf)
		case ">=":
			return BoolValue(lf >= rf)
		}
	}
	ls, lsok := lv.(StringValue)
	rs, rsok := rv.(StringValue)
	if lsok && rsok {
		switch op {
		case "<":
			return BoolValue(ls < rs)
		case "<=":
			return BoolValue(ls <= rs)
		case ">":
			return BoolValue(ls > rs)
		case ">=":
			return BoolValue(ls >= rs)
		}
	}
	return BoolValue(false)
}

func numericOf(v Value) (float64, bool) {
	switch x := v.(type) {
	case IntValue:
		return float64(x), true
	case RealValue:
		return float64(x), true
	}
	return 0, false
}

func evalArithmetic(ev *Evaluator, n *ast.Binary, lv, rv Value) (Value, *Signal, error) {
	li, liok := lv.(IntValue)
	ri, riok := rv.(IntValue)
	if liok && riok && n.Op != "/" {
		switch n.Op {
		case "+":
			return IntValue(li + ri), nil, nil
		case "-":
			return IntValue(li - ri), nil, nil
		case "*":
			return IntValue(li * ri), nil, nil
		case "%":
			if ri == 0 {
				return NullValue{}, moduloByZeroSignal(), nil
			}
			return IntValue(li % ri), nil, nil
		case "**", "^":
			return IntValue(intPow(int64(li), int64(ri))), nil, nil
		}
	}

	lf, _ := numericOf(lv)
	rf, _ := numericOf(rv)
	switch n.Op {
	case "+":
		return RealValue(lf + rf), nil, nil
	case "-":
		return RealValue(lf - rf), nil, nil
	case "*":
		return RealValue(lf * rf), nil, nil
	case "/":
		if rf == 0 {
			return NullValue{}, divisionByZeroSignal(), nil
		}
		return RealValue(lf / rf), nil, nil
	case "%":
		if rf == 0 {
			return NullValue{}, moduloByZeroSignal(), nil
		}
		return RealValue(float64(int64(lf) % int64(rf))), nil, nil
	case "**", "^":
		return RealValue(realPow(lf, rf)), nil, nil
	}
	return NullValue{}, nil, nil
}

// divisionByZeroTag/moduloByZeroTag are the stable exception tags a
// division or modulo by zero throws (spec.md §9 Open Questions: "division
// by zero is surfaced as the host's numeric-error string; implementations
// should choose a stable message text"). Unlike the recursion/iteration
// limits, a runtime arithmetic fault is an ordinary catchable exception
// (spec.md §8 scenario 6: `try 1/0 catch ...` recovers).
const (
	divisionByZeroTag = "division by zero"
	moduloByZeroTag   = "modulo by zero"
)

func divisionByZeroSignal() *Signal { return &Signal{Kind: SigThrow, Value: StringValue(divisionByZeroTag)} }
func moduloByZeroSignal() *Signal   { return &Signal{Kind: SigThrow, Value: StringValue(moduloByZeroTag)} }

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

func realPow(base, exp float64) float64 {
	result := 1.0
	n := int(exp)
	neg := n < 0
	if neg {
		n = -n
	}
	for i := 0; i < n; i++ {
		result *= base
	}
	if neg {
		return 1 / result
	}
	return result
}

func (ev *Evaluator) evalAssign(scope *Scope, n *ast.Assign) (Value, *Signal, error) {
	rv, sig, err := ev.eval(scope, n.Value)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}

	switch target := n.Target.(type) {
	case *ast.Ident:
		newVal, err := ev.combine(scope, n.Op, target, rv)
		if err != nil {
			return nil, nil, err
		}
		scope.Assign(target.Name, newVal)
		return newVal, nil, nil
	case *ast.Index:
		containerV, sig, err := ev.eval(scope, target.Target)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		keyV, sig, err := ev.eval(scope, target.Key)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		newVal, err := ev.combineIndexed(scope, n.Op, containerV, keyV, rv)
		if err != nil {
			return nil, nil, err
		}
		switch c := containerV.(type) {
		case *ArrayValue:
			idx := int(keyV.(IntValue))
			for idx >= len(c.Elements) {
				c.Elements = append(c.Elements, Value(NullValue{}))
			}
			c.Elements[idx] = newVal
		case *MapValue:
			c.Set(string(keyV.(StringValue)), newVal)
		}
		return newVal, nil, nil
	}
	return rv, nil, nil
}

// combine applies a compound-assignment operator (spec.md §4.6) against an
// Ident target's current value.
func (ev *Evaluator) combine(scope *Scope, op string, target *ast.Ident, rv Value) (Value, error) {
	if op == "=" {
		return rv, nil
	}
	cur, _ := scope.Lookup(target.Name)
	return ev.combineValues(op, cur, rv)
}

func (ev *Evaluator) combineIndexed(scope *Scope, op string, container, key, rv Value) (Value, error) {
	if op == "=" {
		return rv, nil
	}
	var cur Value = NullValue{}
	switch c := container.(type) {
	case *ArrayValue:
		idx := int(key.(IntValue))
		if idx >= 0 && idx < len(c.Elements) {
			cur = c.Elements[idx]
		}
	case *MapValue:
		if v, ok := c.Entries[string(key.(StringValue))]; ok {
			cur = v
		}
	}
	return ev.combineValues(op, cur, rv)
}

func (ev *Evaluator) combineValues(op string, cur, rv Value) (Value, error) {
	var arithOpName string
	switch op {
	case "+=":
		arithOpName = "+"
	case "-=":
		arithOpName = "-"
	case "*=":
		arithOpName = "*"
	case "/=":
		arithOpName = "/"
	case ".=":
		return StringValue(cur.String() + rv.String()), nil
	default:
		return rv, nil
	}
	v, _, err := evalArithmetic(ev, &ast.Binary{Op: arithOpName}, cur, rv)
	return v, err
}

func (ev *Evaluator) evalTernary(scope *Scope, n *ast.Ternary) (Value, *Signal, error) {
	cv, sig, err := ev.eval(scope, n.Cond)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	if Truthy(cv) {
		return ev.eval(scope, n.Then)
	}
	return ev.eval(scope, n.Else)
}

func (ev *Evaluator) evalIndex(scope *Scope, n *ast.Index) (Value, *Signal, error) {
	tv, sig, err := ev.eval(scope, n.Target)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	kv, sig, err := ev.eval(scope, n.Key)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	switch t := tv.(type) {
	case *ArrayValue:
		idx := int64(kv.(IntValue))
		if idx < 0 {
			idx += int64(len(t.Elements))
		}
		if idx < 0 || idx >= int64(len(t.Elements)) {
			return NullValue{}, nil, nil
		}
		return t.Elements[idx], nil, nil
	case *MapValue:
		key := string(kv.(StringValue))
		if v, ok := t.Entries[key]; ok {
			return v, nil, nil
		}
		return NullValue{}, nil, nil
	case StringValue:
		idx := int64(kv.(IntValue))
		runes := []rune(string(t))
		if idx < 0 {
			idx += int64(len(runes))
		}
		if idx < 0 || idx >= int64(len(runes)) {
			return StringValue(""), nil, nil
		}
		return StringValue(string(runes[idx])), nil, nil
	}
	return NullValue{}, nil, nil
}

func (ev *Evaluator) evalDot(scope *Scope, n *ast.Dot) (Value, *Signal, error) {
	// Validated programs never retain a Dot node (the Validator desugars it
	// into Index); this path only serves unvalidated callers (e.g. tests
	// exercising the Evaluator directly).
	idx := ast.NewIndex(n.Position(), n.Target, ast.NewLiteral(n.Position(), ast.LitString, n.Name))
	return ev.evalIndex(scope, idx)
}

func (ev *Evaluator) evalIncDec(scope *Scope, n *ast.IncDec) (Value, *Signal, error) {
	ident, ok := n.Target.(*ast.Ident)
	if !ok {
		return NullValue{}, nil, nil
	}
	cur, _ := scope.Lookup(ident.Name)
	var next Value
	switch c := cur.(type) {
	case IntValue:
		if n.Op == "++" {
			next = c + 1
		} else {
			next = c - 1
		}
	case RealValue:
		if n.Op == "++" {
			next = c + 1
		} else {
			next = c - 1
		}
	default:
		next = cur
	}
	scope.Assign(ident.Name, next)
	if n.Prefix {
		return next, nil, nil
	}
	return cur, nil, nil
}

func (ev *Evaluator) evalVarDecl(scope *Scope, n *ast.VarDecl) (Value, *Signal, error) {
	var v Value = NullValue{}
	if n.Init != nil {
		var sig *Signal
		var err error
		v, sig, err = ev.eval(scope, n.Init)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
	}
	scope.Declare(n.Name, v)
	return v, nil, nil
}

func (ev *Evaluator) evalIf(scope *Scope, n *ast.If) (Value, *Signal, error) {
	cv, sig, err := ev.eval(scope, n.Cond)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	if Truthy(cv) {
		return ev.eval(scope.Child(), n.Then)
	}
	if n.Else != nil {
		return ev.eval(scope.Child(), n.Else)
	}
	return NullValue{}, nil, nil
}

func (ev *Evaluator) evalWhile(scope *Scope, n *ast.While) (Value, *Signal, error) {
	var lastVal Value = NullValue{}
	iterations := 0
	for {
		cv, sig, err := ev.eval(scope, n.Cond)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		if !Truthy(cv) {
			return lastVal, nil, nil
		}
		iterations++
		if iterations > ev.Limits.MaxIterations {
			return nil, nil, errors.Wrap(errors.New("evaluate", errors.RUN002, pos(n), "loop exceeded maximum iteration count", map[string]any{"limit": ev.Limits.MaxIterations}))
		}
		bodyScope := scope.Child()
		_, sig, err = ev.eval(bodyScope, n.Body)
		if err != nil {
			return nil, nil, err
		}
		if sig != nil {
			switch sig.Kind {
			case SigNext:
				continue
			case SigLast:
				return sig.Value, nil, nil
			default:
				return nil, sig, nil
			}
		}
	}
}

func (ev *Evaluator) evalNext(scope *Scope, n *ast.Next) (Value, *Signal, error) {
	var v Value = NullValue{}
	if n.Value != nil {
		val, sig, err := ev.eval(scope, n.Value)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		v = val
	}
	return NullValue{}, &Signal{Kind: SigNext, Value: v}, nil
}

func (ev *Evaluator) evalLast(scope *Scope, n *ast.Last) (Value, *Signal, error) {
	var v Value = NullValue{}
	if n.Value != nil {
		val, sig, err := ev.eval(scope, n.Value)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		v = val
	}
	return NullValue{}, &Signal{Kind: SigLast, Value: v}, nil
}

func (ev *Evaluator) evalReturn(scope *Scope, n *ast.Return) (Value, *Signal, error) {
	var v Value = NullValue{}
	if n.Value != nil {
		val, sig, err := ev.eval(scope, n.Value)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		v = val
	}
	return NullValue{}, &Signal{Kind: SigReturn, Value: v}, nil
}

func (ev *Evaluator) evalThrow(scope *Scope, n *ast.Throw) (Value, *Signal, error) {
	v, sig, err := ev.eval(scope, n.Value)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	return NullValue{}, &Signal{Kind: SigThrow, Value: v}, nil
}

// evalTry implements the String-tag exception protocol: throw's payload is
// stringified into a tag, and the first catch whose Cond evaluates to that
// same String (or whose Cond is absent) handles it.
func (ev *Evaluator) evalTry(scope *Scope, n *ast.Try) (Value, *Signal, error) {
	v, sig, err := ev.eval(scope.Child(), n.Body)
	if err != nil {
		return nil, nil, err
	}
	if sig == nil || sig.Kind != SigThrow {
		return v, sig, nil
	}
	tag := sig.Value.String()
	for _, c := range n.Catches {
		if c.Cond == nil {
			return ev.eval(scope.Child(), c.Body)
		}
		cv, csig, cerr := ev.eval(scope, c.Cond)
		if cerr != nil || (csig != nil && csig.Kind != SigNone) {
			return nil, csig, cerr
		}
		if s, ok := cv.(StringValue); ok && string(s) == tag {
			catchScope := scope.Child()
			return ev.eval(catchScope, c.Body)
		}
	}
	return nil, sig, nil
}

func (ev *Evaluator) evalFuncDef(scope *Scope, n *ast.FuncDef) (Value, *Signal, error) {
	fv := &FuncValue{Def: n, Closure: scope}
	if n.Name != "" {
		scope.Declare(n.Name, fv)
	}
	return fv, nil, nil
}

func (ev *Evaluator) evalCall(scope *Scope, n *ast.Call) (Value, *Signal, error) {
	if ident, ok := n.Target.(*ast.Ident); ok {
		if _, shadowed := scope.Lookup(ident.Name); !shadowed && ev.Builtins != nil {
			if v, sig, handled, err := ev.Builtins.Call(ev, scope, ident.Name, n.Args); handled {
				return v, sig, err
			}
		}
	}

	targetV, sig, err := ev.eval(scope, n.Target)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}

	switch fn := targetV.(type) {
	case *BuiltinValue:
		args, sig, err := ev.evalArgsPositional(scope, n)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		v, err := fn.Fn(ev, scope, args)
		return v, nil, err
	case *FuncValue:
		return ev.callFunc(scope, fn, n)
	}
	return nil, nil, errors.Wrap(errors.New("evaluate", errors.RUN007, pos(n), "call target is not callable", nil))
}

func (ev *Evaluator) evalArgsPositional(scope *Scope, n *ast.Call) ([]Value, *Signal, error) {
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, sig, err := ev.eval(scope, a.Value)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		args[i] = v
	}
	return args, nil, nil
}

func (ev *Evaluator) callFunc(scope *Scope, fn *FuncValue, call *ast.Call) (Value, *Signal, error) {
	args := make([]Value, len(call.Args))
	for i, a := range call.Args {
		v, sig, err := ev.eval(scope, a.Value)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		args[i] = v
	}
	if ev.depth+1 > ev.Limits.MaxRecursion {
		return nil, nil, errors.Wrap(errors.New("evaluate", errors.RUN001, pos(call), "recursion exceeded maximum depth", map[string]any{"limit": ev.Limits.MaxRecursion}))
	}
	return ev.callFuncWithArgs(scope, fn, args)
}

// evalInterpString scans Raw for `{expr}` segments (spec.md §4.9), parsing
// and evaluating each in scope, concatenating the result with the literal
// text around it.
func (ev *Evaluator) evalInterpString(scope *Scope, n *ast.InterpString) (Value, *Signal, error) {
	var sb strings.Builder
	raw := n.Raw
	i := 0
	for i < len(raw) {
		ch := raw[i]
		if ch == '{' {
			depth := 1
			j := i + 1
			for j < len(raw) && depth > 0 {
				switch raw[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth > 0 {
					j++
				}
			}
			exprSrc := raw[i+1 : j]
			v, sig, err := ev.evalInterpSegment(scope, exprSrc, n)
			if err != nil || (sig != nil && sig.Kind != SigNone) {
				return nil, sig, err
			}
			sb.WriteString(v.String())
			i = j + 1
			continue
		}
		sb.WriteByte(ch)
		i++
	}
	return StringValue(sb.String()), nil, nil
}

func (ev *Evaluator) evalInterpSegment(scope *Scope, src string, n *ast.InterpString) (Value, *Signal, error) {
	expr, err := parseInterpExpr(src)
	if err != nil {
		return nil, nil, errors.Wrap(errors.New("evaluate", errors.RUN006, pos(n), "invalid interpolation expression: "+err.Error(), map[string]any{"expr": src}))
	}
	return ev.eval(scope, expr)
}
