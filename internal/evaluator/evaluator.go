package evaluator

import (
	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
)

// Builtins is the evaluator-side half of the BuiltinRegistry's
// two-pathway dispatch (spec.md §4.8): Validate type-checks a call
// against a builtin's signature, Call actually runs it.
type Builtins interface {
	// Call reports (via the bool) whether name names a registered
	// builtin; when it does, it evaluates args itself (so a throw
	// raised while evaluating an argument comes back as a Signal) and
	// returns
	// the builtin's result, any escaping next/last/return/throw
	// Signal raised while evaluating an argument or the body, and any
	// fatal error.
	Call(ev *Evaluator, scope *Scope, name string, args []ast.Arg) (Value, *Signal, bool, error)
}

// Namespace resolves a module-qualified identifier's runtime value, as
// installed by the ModuleImporter (spec.md §4.5).
type Namespace interface {
	Lookup(module, name string) (Value, bool)
}

// Evaluator walks a validated, desugared AST and produces Values
// (spec.md §4.7). It shares the Validator's dispatch shape but threads
// runtime Signals instead of static types.
type Evaluator struct {
	Limits    Limits
	Builtins  Builtins
	Namespace Namespace

	depth        int
	iterCounters []int // stack of per-active-while iteration counters
}

// New builds an Evaluator with the given resource limits.
func New(limits Limits) *Evaluator {
	return &Evaluator{Limits: limits}
}

// Run evaluates every statement of prog in scope in order, returning the
// value of the last statement (a Plang program's overall result).
func (ev *Evaluator) Run(scope *Scope, prog *ast.Program) (Value, error) {
	var last Value = NullValue{}
	for _, stmt := range prog.Statements {
		val, sig, err := ev.eval(scope, stmt)
		if err != nil {
			return nil, err
		}
		if sig != nil && sig.Kind == SigThrow {
			code := errors.RUN004
			if s, ok := sig.Value.(StringValue); ok && (string(s) == divisionByZeroTag || string(s) == moduloByZeroTag) {
				code = errors.RUN003
			}
			return nil, errors.Wrap(errors.New("evaluate", code, pos(stmt), "uncaught exception: "+displayOf(sig.Value), map[string]any{"value": sig.Value.String()}))
		}
		if sig != nil && sig.Kind != SigNone {
			// return/next/last with no enclosing function/loop: validated
			// programs never reach here (VAL004/VAL005); treat the payload
			// as the program's result defensively.
			return sig.Value, nil
		}
		last = val
	}
	return last, nil
}

func pos(n ast.Node) errors.Position {
	p := n.Position()
	return errors.Position{Line: p.Line, Col: p.Col}
}

// eval dispatches on node's concrete type (spec.md §4.7).
func (ev *Evaluator) eval(scope *Scope, node ast.Node) (Value, *Signal, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return ev.evalLiteral(n), nil, nil
	case *ast.Ident:
		return ev.evalIdent(scope, n)
	case *ast.QualifiedIdent:
		return ev.evalQualifiedIdent(n)
	case *ast.InterpString:
		return ev.evalInterpString(scope, n)
	case *ast.ArrayLit:
		return ev.evalArrayLit(scope, n)
	case *ast.MapLit:
		return ev.evalMapLit(scope, n)
	case *ast.Unary:
		return ev.evalUnary(scope, n)
	case *ast.Binary:
		return ev.evalBinary(scope, n)
	case *ast.Assign:
		return ev.evalAssign(scope, n)
	case *ast.Ternary:
		return ev.evalTernary(scope, n)
	case *ast.Range:
		return ev.evalRange(scope, n)
	case *ast.Call:
		return ev.evalCall(scope, n)
	case *ast.Index:
		return ev.evalIndex(scope, n)
	case *ast.Dot:
		return ev.evalDot(scope, n)
	case *ast.FuncDef:
		return ev.evalFuncDef(scope, n)
	case *ast.VarDecl:
		return ev.evalVarDecl(scope, n)
	case *ast.If:
		return ev.evalIf(scope, n)
	case *ast.While:
		return ev.evalWhile(scope, n)
	case *ast.Next:
		return ev.evalNext(scope, n)
	case *ast.Last:
		return ev.evalLast(scope, n)
	case *ast.Return:
		return ev.evalReturn(scope, n)
	case *ast.Try:
		return ev.evalTry(scope, n)
	case *ast.Throw:
		return ev.evalThrow(scope, n)
	case *ast.TypeDecl, *ast.ModuleDecl, *ast.ImportDecl:
		return NullValue{}, nil, nil
	case *ast.Exists:
		return ev.evalExists(scope, n)
	case *ast.Delete:
		return ev.evalDelete(scope, n)
	case *ast.Keys:
		return ev.evalKeys(scope, n)
	case *ast.Values:
		return ev.evalValues(scope, n)
	case *ast.IncDec:
		return ev.evalIncDec(scope, n)
	}
	return NullValue{}, nil, nil
}

func (ev *Evaluator) evalLiteral(n *ast.Literal) Value {
	switch n.Kind {
	case ast.LitNull:
		return NullValue{}
	case ast.LitBoolean:
		return BoolValue(n.Value.(bool))
	case ast.LitInteger:
		return IntValue(n.Value.(int64))
	case ast.LitReal:
		return RealValue(n.Value.(float64))
	case ast.LitString:
		return StringValue(n.Value.(string))
	}
	return NullValue{}
}

func (ev *Evaluator) evalIdent(scope *Scope, n *ast.Ident) (Value, *Signal, error) {
	if v, ok := scope.Lookup(n.Name); ok {
		return v, nil, nil
	}
	return nil, nil, errors.Wrap(errors.New("evaluate", errors.RUN007, pos(n), "undeclared identifier '"+n.Name+"'", map[string]any{"name": n.Name}))
}

func (ev *Evaluator) evalQualifiedIdent(n *ast.QualifiedIdent) (Value, *Signal, error) {
	if ev.Namespace != nil {
		if v, ok := ev.Namespace.Lookup(n.Module, n.Name); ok {
			return v, nil, nil
		}
	}
	return NullValue{}, nil, nil
}

func (ev *Evaluator) evalArrayLit(scope *Scope, n *ast.ArrayLit) (Value, *Signal, error) {
	elems := make([]Value, len(n.Elements))
	for i, el := range n.Elements {
		v, sig, err := ev.eval(scope, el)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		elems[i] = v
	}
	return &ArrayValue{Elements: elems}, nil, nil
}

func (ev *Evaluator) evalMapLit(scope *Scope, n *ast.MapLit) (Value, *Signal, error) {
	m := NewMap()
	for _, e := range n.Entries {
		v, sig, err := ev.eval(scope, e.Value)
		if err != nil || (sig != nil && sig.Kind != SigNone) {
			return nil, sig, err
		}
		m.Set(e.Key, v)
	}
	return m, nil, nil
}

func (ev *Evaluator) evalRange(scope *Scope, n *ast.Range) (Value, *Signal, error) {
	loV, sig, err := ev.eval(scope, n.Lo)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	hiV, sig, err := ev.eval(scope, n.Hi)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	lo, hi := int64(loV.(IntValue)), int64(hiV.(IntValue))
	var elems []Value
	if lo <= hi {
		for i := lo; i <= hi; i++ {
			elems = append(elems, IntValue(i))
		}
	} else {
		for i := lo; i >= hi; i-- {
			elems = append(elems, IntValue(i))
		}
	}
	return &ArrayValue{Elements: elems}, nil, nil
}

func (ev *Evaluator) evalExists(scope *Scope, n *ast.Exists) (Value, *Signal, error) {
	targetV, sig, err := ev.eval(scope, n.Target)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	keyV, sig, err := ev.eval(scope, n.Key)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	switch t := targetV.(type) {
	case *MapValue:
		_, ok := t.Entries[string(keyV.(StringValue))]
		return BoolValue(ok), nil, nil
	case *ArrayValue:
		idx := int64(keyV.(IntValue))
		return BoolValue(idx >= 0 && idx < int64(len(t.Elements))), nil, nil
	}
	return BoolValue(false), nil, nil
}

// evalDelete implements both delete forms (spec.md §9 Open Question,
// resolved per the source behavior): `delete m` empties m and returns m
// itself; `delete m[k]` removes k and returns the value that was there,
// or Null if k was absent.
func (ev *Evaluator) evalDelete(scope *Scope, n *ast.Delete) (Value, *Signal, error) {
	targetV, sig, err := ev.eval(scope, n.Target)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	m, ok := targetV.(*MapValue)
	if !ok {
		return NullValue{}, nil, nil
	}
	if n.Key == nil {
		m.Keys = nil
		m.Entries = map[string]Value{}
		return m, nil, nil
	}
	keyV, sig, err := ev.eval(scope, n.Key)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	key := string(keyV.(StringValue))
	prev, existed := m.Entries[key]
	m.Delete(key)
	if !existed {
		return NullValue{}, nil, nil
	}
	return prev, nil, nil
}

func (ev *Evaluator) evalKeys(scope *Scope, n *ast.Keys) (Value, *Signal, error) {
	targetV, sig, err := ev.eval(scope, n.Target)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	m, ok := targetV.(*MapValue)
	if !ok {
		return &ArrayValue{}, nil, nil
	}
	elems := make([]Value, len(m.Keys))
	for i, k := range m.Keys {
		elems[i] = StringValue(k)
	}
	return &ArrayValue{Elements: elems}, nil, nil
}

func (ev *Evaluator) evalValues(scope *Scope, n *ast.Values) (Value, *Signal, error) {
	targetV, sig, err := ev.eval(scope, n.Target)
	if err != nil || (sig != nil && sig.Kind != SigNone) {
		return nil, sig, err
	}
	m, ok := targetV.(*MapValue)
	if !ok {
		return &ArrayValue{}, nil, nil
	}
	elems := make([]Value, len(m.Keys))
	for i, k := range m.Keys {
		elems[i] = m.Entries[k]
	}
	return &ArrayValue{Elements: elems}, nil, nil
}
