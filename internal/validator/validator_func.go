package validator

import (
	"strconv"

	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/types"
)

func (v *Validator) checkVarDecl(scope *Scope, n *ast.VarDecl) (ast.Node, types.Type) {
	if scope.HasLocal(n.Name) && !v.ReplMode {
		v.errorf(errors.VAL003, n.Position(), "'"+n.Name+"' is already declared in this scope", map[string]any{"name": n.Name})
	}
	var initType types.Type = types.T(types.Null)
	if n.Init != nil {
		init, t := v.check(scope, n.Init)
		n.Init = init
		initType = t
	}
	guard := typeFromAnnotation(v.Lattice, n.TypeName)
	if n.TypeName == "" {
		guard = initType
	} else if n.Init != nil && !v.Lattice.Check(guard, initType) {
		v.errorf(errors.VAL001, n.Position(), "cannot initialize '"+n.Name+"' ("+guard.String()+") with "+initType.String(), map[string]any{"name": n.Name, "guard": guard.String(), "value": initType.String()})
	}
	scope.Declare(n.Name, guard)
	return n, types.T(types.Null)
}

func (v *Validator) checkIf(scope *Scope, n *ast.If) (ast.Node, types.Type) {
	cond, _ := v.check(scope, n.Cond)
	then, thenT := v.check(scope, n.Then)
	n.Cond, n.Then = cond, then
	if n.Else == nil {
		return n, types.Unite(v.Lattice, []types.Type{thenT, types.T(types.Null)})
	}
	els, elsT := v.check(scope, n.Else)
	n.Else = els
	return n, types.Unite(v.Lattice, []types.Type{thenT, elsT})
}

func (v *Validator) checkWhile(scope *Scope, n *ast.While) (ast.Node, types.Type) {
	cond, _ := v.check(scope, n.Cond)
	n.Cond = cond

	bodyScope := scope.Child()
	bodyScope.whileLoop = true
	bodyScope.currentFn = scope.currentFn

	lastMark := len(v.lastTypes)
	body, _ := v.check(bodyScope, n.Body)
	n.Body = body
	breakTypes := append([]types.Type{types.T(types.Null)}, v.lastTypes[lastMark:]...)
	v.lastTypes = v.lastTypes[:lastMark]

	return n, types.Unite(v.Lattice, breakTypes)
}

func (v *Validator) checkNext(scope *Scope, n *ast.Next) (ast.Node, types.Type) {
	if !scope.InWhile() {
		v.errorf(errors.VAL004, n.Position(), "'next' outside a while loop", nil)
	}
	if n.Value != nil {
		val, _ := v.check(scope, n.Value)
		n.Value = val
	}
	return n, types.T(types.Null)
}

func (v *Validator) checkLast(scope *Scope, n *ast.Last) (ast.Node, types.Type) {
	if !scope.InWhile() {
		v.errorf(errors.VAL004, n.Position(), "'last' outside a while loop", nil)
	}
	valType := types.T(types.Null)
	if n.Value != nil {
		val, t := v.check(scope, n.Value)
		n.Value = val
		valType = t
	}
	v.lastTypes = append(v.lastTypes, valType)
	return n, types.T(types.Null)
}

func (v *Validator) checkReturn(scope *Scope, n *ast.Return) (ast.Node, types.Type) {
	if scope.InFunction() == "" {
		v.errorf(errors.VAL005, n.Position(), "'return' outside a function body", nil)
	}
	valType := types.T(types.Null)
	if n.Value != nil {
		val, t := v.check(scope, n.Value)
		n.Value = val
		valType = t
	}
	v.returnTypes = append(v.returnTypes, valType)
	return n, types.T(types.Null)
}

func (v *Validator) checkTry(scope *Scope, n *ast.Try) (ast.Node, types.Type) {
	body, bodyT := v.check(scope, n.Body)
	n.Body = body
	branchTypes := []types.Type{bodyT}
	for i := range n.Catches {
		c := &n.Catches[i]
		catchScope := scope.Child()
		catchScope.whileLoop = scope.whileLoop
		catchScope.currentFn = scope.currentFn
		if c.Cond != nil {
			cond, condT := v.check(catchScope, c.Cond)
			c.Cond = cond
			if !v.Lattice.Check(types.T(types.String), condT) {
				v.errorf(errors.VAL006, c.Cond.Position(), "catch condition must be a String", map[string]any{"type": condT.String()})
			}
		}
		handlerBody, handlerT := v.check(catchScope, c.Body)
		c.Body = handlerBody
		branchTypes = append(branchTypes, handlerT)
	}
	return n, types.Unite(v.Lattice, branchTypes)
}

func (v *Validator) checkThrow(scope *Scope, n *ast.Throw) (ast.Node, types.Type) {
	val, _ := v.check(scope, n.Value)
	n.Value = val
	return n, types.T(types.Null)
}

// checkFuncDef builds the function's static type and validates its body
// (spec.md §4.6 "Function definition"). The function is registered into
// the enclosing scope (by name, if named) before its body is walked so a
// recursive call inside the body resolves; its declared or provisional
// (Any) return type breaks the recursion. Without a return annotation the
// return type is then replaced with the type inferred from every return
// point plus the body's own trailing expression type; with one, that
// inferred type is checked against the declared type instead.
func (v *Validator) checkFuncDef(scope *Scope, n *ast.FuncDef) (ast.Node, types.Type) {
	paramTypes := make([]types.Type, len(n.Params))
	for i, p := range n.Params {
		paramTypes[i] = typeFromAnnotation(v.Lattice, p.TypeName)
	}
	declaredRet := typeFromAnnotation(v.Lattice, n.ReturnType)

	fnType := &types.Func{Kind: types.Function, Params: paramTypes, Ret: declaredRet}
	sig := &FuncSig{Type: fnType, Params: n.Params}
	if n.Name != "" {
		scope.DeclareFunc(n.Name, sig)
		scope.Declare(n.Name, fnType)
	}

	bodyScope := scope.Child()
	bodyScope.currentFn = n.Name
	if n.Name == "" {
		bodyScope.currentFn = "<anonymous>"
	}
	for i, p := range n.Params {
		if p.Default != nil {
			def, defT := v.check(scope, p.Default)
			n.Params[i].Default = def
			if !v.Lattice.Check(paramTypes[i], defT) {
				v.errorf(errors.VAL001, p.Default.Position(), "default for parameter '"+p.Name+"' does not match its declared type", map[string]any{"name": p.Name, "guard": paramTypes[i].String(), "value": defT.String()})
			}
		}
		bodyScope.Declare(p.Name, paramTypes[i])
	}

	returnMark := len(v.returnTypes)
	body, bodyT := v.check(bodyScope, n.Body)
	n.Body = body
	collected := append([]types.Type{bodyT}, v.returnTypes[returnMark:]...)
	v.returnTypes = v.returnTypes[:returnMark]

	inferredRet := types.Unite(v.Lattice, collected)
	if n.ReturnType == "" {
		fnType.Ret = inferredRet
	} else if !v.Lattice.Check(declaredRet, inferredRet) {
		v.errorf(errors.VAL001, n.Position(), "function '"+n.Name+"' body returns "+inferredRet.String()+", declared "+declaredRet.String(), map[string]any{"name": n.Name, "declared": declaredRet.String(), "inferred": inferredRet.String()})
	}
	return n, fnType
}

// checkCall resolves a call target (a user function signature, a
// builtin, or an arbitrary Function-typed value), rewrites named
// arguments into positional order and fills defaults against a known
// signature, and type-checks the resulting positional argument list
// (spec.md §4.6 "Function call").
func (v *Validator) checkCall(scope *Scope, n *ast.Call) (ast.Node, types.Type) {
	if ident, ok := n.Target.(*ast.Ident); ok {
		if _, _, shadowed := scope.Lookup(ident.Name); !shadowed {
			if v.Builtins != nil {
				if result, rep, handled := v.Builtins.Validate(v, scope, n); handled {
					if rep != nil {
						v.Errors = append(v.Errors, rep)
					}
					return n, result
				}
			}
		}
		if sig, ok := scope.LookupFunc(ident.Name); ok {
			return v.checkCallAgainstSig(scope, n, sig)
		}
	}

	target, targetT := v.check(scope, n.Target)
	n.Target = target
	for i, a := range n.Args {
		if a.Name != "" {
			v.errorf(errors.VAL008, a.Value.Position(), "named argument '"+a.Name+"' requires a known function signature", map[string]any{"name": a.Name})
		}
		val, _ := v.check(scope, a.Value)
		n.Args[i].Value = val
	}
	if fn, ok := v.Lattice.Resolve(targetT).(*types.Func); ok {
		return n, v.checkPositionalArgs(n, fn.Params, fn.Ret)
	}
	return n, types.T(types.Any)
}

func (v *Validator) checkCallAgainstSig(scope *Scope, n *ast.Call, sig *FuncSig) (ast.Node, types.Type) {
	positional, rep := resolveArgs(n, sig.Params)
	if rep != nil {
		v.errorf(rep.code, n.Position(), rep.message, rep.data)
	}
	n.Args = positional
	for i, a := range n.Args {
		val, t := v.check(scope, a.Value)
		n.Args[i].Value = val
		if i < len(sig.Type.Params) && !v.Lattice.Check(sig.Type.Params[i], t) {
			v.errorf(errors.VAL001, a.Value.Position(), "argument "+strconv.Itoa(i+1)+" does not match declared parameter type", map[string]any{"index": i, "guard": sig.Type.Params[i].String(), "value": t.String()})
		}
	}
	return n, sig.Type.Ret
}

func (v *Validator) checkPositionalArgs(n *ast.Call, params []types.Type, ret types.Type) types.Type {
	if len(n.Args) != len(params) {
		v.errorf(errors.VAL008, n.Position(), "expected "+strconv.Itoa(len(params))+" arguments, got "+strconv.Itoa(len(n.Args)), map[string]any{"expected": len(params), "got": len(n.Args)})
		return ret
	}
	return ret
}

// argResolveError carries a VAL008 diagnostic from resolveArgs without
// importing errors.Report construction machinery into the pure-data
// resolver below.
type argResolveError struct {
	code    string
	message string
	data    map[string]any
}

// resolveArgs rewrites a call-site argument list (positional and/or
// named, spec.md §4.3) into strict positional order against params,
// filling any trailing omitted parameter from its declared default.
func resolveArgs(n *ast.Call, params []ast.Param) ([]ast.Arg, *argResolveError) {
	byName := map[string]ast.Node{}
	positionalCount := 0
	sawNamed := false
	for _, a := range n.Args {
		if a.Name == "" {
			if sawNamed {
				return n.Args, &argResolveError{errors.VAL008, "positional argument cannot follow a named one", nil}
			}
			positionalCount++
			continue
		}
		sawNamed = true
		found := false
		for _, p := range params {
			if p.Name == a.Name {
				found = true
				break
			}
		}
		if !found {
			return n.Args, &argResolveError{errors.VAL008, "unknown named argument '" + a.Name + "'", map[string]any{"name": a.Name}}
		}
		if _, dup := byName[a.Name]; dup {
			return n.Args, &argResolveError{errors.VAL008, "duplicate named argument '" + a.Name + "'", map[string]any{"name": a.Name}}
		}
		byName[a.Name] = a.Value
	}

	result := make([]ast.Arg, 0, len(params))
	pos := 0
	for i, p := range params {
		if i < positionalCount {
			result = append(result, ast.Arg{Value: n.Args[pos].Value})
			pos++
			continue
		}
		if val, ok := byName[p.Name]; ok {
			result = append(result, ast.Arg{Value: val})
			continue
		}
		if p.Default != nil {
			result = append(result, ast.Arg{Value: p.Default})
			continue
		}
		return n.Args, &argResolveError{errors.VAL008, "missing required argument '" + p.Name + "'", map[string]any{"name": p.Name}}
	}
	return result, nil
}

