package validator

import (
	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/types"
)

// Validator runs the static type-checking/inference/desugaring pass
// described in spec.md §4.6. It shares the Evaluator's dispatch shape (a
// type switch on the concrete ast node type) but computes a types.Type for
// every node instead of a runtime value, and rewrites the tree in two
// places: Dot nodes desugar into Index nodes, and Call argument lists are
// rewritten from named/default form into plain positional form.
type Validator struct {
	Lattice   *types.Lattice
	Builtins  Builtins  // nil disables builtin dispatch (tests may omit it)
	Namespace Namespace // nil disables qualified-identifier resolution
	Errors    []*errors.Report

	// ReplMode relaxes the same-scope redeclaration check (VAL003) for
	// `var`: an interactive shell re-validates a growing top-level scope
	// on every line, so re-binding a name already declared in an earlier
	// line must not be an error there the way it is in a file (spec.md
	// §4.6, SPEC_FULL.md §12's REPL persistence mode).
	ReplMode bool

	// TopScope is the root scope populated by the most recent Validate
	// call, retained so the ModuleImporter (spec.md §4.5 step 4) can read
	// back an imported file's top-level symbol types after validating it.
	TopScope *Scope

	// returnTypes/lastTypes are scratch stacks collecting the types of
	// every `return`/`last value` reached while validating the body of
	// the function/while loop currently on top; validateFuncDef and
	// validateWhile slice off the entries pushed during their own body
	// walk to perform return-type / break-type inference (spec.md §4.6).
	returnTypes []types.Type
	lastTypes   []types.Type
}

// New builds a Validator over a fresh or caller-supplied type lattice.
func New(lattice *types.Lattice) *Validator {
	if lattice == nil {
		lattice = types.NewLattice()
	}
	return &Validator{Lattice: lattice}
}

// Validate type-checks, infers, and desugars prog in place, returning the
// (possibly rewritten) program and any diagnostics collected.
func (v *Validator) Validate(prog *ast.Program) (*ast.Program, []*errors.Report) {
	scope := NewScope()
	for i, stmt := range prog.Statements {
		node, _ := v.check(scope, stmt)
		prog.Statements[i] = node
	}
	v.TopScope = scope
	return prog, v.Errors
}

// CheckNode type-checks an arbitrary expression node in scope, exposing
// the private check dispatch to packages outside validator (the
// BuiltinRegistry's Validate bodies, spec.md §4.8, need to type-check
// their own call arguments the same way the generic Call path does).
func (v *Validator) CheckNode(scope *Scope, node ast.Node) (ast.Node, types.Type) {
	return v.check(scope, node)
}

// Errorf records a diagnostic against v.Errors, exposing the private
// errorf helper to the BuiltinRegistry's Validate bodies.
func (v *Validator) Errorf(code string, pos ast.Pos, message string, data map[string]any) {
	v.errorf(code, pos, message, data)
}

func (v *Validator) errorf(code string, pos ast.Pos, message string, data map[string]any) {
	v.Errors = append(v.Errors, errors.New("validate", code, errors.Position{Line: pos.Line, Col: pos.Col}, message, data))
}

// check dispatches on node's concrete type, returning the (possibly
// rewritten) node and its inferred type. A nil node (e.g. an absent
// `else` branch) types as Null and passes through unchanged.
func (v *Validator) check(scope *Scope, node ast.Node) (ast.Node, types.Type) {
	if node == nil {
		return nil, types.T(types.Null)
	}
	switch n := node.(type) {
	case *ast.Literal:
		return n, v.checkLiteral(n)
	case *ast.Ident:
		return v.checkIdent(scope, n)
	case *ast.QualifiedIdent:
		return v.checkQualifiedIdent(n)
	case *ast.InterpString:
		return n, types.T(types.String)
	case *ast.ArrayLit:
		return v.checkArrayLit(scope, n)
	case *ast.MapLit:
		return v.checkMapLit(scope, n)
	case *ast.Unary:
		return v.checkUnary(scope, n)
	case *ast.Binary:
		return v.checkBinary(scope, n)
	case *ast.Assign:
		return v.checkAssign(scope, n)
	case *ast.Ternary:
		return v.checkTernary(scope, n)
	case *ast.Range:
		return v.checkRange(scope, n)
	case *ast.Call:
		return v.checkCall(scope, n)
	case *ast.Index:
		return v.checkIndex(scope, n)
	case *ast.Dot:
		return v.checkDot(scope, n)
	case *ast.FuncDef:
		return v.checkFuncDef(scope, n)
	case *ast.VarDecl:
		return v.checkVarDecl(scope, n)
	case *ast.If:
		return v.checkIf(scope, n)
	case *ast.While:
		return v.checkWhile(scope, n)
	case *ast.Next:
		return v.checkNext(scope, n)
	case *ast.Last:
		return v.checkLast(scope, n)
	case *ast.Return:
		return v.checkReturn(scope, n)
	case *ast.Try:
		return v.checkTry(scope, n)
	case *ast.Throw:
		return v.checkThrow(scope, n)
	case *ast.TypeDecl:
		return v.checkTypeDecl(n)
	case *ast.ModuleDecl:
		return n, types.T(types.Null)
	case *ast.ImportDecl:
		return n, types.T(types.Null)
	case *ast.Exists:
		return v.checkExists(scope, n)
	case *ast.Delete:
		return v.checkDelete(scope, n)
	case *ast.Keys:
		return v.checkKeys(scope, n)
	case *ast.Values:
		return v.checkValues(scope, n)
	case *ast.IncDec:
		return v.checkIncDec(scope, n)
	}
	return node, types.T(types.Any)
}

func (v *Validator) checkLiteral(n *ast.Literal) types.Type {
	switch n.Kind {
	case ast.LitNull:
		return types.T(types.Null)
	case ast.LitBoolean:
		return types.T(types.Boolean)
	case ast.LitInteger:
		return types.T(types.Integer)
	case ast.LitReal:
		return types.T(types.Real)
	case ast.LitString:
		return types.T(types.String)
	}
	return types.T(types.Any)
}

func (v *Validator) checkIdent(scope *Scope, n *ast.Ident) (ast.Node, types.Type) {
	if g, _, ok := scope.Lookup(n.Name); ok {
		return n, g
	}
	v.errorf(errors.VAL002, n.Position(), "undeclared identifier '"+n.Name+"'", map[string]any{"name": n.Name})
	return n, types.T(types.Any)
}

func (v *Validator) checkQualifiedIdent(n *ast.QualifiedIdent) (ast.Node, types.Type) {
	if v.Namespace != nil {
		if t, ok := v.Namespace.Lookup(n.Module, n.Name); ok {
			return n, t
		}
	}
	return n, types.T(types.Any)
}

func (v *Validator) checkArrayLit(scope *Scope, n *ast.ArrayLit) (ast.Node, types.Type) {
	if len(n.Elements) == 0 {
		return n, &types.Arr{Elem: types.T(types.Any)}
	}
	elemTypes := make([]types.Type, len(n.Elements))
	for i, el := range n.Elements {
		rewritten, t := v.check(scope, el)
		n.Elements[i] = rewritten
		elemTypes[i] = t
	}
	return n, &types.Arr{Elem: types.Unite(v.Lattice, elemTypes)}
}

func (v *Validator) checkMapLit(scope *Scope, n *ast.MapLit) (ast.Node, types.Type) {
	props := make([]types.Property, len(n.Entries))
	for i, e := range n.Entries {
		rewritten, t := v.check(scope, e.Value)
		n.Entries[i].Value = rewritten
		props[i] = types.Property{Name: e.Key, Type: t}
	}
	return n, &types.Rec{Properties: props}
}

func (v *Validator) checkRange(scope *Scope, n *ast.Range) (ast.Node, types.Type) {
	lo, loT := v.check(scope, n.Lo)
	hi, hiT := v.check(scope, n.Hi)
	n.Lo, n.Hi = lo, hi
	if !v.Lattice.Check(types.T(types.Integer), loT) {
		v.errorf(errors.VAL001, n.Lo.Position(), "range bound must be Integer", nil)
	}
	if !v.Lattice.Check(types.T(types.Integer), hiT) {
		v.errorf(errors.VAL001, n.Hi.Position(), "range bound must be Integer", nil)
	}
	return n, &types.Arr{Elem: types.T(types.Integer)}
}

func (v *Validator) checkTypeDecl(n *ast.TypeDecl) (ast.Node, types.Type) {
	if n.IsAlias {
		v.Lattice.RegisterAlias(n.Name, typeFromAnnotation(v.Lattice, n.AliasOf))
	} else {
		v.Lattice.RegisterSubtype(n.Name, n.ParentOf)
	}
	return n, types.T(types.Null)
}

func (v *Validator) checkExists(scope *Scope, n *ast.Exists) (ast.Node, types.Type) {
	target, targetT := v.check(scope, n.Target)
	key, _ := v.check(scope, n.Key)
	n.Target, n.Key = target, key
	v.requireMapTarget(n.Target.Position(), "exists", targetT)
	return n, types.T(types.Boolean)
}

// requireMapTarget enforces spec.md §8 testable invariant #4: `exists`
// and `delete` only apply to Map-typed expressions (or Any, which defers
// the check to runtime).
func (v *Validator) requireMapTarget(pos ast.Pos, op string, targetT types.Type) {
	if targetT.String() == types.Any {
		return
	}
	if _, ok := v.Lattice.Resolve(targetT).(*types.Rec); ok {
		return
	}
	if v.Lattice.IsSubtype(targetT, types.T(types.Map)) {
		return
	}
	v.errorf(errors.VAL001, pos, "'"+op+"' requires a Map-typed target", map[string]any{"type": targetT.String()})
}

// checkDelete types the two delete forms (spec.md §9 Open Question,
// resolved per the source behavior): `delete m` empties m and evaluates
// to m itself, so its static type is the target's own type. `delete
// m[k]` evaluates to the removed value or Null, so its static type
// widens the target's element/property type with Null.
func (v *Validator) checkDelete(scope *Scope, n *ast.Delete) (ast.Node, types.Type) {
	target, targetT := v.check(scope, n.Target)
	n.Target = target
	v.requireMapTarget(n.Target.Position(), "delete", targetT)
	if n.Key == nil {
		return n, targetT
	}
	key, _ := v.check(scope, n.Key)
	n.Key = key
	if rec, ok := v.Lattice.Resolve(targetT).(*types.Rec); ok {
		if lit, ok := n.Key.(*ast.Literal); ok && lit.Kind == ast.LitString {
			if name, ok := lit.Value.(string); ok {
				for _, p := range rec.Properties {
					if p.Name == name {
						return n, types.Unite(v.Lattice, []types.Type{p.Type, types.T(types.Null)})
					}
				}
			}
		}
	}
	return n, types.T(types.Any)
}

func (v *Validator) checkKeys(scope *Scope, n *ast.Keys) (ast.Node, types.Type) {
	target, _ := v.check(scope, n.Target)
	n.Target = target
	return n, &types.Arr{Elem: types.T(types.String)}
}

func (v *Validator) checkValues(scope *Scope, n *ast.Values) (ast.Node, types.Type) {
	target, t := v.check(scope, n.Target)
	n.Target = target
	if rec, ok := v.Lattice.Resolve(t).(*types.Rec); ok {
		propTypes := make([]types.Type, len(rec.Properties))
		for i, p := range rec.Properties {
			propTypes[i] = p.Type
		}
		return n, &types.Arr{Elem: types.Unite(v.Lattice, propTypes)}
	}
	return n, &types.Arr{Elem: types.T(types.Any)}
}

func (v *Validator) checkIncDec(scope *Scope, n *ast.IncDec) (ast.Node, types.Type) {
	if !isLvalue(n.Target) {
		v.errorf(errors.VAL007, n.Position(), "++/-- requires an lvalue operand", nil)
		return n, types.T(types.Any)
	}
	target, t := v.check(scope, n.Target)
	n.Target = target
	if !v.Lattice.IsArithmetic(t) {
		v.errorf(errors.VAL001, n.Position(), "++/-- requires a numeric operand", map[string]any{"type": t.String()})
	}
	return n, t
}

func isLvalue(n ast.Node) bool {
	switch n.(type) {
	case *ast.Ident, *ast.QualifiedIdent, *ast.Index:
		return true
	}
	return false
}
