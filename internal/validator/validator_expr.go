package validator

import (
	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/types"
)

func (v *Validator) checkUnary(scope *Scope, n *ast.Unary) (ast.Node, types.Type) {
	expr, t := v.check(scope, n.Expr)
	n.Expr = expr
	switch n.Op {
	case "not", "!":
		return n, types.T(types.Boolean)
	case "+", "-":
		if !v.Lattice.IsArithmetic(t) {
			v.errorf(errors.VAL001, n.Position(), "unary "+n.Op+" requires a numeric operand", map[string]any{"type": t.String()})
			return n, types.T(types.Any)
		}
		return n, t
	}
	return n, types.T(types.Any)
}

// stringOps are the STRINGOP-precedence infix operators (spec.md §4.3
// precedence table row "STRINGOP") that both take and produce String:
// concatenation.
var stringOps = map[string]bool{"^^": true}

// indexOps are the STRINGOP-precedence operators that take String operands
// but produce Integer: `~`, the substring-index operator (spec.md §4.6
// "index `~` → Integer").
var indexOps = map[string]bool{"~": true}

// arithmeticOps promote their operands and require both sides numeric.
var arithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true, "**": true, "^": true}

var relationalOps = map[string]bool{"<": true, "<=": true, ">": true, ">=": true}

var equalityOps = map[string]bool{"==": true, "!=": true}

var logicalOps = map[string]bool{"and": true, "or": true, "&&": true, "||": true}

func (v *Validator) checkBinary(scope *Scope, n *ast.Binary) (ast.Node, types.Type) {
	left, lt := v.check(scope, n.Left)
	right, rt := v.check(scope, n.Right)
	n.Left, n.Right = left, right

	switch {
	case arithmeticOps[n.Op]:
		// Division by zero is a runtime (RUN003) concern; the Validator
		// only checks operand shape, not value.
		result := v.Lattice.Promote(lt, rt)
		if result == types.NoPromotion {
			v.errorf(errors.VAL001, n.Position(), "operator '"+n.Op+"' requires numeric operands", map[string]any{"left": lt.String(), "right": rt.String()})
			return n, types.T(types.Any)
		}
		return n, result
	case stringOps[n.Op]:
		if lt.String() != types.Any && !v.Lattice.Check(types.T(types.String), lt) {
			v.errorf(errors.VAL001, n.Left.Position(), "operator '"+n.Op+"' requires String operands", map[string]any{"type": lt.String()})
		}
		if rt.String() != types.Any && !v.Lattice.Check(types.T(types.String), rt) {
			v.errorf(errors.VAL001, n.Right.Position(), "operator '"+n.Op+"' requires String operands", map[string]any{"type": rt.String()})
		}
		return n, types.T(types.String)
	case indexOps[n.Op]:
		if lt.String() != types.Any && !v.Lattice.Check(types.T(types.String), lt) {
			v.errorf(errors.VAL001, n.Left.Position(), "operator '"+n.Op+"' requires String operands", map[string]any{"type": lt.String()})
		}
		if rt.String() != types.Any && !v.Lattice.Check(types.T(types.String), rt) {
			v.errorf(errors.VAL001, n.Right.Position(), "operator '"+n.Op+"' requires String operands", map[string]any{"type": rt.String()})
		}
		return n, types.T(types.Integer)
	case relationalOps[n.Op]:
		if v.Lattice.Promote(lt, rt) == types.NoPromotion {
			v.errorf(errors.VAL001, n.Position(), "operator '"+n.Op+"' requires comparable numeric operands", map[string]any{"left": lt.String(), "right": rt.String()})
		}
		return n, types.T(types.Boolean)
	case equalityOps[n.Op]:
		return n, types.T(types.Boolean)
	case logicalOps[n.Op]:
		return n, types.T(types.Boolean)
	}
	return n, types.T(types.Any)
}

func (v *Validator) checkAssign(scope *Scope, n *ast.Assign) (ast.Node, types.Type) {
	if dot, ok := n.Target.(*ast.Dot); ok {
		idx := ast.NewIndex(dot.Position(), dot.Target, ast.NewLiteral(dot.Position(), ast.LitString, dot.Name))
		n.Target = idx
	}

	value, vt := v.check(scope, n.Value)
	n.Value = value

	switch target := n.Target.(type) {
	case *ast.Ident:
		guard, _, ok := scope.Lookup(target.Name)
		if !ok {
			v.errorf(errors.VAL002, n.Position(), "assignment to undeclared identifier '"+target.Name+"'", map[string]any{"name": target.Name})
			return n, vt
		}
		result := v.assignResultType(n, guard, vt)
		if !v.Lattice.Check(guard, result) {
			v.errorf(errors.VAL001, n.Position(), "cannot assign "+result.String()+" to '"+target.Name+"' ("+guard.String()+")", map[string]any{"name": target.Name, "guard": guard.String(), "value": result.String()})
		}
		return n, result
	case *ast.Index:
		idxNode, _ := v.checkIndex(scope, target)
		n.Target = idxNode
		return n, vt
	case *ast.QualifiedIdent:
		v.errorf(errors.VAL007, n.Position(), "cannot assign to a qualified (imported) identifier", nil)
		return n, vt
	default:
		v.errorf(errors.VAL007, n.Position(), "invalid assignment target", nil)
		return n, vt
	}
}

// assignResultType computes the value actually being stored for a
// compound assignment (`+=`, `-=`, `*=`, `/=`, `.=`), which combines the
// existing guard type with the right-hand value the way the equivalent
// binary operator would.
func (v *Validator) assignResultType(n *ast.Assign, guard, valueType types.Type) types.Type {
	switch n.Op {
	case "=":
		return valueType
	case "+=", "-=", "*=", "/=":
		result := v.Lattice.Promote(guard, valueType)
		if result == types.NoPromotion {
			return valueType
		}
		return result
	case ".=":
		return types.T(types.String)
	}
	return valueType
}

func (v *Validator) checkTernary(scope *Scope, n *ast.Ternary) (ast.Node, types.Type) {
	cond, _ := v.check(scope, n.Cond)
	then, thenT := v.check(scope, n.Then)
	els, elsT := v.check(scope, n.Else)
	n.Cond, n.Then, n.Else = cond, then, els
	return n, types.Unite(v.Lattice, []types.Type{thenT, elsT})
}

// checkDot desugars `target.name` into `target["name"]` (spec.md §4.6
// invariant: no Dot node survives the Validator), then delegates to Index
// for the actual type-checking.
func (v *Validator) checkDot(scope *Scope, n *ast.Dot) (ast.Node, types.Type) {
	key := ast.NewLiteral(n.Position(), ast.LitString, n.Name)
	idx := ast.NewIndex(n.Position(), n.Target, key)
	return v.checkIndex(scope, idx)
}

func (v *Validator) checkIndex(scope *Scope, n *ast.Index) (ast.Node, types.Type) {
	target, tt := v.check(scope, n.Target)
	key, kt := v.check(scope, n.Key)
	n.Target, n.Key = target, key
	resolved := v.Lattice.Resolve(tt)

	switch rt := resolved.(type) {
	case *types.Arr:
		if _, isRange := n.Key.(*ast.Range); isRange {
			return n, &types.Arr{Elem: rt.Elem}
		}
		if !v.Lattice.Check(types.T(types.Integer), kt) {
			v.errorf(errors.VAL001, n.Key.Position(), "array index must be Integer", map[string]any{"type": kt.String()})
		}
		return n, rt.Elem
	case *types.Rec:
		if lit, ok := n.Key.(*ast.Literal); ok && lit.Kind == ast.LitString {
			if name, ok := lit.Value.(string); ok {
				for _, p := range rt.Properties {
					if p.Name == name {
						return n, p.Type
					}
				}
			}
		} else if !v.Lattice.Check(types.T(types.String), kt) {
			v.errorf(errors.VAL001, n.Key.Position(), "map key must be String", map[string]any{"type": kt.String()})
		}
		return n, types.T(types.Any)
	case *types.Simple:
		switch rt.Name {
		case types.String:
			return n, types.T(types.String)
		case types.Any, types.Map, types.Array:
			return n, types.T(types.Any)
		}
	}
	return n, types.T(types.Any)
}
