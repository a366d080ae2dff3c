package module

import "github.com/plang-lang/plang/internal/ast"

// rewriteScope tracks which names are locally bound at the current point
// of the walk (function parameters, var declarations), so step 5's bare
// -identifier rewrite never shadows a genuine local binding: "a bare
// `add(1,2)` in the importer resolves to the imported symbol only if no
// local `add` is declared" (spec.md §4.5 scenario 9).
type rewriteScope struct {
	names  map[string]bool
	parent *rewriteScope
}

func newRewriteScope(parent *rewriteScope) *rewriteScope {
	return &rewriteScope{names: map[string]bool{}, parent: parent}
}

func (s *rewriteScope) declare(name string) { s.names[name] = true }

func (s *rewriteScope) has(name string) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.names[name] {
			return true
		}
	}
	return false
}

// resolveSymbol returns the alias-or-name of the first imported unit that
// exports name, in import order, or "" if none does.
func (im *Importer) resolveSymbol(name string) string {
	for _, alias := range im.order {
		if _, ok := im.units[alias].Types[name]; ok {
			return alias
		}
	}
	return ""
}

// rewriteNode walks node, replacing any bare *ast.Ident that resolves to
// an imported symbol (and isn't locally shadowed) with a *ast.QualifiedIdent,
// and recording the replacement in im.rewrites. It mirrors the Validator
// and Evaluator's dispatch shape, but only tracks name bindings rather than
// full types or values.
func (im *Importer) rewriteNode(rs *rewriteScope, node ast.Node) ast.Node {
	if node == nil {
		return nil
	}
	switch n := node.(type) {
	case *ast.Ident:
		if rs.has(n.Name) {
			return n
		}
		module := im.resolveSymbol(n.Name)
		if module == "" {
			return n
		}
		im.rewrites = append(im.rewrites, RewriteEntry{Lexeme: n.Name, Module: module, Pos: n.Position()})
		return ast.NewQualifiedIdent(n.Position(), module, n.Name)

	case *ast.QualifiedIdent, *ast.Literal, *ast.InterpString, *ast.ModuleDecl, *ast.ImportDecl:
		return n

	case *ast.ArrayLit:
		for i, el := range n.Elements {
			n.Elements[i] = im.rewriteNode(rs, el)
		}
		return n

	case *ast.MapLit:
		for i := range n.Entries {
			n.Entries[i].Value = im.rewriteNode(rs, n.Entries[i].Value)
		}
		return n

	case *ast.Unary:
		n.Expr = im.rewriteNode(rs, n.Expr)
		return n

	case *ast.Binary:
		n.Left = im.rewriteNode(rs, n.Left)
		n.Right = im.rewriteNode(rs, n.Right)
		return n

	case *ast.Assign:
		n.Target = im.rewriteNode(rs, n.Target)
		n.Value = im.rewriteNode(rs, n.Value)
		return n

	case *ast.Ternary:
		n.Cond = im.rewriteNode(rs, n.Cond)
		n.Then = im.rewriteNode(rs, n.Then)
		n.Else = im.rewriteNode(rs, n.Else)
		return n

	case *ast.Range:
		n.Lo = im.rewriteNode(rs, n.Lo)
		n.Hi = im.rewriteNode(rs, n.Hi)
		return n

	case *ast.Call:
		n.Target = im.rewriteNode(rs, n.Target)
		for i := range n.Args {
			n.Args[i].Value = im.rewriteNode(rs, n.Args[i].Value)
		}
		return n

	case *ast.Index:
		n.Target = im.rewriteNode(rs, n.Target)
		n.Key = im.rewriteNode(rs, n.Key)
		return n

	case *ast.Dot:
		n.Target = im.rewriteNode(rs, n.Target)
		return n

	case *ast.FuncDef:
		child := newRewriteScope(rs)
		for i, p := range n.Params {
			if p.Default != nil {
				n.Params[i].Default = im.rewriteNode(rs, p.Default)
			}
			child.declare(p.Name)
		}
		if n.Name != "" {
			rs.declare(n.Name)
			child.declare(n.Name)
		}
		n.Body = im.rewriteNode(child, n.Body)
		return n

	case *ast.VarDecl:
		if n.Init != nil {
			n.Init = im.rewriteNode(rs, n.Init)
		}
		rs.declare(n.Name)
		return n

	case *ast.If:
		n.Cond = im.rewriteNode(rs, n.Cond)
		n.Then = im.rewriteNode(rs, n.Then)
		if n.Else != nil {
			n.Else = im.rewriteNode(rs, n.Else)
		}
		return n

	case *ast.While:
		n.Cond = im.rewriteNode(rs, n.Cond)
		n.Body = im.rewriteNode(newRewriteScope(rs), n.Body)
		return n

	case *ast.Next:
		if n.Value != nil {
			n.Value = im.rewriteNode(rs, n.Value)
		}
		return n

	case *ast.Last:
		if n.Value != nil {
			n.Value = im.rewriteNode(rs, n.Value)
		}
		return n

	case *ast.Return:
		if n.Value != nil {
			n.Value = im.rewriteNode(rs, n.Value)
		}
		return n

	case *ast.Try:
		n.Body = im.rewriteNode(newRewriteScope(rs), n.Body)
		for i, c := range n.Catches {
			if c.Cond != nil {
				n.Catches[i].Cond = im.rewriteNode(rs, c.Cond)
			}
			n.Catches[i].Body = im.rewriteNode(newRewriteScope(rs), c.Body)
		}
		return n

	case *ast.Throw:
		n.Value = im.rewriteNode(rs, n.Value)
		return n

	case *ast.Exists:
		n.Target = im.rewriteNode(rs, n.Target)
		n.Key = im.rewriteNode(rs, n.Key)
		return n

	case *ast.Delete:
		n.Target = im.rewriteNode(rs, n.Target)
		if n.Key != nil {
			n.Key = im.rewriteNode(rs, n.Key)
		}
		return n

	case *ast.Keys:
		n.Target = im.rewriteNode(rs, n.Target)
		return n

	case *ast.Values:
		n.Target = im.rewriteNode(rs, n.Target)
		return n

	case *ast.IncDec:
		n.Target = im.rewriteNode(rs, n.Target)
		return n

	case *ast.TypeDecl:
		return n
	}
	return node
}
