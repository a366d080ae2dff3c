package ast

import (
	"encoding/json"
	"fmt"
)

// Dump produces a deterministic JSON representation of node, keyed by its
// Instruction discriminator, for golden-snapshot testing (spec.md §6.3:
// "[INSTR, …args, {line, col}]"; two structurally identical ASTs must
// serialize identically).
func Dump(node Node) string {
	data, err := json.MarshalIndent(simplify(node), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

func simplify(node Node) interface{} {
	if node == nil {
		return nil
	}
	m := map[string]interface{}{"instr": node.Instr().String()}
	switch n := node.(type) {
	case *Program:
		stmts := make([]interface{}, len(n.Statements))
		for i, s := range n.Statements {
			stmts[i] = simplify(s)
		}
		m["statements"] = stmts
	case *Literal:
		m["value"] = n.Value
	case *Ident:
		m["name"] = n.Name
	case *QualifiedIdent:
		m["module"] = n.Module
		m["name"] = n.Name
	case *ArrayLit:
		elems := make([]interface{}, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = simplify(e)
		}
		m["elements"] = elems
	case *MapLit:
		entries := make([]interface{}, len(n.Entries))
		for i, e := range n.Entries {
			entries[i] = map[string]interface{}{"key": e.Key, "value": simplify(e.Value)}
		}
		m["entries"] = entries
	case *Unary:
		m["op"] = n.Op
		m["expr"] = simplify(n.Expr)
	case *Binary:
		m["op"] = n.Op
		m["left"] = simplify(n.Left)
		m["right"] = simplify(n.Right)
	case *Assign:
		m["op"] = n.Op
		m["target"] = simplify(n.Target)
		m["value"] = simplify(n.Value)
	case *Ternary:
		m["cond"] = simplify(n.Cond)
		m["then"] = simplify(n.Then)
		m["else"] = simplify(n.Else)
	case *Range:
		m["lo"] = simplify(n.Lo)
		m["hi"] = simplify(n.Hi)
	case *Call:
		m["target"] = simplify(n.Target)
		args := make([]interface{}, len(n.Args))
		for i, a := range n.Args {
			args[i] = map[string]interface{}{"name": a.Name, "value": simplify(a.Value)}
		}
		m["args"] = args
	case *Index:
		m["target"] = simplify(n.Target)
		m["key"] = simplify(n.Key)
	case *Dot:
		m["target"] = simplify(n.Target)
		m["name"] = n.Name
	case *FuncDef:
		m["name"] = n.Name
		m["returnType"] = n.ReturnType
		m["body"] = simplify(n.Body)
	case *VarDecl:
		m["name"] = n.Name
		m["typeName"] = n.TypeName
		if n.Init != nil {
			m["init"] = simplify(n.Init)
		}
	case *If:
		m["cond"] = simplify(n.Cond)
		m["then"] = simplify(n.Then)
		if n.Else != nil {
			m["else"] = simplify(n.Else)
		}
	case *While:
		m["cond"] = simplify(n.Cond)
		m["body"] = simplify(n.Body)
	case *Return:
		if n.Value != nil {
			m["value"] = simplify(n.Value)
		}
	case *Throw:
		m["value"] = simplify(n.Value)
	case *InterpString:
		m["raw"] = n.Raw
	case *Next:
		if n.Value != nil {
			m["value"] = simplify(n.Value)
		}
	case *Last:
		if n.Value != nil {
			m["value"] = simplify(n.Value)
		}
	case *Try:
		m["body"] = simplify(n.Body)
		catches := make([]interface{}, len(n.Catches))
		for i, c := range n.Catches {
			entry := map[string]interface{}{"body": simplify(c.Body)}
			if c.Cond != nil {
				entry["cond"] = simplify(c.Cond)
			}
			catches[i] = entry
		}
		m["catches"] = catches
	case *TypeDecl:
		m["name"] = n.Name
		m["isAlias"] = n.IsAlias
		if n.IsAlias {
			m["aliasOf"] = n.AliasOf
		} else {
			m["parentOf"] = n.ParentOf
		}
	case *ModuleDecl:
		m["path"] = n.Path
	case *ImportDecl:
		m["path"] = n.Path
		m["alias"] = n.Alias
	case *Exists:
		m["target"] = simplify(n.Target)
		m["key"] = simplify(n.Key)
	case *Delete:
		m["target"] = simplify(n.Target)
		if n.Key != nil {
			m["key"] = simplify(n.Key)
		}
	case *Keys:
		m["target"] = simplify(n.Target)
	case *Values:
		m["target"] = simplify(n.Target)
	case *IncDec:
		m["op"] = n.Op
		m["prefix"] = n.Prefix
		m["target"] = simplify(n.Target)
	}
	return m
}
