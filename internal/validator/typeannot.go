package validator

import (
	"strings"

	"github.com/plang-lang/plang/internal/types"
)

// typeFromAnnotation parses the textual type annotation the Parser stores
// on Param.TypeName / VarDecl.TypeName / FuncDef.ReturnType: a bare type
// name, an array form "[T]", or a union "A|B|C" (possibly nested), and
// resolves it against lattice (spec.md §4.3 surface syntax, §3 semantics).
// An empty annotation means Any.
func typeFromAnnotation(lattice *types.Lattice, annot string) types.Type {
	annot = strings.TrimSpace(annot)
	if annot == "" {
		return types.T(types.Any)
	}
	return parseTypeExpr(lattice, annot)
}

// parseTypeExpr splits top-level '|' (outside of bracket nesting) into
// union members, then parses each as an array-or-simple type.
func parseTypeExpr(lattice *types.Lattice, s string) types.Type {
	parts := splitTopLevel(s, '|')
	if len(parts) == 1 {
		return parseTypeAtom(lattice, parts[0])
	}
	members := make([]types.Type, len(parts))
	for i, p := range parts {
		members[i] = parseTypeAtom(lattice, p)
	}
	return types.Unite(lattice, members)
}

func parseTypeAtom(lattice *types.Lattice, s string) types.Type {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := s[1 : len(s)-1]
		return &types.Arr{Elem: parseTypeExpr(lattice, inner)}
	}
	return types.T(s)
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside
// brackets, so "Integer|[String|Real]" splits into two parts, not three.
func splitTopLevel(s string, sep byte) []string {
	depth := 0
	start := 0
	var parts []string
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		default:
			if s[i] == sep && depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
