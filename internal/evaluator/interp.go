package evaluator

import (
	"fmt"

	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/parser"
)

// parseInterpExpr parses one `{...}` segment's interior as a standalone
// expression, reusing the full parser package rather than a private
// mini-grammar (spec.md §4.9: interpolated strings "parse at runtime").
func parseInterpExpr(src string) (ast.Node, error) {
	prog, reports := parser.Parse(src)
	if len(reports) > 0 {
		return nil, fmt.Errorf("%s", reports[0].Message)
	}
	if len(prog.Statements) == 0 {
		return ast.NewLiteral(ast.Pos{}, ast.LitString, ""), nil
	}
	return prog.Statements[0], nil
}
