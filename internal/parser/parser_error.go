package parser

import (
	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/lexer"
)

// Parse is the convenience entry point: lex src, run the Pratt parser,
// and return the raw Program plus any collected errors.
func Parse(src string) (*ast.Program, []*errors.Report) {
	p := New(lexer.NewFromSource(src))
	prog := p.ParseProgram()
	return prog, p.Errors
}
