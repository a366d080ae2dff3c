// Package parser implements Plang's backtracking recursive-descent /
// Pratt parser (spec.md §4.2, §4.3). Parser core lives in this file:
// the token buffer, try/advance/backtrack stack, and keyword/type
// recognition. The grammar rules live in parser_expr.go and
// parser_decl.go.
package parser

import (
	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/lexer"
	"github.com/plang-lang/plang/internal/token"
)

// DefaultMaxErrors is how many parse errors are collected before parsing
// aborts (spec.md §4.2, configurable via Parser.MaxErrors).
const DefaultMaxErrors = 3

// Parser turns a token stream into the raw (pre-import, pre-validation)
// AST.
type Parser struct {
	lx *lexer.Lexer

	// toks is every token produced so far from lx, already classified
	// (KEYWORD/TYPE/AND/OR/NOT upgrades applied). idx indexes into it;
	// consuming past the end pulls more from lx.
	toks []token.Token
	idx  int

	// backtrack is the try()/advance()/backtrack() stack of saved
	// positions (spec.md §4.2).
	backtrack []int

	Errors    []*errors.Report
	MaxErrors int

	// typeNames is the mutable type-recognition set; it grows when a
	// `type` declaration is parsed (spec.md §4.2, §3).
	typeNames map[string]bool
}

// New constructs a Parser reading from lx.
func New(lx *lexer.Lexer) *Parser {
	p := &Parser{lx: lx, MaxErrors: DefaultMaxErrors}
	p.typeNames = map[string]bool{}
	for name := range token.BaseTypeNames {
		p.typeNames[name] = true
	}
	return p
}

// classify upgrades a raw IDENT token to AND/OR/NOT, KEYWORD, or TYPE per
// the parser's recognition sets (spec.md §4.2).
func (p *Parser) classify(tok token.Token) token.Token {
	if tok.Kind != token.IDENT {
		return tok
	}
	switch tok.Lexeme {
	case "and":
		tok.Kind = token.AND
		return tok
	case "or":
		tok.Kind = token.OR
		return tok
	case "not":
		tok.Kind = token.NOT
		return tok
	}
	if token.Keywords[tok.Lexeme] {
		tok.Kind = token.KEYWORD
		return tok
	}
	if p.typeNames[tok.Lexeme] {
		tok.Kind = token.TYPE
		return tok
	}
	return tok
}

func (p *Parser) fill(n int) {
	for len(p.toks) <= n {
		p.toks = append(p.toks, p.classify(p.lx.Next()))
	}
}

// Peek returns the next unconsumed token without advancing.
func (p *Parser) Peek() token.Token { return p.PeekAt(0) }

// PeekAt returns the token k positions ahead of the current position
// without advancing.
func (p *Parser) PeekAt(k int) token.Token {
	p.fill(p.idx + k)
	return p.toks[p.idx+k]
}

// Advance returns the current token and moves past it.
func (p *Parser) Advance() token.Token {
	tok := p.Peek()
	p.idx++
	return tok
}

// Consume returns (token, true) and advances only if the current token's
// kind matches; otherwise it leaves the position untouched and returns
// (zero, false).
func (p *Parser) Consume(kind token.Kind) (token.Token, bool) {
	if p.Peek().Kind == kind {
		return p.Advance(), true
	}
	return token.Token{}, false
}

// ConsumeKeyword is Consume specialized for a KEYWORD token with a
// specific lexeme (e.g. "then", "else", "catch").
func (p *Parser) ConsumeKeyword(lexeme string) bool {
	tok := p.Peek()
	if tok.Kind == token.KEYWORD && tok.Lexeme == lexeme {
		p.Advance()
		return true
	}
	return false
}

// Try pushes the current position and returns a mark to later Backtrack
// to, or Commit to discard.
func (p *Parser) Try() int {
	p.backtrack = append(p.backtrack, p.idx)
	return len(p.backtrack) - 1
}

// Commit pops the most recent Try mark without restoring position (the
// attempt succeeded).
func (p *Parser) Commit() {
	if len(p.backtrack) > 0 {
		p.backtrack = p.backtrack[:len(p.backtrack)-1]
	}
}

// Backtrack restores the position saved by the most recent Try and pops
// it off the stack (the attempt failed).
func (p *Parser) Backtrack() {
	if len(p.backtrack) == 0 {
		return
	}
	n := len(p.backtrack) - 1
	p.idx = p.backtrack[n]
	p.backtrack = p.backtrack[:n]
}

// RegisterType adds name to the type-recognition set (called when a
// `type` declaration is parsed, so later IDENT occurrences of that name
// upgrade to TYPE).
func (p *Parser) RegisterType(name string) {
	p.typeNames[name] = true
}

func (p *Parser) pos(tok token.Token) ast.Pos { return ast.Pos{Line: tok.Line, Col: tok.Col} }

// errorf records a structured parse error. Once more than MaxErrors have
// accumulated, parsing aborts (spec.md §4.2).
func (p *Parser) errorf(code string, tok token.Token, message string) {
	p.Errors = append(p.Errors, errors.New("parser", code, errors.Position{Line: tok.Line, Col: tok.Col}, message, nil))
}

func (p *Parser) tooManyErrors() bool {
	return len(p.Errors) > p.MaxErrors
}

// recover consumes tokens until the next statement terminator (or EOF),
// discards all pending backtrack frames back to the current position, and
// lets the caller re-enter the top-level rule (spec.md §4.2 error
// recovery).
func (p *Parser) recover() {
	for {
		tok := p.Peek()
		if tok.Kind == token.EOF {
			break
		}
		if tok.Kind == token.TERM {
			p.Advance()
			break
		}
		p.Advance()
	}
	p.backtrack = p.backtrack[:0]
}
