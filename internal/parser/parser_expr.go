package parser

import (
	"strconv"
	"strings"

	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/token"
)

// Precedence levels, low to high, scaled by 10 to leave room between
// table rows without renumbering everything when a form is added
// (spec.md §4.3 precedence table).
const (
	LOWEST     = 0
	OR_LOW     = 10 // or
	AND_LOW    = 20 // and
	NOT_LOW    = 30 // not (prefix)
	RANGE      = 40 // ..
	ASSIGN     = 50 // = += -= *= /= .=
	TERNARY    = 60 // ? :
	LOGIC_OR   = 70 // ||
	LOGIC_AND  = 80 // &&
	EQUALITY   = 90 // == !=
	RELATIONAL = 100
	STRINGOP   = 110 // ^^ ~
	ADDITIVE   = 120
	MULT       = 130
	EXP        = 140 // ** ^ %
	PREFIXP    = 150 // ++ -- ! unary +/-
	POSTFIXP   = 160 // ++ -- [ ]
	CALLP      = 170
	DOTP       = 180
)

// ParseProgram is the start rule (spec.md §4.3 "Program"): repeatedly
// calls Expression and collects non-NOP nodes, terminating statements on
// ';' or a terminator embedded in the expression grammar.
func (p *Parser) ParseProgram() *ast.Program {
	startTok := p.Peek()
	var stmts []ast.Node
	p.skipTerms()
	for p.Peek().Kind != token.EOF {
		if p.tooManyErrors() {
			p.errorf("PAR007", p.Peek(), "too many parse errors, aborting")
			break
		}
		mark := p.Try()
		node := p.Expression(LOWEST)
		if node == nil {
			p.Backtrack()
			_ = mark
			p.recover()
			continue
		}
		p.Commit()
		stmts = append(stmts, node)
		p.skipTerms()
	}
	return ast.NewProgram(p.pos(startTok), stmts)
}

func (p *Parser) skipTerms() {
	for p.Peek().Kind == token.TERM {
		p.Advance()
	}
}

// infixPrecedence returns the binding power of tok used as an infix or
// postfix operator, or 0 if tok cannot appear there.
func infixPrecedence(tok token.Token) int {
	switch tok.Kind {
	case token.OR:
		return OR_LOW
	case token.AND:
		return AND_LOW
	case token.DOT_DOT:
		return RANGE
	case token.ASSIGN, token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ, token.DOT_EQ:
		return ASSIGN
	case token.QUESTION:
		return TERNARY
	case token.PIPE_PIPE:
		return LOGIC_OR
	case token.AMP_AMP:
		return LOGIC_AND
	case token.EQ, token.NOT_EQ:
		return EQUALITY
	case token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ:
		return RELATIONAL
	case token.CARET_CARET, token.TILDE:
		return STRINGOP
	case token.PLUS, token.MINUS:
		return ADDITIVE
	case token.STAR, token.SLASH:
		return MULT
	case token.STAR_STAR, token.CARET, token.PERCENT:
		return EXP
	case token.PLUS_PLUS, token.MINUS_MINUS, token.L_BRACKET:
		return POSTFIXP
	case token.L_PAREN:
		return CALLP
	case token.DOT:
		return DOTP
	}
	return 0
}

// Expression is the Pratt parser: parse a prefix form, then while the
// next token's infix precedence exceeds minPrec, consume an infix or
// postfix form (spec.md §4.3).
func (p *Parser) Expression(minPrec int) ast.Node {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for {
		tok := p.Peek()
		prec := infixPrecedence(tok)
		if prec <= minPrec {
			break
		}
		left = p.parseInfix(left, tok, prec)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parsePrefix() ast.Node {
	tok := p.Peek()
	switch tok.Kind {
	case token.INT:
		p.Advance()
		v, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
		return ast.NewLiteral(p.pos(tok), ast.LitInteger, v)
	case token.HEX:
		p.Advance()
		v, _ := strconv.ParseInt(strings.TrimPrefix(strings.TrimPrefix(tok.Lexeme, "0x"), "0X"), 16, 64)
		return ast.NewLiteral(p.pos(tok), ast.LitInteger, v)
	case token.FLT:
		p.Advance()
		v, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return ast.NewLiteral(p.pos(tok), ast.LitReal, v)
	case token.DQUOTE_STRING, token.SQUOTE_STRING:
		p.Advance()
		return ast.NewLiteral(p.pos(tok), ast.LitString, unescape(tok.Lexeme))
	case token.DQUOTE_STRING_I, token.SQUOTE_STRING_I:
		p.Advance()
		return ast.NewInterpString(p.pos(tok), tok.Lexeme)
	case token.IDENT:
		p.Advance()
		return identOrQualified(p.pos(tok), tok.Lexeme)
	case token.L_PAREN:
		p.Advance()
		inner := p.Expression(LOWEST)
		if _, ok := p.Consume(token.R_PAREN); !ok {
			p.errorf("PAR002", p.Peek(), "expected ')' to close grouped expression")
			return nil
		}
		return inner
	case token.L_BRACKET:
		return p.parseArrayLit()
	case token.L_BRACE:
		return p.parseMapLit()
	case token.NOT:
		p.Advance()
		operand := p.Expression(NOT_LOW)
		if operand == nil {
			return nil
		}
		return ast.NewUnary(p.pos(tok), "not", operand)
	case token.BANG, token.MINUS, token.PLUS:
		p.Advance()
		operand := p.Expression(PREFIXP)
		if operand == nil {
			return nil
		}
		return ast.NewUnary(p.pos(tok), tok.Lexeme, operand)
	case token.PLUS_PLUS, token.MINUS_MINUS:
		p.Advance()
		target := p.Expression(PREFIXP)
		if target == nil || !isLvalue(target) {
			p.errorf("VAL007", tok, "prefix "+tok.Lexeme+" requires an lvalue operand")
			return nil
		}
		return ast.NewIncDec(p.pos(tok), tok.Lexeme, target, true)
	case token.KEYWORD:
		return p.parseKeywordForm(tok)
	}
	p.errorf("PAR001", tok, "unexpected token "+tok.Kind.String())
	return nil
}

// identOrQualified splits an identifier lexeme containing "::" into a
// QualifiedIdent (module = everything before the last "::"), otherwise
// returns a plain Ident (spec.md §4.3 "identifiers (qualified: a::b::c)").
func identOrQualified(pos ast.Pos, lexeme string) ast.Node {
	if idx := strings.LastIndex(lexeme, "::"); idx >= 0 {
		return ast.NewQualifiedIdent(pos, lexeme[:idx], lexeme[idx+2:])
	}
	return ast.NewIdent(pos, lexeme)
}

func isLvalue(n ast.Node) bool {
	switch n.(type) {
	case *ast.Ident, *ast.QualifiedIdent, *ast.Index, *ast.Dot:
		return true
	}
	return false
}

func unescape(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			default:
				sb.WriteByte(s[i+1])
			}
			i++
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func (p *Parser) parseArrayLit() ast.Node {
	open := p.Advance() // [
	var elems []ast.Node
	for p.Peek().Kind != token.R_BRACKET {
		el := p.Expression(LOWEST + 1)
		if el == nil {
			return nil
		}
		elems = append(elems, el)
		if _, ok := p.Consume(token.COMMA); !ok {
			break
		}
	}
	if _, ok := p.Consume(token.R_BRACKET); !ok {
		p.errorf("PAR002", p.Peek(), "expected ']' to close array literal")
		return nil
	}
	return ast.NewArrayLit(p.pos(open), elems)
}

func (p *Parser) parseMapLit() ast.Node {
	open := p.Advance() // {
	var entries []ast.MapEntry
	for p.Peek().Kind != token.R_BRACE {
		keyTok := p.Peek()
		var key string
		switch keyTok.Kind {
		case token.DQUOTE_STRING, token.SQUOTE_STRING:
			key = unescape(keyTok.Lexeme)
			p.Advance()
		case token.IDENT, token.KEYWORD, token.TYPE:
			key = keyTok.Lexeme
			p.Advance()
		default:
			p.errorf("PAR001", keyTok, "expected map key")
			return nil
		}
		if _, ok := p.Consume(token.COLON); !ok {
			p.errorf("PAR001", p.Peek(), "expected ':' after map key")
			return nil
		}
		val := p.Expression(LOWEST + 1)
		if val == nil {
			return nil
		}
		entries = append(entries, ast.MapEntry{Key: key, Value: val})
		if _, ok := p.Consume(token.COMMA); !ok {
			break
		}
	}
	if _, ok := p.Consume(token.R_BRACE); !ok {
		p.errorf("PAR002", p.Peek(), "expected '}' to close map literal")
		return nil
	}
	return ast.NewMapLit(p.pos(open), entries)
}

func (p *Parser) parseInfix(left ast.Node, tok token.Token, prec int) ast.Node {
	switch tok.Kind {
	case token.OR:
		p.Advance()
		right := p.Expression(prec)
		return ast.NewBinary(p.pos(tok), "or", left, right)
	case token.AND:
		p.Advance()
		right := p.Expression(prec)
		return ast.NewBinary(p.pos(tok), "and", left, right)
	case token.DOT_DOT:
		p.Advance()
		right := p.Expression(prec)
		return ast.NewRange(p.pos(tok), left, right)
	case token.ASSIGN, token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ, token.DOT_EQ:
		if !isLvalue(left) {
			p.errorf("VAL007", tok, "assignment target must be an lvalue")
			return nil
		}
		p.Advance()
		right := p.Expression(prec - 1) // right-associative
		return ast.NewAssign(p.pos(tok), tok.Lexeme, left, right)
	case token.QUESTION:
		p.Advance()
		then := p.Expression(LOWEST)
		if _, ok := p.Consume(token.COLON); !ok {
			p.errorf("PAR001", p.Peek(), "expected ':' in ternary expression")
			return nil
		}
		els := p.Expression(prec - 1) // right-associative chaining
		return ast.NewTernary(p.pos(tok), left, then, els)
	case token.PIPE_PIPE:
		p.Advance()
		right := p.Expression(prec)
		return ast.NewBinary(p.pos(tok), "||", left, right)
	case token.AMP_AMP:
		p.Advance()
		right := p.Expression(prec)
		return ast.NewBinary(p.pos(tok), "&&", left, right)
	case token.EQ, token.NOT_EQ, token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ,
		token.CARET_CARET, token.TILDE, token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.CARET, token.PERCENT:
		p.Advance()
		right := p.Expression(prec)
		return ast.NewBinary(p.pos(tok), tok.Lexeme, left, right)
	case token.STAR_STAR:
		p.Advance()
		right := p.Expression(prec - 1) // right-associative
		return ast.NewBinary(p.pos(tok), tok.Lexeme, left, right)
	case token.PLUS_PLUS, token.MINUS_MINUS:
		if !isLvalue(left) {
			p.errorf("VAL007", tok, "postfix "+tok.Lexeme+" requires an lvalue operand")
			return nil
		}
		p.Advance()
		return ast.NewIncDec(p.pos(tok), tok.Lexeme, left, false)
	case token.L_BRACKET:
		p.Advance()
		key := p.Expression(LOWEST)
		if _, ok := p.Consume(token.R_BRACKET); !ok {
			p.errorf("PAR002", p.Peek(), "expected ']' to close index expression")
			return nil
		}
		return ast.NewIndex(p.pos(tok), left, key)
	case token.L_PAREN:
		return p.parseCall(left, tok)
	case token.DOT:
		p.Advance()
		nameTok := p.Peek()
		if nameTok.Kind != token.IDENT && nameTok.Kind != token.KEYWORD && nameTok.Kind != token.TYPE {
			p.errorf("PAR001", nameTok, "expected field name after '.'")
			return nil
		}
		p.Advance()
		return ast.NewDot(p.pos(tok), left, nameTok.Lexeme)
	}
	return left
}

func (p *Parser) parseCall(target ast.Node, open token.Token) ast.Node {
	p.Advance() // (
	var args []ast.Arg
	for p.Peek().Kind != token.R_PAREN {
		arg := p.parseArg()
		if arg == nil {
			return nil
		}
		args = append(args, *arg)
		if _, ok := p.Consume(token.COMMA); !ok {
			break
		}
	}
	if _, ok := p.Consume(token.R_PAREN); !ok {
		p.errorf("PAR002", p.Peek(), "expected ')' to close call arguments")
		return nil
	}
	return ast.NewCall(p.pos(open), target, args)
}

// parseArg recognizes `name: expr` named-argument form by lookahead:
// IDENT COLON is ambiguous with a ternary/map-like expression only at
// statement boundaries, which argument position never is, so a direct
// lookahead (IDENT, COLON, not COLON_COLON) is sufficient and avoids an
// actual Try()/Backtrack() round-trip.
func (p *Parser) parseArg() *ast.Arg {
	if p.Peek().Kind == token.IDENT && p.PeekAt(1).Kind == token.COLON {
		name := p.Advance().Lexeme
		p.Advance() // :
		val := p.Expression(LOWEST + 1)
		if val == nil {
			return nil
		}
		return &ast.Arg{Name: name, Value: val}
	}
	val := p.Expression(LOWEST + 1)
	if val == nil {
		return nil
	}
	return &ast.Arg{Value: val}
}
