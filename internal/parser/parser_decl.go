package parser

import (
	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/token"
)

// parseKeywordForm dispatches every KEYWORD-led prefix form (spec.md
// §4.3): null/true/false, fn, return, while, next, last, if, exists,
// delete, keys, values, var, try, throw, type, module, import, and the
// `else`-without-`if` diagnostic.
func (p *Parser) parseKeywordForm(tok token.Token) ast.Node {
	switch tok.Lexeme {
	case "null":
		p.Advance()
		return ast.NewLiteral(p.pos(tok), ast.LitNull, nil)
	case "true":
		p.Advance()
		return ast.NewLiteral(p.pos(tok), ast.LitBoolean, true)
	case "false":
		p.Advance()
		return ast.NewLiteral(p.pos(tok), ast.LitBoolean, false)
	case "fn":
		return p.parseFuncDef()
	case "return":
		p.Advance()
		if p.startsExpression() {
			val := p.Expression(LOWEST + 1)
			if val == nil {
				return nil
			}
			return ast.NewReturn(p.pos(tok), val)
		}
		return ast.NewReturn(p.pos(tok), nil)
	case "while":
		return p.parseWhile()
	case "next":
		p.Advance()
		if p.startsExpression() {
			val := p.Expression(LOWEST + 1)
			return ast.NewNext(p.pos(tok), val)
		}
		return ast.NewNext(p.pos(tok), nil)
	case "last":
		p.Advance()
		if p.startsExpression() {
			val := p.Expression(LOWEST + 1)
			return ast.NewLast(p.pos(tok), val)
		}
		return ast.NewLast(p.pos(tok), nil)
	case "if":
		return p.parseIf()
	case "exists":
		p.Advance()
		target := p.Expression(PREFIXP)
		idx, ok := target.(*ast.Index)
		if !ok {
			p.errorf("PAR001", tok, "exists requires a target[key] expression")
			return nil
		}
		return ast.NewExists(p.pos(tok), idx.Target, idx.Key)
	case "delete":
		p.Advance()
		target := p.Expression(PREFIXP)
		if idx, ok := target.(*ast.Index); ok {
			return ast.NewDelete(p.pos(tok), idx.Target, idx.Key)
		}
		return ast.NewDelete(p.pos(tok), target, nil)
	case "keys":
		p.Advance()
		target := p.Expression(CALLP)
		return ast.NewKeys(p.pos(tok), target)
	case "values":
		p.Advance()
		target := p.Expression(CALLP)
		return ast.NewValues(p.pos(tok), target)
	case "var":
		return p.parseVarDecl()
	case "try":
		return p.parseTry()
	case "throw":
		p.Advance()
		val := p.Expression(LOWEST + 1)
		if val == nil {
			return nil
		}
		return ast.NewThrow(p.pos(tok), val)
	case "type":
		return p.parseTypeDecl()
	case "module":
		return p.parseModuleDecl()
	case "import":
		return p.parseImportDecl()
	case "else":
		p.errorf("PAR006", tok, "'else' without a matching 'if'")
		p.Advance()
		return nil
	}
	p.errorf("PAR001", tok, "unexpected keyword "+tok.Lexeme)
	return nil
}

// startsExpression reports whether the current token can begin an
// expression, used to distinguish a bare `return`/`next`/`last` from one
// carrying a value.
func (p *Parser) startsExpression() bool {
	switch p.Peek().Kind {
	case token.TERM, token.EOF, token.R_PAREN, token.R_BRACE, token.R_BRACKET:
		return false
	case token.KEYWORD:
		switch p.Peek().Lexeme {
		case "then", "else", "catch", "as":
			return false
		}
		return true
	default:
		return true
	}
}

// parseFuncDef parses `fn name? (params)? (-> type)? expression`
// (spec.md §4.3).
func (p *Parser) parseFuncDef() ast.Node {
	start := p.Advance() // fn
	name := ""
	if p.Peek().Kind == token.IDENT {
		name = p.Advance().Lexeme
	}
	var params []ast.Param
	if _, ok := p.Consume(token.L_PAREN); ok {
		sawDefault := false
		for p.Peek().Kind != token.R_PAREN {
			param, ok := p.parseParam(sawDefault)
			if !ok {
				return nil
			}
			if param.Default != nil {
				sawDefault = true
			}
			params = append(params, param)
			if _, ok := p.Consume(token.COMMA); !ok {
				break
			}
		}
		if _, ok := p.Consume(token.R_PAREN); !ok {
			p.errorf("PAR003", p.Peek(), "expected ')' to close parameter list")
			return nil
		}
	}
	retType := ""
	if _, ok := p.Consume(token.R_ARROW); ok {
		tn, ok := p.parseTypeName()
		if !ok {
			p.errorf("PAR003", p.Peek(), "expected return type after '->'")
			return nil
		}
		retType = tn
	}
	body := p.Expression(LOWEST + 1)
	if body == nil {
		p.errorf("PAR003", p.Peek(), "expected function body expression")
		return nil
	}
	return ast.NewFuncDef(p.pos(start), name, params, retType, body)
}

// parseParam parses one `(type? identifier (= default)?)` parameter.
// sawDefault enforces that once a default appears, every subsequent
// parameter must also have one (spec.md §4.3).
func (p *Parser) parseParam(sawDefault bool) (ast.Param, bool) {
	typeName := ""
	if p.Peek().Kind == token.TYPE {
		typeName = p.Advance().Lexeme
	}
	nameTok, ok := p.Consume(token.IDENT)
	if !ok {
		p.errorf("PAR003", p.Peek(), "expected parameter name")
		return ast.Param{}, false
	}
	var def ast.Node
	if _, ok := p.Consume(token.ASSIGN); ok {
		def = p.Expression(LOWEST + 1)
		if def == nil {
			return ast.Param{}, false
		}
	} else if sawDefault {
		p.errorf("PAR003", nameTok, "parameter without a default cannot follow one with a default")
		return ast.Param{}, false
	}
	return ast.Param{TypeName: typeName, Name: nameTok.Lexeme, Default: def}, true
}

// parseTypeName parses a type annotation: a TYPE token, an array form
// `[TypeName]`, or a union `TypeName | TypeName | ...`, returning its
// textual representation (spec.md leaves concrete surface syntax for
// compound type annotations as an implementation choice; see DESIGN.md).
func (p *Parser) parseTypeName() (string, bool) {
	if _, ok := p.Consume(token.L_BRACKET); ok {
		inner, ok := p.parseTypeName()
		if !ok {
			return "", false
		}
		if _, ok := p.Consume(token.R_BRACKET); !ok {
			return "", false
		}
		return "[" + inner + "]", true
	}
	tok, ok := p.Consume(token.TYPE)
	if !ok {
		return "", false
	}
	name := tok.Lexeme
	for {
		if _, ok := p.Consume(token.PIPE); !ok {
			break
		}
		next, ok := p.parseTypeName()
		if !ok {
			return "", false
		}
		name = name + "|" + next
	}
	return name, true
}

func (p *Parser) parseWhile() ast.Node {
	start := p.Advance() // while
	cond := p.Expression(LOWEST + 1)
	if cond == nil {
		return nil
	}
	body := p.Expression(LOWEST + 1)
	if body == nil {
		return nil
	}
	return ast.NewWhile(p.pos(start), cond, body)
}

func (p *Parser) parseIf() ast.Node {
	start := p.Advance() // if
	cond := p.Expression(LOWEST + 1)
	if cond == nil {
		return nil
	}
	p.ConsumeKeyword("then")
	then := p.Expression(LOWEST + 1)
	if then == nil {
		return nil
	}
	var els ast.Node
	if p.ConsumeKeyword("else") {
		els = p.Expression(LOWEST + 1)
		if els == nil {
			return nil
		}
	}
	return ast.NewIf(p.pos(start), cond, then, els)
}

func (p *Parser) parseVarDecl() ast.Node {
	start := p.Advance() // var
	nameTok, ok := p.Consume(token.IDENT)
	if !ok {
		p.errorf("PAR001", p.Peek(), "expected identifier after 'var'")
		return nil
	}
	typeName := ""
	if _, ok := p.Consume(token.COLON); ok {
		tn, ok := p.parseTypeName()
		if !ok {
			p.errorf("PAR001", p.Peek(), "expected type after ':'")
			return nil
		}
		typeName = tn
	}
	var init ast.Node
	if _, ok := p.Consume(token.ASSIGN); ok {
		init = p.Expression(LOWEST + 1)
		if init == nil {
			return nil
		}
	}
	return ast.NewVarDecl(p.pos(start), nameTok.Lexeme, typeName, init)
}

func (p *Parser) parseTry() ast.Node {
	start := p.Advance() // try
	body := p.Expression(LOWEST + 1)
	if body == nil {
		return nil
	}
	var catches []ast.Catch
	for p.ConsumeKeyword("catch") {
		var cond ast.Node
		if _, ok := p.Consume(token.L_PAREN); ok {
			cond = p.Expression(LOWEST)
			if _, ok := p.Consume(token.R_PAREN); !ok {
				p.errorf("VAL006", p.Peek(), "expected ')' after catch condition")
				return nil
			}
		}
		handlerBody := p.Expression(LOWEST + 1)
		if handlerBody == nil {
			return nil
		}
		catches = append(catches, ast.Catch{Cond: cond, Body: handlerBody})
	}
	return ast.NewTry(p.pos(start), body, catches)
}

func (p *Parser) parseTypeDecl() ast.Node {
	start := p.Advance() // type
	nameTok, ok := p.Consume(token.IDENT)
	if !ok {
		p.errorf("PAR001", p.Peek(), "expected type name after 'type'")
		return nil
	}
	if _, ok := p.Consume(token.ASSIGN); ok {
		of, ok := p.parseTypeName()
		if !ok {
			p.errorf("PAR001", p.Peek(), "expected type expression after '='")
			return nil
		}
		p.RegisterType(nameTok.Lexeme)
		return ast.NewTypeDecl(p.pos(start), nameTok.Lexeme, true, of)
	}
	if _, ok := p.Consume(token.COLON); ok {
		of, ok := p.parseTypeName()
		if !ok {
			p.errorf("PAR001", p.Peek(), "expected parent type after ':'")
			return nil
		}
		p.RegisterType(nameTok.Lexeme)
		return ast.NewTypeDecl(p.pos(start), nameTok.Lexeme, false, of)
	}
	p.RegisterType(nameTok.Lexeme)
	return ast.NewTypeDecl(p.pos(start), nameTok.Lexeme, false, "Any")
}

func (p *Parser) parseModuleDecl() ast.Node {
	start := p.Advance() // module
	path, ok := p.parseModulePath()
	if !ok {
		p.errorf("PAR004", p.Peek(), "expected module path after 'module'")
		return nil
	}
	return ast.NewModuleDecl(p.pos(start), path)
}

func (p *Parser) parseImportDecl() ast.Node {
	start := p.Advance() // import
	path, ok := p.parseModulePath()
	if !ok {
		p.errorf("PAR005", p.Peek(), "expected module path after 'import'")
		return nil
	}
	alias := ""
	if p.ConsumeKeyword("as") {
		nameTok, ok := p.Consume(token.IDENT)
		if !ok {
			p.errorf("PAR005", p.Peek(), "expected alias identifier after 'as'")
			return nil
		}
		alias = nameTok.Lexeme
	}
	return ast.NewImportDecl(p.pos(start), path, alias)
}

// parseModulePath parses `X::Y::Z` as a module path string, accepting
// either a single qualified IDENT (the lexer already merges `::` chains)
// or a bare IDENT.
func (p *Parser) parseModulePath() (string, bool) {
	tok, ok := p.Consume(token.IDENT)
	if !ok {
		return "", false
	}
	return tok.Lexeme, true
}
