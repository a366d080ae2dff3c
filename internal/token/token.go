// Package token defines the lexical token vocabulary shared by the lexer
// and parser.
package token

import "fmt"

// Kind identifies the class of a Token. The set is closed and mirrors the
// token classes enumerated in the language specification.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF
	OTHER // catch-all for unclassified input; the parser flags it

	// Comments (discarded by the lexer, listed for completeness)
	COMMENT_EOL
	COMMENT_INLINE
	COMMENT_MULTI

	// Literals
	IDENT
	INT
	HEX
	FLT
	DQUOTE_STRING
	SQUOTE_STRING
	DQUOTE_STRING_I // interpolated $"..." form
	SQUOTE_STRING_I

	// Upgraded identifier classes (see parser.Parser.classify)
	KEYWORD
	TYPE

	// Operators
	EQ_TILDE   // =~
	BANG_TILDE // !~
	NOT_EQ     // !=
	GREATER_EQ // >=
	LESS_EQ    // <=
	EQ         // ==
	SLASH_EQ   // /=
	STAR_EQ    // *=
	MINUS_EQ   // -=
	PLUS_EQ    // +=
	DOT_EQ     // .=
	PLUS_PLUS  // ++
	STAR_STAR  // **
	MINUS_MINUS
	R_ARROW // ->
	ASSIGN  // =
	PLUS
	MINUS
	GREATER
	LESS
	BANG
	QUESTION
	COLON_COLON // ::
	COLON
	TILDE
	PIPE_PIPE // ||
	PIPE
	AMP_AMP // &&
	CARET_CARET
	CARET
	PERCENT
	POUND
	COMMA
	STAR
	SLASH
	BSLASH
	L_BRACKET
	R_BRACKET
	L_PAREN
	R_PAREN
	L_BRACE
	R_BRACE
	DOT_DOT
	DOT
	NOT
	AND
	OR

	TERM       // statement terminator ';'
	WHITESPACE // discarded
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", OTHER: "OTHER",
	COMMENT_EOL: "COMMENT_EOL", COMMENT_INLINE: "COMMENT_INLINE", COMMENT_MULTI: "COMMENT_MULTI",
	IDENT: "IDENT", INT: "INT", HEX: "HEX", FLT: "FLT",
	DQUOTE_STRING: "DQUOTE_STRING", SQUOTE_STRING: "SQUOTE_STRING",
	DQUOTE_STRING_I: "DQUOTE_STRING_I", SQUOTE_STRING_I: "SQUOTE_STRING_I",
	KEYWORD: "KEYWORD", TYPE: "TYPE",
	EQ_TILDE: "EQ_TILDE", BANG_TILDE: "BANG_TILDE", NOT_EQ: "NOT_EQ",
	GREATER_EQ: "GREATER_EQ", LESS_EQ: "LESS_EQ", EQ: "EQ",
	SLASH_EQ: "SLASH_EQ", STAR_EQ: "STAR_EQ", MINUS_EQ: "MINUS_EQ", PLUS_EQ: "PLUS_EQ", DOT_EQ: "DOT_EQ",
	PLUS_PLUS: "PLUS_PLUS", STAR_STAR: "STAR_STAR", MINUS_MINUS: "MINUS_MINUS",
	R_ARROW: "R_ARROW", ASSIGN: "ASSIGN", PLUS: "PLUS", MINUS: "MINUS",
	GREATER: "GREATER", LESS: "LESS", BANG: "BANG", QUESTION: "QUESTION",
	COLON_COLON: "COLON_COLON", COLON: "COLON", TILDE: "TILDE",
	PIPE_PIPE: "PIPE_PIPE", PIPE: "PIPE", AMP_AMP: "AMP_AMP",
	CARET_CARET: "CARET_CARET", CARET: "CARET", PERCENT: "PERCENT", POUND: "POUND",
	COMMA: "COMMA", STAR: "STAR", SLASH: "SLASH", BSLASH: "BSLASH",
	L_BRACKET: "L_BRACKET", R_BRACKET: "R_BRACKET", L_PAREN: "L_PAREN", R_PAREN: "R_PAREN",
	L_BRACE: "L_BRACE", R_BRACE: "R_BRACE", DOT_DOT: "DOT_DOT", DOT: "DOT",
	NOT: "NOT", AND: "AND", OR: "OR", TERM: "TERM", WHITESPACE: "WHITESPACE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a typed lexeme annotated with its source position.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Col    int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Lexeme, t.Line, t.Col)
}

// Keywords is the recognition set the parser uses to upgrade an IDENT
// token to KEYWORD (spec.md §4.2, §6.1).
var Keywords = map[string]bool{
	"var": true, "true": true, "false": true, "null": true,
	"fn": true, "return": true, "while": true, "next": true, "last": true,
	"if": true, "then": true, "else": true, "exists": true, "delete": true,
	"keys": true, "values": true, "try": true, "catch": true, "throw": true,
	"module": true, "import": true, "as": true, "type": true,
}

// BaseTypeNames holds the base lattice names (spec.md §3) the parser seeds
// its IDENT-to-TYPE recognition set with. The parser copies it; its own
// copy grows when a `type` declaration introduces a new nominal type or
// alias, and this map is left unchanged.
var BaseTypeNames = map[string]bool{
	"Any": true, "Null": true, "Boolean": true, "Number": true,
	"Integer": true, "Real": true, "String": true, "Array": true,
	"Map": true, "Function": true, "Builtin": true,
}
