package lexer

import (
	"testing"

	"github.com/plang-lang/plang/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `var x = 5 + 10
fn add(a, b) a + b

if x > 10 then "big" else "small"

[1, 2, 3]
{"a": 1}

# comment
"hello world" ~ "world"
true && false || not true
`

	tests := []struct {
		kind   token.Kind
		lexeme string
	}{
		{token.IDENT, "var"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.PLUS, "+"},
		{token.INT, "10"},

		{token.IDENT, "fn"},
		{token.IDENT, "add"},
		{token.L_PAREN, "("},
		{token.IDENT, "a"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.R_PAREN, ")"},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "b"},

		{token.IDENT, "if"},
		{token.IDENT, "x"},
		{token.GREATER, ">"},
		{token.INT, "10"},
		{token.IDENT, "then"},
		{token.DQUOTE_STRING, "big"},
		{token.IDENT, "else"},
		{token.DQUOTE_STRING, "small"},

		{token.L_BRACKET, "["},
		{token.INT, "1"},
		{token.COMMA, ","},
		{token.INT, "2"},
		{token.COMMA, ","},
		{token.INT, "3"},
		{token.R_BRACKET, "]"},

		{token.L_BRACE, "{"},
		{token.DQUOTE_STRING, "a"},
		{token.COLON, ":"},
		{token.INT, "1"},
		{token.R_BRACE, "}"},

		{token.DQUOTE_STRING, "hello world"},
		{token.TILDE, "~"},
		{token.DQUOTE_STRING, "world"},

		{token.IDENT, "true"},
		{token.AMP_AMP, "&&"},
		{token.IDENT, "false"},
		{token.PIPE_PIPE, "||"},
		{token.IDENT, "not"},
		{token.IDENT, "true"},

		{token.EOF, ""},
	}

	l := NewFromSource(input)
	for i, tt := range tests {
		tok := l.Next()
		if tok.Kind != tt.kind {
			t.Fatalf("test %d: expected kind %s, got %s (%q)", i, tt.kind, tok.Kind, tok.Lexeme)
		}
		if tok.Lexeme != tt.lexeme {
			t.Fatalf("test %d: expected lexeme %q, got %q", i, tt.lexeme, tok.Lexeme)
		}
	}
}

func TestMultilineComment(t *testing.T) {
	input := "var x /* this\nspans lines */ = 1"
	l := NewFromSource(input)
	want := []token.Kind{token.IDENT, token.IDENT, token.ASSIGN, token.INT, token.EOF}
	for i, k := range want {
		tok := l.Next()
		if tok.Kind != k {
			t.Fatalf("test %d: expected %s got %s", i, k, tok.Kind)
		}
	}
}

func TestInterpolatedStringToken(t *testing.T) {
	l := NewFromSource(`$"square of {a} = {square(a)}"`)
	tok := l.Next()
	if tok.Kind != token.DQUOTE_STRING_I {
		t.Fatalf("expected DQUOTE_STRING_I, got %s", tok.Kind)
	}
	if tok.Lexeme != "square of {a} = {square(a)}" {
		t.Fatalf("unexpected lexeme %q", tok.Lexeme)
	}
}

func TestResetRewindsPosition(t *testing.T) {
	l := NewFromSource("1 2 3")
	_ = l.Next()
	l.Reset()
	tok := l.Next()
	if tok.Lexeme != "1" {
		t.Fatalf("expected reset to rewind to first token, got %q", tok.Lexeme)
	}
}

func TestOtherTokenOnUnclassifiedChar(t *testing.T) {
	l := NewFromSource("`")
	tok := l.Next()
	if tok.Kind != token.OTHER {
		t.Fatalf("expected OTHER, got %s", tok.Kind)
	}
}
