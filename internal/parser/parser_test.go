package parser

import (
	"testing"

	"github.com/plang-lang/plang/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := Parse(src)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	return prog
}

func TestParseArithmeticPrecedence(t *testing.T) {
	prog := mustParse(t, "1 + 4 * 3 + 2 * 4")
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	top, ok := prog.Statements[0].(*ast.Binary)
	if !ok {
		t.Fatalf("expected top-level Binary, got %T", prog.Statements[0])
	}
	if top.Op != "+" {
		t.Fatalf("expected top-level '+' (right addition), got %q", top.Op)
	}
}

func TestParseFibonacciTernary(t *testing.T) {
	prog := mustParse(t, `fn fib(n) n == 1 ? 1 : n == 2 ? 1 : fib(n-1) + fib(n-2); fib(12)`)
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	fn, ok := prog.Statements[0].(*ast.FuncDef)
	if !ok {
		t.Fatalf("expected FuncDef, got %T", prog.Statements[0])
	}
	if fn.Name != "fib" {
		t.Fatalf("expected name 'fib', got %q", fn.Name)
	}
	ternary, ok := fn.Body.(*ast.Ternary)
	if !ok {
		t.Fatalf("expected Ternary body, got %T", fn.Body)
	}
	if _, ok := ternary.Else.(*ast.Ternary); !ok {
		t.Fatalf("expected nested ternary in else-branch, got %T", ternary.Else)
	}
	call, ok := prog.Statements[1].(*ast.Call)
	if !ok {
		t.Fatalf("expected trailing call, got %T", prog.Statements[1])
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 call arg, got %d", len(call.Args))
	}
}

func TestParseNamedArguments(t *testing.T) {
	prog := mustParse(t, `add(a: 3, b: 4)`)
	call := prog.Statements[0].(*ast.Call)
	if call.Args[0].Name != "a" || call.Args[1].Name != "b" {
		t.Fatalf("expected named args a,b, got %+v", call.Args)
	}
}

func TestParseMapDeleteDesugarsToIndexForm(t *testing.T) {
	prog := mustParse(t, `var m = {"a": 1, "b": 2}; delete m["b"]; m`)
	if len(prog.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Statements))
	}
	del, ok := prog.Statements[1].(*ast.Delete)
	if !ok {
		t.Fatalf("expected Delete, got %T", prog.Statements[1])
	}
	if del.Key == nil {
		t.Fatal("expected delete with explicit key")
	}
}

func TestParseWholeMapDelete(t *testing.T) {
	prog := mustParse(t, `delete m`)
	del := prog.Statements[0].(*ast.Delete)
	if del.Key != nil {
		t.Fatal("expected whole-map delete to have nil Key")
	}
}

func TestParseModuleAndImport(t *testing.T) {
	prog := mustParse(t, "module Math\nimport Std as S")
	mod, ok := prog.Statements[0].(*ast.ModuleDecl)
	if !ok || mod.Path != "Math" {
		t.Fatalf("expected ModuleDecl(Math), got %#v", prog.Statements[0])
	}
	imp, ok := prog.Statements[1].(*ast.ImportDecl)
	if !ok || imp.Path != "Std" || imp.Alias != "S" {
		t.Fatalf("expected ImportDecl(Std as S), got %#v", prog.Statements[1])
	}
}

func TestParseQualifiedIdentifier(t *testing.T) {
	prog := mustParse(t, "Math::add(1, 2)")
	call := prog.Statements[0].(*ast.Call)
	qi, ok := call.Target.(*ast.QualifiedIdent)
	if !ok || qi.Module != "Math" || qi.Name != "add" {
		t.Fatalf("expected QualifiedIdent(Math::add), got %#v", call.Target)
	}
}

func TestParseDotDesugarAtParseTimeIsLeftAsDot(t *testing.T) {
	prog := mustParse(t, "x.y")
	dot, ok := prog.Statements[0].(*ast.Dot)
	if !ok || dot.Name != "y" {
		t.Fatalf("expected Dot(x.y) before validator desugaring, got %#v", prog.Statements[0])
	}
}

func TestParseElseWithoutIfIsDiagnostic(t *testing.T) {
	_, errs := Parse("else 1")
	if len(errs) == 0 {
		t.Fatal("expected a parse error for 'else' without 'if'")
	}
	found := false
	for _, e := range errs {
		if e.Code == "PAR006" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected PAR006, got %v", errs)
	}
}

func TestParseFunctionWithDefaults(t *testing.T) {
	prog := mustParse(t, "fn greet(name, greeting = \"hi\") greeting")
	fn := prog.Statements[0].(*ast.FuncDef)
	if len(fn.Params) != 2 || fn.Params[1].Default == nil {
		t.Fatalf("expected second param to carry a default, got %+v", fn.Params)
	}
}

func TestParseErrorRecoveryContinuesAfterBadStatement(t *testing.T) {
	prog, errs := Parse("1 + ; 2 + 2")
	if len(errs) == 0 {
		t.Fatal("expected at least one parse error")
	}
	if len(prog.Statements) == 0 {
		t.Fatal("expected parser to recover and still produce the trailing valid statement")
	}
}

func TestParseFilterCall(t *testing.T) {
	prog := mustParse(t, "filter(fn(x) x < 4, [1,2,3,4,5])")
	call := prog.Statements[0].(*ast.Call)
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
	if _, ok := call.Args[0].Value.(*ast.FuncDef); !ok {
		t.Fatalf("expected anonymous FuncDef as first arg, got %T", call.Args[0].Value)
	}
}
