package validator

import (
	"testing"

	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/parser"
)

func mustValidate(t *testing.T, src string) (*ast.Program, *Validator) {
	t.Helper()
	prog, perrs := parser.Parse(src)
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, perrs)
	}
	v := New(nil)
	out, verrs := v.Validate(prog)
	if len(verrs) > 0 {
		t.Fatalf("unexpected validate errors for %q: %v", src, verrs)
	}
	return out, v
}

func TestValidateArithmeticPromotesIntegerReal(t *testing.T) {
	prog, v := mustValidate(t, "1 + 2.5")
	bin := prog.Statements[0].(*ast.Binary)
	if _, ty := v.CheckNode(NewScope(), bin); ty.String() != "Real" {
		t.Fatalf("expected Integer + Real to promote to Real, got %s", ty)
	}
}

func TestValidateUndeclaredIdentifierErrors(t *testing.T) {
	prog, perrs := parser.Parse("x + 1")
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	v := New(nil)
	_, verrs := v.Validate(prog)
	if len(verrs) == 0 {
		t.Fatal("expected VAL002 for undeclared identifier")
	}
	if verrs[0].Code != "VAL002" {
		t.Fatalf("expected VAL002, got %s", verrs[0].Code)
	}
}

func TestValidateVarDeclTypeMismatch(t *testing.T) {
	prog, perrs := parser.Parse(`var x: Integer = "hi"`)
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	v := New(nil)
	_, verrs := v.Validate(prog)
	if len(verrs) == 0 || verrs[0].Code != "VAL001" {
		t.Fatalf("expected VAL001, got %v", verrs)
	}
}

func TestValidateRedeclarationErrors(t *testing.T) {
	prog, perrs := parser.Parse("var x = 1; var x = 2")
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	v := New(nil)
	_, verrs := v.Validate(prog)
	if len(verrs) == 0 || verrs[0].Code != "VAL003" {
		t.Fatalf("expected VAL003, got %v", verrs)
	}
}

func TestValidateNextOutsideWhileErrors(t *testing.T) {
	prog, perrs := parser.Parse("next")
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	v := New(nil)
	_, verrs := v.Validate(prog)
	if len(verrs) == 0 || verrs[0].Code != "VAL004" {
		t.Fatalf("expected VAL004, got %v", verrs)
	}
}

func TestValidateReturnOutsideFunctionErrors(t *testing.T) {
	prog, perrs := parser.Parse("return 1")
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	v := New(nil)
	_, verrs := v.Validate(prog)
	if len(verrs) == 0 || verrs[0].Code != "VAL005" {
		t.Fatalf("expected VAL005, got %v", verrs)
	}
}

func TestValidateDotDesugarsToIndex(t *testing.T) {
	prog, _ := mustValidate(t, `var m = {"a": 1}; m.a`)
	if _, ok := prog.Statements[1].(*ast.Dot); ok {
		t.Fatal("expected Dot to be desugared away by the Validator")
	}
	idx, ok := prog.Statements[1].(*ast.Index)
	if !ok {
		t.Fatalf("expected Index after desugaring, got %T", prog.Statements[1])
	}
	lit, ok := idx.Key.(*ast.Literal)
	if !ok || lit.Value != "a" {
		t.Fatalf("expected desugared key literal \"a\", got %#v", idx.Key)
	}
}

func TestValidateNamedArgsRewriteToPositional(t *testing.T) {
	prog, _ := mustValidate(t, "fn add(a, b) a + b; add(b: 2, a: 1)")
	call := prog.Statements[1].(*ast.Call)
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 positional args after rewrite, got %d", len(call.Args))
	}
	for _, a := range call.Args {
		if a.Name != "" {
			t.Fatalf("expected all args rewritten to positional (no Name), got %+v", call.Args)
		}
	}
	first := call.Args[0].Value.(*ast.Literal)
	second := call.Args[1].Value.(*ast.Literal)
	if first.Value != int64(1) || second.Value != int64(2) {
		t.Fatalf("expected rewritten order [1, 2], got [%v, %v]", first.Value, second.Value)
	}
}

func TestValidateDefaultArgumentFillsMissingPositional(t *testing.T) {
	prog, _ := mustValidate(t, `fn greet(name, greeting = "hi") greeting; greet("Ada")`)
	call := prog.Statements[1].(*ast.Call)
	if len(call.Args) != 2 {
		t.Fatalf("expected default to fill the second argument, got %d args", len(call.Args))
	}
	lit := call.Args[1].Value.(*ast.Literal)
	if lit.Value != "hi" {
		t.Fatalf("expected filled default \"hi\", got %v", lit.Value)
	}
}

func TestValidateMissingRequiredArgumentErrors(t *testing.T) {
	prog, perrs := parser.Parse("fn add(a, b) a + b; add(1)")
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	v := New(nil)
	_, verrs := v.Validate(prog)
	if len(verrs) == 0 || verrs[0].Code != "VAL008" {
		t.Fatalf("expected VAL008, got %v", verrs)
	}
}

func TestValidateRecursiveFunctionValidatesWithoutErrors(t *testing.T) {
	prog, _ := mustValidate(t, `fn fib(n) n == 1 ? 1 : n == 2 ? 1 : fib(n-1) + fib(n-2); fib(10)`)
	fn := prog.Statements[0].(*ast.FuncDef)
	if fn.Name != "fib" {
		t.Fatalf("expected fib, got %s", fn.Name)
	}
}

func TestValidateIncDecRequiresLvalue(t *testing.T) {
	_, perrs := parser.Parse("1++")
	if len(perrs) == 0 {
		t.Fatal("expected a parse-time VAL007 for postfix ++ on a non-lvalue")
	}
}

func TestValidateTryCatchUnitesBranchTypes(t *testing.T) {
	prog, v := mustValidate(t, `try 1 catch ("oops") "recovered"`)
	tr := prog.Statements[0].(*ast.Try)
	if len(tr.Catches) != 1 {
		t.Fatalf("expected 1 catch clause, got %d", len(tr.Catches))
	}
	if _, ty := v.CheckNode(NewScope(), tr); ty.String() != "Integer|String" {
		t.Fatalf("expected united branch type Integer|String, got %s", ty)
	}
}

func TestValidateWhileWithLastValue(t *testing.T) {
	prog, _ := mustValidate(t, `while true last 5`)
	w := prog.Statements[0].(*ast.While)
	if _, ok := w.Body.(*ast.Last); !ok {
		t.Fatalf("expected Last body, got %T", w.Body)
	}
}

func TestValidateSubstringIndexOperatorYieldsInteger(t *testing.T) {
	prog, v := mustValidate(t, `"hello world" ~ "world"`)
	bin := prog.Statements[0].(*ast.Binary)
	if bin.Op != "~" {
		t.Fatalf("expected '~' binary, got %q", bin.Op)
	}
	if _, ty := v.CheckNode(NewScope(), bin); ty.String() != "Integer" {
		t.Fatalf("expected '~' to yield Integer, got %s", ty)
	}
}

func TestValidateExistsRequiresMapTarget(t *testing.T) {
	prog, perrs := parser.Parse(`
var n = 1
exists n["a"]
`)
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	v := New(nil)
	_, verrs := v.Validate(prog)
	if len(verrs) == 0 {
		t.Fatal("expected a VAL001 for 'exists' on a non-Map target")
	}
	if verrs[len(verrs)-1].Code != "VAL001" {
		t.Fatalf("expected VAL001, got %s", verrs[len(verrs)-1].Code)
	}
}

func TestValidateDeleteRequiresMapTarget(t *testing.T) {
	prog, perrs := parser.Parse(`
var xs = [1, 2, 3]
delete xs["a"]
`)
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	v := New(nil)
	_, verrs := v.Validate(prog)
	if len(verrs) == 0 {
		t.Fatal("expected a VAL001 for 'delete' on a non-Map target")
	}
	if verrs[len(verrs)-1].Code != "VAL001" {
		t.Fatalf("expected VAL001, got %s", verrs[len(verrs)-1].Code)
	}
}

func TestValidateExistsAcceptsMapTarget(t *testing.T) {
	mustValidate(t, `
var m = {"a": 1}
exists m["a"]
`)
}
