package evaluator

import (
	"testing"

	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/parser"
)

func mustRun(t *testing.T, src string) Value {
	t.Helper()
	prog, errs := parser.Parse(src)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	ev := New(DefaultLimits())
	v, err := ev.Run(NewScope(), prog)
	if err != nil {
		t.Fatalf("unexpected evaluation error for %q: %v", src, err)
	}
	return v
}

func TestEvalArithmeticPromotesToReal(t *testing.T) {
	v := mustRun(t, "1 + 2 * 3")
	iv, ok := v.(IntValue)
	if !ok || iv != 7 {
		t.Fatalf("expected IntValue(7), got %#v", v)
	}
	v = mustRun(t, "7 / 2")
	rv, ok := v.(RealValue)
	if !ok || rv != 3.5 {
		t.Fatalf("expected RealValue(3.5), got %#v", v)
	}
}

func TestEvalClosureCapturesOuterVariable(t *testing.T) {
	v := mustRun(t, `
var counter = 0
fn makeAdder(n) fn(x) x + n + counter
var add5 = makeAdder(5)
add5(10)
`)
	iv, ok := v.(IntValue)
	if !ok || iv != 15 {
		t.Fatalf("expected IntValue(15), got %#v", v)
	}
}

func TestEvalRecursiveFibonacci(t *testing.T) {
	v := mustRun(t, `
fn fib(n) n == 1 ? 1 : n == 2 ? 1 : fib(n-1) + fib(n-2)
fib(10)
`)
	iv, ok := v.(IntValue)
	if !ok || iv != 55 {
		t.Fatalf("expected IntValue(55), got %#v", v)
	}
}

func TestEvalTryCatchMatchesThrownTagByString(t *testing.T) {
	v := mustRun(t, `
try
	throw "not_found"
catch ("not_found")
	"recovered"
`)
	sv, ok := v.(StringValue)
	if !ok || sv != "recovered" {
		t.Fatalf("expected StringValue(recovered), got %#v", v)
	}
}

func TestEvalTryCatchAllCatchesUnconditionally(t *testing.T) {
	v := mustRun(t, `
try
	throw "boom"
catch
	"handled"
`)
	sv, ok := v.(StringValue)
	if !ok || sv != "handled" {
		t.Fatalf("expected StringValue(handled), got %#v", v)
	}
}

func TestEvalWhileLastSuppliesLoopValue(t *testing.T) {
	v := mustRun(t, `
var i = 0
while true i == 5 ? last i : (i = i + 1)
`)
	iv, ok := v.(IntValue)
	if !ok || iv != 5 {
		t.Fatalf("expected IntValue(5), got %#v", v)
	}
}

func TestEvalArrayAndMapLiteralsAndIndexing(t *testing.T) {
	v := mustRun(t, `
var arr = [10, 20, 30]
var m = {"a": 1, "b": 2}
arr[1] + m["b"]
`)
	iv, ok := v.(IntValue)
	if !ok || iv != 22 {
		t.Fatalf("expected IntValue(22), got %#v", v)
	}
}

func TestEvalMapKeysValuesAndDelete(t *testing.T) {
	v := mustRun(t, `
var m = {"a": 1, "b": 2, "c": 3}
delete m["b"]
keys(m)
`)
	arr, ok := v.(*ArrayValue)
	if !ok || len(arr.Elements) != 2 {
		t.Fatalf("expected 2-element Array after delete, got %#v", v)
	}
	if s, ok := arr.Elements[0].(StringValue); !ok || s != "a" {
		t.Fatalf("expected first remaining key 'a', got %#v", arr.Elements[0])
	}
}

func TestEvalInterpolatedStringConcatenatesSegments(t *testing.T) {
	v := mustRun(t, `
var name = "Ada"
var n = 2 + 3
$"hello {name}, sum is {n}"
`)
	sv, ok := v.(StringValue)
	if !ok || sv != "hello Ada, sum is 5" {
		t.Fatalf("expected interpolated string, got %#v", v)
	}
}

func TestEvalIncDecPrefixAndPostfix(t *testing.T) {
	v := mustRun(t, `
var x = 5
var pre = ++x
var post = x++
x
`)
	iv, ok := v.(IntValue)
	if !ok || iv != 7 {
		t.Fatalf("expected x to end at 7, got %#v", v)
	}
}

func TestEvalCompoundAssignment(t *testing.T) {
	v := mustRun(t, `
var x = 10
x += 5
x *= 2
x
`)
	iv, ok := v.(IntValue)
	if !ok || iv != 30 {
		t.Fatalf("expected IntValue(30), got %#v", v)
	}
}

func TestEvalDivisionByZeroProducesRunError(t *testing.T) {
	prog, errs := parser.Parse("1 / 0")
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	ev := New(DefaultLimits())
	_, err := ev.Run(NewScope(), prog)
	if err == nil {
		t.Fatal("expected a division-by-zero runtime error")
	}
	rep, ok := errors.AsReport(err)
	if !ok {
		t.Fatalf("expected err to unwrap to a *errors.Report, got %v", err)
	}
	if rep.Code != errors.RUN003 {
		t.Fatalf("expected RUN003, got %s", rep.Code)
	}
}

func TestEvalSubstringIndexOperator(t *testing.T) {
	v := mustRun(t, `"hello world" ~ "world"`)
	iv, ok := v.(IntValue)
	if !ok || iv != 6 {
		t.Fatalf("expected IntValue(6), got %#v", v)
	}

	v = mustRun(t, `"hello" ~ "xyz"`)
	iv, ok = v.(IntValue)
	if !ok || iv != -1 {
		t.Fatalf("expected IntValue(-1), got %#v", v)
	}
}

func TestEvalConcatOperatorStillConcatenates(t *testing.T) {
	v := mustRun(t, `"hello " ^^ "world"`)
	sv, ok := v.(StringValue)
	if !ok || sv != "hello world" {
		t.Fatalf("expected StringValue(\"hello world\"), got %#v", v)
	}
}
