package builtins_test

import (
	"testing"

	"github.com/plang-lang/plang/internal/builtins"
	"github.com/plang-lang/plang/internal/evaluator"
	"github.com/plang-lang/plang/internal/parser"
	"github.com/plang-lang/plang/internal/types"
	"github.com/plang-lang/plang/internal/validator"
)

// run parses, validates and evaluates src with the full builtin registry
// wired into both passes, mirroring how cmd/plang assembles the pipeline.
func run(t *testing.T, src string) evaluator.Value {
	t.Helper()
	prog, perrs := parser.Parse(src)
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, perrs)
	}

	reg := builtins.New()

	v := validator.New(types.NewLattice())
	v.Builtins = reg
	prog, verrs := v.Validate(prog)
	if len(verrs) > 0 {
		t.Fatalf("unexpected validate errors for %q: %v", src, verrs)
	}

	ev := evaluator.New(evaluator.DefaultLimits())
	ev.Builtins = reg
	val, err := ev.Run(evaluator.NewScope(), prog)
	if err != nil {
		t.Fatalf("unexpected evaluate error for %q: %v", src, err)
	}
	return val
}

func TestFilterKeepsElementsSatisfyingPredicate(t *testing.T) {
	v := run(t, "filter(fn(x) x < 4, [1, 2, 3, 4, 5])")
	arr, ok := v.(*evaluator.ArrayValue)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected a 3-element Array, got %#v", v)
	}
	for i, want := range []int64{1, 2, 3} {
		iv, ok := arr.Elements[i].(evaluator.IntValue)
		if !ok || int64(iv) != want {
			t.Fatalf("element %d: expected %d, got %#v", i, want, arr.Elements[i])
		}
	}
}

func TestMapAppliesFunctionToEveryElement(t *testing.T) {
	v := run(t, "map(fn(x) x * 2, [1, 2, 3])")
	arr, ok := v.(*evaluator.ArrayValue)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected a 3-element Array, got %#v", v)
	}
	for i, want := range []int64{2, 4, 6} {
		iv, ok := arr.Elements[i].(evaluator.IntValue)
		if !ok || int64(iv) != want {
			t.Fatalf("element %d: expected %d, got %#v", i, want, arr.Elements[i])
		}
	}
}

func TestDivisionByZeroIsCatchableAndPrintRunsOnce(t *testing.T) {
	v := run(t, `
try
	1/0
catch
	print("caught")
`)
	if _, ok := v.(evaluator.NullValue); !ok {
		t.Fatalf("expected print's Null return value, got %#v", v)
	}
}

func TestTypeofReportsRuntimeTypeName(t *testing.T) {
	v := run(t, `typeof(5)`)
	sv, ok := v.(evaluator.StringValue)
	if !ok || sv != "Integer" {
		t.Fatalf("expected StringValue(Integer), got %#v", v)
	}
	v = run(t, `typeof("hi")`)
	if sv, ok := v.(evaluator.StringValue); !ok || sv != "String" {
		t.Fatalf("expected StringValue(String), got %#v", v)
	}
}

func TestLengthOfStringArrayAndMap(t *testing.T) {
	v := run(t, `length("hello")`)
	if iv, ok := v.(evaluator.IntValue); !ok || iv != 5 {
		t.Fatalf("expected IntValue(5), got %#v", v)
	}
	v = run(t, `length([1, 2, 3, 4])`)
	if iv, ok := v.(evaluator.IntValue); !ok || iv != 4 {
		t.Fatalf("expected IntValue(4), got %#v", v)
	}
	v = run(t, `length({"a": 1, "b": 2})`)
	if iv, ok := v.(evaluator.IntValue); !ok || iv != 2 {
		t.Fatalf("expected IntValue(2), got %#v", v)
	}
}

func TestIntegerCastFromStringUsesLeadingDigits(t *testing.T) {
	v := run(t, `Integer("42abc")`)
	if iv, ok := v.(evaluator.IntValue); !ok || iv != 42 {
		t.Fatalf("expected IntValue(42), got %#v", v)
	}
	v = run(t, `Integer("not a number")`)
	if iv, ok := v.(evaluator.IntValue); !ok || iv != 0 {
		t.Fatalf("expected IntValue(0) default, got %#v", v)
	}
}

func TestRealCastFromStringUsesLeadingDecimal(t *testing.T) {
	v := run(t, `Real("3.25 units")`)
	if rv, ok := v.(evaluator.RealValue); !ok || rv != 3.25 {
		t.Fatalf("expected RealValue(3.25), got %#v", v)
	}
}

func TestBooleanCastEmptyStringIsFalse(t *testing.T) {
	v := run(t, `Boolean("")`)
	if bv, ok := v.(evaluator.BoolValue); !ok || bv != false {
		t.Fatalf("expected BoolValue(false), got %#v", v)
	}
	v = run(t, `Boolean("x")`)
	if bv, ok := v.(evaluator.BoolValue); !ok || bv != true {
		t.Fatalf("expected BoolValue(true), got %#v", v)
	}
}

func TestStringCastOfMapProducesSortedJSONCompatibleText(t *testing.T) {
	v := run(t, `String({"b": 2, "a": 1})`)
	sv, ok := v.(evaluator.StringValue)
	if !ok {
		t.Fatalf("expected StringValue, got %#v", v)
	}
	if string(sv) != `{"a": 1, "b": 2}` {
		t.Fatalf("expected sorted-key JSON-compatible text, got %q", sv)
	}
}

func TestArrayCastRoundTripsThroughString(t *testing.T) {
	v := run(t, `var a = [1, 2, 3]; Array(String(a))`)
	arr, ok := v.(*evaluator.ArrayValue)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected a 3-element Array, got %#v", v)
	}
}
