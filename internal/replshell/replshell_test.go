package replshell_test

import (
	"testing"

	"github.com/plang-lang/plang/internal/evaluator"
	"github.com/plang-lang/plang/internal/replshell"
)

func TestVarDeclaredOnOneLineIsVisibleOnTheNext(t *testing.T) {
	sh := replshell.New(nil, evaluator.DefaultLimits())

	if _, reports, err := sh.Eval("var x = 10"); err != nil {
		t.Fatalf("unexpected error declaring x: %v (%v)", err, reports)
	}

	val, reports, err := sh.Eval("x + 5")
	if err != nil {
		t.Fatalf("unexpected error referencing x: %v (%v)", err, reports)
	}
	iv, ok := val.(evaluator.IntValue)
	if !ok || iv != 15 {
		t.Fatalf("expected IntValue(15), got %#v", val)
	}
}

func TestRedeclaringTheSameNameIsAllowedAcrossLines(t *testing.T) {
	sh := replshell.New(nil, evaluator.DefaultLimits())

	if _, reports, err := sh.Eval("var x = 1"); err != nil {
		t.Fatalf("unexpected error on first declaration: %v (%v)", err, reports)
	}
	val, reports, err := sh.Eval("var x = 2\nx")
	if err != nil {
		t.Fatalf("expected redeclaration to be allowed in the shell, got: %v (%v)", err, reports)
	}
	iv, ok := val.(evaluator.IntValue)
	if !ok || iv != 2 {
		t.Fatalf("expected IntValue(2), got %#v", val)
	}
}

func TestFunctionDeclaredOnOneLineIsCallableOnTheNext(t *testing.T) {
	sh := replshell.New(nil, evaluator.DefaultLimits())

	if _, reports, err := sh.Eval("fn square(n) n * n"); err != nil {
		t.Fatalf("unexpected error declaring square: %v (%v)", err, reports)
	}
	val, reports, err := sh.Eval("square(6)")
	if err != nil {
		t.Fatalf("unexpected error calling square: %v (%v)", err, reports)
	}
	iv, ok := val.(evaluator.IntValue)
	if !ok || iv != 36 {
		t.Fatalf("expected IntValue(36), got %#v", val)
	}
}

func TestParseErrorIsReportedWithoutEvaluating(t *testing.T) {
	sh := replshell.New(nil, evaluator.DefaultLimits())
	_, reports, err := sh.Eval("var = ")
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	if len(reports) == 0 {
		t.Fatalf("expected at least one diagnostic report")
	}
}
