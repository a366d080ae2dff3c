package module_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plang-lang/plang/internal/builtins"
	"github.com/plang-lang/plang/internal/evaluator"
	"github.com/plang-lang/plang/internal/module"
	"github.com/plang-lang/plang/internal/parser"
	"github.com/plang-lang/plang/internal/types"
	"github.com/plang-lang/plang/internal/validator"
)

func writeModule(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".plang"), []byte(src), 0o644); err != nil {
		t.Fatalf("writing module %s: %v", name, err)
	}
}

// run parses src, loads its imports against dir, validates and evaluates
// it, mirroring the pipeline cmd/plang assembles (spec.md §4.5 scenario 9).
func run(t *testing.T, dir, src string) evaluator.Value {
	t.Helper()
	prog, perrs := parser.Parse(src)
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, perrs)
	}

	reg := builtins.New()
	im := module.New([]string{dir}, reg, reg, evaluator.DefaultLimits())
	if _, err := im.Load(prog); err != nil {
		t.Fatalf("unexpected import error for %q: %v", src, err)
	}

	v := validator.New(types.NewLattice())
	v.Builtins = reg
	v.Namespace = im.TypeNamespace()
	prog, verrs := v.Validate(prog)
	if len(verrs) > 0 {
		t.Fatalf("unexpected validate errors for %q: %v", src, verrs)
	}

	ev := evaluator.New(evaluator.DefaultLimits())
	ev.Builtins = reg
	ev.Namespace = im.ValueNamespace()
	val, err := ev.Run(evaluator.NewScope(), prog)
	if err != nil {
		t.Fatalf("unexpected evaluate error for %q: %v", src, err)
	}
	return val
}

func TestQualifiedCallResolvesImportedFunction(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "Math", "module Math\nfn add(a, b) a + b")

	v := run(t, dir, `
import Math
Math::add(1, 2)
`)
	iv, ok := v.(evaluator.IntValue)
	if !ok || iv != 3 {
		t.Fatalf("expected IntValue(3), got %#v", v)
	}
}

func TestBareIdentifierResolvesToImportedSymbolWhenNoLocalShadow(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "Math", "module Math\nfn add(a, b) a + b")

	v := run(t, dir, `
import Math
add(4, 5)
`)
	iv, ok := v.(evaluator.IntValue)
	if !ok || iv != 9 {
		t.Fatalf("expected IntValue(9), got %#v", v)
	}
}

func TestLocalDeclarationShadowsImportedSymbol(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "Math", "module Math\nfn add(a, b) a + b")

	v := run(t, dir, `
import Math
fn add(a, b) a - b
add(4, 5)
`)
	iv, ok := v.(evaluator.IntValue)
	if !ok || iv != -1 {
		t.Fatalf("expected the local add (4-5=-1), got %#v", v)
	}
}

func TestImportAliasIsUsableAsTheQualifier(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "Math", "module Math\nfn add(a, b) a + b")

	v := run(t, dir, `
import Math as M
M::add(10, 20)
`)
	iv, ok := v.(evaluator.IntValue)
	if !ok || iv != 30 {
		t.Fatalf("expected IntValue(30), got %#v", v)
	}
}

func TestMissingModuleIsReportedAsNotFound(t *testing.T) {
	dir := t.TempDir()
	prog, perrs := parser.Parse("import Nope\n1")
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	reg := builtins.New()
	im := module.New([]string{dir}, reg, reg, evaluator.DefaultLimits())
	_, err := im.Load(prog)
	if err == nil {
		t.Fatalf("expected a not-found error for a missing module")
	}
}

func TestNameMismatchBetweenDeclarationAndImportIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "Math", "module Geometry\nfn add(a, b) a + b")

	prog, perrs := parser.Parse("import Math\n1")
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	reg := builtins.New()
	im := module.New([]string{dir}, reg, reg, evaluator.DefaultLimits())
	_, err := im.Load(prog)
	if err == nil {
		t.Fatalf("expected a module name mismatch error")
	}
}

func TestRewriteLogRecordsEveryQualifiedRewrite(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "Math", "module Math\nfn add(a, b) a + b")

	prog, perrs := parser.Parse("import Math\nadd(1, 2)")
	if len(perrs) > 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	reg := builtins.New()
	im := module.New([]string{dir}, reg, reg, evaluator.DefaultLimits())
	if _, err := im.Load(prog); err != nil {
		t.Fatalf("unexpected import error: %v", err)
	}
	log := im.RewriteLog()
	if len(log) != 1 || log[0].Lexeme != "add" || log[0].Module != "Math" {
		t.Fatalf("expected one rewrite of add -> Math::add, got %#v", log)
	}
}
