package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plang-lang/plang/internal/evaluator"
)

func TestPipelineRunsEndToEnd(t *testing.T) {
	p := newPipeline("")
	prog, reports, err := p.parseAndImport("1 + 2 * 3")
	if err != nil {
		t.Fatalf("unexpected error: %v (%v)", err, reports)
	}

	prog, resultType, verrs := p.validate(prog)
	if len(verrs) != 0 {
		t.Fatalf("unexpected validate errors: %v", verrs)
	}
	if resultType.String() != "Integer" {
		t.Fatalf("expected Integer, got %s", resultType.String())
	}

	val, _, err := p.evaluate(prog, evaluator.NewScope())
	if err != nil {
		t.Fatalf("unexpected evaluate error: %v", err)
	}
	iv, ok := val.(evaluator.IntValue)
	if !ok || iv != 7 {
		t.Fatalf("expected IntValue(7), got %#v", val)
	}
}

func TestPipelineResolvesImportsFromScriptDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Math.plang"), []byte("module Math\nfn double(n) n * 2"), 0o644); err != nil {
		t.Fatalf("writing module file: %v", err)
	}

	p := newPipeline(dir)
	prog, reports, err := p.parseAndImport("import Math\nMath::double(21)")
	if err != nil {
		t.Fatalf("unexpected error: %v (%v)", err, reports)
	}

	prog, _, verrs := p.validate(prog)
	if len(verrs) != 0 {
		t.Fatalf("unexpected validate errors: %v", verrs)
	}

	val, _, err := p.evaluate(prog, evaluator.NewScope())
	if err != nil {
		t.Fatalf("unexpected evaluate error: %v", err)
	}
	iv, ok := val.(evaluator.IntValue)
	if !ok || iv != 42 {
		t.Fatalf("expected IntValue(42), got %#v", val)
	}
}

func TestPhaseLabelCoversEveryPipelinePhase(t *testing.T) {
	for _, phase := range []string{"parser", "import", "validate", "evaluate", "unknown"} {
		if phaseLabel(phase) == "" {
			t.Fatalf("expected a non-empty label for phase %q", phase)
		}
	}
}
