package errors

import (
	"strings"
	"testing"
)

func TestWrapAndAsReport(t *testing.T) {
	r := New("parser", PAR001, Position{Line: 2, Col: 5}, "unexpected token", nil)
	err := Wrap(r)
	got, ok := AsReport(err)
	if !ok {
		t.Fatal("expected AsReport to succeed")
	}
	if got.Code != PAR001 {
		t.Fatalf("expected code %s, got %s", PAR001, got.Code)
	}
}

func TestToJSONDeterministic(t *testing.T) {
	r := New("validator", VAL001, Position{Line: 1, Col: 1}, "type mismatch", map[string]any{
		"expected": "Real", "actual": "String",
	})
	j1, err := r.ToJSON(false)
	if err != nil {
		t.Fatal(err)
	}
	j2, err := r.ToJSON(false)
	if err != nil {
		t.Fatal(err)
	}
	if j1 != j2 {
		t.Fatal("ToJSON should be deterministic across calls")
	}
	if !strings.Contains(j1, `"code":"VAL001"`) {
		t.Fatalf("expected code field in JSON, got %s", j1)
	}
}

func TestRenderCaret(t *testing.T) {
	r := New("parser", PAR001, Position{Line: 1, Col: 5}, "unexpected token", nil)
	var sb strings.Builder
	r.Render(&sb, []string{"var 123 = 5"})
	out := sb.String()
	if !strings.Contains(out, "^") {
		t.Fatalf("expected caret in rendered output, got %q", out)
	}
}
