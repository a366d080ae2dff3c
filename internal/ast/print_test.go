package ast_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/plang-lang/plang/internal/ast"
)

func roundTrip(t *testing.T, node ast.Node) map[string]interface{} {
	t.Helper()
	var got map[string]interface{}
	if err := json.Unmarshal([]byte(ast.Dump(node)), &got); err != nil {
		t.Fatalf("unmarshaling dump: %v", err)
	}
	return got
}

func TestDumpBinaryExpression(t *testing.T) {
	pos := ast.Pos{Line: 1, Col: 1}
	left := ast.NewLiteral(pos, ast.LitInteger, float64(1))
	right := ast.NewLiteral(pos, ast.LitInteger, float64(2))
	bin := ast.NewBinary(pos, "+", left, right)

	got := roundTrip(t, bin)
	want := map[string]interface{}{
		"instr": bin.Instr().String(),
		"op":    "+",
		"left":  map[string]interface{}{"instr": left.Instr().String(), "value": float64(1)},
		"right": map[string]interface{}{"instr": right.Instr().String(), "value": float64(2)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dump mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpTwoEquivalentTreesSerializeIdentically(t *testing.T) {
	pos := ast.Pos{Line: 1, Col: 1}
	build := func() ast.Node {
		return ast.NewBinary(pos, "*", ast.NewIdent(pos, "x"), ast.NewLiteral(pos, ast.LitInteger, float64(2)))
	}
	a, b := build(), build()
	if ast.Dump(a) != ast.Dump(b) {
		t.Errorf("structurally identical ASTs produced different dumps")
	}
}

func TestDumpIdent(t *testing.T) {
	n := ast.NewIdent(ast.Pos{Line: 2, Col: 3}, "total")
	got := roundTrip(t, n)
	want := map[string]interface{}{"instr": n.Instr().String(), "name": "total"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dump mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpNilNode(t *testing.T) {
	if got := ast.Dump(nil); got != "null" {
		t.Errorf("expected \"null\" for a nil node, got %q", got)
	}
}
