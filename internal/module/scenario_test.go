package module_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plang-lang/plang/internal/builtins"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/evaluator"
	"github.com/plang-lang/plang/internal/module"
	"github.com/plang-lang/plang/internal/parser"
)

func newImporter(t *testing.T, dir string) *module.Importer {
	t.Helper()
	reg := builtins.New()
	return module.New([]string{dir}, reg, reg, evaluator.DefaultLimits())
}

func TestLoadReportsModuleNotFound(t *testing.T) {
	dir := t.TempDir()
	im := newImporter(t, dir)

	prog, perrs := parser.Parse("import DoesNotExist")
	require.Empty(t, perrs, "unexpected parse errors")

	reports, err := im.Load(prog)
	require.Error(t, err)
	require.NotEmpty(t, reports)

	rep, ok := errors.AsReport(err)
	require.True(t, ok, "expected err to unwrap to a *errors.Report")
	assert.Equal(t, errors.MOD005, rep.Code)
}

func TestLoadReportsImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "A", "module A\nimport B\nfn fromA() 1")
	writeModule(t, dir, "B", "module B\nimport A\nfn fromB() 2")
	im := newImporter(t, dir)

	prog, perrs := parser.Parse("import A")
	require.Empty(t, perrs)

	reports, err := im.Load(prog)
	require.Error(t, err)

	rep, ok := errors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errors.MOD006, rep.Code)
	assert.NotEmpty(t, reports)
}

func TestLoadSucceedsWithoutDiagnosticsForAWellFormedModule(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "Math", "module Math\nfn double(n) n * 2")
	im := newImporter(t, dir)

	prog, perrs := parser.Parse("import Math")
	require.Empty(t, perrs)

	reports, err := im.Load(prog)
	require.NoError(t, err)
	assert.Empty(t, reports)
}
