package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/builtins"
	"github.com/plang-lang/plang/internal/config"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/evaluator"
	"github.com/plang-lang/plang/internal/module"
	"github.com/plang-lang/plang/internal/parser"
	"github.com/plang-lang/plang/internal/types"
	"github.com/plang-lang/plang/internal/validator"
)

// pipeline bundles the components every subcommand assembles the same
// way: a loaded config, a shared builtin registry, and a module importer
// rooted at the config's search path plus the running script's own
// directory.
type pipeline struct {
	cfg      *config.Config
	builtins *builtins.Registry
	importer *module.Importer
}

func newPipeline(scriptDir string) *pipeline {
	cfg, err := config.Load(configPath)
	if err != nil {
		cfg = config.Default()
		if verbose {
			fmt.Fprintf(os.Stderr, "%s: %v (using defaults)\n", yellow("warning"), err)
		}
	}
	searchPaths := append([]string{}, cfg.ModulePaths...)
	if scriptDir != "" {
		searchPaths = append(searchPaths, scriptDir)
	}
	reg := builtins.New()
	return &pipeline{
		cfg:      cfg,
		builtins: reg,
		importer: module.New(searchPaths, reg, reg, cfg.EvaluatorLimits()),
	}
}

// parseAndImport lexes+parses src, then loads its imports. It returns the
// program (possibly rewritten by the importer) and every diagnostic
// collected; a non-nil error means a fatal condition stopped the pipeline.
func (p *pipeline) parseAndImport(src string) (*ast.Program, []*errors.Report, error) {
	prog, perrs := parser.Parse(src)
	if len(perrs) > 0 {
		return nil, perrs, fmt.Errorf("parsing failed with %d error(s)", len(perrs))
	}
	reports, err := p.importer.Load(prog)
	if err != nil {
		return nil, reports, err
	}
	return prog, reports, nil
}

// validate type-checks prog against the importer's namespace, returning
// the static type of its final top-level statement (the program's own
// result type, the way --show-type reports it) alongside the usual
// rewritten program and diagnostics.
func (p *pipeline) validate(prog *ast.Program) (*ast.Program, types.Type, []*errors.Report) {
	v := validator.New(types.NewLattice())
	v.Builtins = p.builtins
	v.Namespace = p.importer.TypeNamespace()

	scope := validator.NewScope()
	var last types.Type = types.T(types.Null)
	for i, stmt := range prog.Statements {
		node, t := v.CheckNode(scope, stmt)
		prog.Statements[i] = node
		last = t
	}
	return prog, last, v.Errors
}

// evaluate runs prog in scope.
func (p *pipeline) evaluate(prog *ast.Program, scope *evaluator.Scope) (evaluator.Value, *evaluator.Evaluator, error) {
	ev := evaluator.New(p.cfg.EvaluatorLimits())
	ev.Builtins = p.builtins
	ev.Namespace = p.importer.ValueNamespace()
	val, err := ev.Run(scope, prog)
	return val, ev, err
}

// readSource loads input from a file path, or from stdin when path is "".
func readSource(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// printReports renders every diagnostic against src's lines, colored by
// phase the way the teacher's CLI colors parser/runtime errors.
func printReports(reports []*errors.Report, src string) {
	lines := strings.Split(src, "\n")
	for _, r := range reports {
		fmt.Fprintf(os.Stderr, "%s ", phaseLabel(r.Phase))
		r.Render(os.Stderr, lines)
	}
}

func phaseLabel(phase string) string {
	switch phase {
	case "parser":
		return red(bold("parse"))
	case "evaluate":
		return red(bold("runtime"))
	case "validate":
		return yellow(bold("type"))
	case "import":
		return cyan(bold("import"))
	default:
		return red(bold(phase))
	}
}

func humanSize(src string) string {
	return humanize.Bytes(uint64(len(src)))
}

func scriptDirOf(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}
