// Package replshell implements the interactive shell's persistent
// evaluation session: unlike `plang run`, which validates and evaluates
// a whole program once, the shell re-validates and re-evaluates one
// line at a time against scopes that persist across the session, so a
// `var` or `fn` from an earlier line is visible to a later one
// (SPEC_FULL.md §12's REPL persistence mode).
package replshell

import (
	"fmt"

	"github.com/plang-lang/plang/internal/builtins"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/evaluator"
	"github.com/plang-lang/plang/internal/module"
	"github.com/plang-lang/plang/internal/parser"
	"github.com/plang-lang/plang/internal/types"
	"github.com/plang-lang/plang/internal/validator"
)

// Shell is one interactive session: a single module Importer, type
// lattice, validator scope and evaluator scope, all reused across every
// line submitted to Eval.
type Shell struct {
	builtins *builtins.Registry
	importer *module.Importer
	lattice  *types.Lattice
	limits   evaluator.Limits

	vScope *validator.Scope
	eScope *evaluator.Scope
}

// New builds a Shell whose module importer resolves against searchPaths
// and whose evaluator enforces limits.
func New(searchPaths []string, limits evaluator.Limits) *Shell {
	reg := builtins.New()
	return &Shell{
		builtins: reg,
		importer: module.New(searchPaths, reg, reg, limits),
		lattice:  types.NewLattice(),
		limits:   limits,
		vScope:   validator.NewScope(),
		eScope:   evaluator.NewScope(),
	}
}

// Eval parses, resolves imports for, type-checks and evaluates one line
// of input against the session's persistent scopes, returning the value
// of its final statement. A non-nil error means some phase failed; the
// returned reports describe why (possibly empty, for a plain Go error
// like a resource-limit signal).
func (s *Shell) Eval(line string) (evaluator.Value, []*errors.Report, error) {
	prog, perrs := parser.Parse(line)
	if len(perrs) > 0 {
		return nil, perrs, fmt.Errorf("parsing failed with %d error(s)", len(perrs))
	}

	reports, err := s.importer.Load(prog)
	if err != nil {
		return nil, reports, err
	}

	v := validator.New(s.lattice)
	v.Builtins = s.builtins
	v.Namespace = s.importer.TypeNamespace()
	v.ReplMode = true
	for i, stmt := range prog.Statements {
		node, _ := v.CheckNode(s.vScope, stmt)
		prog.Statements[i] = node
	}
	reports = append(reports, v.Errors...)
	if len(v.Errors) > 0 {
		return nil, reports, fmt.Errorf("type checking failed with %d error(s)", len(v.Errors))
	}

	ev := evaluator.New(s.limits)
	ev.Builtins = s.builtins
	ev.Namespace = s.importer.ValueNamespace()
	val, err := ev.Run(s.eScope, prog)
	if err != nil {
		return nil, reports, err
	}
	return val, reports, nil
}

// RewriteLog exposes the session's accumulated import desugaring trace
// (SPEC_FULL.md §12), mirroring the one-shot pipeline's same feature.
func (s *Shell) RewriteLog() []module.RewriteEntry { return s.importer.RewriteLog() }
