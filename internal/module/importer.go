// Package module implements the ModuleImporter (spec.md §4.5): resolving a
// module path against a configured search list, parsing and validating the
// imported file with a fresh Validator/Evaluator pass, installing its
// top-level symbols into a namespace the importing file's Validator and
// Evaluator consult for `Module::symbol` lookups, and rewriting bare
// identifiers that shadow an imported symbol into qualified-identifier
// nodes.
package module

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/evaluator"
	"github.com/plang-lang/plang/internal/parser"
	"github.com/plang-lang/plang/internal/types"
	"github.com/plang-lang/plang/internal/validator"
)

// Unit is one loaded module: the symbol types/values a namespace lookup
// resolves into, plus a load-session id distinguishing this particular
// load from any other module that happens to share a basename across
// search-path roots (SPEC_FULL.md §11).
type Unit struct {
	SessionID string
	Path      string
	Types     map[string]types.Type
	Values    map[string]evaluator.Value
}

// RewriteEntry records one bare-identifier-to-qualified-identifier rewrite
// performed by Load (SPEC_FULL.md §12's desugaring trace).
type RewriteEntry struct {
	Lexeme string
	Module string
	Pos    ast.Pos
}

// Importer loads and installs the modules an importing file's `import`
// declarations name, implementing every step of spec.md §4.5.
type Importer struct {
	SearchPaths  []string
	Builtins     validator.Builtins
	EvalBuiltins evaluator.Builtins
	Limits       evaluator.Limits

	units    map[string]*Unit // keyed by alias-or-declared-path
	order    []string         // insertion order of units, for deterministic rewrite resolution
	cache    map[string]*Unit // keyed by resolved file path, memoizes a fully-loaded module
	loading  map[string]bool  // keyed by resolved file path, the in-progress load stack (cycle detection)
	rewrites []RewriteEntry
}

// New builds an Importer over the given module search directories.
func New(searchPaths []string, vb validator.Builtins, eb evaluator.Builtins, limits evaluator.Limits) *Importer {
	return &Importer{
		SearchPaths:  searchPaths,
		Builtins:     vb,
		EvalBuiltins: eb,
		Limits:       limits,
		units:        map[string]*Unit{},
		cache:        map[string]*Unit{},
		loading:      map[string]bool{},
	}
}

// RewriteLog returns every bare-identifier rewrite Load performed, in the
// order encountered (SPEC_FULL.md §12).
func (im *Importer) RewriteLog() []RewriteEntry { return im.rewrites }

// TypeNamespace adapts Importer to validator.Namespace.
func (im *Importer) TypeNamespace() validator.Namespace { return typeNamespace{im} }

// ValueNamespace adapts Importer to evaluator.Namespace.
func (im *Importer) ValueNamespace() evaluator.Namespace { return valueNamespace{im} }

type typeNamespace struct{ im *Importer }

func (n typeNamespace) Lookup(module, name string) (types.Type, bool) {
	u, ok := n.im.units[module]
	if !ok {
		return nil, false
	}
	t, ok := u.Types[name]
	return t, ok
}

type valueNamespace struct{ im *Importer }

func (n valueNamespace) Lookup(module, name string) (evaluator.Value, bool) {
	u, ok := n.im.units[module]
	if !ok {
		return nil, false
	}
	v, ok := u.Values[name]
	return v, ok
}

// Load processes every `import` declaration at prog's top level: resolving,
// loading and installing the named module (step 1-4), then rewriting prog's
// bare identifiers that shadow an imported symbol into qualified-identifier
// nodes (step 5). It returns every diagnostic collected along the way; a
// non-nil error means a fatal condition (module not found, cycle, bad
// declaration) stopped the load.
func (im *Importer) Load(prog *ast.Program) ([]*errors.Report, error) {
	var reports []*errors.Report
	for _, stmt := range prog.Statements {
		imp, ok := stmt.(*ast.ImportDecl)
		if !ok {
			continue
		}
		unit, reps, err := im.loadUnit(imp.Path)
		reports = append(reports, reps...)
		if err != nil {
			return reports, err
		}
		alias := imp.Alias
		if alias == "" {
			alias = imp.Path
		}
		if _, dup := im.units[alias]; dup {
			rep := errors.New("import", errors.MOD004, errors.Position{Line: imp.Position().Line, Col: imp.Position().Col},
				"module '"+alias+"' is already imported under this name", map[string]any{"alias": alias})
			reports = append(reports, rep)
			return reports, errors.Wrap(rep)
		}
		im.units[alias] = unit
		im.order = append(im.order, alias)
	}

	if len(im.units) == 0 {
		return reports, nil
	}

	rs := newRewriteScope(nil)
	for i, stmt := range prog.Statements {
		prog.Statements[i] = im.rewriteNode(rs, stmt)
	}
	return reports, nil
}

// loadUnit resolves target against the search path and fully loads it
// (steps 1-4), memoizing by resolved file path so re-importing the same
// module from two different importers doesn't reparse it, and detecting
// import cycles via the in-progress loading set.
func (im *Importer) loadUnit(targetPath string) (*Unit, []*errors.Report, error) {
	file, found := im.resolve(targetPath)
	if !found {
		rep := errors.New("import", errors.MOD005, errors.Position{}, "module not found on search path: "+targetPath, map[string]any{"path": targetPath})
		return nil, []*errors.Report{rep}, errors.Wrap(rep)
	}
	if u, ok := im.cache[file]; ok {
		return u, nil, nil
	}
	if im.loading[file] {
		rep := errors.New("import", errors.MOD006, errors.Position{}, "import cycle detected at module: "+targetPath, map[string]any{"path": targetPath})
		return nil, []*errors.Report{rep}, errors.Wrap(rep)
	}
	im.loading[file] = true
	defer delete(im.loading, file)

	src, err := os.ReadFile(file)
	if err != nil {
		rep := errors.New("import", errors.MOD005, errors.Position{}, "could not read module file "+file+": "+err.Error(), map[string]any{"path": file})
		return nil, []*errors.Report{rep}, errors.Wrap(rep)
	}

	prog, perrs := parser.Parse(string(src))
	if len(perrs) > 0 {
		return nil, perrs, fmt.Errorf("parse errors loading module %s", targetPath)
	}

	declared, reps, err := checkModuleDecl(prog, targetPath)
	if err != nil {
		return nil, reps, err
	}

	// A module's own imports are loaded through a fresh child importer
	// sharing this importer's cache and in-progress set, so transitive
	// cycles across files are still caught while each file's namespace
	// stays independent.
	sub := &Importer{
		SearchPaths:  im.SearchPaths,
		Builtins:     im.Builtins,
		EvalBuiltins: im.EvalBuiltins,
		Limits:       im.Limits,
		units:        map[string]*Unit{},
		cache:        im.cache,
		loading:      im.loading,
	}
	subReports, err := sub.Load(prog)
	reps = append(reps, subReports...)
	if err != nil {
		return nil, reps, err
	}
	im.rewrites = append(im.rewrites, sub.rewrites...)

	v := validator.New(types.NewLattice())
	v.Builtins = im.Builtins
	v.Namespace = sub.TypeNamespace()
	prog, verrs := v.Validate(prog)
	reps = append(reps, verrs...)
	if len(verrs) > 0 {
		return nil, reps, fmt.Errorf("validate errors loading module %s", targetPath)
	}

	ev := evaluator.New(im.Limits)
	ev.Builtins = im.EvalBuiltins
	ev.Namespace = sub.ValueNamespace()
	scope := evaluator.NewScope()
	if _, err := ev.Run(scope, prog); err != nil {
		return nil, reps, err
	}

	unit := &Unit{
		SessionID: uuid.NewString(),
		Path:      declared,
		Types:     map[string]types.Type{},
		Values:    map[string]evaluator.Value{},
	}
	for name, t := range v.TopScope.Guards() {
		unit.Types[name] = t
	}
	for name, val := range scope.Vars() {
		unit.Values[name] = val
	}

	im.cache[file] = unit
	return unit, reps, nil
}

// checkModuleDecl implements step 3: the imported file's leading statement
// must be exactly one `module` declaration whose path matches target.
func checkModuleDecl(prog *ast.Program, target string) (string, []*errors.Report, error) {
	if len(prog.Statements) == 0 {
		rep := errors.New("import", errors.MOD003, errors.Position{}, "module file for '"+target+"' has no module declaration", map[string]any{"path": target})
		return "", []*errors.Report{rep}, errors.Wrap(rep)
	}
	md, ok := prog.Statements[0].(*ast.ModuleDecl)
	if !ok {
		rep := errors.New("import", errors.MOD003, errors.Position{Line: prog.Statements[0].Position().Line, Col: prog.Statements[0].Position().Col},
			"module declaration must precede every other top-level declaration in '"+target+"'", map[string]any{"path": target})
		return "", []*errors.Report{rep}, errors.Wrap(rep)
	}
	for _, stmt := range prog.Statements[1:] {
		if dup, ok := stmt.(*ast.ModuleDecl); ok {
			rep := errors.New("import", errors.MOD002, errors.Position{Line: dup.Position().Line, Col: dup.Position().Col},
				"duplicate module declaration in '"+target+"'", map[string]any{"path": target})
			return "", []*errors.Report{rep}, errors.Wrap(rep)
		}
	}
	if md.Path != target {
		rep := errors.New("import", errors.MOD001, errors.Position{Line: md.Position().Line, Col: md.Position().Col},
			"module '"+target+"' declares itself as '"+md.Path+"'", map[string]any{"expected": target, "declared": md.Path})
		return "", []*errors.Report{rep}, errors.Wrap(rep)
	}
	return md.Path, nil, nil
}

// resolve implements step 1: the first `<dir>/<target>.plang` that exists
// on the configured search path wins.
func (im *Importer) resolve(target string) (string, bool) {
	for _, dir := range im.SearchPaths {
		candidate := filepath.Join(dir, target+".plang")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
