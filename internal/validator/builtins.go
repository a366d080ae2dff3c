package validator

import (
	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/types"
)

// Builtins is the alternate dispatch pathway a Call validates through when
// its target names a registered builtin rather than a user function
// (spec.md §4.8): builtins carry their own validate-body, consulted here
// instead of the generic arity/type rules in validateCall.
type Builtins interface {
	// Validate reports whether name is a known builtin; when it is, it
	// type-checks args itself (using check for each argument expression)
	// and returns the call's result type plus any diagnostic.
	Validate(v *Validator, scope *Scope, call *ast.Call) (types.Type, *errors.Report, bool)
}

// Namespace resolves a module-qualified identifier's static type, as
// installed by the ModuleImporter before the Validator runs (spec.md §4.5).
type Namespace interface {
	Lookup(module, name string) (types.Type, bool)
}
