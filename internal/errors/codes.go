package errors

// Error code taxonomy, one family per pipeline phase (SPEC_FULL.md §10.1).
// Each constant is a stable identifier a caller (or a test) can match on
// without parsing the human message.
const (
	// Lexer
	LEX001 = "LEX001" // unterminated string literal
	LEX002 = "LEX002" // unterminated multi-line comment

	// Parser
	PAR001 = "PAR001" // unexpected token
	PAR002 = "PAR002" // unclosed delimiter
	PAR003 = "PAR003" // invalid function declaration syntax
	PAR004 = "PAR004" // invalid module declaration syntax
	PAR005 = "PAR005" // invalid import syntax
	PAR006 = "PAR006" // `else` without a matching `if`
	PAR007 = "PAR007" // too many parse errors, aborting

	// Module importer
	MOD001 = "MOD001" // declared module name doesn't match requested target
	MOD002 = "MOD002" // duplicate module declaration
	MOD003 = "MOD003" // missing module declaration before first top-level decl
	MOD004 = "MOD004" // duplicate symbol on install
	MOD005 = "MOD005" // module not found on search path
	MOD006 = "MOD006" // import cycle detected

	// Validator
	VAL001 = "VAL001" // type mismatch
	VAL002 = "VAL002" // undeclared identifier
	VAL003 = "VAL003" // illegal redeclaration
	VAL004 = "VAL004" // next/last outside a while loop
	VAL005 = "VAL005" // return outside a function body
	VAL006 = "VAL006" // malformed try/catch
	VAL007 = "VAL007" // non-lvalue target for assignment or ++/--
	VAL008 = "VAL008" // unknown or duplicate named argument
	VAL009 = "VAL009" // builtin call arity/type mismatch

	// Evaluator / runtime
	RUN001 = "RUN001" // recursion limit exceeded
	RUN002 = "RUN002" // iteration limit exceeded
	RUN003 = "RUN003" // division by zero
	RUN004 = "RUN004" // uncaught user exception
	RUN005 = "RUN005" // array/string index out of range
	RUN006 = "RUN006" // malformed interpolated-string expression
	RUN007 = "RUN007" // undeclared identifier or non-callable target at runtime
	RUN008 = "RUN008" // builtin argument rejected at runtime (e.g. unparsable cast)
)
