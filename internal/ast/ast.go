// Package ast defines Plang's syntax tree: a uniform tagged variant with a
// single Instruction discriminator shared by every node, as produced by
// the Parser and shared read-only between Validator and Evaluator
// (spec.md §3, §9).
package ast

import "fmt"

// Pos carries the source line/column of the token that produced a node.
// The zero value prints as "EOF" per spec.md's invariant that every node
// carries a position (possibly "EOF").
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.Line == 0 && p.Col == 0 {
		return "EOF"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Instruction is the fixed discriminator every node carries (Node.Instr).
// The Validator and Evaluator do not dispatch on it; they type-switch on
// the concrete node type.
type Instruction int

const (
	INSTR_NOP Instruction = iota
	INSTR_PROGRAM
	INSTR_LITERAL
	INSTR_IDENT
	INSTR_QUALIFIED_IDENT
	INSTR_INTERP_STRING
	INSTR_ARRAY
	INSTR_MAP
	INSTR_UNARY
	INSTR_BINARY
	INSTR_ASSIGN
	INSTR_TERNARY
	INSTR_RANGE
	INSTR_CALL
	INSTR_INDEX
	INSTR_DOT
	INSTR_FUNC_DEF
	INSTR_VAR_DECL
	INSTR_IF
	INSTR_WHILE
	INSTR_NEXT
	INSTR_LAST
	INSTR_RETURN
	INSTR_TRY
	INSTR_THROW
	INSTR_TYPE_DECL
	INSTR_MODULE
	INSTR_IMPORT
	INSTR_EXISTS
	INSTR_DELETE
	INSTR_KEYS
	INSTR_VALUES
	INSTR_PREFIX_INCDEC
	INSTR_POSTFIX_INCDEC
)

var instrNames = [...]string{
	"NOP", "PRGM", "LIT", "IDENT", "QIDENT", "ISTR", "ARR", "MAP",
	"UNARY", "BINARY", "ASSIGN", "TERNARY", "RANGE", "CALL", "INDEX", "DOT",
	"FUNCDEF", "VARDECL", "IF", "WHILE", "NEXT", "LAST", "RETURN", "TRY",
	"THROW", "TYPEDECL", "MODULE", "IMPORT", "EXISTS", "DELETE", "KEYS",
	"VALUES", "PREINCDEC", "POSTINCDEC",
}

func (i Instruction) String() string {
	if int(i) < len(instrNames) {
		return instrNames[i]
	}
	return fmt.Sprintf("Instruction(%d)", int(i))
}

// Node is implemented by every AST node: the shared Instruction
// discriminator plus its source Position (spec.md §3).
type Node interface {
	Instr() Instruction
	Position() Pos
	String() string
}

// base embeds the common discriminator+position pair so that concrete
// node types don't repeat it.
type base struct {
	instr Instruction
	pos   Pos
}

func (b base) Instr() Instruction { return b.instr }
func (b base) Position() Pos      { return b.pos }

// Program is the top-level list of statements (spec.md §4.3 "Program").
type Program struct {
	base
	Statements []Node
}

func NewProgram(pos Pos, stmts []Node) *Program {
	return &Program{base{INSTR_PROGRAM, pos}, stmts}
}
func (p *Program) String() string { return fmt.Sprintf("Program(%d stmts)", len(p.Statements)) }

// LiteralKind distinguishes Literal payload shapes.
type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitBoolean
	LitInteger
	LitReal
	LitString
)

// Literal is a scalar constant: null/true/false/int/hex/real/string.
type Literal struct {
	base
	Kind  LiteralKind
	Value interface{}
}

func NewLiteral(pos Pos, kind LiteralKind, value interface{}) *Literal {
	return &Literal{base{INSTR_LITERAL, pos}, kind, value}
}
func (l *Literal) String() string { return fmt.Sprintf("%v", l.Value) }

// Ident is a bare identifier reference.
type Ident struct {
	base
	Name string
}

func NewIdent(pos Pos, name string) *Ident { return &Ident{base{INSTR_IDENT, pos}, name} }
func (i *Ident) String() string            { return i.Name }

// QualifiedIdent is `module::symbol`, produced directly by the parser for
// `a::b::c` syntax or synthesized by the ModuleImporter when it rewrites a
// bare identifier that resolves into an imported namespace (spec.md §4.5
// step 5).
type QualifiedIdent struct {
	base
	Module string
	Name   string
}

func NewQualifiedIdent(pos Pos, module, name string) *QualifiedIdent {
	return &QualifiedIdent{base{INSTR_QUALIFIED_IDENT, pos}, module, name}
}
func (q *QualifiedIdent) String() string { return q.Module + "::" + q.Name }

// InterpString is a `$"...{expr}..."` literal. Per spec.md §4.9 it
// "parses at runtime": the Parser only captures the raw interior text;
// the Evaluator scans for `{…}` segments, parses and evaluates each in
// the current scope, and stringifies/concatenates the result.
type InterpString struct {
	base
	Raw string
}

func NewInterpString(pos Pos, raw string) *InterpString {
	return &InterpString{base{INSTR_INTERP_STRING, pos}, raw}
}
func (s *InterpString) String() string { return "$\"" + s.Raw + "\"" }

// ArrayLit is `[e1, e2, ...]`.
type ArrayLit struct {
	base
	Elements []Node
}

func NewArrayLit(pos Pos, elems []Node) *ArrayLit {
	return &ArrayLit{base{INSTR_ARRAY, pos}, elems}
}
func (a *ArrayLit) String() string { return fmt.Sprintf("Array(%d)", len(a.Elements)) }

// MapEntry is one `key: value` pair of a map constructor.
type MapEntry struct {
	Key   string
	Value Node
}

// MapLit is `{k: v, ...}`.
type MapLit struct {
	base
	Entries []MapEntry
}

func NewMapLit(pos Pos, entries []MapEntry) *MapLit {
	return &MapLit{base{INSTR_MAP, pos}, entries}
}
func (m *MapLit) String() string { return fmt.Sprintf("Map(%d)", len(m.Entries)) }

// Unary is a prefix operator application: `not`, `!`, unary `+`/`-`.
type Unary struct {
	base
	Op   string
	Expr Node
}

func NewUnary(pos Pos, op string, expr Node) *Unary {
	return &Unary{base{INSTR_UNARY, pos}, op, expr}
}
func (u *Unary) String() string { return u.Op + u.Expr.String() }

// Binary is an infix operator application.
type Binary struct {
	base
	Op          string
	Left, Right Node
}

func NewBinary(pos Pos, op string, left, right Node) *Binary {
	return &Binary{base{INSTR_BINARY, pos}, op, left, right}
}
func (b *Binary) String() string { return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right) }

// Assign is `target = value` or a compound form (`+=`, `.=`, ...); Op
// holds the surface operator ("=" for plain assignment).
type Assign struct {
	base
	Op     string
	Target Node
	Value  Node
}

func NewAssign(pos Pos, op string, target, value Node) *Assign {
	return &Assign{base{INSTR_ASSIGN, pos}, op, target, value}
}
func (a *Assign) String() string { return fmt.Sprintf("(%s %s %s)", a.Target, a.Op, a.Value) }

// Ternary is `cond ? then : else`.
type Ternary struct {
	base
	Cond, Then, Else Node
}

func NewTernary(pos Pos, cond, then, els Node) *Ternary {
	return &Ternary{base{INSTR_TERNARY, pos}, cond, then, els}
}
func (t *Ternary) String() string { return fmt.Sprintf("(%s ? %s : %s)", t.Cond, t.Then, t.Else) }

// Range is `lo..hi`, used standalone and inside string/array index forms.
type Range struct {
	base
	Lo, Hi Node
}

func NewRange(pos Pos, lo, hi Node) *Range { return &Range{base{INSTR_RANGE, pos}, lo, hi} }
func (r *Range) String() string            { return fmt.Sprintf("%s..%s", r.Lo, r.Hi) }

// Arg is one call-site argument: positional (Name == "") or named.
type Arg struct {
	Name  string
	Value Node
}

// Call is a function call `target(args...)`.
type Call struct {
	base
	Target Node
	Args   []Arg
}

func NewCall(pos Pos, target Node, args []Arg) *Call {
	return &Call{base{INSTR_CALL, pos}, target, args}
}
func (c *Call) String() string { return fmt.Sprintf("%s(%d args)", c.Target, len(c.Args)) }

// Index is `target[key]` (post-desugaring this is the only access form
// remaining; spec.md §4.6 dot-desugaring rewrites Dot into Index).
type Index struct {
	base
	Target, Key Node
}

func NewIndex(pos Pos, target, key Node) *Index {
	return &Index{base{INSTR_INDEX, pos}, target, key}
}
func (ix *Index) String() string { return fmt.Sprintf("%s[%s]", ix.Target, ix.Key) }

// Dot is `target.name`, present only before the Validator desugars it into
// an Index node with a string-literal key (spec.md §4.6).
type Dot struct {
	base
	Target Node
	Name   string
}

func NewDot(pos Pos, target Node, name string) *Dot {
	return &Dot{base{INSTR_DOT, pos}, target, name}
}
func (d *Dot) String() string { return fmt.Sprintf("%s.%s", d.Target, d.Name) }

// Param is one function parameter: optional declared type, name, optional
// default expression.
type Param struct {
	TypeName string // "" means untyped (defaults to Any)
	Name     string
	Default  Node // nil if no default
}

// FuncDef is `fn name?(params) -> type? body`.
type FuncDef struct {
	base
	Name       string // "" for anonymous
	Params     []Param
	ReturnType string // "" means inferred/Any
	Body       Node
}

func NewFuncDef(pos Pos, name string, params []Param, retType string, body Node) *FuncDef {
	return &FuncDef{base{INSTR_FUNC_DEF, pos}, name, params, retType, body}
}
func (f *FuncDef) String() string { return fmt.Sprintf("fn %s(...)", f.Name) }

// VarDecl is `var name: type? = init?`.
type VarDecl struct {
	base
	Name     string
	TypeName string // "" means Any
	Init     Node   // nil if no initializer
}

func NewVarDecl(pos Pos, name, typeName string, init Node) *VarDecl {
	return &VarDecl{base{INSTR_VAR_DECL, pos}, name, typeName, init}
}
func (v *VarDecl) String() string { return fmt.Sprintf("var %s", v.Name) }

// If is `if cond then? thenExpr else elseExpr?`.
type If struct {
	base
	Cond, Then, Else Node // Else nil if absent
}

func NewIf(pos Pos, cond, then, els Node) *If { return &If{base{INSTR_IF, pos}, cond, then, els} }
func (i *If) String() string                  { return fmt.Sprintf("if %s", i.Cond) }

// While is `while cond body`.
type While struct {
	base
	Cond, Body Node
}

func NewWhile(pos Pos, cond, body Node) *While {
	return &While{base{INSTR_WHILE, pos}, cond, body}
}
func (w *While) String() string { return fmt.Sprintf("while %s", w.Cond) }

// Next is `next expr?`.
type Next struct {
	base
	Value Node // nil if bare `next`
}

func NewNext(pos Pos, value Node) *Next { return &Next{base{INSTR_NEXT, pos}, value} }
func (n *Next) String() string          { return "next" }

// Last is `last expr?`.
type Last struct {
	base
	Value Node
}

func NewLast(pos Pos, value Node) *Last { return &Last{base{INSTR_LAST, pos}, value} }
func (l *Last) String() string          { return "last" }

// Return is `return expr?`.
type Return struct {
	base
	Value Node
}

func NewReturn(pos Pos, value Node) *Return { return &Return{base{INSTR_RETURN, pos}, value} }
func (r *Return) String() string            { return "return" }

// Catch is one `catch (Expr)? body` clause; Cond == nil marks the default
// (bare) catch.
type Catch struct {
	Cond Node
	Body Node
}

// Try is `try body catch...`.
type Try struct {
	base
	Body    Node
	Catches []Catch
}

func NewTry(pos Pos, body Node, catches []Catch) *Try {
	return &Try{base{INSTR_TRY, pos}, body, catches}
}
func (t *Try) String() string { return "try" }

// Throw is `throw expr`.
type Throw struct {
	base
	Value Node
}

func NewThrow(pos Pos, value Node) *Throw { return &Throw{base{INSTR_THROW, pos}, value} }
func (t *Throw) String() string           { return "throw" }

// TypeDecl is `type Name = Expr` (alias) or `type Name : Parent` (nominal
// subtype).
type TypeDecl struct {
	base
	Name     string
	IsAlias  bool
	AliasOf  string // for IsAlias
	ParentOf string // for nominal subtype
}

func NewTypeDecl(pos Pos, name string, isAlias bool, of string) *TypeDecl {
	t := &TypeDecl{base: base{INSTR_TYPE_DECL, pos}, Name: name, IsAlias: isAlias}
	if isAlias {
		t.AliasOf = of
	} else {
		t.ParentOf = of
	}
	return t
}
func (t *TypeDecl) String() string { return fmt.Sprintf("type %s", t.Name) }

// ModuleDecl is `module X::Y` at file top.
type ModuleDecl struct {
	base
	Path string
}

func NewModuleDecl(pos Pos, path string) *ModuleDecl {
	return &ModuleDecl{base{INSTR_MODULE, pos}, path}
}
func (m *ModuleDecl) String() string { return "module " + m.Path }

// ImportDecl is `import X::Y as Z`.
type ImportDecl struct {
	base
	Path  string
	Alias string // "" if no `as`
}

func NewImportDecl(pos Pos, path, alias string) *ImportDecl {
	return &ImportDecl{base{INSTR_IMPORT, pos}, path, alias}
}
func (i *ImportDecl) String() string { return "import " + i.Path }

// Exists is `exists target[key]`.
type Exists struct {
	base
	Target, Key Node
}

func NewExists(pos Pos, target, key Node) *Exists {
	return &Exists{base{INSTR_EXISTS, pos}, target, key}
}
func (e *Exists) String() string { return fmt.Sprintf("exists %s[%s]", e.Target, e.Key) }

// Delete is `delete target[key]` or `delete target` (whole-map form, Key
// nil).
type Delete struct {
	base
	Target, Key Node
}

func NewDelete(pos Pos, target, key Node) *Delete {
	return &Delete{base{INSTR_DELETE, pos}, target, key}
}
func (d *Delete) String() string { return fmt.Sprintf("delete %s", d.Target) }

// Keys is `keys expr`.
type Keys struct {
	base
	Target Node
}

func NewKeys(pos Pos, target Node) *Keys { return &Keys{base{INSTR_KEYS, pos}, target} }
func (k *Keys) String() string           { return fmt.Sprintf("keys %s", k.Target) }

// Values is `values expr`.
type Values struct {
	base
	Target Node
}

func NewValues(pos Pos, target Node) *Values { return &Values{base{INSTR_VALUES, pos}, target} }
func (v *Values) String() string             { return fmt.Sprintf("values %s", v.Target) }

// IncDec is prefix (`++x`) or postfix (`x++`) increment/decrement on an
// lvalue Target.
type IncDec struct {
	base
	Op     string // "++" or "--"
	Target Node
	Prefix bool
}

func NewIncDec(pos Pos, op string, target Node, prefix bool) *IncDec {
	instr := INSTR_POSTFIX_INCDEC
	if prefix {
		instr = INSTR_PREFIX_INCDEC
	}
	return &IncDec{base{instr, pos}, op, target, prefix}
}
func (n *IncDec) String() string {
	if n.Prefix {
		return n.Op + n.Target.String()
	}
	return n.Target.String() + n.Op
}
