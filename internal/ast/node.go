package ast

import (
	"github.com/shkhuz/aria/internal/bigint"
	"github.com/shkhuz/aria/internal/source"
)

// AggField is one `field: value` pair inside an aggregate literal
// `T{ field: value, ... }` (§3.3).
type AggField struct {
	Name  string
	Value *Node
}

// Arg is one positional call argument (§3.3 function call).
type Arg struct {
	Value *Node
}

// SymRef describes what a resolved symbol expression's Ref points
// at, used by the checker's l-value classification (§4.5.6).
type SymRefKind int

const (
	RefNone SymRefKind = iota
	RefFunc
	RefExternFunc
	RefImmVar
	RefMutVar
	RefExternVar
	RefParam
	RefStruct
	RefTypeAlias
	RefImport
)

// Node is the single tagged-variant AstNode covering every syntactic
// form (§3.3). Every Node carries Kind, Span, ShortSpan, and a
// Typespec filled in late by the checker (nil until then, per §3.3 and
// Design Notes — "model it as an optional field, not as a required
// constructor parameter").
//
// Payload fields are named per variant; see kind.go's Kind doc
// comments for which fields apply to which Kind. This mirrors the
// teacher's single `node` struct keyed on a `kind` tag, but replaces
// its generic child/ancestor slice with fields named for their
// syntactic role, per the Design Notes' requirement that "every
// variant's payload is named explicitly."
type Node struct {
	Kind      Kind
	Span      source.Span
	ShortSpan source.Span // the operator/keyword span used for diagnostics

	Typespec *Typespec // filled by the checker; nil until then

	// --- shared / commonly reused payload fields ---
	Name     string // identifier-bearing forms: Symbol, VarDecl, Param, FuncHeader, Struct, Field, Import, TypeAlias, Access.Name
	Str      string // StringLit contents (post-escape-processing), ExternVar/ExternFunc LinkName, Import Path
	CharVal  rune
	IntVal   bigint.Int
	Mutable   bool // VarDecl, ExternVar
	Immutable bool // PtrType/MultiPtrType/SliceType `imm` modifier
	HasValue bool // whether an optional payload (Value, Else, initializer, operand) is present

	Target  *Node // Index/Access/Call/GenericApp/Assign(LHS)/AggregateLit, left operand of binops
	Value   *Node // Assign(RHS)/VarDecl initializer/Break operand/Return operand
	Operand *Node // Unary/Deref/Cast/ExprStmt operand
	Index   *Node // Index expression, or within TSArray via ArraySize
	Cond    *Node // If/While condition
	Then    *Node // If/While/FuncDef body, For body
	Else    *Node // If/While else branch (optional)

	Child *Node // typespec payload child (Ptr/MultiPtr/Slice/Array element, Cast target, VarDecl/Param/Field/TypeAlias annotation, FuncHeader return)

	Elems  []*Node    // ArrayLit/TupleLit/TupleType elements, GenericApp args
	Fields []AggField // AggregateLit fields
	Args   []Arg      // Call arguments
	Stmts  []*Node    // Block statements
	Tail   *Node      // Block trailing value expression (optional)

	Params []*Node // FuncHeader/FuncType parameter list (KindParam nodes, or bare typespecs for FuncType)
	Header *Node   // FuncDef/ExternFunc -> KindFuncHeader

	Init []*Node // For-loop init statements
	Step []*Node // For-loop step statements

	StructFields []*Node // Struct -> []KindField

	UnaryOp UnaryOp
	ArithOp ArithOp
	BoolOp  BoolOp
	CmpOp   CmpOp
	PeerType *Typespec // CmpBinop: the unified operand type, recorded for IR lowering (§4.5.4)

	Builtin BuiltinKind // meaningful only on KindBuiltinSym; KindPrimType's zero value is not "builtin prim name", check Name against ast.PrimByName instead

	// --- resolver-filled fields (§4.4) ---
	Ref      *Node      // Symbol.Ref: the declaration node this name resolves to
	RefKind  SymRefKind // classification of Ref, for l-value rules (§4.5.6)
	Accessed bool       // Access.Accessed: true once the resolver has bound a module-qualified access early

	// --- checker-filled field ---
	FieldIndex int   // Access: which struct field was selected

	// --- resolver-filled control-flow links ---
	LoopRef    *Node // Break/Continue: the enclosing loop (KindWhile/KindFor)
	FuncRef    *Node // Return: the enclosing KindFuncDef/KindFuncHeader
	Breaks     []*Node // While/For: the break nodes collected inside this loop

	ModuleFile *File // Import: the Srcfile-wrapping File this import binds to
}

// File wraps a source.Srcfile with its derived token sequence and
// top-level AST nodes (§3.1: "A Srcfile owns... token sequence,
// top-level AST node sequence"). Kept out of package source to avoid
// source depending on ast/token.
type File struct {
	Src      *source.Srcfile
	Decls    []*Node
	Identity int // stable per-File identity for Module typespec comparisons across packages
}

// ModuleTypespec builds the Typespec value naming f's top-level namespace,
// used as the type of `import "path"` (§3.4 Module{srcfile}).
func (f *File) ModuleTypespec() *Typespec {
	return &Typespec{Kind: TSModule, Module: f}
}

// Walk traverses the AST in depth-first order, calling in at node
// entry and out at node exit, mirroring the teacher's node.Walk but
// over the named fields instead of a generic child slice.
func (n *Node) Walk(in func(*Node) bool, out func(*Node)) {
	if n == nil {
		return
	}
	if in != nil && !in(n) {
		return
	}
	for _, c := range n.children() {
		c.Walk(in, out)
	}
	if out != nil {
		out(n)
	}
}

func (n *Node) children() []*Node {
	var cs []*Node
	add := func(c *Node) {
		if c != nil {
			cs = append(cs, c)
		}
	}
	add(n.Target)
	add(n.Value)
	add(n.Operand)
	add(n.Index)
	add(n.Cond)
	add(n.Then)
	add(n.Else)
	add(n.Child)
	add(n.Tail)
	add(n.Header)
	cs = append(cs, n.Elems...)
	for _, f := range n.Fields {
		add(f.Value)
	}
	for _, a := range n.Args {
		add(a.Value)
	}
	cs = append(cs, n.Stmts...)
	cs = append(cs, n.Params...)
	cs = append(cs, n.Init...)
	cs = append(cs, n.Step...)
	cs = append(cs, n.StructFields...)
	return cs
}
