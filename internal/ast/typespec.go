package ast

import (
	"fmt"

	"github.com/shkhuz/aria/internal/bigint"
)

// PrimKind enumerates the primitive integer/bool kinds plus the
// unsized comptime_integer kind (§3.4).
type PrimKind int

const (
	U8 PrimKind = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	Bool
	ComptimeInteger
)

var primNames = map[PrimKind]string{
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	Bool: "bool", ComptimeInteger: "comptime_integer",
}

func (p PrimKind) String() string { return primNames[p] }

// Signed reports whether p is a signed integer kind. Panics if p is
// not a sized integer kind; this includes ComptimeInteger, for which
// IsInteger reports true.
func (p PrimKind) Signed() bool {
	switch p {
	case I8, I16, I32, I64:
		return true
	case U8, U16, U32, U64:
		return false
	default:
		panic(fmt.Sprintf("Signed() called on non-integer PrimKind %v", p))
	}
}

func (p PrimKind) IsInteger() bool {
	switch p {
	case U8, U16, U32, U64, I8, I16, I32, I64, ComptimeInteger:
		return true
	default:
		return false
	}
}

// Bytes returns the storage width of a sized integer kind. Panics on
// ComptimeInteger and Bool, which have no fixed width in this sense.
func (p PrimKind) Bytes() int {
	switch p {
	case U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32:
		return 4
	case U64, I64:
		return 8
	default:
		panic(fmt.Sprintf("Bytes() called on non-sized PrimKind %v", p))
	}
}

// TypespecKind discriminates the Typespec tagged variant (§3.4).
type TypespecKind int

const (
	TSPrim TypespecKind = iota
	TSVoid
	TSNoreturn
	TSPtr
	TSMultiPtr
	TSSlice
	TSArray
	TSFunc
	TSTuple
	TSStruct
	TSType
	TSModule
)

// AcceptKind classifies what a Typespec may be used as at a use site
// (§4.5.1).
type AcceptKind int

const (
	AcceptRuntime AcceptKind = 1 << iota
	AcceptComptime
	AcceptVoid
	AcceptFunc
	AcceptNoreturn
)

// AcceptSet is a bitset of AcceptKind values legal at some use site.
type AcceptSet int

func (s AcceptSet) Allows(k AcceptKind) bool { return s&AcceptSet(k) != 0 }

const AcceptValue = AcceptSet(AcceptRuntime | AcceptComptime)
const AcceptAny = AcceptSet(AcceptRuntime | AcceptComptime | AcceptVoid | AcceptFunc | AcceptNoreturn)

// Typespec is a value in the type domain, distinct from a Node
// (§3.4). Instances are conceptually immutable after construction;
// the checker builds new composite Typespecs by composition rather
// than mutating existing ones. Predefined primitive/void/noreturn/
// bool instances are shared singletons so the checker can compare
// them by identity (see Predefined below).
type Typespec struct {
	Kind TypespecKind

	Prim     PrimKind  // TSPrim
	Comptime bigint.Int // TSPrim with Prim == ComptimeInteger: the literal/folded value

	Immutable bool      // TSPtr, TSMultiPtr, TSSlice
	Child     *Typespec // TSPtr, TSMultiPtr, TSSlice, TSArray (element), TSType (inner)

	ArraySize *Node // TSArray: a KindIntLit or comptime-foldable expr giving the size

	Params []*Typespec // TSFunc
	Ret    *Typespec   // TSFunc

	Elems []*Typespec // TSTuple: element types in order

	Decl *Node // TSStruct: nominal identity is this pointer (§3.4 invariant 3)

	Module *File // TSModule
}

// AcceptKind classifies t per §4.5.1. TSType and TSModule have no
// AcceptKind of their own and fall through to AcceptRuntime; the
// checker does not reject a type or a module used as a value.
func (t *Typespec) AcceptKind() AcceptKind {
	switch t.Kind {
	case TSVoid:
		return AcceptVoid
	case TSNoreturn:
		return AcceptNoreturn
	case TSFunc:
		return AcceptFunc
	case TSPrim:
		if t.Prim == ComptimeInteger {
			return AcceptComptime
		}
		return AcceptRuntime
	default:
		return AcceptRuntime
	}
}

// String renders a Typespec's canonical display form, used in
// diagnostics (§4.5.7: "both types are printed by their canonical
// display").
func (t *Typespec) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TSPrim:
		return t.Prim.String()
	case TSVoid:
		return "void"
	case TSNoreturn:
		return "noreturn"
	case TSPtr:
		return "*" + immPrefix(t.Immutable) + t.Child.String()
	case TSMultiPtr:
		return "[*]" + immPrefix(t.Immutable) + t.Child.String()
	case TSSlice:
		return "[]" + immPrefix(t.Immutable) + t.Child.String()
	case TSArray:
		return fmt.Sprintf("[%s]%s", arraySizeString(t.ArraySize), t.Child.String())
	case TSFunc:
		params := ""
		for i, p := range t.Params {
			if i > 0 {
				params += ", "
			}
			params += p.String()
		}
		return fmt.Sprintf("fn(%s) %s", params, t.Ret.String())
	case TSTuple:
		elems := ""
		for i, e := range t.Elems {
			if i > 0 {
				elems += ", "
			}
			elems += e.String()
		}
		return "(" + elems + ")"
	case TSStruct:
		if t.Decl != nil {
			return "struct " + t.Decl.Name
		}
		return "struct"
	case TSType:
		return "type{" + t.Child.String() + "}"
	case TSModule:
		return "module"
	default:
		return "?"
	}
}

func immPrefix(immutable bool) string {
	if immutable {
		return "imm "
	}
	return ""
}

func arraySizeString(n *Node) string {
	if n == nil {
		return "_"
	}
	if n.Kind == KindIntLit {
		return n.IntVal.String()
	}
	return "?"
}

// --- predefined singletons (§3.4) ---

var (
	PrimU8   = &Typespec{Kind: TSPrim, Prim: U8}
	PrimU16  = &Typespec{Kind: TSPrim, Prim: U16}
	PrimU32  = &Typespec{Kind: TSPrim, Prim: U32}
	PrimU64  = &Typespec{Kind: TSPrim, Prim: U64}
	PrimI8   = &Typespec{Kind: TSPrim, Prim: I8}
	PrimI16  = &Typespec{Kind: TSPrim, Prim: I16}
	PrimI32  = &Typespec{Kind: TSPrim, Prim: I32}
	PrimI64  = &Typespec{Kind: TSPrim, Prim: I64}
	PrimBool = &Typespec{Kind: TSPrim, Prim: Bool}
	Void     = &Typespec{Kind: TSVoid}
	Noreturn = &Typespec{Kind: TSNoreturn}
)

// PrimByName maps a primitive type name ("u8" ... "i64", "bool") to
// its predefined Typespec singleton. It is a fixed table, read
// directly by the parser, resolver and checker.
var PrimByName = map[string]*Typespec{
	"u8": PrimU8, "u16": PrimU16, "u32": PrimU32, "u64": PrimU64,
	"i8": PrimI8, "i16": PrimI16, "i32": PrimI32, "i64": PrimI64,
	"bool": PrimBool,
}

// NewComptimeInt returns a fresh comptime_integer Typespec carrying
// value. Unlike the sized primitives, comptime_integer is not a
// shared singleton: each literal/fold carries its own value (§3.4).
func NewComptimeInt(value bigint.Int) *Typespec {
	return &Typespec{Kind: TSPrim, Prim: ComptimeInteger, Comptime: value}
}

// ExactEqual implements §4.5.2 predicate 1: structural equality,
// with immutability required to match and nominal types compared by
// decl identity.
func ExactEqual(a, b *Typespec) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case TSPrim:
		return a.Prim == b.Prim
	case TSVoid, TSNoreturn:
		return true
	case TSPtr, TSMultiPtr, TSSlice:
		return a.Immutable == b.Immutable && ExactEqual(a.Child, b.Child)
	case TSArray:
		return sameArraySize(a.ArraySize, b.ArraySize) && ExactEqual(a.Child, b.Child)
	case TSFunc:
		if len(a.Params) != len(b.Params) || !ExactEqual(a.Ret, b.Ret) {
			return false
		}
		for i := range a.Params {
			if !ExactEqual(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	case TSTuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !ExactEqual(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case TSStruct:
		return a.Decl == b.Decl
	case TSType:
		return ExactEqual(a.Child, b.Child)
	case TSModule:
		return a.Module == b.Module
	default:
		return false
	}
}

func sameArraySize(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != KindIntLit || b.Kind != KindIntLit {
		return a == b
	}
	return a.IntVal.Cmp(b.IntVal) == 0
}
