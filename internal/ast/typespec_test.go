package ast

import (
	"testing"

	"github.com/shkhuz/aria/internal/bigint"
)

func TestExactEqualReflexiveSymmetricTransitive(t *testing.T) {
	a := &Typespec{Kind: TSPtr, Immutable: true, Child: PrimU32}
	b := &Typespec{Kind: TSPtr, Immutable: true, Child: PrimU32}
	c := &Typespec{Kind: TSPtr, Immutable: true, Child: PrimU32}

	if !ExactEqual(a, a) {
		t.Error("ExactEqual must be reflexive")
	}
	if ExactEqual(a, b) != ExactEqual(b, a) {
		t.Error("ExactEqual must be symmetric")
	}
	if ExactEqual(a, b) && ExactEqual(b, c) && !ExactEqual(a, c) {
		t.Error("ExactEqual must be transitive")
	}
}

func TestExactEqualImmutabilityMatters(t *testing.T) {
	a := &Typespec{Kind: TSPtr, Immutable: true, Child: PrimU32}
	b := &Typespec{Kind: TSPtr, Immutable: false, Child: PrimU32}
	if ExactEqual(a, b) {
		t.Error("*imm u32 must not exact-equal *u32")
	}
}

func TestStructIdentityByDecl(t *testing.T) {
	declA := &Node{Kind: KindStruct, Name: "Point"}
	declB := &Node{Kind: KindStruct, Name: "Point"}
	a := &Typespec{Kind: TSStruct, Decl: declA}
	b := &Typespec{Kind: TSStruct, Decl: declA}
	c := &Typespec{Kind: TSStruct, Decl: declB}
	if !ExactEqual(a, b) {
		t.Error("structs with the same decl pointer must be exact-equal")
	}
	if ExactEqual(a, c) {
		t.Error("structs with distinct decl pointers (even same name) must not be exact-equal")
	}
}

func TestCanonicalDisplay(t *testing.T) {
	ptr := &Typespec{Kind: TSPtr, Immutable: true, Child: &Typespec{
		Kind:      TSArray,
		ArraySize: &Node{Kind: KindIntLit, IntVal: bigint.FromInt64(4)},
		Child:     PrimU8,
	}}
	got := ptr.String()
	want := "*imm [4]u8"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
