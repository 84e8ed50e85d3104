package compat

import (
	"testing"

	"github.com/nemesis-lang/nsc/internal/typesystem"
)

func TestCompatibleLaxIgnoresIntegerWidth(t *testing.T) {
	i32 := typesystem.Integer{Bits: 32, Signed: true}
	i64 := typesystem.Integer{Bits: 64, Signed: true}
	if !Compatible(i32, i64, false) {
		t.Fatalf("expected lax compatibility between differently-sized signed integers")
	}
	if Compatible(i32, i64, true) {
		t.Fatalf("expected strict compatibility to reject differently-sized integers")
	}
}

func TestCompatibleRejectsSignednessMismatchStrict(t *testing.T) {
	i32 := typesystem.Integer{Bits: 32, Signed: true}
	u32 := typesystem.Integer{Bits: 32, Signed: false}
	if Compatible(i32, u32, true) {
		t.Fatalf("expected strict compatibility to reject signed vs unsigned")
	}
}

func TestAssignmentCompatibleArrayToSlice(t *testing.T) {
	arr := typesystem.Array{Elem: typesystem.Integer{Bits: 32, Signed: true}, Size: typesystem.ArraySize{Concrete: 4}}
	sl := typesystem.Slice{Elem: typesystem.Integer{Bits: 32, Signed: true}}
	ok, coercion, unsafe := AssignmentCompatible(arr, sl)
	if !ok || coercion != CoerceArrayToSlice || unsafe {
		t.Fatalf("expected array-to-slice coercion, got ok=%v coercion=%v unsafe=%v", ok, coercion, unsafe)
	}
}

func TestAssignmentCompatibleCharsStringIsSymmetric(t *testing.T) {
	if ok, c, _ := AssignmentCompatible(typesystem.Chars{}, typesystem.String{}); !ok || c != CoerceCharsString {
		t.Fatalf("expected chars -> string coercion, got ok=%v coercion=%v", ok, c)
	}
	if ok, c, _ := AssignmentCompatible(typesystem.String{}, typesystem.Chars{}); !ok || c != CoerceCharsString {
		t.Fatalf("expected string -> chars coercion, got ok=%v coercion=%v", ok, c)
	}
}

func TestAssignmentCompatibleRejectsUnrelatedTypes(t *testing.T) {
	ok, coercion, _ := AssignmentCompatible(typesystem.Bool{}, typesystem.String{})
	if ok {
		t.Fatalf("expected bool and string to be incompatible, got coercion %v", coercion)
	}
}

func TestAssignmentCompatibleIdentityNeedsNoCoercion(t *testing.T) {
	i32 := typesystem.Integer{Bits: 32, Signed: true}
	ok, coercion, _ := AssignmentCompatible(i32, i32)
	if !ok || coercion != CoerceIdentity {
		t.Fatalf("expected identity coercion for identical types, got ok=%v coercion=%v", ok, coercion)
	}
}
