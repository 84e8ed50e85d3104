// Package compat implements spec.md §4.8's equivalence and
// assignment-compatibility relations between types. Dispatch follows the
// same closed type-switch idiom typesystem.Identical itself uses (a
// simplified, substitution-free descendant of the source's
// unifyInternal recursive type-switch, since this type family carries no
// unification variables to bind — spec.md §1 excludes type inference
// beyond local literal propagation).
package compat

import "github.com/nemesis-lang/nsc/internal/typesystem"

// Coercion names one step of spec.md §4.8's assignment-compatibility
// relation ("there exists a sequence of named coercion rules deriving
// b -> a").
type Coercion int

const (
	CoerceNone Coercion = iota
	CoerceIdentity
	CoerceArrayToSlice
	CoerceToPointerUnsafe
	CoerceCharsString
	CoerceSubtypeToVariant
	CoerceAutoAddress
	CoercePointerToBehaviour
)

func (c Coercion) String() string {
	switch c {
	case CoerceIdentity:
		return "identity"
	case CoerceArrayToSlice:
		return "array-to-slice"
	case CoerceToPointerUnsafe:
		return "array/slice-to-pointer (unsafe)"
	case CoerceCharsString:
		return "chars/string"
	case CoerceSubtypeToVariant:
		return "subtype-to-variant"
	case CoerceAutoAddress:
		return "auto-address"
	case CoercePointerToBehaviour:
		return "pointer-to-behaviour"
	default:
		return "none"
	}
}

// Compatible implements compatible(a,b,strict): structural equality for
// builtins at strict width, nominal identity for named types, and
// spec.md §4.8's lax erasure of integer width/signedness and
// float/rational/complex width when strict is false.
func Compatible(a, b typesystem.Type, strict bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return equal(a, b, strict)
}

func equal(a, b typesystem.Type, strict bool) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	if ad, bd := a.Decl(), b.Decl(); ad != 0 || bd != 0 {
		return ad == bd
	}
	switch at := a.(type) {
	case typesystem.Integer:
		if !strict {
			return true
		}
		bt := b.(typesystem.Integer)
		return at.Bits == bt.Bits && at.Signed == bt.Signed && at.Machine == bt.Machine
	case typesystem.Rational:
		if !strict {
			return true
		}
		return at.Bits == b.(typesystem.Rational).Bits
	case typesystem.Float:
		if !strict {
			return true
		}
		return at.Bits == b.(typesystem.Float).Bits
	case typesystem.Complex:
		if !strict {
			return true
		}
		return at.Bits == b.(typesystem.Complex).Bits
	case typesystem.Bool, typesystem.Char, typesystem.Chars, typesystem.String, typesystem.Unknown:
		return true
	case typesystem.WorkspaceMarker:
		return at.Name == b.(typesystem.WorkspaceMarker).Name
	case typesystem.GenericParameter:
		bt := b.(typesystem.GenericParameter)
		return at.Name == bt.Name && at.IsConstant == bt.IsConstant
	case typesystem.Array:
		bt := b.(typesystem.Array)
		return at.Size == bt.Size && equal(at.Elem, bt.Elem, strict)
	case typesystem.Slice:
		return equal(at.Elem, b.(typesystem.Slice).Elem, strict)
	case typesystem.Tuple:
		bt := b.(typesystem.Tuple)
		if len(at.Components) != len(bt.Components) {
			return false
		}
		for i := range at.Components {
			if !equal(at.Components[i], bt.Components[i], strict) {
				return false
			}
		}
		return true
	case typesystem.Record:
		bt := b.(typesystem.Record)
		if len(at.Fields) != len(bt.Fields) {
			return false
		}
		for i := range at.Fields {
			if at.Fields[i].Name != bt.Fields[i].Name || !equal(at.Fields[i].Type, bt.Fields[i].Type, strict) {
				return false
			}
		}
		return true
	case typesystem.Pointer:
		return equal(at.Pointee, b.(typesystem.Pointer).Pointee, strict)
	case typesystem.Range:
		bt := b.(typesystem.Range)
		return at.Inclusive == bt.Inclusive && equal(at.Base, bt.Base, strict)
	case typesystem.Function:
		bt := b.(typesystem.Function)
		if at.IsLambda != bt.IsLambda || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !equal(at.Params[i], bt.Params[i], strict) {
				return false
			}
		}
		return equal(at.Result, bt.Result, strict)
	default:
		return a.String() == b.String()
	}
}

// AssignmentCompatible implements assignment_compatible(to, from):
// whether a value of type from may be assigned/passed where to is
// expected, either by identity or by one of (at most two chained) named
// coercions from spec.md §4.8. unsafe reports whether the step taken was
// the flagged-unsafe array/slice-to-pointer coercion.
func AssignmentCompatible(from, to typesystem.Type) (ok bool, coercion Coercion, unsafe bool) {
	if typesystem.Identical(from, to) {
		return true, CoerceIdentity, false
	}
	if c, uns := directCoerce(from, to); c != CoerceNone {
		return true, c, uns
	}
	// Two-step chain: auto-address a concrete value, then upcast the
	// resulting pointer to a behaviour pointer — the one composite
	// coercion spec.md §4.8's "pointer-to-concrete -> pointer-to-behaviour"
	// rule requires in practice, since a bare concrete value (not already
	// a pointer) is what callers usually have in hand.
	addressed := typesystem.Pointer{Pointee: from}
	if c, uns := directCoerce(addressed, to); c == CoercePointerToBehaviour {
		return true, CoerceAutoAddress, uns
	}
	return false, CoerceNone, false
}

func directCoerce(from, to typesystem.Type) (Coercion, bool) {
	switch t := to.(type) {
	case typesystem.Slice:
		if arr, ok := from.(typesystem.Array); ok && typesystem.Identical(arr.Elem, t.Elem) {
			return CoerceArrayToSlice, false
		}
	case typesystem.Pointer:
		switch f := from.(type) {
		case typesystem.Array:
			if typesystem.Identical(f.Elem, t.Pointee) {
				return CoerceToPointerUnsafe, true
			}
		case typesystem.Slice:
			if typesystem.Identical(f.Elem, t.Pointee) {
				return CoerceToPointerUnsafe, true
			}
		case typesystem.Pointer:
			if beh, ok := t.Pointee.(typesystem.Behaviour); ok && beh.Implements(f.Pointee) {
				return CoercePointerToBehaviour, false
			}
		default:
			if typesystem.Identical(from, t.Pointee) {
				return CoerceAutoAddress, false
			}
		}
	case typesystem.Variant:
		for _, m := range t.Members {
			if len(m.Tuple) == 1 && typesystem.Identical(from, m.Tuple[0]) {
				return CoerceSubtypeToVariant, false
			}
		}
	case typesystem.String:
		if _, ok := from.(typesystem.Chars); ok {
			return CoerceCharsString, false
		}
	case typesystem.Chars:
		if _, ok := from.(typesystem.String); ok {
			return CoerceCharsString, false
		}
	}
	return CoerceNone, false
}
