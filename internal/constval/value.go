// Package constval is the constant-value model spec.md §4.1 calls for: a
// closed, tagged value representation wrapping the precision-parameterized
// arithmetic in constval/numeric, carried on every folded expression's
// annotation slot.
package constval

import (
	"fmt"
	"strings"

	"github.com/nemesis-lang/nsc/internal/constval/numeric"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// Kind tags which field of Value is live. Kept closed (spec.md's "closed,
// tagged-variant" data model) rather than letting Payload be a bare `any`.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindChar
	KindChars  // a fixed-width UTF-32-ish rune buffer, spec.md's `chars`
	KindString // an owned, growable byte-backed string, spec.md's `string`
	KindInt
	KindRational
	KindFloat
	KindComplex
	KindSequence // array/tuple/record aggregate constant
	KindUnit
)

// Value is the closed tagged union of every constant a folded expression
// can carry. Exactly one payload field is meaningful per Kind; the rest
// are zero. Type records the static type the value was folded at (distinct
// from the payload's own width/signedness bookkeeping, which can widen
// during promotion — spec.md §4.3).
type Value struct {
	Kind Kind
	Type typesystem.Type

	BoolVal  bool
	CharVal  rune
	CharsVal []rune
	StrVal   string
	IntVal   numeric.Int
	RatVal   numeric.Rational
	FloatVal numeric.Float
	CplxVal  numeric.Complex
	SeqVal   []Value // ordered components of an array/tuple/record constant
}

func Bool(t typesystem.Type, v bool) Value { return Value{Kind: KindBool, Type: t, BoolVal: v} }
func Char(t typesystem.Type, v rune) Value { return Value{Kind: KindChar, Type: t, CharVal: v} }
func Chars(t typesystem.Type, v []rune) Value {
	return Value{Kind: KindChars, Type: t, CharsVal: v}
}
func Str(t typesystem.Type, v string) Value { return Value{Kind: KindString, Type: t, StrVal: v} }
func IntVal(t typesystem.Type, v numeric.Int) Value { return Value{Kind: KindInt, Type: t, IntVal: v} }
func RatVal(t typesystem.Type, v numeric.Rational) Value {
	return Value{Kind: KindRational, Type: t, RatVal: v}
}
func FloatVal(t typesystem.Type, v numeric.Float) Value {
	return Value{Kind: KindFloat, Type: t, FloatVal: v}
}
func ComplexVal(t typesystem.Type, v numeric.Complex) Value {
	return Value{Kind: KindComplex, Type: t, CplxVal: v}
}
func Sequence(t typesystem.Type, components []Value) Value {
	return Value{Kind: KindSequence, Type: t, SeqVal: components}
}
func Unit(t typesystem.Type) Value { return Value{Kind: KindUnit, Type: t} }

// IsValid reports whether this Value carries a real constant, as opposed
// to the zero Value produced when an expression is not constant-foldable
// (spec.md §4.3: non-constant subexpressions simply have no constval.Value
// attached at all; a caller that got a zero Value by mistake must be able
// to tell).
func (v Value) IsValid() bool { return v.Kind != KindInvalid }

// Overflowed reports whether folding this value raised a fatal sticky flag
// (spec.md §4.3: "Numeric overflow or float invalid/divide-by-zero is a
// fatal per-expression diagnostic").
func (v Value) Overflowed() bool {
	switch v.Kind {
	case KindInt:
		return v.IntVal.Overflow
	case KindRational:
		return v.RatVal.Overflow
	case KindFloat:
		return v.FloatVal.Flags.Fatal()
	case KindComplex:
		return v.CplxVal.Real.Flags.Fatal() || v.CplxVal.Imag.Flags.Fatal()
	default:
		return false
	}
}

// Equal implements spec.md §4.3's per-kind equality rules:
//   - values of different Kinds never compare equal here, so a Chars and a
//     String are unequal even when their contents match rune-for-rune;
//     the evaluator's evalEquality compares chars/string contents itself
//     before it reaches Equal.
//   - float/complex equality follows host IEEE semantics (NaN != NaN).
//   - rational equality is exact, via cross-multiplication (big.Rat.Cmp).
//   - signed/unsigned integer equality across differing signedness is
//     rejected entirely by the type checker before evaluation ever sees
//     it, so Equal assumes both operands already share width+signedness.
func (a Value) Equal(b Value) (equal bool, isNaN bool) {
	if a.Kind != b.Kind {
		return false, false
	}
	switch a.Kind {
	case KindBool:
		return a.BoolVal == b.BoolVal, false
	case KindChar:
		return a.CharVal == b.CharVal, false
	case KindChars:
		return string(a.CharsVal) == string(b.CharsVal), false
	case KindString:
		return a.StrVal == b.StrVal, false
	case KindInt:
		return a.IntVal.Equal(b.IntVal), false
	case KindRational:
		return a.RatVal.Cmp(b.RatVal) == 0, false
	case KindFloat:
		cmp, nan := a.FloatVal.Cmp(b.FloatVal)
		return cmp == 0 && !nan, nan
	case KindComplex:
		return a.CplxVal.Equal(b.CplxVal)
	case KindUnit:
		return true, false
	case KindSequence:
		if len(a.SeqVal) != len(b.SeqVal) {
			return false, false
		}
		for i := range a.SeqVal {
			eq, nan := a.SeqVal[i].Equal(b.SeqVal[i])
			if nan {
				return false, true
			}
			if !eq {
				return false, false
			}
		}
		return true, false
	default:
		return false, false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return fmt.Sprintf("%t", v.BoolVal)
	case KindChar:
		return fmt.Sprintf("%q", v.CharVal)
	case KindChars:
		return string(v.CharsVal)
	case KindString:
		return v.StrVal
	case KindInt:
		return v.IntVal.String()
	case KindRational:
		return v.RatVal.String()
	case KindFloat:
		return v.FloatVal.String()
	case KindComplex:
		return v.CplxVal.String()
	case KindUnit:
		return "()"
	case KindSequence:
		parts := make([]string, len(v.SeqVal))
		for i, c := range v.SeqVal {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "<invalid>"
	}
}
