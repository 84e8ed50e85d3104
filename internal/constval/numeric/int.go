// Package numeric implements the precision-parameterized wrappers over
// host arithmetic spec.md §4.7 calls for: a fixed-width two's-complement
// integer, a lowest-terms rational, an arbitrary-precision-aware float,
// and a componentwise complex pair — each carrying the sticky
// overflow/underflow/invalid/zerodiv/inexact bits spec.md §3 requires.
package numeric

import "math/big"

// Int is a fixed-width two's-complement integer value. Value holds the
// exact result and is not wrapped; NewInt sets Overflow when it lies
// outside [Min, Max] for the current width/signedness. Overflow is sticky
// once set (it is never cleared by a later operation — spec.md §3's
// "operation flags" persist on the value they describe, matching the
// "Sticky flag" glossary entry).
type Int struct {
	Bits     int
	Signed   bool
	Value    *big.Int
	Overflow bool
}

// NewInt builds an Int from an exact big.Int, flagging Overflow if v does
// not fit in [Min(bits,signed), Max(bits,signed)].
func NewInt(bits int, signed bool, v *big.Int) Int {
	i := Int{Bits: bits, Signed: signed, Value: new(big.Int).Set(v)}
	lo, hi := Bounds(bits, signed)
	if v.Cmp(lo) < 0 || v.Cmp(hi) > 0 {
		i.Overflow = true
	}
	return i
}

// Bounds returns the two's-complement [min, max] for a width/signedness,
// per spec.md §8's testable property:
//
//	MIN = -2^(w-1), MAX = 2^(w-1)-1   (signed)
//	MIN = 0,        MAX = 2^w-1       (unsigned)
func Bounds(bits int, signed bool) (min, max *big.Int) {
	one := big.NewInt(1)
	full := new(big.Int).Lsh(one, uint(bits))
	if !signed {
		return big.NewInt(0), new(big.Int).Sub(full, one)
	}
	half := new(big.Int).Lsh(one, uint(bits-1))
	max = new(big.Int).Sub(half, one)
	min = new(big.Int).Neg(half)
	return min, max
}

// checkedOp applies op to a.Value and b.Value, keeping the exact result
// (no wraparound) and carrying forward either operand's sticky overflow
// plus any new overflow the op itself introduces.
func checkedOp(a, b Int, bits int, signed bool, op func(z, x, y *big.Int) *big.Int) Int {
	z := new(big.Int)
	op(z, a.Value, b.Value)
	result := NewInt(bits, signed, z)
	result.Overflow = result.Overflow || a.Overflow || b.Overflow
	return result
}

func (a Int) Add(b Int, bits int, signed bool) Int {
	return checkedOp(a, b, bits, signed, func(z, x, y *big.Int) *big.Int { return z.Add(x, y) })
}

func (a Int) Sub(b Int, bits int, signed bool) Int {
	return checkedOp(a, b, bits, signed, func(z, x, y *big.Int) *big.Int { return z.Sub(x, y) })
}

func (a Int) Mul(b Int, bits int, signed bool) Int {
	return checkedOp(a, b, bits, signed, func(z, x, y *big.Int) *big.Int { return z.Mul(x, y) })
}

// Mod computes the integer remainder. divByZero is reported separately so
// the evaluator can raise spec.md §4.3's "divide-by-zero" diagnostic
// distinctly from an overflow.
func (a Int) Mod(b Int, bits int, signed bool) (result Int, divByZero bool) {
	if b.Value.Sign() == 0 {
		return Int{Bits: bits, Signed: signed, Value: big.NewInt(0)}, true
	}
	return checkedOp(a, b, bits, signed, func(z, x, y *big.Int) *big.Int { return z.Rem(x, y) }), false
}

func (a Int) Neg(bits int, signed bool) Int {
	z := new(big.Int).Neg(a.Value)
	result := NewInt(bits, signed, z)
	result.Overflow = result.Overflow || a.Overflow
	return result
}

func (a Int) Not(bits int, signed bool) Int {
	z := new(big.Int).Not(a.Value)
	result := NewInt(bits, signed, z)
	result.Overflow = result.Overflow || a.Overflow
	return result
}

func (a Int) And(b Int, bits int, signed bool) Int {
	return checkedOp(a, b, bits, signed, func(z, x, y *big.Int) *big.Int { return z.And(x, y) })
}

func (a Int) Or(b Int, bits int, signed bool) Int {
	return checkedOp(a, b, bits, signed, func(z, x, y *big.Int) *big.Int { return z.Or(x, y) })
}

func (a Int) Xor(b Int, bits int, signed bool) Int {
	return checkedOp(a, b, bits, signed, func(z, x, y *big.Int) *big.Int { return z.Xor(x, y) })
}

func (a Int) Shl(shiftBits uint, bits int, signed bool) Int {
	z := new(big.Int).Lsh(a.Value, shiftBits)
	result := NewInt(bits, signed, z)
	result.Overflow = result.Overflow || a.Overflow
	return result
}

func (a Int) Shr(shiftBits uint, bits int, signed bool) Int {
	z := new(big.Int).Rsh(a.Value, shiftBits)
	result := NewInt(bits, signed, z)
	result.Overflow = result.Overflow || a.Overflow
	return result
}

func (a Int) Cmp(b Int) int { return a.Value.Cmp(b.Value) }
func (a Int) Equal(b Int) bool { return a.Value.Cmp(b.Value) == 0 }
func (a Int) IsZero() bool { return a.Value.Sign() == 0 }

func (a Int) String() string { return a.Value.String() }
