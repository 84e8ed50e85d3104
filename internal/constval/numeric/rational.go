package numeric

import "math/big"

// Rational is a fixed-width-tagged exact rational. math/big.Rat already
// maintains numerator/denominator in lowest terms with a positive
// denominator after every operation, which is exactly spec.md §3's
// invariant ("Rationals must be stored in lowest terms") and spec.md
// §8's testable property (gcd(num,den)==1, den>0) — so Rational is a
// thin width-tagged wrapper rather than a reimplementation.
type Rational struct {
	Bits     int
	Value    *big.Rat
	Overflow bool // set when a bits-bounded renormalization would lose range; reserved for future width-checked paths
}

func NewRational(bits int, v *big.Rat) Rational {
	return Rational{Bits: bits, Value: new(big.Rat).Set(v)}
}

func RationalFromInt(bits int, num, den int64) Rational {
	return Rational{Bits: bits, Value: big.NewRat(num, den)}
}

// RationalFromBigInt lifts an exact integer into a rational with
// denominator 1, used when promoting an integer operand into a mixed
// integer/rational expression (spec.md §4.3).
func RationalFromBigInt(bits int, v *big.Int) Rational {
	return Rational{Bits: bits, Value: new(big.Rat).SetFrac(v, big.NewInt(1))}
}

func (a Rational) Add(b Rational, bits int) Rational {
	z := new(big.Rat).Add(a.Value, b.Value)
	return Rational{Bits: bits, Value: z, Overflow: a.Overflow || b.Overflow}
}

func (a Rational) Sub(b Rational, bits int) Rational {
	z := new(big.Rat).Sub(a.Value, b.Value)
	return Rational{Bits: bits, Value: z, Overflow: a.Overflow || b.Overflow}
}

func (a Rational) Mul(b Rational, bits int) Rational {
	z := new(big.Rat).Mul(a.Value, b.Value)
	return Rational{Bits: bits, Value: z, Overflow: a.Overflow || b.Overflow}
}

// Quo divides a by b. Zero-divisor is reported via divByZero rather than
// panicking — big.Rat.Quo panics on a zero divisor, so it must be guarded
// before calling in.
func (a Rational) Quo(b Rational, bits int) (result Rational, divByZero bool) {
	if b.Value.Sign() == 0 {
		return Rational{Bits: bits, Value: new(big.Rat)}, true
	}
	z := new(big.Rat).Quo(a.Value, b.Value)
	return Rational{Bits: bits, Value: z, Overflow: a.Overflow || b.Overflow}, false
}

func (a Rational) Neg(bits int) Rational {
	z := new(big.Rat).Neg(a.Value)
	return Rational{Bits: bits, Value: z, Overflow: a.Overflow}
}

// Cmp implements spec.md §4.3's "rational equality is cross-multiplied" —
// big.Rat.Cmp already does exactly that internally (num1*den2 vs
// num2*den1) rather than converting to float, so no bespoke
// cross-multiplication is needed here.
func (a Rational) Cmp(b Rational) int { return a.Value.Cmp(b.Value) }

func (a Rational) IsZero() bool { return a.Value.Sign() == 0 }

func (a Rational) Num() *big.Int { return a.Value.Num() }
func (a Rational) Denom() *big.Int { return a.Value.Denom() }

func (a Rational) String() string { return a.Value.RatString() }

// FromFloat builds a Rational approximating f via a continued-fraction
// expansion bounded by denominatorCap (spec.md §4.7: "construction from a
// float uses a continued-fraction approximation bounded by a configurable
// denominator cap"). big.Rat's own SetFloat64 already performs an exact
// binary-to-rational conversion (no approximation needed, since every
// float64 is itself an exact dyadic rational); FromFloat additionally
// re-approximates that exact value down to denominatorCap via continued
// fractions when the exact denominator would exceed the cap.
func FromFloat(bits int, f float64, denominatorCap int64) Rational {
	exact := new(big.Rat)
	if exact.SetFloat64(f) == nil {
		return Rational{Bits: bits, Value: new(big.Rat)}
	}
	if exact.Denom().IsInt64() && exact.Denom().Int64() <= denominatorCap {
		return Rational{Bits: bits, Value: exact}
	}
	return Rational{Bits: bits, Value: continuedFractionApprox(exact, denominatorCap)}
}

// continuedFractionApprox finds the best rational approximation of x
// whose denominator does not exceed maxDen, via the standard
// continued-fraction convergent recurrence.
func continuedFractionApprox(x *big.Rat, maxDen int64) *big.Rat {
	num0, den0 := big.NewInt(0), big.NewInt(1)
	num1, den1 := big.NewInt(1), big.NewInt(0)
	rem := new(big.Rat).Set(x)
	for {
		a := new(big.Int).Quo(rem.Num(), rem.Denom())

		num2 := new(big.Int).Mul(a, num1)
		num2.Add(num2, num0)
		den2 := new(big.Int).Mul(a, den1)
		den2.Add(den2, den0)

		if den2.Cmp(big.NewInt(maxDen)) > 0 {
			break
		}
		num0, den0 = num1, den1
		num1, den1 = num2, den2

		fracNum := new(big.Int).Mul(a, rem.Denom())
		fracNum.Sub(rem.Num(), fracNum)
		if fracNum.Sign() == 0 {
			break
		}
		rem = new(big.Rat).SetFrac(rem.Denom(), fracNum)
	}
	if den1.Sign() == 0 {
		den1 = big.NewInt(1)
	}
	return new(big.Rat).SetFrac(num1, den1)
}
