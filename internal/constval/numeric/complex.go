package numeric

// Complex is a componentwise complex value built from two Floats, rather
// than a native Go complex128 — spec.md §4.7 widths go up to c256, well
// past what complex128 can represent, so Real/Imag share the same
// apd-backed Float arithmetic (and sticky flags) as the scalar float path.
type Complex struct {
	Bits int
	Real Float
	Imag Float
}

func NewComplex(bits int, real, imag Float) Complex {
	return Complex{Bits: bits, Real: real, Imag: imag}
}

// FromReal lifts a real-only float into a complex with a zero imaginary
// part, used when promoting an int/float/rational operand into a mixed
// expression with a complex operand (spec.md §4.3).
func FromReal(bits int, real Float) Complex {
	zero := Float{Bits: componentBits(bits)}
	return Complex{Bits: bits, Real: real, Imag: zero}
}

func componentBits(whole int) int { return whole / 2 }

func (a Complex) Add(b Complex) Complex {
	bits := maxInt(a.Bits, b.Bits)
	return Complex{Bits: bits, Real: a.Real.Add(b.Real), Imag: a.Imag.Add(b.Imag)}
}

func (a Complex) Sub(b Complex) Complex {
	bits := maxInt(a.Bits, b.Bits)
	return Complex{Bits: bits, Real: a.Real.Sub(b.Real), Imag: a.Imag.Sub(b.Imag)}
}

// Mul implements (a+bi)(c+di) = (ac-bd) + (ad+bc)i.
func (a Complex) Mul(b Complex) Complex {
	bits := maxInt(a.Bits, b.Bits)
	ac := a.Real.Mul(b.Real)
	bd := a.Imag.Mul(b.Imag)
	ad := a.Real.Mul(b.Imag)
	bc := a.Imag.Mul(b.Real)
	return Complex{Bits: bits, Real: ac.Sub(bd), Imag: ad.Add(bc)}
}

// Quo implements division via the conjugate: (a+bi)/(c+di) =
// ((ac+bd) + (bc-ad)i) / (c^2+d^2). A zero-divisor denominator is
// surfaced as divByZero rather than propagated through four separate
// Quo calls so the caller raises exactly one diagnostic.
func (a Complex) Quo(b Complex) (result Complex, divByZero bool) {
	bits := maxInt(a.Bits, b.Bits)
	denom := b.Real.Mul(b.Real).Add(b.Imag.Mul(b.Imag))
	if denom.IsZero() {
		zero := Float{Bits: componentBits(bits)}
		return Complex{Bits: bits, Real: zero, Imag: zero}, true
	}
	realNum := a.Real.Mul(b.Real).Add(a.Imag.Mul(b.Imag))
	imagNum := a.Imag.Mul(b.Real).Sub(a.Real.Mul(b.Imag))
	return Complex{Bits: bits, Real: realNum.Quo(denom), Imag: imagNum.Quo(denom)}, false
}

func (a Complex) Neg() Complex {
	return Complex{Bits: a.Bits, Real: a.Real.Neg(), Imag: a.Imag.Neg()}
}

// Equal implements spec.md §4.3's componentwise complex equality (both
// real and imaginary parts must compare equal under host IEEE semantics).
func (a Complex) Equal(b Complex) (equal bool, isNaN bool) {
	rc, rNaN := a.Real.Cmp(b.Real)
	ic, iNaN := a.Imag.Cmp(b.Imag)
	if rNaN || iNaN {
		return false, true
	}
	return rc == 0 && ic == 0, false
}

func (a Complex) IsZero() bool { return a.Real.IsZero() && a.Imag.IsZero() }

func (a Complex) String() string {
	return a.Real.String() + "+" + a.Imag.String() + "i"
}
