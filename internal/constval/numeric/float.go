package numeric

import (
	"math/big"

	"github.com/cockroachdb/apd/v2"
)

// FloatFlags are the sticky IEEE-style exception bits spec.md §3 and
// §4.7 require on every float/complex result: overflow, underflow,
// inexact (advisory — a warning per spec.md §4.3, never fatal) and
// invalid/divide-by-zero (both fatal per spec.md §4.3).
type FloatFlags struct {
	Overflow    bool
	Underflow   bool
	Inexact     bool
	Invalid     bool
	DivideByZero bool
}

// Or merges another flag set in, sticky (spec.md glossary: "Sticky flag").
func (f FloatFlags) Or(other FloatFlags) FloatFlags {
	return FloatFlags{
		Overflow:     f.Overflow || other.Overflow,
		Underflow:    f.Underflow || other.Underflow,
		Inexact:      f.Inexact || other.Inexact,
		Invalid:      f.Invalid || other.Invalid,
		DivideByZero: f.DivideByZero || other.DivideByZero,
	}
}

// Fatal reports whether any fatal-per-expression condition (spec.md
// §4.3: "Numeric overflow or float invalid/divide-by-zero is a fatal
// per-expression diagnostic") has been raised.
func (f FloatFlags) Fatal() bool {
	return f.Overflow || f.Invalid || f.DivideByZero
}

// precision maps a float bit-width to the apd decimal digit precision
// used to back it. Go has no native float128, so f128 is backed by a
// wider decimal context than f64 rather than a genuine IEEE binary128 —
// the one deliberate precision approximation in this module.
func precision(bits int) uint32 {
	switch bits {
	case 32:
		return 9 // ~ IEEE-754 single's ~7.2 decimal digits, rounded up
	case 64:
		return 17 // round-trip precision for IEEE-754 double
	default:
		return 36 // f128: wider decimal context, not true binary128
	}
}

func contextFor(bits int) *apd.Context {
	ctx := apd.BaseContext.WithPrecision(precision(bits))
	return ctx
}

// Float is an arbitrary-precision-aware float value at a fixed advisory
// width, backed by apd.Decimal. apd's Context operations already return a
// Condition bitmask per call, which is exactly the "acquire only around a
// single primitive operation" floating-point-environment guard spec.md
// §9 asks for — guard below translates that Condition into FloatFlags.
type Float struct {
	Bits  int
	Value *apd.Decimal
	Flags FloatFlags
}

func condToFlags(c apd.Condition) FloatFlags {
	return FloatFlags{
		Overflow:     c.Overflow(),
		Underflow:    c.Underflow(),
		Inexact:      c.Inexact(),
		Invalid:      c.InvalidOperation(),
		DivideByZero: c.DivisionByZero(),
	}
}

// guard runs a single apd primitive, harvesting its Condition into
// FloatFlags — the scoped acquire/harvest wrapper spec.md §9 calls for.
func guard(bits int, op func(ctx *apd.Context, z *apd.Decimal) (apd.Condition, error)) (*apd.Decimal, FloatFlags) {
	ctx := contextFor(bits)
	z := new(apd.Decimal)
	cond, err := op(ctx, z)
	flags := condToFlags(cond)
	if err != nil {
		flags.Invalid = true
	}
	return z, flags
}

func NewFloatFromFloat64(bits int, f float64) Float {
	d := new(apd.Decimal)
	_, _ = d.SetFloat64(f)
	return Float{Bits: bits, Value: d}
}

// NewFloatFromBigInt lifts an exact integer into a float, used when
// promoting an integer operand into a mixed integer/float expression
// (spec.md §4.3). apd.NewFromString parses the exact decimal digits
// of the integer, so this loses no precision the target width wouldn't
// already round away.
func NewFloatFromBigInt(bits int, v *big.Int) Float {
	d, _, _ := apd.NewFromString(v.String())
	if d == nil {
		d = new(apd.Decimal)
	}
	return Float{Bits: bits, Value: d}
}

// NewFloatFromRational approximates a rational as a float at the given
// precision (spec.md §4.3 rational+float arithmetic collapses to float).
func NewFloatFromRational(bits int, num, den *big.Int) Float {
	ctx := contextFor(bits)
	n, _, _ := apd.NewFromString(num.String())
	dd, _, _ := apd.NewFromString(den.String())
	z := new(apd.Decimal)
	if n == nil || dd == nil {
		return Float{Bits: bits, Value: z}
	}
	cond, err := ctx.Quo(z, n, dd)
	flags := condToFlags(cond)
	if err != nil {
		flags.Invalid = true
	}
	return Float{Bits: bits, Value: z, Flags: flags}
}

func (a Float) Add(b Float) Float {
	bits := maxInt(a.Bits, b.Bits)
	z, flags := guard(bits, func(ctx *apd.Context, z *apd.Decimal) (apd.Condition, error) {
		return ctx.Add(z, a.Value, b.Value)
	})
	return Float{Bits: bits, Value: z, Flags: a.Flags.Or(b.Flags).Or(flags)}
}

func (a Float) Sub(b Float) Float {
	bits := maxInt(a.Bits, b.Bits)
	z, flags := guard(bits, func(ctx *apd.Context, z *apd.Decimal) (apd.Condition, error) {
		return ctx.Sub(z, a.Value, b.Value)
	})
	return Float{Bits: bits, Value: z, Flags: a.Flags.Or(b.Flags).Or(flags)}
}

func (a Float) Mul(b Float) Float {
	bits := maxInt(a.Bits, b.Bits)
	z, flags := guard(bits, func(ctx *apd.Context, z *apd.Decimal) (apd.Condition, error) {
		return ctx.Mul(z, a.Value, b.Value)
	})
	return Float{Bits: bits, Value: z, Flags: a.Flags.Or(b.Flags).Or(flags)}
}

// Quo divides a by b. A zero divisor is reported through flags.DivideByZero
// rather than a Go error, so the caller always gets a well-formed (if
// flagged) result back, matching spec.md §4.3's "divide-by-zero" being a
// value-level flag rather than a panic.
func (a Float) Quo(b Float) Float {
	bits := maxInt(a.Bits, b.Bits)
	if b.Value.Sign() == 0 {
		return Float{Bits: bits, Value: new(apd.Decimal), Flags: a.Flags.Or(b.Flags).Or(FloatFlags{DivideByZero: true})}
	}
	z, flags := guard(bits, func(ctx *apd.Context, z *apd.Decimal) (apd.Condition, error) {
		return ctx.Quo(z, a.Value, b.Value)
	})
	return Float{Bits: bits, Value: z, Flags: a.Flags.Or(b.Flags).Or(flags)}
}

// Pow implements spec.md §4.3's "Power always yields a float".
func (a Float) Pow(b Float) Float {
	bits := maxInt(a.Bits, b.Bits)
	z, flags := guard(bits, func(ctx *apd.Context, z *apd.Decimal) (apd.Condition, error) {
		return ctx.Pow(z, a.Value, b.Value)
	})
	return Float{Bits: bits, Value: z, Flags: a.Flags.Or(b.Flags).Or(flags)}
}

func (a Float) Neg() Float {
	z, flags := guard(a.Bits, func(ctx *apd.Context, z *apd.Decimal) (apd.Condition, error) {
		return ctx.Neg(z, a.Value)
	})
	return Float{Bits: a.Bits, Value: z, Flags: a.Flags.Or(flags)}
}

// Cmp compares two floats under host IEEE-like total order (NaN never
// equal, per spec.md §4.3 "float equality uses host IEEE semantics").
// Implemented via subtraction rather than apd's own comparator so the
// only Condition we need to inspect is InvalidOperation (NaN produced).
func (a Float) Cmp(b Float) (cmp int, isNaN bool) {
	bits := maxInt(a.Bits, b.Bits)
	z, flags := guard(bits, func(ctx *apd.Context, z *apd.Decimal) (apd.Condition, error) {
		return ctx.Sub(z, a.Value, b.Value)
	})
	if flags.Invalid {
		return 0, true
	}
	return z.Sign(), false
}

func (a Float) IsZero() bool { return a.Value.Sign() == 0 }

func (a Float) String() string { return a.Value.String() }

func (a Float) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
