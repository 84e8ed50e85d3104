package evalconst

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/config"
	"github.com/nemesis-lang/nsc/internal/constval"
	"github.com/nemesis-lang/nsc/internal/constval/numeric"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// numKind is the internal numeric-category tag the promotion table keys
// off; -1 means "not numeric" (bool/char/chars/string/sequence).
type numKind int

const (
	numNone numKind = iota - 1
	numInt
	numRational
	numFloat
	numComplex
)

func categoryOf(v constval.Value) numKind {
	switch v.Kind {
	case constval.KindInt:
		return numInt
	case constval.KindRational:
		return numRational
	case constval.KindFloat:
		return numFloat
	case constval.KindComplex:
		return numComplex
	default:
		return numNone
	}
}

func bitsOf(v constval.Value) int {
	switch v.Kind {
	case constval.KindInt:
		return v.IntVal.Bits
	case constval.KindRational:
		return v.RatVal.Bits
	case constval.KindFloat:
		return v.FloatVal.Bits
	case constval.KindComplex:
		return v.CplxVal.Bits
	default:
		return 0
	}
}

// evalBinary implements the full promotion table of spec.md §4.3.
func (e *Evaluator) evalBinary(n *ast.BinaryExpr, scope typesystem.ScopeID) (constval.Value, Outcome) {
	left, outcome := e.Eval(n.Left, scope)
	if outcome != OK {
		return constval.Value{}, outcome
	}
	right, outcome := e.Eval(n.Right, scope)
	if outcome != OK {
		return constval.Value{}, outcome
	}

	switch n.Op {
	case ast.OpAnd, ast.OpOr:
		return e.evalLogical(n, left, right)
	case ast.OpEq, ast.OpNe:
		return e.evalEquality(n, left, right)
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return e.evalOrdering(n, left, right)
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr:
		return e.evalBitwise(n, left, right)
	case ast.OpAdd:
		if v, handled, outcome := e.evalStringConcat(n, left, right); handled {
			return v, outcome
		}
		return e.evalArithmetic(n, left, right)
	default:
		return e.evalArithmetic(n, left, right)
	}
}

func (e *Evaluator) evalLogical(n *ast.BinaryExpr, left, right constval.Value) (constval.Value, Outcome) {
	if left.Kind != constval.KindBool || right.Kind != constval.KindBool {
		return e.reject(n, "logical operator requires bool operands")
	}
	var result bool
	if n.Op == ast.OpAnd {
		result = left.BoolVal && right.BoolVal
	} else {
		result = left.BoolVal || right.BoolVal
	}
	return constval.Bool(e.Registry.MustBuiltin("bool"), result), OK
}

// evalStringConcat implements spec.md §4.3's char/chars/string
// concatenation table. Returns handled=false when neither operand is a
// char/chars/string, so the caller falls through to numeric arithmetic.
func (e *Evaluator) evalStringConcat(n *ast.BinaryExpr, left, right constval.Value) (constval.Value, bool, Outcome) {
	isTextual := func(v constval.Value) bool {
		return v.Kind == constval.KindChar || v.Kind == constval.KindChars || v.Kind == constval.KindString
	}
	if !isTextual(left) && !isTextual(right) {
		return constval.Value{}, false, OK
	}
	if !isTextual(left) || !isTextual(right) {
		v, o := e.reject(n, "mismatched operands for string/char concatenation")
		return v, true, o
	}
	// char+char has no concatenation rule — only char+string(/chars) and
	// chars+chars are defined (spec.md §4.3); bare char+char is rejected.
	if left.Kind == constval.KindChar && right.Kind == constval.KindChar {
		v, o := e.reject(n, "cannot concatenate two chars")
		return v, true, o
	}
	s := textOf(left) + textOf(right)
	return constval.Str(e.Registry.MustBuiltin("string"), s), true, OK
}

func textOf(v constval.Value) string {
	switch v.Kind {
	case constval.KindChar:
		return string(v.CharVal)
	case constval.KindChars:
		return string(v.CharsVal)
	case constval.KindString:
		return v.StrVal
	default:
		return ""
	}
}

// evalEquality implements spec.md §4.3's per-category equality rules,
// including the two explicit asymmetries: signed/unsigned integer
// equality is rejected outright, while chars/string equality is accepted
// (see DESIGN.md's Open Question decision).
func (e *Evaluator) evalEquality(n *ast.BinaryExpr, left, right constval.Value) (constval.Value, Outcome) {
	if left.Kind == constval.KindInt && right.Kind == constval.KindInt && left.IntVal.Signed != right.IntVal.Signed {
		return e.reject(n, "cannot compare signed and unsigned integers for equality")
	}
	textual := func(v constval.Value) bool { return v.Kind == constval.KindChars || v.Kind == constval.KindString }
	var eq, isNaN bool
	if textual(left) && textual(right) {
		eq = textOf(left) == textOf(right)
	} else {
		eq, isNaN = left.Equal(right)
	}
	if isNaN {
		eq = false
	}
	if n.Op == ast.OpNe {
		eq = !eq
	}
	return constval.Bool(e.Registry.MustBuiltin("bool"), eq), OK
}

func (e *Evaluator) evalOrdering(n *ast.BinaryExpr, left, right constval.Value) (constval.Value, Outcome) {
	lc, rc := categoryOf(left), categoryOf(right)
	if lc == numNone || rc == numNone || lc == numComplex || rc == numComplex {
		return e.reject(n, "relational operators require ordered numeric operands")
	}
	cmp, isNaN := compareOrdered(left, right)
	if isNaN {
		return constval.Bool(e.Registry.MustBuiltin("bool"), false), OK
	}
	var result bool
	switch n.Op {
	case ast.OpLt:
		result = cmp < 0
	case ast.OpLe:
		result = cmp <= 0
	case ast.OpGt:
		result = cmp > 0
	case ast.OpGe:
		result = cmp >= 0
	}
	return constval.Bool(e.Registry.MustBuiltin("bool"), result), OK
}

// compareOrdered promotes left/right to a common representation the same
// way evalArithmetic does, then compares.
func compareOrdered(left, right constval.Value) (cmp int, isNaN bool) {
	lc, rc := categoryOf(left), categoryOf(right)
	target := widerCategory(lc, rc)
	switch target {
	case numInt:
		return left.IntVal.Cmp(right.IntVal), false
	case numRational:
		l, r := asRational(left, left.RatVal.Bits), asRational(right, right.RatVal.Bits)
		return l.Cmp(r), false
	case numFloat:
		bits := maxBits(left, right)
		l, r := asFloat(left, bits), asFloat(right, bits)
		return l.Cmp(r)
	default:
		return 0, false
	}
}

func widerCategory(a, b numKind) numKind {
	if a > b {
		return a
	}
	return b
}

func (e *Evaluator) evalBitwise(n *ast.BinaryExpr, left, right constval.Value) (constval.Value, Outcome) {
	if left.Kind != constval.KindInt || right.Kind != constval.KindInt {
		return e.reject(n, "bitwise operators require integer operands")
	}
	bits := maxInt(left.IntVal.Bits, right.IntVal.Bits)
	signed := left.IntVal.Signed || right.IntVal.Signed
	typ := e.Registry.MustBuiltin(builtinIntName(bits, signed))
	var result numeric.Int
	switch n.Op {
	case ast.OpBitAnd:
		result = left.IntVal.And(right.IntVal, bits, signed)
	case ast.OpBitOr:
		result = left.IntVal.Or(right.IntVal, bits, signed)
	case ast.OpBitXor:
		result = left.IntVal.Xor(right.IntVal, bits, signed)
	case ast.OpShl:
		result = left.IntVal.Shl(uint(right.IntVal.Value.Uint64()), bits, signed)
	case ast.OpShr:
		result = left.IntVal.Shr(uint(right.IntVal.Value.Uint64()), bits, signed)
	}
	if result.Overflow {
		e.report(n, diagnostics.ErrOverflow, "overflow for type "+typ.String())
		return constval.Value{}, Reported
	}
	return constval.IntVal(typ, result), OK
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxBits(left, right constval.Value) int {
	a, b := bitsOf(left), bitsOf(right)
	if a > b {
		return a
	}
	return b
}

// evalArithmetic implements the +, -, *, /, %, ** promotion rules.
func (e *Evaluator) evalArithmetic(n *ast.BinaryExpr, left, right constval.Value) (constval.Value, Outcome) {
	lc, rc := categoryOf(left), categoryOf(right)
	if lc == numNone || rc == numNone {
		return e.reject(n, "arithmetic operator requires numeric operands")
	}

	if n.Op == ast.OpPow {
		return e.evalPow(n, left, right)
	}
	if n.Op == ast.OpDiv && lc == numInt && rc == numInt {
		return e.evalIntDivToRational(n, left, right)
	}
	if n.Op == ast.OpMod {
		if lc != numInt || rc != numInt {
			return e.reject(n, "modulus requires two integers")
		}
		return e.evalIntMod(n, left, right)
	}

	target := widerCategory(lc, rc)
	switch target {
	case numInt:
		return e.evalIntArith(n, left, right)
	case numRational:
		return e.evalRatArith(n, left, right)
	case numFloat:
		return e.evalFloatArith(n, left, right)
	case numComplex:
		return e.evalComplexArith(n, left, right)
	default:
		return e.reject(n, "unsupported numeric promotion")
	}
}

func (e *Evaluator) evalIntArith(n *ast.BinaryExpr, left, right constval.Value) (constval.Value, Outcome) {
	bits := maxInt(left.IntVal.Bits, right.IntVal.Bits)
	signed := left.IntVal.Signed || right.IntVal.Signed
	typ := e.Registry.MustBuiltin(builtinIntName(bits, signed))
	var result numeric.Int
	switch n.Op {
	case ast.OpAdd:
		result = left.IntVal.Add(right.IntVal, bits, signed)
	case ast.OpSub:
		result = left.IntVal.Sub(right.IntVal, bits, signed)
	case ast.OpMul:
		result = left.IntVal.Mul(right.IntVal, bits, signed)
	default:
		return e.reject(n, "unsupported integer operator")
	}
	if result.Overflow {
		e.report(n, diagnostics.ErrOverflow, "overflow for type "+typ.String())
		return constval.Value{}, Reported
	}
	return constval.IntVal(typ, result), OK
}

// evalIntDivToRational implements "division of two integers produces a
// rational at twice the max input width" (spec.md §4.3).
func (e *Evaluator) evalIntDivToRational(n *ast.BinaryExpr, left, right constval.Value) (constval.Value, Outcome) {
	if right.IntVal.IsZero() {
		e.report(n, diagnostics.ErrDivideByZero, "division by zero")
		return constval.Value{}, Reported
	}
	bits := roundUpWidth(2*maxInt(left.IntVal.Bits, right.IntVal.Bits), ratWidths)
	num := numeric.RationalFromBigInt(bits, left.IntVal.Value)
	den := numeric.RationalFromBigInt(bits, right.IntVal.Value)
	result, divZero := num.Quo(den, bits)
	if divZero {
		e.report(n, diagnostics.ErrDivideByZero, "division by zero")
		return constval.Value{}, Reported
	}
	return constval.RatVal(e.Registry.MustBuiltin(builtinRatName(bits)), result), OK
}

func (e *Evaluator) evalIntMod(n *ast.BinaryExpr, left, right constval.Value) (constval.Value, Outcome) {
	bits := maxInt(left.IntVal.Bits, right.IntVal.Bits)
	signed := left.IntVal.Signed || right.IntVal.Signed
	result, divZero := left.IntVal.Mod(right.IntVal, bits, signed)
	if divZero {
		e.report(n, diagnostics.ErrDivideByZero, "modulus by zero")
		return constval.Value{}, Reported
	}
	typ := e.Registry.MustBuiltin(builtinIntName(bits, signed))
	if result.Overflow {
		e.report(n, diagnostics.ErrOverflow, "overflow for type "+typ.String())
		return constval.Value{}, Reported
	}
	return constval.IntVal(typ, result), OK
}

// asRational promotes v (int, rational) into a Rational at bits.
func asRational(v constval.Value, bits int) numeric.Rational {
	switch v.Kind {
	case constval.KindInt:
		return numeric.RationalFromBigInt(bits, v.IntVal.Value)
	case constval.KindRational:
		return numeric.NewRational(bits, v.RatVal.Value)
	default:
		return numeric.Rational{Bits: bits, Value: new(big.Rat)}
	}
}

func (e *Evaluator) evalRatArith(n *ast.BinaryExpr, left, right constval.Value) (constval.Value, Outcome) {
	bits := roundUpWidth(maxInt(ratBitsOf(left), ratBitsOf(right)), ratWidths)
	l, r := asRational(left, bits), asRational(right, bits)
	var result numeric.Rational
	switch n.Op {
	case ast.OpAdd:
		result = l.Add(r, bits)
	case ast.OpSub:
		result = l.Sub(r, bits)
	case ast.OpMul:
		result = l.Mul(r, bits)
	case ast.OpDiv:
		var divZero bool
		result, divZero = l.Quo(r, bits)
		if divZero {
			e.report(n, diagnostics.ErrDivideByZero, "division by zero")
			return constval.Value{}, Reported
		}
	default:
		return e.reject(n, "unsupported rational operator")
	}
	return constval.RatVal(e.Registry.MustBuiltin(builtinRatName(bits)), result), OK
}

// ratBitsOf computes the width spec.md §4.3 would lift v to for a
// rational-dominant expression: if v is already rational, its own width;
// if v is an integer, max(2*int_bits, 0) per the mixed-arithmetic rule.
func ratBitsOf(v constval.Value) int {
	if v.Kind == constval.KindRational {
		return v.RatVal.Bits
	}
	if v.Kind == constval.KindInt {
		return 2 * v.IntVal.Bits
	}
	return 0
}

func asFloat(v constval.Value, bits int) numeric.Float {
	switch v.Kind {
	case constval.KindInt:
		return numeric.NewFloatFromBigInt(bits, v.IntVal.Value)
	case constval.KindRational:
		return numeric.NewFloatFromRational(bits, v.RatVal.Num(), v.RatVal.Denom())
	case constval.KindFloat:
		f := v.FloatVal
		f.Bits = bits
		return f
	default:
		return numeric.Float{Bits: bits}
	}
}

func (e *Evaluator) evalFloatArith(n *ast.BinaryExpr, left, right constval.Value) (constval.Value, Outcome) {
	bits := floatTargetBits(left, right)
	l, r := asFloat(left, bits), asFloat(right, bits)
	var result numeric.Float
	switch n.Op {
	case ast.OpAdd:
		result = l.Add(r)
	case ast.OpSub:
		result = l.Sub(r)
	case ast.OpMul:
		result = l.Mul(r)
	case ast.OpDiv:
		result = l.Quo(r)
	default:
		return e.reject(n, "unsupported float operator")
	}
	return e.finishFloat(n, bits, result)
}

// floatTargetBits implements the mixed-category float-width rules:
// int+float -> max(int_bits, float_bits); rational+float ->
// max(rat_bits/2, float_bits); float+float -> max(width, width).
func floatTargetBits(left, right constval.Value) int {
	want := 0
	consider := func(v constval.Value) {
		switch v.Kind {
		case constval.KindFloat:
			if v.FloatVal.Bits > want {
				want = v.FloatVal.Bits
			}
		case constval.KindInt:
			if v.IntVal.Bits > want {
				want = v.IntVal.Bits
			}
		case constval.KindRational:
			if half := v.RatVal.Bits / 2; half > want {
				want = half
			}
		}
	}
	consider(left)
	consider(right)
	return roundUpWidth(want, floatWidths)
}

func (e *Evaluator) finishFloat(n ast.Expression, bits int, result numeric.Float) (constval.Value, Outcome) {
	if result.Flags.Fatal() {
		code := diagnostics.ErrInvalidOperation
		if result.Flags.DivideByZero {
			code = diagnostics.ErrDivideByZero
		} else if result.Flags.Overflow {
			code = diagnostics.ErrOverflow
		}
		e.report(n, code, "floating-point exception for type "+builtinFloatName(bits))
		return constval.Value{}, Reported
	}
	if result.Flags.Inexact {
		e.Sink.Report(diagnostics.NewWarning(diagnostics.ErrInvalidOperation, n.Span(), "inexact floating-point result").Diagnostic)
	}
	return constval.FloatVal(e.Registry.MustBuiltin(builtinFloatName(bits)), result), OK
}

func asComplex(v constval.Value, bits int) numeric.Complex {
	half := bits / 2
	switch v.Kind {
	case constval.KindComplex:
		c := v.CplxVal
		c.Bits = bits
		return c
	default:
		return numeric.FromReal(bits, asFloat(v, half))
	}
}

func complexTargetBits(left, right constval.Value) int {
	want := 0
	consider := func(v constval.Value) {
		switch v.Kind {
		case constval.KindComplex:
			if v.CplxVal.Bits > want {
				want = v.CplxVal.Bits
			}
		case constval.KindFloat:
			if 2*v.FloatVal.Bits > want {
				want = 2 * v.FloatVal.Bits
			}
		case constval.KindInt:
			if 2*v.IntVal.Bits > want {
				want = 2 * v.IntVal.Bits
			}
		case constval.KindRational:
			if v.RatVal.Bits > want {
				want = v.RatVal.Bits
			}
		}
	}
	consider(left)
	consider(right)
	return roundUpWidth(want, complexWidths)
}

func (e *Evaluator) evalComplexArith(n *ast.BinaryExpr, left, right constval.Value) (constval.Value, Outcome) {
	bits := complexTargetBits(left, right)
	l, r := asComplex(left, bits), asComplex(right, bits)
	var result numeric.Complex
	switch n.Op {
	case ast.OpAdd:
		result = l.Add(r)
	case ast.OpSub:
		result = l.Sub(r)
	case ast.OpMul:
		result = l.Mul(r)
	case ast.OpDiv:
		var divZero bool
		result, divZero = l.Quo(r)
		if divZero {
			e.report(n, diagnostics.ErrDivideByZero, "complex division by zero")
			return constval.Value{}, Reported
		}
	default:
		return e.reject(n, "unsupported complex operator")
	}
	if result.Real.Flags.Fatal() || result.Imag.Flags.Fatal() {
		e.report(n, diagnostics.ErrInvalidOperation, "floating-point exception for type "+builtinComplexName(bits))
		return constval.Value{}, Reported
	}
	return constval.ComplexVal(e.Registry.MustBuiltin(builtinComplexName(bits)), result), OK
}

// evalPow implements "power always yields a float (or complex, if any
// operand is complex)" (spec.md §4.3).
func (e *Evaluator) evalPow(n *ast.BinaryExpr, left, right constval.Value) (constval.Value, Outcome) {
	if categoryOf(left) == numComplex || categoryOf(right) == numComplex {
		return e.evalComplexArith(n, left, right)
	}
	bits := floatTargetBits(left, right)
	l, r := asFloat(left, bits), asFloat(right, bits)
	return e.finishFloat(n, bits, l.Pow(r))
}

// evalUnary implements unary `-`, `!`, `~`.
func (e *Evaluator) evalUnary(n *ast.UnaryExpr, scope typesystem.ScopeID) (constval.Value, Outcome) {
	v, outcome := e.Eval(n.Operand, scope)
	if outcome != OK {
		return constval.Value{}, outcome
	}
	switch n.Op {
	case ast.OpNot:
		if v.Kind != constval.KindBool {
			return e.reject(n, "! requires a bool operand")
		}
		return constval.Bool(e.Registry.MustBuiltin("bool"), !v.BoolVal), OK
	case ast.OpBitNot:
		if v.Kind != constval.KindInt {
			return e.reject(n, "~ requires an integer operand")
		}
		result := v.IntVal.Not(v.IntVal.Bits, v.IntVal.Signed)
		return constval.IntVal(v.Type, result), OK
	case ast.OpNeg:
		return e.evalNeg(n, v)
	default:
		return e.reject(n, "unsupported unary operator")
	}
}

// evalNeg implements "unary `-` always yields a signed result" (spec.md
// §4.3), preserving verbatim the source's documented-but-unexplained
// behaviour of flagging overflow on unsigned unary negation unconditionally,
// including `-0u` (spec.md §9 Open Question — behaviour kept as-is).
func (e *Evaluator) evalNeg(n *ast.UnaryExpr, v constval.Value) (constval.Value, Outcome) {
	switch v.Kind {
	case constval.KindInt:
		bits := v.IntVal.Bits
		typ := e.Registry.MustBuiltin(builtinIntName(bits, true))
		result := v.IntVal.Neg(bits, true)
		if !v.IntVal.Signed {
			result.Overflow = true
		}
		if result.Overflow {
			e.report(n, diagnostics.ErrOverflow, "overflow for type "+typ.String())
			return constval.Value{}, Reported
		}
		return constval.IntVal(typ, result), OK
	case constval.KindRational:
		return constval.RatVal(v.Type, v.RatVal.Neg(v.RatVal.Bits)), OK
	case constval.KindFloat:
		return e.finishFloat(n, v.FloatVal.Bits, v.FloatVal.Neg())
	case constval.KindComplex:
		return constval.ComplexVal(v.Type, v.CplxVal.Neg()), OK
	default:
		return e.reject(n, "unary - requires a numeric operand")
	}
}

// evalAs implements the single conversion form the constant evaluator
// accepts: `expr as T`.
func (e *Evaluator) evalAs(n *ast.AsExpr, scope typesystem.ScopeID) (constval.Value, Outcome) {
	v, outcome := e.Eval(n.Operand, scope)
	if outcome != OK {
		return constval.Value{}, outcome
	}
	name, ok := namedTypeExprName(n.Target)
	if !ok {
		return e.reject(n, "unsupported cast target in constant context")
	}
	target, ok := e.Registry.Builtin(name)
	if !ok {
		return e.reject(n, "unknown cast target type: "+name)
	}
	switch t := target.(type) {
	case typesystem.Integer:
		bits := t.Bits
		var bi *big.Int
		switch v.Kind {
		case constval.KindInt:
			bi = v.IntVal.Value
		case constval.KindChar:
			bi = big.NewInt(int64(v.CharVal))
		default:
			return e.reject(n, "cannot cast to an integer type")
		}
		result := numeric.NewInt(bits, t.Signed, bi)
		return constval.IntVal(target, result), OK
	case typesystem.Float:
		return e.finishFloat(n, t.Bits, asFloat(v, t.Bits))
	case typesystem.Rational:
		if v.Kind == constval.KindFloat {
			return constval.RatVal(target, numeric.FromFloat(t.Bits, v.FloatVal.Float64(), config.RationalDenominatorCap)), OK
		}
		return constval.RatVal(target, asRational(v, t.Bits)), OK
	default:
		return e.reject(n, "unsupported cast target in constant context")
	}
}

func namedTypeExprName(t ast.TypeExpr) (string, bool) {
	named, ok := t.(*ast.NamedTypeExpr)
	if !ok {
		return "", false
	}
	return named.Name, true
}

// evalTypeMetadata implements `T.BITS`, `T.MIN`, `T.MAX`, `f32.INFINITY`,
// `f32.NAN` (spec.md §4.3).
func evalTypeMetadata(reg *typesystem.Registry, t typesystem.Type, member string, origin ast.Expression) (constval.Value, Outcome) {
	switch tt := t.(type) {
	case typesystem.Integer:
		switch member {
		case "BITS":
			return constval.IntVal(reg.MustBuiltin("u32"), numeric.NewInt(32, false, big.NewInt(int64(tt.Bits)))), OK
		case "MIN":
			lo, _ := numeric.Bounds(tt.Bits, tt.Signed)
			return constval.IntVal(t, numeric.NewInt(tt.Bits, tt.Signed, lo)), OK
		case "MAX":
			_, hi := numeric.Bounds(tt.Bits, tt.Signed)
			return constval.IntVal(t, numeric.NewInt(tt.Bits, tt.Signed, hi)), OK
		}
	case typesystem.Float:
		switch member {
		case "BITS":
			return constval.IntVal(reg.MustBuiltin("u32"), numeric.NewInt(32, false, big.NewInt(int64(tt.Bits)))), OK
		case "INFINITY":
			inf := numeric.NewFloatFromFloat64(tt.Bits, math.Inf(1))
			return constval.FloatVal(t, inf), OK
		case "NAN":
			nan := numeric.NewFloatFromFloat64(tt.Bits, math.NaN())
			nan.Flags.Invalid = true
			return constval.FloatVal(t, nan), OK
		}
	}
	return constval.Value{}, Reported
}

func parseIntLexeme(lexeme string) (*big.Int, int, bool, bool) {
	digits, suffix := splitNumericSuffix(lexeme)
	bits, signed := 32, true
	if suffix != "" {
		b, s, ok := parseIntSuffix(suffix)
		if !ok {
			return nil, 0, false, false
		}
		bits, signed = b, s
	}
	v, ok := new(big.Int).SetString(strings.ReplaceAll(digits, "_", ""), 0)
	if !ok {
		return nil, 0, false, false
	}
	return v, bits, signed, true
}

func splitNumericSuffix(lexeme string) (digits, suffix string) {
	i := strings.IndexAny(lexeme, "iu")
	if i <= 0 {
		return lexeme, ""
	}
	return lexeme[:i], lexeme[i:]
}

func parseIntSuffix(suffix string) (bits int, signed bool, ok bool) {
	if suffix == "isize" {
		return 64, true, true
	}
	if suffix == "usize" {
		return 64, false, true
	}
	if len(suffix) < 2 {
		return 0, false, false
	}
	signed = suffix[0] == 'i'
	n, err := strconv.Atoi(suffix[1:])
	if err != nil {
		return 0, false, false
	}
	return n, signed, true
}

func parseFloatLexeme(lexeme string) (float64, bool) {
	clean := strings.ReplaceAll(lexeme, "_", "")
	clean = strings.TrimSuffix(strings.TrimSuffix(clean, "f32"), "f64")
	f, err := strconv.ParseFloat(clean, 64)
	return f, err == nil
}

func parseRationalLexeme(lexeme string) (int64, int64, bool) {
	parts := strings.SplitN(strings.ReplaceAll(lexeme, "_", ""), "/", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	num, err1 := strconv.ParseInt(parts[0], 10, 64)
	den, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0, 0, false
	}
	return num, den, true
}
