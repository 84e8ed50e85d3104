// Package evalconst is the constant-expression evaluator spec.md §4.3
// describes: a single-threaded, recursive, value-returning tree walk over
// the subset of the expression grammar legal in constant context.
//
// Dispatch is a Go type switch on the concrete ast.Expression type, one
// case per node kind, in the idiom the source's evaluator uses for its
// Object-tagged tree walk (switch on dynamic type / tag, not virtual
// dispatch) — re-expressed here per spec.md §9's "replace visitor with
// tagged variant + match".
package evalconst

import (
	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/config"
	"github.com/nemesis-lang/nsc/internal/constval"
	"github.com/nemesis-lang/nsc/internal/constval/numeric"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
	"github.com/nemesis-lang/nsc/internal/obslog"
	"github.com/nemesis-lang/nsc/internal/symbols"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// Outcome tags what Eval produced, replacing the source's exception-style
// "semantic_error"/"abort_error"/"generic_evaluation" control flow with an
// explicit result (spec.md §9).
type Outcome int

const (
	OK Outcome = iota
	NeedsGeneric // operand depends on an unbound generic parameter; checker retries after substitution
	Reported     // a diagnostic was already emitted; caller should treat the node as invalid
)

// Evaluator holds the shared, read-only context a single constant-folding
// walk needs: the type registry (for builtin lookups like `T.BITS`), the
// declaration/scope arena (for identifier and path resolution), the
// diagnostics sink, and a logger for pass-boundary tracing.
type Evaluator struct {
	Registry *typesystem.Registry
	Universe *symbols.Universe
	Sink     diagnostics.Sink
	Log      *obslog.Logger
}

func New(reg *typesystem.Registry, uni *symbols.Universe, sink diagnostics.Sink, log *obslog.Logger) *Evaluator {
	if log == nil {
		log = obslog.NewNop()
	}
	return &Evaluator{Registry: reg, Universe: uni, Sink: sink, Log: log}
}

// Eval folds expr, evaluated in scope, into a constval.Value. On Reported
// it has already emitted a diagnostic at expr's span; callers must not
// emit a second one for the same failure.
func (e *Evaluator) Eval(expr ast.Expression, scope typesystem.ScopeID) (constval.Value, Outcome) {
	switch n := expr.(type) {
	case *ast.IntLiteral:
		return e.evalIntLiteral(n)
	case *ast.FloatLiteral:
		return e.evalFloatLiteral(n)
	case *ast.RationalLiteral:
		return e.evalRationalLiteral(n)
	case *ast.BoolLiteral:
		return constval.Bool(e.Registry.MustBuiltin("bool"), n.Value), OK
	case *ast.CharLiteral:
		return constval.Char(e.Registry.MustBuiltin("char"), n.Value), OK
	case *ast.StringLiteral:
		return e.evalStringLiteral(n)
	case *ast.Identifier:
		return e.evalIdentifier(n, scope)
	case *ast.MemberExpr:
		return e.evalMember(n, scope)
	case *ast.BinaryExpr:
		return e.evalBinary(n, scope)
	case *ast.UnaryExpr:
		return e.evalUnary(n, scope)
	case *ast.AsExpr:
		return e.evalAs(n, scope)
	case *ast.TupleExpr:
		return e.evalSequence(n, n.Elements, scope)
	case *ast.ArrayExpr:
		return e.evalSequence(n, n.Elements, scope)
	case *ast.IndexExpr:
		return e.evalIndex(n, scope)
	default:
		return e.reject(expr, "expression form is not permitted in a constant context")
	}
}

func (e *Evaluator) reject(expr ast.Expression, why string) (constval.Value, Outcome) {
	e.report(expr, diagnostics.ErrNonConstantOperand, why)
	return constval.Value{}, Reported
}

func (e *Evaluator) report(expr ast.Expression, code diagnostics.ErrorCode, msg string) {
	e.Sink.Report(diagnostics.NewError(code, expr.Span(), "%s", msg).Diagnostic)
	expr.Annotation().Invalid = true
}

func (e *Evaluator) evalIntLiteral(n *ast.IntLiteral) (constval.Value, Outcome) {
	v, bits, signed, ok := parseIntLexeme(n.Lexeme)
	if !ok {
		return e.reject(n, "malformed integer literal")
	}
	iv := numeric.NewInt(bits, signed, v)
	t := e.Registry.MustBuiltin(builtinIntName(bits, signed))
	return constval.IntVal(t, iv), OK
}

func (e *Evaluator) evalFloatLiteral(n *ast.FloatLiteral) (constval.Value, Outcome) {
	f, ok := parseFloatLexeme(n.Lexeme)
	if !ok {
		return e.reject(n, "malformed float literal")
	}
	fv := numeric.NewFloatFromFloat64(64, f)
	return constval.FloatVal(e.Registry.MustBuiltin("f64"), fv), OK
}

func (e *Evaluator) evalRationalLiteral(n *ast.RationalLiteral) (constval.Value, Outcome) {
	num, den, ok := parseRationalLexeme(n.Lexeme)
	if !ok {
		return e.reject(n, "malformed rational literal")
	}
	rv := numeric.RationalFromInt(64, num, den)
	return constval.RatVal(e.Registry.MustBuiltin("r64"), rv), OK
}

func (e *Evaluator) evalStringLiteral(n *ast.StringLiteral) (constval.Value, Outcome) {
	if n.Owned {
		return constval.Str(e.Registry.MustBuiltin("string"), n.Value), OK
	}
	return constval.Chars(e.Registry.MustBuiltin("chars"), []rune(n.Value)), OK
}

// evalIdentifier resolves n against scope; only a constant (or generic
// const parameter, which yields NeedsGeneric until substituted) may
// appear in constant context (spec.md §4.3 rejects "variable reads").
func (e *Evaluator) evalIdentifier(n *ast.Identifier, scope typesystem.ScopeID) (constval.Value, Outcome) {
	declID, ok := e.Universe.Lookup(scope, n.Name)
	if !ok {
		suggestions := symbols.Similars(e.Universe, scope, n.Name, config.MaxSimilarSuggestions, config.MaxSimilarEditDistance)
		e.Sink.Report(diagnostics.NewError(diagnostics.ErrUnknownIdentifier, n.Span(), "undefined identifier: %s", n.Name).
			WithSuggestions(suggestions...).Diagnostic)
		n.Annotation().Invalid = true
		return constval.Value{}, Reported
	}
	n.Annotation().ReferencedDecl = declID
	decl := e.Universe.Decl(declID)
	if decl.Kind == symbols.DeclGenericConstParam && decl.Value == nil {
		return constval.Value{}, NeedsGeneric
	}
	if !decl.Kind.IsConstantKind() {
		return e.reject(n, "not a constant: "+n.Name)
	}
	if decl.Value == nil {
		return e.reject(n, "constant has no evaluated value yet: "+n.Name)
	}
	return *decl.Value, OK
}

// evalMember handles compile-time type metadata access: `T.BITS`,
// `T.MIN`, `T.MAX`, `f32.INFINITY`, `f32.NAN` (spec.md §4.3).
func (e *Evaluator) evalMember(n *ast.MemberExpr, scope typesystem.ScopeID) (constval.Value, Outcome) {
	typeName, isTypeRef := typeNameOf(n.Target)
	if !isTypeRef {
		return e.reject(n, "member access on a non-type value is not constant-evaluable")
	}
	t, ok := e.Registry.Builtin(typeName)
	if !ok {
		return e.reject(n, "unknown type in constant metadata access: "+typeName)
	}
	v, outcome := evalTypeMetadata(e.Registry, t, n.Name, n)
	if outcome == Reported {
		e.report(n, diagnostics.ErrUnknownMember, "unknown type metadata member: "+typeName+"."+n.Name)
	}
	return v, outcome
}

func typeNameOf(expr ast.Expression) (string, bool) {
	id, ok := expr.(*ast.Identifier)
	if !ok {
		return "", false
	}
	return id.Name, true
}

func (e *Evaluator) evalSequence(origin ast.Expression, elems []ast.Expression, scope typesystem.ScopeID) (constval.Value, Outcome) {
	vals := make([]constval.Value, 0, len(elems))
	for _, el := range elems {
		v, outcome := e.Eval(el, scope)
		if outcome != OK {
			return constval.Value{}, outcome
		}
		vals = append(vals, v)
	}
	return constval.Sequence(e.Registry.MustBuiltin("unit"), vals), OK
}

func (e *Evaluator) evalIndex(n *ast.IndexExpr, scope typesystem.ScopeID) (constval.Value, Outcome) {
	target, outcome := e.Eval(n.Target, scope)
	if outcome != OK {
		return constval.Value{}, outcome
	}
	idxVal, outcome := e.Eval(n.Index, scope)
	if outcome != OK {
		return constval.Value{}, outcome
	}
	if target.Kind != constval.KindSequence || idxVal.Kind != constval.KindInt {
		return e.reject(n, "index target/index must be a constant sequence and integer")
	}
	i := idxVal.IntVal.Value.Int64()
	if i < 0 || int(i) >= len(target.SeqVal) {
		return e.reject(n, "constant index out of bounds")
	}
	return target.SeqVal[i], OK
}
