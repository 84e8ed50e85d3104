package evalconst

import (
	"testing"

	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/constval"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
	"github.com/nemesis-lang/nsc/internal/symbols"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

func newEvaluator() (*Evaluator, *diagnostics.Collector) {
	sink := diagnostics.NewCollector()
	uni := symbols.NewUniverse()
	return New(typesystem.NewRegistry(), uni, sink, nil), sink
}

func TestEvalIntLiteral(t *testing.T) {
	e, sink := newEvaluator()
	v, outcome := e.Eval(&ast.IntLiteral{Lexeme: "5"}, e.Universe.Root())
	if outcome != OK {
		t.Fatalf("expected OK, got %v (diags: %v)", outcome, sink.Diagnostics)
	}
	if v.Kind != constval.KindInt {
		t.Fatalf("expected an int value, got %v", v.Kind)
	}
}

func TestEvalIntAdditionOverflows(t *testing.T) {
	e, sink := newEvaluator()
	add := &ast.BinaryExpr{
		Op:    ast.OpAdd,
		Left:  &ast.IntLiteral{Lexeme: "127i8"},
		Right: &ast.IntLiteral{Lexeme: "1i8"},
	}
	_, outcome := e.Eval(add, e.Universe.Root())
	if outcome != Reported {
		t.Fatalf("expected overflow to be reported, got %v", outcome)
	}
	if !sink.HasErrors() {
		t.Fatalf("expected an overflow diagnostic")
	}
	errs := sink.Errors()
	if len(errs) != 1 || errs[0].Code != diagnostics.ErrOverflow {
		t.Fatalf("expected a single %s diagnostic, got %v", diagnostics.ErrOverflow, errs)
	}
}

func TestEvalIntAdditionWithinRange(t *testing.T) {
	e, sink := newEvaluator()
	add := &ast.BinaryExpr{
		Op:    ast.OpAdd,
		Left:  &ast.IntLiteral{Lexeme: "2i32"},
		Right: &ast.IntLiteral{Lexeme: "3i32"},
	}
	v, outcome := e.Eval(add, e.Universe.Root())
	if outcome != OK {
		t.Fatalf("expected OK, got %v (diags: %v)", outcome, sink.Diagnostics)
	}
	if v.IntVal.Value.Int64() != 5 {
		t.Fatalf("expected 5, got %v", v.IntVal.Value)
	}
}

func TestEvalSignedUnsignedEqualityIsRejected(t *testing.T) {
	e, sink := newEvaluator()
	eq := &ast.BinaryExpr{
		Op:    ast.OpEq,
		Left:  &ast.IntLiteral{Lexeme: "1i32"},
		Right: &ast.IntLiteral{Lexeme: "1u32"},
	}
	_, outcome := e.Eval(eq, e.Universe.Root())
	if outcome != Reported {
		t.Fatalf("expected signed/unsigned equality to be rejected, got %v", outcome)
	}
	if !sink.HasErrors() {
		t.Fatalf("expected a diagnostic for the mismatch")
	}
}

func TestEvalStringConcatenation(t *testing.T) {
	e, sink := newEvaluator()
	concat := &ast.BinaryExpr{
		Op:    ast.OpAdd,
		Left:  &ast.StringLiteral{Value: "foo", Owned: true},
		Right: &ast.StringLiteral{Value: "bar", Owned: true},
	}
	v, outcome := e.Eval(concat, e.Universe.Root())
	if outcome != OK {
		t.Fatalf("expected OK, got %v (diags: %v)", outcome, sink.Diagnostics)
	}
	if v.StrVal != "foobar" {
		t.Fatalf("expected foobar, got %q", v.StrVal)
	}
}

func TestEvalIdentifierResolvesConstant(t *testing.T) {
	e, sink := newEvaluator()
	scope := e.Universe.Root()

	val, outcome := e.Eval(&ast.IntLiteral{Lexeme: "7"}, scope)
	if outcome != OK {
		t.Fatalf("expected OK folding the literal, got %v (diags: %v)", outcome, sink.Diagnostics)
	}

	id := e.Universe.NewDecl(symbols.DeclConstant, "x", scope, &ast.IntLiteral{Lexeme: "7"})
	e.Universe.Decl(id).Value = &val
	e.Universe.Add(scope, id, symbols.NoDecl)

	v, outcome := e.Eval(&ast.Identifier{Name: "x"}, scope)
	if outcome != OK {
		t.Fatalf("expected OK, got %v", outcome)
	}
	if v.IntVal.Value.Int64() != 7 {
		t.Fatalf("expected 7, got %v", v.IntVal.Value)
	}
}

func TestEvalUnknownIdentifierIsReported(t *testing.T) {
	e, sink := newEvaluator()
	_, outcome := e.Eval(&ast.Identifier{Name: "nope"}, e.Universe.Root())
	if outcome != Reported {
		t.Fatalf("expected Reported, got %v", outcome)
	}
	if !hasCode(sink, diagnostics.ErrUnknownIdentifier) {
		t.Fatalf("expected %s, got %v", diagnostics.ErrUnknownIdentifier, sink.Diagnostics)
	}
}

func hasCode(sink *diagnostics.Collector, code diagnostics.ErrorCode) bool {
	for _, d := range sink.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}
