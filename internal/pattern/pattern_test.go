package pattern

import (
	"testing"

	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

var i32 = typesystem.Integer{Bits: 32, Signed: true}

func TestCheckIdentifierBindsScrutineeType(t *testing.T) {
	bindings, ok := Check(&ast.IdentifierPattern{Name: "x"}, i32, diagnostics.NewCollector())
	if !ok {
		t.Fatalf("expected identifier pattern to check ok")
	}
	if bindings["x"] != i32 {
		t.Fatalf("expected x bound to i32, got %v", bindings["x"])
	}
}

func TestCheckWildcardIntroducesNoBinding(t *testing.T) {
	bindings, ok := Check(&ast.WildcardPattern{}, i32, diagnostics.NewCollector())
	if !ok || len(bindings) != 0 {
		t.Fatalf("expected wildcard to bind nothing, got %v ok=%v", bindings, ok)
	}
}

func TestCheckTuplePatternArityMismatchReportsError(t *testing.T) {
	tup := typesystem.Tuple{Components: []typesystem.Type{i32, i32}}
	p := &ast.TuplePattern{Elements: []ast.Pattern{identPat("a")}}
	sink := diagnostics.NewCollector()
	_, ok := Check(p, tup, sink)
	if ok {
		t.Fatalf("expected arity mismatch to fail")
	}
	if !sink.HasErrors() {
		t.Fatalf("expected a diagnostic for the arity mismatch")
	}
}

func TestCheckTuplePatternBindsEachComponent(t *testing.T) {
	tup := typesystem.Tuple{Components: []typesystem.Type{i32, typesystem.Bool{}}}
	p := &ast.TuplePattern{Elements: []ast.Pattern{identPat("a"), identPat("b")}}
	bindings, ok := Check(p, tup, diagnostics.NewCollector())
	if !ok {
		t.Fatalf("expected tuple pattern to check ok")
	}
	if bindings["a"] != i32 {
		t.Fatalf("expected a bound to i32, got %v", bindings["a"])
	}
	if _, isBool := bindings["b"].(typesystem.Bool); !isBool {
		t.Fatalf("expected b bound to bool, got %v", bindings["b"])
	}
}

func TestCheckPathPatternAgainstVariant(t *testing.T) {
	v := typesystem.NewVariant("Option", []typesystem.VariantMember{
		{Name: "Some", Tuple: []typesystem.Type{i32}},
		{Name: "None"},
	}, 0)
	p := &ast.PathPattern{Path: []string{"Option", "Some"}, Tuple: []ast.Pattern{identPat("v")}}
	bindings, ok := Check(p, v, diagnostics.NewCollector())
	if !ok {
		t.Fatalf("expected variant-tag pattern to check ok")
	}
	if bindings["v"] != i32 {
		t.Fatalf("expected v bound to i32, got %v", bindings["v"])
	}
}

func TestCheckPathPatternUnknownMemberReportsError(t *testing.T) {
	v := typesystem.NewVariant("Option", []typesystem.VariantMember{{Name: "None"}}, 0)
	p := &ast.PathPattern{Path: []string{"Option", "Some"}}
	sink := diagnostics.NewCollector()
	_, ok := Check(p, v, sink)
	if ok || !sink.HasErrors() {
		t.Fatalf("expected unknown member to fail with a diagnostic")
	}
}

func TestCheckOrPatternRequiresSameBindingSet(t *testing.T) {
	v := typesystem.NewVariant("Shape", []typesystem.VariantMember{
		{Name: "Circle", Tuple: []typesystem.Type{i32}},
		{Name: "Square", Tuple: []typesystem.Type{typesystem.Bool{}}},
	}, 0)
	or := &ast.OrPattern{Alternatives: []ast.Pattern{
		&ast.PathPattern{Path: []string{"Shape", "Circle"}, Tuple: []ast.Pattern{identPat("n")}},
		&ast.PathPattern{Path: []string{"Shape", "Square"}, Tuple: []ast.Pattern{identPat("n")}},
	}}
	sink := diagnostics.NewCollector()
	_, ok := Check(or, v, sink)
	if ok {
		t.Fatalf("expected mismatched binding types across or-pattern alternatives to fail")
	}
}

func TestExhaustiveReportsMissingVariantMembers(t *testing.T) {
	v := typesystem.NewVariant("Option", []typesystem.VariantMember{
		{Name: "Some", Tuple: []typesystem.Type{i32}},
		{Name: "None"},
	}, 0)
	arms := []ast.Pattern{&ast.PathPattern{Path: []string{"Option", "Some"}, Tuple: []ast.Pattern{identPat("v")}}}
	ok, missing := Exhaustive(arms, false, v)
	if ok {
		t.Fatalf("expected non-exhaustive match")
	}
	if len(missing) != 1 || missing[0] != "None" {
		t.Fatalf("expected missing [None], got %v", missing)
	}
}

func TestExhaustiveWithCatchAllIsExhaustive(t *testing.T) {
	v := typesystem.NewVariant("Option", []typesystem.VariantMember{
		{Name: "Some", Tuple: []typesystem.Type{i32}},
		{Name: "None"},
	}, 0)
	arms := []ast.Pattern{
		&ast.PathPattern{Path: []string{"Option", "Some"}, Tuple: []ast.Pattern{identPat("v")}},
		&ast.WildcardPattern{},
	}
	ok, missing := Exhaustive(arms, false, v)
	if !ok || len(missing) != 0 {
		t.Fatalf("expected exhaustive match with a catch-all arm, got ok=%v missing=%v", ok, missing)
	}
}

func identPat(name string) *ast.IdentifierPattern { return &ast.IdentifierPattern{Name: name} }
