package nsc

import (
	"testing"

	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
)

func namedType(name string) *ast.NamedTypeExpr { return &ast.NamedTypeExpr{Name: name} }

func intLit(lexeme string) *ast.IntLiteral { return &ast.IntLiteral{Lexeme: lexeme} }

func TestCheckIdentifiesEntryPointWithDefaultOptions(t *testing.T) {
	main := &ast.FunctionDeclaration{
		Name:   "main",
		Result: namedType("i32"),
		Body:   &ast.Block{Statements: []ast.Statement{&ast.ReturnStatement{Value: intLit("0")}}},
	}
	unit := &ast.SourceUnit{
		File:      "main.nms",
		Workspace: &ast.WorkspaceDirective{Kind: ast.WorkspaceApp, Name: "app"},
		TopLevel:  []ast.Declaration{main},
	}

	res, err := Check([]*ast.SourceUnit{unit}, Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	for _, d := range res.Diagnostics {
		if d.Severity == diagnostics.Error {
			t.Fatalf("unexpected error diagnostic: %v", d)
		}
	}
	if res.EntryPoint == nil || res.EntryPoint.Name != "main" {
		t.Fatalf("expected main identified as entry point, got %#v", res.EntryPoint)
	}
	if res.Graph == nil || len(res.Graph.Order) == 0 {
		t.Fatalf("expected a non-empty workspace graph, got %#v", res.Graph)
	}
}

func TestCheckReportsDiagnosticsThroughDefaultCollector(t *testing.T) {
	other := &ast.FunctionDeclaration{Name: "helper", Result: namedType("i32"), Body: &ast.Block{
		Statements: []ast.Statement{&ast.ReturnStatement{Value: intLit("1")}},
	}}
	unit := &ast.SourceUnit{
		File:      "main.nms",
		Workspace: &ast.WorkspaceDirective{Kind: ast.WorkspaceApp, Name: "app"},
		TopLevel:  []ast.Declaration{other},
	}

	res, err := Check([]*ast.SourceUnit{unit}, Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	found := false
	for _, d := range res.Diagnostics {
		if d.Code == diagnostics.ErrNoEntryPoint {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s among diagnostics, got %v", diagnostics.ErrNoEntryPoint, res.Diagnostics)
	}
}

func TestCheckWithExternalSinkLeavesResultDiagnosticsEmpty(t *testing.T) {
	main := &ast.FunctionDeclaration{
		Name:   "main",
		Result: namedType("i32"),
		Body:   &ast.Block{Statements: []ast.Statement{&ast.ReturnStatement{Value: intLit("0")}}},
	}
	unit := &ast.SourceUnit{
		File:      "main.nms",
		Workspace: &ast.WorkspaceDirective{Kind: ast.WorkspaceApp, Name: "app"},
		TopLevel:  []ast.Declaration{main},
	}

	sink := diagnostics.NewCollector()
	res, err := Check([]*ast.SourceUnit{unit}, Options{Sink: sink})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	// Diagnostics were routed to the caller's own sink, so Result carries
	// none of its own — the caller is expected to inspect sink directly.
	if len(res.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics on Result when an external sink is supplied, got %v", res.Diagnostics)
	}
	for _, d := range sink.Diagnostics {
		if d.Severity == diagnostics.Error {
			t.Fatalf("unexpected error diagnostic: %v", d)
		}
	}
}
