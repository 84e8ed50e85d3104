package checker

import (
	"testing"

	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
)

// Small hand-built AST constructors. This package has no lexer/parser of
// its own (spec.md §1: those are external collaborators), so every test
// tree is built directly rather than parsed from source text.

func identPat(name string) *ast.IdentifierPattern { return &ast.IdentifierPattern{Name: name} }

func namedType(name string) *ast.NamedTypeExpr { return &ast.NamedTypeExpr{Name: name} }

func intLit(lexeme string) *ast.IntLiteral { return &ast.IntLiteral{Lexeme: lexeme} }

func block(stmts ...ast.Statement) *ast.Block { return &ast.Block{Statements: stmts} }

func ret(v ast.Expression) *ast.ReturnStatement { return &ast.ReturnStatement{Value: v} }

func mainFn(result *ast.NamedTypeExpr, body *ast.Block) *ast.FunctionDeclaration {
	return &ast.FunctionDeclaration{Name: "main", Result: result, Body: body}
}

func appUnit(file, wsName string, top ...ast.Declaration) *ast.SourceUnit {
	return &ast.SourceUnit{
		File:      file,
		Workspace: &ast.WorkspaceDirective{Kind: ast.WorkspaceApp, Name: wsName},
		TopLevel:  top,
	}
}

func libUnit(file, wsName string, top ...ast.Declaration) *ast.SourceUnit {
	return &ast.SourceUnit{
		File:      file,
		Workspace: &ast.WorkspaceDirective{Kind: ast.WorkspaceLib, Name: wsName},
		TopLevel:  top,
	}
}

func runUnits(t *testing.T, units []*ast.SourceUnit) (Result, []diagnostics.Diagnostic) {
	t.Helper()
	sink := diagnostics.NewCollector()
	c := New(Config{Sink: sink})
	res, err := c.Run(units)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res, sink.Diagnostics
}

func hasCode(diags []diagnostics.Diagnostic, code diagnostics.ErrorCode) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func errorCodes(diags []diagnostics.Diagnostic) []diagnostics.ErrorCode {
	var codes []diagnostics.ErrorCode
	for _, d := range diags {
		if d.Severity == diagnostics.Error {
			codes = append(codes, d.Code)
		}
	}
	return codes
}

func TestValidMainIsIdentifiedAsEntryPoint(t *testing.T) {
	fn := mainFn(namedType("i32"), block(ret(intLit("0"))))
	unit := appUnit("main.nms", "app", fn)

	res, diags := runUnits(t, []*ast.SourceUnit{unit})
	if codes := errorCodes(diags); len(codes) != 0 {
		t.Fatalf("expected no errors, got: %v", codes)
	}
	if res.EntryPoint == nil {
		t.Fatalf("expected an entry point to be identified")
	}
	if res.EntryPoint.Name != "main" {
		t.Fatalf("expected entry point named main, got %s", res.EntryPoint.Name)
	}
}

func TestAppWorkspaceWithoutMainIsAnError(t *testing.T) {
	other := &ast.FunctionDeclaration{Name: "helper", Result: namedType("i32"), Body: block(ret(intLit("1")))}
	unit := appUnit("main.nms", "app", other)

	_, diags := runUnits(t, []*ast.SourceUnit{unit})
	if !hasCode(diags, diagnostics.ErrNoEntryPoint) {
		t.Fatalf("expected %s, got: %v", diagnostics.ErrNoEntryPoint, errorCodes(diags))
	}
}

func TestDuplicateMainIsAnError(t *testing.T) {
	fn1 := mainFn(namedType("i32"), block(ret(intLit("0"))))
	fn2 := mainFn(namedType("i32"), block(ret(intLit("0"))))
	unit := appUnit("main.nms", "app", fn1, fn2)

	_, diags := runUnits(t, []*ast.SourceUnit{unit})
	if !hasCode(diags, diagnostics.ErrMultipleEntryPoints) {
		t.Fatalf("expected %s, got: %v", diagnostics.ErrMultipleEntryPoints, errorCodes(diags))
	}
}

func TestLibWorkspaceIsNeverCheckedForMain(t *testing.T) {
	fn := &ast.FunctionDeclaration{Name: "helper", Result: namedType("i32"), Body: block(ret(intLit("1")))}
	unit := libUnit("helper.nms", "helpers", fn)

	res, diags := runUnits(t, []*ast.SourceUnit{unit})
	if codes := errorCodes(diags); len(codes) != 0 {
		t.Fatalf("expected no errors, got: %v", codes)
	}
	if res.EntryPoint != nil {
		t.Fatalf("expected no entry point in a lib-only graph")
	}
}

func TestReturnTypeMismatchIsReported(t *testing.T) {
	fn := mainFn(namedType("i32"), block(ret(&ast.BoolLiteral{Value: true})))
	unit := appUnit("main.nms", "app", fn)

	_, diags := runUnits(t, []*ast.SourceUnit{unit})
	if !hasCode(diags, diagnostics.ErrReturnTypeMismatch) {
		t.Fatalf("expected %s, got: %v", diagnostics.ErrReturnTypeMismatch, errorCodes(diags))
	}
}

func TestImmutableLocalCannotBeAssigned(t *testing.T) {
	// val x = 0; x = 1; return 0
	decl := &ast.VariableDeclaration{Name: "x", Value: intLit("0")}
	assign := &ast.AssignStatement{Target: &ast.Identifier{Name: "x"}, Value: intLit("1")}
	fn := mainFn(namedType("i32"), block(decl, assign, ret(intLit("0"))))
	unit := appUnit("main.nms", "app", fn)

	_, diags := runUnits(t, []*ast.SourceUnit{unit})
	if !hasCode(diags, diagnostics.ErrImmutableMutation) {
		t.Fatalf("expected %s, got: %v", diagnostics.ErrImmutableMutation, errorCodes(diags))
	}
}

func TestMutableLocalCanBeAssigned(t *testing.T) {
	// var x = 0; x = 1; return x
	decl := &ast.VariableDeclaration{Name: "x", Value: intLit("0"), Mutable: true}
	assign := &ast.AssignStatement{Target: &ast.Identifier{Name: "x"}, Value: intLit("1")}
	fn := mainFn(namedType("i32"), block(decl, assign, ret(&ast.Identifier{Name: "x"})))
	unit := appUnit("main.nms", "app", fn)

	_, diags := runUnits(t, []*ast.SourceUnit{unit})
	if codes := errorCodes(diags); len(codes) != 0 {
		t.Fatalf("expected no errors, got: %v", codes)
	}
}

func TestUnusedImportIsWarned(t *testing.T) {
	libFn := &ast.FunctionDeclaration{Name: "double", Params: []*ast.ParameterDeclaration{
		{Binding: identPat("n"), Type: namedType("i32")},
	}, Result: namedType("i32"), Body: block(ret(&ast.Identifier{Name: "n"}))}
	lib := libUnit("mathlib.nms", "mathlib", libFn)

	use := &ast.UseDeclaration{Path: []string{"mathlib"}}
	fn := mainFn(namedType("i32"), block(ret(intLit("0"))))
	app := &ast.SourceUnit{
		File:      "main.nms",
		Workspace: &ast.WorkspaceDirective{Kind: ast.WorkspaceApp, Name: "app"},
		Uses:      []*ast.UseDeclaration{use},
		TopLevel:  []ast.Declaration{fn},
	}

	_, diags := runUnits(t, []*ast.SourceUnit{lib, app})
	found := false
	for _, d := range diags {
		if d.Code == diagnostics.ErrUnusedImport && d.Severity == diagnostics.Warning {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an unused-import warning, got: %v", diags)
	}
}

func TestSelfReferentialAliasIsReportedAsCyclic(t *testing.T) {
	// type Node is Node
	alias := &ast.TypeDeclaration{Name: "Node", Kind: ast.TypeDeclAlias, AliasTarget: namedType("Node")}
	fn := mainFn(namedType("i32"), block(ret(intLit("0"))))
	unit := appUnit("main.nms", "app", alias, fn)

	_, diags := runUnits(t, []*ast.SourceUnit{unit})
	if !hasCode(diags, diagnostics.ErrCyclicDefinition) {
		t.Fatalf("expected %s, got: %v", diagnostics.ErrCyclicDefinition, errorCodes(diags))
	}
}

func TestMutuallyRecursiveAliasesAreReportedAsCyclic(t *testing.T) {
	// type A is B; type B is A
	a := &ast.TypeDeclaration{Name: "A", Kind: ast.TypeDeclAlias, AliasTarget: namedType("B")}
	b := &ast.TypeDeclaration{Name: "B", Kind: ast.TypeDeclAlias, AliasTarget: namedType("A")}
	fn := mainFn(namedType("i32"), block(ret(intLit("0"))))
	unit := appUnit("main.nms", "app", a, b, fn)

	_, diags := runUnits(t, []*ast.SourceUnit{unit})
	if !hasCode(diags, diagnostics.ErrCyclicDefinition) {
		t.Fatalf("expected %s, got: %v", diagnostics.ErrCyclicDefinition, errorCodes(diags))
	}
}

func TestDirectlySelfReferentialRecordIsReportedAsCyclic(t *testing.T) {
	// record Node { next: Node } -- no pointer indirection
	node := &ast.TypeDeclaration{
		Name: "Node",
		Kind: ast.TypeDeclRecord,
		Fields: []*ast.FieldDeclaration{
			{Name: "next", Type: namedType("Node")},
		},
	}
	fn := mainFn(namedType("i32"), block(ret(intLit("0"))))
	unit := appUnit("main.nms", "app", node, fn)

	_, diags := runUnits(t, []*ast.SourceUnit{unit})
	if !hasCode(diags, diagnostics.ErrCyclicDefinition) {
		t.Fatalf("expected %s, got: %v", diagnostics.ErrCyclicDefinition, errorCodes(diags))
	}
}

func TestIndirectRecordThroughPointerIsNotCyclic(t *testing.T) {
	// record Node { next: *Node } -- a pointer indirection breaks the cycle
	node := &ast.TypeDeclaration{
		Name: "Node",
		Kind: ast.TypeDeclRecord,
		Fields: []*ast.FieldDeclaration{
			{Name: "next", Type: &ast.PointerTypeExpr{Pointee: namedType("Node")}},
		},
	}
	fn := mainFn(namedType("i32"), block(ret(intLit("0"))))
	unit := appUnit("main.nms", "app", node, fn)

	_, diags := runUnits(t, []*ast.SourceUnit{unit})
	if hasCode(diags, diagnostics.ErrCyclicDefinition) {
		t.Fatalf("did not expect %s for a pointer-indirected record, got: %v", diagnostics.ErrCyclicDefinition, errorCodes(diags))
	}
}

func TestArrayLiteralAssignableToSliceVariable(t *testing.T) {
	// val s: [i32] = [1, 2, 3]
	decl := &ast.VariableDeclaration{
		Name: "s",
		Type: &ast.SliceTypeExpr{Elem: namedType("i32")},
		Value: &ast.ArrayExpr{Elements: []ast.Expression{intLit("1"), intLit("2"), intLit("3")}},
	}
	fn := mainFn(namedType("i32"), block(decl, ret(intLit("0"))))
	unit := appUnit("main.nms", "app", fn)

	_, diags := runUnits(t, []*ast.SourceUnit{unit})
	if codes := errorCodes(diags); len(codes) != 0 {
		t.Fatalf("expected the array literal to be array-to-slice coercible, got errors: %v", codes)
	}
}

func TestArrayLiteralAssignableToPointerVariable(t *testing.T) {
	// val p: *i32 = [1, 2, 3]
	decl := &ast.VariableDeclaration{
		Name: "p",
		Type: &ast.PointerTypeExpr{Pointee: namedType("i32")},
		Value: &ast.ArrayExpr{Elements: []ast.Expression{intLit("1"), intLit("2"), intLit("3")}},
	}
	fn := mainFn(namedType("i32"), block(decl, ret(intLit("0"))))
	unit := appUnit("main.nms", "app", fn)

	_, diags := runUnits(t, []*ast.SourceUnit{unit})
	if codes := errorCodes(diags); len(codes) != 0 {
		t.Fatalf("expected the array literal to be array-to-pointer coercible, got errors: %v", codes)
	}
}

func TestQualifiedPathUseMarksImportUsed(t *testing.T) {
	libFn := &ast.FunctionDeclaration{Name: "double", Params: []*ast.ParameterDeclaration{
		{Binding: identPat("n"), Type: namedType("i32")},
	}, Result: namedType("i32"), Body: block(ret(&ast.Identifier{Name: "n"}))}
	lib := libUnit("mathlib.nms", "mathlib", libFn)

	use := &ast.UseDeclaration{Path: []string{"mathlib"}}
	call := &ast.CallExpr{
		Callee: &ast.PathExpr{Components: []string{"mathlib", "double"}},
		Args:   []ast.Expression{intLit("1")},
	}
	fn := mainFn(namedType("i32"), block(ret(call)))
	app := &ast.SourceUnit{
		File:      "main.nms",
		Workspace: &ast.WorkspaceDirective{Kind: ast.WorkspaceApp, Name: "app"},
		Uses:      []*ast.UseDeclaration{use},
		TopLevel:  []ast.Declaration{fn},
	}

	_, diags := runUnits(t, []*ast.SourceUnit{lib, app})
	for _, d := range diags {
		if d.Code == diagnostics.ErrUnusedImport {
			t.Fatalf("did not expect an unused-import warning when the import is used through a qualified path, got: %v", diags)
		}
	}
}
