package workspace

import (
	"testing"

	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/config"
)

func unit(file, wsName string, kind ast.WorkspaceKind, uses ...string) *ast.SourceUnit {
	var decls []*ast.UseDeclaration
	for _, u := range uses {
		decls = append(decls, &ast.UseDeclaration{Path: []string{u}})
	}
	return &ast.SourceUnit{
		File:      file,
		Workspace: &ast.WorkspaceDirective{Kind: kind, Name: wsName},
		Uses:      decls,
	}
}

func TestBuildGroupsUnitsByWorkspaceName(t *testing.T) {
	units := []*ast.SourceUnit{
		unit("a.nms", "app", ast.WorkspaceApp),
		unit("b.nms", "app", ast.WorkspaceApp),
	}
	g, err := Build(units)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ws, ok := g.Workspaces["app"]
	if !ok {
		t.Fatalf("expected a workspace named app")
	}
	if len(ws.Units) != 2 {
		t.Fatalf("expected 2 units grouped into app, got %d", len(ws.Units))
	}
}

func TestBuildSkipsUnitsWithNoWorkspaceDirective(t *testing.T) {
	units := []*ast.SourceUnit{{File: "loose.nms"}}
	g, err := Build(units)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.Workspaces) != 0 {
		t.Fatalf("expected no workspaces, got %v", g.Workspaces)
	}
}

func TestBuildAutoImportsCoreForNonCoreWorkspaces(t *testing.T) {
	units := []*ast.SourceUnit{unit("a.nms", "app", ast.WorkspaceApp)}
	g, err := Build(units)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !contains(g.Workspaces["app"].Imports, config.CoreWorkspaceName) {
		t.Fatalf("expected app to auto-import core, got imports %v", g.Workspaces["app"].Imports)
	}
}

func TestBuildDoesNotSelfImportCore(t *testing.T) {
	units := []*ast.SourceUnit{unit("core.nms", config.CoreWorkspaceName, ast.WorkspaceLib)}
	g, err := Build(units)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if contains(g.Workspaces[config.CoreWorkspaceName].Imports, config.CoreWorkspaceName) {
		t.Fatalf("expected core to not import itself, got %v", g.Workspaces[config.CoreWorkspaceName].Imports)
	}
}

func TestBuildOrdersDependenciesBeforeDependents(t *testing.T) {
	units := []*ast.SourceUnit{
		unit("app.nms", "app", ast.WorkspaceApp, "mathlib"),
		unit("mathlib.nms", "mathlib", ast.WorkspaceLib),
	}
	g, err := Build(units)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	idxApp, idxMath := indexOf(g.Order, "app"), indexOf(g.Order, "mathlib")
	if idxApp < 0 || idxMath < 0 || idxMath > idxApp {
		t.Fatalf("expected mathlib before app in order, got %v", g.Order)
	}
}

func TestBuildOrderIsDeterministicAmongUnrelatedWorkspaces(t *testing.T) {
	units := []*ast.SourceUnit{
		unit("zeta.nms", "zeta", ast.WorkspaceLib),
		unit("alpha.nms", "alpha", ast.WorkspaceLib),
	}
	g, err := Build(units)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	idxAlpha, idxZeta := indexOf(g.Order, "alpha"), indexOf(g.Order, "zeta")
	if idxAlpha < 0 || idxZeta < 0 || idxAlpha > idxZeta {
		t.Fatalf("expected alphabetical tie-break alpha before zeta, got %v", g.Order)
	}
}

func TestBuildDetectsImportCycle(t *testing.T) {
	units := []*ast.SourceUnit{
		unit("a.nms", "a", ast.WorkspaceLib, "b"),
		unit("b.nms", "b", ast.WorkspaceLib, "a"),
	}
	_, err := Build(units)
	if err == nil {
		t.Fatalf("expected a cycle error")
	}
	if _, ok := err.(*CycleError); !ok {
		t.Fatalf("expected *CycleError, got %T", err)
	}
}

func TestBuildIgnoresImportsOutsideInputSet(t *testing.T) {
	units := []*ast.SourceUnit{unit("a.nms", "app", ast.WorkspaceApp, "external")}
	g, err := Build(units)
	if err != nil {
		t.Fatalf("did not expect an error for an import outside the input set: %v", err)
	}
	if len(g.Order) != 1 || g.Order[0] != "app" {
		t.Fatalf("expected order [app], got %v", g.Order)
	}
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}
