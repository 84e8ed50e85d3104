package subst

import (
	"math/big"
	"testing"

	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/constval"
	"github.com/nemesis-lang/nsc/internal/constval/numeric"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

func TestExprSubstitutesBoundTypeIdentifierUnchanged(t *testing.T) {
	// An Identifier node is only ever rewritten when bound to a constant;
	// a type-parameter name flowing through an expression position (e.g.
	// a bare reference to it, not a type expression) is left as a clone.
	id := &ast.Identifier{Name: "n"}
	out := Expr(id, Bindings{"n": {Type: typesystem.Integer{Bits: 32, Signed: true}}})
	clone, ok := out.(*ast.Identifier)
	if !ok || clone.Name != "n" {
		t.Fatalf("expected a cloned identifier named n, got %#v", out)
	}
	if clone == id {
		t.Fatalf("expected a distinct clone, not the original node")
	}
}

func TestExprRewritesBoundConstantIdentifierToLiteral(t *testing.T) {
	v := constval.IntVal(typesystem.Integer{Bits: 32, Signed: true}, numeric.NewInt(32, true, big.NewInt(7)))
	b := Bindings{"N": {Const: &v}}
	out := Expr(&ast.Identifier{Name: "N"}, b)
	lit, ok := out.(*ast.IntLiteral)
	if !ok {
		t.Fatalf("expected an IntLiteral, got %#v", out)
	}
	if lit.Lexeme != "7i32" {
		t.Fatalf("expected lexeme 7i32, got %q", lit.Lexeme)
	}
}

func TestExprClonesBinaryExprRecursively(t *testing.T) {
	bin := &ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.IntLiteral{Lexeme: "1"}, Right: &ast.IntLiteral{Lexeme: "2"}}
	out := Expr(bin, Bindings{})
	clone, ok := out.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected a BinaryExpr clone, got %#v", out)
	}
	if clone == bin || clone.Left == bin.Left {
		t.Fatalf("expected a deep clone, not shared nodes")
	}
	if clone.Left.(*ast.IntLiteral).Lexeme != "1" || clone.Right.(*ast.IntLiteral).Lexeme != "2" {
		t.Fatalf("expected operand lexemes preserved, got %#v", clone)
	}
}

func TestTypeRewritesBoundNamedTypeExpr(t *testing.T) {
	b := Bindings{"T": {Type: typesystem.Integer{Bits: 64, Signed: true}}}
	out := Type(&ast.NamedTypeExpr{Name: "T"}, b)
	named, ok := out.(*ast.NamedTypeExpr)
	if !ok || named.Name != "i64" {
		t.Fatalf("expected NamedTypeExpr renamed to i64, got %#v", out)
	}
}

func TestTypeLeavesUnboundNamedTypeExprNameUnchanged(t *testing.T) {
	out := Type(&ast.NamedTypeExpr{Name: "Vector"}, Bindings{})
	named, ok := out.(*ast.NamedTypeExpr)
	if !ok || named.Name != "Vector" {
		t.Fatalf("expected Vector unchanged, got %#v", out)
	}
}

func TestArrayTypeSubstitutesParametricSizeToLiteral(t *testing.T) {
	v := constval.IntVal(typesystem.Integer{Bits: 32, Signed: true}, numeric.NewInt(32, true, big.NewInt(4)))
	b := Bindings{"N": {Const: &v}}
	arrType := &ast.ArrayTypeExpr{Elem: &ast.NamedTypeExpr{Name: "i32"}, Param: "N"}
	out := Type(arrType, b)
	arr, ok := out.(*ast.ArrayTypeExpr)
	if !ok {
		t.Fatalf("expected ArrayTypeExpr, got %#v", out)
	}
	if arr.Param != "" {
		t.Fatalf("expected Param cleared once resolved to a literal size, got %q", arr.Param)
	}
	sizeLit, ok := arr.Size.(*ast.IntLiteral)
	if !ok || sizeLit.Lexeme != "4i32" {
		t.Fatalf("expected array size literal 4i32, got %#v", arr.Size)
	}
}

func TestStmtClonesBlockStatementsDeeply(t *testing.T) {
	block := &ast.Block{Statements: []ast.Statement{
		&ast.ReturnStatement{Value: &ast.IntLiteral{Lexeme: "0"}},
	}}
	out := Stmt(block, Bindings{})
	clone, ok := out.(*ast.Block)
	if !ok || clone == block {
		t.Fatalf("expected a distinct Block clone, got %#v", out)
	}
	if len(clone.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(clone.Statements))
	}
}

func TestPatternClonesIdentifierPattern(t *testing.T) {
	p := &ast.IdentifierPattern{Name: "x"}
	out := Pattern(p, Bindings{})
	clone, ok := out.(*ast.IdentifierPattern)
	if !ok || clone == p || clone.Name != "x" {
		t.Fatalf("expected a distinct clone named x, got %#v", out)
	}
}

func TestDeclSubstitutesFunctionParamsAndResult(t *testing.T) {
	b := Bindings{"T": {Type: typesystem.Integer{Bits: 32, Signed: true}}}
	fn := &ast.FunctionDeclaration{
		Name: "identity",
		Params: []*ast.ParameterDeclaration{
			{Binding: &ast.IdentifierPattern{Name: "x"}, Type: &ast.NamedTypeExpr{Name: "T"}},
		},
		Result: &ast.NamedTypeExpr{Name: "T"},
		Body:   &ast.Block{Statements: []ast.Statement{&ast.ReturnStatement{Value: &ast.Identifier{Name: "x"}}}},
	}
	out := Decl(fn, b)
	clone, ok := out.(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected a FunctionDeclaration clone, got %#v", out)
	}
	if clone.Result.(*ast.NamedTypeExpr).Name != "i32" {
		t.Fatalf("expected result substituted to i32, got %#v", clone.Result)
	}
	if clone.Params[0].Type.(*ast.NamedTypeExpr).Name != "i32" {
		t.Fatalf("expected param type substituted to i32, got %#v", clone.Params[0].Type)
	}
}
