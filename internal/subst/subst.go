// Package subst is the substitution engine spec.md §4.4 describes:
// given a root syntax subtree, a binding map from generic parameter name
// to a concrete type or constant argument, it produces a cloned subtree
// with fresh annotation slots whose identifier and type-expression nodes
// referring to a bound parameter are rewritten to the argument. It does
// not re-check the clone — the checker re-runs pass 2/3 on the result,
// per spec.md §4.5 step 3.
//
// Dispatch follows the same tagged-type-switch idiom evalconst and the
// checker use (spec.md §9's visitor-elimination redesign), grounded on
// the source's own recursive-rebuild-by-type-switch substitution
// (typesystem.ReplaceTCon): one case per concrete node type, recursing
// into children and stamping the original span onto the freshly built
// replacement via ast.Spannable rather than copying the embedded base
// directly (base itself is unexported, so a clone can only carry the
// original position forward through that exported hook).
package subst

import (
	"fmt"
	"math/big"

	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/constval"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// Binding is one entry of the generic argument map: exactly one of Type
// or Const is set (spec.md §4.1's "type or constant value").
type Binding struct {
	Type  typesystem.Type
	Const *constval.Value
}

// Bindings maps a generic parameter's declared name to its bound
// argument.
type Bindings map[string]Binding

// at stamps orig's span onto a freshly built node and returns it, the
// one place this package ever touches a node's position.
func at[T ast.Spannable](n T, orig ast.Node) T {
	n.SetSpan(orig.Span())
	return n
}

// Expr substitutes expr, returning a clone with bound identifiers
// rewritten per the argument map.
func Expr(expr ast.Expression, b Bindings) ast.Expression {
	if expr == nil {
		return nil
	}
	switch n := expr.(type) {
	case *ast.Identifier:
		if bound, ok := b[n.Name]; ok && bound.Const != nil {
			return literalFromConst(n, *bound.Const)
		}
		return at(&ast.Identifier{Name: n.Name}, n)
	case *ast.PathExpr:
		return at(&ast.PathExpr{Components: append([]string(nil), n.Components...)}, n)
	case *ast.IntLiteral:
		return at(&ast.IntLiteral{Lexeme: n.Lexeme}, n)
	case *ast.FloatLiteral:
		return at(&ast.FloatLiteral{Lexeme: n.Lexeme}, n)
	case *ast.RationalLiteral:
		return at(&ast.RationalLiteral{Lexeme: n.Lexeme}, n)
	case *ast.BoolLiteral:
		return at(&ast.BoolLiteral{Value: n.Value}, n)
	case *ast.CharLiteral:
		return at(&ast.CharLiteral{Value: n.Value}, n)
	case *ast.StringLiteral:
		return at(&ast.StringLiteral{Value: n.Value, Owned: n.Owned}, n)
	case *ast.BinaryExpr:
		return at(&ast.BinaryExpr{Op: n.Op, Left: Expr(n.Left, b), Right: Expr(n.Right, b)}, n)
	case *ast.UnaryExpr:
		return at(&ast.UnaryExpr{Op: n.Op, Operand: Expr(n.Operand, b)}, n)
	case *ast.AsExpr:
		return at(&ast.AsExpr{Operand: Expr(n.Operand, b), Target: Type(n.Target, b)}, n)
	case *ast.MemberExpr:
		return at(&ast.MemberExpr{Target: Expr(n.Target, b), Name: n.Name}, n)
	case *ast.IndexExpr:
		return at(&ast.IndexExpr{Target: Expr(n.Target, b), Index: Expr(n.Index, b)}, n)
	case *ast.TupleExpr:
		return at(&ast.TupleExpr{Elements: exprSlice(n.Elements, b)}, n)
	case *ast.ArrayExpr:
		return at(&ast.ArrayExpr{Elements: exprSlice(n.Elements, b)}, n)
	case *ast.RecordExpr:
		fields := make([]ast.RecordFieldInit, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ast.RecordFieldInit{Name: f.Name, Value: Expr(f.Value, b)}
		}
		return at(&ast.RecordExpr{TypeName: n.TypeName, Fields: fields, Spread: Expr(n.Spread, b)}, n)
	case *ast.CallExpr:
		return at(&ast.CallExpr{Callee: Expr(n.Callee, b), Args: exprSlice(n.Args, b)}, n)
	case *ast.GenericInstExpr:
		return at(&ast.GenericInstExpr{
			Callee:    Expr(n.Callee, b),
			TypeArgs:  typeSlice(n.TypeArgs, b),
			ConstArgs: exprSlice(n.ConstArgs, b),
		}, n)
	case *ast.LambdaExpr:
		params := make([]*ast.ParameterDeclaration, len(n.Params))
		for i, p := range n.Params {
			params[i] = paramDecl(p, b)
		}
		return at(&ast.LambdaExpr{Params: params, Result: Type(n.Result, b), Body: Stmt(n.Body, b)}, n)
	case *ast.RangeExpr:
		return at(&ast.RangeExpr{Low: Expr(n.Low, b), High: Expr(n.High, b), Inclusive: n.Inclusive}, n)
	default:
		return expr
	}
}

func exprSlice(in []ast.Expression, b Bindings) []ast.Expression {
	if in == nil {
		return nil
	}
	out := make([]ast.Expression, len(in))
	for i, e := range in {
		out[i] = Expr(e, b)
	}
	return out
}

func typeSlice(in []ast.TypeExpr, b Bindings) []ast.TypeExpr {
	if in == nil {
		return nil
	}
	out := make([]ast.TypeExpr, len(in))
	for i, t := range in {
		out[i] = Type(t, b)
	}
	return out
}

// Type substitutes a type expression. A NamedTypeExpr whose Name matches
// a bound type parameter is rewritten to the bound type's canonical name
// (spec.md §4.4: "type-expression nodes referring to any bound parameter
// are rewritten to the argument") so that re-checking the clone resolves
// it the ordinary way, through the scope/registry lookup by name.
func Type(t ast.TypeExpr, b Bindings) ast.TypeExpr {
	if t == nil {
		return nil
	}
	switch n := t.(type) {
	case *ast.NamedTypeExpr:
		if bound, ok := b[n.Name]; ok && bound.Type != nil {
			return at(&ast.NamedTypeExpr{Name: bound.Type.String()}, n)
		}
		return at(&ast.NamedTypeExpr{
			Name:      n.Name,
			TypeArgs:  typeSlice(n.TypeArgs, b),
			ConstArgs: exprSlice(n.ConstArgs, b),
		}, n)
	case *ast.ArrayTypeExpr:
		return substArrayType(n, b)
	case *ast.SliceTypeExpr:
		return at(&ast.SliceTypeExpr{Elem: Type(n.Elem, b)}, n)
	case *ast.TupleTypeExpr:
		return at(&ast.TupleTypeExpr{Components: typeSlice(n.Components, b)}, n)
	case *ast.PointerTypeExpr:
		return at(&ast.PointerTypeExpr{Pointee: Type(n.Pointee, b)}, n)
	case *ast.RangeTypeExpr:
		return at(&ast.RangeTypeExpr{BaseType: Type(n.BaseType, b), Inclusive: n.Inclusive}, n)
	case *ast.FunctionTypeExpr:
		return at(&ast.FunctionTypeExpr{Params: typeSlice(n.Params, b), Result: Type(n.Result, b)}, n)
	default:
		return t
	}
}

// substArrayType implements spec.md §4.4's array-length substitution
// rule: a parametric size `$N` resolving to a bound constant becomes the
// literal length; resolving to another (still unbound) generic parameter
// rewrites the reference to that parameter's name, for partial
// specialization.
func substArrayType(n *ast.ArrayTypeExpr, b Bindings) *ast.ArrayTypeExpr {
	elem := Type(n.Elem, b)
	if n.Param == "" {
		return at(&ast.ArrayTypeExpr{Elem: elem, Size: Expr(n.Size, b)}, n)
	}
	bound, ok := b[n.Param]
	if !ok {
		return at(&ast.ArrayTypeExpr{Elem: elem, Param: n.Param}, n)
	}
	if bound.Const != nil {
		return at(&ast.ArrayTypeExpr{Elem: elem, Size: literalFromConst(n, *bound.Const)}, n)
	}
	if gp, ok := bound.Type.(typesystem.GenericParameter); ok && gp.IsConstant {
		return at(&ast.ArrayTypeExpr{Elem: elem, Param: gp.Name}, n)
	}
	return at(&ast.ArrayTypeExpr{Elem: elem, Param: n.Param}, n)
}

// Stmt substitutes a statement.
func Stmt(stmt ast.Statement, b Bindings) ast.Statement {
	if stmt == nil {
		return nil
	}
	switch n := stmt.(type) {
	case *ast.Block:
		stmts := make([]ast.Statement, len(n.Statements))
		for i, s := range n.Statements {
			stmts[i] = Stmt(s, b)
		}
		return at(&ast.Block{Statements: stmts}, n)
	case *ast.ExprStatement:
		return at(&ast.ExprStatement{Expr: Expr(n.Expr, b)}, n)
	case *ast.AssignStatement:
		return at(&ast.AssignStatement{Target: Expr(n.Target, b), Value: Expr(n.Value, b)}, n)
	case *ast.IfStatement:
		return at(&ast.IfStatement{Cond: Expr(n.Cond, b), Then: Stmt(n.Then, b), Else: Stmt(n.Else, b)}, n)
	case *ast.WhenStatement:
		arms := make([]ast.WhenArm, len(n.Arms))
		for i, a := range n.Arms {
			arms[i] = ast.WhenArm{Pattern: Pattern(a.Pattern, b), Guard: Expr(a.Guard, b), Body: Stmt(a.Body, b)}
		}
		return at(&ast.WhenStatement{Scrutinee: Expr(n.Scrutinee, b), Arms: arms, Else: Stmt(n.Else, b)}, n)
	case *ast.ForStatement:
		body, _ := Stmt(n.Body, b).(*ast.Block)
		return at(&ast.ForStatement{
			Binding:    Pattern(n.Binding, b),
			Iterable:   Expr(n.Iterable, b),
			Body:       body,
			Invariants: contractSlice(n.Invariants, b),
		}, n)
	case *ast.WhileStatement:
		body, _ := Stmt(n.Body, b).(*ast.Block)
		return at(&ast.WhileStatement{
			Cond:       Expr(n.Cond, b),
			Body:       body,
			Invariants: contractSlice(n.Invariants, b),
		}, n)
	case *ast.ReturnStatement:
		return at(&ast.ReturnStatement{Value: Expr(n.Value, b)}, n)
	case *ast.BreakStatement:
		return at(&ast.BreakStatement{}, n)
	case *ast.ContinueStatement:
		return at(&ast.ContinueStatement{}, n)
	case ast.Declaration:
		return Decl(n, b)
	default:
		return stmt
	}
}

func contractSlice(in []*ast.ContractClause, b Bindings) []*ast.ContractClause {
	if in == nil {
		return nil
	}
	out := make([]*ast.ContractClause, len(in))
	for i, c := range in {
		out[i] = &ast.ContractClause{Kind: c.Kind, Expr: Expr(c.Expr, b)}
	}
	return out
}

// Pattern substitutes a pattern node.
func Pattern(p ast.Pattern, b Bindings) ast.Pattern {
	if p == nil {
		return nil
	}
	switch n := p.(type) {
	case *ast.LiteralPattern:
		return at(&ast.LiteralPattern{Value: Expr(n.Value, b)}, n)
	case *ast.IdentifierPattern:
		return at(&ast.IdentifierPattern{Name: n.Name}, n)
	case *ast.WildcardPattern:
		return at(&ast.WildcardPattern{}, n)
	case *ast.RestPattern:
		return at(&ast.RestPattern{Binding: n.Binding}, n)
	case *ast.PathPattern:
		var tuple []ast.Pattern
		if n.Tuple != nil {
			tuple = make([]ast.Pattern, len(n.Tuple))
			for i, sub := range n.Tuple {
				tuple[i] = Pattern(sub, b)
			}
		}
		var record []ast.RecordPatternField
		if n.Record != nil {
			record = make([]ast.RecordPatternField, len(n.Record))
			for i, f := range n.Record {
				record[i] = ast.RecordPatternField{Name: f.Name, Sub: Pattern(f.Sub, b), Shorthand: f.Shorthand}
			}
		}
		return at(&ast.PathPattern{Path: append([]string(nil), n.Path...), Tuple: tuple, Record: record}, n)
	case *ast.TuplePattern:
		elems := make([]ast.Pattern, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = Pattern(e, b)
		}
		return at(&ast.TuplePattern{Elements: elems}, n)
	case *ast.ArrayPattern:
		elems := make([]ast.Pattern, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = Pattern(e, b)
		}
		return at(&ast.ArrayPattern{Elements: elems}, n)
	case *ast.RecordPattern:
		fields := make([]ast.RecordPatternField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ast.RecordPatternField{Name: f.Name, Sub: Pattern(f.Sub, b), Shorthand: f.Shorthand}
		}
		return at(&ast.RecordPattern{TypeName: n.TypeName, Fields: fields}, n)
	case *ast.RangePattern:
		return at(&ast.RangePattern{Low: Expr(n.Low, b), High: Expr(n.High, b), Inclusive: n.Inclusive}, n)
	case *ast.OrPattern:
		alts := make([]ast.Pattern, len(n.Alternatives))
		for i, a := range n.Alternatives {
			alts[i] = Pattern(a, b)
		}
		return at(&ast.OrPattern{Alternatives: alts}, n)
	case *ast.TypeCastPattern:
		return at(&ast.TypeCastPattern{Target: Type(n.Target, b), Binding: n.Binding}, n)
	default:
		return p
	}
}

func paramDecl(p *ast.ParameterDeclaration, b Bindings) *ast.ParameterDeclaration {
	if p == nil {
		return nil
	}
	return at(&ast.ParameterDeclaration{
		Binding: Pattern(p.Binding, b),
		Type:    Type(p.Type, b),
		Mutable: p.Mutable,
	}, p)
}

// Decl substitutes a declaration subtree — used by the generic
// instantiation pipeline (spec.md §4.5 step 3) against a whole
// function/type declaration's body.
func Decl(decl ast.Declaration, b Bindings) ast.Declaration {
	if decl == nil {
		return nil
	}
	switch n := decl.(type) {
	case *ast.FieldDeclaration:
		return at(&ast.FieldDeclaration{Name: n.Name, Type: Type(n.Type, b)}, n)
	case *ast.TypeDeclaration:
		fields := make([]*ast.FieldDeclaration, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = Decl(f, b).(*ast.FieldDeclaration)
		}
		members := make([]ast.VariantMemberDeclaration, len(n.Members))
		for i, m := range n.Members {
			members[i] = substVariantMember(m, b)
		}
		return at(&ast.TypeDeclaration{
			Name:        n.Name,
			Kind:        n.Kind,
			Generics:    n.Generics,
			Fields:      fields,
			Members:     members,
			RangeBase:   Type(n.RangeBase, b),
			RangeIncl:   n.RangeIncl,
			AliasTarget: Type(n.AliasTarget, b),
		}, n)
	case *ast.BehaviourDeclaration:
		// Behaviours carry no generic parameters of their own in this
		// model and are never themselves instantiated, so nothing under
		// one ever needs substituting.
		return n
	case *ast.ConceptDeclaration:
		return at(&ast.ConceptDeclaration{Name: n.Name, Generics: n.Generics, Body: Expr(n.Body, b)}, n)
	case *ast.ExtensionDeclaration:
		members := make([]ast.Declaration, len(n.Members))
		for i, m := range n.Members {
			members[i] = Decl(m, b)
		}
		return at(&ast.ExtensionDeclaration{
			Generics:  n.Generics,
			Target:    Type(n.Target, b),
			Behaviour: n.Behaviour,
			Members:   members,
		}, n)
	case *ast.ExternDeclaration:
		return at(&ast.ExternDeclaration{Name: n.Name, Type: Type(n.Type, b)}, n)
	case *ast.ParameterDeclaration:
		return paramDecl(n, b)
	case *ast.FunctionDeclaration:
		params := make([]*ast.ParameterDeclaration, len(n.Params))
		for i, p := range n.Params {
			params[i] = paramDecl(p, b)
		}
		var body *ast.Block
		if n.Body != nil {
			body, _ = Stmt(n.Body, b).(*ast.Block)
		}
		return at(&ast.FunctionDeclaration{
			Name:     n.Name,
			Generics: n.Generics,
			Params:   params,
			Result:   Type(n.Result, b),
			Requires: contractSlice(n.Requires, b),
			Ensures:  contractSlice(n.Ensures, b),
			Body:     body,
		}, n)
	case *ast.PropertyDeclaration:
		var body *ast.Block
		if n.Body != nil {
			body, _ = Stmt(n.Body, b).(*ast.Block)
		}
		return at(&ast.PropertyDeclaration{Name: n.Name, Result: Type(n.Result, b), Body: body}, n)
	case *ast.VariableDeclaration:
		return at(&ast.VariableDeclaration{
			Name:    n.Name,
			Pattern: Pattern(n.Pattern, b),
			Type:    Type(n.Type, b),
			Value:   Expr(n.Value, b),
			Mutable: n.Mutable,
		}, n)
	case *ast.ConstantDeclaration:
		return at(&ast.ConstantDeclaration{
			Name:    n.Name,
			Pattern: Pattern(n.Pattern, b),
			Type:    Type(n.Type, b),
			Value:   Expr(n.Value, b),
		}, n)
	case *ast.TestDeclaration:
		body, _ := Stmt(n.Body, b).(*ast.Block)
		return at(&ast.TestDeclaration{Label: n.Label, Body: body}, n)
	default:
		return decl
	}
}

func substVariantMember(m ast.VariantMemberDeclaration, b Bindings) ast.VariantMemberDeclaration {
	out := ast.VariantMemberDeclaration{Name: m.Name}
	if m.Tuple != nil {
		out.Tuple = typeSlice(m.Tuple, b)
	}
	if m.Record != nil {
		out.Record = make([]*ast.FieldDeclaration, len(m.Record))
		for i, f := range m.Record {
			out.Record[i] = Decl(f, b).(*ast.FieldDeclaration)
		}
	}
	return out
}

// literalFromConst rebuilds a literal expression node spelling value
// exactly, for when a bound generic constant parameter is substituted
// directly into value (or array-length) position — spec.md §4.4.
// Lexemes are re-synthesized rather than copied from the original site
// since the original site is an identifier, not a literal.
func literalFromConst(orig ast.Node, v constval.Value) ast.Expression {
	switch v.Kind {
	case constval.KindInt:
		return at(&ast.IntLiteral{Lexeme: intLexeme(v.IntVal.Value, v.IntVal.Bits, v.IntVal.Signed)}, orig)
	case constval.KindRational:
		return at(&ast.RationalLiteral{Lexeme: fmt.Sprintf("%s/%s", v.RatVal.Num(), v.RatVal.Denom())}, orig)
	case constval.KindFloat:
		return at(&ast.FloatLiteral{Lexeme: floatLexeme(v.FloatVal.Value.String(), v.FloatVal.Bits)}, orig)
	case constval.KindBool:
		return at(&ast.BoolLiteral{Value: v.BoolVal}, orig)
	case constval.KindChar:
		return at(&ast.CharLiteral{Value: v.CharVal}, orig)
	case constval.KindString:
		return at(&ast.StringLiteral{Value: v.StrVal, Owned: true}, orig)
	default:
		// Every generic constant parameter this module's grammar allows is
		// one of the scalar kinds above; anything else cannot occur.
		return at(&ast.IntLiteral{Lexeme: "0"}, orig)
	}
}

func intLexeme(v *big.Int, bits int, signed bool) string {
	prefix := "u"
	if signed {
		prefix = "i"
	}
	return fmt.Sprintf("%s%s%d", v.String(), prefix, bits)
}

func floatLexeme(digits string, bits int) string {
	switch bits {
	case 32:
		return digits + "f32"
	case 64:
		return digits + "f64"
	default:
		return digits
	}
}
