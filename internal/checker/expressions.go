package checker

import (
	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/compat"
	"github.com/nemesis-lang/nsc/internal/constval"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
	"github.com/nemesis-lang/nsc/internal/evalconst"
	"github.com/nemesis-lang/nsc/internal/symbols"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// inferExpr is pass 3's general (non-constant) expression type-checker:
// one case per concrete ast.Expression, stamping the resolved type onto
// the node's Annotation and returning it for the caller's own use
// (operand checking, assignability, etc). Unlike evalconst.Eval this
// never folds a value — it only computes types — so it accepts every
// expression form the grammar allows, not just the constant-context
// subset.
func (c *Checker) inferExpr(scope typesystem.ScopeID, expr ast.Expression) typesystem.Type {
	var t typesystem.Type
	switch n := expr.(type) {
	case *ast.IntLiteral:
		v, outcome := c.evaluator().Eval(n, scope)
		if outcome == evalconst.OK {
			t = v.Type
		} else {
			t = c.reg.MustBuiltin("i32")
		}
	case *ast.FloatLiteral, *ast.RationalLiteral, *ast.BoolLiteral, *ast.CharLiteral, *ast.StringLiteral:
		v, outcome := c.evaluator().Eval(expr, scope)
		if outcome == evalconst.OK {
			t = v.Type
		} else {
			t = typesystem.Unknown{}
		}
	case *ast.Identifier:
		t = c.inferIdentifier(scope, n)
	case *ast.PathExpr:
		t = c.inferPath(scope, n)
	case *ast.BinaryExpr:
		t = c.inferBinary(scope, n)
	case *ast.UnaryExpr:
		t = c.inferUnary(scope, n)
	case *ast.AsExpr:
		_ = c.inferExpr(scope, n.Operand)
		t = c.resolveTypeExpr(scope, n.Target)
	case *ast.MemberExpr:
		t = c.inferMember(scope, n)
	case *ast.IndexExpr:
		t = c.inferIndex(scope, n)
	case *ast.TupleExpr:
		comps := make([]typesystem.Type, len(n.Elements))
		for i, el := range n.Elements {
			comps[i] = c.inferExpr(scope, el)
		}
		t = typesystem.Tuple{Components: comps}
	case *ast.ArrayExpr:
		t = c.inferArray(scope, n)
	case *ast.RecordExpr:
		t = c.inferRecord(scope, n)
	case *ast.CallExpr:
		t = c.inferCall(scope, n)
	case *ast.GenericInstExpr:
		t = c.inferGenericInst(scope, n)
	case *ast.LambdaExpr:
		t = c.inferLambda(scope, n)
	case *ast.RangeExpr:
		t = c.inferRange(scope, n)
	default:
		t = typesystem.Unknown{}
	}
	expr.Annotation().Type = t
	return t
}

func (c *Checker) inferIdentifier(scope typesystem.ScopeID, n *ast.Identifier) typesystem.Type {
	id, ok := c.uni.Lookup(scope, n.Name)
	if !ok {
		c.unknownIdentifier(n, scope, n.Name)
		return typesystem.Unknown{}
	}
	n.Annotation().ReferencedDecl = id
	c.markUsed(id)
	return c.uni.Decl(id).Type
}

func (c *Checker) inferPath(scope typesystem.ScopeID, n *ast.PathExpr) typesystem.Type {
	id, ok, _ := c.uni.LookupPath(scope, n.Components)
	if !ok {
		c.unknownIdentifier(n, scope, symbols.QualifiedName(n.Components))
		return typesystem.Unknown{}
	}
	n.Annotation().ReferencedDecl = id
	c.markUsed(id)
	c.markPathHeadUsed(scope, n.Components)
	return c.uni.Decl(id).Type
}

// markPathHeadUsed marks a qualified path's leading component used for
// pass 4's unused-import diagnostic: LookupPath resolves to the path's
// *final* component's declaration, never the DeclUse alias that only ever
// occurs as the head, so that one must be checked separately.
func (c *Checker) markPathHeadUsed(scope typesystem.ScopeID, components []string) {
	if len(components) == 0 {
		return
	}
	if headID, ok := c.uni.Lookup(scope, components[0]); ok {
		c.markUsed(headID)
	}
}

// markUsed records that alias is a workspace name that at least one
// resolved path actually went through, for pass 4's unused-import
// diagnostic.
func (c *Checker) markUsed(id typesystem.DeclID) {
	decl := c.uni.Decl(id)
	if decl.Kind == symbols.DeclUse {
		c.usedImports[id] = true
	}
}

func (c *Checker) inferBinary(scope typesystem.ScopeID, n *ast.BinaryExpr) typesystem.Type {
	lt := c.inferExpr(scope, n.Left)
	rt := c.inferExpr(scope, n.Right)
	switch n.Op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if !compat.Compatible(lt, rt, false) {
			c.errorAt(diagnostics.ErrTypeMismatch, n, "cannot compare %s with %s", fmtType(lt), fmtType(rt))
		}
		return c.reg.MustBuiltin("bool")
	case ast.OpAnd, ast.OpOr:
		if lt.Kind() != typesystem.KindBool || rt.Kind() != typesystem.KindBool {
			c.errorAt(diagnostics.ErrTypeMismatch, n, "logical operator requires bool operands, got %s and %s", fmtType(lt), fmtType(rt))
		}
		return c.reg.MustBuiltin("bool")
	default:
		if !compat.Compatible(lt, rt, false) {
			c.errorAt(diagnostics.ErrTypeMismatch, n, "mismatched operand types: %s and %s", fmtType(lt), fmtType(rt))
			return typesystem.Unknown{}
		}
		return wider(lt, rt)
	}
}

// wider picks the operand type arithmetic promotion would yield, per
// spec.md §4.3: among two otherwise-compatible numeric types, the wider
// representation wins; non-numeric operands simply share one type.
func wider(a, b typesystem.Type) typesystem.Type {
	ai, aok := a.(typesystem.Integer)
	bi, bok := b.(typesystem.Integer)
	if aok && bok {
		if bi.Bits > ai.Bits {
			return bi
		}
		return ai
	}
	switch at := a.(type) {
	case typesystem.Rational:
		if bt, ok := b.(typesystem.Rational); ok && bt.Bits > at.Bits {
			return bt
		}
	case typesystem.Float:
		if bt, ok := b.(typesystem.Float); ok && bt.Bits > at.Bits {
			return bt
		}
	case typesystem.Complex:
		if bt, ok := b.(typesystem.Complex); ok && bt.Bits > at.Bits {
			return bt
		}
	}
	return a
}

func (c *Checker) inferUnary(scope typesystem.ScopeID, n *ast.UnaryExpr) typesystem.Type {
	t := c.inferExpr(scope, n.Operand)
	switch n.Op {
	case ast.OpNot:
		if t.Kind() != typesystem.KindBool {
			c.errorAt(diagnostics.ErrTypeMismatch, n, "! requires a bool operand, got %s", fmtType(t))
		}
		return c.reg.MustBuiltin("bool")
	default:
		return t
	}
}

// inferMember resolves either a record field access or compile-time type
// metadata access (`T.BITS`), told apart by whether Target names a type
// (spec.md §4.3/§4.5).
func (c *Checker) inferMember(scope typesystem.ScopeID, n *ast.MemberExpr) typesystem.Type {
	if id, ok := n.Target.(*ast.Identifier); ok {
		if bt, ok := c.reg.Builtin(id.Name); ok {
			v, outcome := c.evaluator().Eval(n, scope)
			if outcome == evalconst.OK {
				return v.Type
			}
			_ = bt
			return typesystem.Unknown{}
		}
	}
	tt := c.inferExpr(scope, n.Target)
	fields, typeName, ok := recordFieldsOf(tt)
	if !ok {
		c.errorAt(diagnostics.ErrUnknownMember, n, "%s has no member %s", fmtType(tt), n.Name)
		return typesystem.Unknown{}
	}
	if ft, ok := fields[n.Name]; ok {
		return ft
	}
	for _, declID := range c.reg.Extensions(tt) {
		decl := c.uni.Decl(declID)
		if decl.OpensScope == 0 {
			continue
		}
		if memberID, ok := c.uni.Scope(decl.OpensScope).Names[n.Name]; ok && len(memberID) > 0 {
			return c.uni.Decl(memberID[len(memberID)-1]).Type
		}
	}
	c.errorAt(diagnostics.ErrUnknownMember, n, "%s has no member %s", typeName, n.Name)
	return typesystem.Unknown{}
}

func recordFieldsOf(t typesystem.Type) (map[string]typesystem.Type, string, bool) {
	r, ok := t.(typesystem.Record)
	if !ok {
		return nil, fmtType(t), false
	}
	out := make(map[string]typesystem.Type, len(r.Fields))
	for _, f := range r.Fields {
		out[f.Name] = f.Type
	}
	name := r.Name
	if name == "" {
		name = "<anonymous record>"
	}
	return out, name, true
}

func (c *Checker) inferIndex(scope typesystem.ScopeID, n *ast.IndexExpr) typesystem.Type {
	tt := c.inferExpr(scope, n.Target)
	it := c.inferExpr(scope, n.Index)
	if _, isInt := it.(typesystem.Integer); !isInt {
		if _, isRange := it.(typesystem.Range); !isRange {
			c.errorAt(diagnostics.ErrTypeMismatch, n, "index must be an integer or range, got %s", fmtType(it))
		}
	}
	switch et := tt.(type) {
	case typesystem.Array:
		return et.Elem
	case typesystem.Slice:
		return et.Elem
	default:
		c.errorAt(diagnostics.ErrTypeMismatch, n, "%s is not indexable", fmtType(tt))
		return typesystem.Unknown{}
	}
}

func (c *Checker) inferArray(scope typesystem.ScopeID, n *ast.ArrayExpr) typesystem.Type {
	var elem typesystem.Type = typesystem.Unknown{}
	for i, el := range n.Elements {
		et := c.inferExpr(scope, el)
		if i == 0 {
			elem = et
		} else if ok, _, _ := compat.AssignmentCompatible(et, elem); !ok {
			c.errorAt(diagnostics.ErrTypeMismatch, el, "array element %d has type %s, expected %s", i, fmtType(et), fmtType(elem))
		}
	}
	return typesystem.NewArray(elem, typesystem.ArraySize{Concrete: len(n.Elements)})
}

func (c *Checker) inferRecord(scope typesystem.ScopeID, n *ast.RecordExpr) typesystem.Type {
	if n.TypeName == "" {
		fields := make([]typesystem.Field, 0, len(n.Fields))
		for _, f := range n.Fields {
			fields = append(fields, typesystem.Field{Name: f.Name, Type: c.inferExpr(scope, f.Value)})
		}
		return typesystem.NewRecord("", fields, 0)
	}
	id, ok, typed := c.uni.LookupPath(scope, splitPath(n.TypeName))
	if !ok || !typed {
		c.unknownIdentifier(n, scope, n.TypeName)
		return typesystem.Unknown{}
	}
	c.markPathHeadUsed(scope, splitPath(n.TypeName))
	rt, ok := c.uni.Decl(id).Type.(typesystem.Record)
	if !ok {
		c.errorAt(diagnostics.ErrTypeMismatch, n, "%s is not a record type", n.TypeName)
		return typesystem.Unknown{}
	}
	want := make(map[string]typesystem.Type, len(rt.Fields))
	for _, f := range rt.Fields {
		want[f.Name] = f.Type
	}
	for _, f := range n.Fields {
		ft := c.inferExpr(scope, f.Value)
		wt, known := want[f.Name]
		if !known {
			c.errorAt(diagnostics.ErrUnknownMember, n, "%s has no field %s", n.TypeName, f.Name)
			continue
		}
		if ok, _, _ := compat.AssignmentCompatible(ft, wt); !ok {
			c.errorAt(diagnostics.ErrTypeMismatch, n, "field %s: expected %s, got %s", f.Name, fmtType(wt), fmtType(ft))
		}
	}
	if n.Spread != nil {
		c.inferExpr(scope, n.Spread)
	}
	return rt
}

func (c *Checker) inferCall(scope typesystem.ScopeID, n *ast.CallExpr) typesystem.Type {
	ct := c.inferExpr(scope, n.Callee)
	ft, ok := ct.(typesystem.Function)
	if !ok {
		c.errorAt(diagnostics.ErrNotCallable, n, "%s is not callable", fmtType(ct))
		for _, a := range n.Args {
			c.inferExpr(scope, a)
		}
		return typesystem.Unknown{}
	}
	if len(n.Args) != len(ft.Params) {
		c.errorAt(diagnostics.ErrWrongArity, n, "expected %d argument(s), got %d", len(ft.Params), len(n.Args))
	}
	for i, a := range n.Args {
		at := c.inferExpr(scope, a)
		if i < len(ft.Params) {
			if ok, _, _ := compat.AssignmentCompatible(at, ft.Params[i]); !ok {
				c.errorAt(diagnostics.ErrTypeMismatch, a, "argument %d: expected %s, got %s", i+1, fmtType(ft.Params[i]), fmtType(at))
			}
		}
	}
	return ft.Result
}

func (c *Checker) inferGenericInst(scope typesystem.ScopeID, n *ast.GenericInstExpr) typesystem.Type {
	id, ok := c.identifierDecl(scope, n.Callee)
	if !ok {
		return typesystem.Unknown{}
	}
	typeArgs := make([]typesystem.Type, len(n.TypeArgs))
	for i, ta := range n.TypeArgs {
		typeArgs[i] = c.resolveTypeExpr(scope, ta)
	}
	constArgs := make([]*constval.Value, len(n.ConstArgs))
	for i, ca := range n.ConstArgs {
		v, outcome := c.evaluator().Eval(ca, scope)
		if outcome == evalconst.OK {
			cv := v
			constArgs[i] = &cv
		}
	}
	fnID, ok := c.InstantiateFunction(id, typeArgs, constArgs, n)
	if !ok {
		return typesystem.Unknown{}
	}
	n.Annotation().ReferencedDecl = fnID
	return c.uni.Decl(fnID).Type
}

func (c *Checker) identifierDecl(scope typesystem.ScopeID, expr ast.Expression) (typesystem.DeclID, bool) {
	switch n := expr.(type) {
	case *ast.Identifier:
		id, ok := c.uni.Lookup(scope, n.Name)
		if !ok {
			c.unknownIdentifier(n, scope, n.Name)
			return symbols.NoDecl, false
		}
		n.Annotation().ReferencedDecl = id
		return id, true
	case *ast.PathExpr:
		id, ok, _ := c.uni.LookupPath(scope, n.Components)
		if !ok {
			c.unknownIdentifier(n, scope, symbols.QualifiedName(n.Components))
			return symbols.NoDecl, false
		}
		n.Annotation().ReferencedDecl = id
		c.markPathHeadUsed(scope, n.Components)
		return id, true
	default:
		c.errorAt(diagnostics.ErrInternal, expr, "generic instantiation requires a named callee")
		return symbols.NoDecl, false
	}
}

func (c *Checker) inferLambda(scope typesystem.ScopeID, n *ast.LambdaExpr) typesystem.Type {
	bodyScope := c.uni.Open(n)
	defer c.uni.Close()
	params := make([]typesystem.Type, len(n.Params))
	for i, p := range n.Params {
		pt := c.resolveTypeExpr(bodyScope, p.Type)
		params[i] = pt
		c.bindParameter(bodyScope, p, pt)
	}
	result := c.resolveTypeExpr(bodyScope, n.Result)
	c.checkStmt(bodyScope, n.Body, result)
	return typesystem.Function{Params: params, Result: result, IsLambda: true}
}

func (c *Checker) inferRange(scope typesystem.ScopeID, n *ast.RangeExpr) typesystem.Type {
	lo := c.inferExpr(scope, n.Low)
	hi := c.inferExpr(scope, n.High)
	if ok, _, _ := compat.AssignmentCompatible(hi, lo); !ok {
		c.errorAt(diagnostics.ErrTypeMismatch, n, "range bounds must share a type: %s vs %s", fmtType(lo), fmtType(hi))
	}
	return typesystem.NewRange(lo, n.Inclusive, 0)
}
