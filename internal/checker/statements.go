package checker

import (
	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/compat"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
	"github.com/nemesis-lang/nsc/internal/evalconst"
	"github.com/nemesis-lang/nsc/internal/pattern"
	"github.com/nemesis-lang/nsc/internal/symbols"
	"github.com/nemesis-lang/nsc/internal/typesystem"
)

// bindParameter resolves p's binding pattern against pt and installs every
// name it introduces into scope as a DeclParameter, the way a function's
// own parameter list or a lambda's does (spec.md §4.5/§4.6).
func (c *Checker) bindParameter(scope typesystem.ScopeID, p *ast.ParameterDeclaration, pt typesystem.Type) {
	bindings, ok := pattern.Check(p.Binding, pt, c.sink)
	if !ok {
		return
	}
	for name, t := range bindings {
		id := c.uni.NewDecl(symbols.DeclParameter, name, scope, p)
		c.uni.Decl(id).Type = t
		c.uni.Add(scope, id, symbols.NoDecl)
		if p.Mutable {
			c.mutable[id] = true
		}
	}
}

// bindPatternVars is bindParameter's counterpart for a `when` arm or `for`
// loop binding: the bound names become ordinary DeclVariable entries
// rather than parameters.
func (c *Checker) bindPatternVars(scope typesystem.ScopeID, p ast.Pattern, t typesystem.Type, origin ast.Node) {
	bindings, ok := pattern.Check(p, t, c.sink)
	if !ok {
		return
	}
	for name, vt := range bindings {
		id := c.uni.NewDecl(symbols.DeclVariable, name, scope, origin)
		c.uni.Decl(id).Type = vt
		c.uni.Add(scope, id, symbols.NoDecl)
	}
}

// checkStmt is pass 3's statement-level checker, dispatching one case per
// concrete ast.Statement and threading result through for the enclosing
// function/lambda/test's return-type check.
func (c *Checker) checkStmt(scope typesystem.ScopeID, stmt ast.Statement, result typesystem.Type) {
	switch n := stmt.(type) {
	case *ast.Block:
		blockScope := c.uni.Open(n)
		defer c.uni.Close()
		for _, s := range n.Statements {
			c.checkStmt(blockScope, s, result)
		}
	case *ast.ExprStatement:
		c.inferExpr(scope, n.Expr)
	case *ast.AssignStatement:
		c.checkAssign(scope, n)
	case *ast.IfStatement:
		ct := c.inferExpr(scope, n.Cond)
		if ct.Kind() != typesystem.KindBool {
			c.errorAt(diagnostics.ErrTypeMismatch, n.Cond, "if condition must be bool, got %s", fmtType(ct))
		}
		c.checkStmt(scope, n.Then, result)
		if n.Else != nil {
			c.checkStmt(scope, n.Else, result)
		}
	case *ast.WhenStatement:
		c.checkWhen(scope, n, result)
	case *ast.ForStatement:
		c.checkFor(scope, n, result)
	case *ast.WhileStatement:
		ct := c.inferExpr(scope, n.Cond)
		if ct.Kind() != typesystem.KindBool {
			c.errorAt(diagnostics.ErrTypeMismatch, n.Cond, "while condition must be bool, got %s", fmtType(ct))
		}
		for _, inv := range n.Invariants {
			c.checkContract(scope, inv)
		}
		c.checkStmt(scope, n.Body, result)
	case *ast.ReturnStatement:
		c.checkReturn(scope, n, result)
	case *ast.VariableDeclaration:
		c.checkLocalVariable(scope, n)
	case *ast.ConstantDeclaration:
		c.checkLocalConstant(scope, n)
	case *ast.BreakStatement, *ast.ContinueStatement:
		// Loop-nesting validity belongs to whatever produced this tree;
		// nothing further to type-check here.
	default:
	}
}

// checkLocalVariable handles a `val`/`var` binding appearing inside a
// function body. Unlike its top-level counterpart (pass_exec.go's
// checkTopLevelVariable) there is no declare-then-check split: a local
// binding is only ever visible to statements after it, so it is declared
// and type-checked in the same pass-3 body walk.
func (c *Checker) checkLocalVariable(scope typesystem.ScopeID, n *ast.VariableDeclaration) {
	var declared typesystem.Type
	if n.Type != nil {
		declared = c.resolveTypeExpr(scope, n.Type)
	}
	var vt typesystem.Type = typesystem.Unknown{}
	if n.Value != nil {
		vt = c.inferExpr(scope, n.Value)
	}
	if declared != nil {
		if ok, _, _ := compat.AssignmentCompatible(vt, declared); n.Value != nil && !ok {
			c.errorAt(diagnostics.ErrTypeMismatch, n, "variable declared as %s, value is %s", fmtType(declared), fmtType(vt))
		}
		vt = declared
	}
	n.Annotation().Type = vt
	if n.Name != "" {
		id := c.uni.NewDecl(symbols.DeclVariable, n.Name, scope, n)
		c.uni.Decl(id).Type = vt
		c.uni.Add(scope, id, symbols.NoDecl)
		n.Annotation().ReferencedDecl = id
		if n.Mutable {
			c.mutable[id] = true
		}
		return
	}
	if n.Pattern == nil {
		return
	}
	bindings, _ := pattern.Check(n.Pattern, vt, c.sink)
	for name, t := range bindings {
		id := c.uni.NewDecl(symbols.DeclTupledVariable, name, scope, n)
		c.uni.Decl(id).Type = t
		c.uni.Add(scope, id, symbols.NoDecl)
		if n.Mutable {
			c.mutable[id] = true
		}
	}
}

// checkLocalConstant is checkLocalVariable's `val ... :-` counterpart:
// the value must be constant-evaluable (spec.md §4.3).
func (c *Checker) checkLocalConstant(scope typesystem.ScopeID, n *ast.ConstantDeclaration) {
	var declared typesystem.Type
	if n.Type != nil {
		declared = c.resolveTypeExpr(scope, n.Type)
	}
	v, outcome := c.evaluator().Eval(n.Value, scope)
	var vt typesystem.Type = typesystem.Unknown{}
	if outcome == evalconst.OK {
		vt = v.Type
	}
	if declared != nil {
		if ok, _, _ := compat.AssignmentCompatible(vt, declared); outcome == evalconst.OK && !ok {
			c.errorAt(diagnostics.ErrTypeMismatch, n, "constant declared as %s, value is %s", fmtType(declared), fmtType(vt))
		}
		vt = declared
	}
	n.Annotation().Type = vt
	if n.Name != "" {
		id := c.uni.NewDecl(symbols.DeclConstant, n.Name, scope, n)
		c.uni.Decl(id).Type = vt
		if outcome == evalconst.OK {
			cv := v
			c.uni.Decl(id).Value = &cv
		}
		c.uni.Add(scope, id, symbols.NoDecl)
		n.Annotation().ReferencedDecl = id
		return
	}
	if n.Pattern == nil {
		return
	}
	bindings, _ := pattern.Check(n.Pattern, vt, c.sink)
	for name, t := range bindings {
		id := c.uni.NewDecl(symbols.DeclTupledConstant, name, scope, n)
		c.uni.Decl(id).Type = t
		c.uni.Add(scope, id, symbols.NoDecl)
	}
}

// checkAssign implements spec.md §4.5's assignability predicate: the
// target must resolve to a declaration (directly, or through a chain of
// member/index accesses rooted at one), and that declaration must be
// mutable.
func (c *Checker) checkAssign(scope typesystem.ScopeID, n *ast.AssignStatement) {
	tt := c.inferExpr(scope, n.Target)
	vt := c.inferExpr(scope, n.Value)
	id, ok := c.assignTargetDecl(scope, n.Target)
	if !ok {
		c.errorAt(diagnostics.ErrUnassignableTarget, n.Target, "%s is not an assignable target", describeAssignTarget(n.Target))
		return
	}
	if !c.mutable[id] {
		c.errorAt(diagnostics.ErrImmutableMutation, n.Target, "cannot assign to immutable %s", c.uni.Decl(id).Name)
		return
	}
	if ok, _, _ := compat.AssignmentCompatible(vt, tt); !ok {
		c.errorAt(diagnostics.ErrTypeMismatch, n.Value, "cannot assign %s to %s", fmtType(vt), fmtType(tt))
	}
}

func (c *Checker) assignTargetDecl(scope typesystem.ScopeID, expr ast.Expression) (typesystem.DeclID, bool) {
	switch n := expr.(type) {
	case *ast.Identifier:
		return c.uni.Lookup(scope, n.Name)
	case *ast.MemberExpr:
		return c.assignTargetDecl(scope, n.Target)
	case *ast.IndexExpr:
		return c.assignTargetDecl(scope, n.Target)
	default:
		return symbols.NoDecl, false
	}
}

func describeAssignTarget(expr ast.Expression) string {
	switch n := expr.(type) {
	case *ast.Identifier:
		return n.Name
	case *ast.MemberExpr:
		return n.Name
	default:
		return "expression"
	}
}

// checkWhen type-checks every arm's pattern against the scrutinee's type,
// binds the names it introduces into the arm's own scope, checks an
// optional guard, and finally confirms exhaustiveness over a variant
// scrutinee (spec.md §4.5/§4.6).
func (c *Checker) checkWhen(scope typesystem.ScopeID, n *ast.WhenStatement, result typesystem.Type) {
	st := c.inferExpr(scope, n.Scrutinee)
	patterns := make([]ast.Pattern, len(n.Arms))
	for i, arm := range n.Arms {
		patterns[i] = arm.Pattern
		armScope := c.uni.Open(arm.Body)
		c.bindPatternVars(armScope, arm.Pattern, st, arm.Body)
		if arm.Guard != nil {
			gt := c.inferExpr(armScope, arm.Guard)
			if gt.Kind() != typesystem.KindBool {
				c.errorAt(diagnostics.ErrTypeMismatch, arm.Guard, "when guard must be bool, got %s", fmtType(gt))
			}
		}
		c.checkStmt(armScope, arm.Body, result)
		c.uni.Close()
	}
	if n.Else != nil {
		c.checkStmt(scope, n.Else, result)
	}
	if ok, missing := pattern.Exhaustive(patterns, n.Else != nil, st); !ok {
		c.errorAt(diagnostics.ErrNonExhaustiveMatch, n, "when is not exhaustive over %s, missing: %v", fmtType(st), missing)
	}
}

// checkFor binds the loop variable to the iterable's element type
// (array/slice element, or range base) and checks the body and any loop
// invariants in the loop's own scope.
func (c *Checker) checkFor(scope typesystem.ScopeID, n *ast.ForStatement, result typesystem.Type) {
	it := c.inferExpr(scope, n.Iterable)
	var elem typesystem.Type = typesystem.Unknown{}
	switch t := it.(type) {
	case typesystem.Array:
		elem = t.Elem
	case typesystem.Slice:
		elem = t.Elem
	case typesystem.Range:
		elem = t.Base
	default:
		c.errorAt(diagnostics.ErrTypeMismatch, n.Iterable, "%s is not iterable", fmtType(it))
	}
	loopScope := c.uni.Open(n)
	defer c.uni.Close()
	c.bindPatternVars(loopScope, n.Binding, elem, n)
	for _, inv := range n.Invariants {
		c.checkContract(loopScope, inv)
	}
	c.checkStmt(loopScope, n.Body, result)
}

// checkReturn matches a return statement's value (or its absence) against
// the enclosing function/lambda/test's declared result type.
func (c *Checker) checkReturn(scope typesystem.ScopeID, n *ast.ReturnStatement, result typesystem.Type) {
	if n.Value == nil {
		if tup, isUnit := result.(typesystem.Tuple); !isUnit || len(tup.Components) != 0 {
			c.errorAt(diagnostics.ErrReturnTypeMismatch, n, "missing return value, function returns %s", fmtType(result))
		}
		return
	}
	vt := c.inferExpr(scope, n.Value)
	if ok, _, _ := compat.AssignmentCompatible(vt, result); !ok {
		c.errorAt(diagnostics.ErrReturnTypeMismatch, n, "returns %s, expected %s", fmtType(vt), fmtType(result))
	}
}

// checkContract confirms a require/ensure/invariant clause evaluates to
// bool; lowering it to a runtime guard is a downstream collaborator's job
// (spec.md §4.5).
func (c *Checker) checkContract(scope typesystem.ScopeID, cc *ast.ContractClause) {
	t := c.inferExpr(scope, cc.Expr)
	if t.Kind() != typesystem.KindBool {
		c.errorAt(diagnostics.ErrTypeMismatch, cc.Expr, "contract clause must be bool, got %s", fmtType(t))
	}
}
