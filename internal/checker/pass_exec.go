package checker

import (
	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/compat"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
	"github.com/nemesis-lang/nsc/internal/evalconst"
	"github.com/nemesis-lang/nsc/internal/pattern"
	"github.com/nemesis-lang/nsc/internal/symbols"
	"github.com/nemesis-lang/nsc/internal/typesystem"
	"github.com/nemesis-lang/nsc/internal/workspace"
)

// runPass3 implements spec.md §4.5 pass 3: every top-level executable
// (function, property, constant, variable, test) and every extension's
// members are declared, signature-checked and body-checked, each stage
// run to completion across every workspace before the next begins — the
// same forward-reference discipline pass 1/pass 2 use for type names, so
// mutually recursive free functions resolve regardless of declaration
// order.
func (c *Checker) runPass3() {
	c.forEachUnit(func(ws *workspace.Workspace, unit *ast.SourceUnit) {
		scope := c.wsScope[ws.Name]
		for _, top := range unit.TopLevel {
			c.declareExecutable(scope, top)
		}
	})
	c.forEachUnit(func(ws *workspace.Workspace, unit *ast.SourceUnit) {
		scope := c.wsScope[ws.Name]
		for _, top := range unit.TopLevel {
			c.checkExecutableSignature(scope, top)
		}
	})
	c.forEachUnit(func(ws *workspace.Workspace, unit *ast.SourceUnit) {
		scope := c.wsScope[ws.Name]
		for _, top := range unit.TopLevel {
			c.checkExecutableBody(scope, top)
		}
	})
	// Extension members attach last: their bodies may call any free
	// function or reference any constant declared above.
	c.forEachUnit(func(ws *workspace.Workspace, unit *ast.SourceUnit) {
		scope := c.wsScope[ws.Name]
		for _, top := range unit.TopLevel {
			if ext, ok := top.(*ast.ExtensionDeclaration); ok {
				c.checkExtensionMembers(scope, ext)
			}
		}
	})
}

func (c *Checker) declareExecutable(scope typesystem.ScopeID, top ast.Declaration) {
	switch n := top.(type) {
	case *ast.FunctionDeclaration:
		id := c.declareTopLevel(scope, symbols.DeclFunction, n.Name, n)
		n.Annotation().ReferencedDecl = id
	case *ast.PropertyDeclaration:
		id := c.declareTopLevel(scope, symbols.DeclProperty, n.Name, n)
		n.Annotation().ReferencedDecl = id
	case *ast.ConstantDeclaration:
		kind := symbols.DeclConstant
		if n.Name == "" {
			kind = symbols.DeclTupledConstant
		}
		id := c.declareTopLevel(scope, kind, n.DeclName(), n)
		n.Annotation().ReferencedDecl = id
	case *ast.VariableDeclaration:
		kind := symbols.DeclVariable
		if n.Name == "" {
			kind = symbols.DeclTupledVariable
		}
		id := c.declareTopLevel(scope, kind, n.DeclName(), n)
		n.Annotation().ReferencedDecl = id
		if n.Mutable {
			c.mutable[id] = true
		}
	case *ast.TestDeclaration:
		// Tests are never looked up by name (spec.md §4.5: "never itself a
		// candidate entry point"), so no Add into scope — just an anchor id
		// for its own OpensScope/diagnostics.
		id := c.uni.NewDecl(symbols.DeclTest, n.Label, scope, n)
		c.uni.Decl(id).Type = typesystem.Unknown{}
		n.Annotation().ReferencedDecl = id
	}
}

func (c *Checker) checkExecutableSignature(scope typesystem.ScopeID, top ast.Declaration) {
	switch n := top.(type) {
	case *ast.FunctionDeclaration:
		c.checkFunctionSignature(scope, n.Annotation().ReferencedDecl, n)
	case *ast.PropertyDeclaration:
		c.checkPropertySignature(scope, n.Annotation().ReferencedDecl, n)
	}
}

func (c *Checker) checkExecutableBody(scope typesystem.ScopeID, top ast.Declaration) {
	switch n := top.(type) {
	case *ast.FunctionDeclaration:
		c.checkFunctionBody(n.Annotation().ReferencedDecl, n)
	case *ast.PropertyDeclaration:
		c.checkPropertyBody(n.Annotation().ReferencedDecl, n)
	case *ast.ConstantDeclaration:
		c.checkConstant(scope, n.Annotation().ReferencedDecl, n)
	case *ast.VariableDeclaration:
		c.checkTopLevelVariable(scope, n.Annotation().ReferencedDecl, n)
	case *ast.TestDeclaration:
		c.checkTest(scope, n.Annotation().ReferencedDecl, n)
	}
}

// checkFunctionSignature resolves n's generic clause, parameter types and
// result type in a scope nested under wsScope, installing the resulting
// typesystem.Function on id and recording that scope as id's OpensScope
// so checkFunctionBody (and, for a generic template, a later
// instantiation's re-check) can resume checking the body in it. Reused
// verbatim by instantiate.go against a substituted clone.
func (c *Checker) checkFunctionSignature(wsScope typesystem.ScopeID, id typesystem.DeclID, n *ast.FunctionDeclaration) {
	c.uni.Enter(wsScope)
	defer c.uni.Close()
	genScope := c.openGenerics(wsScope, n, n.Generics)
	defer c.uni.Close()

	params := make([]typesystem.Type, len(n.Params))
	for i, p := range n.Params {
		pt := c.resolveTypeExpr(genScope, p.Type)
		params[i] = pt
		c.bindParameter(genScope, p, pt)
	}
	result := c.resolveTypeExpr(genScope, n.Result)
	ft := typesystem.Function{Params: params, Result: result}

	decl := c.uni.Decl(id)
	decl.Type = ft
	decl.OpensScope = genScope
	n.Annotation().Type = ft
	if n.Generics != nil && len(n.Generics.Params) > 0 {
		c.reg.RecordParametric(id, genericClauseOf(n.Generics))
	}
}

// checkFunctionBody re-enters the scope checkFunctionSignature opened and
// checks the contract clauses and the body statement against the
// declared result type. A nil Body (a behaviour-signature-only
// declaration) is checked for signature only.
func (c *Checker) checkFunctionBody(id typesystem.DeclID, n *ast.FunctionDeclaration) {
	if n.Body == nil {
		return
	}
	decl := c.uni.Decl(id)
	ft, ok := decl.Type.(typesystem.Function)
	if !ok {
		return
	}
	c.uni.Enter(decl.OpensScope)
	defer c.uni.Close()
	for _, req := range n.Requires {
		c.checkContract(decl.OpensScope, req)
	}
	for _, ens := range n.Ensures {
		c.checkContract(decl.OpensScope, ens)
	}
	c.checkStmt(decl.OpensScope, n.Body, ft.Result)
}

func (c *Checker) checkPropertySignature(wsScope typesystem.ScopeID, id typesystem.DeclID, n *ast.PropertyDeclaration) {
	c.uni.Enter(wsScope)
	defer c.uni.Close()
	scope := c.uni.Open(n)
	defer c.uni.Close()

	result := c.resolveTypeExpr(scope, n.Result)
	decl := c.uni.Decl(id)
	decl.Type = result
	decl.OpensScope = scope
	n.Annotation().Type = result
}

func (c *Checker) checkPropertyBody(id typesystem.DeclID, n *ast.PropertyDeclaration) {
	if n.Body == nil {
		return
	}
	decl := c.uni.Decl(id)
	c.uni.Enter(decl.OpensScope)
	defer c.uni.Close()
	c.checkStmt(decl.OpensScope, n.Body, decl.Type)
}

// checkConstant fully constant-evaluates n's value (spec.md §4.3/§4.5:
// pass 3 is where `:-` bindings are folded), checking it against an
// explicit declared type when present, and binds every name a tupled
// pattern introduces.
func (c *Checker) checkConstant(scope typesystem.ScopeID, id typesystem.DeclID, n *ast.ConstantDeclaration) {
	var declared typesystem.Type
	if n.Type != nil {
		declared = c.resolveTypeExpr(scope, n.Type)
	}
	decl := c.uni.Decl(id)
	v, outcome := c.evaluator().Eval(n.Value, scope)
	if outcome != evalconst.OK {
		decl.Type = typesystem.Unknown{}
		return
	}
	vt := v.Type
	if declared != nil {
		if ok, _, _ := compat.AssignmentCompatible(vt, declared); !ok {
			c.errorAt(diagnostics.ErrTypeMismatch, n, "constant declared as %s, value is %s", fmtType(declared), fmtType(vt))
		}
		vt = declared
	}
	decl.Type = vt
	cv := v
	decl.Value = &cv
	n.Annotation().Type = vt
	if n.Pattern != nil {
		bindings, _ := pattern.Check(n.Pattern, vt, c.sink)
		for name, t := range bindings {
			bid := c.uni.NewDecl(symbols.DeclTupledConstant, name, scope, n)
			c.uni.Decl(bid).Type = t
			c.uni.Add(scope, bid, symbols.NoDecl)
		}
	}
}

// checkTopLevelVariable is checkConstant's `var`/plain `val` counterpart:
// the value need not be constant-evaluable, only type-compatible.
func (c *Checker) checkTopLevelVariable(scope typesystem.ScopeID, id typesystem.DeclID, n *ast.VariableDeclaration) {
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
	decl := c.uni.Decl(id)
	decl.Type = vt
	n.Annotation().Type = vt
	if n.Pattern != nil {
		bindings, _ := pattern.Check(n.Pattern, vt, c.sink)
		for name, t := range bindings {
			bid := c.uni.NewDecl(symbols.DeclTupledVariable, name, scope, n)
			c.uni.Decl(bid).Type = t
			c.uni.Add(scope, bid, symbols.NoDecl)
			if n.Mutable {
				c.mutable[bid] = true
			}
		}
	}
}

func (c *Checker) checkTest(scope typesystem.ScopeID, id typesystem.DeclID, n *ast.TestDeclaration) {
	c.uni.Enter(scope)
	defer c.uni.Close()
	bodyScope := c.uni.Open(n)
	defer c.uni.Close()
	c.uni.Decl(id).OpensScope = bodyScope
	c.checkStmt(bodyScope, n.Body, typesystem.Tuple{})
}

// checkExtensionMembers opens the extension's member scope (recording it
// on the extension's own placeholder declaration so inferMember's
// extension-method fallback can find it via Registry.Extensions), binds
// an implicit `self` at the extended type, and declares/signature-checks/
// body-checks every member in three passes so members may call each
// other regardless of order (spec.md §4.5).
func (c *Checker) checkExtensionMembers(scope typesystem.ScopeID, ext *ast.ExtensionDeclaration) {
	c.uni.Enter(scope)
	defer c.uni.Close()
	c.openGenerics(scope, ext, ext.Generics)
	defer c.uni.Close()
	memberScope := c.uni.Open(ext)
	defer c.uni.Close()

	extID := ext.Annotation().ReferencedDecl
	c.uni.Decl(extID).OpensScope = memberScope
	target := ext.Annotation().Type

	selfID := c.uni.NewDecl(symbols.DeclParameter, "self", memberScope, ext)
	c.uni.Decl(selfID).Type = target
	c.uni.Add(memberScope, selfID, symbols.NoDecl)

	for _, m := range ext.Members {
		c.declareMember(memberScope, m)
	}
	for _, m := range ext.Members {
		c.checkMemberSignature(memberScope, m)
	}
	for _, m := range ext.Members {
		c.checkMemberBody(memberScope, m)
	}
}

func (c *Checker) declareMember(scope typesystem.ScopeID, m ast.Declaration) {
	switch n := m.(type) {
	case *ast.FunctionDeclaration:
		id := c.declareTopLevel(scope, symbols.DeclFunction, n.Name, n)
		n.Annotation().ReferencedDecl = id
	case *ast.PropertyDeclaration:
		id := c.declareTopLevel(scope, symbols.DeclProperty, n.Name, n)
		n.Annotation().ReferencedDecl = id
	case *ast.ConstantDeclaration:
		id := c.declareTopLevel(scope, symbols.DeclConstant, n.DeclName(), n)
		n.Annotation().ReferencedDecl = id
	}
}

func (c *Checker) checkMemberSignature(scope typesystem.ScopeID, m ast.Declaration) {
	switch n := m.(type) {
	case *ast.FunctionDeclaration:
		c.checkFunctionSignature(scope, n.Annotation().ReferencedDecl, n)
	case *ast.PropertyDeclaration:
		c.checkPropertySignature(scope, n.Annotation().ReferencedDecl, n)
	}
}

func (c *Checker) checkMemberBody(scope typesystem.ScopeID, m ast.Declaration) {
	switch n := m.(type) {
	case *ast.FunctionDeclaration:
		c.checkFunctionBody(n.Annotation().ReferencedDecl, n)
	case *ast.PropertyDeclaration:
		c.checkPropertyBody(n.Annotation().ReferencedDecl, n)
	case *ast.ConstantDeclaration:
		c.checkConstant(scope, n.Annotation().ReferencedDecl, n)
	}
}
