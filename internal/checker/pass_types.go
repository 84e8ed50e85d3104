package checker

import (
	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/constval"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
	"github.com/nemesis-lang/nsc/internal/evalconst"
	"github.com/nemesis-lang/nsc/internal/symbols"
	"github.com/nemesis-lang/nsc/internal/typesystem"
	"github.com/nemesis-lang/nsc/internal/workspace"
)

// runPass1 implements spec.md §4.5 pass 1: every top-level type-naming
// declaration is inserted into its workspace scope as a placeholder with
// an unresolved type, so forward references (mutually recursive types)
// resolve in pass 2 regardless of declaration order within the workspace.
func (c *Checker) runPass1() {
	c.forEachUnit(func(ws *workspace.Workspace, unit *ast.SourceUnit) {
		scope := c.wsScope[ws.Name]
		for _, top := range unit.TopLevel {
			c.hoistTopLevel(scope, top)
		}
	})
}

func (c *Checker) hoistTopLevel(scope typesystem.ScopeID, top ast.Declaration) {
	switch n := top.(type) {
	case *ast.TypeDeclaration:
		kind := symbols.DeclTypeAlias
		switch n.Kind {
		case ast.TypeDeclRecord:
			kind = symbols.DeclTypeRecord
		case ast.TypeDeclVariant:
			kind = symbols.DeclTypeVariant
		case ast.TypeDeclRange:
			kind = symbols.DeclTypeRange
		}
		id := c.declareTopLevel(scope, kind, n.Name, n)
		n.Annotation().ReferencedDecl = id
	case *ast.ConceptDeclaration:
		id := c.declareTopLevel(scope, symbols.DeclConcept, n.Name, n)
		n.Annotation().ReferencedDecl = id
	case *ast.BehaviourDeclaration:
		id := c.declareTopLevel(scope, symbols.DeclBehaviour, n.Name, n)
		n.Annotation().ReferencedDecl = id
		c.reg.DeclareBehaviour(n.Name, id)
	case *ast.ExternDeclaration:
		id := c.declareTopLevel(scope, symbols.DeclExtern, n.Name, n)
		n.Annotation().ReferencedDecl = id
	case *ast.ExtensionDeclaration:
		// Extensions have no name of their own to hoist; they attach to an
		// already (or not yet) named type, resolved in pass 2 once every
		// type placeholder exists.
		id := c.uni.NewDecl(symbols.DeclExtension, "", scope, n)
		c.uni.Decl(id).Type = typesystem.Unknown{}
		n.Annotation().ReferencedDecl = id
	}
}

func (c *Checker) declareTopLevel(scope typesystem.ScopeID, kind symbols.DeclKind, name string, node ast.Node) typesystem.DeclID {
	id := c.uni.NewDecl(kind, name, scope, node)
	c.uni.Decl(id).Type = typesystem.Unknown{}
	ok, existing := c.uni.Add(scope, id, symbols.NoDecl)
	if !ok {
		c.report(diagnostics.NewError(diagnostics.ErrRedefinition, node.Span(), "%q is already declared in this workspace", name).
			WithNote(c.uni.Decl(existing).Span, "first declared here"))
	}
	return id
}

// runPass2 implements spec.md §4.5 pass 2: for each type declaration, its
// generic clause opens a scope, its fields/variants/alias-target/range-
// bounds are checked in that scope, the resulting type is installed on
// the declaration, and extensions/behaviours attach their members.
func (c *Checker) runPass2() {
	c.forEachUnit(func(ws *workspace.Workspace, unit *ast.SourceUnit) {
		scope := c.wsScope[ws.Name]
		for _, top := range unit.TopLevel {
			switch n := top.(type) {
			case *ast.TypeDeclaration:
				c.checkTypeDecl(scope, n.Annotation().ReferencedDecl, n)
			case *ast.ConceptDeclaration:
				c.checkConceptSignature(scope, n)
			}
		}
	})
	// Extensions and behaviour conformance run after every type body is
	// resolved, since an extension's Target and a behaviour's members may
	// reference any type in the workspace.
	c.forEachUnit(func(ws *workspace.Workspace, unit *ast.SourceUnit) {
		scope := c.wsScope[ws.Name]
		for _, top := range unit.TopLevel {
			if n, ok := top.(*ast.ExtensionDeclaration); ok {
				c.checkExtensionHeader(scope, n)
			}
		}
	})
}

// checkTypeDecl resolves n's body in the scope its generic clause opens
// and installs the result on id. Reused verbatim by instantiate.go
// against a substituted clone carrying a fresh id, so a generic type's
// concrete instantiations are checked the same way its template is.
func (c *Checker) checkTypeDecl(wsScope typesystem.ScopeID, id typesystem.DeclID, n *ast.TypeDeclaration) typesystem.Type {
	c.uni.Enter(wsScope)
	defer c.uni.Close()
	genScope := c.openGenerics(wsScope, n, n.Generics)
	defer c.uni.Close()

	prevTypeDecl := c.curTypeDecl
	c.curTypeDecl = id
	defer func() { c.curTypeDecl = prevTypeDecl }()

	var t typesystem.Type
	switch n.Kind {
	case ast.TypeDeclRecord:
		fields := make([]typesystem.Field, 0, len(n.Fields))
		for _, f := range n.Fields {
			ft := c.resolveTypeExpr(genScope, f.Type)
			fields = append(fields, typesystem.Field{Name: f.Name, Type: ft})
			fd := c.uni.NewDecl(symbols.DeclField, f.Name, genScope, f)
			c.uni.Decl(fd).Type = ft
			c.uni.Add(genScope, fd, symbols.NoDecl)
		}
		t = typesystem.NewRecord(n.Name, fields, id)
	case ast.TypeDeclVariant:
		members := make([]typesystem.VariantMember, 0, len(n.Members))
		for _, m := range n.Members {
			vm := typesystem.VariantMember{Name: m.Name}
			if m.Tuple != nil {
				comps := make([]typesystem.Type, len(m.Tuple))
				for i, te := range m.Tuple {
					comps[i] = c.resolveTypeExpr(genScope, te)
				}
				vm.Tuple = comps
			}
			if m.Record != nil {
				fs := make([]typesystem.Field, len(m.Record))
				for i, fd := range m.Record {
					fs[i] = typesystem.Field{Name: fd.Name, Type: c.resolveTypeExpr(genScope, fd.Type)}
				}
				vm.Record = fs
			}
			members = append(members, vm)
		}
		t = typesystem.NewVariant(n.Name, members, id)
	case ast.TypeDeclRange:
		base := c.resolveTypeExpr(genScope, n.RangeBase)
		t = typesystem.NewRange(base, n.RangeIncl, id)
	case ast.TypeDeclAlias:
		t = c.resolveTypeExpr(genScope, n.AliasTarget)
	}
	c.uni.Decl(id).Type = t
	n.Annotation().Type = t
	n.Annotation().IsType = true
	if n.Generics != nil && len(n.Generics.Params) > 0 {
		c.reg.RecordParametric(id, genericClauseOf(n.Generics))
	}
	return t
}

func genericClauseOf(gc *ast.GenericClause) typesystem.GenericClause {
	var out typesystem.GenericClause
	for _, p := range gc.Params {
		if p.IsConstant {
			out.ConstParams = append(out.ConstParams, p.Name)
		} else {
			out.TypeParams = append(out.TypeParams, p.Name)
		}
	}
	return out
}

// openGenerics opens a scope for decl's generic clause (nil clause yields
// an ordinary empty child scope), binding each parameter as a
// DeclGenericTypeParam/DeclGenericConstParam whose Type is a
// typesystem.GenericParameter placeholder pass 3/instantiation substitute
// away.
func (c *Checker) openGenerics(parent typesystem.ScopeID, origin ast.Node, gc *ast.GenericClause) typesystem.ScopeID {
	_ = parent
	scope := c.uni.Open(origin)
	if gc == nil {
		return scope
	}
	for _, p := range gc.Params {
		kind := symbols.DeclGenericTypeParam
		pt := typesystem.Type(typesystem.GenericParameter{Name: p.Name, Constraint: p.Constraint})
		if p.IsConstant {
			kind = symbols.DeclGenericConstParam
			pt = typesystem.GenericParameter{Name: p.Name, IsConstant: true}
		}
		id := c.uni.NewDecl(kind, p.Name, scope, origin)
		c.uni.Decl(id).Type = pt
		c.uni.Add(scope, id, symbols.NoDecl)
	}
	return scope
}

func (c *Checker) checkConceptSignature(scope typesystem.ScopeID, n *ast.ConceptDeclaration) {
	c.uni.Enter(scope)
	defer c.uni.Close()
	c.openGenerics(scope, n, n.Generics)
	defer c.uni.Close()
	if n.Generics != nil && len(n.Generics.Params) > 0 {
		c.reg.RecordParametric(n.Annotation().ReferencedDecl, genericClauseOf(n.Generics))
	}
	// The predicate body itself is only meaningfully evaluable once a
	// candidate type argument is bound, so pass 2 just confirms the clause
	// opens cleanly; constraint checking re-enters this scope with
	// bindings substituted in (spec.md §4.5 "Behaviours, concepts,
	// extensions").
}

// checkExtensionHeader resolves an extension's Target type and, for a
// named-behaviour extension, verifies every behaviour member has a
// matching implementation among Members (spec.md §4.5: "must supply
// every item in B with matching types, modulo the receiver's self type").
func (c *Checker) checkExtensionHeader(scope typesystem.ScopeID, n *ast.ExtensionDeclaration) {
	c.uni.Enter(scope)
	defer c.uni.Close()
	genScope := c.openGenerics(scope, n, n.Generics)
	defer c.uni.Close()

	target := c.resolveTypeExpr(genScope, n.Target)
	n.Annotation().Type = target
	id := n.Annotation().ReferencedDecl
	c.reg.RecordExtension(target, id)

	if n.Behaviour == "" {
		return
	}
	bdeclID, ok := c.uni.Lookup(scope, n.Behaviour)
	if !ok {
		c.unknownIdentifier(n, scope, n.Behaviour)
		return
	}
	bdecl := c.uni.Decl(bdeclID)
	bn, ok := bdecl.OriginNode.(*ast.BehaviourDeclaration)
	if !ok {
		c.errorAt(diagnostics.ErrTypeMismatch, n, "%s does not name a behaviour", n.Behaviour)
		return
	}
	implemented := make(map[string]bool, len(n.Members))
	for _, m := range n.Members {
		implemented[m.DeclName()] = true
	}
	for _, member := range bn.Members {
		if !implemented[member.Name] {
			c.errorAt(diagnostics.ErrMissingConformance, n, "extension of %s as %s is missing %s", fmtType(target), n.Behaviour, member.Name)
		}
	}
	c.reg.RecordImplementor(n.Behaviour, target)
}

// resolveTypeExpr turns a syntactic type expression into a
// typesystem.Type, resolving builtin names, declared names (with
// optional explicit generic arguments triggering instantiation), and
// every structural TypeExpr form.
func (c *Checker) resolveTypeExpr(scope typesystem.ScopeID, t ast.TypeExpr) typesystem.Type {
	if t == nil {
		return typesystem.Tuple{} // `unit`
	}
	switch n := t.(type) {
	case *ast.NamedTypeExpr:
		return c.resolveNamedType(scope, n)
	case *ast.ArrayTypeExpr:
		elem := c.resolveTypeExpr(scope, n.Elem)
		if n.Param != "" {
			return typesystem.NewArray(elem, typesystem.ArraySize{Param: n.Param})
		}
		size := c.evalArraySize(scope, n.Size)
		return typesystem.NewArray(elem, typesystem.ArraySize{Concrete: size})
	case *ast.SliceTypeExpr:
		return typesystem.Slice{Elem: c.resolveIndirectTypeExpr(scope, n.Elem)}
	case *ast.TupleTypeExpr:
		comps := make([]typesystem.Type, len(n.Components))
		for i, ct := range n.Components {
			comps[i] = c.resolveTypeExpr(scope, ct)
		}
		return typesystem.Tuple{Components: comps}
	case *ast.PointerTypeExpr:
		return typesystem.Pointer{Pointee: c.resolveIndirectTypeExpr(scope, n.Pointee)}
	case *ast.RangeTypeExpr:
		base := c.resolveTypeExpr(scope, n.BaseType)
		return typesystem.NewRange(base, n.Inclusive, 0)
	case *ast.FunctionTypeExpr:
		params := make([]typesystem.Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = c.resolveIndirectTypeExpr(scope, p)
		}
		result := c.resolveIndirectTypeExpr(scope, n.Result)
		return typesystem.Function{Params: params, Result: result}
	default:
		return typesystem.Unknown{}
	}
}

// resolveIndirectTypeExpr resolves t the way resolveTypeExpr does, except
// any named-type reference found underneath it is behind a runtime
// indirection (a pointer, a slice, or a function value) and so must not
// register a typeDeps edge — that is what makes the indirection an
// effective fix for an otherwise-cyclic type (spec.md §8 scenario 6).
func (c *Checker) resolveIndirectTypeExpr(scope typesystem.ScopeID, t ast.TypeExpr) typesystem.Type {
	prev := c.typeDepIndirect
	c.typeDepIndirect = true
	defer func() { c.typeDepIndirect = prev }()
	return c.resolveTypeExpr(scope, t)
}

func (c *Checker) resolveNamedType(scope typesystem.ScopeID, n *ast.NamedTypeExpr) typesystem.Type {
	if bt, ok := c.reg.Builtin(n.Name); ok && len(n.TypeArgs) == 0 && len(n.ConstArgs) == 0 {
		return bt
	}
	id, ok, typed := c.uni.LookupPath(scope, splitPath(n.Name))
	if !ok {
		c.unknownIdentifier(n, scope, n.Name)
		return typesystem.Unknown{}
	}
	if !typed {
		c.errorAt(diagnostics.ErrTypeMismatch, n, "%s does not name a type", n.Name)
		return typesystem.Unknown{}
	}
	decl := c.uni.Decl(id)
	n.Annotation().ReferencedDecl = id
	c.markPathHeadUsed(scope, splitPath(n.Name))
	c.recordTypeDep(id)
	if len(n.TypeArgs) == 0 && len(n.ConstArgs) == 0 {
		return decl.Type
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
	inst, ok := c.InstantiateType(id, typeArgs, constArgs, n)
	if !ok {
		return typesystem.Unknown{}
	}
	return inst
}

// splitPath treats a NamedTypeExpr's Name as a single-component path
// unless it already contains the qualifying separator a type name may
// still arrive with from a qualified import alias, e.g. `mathlib.Vector`.
func splitPath(name string) []string {
	var out []string
	start := 0
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			out = append(out, name[start:i])
			start = i + 1
		}
	}
	out = append(out, name[start:])
	return out
}

func (c *Checker) evalArraySize(scope typesystem.ScopeID, size ast.Expression) int {
	if size == nil {
		return 0
	}
	v, outcome := c.evaluator().Eval(size, scope)
	if outcome != evalconst.OK || v.Kind != constval.KindInt {
		return 0
	}
	return int(v.IntVal.Value.Int64())
}
